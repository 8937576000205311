package routes_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	pkgdb "github.com/yashrajoria/stayshop/pkg/database"
	"github.com/yashrajoria/stayshop/pkg/session"
	"github.com/yashrajoria/stayshop/services/booking-service/controllers"
	"github.com/yashrajoria/stayshop/services/booking-service/database"
	"github.com/yashrajoria/stayshop/services/booking-service/repository"
	"github.com/yashrajoria/stayshop/services/booking-service/routes"
	"github.com/yashrajoria/stayshop/services/booking-service/services"
	"github.com/yashrajoria/stayshop/services/common/auth"
	"github.com/yashrajoria/stayshop/services/common/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type client struct {
	t      *testing.T
	r      *gin.Engine
	cookie *http.Cookie
}

func newClient(t *testing.T, limiter *middleware.RateLimiter) *client {
	t.Helper()
	db, err := pkgdb.Open(pkgdb.Config{Driver: "sqlite"}, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	require.NoError(t, database.Seed(context.Background(), db, zap.NewNop()))
	t.Cleanup(func() { _ = pkgdb.Close(db) })

	rooms := repository.NewGormRoomRepository(db)
	reviews := repository.NewGormReviewRepository(db)
	images, err := services.NewLocalImageStore(t.TempDir(), "/uploads")
	require.NoError(t, err)

	bookings := services.NewBookingService(rooms, repository.NewGormBookingRepository(db), reviews,
		services.MockGateway{}, nil, nil, "", zap.NewNop())
	reviewSvc := services.NewReviewService(rooms, reviews, images, zap.NewNop())

	r := gin.New()
	r.Use(session.Middleware(session.NewMemoryStore(100, time.Hour), session.CookieConfig{Name: "sid", MaxAge: time.Hour}, zap.NewNop()))
	routes.RegisterRoutes(r, routes.Controllers{
		Rooms:    controllers.NewRoomController(bookings, reviewSvc),
		Bookings: controllers.NewBookingController(bookings),
		Admin:    controllers.NewAdminController(bookings, auth.NewCredentials("", "")),
	}, limiter)
	return &client{t: t, r: r}
}

func (cl *client) do(req *http.Request) *httptest.ResponseRecorder {
	if cl.cookie != nil {
		req.AddCookie(cl.cookie)
	}
	w := httptest.NewRecorder()
	cl.r.ServeHTTP(w, req)
	for _, c := range w.Result().Cookies() {
		if c.Name == "sid" {
			cl.cookie = c
		}
	}
	return w
}

func (cl *client) get(path string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodGet, path, nil)
	return cl.do(req)
}

func (cl *client) post(path string, form url.Values) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return cl.do(req)
}

func (cl *client) getJSON(path string) map[string]any {
	w := cl.get(path)
	require.Equal(cl.t, http.StatusOK, w.Code, path)
	var body map[string]any
	require.NoError(cl.t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHealthAndAdminGuard(t *testing.T) {
	cl := newClient(t, nil)

	w := cl.get("/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "booking-service")

	w = cl.get("/admin")
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	w = cl.post("/login", url.Values{"username": {"admin"}, "password": {"wrong"}})
	assert.Equal(t, "/login", w.Header().Get("Location"))

	w = cl.post("/login", url.Values{"username": {"admin"}, "password": {"1234"}})
	assert.Equal(t, "/admin", w.Header().Get("Location"))
	body := cl.getJSON("/admin")
	assert.NotEmpty(t, body["rooms"])
}

func TestLoginRateLimit(t *testing.T) {
	cl := newClient(t, middleware.NewRateLimiter(rate.Every(time.Hour), 2, time.Minute))
	form := url.Values{"username": {"admin"}, "password": {"nope"}}

	assert.Equal(t, http.StatusSeeOther, cl.post("/login", form).Code)
	assert.Equal(t, http.StatusSeeOther, cl.post("/login", form).Code)
	assert.Equal(t, http.StatusTooManyRequests, cl.post("/login", form).Code)
	assert.Equal(t, http.StatusOK, cl.get("/login").Code)
}

func TestBookAndPay(t *testing.T) {
	cl := newClient(t, nil)

	w := cl.post("/booking/1", url.Values{"check_in": {"2030-01-10"}, "check_out": {"2030-01-12"}, "guests": {"2"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/my-bookings", w.Header().Get("Location"))

	checkout := cl.getJSON("/checkout")
	assert.Len(t, checkout["bookings"], 1)
	assert.EqualValues(t, 1, checkout["count"])

	w = cl.post("/payment", url.Values{"full_name": {"Mira"}, "email": {"mira@example.com"}, "card_number": {"4242424242424242"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/payment-success", w.Header().Get("Location"))

	success := cl.getJSON("/payment-success")
	assert.Len(t, success["bookings"], 1)

	mine := cl.getJSON("/my-bookings")
	assert.Empty(t, mine["bookings"])
	history, ok := mine["historical_bookings"].([]any)
	require.True(t, ok)
	require.Len(t, history, 1)
	assert.Equal(t, "completed", history[0].(map[string]any)["status"])

	cl.post("/login", url.Values{"username": {"admin"}, "password": {"1234"}})
	w = cl.post("/admin/bookings/1/status", url.Values{"status": {"cancelled"}})
	assert.Equal(t, "/admin/bookings", w.Header().Get("Location"))

	mine = cl.getJSON("/my-bookings")
	history = mine["historical_bookings"].([]any)
	assert.Equal(t, "cancelled", history[0].(map[string]any)["status"])
}
