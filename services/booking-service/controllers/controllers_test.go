package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yashrajoria/stayshop/pkg/cart"
	"github.com/yashrajoria/stayshop/pkg/session"
	"github.com/yashrajoria/stayshop/services/booking-service/controllers"
	"github.com/yashrajoria/stayshop/services/booking-service/models"
	"github.com/yashrajoria/stayshop/services/booking-service/services"
	"github.com/yashrajoria/stayshop/services/common/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// --- Mock services ---

type mockBookingService struct {
	listRoomsFn  func(ctx context.Context) ([]services.RoomView, error)
	getRoomFn    func(ctx context.Context, id uint) (*services.RoomView, error)
	addStayFn    func(ctx context.Context, c *cart.Cart, roomID uint, stay cart.Stay) (*cart.LineItem, error)
	historyFn    func(ctx context.Context, email string) ([]models.Booking, error)
	checkoutFn   func(ctx context.Context, c *cart.Cart, customer cart.Customer, card string) (*services.Receipt, error)
	adminFn      func(ctx context.Context) ([]models.Booking, []models.CustomerSummary, error)
	statusFn     func(ctx context.Context, id uint, status string) (*models.Booking, error)
	createRoomFn func(ctx context.Context, in services.RoomInput) (*models.Room, error)
	deleteRoomFn func(ctx context.Context, id uint) error
}

func (m *mockBookingService) ListRooms(ctx context.Context) ([]services.RoomView, error) {
	return m.listRoomsFn(ctx)
}
func (m *mockBookingService) GetRoom(ctx context.Context, id uint) (*services.RoomView, error) {
	return m.getRoomFn(ctx, id)
}
func (m *mockBookingService) AddStay(ctx context.Context, c *cart.Cart, roomID uint, stay cart.Stay) (*cart.LineItem, error) {
	return m.addStayFn(ctx, c, roomID, stay)
}
func (m *mockBookingService) CustomerBookings(ctx context.Context, email string) ([]models.Booking, error) {
	return m.historyFn(ctx, email)
}
func (m *mockBookingService) Checkout(ctx context.Context, c *cart.Cart, customer cart.Customer, card string) (*services.Receipt, error) {
	return m.checkoutFn(ctx, c, customer, card)
}
func (m *mockBookingService) AdminBookings(ctx context.Context) ([]models.Booking, []models.CustomerSummary, error) {
	return m.adminFn(ctx)
}
func (m *mockBookingService) UpdateBookingStatus(ctx context.Context, id uint, status string) (*models.Booking, error) {
	return m.statusFn(ctx, id, status)
}
func (m *mockBookingService) CreateRoom(ctx context.Context, in services.RoomInput) (*models.Room, error) {
	return m.createRoomFn(ctx, in)
}
func (m *mockBookingService) DeleteRoom(ctx context.Context, id uint) error {
	return m.deleteRoomFn(ctx, id)
}

type mockReviewService struct {
	addFn     func(ctx context.Context, roomID uint, sessionID string, in services.ReviewInput) (*services.ReviewResult, error)
	deleteFn  func(ctx context.Context, reviewID uint, sessionID string) error
	groupedFn func(ctx context.Context) ([]services.RoomReviews, error)
}

func (m *mockReviewService) AddReview(ctx context.Context, roomID uint, sessionID string, in services.ReviewInput) (*services.ReviewResult, error) {
	return m.addFn(ctx, roomID, sessionID, in)
}
func (m *mockReviewService) DeleteImage(ctx context.Context, reviewID uint, sessionID string) error {
	return m.deleteFn(ctx, reviewID, sessionID)
}
func (m *mockReviewService) GroupedReviews(ctx context.Context) ([]services.RoomReviews, error) {
	return m.groupedFn(ctx)
}

// --- Helpers ---

// client keeps the session cookie between requests.
type client struct {
	t      *testing.T
	r      *gin.Engine
	store  *session.MemoryStore
	cookie *http.Cookie
}

func newClient(t *testing.T, bs services.BookingService, rs services.ReviewService) *client {
	store := session.NewMemoryStore(100, time.Hour)
	r := gin.New()
	r.Use(session.Middleware(store, session.CookieConfig{Name: "sid", MaxAge: time.Hour}, zap.NewNop()))

	rc := controllers.NewRoomController(bs, rs)
	bc := controllers.NewBookingController(bs)
	ac := controllers.NewAdminController(bs, auth.NewCredentials("", ""))

	r.GET("/", rc.Index)
	r.GET("/booking/:room_id", rc.RoomPage)
	r.POST("/booking/:room_id", rc.AddBooking)
	r.POST("/review/:room_id", rc.AddReview)
	r.POST("/delete-review-image/:review_id", rc.DeleteReviewImage)
	r.GET("/my-bookings", bc.MyBookings)
	r.GET("/checkout", bc.Checkout)
	r.POST("/payment", bc.Pay)
	r.GET("/payment-success", bc.PaymentSuccess)
	r.POST("/clear-bookings", bc.ClearBookings)
	r.POST("/cancel-booking/:index", bc.CancelBooking)
	r.POST("/login", ac.Login)
	r.GET("/logout", ac.Logout)
	r.POST("/admin/add", ac.AddRoom)
	r.POST("/admin/bookings/:id/status", ac.UpdateBookingStatus)
	r.GET("/admin/bookings", ac.Bookings)

	return &client{t: t, r: r, store: store}
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

func (cl *client) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return cl.do(req)
}

func (cl *client) session() *session.Session {
	require.NotNil(cl.t, cl.cookie)
	s, err := cl.store.Get(context.Background(), cl.cookie.Value)
	require.NoError(cl.t, err)
	require.NotNil(cl.t, s)
	return s
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func flashes(t *testing.T, body map[string]any) []string {
	t.Helper()
	var out []string
	for _, f := range body["flashes"].([]any) {
		out = append(out, f.(map[string]any)["message"].(string))
	}
	return out
}

var deluxe = &cart.CatalogItem{ID: 1, Name: "Deluxe Room", Category: "Deluxe", UnitPrice: decimal.NewFromInt(2500)}

type staticCatalog map[uint]*cart.CatalogItem

func (s staticCatalog) FindItem(_ context.Context, id uint) (*cart.CatalogItem, error) {
	if it, ok := s[id]; ok {
		return it, nil
	}
	return nil, cart.ErrNotFound
}

func bookingSvc() *mockBookingService {
	catalog := staticCatalog{1: deluxe}
	return &mockBookingService{
		addStayFn: func(ctx context.Context, c *cart.Cart, roomID uint, stay cart.Stay) (*cart.LineItem, error) {
			return c.Add(ctx, catalog, roomID, 1, &stay)
		},
		historyFn: func(_ context.Context, _ string) ([]models.Booking, error) { return []models.Booking{}, nil },
	}
}

// --- Tests ---

func TestIndex_ReturnsRooms(t *testing.T) {
	bs := bookingSvc()
	bs.listRoomsFn = func(context.Context) ([]services.RoomView, error) {
		return []services.RoomView{{Room: models.Room{ID: 1, Name: "Deluxe Room"}}}, nil
	}
	cl := newClient(t, bs, &mockReviewService{})

	w := cl.get("/")
	assert.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Len(t, body["rooms"], 1)
	assert.Empty(t, body["flashes"])
}

func TestRoomPage_NotFoundRedirects(t *testing.T) {
	bs := bookingSvc()
	bs.getRoomFn = func(context.Context, uint) (*services.RoomView, error) { return nil, cart.ErrNotFound }
	cl := newClient(t, bs, &mockReviewService{})

	w := cl.get("/booking/9")
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	w = cl.get("/booking/abc")
	assert.Equal(t, http.StatusSeeOther, w.Code)
}

func TestBookingFlow_AddViewPay(t *testing.T) {
	bs := bookingSvc()
	var charged cart.Customer
	bs.checkoutFn = func(_ context.Context, c *cart.Cart, customer cart.Customer, card string) (*services.Receipt, error) {
		charged = customer
		summary := cart.ComputeTotals(c.Items)
		c.Clear()
		return &services.Receipt{
			Bookings:  []*models.Booking{{ID: 11}},
			Summary:   summary,
			Reference: "mock_1",
			Status:    "success",
		}, nil
	}
	cl := newClient(t, bs, &mockReviewService{})

	w := cl.postForm("/booking/1", url.Values{"check_in": {"2025-01-01"}, "check_out": {"2025-01-03"}, "guests": {"2"}})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/my-bookings", w.Header().Get("Location"))

	w = cl.get("/my-bookings")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, []string{"Booking for Deluxe Room added"}, flashes(t, body))
	assert.Equal(t, "5000", body["total_price"])
	assert.Len(t, body["bookings"], 1)

	w = cl.get("/checkout")
	assert.Equal(t, http.StatusOK, w.Code)

	w = cl.postForm("/payment", url.Values{"full_name": {"Mira"}, "email": {"mira@example.com"}})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/checkout", w.Header().Get("Location"))
	assert.Equal(t, 1, cl.session().Cart.Len())

	w = cl.postForm("/payment", url.Values{"full_name": {"Mira"}, "email": {"mira@example.com"}, "card_number": {"4242"}})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/payment-success", w.Header().Get("Location"))
	assert.Equal(t, "mira@example.com", charged.Email)

	sess := cl.session()
	assert.Zero(t, sess.Cart.Len())
	require.NotNil(t, sess.Customer)
	require.NotNil(t, sess.Payment)
	assert.Equal(t, []uint{11}, sess.Payment.OrderIDs)

	w = cl.get("/payment-success")
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	assert.Equal(t, "5000", body["payment_info"].(map[string]any)["total_price"])

	w = cl.postForm("/clear-bookings", nil)
	assert.Equal(t, "/", w.Header().Get("Location"))
	assert.Nil(t, cl.session().Payment)

	w = cl.get("/payment-success")
	assert.Equal(t, http.StatusSeeOther, w.Code)
}

func TestCheckout_EmptyCartRedirects(t *testing.T) {
	cl := newClient(t, bookingSvc(), &mockReviewService{})

	w := cl.get("/checkout")
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
}

func TestPay_RejectsOverlongName(t *testing.T) {
	bs := bookingSvc()
	bs.checkoutFn = func(context.Context, *cart.Cart, cart.Customer, string) (*services.Receipt, error) {
		t.Fatal("checkout must not run")
		return nil, nil
	}
	cl := newClient(t, bs, &mockReviewService{})
	cl.postForm("/booking/1", url.Values{"check_in": {"2025-01-01"}, "check_out": {"2025-01-02"}})

	w := cl.postForm("/payment", url.Values{
		"full_name":   {strings.Repeat("M", 121)},
		"email":       {"mira@example.com"},
		"card_number": {"4242"},
	})
	assert.Equal(t, "/checkout", w.Header().Get("Location"))

	w = cl.get("/checkout")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, flashes(t, decode(t, w)), "Please check: full_name")
}

func TestAddBooking_UnknownRoom(t *testing.T) {
	cl := newClient(t, bookingSvc(), &mockReviewService{})

	w := cl.postForm("/booking/5", url.Values{"check_in": {"2025-01-01"}, "check_out": {"2025-01-02"}})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
	assert.Zero(t, cl.session().Cart.Len())
}

func TestAddBooking_RejectsOutOfBoundsStay(t *testing.T) {
	bs := bookingSvc()
	called := false
	inner := bs.addStayFn
	bs.addStayFn = func(ctx context.Context, c *cart.Cart, roomID uint, stay cart.Stay) (*cart.LineItem, error) {
		called = true
		return inner(ctx, c, roomID, stay)
	}
	cl := newClient(t, bs, &mockReviewService{})

	w := cl.postForm("/booking/1", url.Values{"check_in": {strings.Repeat("x", 40)}, "check_out": {"2025-01-02"}})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/booking/1", w.Header().Get("Location"))

	cl.postForm("/booking/1", url.Values{"check_in": {"2025-01-01"}, "check_out": {"2025-01-02"}, "guests": {"500"}})
	assert.False(t, called)
	assert.Zero(t, cl.session().Cart.Len())
	var msgs []string
	for _, f := range cl.session().Flashes {
		msgs = append(msgs, f.Message)
	}
	assert.Equal(t, []string{"Please check: check_in", "Please check: guests"}, msgs)
}

func TestAddBooking_OverCapacityFlash(t *testing.T) {
	bs := bookingSvc()
	bs.addStayFn = func(context.Context, *cart.Cart, uint, cart.Stay) (*cart.LineItem, error) {
		return nil, services.ErrOverCapacity
	}
	cl := newClient(t, bs, &mockReviewService{})

	w := cl.postForm("/booking/1", url.Values{"check_in": {"2025-01-01"}, "check_out": {"2025-01-02"}, "guests": {"9"}})
	assert.Equal(t, "/", w.Header().Get("Location"))
	require.Len(t, cl.session().Flashes, 1)
	assert.Equal(t, "That room does not sleep so many guests.", cl.session().Flashes[0].Message)
}

func TestCancelBooking(t *testing.T) {
	cl := newClient(t, bookingSvc(), &mockReviewService{})
	cl.postForm("/booking/1", url.Values{"check_in": {"2025-01-01"}, "check_out": {"2025-01-02"}})
	cl.postForm("/booking/1", url.Values{"check_in": {"2025-02-01"}, "check_out": {"2025-02-02"}})
	require.Equal(t, 2, cl.session().Cart.Len())

	w := cl.postForm("/cancel-booking/7", nil)
	assert.Equal(t, "/my-bookings", w.Header().Get("Location"))
	assert.Equal(t, 2, cl.session().Cart.Len())

	cl.postForm("/cancel-booking/0", nil)
	sess := cl.session()
	require.Equal(t, 1, sess.Cart.Len())
	assert.Equal(t, "2025-02-01", sess.Cart.Items[0].Stay.CheckIn)
}

func TestAddReview_Multipart(t *testing.T) {
	var got services.ReviewInput
	rs := &mockReviewService{
		addFn: func(_ context.Context, roomID uint, sessionID string, in services.ReviewInput) (*services.ReviewResult, error) {
			got = in
			assert.Equal(t, uint(2), roomID)
			assert.NotEmpty(t, sessionID)
			return &services.ReviewResult{Review: &models.Review{ID: 1}, ImageRejected: true}, nil
		},
	}
	cl := newClient(t, bookingSvc(), rs)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("review_name", "Kai")
	_ = mw.WriteField("rating", "4")
	fw, _ := mw.CreateFormFile("review_image", "notes.txt")
	_, _ = fw.Write([]byte("hello"))
	require.NoError(t, mw.Close())

	req, _ := http.NewRequest(http.MethodPost, "/review/2", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Referer", "http://evil.example.com/phish")
	w := cl.do(req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
	assert.Equal(t, "Kai", got.Name)
	assert.Equal(t, "4", got.Rating)
	require.NotNil(t, got.Image)
	assert.Equal(t, "notes.txt", got.Image.Filename)
	assert.Len(t, cl.session().Flashes, 2)
}

func TestDeleteReviewImage_ReturnsToReferrer(t *testing.T) {
	rs := &mockReviewService{
		deleteFn: func(context.Context, uint, string) error { return nil },
	}
	cl := newClient(t, bookingSvc(), rs)

	req, _ := http.NewRequest(http.MethodPost, "/delete-review-image/3", nil)
	req.Header.Set("Referer", "/reviews?room=2")
	w := cl.do(req)
	assert.Equal(t, "/reviews?room=2", w.Header().Get("Location"))
}

func TestDeleteReviewImage_RejectsProtocolRelativeReferrer(t *testing.T) {
	rs := &mockReviewService{
		deleteFn: func(context.Context, uint, string) error { return nil },
	}
	cl := newClient(t, bookingSvc(), rs)

	for _, ref := range []string{"http://stay.local//evil.example.com/x", "//evil.example.com/x", "/\\evil.example.com"} {
		req, _ := http.NewRequest(http.MethodPost, "/delete-review-image/3", nil)
		req.Host = "stay.local"
		req.Header.Set("Referer", ref)
		w := cl.do(req)
		assert.Equal(t, "/reviews", w.Header().Get("Location"), ref)
	}

	req, _ := http.NewRequest(http.MethodPost, "/delete-review-image/3", nil)
	req.Host = "stay.local"
	req.Header.Set("Referer", "http://stay.local/reviews?room=1")
	assert.Equal(t, "/reviews?room=1", cl.do(req).Header().Get("Location"))
}

func TestLoginAndAdminMutations(t *testing.T) {
	bs := bookingSvc()
	bs.createRoomFn = func(_ context.Context, in services.RoomInput) (*models.Room, error) {
		assert.Equal(t, "x", in.Capacity)
		return &models.Room{ID: 9}, nil
	}
	bs.statusFn = func(_ context.Context, id uint, status string) (*models.Booking, error) {
		if status == "bogus" {
			return nil, cart.ErrValidation
		}
		return &models.Booking{ID: id, Status: cart.StatusCancelled}, nil
	}
	bs.adminFn = func(context.Context) ([]models.Booking, []models.CustomerSummary, error) {
		return []models.Booking{}, []models.CustomerSummary{}, nil
	}
	cl := newClient(t, bs, &mockReviewService{})

	w := cl.postForm("/login", url.Values{"username": {"admin"}, "password": {"nope"}})
	assert.Equal(t, "/login", w.Header().Get("Location"))
	assert.False(t, cl.session().Admin)

	w = cl.postForm("/login", url.Values{"username": {"admin"}, "password": {"1234"}})
	assert.Equal(t, "/admin", w.Header().Get("Location"))
	assert.True(t, cl.session().Admin)

	w = cl.postForm("/admin/add", url.Values{"name": {"Loft"}, "capacity": {"x"}})
	assert.Equal(t, "/admin", w.Header().Get("Location"))
	assert.Len(t, cl.session().Flashes, 2)

	w = cl.postForm("/admin/bookings/4/status", url.Values{"status": {"bogus"}})
	assert.Equal(t, "/admin/bookings", w.Header().Get("Location"))

	// Nothing was rendered in between, so every notice is still queued.
	w = cl.get("/admin/bookings")
	body := decode(t, w)
	assert.Equal(t, []string{"Invalid credentials", "Room added", "Validation error"}, flashes(t, body))
	assert.Empty(t, cl.session().Flashes)

	cl.postForm("/admin/bookings/4/status", url.Values{"status": {"cancelled"}})
	body = decode(t, cl.get("/admin/bookings"))
	assert.Equal(t, []string{"Booking marked cancelled"}, flashes(t, body))

	cl.get("/logout")
	assert.False(t, cl.session().Admin)
}
