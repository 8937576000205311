package session

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ContextKey is where the middleware stores the *Session in the gin context.
const ContextKey = "session"

// CookieConfig controls the session cookie.
type CookieConfig struct {
	Name   string
	MaxAge time.Duration
	Secure bool
}

// Middleware loads the visitor's session before the handler runs and saves it
// afterwards. Unknown or expired ids get a fresh session and a new cookie.
func Middleware(store Store, cookie CookieConfig, logger *zap.Logger) gin.HandlerFunc {
	if cookie.Name == "" {
		cookie.Name = "sid"
	}
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var sess *Session
		if id, err := c.Cookie(cookie.Name); err == nil && id != "" {
			loaded, err := store.Get(ctx, id)
			if err != nil {
				logger.Warn("session load failed", zap.String("session_id", id), zap.Error(err))
			} else {
				sess = loaded
			}
		}
		if sess == nil {
			sess = New(uuid.NewString())
		}

		// Refresh the cookie on every request so its expiry slides with the store TTL.
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(cookie.Name, sess.ID, int(cookie.MaxAge.Seconds()), "/", "", cookie.Secure, true)
		c.Set(ContextKey, sess)

		c.Next()

		if err := store.Save(ctx, sess); err != nil {
			logger.Error("session save failed", zap.String("session_id", sess.ID), zap.Error(err))
		}
	}
}

// FromContext returns the session placed by Middleware. Handlers mounted
// without the middleware get a throwaway session rather than a nil pointer.
func FromContext(c *gin.Context) *Session {
	if v, ok := c.Get(ContextKey); ok {
		if s, ok := v.(*Session); ok {
			return s
		}
	}
	s := New(uuid.NewString())
	c.Set(ContextKey, s)
	return s
}

// AddFlash queues a notice on the current session.
func AddFlash(c *gin.Context, category, message string) {
	FromContext(c).AddFlash(category, message)
}
