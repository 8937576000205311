package controllers

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yashrajoria/stayshop/pkg/cart"
	"github.com/yashrajoria/stayshop/pkg/session"
	"github.com/yashrajoria/stayshop/services/booking-service/services"
	apperrors "github.com/yashrajoria/stayshop/services/common/errors"
	"github.com/yashrajoria/stayshop/services/common/logger"
)

// page returns the base view model for a GET handler, consuming flashes.
func page(c *gin.Context, data gin.H) gin.H {
	if data == nil {
		data = gin.H{}
	}
	sess := session.FromContext(c)
	data["flashes"] = sess.PopFlashes()
	data["admin"] = sess.Admin
	data["cart_count"] = sess.Cart.Len()
	return data
}

// redirect queues a flash and issues a 303 to path.
func redirect(c *gin.Context, path, category, message string) {
	if message != "" {
		session.AddFlash(c, category, message)
	}
	c.Redirect(http.StatusSeeOther, path)
}

// fail turns a service error into a flash and redirect. Unexpected errors are
// logged and reported generically.
func fail(c *gin.Context, err error, path string) {
	switch {
	case errors.Is(err, cart.ErrNotFound):
		redirect(c, path, session.FlashWarning, "The requested item was not found.")
	case errors.Is(err, cart.ErrEmpty):
		redirect(c, path, session.FlashWarning, "There is nothing to pay for.")
	case errors.Is(err, services.ErrOverCapacity):
		redirect(c, path, session.FlashWarning, "That room does not sleep so many guests.")
	case errors.Is(err, services.ErrStayTooLarge):
		redirect(c, path, session.FlashWarning, "That stay is too long to book online.")
	default:
		appErr := apperrors.FromDomain(err)
		if appErr.Code >= http.StatusInternalServerError {
			logger.Error(c, "request failed", err)
			redirect(c, path, session.FlashDanger, "Something went wrong, please try again.")
			return
		}
		redirect(c, path, session.FlashDanger, appErr.Message)
	}
}

// idParam parses a positive numeric path parameter.
func idParam(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		return 0, false
	}
	return uint(v), true
}

// back returns the Referer path when it points at this host, else fallback.
func back(c *gin.Context, fallback string) string {
	ref := c.Request.Referer()
	if ref == "" {
		return fallback
	}
	u, err := url.Parse(ref)
	if err != nil || (u.Host != "" && u.Host != c.Request.Host) || !strings.HasPrefix(u.Path, "/") {
		return fallback
	}
	// "//host" and "/\host" are protocol-relative to browsers.
	if strings.HasPrefix(u.Path, "//") || strings.HasPrefix(u.Path, "/\\") {
		return fallback
	}
	if u.RawQuery != "" {
		return u.Path + "?" + u.RawQuery
	}
	return u.Path
}

func atoiDefault(v string, fallback int) int {
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
