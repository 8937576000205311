package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yashrajoria/stayshop/pkg/cart"
	"github.com/yashrajoria/stayshop/pkg/session"
	apperrors "github.com/yashrajoria/stayshop/services/common/errors"
	"github.com/yashrajoria/stayshop/services/common/logger"
	"github.com/yashrajoria/stayshop/services/shop-service/repository"
)

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

func redirect(c *gin.Context, path, category, message string) {
	if message != "" {
		session.AddFlash(c, category, message)
	}
	c.Redirect(http.StatusSeeOther, path)
}

// fail maps a service error to a flash and redirect.
func fail(c *gin.Context, err error, path string) {
	switch {
	case errors.Is(err, cart.ErrNotFound):
		redirect(c, path, session.FlashWarning, "The requested item was not found.")
	case errors.Is(err, cart.ErrEmpty):
		redirect(c, path, session.FlashWarning, "Your cart is empty.")
	case errors.Is(err, repository.ErrOutOfStock):
		redirect(c, path, session.FlashWarning, "Not enough stock for that quantity.")
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

func idParam(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		return 0, false
	}
	return uint(v), true
}

func atoiDefault(v string, fallback int) int {
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
