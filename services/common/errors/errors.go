package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yashrajoria/stayshop/pkg/cart"
)

// Error is an HTTP-facing application error.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a new Error
func New(code int, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// Wrap returns a copy of base carrying err. The package-level values below are
// shared, so they are never mutated.
func Wrap(base *Error, err error) *Error {
	return &Error{Code: base.Code, Message: base.Message, Err: err}
}

var (
	ErrBadRequest   = New(http.StatusBadRequest, "Bad request", nil)
	ErrUnauthorized = New(http.StatusUnauthorized, "Unauthorized", nil)
	ErrForbidden    = New(http.StatusForbidden, "Forbidden", nil)
	ErrNotFound     = New(http.StatusNotFound, "Not found", nil)
	ErrInternal     = New(http.StatusInternalServerError, "Internal server error", nil)

	ErrValidation         = New(http.StatusBadRequest, "Validation error", nil)
	ErrEmptyCart          = New(http.StatusBadRequest, "Cart is empty", nil)
	ErrInvalidTransition  = New(http.StatusConflict, "Invalid status transition", nil)
	ErrInvalidCredentials = New(http.StatusUnauthorized, "Invalid credentials", nil)
	ErrPaymentFailed      = New(http.StatusPaymentRequired, "Payment failed", nil)
)

// FromDomain maps cart sentinels onto HTTP errors. Anything unrecognised is
// treated as an internal failure.
func FromDomain(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if stderrors.As(err, &appErr) {
		return appErr
	}
	switch {
	case stderrors.Is(err, cart.ErrNotFound):
		return Wrap(ErrNotFound, err)
	case stderrors.Is(err, cart.ErrEmpty):
		return Wrap(ErrEmptyCart, err)
	case stderrors.Is(err, cart.ErrValidation):
		return Wrap(ErrValidation, err)
	case stderrors.Is(err, cart.ErrInvalidTransition):
		return Wrap(ErrInvalidTransition, err)
	}
	return Wrap(ErrInternal, err)
}

// Respond writes err as JSON and aborts the chain. Internal details are only
// exposed through the message of non-5xx errors.
func Respond(c *gin.Context, err error) {
	appErr := FromDomain(err)
	body := gin.H{"code": appErr.Code, "message": appErr.Message}
	if appErr.Code < http.StatusInternalServerError && appErr.Err != nil {
		body["detail"] = appErr.Err.Error()
	}
	if err != nil {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(appErr.Code, body)
}

// ErrorMiddleware renders the last error attached with c.Error when the handler
// did not write a response itself.
func ErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		appErr := FromDomain(c.Errors.Last().Err)
		c.AbortWithStatusJSON(appErr.Code, gin.H{"code": appErr.Code, "message": appErr.Message})
	}
}
