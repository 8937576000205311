// Package auth gates the admin pages behind a single configured account.
package auth

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yashrajoria/stayshop/pkg/session"
)

const (
	DefaultUsername = "admin"
	DefaultPassword = "1234"
)

// Credentials is the one admin account a service accepts.
type Credentials struct {
	Username string
	Password string
}

// NewCredentials falls back to the default account for empty values.
func NewCredentials(username, password string) Credentials {
	if username == "" {
		username = DefaultUsername
	}
	if password == "" {
		password = DefaultPassword
	}
	return Credentials{Username: username, Password: password}
}

// CheckCredentials compares both fields in constant time.
func (c Credentials) CheckCredentials(username, password string) bool {
	u := subtle.ConstantTimeCompare([]byte(username), []byte(c.Username))
	p := subtle.ConstantTimeCompare([]byte(password), []byte(c.Password))
	return u&p == 1
}

// RequireAdmin redirects visitors without an admin session to loginPath.
func RequireAdmin(loginPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := session.FromContext(c)
		if !sess.Admin {
			sess.AddFlash(session.FlashWarning, "Please log in as admin to continue.")
			c.Redirect(http.StatusSeeOther, loginPath)
			c.Abort()
			return
		}
		c.Next()
	}
}

// BasicAuth guards session-less JSON endpoints with the same account, via
// HTTP basic authentication.
func BasicAuth(creds Credentials) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, pass, ok := c.Request.BasicAuth()
		if !ok || !creds.CheckCredentials(user, pass) {
			c.Header("WWW-Authenticate", `Basic realm="admin"`)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": http.StatusUnauthorized, "message": "Unauthorized"})
			return
		}
		c.Next()
	}
}
