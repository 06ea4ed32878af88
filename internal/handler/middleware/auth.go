package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/makkenzo/license-admin-console/internal/ierr"
	"go.uber.org/zap"
)

const LoginPath = "/login"

// Authenticator reports whether the console currently holds a valid admin
// session.
type Authenticator interface {
	IsAuthenticated() bool
}

// SessionGate sends unauthenticated browsers to the login page.
func SessionGate(auth Authenticator, logger *zap.Logger) gin.HandlerFunc {
	log := logger.Named("SessionGate")
	return func(c *gin.Context) {
		if auth.IsAuthenticated() {
			c.Next()
			return
		}

		log.Debug("No session, redirecting to login", zap.String("path", c.Request.URL.Path))
		status := http.StatusFound
		if c.Request.Method != http.MethodGet {
			status = http.StatusSeeOther
		}
		c.Redirect(status, LoginPath)
		c.Abort()
	}
}

// APISessionGate is SessionGate for the JSON routes: it fails with 401
// through the error handler instead of redirecting.
func APISessionGate(auth Authenticator, logger *zap.Logger) gin.HandlerFunc {
	log := logger.Named("APISessionGate")
	return func(c *gin.Context) {
		if auth.IsAuthenticated() {
			c.Next()
			return
		}

		log.Debug("No session for API request", zap.String("path", c.Request.URL.Path))
		_ = c.Error(fmt.Errorf("%w: log in through the console first", ierr.ErrNotAuthenticated))
		c.Abort()
	}
}
