package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/makkenzo/license-admin-console/internal/handler/dto"
	"github.com/makkenzo/license-admin-console/internal/handler/middleware"
	"github.com/makkenzo/license-admin-console/internal/ierr"
	"github.com/makkenzo/license-admin-console/internal/service"
	"go.uber.org/zap"
)

type AuthHandler struct {
	views  *Views
	logger *zap.Logger
}

func NewAuthHandler(views *Views, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		views:  views,
		logger: logger.Named("AuthHandler"),
	}
}

func (h *AuthHandler) LoginPage(c *gin.Context) {
	if h.views.Session.IsAuthenticated() {
		c.Redirect(http.StatusFound, "/")
		return
	}

	page := loginPage{}
	if err := h.views.Reporter.Take(service.ViewSession); err != nil {
		page.Error = err.Error()
	}
	c.HTML(http.StatusOK, "login.html", page)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		h.logger.Warn("Failed to bind login form", zap.Error(err))
		c.HTML(http.StatusBadRequest, "login.html", loginPage{
			Error:    "Username and password are required",
			Username: req.Username,
		})
		return
	}

	if err := h.views.Session.Authenticate(c.Request.Context(), req.Username, req.Password); err != nil {
		// Authenticate already reported it; the page shows it directly.
		h.views.Reporter.Take(service.ViewSession)

		status := http.StatusBadGateway
		if errors.Is(err, ierr.ErrUnauthorized) {
			status = http.StatusUnauthorized
		}
		h.logger.Info("Login rejected",
			zap.String("username", req.Username),
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.Error(err),
		)
		c.HTML(status, "login.html", loginPage{Error: err.Error(), Username: req.Username})
		return
	}

	h.views.Navigator.Reset()
	h.logger.Info("Admin logged in", zap.String("username", req.Username))
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.views.Session.Logout(c.Request.Context()); err != nil {
		h.logger.Error("Logout could not clear the stored token", zap.Error(err))
	}
	c.Redirect(http.StatusSeeOther, middleware.LoginPath)
}

// endSessionOnUnauthorized logs the admin out when the remote API rejected
// the token mid-session and sends the browser to the login page. It reports
// whether it did so.
func endSessionOnUnauthorized(c *gin.Context, views *Views, err error) bool {
	if err == nil || !errors.Is(err, ierr.ErrUnauthorized) {
		return false
	}

	if logoutErr := views.Session.Logout(c.Request.Context()); logoutErr != nil {
		_ = c.Error(logoutErr)
	}
	views.Reporter.Reset()
	views.Reporter.Report(service.ViewSession, fmt.Errorf("session expired: %w", err))
	c.Redirect(http.StatusSeeOther, middleware.LoginPath)
	c.Abort()
	return true
}
