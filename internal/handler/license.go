package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/makkenzo/license-admin-console/internal/domain/license"
	"github.com/makkenzo/license-admin-console/internal/handler/dto"
	"github.com/makkenzo/license-admin-console/internal/handler/middleware"
	"github.com/makkenzo/license-admin-console/internal/ierr"
	"github.com/makkenzo/license-admin-console/internal/service"
	"go.uber.org/zap"
)

// LicenseHandler serves the form posts of the licenses tab. Every action
// ends in a redirect to the console; failures surface as the tab's banner.
type LicenseHandler struct {
	views  *Views
	logger *zap.Logger
}

func NewLicenseHandler(views *Views, logger *zap.Logger) *LicenseHandler {
	return &LicenseHandler{
		views:  views,
		logger: logger.Named("LicenseHandler"),
	}
}

func (h *LicenseHandler) Create(c *gin.Context) {
	h.focus()

	var req license.CreateRequest
	if err := c.ShouldBind(&req); err != nil {
		h.logger.Warn("Failed to bind create form", zap.Error(err))
		h.views.Licenses.KeepCreateDraft(req)
		h.views.Reporter.Report(service.ViewLicenses, middleware.FormError(err))
		h.backToConsole(c)
		return
	}

	err := h.views.Licenses.Create(c.Request.Context(), req)
	if endSessionOnUnauthorized(c, h.views, err) {
		return
	}
	h.backToConsole(c)
}

func (h *LicenseHandler) Details(c *gin.Context) {
	h.open(c, h.views.Licenses.OpenDetails)
}

func (h *LicenseHandler) Edit(c *gin.Context) {
	h.open(c, h.views.Licenses.OpenEdit)
}

func (h *LicenseHandler) Update(c *gin.Context) {
	h.focus()
	key := c.Param("key")

	var req license.UpdateRequest
	if err := c.ShouldBind(&req); err != nil {
		h.logger.Warn("Failed to bind edit form", zap.String("key", key), zap.Error(err))
		h.views.Licenses.KeepEditDraft(key, req)
		h.views.Reporter.Report(service.ViewLicenses, middleware.FormError(err))
		h.backToConsole(c)
		return
	}

	err := h.views.Licenses.Update(c.Request.Context(), key, req)
	if endSessionOnUnauthorized(c, h.views, err) {
		return
	}
	h.backToConsole(c)
}

func (h *LicenseHandler) Revoke(c *gin.Context) {
	h.destroy(c, h.views.Licenses.Revoke)
}

func (h *LicenseHandler) Delete(c *gin.Context) {
	h.destroy(c, h.views.Licenses.Delete)
}

func (h *LicenseHandler) open(c *gin.Context, openFn func(key string) error) {
	h.focus()
	key := c.Param("key")
	ctx := c.Request.Context()

	err := h.views.Licenses.EnsureLoaded(ctx)
	if endSessionOnUnauthorized(c, h.views, err) {
		return
	}
	if err == nil {
		if err := openFn(key); err != nil {
			h.logger.Info("License not in the loaded list", zap.String("key", key))
			h.views.Reporter.Report(service.ViewLicenses, err)
		}
	}
	h.backToConsole(c)
}

func (h *LicenseHandler) destroy(c *gin.Context, fn func(ctx context.Context, key string, confirmed bool) error) {
	h.focus()
	key := c.Param("key")

	var req dto.ConfirmRequest
	_ = c.ShouldBind(&req)

	err := fn(c.Request.Context(), key, req.Confirmed())
	if errors.Is(err, ierr.ErrNotConfirmed) {
		h.logger.Warn("Destructive action without confirmation", zap.String("key", key), zap.String("path", c.FullPath()))
		h.views.Reporter.Report(service.ViewLicenses, err)
	}
	if endSessionOnUnauthorized(c, h.views, err) {
		return
	}
	h.backToConsole(c)
}

// focus makes the licenses tab current so the redirect lands on it.
func (h *LicenseHandler) focus() {
	if err := h.views.Navigator.Select(service.TabLicenses); err != nil {
		h.logger.Error("Failed to select licenses tab", zap.Error(err))
	}
}

func (h *LicenseHandler) backToConsole(c *gin.Context) {
	status := http.StatusSeeOther
	if c.Request.Method == http.MethodGet {
		status = http.StatusFound
	}
	c.Redirect(status, "/")
}
