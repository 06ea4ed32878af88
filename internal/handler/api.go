package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/makkenzo/license-admin-console/internal/domain/activity"
	"github.com/makkenzo/license-admin-console/internal/domain/license"
	"github.com/makkenzo/license-admin-console/internal/handler/dto"
	"github.com/makkenzo/license-admin-console/internal/ierr"
	"github.com/makkenzo/license-admin-console/internal/service"
	"go.uber.org/zap"
)

// APIHandler is the JSON mirror of the console views. It reads the same
// view-models the HTML pages render and never mutates filter state.
type APIHandler struct {
	views  *Views
	logger *zap.Logger
}

func NewAPIHandler(views *Views, logger *zap.Logger) *APIHandler {
	return &APIHandler{
		views:  views,
		logger: logger.Named("APIHandler"),
	}
}

func (h *APIHandler) Dashboard(c *gin.Context) {
	if err := load(c.Request.Context(), h.views.Dashboard, c.Query("refresh") == "true"); err != nil {
		h.fail(c, service.ViewDashboard, err)
		return
	}

	st := h.views.Dashboard.Snapshot()
	c.JSON(http.StatusOK, dto.DashboardResponse{
		Stats:          st.Stats,
		RecentLicenses: dto.NewLicenseRowResponses(h.views.Dashboard.Recent(h.views.now(), h.views.Location)),
	})
}

func (h *APIHandler) Licenses(c *gin.Context) {
	var req dto.ListLicensesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		_ = c.Error(err)
		return
	}
	if err := load(c.Request.Context(), h.views.Licenses, c.Query("refresh") == "true"); err != nil {
		h.fail(c, service.ViewLicenses, err)
		return
	}

	now := h.views.now()
	status := license.ParseStatusFilter(req.Status)
	visible := license.Filter(h.views.Licenses.Snapshot().Licenses, req.Search, status, now)
	rows := service.NewLicenseRows(visible, now, h.views.Location)

	c.JSON(http.StatusOK, dto.LicensesResponse{
		Search:   req.Search,
		Status:   status,
		Count:    len(rows),
		Licenses: dto.NewLicenseRowResponses(rows),
	})
}

func (h *APIHandler) Stats(c *gin.Context) {
	var req dto.StatsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		_ = c.Error(err)
		return
	}
	if err := load(c.Request.Context(), h.views.Stats, c.Query("refresh") == "true"); err != nil {
		h.fail(c, service.ViewStats, err)
		return
	}

	report := h.views.Stats.Summary(activity.ParseRange(req.Range), h.views.now(), h.views.Location)
	logs := make([]dto.LogRowResponse, len(report.Recent))
	for i, r := range report.Recent {
		logs[i] = dto.LogRowResponse{
			Action:     r.Entry.Action,
			LicenseKey: r.Entry.LicenseKey,
			ShortKey:   r.ShortKey,
			Success:    r.Entry.Success,
			Timestamp:  r.Entry.Timestamp,
			At:         r.At,
			Notes:      r.Entry.Notes,
		}
	}

	c.JSON(http.StatusOK, dto.StatsResponse{
		Stats:       report.Stats,
		ActiveRatio: report.ActiveRatio,
		Summary:     report.Summary,
		RecentLogs:  logs,
	})
}

// fail hands err to the error middleware. The view's banner copy is dropped
// since the caller gets the error in the response, and a rejected token ends
// the session as it does for the HTML pages.
func (h *APIHandler) fail(c *gin.Context, view string, err error) {
	h.views.Reporter.Take(view)
	if errors.Is(err, ierr.ErrUnauthorized) {
		h.logger.Info("Remote rejected the session token, logging out")
		if logoutErr := h.views.Session.Logout(c.Request.Context()); logoutErr != nil {
			h.logger.Error("Failed to clear rejected token", zap.Error(logoutErr))
		}
	}
	_ = c.Error(err)
}
