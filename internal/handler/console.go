package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/makkenzo/license-admin-console/internal/domain/activity"
	"github.com/makkenzo/license-admin-console/internal/domain/license"
	"github.com/makkenzo/license-admin-console/internal/handler/dto"
	"github.com/makkenzo/license-admin-console/internal/service"
	"go.uber.org/zap"
)

// Views bundles the view-models and collaborators shared by the console
// handlers.
type Views struct {
	Session   *service.SessionService
	Navigator *service.Navigator
	Dashboard *service.DashboardService
	Licenses  *service.LicenseService
	Stats     *service.StatsService
	Reporter  *service.LogReporter
	Clock     func() time.Time
	Location  *time.Location
}

func (v *Views) now() time.Time {
	if v.Clock == nil {
		return time.Now()
	}
	return v.Clock()
}

type viewLoader interface {
	Load(ctx context.Context) error
	EnsureLoaded(ctx context.Context) error
}

func load(ctx context.Context, v viewLoader, refresh bool) error {
	if refresh {
		return v.Load(ctx)
	}
	return v.EnsureLoaded(ctx)
}

type ConsoleHandler struct {
	views  *Views
	logger *zap.Logger
}

func NewConsoleHandler(views *Views, logger *zap.Logger) *ConsoleHandler {
	return &ConsoleHandler{
		views:  views,
		logger: logger.Named("ConsoleHandler"),
	}
}

type indexQuery struct {
	dto.ListLicensesRequest
	dto.StatsRequest
	Modal   string `form:"modal"`
	Refresh bool   `form:"refresh"`
}

// Index renders the current tab, loading its data on first display.
func (h *ConsoleHandler) Index(c *gin.Context) {
	var q indexQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.logger.Debug("Ignoring malformed query", zap.Error(err))
	}

	ctx := c.Request.Context()
	tab := h.views.Navigator.Current()
	page := consolePage{
		Tabs:        h.views.Navigator.Tabs(),
		Current:     tab,
		CurrentName: tabName(h.views.Navigator, tab),
	}

	var (
		view string
		err  error
	)
	switch tab {
	case service.TabDashboard:
		view = service.ViewDashboard
		err = load(ctx, h.views.Dashboard, q.Refresh)
		page.Dashboard = h.dashboardPage()
	case service.TabLicenses:
		view = service.ViewLicenses
		h.applyLicenseQuery(c, q)
		err = load(ctx, h.views.Licenses, q.Refresh)
		page.Licenses = h.licensesPage()
	case service.TabStats:
		view = service.ViewStats
		rng := h.views.Stats.Range()
		if _, ok := c.GetQuery("range"); ok {
			rng = activity.ParseRange(q.Range)
		}
		changed := h.views.Stats.SetRange(rng)
		err = load(ctx, h.views.Stats, q.Refresh || changed)
		page.Stats = h.statsPage(rng)
	}

	if endSessionOnUnauthorized(c, h.views, err) {
		return
	}
	if shown := h.views.Reporter.Take(view); shown != nil {
		page.Error = shown.Error()
	}

	c.HTML(http.StatusOK, "console.html", page)
}

// Nav switches the current tab.
func (h *ConsoleHandler) Nav(c *gin.Context) {
	var req dto.NavRequest
	if err := c.ShouldBind(&req); err != nil {
		_ = c.Error(err)
		return
	}
	if err := h.views.Navigator.Select(service.Tab(req.Tab)); err != nil {
		h.logger.Warn("Rejected tab selection", zap.String("tab", req.Tab))
		_ = c.Error(err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *ConsoleHandler) applyLicenseQuery(c *gin.Context, q indexQuery) {
	_, hasSearch := c.GetQuery("search")
	_, hasStatus := c.GetQuery("status")
	if hasSearch || hasStatus {
		h.views.Licenses.SetFilter(q.Search, license.ParseStatusFilter(q.Status))
	}

	switch service.Modal(q.Modal) {
	case service.ModalCreate:
		h.views.Licenses.OpenCreate()
	case "none":
		h.views.Licenses.CloseModal()
	}
}

func (h *ConsoleHandler) dashboardPage() *dashboardPage {
	st := h.views.Dashboard.Snapshot()
	return &dashboardPage{
		Loaded: st.Loaded,
		Stats:  st.Stats,
		Recent: h.views.Dashboard.Recent(h.views.now(), h.views.Location),
	}
}

func (h *ConsoleHandler) licensesPage() *licensesPage {
	now := h.views.now()
	st := h.views.Licenses.Snapshot()
	page := &licensesPage{
		Loaded:      st.Loaded,
		Search:      st.Search,
		Status:      st.StatusFilter,
		Statuses:    statusOptions,
		Rows:        h.views.Licenses.Rows(now, h.views.Location),
		Modal:       st.Modal,
		CreateDraft: st.CreateDraft,
		EditDraft:   st.EditDraft,
	}
	if st.Selected != nil {
		page.Selected = &licenseDetails{
			Row:       service.NewLicenseRows([]license.License{*st.Selected}, now, h.views.Location)[0],
			CreatedAt: st.Selected.CreatedAt.Format(service.DateTimeLayout, h.views.Location),
			ExpiresAt: st.Selected.ExpiresAt.Format(service.DateTimeLayout, h.views.Location),
		}
	}
	return page
}

func (h *ConsoleHandler) statsPage(rng activity.Range) *statsPage {
	return &statsPage{
		Loaded: h.views.Stats.Snapshot().Loaded,
		Range:  rng,
		Ranges: activity.Ranges,
		Report: h.views.Stats.Summary(rng, h.views.now(), h.views.Location),
	}
}

func tabName(nav *service.Navigator, tab service.Tab) string {
	for _, t := range nav.Tabs() {
		if t.ID == tab {
			return t.Name
		}
	}
	return ""
}
