package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/makkenzo/license-admin-console/internal/apiclient"
	"github.com/makkenzo/license-admin-console/internal/config"
	"github.com/makkenzo/license-admin-console/internal/ierr"
	"github.com/makkenzo/license-admin-console/internal/service"
	"github.com/makkenzo/license-admin-console/internal/storage/filestore"
	"github.com/makkenzo/license-admin-console/pkg/logger"
	"go.uber.org/zap"
)

const DefaultBaseURL = config.DefaultAPIBaseURL

type CLI struct {
	Login     LoginCmd     `cmd:"" help:"Log in and store the admin token"`
	Logout    LogoutCmd    `cmd:"" help:"Forget the stored admin token"`
	Status    StatusCmd    `cmd:"" help:"Check whether the stored token is still accepted"`
	Licenses  LicensesCmd  `cmd:"" help:"Manage licenses"`
	Stats     StatsCmd     `cmd:"" help:"Show activity statistics"`
	Dashboard DashboardCmd `cmd:"" help:"Show the overview: totals and recent licenses"`

	APIURL     string        `name:"api-url" help:"License API base URL" default:"${defaultBaseURL}" env:"LICENSE_API_URL"`
	SessionDir string        `help:"Directory holding the stored session" env:"LICENSE_ADMIN_SESSION_DIR"`
	Timeout    time.Duration `help:"Request timeout" default:"30s"`
	Timezone   string        `help:"Timezone for dates, e.g. Europe/Berlin" default:"Local"`
	Debug      bool          `help:"Enable debug logging."`
	Version    kong.VersionFlag
}

func (c *CLI) Globals(version string) *Globals {
	return &Globals{
		APIURL:     c.APIURL,
		SessionDir: c.SessionDir,
		Timeout:    c.Timeout,
		Timezone:   c.Timezone,
		Debug:      c.Debug,
		Version:    version,
	}
}

type Globals struct {
	APIURL     string
	SessionDir string
	Timeout    time.Duration
	Timezone   string
	Debug      bool
	Version    string

	// Out receives command output; stdout when nil.
	Out io.Writer
	// Now overrides the clock for status derivation.
	Now func() time.Time
}

// env is the per-invocation wiring shared by every command.
type env struct {
	out       io.Writer
	now       func() time.Time
	loc       *time.Location
	logger    *zap.Logger
	client    *apiclient.Client
	reporter  *service.LogReporter
	session   *service.SessionService
	dashboard *service.DashboardService
	licenses  *service.LicenseService
	stats     *service.StatsService
}

func newEnv(g *Globals) (*env, error) {
	level := "warn"
	if g.Debug {
		level = "debug"
	}
	log, err := logger.NewZapLogger(level)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	tokens, err := filestore.NewTokenStore(g.SessionDir, log)
	if err != nil {
		return nil, err
	}

	baseURL := g.APIURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	client := apiclient.New(apiclient.Config{BaseURL: baseURL, Timeout: g.Timeout}, tokens, log)

	e := &env{
		out:      g.Out,
		now:      g.Now,
		loc:      config.DisplayConfig{Timezone: g.Timezone}.Location(),
		logger:   log,
		client:   client,
		reporter: service.NewLogReporter(log),
	}
	if e.out == nil {
		e.out = os.Stdout
	}
	if e.now == nil {
		e.now = time.Now
	}
	e.session = service.NewSessionService(client, tokens, nil, e.reporter, log)
	e.dashboard = service.NewDashboardService(client, client, e.reporter, log)
	e.licenses = service.NewLicenseService(client, e.reporter, log)
	e.stats = service.NewStatsService(client, e.reporter, log)
	return e, nil
}

// requireSession validates the stored token the way the console does at
// startup.
func (e *env) requireSession(ctx context.Context) error {
	if e.session.Start(ctx) != service.StateAuthenticated {
		return fmt.Errorf("%w: run `licensectl login` first", ierr.ErrNotAuthenticated)
	}
	return nil
}

func (e *env) printf(format string, args ...any) {
	fmt.Fprintf(e.out, format, args...)
}
