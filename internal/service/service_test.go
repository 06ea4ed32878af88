package service

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/makkenzo/license-admin-console/internal/apiclient"
	"github.com/makkenzo/license-admin-console/internal/devapi"
	"github.com/makkenzo/license-admin-console/internal/domain/activity"
	"github.com/makkenzo/license-admin-console/internal/domain/license"
	"github.com/makkenzo/license-admin-console/internal/ierr"
	"github.com/makkenzo/license-admin-console/internal/storage/memstorage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const (
	adminUser = "admin"
	adminPass = "s3cret"
)

type testEnv struct {
	api      *devapi.Server
	client   *apiclient.Client
	tokens   *memstorage.TokenStore
	reporter *LogReporter
	// rejectCreate makes the remote answer create with success=false.
	rejectCreate atomic.Bool
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zaptest.NewLogger(t)

	api, err := devapi.New(devapi.Options{AdminUsername: adminUser, AdminPassword: adminPass}, logger)
	require.NoError(t, err)

	env := &testEnv{api: api, tokens: memstorage.NewTokenStore(), reporter: NewLogReporter(logger)}

	handler := api.Handler("/api")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if env.rejectCreate.Load() && r.Method == http.MethodPost && r.URL.Path == "/api/admin/licenses" {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"success":false,"message":"license quota exceeded"}`))
			return
		}
		handler.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	env.client = apiclient.New(apiclient.Config{BaseURL: srv.URL + "/api", Timeout: 5 * time.Second}, env.tokens, logger)
	return env
}

func (e *testEnv) login(t *testing.T) {
	t.Helper()
	token, err := e.client.Login(context.Background(), adminUser, adminPass)
	require.NoError(t, err)
	require.NoError(t, e.tokens.SetToken(context.Background(), token))
}

func TestSessionService_LoginPersistsToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	sess := NewSessionService(env.client, env.tokens, NewNavigator(), env.reporter, zaptest.NewLogger(t))

	assert.Equal(t, StateUnauthenticated, sess.Start(ctx))

	require.NoError(t, sess.Authenticate(ctx, adminUser, adminPass))
	assert.True(t, sess.IsAuthenticated())

	token, err := env.tokens.Token(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	// A restart with the stored token validates it against the API.
	restarted := NewSessionService(env.client, env.tokens, NewNavigator(), env.reporter, zaptest.NewLogger(t))
	assert.Equal(t, StateAuthenticated, restarted.Start(ctx))
}

func TestSessionService_WrongPassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	sess := NewSessionService(env.client, env.tokens, NewNavigator(), env.reporter, zaptest.NewLogger(t))

	err := sess.Authenticate(ctx, adminUser, "nope")
	require.Error(t, err)
	assert.ErrorIs(t, err, ierr.ErrUnauthorized)
	assert.False(t, sess.IsAuthenticated())
	assert.Equal(t, err, env.reporter.Take(ViewSession))

	token, _ := env.tokens.Token(ctx)
	assert.Empty(t, token)
}

func TestSessionService_StartWithRejectedTokenClearsIt(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.tokens.SetToken(ctx, "stale-token"))

	sess := NewSessionService(env.client, env.tokens, NewNavigator(), env.reporter, zaptest.NewLogger(t))
	assert.Equal(t, StateUnauthenticated, sess.Start(ctx))

	token, err := env.tokens.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)
	assert.NoError(t, env.reporter.Take(ViewSession))
}

func TestSessionService_LogoutResetsNavigation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.login(t)

	nav := NewNavigator()
	licenses := NewLicenseService(env.client, env.reporter, zaptest.NewLogger(t))
	nav.Register(TabLicenses, licenses)

	sess := NewSessionService(env.client, env.tokens, nav, env.reporter, zaptest.NewLogger(t))
	require.Equal(t, StateAuthenticated, sess.Start(ctx))
	require.NoError(t, nav.Select(TabLicenses))
	require.NoError(t, licenses.Load(ctx))
	require.True(t, licenses.Snapshot().Loaded)

	require.NoError(t, sess.Logout(ctx))
	assert.False(t, sess.IsAuthenticated())
	assert.Equal(t, DefaultTab, nav.Current())
	assert.False(t, licenses.Snapshot().Loaded)

	token, _ := env.tokens.Token(ctx)
	assert.Empty(t, token)
}

func TestLicenseService_CreateThenReload(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.login(t)

	svc := NewLicenseService(env.client, env.reporter, zaptest.NewLogger(t))
	require.NoError(t, svc.Load(ctx))
	assert.Empty(t, svc.Snapshot().Licenses)

	svc.OpenCreate()
	err := svc.Create(ctx, license.CreateRequest{UserName: "Bob", UserEmail: "bob@x.io", DurationDays: 30})
	require.NoError(t, err)

	st := svc.Snapshot()
	require.Len(t, st.Licenses, 1)
	assert.Equal(t, "bob@x.io", st.Licenses[0].UserEmail)
	assert.Equal(t, ModalNone, st.Modal)

	rows := svc.Rows(time.Now(), time.UTC)
	require.Len(t, rows, 1)
	assert.Equal(t, license.StatusActive, rows[0].Status)
	assert.Equal(t, "Active", rows[0].StatusLabel)
	assert.Len(t, rows[0].ShortKey, 16+len("..."))
}

func TestLicenseService_CreateRejectedKeepsModal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.login(t)

	svc := NewLicenseService(env.client, env.reporter, zaptest.NewLogger(t))
	require.NoError(t, svc.Create(ctx, license.CreateRequest{UserName: "Ann", UserEmail: "ann@x.io", DurationDays: 10}))
	before := svc.Snapshot().Licenses

	env.rejectCreate.Store(true)
	svc.OpenCreate()
	draft := license.CreateRequest{UserName: "Bob", UserEmail: "bob@x.io", DurationDays: 30, Notes: "trial"}
	err := svc.Create(ctx, draft)
	require.Error(t, err)

	var apiErr *apiclient.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "license quota exceeded", apiErr.Message)

	st := svc.Snapshot()
	assert.Equal(t, before, st.Licenses)
	assert.Equal(t, ModalCreate, st.Modal)
	assert.Equal(t, draft, st.CreateDraft)
	assert.Equal(t, err, env.reporter.Take(ViewLicenses))
}

func TestLicenseService_EditRevokeDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.login(t)

	svc := NewLicenseService(env.client, env.reporter, zaptest.NewLogger(t))
	require.NoError(t, svc.Create(ctx, license.CreateRequest{UserName: "Ann", UserEmail: "ann@x.io", DurationDays: 10, Notes: "first"}))
	key := svc.Snapshot().Licenses[0].LicenseKey

	require.NoError(t, svc.OpenEdit(key))
	st := svc.Snapshot()
	assert.Equal(t, ModalEdit, st.Modal)
	assert.Equal(t, license.UpdateRequest{UserEmail: "ann@x.io", UserName: "Ann", Notes: "first", IsActive: true}, st.EditDraft)

	draft := st.EditDraft
	draft.UserName = "Ann Lee"
	require.NoError(t, svc.Update(ctx, key, draft))
	assert.Equal(t, "Ann Lee", svc.Snapshot().Licenses[0].UserName)

	require.NoError(t, svc.Revoke(ctx, key, true))
	assert.Equal(t, license.StatusRevoked, license.DeriveStatus(svc.Snapshot().Licenses[0], time.Now()))

	require.NoError(t, svc.Delete(ctx, key, true))
	assert.Empty(t, svc.Snapshot().Licenses)

	assert.ErrorIs(t, svc.OpenDetails(key), ierr.ErrNotFound)
}

func TestLicenseService_FilterRows(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.login(t)

	svc := NewLicenseService(env.client, env.reporter, zaptest.NewLogger(t))
	require.NoError(t, svc.Create(ctx, license.CreateRequest{UserName: "Ann", UserEmail: "ann@x.io", DurationDays: 10}))
	require.NoError(t, svc.Create(ctx, license.CreateRequest{UserName: "Bob", UserEmail: "bob@x.io", DurationDays: 10}))

	svc.SetFilter("BOB", license.StatusAll)
	rows := svc.Rows(time.Now(), time.UTC)
	require.Len(t, rows, 1)
	assert.Equal(t, "Bob", rows[0].License.UserName)

	svc.SetFilter("", license.StatusRevoked)
	assert.Empty(t, svc.Rows(time.Now(), time.UTC))
}

type fakeLicenseAPI struct {
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
	list    []license.License
	listErr error
}

func (f *fakeLicenseAPI) ListLicenses(ctx context.Context) ([]license.License, error) {
	f.calls.Add(1)
	if f.started != nil {
		f.started <- struct{}{}
		<-f.release
	}
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.list, nil
}

func (f *fakeLicenseAPI) CreateLicense(ctx context.Context, req license.CreateRequest) (*license.License, error) {
	f.calls.Add(1)
	return nil, nil
}

func (f *fakeLicenseAPI) UpdateLicense(ctx context.Context, key string, req license.UpdateRequest) error {
	f.calls.Add(1)
	return nil
}

func (f *fakeLicenseAPI) RevokeLicense(ctx context.Context, key string) error {
	f.calls.Add(1)
	return nil
}

func (f *fakeLicenseAPI) DeleteLicense(ctx context.Context, key string) error {
	f.calls.Add(1)
	return nil
}

func TestLicenseService_StaleLoadDropped(t *testing.T) {
	api := &fakeLicenseAPI{
		started: make(chan struct{}),
		release: make(chan struct{}),
		list:    []license.License{{LicenseKey: "LATE"}},
	}
	svc := NewLicenseService(api, NewLogReporter(zaptest.NewLogger(t)), zaptest.NewLogger(t))

	done := make(chan error, 1)
	go func() { done <- svc.Load(context.Background()) }()

	<-api.started
	svc.Reset()
	close(api.release)
	require.NoError(t, <-done)

	st := svc.Snapshot()
	assert.False(t, st.Loaded)
	assert.Empty(t, st.Licenses)
}

func TestLicenseService_StaleFailureDropped(t *testing.T) {
	api := &fakeLicenseAPI{
		started: make(chan struct{}),
		release: make(chan struct{}),
		listErr: fmt.Errorf("%w: failed to fetch licenses", ierr.ErrRemote),
	}
	reporter := NewLogReporter(zaptest.NewLogger(t))
	svc := NewLicenseService(api, reporter, zaptest.NewLogger(t))

	done := make(chan error, 1)
	go func() { done <- svc.Load(context.Background()) }()

	<-api.started
	svc.Reset()
	close(api.release)
	require.NoError(t, <-done)

	assert.Nil(t, reporter.Take(ViewLicenses))
	assert.False(t, svc.Snapshot().Loaded)
}

func TestLicenseService_CurrentFailureReported(t *testing.T) {
	api := &fakeLicenseAPI{listErr: fmt.Errorf("%w: failed to fetch licenses", ierr.ErrRemote)}
	reporter := NewLogReporter(zaptest.NewLogger(t))
	svc := NewLicenseService(api, reporter, zaptest.NewLogger(t))

	err := svc.Load(context.Background())
	require.ErrorIs(t, err, ierr.ErrRemote)
	assert.Equal(t, err, reporter.Take(ViewLicenses))
}

func TestLicenseService_DestructiveNeedsConfirmation(t *testing.T) {
	api := &fakeLicenseAPI{}
	svc := NewLicenseService(api, NewLogReporter(zaptest.NewLogger(t)), zaptest.NewLogger(t))

	assert.ErrorIs(t, svc.Revoke(context.Background(), "KEY", false), ierr.ErrNotConfirmed)
	assert.ErrorIs(t, svc.Delete(context.Background(), "KEY", false), ierr.ErrNotConfirmed)
	assert.Zero(t, api.calls.Load())
}

func TestDashboardService_Recent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.login(t)

	svc := NewLicenseService(env.client, env.reporter, zaptest.NewLogger(t))
	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		require.NoError(t, svc.Create(ctx, license.CreateRequest{UserName: name, UserEmail: name + "@x.io", DurationDays: 5}))
	}

	dash := NewDashboardService(env.client, env.client, env.reporter, zaptest.NewLogger(t))
	require.NoError(t, dash.EnsureLoaded(ctx))

	st := dash.Snapshot()
	assert.Equal(t, int64(7), st.Stats.TotalLicenses)
	assert.Equal(t, int64(7), st.Stats.ActiveLicenses)

	recent := dash.Recent(time.Now(), time.UTC)
	assert.Len(t, recent, 5)
	for _, r := range recent {
		assert.Equal(t, license.StatusActive, r.Status)
	}
}

func TestRecentLicenses_SortsByCreatedAt(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	list := []license.License{
		{LicenseKey: "old", CreatedAt: license.NewTimestamp(base)},
		{LicenseKey: "none"},
		{LicenseKey: "new", CreatedAt: license.NewTimestamp(base.AddDate(0, 1, 0))},
		{LicenseKey: "mid", CreatedAt: license.NewTimestamp(base.AddDate(0, 0, 10))},
	}

	got := RecentLicenses(list, 3)
	require.Len(t, got, 3)
	assert.Equal(t, "new", got[0].LicenseKey)
	assert.Equal(t, "mid", got[1].LicenseKey)
	assert.Equal(t, "old", got[2].LicenseKey)
	assert.Equal(t, "old", list[0].LicenseKey)
}

func TestDashboardService_FailureKeepsState(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	dash := NewDashboardService(env.client, env.client, env.reporter, zaptest.NewLogger(t))
	err := dash.Load(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ierr.ErrUnauthorized)
	assert.False(t, dash.Snapshot().Loaded)
	assert.NotNil(t, env.reporter.Take(ViewDashboard))
	assert.Nil(t, env.reporter.Take(ViewDashboard))
}

func TestStatsService_Summary(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.login(t)

	now := time.Now().UTC()
	env.api.AppendLog(activity.Entry{Action: activity.ActionValidate, LicenseKey: "LIC-OLD-ENTRY-KEY", Success: true, Timestamp: now.AddDate(0, 0, -8).Format(time.RFC3339)})

	licenses := NewLicenseService(env.client, env.reporter, zaptest.NewLogger(t))
	require.NoError(t, licenses.Create(ctx, license.CreateRequest{UserName: "Ann", UserEmail: "ann@x.io", DurationDays: 5}))

	svc := NewStatsService(env.client, env.reporter, zaptest.NewLogger(t))
	require.NoError(t, svc.Load(ctx))

	week := svc.Summary(activity.Range7Days, now, time.UTC)
	assert.Equal(t, 1, week.Summary.Total)
	assert.Equal(t, 1, week.Summary.Counts.Creations)
	assert.Equal(t, 100, week.ActiveRatio)
	assert.Len(t, week.Recent, 2)
	assert.Equal(t, "LIC-OLD-ENTR...", week.Recent[1].ShortKey)

	month := svc.Summary(activity.Range30Days, now, time.UTC)
	assert.Equal(t, 2, month.Summary.Total)
	assert.Equal(t, 1, month.Summary.Counts.Validations)
}

func TestStatsService_RecentCapped(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.login(t)

	now := time.Now().UTC()
	for i := range 15 {
		env.api.AppendLog(activity.Entry{
			Action:     activity.ActionValidate,
			LicenseKey: fmt.Sprintf("LIC-%02d", i),
			Success:    true,
			Timestamp:  now.Add(-time.Duration(i) * time.Minute).Format(time.RFC3339),
		})
	}

	svc := NewStatsService(env.client, env.reporter, zaptest.NewLogger(t))
	require.NoError(t, svc.Load(ctx))

	report := svc.Summary(activity.Range7Days, now, time.UTC)
	assert.Equal(t, 15, report.Summary.Total)
	assert.Len(t, report.Recent, 10)
}

func TestStatsService_ResetClearsState(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	svc := NewStatsService(env.client, env.reporter, zaptest.NewLogger(t))
	require.NoError(t, svc.Load(context.Background()))
	require.True(t, svc.Snapshot().Loaded)

	svc.Reset()
	st := svc.Snapshot()
	assert.False(t, st.Loaded)
	assert.True(t, svc.Summary(activity.Range7Days, time.Now(), time.UTC).Summary.NoData)
}

func TestNavigator_SelectResetsPreviousView(t *testing.T) {
	nav := NewNavigator()
	api := &fakeLicenseAPI{list: []license.License{{LicenseKey: "K"}}}
	licenses := NewLicenseService(api, NewLogReporter(zaptest.NewLogger(t)), zaptest.NewLogger(t))
	nav.Register(TabLicenses, licenses)

	require.NoError(t, nav.Select(TabLicenses))
	require.NoError(t, licenses.Load(context.Background()))
	require.NoError(t, nav.Select(TabStats))
	assert.False(t, licenses.Snapshot().Loaded)

	assert.ErrorIs(t, nav.Select("billing"), ierr.ErrValidation)
	assert.Equal(t, TabStats, nav.Current())
}
