package service

import (
	"context"
	"sync"
	"time"

	"github.com/makkenzo/license-admin-console/internal/domain/activity"
	"github.com/makkenzo/license-admin-console/internal/domain/license"
	"github.com/makkenzo/license-admin-console/internal/util"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	recentLogs  = 10
	logKeyWidth = 12
)

type StatsState struct {
	Loaded bool
	Range  activity.Range
	Stats  license.Stats
	Logs   []activity.Entry
}

// LogRow is one line of the activity table.
type LogRow struct {
	Entry    activity.Entry
	ShortKey string
	At       string
}

// StatsReport is everything the stats page renders for one window.
type StatsReport struct {
	Stats       license.Stats
	ActiveRatio int
	Summary     activity.Summary
	Recent      []LogRow
}

type StatsService struct {
	api      StatsAPI
	reporter Reporter
	logger   *zap.Logger

	guard loadGuard
	mu    sync.RWMutex
	state StatsState
}

func NewStatsService(api StatsAPI, reporter Reporter, logger *zap.Logger) *StatsService {
	return &StatsService{
		api:      api,
		reporter: reporter,
		logger:   logger.Named("StatsService"),
	}
}

// Load fetches stats and logs concurrently and applies them together.
func (s *StatsService) Load(ctx context.Context) error {
	gen := s.guard.begin()

	var (
		stats license.Stats
		logs  []activity.Entry
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats, err = s.api.GetStats(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		logs, err = s.api.GetLogs(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return s.fail(gen, err)
	}

	applied := s.guard.apply(gen, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.state.Loaded = true
		s.state.Stats = stats
		s.state.Logs = logs
	})
	if !applied {
		s.logger.Debug("Dropping stale stats data", zap.Uint64("generation", gen))
		return nil
	}

	s.logger.Debug("Stats loaded", zap.Int("log_entries", len(logs)))
	return nil
}

func (s *StatsService) EnsureLoaded(ctx context.Context) error {
	s.mu.RLock()
	loaded := s.state.Loaded
	s.mu.RUnlock()
	if loaded {
		return nil
	}
	return s.Load(ctx)
}

func (s *StatsService) Reset() {
	s.guard.invalidate()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StatsState{}
}

// Range is the window last selected on the stats page, 7days by default.
func (s *StatsService) Range() activity.Range {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return activity.ParseRange(string(s.state.Range))
}

// SetRange records the selected window and reports whether it differs from
// the previous selection, in which case the data should be refetched.
func (s *StatsService) SetRange(rng activity.Range) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := s.state.Range != rng
	s.state.Range = rng
	return changed
}

func (s *StatsService) Snapshot() StatsState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.state
	st.Logs = append([]activity.Entry(nil), s.state.Logs...)
	return st
}

// Summary aggregates the stored logs for rng. The recent table lists the
// first entries in API order regardless of the window.
func (s *StatsService) Summary(rng activity.Range, now time.Time, loc *time.Location) StatsReport {
	s.mu.RLock()
	defer s.mu.RUnlock()

	report := StatsReport{
		Stats:       s.state.Stats,
		ActiveRatio: s.state.Stats.ActiveRatio(),
		Summary:     activity.Summarize(s.state.Logs, rng, now, loc),
	}

	n := min(len(s.state.Logs), recentLogs)
	report.Recent = make([]LogRow, n)
	for i, e := range s.state.Logs[:n] {
		report.Recent[i] = LogRow{
			Entry:    e,
			ShortKey: util.TruncateKey(e.LicenseKey, logKeyWidth),
			At:       formatWireTime(e.Timestamp, loc),
		}
	}
	return report
}

func formatWireTime(raw string, loc *time.Location) string {
	at, ok := license.ParseTimestamp(raw)
	if !ok {
		return "-"
	}
	return license.NewTimestamp(at).Format(DateTimeLayout, loc)
}

// fail reports err unless the load was superseded, in which case the failure
// is dropped like a stale result.
func (s *StatsService) fail(gen uint64, err error) error {
	reported := s.guard.apply(gen, func() { s.reporter.Report(ViewStats, err) })
	if !reported {
		s.logger.Debug("Dropping stale stats failure", zap.Uint64("generation", gen), zap.Error(err))
		return nil
	}
	return err
}
