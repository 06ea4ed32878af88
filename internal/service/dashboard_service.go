package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/makkenzo/license-admin-console/internal/domain/license"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	recentLicenses = 5
	recentKeyWidth = 12
)

type DashboardState struct {
	Loaded   bool
	Stats    license.Stats
	Licenses []license.License
}

// DashboardService backs the overview tab: the stats cards and the most
// recently created licenses.
type DashboardService struct {
	licenses LicenseAPI
	stats    StatsAPI
	reporter Reporter
	logger   *zap.Logger

	guard loadGuard
	mu    sync.RWMutex
	state DashboardState
}

func NewDashboardService(licenses LicenseAPI, stats StatsAPI, reporter Reporter, logger *zap.Logger) *DashboardService {
	return &DashboardService{
		licenses: licenses,
		stats:    stats,
		reporter: reporter,
		logger:   logger.Named("DashboardService"),
	}
}

// Load fetches stats and the license list concurrently. Nothing is applied
// unless both succeed.
func (s *DashboardService) Load(ctx context.Context) error {
	gen := s.guard.begin()

	var (
		stats license.Stats
		list  []license.License
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats, err = s.stats.GetStats(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		list, err = s.licenses.ListLicenses(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return s.fail(gen, err)
	}

	applied := s.guard.apply(gen, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.state = DashboardState{Loaded: true, Stats: stats, Licenses: list}
	})
	if !applied {
		s.logger.Debug("Dropping stale dashboard data", zap.Uint64("generation", gen))
	}
	return nil
}

func (s *DashboardService) EnsureLoaded(ctx context.Context) error {
	s.mu.RLock()
	loaded := s.state.Loaded
	s.mu.RUnlock()
	if loaded {
		return nil
	}
	return s.Load(ctx)
}

func (s *DashboardService) Reset() {
	s.guard.invalidate()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = DashboardState{}
}

func (s *DashboardService) Snapshot() DashboardState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.state
	st.Licenses = append([]license.License(nil), s.state.Licenses...)
	return st
}

// Recent returns up to five licenses, newest created first, with their
// derived status.
func (s *DashboardService) Recent(now time.Time, loc *time.Location) []LicenseRow {
	s.mu.RLock()
	list := RecentLicenses(s.state.Licenses, recentLicenses)
	s.mu.RUnlock()

	rows := make([]LicenseRow, len(list))
	for i, l := range list {
		rows[i] = NewLicenseRow(l, now, recentKeyWidth, DateLayout, loc)
	}
	return rows
}

// RecentLicenses sorts a copy of list by created_at descending and keeps the
// first n. Records without a valid created_at sort last and keep their
// relative order.
func RecentLicenses(list []license.License, n int) []license.License {
	sorted := append([]license.License(nil), list...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].CreatedAt, sorted[j].CreatedAt
		if a.Valid != b.Valid {
			return a.Valid
		}
		return a.Valid && a.Time.After(b.Time)
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// fail reports err unless the load was superseded, in which case the failure
// is dropped like a stale result.
func (s *DashboardService) fail(gen uint64, err error) error {
	reported := s.guard.apply(gen, func() { s.reporter.Report(ViewDashboard, err) })
	if !reported {
		s.logger.Debug("Dropping stale dashboard failure", zap.Uint64("generation", gen), zap.Error(err))
		return nil
	}
	return err
}
