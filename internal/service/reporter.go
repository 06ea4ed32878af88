package service

import (
	"sync"

	"go.uber.org/zap"
)

// View names used when reporting errors.
const (
	ViewSession   = "session"
	ViewDashboard = "dashboard"
	ViewLicenses  = "licenses"
	ViewStats     = "stats"
)

// Reporter receives every failure a view swallows so it can be surfaced.
type Reporter interface {
	Report(view string, err error)
}

// LogReporter logs failures and keeps the last one per view until dismissed.
type LogReporter struct {
	mu     sync.Mutex
	last   map[string]error
	logger *zap.Logger
}

func NewLogReporter(logger *zap.Logger) *LogReporter {
	return &LogReporter{
		last:   make(map[string]error),
		logger: logger.Named("Reporter"),
	}
}

func (r *LogReporter) Report(view string, err error) {
	if err == nil {
		return
	}
	r.logger.Error("View operation failed", zap.String("view", view), zap.Error(err))

	r.mu.Lock()
	defer r.mu.Unlock()
	r.last[view] = err
}

// Take returns the last error of view and dismisses it.
func (r *LogReporter) Take(view string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	err := r.last[view]
	delete(r.last, view)
	return err
}

// Reset dismisses every pending error.
func (r *LogReporter) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.last)
}
