package memstorage

import (
	"sync"

	"github.com/makkenzo/license-admin-console/internal/domain/activity"
)

// ActivityLog is an append-only list of activity entries, newest first on read.
type ActivityLog struct {
	mu      sync.RWMutex
	entries []activity.Entry
}

func NewActivityLog() *ActivityLog {
	return &ActivityLog{}
}

func (l *ActivityLog) Append(e activity.Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, e)
}

func (l *ActivityLog) List() []activity.Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]activity.Entry, 0, len(l.entries))
	for i := len(l.entries) - 1; i >= 0; i-- {
		out = append(out, l.entries[i])
	}
	return out
}
