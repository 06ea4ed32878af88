package service

import (
	"fmt"
	"sync"

	"github.com/makkenzo/license-admin-console/internal/ierr"
)

type Tab string

const (
	TabDashboard Tab = "dashboard"
	TabLicenses  Tab = "licenses"
	TabStats     Tab = "stats"

	DefaultTab = TabDashboard
)

type TabInfo struct {
	ID   Tab
	Name string
}

var tabs = []TabInfo{
	{ID: TabDashboard, Name: "Dashboard"},
	{ID: TabLicenses, Name: "Licenses"},
	{ID: TabStats, Name: "Statistics"},
}

// Navigator is the in-memory tab selector of the console shell. Leaving a
// tab resets its view so late responses for it are dropped.
type Navigator struct {
	mu      sync.Mutex
	current Tab
	views   map[Tab]Resetter
}

func NewNavigator() *Navigator {
	return &Navigator{current: DefaultTab, views: make(map[Tab]Resetter)}
}

func (n *Navigator) Register(tab Tab, view Resetter) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.views[tab] = view
}

func (n *Navigator) Tabs() []TabInfo {
	return tabs
}

func (n *Navigator) Current() Tab {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

func (n *Navigator) Select(tab Tab) error {
	if !validTab(tab) {
		return fmt.Errorf("%w: unknown tab %q", ierr.ErrValidation, tab)
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if tab == n.current {
		return nil
	}
	if v, ok := n.views[n.current]; ok {
		v.Reset()
	}
	n.current = tab
	return nil
}

// Reset returns to the default tab and resets every registered view.
func (n *Navigator) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, v := range n.views {
		v.Reset()
	}
	n.current = DefaultTab
}

func validTab(tab Tab) bool {
	for _, t := range tabs {
		if t.ID == tab {
			return true
		}
	}
	return false
}
