package service

import "sync"

// loadGuard tags each load with a generation. Reset bumps the generation so
// a response that was in flight when its view was left is not applied.
type loadGuard struct {
	mu  sync.Mutex
	gen uint64
}

func (g *loadGuard) begin() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.gen++
	return g.gen
}

func (g *loadGuard) invalidate() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.gen++
}

// apply runs fn only if gen is still the latest generation. fn runs under the
// guard's lock so Reset cannot interleave with it.
func (g *loadGuard) apply(gen uint64, fn func()) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if gen != g.gen {
		return false
	}
	fn()
	return true
}
