// Package navigation models the console's hard navigation: dropping every piece of in-memory
// UI state and returning to a route, the way a full page load does in a browser.
package navigation

import (
	"context"
	"sync"
)

// Navigator performs a hard navigation to route.
type Navigator interface {
	HardNavigate(ctx context.Context, route string)
}

// Func adapts a function to Navigator.
type Func func(ctx context.Context, route string)

// HardNavigate calls f.
func (f Func) HardNavigate(ctx context.Context, route string) { f(ctx, route) }

// Recorder is a Navigator that remembers every navigation. The CLI inspects it after each
// command to decide whether the session was terminated; tests use it as a probe.
type Recorder struct {
	mu     sync.Mutex
	routes []string
}

// HardNavigate records route.
func (r *Recorder) HardNavigate(ctx context.Context, route string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, route)
}

// Routes returns a copy of the recorded routes in call order.
func (r *Recorder) Routes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.routes...)
}

// Count returns the number of recorded navigations.
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.routes)
}

// Last returns the most recent route and whether any navigation happened.
func (r *Recorder) Last() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.routes) == 0 {
		return "", false
	}
	return r.routes[len(r.routes)-1], true
}
