package pluginhost

import (
	"context"
	"sync"

	"github.com/bassaes67/engine/shared"
)

// Registry is the process-wide scheme-plugin table. The first caller to
// GlobalRegistry wins construction; every subsequent caller shares the
// same instance. Teardown is refcounted: the registry and its openers are
// dropped only when the last owner calls ReleaseGlobalRegistry. It does
// not own or close any clock or socket.
type Registry struct {
	mu       sync.Mutex
	openers  map[string]Opener
	refcount int
	initDone bool
}

var (
	globalMu  sync.Mutex
	global    *Registry
)

// GlobalRegistry returns the process-wide registry, constructing it on
// first call. Every call past the first is a no-op that just bumps the
// refcount.
func GlobalRegistry() *Registry {
	globalMu.Lock()
	defer globalMu.Unlock()
	if global == nil {
		global = &Registry{openers: make(map[string]Opener)}
	}
	global.mu.Lock()
	global.refcount++
	global.initDone = true
	global.mu.Unlock()
	return global
}

// ReleaseGlobalRegistry decrements the refcount; the registry and its
// registered openers are dropped once the last owner releases.
func ReleaseGlobalRegistry() {
	globalMu.Lock()
	defer globalMu.Unlock()
	if global == nil {
		return
	}
	global.mu.Lock()
	global.refcount--
	empty := global.refcount <= 0
	global.mu.Unlock()
	if empty {
		global = nil
	}
}

// Register adds a scheme opener. Re-registering the same scheme replaces
// the prior opener (useful for tests swapping in fakes).
func (r *Registry) Register(o Opener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.openers[o.Scheme()] = o
}

// Open dispatches rawURL to the opener registered for scheme; the scheme
// is not derived from rawURL.
func (r *Registry) Open(ctx context.Context, scheme, rawURL string, pull PullCallback) (Stream, error) {
	r.mu.Lock()
	if !r.initDone {
		r.mu.Unlock()
		return nil, shared.ErrRegistryNotInit
	}
	opener, ok := r.openers[scheme]
	r.mu.Unlock()
	if !ok {
		return nil, shared.ErrInvalidScheme
	}
	return opener.Open(ctx, rawURL, pull)
}

// Refcount reports the current owner count, for diagnostics/tests.
func (r *Registry) Refcount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.refcount
}
