package impressions

import (
	"sync"

	"github.com/Gh0styTongue/tubi-frontend-source-sub002/pkg/analytics"
	"github.com/Gh0styTongue/tubi-frontend-source-sub002/pkg/state"
)

// Registry holds at most one Manager. The manager is built on the first
// Init that supplies both collaborators; later calls get the same instance.
type Registry struct {
	mu       sync.Mutex
	instance *Manager
	// logf reports use before initialization.
	logf func(analytics.LogEvent)
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{logf: analytics.TrackLogging}
}

// Init returns the registry's manager, building it from store, beacon and
// opts if none exists yet.
func (r *Registry) Init(store state.Reader, beacon Beacon, opts Options) (*Manager, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.instance != nil {
		return r.instance, nil
	}
	m, err := New(store, beacon, opts)
	if err != nil {
		return nil, err
	}
	r.instance = m
	return m, nil
}

// Initialized reports whether the registry holds a manager. Unlike Get it
// logs nothing.
func (r *Registry) Initialized() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.instance != nil
}

// Get returns the manager, or nil with a diagnostic log event when Init
// has not run. Manager methods are no-ops on nil, so callers may use the
// result directly.
func (r *Registry) Get() *Manager {
	r.mu.Lock()
	m := r.instance
	r.mu.Unlock()

	if m == nil && r.logf != nil {
		r.logf(analytics.LogEvent{
			Type:    analytics.LogTypeClientInfo,
			Subtype: "impressions",
			Message: "impressions manager requested before initialization",
		})
	}
	return m
}

// Reset closes the current manager, flushing what it holds, and empties
// the registry.
func (r *Registry) Reset() {
	r.mu.Lock()
	m := r.instance
	r.instance = nil
	r.mu.Unlock()

	m.Close()
}

var defaultRegistry = NewRegistry()

// DefaultRegistry returns the process-wide registry behind Init and Get.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// Init initializes the process-wide manager.
func Init(store state.Reader, beacon Beacon, opts Options) (*Manager, error) {
	return defaultRegistry.Init(store, beacon, opts)
}

// Get returns the process-wide manager, or nil before Init.
func Get() *Manager {
	return defaultRegistry.Get()
}
