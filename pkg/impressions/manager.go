// Package impressions tracks how long content tiles stay on screen and
// batches the valid exposures into user-signal payloads.
//
// A Manager keeps two buffers: active impressions keyed by tile identity,
// and concluded impressions waiting to be flushed. A flush happens when the
// concluded queue reaches MaxConcluded or when the debounce timer armed by
// the first pending impression fires, whichever comes first.
package impressions

import (
	"errors"
	"sync"
	"time"

	"github.com/Gh0styTongue/tubi-frontend-source-sub002/pkg/analytics"
	"github.com/Gh0styTongue/tubi-frontend-source-sub002/pkg/client"
	"github.com/Gh0styTongue/tubi-frontend-source-sub002/pkg/logger"
	"github.com/Gh0styTongue/tubi-frontend-source-sub002/pkg/state"
)

// Defaults for Options.
const (
	ValidDuration             = 1000 * time.Millisecond
	MaxConcludedImpressions   = 10
	DefaultImpressionsTimeout = 20000 * time.Millisecond
)

// ErrMissingCollaborator is returned when a manager is built without its
// state reader or beacon transport.
var ErrMissingCollaborator = errors.New("impressions: state reader and beacon are required")

// Beacon is the fire-and-forget transport signals are handed to.
type Beacon interface {
	SendBeacon(url string, body client.BeaconBody)
}

// Options tune a Manager. Zero values take the package defaults.
type Options struct {
	// Endpoint is the single-event URL payloads are sent to.
	Endpoint string
	Platform analytics.Platform

	ValidDuration time.Duration
	MaxConcluded  int
	Timeout       time.Duration

	Clock Clock
	// Pathname reports the page currently on screen.
	Pathname func() string
	// ResolvePage maps a pathname to its page object; nil drops the group.
	ResolvePage func(pathname string) analytics.PageObject
	Metrics     *Metrics
}

func (o Options) withDefaults() Options {
	if o.Platform == "" {
		o.Platform = analytics.PlatformWeb
	}
	if o.ValidDuration <= 0 {
		o.ValidDuration = ValidDuration
	}
	if o.MaxConcluded <= 0 {
		o.MaxConcluded = MaxConcludedImpressions
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultImpressionsTimeout
	}
	if o.Clock == nil {
		o.Clock = RealClock{}
	}
	if o.Pathname == nil {
		o.Pathname = func() string { return "/" }
	}
	if o.ResolvePage == nil {
		o.ResolvePage = analytics.GetPageObjectFromURL
	}
	return o
}

// Manager batches impressions and flushes them as signals. All methods are
// safe for concurrent use and are no-ops on a nil *Manager.
type Manager struct {
	store  state.Reader
	beacon Beacon
	opts   Options

	mu         sync.Mutex
	active     map[Key]*activeImpression
	concluded  []concludedImpression
	timer      Timer
	generation uint64
	closed     bool
}

// New returns a Manager reading identity from store and sending through beacon.
func New(store state.Reader, beacon Beacon, opts Options) (*Manager, error) {
	if store == nil || beacon == nil {
		return nil, ErrMissingCollaborator
	}
	return &Manager{
		store:  store,
		beacon: beacon,
		opts:   opts.withDefaults(),
		active: make(map[Key]*activeImpression),
	}, nil
}

// TrackStart starts tracking impressions that are not already active.
// The first start of a key wins; repeated starts are ignored.
func (m *Manager) TrackStart(impressions ...Impression) {
	if m == nil || len(impressions) == 0 {
		return
	}
	now := m.opts.Clock.Now()
	pathname := m.opts.Pathname()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}

	for _, imp := range impressions {
		key := imp.Key()
		if _, ok := m.active[key]; ok {
			continue
		}
		m.active[key] = &activeImpression{Impression: imp, start: now, pathname: pathname}
		m.opts.Metrics.started()
	}
	m.opts.Metrics.setActive(len(m.active))
	m.scheduleLocked()
}

// TrackEnd concludes active impressions. Those on screen for less than
// ValidDuration are dropped; ending an impression that is not active does
// nothing. Reaching MaxConcluded flushes immediately.
func (m *Manager) TrackEnd(impressions ...Impression) {
	if m == nil || len(impressions) == 0 {
		return
	}

	m.mu.Lock()
	batch, forced := m.endLocked(impressions)
	m.mu.Unlock()

	if forced {
		m.flush(batch, TriggerThreshold)
	}
}

// TrackEndAll concludes every active impression.
func (m *Manager) TrackEndAll() {
	if m == nil {
		return
	}

	m.mu.Lock()
	all := make([]Impression, 0, len(m.active))
	for _, a := range m.active {
		all = append(all, a.Impression)
	}
	batch, forced := m.endLocked(all)
	m.mu.Unlock()

	if forced {
		m.flush(batch, TriggerThreshold)
	}
}

// ProcessTick flushes now: it cancels the armed timer, sends the concluded
// queue and re-arms if work is still pending.
func (m *Manager) ProcessTick() {
	if m == nil {
		return
	}
	m.mu.Lock()
	batch := m.tickLocked()
	m.mu.Unlock()

	m.flush(batch, TriggerManual)
}

// Close concludes everything still on screen, flushes and stops the timer.
// Later calls on the manager do nothing.
func (m *Manager) Close() {
	if m == nil {
		return
	}
	m.TrackEndAll()

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	batch := m.tickLocked()
	m.closed = true
	m.cancelTimerLocked()
	m.mu.Unlock()

	m.flush(batch, TriggerClose)
}

// ActiveCount returns the number of impressions on screen.
func (m *Manager) ActiveCount() int {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.active)
}

// ConcludedCount returns the number of impressions waiting for a flush.
func (m *Manager) ConcludedCount() int {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.concluded)
}

// Armed reports whether a flush timer is pending.
func (m *Manager) Armed() bool {
	if m == nil {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.timer != nil
}

// endLocked moves matching active impressions to the concluded queue and
// reports whether the size threshold forced a flush of batch.
func (m *Manager) endLocked(impressions []Impression) (batch []concludedImpression, forced bool) {
	if m.closed || len(impressions) == 0 {
		return nil, false
	}
	now := m.opts.Clock.Now()

	for _, imp := range impressions {
		key := imp.Key()
		a, ok := m.active[key]
		if !ok {
			continue
		}
		delete(m.active, key)

		d := now.Sub(a.start)
		if d < m.opts.ValidDuration {
			m.opts.Metrics.dropped(DropShort, 1)
			logger.Debug("Impression too short", "key", key.String(), "duration_ms", d.Milliseconds())
			continue
		}
		m.concluded = append(m.concluded, concludedImpression{
			Impression: a.Impression,
			duration:   d,
			pathname:   a.pathname,
		})
		m.opts.Metrics.concluded()
	}
	m.opts.Metrics.setActive(len(m.active))

	if len(m.concluded) >= m.opts.MaxConcluded {
		return m.tickLocked(), true
	}
	m.scheduleLocked()
	return nil, false
}

// tickLocked swaps out the concluded queue and re-arms for what is left.
func (m *Manager) tickLocked() []concludedImpression {
	m.cancelTimerLocked()
	batch := m.concluded
	m.concluded = nil
	m.scheduleLocked()
	return batch
}

func (m *Manager) hasPendingLocked() bool {
	return len(m.concluded) > 0 || len(m.active) > 0
}

// scheduleLocked arms the flush timer when there is pending work and no
// timer is armed.
func (m *Manager) scheduleLocked() {
	if m.closed || m.timer != nil || !m.hasPendingLocked() {
		return
	}
	m.generation++
	gen := m.generation
	m.timer = m.opts.Clock.AfterFunc(m.opts.Timeout, func() { m.onTimer(gen) })
}

func (m *Manager) cancelTimerLocked() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

func (m *Manager) onTimer(gen uint64) {
	m.mu.Lock()
	if m.timer == nil || gen != m.generation {
		// Replaced by a forced flush while this callback was in flight.
		m.mu.Unlock()
		return
	}
	m.timer = nil
	batch := m.tickLocked()
	m.mu.Unlock()

	m.flush(batch, TriggerTimer)
}

// flush turns a swapped-out batch into payloads and hands them to the
// beacon. It never panics into the caller.
func (m *Manager) flush(batch []concludedImpression, trigger string) {
	m.opts.Metrics.flushed(trigger)
	if len(batch) == 0 {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Impressions flush failed", "trigger", trigger, "panic", r)
		}
	}()

	payloads := m.buildPayloads(batch, m.opts.Clock.Now())
	logger.Debug("Flushing impressions", "trigger", trigger, "impressions", len(batch), "payloads", len(payloads))
	for _, p := range payloads {
		m.beacon.SendBeacon(m.opts.Endpoint, client.BeaconBody{Data: p})
		m.opts.Metrics.sent()
	}
}

func (m *Manager) buildPayloads(batch []concludedImpression, sentAt time.Time) []*Payload {
	var payloads []*Payload
	for _, g := range groupImpressions(batch) {
		containers, invalid := buildContainers(g.items)
		m.opts.Metrics.dropped(DropInvalidContentID, invalid)

		st := m.store.GetState()
		platform := analytics.GetAnalyticsPlatform(m.opts.Platform)

		page := m.opts.ResolvePage(g.pathname)
		if page == nil {
			m.opts.Metrics.dropped(DropUnresolvedPage, len(g.items)-invalid)
			logger.Debug("Dropping impressions for unknown page", "pathname", g.pathname)
			continue
		}
		if st.Auth.DeviceID == "" {
			m.opts.Metrics.dropped(DropMissingDevice, len(g.items)-invalid)
			continue
		}
		if len(containers) == 0 {
			continue
		}

		p := &Payload{
			SentTimestamp:     FormatTimestamp(sentAt),
			Platform:          platform,
			DeviceID:          st.Auth.DeviceID,
			PersonalizationID: g.personalizationID,
			Containers:        containers,
			Page:              page,
		}
		if st.Auth.User != nil {
			userID := st.Auth.User.UserID
			p.UserID = &userID
		}
		payloads = append(payloads, p)
	}
	return payloads
}
