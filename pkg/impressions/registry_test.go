package impressions

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gh0styTongue/tubi-frontend-source-sub002/pkg/analytics"
	"github.com/Gh0styTongue/tubi-frontend-source-sub002/pkg/state"
)

func newTestRegistry() (*Registry, *[]analytics.LogEvent) {
	var events []analytics.LogEvent
	r := NewRegistry()
	r.logf = func(e analytics.LogEvent) { events = append(events, e) }
	return r, &events
}

func TestRegistry_GetBeforeInit(t *testing.T) {
	r, events := newTestRegistry()

	var m *Manager
	assert.NotPanics(t, func() { m = r.Get() })
	assert.Nil(t, m)
	require.Len(t, *events, 1)
	assert.Equal(t, analytics.LogTypeClientInfo, (*events)[0].Type)
	assert.Equal(t, "impressions", (*events)[0].Subtype)

	// The absent manager is still safe to call.
	assert.NotPanics(t, func() { m.TrackStart(tile("1", "a", 0, 0)) })
}

func TestRegistry_InitOnce(t *testing.T) {
	r, events := newTestRegistry()
	store := state.NewStore(state.State{Auth: state.Auth{DeviceID: "d"}})

	first, err := r.Init(store, &recordingBeacon{}, Options{})
	require.NoError(t, err)
	second, err := r.Init(store, &recordingBeacon{}, Options{MaxConcluded: 3})
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Same(t, first, r.Get())
	assert.Empty(t, *events)
}

func TestRegistry_InitRequiresCollaborators(t *testing.T) {
	r, _ := newTestRegistry()

	_, err := r.Init(nil, &recordingBeacon{}, Options{})
	assert.ErrorIs(t, err, ErrMissingCollaborator)
	assert.Nil(t, r.Get())
}

func TestRegistry_ResetFlushes(t *testing.T) {
	r, _ := newTestRegistry()
	clock := NewManualClock(time.Unix(0, 0))
	beacon := &recordingBeacon{}
	store := state.NewStore(state.State{Auth: state.Auth{DeviceID: "d"}})

	m, err := r.Init(store, beacon, Options{Clock: clock})
	require.NoError(t, err)
	m.TrackStart(tile("1", "a", 0, 0))
	clock.Advance(2 * time.Second)

	r.Reset()

	assert.Len(t, beacon.payloads(), 1)
	assert.Nil(t, r.Get())

	next, err := r.Init(store, beacon, Options{Clock: clock})
	require.NoError(t, err)
	assert.NotSame(t, m, next)
}

func TestRegistry_ResetEmpty(t *testing.T) {
	r, _ := newTestRegistry()
	assert.NotPanics(t, r.Reset)
}

func TestRegistry_InitializedLogsNothing(t *testing.T) {
	r, events := newTestRegistry()

	assert.False(t, r.Initialized())
	_, err := r.Init(state.NewStore(state.State{}), &recordingBeacon{}, Options{})
	require.NoError(t, err)
	assert.True(t, r.Initialized())
	assert.Empty(t, *events)

	assert.Same(t, defaultRegistry, DefaultRegistry())
}
