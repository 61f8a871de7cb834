package simulate

import (
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/Gh0styTongue/tubi-frontend-source-sub002/pkg/analytics"
	"github.com/Gh0styTongue/tubi-frontend-source-sub002/pkg/client"
	"github.com/Gh0styTongue/tubi-frontend-source-sub002/pkg/impressions"
	"github.com/Gh0styTongue/tubi-frontend-source-sub002/pkg/logger"
	"github.com/Gh0styTongue/tubi-frontend-source-sub002/pkg/state"
)

// Options configure a replay.
type Options struct {
	// Manager options; Clock, Pathname and Metrics are set by Run.
	Manager impressions.Options
	Store   state.Reader
	// Beacon receives every payload. Nil records payloads without sending.
	Beacon impressions.Beacon
	// Start is the virtual wall-clock time of at_ms 0.
	Start time.Time
	// Registry holds the manager for the length of the replay. Nil uses the
	// process-wide registry. It must be empty; Run resets it when done.
	Registry *impressions.Registry
}

// ErrManagerInUse is returned when the registry already holds a manager.
var ErrManagerInUse = errors.New("simulate: impressions manager already initialized")

// Report summarizes a replay.
type Report struct {
	Steps     int
	Elapsed   time.Duration
	Started   int
	Concluded int
	Payloads  []*impressions.Payload
	Dropped   map[string]int
	Flushes   map[string]int
}

// Tiles returns the number of tiles across all payloads.
func (r *Report) Tiles() int {
	n := 0
	for _, p := range r.Payloads {
		n += p.Tiles()
	}
	return n
}

// recorder keeps what the manager sends and forwards it.
type recorder struct {
	mu       sync.Mutex
	next     impressions.Beacon
	payloads []*impressions.Payload
}

func (r *recorder) SendBeacon(url string, body client.BeaconBody) {
	r.mu.Lock()
	if p, ok := body.Data.(*impressions.Payload); ok {
		r.payloads = append(r.payloads, p)
	}
	r.mu.Unlock()

	if r.next != nil {
		r.next.SendBeacon(url, body)
	}
}

// Run replays script in virtual time. Timers fire as the clock passes
// them, and the manager is closed after the last step so everything still
// buffered is flushed.
func Run(script *Script, opts Options) (*Report, error) {
	if err := script.Validate(); err != nil {
		return nil, err
	}
	start := opts.Start
	if start.IsZero() {
		start = time.Now()
	}

	clock := impressions.NewManualClock(start)
	location := analytics.NewLocation("/")
	reg := prometheus.NewRegistry()
	rec := &recorder{next: opts.Beacon}

	mopts := opts.Manager
	mopts.Clock = clock
	mopts.Pathname = location.CurrentPathname
	mopts.Metrics = impressions.NewMetrics(reg)
	if script.Platform != "" {
		mopts.Platform = analytics.ParsePlatform(script.Platform)
	}

	registry := opts.Registry
	if registry == nil {
		registry = impressions.DefaultRegistry()
	}
	if registry.Initialized() {
		return nil, ErrManagerInUse
	}
	if _, err := registry.Init(opts.Store, rec, mopts); err != nil {
		return nil, err
	}

	var elapsed time.Duration
	for _, step := range script.Steps {
		at := time.Duration(step.AtMS) * time.Millisecond
		if at > elapsed {
			clock.Advance(at - elapsed)
			elapsed = at
		}
		logger.Debug("Replaying step", "at_ms", step.AtMS, "action", step.Action, "impressions", len(step.Impressions))

		m := registry.Get()
		switch step.Action {
		case ActionStart:
			m.TrackStart(step.Impressions...)
		case ActionEnd:
			m.TrackEnd(step.Impressions...)
		case ActionEndAll:
			m.TrackEndAll()
		case ActionNavigate:
			location.SetPathname(step.Pathname)
		case ActionTick:
			m.ProcessTick()
		}
	}
	// Closes the manager, flushing what is still buffered
	registry.Reset()

	report := &Report{
		Steps:    len(script.Steps),
		Elapsed:  elapsed,
		Payloads: rec.payloads,
		Dropped:  map[string]int{},
		Flushes:  map[string]int{},
	}
	if err := report.collect(reg); err != nil {
		return nil, err
	}
	return report, nil
}

func (r *Report) collect(g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			value := int(metric.GetCounter().GetValue())
			switch mf.GetName() {
			case "impressions_started_total":
				r.Started = value
			case "impressions_concluded_total":
				r.Concluded = value
			case "impressions_dropped_total":
				r.Dropped[labelValue(metric.GetLabel(), "reason")] = value
			case "impressions_flushes_total":
				r.Flushes[labelValue(metric.GetLabel(), "trigger")] = value
			}
		}
	}
	return nil
}

func labelValue(labels []*dto.LabelPair, name string) string {
	for _, l := range labels {
		if l.GetName() == name {
			return l.GetValue()
		}
	}
	return ""
}
