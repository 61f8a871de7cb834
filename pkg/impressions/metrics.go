package impressions

import "github.com/prometheus/client_golang/prometheus"

// Drop reasons.
const (
	DropShort            = "short"
	DropUnresolvedPage   = "unresolved_page"
	DropMissingDevice    = "missing_device"
	DropInvalidContentID = "invalid_content_id"
)

// Flush triggers.
const (
	TriggerTimer     = "timer"
	TriggerThreshold = "threshold"
	TriggerManual    = "manual"
	TriggerClose     = "close"
)

// Metrics counts what the manager does with impressions. A nil *Metrics
// records nothing.
type Metrics struct {
	Started   prometheus.Counter
	Concluded prometheus.Counter
	Dropped   *prometheus.CounterVec
	Flushes   *prometheus.CounterVec
	Signals   prometheus.Counter
	Active    prometheus.Gauge
}

// NewMetrics creates the impression metrics and registers them on reg
// when reg is not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Started: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "impressions_started_total",
			Help: "Impressions that started being tracked",
		}),
		Concluded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "impressions_concluded_total",
			Help: "Impressions that ended with a valid duration and were queued",
		}),
		Dropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "impressions_dropped_total",
				Help: "Impressions discarded before reaching the wire",
			},
			[]string{"reason"},
		),
		Flushes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "impressions_flushes_total",
				Help: "Flushes of the concluded queue",
			},
			[]string{"trigger"},
		),
		Signals: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "impressions_signals_sent_total",
			Help: "Signal payloads handed to the beacon transport",
		}),
		Active: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "impressions_active",
			Help: "Impressions currently on screen",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.Started, m.Concluded, m.Dropped, m.Flushes, m.Signals, m.Active)
	}
	return m
}

func (m *Metrics) started() {
	if m != nil {
		m.Started.Inc()
	}
}

func (m *Metrics) concluded() {
	if m != nil {
		m.Concluded.Inc()
	}
}

func (m *Metrics) dropped(reason string, n int) {
	if m != nil && n > 0 {
		m.Dropped.WithLabelValues(reason).Add(float64(n))
	}
}

func (m *Metrics) flushed(trigger string) {
	if m != nil {
		m.Flushes.WithLabelValues(trigger).Inc()
	}
}

func (m *Metrics) sent() {
	if m != nil {
		m.Signals.Inc()
	}
}

func (m *Metrics) setActive(n int) {
	if m != nil {
		m.Active.Set(float64(n))
	}
}
