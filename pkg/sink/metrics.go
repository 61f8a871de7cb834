package sink

import "github.com/prometheus/client_golang/prometheus"

// Metrics for the ingestion sink. A nil *Metrics records nothing.
type Metrics struct {
	Received      *prometheus.CounterVec
	Rejected      *prometheus.CounterVec
	Tiles         prometheus.Counter
	Subscribers   prometheus.Gauge
	DroppedFrames prometheus.Counter
}

// NewMetrics creates the sink metrics and registers them on reg when reg
// is not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Received: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sink_signals_received_total",
				Help: "Signals accepted by the sink",
			},
			[]string{"platform"},
		),
		Rejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sink_signals_rejected_total",
				Help: "Signals rejected by the sink",
			},
			[]string{"reason"},
		),
		Tiles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sink_tiles_received_total",
			Help: "Content tiles carried by accepted signals",
		}),
		Subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sink_stream_subscribers",
			Help: "Connected live stream subscribers",
		}),
		DroppedFrames: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sink_stream_dropped_frames_total",
			Help: "Stream frames dropped for slow subscribers",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.Received, m.Rejected, m.Tiles, m.Subscribers, m.DroppedFrames)
	}
	return m
}

func (m *Metrics) received(platform string, tiles int) {
	if m == nil {
		return
	}
	m.Received.WithLabelValues(platform).Inc()
	m.Tiles.Add(float64(tiles))
}

func (m *Metrics) rejected(reason string) {
	if m != nil {
		m.Rejected.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) setSubscribers(n int) {
	if m != nil {
		m.Subscribers.Set(float64(n))
	}
}

func (m *Metrics) droppedFrame() {
	if m != nil {
		m.DroppedFrames.Inc()
	}
}
