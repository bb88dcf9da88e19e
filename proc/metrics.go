package proc

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the Prometheus collectors a processor instance reports its
// I/O and latency statistics (spec section 3/4.6) through. One Metrics
// value is shared by every instance in a registry; per-instance identity is
// carried by the "proc_id" and "type" labels.
type Metrics struct {
	FramesIn    *prometheus.CounterVec
	FramesOut   *prometheus.CounterVec
	BytesIn     *prometheus.CounterVec
	BytesOut    *prometheus.CounterVec
	LatencySecs *prometheus.HistogramVec
	FIFODepth   *prometheus.GaugeVec
}

// NewMetrics constructs and registers the processor runtime's collectors
// against reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		FramesIn: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "proc_frames_in_total",
			Help: "Frames accepted by SendFrame, by processor type and id.",
		}, []string{"type", "proc_id"}),
		FramesOut: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "proc_frames_out_total",
			Help: "Frames returned by RecvFrame, by processor type and id.",
		}, []string{"type", "proc_id"}),
		BytesIn: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "proc_bytes_in_total",
			Help: "Payload bytes accepted by SendFrame, by processor type and id.",
		}, []string{"type", "proc_id"}),
		BytesOut: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "proc_bytes_out_total",
			Help: "Payload bytes returned by RecvFrame, by processor type and id.",
		}, []string{"type", "proc_id"}),
		LatencySecs: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "proc_latency_seconds",
			Help:    "End-to-end PTS-to-emit latency, for processors that track it.",
			Buckets: prometheus.DefBuckets,
		}, []string{"type", "proc_id"}),
		FIFODepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "proc_fifo_depth_bytes",
			Help: "Current buf_level of a processor's input/output FIFO.",
		}, []string{"type", "proc_id", "side"}),
	}
	reg.MustRegister(m.FramesIn, m.FramesOut, m.BytesIn, m.BytesOut, m.LatencySecs, m.FIFODepth)
	return m
}
