package engine

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the process-wide pipeline counters. Counters only
// increase. Safe for concurrent use.
type Metrics struct {
	total       atomic.Int64
	successful  atomic.Int64
	failed      atomic.Int64
	autoRetries atomic.Int64
}

// MetricsSnapshot is a point-in-time copy of Metrics.
type MetricsSnapshot struct {
	TotalQueries      int64 `json:"total_queries"`
	SuccessfulQueries int64 `json:"successful_queries"`
	FailedQueries     int64 `json:"failed_queries"`
	AutoRetries       int64 `json:"auto_retries"`
}

// NewMetrics creates zeroed counters.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// Snapshot reads all counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		TotalQueries:      m.total.Load(),
		SuccessfulQueries: m.successful.Load(),
		FailedQueries:     m.failed.Load(),
		AutoRetries:       m.autoRetries.Load(),
	}
}

// Register exposes the counters on reg as counter funcs under the nlsql
// namespace.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	counters := []struct {
		name, help string
		value      *atomic.Int64
	}{
		{"queries_total", "Questions received.", &m.total},
		{"queries_successful_total", "Questions answered.", &m.successful},
		{"queries_failed_total", "Questions that were unsupported or failed.", &m.failed},
		{"auto_retries_total", "Sanitized retries after a failed execution.", &m.autoRetries},
	}

	for _, c := range counters {
		value := c.value
		collector := prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: "nlsql",
			Name:      c.name,
			Help:      c.help,
		}, func() float64 { return float64(value.Load()) })
		if err := reg.Register(collector); err != nil {
			return err
		}
	}
	return nil
}
