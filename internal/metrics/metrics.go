package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the moderation pipeline.
// All methods are safe to call on a nil *Metrics.
type Metrics struct {
	WarningsRecorded prometheus.Counter
	WarningsCleared  prometheus.Counter
	Punishments      *prometheus.CounterVec
	AuditFailures    prometheus.Counter
	LedgerErrors     *prometheus.CounterVec
	WarnDuration     prometheus.Histogram
}

// New registers the moderation metrics on reg.
// Pass prometheus.DefaultRegisterer in production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		WarningsRecorded: f.NewCounter(prometheus.CounterOpts{
			Name: "pancymod_warnings_recorded_total",
			Help: "Total number of warnings written to the ledger",
		}),
		WarningsCleared: f.NewCounter(prometheus.CounterOpts{
			Name: "pancymod_warnings_cleared_total",
			Help: "Total number of warnings deleted by clear commands",
		}),
		Punishments: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pancymod_punishments_total",
			Help: "Automatic punishments by kind and result",
		}, []string{"kind", "result"}),
		AuditFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "pancymod_audit_failures_total",
			Help: "Audit messages that could not be delivered",
		}),
		LedgerErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pancymod_ledger_errors_total",
			Help: "Ledger failures by operation",
		}, []string{"op"}),
		WarnDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "pancymod_warn_duration_seconds",
			Help:    "End-to-end duration of the warn command (ledger + punishment)",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
	}
}

// IncrementWarningsRecorded records a successful ledger insert.
func (m *Metrics) IncrementWarningsRecorded() {
	if m == nil {
		return
	}
	m.WarningsRecorded.Inc()
}

// AddWarningsCleared records n deleted warnings.
func (m *Metrics) AddWarningsCleared(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.WarningsCleared.Add(float64(n))
}

// IncrementPunishment records one punishment attempt.
func (m *Metrics) IncrementPunishment(kind, result string) {
	if m == nil {
		return
	}
	m.Punishments.WithLabelValues(kind, result).Inc()
}

func (m *Metrics) IncrementAuditFailure() {
	if m == nil {
		return
	}
	m.AuditFailures.Inc()
}

func (m *Metrics) IncrementLedgerError(op string) {
	if m == nil {
		return
	}
	m.LedgerErrors.WithLabelValues(op).Inc()
}

// ObserveWarn records the duration of a Warn operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveWarn(start time.Time) {
	if m == nil {
		return
	}
	m.WarnDuration.Observe(time.Since(start).Seconds())
}
