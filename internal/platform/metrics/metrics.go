package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the audit engine.
type Metrics struct {
	AuditsExecuted        prometheus.Counter
	StatusTransitions     *prometheus.CounterVec
	FindingsRecorded      *prometheus.CounterVec
	FindingsResolved      prometheus.Counter
	RemedialSpawned       prometheus.Counter
	RemedialClosed        prometheus.Counter
	GapAnalyses           prometheus.Counter
	GapCacheHits          prometheus.Counter
	SchedulesTriggered    prometheus.Counter
	ComplianceScore       *prometheus.GaugeVec
	RequestLatencySeconds *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		AuditsExecuted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "certus_audits_executed_total",
			Help: "Total number of audit reports created from templates.",
		}),
		StatusTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "certus_report_status_transitions_total",
			Help: "Audit report status transitions by target status.",
		}, []string{"to_status"}),
		FindingsRecorded: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "certus_findings_recorded_total",
			Help: "Findings recorded against executed procedures, by risk level.",
		}, []string{"risk_level"}),
		FindingsResolved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "certus_findings_resolved_total",
			Help: "Findings transitioned to resolved.",
		}),
		RemedialSpawned: promauto.NewCounter(prometheus.CounterOpts{
			Name: "certus_remedial_actions_spawned_total",
			Help: "Remedial actions auto-created for high and critical findings.",
		}),
		RemedialClosed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "certus_remedial_actions_closed_total",
			Help: "Remedial actions auto-closed by finding resolution.",
		}),
		GapAnalyses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "certus_gap_analyses_total",
			Help: "Gap analyses computed (cache misses included).",
		}),
		GapCacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "certus_gap_cache_hits_total",
			Help: "Gap analyses served from cache.",
		}),
		SchedulesTriggered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "certus_schedules_triggered_total",
			Help: "Recurring schedules that triggered an audit execution.",
		}),
		ComplianceScore: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "certus_compliance_score",
			Help: "Latest tracked compliance score per framework (0-100).",
		}, []string{"framework_id"}),
		RequestLatencySeconds: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "certus_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status class.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}
