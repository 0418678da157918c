package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PipelineMetrics records detection pipeline outcomes per media kind.
type PipelineMetrics struct {
	detectDuration *prometheus.HistogramVec
	success        *prometheus.CounterVec
	failure        *prometheus.CounterVec
	violations     *prometheus.CounterVec
}

// NewPipelineMetrics registers the pipeline metrics on the provided registerer.
func NewPipelineMetrics(reg prometheus.Registerer) *PipelineMetrics {
	if reg == nil {
		return &PipelineMetrics{}
	}
	detectDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "detection_duration_seconds",
		Help:    "Duration of detection service calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pipeline_success",
		Help: "Detection pipeline runs that completed.",
	}, []string{"kind"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pipeline_failure",
		Help: "Detection pipeline runs that aborted.",
	}, []string{"kind", "reason"})
	violations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "violations_recorded",
		Help: "Violation rows persisted by the pipeline.",
	}, []string{"kind"})
	reg.MustRegister(detectDuration, success, failure, violations)
	return &PipelineMetrics{
		detectDuration: detectDuration,
		success:        success,
		failure:        failure,
		violations:     violations,
	}
}

// ObserveDetectDuration records how long a detection call took.
func (p *PipelineMetrics) ObserveDetectDuration(kind string, duration time.Duration) {
	if p == nil || p.detectDuration == nil {
		return
	}
	p.detectDuration.WithLabelValues(normalizeLabel(kind)).Observe(duration.Seconds())
}

// IncSuccess increments the completed-run counter for the media kind.
func (p *PipelineMetrics) IncSuccess(kind string) {
	if p == nil || p.success == nil {
		return
	}
	p.success.WithLabelValues(normalizeLabel(kind)).Inc()
}

// IncFailure increments the aborted-run counter for the media kind and reason.
func (p *PipelineMetrics) IncFailure(kind, reason string) {
	if p == nil || p.failure == nil {
		return
	}
	p.failure.WithLabelValues(normalizeLabel(kind), normalizeLabel(reason)).Inc()
}

// AddViolations counts violation rows written for the media kind.
func (p *PipelineMetrics) AddViolations(kind string, count int) {
	if p == nil || p.violations == nil || count <= 0 {
		return
	}
	p.violations.WithLabelValues(normalizeLabel(kind)).Add(float64(count))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
