package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the pipeline's counters. A nil *Collector is valid and
// records nothing.
type Collector struct {
	calls          *prometheus.CounterVec
	sms            *prometheus.CounterVec
	transcriptions *prometheus.CounterVec
	fallbacks      *prometheus.CounterVec
	duration       prometheus.Histogram
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Collector {
	c := &Collector{
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "receptionist_calls_total",
			Help: "Inbound calls by outcome (new, voicemail, missed, contractor_not_found, failed).",
		}, []string{"outcome"}),
		sms: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "receptionist_sms_total",
			Help: "Follow-up sms status per processed call.",
		}, []string{"status"}),
		transcriptions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "receptionist_transcription_attempts_total",
			Help: "Transcription service attempts by outcome.",
		}, []string{"outcome"}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "receptionist_extraction_fallbacks_total",
			Help: "Extractions replaced by the degraded default, by reason.",
		}, []string{"reason"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "receptionist_pipeline_duration_seconds",
			Help:    "Time from webhook receipt to response for processed calls.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 25},
		}),
	}
	reg.MustRegister(c.calls, c.sms, c.transcriptions, c.fallbacks, c.duration)
	return c
}

func (c *Collector) CallProcessed(outcome string) {
	if c != nil {
		c.calls.WithLabelValues(outcome).Inc()
	}
}

func (c *Collector) SMS(status string) {
	if c != nil {
		c.sms.WithLabelValues(status).Inc()
	}
}

func (c *Collector) TranscriptionAttempt(outcome string) {
	if c != nil {
		c.transcriptions.WithLabelValues(outcome).Inc()
	}
}

func (c *Collector) ExtractionFallback(reason string) {
	if c != nil {
		c.fallbacks.WithLabelValues(reason).Inc()
	}
}

func (c *Collector) ObservePipeline(d time.Duration) {
	if c != nil {
		c.duration.Observe(d.Seconds())
	}
}

// Handler serves the registry in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
