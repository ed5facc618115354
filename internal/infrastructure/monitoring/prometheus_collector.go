package monitoring

import (
	"strconv"
	"time"

	"fluvid/internal/core/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusCollector records dashboard activity. It satisfies ports.MetricsRecorder.
type PrometheusCollector struct {
	loginsTotal        *prometheus.CounterVec
	registrationsTotal prometheus.Counter
	videoMutations     *prometheus.CounterVec

	jobsTotal   *prometheus.CounterVec
	jobDuration *prometheus.HistogramVec

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	websocketConnections prometheus.Gauge
}

// NewPrometheusCollector registers every metric on reg. Pass prometheus.DefaultRegisterer in production
// and a fresh registry in tests.
func NewPrometheusCollector(reg prometheus.Registerer) *PrometheusCollector {
	factory := promauto.With(reg)

	return &PrometheusCollector{
		loginsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fluvid_logins_total",
			Help: "Login attempts by result",
		}, []string{"result"}),

		registrationsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "fluvid_registrations_total",
			Help: "Accounts created through registration",
		}),

		videoMutations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fluvid_video_mutations_total",
			Help: "Video changes by action",
		}, []string{"action"}),

		jobsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fluvid_jobs_total",
			Help: "Finished background jobs by kind and final status",
		}, []string{"kind", "status"}),

		jobDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fluvid_job_duration_seconds",
			Help:    "Time from job submission to completion",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		}, []string{"kind"}),

		httpRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fluvid_http_requests_total",
			Help: "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),

		httpRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fluvid_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),

		websocketConnections: factory.NewGauge(prometheus.GaugeOpts{
			Name: "fluvid_websocket_connections",
			Help: "Open job progress WebSocket connections",
		}),
	}
}

func (p *PrometheusCollector) RecordLogin(success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	p.loginsTotal.WithLabelValues(result).Inc()
}

func (p *PrometheusCollector) RecordRegistration() {
	p.registrationsTotal.Inc()
}

func (p *PrometheusCollector) RecordJob(kind domain.JobKind, status domain.JobStatus, duration time.Duration) {
	p.jobsTotal.WithLabelValues(string(kind), string(status)).Inc()
	p.jobDuration.WithLabelValues(string(kind)).Observe(duration.Seconds())
}

func (p *PrometheusCollector) RecordVideoMutation(action string) {
	p.videoMutations.WithLabelValues(action).Inc()
}

func (p *PrometheusCollector) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	p.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	p.httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (p *PrometheusCollector) WebSocketOpened() {
	p.websocketConnections.Inc()
}

func (p *PrometheusCollector) WebSocketClosed() {
	p.websocketConnections.Dec()
}
