// Package telemetry records run metrics and traces.
//
// A Recorder owns a private Prometheus registry and satisfies the observer
// interfaces of the oracle, database and production packages, so one value
// can be threaded through a run. Spans use the global OpenTelemetry tracer
// provider and are no-ops unless one is installed.
package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const namespace = "dsr"

// Outcome labels for runs, branches and queries.
const (
	OutcomeOK     = "ok"
	OutcomeError  = "error"
	OutcomeFailed = "failed"
)

// Tracer returns the named tracer from the global provider.
func Tracer(name string) trace.Tracer {
	return otel.Tracer("github.com/ConceptCodes/deep-sql-research/" + name)
}

// Recorder collects metrics for template generation runs.
// It is safe for concurrent use.
type Recorder struct {
	registry *prometheus.Registry

	runs          *prometheus.CounterVec
	runDuration   prometheus.Histogram
	oracleCalls   *prometheus.CounterVec
	oracleLatency *prometheus.HistogramVec
	queries       *prometheus.CounterVec
	queryLatency  prometheus.Histogram
	branches      *prometheus.CounterVec
	tasks         prometheus.Counter
	insights      prometheus.Counter
	stageLatency  *prometheus.HistogramVec
}

// NewRecorder registers every metric on a fresh registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Template generation runs by outcome.",
		}, []string{"outcome"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of a full generation run.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
		oracleCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "oracle_calls_total",
			Help:      "Model round trips by stage and outcome.",
		}, []string{"stage", "outcome"}),
		oracleLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "oracle_call_duration_seconds",
			Help:      "Model round trip latency by stage.",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 10),
		}, []string{"stage"}),
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "SQL queries executed by outcome.",
		}, []string{"outcome"}),
		queryLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_duration_seconds",
			Help:      "SQL query latency.",
			Buckets:   prometheus.DefBuckets,
		}),
		branches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_branches_total",
			Help:      "Search branches by outcome.",
		}, []string{"outcome"}),
		tasks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_dispatched_total",
			Help:      "Research tasks dispatched.",
		}),
		insights: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "insights_total",
			Help:      "Insights synthesized.",
		}),
		stageLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Workflow stage latency by stage.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
		}, []string{"stage"}),
	}

	r.registry.MustRegister(
		r.runs, r.runDuration,
		r.oracleCalls, r.oracleLatency,
		r.queries, r.queryLatency,
		r.branches, r.tasks, r.insights,
		r.stageLatency,
	)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// ObserveOracleCall implements oracle.Observer.
func (r *Recorder) ObserveOracleCall(stage, outcome string, elapsed time.Duration) {
	r.oracleCalls.WithLabelValues(stage, outcome).Inc()
	r.oracleLatency.WithLabelValues(stage).Observe(elapsed.Seconds())
}

// ObserveQuery implements database.Observer.
func (r *Recorder) ObserveQuery(outcome string, elapsed time.Duration) {
	r.queries.WithLabelValues(outcome).Inc()
	r.queryLatency.Observe(elapsed.Seconds())
}

// ObserveStage implements production.StageObserver and is also used for the
// research stages.
func (r *Recorder) ObserveStage(stage string, elapsed time.Duration) {
	r.stageLatency.WithLabelValues(stage).Observe(elapsed.Seconds())
}

// ObserveBranch counts one finished search branch.
func (r *Recorder) ObserveBranch(outcome string) {
	r.branches.WithLabelValues(outcome).Inc()
}

// AddTasks counts dispatched tasks.
func (r *Recorder) AddTasks(n int) {
	r.tasks.Add(float64(n))
}

// AddInsights counts synthesized insights.
func (r *Recorder) AddInsights(n int) {
	r.insights.Add(float64(n))
}

// ObserveRun records a finished run.
func (r *Recorder) ObserveRun(outcome string, elapsed time.Duration) {
	r.runs.WithLabelValues(outcome).Inc()
	r.runDuration.Observe(elapsed.Seconds())
}
