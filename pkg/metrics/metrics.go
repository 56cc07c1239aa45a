// Package metrics exposes Prometheus collectors for orchestrator activity.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "webpilot"

// Recorder holds the orchestrator collectors. A nil *Recorder is valid and
// records nothing.
type Recorder struct {
	registry *prometheus.Registry

	runs              *prometheus.CounterVec
	runIterations     prometheus.Histogram
	toolDispatches    *prometheus.CounterVec
	reasoningDuration *prometheus.HistogramVec
	operatorQuestions prometheus.Counter
}

// New creates a Recorder backed by its own registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		registry: reg,
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "orchestrator",
				Name:      "runs_total",
				Help:      "Task runs that reached a final outcome, by status.",
			},
			[]string{"status"},
		),
		runIterations: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "orchestrator",
				Name:      "run_iterations",
				Help:      "Reasoning rounds consumed by finished runs.",
				Buckets:   []float64{1, 2, 3, 5, 8, 13, 21, 34},
			},
		),
		toolDispatches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "orchestrator",
				Name:      "tool_dispatches_total",
				Help:      "Tool invocations handled, by tool and result.",
			},
			[]string{"tool", "result"},
		),
		reasoningDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "reasoning",
				Name:      "call_duration_seconds",
				Help:      "Latency of reasoning calls.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"status"},
		),
		operatorQuestions: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "orchestrator",
				Name:      "operator_questions_total",
				Help:      "Questions surfaced to the operator through ask_user.",
			},
		),
	}
	reg.MustRegister(r.runs, r.runIterations, r.toolDispatches, r.reasoningDuration, r.operatorQuestions)
	return r
}

// RunFinished records a run that reached status after the given rounds.
func (r *Recorder) RunFinished(status string, iterations int) {
	if r == nil {
		return
	}
	r.runs.WithLabelValues(status).Inc()
	r.runIterations.Observe(float64(iterations))
}

// ToolDispatched records one handled invocation.
func (r *Recorder) ToolDispatched(tool string, failed bool) {
	if r == nil {
		return
	}
	result := "ok"
	if failed {
		result = "error"
	}
	r.toolDispatches.WithLabelValues(tool, result).Inc()
}

// ReasoningObserved records the latency of a reasoning call.
func (r *Recorder) ReasoningObserved(d time.Duration, err error) {
	if r == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	r.reasoningDuration.WithLabelValues(status).Observe(d.Seconds())
}

// QuestionAsked records an ask_user suspension.
func (r *Recorder) QuestionAsked() {
	if r == nil {
		return
	}
	r.operatorQuestions.Inc()
}

// Registry returns the registry holding the collectors.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// Handler serves the collectors in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func (r *Recorder) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
