package observability

import (
	"context"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"gorm.io/gorm"

	"github.com/yungbote/careerbridge-backend/internal/platform/logger"
)

// Metrics holds the service's OTel instruments. They are exported in
// Prometheus format through Handler. A nil *Metrics is valid and drops
// every observation.
type Metrics struct {
	apiRequests metric.Int64Counter
	apiLatency  metric.Float64Histogram
	apiInflight metric.Int64UpDownCounter

	llmRequests metric.Int64Counter
	llmLatency  metric.Float64Histogram
	llmTokens   metric.Int64Counter

	generationRuns     metric.Int64Counter
	generationAttempts metric.Int64Counter
	generationLatency  metric.Float64Histogram

	planEvents metric.Int64Counter
	emails     metric.Int64Counter
	reminders  metric.Int64Counter

	aggregateOps       metric.Float64Histogram
	aggregateConflicts metric.Int64Counter
	aggregateRetries   metric.Int64Counter

	activityTime metric.Float64Histogram

	meter    metric.Meter
	handler  http.Handler
	shutdown func(context.Context) error
}

var (
	initOnce sync.Once
	instance *Metrics
)

func Enabled() bool {
	v := strings.TrimSpace(os.Getenv("METRICS_ENABLED"))
	if v == "" {
		return false
	}
	return strings.EqualFold(v, "true") || v == "1" || strings.EqualFold(v, "yes")
}

func Current() *Metrics {
	return instance
}

var latencyBuckets = []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30}
var llmBuckets = []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 120}

// Init installs a Prometheus-backed meter provider once per process. It
// returns nil when METRICS_ENABLED is off or the exporter cannot start.
func Init(log *logger.Logger) *Metrics {
	if !Enabled() {
		return nil
	}
	initOnce.Do(func() {
		exporter, err := otelprom.New()
		if err != nil {
			if log != nil {
				log.Warn("metrics exporter init failed (continuing without metrics)", "error", err)
			}
			return
		}
		provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
		otel.SetMeterProvider(provider)

		m, err := newMetrics(provider.Meter("careerbridge"))
		if err != nil {
			if log != nil {
				log.Warn("metrics instrument init failed (continuing without metrics)", "error", err)
			}
			return
		}
		m.handler = promhttp.Handler()
		m.shutdown = provider.Shutdown
		instance = m
		if log != nil {
			log.Info("metrics initialized")
		}
	})
	return instance
}

func newMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{meter: meter}
	var err error
	if m.apiRequests, err = meter.Int64Counter("cb_api_requests", metric.WithDescription("API requests by method/operation/status.")); err != nil {
		return nil, err
	}
	if m.apiLatency, err = meter.Float64Histogram("cb_api_request_duration",
		metric.WithDescription("API request latency by method/operation/status."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if m.apiInflight, err = meter.Int64UpDownCounter("cb_api_inflight_requests", metric.WithDescription("In-flight API requests.")); err != nil {
		return nil, err
	}
	if m.llmRequests, err = meter.Int64Counter("cb_llm_requests", metric.WithDescription("LLM requests by model/endpoint/status.")); err != nil {
		return nil, err
	}
	if m.llmLatency, err = meter.Float64Histogram("cb_llm_request_duration",
		metric.WithDescription("LLM request latency by model/endpoint/status."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(llmBuckets...),
	); err != nil {
		return nil, err
	}
	if m.llmTokens, err = meter.Int64Counter("cb_llm_tokens", metric.WithDescription("LLM tokens by model/direction.")); err != nil {
		return nil, err
	}
	if m.generationRuns, err = meter.Int64Counter("cb_plan_generations", metric.WithDescription("Plan generation runs by outcome.")); err != nil {
		return nil, err
	}
	if m.generationAttempts, err = meter.Int64Counter("cb_plan_generation_attempts", metric.WithDescription("Plan generation attempts by outcome.")); err != nil {
		return nil, err
	}
	if m.generationLatency, err = meter.Float64Histogram("cb_plan_generation_duration",
		metric.WithDescription("End-to-end plan generation latency by outcome."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(llmBuckets...),
	); err != nil {
		return nil, err
	}
	if m.planEvents, err = meter.Int64Counter("cb_plan_events", metric.WithDescription("Progress events emitted by kind.")); err != nil {
		return nil, err
	}
	if m.emails, err = meter.Int64Counter("cb_emails", metric.WithDescription("Notification emails by type/status.")); err != nil {
		return nil, err
	}
	if m.reminders, err = meter.Int64Counter("cb_reminder_sweep_plans", metric.WithDescription("Plans visited by the reminder sweep by outcome.")); err != nil {
		return nil, err
	}
	if m.aggregateOps, err = meter.Float64Histogram("cb_aggregate_operation_duration",
		metric.WithDescription("Aggregate write latency by operation/status."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if m.aggregateConflicts, err = meter.Int64Counter("cb_aggregate_conflicts", metric.WithDescription("Aggregate write conflicts by operation.")); err != nil {
		return nil, err
	}
	if m.aggregateRetries, err = meter.Int64Counter("cb_aggregate_retries", metric.WithDescription("Retryable aggregate failures by operation.")); err != nil {
		return nil, err
	}
	if m.activityTime, err = meter.Float64Histogram("cb_worker_activity_duration",
		metric.WithDescription("Temporal activity duration by activity/status."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	return m, nil
}

// Handler serves the Prometheus scrape endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.handler == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

func (m *Metrics) Shutdown(ctx context.Context) error {
	if m == nil || m.shutdown == nil {
		return nil
	}
	return m.shutdown(ctx)
}

// StartServer serves Handler on addr until ctx is done.
func (m *Metrics) StartServer(ctx context.Context, log *logger.Logger, addr string) {
	if m == nil {
		return
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = srv.Shutdown(shutdownCtx)
		cancel()
	}()
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if log != nil {
				log.Error("metrics server failed", "error", err, "addr", addr)
			}
		}
	}()
}

func (m *Metrics) ObserveAPI(method, operation, status string, dur time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("method", orUnknown(method)),
		attribute.String("operation", orUnknown(operation)),
		attribute.String("status", orUnknown(status)),
	)
	ctx := context.Background()
	m.apiRequests.Add(ctx, 1, attrs)
	m.apiLatency.Record(ctx, dur.Seconds(), attrs)
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Add(context.Background(), 1)
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Add(context.Background(), -1)
}

func (m *Metrics) ObserveLLMRequest(model, endpoint, status string, dur time.Duration, inputTokens, outputTokens int) {
	if m == nil {
		return
	}
	model = orUnknown(model)
	attrs := metric.WithAttributes(
		attribute.String("model", model),
		attribute.String("endpoint", orUnknown(endpoint)),
		attribute.String("status", orUnknown(status)),
	)
	ctx := context.Background()
	m.llmRequests.Add(ctx, 1, attrs)
	if dur > 0 {
		m.llmLatency.Record(ctx, dur.Seconds(), attrs)
	}
	if inputTokens > 0 {
		m.llmTokens.Add(ctx, int64(inputTokens), metric.WithAttributes(attribute.String("model", model), attribute.String("direction", "input")))
	}
	if outputTokens > 0 {
		m.llmTokens.Add(ctx, int64(outputTokens), metric.WithAttributes(attribute.String("model", model), attribute.String("direction", "output")))
	}
}

// ObservePlanGeneration records one orchestrator run.
func (m *Metrics) ObservePlanGeneration(outcome string, attempts int, dur time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("outcome", orUnknown(outcome)),
		attribute.String("attempts", strconv.Itoa(attempts)),
	)
	ctx := context.Background()
	m.generationRuns.Add(ctx, 1, attrs)
	m.generationLatency.Record(ctx, dur.Seconds(), metric.WithAttributes(attribute.String("outcome", orUnknown(outcome))))
}

// IncGenerationAttempt counts a single attempt by outcome ("success" or an error code).
func (m *Metrics) IncGenerationAttempt(outcome string) {
	if m == nil {
		return
	}
	m.generationAttempts.Add(context.Background(), 1, metric.WithAttributes(attribute.String("outcome", orUnknown(outcome))))
}

func (m *Metrics) IncPlanEvent(kind string) {
	if m == nil {
		return
	}
	m.planEvents.Add(context.Background(), 1, metric.WithAttributes(attribute.String("kind", orUnknown(kind))))
}

func (m *Metrics) IncEmail(emailType, status string) {
	if m == nil {
		return
	}
	m.emails.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("type", orUnknown(emailType)),
		attribute.String("status", orUnknown(status)),
	))
}

// AddReminderOutcome counts plans visited by a sweep: sent, skipped or failed.
func (m *Metrics) AddReminderOutcome(outcome string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.reminders.Add(context.Background(), int64(n), metric.WithAttributes(attribute.String("outcome", orUnknown(outcome))))
}

func (m *Metrics) ObserveAggregateOperation(name, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.aggregateOps.Record(context.Background(), dur.Seconds(), metric.WithAttributes(
		attribute.String("operation", orUnknown(name)),
		attribute.String("status", orUnknown(status)),
	))
}

func (m *Metrics) IncAggregateConflict(name string) {
	if m == nil {
		return
	}
	m.aggregateConflicts.Add(context.Background(), 1, metric.WithAttributes(attribute.String("operation", orUnknown(name))))
}

func (m *Metrics) IncAggregateRetry(name string) {
	if m == nil {
		return
	}
	m.aggregateRetries.Add(context.Background(), 1, metric.WithAttributes(attribute.String("operation", orUnknown(name))))
}

func (m *Metrics) ObserveActivity(activityName, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.activityTime.Record(context.Background(), dur.Seconds(), metric.WithAttributes(
		attribute.String("activity", orUnknown(activityName)),
		attribute.String("status", orUnknown(status)),
	))
}

// RegisterPostgresStats exports connection pool stats as observable gauges.
func (m *Metrics) RegisterPostgresStats(log *logger.Logger, db *gorm.DB) {
	if m == nil || db == nil {
		return
	}
	sqlDB, err := db.DB()
	if err != nil {
		if log != nil {
			log.Warn("metrics: postgres stats unavailable", "error", err)
		}
		return
	}
	_, err = m.meter.Int64ObservableGauge("cb_postgres_pool",
		metric.WithDescription("Postgres pool stats by stat."),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			s := sqlDB.Stats()
			o.Observe(int64(s.OpenConnections), metric.WithAttributes(attribute.String("stat", "open_connections")))
			o.Observe(int64(s.InUse), metric.WithAttributes(attribute.String("stat", "in_use")))
			o.Observe(int64(s.Idle), metric.WithAttributes(attribute.String("stat", "idle")))
			o.Observe(s.WaitCount, metric.WithAttributes(attribute.String("stat", "wait_count")))
			o.Observe(int64(s.MaxOpenConnections), metric.WithAttributes(attribute.String("stat", "max_open_connections")))
			return nil
		}),
	)
	if err != nil && log != nil {
		log.Warn("metrics: postgres gauge registration failed", "error", err)
	}
}

func orUnknown(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "unknown"
	}
	return s
}
