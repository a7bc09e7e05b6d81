package observability

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/shortcraft-backend/internal/platform/logger"
)

type Metrics struct {
	apiRequests *CounterVec
	apiLatency  *HistogramVec
	apiInflight *Gauge

	llmRequests *CounterVec
	llmLatency  *HistogramVec
	llmTokens   *CounterVec

	stageRuns       *CounterVec
	quotaRejections *CounterVec
	versionRetries  *CounterVec
	eventsPublished *CounterVec

	dbStats   *GaugeVec
	redisUp   *Gauge
	redisPing *Gauge
}

type MetricsConfig struct {
	Enabled bool
	// Addr serves /metrics on a side port; empty disables the listener.
	Addr           string
	ScrapeInterval time.Duration
}

var (
	initOnce sync.Once
	instance *Metrics
)

// Current is nil until Init runs with metrics enabled; every method is
// nil-safe.
func Current() *Metrics {
	return instance
}

func Init(cfg MetricsConfig) *Metrics {
	if !cfg.Enabled {
		return nil
	}
	initOnce.Do(func() {
		instance = NewMetrics()
	})
	return instance
}

func NewMetrics() *Metrics {
	latency := []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30}
	return &Metrics{
		apiRequests: NewCounterVec("sc_api_requests_total", "API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency:  NewHistogramVec("sc_api_request_duration_seconds", "API request latency by method/route/status.", []string{"method", "route", "status"}, latency),
		apiInflight: NewGauge("sc_api_inflight_requests", "In-flight API requests."),

		llmRequests: NewCounterVec("sc_llm_requests_total", "Generation service calls by stage/model/status.", []string{"stage", "model", "status"}),
		llmLatency:  NewHistogramVec("sc_llm_request_duration_seconds", "Generation service latency by stage/model.", []string{"stage", "model"}, []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120}),
		llmTokens:   NewCounterVec("sc_llm_tokens_total", "Generation tokens by model/kind.", []string{"model", "kind"}),

		stageRuns:       NewCounterVec("sc_stage_runs_total", "Stage generation requests by stage/outcome.", []string{"stage", "outcome"}),
		quotaRejections: NewCounterVec("sc_quota_rejections_total", "Requests rejected by the quota limiter by plan.", []string{"plan"}),
		versionRetries:  NewCounterVec("sc_artifact_version_retries_total", "Artifact creates retried after a version collision.", []string{"kind"}),
		eventsPublished: NewCounterVec("sc_events_published_total", "Artifact events published by status.", []string{"status"}),

		dbStats:   NewGaugeVec("sc_db_stats", "database/sql pool stats.", []string{"stat"}),
		redisUp:   NewGauge("sc_redis_up", "1 when the last redis ping succeeded."),
		redisPing: NewGauge("sc_redis_ping_seconds", "Latency of the last redis ping."),
	}
}

func (m *Metrics) StartServer(ctx context.Context, log *logger.Logger, addr string) {
	if m == nil {
		return
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           http.HandlerFunc(m.WriteHTTP),
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
			log.Error("metrics server failed", "error", err, "addr", addr)
		}
	}()
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, _ *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

type promWriter interface {
	WritePrometheus(io.Writer) error
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	all := []promWriter{
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.llmRequests, m.llmLatency, m.llmTokens,
		m.stageRuns, m.quotaRejections, m.versionRetries, m.eventsPublished,
		m.dbStats, m.redisUp, m.redisPing,
	}
	for _, pw := range all {
		if err := pw.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.apiRequests.Inc(method, route, status)
	m.apiLatency.Observe(dur.Seconds(), method, route, status)
}

func (m *Metrics) APIInflight(delta float64) {
	if m == nil {
		return
	}
	m.apiInflight.Add(delta)
}

func (m *Metrics) ObserveLLMRequest(stage, model, status string, dur time.Duration, inputTokens, outputTokens int64) {
	if m == nil {
		return
	}
	m.llmRequests.Inc(stage, model, status)
	if dur > 0 {
		m.llmLatency.Observe(dur.Seconds(), stage, model)
	}
	if inputTokens > 0 {
		m.llmTokens.Add(float64(inputTokens), model, "input")
	}
	if outputTokens > 0 {
		m.llmTokens.Add(float64(outputTokens), model, "output")
	}
}

// IncStageRun records how a stage request ended: "created", "skipped" or an
// error code.
func (m *Metrics) IncStageRun(stage, outcome string) {
	if m == nil {
		return
	}
	m.stageRuns.Inc(stage, outcome)
}

func (m *Metrics) StageRuns(stage, outcome string) float64 {
	if m == nil {
		return 0
	}
	return m.stageRuns.Value(stage, outcome)
}

func (m *Metrics) IncQuotaRejection(plan string) {
	if m == nil {
		return
	}
	m.quotaRejections.Inc(plan)
}

func (m *Metrics) IncVersionRetry(kind string) {
	if m == nil {
		return
	}
	m.versionRetries.Inc(kind)
}

func (m *Metrics) IncEventPublished(status string) {
	if m == nil {
		return
	}
	m.eventsPublished.Inc(status)
}

func (m *Metrics) StartDBCollector(ctx context.Context, log *logger.Logger, db *gorm.DB, interval time.Duration) {
	if m == nil || db == nil {
		return
	}
	if interval <= 0 {
		interval = 10 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sqlDB, err := db.DB()
				if err != nil {
					log.Warn("metrics: db stats unavailable", "error", err)
					continue
				}
				stats := sqlDB.Stats()
				m.dbStats.Set(float64(stats.OpenConnections), "open_connections")
				m.dbStats.Set(float64(stats.InUse), "in_use")
				m.dbStats.Set(float64(stats.Idle), "idle")
				m.dbStats.Set(float64(stats.WaitCount), "wait_count")
				m.dbStats.Set(stats.WaitDuration.Seconds(), "wait_duration_seconds")
				m.dbStats.Set(float64(stats.MaxOpenConnections), "max_open_connections")
			}
		}
	}()
}

func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, rdb redis.UniversalClient, interval time.Duration) {
	if m == nil || rdb == nil {
		return
	}
	if interval <= 0 {
		interval = 10 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				start := time.Now()
				if err := rdb.Ping(ctx).Err(); err != nil {
					m.redisUp.Set(0)
					log.Warn("metrics: redis ping failed", "error", err)
					continue
				}
				m.redisUp.Set(1)
				m.redisPing.Set(time.Since(start).Seconds())
			}
		}
	}()
}
