package observability

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/harryc904/Studio/internal/platform/logger"
)

type MetricsConfig struct {
	Enabled        bool          `koanf:"enabled"`
	ScrapeInterval time.Duration `koanf:"scrape_interval"`
}

type Metrics struct {
	apiRequests *CounterVec
	apiLatency  *HistogramVec
	apiInflight *Gauge
	apiReqTotal *Counter
	apiReqError *Counter

	aggregateOps       *CounterVec
	aggregateLatency   *HistogramVec
	aggregateConflicts *CounterVec
	aggregateRetries   *CounterVec

	verificationCodes *CounterVec

	dbPool    *GaugeVec
	redisUp   *Gauge
	redisPing *Gauge

	interval time.Duration
}

// NewMetrics returns nil when metrics are disabled; every method is nil-safe.
func NewMetrics(cfg MetricsConfig) *Metrics {
	if !cfg.Enabled {
		return nil
	}
	interval := cfg.ScrapeInterval
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &Metrics{
		apiRequests: NewCounterVec("studio_api_requests_total", "Total API requests.", []string{"method", "route", "status"}),
		apiLatency: NewHistogramVec("studio_api_request_duration_seconds", "API request latency in seconds.",
			[]string{"method", "route", "status"}, []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}),
		apiInflight: NewGauge("studio_api_inflight_requests", "In-flight API requests."),
		apiReqTotal: NewCounter("studio_api_requests_all_total", "All API requests."),
		apiReqError: NewCounter("studio_api_requests_5xx_total", "API requests answered with a 5xx status."),

		aggregateOps: NewCounterVec("studio_aggregate_operations_total", "Aggregate write operations by outcome.", []string{"op", "status"}),
		aggregateLatency: NewHistogramVec("studio_aggregate_operation_duration_seconds", "Aggregate write latency including retries.",
			[]string{"op", "status"}, []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5}),
		aggregateConflicts: NewCounterVec("studio_aggregate_conflicts_total", "Aggregate writes rejected as conflicts.", []string{"op"}),
		aggregateRetries:   NewCounterVec("studio_aggregate_retries_total", "Aggregate write re-runs after retryable failures.", []string{"op"}),

		verificationCodes: NewCounterVec("studio_verification_codes_total", "Verification code events.", []string{"purpose", "result"}),

		dbPool:    NewGaugeVec("studio_db_pool", "database/sql pool statistics.", []string{"pool", "stat"}),
		redisUp:   NewGauge("studio_redis_up", "1 when the last redis ping succeeded."),
		redisPing: NewGauge("studio_redis_ping_seconds", "Latency of the last redis ping."),

		interval: interval,
	}
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	for _, c := range []interface{ WritePrometheus(io.Writer) error }{
		m.apiRequests,
		m.apiLatency,
		m.apiInflight,
		m.apiReqTotal,
		m.apiReqError,
		m.aggregateOps,
		m.aggregateLatency,
		m.aggregateConflicts,
		m.aggregateRetries,
		m.verificationCodes,
		m.dbPool,
		m.redisUp,
		m.redisPing,
	} {
		if err := c.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	if status == "" {
		status = "0"
	}
	m.apiRequests.Inc(method, route, status)
	m.apiLatency.Observe(dur.Seconds(), method, route, status)
	m.apiReqTotal.Inc()
	if isServerErrorStatus(status) {
		m.apiReqError.Inc()
	}
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) ObserveAggregateOperation(op, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if op == "" {
		op = "unknown"
	}
	if status == "" {
		status = "unknown"
	}
	m.aggregateOps.Inc(op, status)
	m.aggregateLatency.Observe(dur.Seconds(), op, status)
}

func (m *Metrics) IncAggregateConflict(op string) {
	if m == nil {
		return
	}
	m.aggregateConflicts.Inc(op)
}

func (m *Metrics) IncAggregateRetry(op string) {
	if m == nil {
		return
	}
	m.aggregateRetries.Inc(op)
}

// IncVerificationCode counts issue/verify outcomes such as "issued", "throttled", "verified", "rejected".
func (m *Metrics) IncVerificationCode(purpose, result string) {
	if m == nil {
		return
	}
	m.verificationCodes.Inc(purpose, result)
}

// StartDBCollector samples pool statistics of db under the given pool label until ctx ends.
func (m *Metrics) StartDBCollector(ctx context.Context, log *logger.Logger, pool string, db *gorm.DB) {
	if m == nil || db == nil {
		return
	}
	pool = strings.TrimSpace(pool)
	if pool == "" {
		pool = "primary"
	}
	go func() {
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.sampleDB(log, pool, db)
			}
		}
	}()
}

func (m *Metrics) sampleDB(log *logger.Logger, pool string, db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		if log != nil {
			log.Warn("metrics: db stats unavailable", "pool", pool, "error", err)
		}
		return
	}
	stats := sqlDB.Stats()
	m.dbPool.Set(float64(stats.OpenConnections), pool, "open_connections")
	m.dbPool.Set(float64(stats.InUse), pool, "in_use")
	m.dbPool.Set(float64(stats.Idle), pool, "idle")
	m.dbPool.Set(float64(stats.WaitCount), pool, "wait_count")
	m.dbPool.Set(stats.WaitDuration.Seconds(), pool, "wait_duration_seconds")
	m.dbPool.Set(float64(stats.MaxOpenConnections), pool, "max_open_connections")
	m.dbPool.Set(float64(stats.MaxIdleClosed), pool, "max_idle_closed")
	m.dbPool.Set(float64(stats.MaxLifetimeClosed), pool, "max_lifetime_closed")
}

// StartRedisCollector pings rdb on every tick. The client is owned by the caller.
func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, rdb redis.UniversalClient) {
	if m == nil || rdb == nil {
		return
	}
	go func() {
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.sampleRedis(ctx, log, rdb)
			}
		}
	}()
}

func (m *Metrics) sampleRedis(ctx context.Context, log *logger.Logger, rdb redis.UniversalClient) {
	start := time.Now()
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		m.redisUp.Set(0)
		if log != nil {
			log.Warn("metrics: redis ping failed", "error", err)
		}
		return
	}
	m.redisUp.Set(1)
	m.redisPing.Set(time.Since(start).Seconds())
}
