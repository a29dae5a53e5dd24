package observability

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/mundotea/mundotea-backend/internal/platform/logger"
)

const namespace = "mundotea"

type Metrics struct {
	registry *prometheus.Registry

	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec
	apiInflight prometheus.Gauge

	achievementsUnlocked *prometheus.CounterVec
	sessionsCompleted    *prometheus.CounterVec
	registrations        prometheus.Counter
	imageUploads         *prometheus.CounterVec
	catalogCache         *prometheus.CounterVec

	redisUp   prometheus.Gauge
	redisPing prometheus.Gauge
}

var (
	initMu   sync.Mutex
	instance *Metrics
)

// Current returns the process-wide metrics, or nil when metrics are disabled.
// Every method is nil-safe.
func Current() *Metrics {
	initMu.Lock()
	defer initMu.Unlock()
	return instance
}

// Init builds the process-wide metrics on a fresh registry. Calling it again
// replaces the previous instance.
func Init(log *logger.Logger) *Metrics {
	m := newMetrics()
	initMu.Lock()
	instance = m
	initMu.Unlock()
	if log != nil {
		log.Info("Prometheus metrics initialized")
	}
	return m
}

func newMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		apiLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		apiInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_inflight",
			Help:      "HTTP requests currently being served.",
		}),
		achievementsUnlocked: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "achievements_unlocked_total",
			Help:      "Achievements unlocked by name and trigger.",
		}, []string{"achievement", "trigger"}),
		sessionsCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_completed_total",
			Help:      "Practice sessions completed by activity key.",
		}, []string{"activity"}),
		registrations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_total",
			Help:      "Accounts registered.",
		}),
		imageUploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_images_total",
			Help:      "Session image uploads by format and status.",
		}, []string{"format", "status"}),
		catalogCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_cache_lookups_total",
			Help:      "Activity catalog cache lookups by result.",
		}, []string{"result"}),
		redisUp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "redis_up",
			Help:      "Whether the last Redis ping succeeded.",
		}),
		redisPing: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "redis_ping_seconds",
			Help:      "Latency of the last Redis ping.",
		}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.apiRequests,
		m.apiLatency,
		m.apiInflight,
		m.achievementsUnlocked,
		m.sessionsCompleted,
		m.registrations,
		m.imageUploads,
		m.catalogCache,
		m.redisUp,
		m.redisPing,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	method = strings.ToUpper(strings.TrimSpace(method))
	m.apiRequests.WithLabelValues(method, route, status).Inc()
	m.apiLatency.WithLabelValues(method, route).Observe(dur.Seconds())
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

func (m *Metrics) IncAchievementUnlocked(name, trigger string) {
	if m == nil {
		return
	}
	m.achievementsUnlocked.WithLabelValues(name, trigger).Inc()
}

func (m *Metrics) IncSessionCompleted(activityKey string) {
	if m == nil {
		return
	}
	m.sessionsCompleted.WithLabelValues(activityKey).Inc()
}

func (m *Metrics) IncRegistration() {
	if m == nil {
		return
	}
	m.registrations.Inc()
}

func (m *Metrics) IncImageUpload(format, status string) {
	if m == nil {
		return
	}
	m.imageUploads.WithLabelValues(format, status).Inc()
}

func (m *Metrics) IncCatalogCache(result string) {
	if m == nil {
		return
	}
	m.catalogCache.WithLabelValues(result).Inc()
}

// RegisterDBStats exposes the sql.DB pool statistics behind db.
func (m *Metrics) RegisterDBStats(log *logger.Logger, db *gorm.DB) {
	if m == nil || db == nil {
		return
	}
	sqlDB, err := db.DB()
	if err != nil {
		if log != nil {
			log.Warn("db stats collector disabled", "error", err)
		}
		return
	}
	if err := m.registry.Register(collectors.NewDBStatsCollector(sqlDB, namespace)); err != nil && log != nil {
		log.Warn("db stats collector registration failed", "error", err)
	}
}

// StartRedisCollector pings Redis every interval until ctx is done.
func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, client redis.UniversalClient, interval time.Duration) {
	if m == nil || client == nil {
		return
	}
	if interval <= 0 {
		interval = 15 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			start := time.Now()
			pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
			err := client.Ping(pingCtx).Err()
			cancel()
			if err != nil {
				m.redisUp.Set(0)
				if log != nil {
					log.Debug("redis ping failed", "error", err)
				}
			} else {
				m.redisUp.Set(1)
				m.redisPing.Set(time.Since(start).Seconds())
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}
