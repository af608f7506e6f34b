package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the player cache

var (
	// API Call metrics
	APICallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nflcache_api_calls_total",
			Help: "Total number of SportRadar API calls",
		},
		[]string{"endpoint", "status"},
	)

	APICallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nflcache_api_call_duration_seconds",
			Help:    "Duration of API calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// Database metrics
	DBQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nflcache_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "table", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nflcache_db_query_duration_seconds",
			Help:    "Duration of database queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nflcache_db_connections_active",
			Help: "Number of active database connections",
		},
	)

	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nflcache_db_connections_idle",
			Help: "Number of idle database connections",
		},
	)

	// Cache metrics
	CacheHitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nflcache_cache_hits_total",
			Help: "Total number of redis cache hits",
		},
		[]string{"kind"},
	)

	CacheMissesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nflcache_cache_misses_total",
			Help: "Total number of redis cache misses",
		},
		[]string{"kind"},
	)

	// Sync metrics
	SyncOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nflcache_sync_operations_total",
			Help: "Total number of sync operations",
		},
		[]string{"type", "status"},
	)

	SyncDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nflcache_sync_duration_seconds",
			Help:    "Duration of sync operations in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1200},
		},
		[]string{"type"},
	)

	TeamsSyncedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nflcache_teams_synced_total",
			Help: "Roster units by outcome",
		},
		[]string{"status"},
	)

	PlayersSyncedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nflcache_players_synced_total",
			Help: "Roster players by outcome",
		},
		[]string{"outcome"},
	)

	PlayersInStore = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nflcache_players_in_store",
			Help: "Number of players in the cache store after the last rebuild",
		},
	)

	// Pacing metrics
	PacerPenaltiesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nflcache_pacer_penalties_total",
			Help: "Total number of failure penalties applied by the roster pacer",
		},
	)

	PacerPenaltySeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nflcache_pacer_penalty_seconds",
			Help:    "Penalty delays applied after failed roster fetches",
			Buckets: []float64{1, 5, 10, 20, 40, 80, 160, 300},
		},
	)

	BreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nflcache_breaker_state",
			Help: "Roster circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
	)

	// Query metrics
	SearchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nflcache_searches_total",
			Help: "Total number of player searches",
		},
		[]string{"status"},
	)

	BackfillsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nflcache_backfills_total",
			Help: "Lazy stat backfills by outcome",
		},
		[]string{"outcome"},
	)

	// Error metrics
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nflcache_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "error_type"},
	)

	// System metrics
	SystemUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nflcache_system_uptime_seconds",
			Help: "System uptime in seconds",
		},
	)

	LastSuccessfulSync = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nflcache_last_successful_sync_timestamp",
			Help: "Timestamp of last successful sync operation",
		},
	)
)

// RecordAPICall records an API call metric
func RecordAPICall(endpoint, status string, duration float64) {
	APICallsTotal.WithLabelValues(endpoint, status).Inc()
	APICallDuration.WithLabelValues(endpoint).Observe(duration)
}

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table, status string, duration float64) {
	DBQueriesTotal.WithLabelValues(operation, table, status).Inc()
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration)
}

// RecordCacheHit records a cache hit
func RecordCacheHit(kind string) {
	CacheHitsTotal.WithLabelValues(kind).Inc()
}

// RecordCacheMiss records a cache miss
func RecordCacheMiss(kind string) {
	CacheMissesTotal.WithLabelValues(kind).Inc()
}

// RecordSync records a sync operation
func RecordSync(syncType, status string, duration float64) {
	SyncOperationsTotal.WithLabelValues(syncType, status).Inc()
	SyncDuration.WithLabelValues(syncType).Observe(duration)

	if status == "success" {
		LastSuccessfulSync.SetToCurrentTime()
	}
}

// RecordTeam records the outcome of one roster unit
func RecordTeam(status string) {
	TeamsSyncedTotal.WithLabelValues(status).Inc()
}

// RecordPlayer records the outcome of one roster player
func RecordPlayer(outcome string) {
	PlayersSyncedTotal.WithLabelValues(outcome).Inc()
}

// RecordPenalty records a pacer failure penalty
func RecordPenalty(seconds float64) {
	PacerPenaltiesTotal.Inc()
	PacerPenaltySeconds.Observe(seconds)
}

// SetBreakerState publishes the circuit breaker state
func SetBreakerState(state int) {
	BreakerState.Set(float64(state))
}

// RecordSearch records a search request
func RecordSearch(status string) {
	SearchesTotal.WithLabelValues(status).Inc()
}

// RecordBackfill records a lazy backfill outcome
func RecordBackfill(outcome string) {
	BackfillsTotal.WithLabelValues(outcome).Inc()
}

// RecordError records an error
func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}

// UpdateDBConnectionStats updates database connection pool statistics
func UpdateDBConnectionStats(active, idle int32) {
	DBConnectionsActive.Set(float64(active))
	DBConnectionsIdle.Set(float64(idle))
}

// UpdatePlayersInStore publishes the store size
func UpdatePlayersInStore(total int) {
	PlayersInStore.Set(float64(total))
}
