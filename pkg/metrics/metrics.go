package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// HTTP
// =============================================================================

// HttpRequestsTotal - счётчик HTTP запросов
// Labels: service, method, route, status
var HttpRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	},
	[]string{"service", "method", "route", "status"},
)

// HttpRequestDuration - время ответа
var HttpRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	},
	[]string{"service", "method", "route"},
)

var HttpRequestsInFlight = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "http_requests_in_flight",
		Help: "Current number of HTTP requests being processed",
	},
	[]string{"service"},
)

// =============================================================================
// Хранилища (MongoDB, PostgreSQL)
// =============================================================================

// StoreQueryDuration - время запросов к хранилищу
// Labels: service, operation, collection (коллекция Mongo или таблица Postgres)
var StoreQueryDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "store_query_duration_seconds",
		Help:    "Duration of store queries in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	},
	[]string{"service", "operation", "collection"},
)

var StoreErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "store_errors_total",
		Help: "Total number of store errors",
	},
	[]string{"service", "operation", "collection"},
)

// =============================================================================
// Redis
// =============================================================================

var RedisCacheHits = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "redis_cache_hits_total",
		Help: "Total number of Redis cache hits",
	},
	[]string{"service", "key"},
)

var RedisCacheMisses = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "redis_cache_misses_total",
		Help: "Total number of Redis cache misses",
	},
	[]string{"service", "key"},
)

var RedisOperationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "redis_operation_duration_seconds",
		Help:    "Duration of Redis operations in seconds",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
	},
	[]string{"service", "operation"},
)

var RedisErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "redis_errors_total",
		Help: "Total number of Redis errors",
	},
	[]string{"service", "operation"},
)

// =============================================================================
// Kafka
// =============================================================================

var KafkaMessagesProduced = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kafka_messages_produced_total",
		Help: "Total number of Kafka messages produced",
	},
	[]string{"service", "topic"},
)

var KafkaMessagesConsumed = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kafka_messages_consumed_total",
		Help: "Total number of Kafka messages consumed",
	},
	[]string{"service", "topic", "group"},
)

var KafkaProduceDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "kafka_produce_duration_seconds",
		Help:    "Duration of Kafka produce operations",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	},
	[]string{"service", "topic"},
)

var KafkaConsumeDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "kafka_consume_duration_seconds",
		Help:    "Duration of Kafka message processing",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10},
	},
	[]string{"service", "topic"},
)

// KafkaErrors - operation: produce, consume, commit
var KafkaErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kafka_errors_total",
		Help: "Total number of Kafka errors",
	},
	[]string{"service", "topic", "operation"},
)

// =============================================================================
// Бизнес-метрики
// =============================================================================

// --- Auth ---

// AuthLogins - status: success, failed
var AuthLogins = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "auth_logins_total",
		Help: "Total number of login attempts",
	},
	[]string{"status"},
)

// AuthTokensIssued - type: access, refresh
var AuthTokensIssued = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "auth_tokens_issued_total",
		Help: "Total number of tokens issued",
	},
	[]string{"type"},
)

// --- Catalog ---

// CatalogProductsWritten - operation: create, update, delete, import
var CatalogProductsWritten = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "catalog_products_written_total",
		Help: "Total number of product writes",
	},
	[]string{"operation"},
)

// CatalogImportRows - status: created, updated, failed
var CatalogImportRows = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "catalog_import_rows_total",
		Help: "Total number of imported product rows by outcome",
	},
	[]string{"status"},
)

// CatalogClosureSize - размер allCategoryIds после пересчёта
var CatalogClosureSize = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "catalog_closure_size",
		Help:    "Number of category ids in a product closure",
		Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 21},
	},
)

var CatalogClosuresRecomputed = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "catalog_closures_recomputed_total",
		Help: "Total number of product closures rewritten by bulk recompute",
	},
)

// --- Quotes ---

var QuotesSubmitted = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "quotes_submitted_total",
		Help: "Total number of quote requests submitted",
	},
)

// QuotesSent - status: success, not_priced, conflict
var QuotesSent = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "quotes_sent_total",
		Help: "Total number of quote send attempts",
	},
	[]string{"status"},
)

var QuotesSentAmount = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "quotes_sent_amount_total",
		Help: "Sum of totals (taxes included) of sent quotes",
	},
)

// --- Notifications ---

// NotificationsDelivered - kind, status: sent, failed
var NotificationsDelivered = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "notifications_delivered_total",
		Help: "Total number of notification delivery attempts",
	},
	[]string{"kind", "status"},
)

var NotificationsDuplicates = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "notifications_duplicate_events_total",
		Help: "Total number of skipped duplicate events",
	},
)

var NotificationProcessingDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "notification_event_processing_duration_seconds",
		Help:    "Duration of quote event processing in the worker",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
	},
)
