package metrics

import (
	"time"
)

type RedisOperation string

const (
	RedisOpGet   RedisOperation = "get"
	RedisOpSet   RedisOperation = "set"
	RedisOpSetNX RedisOperation = "setnx"
	RedisOpDel   RedisOperation = "del"
)

type RedisTimer struct {
	service   string
	operation RedisOperation
	start     time.Time
}

func NewRedisTimer(service string, op RedisOperation) *RedisTimer {
	return &RedisTimer{service: service, operation: op, start: time.Now()}
}

func (rt *RedisTimer) ObserveDuration() {
	RedisOperationDuration.WithLabelValues(rt.service, string(rt.operation)).Observe(time.Since(rt.start).Seconds())
}

func RecordCacheHit(service, key string) {
	RedisCacheHits.WithLabelValues(service, key).Inc()
}

func RecordCacheMiss(service, key string) {
	RedisCacheMisses.WithLabelValues(service, key).Inc()
}

func RecordRedisError(service string, op RedisOperation) {
	RedisErrors.WithLabelValues(service, string(op)).Inc()
}

// KafkaProduceTimer замеряет одну отправку сообщения
type KafkaProduceTimer struct {
	service string
	topic   string
	start   time.Time
}

func NewKafkaProduceTimer(service, topic string) *KafkaProduceTimer {
	return &KafkaProduceTimer{service: service, topic: topic, start: time.Now()}
}

func (kt *KafkaProduceTimer) Success() {
	KafkaMessagesProduced.WithLabelValues(kt.service, kt.topic).Inc()
	KafkaProduceDuration.WithLabelValues(kt.service, kt.topic).Observe(time.Since(kt.start).Seconds())
}

func (kt *KafkaProduceTimer) Error() {
	RecordKafkaError(kt.service, kt.topic, "produce")
}

func RecordKafkaMessageConsumed(service, topic, group string, processing time.Duration) {
	KafkaMessagesConsumed.WithLabelValues(service, topic, group).Inc()
	KafkaConsumeDuration.WithLabelValues(service, topic).Observe(processing.Seconds())
}

func RecordKafkaError(service, topic, operation string) {
	KafkaErrors.WithLabelValues(service, topic, operation).Inc()
}

type StoreOperation string

const (
	StoreOpFind   StoreOperation = "find"
	StoreOpInsert StoreOperation = "insert"
	StoreOpUpdate StoreOperation = "update"
	StoreOpDelete StoreOperation = "delete"
	StoreOpCount  StoreOperation = "count"
)

// StoreTimer замеряет запрос к коллекции/таблице.
// Использование: defer metrics.NewStoreTimer(svc, metrics.StoreOpFind, "products").Observe(&err)
type StoreTimer struct {
	service    string
	operation  StoreOperation
	collection string
	start      time.Time
}

func NewStoreTimer(service string, op StoreOperation, collection string) *StoreTimer {
	return &StoreTimer{service: service, operation: op, collection: collection, start: time.Now()}
}

// Observe пишет длительность и, если *errp != nil, увеличивает счётчик ошибок
func (st *StoreTimer) Observe(errp *error) {
	StoreQueryDuration.WithLabelValues(st.service, string(st.operation), st.collection).Observe(time.Since(st.start).Seconds())
	if errp != nil && *errp != nil {
		StoreErrors.WithLabelValues(st.service, string(st.operation), st.collection).Inc()
	}
}
