package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"spectre/notification-worker/internal/app/notifications/entity"
	"spectre/notification-worker/internal/app/notifications/service"
	"spectre/pkg/logger"
	"spectre/pkg/metrics"

	"github.com/segmentio/kafka-go"
)

const metricsService = "notification-worker"

// KafkaConsumer читает quote_events и передаёт события в NotificationService.
// Offset коммитится после обработки; битые сообщения пропускаются с коммитом.
type KafkaConsumer struct {
	reader   *kafka.Reader
	topic    string
	groupID  string
	svc      service.NotificationServiceInterface
	stopChan chan struct{}
	doneChan chan struct{}
}

func NewKafkaConsumer(
	brokers []string,
	topic string,
	groupID string,
	minBytes int,
	maxBytes int,
	svc service.NotificationServiceInterface,
) *KafkaConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: minBytes,
		MaxBytes: maxBytes,
		// новая группа читает топик с начала
		StartOffset:    kafka.FirstOffset,
		CommitInterval: time.Second,
		ReadBackoffMin: 100 * time.Millisecond,
		ReadBackoffMax: 1 * time.Second,
	})

	return &KafkaConsumer{
		reader:   reader,
		topic:    topic,
		groupID:  groupID,
		svc:      svc,
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}
}

func (c *KafkaConsumer) Start(ctx context.Context) {
	logger.Info().Str("topic", c.topic).Str("group", c.groupID).Msg("Starting Kafka consumer")
	go c.consume(ctx)
}

func (c *KafkaConsumer) Stop() {
	logger.Info().Msg("Stopping Kafka consumer")
	close(c.stopChan)
	<-c.doneChan
	if err := c.reader.Close(); err != nil {
		logger.Warn().Err(err).Msg("Failed to close Kafka reader")
	}
	logger.Info().Msg("Kafka consumer stopped")
}

func (c *KafkaConsumer) consume(ctx context.Context) {
	defer close(c.doneChan)

	for {
		select {
		case <-c.stopChan:
			return
		default:
		}

		readCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		message, err := c.reader.FetchMessage(readCtx)
		cancel()

		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if readCtx.Err() == context.DeadlineExceeded {
				continue
			}
			metrics.RecordKafkaError(metricsService, c.topic, "consume")
			logger.Warn().Err(err).Msg("Error fetching message")
			time.Sleep(time.Second)
			continue
		}

		start := time.Now()
		if err := c.processMessage(ctx, message); err != nil {
			// без коммита: сообщение будет прочитано повторно
			metrics.RecordKafkaError(metricsService, c.topic, "consume")
			logger.Error().Err(err).
				Int64("offset", message.Offset).
				Int("partition", message.Partition).
				Msg("Error processing message")
			continue
		}
		metrics.RecordKafkaMessageConsumed(metricsService, c.topic, c.groupID, time.Since(start))

		if err := c.reader.CommitMessages(ctx, message); err != nil {
			metrics.RecordKafkaError(metricsService, c.topic, "commit")
			logger.Warn().Err(err).Msg("Error committing message")
		}
	}
}

// processMessage возвращает ошибку только когда сообщение нужно перечитать
func (c *KafkaConsumer) processMessage(ctx context.Context, message kafka.Message) error {
	var event entity.QuoteEvent
	if err := json.Unmarshal(message.Value, &event); err != nil {
		logger.Error().Err(err).
			Int64("offset", message.Offset).
			Int("partition", message.Partition).
			Msg("Malformed quote event, skipping")
		return nil
	}
	if event.EventID == "" {
		logger.Error().
			Int64("offset", message.Offset).
			Str("event_type", event.EventType).
			Msg("Quote event without event_id, skipping")
		return nil
	}

	logger.Debug().
		Str("event_id", event.EventID).
		Str("event_type", event.EventType).
		Str("quote_id", event.QuoteID).
		Int64("offset", message.Offset).
		Msg("Received quote event")

	if err := c.svc.ProcessEvent(ctx, &event); err != nil {
		return fmt.Errorf("failed to process quote event %s: %w", event.EventID, err)
	}
	return nil
}

func (c *KafkaConsumer) GetStats() kafka.ReaderStats {
	return c.reader.Stats()
}
