package service

import (
	"context"
	"fmt"
	"time"

	"spectre/notification-worker/internal/app/notifications/entity"
	"spectre/notification-worker/internal/app/notifications/repository"
	"spectre/pkg/logger"
	"spectre/pkg/metrics"
)

const (
	DefaultMaxAttempts = 5
	retryBatchSize     = 100
)

// NotificationService превращает события заявок в письма.
// Каждое письмо сначала записывается в журнал, потом отправляется; ошибка SMTP
// оставляет запись failed для cron повтора и не останавливает обработку.
type NotificationService struct {
	repo        repository.NotificationRepository
	dedup       repository.EventDeduplicator
	sender      EmailSender
	renderer    *Renderer
	adminEmail  string
	maxAttempts int
}

func NewNotificationService(
	repo repository.NotificationRepository,
	dedup repository.EventDeduplicator,
	sender EmailSender,
	renderer *Renderer,
	adminEmail string,
	maxAttempts int,
) *NotificationService {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &NotificationService{
		repo:        repo,
		dedup:       dedup,
		sender:      sender,
		renderer:    renderer,
		adminEmail:  adminEmail,
		maxAttempts: maxAttempts,
	}
}

// ProcessEvent возвращает ошибку только для временных сбоев (Redis, БД),
// после которых событие нужно прочитать повторно
func (s *NotificationService) ProcessEvent(ctx context.Context, event *entity.QuoteEvent) error {
	start := time.Now()
	defer func() {
		metrics.NotificationProcessingDuration.Observe(time.Since(start).Seconds())
	}()

	drafts, err := s.compose(event)
	if err != nil {
		logger.Error().Err(err).
			Str("event_id", event.EventID).
			Str("event_type", event.EventType).
			Msg("Failed to render notifications, event skipped")
		return nil
	}
	if len(drafts) == 0 {
		logger.Debug().
			Str("event_id", event.EventID).
			Str("event_type", event.EventType).
			Msg("No notifications for event")
		return nil
	}

	claimed, err := s.dedup.Claim(ctx, event.EventID)
	if err != nil {
		return fmt.Errorf("failed to claim event %s: %w", event.EventID, err)
	}
	if !claimed {
		metrics.NotificationsDuplicates.Inc()
		logger.Info().Str("event_id", event.EventID).Msg("Duplicate event skipped")
		return nil
	}

	if err := s.repo.CreateBatch(ctx, drafts); err != nil {
		if relErr := s.dedup.Release(ctx, event.EventID); relErr != nil {
			logger.Warn().Err(relErr).Str("event_id", event.EventID).Msg("Failed to release event claim")
		}
		return fmt.Errorf("failed to record notifications: %w", err)
	}

	for _, n := range drafts {
		s.deliver(ctx, n)
	}
	return nil
}

// RetryFailed повторяет failed письма с attempts < maxAttempts, возвращает число доставленных
func (s *NotificationService) RetryFailed(ctx context.Context) (int, error) {
	pending, err := s.repo.ListRetryable(ctx, s.maxAttempts, retryBatchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to list failed notifications: %w", err)
	}

	sent := 0
	for i := range pending {
		if ctx.Err() != nil {
			break
		}
		if s.deliver(ctx, &pending[i]) {
			sent++
		}
	}

	if len(pending) > 0 {
		logger.Info().
			Int("candidates", len(pending)).
			Int("sent", sent).
			Msg("Notification retry finished")
	}
	return sent, nil
}

type draftTarget struct {
	kind string
	to   string
}

func (s *NotificationService) compose(event *entity.QuoteEvent) ([]*entity.Notification, error) {
	customer := event.Quote.Customer.Email

	var kinds []draftTarget
	switch event.EventType {
	case entity.EventTypeQuoteReceived:
		if s.adminEmail != "" {
			kinds = append(kinds, draftTarget{entity.KindQuoteReceivedAdmin, s.adminEmail})
		}
		if customer != "" {
			kinds = append(kinds, draftTarget{entity.KindQuoteReceivedCustomer, customer})
		}
	case entity.EventTypeQuoteSent:
		if customer != "" {
			kinds = append(kinds, draftTarget{entity.KindQuoteSent, customer})
		}
	default:
		logger.Info().
			Str("event_id", event.EventID).
			Str("event_type", event.EventType).
			Msg("Unknown event type, skipping")
		return nil, nil
	}

	quoteID := event.QuoteID
	if quoteID == "" {
		quoteID = event.Quote.ID
	}

	drafts := make([]*entity.Notification, 0, len(kinds))
	for _, k := range kinds {
		email, err := s.renderer.Render(k.kind, &event.Quote)
		if err != nil {
			return nil, err
		}
		drafts = append(drafts, &entity.Notification{
			EventID:   event.EventID,
			QuoteID:   quoteID,
			Kind:      k.kind,
			Recipient: k.to,
			Subject:   email.Subject,
			Body:      email.Body,
		})
	}
	return drafts, nil
}

func (s *NotificationService) deliver(ctx context.Context, n *entity.Notification) bool {
	if err := s.sender.Send(ctx, n.Recipient, n.Subject, n.Body); err != nil {
		metrics.NotificationsDelivered.WithLabelValues(n.Kind, "failed").Inc()
		logger.Warn().Err(err).
			Str("notification_id", n.ID.String()).
			Str("kind", n.Kind).
			Msg("Failed to send notification")
		if markErr := s.repo.MarkFailed(ctx, n.ID, err.Error()); markErr != nil {
			logger.Error().Err(markErr).Str("notification_id", n.ID.String()).Msg("Failed to mark notification failed")
		}
		return false
	}

	metrics.NotificationsDelivered.WithLabelValues(n.Kind, "sent").Inc()
	if err := s.repo.MarkSent(ctx, n.ID); err != nil {
		logger.Error().Err(err).Str("notification_id", n.ID.String()).Msg("Failed to mark notification sent")
	}
	logger.Info().
		Str("notification_id", n.ID.String()).
		Str("kind", n.Kind).
		Str("quote_id", n.QuoteID).
		Msg("Notification sent")
	return true
}
