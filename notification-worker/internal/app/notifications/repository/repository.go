package repository

import (
	"context"
	"errors"

	"spectre/notification-worker/internal/app/notifications/entity"

	"github.com/google/uuid"
)

var ErrNotificationNotFound = errors.New("notification not found")

const metricsService = "notification-worker"

// NotificationRepository - журнал писем в PostgreSQL
type NotificationRepository interface {
	// CreateBatch пишет все письма события одной транзакцией: либо все, либо ни одного
	CreateBatch(ctx context.Context, notifications []*entity.Notification) error

	// MarkSent и MarkFailed увеличивают attempts на 1
	MarkSent(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, lastError string) error

	// ListRetryable - failed письма с attempts < maxAttempts, старые первыми
	ListRetryable(ctx context.Context, maxAttempts, limit int) ([]entity.Notification, error)
}

// EventDeduplicator отмечает обработанные event_id в Redis
type EventDeduplicator interface {
	// Claim возвращает false, если событие уже было принято
	Claim(ctx context.Context, eventID string) (bool, error)
	// Release снимает отметку, чтобы повторная доставка обработала событие заново
	Release(ctx context.Context, eventID string) error
}
