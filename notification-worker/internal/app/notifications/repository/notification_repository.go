package repository

import (
	"context"
	"fmt"

	"spectre/notification-worker/internal/app/notifications/entity"
	"spectre/pkg/metrics"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const notificationsTable = "notifications"

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) CreateBatch(ctx context.Context, notifications []*entity.Notification) (err error) {
	defer metrics.NewStoreTimer(metricsService, metrics.StoreOpInsert, notificationsTable).Observe(&err)

	for _, n := range notifications {
		if n.ID == uuid.Nil {
			n.ID = uuid.New()
		}
		if n.Status == "" {
			n.Status = entity.NotificationStatusPending
		}
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, n := range notifications {
			if err := tx.Create(n).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to create notifications: %w", err)
	}
	return nil
}

func (r *notificationRepository) MarkSent(ctx context.Context, id uuid.UUID) (err error) {
	defer metrics.NewStoreTimer(metricsService, metrics.StoreOpUpdate, notificationsTable).Observe(&err)

	return r.update(ctx, id, map[string]interface{}{
		"status":     entity.NotificationStatusSent,
		"attempts":   gorm.Expr("attempts + 1"),
		"last_error": "",
	})
}

func (r *notificationRepository) MarkFailed(ctx context.Context, id uuid.UUID, lastError string) (err error) {
	defer metrics.NewStoreTimer(metricsService, metrics.StoreOpUpdate, notificationsTable).Observe(&err)

	return r.update(ctx, id, map[string]interface{}{
		"status":     entity.NotificationStatusFailed,
		"attempts":   gorm.Expr("attempts + 1"),
		"last_error": lastError,
	})
}

func (r *notificationRepository) update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&entity.Notification{}).
		Where("id = ?", id).
		Updates(fields)

	if result.Error != nil {
		return fmt.Errorf("failed to update notification: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (r *notificationRepository) ListRetryable(ctx context.Context, maxAttempts, limit int) (_ []entity.Notification, err error) {
	defer metrics.NewStoreTimer(metricsService, metrics.StoreOpFind, notificationsTable).Observe(&err)

	var notifications []entity.Notification
	result := r.db.WithContext(ctx).
		Where("status = ? AND attempts < ?", entity.NotificationStatusFailed, maxAttempts).
		Order("created_at ASC").
		Limit(limit).
		Find(&notifications)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list retryable notifications: %w", result.Error)
	}
	return notifications, nil
}
