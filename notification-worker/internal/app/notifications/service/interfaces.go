package service

import (
	"context"

	"spectre/notification-worker/internal/app/notifications/entity"
)

// EmailSender - доставка одного HTML письма
type EmailSender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// NotificationServiceInterface - обработка событий quote_events и повтор неудачных писем
type NotificationServiceInterface interface {
	ProcessEvent(ctx context.Context, event *entity.QuoteEvent) error
	RetryFailed(ctx context.Context) (int, error)
}

var (
	_ NotificationServiceInterface = (*NotificationService)(nil)
	_ EmailSender                  = (*SMTPSender)(nil)
)
