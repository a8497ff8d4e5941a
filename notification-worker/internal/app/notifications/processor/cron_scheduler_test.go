package processor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCronScheduler(t *testing.T) {
	svc := new(MockNotificationService)

	scheduler := NewCronScheduler(svc)

	assert.NotNil(t, scheduler.cron)
	assert.Equal(t, svc, scheduler.svc)
}

func TestCronScheduler_Start_RegistersJob(t *testing.T) {
	scheduler := NewCronScheduler(new(MockNotificationService))

	err := scheduler.Start(context.Background(), "*/5 * * * *")

	require.NoError(t, err)
	assert.Len(t, scheduler.GetEntries(), 1)
	scheduler.Stop()
}

func TestCronScheduler_Start_DefaultSchedule(t *testing.T) {
	scheduler := NewCronScheduler(new(MockNotificationService))

	err := scheduler.Start(context.Background(), "")

	require.NoError(t, err)
	assert.Len(t, scheduler.GetEntries(), 1)
	scheduler.Stop()
}

func TestCronScheduler_Start_InvalidSchedule(t *testing.T) {
	scheduler := NewCronScheduler(new(MockNotificationService))

	err := scheduler.Start(context.Background(), "every now and then")

	assert.Error(t, err)
	assert.Empty(t, scheduler.GetEntries())
}

func TestCronScheduler_Retry(t *testing.T) {
	svc := new(MockNotificationService)
	scheduler := NewCronScheduler(svc)
	ctx := context.Background()

	svc.On("RetryFailed", ctx).Return(2, nil).Once()
	scheduler.retry(ctx)

	svc.On("RetryFailed", ctx).Return(0, errors.New("db down")).Once()
	scheduler.retry(ctx)

	svc.AssertNumberOfCalls(t, "RetryFailed", 2)
}

func TestCronScheduler_Retry_SkipsCancelledContext(t *testing.T) {
	svc := new(MockNotificationService)
	scheduler := NewCronScheduler(svc)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	scheduler.retry(ctx)

	svc.AssertNotCalled(t, "RetryFailed", ctx)
}
