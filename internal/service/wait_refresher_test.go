package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vogiaan1904/ticketbottle-servicequeue/pkg/logger"
)

func TestWaitRefresher_Lifecycle(t *testing.T) {
	svc := setupTestQueueService(t)
	r := NewWaitRefresher(svc, 10*time.Millisecond, time.Second, logger.InitializeTestZapLogger())
	ctx := context.Background()

	status := r.Status()
	assert.False(t, status.IsRunning)
	assert.Zero(t, status.RunCount)

	require.NoError(t, r.Start(ctx))
	assert.Error(t, r.Start(ctx), "second start must be rejected")

	require.Eventually(t, func() bool {
		return r.Status().RunCount >= 2
	}, time.Second, 5*time.Millisecond)

	status = r.Status()
	assert.True(t, status.IsRunning)
	assert.False(t, status.StartedAt.IsZero())
	assert.False(t, status.LastRun.IsZero())
	assert.Zero(t, status.ErrorCount)

	require.NoError(t, r.Stop())
	assert.False(t, r.Status().IsRunning)
	assert.Error(t, r.Stop(), "second stop must be rejected")
}

func TestWaitRefresher_CountsErrors(t *testing.T) {
	svc := setupTestQueueService(t)
	require.NoError(t, svc.Shutdown(context.Background()))

	r := NewWaitRefresher(svc, 10*time.Millisecond, time.Second, logger.InitializeTestZapLogger())
	require.NoError(t, r.Start(context.Background()))
	defer func() { _ = r.Stop() }()

	require.Eventually(t, func() bool {
		return r.Status().ErrorCount >= 1
	}, time.Second, 5*time.Millisecond)
}
