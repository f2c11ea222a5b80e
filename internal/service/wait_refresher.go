package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/vogiaan1904/ticketbottle-servicequeue/pkg/logger"
)

// WaitRefresher periodically recomputes wait estimates so clients see
// numbers that track the live queue composition, not just the state at
// their last mutation.
type WaitRefresher interface {
	Start(ctx context.Context) error
	Stop() error
	Status() RefresherStatus
}

type RefresherStatus struct {
	IsRunning  bool      `json:"is_running"`
	StartedAt  time.Time `json:"started_at,omitempty"`
	LastRun    time.Time `json:"last_run,omitempty"`
	RunCount   int64     `json:"run_count"`
	ErrorCount int64     `json:"error_count"`
}

type waitRefresher struct {
	svc             QueueService
	interval        time.Duration
	shutdownTimeout time.Duration
	l               logger.Logger

	mu        sync.RWMutex
	isRunning bool
	startedAt time.Time
	stopCh    chan struct{}
	ticker    *time.Ticker
	wg        sync.WaitGroup

	lastRun    time.Time
	runCount   int64
	errorCount int64
}

func NewWaitRefresher(svc QueueService, interval, shutdownTimeout time.Duration, l logger.Logger) WaitRefresher {
	return &waitRefresher{
		svc:             svc,
		interval:        interval,
		shutdownTimeout: shutdownTimeout,
		l:               l,
		stopCh:          make(chan struct{}),
	}
}

func (r *waitRefresher) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.isRunning {
		return errors.New("wait refresher is already running")
	}

	r.isRunning = true
	r.startedAt = time.Now()
	r.ticker = time.NewTicker(r.interval)

	r.wg.Add(1)
	go r.loop(ctx)

	r.l.Infof(ctx, "wait refresher started: interval=%s", r.interval)
	return nil
}

func (r *waitRefresher) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.isRunning {
		return errors.New("wait refresher is not running")
	}

	close(r.stopCh)
	r.ticker.Stop()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.l.Info(context.Background(), "wait refresher stopped")
	case <-time.After(r.shutdownTimeout):
		r.l.Warn(context.Background(), "wait refresher shutdown timeout exceeded")
	}

	r.isRunning = false
	return nil
}

func (r *waitRefresher) loop(ctx context.Context) {
	defer r.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stopCh:
			return
		case <-r.ticker.C:
			r.refresh(ctx)
		}
	}
}

func (r *waitRefresher) refresh(ctx context.Context) {
	rctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	err := r.svc.RecomputeWaitTimes(rctx)

	r.mu.Lock()
	r.lastRun = time.Now()
	r.runCount++
	if err != nil {
		r.errorCount++
	}
	r.mu.Unlock()

	if err != nil && !errors.Is(err, ErrServiceClosed) {
		r.l.Errorf(ctx, "service.waitRefresher.refresh: %v", err)
	}
}

func (r *waitRefresher) Status() RefresherStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return RefresherStatus{
		IsRunning:  r.isRunning,
		StartedAt:  r.startedAt,
		LastRun:    r.lastRun,
		RunCount:   r.runCount,
		ErrorCount: r.errorCount,
	}
}
