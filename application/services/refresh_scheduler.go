package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	pkgerrors "campuspulse-backend/pkg/errors"
	"campuspulse-backend/pkg/observability"
)

// Refresher is the per-stream refresh work the scheduler drives.
type Refresher interface {
	RefreshEngagementAll(ctx context.Context)
	RefreshNotificationsAll(ctx context.Context)
}

// RefreshScheduler periodically refreshes engagement and notification
// state on independent intervals. A one-shot Trigger runs both streams
// immediately, which the API exposes for clients regaining visibility.
// Intervals can be retuned at runtime without dropping a tick.
type RefreshScheduler struct {
	refresher Refresher
	logger    *zap.Logger
	metrics   *observability.Metrics

	mu                   sync.Mutex
	engagementInterval   time.Duration
	notificationInterval time.Duration
	engagementTicker     *time.Ticker
	notificationTicker   *time.Ticker

	trigger chan struct{}
	stop    chan struct{}
	done    chan struct{}
	started bool
}

// NewRefreshScheduler creates a stopped scheduler.
func NewRefreshScheduler(
	refresher Refresher,
	engagementInterval, notificationInterval time.Duration,
	logger *zap.Logger,
	metrics *observability.Metrics,
) *RefreshScheduler {
	return &RefreshScheduler{
		refresher:            refresher,
		logger:               logger,
		metrics:              metrics,
		engagementInterval:   engagementInterval,
		notificationInterval: notificationInterval,
		trigger:              make(chan struct{}, 1),
		stop:                 make(chan struct{}),
		done:                 make(chan struct{}),
	}
}

// Start launches the tick loop. Calling Start twice is a no-op.
func (s *RefreshScheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.engagementTicker = time.NewTicker(s.engagementInterval)
	s.notificationTicker = time.NewTicker(s.notificationInterval)
	s.mu.Unlock()

	go s.run(ctx)
}

func (s *RefreshScheduler) run(ctx context.Context) {
	defer close(s.done)
	defer s.engagementTicker.Stop()
	defer s.notificationTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stop:
			return
		case <-s.engagementTicker.C:
			s.runStream(ctx, "engagement", s.refresher.RefreshEngagementAll)
		case <-s.notificationTicker.C:
			s.runStream(ctx, "notifications", s.refresher.RefreshNotificationsAll)
		case <-s.trigger:
			s.runStream(ctx, "engagement", s.refresher.RefreshEngagementAll)
			s.runStream(ctx, "notifications", s.refresher.RefreshNotificationsAll)
		}
	}
}

func (s *RefreshScheduler) runStream(ctx context.Context, stream string, fn func(context.Context)) {
	start := time.Now()
	fn(ctx)
	if s.metrics != nil {
		s.metrics.ObserveRefresh(stream, start, nil)
	}
}

// Trigger requests an immediate refresh of both streams. Requests
// arriving while one is already queued collapse into it.
func (s *RefreshScheduler) Trigger() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

// SetIntervals retunes the tick periods. Non-positive values keep the
// current interval.
func (s *RefreshScheduler) SetIntervals(engagement, notification time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if engagement > 0 && engagement != s.engagementInterval {
		s.engagementInterval = engagement
		if s.engagementTicker != nil {
			s.engagementTicker.Reset(engagement)
		}
		s.logger.Info("Engagement refresh interval updated", zap.Duration("interval", engagement))
	}
	if notification > 0 && notification != s.notificationInterval {
		s.notificationInterval = notification
		if s.notificationTicker != nil {
			s.notificationTicker.Reset(notification)
		}
		s.logger.Info("Notification refresh interval updated", zap.Duration("interval", notification))
	}
}

// Stop halts the loop and waits for the in-progress tick to finish.
func (s *RefreshScheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	select {
	case <-s.stop:
	default:
		close(s.stop)
	}
	<-s.done
}

// logRefreshError classifies a per-session refresh failure. Transient
// store errors are expected between ticks and log at warn; anything
// else logs at error.
func logRefreshError(logger *zap.Logger, stream, userID string, err error) {
	if pkgerrors.IsTransient(err) {
		logger.Warn("Refresh deferred to next tick",
			zap.String("stream", stream),
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return
	}
	logger.Error("Refresh failed",
		zap.String("stream", stream),
		zap.String("user_id", userID),
		zap.Error(err),
	)
}
