package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"campuspulse-backend/pkg/observability"
	"campuspulse-backend/pkg/utils"
)

// Session bundles the per-user moving parts: the engagement store the
// user reads from, the coordinator that mutates it, the feed service
// that refreshes it, and the notification inbox.
type Session struct {
	UserID        string
	Store         *EngagementStore
	Coordinator   *MutationCoordinator
	Feed          *FeedService
	Notifications *NotificationService

	lastActive time.Time
}

// SessionFactory builds a fresh session for a user.
type SessionFactory func(userID string) *Session

// SessionManager creates sessions lazily on first touch and evicts
// them after an idle period so abandoned users stop consuming refresh
// bandwidth.
type SessionManager struct {
	factory     SessionFactory
	idleTimeout time.Duration
	clock       utils.Clock
	logger      *zap.Logger
	metrics     *observability.Metrics

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewSessionManager creates a session manager.
func NewSessionManager(
	factory SessionFactory,
	idleTimeout time.Duration,
	clock utils.Clock,
	logger *zap.Logger,
	metrics *observability.Metrics,
) *SessionManager {
	return &SessionManager{
		factory:     factory,
		idleTimeout: idleTimeout,
		clock:       clock,
		logger:      logger,
		metrics:     metrics,
		sessions:    make(map[string]*Session),
	}
}

// Get returns the user's session, creating it on first touch. Every
// call refreshes the idle clock.
func (m *SessionManager) Get(userID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[userID]
	if !ok {
		session = m.factory(userID)
		m.sessions[userID] = session
		m.logger.Info("Session created", zap.String("user_id", userID))
	}
	session.lastActive = m.clock.Now()
	m.updateGauge()
	return session
}

// StartSweeper evicts idle sessions on a fixed cadence until the
// context ends.
func (m *SessionManager) StartSweeper(ctx context.Context) {
	interval := m.idleTimeout / 2
	if interval < time.Minute {
		interval = time.Minute
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.sweep()
			}
		}
	}()
}

func (m *SessionManager) sweep() {
	cutoff := m.clock.Now().Add(-m.idleTimeout)

	m.mu.Lock()
	defer m.mu.Unlock()

	for userID, session := range m.sessions {
		if session.lastActive.Before(cutoff) {
			delete(m.sessions, userID)
			m.logger.Info("Session evicted after idle timeout", zap.String("user_id", userID))
		}
	}
	m.updateGauge()
}

// RefreshEngagementAll refreshes every active session's engagement
// state. Failures are logged per session and never abort the sweep;
// the failing session retries on the next tick.
func (m *SessionManager) RefreshEngagementAll(ctx context.Context) {
	for _, session := range m.active() {
		if err := session.Feed.RefreshAll(ctx); err != nil {
			logRefreshError(m.logger, "engagement", session.UserID, err)
		}
	}
}

// RefreshNotificationsAll refreshes every active session's inbox.
func (m *SessionManager) RefreshNotificationsAll(ctx context.Context) {
	for _, session := range m.active() {
		if err := session.Notifications.Refresh(ctx); err != nil {
			logRefreshError(m.logger, "notifications", session.UserID, err)
		}
	}
}

// ActiveCount reports the number of live sessions.
func (m *SessionManager) ActiveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *SessionManager) active() []*Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	return out
}

func (m *SessionManager) updateGauge() {
	if m.metrics != nil {
		m.metrics.ActiveSessions.Set(float64(len(m.sessions)))
	}
}
