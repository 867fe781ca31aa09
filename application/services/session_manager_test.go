package services

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type manualClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newSessionManagerForTest(clock *manualClock) *SessionManager {
	factory := func(userID string) *Session {
		return &Session{UserID: userID, Store: NewEngagementStore()}
	}
	return NewSessionManager(factory, 30*time.Minute, clock, zap.NewNop(), nil)
}

func TestSessionManager_Get_CreatesLazilyAndReuses(t *testing.T) {
	clock := &manualClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	m := newSessionManagerForTest(clock)

	first := m.Get("user1")
	second := m.Get("user1")
	other := m.Get("user2")

	assert.Same(t, first, second)
	assert.NotSame(t, first, other)
	assert.Equal(t, 2, m.ActiveCount())
}

func TestSessionManager_Sweep_EvictsIdleSessions(t *testing.T) {
	clock := &manualClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	m := newSessionManagerForTest(clock)

	m.Get("idle")
	clock.Advance(20 * time.Minute)
	m.Get("active")
	clock.Advance(15 * time.Minute)

	m.sweep()

	assert.Equal(t, 1, m.ActiveCount())
	// Recreating the evicted user yields a fresh session.
	recreated := m.Get("idle")
	require.NotNil(t, recreated)
	assert.Equal(t, 2, m.ActiveCount())
}

func TestSessionManager_Get_TouchResetsIdleClock(t *testing.T) {
	clock := &manualClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	m := newSessionManagerForTest(clock)

	m.Get("user1")
	clock.Advance(25 * time.Minute)
	m.Get("user1")
	clock.Advance(25 * time.Minute)

	m.sweep()

	assert.Equal(t, 1, m.ActiveCount(), "a touched session survives past the original deadline")
}
