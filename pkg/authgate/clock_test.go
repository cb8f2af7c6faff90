package authgate_test

import (
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/campusgate/pkg/authgate"
	"github.com/stretchr/testify/require"
)

// manualClock is a settable time source shared by the tests in this package.
type manualClock struct {
	mu sync.Mutex
	t  time.Time
}

func newManualClock() *manualClock {
	return &manualClock{t: time.Date(2024, 9, 1, 8, 0, 0, 0, time.UTC)}
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

func TestSessionClockValidity(t *testing.T) {
	t.Parallel()

	t.Run("unknown host is not valid", func(t *testing.T) {
		clock := authgate.NewSessionClock(0, nil)
		require.False(t, clock.Valid("ecard.fudan.edu.cn"))
	})

	t.Run("valid strictly inside the window", func(t *testing.T) {
		mc := newManualClock()
		clock := authgate.NewSessionClock(authgate.DefaultValidity, mc.Now)
		clock.MarkAuthenticated("ecard.fudan.edu.cn", mc.Now())

		require.True(t, clock.Valid("ecard.fudan.edu.cn"))

		mc.Advance(2*time.Hour - time.Nanosecond)
		require.True(t, clock.Valid("ecard.fudan.edu.cn"))

		mc.Advance(time.Nanosecond)
		require.False(t, clock.Valid("ecard.fudan.edu.cn"), "exactly two hours later is stale")

		mc.Advance(time.Hour)
		require.False(t, clock.Valid("ecard.fudan.edu.cn"))
	})

	t.Run("hosts are independent", func(t *testing.T) {
		mc := newManualClock()
		clock := authgate.NewSessionClock(0, mc.Now)
		clock.MarkAuthenticated("a.example.edu", mc.Now())

		require.True(t, clock.Valid("a.example.edu"))
		require.False(t, clock.Valid("b.example.edu"))
		require.False(t, clock.Valid("a.example.edu:8443"), "authority includes the port")
	})

	t.Run("mark overwrites older record", func(t *testing.T) {
		mc := newManualClock()
		clock := authgate.NewSessionClock(time.Hour, mc.Now)
		clock.MarkAuthenticated("a.example.edu", mc.Now())

		mc.Advance(90 * time.Minute)
		require.False(t, clock.Valid("a.example.edu"))

		clock.MarkAuthenticated("a.example.edu", mc.Now())
		require.True(t, clock.Valid("a.example.edu"))
	})
}

func TestSessionClockSnapshot(t *testing.T) {
	t.Parallel()

	mc := newManualClock()
	clock := authgate.NewSessionClock(time.Hour, mc.Now)
	require.Equal(t, time.Hour, clock.Validity())

	clock.MarkAuthenticated("b.example.edu", mc.Now())
	mc.Advance(2 * time.Hour)
	clock.MarkAuthenticated("a.example.edu", mc.Now())

	records := clock.Snapshot()
	require.Len(t, records, 2)

	require.Equal(t, "a.example.edu", records[0].Host)
	require.True(t, records[0].Valid)
	require.Equal(t, mc.Now().Add(time.Hour), records[0].ExpiresAt)

	require.Equal(t, "b.example.edu", records[1].Host)
	require.False(t, records[1].Valid, "stale records are kept, not removed")
}
