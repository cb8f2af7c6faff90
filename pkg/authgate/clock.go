package authgate

import (
	"sort"
	"time"
)

// DefaultValidity is how long a recorded login is trusted before the host is
// treated as logged out again.
const DefaultValidity = 2 * time.Hour

// SessionRecord is a point-in-time view of a host's login state.
type SessionRecord struct {
	Host              string
	LastAuthenticated time.Time
	ExpiresAt         time.Time
	Valid             bool
}

// SessionClock tracks the last successful authentication per host.
//
// It is not safe for concurrent use; the Gateway serialises every access
// through its own mutex so that check-then-mark sequences cannot interleave.
type SessionClock struct {
	validity time.Duration
	now      func() time.Time
	last     map[string]time.Time
}

// NewSessionClock returns an empty clock. A non-positive validity falls back
// to DefaultValidity and a nil now uses time.Now.
func NewSessionClock(validity time.Duration, now func() time.Time) *SessionClock {
	if validity <= 0 {
		validity = DefaultValidity
	}
	if now == nil {
		now = time.Now
	}
	return &SessionClock{
		validity: validity,
		now:      now,
		last:     make(map[string]time.Time),
	}
}

// Valid reports whether host logged in less than one validity window ago.
// Hosts without a record are never valid.
func (c *SessionClock) Valid(host string) bool {
	at, ok := c.last[host]
	if !ok {
		return false
	}
	return c.now().Before(at.Add(c.validity))
}

// MarkAuthenticated records (or overwrites) the login time for host.
func (c *SessionClock) MarkAuthenticated(host string, at time.Time) {
	c.last[host] = at
}

// Now returns the clock's notion of the current time.
func (c *SessionClock) Now() time.Time {
	return c.now()
}

// Validity returns the configured validity window.
func (c *SessionClock) Validity() time.Duration {
	return c.validity
}

// Snapshot copies every record, sorted by host. Stale records are kept and
// reported with Valid=false.
func (c *SessionClock) Snapshot() []SessionRecord {
	now := c.now()
	out := make([]SessionRecord, 0, len(c.last))
	for host, at := range c.last {
		expires := at.Add(c.validity)
		out = append(out, SessionRecord{
			Host:              host,
			LastAuthenticated: at,
			ExpiresAt:         expires,
			Valid:             now.Before(expires),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Host < out[j].Host })
	return out
}
