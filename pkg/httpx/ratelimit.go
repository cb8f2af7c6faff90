package httpx

import (
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/campusgate/pkg/slogx"
	"golang.org/x/time/rate"
)

// RateLimit allows Requests per Window with bursts of up to Burst.
type RateLimit struct {
	Requests int
	Window   time.Duration
	Burst    int
}

// Profiles used by the gateway API. Override with LimitFromEnv.
var (
	// FetchLimit guards authenticated fetches, each of which may reach the
	// campus network.
	FetchLimit = RateLimit{Requests: 60, Window: time.Minute, Burst: 20}

	// AdminLimit guards credential and audit endpoints.
	AdminLimit = RateLimit{Requests: 10, Window: time.Minute, Burst: 5}

	// ReadLimit guards cheap read-only endpoints.
	ReadLimit = RateLimit{Requests: 600, Window: time.Minute, Burst: 100}
)

// LimitFromEnv overlays RATELIMIT_<name>_REQUESTS, RATELIMIT_<name>_WINDOW_SEC
// and RATELIMIT_<name>_BURST on def. Invalid or non-positive values are ignored.
func LimitFromEnv(name string, def RateLimit) RateLimit {
	lim := def
	if n, ok := positiveEnv("RATELIMIT_" + name + "_REQUESTS"); ok {
		lim.Requests = n
	}
	if n, ok := positiveEnv("RATELIMIT_" + name + "_WINDOW_SEC"); ok {
		lim.Window = time.Duration(n) * time.Second
	}
	if n, ok := positiveEnv("RATELIMIT_" + name + "_BURST"); ok {
		lim.Burst = n
	}
	return lim
}

func positiveEnv(key string) (int, bool) {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// KeyFunc groups requests into rate limit buckets. An empty key is not limited.
type KeyFunc func(*http.Request) string

// ClientIP uses the first X-Forwarded-For hop, then X-Real-IP, then the
// connection's remote address.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// SubjectOrIP keys authenticated callers by subject and anonymous ones by IP.
func SubjectOrIP(r *http.Request) string {
	if sub := Subject(r.Context()); sub != "" {
		return "sub:" + sub
	}
	return "ip:" + ClientIP(r)
}

const idleLimiterTTL = 10 * time.Minute

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter keeps one token bucket per key.
type Limiter struct {
	limit RateLimit
	every rate.Limit

	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
	now       func() time.Time
}

func NewLimiter(limit RateLimit) *Limiter {
	return &Limiter{
		limit:     limit,
		every:     rate.Limit(float64(limit.Requests) / limit.Window.Seconds()),
		buckets:   make(map[string]*bucket),
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

// Reserve takes a token for key. When none is available it returns false and
// how long until one will be.
func (l *Limiter) Reserve(key string) (bool, time.Duration) {
	now := l.now()

	l.mu.Lock()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.every, l.limit.Burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now
	l.sweepLocked(now)
	l.mu.Unlock()

	if b.limiter.AllowN(now, 1) {
		return true, 0
	}
	r := b.limiter.ReserveN(now, 1)
	delay := r.DelayFrom(now)
	r.CancelAt(now)
	return false, delay
}

func (l *Limiter) sweepLocked(now time.Time) {
	if now.Sub(l.lastSweep) < idleLimiterTTL {
		return
	}
	l.lastSweep = now
	for k, b := range l.buckets {
		if now.Sub(b.lastSeen) > idleLimiterTTL {
			delete(l.buckets, k)
		}
	}
}

// RateLimitBy rejects requests over limit with 429 and a Retry-After header.
func RateLimitBy(limit RateLimit, key KeyFunc) Middleware {
	l := NewLimiter(limit)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			k := key(r)
			if k == "" {
				next.ServeHTTP(w, r)
				return
			}

			ok, delay := l.Reserve(k)
			if ok {
				next.ServeHTTP(w, r)
				return
			}

			retryAfter := max(int(delay.Round(time.Second).Seconds()), 1)
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit.Requests))
			w.Header().Set("X-RateLimit-Window", limit.Window.String())

			slogx.FromContext(r.Context()).Warn("rate limit exceeded",
				"key", k,
				"path", r.URL.Path,
				"retry_after", retryAfter,
			)
			WriteError(w, http.StatusTooManyRequests, "rate_limit_exceeded", "too many requests, retry later")
		})
	}
}
