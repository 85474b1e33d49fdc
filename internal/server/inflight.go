package server

import (
	"sync"
	"time"

	"pickleball/internal/apperr"

	"github.com/gin-gonic/gin"
)

// inflightTracker remembers which caller is currently running which
// mutating request. Keys are per caller, so unrelated callers never wait on
// each other. An entry older than ttl is treated as abandoned.
type inflightTracker struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]time.Time
}

func newInflightTracker(ttl time.Duration) *inflightTracker {
	return &inflightTracker{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]time.Time),
	}
}

// acquire marks key as running. It reports false if a live entry exists.
func (t *inflightTracker) acquire(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	if started, ok := t.entries[key]; ok && (t.ttl <= 0 || now.Sub(started) < t.ttl) {
		return false
	}
	t.entries[key] = now
	t.sweep(now)
	return true
}

func (t *inflightTracker) release(key string) {
	t.mu.Lock()
	delete(t.entries, key)
	t.mu.Unlock()
}

// sweep drops expired entries; callers hold mu.
func (t *inflightTracker) sweep(now time.Time) {
	if t.ttl <= 0 {
		return
	}
	for key, started := range t.entries {
		if now.Sub(started) >= t.ttl {
			delete(t.entries, key)
		}
	}
}

func (t *inflightTracker) size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// dedupe rejects a second identical request from the same caller while the
// first is still running. It must run after requireAuth.
func (s *Server) dedupe(operation string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := callerID(c).String() + "|" + operation + "|" + c.Request.URL.Path
		if !s.inflight.acquire(key) {
			writeError(c, apperr.New(apperr.KindTooManyRequests, apperr.CodeRequestInFlight,
				"an identical request is already in progress"))
			return
		}
		defer s.inflight.release(key)
		c.Next()
	}
}
