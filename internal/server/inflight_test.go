package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pickleball/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func TestInflightTrackerAcquireRelease(t *testing.T) {
	tracker := newInflightTracker(time.Minute)
	if !tracker.acquire("a|join|/x") {
		t.Fatalf("expected first acquire to succeed")
	}
	if tracker.acquire("a|join|/x") {
		t.Fatalf("expected duplicate acquire to fail")
	}
	if !tracker.acquire("b|join|/x") {
		t.Fatalf("other caller must not be blocked")
	}
	tracker.release("a|join|/x")
	if !tracker.acquire("a|join|/x") {
		t.Fatalf("expected acquire after release")
	}
}

func TestInflightTrackerExpiresAbandonedEntries(t *testing.T) {
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	tracker := newInflightTracker(5 * time.Second)
	tracker.now = func() time.Time { return now }
	if !tracker.acquire("stale") {
		t.Fatalf("expected acquire")
	}
	now = now.Add(6 * time.Second)
	if !tracker.acquire("stale") {
		t.Fatalf("expected expired entry to be replaced")
	}
	if !tracker.acquire("fresh") {
		t.Fatalf("expected acquire")
	}
	now = now.Add(10 * time.Second)
	tracker.acquire("other")
	if got := tracker.size(); got != 1 {
		t.Fatalf("expected expired entries swept, got %d", got)
	}
}

func TestDedupeRejectsConcurrentDuplicate(t *testing.T) {
	srv := &Server{inflight: newInflightTracker(time.Minute)}
	started := make(chan struct{})
	finish := make(chan struct{})

	router := gin.New()
	router.Use(func(c *gin.Context) {
		id, err := uuid.Parse(c.GetHeader("X-Caller"))
		if err != nil {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Set(callerKey, auth.Profile{ID: id})
		c.Next()
	})
	router.POST("/api/games/:id/join", srv.dedupe("join_game"), func(c *gin.Context) {
		if c.GetHeader("X-Block") != "" {
			close(started)
			<-finish
		}
		c.Status(http.StatusCreated)
	})

	alice := uuid.NewString()
	bob := uuid.NewString()
	send := func(caller string, block bool) int {
		req := httptest.NewRequest(http.MethodPost, "/api/games/g1/join", nil)
		req.Header.Set("X-Caller", caller)
		if block {
			req.Header.Set("X-Block", "1")
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec.Code
	}

	first := make(chan int, 1)
	go func() { first <- send(alice, true) }()
	<-started

	if code := send(alice, false); code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 for duplicate, got %d", code)
	}
	if code := send(bob, false); code != http.StatusCreated {
		t.Fatalf("expected other caller to proceed, got %d", code)
	}

	close(finish)
	if code := <-first; code != http.StatusCreated {
		t.Fatalf("expected first request to finish, got %d", code)
	}
	if code := send(alice, false); code != http.StatusCreated {
		t.Fatalf("expected retry after completion to succeed, got %d", code)
	}
}
