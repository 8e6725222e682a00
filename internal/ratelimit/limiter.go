package ratelimit

import (
	"fmt"
	"math"
	"sync"
	"time"
)

// Decision is the outcome of one admission check.
type Decision struct {
	Allowed bool
	// Message carries retry guidance when the request was rejected
	Message string
	// Remaining is the number of submissions left in the current window
	Remaining int
	// RetryAfter is how long until the client's window resets
	RetryAfter time.Duration
}

// Limiter gates submissions with a fixed-window counter per client. A window
// starts on the client's first request and all requests inside it share one
// counter; once the window has elapsed the next request opens a fresh one.
//
// Check-and-increment runs under a single mutex so concurrent requests for the
// same client can never both slip under the threshold.
type Limiter struct {
	store       Store
	now         func() time.Time
	window      time.Duration
	maxRequests int

	mu   sync.Mutex
	stop chan struct{}
	once sync.Once
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock replaces the wall clock, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		l.now = now
	}
}

// NewLimiter creates a fixed-window limiter allowing maxRequests per client
// per window.
func NewLimiter(store Store, maxRequests int, window time.Duration, opts ...Option) *Limiter {
	l := &Limiter{
		store:       store,
		now:         time.Now,
		window:      window,
		maxRequests: maxRequests,
		stop:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Admit records one submission attempt for clientID and decides whether it
// may proceed.
func (l *Limiter) Admit(clientID string) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	rec, ok := l.store.Get(clientID)
	if !ok || now.Sub(rec.WindowStart) > l.window {
		// First request in a fresh window; an expired record is replaced,
		// never merged
		l.store.Set(clientID, Record{WindowStart: now, Count: 1}, l.window)
		return Decision{Allowed: true, Remaining: l.maxRequests - 1}
	}

	retryAfter := rec.WindowStart.Add(l.window).Sub(now)

	if rec.Count >= l.maxRequests {
		return Decision{
			Allowed:    false,
			Message:    retryMessage(retryAfter),
			RetryAfter: retryAfter,
		}
	}

	rec.Count++
	l.store.Set(clientID, rec, retryAfter)
	return Decision{Allowed: true, Remaining: l.maxRequests - rec.Count, RetryAfter: retryAfter}
}

// StartSweeper purges expired records every interval until Stop is called.
// Purging is an optimization only; Admit treats expired records as absent
// whether or not they have been swept.
func (l *Limiter) StartSweeper(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				l.mu.Lock()
				l.store.Sweep()
				l.mu.Unlock()
			case <-l.stop:
				return
			}
		}
	}()
}

// Stop terminates the background sweeper.
func (l *Limiter) Stop() {
	l.once.Do(func() {
		close(l.stop)
	})
}

func retryMessage(retryAfter time.Duration) string {
	minutes := int(math.Ceil(retryAfter.Minutes()))
	if minutes <= 1 {
		return "Too many requests. Please try again in a minute."
	}
	return fmt.Sprintf("Too many requests. Please try again in %d minutes.", minutes)
}
