// Package ratelimit provides per-client sliding-window admission control.
// The in-memory limiter is the default; a Redis-backed variant exists for
// deployments running more than one replica.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/snowch/vast-sp-console/internal/domain/service"
)

// SlidingWindow is an in-memory sliding-window rate limiter. Each client key
// owns an ordered sequence of admitted timestamps; a request is admitted
// only when fewer than maxCalls timestamps remain inside the trailing
// window. State does not survive a process restart.
type SlidingWindow struct {
	mu       sync.Mutex
	windows  map[string][]time.Time
	maxCalls int
	window   time.Duration
	now      func() time.Time
}

var _ service.RateLimitService = (*SlidingWindow)(nil)

// NewSlidingWindow creates a limiter admitting maxCalls requests per client
// within the trailing window.
func NewSlidingWindow(maxCalls int, window time.Duration) *SlidingWindow {
	return &SlidingWindow{
		windows:  make(map[string][]time.Time),
		maxCalls: maxCalls,
		window:   window,
		now:      time.Now,
	}
}

// Allow implements service.RateLimitService.
func (s *SlidingWindow) Allow(_ context.Context, clientKey string) (bool, error) {
	return s.AllowAt(clientKey, s.now()), nil
}

// AllowAt evaluates admission at an explicit instant. Timestamps older than
// the window are evicted first; a rejected request is not recorded, so
// hammering a full window does not extend the lockout.
func (s *SlidingWindow) AllowAt(clientKey string, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := now.Add(-s.window)
	seq := s.windows[clientKey]

	kept := 0
	for ; kept < len(seq); kept++ {
		if !seq[kept].Before(cutoff) {
			break
		}
	}
	seq = seq[kept:]

	if len(seq) >= s.maxCalls {
		s.windows[clientKey] = seq
		return false
	}

	s.windows[clientKey] = append(seq, now)
	return true
}

// Pending reports how many admitted requests remain inside the window for a
// client. Used by tests and status endpoints.
func (s *SlidingWindow) Pending(clientKey string, now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := now.Add(-s.window)
	count := 0
	for _, ts := range s.windows[clientKey] {
		if !ts.Before(cutoff) {
			count++
		}
	}
	return count
}
