// Package ratelimit holds the in-process anti-spam throttle. State is
// best-effort: it is not persisted and resets on restart.
package ratelimit

import (
	"sync"
	"time"
)

// Action kinds throttled per user.
const (
	ActionCreatePost   = "create_post"
	ActionCreateReview = "create_review"
	ActionReport       = "report"
)

type key struct {
	userID uint
	action string
}

// Limiter enforces a minimum interval between two actions of the same kind
// by the same user. Safe for concurrent use by request handlers.
type Limiter struct {
	mu       sync.Mutex
	last     map[key]time.Time
	interval time.Duration

	stopOnce sync.Once
	stopCh   chan struct{}
}

func NewLimiter(interval time.Duration) *Limiter {
	l := &Limiter{
		last:     make(map[key]time.Time),
		interval: interval,
		stopCh:   make(chan struct{}),
	}
	go l.cleanup()
	return l
}

// Close останавливает фоновую горутину очистки.
func (l *Limiter) Close() {
	l.stopOnce.Do(func() { close(l.stopCh) })
}

// Allow reports whether the action may proceed now, and if so records it.
func (l *Limiter) Allow(userID uint, action string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	k := key{userID: userID, action: action}
	now := time.Now()
	if last, ok := l.last[k]; ok && now.Sub(last) < l.interval {
		return false
	}
	l.last[k] = now
	return true
}

// Reset clears all throttle state. Intended for tests.
func (l *Limiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.last = make(map[key]time.Time)
}

func (l *Limiter) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopCh:
			return
		case <-ticker.C:
			l.mu.Lock()
			cutoff := time.Now().Add(-l.interval)
			for k, t := range l.last {
				if t.Before(cutoff) {
					delete(l.last, k)
				}
			}
			l.mu.Unlock()
		}
	}
}
