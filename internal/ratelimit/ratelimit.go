// Package ratelimit admits or rejects requests with a sliding window per
// (client address, route) pair.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Policy bounds one route: at most Max requests within any Window.
type Policy struct {
	Window time.Duration
	Max    int
}

// Decision is the outcome of one admission check. RetryIn is how long the
// caller must wait before the oldest counted request leaves the window.
type Decision struct {
	Allowed bool
	RetryIn time.Duration
}

type key struct {
	addr  string
	route string
}

type window struct {
	stamps   []time.Time
	lastSeen time.Time
}

// Limiter is a process-wide sliding-window limiter. All read-modify-write
// sequences are serialized under one mutex so concurrent requests from the
// same client cannot both be admitted against a stale count.
type Limiter struct {
	mu       sync.Mutex
	windows  map[key]*window
	def      Policy
	policies map[string]Policy
	now      func() time.Time
}

// New creates a limiter with the given default policy.
func New(def Policy) *Limiter {
	return &Limiter{
		windows:  make(map[key]*window),
		def:      def,
		policies: make(map[string]Policy),
		now:      time.Now,
	}
}

// SetPolicy overrides the policy for one route.
func (l *Limiter) SetPolicy(route string, p Policy) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.policies[route] = p
}

func (l *Limiter) policyFor(route string) Policy {
	if p, ok := l.policies[route]; ok {
		return p
	}
	return l.def
}

// Admit checks whether a request from addr to route may proceed. Timestamps
// older than the window are purged before counting; on denial RetryIn is the
// remaining lifetime of the oldest surviving timestamp.
func (l *Limiter) Admit(addr, route string) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	p := l.policyFor(route)
	now := l.now()
	cutoff := now.Add(-p.Window)

	k := key{addr: addr, route: route}
	w, ok := l.windows[k]
	if !ok {
		w = &window{}
		l.windows[k] = w
	}

	kept := w.stamps[:0]
	for _, ts := range w.stamps {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	w.stamps = kept
	w.lastSeen = now

	if len(w.stamps) >= p.Max {
		return Decision{RetryIn: w.stamps[0].Add(p.Window).Sub(now)}
	}
	w.stamps = append(w.stamps, now)
	return Decision{Allowed: true}
}

// Sweep drops per-key state idle for longer than idleFor. The sliding window
// already self-prunes on access; this only bounds memory for clients that
// never return.
func (l *Limiter) Sweep(idleFor time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	cutoff := l.now().Add(-idleFor)
	for k, w := range l.windows {
		if w.lastSeen.Before(cutoff) {
			delete(l.windows, k)
		}
	}
}

// StartSweeper runs Sweep every interval until ctx is cancelled.
func (l *Limiter) StartSweeper(ctx context.Context, every, idleFor time.Duration) {
	go func() {
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				l.Sweep(idleFor)
			}
		}
	}()
}
