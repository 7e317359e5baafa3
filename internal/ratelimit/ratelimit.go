// Package ratelimit throttles public endpoints per client key.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	sweepInterval = time.Minute
	idleTTL       = 3 * time.Minute
)

// Decision is the outcome of a single Allow call.
type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
}

// Limiter decides whether the client identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) Decision
	Close() error
}

type client struct {
	lim  *rate.Limiter
	seen time.Time
}

// Memory keeps a token bucket per key in process memory.
type Memory struct {
	mu      sync.Mutex
	clients map[string]*client
	r       rate.Limit
	burst   int
	stopCh  chan struct{}
	once    sync.Once
}

// NewMemory returns a Memory limiter refilling rps tokens per second up to burst.
func NewMemory(rps float64, burst int) *Memory {
	m := &Memory{
		clients: make(map[string]*client),
		r:       rate.Limit(rps),
		burst:   burst,
		stopCh:  make(chan struct{}),
	}
	go m.sweepLoop()
	return m
}

// Allow takes one token from key's bucket.
func (m *Memory) Allow(_ context.Context, key string) Decision {
	if m.get(key).Allow() {
		return Decision{Allowed: true}
	}
	retry := time.Second
	if m.r > 0 {
		retry = time.Duration(float64(time.Second) / float64(m.r))
	}
	return Decision{Allowed: false, RetryAfter: retry}
}

// Close stops the sweep goroutine.
func (m *Memory) Close() error {
	m.once.Do(func() { close(m.stopCh) })
	return nil
}

func (m *Memory) get(key string) *rate.Limiter {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.clients[key]; ok {
		c.seen = time.Now()
		return c.lim
	}
	l := rate.NewLimiter(m.r, m.burst)
	m.clients[key] = &client{lim: l, seen: time.Now()}
	return l
}

func (m *Memory) sweepLoop() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.cleanup(time.Now())
		case <-m.stopCh:
			return
		}
	}
}

func (m *Memory) cleanup(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, c := range m.clients {
		if now.Sub(c.seen) > idleTTL {
			delete(m.clients, key)
		}
	}
}
