package service

import (
	"math"
	"sync"
	"time"
)

const (
	limiterSweepInterval = 5 * time.Minute
	limiterIdleTTL       = 10 * time.Minute
)

// Limiter is a per-caller token bucket. Each key starts with a full bucket
// of burst tokens which refills at rps tokens per second.
type Limiter struct {
	mu      sync.Mutex
	callers map[string]*allowance
	rps     float64
	burst   float64
	now     func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

type allowance struct {
	tokens float64
	seen   time.Time
}

// NewLimiter starts a Limiter and its idle-key sweeper. Call Close to stop
// the sweeper.
func NewLimiter(rps float64, burst int) *Limiter {
	l := newLimiter(rps, burst, time.Now)
	go l.sweep()
	return l
}

func newLimiter(rps float64, burst int, now func() time.Time) *Limiter {
	if burst < 1 {
		burst = 1
	}
	return &Limiter{
		callers: make(map[string]*allowance),
		rps:     rps,
		burst:   float64(burst),
		now:     now,
		stop:    make(chan struct{}),
	}
}

// Allow takes one token from key's bucket. When the bucket is empty it
// returns false and how long the caller should wait for the next token.
// With a zero refill rate the wait is reported as zero.
func (l *Limiter) Allow(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	a, ok := l.callers[key]
	if !ok {
		a = &allowance{tokens: l.burst, seen: now}
		l.callers[key] = a
	}

	a.tokens = min(a.tokens+now.Sub(a.seen).Seconds()*l.rps, l.burst)
	a.seen = now

	if a.tokens >= 1 {
		a.tokens--
		return true, 0
	}
	if l.rps <= 0 {
		return false, 0
	}
	wait := math.Ceil((1 - a.tokens) / l.rps * float64(time.Second))
	return false, time.Duration(wait)
}

// Close stops the sweeper. It is safe to call more than once.
func (l *Limiter) Close() {
	l.stopOnce.Do(func() { close(l.stop) })
}

func (l *Limiter) sweep() {
	ticker := time.NewTicker(limiterSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.forgetIdle()
		}
	}
}

func (l *Limiter) forgetIdle() {
	l.mu.Lock()
	defer l.mu.Unlock()
	cutoff := l.now().Add(-limiterIdleTTL)
	for key, a := range l.callers {
		if a.seen.Before(cutoff) {
			delete(l.callers, key)
		}
	}
}
