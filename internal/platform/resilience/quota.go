package resilience

import (
	"errors"
	"sync"
	"time"
)

var ErrQuotaExhausted = errors.New("request quota exhausted")

// Quota counts provider calls inside a fixed window. The first window opens on the
// first acquired call; later ones open on the first call after the previous expired.
type Quota struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	used    int
	resetAt time.Time
}

func NewQuota(cfg QuotaConfig) *Quota {
	cfg = NormalizeQuotaConfig(cfg)
	return &Quota{
		limit:  cfg.Limit,
		window: cfg.Window,
	}
}

// Allow reports whether a call may be made at now. It never mutates the counter.
func (q *Quota) Allow(now time.Time) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.limit <= 0 {
		return true
	}
	if q.expired(now) {
		return true
	}
	return q.used < q.limit
}

// TryAcquire counts one call made at now if the window still has room and reports
// whether it did. The check and the increment share one critical section.
func (q *Quota) TryAcquire(now time.Time) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.limit <= 0 {
		return true
	}
	if q.expired(now) {
		q.used = 0
		q.resetAt = now
	}
	if q.used >= q.limit {
		return false
	}
	q.used++
	return true
}

// Snapshot returns calls used and when the current window ends.
func (q *Quota) Snapshot(now time.Time) (used, limit int, resetsAt time.Time) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.expired(now) {
		return 0, q.limit, now.Add(q.window)
	}
	return q.used, q.limit, q.resetAt.Add(q.window)
}

func (q *Quota) expired(now time.Time) bool {
	return q.resetAt.IsZero() || !now.Before(q.resetAt.Add(q.window))
}
