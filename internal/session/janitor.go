package session

import (
	"context"
	"time"

	"hirehub/internal/logger"
)

// Purger is implemented by stores that need expired rows removed.
type Purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// Janitor periodically purges expired sessions. Redis expires keys itself,
// so only the Postgres store needs one.
type Janitor struct {
	purger   Purger
	interval time.Duration
	onPurge  func(n int64)
}

func NewJanitor(purger Purger, interval time.Duration, onPurge func(n int64)) *Janitor {
	if onPurge == nil {
		onPurge = func(int64) {}
	}
	return &Janitor{purger: purger, interval: interval, onPurge: onPurge}
}

// Run blocks until ctx is cancelled.
func (j *Janitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	logger.Info("session janitor started", map[string]any{
		"interval": j.interval.String(),
	})

	for {
		select {
		case <-ctx.Done():
			logger.Info("session janitor stopped", nil)
			return
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

func (j *Janitor) sweep(ctx context.Context) {
	n, err := j.purger.PurgeExpired(ctx)
	if err != nil {
		logger.Error("session purge failed", map[string]any{
			"error": err.Error(),
		})
		return
	}
	j.onPurge(n)
	if n > 0 {
		logger.Debug("expired sessions purged", map[string]any{
			"count": n,
		})
	}
}
