package auth

import (
	"context"
	"log"
	"time"

	"golang.org/x/time/rate"
)

// Sweeper deletes expired session rows in the background. Resolve never
// relies on it — expiry is checked on every read — it only keeps the
// sessions table from growing without bound.
type Sweeper struct {
	store    Store
	interval time.Duration
	batch    int
	limiter  *rate.Limiter
}

func NewSweeper(store Store, interval time.Duration, batch int) *Sweeper {
	// One delete batch per second so sweeps don't compete with request
	// traffic for the connection pool.
	return &Sweeper{
		store:    store,
		interval: interval,
		batch:    batch,
		limiter:  rate.NewLimiter(rate.Limit(1), 1),
	}
}

// Run blocks until ctx is cancelled, sweeping once per interval.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	var total int64
	for {
		if err := s.limiter.Wait(ctx); err != nil {
			return
		}
		n, err := s.store.DeleteExpiredSessions(time.Now(), s.batch)
		if err != nil {
			log.Printf("[auth] session sweep failed: %v", err)
			return
		}
		total += n
		if n < int64(s.batch) {
			break
		}
	}
	if total > 0 {
		log.Printf("[auth] swept %d expired sessions", total)
	}
}
