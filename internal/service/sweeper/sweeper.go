// Package sweeper runs the background job that marks finished
// sponsorships as EXPIRED.  The sweep is pure hygiene for dashboards
// and listings; serving correctness never depends on it because every
// live query filters on the time window as well as the status.
package sweeper

import (
	"context"
	"log"
	"time"

	"github.com/kindling/sponsor-engine/internal/repository"
)

// Run sweeps on every tick until ctx is cancelled.  It is meant to be
// launched as a goroutine from main.
func Run(ctx context.Context, repo *repository.SponsorshipRepo, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := repo.ExpireFinished(ctx, time.Now().UTC())
			if err != nil {
				log.Printf("sweeper: expire finished sponsorships failed: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("sweeper: expired %d sponsorship(s)", n)
			}
		}
	}
}
