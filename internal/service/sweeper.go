package service

import (
	"context"
	"log"
	"time"
)

// StartExpirySweeper runs the membership expiry sweep on a fixed
// interval until ctx is cancelled.  Each pass is one UPDATE; a failed
// pass is logged and the next tick tries again.  Intended to be run
// as a goroutine from main.
func StartExpirySweeper(ctx context.Context, lc *Lifecycle, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	log.Printf("expiry-sweeper: running every %s", interval)
	for {
		select {
		case <-ctx.Done():
			log.Printf("expiry-sweeper: stopping: %v", ctx.Err())
			return
		case <-ticker.C:
			n, err := lc.ExpireDue(ctx)
			if err != nil {
				log.Printf("expiry-sweeper: sweep failed: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("expiry-sweeper: expired %d memberships", n)
			}
		}
	}
}
