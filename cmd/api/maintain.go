package main

import (
	"context"
	"log"
	"time"

	"github.com/pefman/cr-calc/internal/session"
	"github.com/pefman/cr-calc/internal/stats"
)

// maintain drops idle websocket sessions and stale daily stats until ctx ends.
func maintain(ctx context.Context, sessions *session.Manager, tracker *stats.Tracker, idle time.Duration) {
	if idle <= 0 {
		idle = 30 * time.Minute
	}
	ticker := time.NewTicker(min(idle, time.Minute))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := sessions.Prune(idle); n > 0 {
				log.Printf("api: pruned sessions n=%d live=%d", n, sessions.Len())
			}
			tracker.Prune()
		}
	}
}
