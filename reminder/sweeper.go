package reminder

import (
	"log"
	"time"
)

const retentionWindow = 7 * 24 * time.Hour

// PurgeStore is the slice of the store the sweeper needs.
type PurgeStore interface {
	PurgeCompletedBefore(cutoff time.Time) (int64, error)
}

// Sweeper periodically hard-deletes fired reminders older than the
// retention window. It only touches the store, never the registry.
type Sweeper struct {
	store    PurgeStore
	interval time.Duration
}

func NewSweeper(s PurgeStore) *Sweeper {
	return &Sweeper{store: s, interval: 24 * time.Hour}
}

// Start runs the sweep on a fixed schedule in a background goroutine.
func (s *Sweeper) Start() {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for range ticker.C {
			s.RunOnce(time.Now())
		}
	}()
}

// RunOnce performs a single sweep. Failures are logged only; the next
// scheduled run retries naturally.
func (s *Sweeper) RunOnce(now time.Time) {
	cutoff := now.Add(-retentionWindow)

	count, err := s.store.PurgeCompletedBefore(cutoff)
	if err != nil {
		log.Printf("[SWEEPER] Failed to purge old reminders: %v", err)
		return
	}
	if count > 0 {
		log.Printf("[SWEEPER] Purged %d completed reminders older than %s", count, cutoff.Format(time.RFC3339))
	}
}
