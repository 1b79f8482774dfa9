package reminder

import (
	"errors"
	"testing"
	"time"
)

type fakePurgeStore struct {
	cutoffs []time.Time
	count   int64
	err     error
}

func (s *fakePurgeStore) PurgeCompletedBefore(cutoff time.Time) (int64, error) {
	s.cutoffs = append(s.cutoffs, cutoff)
	return s.count, s.err
}

func TestSweeperUsesSevenDayCutoff(t *testing.T) {
	store := &fakePurgeStore{count: 3}
	sweeper := NewSweeper(store)

	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	sweeper.RunOnce(now)

	if len(store.cutoffs) != 1 {
		t.Fatalf("purge called %d times, want 1", len(store.cutoffs))
	}
	want := time.Date(2024, 3, 8, 12, 0, 0, 0, time.UTC)
	if !store.cutoffs[0].Equal(want) {
		t.Errorf("cutoff = %v, want %v", store.cutoffs[0], want)
	}
}

func TestSweeperToleratesStoreFailure(t *testing.T) {
	store := &fakePurgeStore{err: errors.New("database is locked")}
	sweeper := NewSweeper(store)

	sweeper.RunOnce(time.Now())
	sweeper.RunOnce(time.Now())

	if len(store.cutoffs) != 2 {
		t.Errorf("purge called %d times, want 2 (failures must not stop sweeping)", len(store.cutoffs))
	}
}
