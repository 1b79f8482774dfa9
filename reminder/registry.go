package reminder

import (
	"sync"
	"time"
)

// Registry holds the live scheduling state that the store does not capture:
// one cancellable timer handle per armed reminder, keyed by scheduling token.
// Entries are process-lifetime only and are rebuilt from the store on reload.
type Registry interface {
	// Arm schedules onFire to run once after delay and stores the handle
	// under token. Fails with ErrPastSchedulingTime when delay is not
	// strictly positive.
	Arm(token string, delay time.Duration, onFire func()) error

	// Retire cancels and removes the handle for token. Absent tokens are a
	// no-op, which covers double-cancel races.
	Retire(token string)

	// Size reports the number of live entries.
	Size() int
}

// TimerRegistry is the production Registry, backed by time.AfterFunc.
type TimerRegistry struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
}

func NewTimerRegistry() *TimerRegistry {
	return &TimerRegistry{timers: make(map[string]*time.Timer)}
}

func (r *TimerRegistry) Arm(token string, delay time.Duration, onFire func()) error {
	if delay <= 0 {
		return ErrPastSchedulingTime
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.timers[token] = time.AfterFunc(delay, onFire)
	return nil
}

func (r *TimerRegistry) Retire(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if timer, ok := r.timers[token]; ok {
		timer.Stop()
		delete(r.timers, token)
	}
}

func (r *TimerRegistry) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.timers)
}
