package reminder

import (
	"fmt"
	"log"
	"sync"
	"time"

	"butler-server/models"

	"github.com/google/uuid"
)

// Store is the durable side of the reminder subsystem. *store.Store
// satisfies it; tests substitute an in-memory fake.
type Store interface {
	CreateReminder(ownerID, text string, scheduledAt time.Time) (*models.Reminder, error)
	GetReminder(id string) (*models.Reminder, error)
	SetReminderToken(id, token string) error
	MarkReminderCompleted(id string) error
	DeleteReminder(id string) error
	PendingReminders() ([]models.Reminder, error)
}

// Notifier delivers the fired reminder to its owner. The hub-backed
// implementation lives in handlers.
type Notifier interface {
	Notify(ownerID, text string) error
}

// Engine owns the reminder lifecycle: it is the sole writer of both the
// store and the registry, and the only caller of Resolve.
//
// States per reminder: Pending (persisted, armed) -> Fired (completed=true,
// kept for the retention window) or Cancelled (deleted). Both terminal
// states are absorbing.
type Engine struct {
	mu       sync.Mutex
	store    Store
	registry Registry
	notifier Notifier
}

func NewEngine(s Store, r Registry, n Notifier) *Engine {
	return &Engine{store: s, registry: r, notifier: n}
}

// Create resolves the time spec, persists the reminder and arms its timer.
// If arming or the token write-back fails after the record was persisted,
// the record is deleted again so no un-armed pending reminder is left.
func (e *Engine) Create(ownerID, timeSpec, text string, now time.Time) (*models.Reminder, error) {
	scheduledAt, err := Resolve(timeSpec, now)
	if err != nil {
		return nil, err
	}
	if !scheduledAt.After(now) {
		return nil, ErrPastSchedulingTime
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	rem, err := e.store.CreateReminder(ownerID, text, scheduledAt)
	if err != nil {
		return nil, fmt.Errorf("persist reminder: %w", err)
	}

	token := uuid.New().String()
	if err := e.registry.Arm(token, scheduledAt.Sub(now), e.fireFunc(rem.ID, token)); err != nil {
		e.rollbackCreate(rem.ID, "")
		return nil, err
	}

	if err := e.store.SetReminderToken(rem.ID, token); err != nil {
		e.rollbackCreate(rem.ID, token)
		return nil, fmt.Errorf("store scheduling token: %w", err)
	}

	rem.SchedulingToken = token
	return rem, nil
}

// rollbackCreate undoes the side effects of a partially completed Create.
// Caller holds e.mu.
func (e *Engine) rollbackCreate(id, token string) {
	if token != "" {
		e.registry.Retire(token)
	}
	if err := e.store.DeleteReminder(id); err != nil {
		log.Printf("[REMINDER] Rollback delete failed for %s: %v", id, err)
	}
}

func (e *Engine) fireFunc(id, token string) func() {
	return func() { e.Fire(id, token) }
}

// Fire is the elapsed-timer entry point. It delivers the notification,
// marks the record completed and retires the registry entry. A concurrent
// cancel may have deleted the record already; that is treated as a no-op so
// whichever of fire/cancel reaches the registry first wins the race.
func (e *Engine) Fire(id, token string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	rem, err := e.store.GetReminder(id)
	if err != nil {
		log.Printf("[REMINDER] Fire lookup failed for %s: %v", id, err)
		e.registry.Retire(token)
		return
	}
	if rem == nil || rem.Completed {
		// Cancelled or already fired while the timer was in flight
		e.registry.Retire(token)
		return
	}

	// Best-effort delivery: a failure never blocks completion, the fire
	// event already consumed the scheduled instant.
	if err := e.notifier.Notify(rem.OwnerID, "⏰ REMINDER: "+rem.Text); err != nil {
		log.Printf("[REMINDER] Delivery failed for %s (owner %s): %v", id, rem.OwnerID, err)
	}

	if err := e.store.MarkReminderCompleted(id); err != nil {
		log.Printf("[REMINDER] Failed to mark %s completed: %v", id, err)
	}
	e.registry.Retire(token)
}

// Cancel retires the timer first, then deletes the record. Both steps are
// idempotent, so cancelling twice or after a fire never fails.
func (e *Engine) Cancel(rem *models.Reminder) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if rem.SchedulingToken != "" {
		e.registry.Retire(rem.SchedulingToken)
	}
	if err := e.store.DeleteReminder(rem.ID); err != nil {
		return fmt.Errorf("delete reminder %s: %w", rem.ID, err)
	}
	return nil
}

// Reload re-arms timers for every pending reminder after a restart. Tokens
// do not survive the process, so each reminder gets a fresh one. Reminders
// whose instant passed during downtime are fired immediately, late delivery
// instead of a silent loss. A store failure here is logged and the
// process continues with nothing reloaded.
func (e *Engine) Reload(now time.Time) {
	pending, err := e.store.PendingReminders()
	if err != nil {
		log.Printf("[REMINDER] Reload query failed, continuing with none: %v", err)
		return
	}

	reloaded, missed := 0, 0
	for _, rem := range pending {
		token := uuid.New().String()
		delay := rem.ScheduledAt.Sub(now)

		if delay <= 0 {
			e.Fire(rem.ID, token)
			missed++
			continue
		}

		if err := e.registry.Arm(token, delay, e.fireFunc(rem.ID, token)); err != nil {
			log.Printf("[REMINDER] Failed to re-arm %s: %v", rem.ID, err)
			continue
		}
		if err := e.store.SetReminderToken(rem.ID, token); err != nil {
			log.Printf("[REMINDER] Failed to store token for %s: %v", rem.ID, err)
		}
		reloaded++
	}

	log.Printf("[REMINDER] Reloaded %d reminders (%d fired late), %d timers armed", reloaded+missed, missed, e.registry.Size())
}
