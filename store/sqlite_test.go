package store

import (
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestUserLifecycle(t *testing.T) {
	s := newTestStore(t)

	user, err := s.CreateUser("grace", "Grace", "hunter2hunter2")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	byName, err := s.GetUserByUsername("grace")
	if err != nil {
		t.Fatalf("GetUserByUsername failed: %v", err)
	}
	if byName.ID != user.ID {
		t.Errorf("lookup by username returned ID %s, want %s", byName.ID, user.ID)
	}

	byID, err := s.GetUserByID(user.ID)
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if byID.Username != "grace" {
		t.Errorf("lookup by ID returned username %s", byID.Username)
	}

	if !s.ValidatePassword(byName, "hunter2hunter2") {
		t.Error("correct password rejected")
	}
	if s.ValidatePassword(byName, "wrong") {
		t.Error("wrong password accepted")
	}

	if _, err := s.CreateUser("grace", "Other", "password1234"); err == nil {
		t.Error("duplicate username should fail")
	}
}

func TestMessagesChronologicalOrder(t *testing.T) {
	s := newTestStore(t)

	for _, content := range []string{"first", "second", "third"} {
		if _, err := s.CreateMessage("owner-1", "user", content); err != nil {
			t.Fatalf("CreateMessage failed: %v", err)
		}
		time.Sleep(5 * time.Millisecond)
	}
	s.CreateMessage("owner-2", "user", "someone else's")

	msgs, err := s.GetMessages("owner-1", 50)
	if err != nil {
		t.Fatalf("GetMessages failed: %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("got %d messages, want 3", len(msgs))
	}
	if msgs[0].Content != "first" || msgs[2].Content != "third" {
		t.Errorf("messages not in chronological order: %s..%s", msgs[0].Content, msgs[2].Content)
	}

	limited, err := s.GetMessages("owner-1", 2)
	if err != nil {
		t.Fatalf("GetMessages with limit failed: %v", err)
	}
	if len(limited) != 2 || limited[1].Content != "third" {
		t.Errorf("limit should keep the newest messages, got %v", limited)
	}
}

func TestTaskLifecycle(t *testing.T) {
	s := newTestStore(t)

	task, err := s.CreateTask("owner-1", "buy milk")
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	if task.Completed {
		t.Error("new task should not be completed")
	}

	if err := s.CompleteTask(task.ID); err != nil {
		t.Fatalf("CompleteTask failed: %v", err)
	}
	tasks, _ := s.GetTasksForOwner("owner-1")
	if len(tasks) != 1 || !tasks[0].Completed {
		t.Error("task not marked completed")
	}

	if err := s.DeleteTask(task.ID); err != nil {
		t.Fatalf("DeleteTask failed: %v", err)
	}
	tasks, _ = s.GetTasksForOwner("owner-1")
	if len(tasks) != 0 {
		t.Error("task not deleted")
	}
}

func TestNoteLifecycle(t *testing.T) {
	s := newTestStore(t)

	note, err := s.CreateNote("owner-1", "groceries", "milk, eggs")
	if err != nil {
		t.Fatalf("CreateNote failed: %v", err)
	}

	notes, err := s.GetNotesForOwner("owner-1")
	if err != nil {
		t.Fatalf("GetNotesForOwner failed: %v", err)
	}
	if len(notes) != 1 || notes[0].Title != "groceries" || notes[0].Content != "milk, eggs" {
		t.Errorf("unexpected notes: %+v", notes)
	}

	if err := s.DeleteNote(note.ID); err != nil {
		t.Fatalf("DeleteNote failed: %v", err)
	}
	notes, _ = s.GetNotesForOwner("owner-1")
	if len(notes) != 0 {
		t.Error("note not deleted")
	}
}

func TestFileKindFilter(t *testing.T) {
	s := newTestStore(t)

	s.CreateFile("owner-1", "cat.jpg", "abc.jpg", "photo", "image/jpeg", 100)
	s.CreateFile("owner-1", "clip.mp4", "def.mp4", "video", "video/mp4", 200)
	s.CreateFile("owner-1", "doc.pdf", "ghi.pdf", "document", "application/pdf", 300)

	all, err := s.GetFilesForOwner("owner-1", "")
	if err != nil {
		t.Fatalf("GetFilesForOwner failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("got %d files with no filter, want 3", len(all))
	}

	photos, _ := s.GetFilesForOwner("owner-1", "photo")
	if len(photos) != 1 || photos[0].OriginalName != "cat.jpg" {
		t.Errorf("photo filter returned %+v", photos)
	}
}

func TestReminderLifecycle(t *testing.T) {
	s := newTestStore(t)
	scheduledAt := time.Now().Add(time.Hour).UTC().Truncate(time.Second)

	rem, err := s.CreateReminder("owner-1", "check oven", scheduledAt)
	if err != nil {
		t.Fatalf("CreateReminder failed: %v", err)
	}

	got, err := s.GetReminder(rem.ID)
	if err != nil {
		t.Fatalf("GetReminder failed: %v", err)
	}
	if got == nil {
		t.Fatal("reminder not found after create")
	}
	if got.Text != "check oven" || got.Completed {
		t.Errorf("unexpected reminder: %+v", got)
	}
	if !got.ScheduledAt.UTC().Equal(scheduledAt) {
		t.Errorf("ScheduledAt = %v, want %v", got.ScheduledAt.UTC(), scheduledAt)
	}
	if got.SchedulingToken != "" {
		t.Error("fresh reminder should have no token")
	}

	if err := s.SetReminderToken(rem.ID, "token-1"); err != nil {
		t.Fatalf("SetReminderToken failed: %v", err)
	}
	got, _ = s.GetReminder(rem.ID)
	if got.SchedulingToken != "token-1" {
		t.Errorf("token = %q, want token-1", got.SchedulingToken)
	}

	if err := s.MarkReminderCompleted(rem.ID); err != nil {
		t.Fatalf("MarkReminderCompleted failed: %v", err)
	}
	got, _ = s.GetReminder(rem.ID)
	if !got.Completed {
		t.Error("reminder not completed")
	}
	if got.SchedulingToken != "" {
		t.Error("completion should clear the token")
	}

	// Marking again is harmless
	if err := s.MarkReminderCompleted(rem.ID); err != nil {
		t.Errorf("second MarkReminderCompleted failed: %v", err)
	}

	if err := s.DeleteReminder(rem.ID); err != nil {
		t.Fatalf("DeleteReminder failed: %v", err)
	}
	got, err = s.GetReminder(rem.ID)
	if err != nil {
		t.Fatalf("GetReminder after delete errored: %v", err)
	}
	if got != nil {
		t.Error("deleted reminder still found")
	}

	// Deleting a missing row is a no-op
	if err := s.DeleteReminder(rem.ID); err != nil {
		t.Errorf("second DeleteReminder failed: %v", err)
	}
}

func TestGetReminderMissingReturnsNilNil(t *testing.T) {
	s := newTestStore(t)

	got, err := s.GetReminder("no-such-id")
	if err != nil {
		t.Fatalf("expected no error for missing reminder, got %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing reminder, got %+v", got)
	}
}

func TestPendingRemindersIncludeOverdue(t *testing.T) {
	s := newTestStore(t)
	now := time.Now()

	overdue, _ := s.CreateReminder("owner-1", "overdue", now.Add(-time.Hour))
	future, _ := s.CreateReminder("owner-1", "future", now.Add(time.Hour))
	done, _ := s.CreateReminder("owner-1", "done", now.Add(-2*time.Hour))
	s.MarkReminderCompleted(done.ID)

	pending, err := s.PendingReminders()
	if err != nil {
		t.Fatalf("PendingReminders failed: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("got %d pending, want 2 (overdue must be included)", len(pending))
	}
	// Ascending by scheduled_at
	if pending[0].ID != overdue.ID || pending[1].ID != future.ID {
		t.Errorf("pending order = %s, %s", pending[0].Text, pending[1].Text)
	}

	byOwner, err := s.GetPendingRemindersForOwner("owner-1")
	if err != nil {
		t.Fatalf("GetPendingRemindersForOwner failed: %v", err)
	}
	if len(byOwner) != 2 {
		t.Errorf("got %d pending for owner, want 2", len(byOwner))
	}
	if other, _ := s.GetPendingRemindersForOwner("owner-2"); len(other) != 0 {
		t.Errorf("owner-2 should have no reminders, got %d", len(other))
	}
}

func TestPurgeCompletedBefore(t *testing.T) {
	s := newTestStore(t)
	now := time.Now()

	oldDone, _ := s.CreateReminder("owner-1", "old done", now.Add(-8*24*time.Hour))
	s.MarkReminderCompleted(oldDone.ID)

	recentDone, _ := s.CreateReminder("owner-1", "recent done", now.Add(-6*24*time.Hour))
	s.MarkReminderCompleted(recentDone.ID)

	oldPending, _ := s.CreateReminder("owner-1", "old pending", now.Add(-8*24*time.Hour))

	count, err := s.PurgeCompletedBefore(now.Add(-7 * 24 * time.Hour))
	if err != nil {
		t.Fatalf("PurgeCompletedBefore failed: %v", err)
	}
	if count != 1 {
		t.Errorf("purged %d rows, want 1", count)
	}

	if got, _ := s.GetReminder(oldDone.ID); got != nil {
		t.Error("stale completed reminder survived the purge")
	}
	if got, _ := s.GetReminder(recentDone.ID); got == nil {
		t.Error("recently completed reminder was purged")
	}
	if got, _ := s.GetReminder(oldPending.ID); got == nil {
		t.Error("pending reminder was purged, retention only applies to completed ones")
	}
}
