package store

import (
	"database/sql"
	"time"

	"butler-server/models"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/crypto/bcrypt"
)

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	store := &Store{db: db}
	if err := store.init(); err != nil {
		return nil, err
	}

	return store, nil
}

func (s *Store) init() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT UNIQUE NOT NULL,
		display_name TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS messages (
		id TEXT PRIMARY KEY,
		owner_id TEXT REFERENCES users(id),
		sender TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_messages_owner ON messages(owner_id);

	CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		owner_id TEXT REFERENCES users(id),
		text TEXT NOT NULL,
		completed BOOLEAN DEFAULT FALSE,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_tasks_owner ON tasks(owner_id);

	CREATE TABLE IF NOT EXISTS notes (
		id TEXT PRIMARY KEY,
		owner_id TEXT REFERENCES users(id),
		title TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_notes_owner ON notes(owner_id);

	CREATE TABLE IF NOT EXISTS files (
		id TEXT PRIMARY KEY,
		owner_id TEXT REFERENCES users(id),
		original_name TEXT NOT NULL,
		stored_name TEXT NOT NULL,
		kind TEXT NOT NULL,
		mime_type TEXT,
		size INTEGER,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_files_owner ON files(owner_id);

	CREATE TABLE IF NOT EXISTS reminders (
		id TEXT PRIMARY KEY,
		owner_id TEXT REFERENCES users(id),
		text TEXT NOT NULL,
		scheduled_at DATETIME NOT NULL,
		completed BOOLEAN DEFAULT FALSE,
		scheduling_token TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_reminders_owner ON reminders(owner_id);
	CREATE INDEX IF NOT EXISTS idx_reminders_time ON reminders(scheduled_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}

// User operations

func (s *Store) CreateUser(username, displayName, password string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Username:     username,
		DisplayName:  displayName,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}

	_, err = s.db.Exec(`
		INSERT INTO users (id, username, display_name, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, user.ID, user.Username, user.DisplayName, user.PasswordHash, user.CreatedAt)

	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Store) GetUserByUsername(username string) (*models.User, error) {
	var u models.User
	err := s.db.QueryRow(`
		SELECT id, username, display_name, password_hash, created_at
		FROM users WHERE username = ?
	`, username).Scan(&u.ID, &u.Username, &u.DisplayName, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) GetUserByID(id string) (*models.User, error) {
	var u models.User
	err := s.db.QueryRow(`
		SELECT id, username, display_name, password_hash, created_at
		FROM users WHERE id = ?
	`, id).Scan(&u.ID, &u.Username, &u.DisplayName, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) ValidatePassword(user *models.User, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	return err == nil
}

// Message operations

func (s *Store) CreateMessage(ownerID, sender, content string) (*models.Message, error) {
	msg := &models.Message{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		Sender:    sender,
		Content:   content,
		CreatedAt: time.Now(),
	}

	_, err := s.db.Exec(`
		INSERT INTO messages (id, owner_id, sender, content, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, msg.ID, msg.OwnerID, msg.Sender, msg.Content, msg.CreatedAt)

	if err != nil {
		return nil, err
	}
	return msg, nil
}

func (s *Store) GetMessages(ownerID string, limit int) ([]models.Message, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(`
		SELECT id, owner_id, sender, content, created_at
		FROM messages
		WHERE owner_id = ?
		ORDER BY created_at DESC
		LIMIT ?
	`, ownerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.OwnerID, &m.Sender, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}

	// Reverse to chronological order
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// Task operations

func (s *Store) CreateTask(ownerID, text string) (*models.Task, error) {
	task := &models.Task{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		Text:      text,
		CreatedAt: time.Now(),
	}

	_, err := s.db.Exec(`
		INSERT INTO tasks (id, owner_id, text, completed, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, task.ID, task.OwnerID, task.Text, task.Completed, task.CreatedAt)

	if err != nil {
		return nil, err
	}
	return task, nil
}

func (s *Store) GetTasksForOwner(ownerID string) ([]models.Task, error) {
	rows, err := s.db.Query(`
		SELECT id, owner_id, text, completed, created_at
		FROM tasks
		WHERE owner_id = ?
		ORDER BY created_at DESC
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(&t.ID, &t.OwnerID, &t.Text, &t.Completed, &t.CreatedAt); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func (s *Store) CompleteTask(id string) error {
	_, err := s.db.Exec("UPDATE tasks SET completed = TRUE WHERE id = ?", id)
	return err
}

func (s *Store) DeleteTask(id string) error {
	_, err := s.db.Exec("DELETE FROM tasks WHERE id = ?", id)
	return err
}

// Note operations

func (s *Store) CreateNote(ownerID, title, content string) (*models.Note, error) {
	note := &models.Note{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		Title:     title,
		Content:   content,
		CreatedAt: time.Now(),
	}

	_, err := s.db.Exec(`
		INSERT INTO notes (id, owner_id, title, content, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, note.ID, note.OwnerID, note.Title, note.Content, note.CreatedAt)

	if err != nil {
		return nil, err
	}
	return note, nil
}

func (s *Store) GetNotesForOwner(ownerID string) ([]models.Note, error) {
	rows, err := s.db.Query(`
		SELECT id, owner_id, title, content, created_at
		FROM notes
		WHERE owner_id = ?
		ORDER BY created_at DESC
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []models.Note
	for rows.Next() {
		var n models.Note
		if err := rows.Scan(&n.ID, &n.OwnerID, &n.Title, &n.Content, &n.CreatedAt); err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, nil
}

func (s *Store) DeleteNote(id string) error {
	_, err := s.db.Exec("DELETE FROM notes WHERE id = ?", id)
	return err
}

// File operations

func (s *Store) CreateFile(ownerID, originalName, storedName, kind, mimeType string, size int64) (*models.File, error) {
	file := &models.File{
		ID:           uuid.New().String(),
		OwnerID:      ownerID,
		OriginalName: originalName,
		StoredName:   storedName,
		Kind:         kind,
		MimeType:     mimeType,
		Size:         size,
		CreatedAt:    time.Now(),
	}

	_, err := s.db.Exec(`
		INSERT INTO files (id, owner_id, original_name, stored_name, kind, mime_type, size, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, file.ID, file.OwnerID, file.OriginalName, file.StoredName, file.Kind, file.MimeType, file.Size, file.CreatedAt)

	if err != nil {
		return nil, err
	}
	return file, nil
}

// GetFilesForOwner lists the owner's files, newest first. An empty kind
// matches every kind.
func (s *Store) GetFilesForOwner(ownerID, kind string) ([]models.File, error) {
	query := `
		SELECT id, owner_id, original_name, stored_name, kind, mime_type, size, created_at
		FROM files
		WHERE owner_id = ?`
	args := []interface{}{ownerID}

	if kind != "" {
		query += " AND kind = ?"
		args = append(args, kind)
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []models.File
	for rows.Next() {
		var f models.File
		if err := rows.Scan(&f.ID, &f.OwnerID, &f.OriginalName, &f.StoredName, &f.Kind, &f.MimeType, &f.Size, &f.CreatedAt); err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

// Reminder operations

func (s *Store) CreateReminder(ownerID, text string, scheduledAt time.Time) (*models.Reminder, error) {
	reminder := &models.Reminder{
		ID:          uuid.New().String(),
		OwnerID:     ownerID,
		Text:        text,
		ScheduledAt: scheduledAt,
		CreatedAt:   time.Now(),
		Completed:   false,
	}

	_, err := s.db.Exec(`
		INSERT INTO reminders (id, owner_id, text, scheduled_at, completed, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, reminder.ID, reminder.OwnerID, reminder.Text, reminder.ScheduledAt, reminder.Completed, reminder.CreatedAt)

	if err != nil {
		return nil, err
	}
	return reminder, nil
}

// GetReminder returns nil without an error when the reminder does not
// exist, so fire/cancel races read as a no-op rather than a failure.
func (s *Store) GetReminder(id string) (*models.Reminder, error) {
	var r models.Reminder
	var token sql.NullString
	err := s.db.QueryRow(`
		SELECT id, owner_id, text, scheduled_at, completed, scheduling_token, created_at
		FROM reminders WHERE id = ?
	`, id).Scan(&r.ID, &r.OwnerID, &r.Text, &r.ScheduledAt, &r.Completed, &token, &r.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	r.SchedulingToken = token.String
	return &r, nil
}

func (s *Store) GetPendingRemindersForOwner(ownerID string) ([]models.Reminder, error) {
	return s.queryReminders(`
		SELECT id, owner_id, text, scheduled_at, completed, scheduling_token, created_at
		FROM reminders
		WHERE owner_id = ? AND completed = FALSE
		ORDER BY scheduled_at ASC
	`, ownerID)
}

// PendingReminders returns every uncompleted reminder, overdue ones
// included, so startup reload fires those late instead of dropping them.
func (s *Store) PendingReminders() ([]models.Reminder, error) {
	return s.queryReminders(`
		SELECT id, owner_id, text, scheduled_at, completed, scheduling_token, created_at
		FROM reminders
		WHERE completed = FALSE
		ORDER BY scheduled_at ASC
	`)
}

func (s *Store) queryReminders(query string, args ...interface{}) ([]models.Reminder, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reminders []models.Reminder
	for rows.Next() {
		var r models.Reminder
		var token sql.NullString
		if err := rows.Scan(&r.ID, &r.OwnerID, &r.Text, &r.ScheduledAt, &r.Completed, &token, &r.CreatedAt); err != nil {
			return nil, err
		}
		r.SchedulingToken = token.String
		reminders = append(reminders, r)
	}
	return reminders, nil
}

func (s *Store) SetReminderToken(id, token string) error {
	_, err := s.db.Exec("UPDATE reminders SET scheduling_token = ? WHERE id = ?", token, id)
	return err
}

// MarkReminderCompleted is idempotent: marking a missing or already
// completed reminder is a no-op.
func (s *Store) MarkReminderCompleted(id string) error {
	_, err := s.db.Exec("UPDATE reminders SET completed = TRUE, scheduling_token = NULL WHERE id = ?", id)
	return err
}

func (s *Store) DeleteReminder(id string) error {
	_, err := s.db.Exec("DELETE FROM reminders WHERE id = ?", id)
	return err
}

func (s *Store) PurgeCompletedBefore(cutoff time.Time) (int64, error) {
	res, err := s.db.Exec("DELETE FROM reminders WHERE completed = TRUE AND scheduled_at < ?", cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
