package bot

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"
	"time"

	"butler-server/ai"
	"butler-server/media"
	"butler-server/models"
	"butler-server/movies"
	"butler-server/reminder"
	"butler-server/scrape"
	"butler-server/store"
	"butler-server/vault"
)

const maxReplyLen = 4000

// Dispatcher turns slash commands from the conversation into store, engine
// and third-party calls and formats the replies.
type Dispatcher struct {
	store    *store.Store
	engine   *reminder.Engine
	ai       *ai.GeminiClient
	movies   *movies.Client
	media    *media.Downloader
	vault    *vault.Vault
	commands []command
}

type command struct {
	pattern *regexp.Regexp
	handle  func(ownerID string, args []string) []string
}

func NewDispatcher(s *store.Store, e *reminder.Engine, aiClient *ai.GeminiClient, mv *movies.Client, md *media.Downloader, v *vault.Vault) *Dispatcher {
	d := &Dispatcher{store: s, engine: e, ai: aiClient, movies: mv, media: md, vault: v}

	d.commands = []command{
		{regexp.MustCompile(`^/start$`), d.handleStart},
		{regexp.MustCompile(`^/help$`), d.handleHelp},
		{regexp.MustCompile(`^/ai$`), d.handleAIUsage},
		{regexp.MustCompile(`^/ai (.+)$`), d.handleAI},
		{regexp.MustCompile(`^/task (.+)$`), d.handleCreateTask},
		{regexp.MustCompile(`^/tasks$`), d.handleListTasks},
		{regexp.MustCompile(`^/complete (\d+)$`), d.handleCompleteTask},
		{regexp.MustCompile(`^/delete_task (\d+)$`), d.handleDeleteTask},
		{regexp.MustCompile(`^/reminder (\S+) (.+)$`), d.handleCreateReminder},
		{regexp.MustCompile(`^/reminders$`), d.handleListReminders},
		{regexp.MustCompile(`^/delete_reminder (\d+)$`), d.handleDeleteReminder},
		{regexp.MustCompile(`^/note (\S+) (.+)$`), d.handleCreateNote},
		{regexp.MustCompile(`^/notes$`), d.handleListNotes},
		{regexp.MustCompile(`^/get_note (\d+)$`), d.handleGetNote},
		{regexp.MustCompile(`^/delete_note (\d+)$`), d.handleDeleteNote},
		{regexp.MustCompile(`^/note_history (\d+)$`), d.handleNoteHistory},
		{regexp.MustCompile(`^/files$`), d.handleListFiles},
		{regexp.MustCompile(`^/photos$`), d.handleListPhotos},
		{regexp.MustCompile(`^/videos$`), d.handleListVideos},
		{regexp.MustCompile(`^/send_file (\d+)$`), d.handleSendFile},
		{regexp.MustCompile(`^/movie (.+)$`), d.handleMovie},
		{regexp.MustCompile(`^/scrape (\S+)$`), d.handleScrape},
		{regexp.MustCompile(`^/download (\S+)$`), d.handleDownload},
	}
	return d
}

// Handle processes one inbound message and returns the assistant's replies.
func (d *Dispatcher) Handle(ownerID, text string) []string {
	text = strings.TrimSpace(text)

	if !strings.HasPrefix(text, "/") {
		return []string{"I'm here to help! Use /help to see what I can do."}
	}

	for _, cmd := range d.commands {
		if m := cmd.pattern.FindStringSubmatch(text); m != nil {
			return cmd.handle(ownerID, m[1:])
		}
	}
	return []string{"❌ Unknown command. Use /help to see what I can do."}
}

func (d *Dispatcher) handleStart(ownerID string, args []string) []string {
	return []string{"👋 Hello! I'm Butler, your personal assistant. Use /help to see what I can do."}
}

func (d *Dispatcher) handleHelp(ownerID string, args []string) []string {
	return []string{`🤖 Here's what I can do:

/ai [prompt] - Generate an AI response
/task [text] - Create a task
/tasks - List your tasks
/complete [n] - Mark task n as completed
/delete_task [n] - Delete task n
/reminder [time] [text] - Set a reminder (30m, 2h, 1d or 18:30)
/reminders - List your reminders
/delete_reminder [n] - Delete reminder n
/note [title] [content] - Save a note
/notes - List your notes
/get_note [n] - Show note n
/delete_note [n] - Delete note n
/note_history [n] - Show revisions of note n
/files - List your files
/photos - List your photos
/videos - List your videos
/send_file [n] - Get a link to file n
/movie [name] - Look up a movie
/scrape [url] - Summarise a web page
/download [url] - Download a video from a social platform`}
}

// AI

func (d *Dispatcher) handleAIUsage(ownerID string, args []string) []string {
	return []string{"Please provide a prompt after /ai command. Example: /ai Explain how AI works"}
}

func (d *Dispatcher) handleAI(ownerID string, args []string) []string {
	prompt := strings.TrimSpace(args[0])
	if prompt == "" {
		return d.handleAIUsage(ownerID, nil)
	}

	response, err := d.ai.GetResponse(prompt)
	if err != nil {
		log.Printf("[BOT] AI generation failed for owner %s: %v", ownerID, err)
		return []string{"❌ Error generating AI response. Please try again."}
	}

	chunks := ai.SplitIntoChunks(response, maxReplyLen)
	if len(chunks) == 1 {
		return []string{"🤖 AI Response:\n\n" + chunks[0]}
	}

	replies := make([]string, len(chunks))
	for i, chunk := range chunks {
		replies[i] = fmt.Sprintf("🤖 AI Response (Part %d/%d):\n\n%s", i+1, len(chunks), chunk)
	}
	return replies
}

// Tasks

func (d *Dispatcher) handleCreateTask(ownerID string, args []string) []string {
	task, err := d.store.CreateTask(ownerID, args[0])
	if err != nil {
		log.Printf("[BOT] Failed to create task for owner %s: %v", ownerID, err)
		return []string{"❌ Error creating task. Please try again."}
	}
	return []string{fmt.Sprintf("✅ Task created: %q", task.Text)}
}

func (d *Dispatcher) handleListTasks(ownerID string, args []string) []string {
	tasks, err := d.store.GetTasksForOwner(ownerID)
	if err != nil {
		log.Printf("[BOT] Failed to list tasks for owner %s: %v", ownerID, err)
		return []string{"❌ Error fetching tasks. Please try again."}
	}
	if len(tasks) == 0 {
		return []string{"You don't have any tasks yet. Use /task [text] to create one."}
	}

	var sb strings.Builder
	sb.WriteString("📋 Your tasks:\n\n")
	for i, task := range tasks {
		status := "⬜"
		if task.Completed {
			status = "✅"
		}
		fmt.Fprintf(&sb, "%d. %s %s\n", i+1, status, task.Text)
	}
	return []string{sb.String()}
}

func (d *Dispatcher) handleCompleteTask(ownerID string, args []string) []string {
	task, reply := d.taskByIndex(ownerID, args[0])
	if task == nil {
		return reply
	}
	if err := d.store.CompleteTask(task.ID); err != nil {
		log.Printf("[BOT] Failed to complete task %s: %v", task.ID, err)
		return []string{"❌ Error completing task. Please try again."}
	}
	return []string{fmt.Sprintf("✅ Task %q marked as completed.", task.Text)}
}

func (d *Dispatcher) handleDeleteTask(ownerID string, args []string) []string {
	task, reply := d.taskByIndex(ownerID, args[0])
	if task == nil {
		return reply
	}
	if err := d.store.DeleteTask(task.ID); err != nil {
		log.Printf("[BOT] Failed to delete task %s: %v", task.ID, err)
		return []string{"❌ Error deleting task. Please try again."}
	}
	return []string{fmt.Sprintf("🗑️ Task %q deleted.", task.Text)}
}

func (d *Dispatcher) taskByIndex(ownerID, arg string) (*models.Task, []string) {
	tasks, err := d.store.GetTasksForOwner(ownerID)
	if err != nil {
		log.Printf("[BOT] Failed to list tasks for owner %s: %v", ownerID, err)
		return nil, []string{"❌ Error fetching tasks. Please try again."}
	}
	idx, _ := strconv.Atoi(arg)
	if idx < 1 || idx > len(tasks) {
		return nil, []string{"❌ Invalid task number. Use /tasks to see your tasks."}
	}
	return &tasks[idx-1], nil
}

// Reminders

func (d *Dispatcher) handleCreateReminder(ownerID string, args []string) []string {
	timeSpec, text := args[0], args[1]

	rem, err := d.engine.Create(ownerID, timeSpec, text, time.Now())
	if err == reminder.ErrInvalidTimeFormat || err == reminder.ErrPastSchedulingTime {
		return []string{"❌ " + err.Error()}
	}
	if err != nil {
		log.Printf("[BOT] Failed to create reminder for owner %s: %v", ownerID, err)
		return []string{"❌ Error creating reminder. Please try again."}
	}
	return []string{fmt.Sprintf("⏰ Reminder set: %q for %s", rem.Text, rem.ScheduledAt.Format("Mon, 02 Jan 2006 15:04"))}
}

func (d *Dispatcher) handleListReminders(ownerID string, args []string) []string {
	reminders, err := d.store.GetPendingRemindersForOwner(ownerID)
	if err != nil {
		log.Printf("[BOT] Failed to list reminders for owner %s: %v", ownerID, err)
		return []string{"❌ Error fetching reminders. Please try again."}
	}
	if len(reminders) == 0 {
		return []string{"You don't have any active reminders. Use /reminder [time] [message] to create one."}
	}

	var sb strings.Builder
	sb.WriteString("⏰ Your reminders:\n\n")
	for i, rem := range reminders {
		fmt.Fprintf(&sb, "%d. %q - %s\n", i+1, rem.Text, rem.ScheduledAt.Format("Mon, 02 Jan 2006 15:04"))
	}
	return []string{sb.String()}
}

func (d *Dispatcher) handleDeleteReminder(ownerID string, args []string) []string {
	reminders, err := d.store.GetPendingRemindersForOwner(ownerID)
	if err != nil {
		log.Printf("[BOT] Failed to list reminders for owner %s: %v", ownerID, err)
		return []string{"❌ Error fetching reminders. Please try again."}
	}
	idx, _ := strconv.Atoi(args[0])
	if idx < 1 || idx > len(reminders) {
		return []string{"❌ Invalid reminder number. Use /reminders to see your reminders."}
	}

	rem := reminders[idx-1]
	if err := d.engine.Cancel(&rem); err != nil {
		log.Printf("[BOT] Failed to cancel reminder %s: %v", rem.ID, err)
		return []string{"❌ Error deleting reminder. Please try again."}
	}
	return []string{fmt.Sprintf("🗑️ Reminder %q deleted.", rem.Text)}
}

// Notes

func (d *Dispatcher) handleCreateNote(ownerID string, args []string) []string {
	title, content := args[0], args[1]

	note, err := d.store.CreateNote(ownerID, title, content)
	if err != nil {
		log.Printf("[BOT] Failed to create note for owner %s: %v", ownerID, err)
		return []string{"❌ Error saving note. Please try again."}
	}

	// Version history is best effort; the note itself is already saved.
	if d.vault != nil {
		if err := d.vault.SaveNote(ownerID, note.ID, note.Title, note.Content); err != nil {
			log.Printf("[BOT] Failed to archive note %s: %v", note.ID, err)
		}
	}
	return []string{fmt.Sprintf("📝 Note saved: %q", note.Title)}
}

func (d *Dispatcher) handleListNotes(ownerID string, args []string) []string {
	notes, err := d.store.GetNotesForOwner(ownerID)
	if err != nil {
		log.Printf("[BOT] Failed to list notes for owner %s: %v", ownerID, err)
		return []string{"❌ Error fetching notes. Please try again."}
	}
	if len(notes) == 0 {
		return []string{"You don't have any notes yet. Use /note [title] [content] to create one."}
	}

	var sb strings.Builder
	sb.WriteString("📝 Your notes:\n\n")
	for i, note := range notes {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, note.Title)
	}
	return []string{sb.String()}
}

func (d *Dispatcher) handleGetNote(ownerID string, args []string) []string {
	note, reply := d.noteByIndex(ownerID, args[0])
	if note == nil {
		return reply
	}
	return []string{fmt.Sprintf("📝 %s\n\n%s", note.Title, note.Content)}
}

func (d *Dispatcher) handleDeleteNote(ownerID string, args []string) []string {
	note, reply := d.noteByIndex(ownerID, args[0])
	if note == nil {
		return reply
	}
	if err := d.store.DeleteNote(note.ID); err != nil {
		log.Printf("[BOT] Failed to delete note %s: %v", note.ID, err)
		return []string{"❌ Error deleting note. Please try again."}
	}
	if d.vault != nil {
		if err := d.vault.RemoveNote(ownerID, note.ID); err != nil {
			log.Printf("[BOT] Failed to archive note removal %s: %v", note.ID, err)
		}
	}
	return []string{fmt.Sprintf("🗑️ Note %q deleted.", note.Title)}
}

func (d *Dispatcher) handleNoteHistory(ownerID string, args []string) []string {
	if d.vault == nil {
		return []string{"Note history is not available."}
	}
	note, reply := d.noteByIndex(ownerID, args[0])
	if note == nil {
		return reply
	}

	revisions, err := d.vault.History(ownerID, note.ID)
	if err != nil {
		log.Printf("[BOT] Failed to read history for note %s: %v", note.ID, err)
		return []string{"❌ Error fetching note history. Please try again."}
	}
	if len(revisions) == 0 {
		return []string{fmt.Sprintf("No history recorded for note %q yet.", note.Title)}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "🕘 History of %q:\n\n", note.Title)
	for _, rev := range revisions {
		fmt.Fprintf(&sb, "%s - %s (%s)\n", rev.Hash, strings.TrimSpace(rev.Summary), rev.When.Format("02 Jan 2006 15:04"))
	}
	return []string{sb.String()}
}

func (d *Dispatcher) noteByIndex(ownerID, arg string) (*models.Note, []string) {
	notes, err := d.store.GetNotesForOwner(ownerID)
	if err != nil {
		log.Printf("[BOT] Failed to list notes for owner %s: %v", ownerID, err)
		return nil, []string{"❌ Error fetching notes. Please try again."}
	}
	idx, _ := strconv.Atoi(arg)
	if idx < 1 || idx > len(notes) {
		return nil, []string{"❌ Invalid note number. Use /notes to see your notes."}
	}
	return &notes[idx-1], nil
}

// Files

func (d *Dispatcher) handleListFiles(ownerID string, args []string) []string {
	return d.listFiles(ownerID, "", "📁 Your files", "You don't have any stored files yet.")
}

func (d *Dispatcher) handleListPhotos(ownerID string, args []string) []string {
	return d.listFiles(ownerID, models.FileKindPhoto, "🖼️ Your photos", "You don't have any photos yet.")
}

func (d *Dispatcher) handleListVideos(ownerID string, args []string) []string {
	return d.listFiles(ownerID, models.FileKindVideo, "🎞️ Your videos", "You don't have any videos yet.")
}

func (d *Dispatcher) handleSendFile(ownerID string, args []string) []string {
	files, err := d.store.GetFilesForOwner(ownerID, "")
	if err != nil {
		log.Printf("[BOT] Failed to list files for owner %s: %v", ownerID, err)
		return []string{"❌ Error fetching files. Please try again."}
	}
	idx, _ := strconv.Atoi(args[0])
	if idx < 1 || idx > len(files) {
		return []string{"❌ Invalid file number. Use /files to see your files."}
	}

	f := files[idx-1]
	return []string{fmt.Sprintf("📎 %s: /api/files/%s", f.OriginalName, f.StoredName)}
}

func (d *Dispatcher) listFiles(ownerID, kind, header, empty string) []string {
	files, err := d.store.GetFilesForOwner(ownerID, kind)
	if err != nil {
		log.Printf("[BOT] Failed to list files for owner %s: %v", ownerID, err)
		return []string{"❌ Error fetching files. Please try again."}
	}
	if len(files) == 0 {
		return []string{empty}
	}

	var sb strings.Builder
	sb.WriteString(header + ":\n\n")
	for i, f := range files {
		fmt.Fprintf(&sb, "%d. %s (%s, %d bytes) - /api/files/%s\n", i+1, f.OriginalName, f.Kind, f.Size, f.StoredName)
	}
	return []string{sb.String()}
}

// Movie lookup

func (d *Dispatcher) handleMovie(ownerID string, args []string) []string {
	movie, err := d.movies.Lookup(args[0])
	if err != nil {
		log.Printf("[BOT] Movie lookup failed for %q: %v", args[0], err)
		return []string{fmt.Sprintf("❌ Movie not found: %s", args[0])}
	}

	reply := fmt.Sprintf("🎬 %s (%s)\n⭐ IMDb Rating: %s/10", movie.Title, movie.Year, movie.ImdbRating)
	if movie.Poster != "" && movie.Poster != "N/A" {
		reply += "\n" + movie.Poster
	} else {
		reply += "\n\nNo poster available for this movie."
	}
	return []string{reply}
}

// Web scraping

func (d *Dispatcher) handleScrape(ownerID string, args []string) []string {
	result, err := scrape.Fetch(args[0])
	if err != nil {
		log.Printf("[BOT] Scrape failed for %s: %v", args[0], err)
		return []string{"⚠️ Could not scrape that page: " + err.Error()}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "🌐 %s\n%s\n", result.Title, result.Description)

	if len(result.Headings) > 0 {
		sb.WriteString("\nHeadings:\n")
		for _, h := range result.Headings {
			fmt.Fprintf(&sb, "- [%s] %s\n", h.Level, h.Text)
		}
	}
	if len(result.Links) > 0 {
		sb.WriteString("\nLinks:\n")
		for _, l := range result.Links {
			fmt.Fprintf(&sb, "- %s (%s)\n", l.Text, l.Href)
		}
	}
	if result.Summary != "" {
		sb.WriteString("\n" + result.Summary)
	}
	return []string{sb.String()}
}

// Video download

func (d *Dispatcher) handleDownload(ownerID string, args []string) []string {
	url := args[0]

	result, err := d.media.Download(context.Background(), url)
	if err != nil {
		log.Printf("[BOT] Video download failed for %s: %v", url, err)
		return []string{"❌ Could not download that video: " + err.Error()}
	}

	if _, err := d.store.CreateFile(ownerID, result.Filename, result.Filename, models.FileKindVideo, "video/mp4", result.Size); err != nil {
		log.Printf("[BOT] Failed to record downloaded file %s: %v", result.Filename, err)
	}
	return []string{fmt.Sprintf("🎞️ Downloaded from %s: /api/files/%s", result.Platform, result.Filename)}
}
