package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"butler-server/middleware"
	"butler-server/models"
	"butler-server/reminder"
	"butler-server/store"
)

type ReminderHandler struct {
	store  *store.Store
	engine *reminder.Engine
}

func NewReminderHandler(s *store.Store, e *reminder.Engine) *ReminderHandler {
	return &ReminderHandler{store: s, engine: e}
}

func (h *ReminderHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	var req models.CreateReminderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Text == "" {
		http.Error(w, "Text is required", http.StatusBadRequest)
		return
	}

	rem, err := h.engine.Create(userID, req.Time, req.Text, time.Now())
	if errors.Is(err, reminder.ErrInvalidTimeFormat) || errors.Is(err, reminder.ErrPastSchedulingTime) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, "Failed to create reminder", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(rem)
}

func (h *ReminderHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	reminders, err := h.store.GetPendingRemindersForOwner(userID)
	if err != nil {
		http.Error(w, "Failed to fetch reminders", http.StatusInternalServerError)
		return
	}
	if reminders == nil {
		reminders = []models.Reminder{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(reminders)
}

func (h *ReminderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	reminderID := r.PathValue("id")
	if reminderID == "" {
		http.Error(w, "Reminder ID required", http.StatusBadRequest)
		return
	}

	rem, err := h.store.GetReminder(reminderID)
	if err != nil {
		http.Error(w, "Failed to fetch reminder", http.StatusInternalServerError)
		return
	}
	if rem == nil || rem.OwnerID != userID {
		http.Error(w, "Reminder not found", http.StatusNotFound)
		return
	}

	if err := h.engine.Cancel(rem); err != nil {
		http.Error(w, "Failed to delete reminder", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "deleted"})
}
