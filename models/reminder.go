package models

import "time"

type Reminder struct {
	ID              string    `json:"id"`
	OwnerID         string    `json:"owner_id"`
	Text            string    `json:"text"`
	ScheduledAt     time.Time `json:"scheduled_at"`
	CreatedAt       time.Time `json:"created_at"`
	Completed       bool      `json:"completed"`
	SchedulingToken string    `json:"-"`
}

type CreateReminderRequest struct {
	Time string `json:"time"` // relative like "30m", "2h", "1d" or wall-clock "18:30"
	Text string `json:"text"`
}
