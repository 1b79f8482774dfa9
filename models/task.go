package models

import "time"

type Task struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
}
