package models

import "time"

// File kinds, used to filter listings.
const (
	FileKindPhoto    = "photo"
	FileKindVideo    = "video"
	FileKindDocument = "document"
)

type File struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"owner_id"`
	OriginalName string    `json:"original_name"`
	StoredName   string    `json:"stored_name"`
	Kind         string    `json:"kind"`
	MimeType     string    `json:"mime_type"`
	Size         int64     `json:"size"`
	CreatedAt    time.Time `json:"created_at"`
}
