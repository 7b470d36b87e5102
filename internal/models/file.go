package models

import "time"

// StoredFile and StoredFileDetail together describe one uploaded object.
// A StoredFile without its detail row is a half-written state.
type StoredFile struct {
	ID        string     `json:"id,omitempty"`
	URL       string     `json:"url"`
	MimeType  string     `json:"mime_type"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

type StoredFileDetail struct {
	ID        string `json:"id,omitempty"`
	FileID    string `json:"file_id"`
	Path      string `json:"path"`
	Size      int64  `json:"size"`
	Extension string `json:"extension"`
}
