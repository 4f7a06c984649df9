package models

import (
	"time"
)

// UserProfile mirrors the identity provider's user record locally so
// progress and reports can join against a stable row. Upserted on first
// authenticated touch. The ID is the provider subject claim verbatim
// (e.g. "auth0|650f..."), not a locally minted value.
type UserProfile struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Visibility values for user-authored flashcard sets.
const (
	VisibilityGlobal  = "global"
	VisibilityPrivate = "private"
)

// UserFlashcard is the ownership/visibility metadata record for a
// user-authored flashcard set. The document itself lives in the per-user
// store namespace; this row decides who may see it.
type UserFlashcard struct {
	ID          int64     `json:"-"`
	UserID      string    `json:"user_id"`
	FlashcardID string    `json:"flashcard_id"`
	Title       string    `json:"title"`
	Visibility  string    `json:"visibility"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DownloadLog records one flashcard download for usage reporting. UserID is
// nil for anonymous downloads.
type DownloadLog struct {
	ID           int64     `json:"-"`
	FlashcardID  string    `json:"flashcard_id"`
	UserID       *string   `json:"user_id,omitempty"`
	RemoteAddr   string    `json:"remote_addr"`
	UserAgent    string    `json:"user_agent"`
	DownloadedAt time.Time `json:"downloaded_at"`
}
