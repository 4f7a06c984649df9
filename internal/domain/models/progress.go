package models

import (
	"time"
)

// CardProgress is the three-box spaced-repetition state of one card for one
// user. Box 1 = learned, box 2 = uncertain, box 3 = not learned.
type CardProgress struct {
	Box          int       `json:"box"`
	LastReviewed time.Time `json:"last_reviewed"`
	ReviewCount  int       `json:"review_count"`
}

// BoxDistribution counts cards per box for one quiz session.
type BoxDistribution struct {
	Box1 int `json:"box1"`
	Box2 int `json:"box2"`
	Box3 int `json:"box3"`
}

// QuizSession is one completed quiz run over a flashcard set.
type QuizSession struct {
	ID                       int64           `json:"-"`
	SessionID                string          `json:"session_id"`
	FlashcardID              string          `json:"flashcard_id,omitempty"`
	FlashcardTitle           string          `json:"flashcard_title,omitempty"`
	StartedAt                time.Time       `json:"started_at"`
	CompletedAt              time.Time       `json:"completed_at"`
	CardsReviewed            int             `json:"cards_reviewed"`
	BoxDistribution          BoxDistribution `json:"box_distribution"`
	DurationSeconds          int             `json:"duration_seconds"`
	AverageTimeToFlipSeconds *float64        `json:"average_time_to_flip_seconds,omitempty"`
}

// FlashcardProgress is a user's full progress record for one flashcard set:
// per-card box state plus the most recent session history.
type FlashcardProgress struct {
	UserID         string                  `json:"user_id"`
	FlashcardID    string                  `json:"flashcard_id"`
	LastUpdated    time.Time               `json:"last_updated"`
	Cards          map[string]CardProgress `json:"cards"`
	SessionHistory []QuizSession           `json:"session_history"`
}

// SessionSummary is the client-submitted summary of a finished quiz run.
// StartedAt may be absent; it is then derived from CompletedAt and the
// duration.
type SessionSummary struct {
	StartedAt                *time.Time      `json:"started_at,omitempty"`
	CompletedAt              *time.Time      `json:"completed_at,omitempty"`
	CardsReviewed            int             `json:"cards_reviewed"`
	BoxDistribution          BoxDistribution `json:"box_distribution"`
	DurationSeconds          int             `json:"duration_seconds"`
	AverageTimeToFlipSeconds *float64        `json:"average_time_to_flip_seconds,omitempty"`
}

// SaveProgressRequest is the payload for persisting quiz progress: updated
// card boxes plus an optional session summary.
type SaveProgressRequest struct {
	Cards          map[string]CardProgress `json:"cards"`
	SessionSummary *SessionSummary         `json:"session_summary,omitempty"`
	FlashcardTitle string                  `json:"flashcard_title,omitempty"`
}

// ReportSummary aggregates a user's sessions over the report period.
// Learned/uncertain/not-learned follow the box semantics above.
type ReportSummary struct {
	TotalSessions          int     `json:"total_sessions"`
	TotalCardsReviewed     int     `json:"total_cards_reviewed"`
	TotalLearned           int     `json:"total_learned"`
	TotalUncertain         int     `json:"total_uncertain"`
	TotalNotLearned        int     `json:"total_not_learned"`
	TotalDurationSeconds   int     `json:"total_duration_seconds"`
	AverageSessionDuration float64 `json:"average_session_duration"`
}

// LearningReport is the payload behind the learning-report endpoint and the
// input to the history PDF.
type LearningReport struct {
	UserEmail        string        `json:"user_email"`
	UserName         string        `json:"user_name,omitempty"`
	ReportPeriodDays int           `json:"report_period_days"`
	GeneratedAt      time.Time     `json:"generated_at"`
	Summary          ReportSummary `json:"summary"`
	Sessions         []QuizSession `json:"sessions"`
}
