package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"ommiquiz/internal/config"
	"ommiquiz/internal/domain/models"
	"ommiquiz/internal/domain/repositories"
	"ommiquiz/internal/domain/services"
)

// progressService implements the ProgressService interface
type progressService struct {
	progressRepo repositories.ProgressRepository
	sessionRepo  repositories.SessionRepository
	txManager    repositories.TransactionManager
	logger       *slog.Logger
}

// NewProgressService creates a new progress service
func NewProgressService(
	progressRepo repositories.ProgressRepository,
	sessionRepo repositories.SessionRepository,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) services.ProgressService {
	return &progressService{
		progressRepo: progressRepo,
		sessionRepo:  sessionRepo,
		txManager:    txManager,
		logger:       logger,
	}
}

// Save upserts card boxes and optionally records a session inside one
// transaction, so a failed session insert never leaves half the cards
// updated.
func (s *progressService) Save(ctx context.Context, userID, flashcardID string, req *models.SaveProgressRequest) error {
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		for cardID, card := range req.Cards {
			if card.Box < 1 || card.Box > 3 {
				s.logger.Warn("skipping card with invalid box",
					"user_id", userID,
					"flashcard_id", flashcardID,
					"card_id", cardID,
					"box", card.Box)
				continue
			}
			if card.LastReviewed.IsZero() {
				card.LastReviewed = time.Now()
			}
			if err := s.progressRepo.UpsertCard(txCtx, userID, flashcardID, cardID, card); err != nil {
				return err
			}
		}

		if req.SessionSummary != nil {
			session := buildSession(flashcardID, req.FlashcardTitle, req.SessionSummary)
			if err := s.sessionRepo.Insert(txCtx, session, userID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save progress: %w", err)
	}

	s.logger.Info("progress saved",
		"user_id", userID,
		"flashcard_id", flashcardID,
		"cards", len(req.Cards),
		"with_session", req.SessionSummary != nil)
	return nil
}

// buildSession turns a client-submitted summary into a session row.
// StartedAt falls back to CompletedAt minus the duration, matching clients
// that only report completion.
func buildSession(flashcardID, title string, summary *models.SessionSummary) *models.QuizSession {
	completedAt := time.Now()
	if summary.CompletedAt != nil {
		completedAt = *summary.CompletedAt
	}

	startedAt := completedAt
	if summary.StartedAt != nil {
		startedAt = *summary.StartedAt
	} else if summary.DurationSeconds > 0 {
		startedAt = completedAt.Add(-time.Duration(summary.DurationSeconds) * time.Second)
	}

	return &models.QuizSession{
		FlashcardID:              flashcardID,
		FlashcardTitle:           title,
		StartedAt:                startedAt,
		CompletedAt:              completedAt,
		CardsReviewed:            summary.CardsReviewed,
		BoxDistribution:          summary.BoxDistribution,
		DurationSeconds:          summary.DurationSeconds,
		AverageTimeToFlipSeconds: summary.AverageTimeToFlipSeconds,
	}
}

// Load returns card state plus the most recent sessions for one set, or
// nil when the user has never touched the set.
func (s *progressService) Load(ctx context.Context, userID, flashcardID string) (*models.FlashcardProgress, error) {
	cards, err := s.progressRepo.GetCards(ctx, userID, flashcardID)
	if err != nil {
		return nil, fmt.Errorf("load card progress: %w", err)
	}

	sessions, err := s.sessionRepo.ListRecent(ctx, userID, flashcardID, config.RecentSessionLimit)
	if err != nil {
		return nil, fmt.Errorf("load session history: %w", err)
	}

	if len(cards) == 0 && len(sessions) == 0 {
		return nil, nil
	}

	return &models.FlashcardProgress{
		UserID:         userID,
		FlashcardID:    flashcardID,
		LastUpdated:    lastUpdated(cards, sessions),
		Cards:          cards,
		SessionHistory: sessions,
	}, nil
}

// lastUpdated is the newest touch across card reviews and session
// completions.
func lastUpdated(cards map[string]models.CardProgress, sessions []models.QuizSession) time.Time {
	var latest time.Time
	for _, card := range cards {
		if card.LastReviewed.After(latest) {
			latest = card.LastReviewed
		}
	}
	for _, session := range sessions {
		if session.CompletedAt.After(latest) {
			latest = session.CompletedAt
		}
	}
	if latest.IsZero() {
		latest = time.Now()
	}
	return latest
}

// LoadAll returns progress for every set the user has touched.
func (s *progressService) LoadAll(ctx context.Context, userID string) (map[string]*models.FlashcardProgress, error) {
	ids, err := s.progressRepo.ListFlashcardIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list progress sets: %w", err)
	}

	all := make(map[string]*models.FlashcardProgress, len(ids))
	for _, flashcardID := range ids {
		progress, err := s.Load(ctx, userID, flashcardID)
		if err != nil {
			return nil, err
		}
		if progress != nil {
			all[flashcardID] = progress
		}
	}
	return all, nil
}

// Delete resets card progress for one set. Session history stays so past
// quiz runs remain reportable.
func (s *progressService) Delete(ctx context.Context, userID, flashcardID string) error {
	if err := s.progressRepo.DeleteCards(ctx, userID, flashcardID); err != nil {
		return fmt.Errorf("delete progress: %w", err)
	}
	s.logger.Info("progress deleted",
		"user_id", userID,
		"flashcard_id", flashcardID)
	return nil
}

// Report aggregates the user's sessions over the trailing period.
func (s *progressService) Report(ctx context.Context, userID, email, name string, days int) (*models.LearningReport, error) {
	if days <= 0 {
		days = config.DefaultReportDays
	}

	sessions, err := s.sessionRepo.ListSince(ctx, userID, days)
	if err != nil {
		return nil, fmt.Errorf("load report sessions: %w", err)
	}

	summary := models.ReportSummary{
		TotalSessions: len(sessions),
	}
	for _, session := range sessions {
		summary.TotalCardsReviewed += session.CardsReviewed
		summary.TotalLearned += session.BoxDistribution.Box1
		summary.TotalUncertain += session.BoxDistribution.Box2
		summary.TotalNotLearned += session.BoxDistribution.Box3
		summary.TotalDurationSeconds += session.DurationSeconds
	}
	if summary.TotalSessions > 0 {
		summary.AverageSessionDuration = float64(summary.TotalDurationSeconds) / float64(summary.TotalSessions)
	}

	return &models.LearningReport{
		UserEmail:        email,
		UserName:         name,
		ReportPeriodDays: days,
		GeneratedAt:      time.Now().UTC(),
		Summary:          summary,
		Sessions:         sessions,
	}, nil
}
