package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ommiquiz/internal/config"
	"ommiquiz/internal/domain/models"
	"ommiquiz/internal/domain/repositories"
	"ommiquiz/internal/domain/services"
)

type recordedUpsert struct {
	userID      string
	flashcardID string
	cardID      string
	progress    models.CardProgress
}

// fakeProgressRepo records upserts and serves canned card state keyed by
// flashcard id.
type fakeProgressRepo struct {
	upserts      []recordedUpsert
	cards        map[string]map[string]models.CardProgress
	flashcardIDs []string
	deleted      []string
	upsertErr    error
}

func (f *fakeProgressRepo) UpsertCard(ctx context.Context, userID, flashcardID, cardID string, progress models.CardProgress) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserts = append(f.upserts, recordedUpsert{userID, flashcardID, cardID, progress})
	return nil
}

func (f *fakeProgressRepo) GetCards(ctx context.Context, userID, flashcardID string) (map[string]models.CardProgress, error) {
	return f.cards[flashcardID], nil
}

func (f *fakeProgressRepo) DeleteCards(ctx context.Context, userID, flashcardID string) error {
	f.deleted = append(f.deleted, flashcardID)
	return nil
}

func (f *fakeProgressRepo) ListFlashcardIDs(ctx context.Context, userID string) ([]string, error) {
	return f.flashcardIDs, nil
}

// fakeSessionRepo records inserts and serves canned history keyed by
// flashcard id.
type fakeSessionRepo struct {
	inserted     []*models.QuizSession
	recent       map[string][]models.QuizSession
	since        []models.QuizSession
	sinceDays    int
	recentLimits []int
}

func (f *fakeSessionRepo) Insert(ctx context.Context, session *models.QuizSession, userID string) error {
	f.inserted = append(f.inserted, session)
	return nil
}

func (f *fakeSessionRepo) ListRecent(ctx context.Context, userID, flashcardID string, limit int) ([]models.QuizSession, error) {
	f.recentLimits = append(f.recentLimits, limit)
	return f.recent[flashcardID], nil
}

func (f *fakeSessionRepo) ListSince(ctx context.Context, userID string, days int) ([]models.QuizSession, error) {
	f.sinceDays = days
	return f.since, nil
}

// fakeTxManager runs the function directly, with no transaction.
type fakeTxManager struct {
	calls int
}

func (f *fakeTxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	f.calls++
	return fn(ctx)
}

func newTestProgressService(progressRepo *fakeProgressRepo, sessionRepo *fakeSessionRepo) (services.ProgressService, *fakeTxManager) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tx := &fakeTxManager{}
	return NewProgressService(progressRepo, sessionRepo, tx, logger), tx
}

func TestProgressSaveSkipsInvalidBoxes(t *testing.T) {
	progressRepo := &fakeProgressRepo{}
	sessionRepo := &fakeSessionRepo{}
	svc, tx := newTestProgressService(progressRepo, sessionRepo)

	err := svc.Save(context.Background(), "auth0|user1", "go_basics", &models.SaveProgressRequest{
		Cards: map[string]models.CardProgress{
			"c001": {Box: 0},
			"c002": {Box: 2, LastReviewed: time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)},
			"c003": {Box: 4},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, tx.calls)
	require.Len(t, progressRepo.upserts, 1)
	assert.Equal(t, "c002", progressRepo.upserts[0].cardID)
	assert.Equal(t, 2, progressRepo.upserts[0].progress.Box)
	assert.Empty(t, sessionRepo.inserted)
}

func TestProgressSaveDefaultsLastReviewed(t *testing.T) {
	progressRepo := &fakeProgressRepo{}
	sessionRepo := &fakeSessionRepo{}
	svc, _ := newTestProgressService(progressRepo, sessionRepo)

	err := svc.Save(context.Background(), "auth0|user1", "go_basics", &models.SaveProgressRequest{
		Cards: map[string]models.CardProgress{
			"c001": {Box: 1},
		},
	})

	require.NoError(t, err)
	require.Len(t, progressRepo.upserts, 1)
	assert.False(t, progressRepo.upserts[0].progress.LastReviewed.IsZero())
}

func TestProgressSaveRecordsSession(t *testing.T) {
	progressRepo := &fakeProgressRepo{}
	sessionRepo := &fakeSessionRepo{}
	svc, _ := newTestProgressService(progressRepo, sessionRepo)

	completed := time.Date(2026, 2, 10, 14, 30, 0, 0, time.UTC)
	err := svc.Save(context.Background(), "auth0|user1", "go_basics", &models.SaveProgressRequest{
		FlashcardTitle: "Go Basics",
		SessionSummary: &models.SessionSummary{
			CompletedAt:     &completed,
			CardsReviewed:   12,
			BoxDistribution: models.BoxDistribution{Box1: 8, Box2: 3, Box3: 1},
			DurationSeconds: 240,
		},
	})

	require.NoError(t, err)
	require.Len(t, sessionRepo.inserted, 1)
	session := sessionRepo.inserted[0]
	assert.Equal(t, "go_basics", session.FlashcardID)
	assert.Equal(t, "Go Basics", session.FlashcardTitle)
	assert.Equal(t, completed, session.CompletedAt)
	// StartedAt is backfilled from the duration when the client omits it.
	assert.Equal(t, completed.Add(-240*time.Second), session.StartedAt)
	assert.Equal(t, 12, session.CardsReviewed)
}

func TestProgressSaveSessionWithoutDuration(t *testing.T) {
	progressRepo := &fakeProgressRepo{}
	sessionRepo := &fakeSessionRepo{}
	svc, _ := newTestProgressService(progressRepo, sessionRepo)

	completed := time.Date(2026, 2, 10, 14, 30, 0, 0, time.UTC)
	err := svc.Save(context.Background(), "auth0|user1", "go_basics", &models.SaveProgressRequest{
		SessionSummary: &models.SessionSummary{
			CompletedAt:   &completed,
			CardsReviewed: 5,
		},
	})

	require.NoError(t, err)
	require.Len(t, sessionRepo.inserted, 1)
	assert.Equal(t, completed, sessionRepo.inserted[0].StartedAt)
}

func TestProgressSaveUpsertFailureAborts(t *testing.T) {
	progressRepo := &fakeProgressRepo{upsertErr: errors.New("connection reset")}
	sessionRepo := &fakeSessionRepo{}
	svc, _ := newTestProgressService(progressRepo, sessionRepo)

	completed := time.Now()
	err := svc.Save(context.Background(), "auth0|user1", "go_basics", &models.SaveProgressRequest{
		Cards: map[string]models.CardProgress{
			"c001": {Box: 1},
		},
		SessionSummary: &models.SessionSummary{CompletedAt: &completed},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "save progress")
	assert.Empty(t, sessionRepo.inserted, "session must not outlive a failed card write")
}

func TestProgressLoadEmpty(t *testing.T) {
	svc, _ := newTestProgressService(&fakeProgressRepo{}, &fakeSessionRepo{})

	progress, err := svc.Load(context.Background(), "auth0|user1", "untouched")

	require.NoError(t, err)
	assert.Nil(t, progress)
}

func TestProgressLoadMergesCardsAndSessions(t *testing.T) {
	reviewed := time.Date(2026, 2, 9, 9, 0, 0, 0, time.UTC)
	completed := time.Date(2026, 2, 10, 14, 30, 0, 0, time.UTC)
	progressRepo := &fakeProgressRepo{
		cards: map[string]map[string]models.CardProgress{
			"go_basics": {
				"c001": {Box: 1, LastReviewed: reviewed, ReviewCount: 3},
			},
		},
	}
	sessionRepo := &fakeSessionRepo{
		recent: map[string][]models.QuizSession{
			"go_basics": {
				{SessionID: "sess_9", CompletedAt: completed, CardsReviewed: 10},
			},
		},
	}
	svc, _ := newTestProgressService(progressRepo, sessionRepo)

	progress, err := svc.Load(context.Background(), "auth0|user1", "go_basics")

	require.NoError(t, err)
	require.NotNil(t, progress)
	assert.Equal(t, "auth0|user1", progress.UserID)
	assert.Equal(t, "go_basics", progress.FlashcardID)
	assert.Len(t, progress.Cards, 1)
	assert.Len(t, progress.SessionHistory, 1)
	assert.Equal(t, completed, progress.LastUpdated, "newest touch wins")
	assert.Equal(t, []int{config.RecentSessionLimit}, sessionRepo.recentLimits)
}

func TestProgressLoadAllSkipsEmptySets(t *testing.T) {
	progressRepo := &fakeProgressRepo{
		flashcardIDs: []string{"go_basics", "stale_entry"},
		cards: map[string]map[string]models.CardProgress{
			"go_basics": {
				"c001": {Box: 2, LastReviewed: time.Now()},
			},
		},
	}
	svc, _ := newTestProgressService(progressRepo, &fakeSessionRepo{})

	all, err := svc.LoadAll(context.Background(), "auth0|user1")

	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Contains(t, all, "go_basics")
}

func TestProgressDeleteKeepsSessions(t *testing.T) {
	progressRepo := &fakeProgressRepo{}
	sessionRepo := &fakeSessionRepo{}
	svc, _ := newTestProgressService(progressRepo, sessionRepo)

	err := svc.Delete(context.Background(), "auth0|user1", "go_basics")

	require.NoError(t, err)
	assert.Equal(t, []string{"go_basics"}, progressRepo.deleted)
}

func TestProgressReportAggregates(t *testing.T) {
	sessionRepo := &fakeSessionRepo{
		since: []models.QuizSession{
			{CardsReviewed: 12, BoxDistribution: models.BoxDistribution{Box1: 8, Box2: 3, Box3: 1}, DurationSeconds: 240},
			{CardsReviewed: 12, BoxDistribution: models.BoxDistribution{Box1: 7, Box2: 3, Box3: 2}, DurationSeconds: 260},
		},
	}
	svc, _ := newTestProgressService(&fakeProgressRepo{}, sessionRepo)

	report, err := svc.Report(context.Background(), "auth0|user1", "learner@example.com", "Learner", 14)

	require.NoError(t, err)
	assert.Equal(t, 14, sessionRepo.sinceDays)
	assert.Equal(t, "learner@example.com", report.UserEmail)
	assert.Equal(t, "Learner", report.UserName)
	assert.Equal(t, 14, report.ReportPeriodDays)
	assert.Equal(t, 2, report.Summary.TotalSessions)
	assert.Equal(t, 24, report.Summary.TotalCardsReviewed)
	assert.Equal(t, 15, report.Summary.TotalLearned)
	assert.Equal(t, 6, report.Summary.TotalUncertain)
	assert.Equal(t, 3, report.Summary.TotalNotLearned)
	assert.Equal(t, 500, report.Summary.TotalDurationSeconds)
	assert.Equal(t, 250.0, report.Summary.AverageSessionDuration)
	assert.Len(t, report.Sessions, 2)
}

func TestProgressReportDefaultPeriod(t *testing.T) {
	sessionRepo := &fakeSessionRepo{}
	svc, _ := newTestProgressService(&fakeProgressRepo{}, sessionRepo)

	report, err := svc.Report(context.Background(), "auth0|user1", "learner@example.com", "", 0)

	require.NoError(t, err)
	assert.Equal(t, config.DefaultReportDays, sessionRepo.sinceDays)
	assert.Equal(t, config.DefaultReportDays, report.ReportPeriodDays)
	assert.Zero(t, report.Summary.TotalSessions)
	assert.Zero(t, report.Summary.AverageSessionDuration)
}
