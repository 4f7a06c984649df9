package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ommiquiz/internal/domain/models"
	"ommiquiz/internal/httputil"
)

func claimsRequest(method, target, body string) *http.Request {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	r = httputil.WithUserID(r, testOwnerID)
	return httputil.WithClaims(r, &models.Auth0Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: testOwnerID},
		Email:            "user@example.com",
		Name:             "Example User",
	})
}

func newProgressHandler(progress *fakeProgressService, pdf *fakePDFRenderer, profiles *fakeProfileRepo) *ProgressHandler {
	return NewProgressHandler(progress, pdf, profiles, slog.Default())
}

func TestGetAllProgress(t *testing.T) {
	progress := &fakeProgressService{
		loadAll: func(ctx context.Context, userID string) (map[string]*models.FlashcardProgress, error) {
			require.Equal(t, testOwnerID, userID)
			return map[string]*models.FlashcardProgress{
				"go_basics": {UserID: userID, FlashcardID: "go_basics"},
			}, nil
		},
	}
	h := newProgressHandler(progress, &fakePDFRenderer{}, &fakeProfileRepo{})

	rec := httptest.NewRecorder()
	h.GetAll(rec, claimsRequest(http.MethodGet, "/api/users/me/progress", ""))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"go_basics"`)
}

func TestGetProgressReturnsNullWhenEmpty(t *testing.T) {
	progress := &fakeProgressService{
		load: func(ctx context.Context, userID, flashcardID string) (*models.FlashcardProgress, error) {
			return nil, nil
		},
	}
	h := newProgressHandler(progress, &fakePDFRenderer{}, &fakeProfileRepo{})

	r := claimsRequest(http.MethodGet, "/api/users/me/progress/go_basics", "")
	r.SetPathValue("flashcard_id", "go_basics")
	rec := httptest.NewRecorder()
	h.Get(rec, r)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "null", strings.TrimSpace(rec.Body.String()))
}

func TestSaveProgress(t *testing.T) {
	var gotReq *models.SaveProgressRequest
	progress := &fakeProgressService{
		save: func(ctx context.Context, userID, flashcardID string, req *models.SaveProgressRequest) error {
			require.Equal(t, testOwnerID, userID)
			require.Equal(t, "go_basics", flashcardID)
			gotReq = req
			return nil
		},
	}
	profiles := &fakeProfileRepo{}
	h := newProgressHandler(progress, &fakePDFRenderer{}, profiles)

	body := `{"cards": {"gob001": {"box": 1, "review_count": 3}}}`
	r := claimsRequest(http.MethodPut, "/api/users/me/progress/go_basics", body)
	r.SetPathValue("flashcard_id", "go_basics")
	rec := httptest.NewRecorder()
	h.Save(rec, r)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, gotReq)
	assert.Equal(t, 1, gotReq.Cards["gob001"].Box)

	// Claims refresh the profile mirror on every save.
	require.Len(t, profiles.upserts, 1)
	assert.Equal(t, testOwnerID, profiles.upserts[0].ID)
	assert.Equal(t, "user@example.com", profiles.upserts[0].Email)
	assert.Equal(t, "Example User", profiles.upserts[0].DisplayName)
}

func TestResetProgress(t *testing.T) {
	reset := false
	progress := &fakeProgressService{
		delete: func(ctx context.Context, userID, flashcardID string) error {
			reset = true
			return nil
		},
	}
	h := newProgressHandler(progress, &fakePDFRenderer{}, &fakeProfileRepo{})

	r := claimsRequest(http.MethodDelete, "/api/users/me/progress/go_basics", "")
	r.SetPathValue("flashcard_id", "go_basics")
	rec := httptest.NewRecorder()
	h.Reset(rec, r)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, reset)
}

func TestReportPassesClaimsAndPeriod(t *testing.T) {
	var gotEmail, gotName string
	var gotDays int
	progress := &fakeProgressService{
		report: func(ctx context.Context, userID, email, name string, days int) (*models.LearningReport, error) {
			gotEmail, gotName, gotDays = email, name, days
			return &models.LearningReport{
				UserEmail:        email,
				UserName:         name,
				ReportPeriodDays: days,
				GeneratedAt:      time.Now(),
			}, nil
		},
	}
	profiles := &fakeProfileRepo{}
	h := newProgressHandler(progress, &fakePDFRenderer{}, profiles)

	rec := httptest.NewRecorder()
	h.Report(rec, claimsRequest(http.MethodGet, "/api/users/me/learning-report?days=14", ""))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user@example.com", gotEmail)
	assert.Equal(t, "Example User", gotName)
	assert.Equal(t, 14, gotDays)
	assert.Len(t, profiles.upserts, 1)
}

func TestReportRejectsBadPeriod(t *testing.T) {
	h := newProgressHandler(&fakeProgressService{}, &fakePDFRenderer{}, &fakeProfileRepo{})

	for _, days := range []string{"abc", "-1", "0"} {
		rec := httptest.NewRecorder()
		h.Report(rec, claimsRequest(http.MethodGet, "/api/users/me/learning-report?days="+days, ""))
		assert.Equal(t, http.StatusBadRequest, rec.Code, "days=%s", days)
	}
}

func TestReportPDF(t *testing.T) {
	progress := &fakeProgressService{
		report: func(ctx context.Context, userID, email, name string, days int) (*models.LearningReport, error) {
			return &models.LearningReport{ReportPeriodDays: 30, GeneratedAt: time.Now()}, nil
		},
	}
	pdf := &fakePDFRenderer{
		learningHistory: func(report *models.LearningReport) ([]byte, error) {
			return []byte("%PDF-1.4 fake"), nil
		},
	}
	h := newProgressHandler(progress, pdf, &fakeProfileRepo{})

	rec := httptest.NewRecorder()
	h.ReportPDF(rec, claimsRequest(http.MethodGet, "/api/users/me/learning-report/pdf", ""))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "learning_report_30d.pdf")
}
