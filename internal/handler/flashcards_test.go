package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ommiquiz/internal/domain"
	"ommiquiz/internal/domain/models"
	"ommiquiz/internal/domain/services"
	"ommiquiz/internal/httputil"
)

func newFlashcardHandler(flashcards *fakeFlashcardService, users *fakeUserFlashcardService, pdf *fakePDFRenderer, downloads *fakeDownloadLogRepo) *FlashcardHandler {
	return NewFlashcardHandler(flashcards, users, pdf, downloads, slog.Default())
}

func pathRequest(method, target, id string) *http.Request {
	r := httptest.NewRequest(method, target, nil)
	r.SetPathValue("id", id)
	return r
}

func TestGetFlashcardGlobal(t *testing.T) {
	flashcards := &fakeFlashcardService{
		getSet: func(ctx context.Context, id string) (*models.FlashcardSet, error) {
			require.Equal(t, "go_basics", id)
			return &models.FlashcardSet{ID: "go_basics", Title: "Go Basics"}, nil
		},
	}
	h := newFlashcardHandler(flashcards, &fakeUserFlashcardService{}, &fakePDFRenderer{}, &fakeDownloadLogRepo{})

	rec := httptest.NewRecorder()
	h.Get(rec, pathRequest(http.MethodGet, "/api/flashcards/go_basics", "go_basics"))

	require.Equal(t, http.StatusOK, rec.Code)
	var set models.FlashcardSet
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &set))
	assert.Equal(t, "Go Basics", set.Title)
}

func TestGetFlashcardRoutesUserSets(t *testing.T) {
	var gotCaller, gotID string
	users := &fakeUserFlashcardService{
		get: func(ctx context.Context, callerID, flashcardID string) (*models.FlashcardSet, error) {
			gotCaller, gotID = callerID, flashcardID
			return &models.FlashcardSet{ID: flashcardID}, nil
		},
	}
	h := newFlashcardHandler(&fakeFlashcardService{}, users, &fakePDFRenderer{}, &fakeDownloadLogRepo{})

	r := pathRequest(http.MethodGet, "/api/flashcards/user_abc12345_biology", "user_abc12345_biology")
	r = httputil.WithUserID(r, "auth0|650f8a12bc34de56")
	rec := httptest.NewRecorder()
	h.Get(rec, r)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "auth0|650f8a12bc34de56", gotCaller)
	assert.Equal(t, "user_abc12345_biology", gotID)
}

func TestGetFlashcardNotFound(t *testing.T) {
	flashcards := &fakeFlashcardService{
		getSet: func(ctx context.Context, id string) (*models.FlashcardSet, error) {
			return nil, &domain.NotFoundError{Message: "flashcard set \"nope\" not found"}
		},
	}
	h := newFlashcardHandler(flashcards, &fakeUserFlashcardService{}, &fakePDFRenderer{}, &fakeDownloadLogRepo{})

	rec := httptest.NewRecorder()
	h.Get(rec, pathRequest(http.MethodGet, "/api/flashcards/nope", "nope"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSaveFlashcardCreated(t *testing.T) {
	flashcards := &fakeFlashcardService{
		save: func(ctx context.Context, req *services.SaveFlashcardRequest) (*services.SaveFlashcardResult, error) {
			require.Equal(t, "go_basics", req.ID)
			require.Equal(t, "id: go_basics", req.Content)
			return &services.SaveFlashcardResult{
				Set:      &models.FlashcardSet{ID: "go_basics"},
				Filename: "go_basics.yml",
				Created:  true,
			}, nil
		},
	}
	h := newFlashcardHandler(flashcards, &fakeUserFlashcardService{}, &fakePDFRenderer{}, &fakeDownloadLogRepo{})

	body := bytes.NewBufferString(`{"content": "id: go_basics"}`)
	r := httptest.NewRequest(http.MethodPut, "/api/flashcards/go_basics", body)
	r.SetPathValue("id", "go_basics")
	rec := httptest.NewRecorder()
	h.Save(rec, r)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"created":true`)
}

func TestSaveFlashcardUpdateReturns200(t *testing.T) {
	flashcards := &fakeFlashcardService{
		save: func(ctx context.Context, req *services.SaveFlashcardRequest) (*services.SaveFlashcardResult, error) {
			return &services.SaveFlashcardResult{
				Set:      &models.FlashcardSet{ID: req.ID},
				Filename: req.ID + ".yaml",
				Created:  false,
			}, nil
		},
	}
	h := newFlashcardHandler(flashcards, &fakeUserFlashcardService{}, &fakePDFRenderer{}, &fakeDownloadLogRepo{})

	body := bytes.NewBufferString(`{"content": "id: go_basics", "previous_id": ""}`)
	r := httptest.NewRequest(http.MethodPut, "/api/flashcards/go_basics", body)
	r.SetPathValue("id", "go_basics")
	rec := httptest.NewRecorder()
	h.Save(rec, r)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSaveFlashcardValidationErrorShape(t *testing.T) {
	flashcards := &fakeFlashcardService{
		save: func(ctx context.Context, req *services.SaveFlashcardRequest) (*services.SaveFlashcardResult, error) {
			return nil, &domain.ValidationError{
				Errors:   []string{"author: cannot be blank", "card 1: question: cannot be blank"},
				Warnings: []string{`unknown level "Z9"`},
			}
		},
	}
	h := newFlashcardHandler(flashcards, &fakeUserFlashcardService{}, &fakePDFRenderer{}, &fakeDownloadLogRepo{})

	body := bytes.NewBufferString(`{"content": "author:"}`)
	r := httptest.NewRequest(http.MethodPut, "/api/flashcards/go_basics", body)
	r.SetPathValue("id", "go_basics")
	rec := httptest.NewRecorder()
	h.Save(rec, r)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var problem map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Len(t, problem["errors"], 2)
	assert.Len(t, problem["warnings"], 1)
}

func TestDeleteFlashcardReportsFilenames(t *testing.T) {
	flashcards := &fakeFlashcardService{
		delete: func(ctx context.Context, id string) ([]string, error) {
			return []string{"go_basics.yml", "go_basics.yaml"}, nil
		},
	}
	h := newFlashcardHandler(flashcards, &fakeUserFlashcardService{}, &fakePDFRenderer{}, &fakeDownloadLogRepo{})

	rec := httptest.NewRecorder()
	h.Delete(rec, pathRequest(http.MethodDelete, "/api/flashcards/go_basics", "go_basics"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_basics.yaml")
}

func multipartBody(t *testing.T, filename, content string, overwrite bool) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	if overwrite {
		require.NoError(t, writer.WriteField("overwrite", "true"))
	}
	require.NoError(t, writer.Close())
	return buf, writer.FormDataContentType()
}

func TestUploadFlashcard(t *testing.T) {
	var gotReq *services.UploadFlashcardRequest
	flashcards := &fakeFlashcardService{
		upload: func(ctx context.Context, req *services.UploadFlashcardRequest) (*services.SaveFlashcardResult, error) {
			gotReq = req
			return &services.SaveFlashcardResult{
				Set:      &models.FlashcardSet{ID: "upload_set"},
				Filename: "upload_set.yaml",
				Created:  true,
			}, nil
		},
	}
	h := newFlashcardHandler(flashcards, &fakeUserFlashcardService{}, &fakePDFRenderer{}, &fakeDownloadLogRepo{})

	body, contentType := multipartBody(t, "My Upload.yaml", "id: upload_set", true)
	r := httptest.NewRequest(http.MethodPost, "/api/flashcards/upload", body)
	r.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.Upload(rec, r)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, gotReq)
	assert.Equal(t, "My Upload.yaml", gotReq.Filename)
	assert.Equal(t, "id: upload_set", gotReq.Content)
	assert.True(t, gotReq.Overwrite)
}

func TestUploadRequiresFileField(t *testing.T) {
	h := newFlashcardHandler(&fakeFlashcardService{}, &fakeUserFlashcardService{}, &fakePDFRenderer{}, &fakeDownloadLogRepo{})

	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)
	require.NoError(t, writer.WriteField("overwrite", "true"))
	require.NoError(t, writer.Close())

	r := httptest.NewRequest(http.MethodPost, "/api/flashcards/upload", buf)
	r.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	h.Upload(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "file field is required")
}

func TestValidateRawYAMLBody(t *testing.T) {
	flashcards := &fakeFlashcardService{
		validate: func(ctx context.Context, content string) *models.ValidationReport {
			require.Equal(t, "id: go_basics\n", content)
			return &models.ValidationReport{Valid: true, Errors: []string{}, Warnings: []string{}}
		},
	}
	h := newFlashcardHandler(flashcards, &fakeUserFlashcardService{}, &fakePDFRenderer{}, &fakeDownloadLogRepo{})

	r := httptest.NewRequest(http.MethodPost, "/api/flashcards/validate", strings.NewReader("id: go_basics\n"))
	r.Header.Set("Content-Type", "application/x-yaml")
	rec := httptest.NewRecorder()
	h.Validate(rec, r)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"valid":true`)
}

func TestValidateJSONBody(t *testing.T) {
	flashcards := &fakeFlashcardService{
		validate: func(ctx context.Context, content string) *models.ValidationReport {
			require.Equal(t, "id: go_basics", content)
			return &models.ValidationReport{Valid: false, Errors: []string{"author: cannot be blank"}, Warnings: []string{}}
		},
	}
	h := newFlashcardHandler(flashcards, &fakeUserFlashcardService{}, &fakePDFRenderer{}, &fakeDownloadLogRepo{})

	r := httptest.NewRequest(http.MethodPost, "/api/flashcards/validate", strings.NewReader(`{"content": "id: go_basics"}`))
	r.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Validate(rec, r)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"valid":false`)
}

func TestDownloadServesAttachmentAndLogs(t *testing.T) {
	modified := time.Now()
	flashcards := &fakeFlashcardService{
		getDocument: func(ctx context.Context, id string) (*models.Document, error) {
			return &models.Document{
				ID:           "chapter9_quiz",
				Filename:     "Chapter9.yml",
				Content:      "id: chapter9_quiz\n",
				ModifiedTime: &modified,
			}, nil
		},
	}
	downloads := &fakeDownloadLogRepo{}
	h := newFlashcardHandler(flashcards, &fakeUserFlashcardService{}, &fakePDFRenderer{}, downloads)

	r := pathRequest(http.MethodGet, "/api/flashcards/chapter9_quiz/download", "chapter9_quiz")
	r.Header.Set("User-Agent", "ommiquiz-test")
	rec := httptest.NewRecorder()
	h.Download(rec, r)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/x-yaml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename="Chapter9.yml"`)
	assert.Equal(t, "id: chapter9_quiz\n", rec.Body.String())

	require.Len(t, downloads.inserted, 1)
	logged := downloads.inserted[0]
	assert.Equal(t, "chapter9_quiz", logged.FlashcardID)
	assert.Nil(t, logged.UserID)
	assert.Equal(t, "ommiquiz-test", logged.UserAgent)
}

func TestDownloadLogsAuthenticatedUser(t *testing.T) {
	flashcards := &fakeFlashcardService{
		getDocument: func(ctx context.Context, id string) (*models.Document, error) {
			return &models.Document{ID: id, Filename: id + ".yml", Content: "id: " + id}, nil
		},
	}
	downloads := &fakeDownloadLogRepo{}
	h := newFlashcardHandler(flashcards, &fakeUserFlashcardService{}, &fakePDFRenderer{}, downloads)

	r := pathRequest(http.MethodGet, "/api/flashcards/go_basics/download", "go_basics")
	r = httputil.WithUserID(r, "auth0|650f8a12bc34de56")
	rec := httptest.NewRecorder()
	h.Download(rec, r)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, downloads.inserted, 1)
	require.NotNil(t, downloads.inserted[0].UserID)
	assert.Equal(t, "auth0|650f8a12bc34de56", *downloads.inserted[0].UserID)
}

func TestDownloadSurvivesLogFailure(t *testing.T) {
	flashcards := &fakeFlashcardService{
		getDocument: func(ctx context.Context, id string) (*models.Document, error) {
			return &models.Document{ID: id, Filename: id + ".yml", Content: "id: " + id}, nil
		},
	}
	downloads := &fakeDownloadLogRepo{insertErr: context.DeadlineExceeded}
	h := newFlashcardHandler(flashcards, &fakeUserFlashcardService{}, &fakePDFRenderer{}, downloads)

	rec := httptest.NewRecorder()
	h.Download(rec, pathRequest(http.MethodGet, "/api/flashcards/go_basics/download", "go_basics"))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDownloadSerializesUserSet(t *testing.T) {
	users := &fakeUserFlashcardService{
		get: func(ctx context.Context, callerID, flashcardID string) (*models.FlashcardSet, error) {
			return &models.FlashcardSet{ID: flashcardID, Title: "Biology"}, nil
		},
	}
	downloads := &fakeDownloadLogRepo{}
	h := newFlashcardHandler(&fakeFlashcardService{}, users, &fakePDFRenderer{}, downloads)

	rec := httptest.NewRecorder()
	h.Download(rec, pathRequest(http.MethodGet, "/api/flashcards/user_abc12345_biology/download", "user_abc12345_biology"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "user_abc12345_biology.yml")
	assert.Contains(t, rec.Body.String(), "title: Biology")
	assert.Len(t, downloads.inserted, 1)
}

func TestSpeedQuizPDF(t *testing.T) {
	flashcards := &fakeFlashcardService{
		getSet: func(ctx context.Context, id string) (*models.FlashcardSet, error) {
			return &models.FlashcardSet{ID: id, Title: "Go Basics"}, nil
		},
	}
	pdf := &fakePDFRenderer{
		speedQuiz: func(set *models.FlashcardSet, maxCards int) ([]byte, error) {
			require.Equal(t, 12, maxCards)
			return []byte("%PDF-1.4 fake"), nil
		},
	}
	h := newFlashcardHandler(flashcards, &fakeUserFlashcardService{}, pdf, &fakeDownloadLogRepo{})

	rec := httptest.NewRecorder()
	h.SpeedQuizPDF(rec, pathRequest(http.MethodGet, "/api/flashcards/go_basics/pdf", "go_basics"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "go_basics_speed_quiz.pdf")
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))
}

func TestListMergesUserSets(t *testing.T) {
	catalog := &fakeCatalogService{
		generate: func(ctx context.Context) (*models.Catalog, error) {
			return &models.Catalog{
				GeneratedAt:   time.Now(),
				Total:         1,
				FlashcardSets: []models.CatalogEntry{{ID: "go_basics", Title: "Go Basics"}},
			}, nil
		},
	}
	users := &fakeUserFlashcardService{
		listGlobal: func(ctx context.Context) ([]services.UserFlashcardInfo, error) {
			return []services.UserFlashcardInfo{
				{Entry: models.CatalogEntry{ID: "user_abc12345_biology", Title: "Biology"}},
			}, nil
		},
		list: func(ctx context.Context, userID string) ([]services.UserFlashcardInfo, error) {
			return []services.UserFlashcardInfo{
				// Already published globally; must not be listed twice.
				{Entry: models.CatalogEntry{ID: "user_abc12345_biology", Title: "Biology"}},
				{Entry: models.CatalogEntry{ID: "user_abc12345_chemistry", Title: "Chemistry"}},
			}, nil
		},
	}
	h := NewCatalogHandler(catalog, users, slog.Default())

	// Anonymous: catalog + global user sets.
	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/flashcards", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var listing models.Catalog
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	assert.Equal(t, 2, listing.Total)

	// Authenticated: private sets appear once, published ones are deduped.
	r := httptest.NewRequest(http.MethodGet, "/api/flashcards", nil)
	r = httputil.WithUserID(r, "auth0|650f8a12bc34de56")
	rec = httptest.NewRecorder()
	h.List(rec, r)
	require.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	assert.Equal(t, 3, listing.Total)
}

func TestListSurvivesMetadataOutage(t *testing.T) {
	catalog := &fakeCatalogService{
		generate: func(ctx context.Context) (*models.Catalog, error) {
			return &models.Catalog{
				Total:         1,
				FlashcardSets: []models.CatalogEntry{{ID: "go_basics"}},
			}, nil
		},
	}
	users := &fakeUserFlashcardService{
		listGlobal: func(ctx context.Context) ([]services.UserFlashcardInfo, error) {
			return nil, &domain.BackendError{Op: "list user sets", Err: context.DeadlineExceeded}
		},
	}
	h := NewCatalogHandler(catalog, users, slog.Default())

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/flashcards", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var listing models.Catalog
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	assert.Equal(t, 1, listing.Total)
}

func TestCatalogYAML(t *testing.T) {
	catalog := &fakeCatalogService{
		generateYAML: func(ctx context.Context) (string, error) {
			return "flashcard-sets: []\ntotal: 0\n", nil
		},
	}
	h := NewCatalogHandler(catalog, &fakeUserFlashcardService{}, slog.Default())

	rec := httptest.NewRecorder()
	h.CatalogYAML(rec, httptest.NewRequest(http.MethodGet, "/api/catalog", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/x-yaml")
	assert.Contains(t, rec.Body.String(), "flashcard-sets:")
}
