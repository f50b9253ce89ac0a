package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	stdhttp "net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msclatvia/wellbeing-backend/internal/adapters/secondary/csvstore"
	"github.com/msclatvia/wellbeing-backend/internal/core/domain"
	"github.com/msclatvia/wellbeing-backend/internal/core/services"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newSurveyRouter(t *testing.T) (*chi.Mux, *csvstore.Repository) {
	t.Helper()

	repo := csvstore.New(filepath.Join(t.TempDir(), "survey_results.csv"))
	logger := testLogger()
	svc := services.NewSurveyService(repo, nil, logger)
	handler := NewSurveyHandler(svc, NewErrorHandler(logger), logger)

	r := chi.NewRouter()
	r.Route("/responses", handler.RegisterRoutes)
	return r, repo
}

func submissionBody(t *testing.T, department string, answers map[string]int) *bytes.Buffer {
	t.Helper()
	body, err := json.Marshal(SubmitResponseRequest{Department: department, Answers: answers})
	require.NoError(t, err)
	return bytes.NewBuffer(body)
}

func allAnswers(v int) map[string]int {
	answers := make(map[string]int, len(domain.QuestionIDs))
	for _, qid := range domain.QuestionIDs {
		answers[qid] = v
	}
	return answers
}

func TestHandleSubmitResponse(t *testing.T) {
	t.Run("valid submission is persisted", func(t *testing.T) {
		router, repo := newSurveyRouter(t)

		req := httptest.NewRequest(stdhttp.MethodPost, "/responses", submissionBody(t, "OVA", allAnswers(8)))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, stdhttp.StatusCreated, rec.Code)

		var dto ResponseDTO
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&dto))
		assert.Equal(t, "OVA", dto.Department)
		assert.Equal(t, 8, dto.Answers["q15"])
		assert.NotEmpty(t, dto.Timestamp)

		table, err := repo.LoadAll(req.Context())
		require.NoError(t, err)
		assert.Len(t, table.Records, 1)
	})

	t.Run("placeholder department is a validation error", func(t *testing.T) {
		router, repo := newSurveyRouter(t)

		req := httptest.NewRequest(stdhttp.MethodPost, "/responses",
			submissionBody(t, domain.DepartmentPlaceholder, allAnswers(5)))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, stdhttp.StatusUnprocessableEntity, rec.Code)

		var resp ValidationErrorResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "VALIDATION_ERROR", resp.Code)
		assert.Contains(t, resp.Fields, "department")

		table, err := repo.LoadAll(req.Context())
		require.NoError(t, err)
		assert.Empty(t, table.Records)
	})

	t.Run("missing answer is reported per field", func(t *testing.T) {
		router, _ := newSurveyRouter(t)

		answers := allAnswers(5)
		delete(answers, "q4")

		req := httptest.NewRequest(stdhttp.MethodPost, "/responses", submissionBody(t, "OVA", answers))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, stdhttp.StatusUnprocessableEntity, rec.Code)

		var resp ValidationErrorResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Contains(t, resp.Fields, "q4")
	})

	t.Run("out of range answer is rejected", func(t *testing.T) {
		router, _ := newSurveyRouter(t)

		answers := allAnswers(5)
		answers["q2"] = 11

		req := httptest.NewRequest(stdhttp.MethodPost, "/responses", submissionBody(t, "OVA", answers))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, stdhttp.StatusUnprocessableEntity, rec.Code)

		var resp ValidationErrorResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Contains(t, resp.Fields, "q2")
	})

	t.Run("unknown question key is rejected", func(t *testing.T) {
		router, _ := newSurveyRouter(t)

		answers := allAnswers(5)
		answers["q16"] = 5

		req := httptest.NewRequest(stdhttp.MethodPost, "/responses", submissionBody(t, "OVA", answers))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, stdhttp.StatusUnprocessableEntity, rec.Code)

		var resp ValidationErrorResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Contains(t, resp.Fields, "q16")
	})

	t.Run("malformed json is a bad request", func(t *testing.T) {
		router, _ := newSurveyRouter(t)

		req := httptest.NewRequest(stdhttp.MethodPost, "/responses", bytes.NewBufferString("{nope"))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, stdhttp.StatusBadRequest, rec.Code)
	})
}
