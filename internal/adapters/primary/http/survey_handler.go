package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/msclatvia/wellbeing-backend/internal/adapters/primary/validation"
	"github.com/msclatvia/wellbeing-backend/internal/core/domain"
	apperrors "github.com/msclatvia/wellbeing-backend/internal/core/errors"
	"github.com/msclatvia/wellbeing-backend/internal/core/ports"
)

// SurveyHandler handles HTTP requests for survey submissions
type SurveyHandler struct {
	surveyService ports.SurveyService
	errorHandler  *ErrorHandler
	logger        *slog.Logger
}

// NewSurveyHandler creates a new survey handler
func NewSurveyHandler(
	surveyService ports.SurveyService,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *SurveyHandler {
	return &SurveyHandler{
		surveyService: surveyService,
		errorHandler:  errorHandler,
		logger:        logger.With("handler", "survey"),
	}
}

// Router sets up a new chi Router for all submission routes.
func (h *SurveyHandler) Router() http.Handler {
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

// RegisterRoutes sets up the routing for the submission endpoints.
func (h *SurveyHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.HandleSubmitResponse)
}

// --- Request/Response DTOs ---

// SubmitResponseRequest defines the expected JSON body for a submission
type SubmitResponseRequest struct {
	Department string         `json:"department"`
	Answers    map[string]int `json:"answers"`
}

// Validate validates the submission request
func (r *SubmitResponseRequest) Validate() error {
	v := validation.NewValidator()

	v.Required("department", r.Department).
		NotEqual("department", r.Department, domain.DepartmentPlaceholder, "A department must be selected").
		OneOf("department", r.Department, domain.Departments)

	for _, qid := range domain.QuestionIDs {
		value, ok := r.Answers[qid]
		if !ok {
			v.Fail(qid, "This field is required")
			continue
		}
		v.IntRange(qid, value, domain.ScaleMin, domain.ScaleMax)
	}
	for qid := range r.Answers {
		if !domain.IsQuestionID(qid) {
			v.Fail(qid, "Unknown question id")
		}
	}

	if v.HasErrors() {
		return v.Errors()
	}
	return nil
}

// ResponseDTO defines the JSON response for a recorded submission.
type ResponseDTO struct {
	Timestamp  string         `json:"timestamp"`
	Department string         `json:"department"`
	Answers    map[string]int `json:"answers"`
}

func toResponseDTO(response *domain.Response) ResponseDTO {
	return ResponseDTO{
		Timestamp:  response.Timestamp.Format(time.RFC3339),
		Department: response.Department,
		Answers:    response.Answers,
	}
}

// HandleSubmitResponse handles POST /responses
func (h *SurveyHandler) HandleSubmitResponse(w http.ResponseWriter, r *http.Request) {
	var req SubmitResponseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errorHandler.Handle(w, r, apperrors.NewBadRequestError(err, "Invalid request body"))
		return
	}

	if err := req.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	response, err := h.surveyService.SubmitResponse(r.Context(), ports.SubmitResponseParams{
		Department: req.Department,
		Answers:    req.Answers,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("response recorded",
		"request_id", GetRequestID(r.Context()),
		"department", response.Department,
	)

	WriteCreated(w, toResponseDTO(response))
}
