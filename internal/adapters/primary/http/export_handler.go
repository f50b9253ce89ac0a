package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/msclatvia/wellbeing-backend/internal/core/domain"
	apperrors "github.com/msclatvia/wellbeing-backend/internal/core/errors"
	"github.com/msclatvia/wellbeing-backend/internal/core/ports"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypePDF  = "application/pdf"
)

// ExportHandler handles HTTP requests for downloadable exports
type ExportHandler struct {
	exportService ports.ExportService
	errorHandler  *ErrorHandler
	logger        *slog.Logger
}

// NewExportHandler creates a new export handler
func NewExportHandler(
	exportService ports.ExportService,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *ExportHandler {
	return &ExportHandler{
		exportService: exportService,
		errorHandler:  errorHandler,
		logger:        logger.With("handler", "export"),
	}
}

// Router sets up a new chi Router for the export routes.
func (h *ExportHandler) Router() http.Handler {
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

// RegisterRoutes sets up the routing for the export endpoints.
func (h *ExportHandler) RegisterRoutes(r chi.Router) {
	r.Get("/spreadsheet", h.HandleSpreadsheet)
	r.Get("/summary", h.HandleSummary)
}

// HandleSpreadsheet handles GET /export/spreadsheet
func (h *ExportHandler) HandleSpreadsheet(w http.ResponseWriter, r *http.Request) {
	criteria, err := parseCriteria(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	question := r.URL.Query().Get("question")
	if question != "" && !domain.IsQuestionID(question) {
		h.errorHandler.Handle(w, r, apperrors.NewBadRequestError(
			apperrors.ErrUnknownQuestion, "Unknown question id: "+question))
		return
	}

	payload, err := h.exportService.Spreadsheet(r.Context(), ports.SpreadsheetExportParams{
		Criteria: criteria,
		Question: question,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("spreadsheet export",
		"request_id", GetRequestID(r.Context()),
		"bytes", len(payload),
	)

	filename := "wellbeing_dashboard_export_" + time.Now().UTC().Format("2006-01-02") + ".xlsx"
	WriteAttachment(w, contentTypeXLSX, filename, payload)
}

// HandleSummary handles GET /export/summary
func (h *ExportHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	criteria, err := parseCriteria(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	payload, err := h.exportService.Summary(r.Context(), criteria)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("summary export",
		"request_id", GetRequestID(r.Context()),
		"bytes", len(payload),
	)

	filename := "wellbeing_summary_" + time.Now().UTC().Format("2006-01-02") + ".pdf"
	WriteAttachment(w, contentTypePDF, filename, payload)
}
