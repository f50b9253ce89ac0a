package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	mw "github.com/msclatvia/wellbeing-backend/internal/adapters/primary/http/middleware"
	apperrors "github.com/msclatvia/wellbeing-backend/internal/core/errors"
)

// GetRequestID retrieves the request ID from context
func GetRequestID(ctx context.Context) string {
	return mw.GetRequestID(ctx)
}

// ErrorResponse is the standard JSON error response format
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Code    string                 `json:"code,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ValidationErrorResponse includes field-level validation errors
type ValidationErrorResponse struct {
	Error  string              `json:"error"`
	Code   string              `json:"code"`
	Fields map[string][]string `json:"fields,omitempty"`
}

// ErrorHandler provides centralized error handling with logging
type ErrorHandler struct {
	logger *slog.Logger
}

// NewErrorHandler creates a new error handler with the given logger
func NewErrorHandler(logger *slog.Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Handle processes an error and writes the appropriate HTTP response
func (h *ErrorHandler) Handle(w http.ResponseWriter, r *http.Request, err error) {
	requestID := GetRequestID(r.Context())

	// Check for AppError first (our custom error type)
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		h.logError(r, appErr.StatusCode, appErr.Err, requestID)
		h.writeErrorResponse(w, appErr.StatusCode, ErrorResponse{
			Error:   appErr.Message,
			Code:    appErr.Code,
			Details: appErr.Details,
		})
		return
	}

	// Check for ValidationErrors
	var validationErrs *apperrors.ValidationErrors
	if errors.As(err, &validationErrs) {
		h.logError(r, http.StatusUnprocessableEntity, err, requestID)
		h.writeValidationErrorResponse(w, validationErrs)
		return
	}

	// Map known domain errors to HTTP responses
	statusCode, response := h.mapDomainError(err)
	h.logError(r, statusCode, err, requestID)
	h.writeErrorResponse(w, statusCode, response)
}

// mapDomainError converts domain errors to HTTP status codes and responses
func (h *ErrorHandler) mapDomainError(err error) (int, ErrorResponse) {
	switch {
	// Submission validation
	case errors.Is(err, apperrors.ErrMissingDepartment):
		return http.StatusUnprocessableEntity, ErrorResponse{
			Error: "A department must be selected",
			Code:  "MISSING_DEPARTMENT",
		}
	case errors.Is(err, apperrors.ErrUnknownDepartment):
		return http.StatusUnprocessableEntity, ErrorResponse{
			Error: "Department is not in the configured set",
			Code:  "UNKNOWN_DEPARTMENT",
		}
	case errors.Is(err, apperrors.ErrOutOfRangeAnswer):
		return http.StatusUnprocessableEntity, ErrorResponse{
			Error: err.Error(),
			Code:  "OUT_OF_RANGE_ANSWER",
		}

	// Dashboard queries
	case errors.Is(err, apperrors.ErrUnknownQuestion):
		return http.StatusNotFound, ErrorResponse{
			Error: "Question not found",
			Code:  "UNKNOWN_QUESTION",
		}
	case errors.Is(err, apperrors.ErrUnknownMetric),
		errors.Is(err, apperrors.ErrUnknownDimension):
		return http.StatusBadRequest, ErrorResponse{
			Error: err.Error(),
			Code:  "BAD_REQUEST",
		}

	// Storage
	case errors.Is(err, apperrors.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, ErrorResponse{
			Error: "The response store is currently unavailable",
			Code:  "STORE_UNAVAILABLE",
		}

	// Not found
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound, ErrorResponse{
			Error: "Resource not found",
			Code:  "NOT_FOUND",
		}

	// Rate limiting
	case errors.Is(err, apperrors.ErrRateLimited):
		return http.StatusTooManyRequests, ErrorResponse{
			Error: "Too many requests. Please try again later.",
			Code:  "RATE_LIMITED",
		}

	// Default to internal server error
	default:
		return http.StatusInternalServerError, ErrorResponse{
			Error: "An unexpected error occurred",
			Code:  "INTERNAL_ERROR",
		}
	}
}

// logError logs the error with appropriate context
func (h *ErrorHandler) logError(r *http.Request, statusCode int, err error, requestID string) {
	logAttrs := []any{
		"request_id", requestID,
		"method", r.Method,
		"path", r.URL.Path,
		"status_code", statusCode,
		"error", err.Error(),
	}

	// Log at different levels based on status code
	switch {
	case statusCode >= 500:
		h.logger.Error("server error", logAttrs...)
	case statusCode >= 400:
		h.logger.Warn("client error", logAttrs...)
	default:
		h.logger.Info("request error", logAttrs...)
	}
}

// writeErrorResponse writes a JSON error response
func (h *ErrorHandler) writeErrorResponse(w http.ResponseWriter, statusCode int, response ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(response)
}

// writeValidationErrorResponse writes a validation error response
func (h *ErrorHandler) writeValidationErrorResponse(w http.ResponseWriter, errs *apperrors.ValidationErrors) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnprocessableEntity)
	_ = json.NewEncoder(w).Encode(ValidationErrorResponse{
		Error:  "Validation failed",
		Code:   "VALIDATION_ERROR",
		Fields: errs.Errors,
	})
}

// HandleError Helper function to handle errors inline in handlers
// Usage: if HandleError(w, r, err, h.errorHandler) { return }
func HandleError(w http.ResponseWriter, r *http.Request, err error, handler *ErrorHandler) bool {
	if err != nil {
		handler.Handle(w, r, err)
		return true
	}
	return false
}
