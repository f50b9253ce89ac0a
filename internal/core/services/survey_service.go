package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/msclatvia/wellbeing-backend/internal/core/domain"
	apperrors "github.com/msclatvia/wellbeing-backend/internal/core/errors"
	"github.com/msclatvia/wellbeing-backend/internal/core/ports"
)

// SurveyService implements the submission use case: validate the raw
// answers, append the row, notify connected dashboards. The submission state
// machine (editing/submitting/submitted) belongs to the form client; this
// service is stateless.
type SurveyService struct {
	repo        ports.ResponseRepository
	broadcaster ports.EventBroadcaster
	logger      *slog.Logger
	now         func() time.Time
}

var _ ports.SurveyService = (*SurveyService)(nil)

// NewSurveyService creates a new survey service.
func NewSurveyService(repo ports.ResponseRepository, broadcaster ports.EventBroadcaster, logger *slog.Logger) *SurveyService {
	return &SurveyService{
		repo:        repo,
		broadcaster: broadcaster,
		logger:      logger.With("service", "survey"),
		now:         time.Now,
	}
}

// SubmitResponse records one survey submission. Validation failures block
// the submission without touching the store; a store failure propagates so
// the caller never assumes persistence.
func (s *SurveyService) SubmitResponse(ctx context.Context, params ports.SubmitResponseParams) (*domain.Response, error) {
	response, err := domain.NewResponse(params.Department, params.Answers, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.repo.Append(ctx, response); err != nil {
		return nil, apperrors.NewStoreUnavailableError(err)
	}

	if s.broadcaster != nil {
		go s.broadcastCreated(response)
	}

	return response, nil
}

func (s *SurveyService) broadcastCreated(response *domain.Response) {
	event := domain.Event{
		Type:       domain.EventResponseCreated,
		Department: response.Department,
		Timestamp:  response.Timestamp,
	}
	if err := s.broadcaster.Broadcast(event); err != nil {
		s.logger.Warn("failed to broadcast response event", "error", err)
	}
}
