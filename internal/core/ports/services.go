package ports

import (
	"context"

	"github.com/msclatvia/wellbeing-backend/internal/core/domain"
)

// Dimension is a supported grouping axis for aggregation.
type Dimension string

const (
	DimensionDepartment Dimension = "department"
	DimensionQuestion   Dimension = "question"
	DimensionCategory   Dimension = "category"
	DimensionDate       Dimension = "date"
)

// Metric names a numeric column: a question id ("q1".."q15"), a category
// name, or MetricOverall for the overall index.
const MetricOverall = "overall"

// SubmitResponseParams defines the input for recording a submission.
type SubmitResponseParams struct {
	Department string
	Answers    map[string]int
}

// AggregateParams defines the input for a generic aggregation query.
type AggregateParams struct {
	Criteria  domain.FilterCriteria
	Dimension Dimension
	Metric    string
}

// SpreadsheetExportParams defines the input for the xlsx export. Question
// selects the per-department average column of the Dept Avg sheet.
type SpreadsheetExportParams struct {
	Criteria domain.FilterCriteria
	Question string
}

// SurveyService defines the submission use case.
type SurveyService interface {
	SubmitResponse(ctx context.Context, params SubmitResponseParams) (*domain.Response, error)
}

// DashboardService is the query surface consumed by the display layer.
// Filter criteria are passed per call; every call operates on a fresh
// snapshot of whatever the store adapter currently serves.
type DashboardService interface {
	Overview(ctx context.Context, criteria domain.FilterCriteria) (*domain.Overview, error)
	Aggregate(ctx context.Context, params AggregateParams) ([]domain.AggregateRow, error)
	QuestionStats(ctx context.Context, question string, criteria domain.FilterCriteria) (*domain.QuestionStats, error)
	CompareDepartments(ctx context.Context, criteria domain.FilterCriteria) (*domain.DepartmentComparison, error)
	Heatmap(ctx context.Context, criteria domain.FilterCriteria) ([]domain.HeatmapRow, error)
	ScoredRows(ctx context.Context, criteria domain.FilterCriteria) ([]domain.ScoredResponse, error)
}

// ExportService projects already-scored data into downloadable documents.
type ExportService interface {
	Spreadsheet(ctx context.Context, params SpreadsheetExportParams) ([]byte, error)
	Summary(ctx context.Context, criteria domain.FilterCriteria) ([]byte, error)
}

// EventBroadcaster defines the port for pushing refresh hints to dashboards.
type EventBroadcaster interface {
	Broadcast(event domain.Event) error
}
