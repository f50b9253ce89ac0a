package http

import (
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/msclatvia/wellbeing-backend/internal/core/domain"
	apperrors "github.com/msclatvia/wellbeing-backend/internal/core/errors"
	"github.com/msclatvia/wellbeing-backend/internal/core/ports"
)

const dateParamLayout = "2006-01-02"

// DashboardHandler handles HTTP requests for the dashboard query surface
type DashboardHandler struct {
	dashboardService ports.DashboardService
	errorHandler     *ErrorHandler
	logger           *slog.Logger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(
	dashboardService ports.DashboardService,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		errorHandler:     errorHandler,
		logger:           logger.With("handler", "dashboard"),
	}
}

// Router sets up a new chi Router for all dashboard routes.
func (h *DashboardHandler) Router() http.Handler {
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

// RegisterRoutes sets up the routing for all dashboard endpoints.
func (h *DashboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/overview", h.HandleOverview)
	r.Get("/aggregate", h.HandleAggregate)
	r.Get("/questions/{questionID}", h.HandleGetQuestion)
	r.Get("/departments", h.HandleCompareDepartments)
	r.Get("/heatmap", h.HandleHeatmap)
	r.Get("/rows", h.HandleListRows)
}

// parseCriteria reads the shared filter query parameters: department, from,
// to. Dates are calendar days (YYYY-MM-DD); a one-sided range is open at the
// missing end.
func parseCriteria(r *http.Request) (domain.FilterCriteria, error) {
	criteria := domain.FilterCriteria{
		Department: r.URL.Query().Get("department"),
	}

	fromParam := r.URL.Query().Get("from")
	toParam := r.URL.Query().Get("to")
	if fromParam == "" && toParam == "" {
		return criteria, nil
	}

	dr := domain.DateRange{
		Start: time.Time{},
		End:   time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC),
	}
	if fromParam != "" {
		from, err := time.Parse(dateParamLayout, fromParam)
		if err != nil {
			return criteria, apperrors.NewBadRequestError(err, "Invalid 'from' date, expected YYYY-MM-DD")
		}
		dr.Start = from
	}
	if toParam != "" {
		to, err := time.Parse(dateParamLayout, toParam)
		if err != nil {
			return criteria, apperrors.NewBadRequestError(err, "Invalid 'to' date, expected YYYY-MM-DD")
		}
		dr.End = to
	}
	criteria.DateRange = &dr
	return criteria, nil
}

// round2 rounds presentation values to two decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// --- Response DTOs ---

// StatDTO is the JSON shape of a summary statistic block.
type StatDTO struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

func toStatDTO(stat domain.AggregateStat) StatDTO {
	return StatDTO{
		Count:  stat.Count,
		Mean:   round2(stat.Mean),
		Median: round2(stat.Median),
		Min:    round2(stat.Min),
		Max:    round2(stat.Max),
	}
}

func toStatPtrDTO(stat *domain.AggregateStat) *StatDTO {
	if stat == nil {
		return nil
	}
	dto := toStatDTO(*stat)
	return &dto
}

// TrendPointDTO is one daily bucket of a metric's average.
type TrendPointDTO struct {
	Date    string  `json:"date"`
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

func toTrendDTOs(trend []domain.TrendPoint) []TrendPointDTO {
	out := make([]TrendPointDTO, 0, len(trend))
	for _, p := range trend {
		out = append(out, TrendPointDTO{
			Date:    p.Date.Format(dateParamLayout),
			Average: round2(p.Average),
			Count:   p.Count,
		})
	}
	return out
}

// CategoryAverageDTO is the cross-row mean of one category score.
type CategoryAverageDTO struct {
	Category string  `json:"category"`
	Average  float64 `json:"average"`
	Count    int     `json:"count"`
}

// OverviewDTO is the executive-summary block.
type OverviewDTO struct {
	ResponseCount int                  `json:"responseCount"`
	Overall       *StatDTO             `json:"overall,omitempty"`
	Categories    []CategoryAverageDTO `json:"categories"`
	Trend         []TrendPointDTO      `json:"trend"`
}

// AggregateRowDTO is one group of an aggregation result.
type AggregateRowDTO struct {
	Key  string  `json:"key"`
	Stat StatDTO `json:"stat"`
}

func toAggregateRowDTOs(rows []domain.AggregateRow) []AggregateRowDTO {
	out := make([]AggregateRowDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, AggregateRowDTO{Key: row.Key, Stat: toStatDTO(row.Stat)})
	}
	return out
}

// QuestionStatsDTO is the question-explorer block for one question.
type QuestionStatsDTO struct {
	Question     string            `json:"question"`
	Stem         string            `json:"stem"`
	Stat         *StatDTO          `json:"stat,omitempty"`
	Histogram    []int             `json:"histogram"`
	ByDepartment []AggregateRowDTO `json:"byDepartment"`
	Trend        []TrendPointDTO   `json:"trend"`
}

// DepartmentScoreDTO is one entry of the department ranking.
type DepartmentScoreDTO struct {
	Department string  `json:"department"`
	Average    float64 `json:"average"`
	Count      int     `json:"count"`
}

// DepartmentCategoryRowDTO holds one department's per-category averages.
type DepartmentCategoryRowDTO struct {
	Department string             `json:"department"`
	Scores     map[string]float64 `json:"scores"`
}

// DepartmentComparisonDTO ranks departments and breaks scores down by category.
type DepartmentComparisonDTO struct {
	Ranking    []DepartmentScoreDTO       `json:"ranking"`
	Categories []DepartmentCategoryRowDTO `json:"categories"`
}

// HeatmapCellDTO is one department x question average.
type HeatmapCellDTO struct {
	Question string  `json:"question"`
	Average  float64 `json:"average"`
	Count    int     `json:"count"`
	Worst    bool    `json:"worst"`
}

// HeatmapRowDTO is one department's heatmap cells.
type HeatmapRowDTO struct {
	Department string           `json:"department"`
	Cells      []HeatmapCellDTO `json:"cells"`
}

// ScoredRowDTO is one filtered raw row with its derived scores.
type ScoredRowDTO struct {
	Timestamp      *string            `json:"timestamp,omitempty"`
	Department     string             `json:"department,omitempty"`
	Answers        map[string]float64 `json:"answers"`
	CategoryScores map[string]float64 `json:"categoryScores"`
	OverallIndex   *float64           `json:"overallIndex,omitempty"`
}

// --- Handlers ---

// HandleOverview handles GET /dashboard/overview
func (h *DashboardHandler) HandleOverview(w http.ResponseWriter, r *http.Request) {
	criteria, err := parseCriteria(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	overview, err := h.dashboardService.Overview(r.Context(), criteria)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	dto := OverviewDTO{
		ResponseCount: overview.ResponseCount,
		Overall:       toStatPtrDTO(overview.Overall),
		Categories:    make([]CategoryAverageDTO, 0, len(overview.Categories)),
		Trend:         toTrendDTOs(overview.Trend),
	}
	for _, c := range overview.Categories {
		dto.Categories = append(dto.Categories, CategoryAverageDTO{
			Category: c.Category,
			Average:  round2(c.Average),
			Count:    c.Count,
		})
	}

	WriteJSON(w, http.StatusOK, dto)
}

// HandleAggregate handles GET /dashboard/aggregate
func (h *DashboardHandler) HandleAggregate(w http.ResponseWriter, r *http.Request) {
	criteria, err := parseCriteria(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	dimension := r.URL.Query().Get("dimension")
	if dimension == "" {
		h.errorHandler.Handle(w, r, apperrors.NewBadRequestError(
			apperrors.ErrUnknownDimension, "The 'dimension' query parameter is required"))
		return
	}

	rows, err := h.dashboardService.Aggregate(r.Context(), ports.AggregateParams{
		Criteria:  criteria,
		Dimension: ports.Dimension(dimension),
		Metric:    r.URL.Query().Get("metric"),
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteList(w, toAggregateRowDTOs(rows))
}

// HandleGetQuestion handles GET /dashboard/questions/{questionID}
func (h *DashboardHandler) HandleGetQuestion(w http.ResponseWriter, r *http.Request) {
	criteria, err := parseCriteria(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	stats, err := h.dashboardService.QuestionStats(r.Context(), chi.URLParam(r, "questionID"), criteria)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, QuestionStatsDTO{
		Question:     stats.Question,
		Stem:         stats.Stem,
		Stat:         toStatPtrDTO(stats.Stat),
		Histogram:    stats.Histogram,
		ByDepartment: toAggregateRowDTOs(stats.ByDepartment),
		Trend:        toTrendDTOs(stats.Trend),
	})
}

// HandleCompareDepartments handles GET /dashboard/departments
func (h *DashboardHandler) HandleCompareDepartments(w http.ResponseWriter, r *http.Request) {
	criteria, err := parseCriteria(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	comparison, err := h.dashboardService.CompareDepartments(r.Context(), criteria)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	dto := DepartmentComparisonDTO{
		Ranking:    make([]DepartmentScoreDTO, 0, len(comparison.Ranking)),
		Categories: make([]DepartmentCategoryRowDTO, 0, len(comparison.Categories)),
	}
	for _, score := range comparison.Ranking {
		dto.Ranking = append(dto.Ranking, DepartmentScoreDTO{
			Department: score.Department,
			Average:    round2(score.Average),
			Count:      score.Count,
		})
	}
	for _, row := range comparison.Categories {
		scores := make(map[string]float64, len(row.Scores))
		for name, value := range row.Scores {
			scores[name] = round2(value)
		}
		dto.Categories = append(dto.Categories, DepartmentCategoryRowDTO{
			Department: row.Department,
			Scores:     scores,
		})
	}

	WriteJSON(w, http.StatusOK, dto)
}

// HandleHeatmap handles GET /dashboard/heatmap
func (h *DashboardHandler) HandleHeatmap(w http.ResponseWriter, r *http.Request) {
	criteria, err := parseCriteria(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	rows, err := h.dashboardService.Heatmap(r.Context(), criteria)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	dtos := make([]HeatmapRowDTO, 0, len(rows))
	for _, row := range rows {
		cells := make([]HeatmapCellDTO, 0, len(row.Cells))
		for _, cell := range row.Cells {
			cells = append(cells, HeatmapCellDTO{
				Question: cell.Question,
				Average:  round2(cell.Average),
				Count:    cell.Count,
				Worst:    cell.Worst,
			})
		}
		dtos = append(dtos, HeatmapRowDTO{Department: row.Department, Cells: cells})
	}

	WriteList(w, dtos)
}

// HandleListRows handles GET /dashboard/rows
func (h *DashboardHandler) HandleListRows(w http.ResponseWriter, r *http.Request) {
	criteria, err := parseCriteria(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	scored, err := h.dashboardService.ScoredRows(r.Context(), criteria)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	dtos := make([]ScoredRowDTO, 0, len(scored))
	for _, s := range scored {
		dto := ScoredRowDTO{
			Department:     s.Row.Department,
			Answers:        s.Row.Answers,
			CategoryScores: make(map[string]float64, len(s.CategoryScores)),
		}
		if s.Row.HasDate() {
			ts := s.Row.Timestamp.Format(time.RFC3339)
			dto.Timestamp = &ts
		}
		for name, value := range s.CategoryScores {
			dto.CategoryScores[name] = round2(value)
		}
		if s.OverallIndex != nil {
			v := round2(*s.OverallIndex)
			dto.OverallIndex = &v
		}
		dtos = append(dtos, dto)
	}

	WriteList(w, dtos)
}
