package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/msclatvia/wellbeing-backend/internal/core/domain"
	apperrors "github.com/msclatvia/wellbeing-backend/internal/core/errors"
	"github.com/msclatvia/wellbeing-backend/internal/core/ports"
)

// DashboardService implements the aggregation and filtering engine. Every
// query loads a fresh snapshot from the repository (the repository stack may
// serve a short-lived cache; that policy is invisible here), filters it,
// scores it and reduces it. Nothing is cached across calls.
type DashboardService struct {
	repo   ports.ResponseRepository
	logger *slog.Logger
}

var _ ports.DashboardService = (*DashboardService)(nil)

// NewDashboardService creates a new dashboard service.
func NewDashboardService(repo ports.ResponseRepository, logger *slog.Logger) *DashboardService {
	return &DashboardService{
		repo:   repo,
		logger: logger.With("service", "dashboard"),
	}
}

// loadScored is the shared read path: load, coerce, filter, score.
// A store failure halts everything downstream for the request.
func loadScored(ctx context.Context, repo ports.ResponseRepository, criteria domain.FilterCriteria) (domain.Snapshot, []domain.ScoredResponse, error) {
	table, err := repo.LoadAll(ctx)
	if err != nil {
		return domain.Snapshot{}, nil, apperrors.NewStoreUnavailableError(err)
	}
	snap := criteria.Filter(domain.DecodeTable(table))
	return snap, domain.ScoreAll(snap), nil
}

// Overview computes the executive summary over the filtered snapshot.
// An empty result set is not an error: the overview degrades to a zero
// count with absent stats.
func (s *DashboardService) Overview(ctx context.Context, criteria domain.FilterCriteria) (*domain.Overview, error) {
	snap, scored, err := loadScored(ctx, s.repo, criteria)
	if err != nil {
		return nil, err
	}

	overview := &domain.Overview{ResponseCount: len(snap.Rows)}

	if stat, ok := domain.Summarize(overallValues(scored)); ok {
		overview.Overall = &stat
	}

	for _, cat := range domain.PresentCategories(snap.Schema) {
		if stat, ok := domain.Summarize(categoryValues(scored, cat.Name)); ok {
			overview.Categories = append(overview.Categories, domain.CategoryAverage{
				Category: cat.Name,
				Average:  stat.Mean,
				Count:    stat.Count,
			})
		}
	}

	if snap.Schema.HasTimestamp {
		overview.Trend = dailyTrend(scored, overallValue)
	}

	return overview, nil
}

// Aggregate runs a generic grouping query: one AggregateStat per distinct
// key of the dimension, computed over the metric column. Keys with no
// non-missing values are omitted. A metric whose column set is absent from
// the loaded data yields an empty table, never an error.
func (s *DashboardService) Aggregate(ctx context.Context, params ports.AggregateParams) ([]domain.AggregateRow, error) {
	snap, scored, err := loadScored(ctx, s.repo, params.Criteria)
	if err != nil {
		return nil, err
	}

	switch params.Dimension {
	case ports.DimensionQuestion:
		return questionAggregates(snap.Schema, scored), nil
	case ports.DimensionCategory:
		return categoryAggregates(snap.Schema, scored), nil
	case ports.DimensionDepartment, ports.DimensionDate:
		// handled below, they need a resolved metric
	default:
		return nil, apperrors.NewBadRequestError(
			fmt.Errorf("%w: %q", apperrors.ErrUnknownDimension, params.Dimension),
			"unknown grouping dimension")
	}

	value, err := resolveMetric(params.Metric, snap.Schema)
	if err != nil {
		return nil, err
	}
	if value == nil {
		// Metric column set absent from the loaded data: omit the section.
		return nil, nil
	}

	if params.Dimension == ports.DimensionDate {
		if !snap.Schema.HasTimestamp {
			return nil, nil
		}
		days := dateAggregates(scored, value)
		rows := make([]domain.AggregateRow, 0, len(days))
		for _, d := range days {
			rows = append(rows, domain.AggregateRow{Key: d.Day.Format("2006-01-02"), Stat: d.Stat})
		}
		return rows, nil
	}

	if !snap.Schema.HasDepartment {
		return nil, nil
	}
	return departmentAggregates(scored, value), nil
}

// QuestionStats computes the question-explorer block for a single question.
func (s *DashboardService) QuestionStats(ctx context.Context, question string, criteria domain.FilterCriteria) (*domain.QuestionStats, error) {
	if !domain.IsQuestionID(question) {
		return nil, apperrors.NewNotFoundError(
			fmt.Errorf("%w: %q", apperrors.ErrUnknownQuestion, question),
			"unknown question id")
	}

	snap, scored, err := loadScored(ctx, s.repo, criteria)
	if err != nil {
		return nil, err
	}

	stats := &domain.QuestionStats{
		Question:  question,
		Stem:      domain.QuestionStem(question),
		Histogram: make([]int, domain.ScaleMax),
	}
	if !snap.Schema.HasQuestion(question) {
		// Column absent from the loaded data: degrade, don't fail.
		return stats, nil
	}

	value := questionValue(question)
	if stat, ok := domain.Summarize(metricValues(scored, value)); ok {
		stats.Stat = &stat
	}
	for _, sr := range scored {
		if v, ok := value(sr); ok {
			bucket := int(v)
			if float64(bucket) == v && bucket >= domain.ScaleMin && bucket <= domain.ScaleMax {
				stats.Histogram[bucket-1]++
			}
		}
	}
	if snap.Schema.HasDepartment {
		stats.ByDepartment = departmentAggregates(scored, value)
	}
	if snap.Schema.HasTimestamp {
		stats.Trend = dailyTrend(scored, value)
	}
	return stats, nil
}

// CompareDepartments ranks departments by average overall index, descending,
// and breaks each department's score down by category.
func (s *DashboardService) CompareDepartments(ctx context.Context, criteria domain.FilterCriteria) (*domain.DepartmentComparison, error) {
	snap, scored, err := loadScored(ctx, s.repo, criteria)
	if err != nil {
		return nil, err
	}

	comparison := &domain.DepartmentComparison{}
	if !snap.Schema.HasDepartment {
		return comparison, nil
	}

	byDept := groupByDepartment(scored)
	for _, dept := range departmentKeys(byDept) {
		group := byDept[dept]

		if stat, ok := domain.Summarize(metricValues(group, overallValue)); ok {
			comparison.Ranking = append(comparison.Ranking, domain.DepartmentScore{
				Department: dept,
				Average:    stat.Mean,
				Count:      stat.Count,
			})
		}

		row := domain.DepartmentCategoryRow{Department: dept, Scores: map[string]float64{}}
		for _, cat := range domain.PresentCategories(snap.Schema) {
			if stat, ok := domain.Summarize(categoryValues(group, cat.Name)); ok {
				row.Scores[cat.Name] = stat.Mean
			}
		}
		if len(row.Scores) > 0 {
			comparison.Categories = append(comparison.Categories, row)
		}
	}

	sort.SliceStable(comparison.Ranking, func(i, j int) bool {
		return comparison.Ranking[i].Average > comparison.Ranking[j].Average
	})
	return comparison, nil
}

// Heatmap computes the department x question average matrix with row-wise
// worst-value flags. All cells tying for the row minimum are flagged.
func (s *DashboardService) Heatmap(ctx context.Context, criteria domain.FilterCriteria) ([]domain.HeatmapRow, error) {
	snap, scored, err := loadScored(ctx, s.repo, criteria)
	if err != nil {
		return nil, err
	}
	if !snap.Schema.HasDepartment {
		return nil, nil
	}

	byDept := groupByDepartment(scored)
	var rows []domain.HeatmapRow
	for _, dept := range departmentKeys(byDept) {
		group := byDept[dept]

		row := domain.HeatmapRow{Department: dept}
		for _, qid := range snap.Schema.Questions {
			if stat, ok := domain.Summarize(metricValues(group, questionValue(qid))); ok {
				row.Cells = append(row.Cells, domain.HeatmapCell{
					Question: qid,
					Average:  stat.Mean,
					Count:    stat.Count,
				})
			}
		}
		if len(row.Cells) == 0 {
			continue
		}

		worst := row.Cells[0].Average
		for _, cell := range row.Cells[1:] {
			if cell.Average < worst {
				worst = cell.Average
			}
		}
		for i := range row.Cells {
			if row.Cells[i].Average == worst {
				row.Cells[i].Worst = true
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ScoredRows returns the filtered, scored rows in insertion order.
func (s *DashboardService) ScoredRows(ctx context.Context, criteria domain.FilterCriteria) ([]domain.ScoredResponse, error) {
	_, scored, err := loadScored(ctx, s.repo, criteria)
	if err != nil {
		return nil, err
	}
	return scored, nil
}

// --- metric resolution and reductions ---

// metricFunc extracts a metric value from a scored row, reporting presence.
type metricFunc func(domain.ScoredResponse) (float64, bool)

func overallValue(sr domain.ScoredResponse) (float64, bool) {
	if sr.OverallIndex == nil {
		return 0, false
	}
	return *sr.OverallIndex, true
}

func questionValue(qid string) metricFunc {
	return func(sr domain.ScoredResponse) (float64, bool) {
		v, ok := sr.Answers[qid]
		return v, ok
	}
}

func categoryValue(name string) metricFunc {
	return func(sr domain.ScoredResponse) (float64, bool) {
		return sr.CategoryScore(name)
	}
}

// resolveMetric maps a metric name to an extractor. A nil extractor with a
// nil error means the metric is valid but its columns are absent from the
// loaded data (the caller omits the section). An unknown name is an error.
func resolveMetric(metric string, schema domain.Schema) (metricFunc, error) {
	switch {
	case metric == "" || metric == ports.MetricOverall:
		if len(schema.Questions) == 0 {
			return nil, nil
		}
		return overallValue, nil
	case domain.IsQuestionID(metric):
		if !schema.HasQuestion(metric) {
			return nil, nil
		}
		return questionValue(metric), nil
	default:
		cat, ok := domain.CategoryByName(metric)
		if !ok {
			return nil, apperrors.NewBadRequestError(
				fmt.Errorf("%w: %q", apperrors.ErrUnknownMetric, metric),
				"unknown metric")
		}
		for _, qid := range cat.Questions {
			if schema.HasQuestion(qid) {
				return categoryValue(cat.Name), nil
			}
		}
		return nil, nil
	}
}

func metricValues(scored []domain.ScoredResponse, value metricFunc) []float64 {
	var values []float64
	for _, sr := range scored {
		if v, ok := value(sr); ok {
			values = append(values, v)
		}
	}
	return values
}

func overallValues(scored []domain.ScoredResponse) []float64 {
	return metricValues(scored, overallValue)
}

func categoryValues(scored []domain.ScoredResponse, name string) []float64 {
	return metricValues(scored, categoryValue(name))
}

func questionAggregates(schema domain.Schema, scored []domain.ScoredResponse) []domain.AggregateRow {
	var rows []domain.AggregateRow
	for _, qid := range schema.Questions {
		if stat, ok := domain.Summarize(metricValues(scored, questionValue(qid))); ok {
			rows = append(rows, domain.AggregateRow{Key: qid, Stat: stat})
		}
	}
	return rows
}

func categoryAggregates(schema domain.Schema, scored []domain.ScoredResponse) []domain.AggregateRow {
	var rows []domain.AggregateRow
	for _, cat := range domain.PresentCategories(schema) {
		if stat, ok := domain.Summarize(categoryValues(scored, cat.Name)); ok {
			rows = append(rows, domain.AggregateRow{Key: cat.Name, Stat: stat})
		}
	}
	return rows
}

func departmentAggregates(scored []domain.ScoredResponse, value metricFunc) []domain.AggregateRow {
	byDept := groupByDepartment(scored)
	var rows []domain.AggregateRow
	for _, dept := range departmentKeys(byDept) {
		if stat, ok := domain.Summarize(metricValues(byDept[dept], value)); ok {
			rows = append(rows, domain.AggregateRow{Key: dept, Stat: stat})
		}
	}
	return rows
}

// dayAggregate is one calendar-date bucket, keyed by the date itself so
// consumers never have to re-parse a formatted key.
type dayAggregate struct {
	Day  time.Time
	Stat domain.AggregateStat
}

func dateAggregates(scored []domain.ScoredResponse, value metricFunc) []dayAggregate {
	byDay := map[time.Time][]float64{}
	for _, sr := range scored {
		if !sr.HasDate() {
			continue
		}
		if v, ok := value(sr); ok {
			day := domain.DateOf(sr.Timestamp)
			byDay[day] = append(byDay[day], v)
		}
	}

	days := make([]time.Time, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	rows := make([]dayAggregate, 0, len(days))
	for _, day := range days {
		stat, _ := domain.Summarize(byDay[day])
		rows = append(rows, dayAggregate{Day: day, Stat: stat})
	}
	return rows
}

// dailyTrend buckets a metric by calendar date and averages it per day,
// ascending. Days without values are simply absent (trend gaps are fine).
func dailyTrend(scored []domain.ScoredResponse, value metricFunc) []domain.TrendPoint {
	days := dateAggregates(scored, value)
	points := make([]domain.TrendPoint, 0, len(days))
	for _, d := range days {
		points = append(points, domain.TrendPoint{
			Date:    d.Day,
			Average: d.Stat.Mean,
			Count:   d.Stat.Count,
		})
	}
	return points
}

func groupByDepartment(scored []domain.ScoredResponse) map[string][]domain.ScoredResponse {
	groups := map[string][]domain.ScoredResponse{}
	for _, sr := range scored {
		if sr.Department == "" {
			continue
		}
		groups[sr.Department] = append(groups[sr.Department], sr)
	}
	return groups
}

// departmentKeys orders group keys by the configured department order, with
// any unconfigured values (rows written by other tools) sorted at the end.
func departmentKeys(groups map[string][]domain.ScoredResponse) []string {
	keys := make([]string, 0, len(groups))
	for _, dept := range domain.Departments {
		if _, ok := groups[dept]; ok {
			keys = append(keys, dept)
		}
	}
	var extra []string
	for dept := range groups {
		if !domain.IsValidDepartment(dept) {
			extra = append(extra, dept)
		}
	}
	sort.Strings(extra)
	return append(keys, extra...)
}
