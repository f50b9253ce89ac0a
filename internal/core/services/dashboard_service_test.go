package services_test

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msclatvia/wellbeing-backend/internal/core/domain"
	apperrors "github.com/msclatvia/wellbeing-backend/internal/core/errors"
	"github.com/msclatvia/wellbeing-backend/internal/core/mocks"
	"github.com/msclatvia/wellbeing-backend/internal/core/ports"
	"github.com/msclatvia/wellbeing-backend/internal/core/services"
)

// uniformRecord builds a stored row with every answer set to the same value.
func uniformRecord(ts, dept string, v int) []string {
	rec := []string{ts, dept}
	for range domain.QuestionIDs {
		rec = append(rec, strconv.Itoa(v))
	}
	return rec
}

// dashboardFixture: four submissions over three days and two departments.
// OVA averages 7 overall, Administration averages 3.
func dashboardFixture() domain.RawTable {
	return domain.RawTable{
		Header: domain.RowHeader,
		Records: [][]string{
			uniformRecord("2025-03-01T09:00:00Z", "OVA", 8),
			uniformRecord("2025-03-02T10:00:00Z", "OVA", 6),
			uniformRecord("2025-03-02T11:00:00Z", "Administration", 4),
			uniformRecord("2025-03-03T12:00:00Z", "Administration", 2),
		},
	}
}

func newDashboardService(t *testing.T, table domain.RawTable) *services.DashboardService {
	t.Helper()
	mockRepo := mocks.NewMockResponseRepository()
	mockRepo.On("LoadAll", context.Background()).Return(table, nil)
	return services.NewDashboardService(mockRepo, testLogger())
}

func TestDashboardService_Overview(t *testing.T) {
	ctx := context.Background()

	t.Run("summary over all rows", func(t *testing.T) {
		svc := newDashboardService(t, dashboardFixture())

		overview, err := svc.Overview(ctx, domain.FilterCriteria{})

		require.NoError(t, err)
		assert.Equal(t, 4, overview.ResponseCount)

		require.NotNil(t, overview.Overall)
		assert.Equal(t, 4, overview.Overall.Count)
		assert.InDelta(t, 5, overview.Overall.Mean, 1e-9)
		assert.InDelta(t, 5, overview.Overall.Median, 1e-9)
		assert.InDelta(t, 2, overview.Overall.Min, 1e-9)
		assert.InDelta(t, 8, overview.Overall.Max, 1e-9)

		require.Len(t, overview.Categories, 5)
		for _, cat := range overview.Categories {
			assert.InDelta(t, 5, cat.Average, 1e-9, cat.Category)
			assert.Equal(t, 4, cat.Count, cat.Category)
		}

		require.Len(t, overview.Trend, 3)
		assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), overview.Trend[0].Date)
		assert.Equal(t, time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC), overview.Trend[2].Date)
		assert.InDelta(t, 8, overview.Trend[0].Average, 1e-9)
		assert.InDelta(t, 5, overview.Trend[1].Average, 1e-9)
		assert.InDelta(t, 2, overview.Trend[2].Average, 1e-9)
		assert.Equal(t, 2, overview.Trend[1].Count)
	})

	t.Run("department filter narrows the summary", func(t *testing.T) {
		svc := newDashboardService(t, dashboardFixture())

		overview, err := svc.Overview(ctx, domain.FilterCriteria{Department: "OVA"})

		require.NoError(t, err)
		assert.Equal(t, 2, overview.ResponseCount)
		require.NotNil(t, overview.Overall)
		assert.InDelta(t, 7, overview.Overall.Mean, 1e-9)
	})

	t.Run("empty store degrades instead of failing", func(t *testing.T) {
		svc := newDashboardService(t, domain.RawTable{})

		overview, err := svc.Overview(ctx, domain.FilterCriteria{})

		require.NoError(t, err)
		assert.Equal(t, 0, overview.ResponseCount)
		assert.Nil(t, overview.Overall)
		assert.Empty(t, overview.Categories)
		assert.Empty(t, overview.Trend)
	})

	t.Run("store failure blocks the query", func(t *testing.T) {
		mockRepo := mocks.NewMockResponseRepository()
		mockRepo.On("LoadAll", ctx).Return(domain.RawTable{}, errors.New("api quota exceeded"))
		svc := services.NewDashboardService(mockRepo, testLogger())

		overview, err := svc.Overview(ctx, domain.FilterCriteria{})

		assert.Nil(t, overview)
		assert.ErrorIs(t, err, apperrors.ErrStoreUnavailable)
	})
}

func TestDashboardService_Aggregate(t *testing.T) {
	ctx := context.Background()

	t.Run("by question", func(t *testing.T) {
		svc := newDashboardService(t, dashboardFixture())

		rows, err := svc.Aggregate(ctx, ports.AggregateParams{Dimension: ports.DimensionQuestion})

		require.NoError(t, err)
		require.Len(t, rows, 15)
		assert.Equal(t, "q1", rows[0].Key)
		assert.Equal(t, "q15", rows[14].Key)
		assert.InDelta(t, 5, rows[0].Stat.Mean, 1e-9)
	})

	t.Run("by category", func(t *testing.T) {
		svc := newDashboardService(t, dashboardFixture())

		rows, err := svc.Aggregate(ctx, ports.AggregateParams{Dimension: ports.DimensionCategory})

		require.NoError(t, err)
		require.Len(t, rows, 5)
		assert.Equal(t, "Workload & Recovery", rows[0].Key)
		assert.InDelta(t, 5, rows[0].Stat.Mean, 1e-9)
	})

	t.Run("by department with default metric", func(t *testing.T) {
		svc := newDashboardService(t, dashboardFixture())

		rows, err := svc.Aggregate(ctx, ports.AggregateParams{Dimension: ports.DimensionDepartment})

		require.NoError(t, err)
		require.Len(t, rows, 2)
		// Configured department order, not score order.
		assert.Equal(t, "Administration", rows[0].Key)
		assert.InDelta(t, 3, rows[0].Stat.Mean, 1e-9)
		assert.Equal(t, "OVA", rows[1].Key)
		assert.InDelta(t, 7, rows[1].Stat.Mean, 1e-9)
	})

	t.Run("by department with question metric", func(t *testing.T) {
		svc := newDashboardService(t, dashboardFixture())

		rows, err := svc.Aggregate(ctx, ports.AggregateParams{
			Dimension: ports.DimensionDepartment,
			Metric:    "q3",
		})

		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.InDelta(t, 3, rows[0].Stat.Mean, 1e-9)
	})

	t.Run("by date", func(t *testing.T) {
		svc := newDashboardService(t, dashboardFixture())

		rows, err := svc.Aggregate(ctx, ports.AggregateParams{Dimension: ports.DimensionDate})

		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, "2025-03-01", rows[0].Key)
		assert.Equal(t, "2025-03-02", rows[1].Key)
		assert.Equal(t, "2025-03-03", rows[2].Key)
		assert.InDelta(t, 5, rows[1].Stat.Mean, 1e-9)
	})

	t.Run("unknown dimension is a bad request", func(t *testing.T) {
		svc := newDashboardService(t, dashboardFixture())

		_, err := svc.Aggregate(ctx, ports.AggregateParams{Dimension: "zodiac"})

		assert.ErrorIs(t, err, apperrors.ErrUnknownDimension)
	})

	t.Run("unknown metric is a bad request", func(t *testing.T) {
		svc := newDashboardService(t, dashboardFixture())

		_, err := svc.Aggregate(ctx, ports.AggregateParams{
			Dimension: ports.DimensionDepartment,
			Metric:    "q99",
		})

		assert.ErrorIs(t, err, apperrors.ErrUnknownMetric)
	})

	t.Run("metric absent from the data yields an empty table", func(t *testing.T) {
		table := domain.RawTable{
			Header: []string{"timestamp", "department", "q1"},
			Records: [][]string{
				{"2025-03-01T09:00:00Z", "OVA", "8"},
			},
		}
		svc := newDashboardService(t, table)

		rows, err := svc.Aggregate(ctx, ports.AggregateParams{
			Dimension: ports.DimensionDepartment,
			Metric:    "q2",
		})

		require.NoError(t, err)
		assert.Empty(t, rows)
	})
}

func TestDashboardService_QuestionStats(t *testing.T) {
	ctx := context.Background()

	t.Run("full block", func(t *testing.T) {
		svc := newDashboardService(t, dashboardFixture())

		stats, err := svc.QuestionStats(ctx, "q1", domain.FilterCriteria{})

		require.NoError(t, err)
		assert.Equal(t, "q1", stats.Question)
		assert.Equal(t, "I am satisfied with my current workload.", stats.Stem)

		require.NotNil(t, stats.Stat)
		assert.InDelta(t, 5, stats.Stat.Mean, 1e-9)

		require.Len(t, stats.Histogram, 10)
		assert.Equal(t, 1, stats.Histogram[1]) // one 2
		assert.Equal(t, 1, stats.Histogram[3]) // one 4
		assert.Equal(t, 1, stats.Histogram[5]) // one 6
		assert.Equal(t, 1, stats.Histogram[7]) // one 8
		assert.Equal(t, 0, stats.Histogram[0])

		assert.Len(t, stats.ByDepartment, 2)
		assert.Len(t, stats.Trend, 3)
	})

	t.Run("unknown question id", func(t *testing.T) {
		svc := newDashboardService(t, dashboardFixture())

		stats, err := svc.QuestionStats(ctx, "q42", domain.FilterCriteria{})

		assert.Nil(t, stats)
		assert.ErrorIs(t, err, apperrors.ErrUnknownQuestion)
	})

	t.Run("column missing from the data degrades to empty stats", func(t *testing.T) {
		table := domain.RawTable{
			Header:  []string{"timestamp", "department", "q1"},
			Records: [][]string{{"2025-03-01T09:00:00Z", "OVA", "8"}},
		}
		svc := newDashboardService(t, table)

		stats, err := svc.QuestionStats(ctx, "q2", domain.FilterCriteria{})

		require.NoError(t, err)
		assert.Nil(t, stats.Stat)
		assert.Equal(t, make([]int, 10), stats.Histogram)
		assert.Empty(t, stats.ByDepartment)
		assert.Empty(t, stats.Trend)
	})
}

func TestDashboardService_CompareDepartments(t *testing.T) {
	ctx := context.Background()

	t.Run("ranking is descending by overall index", func(t *testing.T) {
		svc := newDashboardService(t, dashboardFixture())

		comparison, err := svc.CompareDepartments(ctx, domain.FilterCriteria{})

		require.NoError(t, err)
		require.Len(t, comparison.Ranking, 2)
		assert.Equal(t, "OVA", comparison.Ranking[0].Department)
		assert.InDelta(t, 7, comparison.Ranking[0].Average, 1e-9)
		assert.Equal(t, "Administration", comparison.Ranking[1].Department)
		assert.InDelta(t, 3, comparison.Ranking[1].Average, 1e-9)

		require.Len(t, comparison.Categories, 2)
		assert.Len(t, comparison.Categories[0].Scores, 5)
	})

	t.Run("tied departments keep configured order", func(t *testing.T) {
		table := domain.RawTable{
			Header: domain.RowHeader,
			Records: [][]string{
				uniformRecord("2025-03-01T09:00:00Z", "OVA", 5),
				uniformRecord("2025-03-01T10:00:00Z", "Administration", 5),
			},
		}
		svc := newDashboardService(t, table)

		comparison, err := svc.CompareDepartments(ctx, domain.FilterCriteria{})

		require.NoError(t, err)
		require.Len(t, comparison.Ranking, 2)
		assert.Equal(t, "Administration", comparison.Ranking[0].Department)
		assert.Equal(t, "OVA", comparison.Ranking[1].Department)
	})

	t.Run("no department column", func(t *testing.T) {
		table := domain.RawTable{
			Header:  []string{"timestamp", "q1"},
			Records: [][]string{{"2025-03-01T09:00:00Z", "8"}},
		}
		svc := newDashboardService(t, table)

		comparison, err := svc.CompareDepartments(ctx, domain.FilterCriteria{})

		require.NoError(t, err)
		assert.Empty(t, comparison.Ranking)
		assert.Empty(t, comparison.Categories)
	})
}

func TestDashboardService_Heatmap(t *testing.T) {
	ctx := context.Background()

	t.Run("row minimum is flagged", func(t *testing.T) {
		rec := uniformRecord("2025-03-01T09:00:00Z", "OVA", 8)
		rec[2] = "2" // q1 is the clear worst
		table := domain.RawTable{Header: domain.RowHeader, Records: [][]string{rec}}
		svc := newDashboardService(t, table)

		rows, err := svc.Heatmap(ctx, domain.FilterCriteria{})

		require.NoError(t, err)
		require.Len(t, rows, 1)
		require.Len(t, rows[0].Cells, 15)

		for _, cell := range rows[0].Cells {
			if cell.Question == "q1" {
				assert.InDelta(t, 2, cell.Average, 1e-9)
				assert.True(t, cell.Worst)
			} else {
				assert.False(t, cell.Worst, cell.Question)
			}
		}
	})

	t.Run("all cells tying for the minimum are flagged", func(t *testing.T) {
		rec := uniformRecord("2025-03-01T09:00:00Z", "OVA", 8)
		rec[2] = "5" // q1
		rec[5] = "5" // q4
		table := domain.RawTable{Header: domain.RowHeader, Records: [][]string{rec}}
		svc := newDashboardService(t, table)

		rows, err := svc.Heatmap(ctx, domain.FilterCriteria{})

		require.NoError(t, err)
		require.Len(t, rows, 1)

		worst := map[string]bool{}
		for _, cell := range rows[0].Cells {
			if cell.Worst {
				worst[cell.Question] = true
			}
		}
		assert.Equal(t, map[string]bool{"q1": true, "q4": true}, worst)
	})
}

func TestDashboardService_ScoredRows(t *testing.T) {
	ctx := context.Background()
	svc := newDashboardService(t, dashboardFixture())

	scored, err := svc.ScoredRows(ctx, domain.FilterCriteria{Department: "Administration"})

	require.NoError(t, err)
	require.Len(t, scored, 2)
	require.NotNil(t, scored[0].OverallIndex)
	assert.InDelta(t, 4, *scored[0].OverallIndex, 1e-9)
	assert.InDelta(t, 2, *scored[1].OverallIndex, 1e-9)
}
