package domain

import "time"

// Result shapes for the dashboard query surface. These carry unrounded
// values; rounding to two decimals happens at the presentation/export layer.

// AggregateRow is one group of an aggregation: a key (department name,
// question id, category name or day) and its stats. Keys with zero
// non-missing values are omitted from results entirely.
type AggregateRow struct {
	Key  string
	Stat AggregateStat
}

// TrendPoint is one daily bucket of a metric's average.
type TrendPoint struct {
	Date    time.Time // midnight UTC of the bucket day
	Average float64
	Count   int
}

// CategoryAverage is the cross-row mean of one category's score.
type CategoryAverage struct {
	Category string
	Average  float64
	Count    int
}

// Overview is the executive-summary block: row count, overall-index stats,
// category averages and the overall-index daily trend. Overall is nil when
// no row has a computable index.
type Overview struct {
	ResponseCount int
	Overall       *AggregateStat
	Categories    []CategoryAverage
	Trend         []TrendPoint
}

// QuestionStats is the question-explorer block for a single question.
// Stat is nil when the filtered data holds no valid value for the question.
type QuestionStats struct {
	Question     string
	Stem         string
	Stat         *AggregateStat
	Histogram    []int // ScaleMax buckets; Histogram[v-1] counts score v
	ByDepartment []AggregateRow
	Trend        []TrendPoint
}

// DepartmentScore is one entry of the overall-index department ranking.
type DepartmentScore struct {
	Department string
	Average    float64
	Count      int
}

// DepartmentCategoryRow holds one department's per-category averages.
// Only defined categories appear in Scores.
type DepartmentCategoryRow struct {
	Department string
	Scores     map[string]float64
}

// DepartmentComparison ranks departments by overall index (descending) and
// breaks their scores down by category.
type DepartmentComparison struct {
	Ranking    []DepartmentScore
	Categories []DepartmentCategoryRow
}

// HeatmapCell is one department x question average. Worst marks the
// column(s) achieving the row-wise minimum; ties flag every tying cell.
type HeatmapCell struct {
	Question string
	Average  float64
	Count    int
	Worst    bool
}

// HeatmapRow is one department's cells, questions in schema order.
type HeatmapRow struct {
	Department string
	Cells      []HeatmapCell
}
