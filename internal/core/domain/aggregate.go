package domain

import (
	"sort"
	"time"
)

// DateRange is an inclusive calendar-date window. Only the date portion of a
// row's timestamp is compared; time-of-day is ignored.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Normalize swaps a reversed range so the window is symmetric and never
// empty purely due to argument order.
func (r DateRange) Normalize() DateRange {
	if r.Start.After(r.End) {
		return DateRange{Start: r.End, End: r.Start}
	}
	return r
}

// Contains reports whether the date portion of t falls within the range.
func (r DateRange) Contains(t time.Time) bool {
	d := DateOf(t)
	return !d.Before(DateOf(r.Start)) && !d.After(DateOf(r.End))
}

// DateOf truncates a timestamp to its calendar date (daily trend bucket).
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FilterCriteria selects a subset of a snapshot. The zero value selects
// everything. Applying criteria never mutates the underlying snapshot.
type FilterCriteria struct {
	Department string     // AllDepartments (or "") disables the department filter
	DateRange  *DateRange // nil disables the date filter
}

// Matches reports whether a row passes the criteria. Rows without a usable
// timestamp are excluded whenever a date filter is active. Department and
// date predicates are independent, so filter order cannot change the result.
func (c FilterCriteria) Matches(row Row) bool {
	if c.Department != "" && c.Department != AllDepartments && row.Department != c.Department {
		return false
	}
	if c.DateRange != nil {
		if !row.HasDate() {
			return false
		}
		if !c.DateRange.Normalize().Contains(row.Timestamp) {
			return false
		}
	}
	return true
}

// Filter returns the rows of snap passing the criteria, as a new snapshot
// sharing the schema.
func (c FilterCriteria) Filter(snap Snapshot) Snapshot {
	out := Snapshot{Schema: snap.Schema}
	for _, row := range snap.Rows {
		if c.Matches(row) {
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}

// AggregateStat summarizes a numeric series with missing values already
// excluded. A stat only exists for a non-empty series; Summarize returns
// ok=false instead of emitting zeros or NaNs for empty input.
type AggregateStat struct {
	Count  int
	Mean   float64
	Median float64
	Min    float64
	Max    float64
}

// Summarize computes count/mean/median/min/max over a series.
func Summarize(values []float64) (AggregateStat, bool) {
	if len(values) == 0 {
		return AggregateStat{}, false
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}

	n := len(sorted)
	median := sorted[n/2]
	if n%2 == 0 {
		median = (sorted[n/2-1] + sorted[n/2]) / 2
	}

	return AggregateStat{
		Count:  n,
		Mean:   sum / float64(n),
		Median: median,
		Min:    sorted[0],
		Max:    sorted[n-1],
	}, true
}
