package domain

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// RawTable is the untyped row set handed back by a store adapter: a header
// row plus string-valued records in insertion order.
type RawTable struct {
	Header  []string
	Records [][]string
}

// Schema is the result of the single column-introspection pass done at load
// time. All downstream aggregation and export logic consults it instead of
// re-checking column presence ad hoc.
type Schema struct {
	HasDepartment bool
	HasTimestamp  bool
	Questions     []string // present question columns, in numeric order
}

// HasQuestion reports whether the loaded data carries the given column.
func (s Schema) HasQuestion(id string) bool {
	for _, q := range s.Questions {
		if q == id {
			return true
		}
	}
	return false
}

// Row is one coerced record. Values that failed coercion are missing, not
// errors: a blank Department, a zero Timestamp, or an absent Answers key.
type Row struct {
	Timestamp  time.Time
	Department string
	Answers    map[string]float64
}

// HasDate reports whether the row carries a usable timestamp.
func (r Row) HasDate() bool {
	return !r.Timestamp.IsZero()
}

// Snapshot is the fixed set of rows one dashboard or export call operates
// over, independent of later store updates.
type Snapshot struct {
	Schema Schema
	Rows   []Row
}

// Empty reports whether the snapshot holds no rows.
func (s Snapshot) Empty() bool {
	return len(s.Rows) == 0
}

// timestampLayouts accepts what the store has historically contained: RFC3339
// with or without zone, and bare dates.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// DecodeTable coerces a raw table into a typed snapshot. Unlike submission
// validation this never fails a row: unparseable answers and timestamps
// become missing values so that the dashboard degrades instead of breaking
// on rows written by other tools.
func DecodeTable(t RawTable) Snapshot {
	index := make(map[string]int, len(t.Header))
	for i, col := range t.Header {
		index[strings.TrimSpace(col)] = i
	}

	schema := Schema{}
	_, schema.HasDepartment = index["department"]
	_, schema.HasTimestamp = index["timestamp"]
	for col := range index {
		if IsQuestionID(col) {
			schema.Questions = append(schema.Questions, col)
		}
	}
	sort.Slice(schema.Questions, func(i, j int) bool {
		a, _ := strconv.Atoi(schema.Questions[i][1:])
		b, _ := strconv.Atoi(schema.Questions[j][1:])
		return a < b
	})

	rows := make([]Row, 0, len(t.Records))
	for _, rec := range t.Records {
		row := Row{Answers: make(map[string]float64, len(schema.Questions))}
		if schema.HasTimestamp {
			row.Timestamp = parseTimestamp(cell(rec, index["timestamp"]))
		}
		if schema.HasDepartment {
			row.Department = strings.TrimSpace(cell(rec, index["department"]))
		}
		for _, qid := range schema.Questions {
			if v, err := strconv.ParseFloat(strings.TrimSpace(cell(rec, index[qid])), 64); err == nil {
				row.Answers[qid] = v
			}
		}
		rows = append(rows, row)
	}

	return Snapshot{Schema: schema, Rows: rows}
}

func cell(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return rec[i]
}

func parseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts
		}
	}
	return time.Time{}
}
