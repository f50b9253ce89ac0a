package domain

import (
	"fmt"
	"strconv"
	"time"

	apperrors "github.com/msclatvia/wellbeing-backend/internal/core/errors"
)

// RowHeader is the persisted column order. Other tools read the sheet
// directly, so this is a bit-exact contract: timestamp, department, q1..q15.
var RowHeader = append([]string{"timestamp", "department"}, QuestionIDs...)

// Response is one complete survey submission. It is created once by the form,
// appended to the store, and never mutated or deleted afterwards.
type Response struct {
	Timestamp  time.Time
	Department string
	Answers    map[string]int // q1..q15, all present and within [ScaleMin, ScaleMax]
}

// NewResponse validates a raw submission and builds the domain entity.
// Submission-time validation is strict: a missing department or any missing
// or out-of-range answer blocks the whole submission, nothing partial is
// stored. The laxer read-side coercion lives in DecodeTable.
func NewResponse(department string, answers map[string]int, submittedAt time.Time) (*Response, error) {
	if department == "" || department == DepartmentPlaceholder {
		return nil, apperrors.ErrMissingDepartment
	}
	if !IsValidDepartment(department) {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrUnknownDepartment, department)
	}

	checked := make(map[string]int, len(QuestionIDs))
	for _, qid := range QuestionIDs {
		v, ok := answers[qid]
		if !ok || v < ScaleMin || v > ScaleMax {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrOutOfRangeAnswer, qid)
		}
		checked[qid] = v
	}

	return &Response{
		Timestamp:  submittedAt.UTC().Truncate(time.Second),
		Department: department,
		Answers:    checked,
	}, nil
}

// EncodeRow serializes the response into the persisted column order.
func (r *Response) EncodeRow() []string {
	row := make([]string, 0, len(RowHeader))
	row = append(row, r.Timestamp.Format(time.RFC3339), r.Department)
	for _, qid := range QuestionIDs {
		row = append(row, strconv.Itoa(r.Answers[qid]))
	}
	return row
}
