package domain

// ScoredResponse is a row enriched with derived category scores and the
// overall index. Scores are recomputed from the answers on every call and
// never persisted, so they cannot drift from their source row.
type ScoredResponse struct {
	Row
	CategoryScores map[string]float64 // only defined categories are present
	OverallIndex   *float64           // nil when no category score is computable
}

// CategoryScore returns the score for a category and whether it is defined.
func (s ScoredResponse) CategoryScore(name string) (float64, bool) {
	v, ok := s.CategoryScores[name]
	return v, ok
}

// ScoreRow derives category scores and the overall index for one row.
// A category score is the arithmetic mean of the present answers among the
// category's questions that exist in the schema; it is undefined when none
// are present. The overall index is the mean of the defined category scores.
// Pure function of the answers: scoring the same row twice is bit-identical.
func ScoreRow(row Row, schema Schema) ScoredResponse {
	scored := ScoredResponse{
		Row:            row,
		CategoryScores: make(map[string]float64, len(Categories)),
	}

	var overallSum float64
	var overallN int
	for _, cat := range Categories {
		var sum float64
		var n int
		for _, qid := range cat.Questions {
			if !schema.HasQuestion(qid) {
				continue
			}
			if v, ok := row.Answers[qid]; ok {
				sum += v
				n++
			}
		}
		if n == 0 {
			continue
		}
		score := sum / float64(n)
		scored.CategoryScores[cat.Name] = score
		overallSum += score
		overallN++
	}

	if overallN > 0 {
		overall := overallSum / float64(overallN)
		scored.OverallIndex = &overall
	}
	return scored
}

// ScoreAll scores every row of a snapshot, preserving order.
func ScoreAll(snap Snapshot) []ScoredResponse {
	scored := make([]ScoredResponse, 0, len(snap.Rows))
	for _, row := range snap.Rows {
		scored = append(scored, ScoreRow(row, snap.Schema))
	}
	return scored
}

// PresentCategories returns the categories that have at least one question
// column in the schema, in configured order. Categories outside this list
// are omitted from aggregates and exports rather than reported as zero.
func PresentCategories(schema Schema) []Category {
	present := make([]Category, 0, len(Categories))
	for _, cat := range Categories {
		for _, qid := range cat.Questions {
			if schema.HasQuestion(qid) {
				present = append(present, cat)
				break
			}
		}
	}
	return present
}
