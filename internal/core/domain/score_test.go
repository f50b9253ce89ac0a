package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msclatvia/wellbeing-backend/internal/core/domain"
)

func fullSchema() domain.Schema {
	return domain.Schema{
		HasDepartment: true,
		HasTimestamp:  true,
		Questions:     domain.QuestionIDs,
	}
}

func TestScoreRow(t *testing.T) {
	t.Run("full row", func(t *testing.T) {
		row := domain.Row{Answers: map[string]float64{
			"q1": 2, "q2": 4, "q3": 6, // Workload & Recovery -> 4
			"q4": 5, "q5": 5, "q6": 5, // Team & Leadership -> 5
			"q7": 8, "q8": 8, "q9": 8, // Motivation & Wellbeing -> 8
			"q10": 2, "q11": 2, "q12": 2, // Work-Life Balance -> 2
			"q13": 6, "q14": 6, "q15": 6, // Growth & Recognition -> 6
		}}

		scored := domain.ScoreRow(row, fullSchema())

		require.Len(t, scored.CategoryScores, 5)
		assert.InDelta(t, 4, scored.CategoryScores["Workload & Recovery"], 1e-9)
		assert.InDelta(t, 5, scored.CategoryScores["Team & Leadership"], 1e-9)
		assert.InDelta(t, 8, scored.CategoryScores["Motivation & Wellbeing"], 1e-9)
		assert.InDelta(t, 2, scored.CategoryScores["Work-Life Balance"], 1e-9)
		assert.InDelta(t, 6, scored.CategoryScores["Growth & Recognition"], 1e-9)

		require.NotNil(t, scored.OverallIndex)
		assert.InDelta(t, 5, *scored.OverallIndex, 1e-9)
	})

	t.Run("missing answers are skipped within a category", func(t *testing.T) {
		row := domain.Row{Answers: map[string]float64{
			"q1": 3, // only answer in Workload & Recovery
			"q7": 9, // only answer in Motivation & Wellbeing
		}}

		scored := domain.ScoreRow(row, fullSchema())

		require.Len(t, scored.CategoryScores, 2)
		assert.InDelta(t, 3, scored.CategoryScores["Workload & Recovery"], 1e-9)
		assert.InDelta(t, 9, scored.CategoryScores["Motivation & Wellbeing"], 1e-9)

		_, ok := scored.CategoryScore("Team & Leadership")
		assert.False(t, ok)

		require.NotNil(t, scored.OverallIndex)
		assert.InDelta(t, 6, *scored.OverallIndex, 1e-9)
	})

	t.Run("empty row has no scores", func(t *testing.T) {
		scored := domain.ScoreRow(domain.Row{Answers: map[string]float64{}}, fullSchema())

		assert.Empty(t, scored.CategoryScores)
		assert.Nil(t, scored.OverallIndex)
	})

	t.Run("questions outside the schema are ignored", func(t *testing.T) {
		schema := domain.Schema{Questions: []string{"q1"}}
		row := domain.Row{Answers: map[string]float64{"q1": 4, "q2": 10}}

		scored := domain.ScoreRow(row, schema)

		assert.InDelta(t, 4, scored.CategoryScores["Workload & Recovery"], 1e-9)
	})

	t.Run("scoring is deterministic", func(t *testing.T) {
		row := domain.Row{Answers: map[string]float64{"q1": 7, "q5": 3, "q13": 9}}

		first := domain.ScoreRow(row, fullSchema())
		second := domain.ScoreRow(row, fullSchema())

		assert.Equal(t, first.CategoryScores, second.CategoryScores)
		require.NotNil(t, first.OverallIndex)
		require.NotNil(t, second.OverallIndex)
		assert.Equal(t, *first.OverallIndex, *second.OverallIndex)
	})
}

func TestScoreAll(t *testing.T) {
	snap := domain.Snapshot{
		Schema: fullSchema(),
		Rows: []domain.Row{
			{Answers: map[string]float64{"q1": 8}},
			{Answers: map[string]float64{"q1": 2}},
		},
	}

	scored := domain.ScoreAll(snap)

	require.Len(t, scored, 2)
	assert.InDelta(t, 8, *scored[0].OverallIndex, 1e-9)
	assert.InDelta(t, 2, *scored[1].OverallIndex, 1e-9)
}

func TestPresentCategories(t *testing.T) {
	t.Run("full schema", func(t *testing.T) {
		assert.Len(t, domain.PresentCategories(fullSchema()), 5)
	})

	t.Run("partial schema", func(t *testing.T) {
		schema := domain.Schema{Questions: []string{"q1", "q7"}}

		present := domain.PresentCategories(schema)

		require.Len(t, present, 2)
		assert.Equal(t, "Workload & Recovery", present[0].Name)
		assert.Equal(t, "Motivation & Wellbeing", present[1].Name)
	})

	t.Run("no question columns", func(t *testing.T) {
		assert.Empty(t, domain.PresentCategories(domain.Schema{}))
	})
}
