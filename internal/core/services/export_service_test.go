package services_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/msclatvia/wellbeing-backend/internal/core/domain"
	apperrors "github.com/msclatvia/wellbeing-backend/internal/core/errors"
	"github.com/msclatvia/wellbeing-backend/internal/core/mocks"
	"github.com/msclatvia/wellbeing-backend/internal/core/ports"
	"github.com/msclatvia/wellbeing-backend/internal/core/services"
)

func newExportService(t *testing.T, table domain.RawTable) *services.ExportService {
	t.Helper()
	mockRepo := mocks.NewMockResponseRepository()
	mockRepo.On("LoadAll", context.Background()).Return(table, nil)
	return services.NewExportService(mockRepo, testLogger())
}

func TestExportService_Spreadsheet(t *testing.T) {
	ctx := context.Background()

	t.Run("workbook layout", func(t *testing.T) {
		svc := newExportService(t, dashboardFixture())

		payload, err := svc.Spreadsheet(ctx, ports.SpreadsheetExportParams{Question: "q1"})
		require.NoError(t, err)
		require.NotEmpty(t, payload)

		f, err := excelize.OpenReader(bytes.NewReader(payload))
		require.NoError(t, err)
		defer func() { _ = f.Close() }()

		assert.ElementsMatch(t,
			[]string{"Filtered Raw", "Question Avg", "Dept Avg", "Category Avg"},
			f.GetSheetList())

		// Raw sheet mirrors the loaded columns, department under its
		// display name.
		a1, err := f.GetCellValue("Filtered Raw", "A1")
		require.NoError(t, err)
		assert.Equal(t, "timestamp", a1)
		b1, err := f.GetCellValue("Filtered Raw", "B1")
		require.NoError(t, err)
		assert.Equal(t, "Department", b1)
		c1, err := f.GetCellValue("Filtered Raw", "C1")
		require.NoError(t, err)
		assert.Equal(t, "q1", c1)
		b2, err := f.GetCellValue("Filtered Raw", "B2")
		require.NoError(t, err)
		assert.Equal(t, "OVA", b2)

		// Question averages rounded to two decimals.
		qa2, err := f.GetCellValue("Question Avg", "A2")
		require.NoError(t, err)
		assert.Equal(t, "q1", qa2)
		qb2, err := f.GetCellValue("Question Avg", "B2")
		require.NoError(t, err)
		assert.Equal(t, "5", qb2)

		// Dept Avg carries the selected question column plus the index.
		db1, err := f.GetCellValue("Dept Avg", "B1")
		require.NoError(t, err)
		assert.Equal(t, "q1", db1)
		dc1, err := f.GetCellValue("Dept Avg", "C1")
		require.NoError(t, err)
		assert.Equal(t, domain.OverallIndexName, dc1)
		da2, err := f.GetCellValue("Dept Avg", "A2")
		require.NoError(t, err)
		assert.Equal(t, "Administration", da2)

		ca2, err := f.GetCellValue("Category Avg", "A2")
		require.NoError(t, err)
		assert.Equal(t, "Workload & Recovery", ca2)
	})

	t.Run("no selected question drops its column", func(t *testing.T) {
		svc := newExportService(t, dashboardFixture())

		payload, err := svc.Spreadsheet(ctx, ports.SpreadsheetExportParams{})
		require.NoError(t, err)

		f, err := excelize.OpenReader(bytes.NewReader(payload))
		require.NoError(t, err)
		defer func() { _ = f.Close() }()

		b1, err := f.GetCellValue("Dept Avg", "B1")
		require.NoError(t, err)
		assert.Equal(t, domain.OverallIndexName, b1)
	})

	t.Run("empty store produces only the raw sheet", func(t *testing.T) {
		svc := newExportService(t, domain.RawTable{})

		payload, err := svc.Spreadsheet(ctx, ports.SpreadsheetExportParams{})
		require.NoError(t, err)

		f, err := excelize.OpenReader(bytes.NewReader(payload))
		require.NoError(t, err)
		defer func() { _ = f.Close() }()

		assert.Equal(t, []string{"Filtered Raw"}, f.GetSheetList())
	})

	t.Run("store failure propagates", func(t *testing.T) {
		mockRepo := mocks.NewMockResponseRepository()
		mockRepo.On("LoadAll", ctx).Return(domain.RawTable{}, errors.New("gone"))
		svc := services.NewExportService(mockRepo, testLogger())

		payload, err := svc.Spreadsheet(ctx, ports.SpreadsheetExportParams{})

		assert.Nil(t, payload)
		assert.ErrorIs(t, err, apperrors.ErrStoreUnavailable)
	})
}

func TestExportService_Summary(t *testing.T) {
	ctx := context.Background()

	t.Run("renders a pdf document", func(t *testing.T) {
		svc := newExportService(t, dashboardFixture())

		payload, err := svc.Summary(ctx, domain.FilterCriteria{})

		require.NoError(t, err)
		require.NotEmpty(t, payload)
		assert.True(t, bytes.HasPrefix(payload, []byte("%PDF")))
	})

	t.Run("empty store still renders the header block", func(t *testing.T) {
		svc := newExportService(t, domain.RawTable{})

		payload, err := svc.Summary(ctx, domain.FilterCriteria{})

		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(payload, []byte("%PDF")))
	})

	t.Run("store failure propagates", func(t *testing.T) {
		mockRepo := mocks.NewMockResponseRepository()
		mockRepo.On("LoadAll", ctx).Return(domain.RawTable{}, errors.New("gone"))
		svc := services.NewExportService(mockRepo, testLogger())

		payload, err := svc.Summary(ctx, domain.FilterCriteria{})

		assert.Nil(t, payload)
		assert.ErrorIs(t, err, apperrors.ErrStoreUnavailable)
	})
}
