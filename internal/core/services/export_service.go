package services

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/xuri/excelize/v2"

	"github.com/msclatvia/wellbeing-backend/internal/core/domain"
	"github.com/msclatvia/wellbeing-backend/internal/core/ports"
)

// Sheet names are part of the export contract; downstream tooling matches
// on them exactly.
const (
	sheetFilteredRaw = "Filtered Raw"
	sheetQuestionAvg = "Question Avg"
	sheetDeptAvg     = "Dept Avg"
	sheetCategoryAvg = "Category Avg"
)

// ExportService projects filtered, scored rows into an xlsx workbook and a
// paginated PDF summary. It performs no scoring of its own and each export
// section is independently omitted when its column set is absent.
type ExportService struct {
	repo   ports.ResponseRepository
	logger *slog.Logger
	now    func() time.Time
}

var _ ports.ExportService = (*ExportService)(nil)

// NewExportService creates a new export service.
func NewExportService(repo ports.ResponseRepository, logger *slog.Logger) *ExportService {
	return &ExportService{
		repo:   repo,
		logger: logger.With("service", "export"),
		now:    time.Now,
	}
}

// round2 is the only rounding in the pipeline; aggregation carries full
// precision and presentation rounds to two decimals.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Spreadsheet builds the multi-sheet xlsx export: raw filtered rows,
// per-question averages, per-department averages for the selected question
// and the overall index, and per-category averages.
func (s *ExportService) Spreadsheet(ctx context.Context, params ports.SpreadsheetExportParams) ([]byte, error) {
	snap, scored, err := loadScored(ctx, s.repo, params.Criteria)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("failed to close workbook", "error", err)
		}
	}()

	if err := f.SetSheetName("Sheet1", sheetFilteredRaw); err != nil {
		return nil, err
	}
	if err := writeFilteredRaw(f, snap); err != nil {
		return nil, err
	}
	if err := writeQuestionAvg(f, snap.Schema, scored); err != nil {
		return nil, err
	}
	if err := writeDeptAvg(f, snap.Schema, scored, params.Question); err != nil {
		return nil, err
	}
	if err := writeCategoryAvg(f, snap.Schema, scored); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func setRow(f *excelize.File, sheet string, rowIdx int, values []interface{}) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, rowIdx)
		if err != nil {
			return err
		}
		if v == nil {
			continue
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}

// writeFilteredRaw mirrors the loaded columns, with `department` renamed to
// its display name `Department`. Missing values stay blank cells.
func writeFilteredRaw(f *excelize.File, snap domain.Snapshot) error {
	var header []interface{}
	if snap.Schema.HasTimestamp {
		header = append(header, "timestamp")
	}
	if snap.Schema.HasDepartment {
		header = append(header, "Department")
	}
	for _, qid := range snap.Schema.Questions {
		header = append(header, qid)
	}
	if err := setRow(f, sheetFilteredRaw, 1, header); err != nil {
		return err
	}

	for i, row := range snap.Rows {
		var values []interface{}
		if snap.Schema.HasTimestamp {
			if row.HasDate() {
				values = append(values, row.Timestamp.Format(time.RFC3339))
			} else {
				values = append(values, nil)
			}
		}
		if snap.Schema.HasDepartment {
			values = append(values, row.Department)
		}
		for _, qid := range snap.Schema.Questions {
			if v, ok := row.Answers[qid]; ok {
				values = append(values, v)
			} else {
				values = append(values, nil)
			}
		}
		if err := setRow(f, sheetFilteredRaw, i+2, values); err != nil {
			return err
		}
	}
	return nil
}

func writeQuestionAvg(f *excelize.File, schema domain.Schema, scored []domain.ScoredResponse) error {
	rows := questionAggregates(schema, scored)
	if len(rows) == 0 {
		return nil
	}
	if _, err := f.NewSheet(sheetQuestionAvg); err != nil {
		return err
	}
	if err := setRow(f, sheetQuestionAvg, 1, []interface{}{"Question", "Average"}); err != nil {
		return err
	}
	for i, row := range rows {
		if err := setRow(f, sheetQuestionAvg, i+2, []interface{}{row.Key, round2(row.Stat.Mean)}); err != nil {
			return err
		}
	}
	return nil
}

// writeDeptAvg writes per-department averages for the selected question and
// the overall index. The sheet is omitted when there is no department column
// or neither metric column is available.
func writeDeptAvg(f *excelize.File, schema domain.Schema, scored []domain.ScoredResponse, question string) error {
	if !schema.HasDepartment {
		return nil
	}

	var metrics []string
	if question != "" && schema.HasQuestion(question) {
		metrics = append(metrics, question)
	}
	if len(schema.Questions) > 0 {
		metrics = append(metrics, domain.OverallIndexName)
	}
	if len(metrics) == 0 {
		return nil
	}

	if _, err := f.NewSheet(sheetDeptAvg); err != nil {
		return err
	}
	header := []interface{}{"Department"}
	for _, m := range metrics {
		header = append(header, m)
	}
	if err := setRow(f, sheetDeptAvg, 1, header); err != nil {
		return err
	}

	byDept := groupByDepartment(scored)
	rowIdx := 2
	for _, dept := range departmentKeys(byDept) {
		values := []interface{}{dept}
		any := false
		for _, m := range metrics {
			value := questionValue(m)
			if m == domain.OverallIndexName {
				value = overallValue
			}
			if stat, ok := domain.Summarize(metricValues(byDept[dept], value)); ok {
				values = append(values, round2(stat.Mean))
				any = true
			} else {
				values = append(values, nil)
			}
		}
		if !any {
			continue
		}
		if err := setRow(f, sheetDeptAvg, rowIdx, values); err != nil {
			return err
		}
		rowIdx++
	}
	return nil
}

func writeCategoryAvg(f *excelize.File, schema domain.Schema, scored []domain.ScoredResponse) error {
	rows := categoryAggregates(schema, scored)
	if len(rows) == 0 {
		return nil
	}
	if _, err := f.NewSheet(sheetCategoryAvg); err != nil {
		return err
	}
	if err := setRow(f, sheetCategoryAvg, 1, []interface{}{"Category", "Average"}); err != nil {
		return err
	}
	for i, row := range rows {
		if err := setRow(f, sheetCategoryAvg, i+2, []interface{}{row.Key, round2(row.Stat.Mean)}); err != nil {
			return err
		}
	}
	return nil
}

// --- PDF summary ---

const (
	pdfMarginLeft   = 2.0
	pdfMarginBottom = 2.5
	pdfTopStart     = 2.5
)

// summaryPage tracks a manual vertical cursor, breaking to a new page at the
// bottom margin. Section headers additionally reserve room for their first
// lines so they never dangle alone at a page bottom.
type summaryPage struct {
	pdf    *fpdf.Fpdf
	height float64
	y      float64
}

func newSummaryPage(pdf *fpdf.Fpdf) *summaryPage {
	_, height := pdf.GetPageSize()
	pdf.AddPage()
	return &summaryPage{pdf: pdf, height: height, y: pdfTopStart}
}

func (p *summaryPage) breakPage() {
	p.pdf.AddPage()
	p.y = pdfTopStart
}

// ensure starts a new page unless the next `space` centimeters fit above
// the bottom margin.
func (p *summaryPage) ensure(space float64) {
	if p.y+space > p.height-pdfMarginBottom {
		p.breakPage()
	}
}

func (p *summaryPage) text(style string, size float64, advance float64, s string) {
	p.ensure(advance)
	p.pdf.SetFont("Helvetica", style, size)
	p.pdf.Text(pdfMarginLeft, p.y, s)
	p.y += advance
}

func (p *summaryPage) section(title string) {
	// A header plus one content line must fit, or the section moves whole.
	p.ensure(1.2)
	p.text("B", 12, 0.6, title)
}

// Summary renders the paginated PDF summary in fixed order: header with
// generation date and row count, overall index average/median, category
// averages, department ranking by overall index (descending).
func (s *ExportService) Summary(ctx context.Context, criteria domain.FilterCriteria) ([]byte, error) {
	snap, scored, err := loadScored(ctx, s.repo, criteria)
	if err != nil {
		return nil, err
	}

	pdf := fpdf.New("P", "cm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	page := newSummaryPage(pdf)

	page.text("B", 16, 0.7, "MSC Latvia - Wellbeing Survey (Summary)")
	page.text("", 10, 0.6, fmt.Sprintf("Generated: %s", s.now().UTC().Format("2006-01-02")))
	page.text("", 10, 1.2, fmt.Sprintf("Rows (after filters): %d", len(snap.Rows)))

	if stat, ok := domain.Summarize(overallValues(scored)); ok {
		page.section(domain.OverallIndexName)
		page.text("", 10, 0.5, fmt.Sprintf("Average: %.2f", stat.Mean))
		page.text("", 10, 0.9, fmt.Sprintf("Median: %.2f", stat.Median))
	}

	if rows := categoryAggregates(snap.Schema, scored); len(rows) > 0 {
		page.section("Category averages (1-10)")
		for _, row := range rows {
			page.text("", 10, 0.45, fmt.Sprintf("- %s: %.2f", row.Key, round2(row.Stat.Mean)))
		}
		page.y += 0.4
	}

	if snap.Schema.HasDepartment {
		ranking := departmentAggregates(scored, overallValue)
		sort.SliceStable(ranking, func(i, j int) bool {
			return ranking[i].Stat.Mean > ranking[j].Stat.Mean
		})
		if len(ranking) > 0 {
			page.section("Department averages (Overall Index)")
			for _, row := range ranking {
				page.text("", 10, 0.45, fmt.Sprintf("- %s: %.2f", row.Key, round2(row.Stat.Mean)))
			}
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
