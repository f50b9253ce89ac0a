// Package gsheets persists survey responses to a Google Sheets worksheet,
// the shared-spreadsheet deployment mode. The worksheet carries the same
// column contract as the CSV store: header row, then timestamp, department,
// q1..q15 in order.
package gsheets

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/msclatvia/wellbeing-backend/internal/core/domain"
	"github.com/msclatvia/wellbeing-backend/internal/core/ports"
)

// Repository is the secondary adapter for Google Sheets persistence.
type Repository struct {
	svc           *sheets.Service
	spreadsheetID string
	worksheet     string
}

var _ ports.ResponseRepository = (*Repository)(nil)

// Config holds the Sheets connection parameters.
type Config struct {
	SpreadsheetID   string
	Worksheet       string
	CredentialsFile string // service-account JSON key
}

// New creates a Sheets-backed response repository.
func New(ctx context.Context, cfg Config) (*Repository, error) {
	svc, err := sheets.NewService(ctx,
		option.WithCredentialsFile(cfg.CredentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("creating sheets client: %w", err)
	}
	return &Repository{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		worksheet:     cfg.Worksheet,
	}, nil
}

// Append appends one response row after the current data region. Sheets
// appends are atomic per call, so concurrent submissions land as separate
// rows without coordination.
func (r *Repository) Append(ctx context.Context, response *domain.Response) error {
	row := response.EncodeRow()
	values := make([]interface{}, len(row))
	for i, v := range row {
		values[i] = v
	}

	_, err := r.svc.Spreadsheets.Values.
		Append(r.spreadsheetID, r.worksheet, &sheets.ValueRange{Values: [][]interface{}{values}}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("appending to worksheet %s: %w", r.worksheet, err)
	}
	return nil
}

// LoadAll fetches the full worksheet. The first row is the header; a sheet
// with no data rows is an empty store.
func (r *Repository) LoadAll(ctx context.Context) (domain.RawTable, error) {
	resp, err := r.svc.Spreadsheets.Values.
		Get(r.spreadsheetID, r.worksheet).
		Context(ctx).
		Do()
	if err != nil {
		return domain.RawTable{}, fmt.Errorf("reading worksheet %s: %w", r.worksheet, err)
	}
	if len(resp.Values) == 0 {
		return domain.RawTable{}, nil
	}

	table := domain.RawTable{Header: toStrings(resp.Values[0])}
	for _, row := range resp.Values[1:] {
		table.Records = append(table.Records, toStrings(row))
	}
	return table, nil
}

// Ping verifies the spreadsheet is reachable with the configured credentials.
func (r *Repository) Ping(ctx context.Context) error {
	_, err := r.svc.Spreadsheets.
		Get(r.spreadsheetID).
		Fields("spreadsheetId").
		Context(ctx).
		Do()
	return err
}

func toStrings(row []interface{}) []string {
	out := make([]string, len(row))
	for i, v := range row {
		out[i] = fmt.Sprint(v)
	}
	return out
}
