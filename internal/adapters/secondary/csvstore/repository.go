// Package csvstore persists survey responses to a local CSV file with the
// fixed column contract: timestamp, department, q1..q15, header row first.
package csvstore

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/msclatvia/wellbeing-backend/internal/core/domain"
	"github.com/msclatvia/wellbeing-backend/internal/core/ports"
)

// Repository is the secondary adapter for CSV-file persistence. Appends are
// serialized within the process; the file itself is append-only, so
// concurrent submissions never read-modify-write shared state.
type Repository struct {
	path string
	mu   sync.Mutex
}

var _ ports.ResponseRepository = (*Repository)(nil)

// New creates a CSV-backed response repository at the given path. The file
// is created lazily on the first append.
func New(path string) *Repository {
	return &Repository{path: path}
}

// Append writes one response row, creating the file with its header row
// first if needed. Either the row is fully written or an error is returned.
func (r *Repository) Append(ctx context.Context, response *domain.Response) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	writeHeader := false
	if info, err := os.Stat(r.path); errors.Is(err, fs.ErrNotExist) {
		writeHeader = true
	} else if err != nil {
		return fmt.Errorf("stat %s: %w", r.path, err)
	} else if info.Size() == 0 {
		writeHeader = true
	}

	f, err := os.OpenFile(r.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", r.path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if writeHeader {
		if err := w.Write(domain.RowHeader); err != nil {
			return err
		}
	}
	if err := w.Write(response.EncodeRow()); err != nil {
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Sync()
}

// LoadAll reads the entire file in insertion order. A missing file is an
// empty store, not a failure.
func (r *Repository) LoadAll(ctx context.Context) (domain.RawTable, error) {
	if err := ctx.Err(); err != nil {
		return domain.RawTable{}, err
	}

	f, err := os.Open(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.RawTable{}, nil
	}
	if err != nil {
		return domain.RawTable{}, fmt.Errorf("open %s: %w", r.path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	// Rows written by other tools may be ragged; coercion handles that.
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return domain.RawTable{}, fmt.Errorf("read %s: %w", r.path, err)
	}
	if len(records) == 0 {
		return domain.RawTable{}, nil
	}
	return domain.RawTable{Header: records[0], Records: records[1:]}, nil
}

// Ping verifies the store's directory is reachable.
func (r *Repository) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := os.Stat(r.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
