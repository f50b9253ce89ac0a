package ports

import (
	"context"

	"github.com/msclatvia/wellbeing-backend/internal/core/domain"
)

// ResponseRepository is the port for the append-only tabular store backing
// the survey. An Append either fully succeeds (the row is durably visible to
// subsequent reads) or fails; a LoadAll either returns the full current row
// set in insertion order or fails. There are no partial results and the core
// never retries.
type ResponseRepository interface {
	Append(ctx context.Context, response *domain.Response) error
	LoadAll(ctx context.Context) (domain.RawTable, error)
	Ping(ctx context.Context) error
}
