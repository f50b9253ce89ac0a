// Package storecache decorates a response repository with a short-lived
// read cache. The cache policy (staleAfter) belongs to the store adapter
// stack; the aggregation engine never knows whether the snapshot it was
// handed came from the cache or a live read.
package storecache

import (
	"context"
	"sync"
	"time"

	"github.com/msclatvia/wellbeing-backend/internal/core/domain"
	"github.com/msclatvia/wellbeing-backend/internal/core/ports"
)

// Repository serves LoadAll from a cached table until it goes stale.
// Appends pass through and invalidate the cache so a submitter's own row is
// visible on the next read.
type Repository struct {
	inner      ports.ResponseRepository
	staleAfter time.Duration
	now        func() time.Time

	mu       sync.Mutex
	table    domain.RawTable
	loadedAt time.Time
	valid    bool
}

var _ ports.ResponseRepository = (*Repository)(nil)

// Wrap decorates inner with a read cache. A non-positive staleAfter
// disables caching entirely.
func Wrap(inner ports.ResponseRepository, staleAfter time.Duration) *Repository {
	return &Repository{
		inner:      inner,
		staleAfter: staleAfter,
		now:        time.Now,
	}
}

func (r *Repository) Append(ctx context.Context, response *domain.Response) error {
	if err := r.inner.Append(ctx, response); err != nil {
		return err
	}
	r.mu.Lock()
	r.valid = false
	r.mu.Unlock()
	return nil
}

func (r *Repository) LoadAll(ctx context.Context) (domain.RawTable, error) {
	if r.staleAfter <= 0 {
		return r.inner.LoadAll(ctx)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.valid && r.now().Sub(r.loadedAt) < r.staleAfter {
		return r.table, nil
	}

	table, err := r.inner.LoadAll(ctx)
	if err != nil {
		// Never serve stale data after a failed refresh.
		r.valid = false
		return domain.RawTable{}, err
	}

	r.table = table
	r.loadedAt = r.now()
	r.valid = true
	return table, nil
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.inner.Ping(ctx)
}
