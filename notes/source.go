package notes

import (
	"context"
	"sync"
)

// MaxPageSize caps the number of notes returned by any single page load.
const MaxPageSize = 20

// InitialParams configures the first page load of a source.
type InitialParams struct {
	RequestedSize int
	// Placeholders asks the source to report the absolute position and
	// total item count alongside the page, when it can compute them.
	Placeholders bool
}

// InitialPage is the result of LoadInitial. Position and Total are only
// populated when placeholders were requested and the source supports them.
type InitialPage struct {
	Notes    []Note
	Position *int
	Total    *int
	NextKey  *string
}

// Page is the result of LoadAfter. A nil NextKey signals the end of the
// collection.
type Page struct {
	Notes   []Note
	NextKey *string
}

// Source retrieves notes in bounded-size pages keyed by an opaque
// continuation key. Pagination is forward-only: keys must come from a prior
// result of the same source instance, and callers must not request
// overlapping pages concurrently.
//
// Save and Delete mutate the backing collection; both invalidate the source
// after the mutation has been acknowledged, so the next read rebuilds from
// the first page. Page loads on an invalidated source fail with
// SourceInvalidatedErr.
type Source interface {
	LoadInitial(ctx context.Context, params InitialParams) (*InitialPage, error)

	LoadAfter(ctx context.Context, key string, requestedSize int) (*Page, error)

	// LoadBefore is unsupported: notes are only ever appended and no stable
	// backward cursor exists. Calling it invalidates the source and returns
	// BackwardPaginationErr; it never returns data.
	LoadBefore(ctx context.Context, key string, requestedSize int) (*Page, error)

	GetByID(ctx context.Context, noteID string) (*Note, error)

	Save(ctx context.Context, item Note) (Note, error)

	Delete(ctx context.Context, item Note) error

	// Invalidate marks this source instance dead. Idempotent; listeners are
	// notified exactly once.
	Invalidate()

	Invalidated() bool

	// OnInvalidated registers fn to run when the source is invalidated. If
	// the source is already invalid, fn runs immediately.
	OnInvalidated(fn func())
}

// SourceFactory constructs a fresh source after the previous one has been
// invalidated.
type SourceFactory func() Source

// invalidation is the shared liveness tracker embedded by source
// implementations.
type invalidation struct {
	mu        sync.Mutex
	dead      bool
	listeners []func()
}

func (i *invalidation) Invalidate() {
	i.mu.Lock()
	if i.dead {
		i.mu.Unlock()
		return
	}
	i.dead = true
	listeners := i.listeners
	i.listeners = nil
	i.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

func (i *invalidation) Invalidated() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.dead
}

func (i *invalidation) OnInvalidated(fn func()) {
	i.mu.Lock()
	if i.dead {
		i.mu.Unlock()
		fn()
		return
	}
	i.listeners = append(i.listeners, fn)
	i.mu.Unlock()
}

// clampPageSize bounds a requested page size to [1, MaxPageSize].
func clampPageSize(requested int) int {
	if requested < 1 {
		return 1
	}
	if requested > MaxPageSize {
		return MaxPageSize
	}
	return requested
}
