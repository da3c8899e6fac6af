package notes

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/shellmonger/mynotes/analytics"
	"github.com/shellmonger/mynotes/internal/observe"
)

// Window is the materialized slice of the note collection currently held
// for the UI, plus the continuation key for loading more. A window is a
// snapshot: it is replaced wholesale, never patched in place.
type Window struct {
	Notes    []Note
	NextKey  *string
	Position *int
	Total    *int
}

// Repository owns exactly one live Source at a time and exposes a reactive
// page window over it. Mutations invalidate the source rather than patch
// the window, trading write-amplification for exact consistency between
// the list view and the underlying store.
type Repository struct {
	mu            sync.Mutex
	factory       SourceFactory
	source        Source
	version       uint64
	windowVersion uint64

	initialLoadSize int
	pageSize        int
	placeholders    bool
	refreshTimeout  time.Duration

	window    *observe.Value[Window]
	analytics analytics.Service
}

// RepositoryOption modifies a Repository at construction time.
type RepositoryOption func(*Repository)

// WithPageSize sets the requested size for pages after the first.
func WithPageSize(n int) RepositoryOption {
	return func(r *Repository) {
		r.pageSize = n
	}
}

// WithInitialLoadSize sets the requested size for the first page.
func WithInitialLoadSize(n int) RepositoryOption {
	return func(r *Repository) {
		r.initialLoadSize = n
	}
}

// WithPlaceholders asks sources that can compute it to report absolute
// positions and total counts in the window.
func WithPlaceholders(enabled bool) RepositoryOption {
	return func(r *Repository) {
		r.placeholders = enabled
	}
}

// WithRefreshTimeout bounds the automatic window rebuild that follows an
// invalidation.
func WithRefreshTimeout(d time.Duration) RepositoryOption {
	return func(r *Repository) {
		r.refreshTimeout = d
	}
}

// NewRepository creates a repository over the given source factory.
func NewRepository(factory SourceFactory, analyticsService analytics.Service, options ...RepositoryOption) (*Repository, error) {
	if factory == nil {
		return nil, errors.New("[NewRepository] source factory is required")
	}
	if analyticsService == nil {
		return nil, errors.New("[NewRepository] analytics service is required")
	}

	r := &Repository{
		factory:         factory,
		initialLoadSize: 10,
		pageSize:        10,
		refreshTimeout:  30 * time.Second,
		window:          observe.New[Window](),
		analytics:       analyticsService,
	}
	for _, opt := range options {
		opt(r)
	}

	r.analytics.RecordEvent(analytics.EventStartNotesRepository, nil, nil)
	return r, nil
}

// Notes is the push-based page-window stream. The same handle remains
// valid across source invalidations for the lifetime of the repository.
func (r *Repository) Notes() *observe.Value[Window] {
	return r.window
}

// CurrentWindow returns the latest published window snapshot.
func (r *Repository) CurrentWindow() Window {
	return r.window.Get()
}

// Refresh rebuilds the window from the first page of the current source.
func (r *Repository) Refresh(ctx context.Context) error {
	src, version := r.currentSource()

	page, err := src.LoadInitial(ctx, InitialParams{
		RequestedSize: r.initialLoadSize,
		Placeholders:  r.placeholders,
	})
	if err != nil {
		return errors.Wrap(err, "[Repository.Refresh] LoadInitial")
	}

	r.publish(version, Window{
		Notes:    page.Notes,
		NextKey:  page.NextKey,
		Position: page.Position,
		Total:    page.Total,
	})
	return nil
}

// LoadMore extends the window by one page. At the end of the collection it
// is a no-op. If the window predates the current source, the window is
// rebuilt from the first page instead.
func (r *Repository) LoadMore(ctx context.Context) error {
	src, version := r.currentSource()

	r.mu.Lock()
	stale := r.windowVersion != version
	r.mu.Unlock()
	if stale {
		return r.Refresh(ctx)
	}

	current := r.window.Get()
	if current.NextKey == nil {
		return nil
	}

	page, err := src.LoadAfter(ctx, *current.NextKey, r.pageSize)
	if err != nil {
		return errors.Wrap(err, "[Repository.LoadMore] LoadAfter")
	}

	combined := make([]Note, 0, len(current.Notes)+len(page.Notes))
	combined = append(combined, current.Notes...)
	combined = append(combined, page.Notes...)
	r.publish(version, Window{
		Notes:    combined,
		NextKey:  page.NextKey,
		Position: current.Position,
		Total:    current.Total,
	})
	return nil
}

// GetByID fetches a single note directly from the store; it does not
// require a page to be loaded. A nil note means the ID is unknown.
func (r *Repository) GetByID(ctx context.Context, noteID string) (*Note, error) {
	src, _ := r.currentSource()
	note, err := src.GetByID(ctx, noteID)
	if err != nil {
		return nil, errors.Wrap(err, "[Repository.GetByID]")
	}
	return note, nil
}

// Save upserts the note by ID. The remote acknowledgment completes before
// the source is invalidated, so the next page load reflects the save.
func (r *Repository) Save(ctx context.Context, item Note) (Note, error) {
	r.analytics.RecordEvent(analytics.EventSaveItem, nil, nil)

	src, _ := r.currentSource()
	saved, err := src.Save(ctx, item)
	if err != nil {
		return Note{}, errors.Wrap(err, "[Repository.Save]")
	}
	return saved, nil
}

// Delete removes the note by ID. Deleting an unknown note completes
// without error and leaves the window untouched.
func (r *Repository) Delete(ctx context.Context, item Note) error {
	r.analytics.RecordEvent(analytics.EventDeleteItem, nil, nil)

	src, _ := r.currentSource()
	if err := src.Delete(ctx, item); err != nil {
		return errors.Wrap(err, "[Repository.Delete]")
	}
	return nil
}

// currentSource returns the live source, constructing a fresh one if the
// previous instance has been invalidated. The returned version tags any
// load issued against this source so stale completions can be discarded.
func (r *Repository) currentSource() (Source, uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.source == nil || r.source.Invalidated() {
		r.version++
		version := r.version
		src := r.factory()
		r.source = src
		src.OnInvalidated(func() {
			r.rebuildAfterInvalidation(version)
		})
	}
	return r.source, r.version
}

// rebuildAfterInvalidation transparently re-subscribes a fresh source and
// republishes the window, keeping the Notes handle valid across the
// repository's lifetime.
func (r *Repository) rebuildAfterInvalidation(version uint64) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), r.refreshTimeout)
		defer cancel()
		if err := r.Refresh(ctx); err != nil {
			log.Warn().Err(err).Uint64("version", version).Msg("Repository - window rebuild failed")
		}
	}()
}

// publish replaces the window snapshot unless the result belongs to a
// superseded source, in which case it is discarded rather than merged.
func (r *Repository) publish(version uint64, w Window) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if version != r.version || r.source == nil || r.source.Invalidated() {
		log.Debug().Uint64("version", version).Uint64("current", r.version).Msg("Repository - discarding stale page result")
		return
	}
	r.windowVersion = version
	r.window.Set(w)
}
