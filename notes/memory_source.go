package notes

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/shellmonger/mynotes/internal/utils"
)

// MemoryStore is an in-process, ordered note collection shared across
// successive MemorySource instances. It exists so that invalidating a
// source does not lose the data the next source must serve.
type MemoryStore struct {
	mu    sync.RWMutex
	items []Note
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// NewSeededMemoryStore creates a store pre-populated with sample notes.
func NewSeededMemoryStore() *MemoryStore {
	store := NewMemoryStore()
	for i := 0; i <= 200; i++ {
		n := New()
		n.Title = fmt.Sprintf("title %d", i)
		n.Content = fmt.Sprintf("content %d", i)
		store.items = append(store.items, n)
	}
	return store
}

func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

func (m *MemoryStore) indexOf(noteID string) int {
	for i := range m.items {
		if m.items[i].ID == noteID {
			return i
		}
	}
	return -1
}

func (m *MemoryStore) get(noteID string) *Note {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if i := m.indexOf(noteID); i >= 0 {
		n := m.items[i]
		return &n
	}
	return nil
}

// slice returns a copy of items[from:to], both bounds clamped to the
// collection.
func (m *MemoryStore) slice(from, to int) []Note {
	m.mu.RLock()
	defer m.mu.RUnlock()
	from = inRange(from, 0, len(m.items))
	to = inRange(to, 0, len(m.items))
	if from >= to {
		return nil
	}
	out := make([]Note, to-from)
	copy(out, m.items[from:to])
	return out
}

// upsert inserts or replaces the note, returning it as stored.
func (m *MemoryStore) upsert(item Note) Note {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := m.indexOf(item.ID); i >= 0 {
		m.items[i] = item
	} else {
		m.items = append(m.items, item)
	}
	return item
}

// remove deletes the note by ID, reporting whether it was present.
func (m *MemoryStore) remove(noteID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexOf(noteID)
	if i < 0 {
		return false
	}
	m.items = append(m.items[:i], m.items[i+1:]...)
	return true
}

func inRange(position, start, end int) int {
	if position < start {
		return start
	}
	if position > end {
		return end
	}
	return position
}

var _ Source = (*MemorySource)(nil)

// MemorySource pages over a MemoryStore using integer offsets encoded as
// opaque keys. Because it owns exact knowledge of the collection, it
// reports placeholder positions and totals when asked.
type MemorySource struct {
	invalidation
	store *MemoryStore
}

func NewMemorySource(store *MemoryStore) *MemorySource {
	return &MemorySource{store: store}
}

func (s *MemorySource) LoadInitial(ctx context.Context, params InitialParams) (*InitialPage, error) {
	if s.Invalidated() {
		return nil, SourceInvalidatedErr
	}
	pageSize := clampPageSize(params.RequestedSize)
	log.Debug().Int("requestedSize", pageSize).Msg("MemorySource.LoadInitial")

	firstItem := 0
	lastItem := inRange(firstItem+pageSize, 0, s.store.Len())
	data := s.store.slice(firstItem, lastItem)

	page := &InitialPage{Notes: data, NextKey: s.offsetKey(lastItem)}
	if params.Placeholders {
		page.Position = utils.Ptr(firstItem)
		page.Total = utils.Ptr(s.store.Len())
	}
	return page, nil
}

func (s *MemorySource) LoadAfter(ctx context.Context, key string, requestedSize int) (*Page, error) {
	if s.Invalidated() {
		return nil, SourceInvalidatedErr
	}
	pageSize := clampPageSize(requestedSize)
	log.Debug().Str("key", key).Int("requestedSize", pageSize).Msg("MemorySource.LoadAfter")

	firstItem, err := strconv.Atoi(key)
	if err != nil {
		return nil, errors.Wrapf(err, "[MemorySource.LoadAfter] invalid key %q", key)
	}
	firstItem = inRange(firstItem, 0, s.store.Len())
	lastItem := inRange(firstItem+pageSize, 0, s.store.Len())
	data := s.store.slice(firstItem, lastItem)

	return &Page{Notes: data, NextKey: s.offsetKey(lastItem)}, nil
}

func (s *MemorySource) LoadBefore(ctx context.Context, key string, requestedSize int) (*Page, error) {
	log.Error().Str("key", key).Msg("MemorySource.LoadBefore called")
	s.Invalidate()
	return nil, BackwardPaginationErr
}

func (s *MemorySource) GetByID(ctx context.Context, noteID string) (*Note, error) {
	return s.store.get(noteID), nil
}

func (s *MemorySource) Save(ctx context.Context, item Note) (Note, error) {
	log.Debug().Str("noteId", item.ID).Msg("MemorySource.Save")
	saved := s.store.upsert(item)
	s.Invalidate()
	return saved, nil
}

func (s *MemorySource) Delete(ctx context.Context, item Note) error {
	if !s.store.remove(item.ID) {
		// Deleting an unknown note is logged, not failed.
		log.Debug().Str("noteId", item.ID).Msg("MemorySource.Delete - item not found")
		return nil
	}
	log.Debug().Str("noteId", item.ID).Msg("MemorySource.Delete")
	s.Invalidate()
	return nil
}

// offsetKey encodes the next read offset, or nil once the collection is
// exhausted.
func (s *MemorySource) offsetKey(nextOffset int) *string {
	if nextOffset >= s.store.Len() {
		return nil
	}
	return utils.Ptr(strconv.Itoa(nextOffset))
}
