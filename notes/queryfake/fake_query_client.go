// Package queryfake is an in-memory QueryClient used by tests and the
// reference server. Pages are keyed by an opaque token encoding the next
// read offset.
package queryfake

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/pkg/errors"

	"github.com/shellmonger/mynotes/notes"
)

var _ notes.QueryClient = (*FakeQueryClient)(nil)

type FakeQueryClient struct {
	mu    sync.RWMutex
	items []notes.Note

	nextErr       error
	nextRemoteErr []notes.RemoteError
}

func New() *FakeQueryClient {
	return &FakeQueryClient{}
}

// NewSeeded creates a client pre-populated with sample notes.
func NewSeeded() *FakeQueryClient {
	c := New()
	for i := 0; i <= 200; i++ {
		n := notes.New()
		n.Title = fmt.Sprintf("title %d", i)
		n.Content = fmt.Sprintf("content %d", i)
		c.items = append(c.items, n)
	}
	return c
}

// FailNextWith makes the next call return err as a transport failure.
func (c *FakeQueryClient) FailNextWith(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextErr = err
}

// EmbedErrorsInNext makes the next call succeed at the transport level but
// carry the given backend errors in its result.
func (c *FakeQueryClient) EmbedErrorsInNext(remoteErrs ...notes.RemoteError) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextRemoteErr = remoteErrs
}

// Len returns the number of stored notes.
func (c *FakeQueryClient) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *FakeQueryClient) consumeInjected() (error, []notes.RemoteError) {
	err := c.nextErr
	remoteErrs := c.nextRemoteErr
	c.nextErr = nil
	c.nextRemoteErr = nil
	return err, remoteErrs
}

func (c *FakeQueryClient) ListNotes(ctx context.Context, limit int, afterToken string) (*notes.ListNotesResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err, remoteErrs := c.consumeInjected(); err != nil {
		return nil, err
	} else if len(remoteErrs) > 0 {
		return &notes.ListNotesResult{Errors: remoteErrs}, nil
	}

	start := 0
	if afterToken != "" {
		offset, err := strconv.Atoi(afterToken)
		if err != nil {
			return &notes.ListNotesResult{Errors: []notes.RemoteError{{Message: "invalid nextToken"}}}, nil
		}
		start = offset
	}
	if start > len(c.items) {
		start = len(c.items)
	}
	end := start + limit
	if end > len(c.items) {
		end = len(c.items)
	}

	result := &notes.ListNotesResult{Notes: append([]notes.Note{}, c.items[start:end]...)}
	if end < len(c.items) {
		result.NextToken = strconv.Itoa(end)
	}
	return result, nil
}

func (c *FakeQueryClient) GetNote(ctx context.Context, noteID string) (*notes.GetNoteResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err, remoteErrs := c.consumeInjected(); err != nil {
		return nil, err
	} else if len(remoteErrs) > 0 {
		return &notes.GetNoteResult{Errors: remoteErrs}, nil
	}

	for i := range c.items {
		if c.items[i].ID == noteID {
			n := c.items[i]
			return &notes.GetNoteResult{Note: &n}, nil
		}
	}
	return &notes.GetNoteResult{}, nil
}

func (c *FakeQueryClient) SaveNote(ctx context.Context, note notes.Note) (*notes.SaveNoteResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err, remoteErrs := c.consumeInjected(); err != nil {
		return nil, err
	} else if len(remoteErrs) > 0 {
		return &notes.SaveNoteResult{Errors: remoteErrs}, nil
	}

	if note.ID == "" {
		return nil, errors.New("[FakeQueryClient.SaveNote] note ID is required")
	}
	for i := range c.items {
		if c.items[i].ID == note.ID {
			c.items[i] = note
			return &notes.SaveNoteResult{Note: note}, nil
		}
	}
	c.items = append(c.items, note)
	return &notes.SaveNoteResult{Note: note}, nil
}

func (c *FakeQueryClient) DeleteNote(ctx context.Context, noteID string) (*notes.DeleteNoteResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err, remoteErrs := c.consumeInjected(); err != nil {
		return nil, err
	} else if len(remoteErrs) > 0 {
		return &notes.DeleteNoteResult{Errors: remoteErrs}, nil
	}

	for i := range c.items {
		if c.items[i].ID == noteID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			break
		}
	}
	return &notes.DeleteNoteResult{}, nil
}
