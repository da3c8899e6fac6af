package notes

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

var _ Source = (*RemoteSource)(nil)

// RemoteSource pages through a remote note collection via a QueryClient,
// keyed by the backend's opaque continuation token. The backend owns the
// total item count, so placeholder positions are never reported.
type RemoteSource struct {
	invalidation
	client QueryClient
}

func NewRemoteSource(client QueryClient) *RemoteSource {
	return &RemoteSource{client: client}
}

func (s *RemoteSource) LoadInitial(ctx context.Context, params InitialParams) (*InitialPage, error) {
	if s.Invalidated() {
		return nil, SourceInvalidatedErr
	}
	pageSize := clampPageSize(params.RequestedSize)
	log.Debug().Int("requestedSize", pageSize).Msg("RemoteSource.LoadInitial")

	result, err := s.client.ListNotes(ctx, pageSize, "")
	if err != nil {
		return nil, errors.Wrap(err, "[RemoteSource.LoadInitial] ListNotes")
	}
	if len(result.Errors) > 0 {
		// Backend-reported errors on a successful response degrade to an
		// empty terminal page rather than a hard failure.
		log.Warn().Str("message", result.Errors[0].Message).Msg("RemoteSource.LoadInitial - response has errors")
		return &InitialPage{}, nil
	}
	return &InitialPage{Notes: result.Notes, NextKey: tokenKey(result.NextToken)}, nil
}

func (s *RemoteSource) LoadAfter(ctx context.Context, key string, requestedSize int) (*Page, error) {
	if s.Invalidated() {
		return nil, SourceInvalidatedErr
	}
	pageSize := clampPageSize(requestedSize)
	log.Debug().Str("key", key).Int("requestedSize", pageSize).Msg("RemoteSource.LoadAfter")

	result, err := s.client.ListNotes(ctx, pageSize, key)
	if err != nil {
		return nil, errors.Wrap(err, "[RemoteSource.LoadAfter] ListNotes")
	}
	if len(result.Errors) > 0 {
		log.Warn().Str("message", result.Errors[0].Message).Msg("RemoteSource.LoadAfter - response has errors")
		return &Page{}, nil
	}
	return &Page{Notes: result.Notes, NextKey: tokenKey(result.NextToken)}, nil
}

func (s *RemoteSource) LoadBefore(ctx context.Context, key string, requestedSize int) (*Page, error) {
	// No stable backward cursor exists; treat this as a protocol violation.
	log.Error().Str("key", key).Msg("RemoteSource.LoadBefore called")
	s.Invalidate()
	return nil, BackwardPaginationErr
}

func (s *RemoteSource) GetByID(ctx context.Context, noteID string) (*Note, error) {
	log.Debug().Str("noteId", noteID).Msg("RemoteSource.GetByID")

	result, err := s.client.GetNote(ctx, noteID)
	if err != nil {
		return nil, errors.Wrap(err, "[RemoteSource.GetByID] GetNote")
	}
	if len(result.Errors) > 0 {
		log.Warn().Str("message", result.Errors[0].Message).Msg("RemoteSource.GetByID - response has errors")
		return nil, nil
	}
	return result.Note, nil
}

func (s *RemoteSource) Save(ctx context.Context, item Note) (Note, error) {
	log.Debug().Str("noteId", item.ID).Msg("RemoteSource.Save")

	// The backend rejects empty strings for these fields.
	toSave := item
	if strings.TrimSpace(toSave.Title) == "" {
		toSave.Title = " "
	}
	if strings.TrimSpace(toSave.Content) == "" {
		toSave.Content = " "
	}

	result, err := s.client.SaveNote(ctx, toSave)
	if err != nil {
		return Note{}, errors.Wrap(err, "[RemoteSource.Save] SaveNote")
	}
	if len(result.Errors) > 0 {
		return Note{}, errors.Errorf("[RemoteSource.Save] backend rejected save: %s", result.Errors[0].Message)
	}

	// Only invalidate once the mutation is fully acknowledged, so the next
	// page load is guaranteed to reflect it.
	s.Invalidate()
	return result.Note, nil
}

func (s *RemoteSource) Delete(ctx context.Context, item Note) error {
	log.Debug().Str("noteId", item.ID).Msg("RemoteSource.Delete")

	result, err := s.client.DeleteNote(ctx, item.ID)
	if err != nil {
		return errors.Wrap(err, "[RemoteSource.Delete] DeleteNote")
	}
	if len(result.Errors) > 0 {
		return errors.Errorf("[RemoteSource.Delete] backend rejected delete: %s", result.Errors[0].Message)
	}

	s.Invalidate()
	return nil
}

// tokenKey converts the wire representation of a continuation token, where
// the empty string means "no more pages", into an optional key.
func tokenKey(token string) *string {
	if token == "" {
		return nil
	}
	return &token
}
