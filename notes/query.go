package notes

import "context"

// RemoteError is an error reported by the backend inside an otherwise
// successful response, as opposed to a transport failure.
type RemoteError struct {
	Message string `json:"message"`
}

func (e RemoteError) Error() string {
	return e.Message
}

// ListNotesResult is one page of notes from the remote collection.
// NextToken is empty when the collection is exhausted.
type ListNotesResult struct {
	Notes     []Note        `json:"notes"`
	NextToken string        `json:"nextToken,omitempty"`
	Errors    []RemoteError `json:"errors,omitempty"`
}

// GetNoteResult holds a single note lookup. Note is nil when the ID is
// unknown to the backend.
type GetNoteResult struct {
	Note   *Note         `json:"note,omitempty"`
	Errors []RemoteError `json:"errors,omitempty"`
}

// SaveNoteResult echoes the note as stored by the backend.
type SaveNoteResult struct {
	Note   Note          `json:"note"`
	Errors []RemoteError `json:"errors,omitempty"`
}

type DeleteNoteResult struct {
	Errors []RemoteError `json:"errors,omitempty"`
}

// QueryClient is the opaque transport against the remote note collection.
// A non-nil error is a transport-level failure; backend-reported problems
// travel in the Errors list of the result instead.
type QueryClient interface {
	// ListNotes returns up to limit notes starting after afterToken.
	// An empty afterToken starts at the beginning of the collection.
	ListNotes(ctx context.Context, limit int, afterToken string) (*ListNotesResult, error)

	// GetNote fetches a single note by ID.
	GetNote(ctx context.Context, noteID string) (*GetNoteResult, error)

	// SaveNote upserts the note by ID and returns the stored version.
	SaveNote(ctx context.Context, note Note) (*SaveNoteResult, error)

	// DeleteNote removes the note by ID. Deleting an unknown ID is not a
	// transport failure.
	DeleteNote(ctx context.Context, noteID string) (*DeleteNoteResult, error)
}
