// Package notes implements the note data model and the paginated,
// invalidation-driven synchronization layer between a local consumer and a
// remote note collection.
package notes

import "github.com/google/uuid"

// Note is a single note within the application. Identity is the ID; the UI
// holds copies, never the authoritative instance.
type Note struct {
	ID      string `json:"noteId"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// New creates a note with a freshly generated ID and empty title/content.
func New() Note {
	return Note{ID: uuid.New().String()}
}

// SameItem reports whether two notes refer to the same underlying item.
func (n Note) SameItem(other Note) bool {
	return n.ID == other.ID
}

// SameContents reports whether two notes are indistinguishable for
// change-detection purposes.
func (n Note) SameContents(other Note) bool {
	return n.ID == other.ID && n.Title == other.Title && n.Content == other.Content
}
