// Package analytics defines the fire-and-forget event sink consumed by the
// rest of the system. Implementations must never fail a caller: recording
// an event is advisory and errors are swallowed at the sink.
package analytics

// Event names recorded by the notes repository.
const (
	EventStartNotesRepository = "START_NOTES_REPOSITORY"
	EventSaveItem             = "SAVE_ITEM"
	EventDeleteItem           = "DELETE_ITEM"
)

type Service interface {
	// StartSession records the beginning of an analytics session.
	StartSession()

	// StopSession records the end of an analytics session.
	StopSession()

	// RecordEvent records a named event with optional string parameters
	// and numeric metrics. Either map may be nil.
	RecordEvent(eventName string, parameters map[string]string, metrics map[string]float64)
}
