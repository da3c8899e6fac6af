package server

// Route path constants, relative to the /api prefix where applicable.
const (
	RouteNotes    = "/notes"
	RouteNoteByID = "/notes/{noteId}"
	RouteHealth   = "/health"
)
