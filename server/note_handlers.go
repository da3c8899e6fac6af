package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/shellmonger/mynotes/notes"
)

const (
	contentTypeJSON  = "application/json; charset=utf-8"
	defaultListLimit = 10
)

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func (s *Server) ListNotesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := defaultListLimit
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				http.Error(w, "invalid limit", http.StatusBadRequest)
				return
			}
			limit = n
		}
		if limit > notes.MaxPageSize {
			limit = notes.MaxPageSize
		}

		result, err := s.client.ListNotes(r.Context(), limit, r.URL.Query().Get("nextToken"))
		if err != nil {
			log.Error().Err(err).Msg("ListNotesHandler")
			http.Error(w, "list failed", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func (s *Server) GetNoteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		noteID := mux.Vars(r)["noteId"]

		result, err := s.client.GetNote(r.Context(), noteID)
		if err != nil {
			log.Error().Err(err).Str("noteId", noteID).Msg("GetNoteHandler")
			http.Error(w, "get failed", http.StatusInternalServerError)
			return
		}
		if result.Note == nil && len(result.Errors) == 0 {
			http.Error(w, "note not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func (s *Server) SaveNoteHandler() http.HandlerFunc {
	type saveRequest struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		noteID := mux.Vars(r)["noteId"]

		var body saveRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		result, err := s.client.SaveNote(r.Context(), notes.Note{ID: noteID, Title: body.Title, Content: body.Content})
		if err != nil {
			log.Error().Err(err).Str("noteId", noteID).Msg("SaveNoteHandler")
			http.Error(w, "save failed", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func (s *Server) DeleteNoteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		noteID := mux.Vars(r)["noteId"]

		result, err := s.client.DeleteNote(r.Context(), noteID)
		if err != nil {
			log.Error().Err(err).Str("noteId", noteID).Msg("DeleteNoteHandler")
			http.Error(w, "delete failed", http.StatusInternalServerError)
			return
		}
		if len(result.Errors) > 0 {
			writeJSON(w, http.StatusOK, result)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("writeJSON")
	}
}
