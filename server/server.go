// Package server is the reference note server: a token-paged HTTP JSON
// API over a note collection, guarded by bearer-token auth. It exists so
// the HTTP query client has a real peer to speak to.
package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/shellmonger/mynotes/internal/config"
	"github.com/shellmonger/mynotes/notes"
)

type Server struct {
	router *mux.Router
	config config.Config
	client notes.QueryClient
	secret []byte
}

func New(cfg config.Config, client notes.QueryClient) (*Server, error) {
	if client == nil {
		return nil, errors.New("[server.New] query client is required")
	}

	s := &Server{
		router: mux.NewRouter(),
		config: cfg,
		client: client,
		secret: []byte(cfg.GetTokenSecret()),
	}
	s.initRoutes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) initRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()
	api.Use(s.RequireBearerToken)

	api.HandleFunc(RouteNotes, s.ListNotesHandler()).Methods(http.MethodGet)
	api.HandleFunc(RouteNoteByID, s.GetNoteHandler()).Methods(http.MethodGet)
	api.HandleFunc(RouteNoteByID, s.SaveNoteHandler()).Methods(http.MethodPut)
	api.HandleFunc(RouteNoteByID, s.DeleteNoteHandler()).Methods(http.MethodDelete)

	s.router.HandleFunc(RouteHealth, s.HealthHandler()).Methods(http.MethodGet)

	if err := s.router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		if tmpl, err := route.GetPathTemplate(); err == nil {
			log.Debug().Str("route", tmpl).Msg("registered route")
		}
		return nil
	}); err != nil {
		log.Warn().Err(err).Msg("route walk failed")
	}
}
