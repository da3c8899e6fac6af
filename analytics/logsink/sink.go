// Package logsink records analytics events through the structured log.
package logsink

import (
	"github.com/rs/zerolog"

	"github.com/shellmonger/mynotes/analytics"
)

var _ analytics.Service = (*Sink)(nil)

type Sink struct {
	logger zerolog.Logger
}

func New(logger zerolog.Logger) *Sink {
	return &Sink{logger: logger}
}

func (s *Sink) StartSession() {
	s.logger.Info().Str("event", "START_SESSION").Msg("analytics")
}

func (s *Sink) StopSession() {
	s.logger.Info().Str("event", "STOP_SESSION").Msg("analytics")
}

func (s *Sink) RecordEvent(eventName string, parameters map[string]string, metrics map[string]float64) {
	ev := s.logger.Info().Str("event", eventName)
	for k, v := range parameters {
		ev = ev.Str(k, v)
	}
	for k, v := range metrics {
		ev = ev.Float64(k, v)
	}
	ev.Msg("analytics")
}
