package sinkfake

import (
	"sync"

	"github.com/shellmonger/mynotes/analytics"
)

var _ analytics.Service = (*FakeSink)(nil)

// FakeSink records events in memory for assertions in tests.
type FakeSink struct {
	mu       sync.Mutex
	events   []RecordedEvent
	sessions int
}

type RecordedEvent struct {
	Name       string
	Parameters map[string]string
	Metrics    map[string]float64
}

func New() *FakeSink {
	return &FakeSink{}
}

func (f *FakeSink) StartSession() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions++
}

func (f *FakeSink) StopSession() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions--
}

func (f *FakeSink) RecordEvent(eventName string, parameters map[string]string, metrics map[string]float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, RecordedEvent{Name: eventName, Parameters: parameters, Metrics: metrics})
}

// Events returns a copy of all recorded events.
func (f *FakeSink) Events() []RecordedEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]RecordedEvent, len(f.events))
	copy(out, f.events)
	return out
}

// CountOf returns how many times eventName was recorded.
func (f *FakeSink) CountOf(eventName string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, ev := range f.events {
		if ev.Name == eventName {
			n++
		}
	}
	return n
}
