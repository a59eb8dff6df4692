// Copyright (c) 2026 Bazario. All rights reserved.
// Author: duc.phamminh.dev@gmail.com

package activity

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collectSink records events into a slice under a mutex.
type collectSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *collectSink) Record(_ context.Context, event Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *collectSink) all() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event(nil), s.events...)
}

func TestDispatcherDeliversEvents(t *testing.T) {
	sink := &collectSink{}
	dispatcher := NewDispatcher(sink, 16)

	dispatcher.Emit(Event{EventType: EventLoginSucceeded, UserID: "u-1", Success: true})
	dispatcher.Emit(Event{EventType: EventLoginFailed, Email: "a@b.com"})

	// Close drains the buffer before returning.
	dispatcher.Close()

	events := sink.all()
	require.Len(t, events, 2)
	assert.Equal(t, EventLoginSucceeded, events[0].EventType)
	assert.Equal(t, EventLoginFailed, events[1].EventType)
	assert.False(t, events[0].Timestamp.IsZero(), "timestamp must be stamped on emit")
}

func TestDispatcherEmitAfterCloseIsNoOp(t *testing.T) {
	sink := &collectSink{}
	dispatcher := NewDispatcher(sink, 4)
	dispatcher.Close()

	dispatcher.Emit(Event{EventType: EventLoggedOut})

	assert.Empty(t, sink.all())
}

func TestDispatcherCloseIsIdempotent(t *testing.T) {
	dispatcher := NewDispatcher(nil, 4)
	dispatcher.Close()
	dispatcher.Close() // must not panic
}

func TestDispatcherCountsDropsWhenFull(t *testing.T) {
	// A sink that blocks until released, forcing the buffer to fill.
	release := make(chan struct{})
	blocking := &blockingSink{release: release, started: make(chan struct{})}

	dispatcher := NewDispatcher(blocking, 1)

	// First event occupies the worker, second fills the buffer; further
	// emits must be dropped rather than block.
	dispatcher.Emit(Event{EventType: "e1"})
	blocking.waitUntilBusy()
	dispatcher.Emit(Event{EventType: "e2"})
	dispatcher.Emit(Event{EventType: "e3"})
	dispatcher.Emit(Event{EventType: "e4"})

	assert.GreaterOrEqual(t, dispatcher.Dropped(), uint64(1))

	close(release)
	dispatcher.Close()
}

type blockingSink struct {
	release <-chan struct{}
	once    sync.Once
	started chan struct{}
}

func (s *blockingSink) Record(context.Context, Event) {
	s.once.Do(func() {
		if s.started != nil {
			close(s.started)
		}
	})
	<-s.release
}

func (s *blockingSink) waitUntilBusy() {
	if s.started == nil {
		return
	}
	<-s.started
}
