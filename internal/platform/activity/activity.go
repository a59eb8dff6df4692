// Copyright (c) 2026 Bazario. All rights reserved.
// Author: duc.phamminh.dev@gmail.com

/*
Package activity records security-relevant account events.

Logins, lockouts, password changes, and session revocations are emitted as
structured events and handed to a pluggable sink through a buffered
dispatcher. Emission never blocks a request: when the buffer is full the
event is counted as dropped instead of stalling the login path.
*/
package activity

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Event is a single account activity record.
type Event struct {
	Timestamp time.Time         `json:"timestamp"`
	EventType string            `json:"event_type"`
	UserID    string            `json:"user_id,omitempty"`
	Email     string            `json:"email,omitempty"`
	SessionID string            `json:"session_id,omitempty"`
	IP        string            `json:"ip,omitempty"`
	Success   bool              `json:"success"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Well-known event types.
const (
	EventRegistered      = "account_registered"
	EventVerified        = "account_verified"
	EventLoginSucceeded  = "login_succeeded"
	EventLoginFailed     = "login_failed"
	EventAccountLocked   = "account_locked"
	EventLoggedOut       = "logged_out"
	EventLoggedOutAll    = "logged_out_all_devices"
	EventPasswordChanged = "password_changed"
	EventPasswordReset   = "password_reset"
	EventDeactivated     = "account_deactivated"
	EventReactivated     = "account_reactivated"
)

// Sink consumes dispatched events. Implementations must tolerate
// concurrent calls.
type Sink interface {
	Record(ctx context.Context, event Event)
}

// NoOpSink discards every event.
type NoOpSink struct{}

// Record implements [Sink].
func (NoOpSink) Record(context.Context, Event) {}

// SlogSink writes events to a structured logger.
type SlogSink struct {
	Logger *slog.Logger
}

// Record implements [Sink].
func (s *SlogSink) Record(ctx context.Context, event Event) {
	attrs := []any{
		slog.String("event_type", event.EventType),
		slog.Bool("success", event.Success),
	}
	if event.UserID != "" {
		attrs = append(attrs, slog.String("user_id", event.UserID))
	}
	if event.Email != "" {
		attrs = append(attrs, slog.String("email", event.Email))
	}
	if event.SessionID != "" {
		attrs = append(attrs, slog.String("session_id", event.SessionID))
	}
	if event.IP != "" {
		attrs = append(attrs, slog.String("ip", event.IP))
	}
	for key, value := range event.Metadata {
		attrs = append(attrs, slog.String("meta_"+key, value))
	}

	s.Logger.InfoContext(ctx, "account_activity", attrs...)
}

// Dispatcher fans events from request goroutines to a single sink worker.
type Dispatcher struct {
	sink      Sink
	ch        chan Event
	done      chan struct{}
	wg        sync.WaitGroup
	dropped   atomic.Uint64
	closed    atomic.Bool
	closeOnce sync.Once
}

// NewDispatcher starts the background worker.
//
// # Parameters
//   - sink: Destination for events; nil falls back to [NoOpSink].
//   - bufferSize: Channel capacity; values below 1 are clamped to 1.
func NewDispatcher(sink Sink, bufferSize int) *Dispatcher {
	if sink == nil {
		sink = NoOpSink{}
	}
	if bufferSize <= 0 {
		bufferSize = 1
	}

	d := &Dispatcher{
		sink: sink,
		ch:   make(chan Event, bufferSize),
		done: make(chan struct{}),
	}

	d.wg.Add(1)
	go d.run()

	return d
}

func (d *Dispatcher) run() {
	defer d.wg.Done()

	for {
		select {
		case event := <-d.ch:
			d.sink.Record(context.Background(), event)
		case <-d.done:
			// Drain what's already buffered before exiting.
			for {
				select {
				case event := <-d.ch:
					d.sink.Record(context.Background(), event)
				default:
					return
				}
			}
		}
	}
}

// Emit enqueues an event without blocking. Events arriving after Close, or
// while the buffer is full, are counted as dropped.
func (d *Dispatcher) Emit(event Event) {
	if d == nil || d.closed.Load() {
		return
	}

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	select {
	case d.ch <- event:
	case <-d.done:
	default:
		d.dropped.Add(1)
	}
}

// Close stops the worker after draining buffered events. Safe to call
// multiple times.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.closeOnce.Do(func() {
		d.closed.Store(true)
		close(d.done)
		d.wg.Wait()
	})
}

// Dropped reports how many events were discarded due to a full buffer.
func (d *Dispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}
