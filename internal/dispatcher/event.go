// Package dispatcher implements the non-RT <-> RT control-plane message
// plane: a wait-free posting path, an RT-ordered execution path for
// graph-mutating events, and a notification fan-out to subscribers.
package dispatcher

import "github.com/schollz/sushigo/internal/id"

// IMMEDIATE_PROCESS is the sentinel timestamp meaning "take at the next
// RT tick" rather than a specific future sample-clock value.
const IMMEDIATE_PROCESS int64 = -1

// EventKind distinguishes lambda events (executed on the worker thread)
// from RT-ordered events (parameter/property/keyboard/program/bypass),
// which are delivered to the RT thread via the SPSC queue.
type EventKind int

const (
	EventLambda EventKind = iota
	EventParameterChange
	EventPropertyChange
	EventNoteOn
	EventNoteOff
	EventNoteAftertouch
	EventAftertouch
	EventPitchBend
	EventModulation
	EventProgramChange
	EventSetBypass
)

// IsRTOrdered reports whether k must be delivered through the RT-thread
// SPSC queue rather than executed directly on the worker thread.
func (k EventKind) IsRTOrdered() bool {
	return k != EventLambda
}

// EventStatus is delivered to a completion callback exactly once.
type EventStatus int

const (
	HandledOk EventStatus = iota
	NotHandled
	EventError
	UnrecognizedEvent
)

// PosterId identifies a control-plane entity that posts events.
type PosterId int64

// CompletionFunc is invoked exactly once per event if one was set when
// the event was posted. It runs on the dispatcher's worker thread and
// must not re-enter the dispatcher with a blocking call.
type CompletionFunc func(event *Event, status EventStatus)

// LambdaFunc is the opaque callable carried by a "lambda" event. It runs
// on the control worker thread and may freely mutate container/transport
// state (such calls are only ever made from here or from the RT
// executor).
type LambdaFunc func() (EventStatus, *Notification)

// Event is a variant covering parameter/property changes, keyboard
// events, and an opaque lambda. Every event carries a scheduled
// timestamp and, optionally, a completion callback.
type Event struct {
	Id        int64
	Kind      EventKind
	Timestamp int64 // IMMEDIATE_PROCESS or a future sample-clock tick
	PosterId  PosterId

	Completion CompletionFunc
	Lambda     LambdaFunc

	ProcessorId   id.ObjectId
	ParameterId   id.ObjectId
	TrackId       id.ObjectId
	FloatValue    float64
	StringValue   string
	Channel       int
	Note          int
	Velocity      float64
	ProgramId     int
	BypassEnabled bool

	// Normalized reports how FloatValue on an EventParameterChange is
	// expressed: true when it is already in [0,1] (controller-originated
	// sets), false when it is in the parameter's domain units and must be
	// converted through the descriptor's preprocessor before being stored
	// (CC-originated sets, which carry their own domain-scaled min/max).
	Normalized bool
}

// ready reports whether the event should execute given the RT thread's
// current sample clock.
func (e *Event) ready(sampleClock int64) bool {
	return e.Timestamp == IMMEDIATE_PROCESS || e.Timestamp <= sampleClock
}
