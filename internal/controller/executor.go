package controller

import (
	"sync"

	"github.com/schollz/sushigo/internal/bypass"
	"github.com/schollz/sushigo/internal/dispatcher"
	"github.com/schollz/sushigo/internal/engine"
	"github.com/schollz/sushigo/internal/id"
)

// rtExecutor performs the graph-mutating side effects of RT-ordered
// events (§4.D's RTExecutor contract) and produces the internal
// notification the event's completion implies. It is the only component
// that writes Processor state outside the worker thread's lambda path;
// it only reads Track and Transport state.
type rtExecutor struct {
	container *engine.Container
	transport *engine.Transport

	bypassMu sync.Mutex
	bypasses map[id.ObjectId]*bypass.Manager
}

func newRTExecutor(container *engine.Container, transport *engine.Transport) *rtExecutor {
	return &rtExecutor{
		container: container,
		transport: transport,
		bypasses:  make(map[id.ObjectId]*bypass.Manager),
	}
}

func (e *rtExecutor) bypassFor(procId id.ObjectId) *bypass.Manager {
	e.bypassMu.Lock()
	defer e.bypassMu.Unlock()
	m, ok := e.bypasses[procId]
	if !ok {
		m = bypass.NewManager()
		e.bypasses[procId] = m
	}
	return m
}

func (e *rtExecutor) Execute(ev *dispatcher.Event) (dispatcher.EventStatus, *dispatcher.Notification) {
	switch ev.Kind {
	case dispatcher.EventParameterChange:
		return e.executeParameterChange(ev)
	case dispatcher.EventPropertyChange:
		return e.executePropertyChange(ev)
	case dispatcher.EventSetBypass:
		return e.executeSetBypass(ev)
	case dispatcher.EventProgramChange:
		return e.executeProgramChange(ev)
	case dispatcher.EventNoteOn, dispatcher.EventNoteOff, dispatcher.EventNoteAftertouch,
		dispatcher.EventAftertouch, dispatcher.EventPitchBend, dispatcher.EventModulation:
		return e.executeKeyboardEvent(ev)
	default:
		return dispatcher.UnrecognizedEvent, nil
	}
}

func (e *rtExecutor) executeParameterChange(ev *dispatcher.Event) (dispatcher.EventStatus, *dispatcher.Notification) {
	p, ok := e.container.Processor(ev.ProcessorId)
	if !ok {
		return dispatcher.EventError, nil
	}
	desc, ok := p.ParameterDescriptor(ev.ParameterId)
	if !ok {
		return dispatcher.EventError, nil
	}
	normalised := ev.FloatValue
	if !ev.Normalized {
		if desc.Preprocessor != nil {
			normalised = desc.Preprocessor.ToNormalised(ev.FloatValue)
		} else {
			normalised = engine.LinearPreprocessor{Min: desc.MinDomain, Max: desc.MaxDomain}.ToNormalised(ev.FloatValue)
		}
	}
	if !p.SetParameterValue(ev.ParameterId, normalised) {
		return dispatcher.EventError, nil
	}
	return dispatcher.HandledOk, &dispatcher.Notification{
		Kind:        dispatcher.NotificationParameterChange,
		ProcessorId: ev.ProcessorId,
		ParameterId: ev.ParameterId,
		FloatValue:  ev.FloatValue,
	}
}

func (e *rtExecutor) executePropertyChange(ev *dispatcher.Event) (dispatcher.EventStatus, *dispatcher.Notification) {
	p, ok := e.container.Processor(ev.ProcessorId)
	if !ok {
		return dispatcher.EventError, nil
	}
	if !p.SetPropertyValue(ev.ParameterId, ev.StringValue) {
		return dispatcher.EventError, nil
	}
	return dispatcher.HandledOk, &dispatcher.Notification{
		Kind:        dispatcher.NotificationPropertyChange,
		ProcessorId: ev.ProcessorId,
		ParameterId: ev.ParameterId,
		StringValue: ev.StringValue,
	}
}

func (e *rtExecutor) executeSetBypass(ev *dispatcher.Event) (dispatcher.EventStatus, *dispatcher.Notification) {
	p, ok := e.container.Processor(ev.ProcessorId)
	if !ok {
		return dispatcher.EventError, nil
	}
	p.SetBypassed(ev.BypassEnabled)
	e.bypassFor(ev.ProcessorId).SetBypass(ev.BypassEnabled, e.transport.SampleRate())
	return dispatcher.HandledOk, &dispatcher.Notification{
		Kind:        dispatcher.NotificationProcessorUpdate,
		ProcessorId: ev.ProcessorId,
	}
}

func (e *rtExecutor) executeProgramChange(ev *dispatcher.Event) (dispatcher.EventStatus, *dispatcher.Notification) {
	p, ok := e.container.Processor(ev.ProcessorId)
	if !ok {
		return dispatcher.EventError, nil
	}
	if !p.SupportsPrograms() {
		return dispatcher.NotHandled, nil
	}
	if !p.SetCurrentProgram(ev.ProgramId) {
		return dispatcher.EventError, nil
	}
	return dispatcher.HandledOk, &dispatcher.Notification{
		Kind:        dispatcher.NotificationProcessorUpdate,
		ProcessorId: ev.ProcessorId,
	}
}

// executeKeyboardEvent acknowledges a note/aftertouch/pitch-bend/
// modulation event. Actual voice rendering is plugin DSP, explicitly out
// of scope; the control plane's job is only to deliver the event and, for
// tracks that are also bound as a MIDI keyboard output, echo note-on and
// note-off back out so a thru-style routing matches a real track's note
// passthrough. Other keyboard kinds carry IntValueA -1 and are not echoed.
func (e *rtExecutor) executeKeyboardEvent(ev *dispatcher.Event) (dispatcher.EventStatus, *dispatcher.Notification) {
	if _, ok := e.container.Track(ev.TrackId); !ok {
		return dispatcher.EventError, nil
	}
	noteKind := -1
	switch ev.Kind {
	case dispatcher.EventNoteOn:
		noteKind = 0
	case dispatcher.EventNoteOff:
		noteKind = 1
	}
	return dispatcher.HandledOk, &dispatcher.Notification{
		Kind:          dispatcher.NotificationEngineEvent,
		ParentTrackId: ev.TrackId,
		IntValueA:     noteKind,
		IntValueB:     ev.Note,
		FloatValue:    ev.Velocity,
	}
}
