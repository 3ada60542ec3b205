package controller

import (
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"github.com/schollz/sushigo/internal/dispatcher"
	"github.com/schollz/sushigo/internal/engine"
	"github.com/schollz/sushigo/internal/id"
	"github.com/schollz/sushigo/internal/midi"
	"github.com/schollz/sushigo/internal/session"
)

// BuildInfo is the static version/build metadata reported by System and
// captured verbatim into a saved session.
type BuildInfo struct {
	Version      string
	BuildOptions string
	BuildDate    string
	Commit       string
	BlockSize    int
}

// OscFrontend is the late-bound back-reference described in §9: the OSC
// adapter is wired in after the façade is constructed, and the
// reference is non-owning and nullable.
type OscFrontend interface {
	SendIP() string
	SendPort() int
	ReceivePort() int
	ConnectFromParameter(processorName, parameterName string) bool
	DisconnectFromParameter(processorName, parameterName string) bool
	ConnectFromAllParameters()
	DisconnectFromAllParameters()
	EnabledParameterOutputs() []id.ObjectId
	SaveState() []byte
	SetState(state []byte) error
}

type subscriberEntry struct {
	id     int64
	listen func(Notification)
}

// Facade aggregates the twelve sub-controllers and owns the single
// conversion boundary between internal engine/dispatcher/midi types and
// the wire shapes of §6, per §4.H.
type Facade struct {
	logger *log.Logger

	idGen     *id.Generator
	container *engine.Container
	transport *engine.Transport
	timer     *engine.PerformanceTimer
	events    *dispatcher.Dispatcher
	midiDisp  *midi.Dispatcher
	executor  *rtExecutor

	buildInfo BuildInfo

	oscMu sync.RWMutex
	osc   OscFrontend

	subsMu    sync.RWMutex
	subs      map[NotificationType][]subscriberEntry
	nextSubId int64

	System       *SystemController
	Transport    *TransportController
	Timing       *TimingController
	Keyboard     *KeyboardController
	AudioGraph   *AudioGraphController
	Program      *ProgramController
	Parameter    *ParameterController
	Midi         *MidiController
	AudioRouting *AudioRoutingController
	CvGate       *CvGateController
	Osc          *OscController
	Session      *SessionController
}

// New constructs the façade, wires the RT executor into events, and
// subscribes to the dispatcher notification kinds listed below so it can
// demultiplex them to sub-controller-specific listener lists. Engine
// (keyboard output) notifications are not subscribed here.
func New(logger *log.Logger, idGen *id.Generator, container *engine.Container, transport *engine.Transport, timer *engine.PerformanceTimer, events *dispatcher.Dispatcher, midiDisp *midi.Dispatcher, build BuildInfo) *Facade {
	if logger == nil {
		logger = log.Default()
	}
	executor := newRTExecutor(container, transport)
	events.SetRTExecutor(executor)

	f := &Facade{
		logger:    logger,
		idGen:     idGen,
		container: container,
		transport: transport,
		timer:     timer,
		events:    events,
		midiDisp:  midiDisp,
		executor:  executor,
		buildInfo: build,
		subs:      make(map[NotificationType][]subscriberEntry),
	}

	f.System = &SystemController{f: f}
	f.Transport = &TransportController{f: f}
	f.Timing = &TimingController{f: f}
	f.Keyboard = &KeyboardController{f: f}
	f.AudioGraph = &AudioGraphController{f: f}
	f.Program = &ProgramController{f: f}
	f.Parameter = &ParameterController{f: f}
	f.Midi = &MidiController{f: f}
	f.AudioRouting = newAudioRoutingController(f)
	f.CvGate = &CvGateController{}
	f.Osc = &OscController{f: f}
	f.Session = &SessionController{f: f}

	for _, kind := range []dispatcher.NotificationKind{
		dispatcher.NotificationParameterChange,
		dispatcher.NotificationPropertyChange,
		dispatcher.NotificationProcessorUpdate,
		dispatcher.NotificationTrackUpdate,
		dispatcher.NotificationTransportUpdate,
		dispatcher.NotificationCpuTimingUpdate,
	} {
		events.Subscribe(kind, f.onEngineNotification)
	}

	return f
}

// SetOscFrontend wires (or clears, with nil) the OSC adapter. Called once
// by cmd/sushigo after the frontend has bound its sockets.
func (f *Facade) SetOscFrontend(frontend OscFrontend) {
	f.oscMu.Lock()
	defer f.oscMu.Unlock()
	f.osc = frontend
}

func (f *Facade) oscFrontend() OscFrontend {
	f.oscMu.RLock()
	defer f.oscMu.RUnlock()
	return f.osc
}

// oscStateAdapter narrows the wired OscFrontend down to the save/restore
// slice internal/session needs, without session importing controller.
func (f *Facade) oscStateAdapter() session.OscState {
	front := f.oscFrontend()
	if front == nil {
		return nil
	}
	return front
}

// audioRoutingStateAdapter narrows AudioRoutingController to the
// error-returning shape internal/session needs (its public API returns
// ControlStatus, which session cannot name without importing controller).
type audioRoutingStateAdapter struct {
	c *AudioRoutingController
}

func (a audioRoutingStateAdapter) GetAllInputConnections() []engine.AudioConnection {
	return a.c.GetAllInputConnections()
}

func (a audioRoutingStateAdapter) GetAllOutputConnections() []engine.AudioConnection {
	return a.c.GetAllOutputConnections()
}

func (a audioRoutingStateAdapter) ConnectInputChannelToTrack(trackId id.ObjectId, engineChannel, trackChannel int) error {
	if status := a.c.ConnectInputChannelToTrack(trackId, engineChannel, trackChannel); status != StatusOk {
		return fmt.Errorf("audio routing: connect input failed: %s", status)
	}
	return nil
}

func (a audioRoutingStateAdapter) ConnectOutputChannelToTrack(trackId id.ObjectId, engineChannel, trackChannel int) error {
	if status := a.c.ConnectOutputChannelToTrack(trackId, engineChannel, trackChannel); status != StatusOk {
		return fmt.Errorf("audio routing: connect output failed: %s", status)
	}
	return nil
}

// SubscribeToNotifications appends listener to kind's non-owning listener
// list (§4.H).
func (f *Facade) SubscribeToNotifications(kind NotificationType, listener func(Notification)) int64 {
	handle := atomic.AddInt64(&f.nextSubId, 1)
	f.subsMu.Lock()
	defer f.subsMu.Unlock()
	f.subs[kind] = append(f.subs[kind], subscriberEntry{id: handle, listen: listener})
	return handle
}

func (f *Facade) UnsubscribeFromNotifications(kind NotificationType, handle int64) {
	f.subsMu.Lock()
	defer f.subsMu.Unlock()
	list := f.subs[kind]
	for i, e := range list {
		if e.id == handle {
			f.subs[kind] = append(list[:i], list[i+1:]...)
			return
		}
	}
}

func (f *Facade) notify(kind NotificationType, n Notification) {
	n.Kind = kind
	f.subsMu.RLock()
	listeners := append([]subscriberEntry(nil), f.subs[kind]...)
	f.subsMu.RUnlock()
	for _, e := range listeners {
		e.listen(n)
	}
}

// onEngineNotification demultiplexes an internal dispatcher notification
// into the right wire-notification list, converting internal enums to
// their external counterparts exactly at this boundary (§4.H).
func (f *Facade) onEngineNotification(n dispatcher.Notification) {
	switch n.Kind {
	case dispatcher.NotificationParameterChange:
		f.notify(NotifyParameterChange, Notification{
			ProcessorId: n.ProcessorId,
			ParameterId: n.ParameterId,
			Value:       n.FloatValue,
		})
	case dispatcher.NotificationPropertyChange:
		f.notify(NotifyPropertyChange, Notification{
			ProcessorId: n.ProcessorId,
			ParameterId: n.ParameterId,
			StringValue: n.StringValue,
		})
	case dispatcher.NotificationProcessorUpdate:
		f.notify(NotifyProcessorUpdate, Notification{
			ProcessorId:   n.ProcessorId,
			ParentTrackId: n.ParentTrackId,
			Action:        toExternalAction(n.Action),
		})
	case dispatcher.NotificationTrackUpdate:
		f.notify(NotifyTrackUpdate, Notification{
			TrackId: n.TrackId,
			Action:  toExternalAction(n.Action),
		})
	case dispatcher.NotificationTransportUpdate:
		f.notify(NotifyTransportUpdate, Notification{
			TimeSignature: TimeSignature{Numerator: n.IntValueA, Denominator: n.IntValueB},
			Tempo:         n.FloatValue,
		})
	case dispatcher.NotificationCpuTimingUpdate:
		f.notify(NotifyCpuTimingUpdate, Notification{
			ProcessorId: n.ProcessorId,
			Cpu:         CpuTimings{Avg: n.CpuAvg, Min: n.CpuMin, Max: n.CpuMax},
		})
	}
}

func toExternalAction(a dispatcher.GraphAction) GraphAction {
	if a == dispatcher.ActionDeleted {
		return ActionDeleted
	}
	return ActionAdded
}

func toExternalPlayingMode(m engine.PlayingMode) PlayingMode {
	switch m {
	case engine.Playing:
		return PlayingPlaying
	case engine.Recording:
		return PlayingRecording
	default:
		return PlayingStopped
	}
}

func toInternalPlayingMode(m PlayingMode) engine.PlayingMode {
	switch m {
	case PlayingPlaying:
		return engine.Playing
	case PlayingRecording:
		return engine.Recording
	default:
		return engine.Stopped
	}
}

func toExternalSyncMode(m engine.SyncMode) SyncMode {
	switch m {
	case engine.SyncMidi:
		return SyncMidi
	case engine.SyncGate:
		return SyncGate
	case engine.SyncLink:
		return SyncLink
	default:
		return SyncInternal
	}
}

func toInternalSyncMode(m SyncMode) engine.SyncMode {
	switch m {
	case SyncMidi:
		return engine.SyncMidi
	case SyncGate:
		return engine.SyncGate
	case SyncLink:
		return engine.SyncLink
	default:
		return engine.SyncInternal
	}
}

func toExternalParameterType(t engine.ParameterType) ParameterType {
	switch t {
	case engine.ParameterInt:
		return ParamInt
	case engine.ParameterStringProperty:
		return ParamStringProperty
	case engine.ParameterDataProperty:
		return ParamDataProperty
	case engine.ParameterBool:
		return ParamBool
	default:
		return ParamFloat
	}
}

func toExternalTrackType(k engine.TrackType) TrackType {
	switch k {
	case engine.TrackPre:
		return TrackPre
	case engine.TrackPost:
		return TrackPost
	default:
		return TrackRegular
	}
}

func toExternalChannel(ch midi.Channel) MidiChannel {
	if ch == midi.Omni {
		return ChOmni
	}
	return MidiChannel(ch)
}

func toInternalChannel(ch MidiChannel) midi.Channel {
	if ch == ChOmni {
		return midi.Omni
	}
	return midi.Channel(ch)
}
