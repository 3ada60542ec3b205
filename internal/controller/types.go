package controller

import "github.com/schollz/sushigo/internal/id"

// Wire-stable enums (§6). These are distinct from their internal
// engine/dispatcher/midi counterparts; the façade converts between the
// two at the boundary and nowhere else.

type PlayingMode int

const (
	PlayingStopped PlayingMode = iota
	PlayingPlaying
	PlayingRecording
)

type SyncMode int

const (
	SyncInternal SyncMode = iota
	SyncMidi
	SyncGate
	SyncLink
)

type ParameterType int

const (
	ParamBool ParameterType = iota
	ParamInt
	ParamFloat
	ParamStringProperty
	ParamDataProperty
)

type PluginType int

const (
	PluginInternal PluginType = iota
	PluginVst2x
	PluginVst3x
	PluginLv2
)

type TrackType int

const (
	TrackRegular TrackType = iota
	TrackPre
	TrackPost
)

// MidiChannel is the wire channel enum: Ch1..Ch16 plus Omni.
type MidiChannel int

const (
	ChOmni MidiChannel = -1
)

type NotificationType int

const (
	NotifyParameterChange NotificationType = iota
	NotifyPropertyChange
	NotifyProcessorUpdate
	NotifyTrackUpdate
	NotifyTransportUpdate
	NotifyCpuTimingUpdate
)

type GraphAction int

const (
	ActionAdded GraphAction = iota
	ActionDeleted
)

// ParameterInfo is the read-only snapshot returned by get_parameter_info.
type ParameterInfo struct {
	Id          id.ObjectId
	Type        ParameterType
	Label       string
	Name        string
	Unit        string
	Automatable bool
	MinDomain   float64
	MaxDomain   float64
}

type PropertyInfo struct {
	Id    id.ObjectId
	Label string
	Name  string
}

type ProcessorInfo struct {
	Id             id.ObjectId
	Label          string
	Name           string
	ParameterCount int
	ProgramCount   int
}

type TrackInfo struct {
	Id         id.ObjectId
	Label      string
	Name       string
	Channels   int
	Buses      int
	Type       TrackType
	Processors []id.ObjectId
}

type CpuTimings struct {
	Avg, Min, Max float64
}

type TimeSignature struct {
	Numerator   int
	Denominator int
}

// Notification is the wire shape delivered to subscribers registered via
// the façade's SubscribeToNotifications.
type Notification struct {
	Kind NotificationType

	ProcessorId   id.ObjectId
	ParentTrackId id.ObjectId
	ParameterId   id.ObjectId
	TrackId       id.ObjectId

	Value       float64
	StringValue string

	Action GraphAction

	TimeSignature TimeSignature
	PlayingMode   PlayingMode
	SyncMode      SyncMode
	Tempo         float64

	Cpu CpuTimings
}
