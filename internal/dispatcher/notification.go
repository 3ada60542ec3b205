package dispatcher

import "github.com/schollz/sushigo/internal/id"

// NotificationKind is the subscription class a listener registers for.
type NotificationKind int

const (
	NotificationParameterChange NotificationKind = iota
	NotificationPropertyChange
	NotificationProcessorUpdate
	NotificationTrackUpdate
	NotificationTransportUpdate
	NotificationCpuTimingUpdate
	NotificationEngineEvent
)

// GraphAction tags processor/track add-or-remove notifications.
type GraphAction int

const (
	ActionAdded GraphAction = iota
	ActionDeleted
)

// TransportField tags which transport attribute changed.
type TransportField int

const (
	TransportTempo TransportField = iota
	TransportTimeSignature
	TransportPlayingMode
	TransportSyncMode
)

// Notification is published on the out queue after an event executes.
// The controller façade is the only component that converts these
// internal shapes into public wire types.
type Notification struct {
	Kind      NotificationKind
	Timestamp int64

	ProcessorId   id.ObjectId
	ParentTrackId id.ObjectId
	ParameterId   id.ObjectId
	TrackId       id.ObjectId

	FloatValue  float64
	StringValue string

	Action GraphAction

	TransportField TransportField
	IntValueA      int // e.g. time signature numerator
	IntValueB      int // e.g. time signature denominator

	CpuAvg, CpuMin, CpuMax float64
}
