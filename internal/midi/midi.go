// Package midi implements the routing tables between MIDI ports,
// keyboard events, CC-to-parameter bindings, PC-to-processor bindings,
// and MIDI clock, per spec §4.E.
package midi

import "github.com/schollz/sushigo/internal/id"

// Channel is a 0-indexed MIDI channel, or the Omni sentinel matching any
// channel on lookup.
type Channel int

const Omni Channel = -1

// ValidChannel reports whether ch is Omni or a real 0-15 channel.
func ValidChannel(ch Channel) bool {
	return ch == Omni || (ch >= 0 && ch <= 15)
}

// ConnectStatus is returned by every connect_*/disconnect_* primitive.
type ConnectStatus int

const (
	StatusOk ConnectStatus = iota
	StatusInvalidPort
	StatusInvalidChannel
	StatusInvalidId
	StatusAlreadyConnected
	StatusNotConnected
)

// KbdInputConnection routes an input port+channel to a track's keyboard
// input. Rows with Raw set are stored and snapshotted but receive no
// events: incoming messages are not forwarded to them, decoded or raw.
type KbdInputConnection struct {
	Port    int
	Channel Channel
	TrackId id.ObjectId
	Raw     bool
}

// KbdOutputConnection routes a track's keyboard output to an output
// port+channel.
type KbdOutputConnection struct {
	TrackId id.ObjectId
	Port    int
	Channel Channel
}

// CCConnection binds an input port+channel+cc to a processor parameter.
// Min/Max are expressed in the parameter's domain units, not normalised.
type CCConnection struct {
	Port        int
	Channel     Channel
	CC          int
	ProcessorId id.ObjectId
	ParameterId id.ObjectId
	Min, Max    float64
	Relative    bool

	relAccum float64 // relative-mode running domain value, midpoint-seeded
}

// PCConnection binds an input port+channel to a processor's program
// change handler.
type PCConnection struct {
	Port        int
	Channel     Channel
	ProcessorId id.ObjectId
}

// PortSender delivers an encoded MIDI message to a physical or virtual
// output port.
type PortSender interface {
	Send(port int, data []byte) error
}
