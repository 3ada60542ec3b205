package midi

// Status byte high nibbles, per the MIDI 1.0 spec.
const (
	statusNoteOff         = 0x80
	statusNoteOn          = 0x90
	statusPolyAftertouch  = 0xA0
	statusControlChange   = 0xB0
	statusProgramChange   = 0xC0
	statusChannelPressure = 0xD0
	statusPitchBend       = 0xE0

	clockByte = 0xF8
)

type decodedKind int

const (
	decodedNoteOn decodedKind = iota
	decodedNoteOff
	decodedPolyAftertouch
	decodedControlChange
	decodedProgramChange
	decodedChannelAftertouch
	decodedPitchBend
	decodedUnknown
)

type decodedMessage struct {
	kind    decodedKind
	channel Channel
	data1   int
	data2   int
}

// decode parses a single raw MIDI channel message. Only the first three
// bytes are consulted; running status and sysex are not modelled since
// the control plane only cares about note/CC/PC/pitch-bend traffic.
func decode(data []byte) (decodedMessage, bool) {
	if len(data) == 0 {
		return decodedMessage{}, false
	}
	status := data[0]
	nibble := status & 0xF0
	ch := Channel(status & 0x0F)

	switch nibble {
	case statusNoteOn:
		if len(data) < 3 {
			return decodedMessage{}, false
		}
		if data[2] == 0 {
			// Velocity-0 note-on is a note-off by convention.
			return decodedMessage{kind: decodedNoteOff, channel: ch, data1: int(data[1]), data2: 0}, true
		}
		return decodedMessage{kind: decodedNoteOn, channel: ch, data1: int(data[1]), data2: int(data[2])}, true
	case statusNoteOff:
		if len(data) < 3 {
			return decodedMessage{}, false
		}
		return decodedMessage{kind: decodedNoteOff, channel: ch, data1: int(data[1]), data2: int(data[2])}, true
	case statusPolyAftertouch:
		if len(data) < 3 {
			return decodedMessage{}, false
		}
		return decodedMessage{kind: decodedPolyAftertouch, channel: ch, data1: int(data[1]), data2: int(data[2])}, true
	case statusControlChange:
		if len(data) < 3 {
			return decodedMessage{}, false
		}
		return decodedMessage{kind: decodedControlChange, channel: ch, data1: int(data[1]), data2: int(data[2])}, true
	case statusProgramChange:
		if len(data) < 2 {
			return decodedMessage{}, false
		}
		return decodedMessage{kind: decodedProgramChange, channel: ch, data1: int(data[1])}, true
	case statusChannelPressure:
		if len(data) < 2 {
			return decodedMessage{}, false
		}
		return decodedMessage{kind: decodedChannelAftertouch, channel: ch, data1: int(data[1])}, true
	case statusPitchBend:
		if len(data) < 3 {
			return decodedMessage{}, false
		}
		value := int(data[1]) | (int(data[2]) << 7)
		return decodedMessage{kind: decodedPitchBend, channel: ch, data1: value}, true
	default:
		return decodedMessage{kind: decodedUnknown}, true
	}
}

func encodeNoteOn(channel Channel, note, velocity int) []byte {
	return []byte{byte(statusNoteOn) | byte(channel), byte(note), byte(velocity)}
}

func encodeNoteOff(channel Channel, note, velocity int) []byte {
	return []byte{byte(statusNoteOff) | byte(channel), byte(note), byte(velocity)}
}

func encodePitchBend(channel Channel, value14bit int) []byte {
	return []byte{byte(statusPitchBend) | byte(channel), byte(value14bit & 0x7F), byte((value14bit >> 7) & 0x7F)}
}

func encodeChannelAftertouch(channel Channel, value int) []byte {
	return []byte{byte(statusChannelPressure) | byte(channel), byte(value)}
}

// relativeDelta interprets a 7-bit CC value as a signed delta using the
// two's-complement-around-64 convention: 1-63 are positive deltas, 64 is
// no change, 65-127 are negative deltas.
func relativeDelta(ccValue int) int {
	if ccValue == 64 {
		return 0
	}
	if ccValue <= 63 {
		return ccValue
	}
	return ccValue - 128
}
