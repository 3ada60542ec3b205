package controller

import (
	"github.com/schollz/sushigo/internal/dispatcher"
	"github.com/schollz/sushigo/internal/id"
	"github.com/schollz/sushigo/internal/midi"
)

// MidiController wraps internal/midi.Dispatcher. Every mutation goes
// through the event dispatcher as a lambda event, per §4.G, even though
// the underlying tables are already internally synchronised — this
// keeps MIDI routing changes ordered with respect to every other
// control-plane mutation.
type MidiController struct {
	f *Facade
}

func (c *MidiController) ConnectKbdInputToTrack(port int, channel MidiChannel, trackId id.ObjectId, raw bool) ControlStatus {
	return c.runLambda(func() ControlStatus {
		return toExternalConnectStatus(c.f.midiDisp.ConnectKbdInputToTrack(port, toInternalChannel(channel), trackId, raw))
	})
}

func (c *MidiController) DisconnectKbdInputFromTrack(port int, channel MidiChannel, trackId id.ObjectId) ControlStatus {
	return c.runLambda(func() ControlStatus {
		return toExternalConnectStatus(c.f.midiDisp.DisconnectKbdInputFromTrack(port, toInternalChannel(channel), trackId))
	})
}

func (c *MidiController) ConnectKbdOutputFromTrack(trackId id.ObjectId, port int, channel MidiChannel) ControlStatus {
	return c.runLambda(func() ControlStatus {
		return toExternalConnectStatus(c.f.midiDisp.ConnectKbdOutputFromTrack(trackId, port, toInternalChannel(channel)))
	})
}

func (c *MidiController) DisconnectKbdOutputFromTrack(trackId id.ObjectId, port int, channel MidiChannel) ControlStatus {
	return c.runLambda(func() ControlStatus {
		return toExternalConnectStatus(c.f.midiDisp.DisconnectKbdOutputFromTrack(trackId, port, toInternalChannel(channel)))
	})
}

func (c *MidiController) ConnectCCToParameter(port int, channel MidiChannel, cc int, procId, paramId id.ObjectId, min, max float64, relative bool) ControlStatus {
	return c.runLambda(func() ControlStatus {
		return toExternalConnectStatus(c.f.midiDisp.ConnectCCToParameter(port, toInternalChannel(channel), cc, procId, paramId, min, max, relative))
	})
}

func (c *MidiController) DisconnectCCFromParameter(port int, channel MidiChannel, cc int, procId, paramId id.ObjectId) ControlStatus {
	return c.runLambda(func() ControlStatus {
		return toExternalConnectStatus(c.f.midiDisp.DisconnectCCFromParameter(port, toInternalChannel(channel), cc, procId, paramId))
	})
}

func (c *MidiController) DisconnectAllCCFromProcessor(procId id.ObjectId) ControlStatus {
	return c.runLambda(func() ControlStatus {
		c.f.midiDisp.DisconnectAllCCFromProcessor(procId)
		return StatusOk
	})
}

func (c *MidiController) ConnectPCToProcessor(port int, channel MidiChannel, procId id.ObjectId) ControlStatus {
	return c.runLambda(func() ControlStatus {
		return toExternalConnectStatus(c.f.midiDisp.ConnectPCToProcessor(port, toInternalChannel(channel), procId))
	})
}

func (c *MidiController) DisconnectPCFromProcessor(port int, channel MidiChannel, procId id.ObjectId) ControlStatus {
	return c.runLambda(func() ControlStatus {
		return toExternalConnectStatus(c.f.midiDisp.DisconnectPCFromProcessor(port, toInternalChannel(channel), procId))
	})
}

func (c *MidiController) DisconnectAllPCFromProcessor(procId id.ObjectId) ControlStatus {
	return c.runLambda(func() ControlStatus {
		c.f.midiDisp.DisconnectAllPCFromProcessor(procId)
		return StatusOk
	})
}

func (c *MidiController) SetMidiClockOutputEnabled(port int, enabled bool) ControlStatus {
	return c.runLambda(func() ControlStatus {
		c.f.midiDisp.EnableMidiClock(port, enabled)
		return StatusOk
	})
}

func (c *MidiController) GetMidiClockOutputEnabled(port int) bool {
	return c.f.midiDisp.MidiClockEnabled(port)
}

// runLambda posts fn onto the worker thread and returns ok as soon as it
// is enqueued, per §5: no public method blocks on the worker thread's
// execution of the event. A failure inside fn is logged, not returned —
// the caller learns of mutations only through the notification path.
func (c *MidiController) runLambda(fn func() ControlStatus) ControlStatus {
	if c.f.midiDisp == nil {
		return StatusUnsupportedOperation
	}
	err := c.f.events.PostEvent(&dispatcher.Event{
		Kind:      dispatcher.EventLambda,
		Timestamp: dispatcher.IMMEDIATE_PROCESS,
		Lambda: func() (dispatcher.EventStatus, *dispatcher.Notification) {
			if status := fn(); status != StatusOk {
				c.f.logger.Printf("midi: mutation failed with status %s", status)
			}
			return dispatcher.HandledOk, nil
		},
	})
	if err != nil {
		return StatusError
	}
	return StatusOk
}

func toExternalConnectStatus(s midi.ConnectStatus) ControlStatus {
	switch s {
	case midi.StatusOk:
		return StatusOk
	case midi.StatusInvalidPort, midi.StatusInvalidChannel, midi.StatusInvalidId:
		return StatusInvalidArguments
	case midi.StatusAlreadyConnected:
		return StatusOk
	case midi.StatusNotConnected:
		return StatusNotFound
	default:
		return StatusError
	}
}
