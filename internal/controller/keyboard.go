package controller

import (
	"github.com/schollz/sushigo/internal/dispatcher"
	"github.com/schollz/sushigo/internal/id"
)

// KeyboardController posts keyboard events timestamped IMMEDIATE_PROCESS,
// per §4.G.
type KeyboardController struct {
	f *Facade
}

func (c *KeyboardController) SendNoteOn(trackId id.ObjectId, channel int, note int, velocity float64) ControlStatus {
	return c.send(trackId, dispatcher.EventNoteOn, channel, note, velocity)
}

func (c *KeyboardController) SendNoteOff(trackId id.ObjectId, channel int, note int, velocity float64) ControlStatus {
	return c.send(trackId, dispatcher.EventNoteOff, channel, note, velocity)
}

func (c *KeyboardController) SendNoteAftertouch(trackId id.ObjectId, channel int, note int, value float64) ControlStatus {
	return c.send(trackId, dispatcher.EventNoteAftertouch, channel, note, value)
}

func (c *KeyboardController) SendAftertouch(trackId id.ObjectId, channel int, value float64) ControlStatus {
	return c.send(trackId, dispatcher.EventAftertouch, channel, 0, value)
}

func (c *KeyboardController) SendPitchBend(trackId id.ObjectId, channel int, value float64) ControlStatus {
	return c.send(trackId, dispatcher.EventPitchBend, channel, 0, value)
}

func (c *KeyboardController) SendModulation(trackId id.ObjectId, channel int, value float64) ControlStatus {
	return c.send(trackId, dispatcher.EventModulation, channel, 0, value)
}

func (c *KeyboardController) send(trackId id.ObjectId, kind dispatcher.EventKind, channel, note int, value float64) ControlStatus {
	if _, ok := c.f.container.Track(trackId); !ok {
		return StatusNotFound
	}
	err := c.f.events.PostEvent(&dispatcher.Event{
		Kind:       kind,
		Timestamp:  dispatcher.IMMEDIATE_PROCESS,
		TrackId:    trackId,
		Channel:    channel,
		Note:       note,
		Velocity:   value,
		FloatValue: value,
	})
	if err != nil {
		return StatusError
	}
	return StatusOk
}
