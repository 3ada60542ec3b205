package controller

import (
	"sync"

	"github.com/schollz/sushigo/internal/engine"
	"github.com/schollz/sushigo/internal/id"
)

// AudioRoutingController owns the engine-channel <-> track-channel
// connection lists for input and output, in insertion order (testable
// property: connections enumerate in the order they were made).
type AudioRoutingController struct {
	f *Facade

	mu  sync.Mutex
	in  []engine.AudioConnection
	out []engine.AudioConnection
}

func newAudioRoutingController(f *Facade) *AudioRoutingController {
	return &AudioRoutingController{f: f}
}

func (c *AudioRoutingController) GetAllInputConnections() []engine.AudioConnection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]engine.AudioConnection(nil), c.in...)
}

func (c *AudioRoutingController) GetAllOutputConnections() []engine.AudioConnection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]engine.AudioConnection(nil), c.out...)
}

func (c *AudioRoutingController) ConnectInputChannelToTrack(trackId id.ObjectId, engineChannel, trackChannel int) ControlStatus {
	return c.connect(&c.in, trackId, engineChannel, trackChannel)
}

func (c *AudioRoutingController) ConnectOutputChannelToTrack(trackId id.ObjectId, engineChannel, trackChannel int) ControlStatus {
	return c.connect(&c.out, trackId, engineChannel, trackChannel)
}

func (c *AudioRoutingController) connect(list *[]engine.AudioConnection, trackId id.ObjectId, engineChannel, trackChannel int) ControlStatus {
	if _, ok := c.f.container.Track(trackId); !ok {
		return StatusNotFound
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, conn := range *list {
		if conn.TrackId == trackId && conn.EngineChannel == engineChannel && conn.TrackChannel == trackChannel {
			return StatusOk // idempotent
		}
	}
	*list = append(*list, engine.AudioConnection{EngineChannel: engineChannel, TrackChannel: trackChannel, TrackId: trackId})
	return StatusOk
}

func (c *AudioRoutingController) DisconnectInput(trackId id.ObjectId, engineChannel, trackChannel int) ControlStatus {
	return c.disconnect(&c.in, trackId, engineChannel, trackChannel)
}

func (c *AudioRoutingController) DisconnectOutput(trackId id.ObjectId, engineChannel, trackChannel int) ControlStatus {
	return c.disconnect(&c.out, trackId, engineChannel, trackChannel)
}

func (c *AudioRoutingController) disconnect(list *[]engine.AudioConnection, trackId id.ObjectId, engineChannel, trackChannel int) ControlStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, conn := range *list {
		if conn.TrackId == trackId && conn.EngineChannel == engineChannel && conn.TrackChannel == trackChannel {
			*list = append((*list)[:i], (*list)[i+1:]...)
			return StatusOk
		}
	}
	return StatusNotFound
}

// DisconnectAllInputsFromTrack removes every input row for trackId from
// the connection list in a single pass and always returns StatusOk; no
// per-row disconnect is issued and no per-row status is produced.
func (c *AudioRoutingController) DisconnectAllInputsFromTrack(trackId id.ObjectId) ControlStatus {
	return c.disconnectAll(&c.in, trackId)
}

func (c *AudioRoutingController) DisconnectAllOutputsFromTrack(trackId id.ObjectId) ControlStatus {
	return c.disconnectAll(&c.out, trackId)
}

func (c *AudioRoutingController) disconnectAll(list *[]engine.AudioConnection, trackId id.ObjectId) ControlStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	worst := StatusOk
	kept := (*list)[:0]
	for _, conn := range *list {
		if conn.TrackId == trackId {
			continue
		}
		kept = append(kept, conn)
	}
	*list = kept
	return worst
}

// onTrackDeleted purges every audio routing row referencing trackId,
// wired to the audio-graph delete_track mutation.
func (c *AudioRoutingController) onTrackDeleted(trackId id.ObjectId) {
	c.mu.Lock()
	defer c.mu.Unlock()
	filter := func(list []engine.AudioConnection) []engine.AudioConnection {
		kept := list[:0]
		for _, conn := range list {
			if conn.TrackId != trackId {
				kept = append(kept, conn)
			}
		}
		return kept
	}
	c.in = filter(c.in)
	c.out = filter(c.out)
}
