package controller

import (
	"time"

	"github.com/schollz/sushigo/internal/dispatcher"
	"github.com/schollz/sushigo/internal/session"
)

// SessionController exposes save_session/restore_session (§4.J),
// delegating capture and graph-replacement to internal/session while
// keeping every mutation on the worker thread via a lambda event.
type SessionController struct {
	f *Facade
}

// SaveSession captures a full State snapshot. Reads only, so it is not
// posted through the event queue.
func (c *SessionController) SaveSession() session.State {
	s := session.Save(c.dependencies())
	s.SaveDate = time.Now().UTC().Format(time.RFC3339)
	return s
}

// SaveSessionBytes is the gzip+JSON wire form written to disk.
func (c *SessionController) SaveSessionBytes() ([]byte, ControlStatus) {
	data, err := c.SaveSession().Marshal()
	if err != nil {
		c.f.logger.Printf("session: marshal failed: %v", err)
		return nil, StatusError
	}
	return data, StatusOk
}

// RestoreSession replaces the running graph/transport/MIDI/OSC state
// with s, as a single lambda event so the whole swap is atomic from the
// worker thread's perspective. Validate runs synchronously up front so
// an invalid session is rejected before anything is touched; once
// enqueued, the swap itself is not awaited — restore is the one
// operation that is logically blocking from the client's perspective
// but is still modelled as an event that returns ok as soon as it is
// posted (§5), with the outcome observable only via the notification
// path that follows.
func (c *SessionController) RestoreSession(s session.State) ControlStatus {
	if err := session.Validate(c.dependencies(), s); err != nil {
		c.f.logger.Printf("session: restore rejected: %v", err)
		return StatusInvalidArguments
	}
	err := c.f.events.PostEvent(&dispatcher.Event{
		Kind:      dispatcher.EventLambda,
		Timestamp: dispatcher.IMMEDIATE_PROCESS,
		Lambda: func() (dispatcher.EventStatus, *dispatcher.Notification) {
			if err := session.Restore(c.dependencies(), s); err != nil {
				c.f.logger.Printf("session: restore failed: %v", err)
				return dispatcher.EventError, nil
			}
			return dispatcher.HandledOk, nil
		},
	})
	if err != nil {
		return StatusError
	}
	return StatusOk
}

// RestoreSessionBytes decodes the gzip+JSON wire form before restoring.
func (c *SessionController) RestoreSessionBytes(data []byte) ControlStatus {
	s, err := session.Unmarshal(data)
	if err != nil {
		c.f.logger.Printf("session: unmarshal failed: %v", err)
		return StatusInvalidArguments
	}
	return c.RestoreSession(s)
}

func (c *SessionController) dependencies() session.Dependencies {
	return session.Dependencies{
		Container:    c.f.container,
		Transport:    c.f.transport,
		Midi:         c.f.midiDisp,
		Osc:          c.f.oscStateAdapter(),
		AudioRouting: audioRoutingStateAdapter{c: c.f.AudioRouting},
		IdGen:        c.f.idGen,
		Build: session.BuildInfo{
			Version:        c.f.buildInfo.Version,
			BuildOptions:   c.f.buildInfo.BuildOptions,
			BuildDate:      c.f.buildInfo.BuildDate,
			Commit:         c.f.buildInfo.Commit,
			AudioBlockSize: c.f.buildInfo.BlockSize,
		},
	}
}
