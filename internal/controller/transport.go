package controller

import (
	"github.com/schollz/sushigo/internal/dispatcher"
	"github.com/schollz/sushigo/internal/engine"
)

func engineTimeSig(sig TimeSignature) engine.TimeSignature {
	return engine.TimeSignature{Numerator: sig.Numerator, Denominator: sig.Denominator}
}

// TransportController wraps engine.Transport. Getters read the atomic
// snapshot directly; setters post a lambda event so every transport
// mutation is still funneled through the dispatcher, matching the rest
// of the control plane's single entry point for state changes.
type TransportController struct {
	f *Facade
}

func (c *TransportController) GetPlayingMode() PlayingMode {
	return toExternalPlayingMode(c.f.transport.PlayingMode())
}

func (c *TransportController) SetPlayingMode(mode PlayingMode) ControlStatus {
	return c.f.postTransportLambda(func() {
		c.f.transport.SetPlayingMode(toInternalPlayingMode(mode))
	})
}

func (c *TransportController) GetSyncMode() SyncMode {
	return toExternalSyncMode(c.f.transport.SyncMode())
}

func (c *TransportController) SetSyncMode(mode SyncMode) ControlStatus {
	return c.f.postTransportLambda(func() {
		c.f.transport.SetSyncMode(toInternalSyncMode(mode))
	})
}

func (c *TransportController) GetTempo() float64 {
	return c.f.transport.Tempo()
}

func (c *TransportController) SetTempo(bpm float64) ControlStatus {
	if bpm <= 0 {
		return StatusInvalidArguments
	}
	return c.f.postTransportLambda(func() {
		c.f.transport.SetTempo(bpm)
	})
}

func (c *TransportController) GetTimeSignature() TimeSignature {
	sig := c.f.transport.TimeSignature()
	return TimeSignature{Numerator: sig.Numerator, Denominator: sig.Denominator}
}

func (c *TransportController) SetTimeSignature(sig TimeSignature) ControlStatus {
	if sig.Numerator <= 0 || sig.Denominator <= 0 {
		return StatusInvalidArguments
	}
	return c.f.postTransportLambda(func() {
		c.f.transport.SetTimeSignature(engineTimeSig(sig))
	})
}

func (c *TransportController) GetSamplerate() float64 {
	return c.f.transport.SampleRate()
}

// postTransportLambda posts a fire-and-forget lambda that mutates
// transport then publishes a transport-update notification, returning ok
// immediately per §5's non-blocking public API rule.
func (f *Facade) postTransportLambda(mutate func()) ControlStatus {
	err := f.events.PostEvent(&dispatcher.Event{
		Kind:      dispatcher.EventLambda,
		Timestamp: dispatcher.IMMEDIATE_PROCESS,
		Lambda: func() (dispatcher.EventStatus, *dispatcher.Notification) {
			mutate()
			sig := f.transport.TimeSignature()
			return dispatcher.HandledOk, &dispatcher.Notification{
				Kind:       dispatcher.NotificationTransportUpdate,
				FloatValue: f.transport.Tempo(),
				IntValueA:  sig.Numerator,
				IntValueB:  sig.Denominator,
			}
		},
	})
	if err != nil {
		return StatusError
	}
	return StatusOk
}
