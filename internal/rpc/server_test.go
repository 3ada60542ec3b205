package rpc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schollz/sushigo/internal/controller"
	"github.com/schollz/sushigo/internal/dispatcher"
	"github.com/schollz/sushigo/internal/engine"
	"github.com/schollz/sushigo/internal/id"
	"github.com/schollz/sushigo/internal/midi"
)

func TestNewExposesFacade(t *testing.T) {
	events := dispatcher.New(nil)
	t.Cleanup(events.Stop)
	container := engine.NewContainer()
	transport := engine.NewTransport(48000)
	timer := engine.NewPerformanceTimer()
	midiDisp := midi.NewDispatcher(nil, container, transport, events, nil)
	t.Cleanup(midiDisp.Close)
	f := controller.New(nil, id.NewGenerator(), container, transport, timer, events, midiDisp, controller.BuildInfo{})

	s := New(nil, f)
	assert.Same(t, f, s.Facade())
}

func TestListenReturnsNilWithNoTransportWired(t *testing.T) {
	events := dispatcher.New(nil)
	t.Cleanup(events.Stop)
	container := engine.NewContainer()
	transport := engine.NewTransport(48000)
	timer := engine.NewPerformanceTimer()
	midiDisp := midi.NewDispatcher(nil, container, transport, events, nil)
	t.Cleanup(midiDisp.Close)
	f := controller.New(nil, id.NewGenerator(), container, transport, timer, events, midiDisp, controller.BuildInfo{})

	s := New(nil, f)
	require.NoError(t, s.Listen(":0"))
}
