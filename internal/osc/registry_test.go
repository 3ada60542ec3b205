package osc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schollz/sushigo/internal/controller"
	"github.com/schollz/sushigo/internal/dispatcher"
	"github.com/schollz/sushigo/internal/engine"
	"github.com/schollz/sushigo/internal/id"
	"github.com/schollz/sushigo/internal/midi"
)

func newFacade(t *testing.T) *controller.Facade {
	t.Helper()
	events := dispatcher.New(nil)
	t.Cleanup(events.Stop)
	container := engine.NewContainer()
	transport := engine.NewTransport(48000)
	timer := engine.NewPerformanceTimer()
	midiDisp := midi.NewDispatcher(nil, container, transport, events, nil)
	t.Cleanup(midiDisp.Close)
	idGen := id.NewGenerator()
	return controller.New(nil, idGen, container, transport, timer, events, midiDisp, controller.BuildInfo{})
}

func waitForCondition(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("timed out waiting for condition")
}

func TestRegistryRegistersStaticEngineMethods(t *testing.T) {
	f := newFacade(t)
	r := NewRegistry(f)
	t.Cleanup(r.Close)

	kind, _, _, ok := r.Lookup("/engine/set_tempo")
	require.True(t, ok)
	assert.Equal(t, MethodEngineSetTempo, kind)

	kind, _, _, ok = r.Lookup("/engine/set_sync_mode")
	require.True(t, ok)
	assert.Equal(t, MethodEngineSetSyncMode, kind)
}

func TestAddMethodRejectsDuplicateAddressAndTypeTag(t *testing.T) {
	f := newFacade(t)
	r := NewRegistry(f)
	t.Cleanup(r.Close)

	h1 := r.AddMethod("/custom/address", "f", MethodParameter, id.Invalid, id.Invalid)
	require.NotEqual(t, InvalidHandle, h1)

	h2 := r.AddMethod("/custom/address", "f", MethodParameter, id.Invalid, id.Invalid)
	assert.Equal(t, InvalidHandle, h2)
}

func TestDeleteMethodIsNoOpOnUnknownHandle(t *testing.T) {
	f := newFacade(t)
	r := NewRegistry(f)
	t.Cleanup(r.Close)

	assert.NotPanics(t, func() { r.DeleteMethod(999999) })
}

func TestDeleteMethodRemovesRegisteredAddress(t *testing.T) {
	f := newFacade(t)
	r := NewRegistry(f)
	t.Cleanup(r.Close)

	h := r.AddMethod("/custom/removable", "i", MethodBypass, id.Invalid, id.Invalid)
	require.NotEqual(t, InvalidHandle, h)

	r.DeleteMethod(h)

	_, _, _, ok := r.Lookup("/custom/removable")
	assert.False(t, ok)
}

func TestCreatingProcessorAutoWiresBypassAddress(t *testing.T) {
	f := newFacade(t)
	r := NewRegistry(f)
	t.Cleanup(r.Close)

	trackId, status := f.AudioGraph.CreateTrack("lead", 2)
	require.Equal(t, controller.StatusOk, status)

	_, status = f.AudioGraph.CreateProcessorOnTrack("synth", "uid", "", controller.PluginInternal, trackId, id.Invalid, false)
	require.Equal(t, controller.StatusOk, status)

	waitForCondition(t, func() bool {
		_, _, _, ok := r.Lookup("/bypass/synth")
		return ok
	})
}

func TestCreatingTrackAutoWiresKeyboardEventAddress(t *testing.T) {
	f := newFacade(t)
	r := NewRegistry(f)
	t.Cleanup(r.Close)

	_, status := f.AudioGraph.CreateTrack("drums", 2)
	require.Equal(t, controller.StatusOk, status)

	waitForCondition(t, func() bool {
		kind, _, _, ok := r.Lookup("/keyboard_event/drums")
		return ok && kind == MethodKeyboardEvent
	})
}

func TestDeletingTrackPurgesItsAddresses(t *testing.T) {
	f := newFacade(t)
	r := NewRegistry(f)
	t.Cleanup(r.Close)

	trackId, status := f.AudioGraph.CreateTrack("bus", 2)
	require.Equal(t, controller.StatusOk, status)
	waitForCondition(t, func() bool {
		_, _, _, ok := r.Lookup("/keyboard_event/bus")
		return ok
	})

	status = f.AudioGraph.DeleteTrack(trackId)
	require.Equal(t, controller.StatusOk, status)

	waitForCondition(t, func() bool {
		_, _, _, ok := r.Lookup("/keyboard_event/bus")
		return !ok
	})
}

func TestSanitizeNameReplacesSpaces(t *testing.T) {
	assert.Equal(t, "lead_synth", sanitizeName("lead synth"))
	assert.Equal(t, "bass", sanitizeName("bass"))
}
