package osc

import (
	"testing"

	goosc "github.com/hypebeast/go-osc/osc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schollz/sushigo/internal/controller"
	"github.com/schollz/sushigo/internal/id"
)

func TestArgHelpersExtractTypedArguments(t *testing.T) {
	msg := goosc.NewMessage("/test")
	msg.Append(float32(0.5))
	msg.Append(int32(3))
	msg.Append("hello")

	f, ok := floatArg(msg, 0)
	require.True(t, ok)
	assert.InDelta(t, 0.5, f, 0.0001)

	i, ok := intArg(msg, 1)
	require.True(t, ok)
	assert.Equal(t, 3, i)

	s, ok := stringArg(msg, 2)
	require.True(t, ok)
	assert.Equal(t, "hello", s)

	_, ok = floatArg(msg, 99)
	assert.False(t, ok)
}

func TestLastSegmentSplitsOnFinalSlash(t *testing.T) {
	assert.Equal(t, "cutoff", lastSegment("/parameter/synth/cutoff"))
	assert.Equal(t, "drums", lastSegment("/keyboard_event/drums"))
	assert.Equal(t, "noSlash", lastSegment("noSlash"))
}

func TestPlayingModeFromString(t *testing.T) {
	mode, ok := playingModeFromString("playing")
	require.True(t, ok)
	assert.Equal(t, controller.PlayingPlaying, mode)

	_, ok = playingModeFromString("bogus")
	assert.False(t, ok)
}

func TestSyncModeFromString(t *testing.T) {
	mode, ok := syncModeFromString("ableton_link")
	require.True(t, ok)
	assert.Equal(t, controller.SyncLink, mode)

	_, ok = syncModeFromString("bogus")
	assert.False(t, ok)
}

func TestConnectFromParameterRejectsUnknownProcessor(t *testing.T) {
	f := newFacade(t)
	fe := NewFrontend(nil, f, "127.0.0.1", 0, 0)
	t.Cleanup(fe.Close)

	assert.False(t, fe.ConnectFromParameter("no-such-processor", "cutoff"))
}

func TestEnabledParameterOutputsIsSortedAndEmptyByDefault(t *testing.T) {
	f := newFacade(t)
	fe := NewFrontend(nil, f, "127.0.0.1", 0, 0)
	t.Cleanup(fe.Close)

	assert.Empty(t, fe.EnabledParameterOutputs())

	fe.mu.Lock()
	fe.enabled[id.ObjectId(5)] = true
	fe.enabled[id.ObjectId(2)] = true
	fe.mu.Unlock()

	assert.Equal(t, []id.ObjectId{2, 5}, fe.EnabledParameterOutputs())
}

func TestFrontendSaveStateSetStateRoundTrips(t *testing.T) {
	f := newFacade(t)
	fe := NewFrontend(nil, f, "127.0.0.1", 0, 0)
	t.Cleanup(fe.Close)

	fe.mu.Lock()
	fe.enabled[id.ObjectId(7)] = true
	fe.mu.Unlock()

	data := fe.SaveState()
	require.NotEmpty(t, data)

	fe2 := NewFrontend(nil, f, "127.0.0.1", 0, 0)
	t.Cleanup(fe2.Close)
	require.NoError(t, fe2.SetState(data))
	assert.Equal(t, fe.EnabledParameterOutputs(), fe2.EnabledParameterOutputs())
}
