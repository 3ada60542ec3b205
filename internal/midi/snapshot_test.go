package midi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schollz/sushigo/internal/engine"
	"github.com/schollz/sushigo/internal/id"
)

func TestSnapshotRestoreRoundTrips(t *testing.T) {
	d, _, container, _ := newHarness(t)

	gen := id.NewGenerator()
	track := engine.NewTrack(gen.Next(), "lead", "lead", engine.TrackRegular, 2, 0)
	require.True(t, container.AddTrack(track))
	proc := engine.NewProcessor(gen.Next(), "synth", "synth", "uid", engine.PluginInternal, 2)
	cutoff := engine.ParameterDescriptor{Id: gen.Next(), Name: "cutoff", Type: engine.ParameterFloat, MinDomain: 0, MaxDomain: 1}
	proc.AddParameter(cutoff, engine.ParameterValue{})
	require.True(t, container.AddProcessor(proc))
	require.True(t, container.AddToTrack(proc.Id(), track.Id(), id.ObjectId(0), false))

	require.Equal(t, StatusOk, d.ConnectKbdInputToTrack(0, 0, track.Id(), false))
	require.Equal(t, StatusOk, d.ConnectKbdOutputFromTrack(track.Id(), 1, Omni))
	require.Equal(t, StatusOk, d.ConnectCCToParameter(0, 1, 74, proc.Id(), cutoff.Id, 0, 1, false))
	require.Equal(t, StatusOk, d.ConnectPCToProcessor(0, 2, proc.Id()))
	d.EnableMidiClock(0, true)

	snap := d.Snapshot()
	assert.Len(t, snap.KbdIn, 1)
	assert.Len(t, snap.KbdOut, 1)
	assert.Len(t, snap.CC, 1)
	assert.Len(t, snap.PC, 1)
	assert.Equal(t, []int{0}, snap.ClockEnabledPorts)

	fresh, _, freshContainer, _ := newHarness(t)
	require.True(t, freshContainer.AddTrack(track))
	require.True(t, freshContainer.AddProcessor(proc))
	require.True(t, freshContainer.AddToTrack(proc.Id(), track.Id(), id.ObjectId(0), false))

	fresh.Restore(snap)

	restored := fresh.Snapshot()
	assert.Equal(t, snap.KbdIn, restored.KbdIn)
	assert.Equal(t, snap.KbdOut, restored.KbdOut)
	assert.Equal(t, snap.CC, restored.CC)
	assert.Equal(t, snap.PC, restored.PC)
	assert.True(t, fresh.MidiClockEnabled(0))
}

func TestRestoreIsIdempotentOnAlreadyConnectedRows(t *testing.T) {
	d, _, container, _ := newHarness(t)
	gen := id.NewGenerator()
	track := engine.NewTrack(gen.Next(), "lead", "lead", engine.TrackRegular, 2, 0)
	require.True(t, container.AddTrack(track))
	require.Equal(t, StatusOk, d.ConnectKbdInputToTrack(0, 0, track.Id(), false))

	snap := d.Snapshot()
	assert.NotPanics(t, func() { d.Restore(snap) })
	assert.Len(t, d.Snapshot().KbdIn, 1)
}
