package engine

import (
	"testing"

	"github.com/schollz/sushigo/internal/id"
	"github.com/stretchr/testify/assert"
)

func newTestContainer() (*Container, *id.Generator) {
	return NewContainer(), id.NewGenerator()
}

func TestAddAndLookupProcessor(t *testing.T) {
	c, gen := newTestContainer()
	p := NewProcessor(gen.Next(), "G1", "Gain", "sushi.testing.gain", PluginInternal, 2)
	assert.True(t, c.AddProcessor(p))

	got, ok := c.Processor(p.Id())
	assert.True(t, ok)
	assert.Equal(t, p, got)

	byName, ok := c.ProcessorByName("G1")
	assert.True(t, ok)
	assert.Equal(t, p.Id(), byName.Id())
}

func TestAddProcessorDuplicateName(t *testing.T) {
	c, gen := newTestContainer()
	p1 := NewProcessor(gen.Next(), "G1", "Gain", "", PluginInternal, 2)
	p2 := NewProcessor(gen.Next(), "G1", "Gain2", "", PluginInternal, 2)
	assert.True(t, c.AddProcessor(p1))
	assert.False(t, c.AddProcessor(p2))
}

func TestTrackLifecycleAndMembership(t *testing.T) {
	c, gen := newTestContainer()
	trackId := gen.Next()
	track := NewTrack(trackId, "T1", "T1", TrackRegular, 2, 1)
	assert.True(t, c.AddTrack(track))

	procId := gen.Next()
	p := NewProcessor(procId, "G1", "Gain", "sushi.testing.gain", PluginInternal, 2)
	assert.True(t, c.AddProcessor(p))

	assert.True(t, c.AddToTrack(procId, trackId, id.Invalid, false))

	procs, ok := c.TrackProcessors(trackId)
	assert.True(t, ok)
	assert.Len(t, procs, 1)
	assert.Equal(t, procId, procs[0].Id())

	owner, ok := c.OwningTrack(procId)
	assert.True(t, ok)
	assert.Equal(t, trackId, owner)

	// Cannot remove a processor still attached to a track.
	assert.False(t, c.RemoveProcessor(procId))
	// Cannot remove a non-empty track.
	assert.False(t, c.RemoveTrack(trackId))

	assert.True(t, c.RemoveFromTrack(procId, trackId))
	assert.True(t, c.RemoveProcessor(procId))
	assert.True(t, c.RemoveTrack(trackId))
}

func TestAddToTrackUnknownIds(t *testing.T) {
	c, gen := newTestContainer()
	trackId := gen.Next()
	track := NewTrack(trackId, "T1", "T1", TrackRegular, 2, 1)
	assert.True(t, c.AddTrack(track))

	assert.False(t, c.AddToTrack(gen.Next(), trackId, id.Invalid, false))
	assert.False(t, c.AddToTrack(gen.Next(), gen.Next(), id.Invalid, false))
}

func TestAddToTrackBeforeAnchor(t *testing.T) {
	c, gen := newTestContainer()
	trackId := gen.Next()
	track := NewTrack(trackId, "T1", "T1", TrackRegular, 2, 1)
	assert.True(t, c.AddTrack(track))

	p1, p2, p3 := gen.Next(), gen.Next(), gen.Next()
	for _, pid := range []id.ObjectId{p1, p2, p3} {
		assert.True(t, c.AddProcessor(NewProcessor(pid, pid.String(), "", "", PluginInternal, 2)))
	}

	assert.True(t, c.AddToTrack(p1, trackId, id.Invalid, false))
	assert.True(t, c.AddToTrack(p2, trackId, id.Invalid, false))
	// Insert p3 before p2.
	assert.True(t, c.AddToTrack(p3, trackId, p2, true))

	procs, _ := c.TrackProcessors(trackId)
	ids := []id.ObjectId{procs[0].Id(), procs[1].Id(), procs[2].Id()}
	assert.Equal(t, []id.ObjectId{p1, p3, p2}, ids)
}

func TestAddToTrackBeforeUnknownAnchorFails(t *testing.T) {
	c, gen := newTestContainer()
	trackId := gen.Next()
	assert.True(t, c.AddTrack(NewTrack(trackId, "T1", "T1", TrackRegular, 2, 1)))

	p1 := gen.Next()
	assert.True(t, c.AddProcessor(NewProcessor(p1, "p1", "", "", PluginInternal, 2)))

	notInChain := gen.Next()
	assert.False(t, c.AddToTrack(p1, trackId, notInChain, true))
	_, onTrack := c.OwningTrack(p1)
	assert.False(t, onTrack)
}

func TestAtMostOnePreAndPostTrack(t *testing.T) {
	c, gen := newTestContainer()
	assert.True(t, c.AddTrack(NewTrack(gen.Next(), "pre1", "", TrackPre, 2, 0)))
	assert.False(t, c.AddTrack(NewTrack(gen.Next(), "pre2", "", TrackPre, 2, 0)))
	assert.True(t, c.AddTrack(NewTrack(gen.Next(), "post1", "", TrackPost, 2, 0)))
	assert.False(t, c.AddTrack(NewTrack(gen.Next(), "post2", "", TrackPost, 2, 0)))
}

func TestAllTracksDeterministicOrder(t *testing.T) {
	c, gen := newTestContainer()
	names := []string{"T1", "T2", "T3"}
	for _, n := range names {
		assert.True(t, c.AddTrack(NewTrack(gen.Next(), n, n, TrackRegular, 2, 1)))
	}
	all := c.AllTracks()
	assert.Len(t, all, 3)
	for i, n := range names {
		assert.Equal(t, n, all[i].Name())
	}
}
