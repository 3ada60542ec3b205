// Package engine implements the graph-owning, RT-facing components of
// the control plane: the processor container, transport and performance
// timer.
package engine

import (
	"sort"
	"sync"

	"github.com/schollz/sushigo/internal/id"
)

// Container is the owning registry of processors and tracks. It never
// allocates or blocks in its hot read paths and returns success/failure
// only; it never panics.
type Container struct {
	mu sync.RWMutex

	processors   map[id.ObjectId]*Processor
	processorsByName map[string]id.ObjectId

	tracks     map[id.ObjectId]*Track
	tracksByName map[string]id.ObjectId
	trackOrder []id.ObjectId // deterministic iteration order

	// owningTrack maps a processor id to the track it currently belongs
	// to, if any.
	owningTrack map[id.ObjectId]id.ObjectId

	hasPre  bool
	hasPost bool
}

func NewContainer() *Container {
	return &Container{
		processors:       make(map[id.ObjectId]*Processor),
		processorsByName: make(map[string]id.ObjectId),
		tracks:           make(map[id.ObjectId]*Track),
		tracksByName:     make(map[string]id.ObjectId),
		owningTrack:      make(map[id.ObjectId]id.ObjectId),
	}
}

// AddProcessor registers a free-standing processor. Fails if the name is
// already taken by another processor.
func (c *Container) AddProcessor(p *Processor) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.processorsByName[p.Name()]; exists {
		return false
	}
	c.processors[p.Id()] = p
	c.processorsByName[p.Name()] = p.Id()
	return true
}

// AddTrack registers a track, enforcing the at-most-one-pre/post
// invariant and unique track names.
func (c *Container) AddTrack(t *Track) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.tracksByName[t.Name()]; exists {
		return false
	}
	if t.Kind() == TrackPre && c.hasPre {
		return false
	}
	if t.Kind() == TrackPost && c.hasPost {
		return false
	}
	c.tracks[t.Id()] = t
	c.tracksByName[t.Name()] = t.Id()
	c.trackOrder = append(c.trackOrder, t.Id())
	c.processors[t.Id()] = t.Processor
	c.processorsByName[t.Name()] = t.Id()
	if t.Kind() == TrackPre {
		c.hasPre = true
	}
	if t.Kind() == TrackPost {
		c.hasPost = true
	}
	return true
}

// RemoveProcessor fails if the processor is still attached to a track.
func (c *Container) RemoveProcessor(procId id.ObjectId) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.processors[procId]
	if !ok {
		return false
	}
	if _, onTrack := c.owningTrack[procId]; onTrack {
		return false
	}
	delete(c.processors, procId)
	delete(c.processorsByName, p.Name())
	return true
}

// RemoveTrack fails if the track's chain is non-empty.
func (c *Container) RemoveTrack(trackId id.ObjectId) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.tracks[trackId]
	if !ok {
		return false
	}
	if !t.Empty() {
		return false
	}
	delete(c.tracks, trackId)
	delete(c.tracksByName, t.Name())
	delete(c.processors, trackId)
	delete(c.processorsByName, t.Name())
	for i, tid := range c.trackOrder {
		if tid == trackId {
			c.trackOrder = append(c.trackOrder[:i], c.trackOrder[i+1:]...)
			break
		}
	}
	if t.Kind() == TrackPre {
		c.hasPre = false
	}
	if t.Kind() == TrackPost {
		c.hasPost = false
	}
	return true
}

// AddToTrack attaches procId to trackId's chain, optionally before an
// existing anchor processor. Fails if either id is unknown, the
// processor is already on a track, or before is set but not found in
// trackId's chain.
func (c *Container) AddToTrack(procId, trackId id.ObjectId, before id.ObjectId, hasBefore bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.processors[procId]; !ok {
		return false
	}
	t, ok := c.tracks[trackId]
	if !ok {
		return false
	}
	if _, onTrack := c.owningTrack[procId]; onTrack {
		return false
	}
	if !t.insert(procId, before, hasBefore) {
		return false
	}
	c.owningTrack[procId] = trackId
	return true
}

// RemoveFromTrack detaches procId from trackId's chain.
func (c *Container) RemoveFromTrack(procId, trackId id.ObjectId) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.tracks[trackId]
	if !ok {
		return false
	}
	if t.remove(procId) < 0 {
		return false
	}
	delete(c.owningTrack, procId)
	return true
}

func (c *Container) Processor(procId id.ObjectId) (*Processor, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.processors[procId]
	return p, ok
}

func (c *Container) ProcessorByName(name string) (*Processor, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	pid, ok := c.processorsByName[name]
	if !ok {
		return nil, false
	}
	return c.processors[pid], true
}

func (c *Container) Track(trackId id.ObjectId) (*Track, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.tracks[trackId]
	return t, ok
}

func (c *Container) TrackByName(name string) (*Track, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	tid, ok := c.tracksByName[name]
	if !ok {
		return nil, false
	}
	return c.tracks[tid], true
}

// OwningTrack reports which track, if any, currently owns procId.
func (c *Container) OwningTrack(procId id.ObjectId) (id.ObjectId, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	tid, ok := c.owningTrack[procId]
	return tid, ok
}

// AllTracks returns tracks in deterministic (insertion) order.
func (c *Container) AllTracks() []*Track {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*Track, 0, len(c.trackOrder))
	for _, tid := range c.trackOrder {
		out = append(out, c.tracks[tid])
	}
	return out
}

// AllProcessors returns every registered processor (including tracks
// themselves), ordered by id for determinism.
func (c *Container) AllProcessors() []*Processor {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*Processor, 0, len(c.processors))
	for _, p := range c.processors {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Id() < out[j].Id() })
	return out
}

// TrackProcessors returns the processors on trackId's chain in chain
// order.
func (c *Container) TrackProcessors(trackId id.ObjectId) ([]*Processor, bool) {
	c.mu.RLock()
	t, ok := c.tracks[trackId]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	chain := t.Chain()
	out := make([]*Processor, 0, len(chain))
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, pid := range chain {
		if p, ok := c.processors[pid]; ok {
			out = append(out, p)
		}
	}
	return out, true
}
