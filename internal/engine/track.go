package engine

import (
	"sync"

	"github.com/schollz/sushigo/internal/id"
)

// TrackType distinguishes the track variants of §3. A track's Channels
// field is meaningful for Regular tracks, Buses for Multibus tracks; Pre
// and Post tracks are singletons with fixed engine-wide channel counts.
type TrackType int

const (
	TrackRegular TrackType = iota
	TrackMultibus
	TrackPre
	TrackPost
)

// AudioConnection binds an engine I/O channel to a track channel.
type AudioConnection struct {
	EngineChannel int
	TrackChannel  int
	TrackId       id.ObjectId
}

// Track is a processor that owns an ordered chain of child processors
// plus channel/bus topology and an audio I/O mapping.
type Track struct {
	*Processor

	mu      sync.RWMutex
	kind    TrackType
	channels int
	buses    int
	chain    []id.ObjectId // ordered child processor ids
}

func NewTrack(trackId id.ObjectId, name, label string, kind TrackType, channels, buses int) *Track {
	return &Track{
		Processor: NewProcessor(trackId, name, label, "", PluginInternal, channels),
		kind:      kind,
		channels:  channels,
		buses:     buses,
	}
}

func (t *Track) Kind() TrackType { return t.kind }

func (t *Track) Channels() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.channels
}

func (t *Track) Buses() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.buses
}

// Chain returns the ordered list of child processor ids. The returned
// slice is a copy; callers may not mutate track membership through it.
func (t *Track) Chain() []id.ObjectId {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]id.ObjectId, len(t.chain))
	copy(out, t.chain)
	return out
}

func (t *Track) contains(procId id.ObjectId) (int, bool) {
	for i, p := range t.chain {
		if p == procId {
			return i, true
		}
	}
	return -1, false
}

// insert places procId into the chain, before the "before" anchor if one
// is given (id.Invalid means append at the end). Returns false if before
// is non-nil but not found in the chain.
func (t *Track) insert(procId id.ObjectId, before id.ObjectId, hasBefore bool) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !hasBefore || before == id.Invalid {
		t.chain = append(t.chain, procId)
		return true
	}
	idx, ok := t.contains(before)
	if !ok {
		return false
	}
	t.chain = append(t.chain, 0)
	copy(t.chain[idx+1:], t.chain[idx:])
	t.chain[idx] = procId
	return true
}

// remove deletes procId from the chain, returning its former index (or
// -1 if it was not present).
func (t *Track) remove(procId id.ObjectId) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	idx, ok := t.contains(procId)
	if !ok {
		return -1
	}
	t.chain = append(t.chain[:idx], t.chain[idx+1:]...)
	return idx
}

func (t *Track) Has(procId id.ObjectId) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.contains(procId)
	return ok
}

func (t *Track) Empty() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.chain) == 0
}
