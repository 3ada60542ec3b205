package midi

import "github.com/schollz/sushigo/internal/id"

// tables holds the five routing maps of §4.E. Mutated only on the
// dispatcher's worker thread; the input path looks entries up under a
// reader lock that is never contested by another reader (see §5).
type tables struct {
	kbdIn  map[int]map[Channel][]*KbdInputConnection
	kbdOut map[id.ObjectId][]*KbdOutputConnection
	cc     map[int]map[Channel]map[int][]*CCConnection
	pc     map[int]map[Channel][]*PCConnection
	clock  map[int]bool
}

func newTables() *tables {
	return &tables{
		kbdIn:  make(map[int]map[Channel][]*KbdInputConnection),
		kbdOut: make(map[id.ObjectId][]*KbdOutputConnection),
		cc:     make(map[int]map[Channel]map[int][]*CCConnection),
		pc:     make(map[int]map[Channel][]*PCConnection),
		clock:  make(map[int]bool),
	}
}

func (t *tables) addKbdIn(c *KbdInputConnection) {
	if t.kbdIn[c.Port] == nil {
		t.kbdIn[c.Port] = make(map[Channel][]*KbdInputConnection)
	}
	t.kbdIn[c.Port][c.Channel] = append(t.kbdIn[c.Port][c.Channel], c)
}

func (t *tables) hasKbdIn(port int, channel Channel, trackId id.ObjectId) (*KbdInputConnection, bool) {
	for _, c := range t.kbdIn[port][channel] {
		if c.TrackId == trackId {
			return c, true
		}
	}
	return nil, false
}

func (t *tables) removeKbdIn(port int, channel Channel, trackId id.ObjectId) bool {
	list := t.kbdIn[port][channel]
	for i, c := range list {
		if c.TrackId == trackId {
			t.kbdIn[port][channel] = append(list[:i], list[i+1:]...)
			return true
		}
	}
	return false
}

func (t *tables) matchingKbdIn(port int, channel Channel) []*KbdInputConnection {
	var out []*KbdInputConnection
	byChan, ok := t.kbdIn[port]
	if !ok {
		return nil
	}
	out = append(out, byChan[channel]...)
	if channel != Omni {
		out = append(out, byChan[Omni]...)
	}
	return out
}

func (t *tables) addKbdOut(c *KbdOutputConnection) {
	t.kbdOut[c.TrackId] = append(t.kbdOut[c.TrackId], c)
}

func (t *tables) hasKbdOut(trackId id.ObjectId, port int, channel Channel) (int, bool) {
	for i, c := range t.kbdOut[trackId] {
		if c.Port == port && c.Channel == channel {
			return i, true
		}
	}
	return -1, false
}

func (t *tables) removeKbdOut(trackId id.ObjectId, port int, channel Channel) bool {
	idx, ok := t.hasKbdOut(trackId, port, channel)
	if !ok {
		return false
	}
	list := t.kbdOut[trackId]
	t.kbdOut[trackId] = append(list[:idx], list[idx+1:]...)
	return true
}

func (t *tables) addCC(c *CCConnection) {
	if t.cc[c.Port] == nil {
		t.cc[c.Port] = make(map[Channel]map[int][]*CCConnection)
	}
	if t.cc[c.Port][c.Channel] == nil {
		t.cc[c.Port][c.Channel] = make(map[int][]*CCConnection)
	}
	t.cc[c.Port][c.Channel][c.CC] = append(t.cc[c.Port][c.Channel][c.CC], c)
}

func (t *tables) findCC(port int, channel Channel, cc int, processorId, parameterId id.ObjectId) (*CCConnection, bool) {
	for _, c := range t.cc[port][channel][cc] {
		if c.ProcessorId == processorId && c.ParameterId == parameterId {
			return c, true
		}
	}
	return nil, false
}

func (t *tables) removeCC(port int, channel Channel, cc int, processorId, parameterId id.ObjectId) bool {
	list := t.cc[port][channel][cc]
	for i, c := range list {
		if c.ProcessorId == processorId && c.ParameterId == parameterId {
			t.cc[port][channel][cc] = append(list[:i], list[i+1:]...)
			return true
		}
	}
	return false
}

func (t *tables) matchingCC(port int, channel Channel, cc int) []*CCConnection {
	var out []*CCConnection
	byChan, ok := t.cc[port]
	if !ok {
		return nil
	}
	out = append(out, byChan[channel][cc]...)
	if channel != Omni {
		out = append(out, byChan[Omni][cc]...)
	}
	return out
}

func (t *tables) ccForProcessor(processorId id.ObjectId) []*CCConnection {
	var out []*CCConnection
	for _, byChan := range t.cc {
		for _, byCC := range byChan {
			for _, list := range byCC {
				for _, c := range list {
					if c.ProcessorId == processorId {
						out = append(out, c)
					}
				}
			}
		}
	}
	return out
}

func (t *tables) addPC(c *PCConnection) {
	if t.pc[c.Port] == nil {
		t.pc[c.Port] = make(map[Channel][]*PCConnection)
	}
	t.pc[c.Port][c.Channel] = append(t.pc[c.Port][c.Channel], c)
}

func (t *tables) findPC(port int, channel Channel, processorId id.ObjectId) (*PCConnection, bool) {
	for _, c := range t.pc[port][channel] {
		if c.ProcessorId == processorId {
			return c, true
		}
	}
	return nil, false
}

func (t *tables) removePC(port int, channel Channel, processorId id.ObjectId) bool {
	list := t.pc[port][channel]
	for i, c := range list {
		if c.ProcessorId == processorId {
			t.pc[port][channel] = append(list[:i], list[i+1:]...)
			return true
		}
	}
	return false
}

func (t *tables) matchingPC(port int, channel Channel) []*PCConnection {
	var out []*PCConnection
	byChan, ok := t.pc[port]
	if !ok {
		return nil
	}
	out = append(out, byChan[channel]...)
	if channel != Omni {
		out = append(out, byChan[Omni]...)
	}
	return out
}

func (t *tables) pcForProcessor(processorId id.ObjectId) []*PCConnection {
	var out []*PCConnection
	for _, byChan := range t.pc {
		for _, list := range byChan {
			for _, c := range list {
				if c.ProcessorId == processorId {
					out = append(out, c)
				}
			}
		}
	}
	return out
}

// removeAllForProcessor purges every CC/PC row referencing processorId,
// used when the graph reports the processor was deleted.
func (t *tables) removeAllForProcessor(processorId id.ObjectId) {
	for port, byChan := range t.cc {
		for channel, byCC := range byChan {
			for cc, list := range byCC {
				kept := list[:0]
				for _, c := range list {
					if c.ProcessorId != processorId {
						kept = append(kept, c)
					}
				}
				t.cc[port][channel][cc] = kept
			}
		}
	}
	for port, byChan := range t.pc {
		for channel, list := range byChan {
			kept := list[:0]
			for _, c := range list {
				if c.ProcessorId != processorId {
					kept = append(kept, c)
				}
			}
			t.pc[port][channel] = kept
		}
	}
}

func (t *tables) allKbdIn() []*KbdInputConnection {
	var out []*KbdInputConnection
	for _, byChan := range t.kbdIn {
		for _, list := range byChan {
			out = append(out, list...)
		}
	}
	return out
}

func (t *tables) allKbdOut() []*KbdOutputConnection {
	var out []*KbdOutputConnection
	for _, list := range t.kbdOut {
		out = append(out, list...)
	}
	return out
}

func (t *tables) allCC() []*CCConnection {
	var out []*CCConnection
	for _, byChan := range t.cc {
		for _, byCC := range byChan {
			for _, list := range byCC {
				out = append(out, list...)
			}
		}
	}
	return out
}

func (t *tables) allPC() []*PCConnection {
	var out []*PCConnection
	for _, byChan := range t.pc {
		for _, list := range byChan {
			out = append(out, list...)
		}
	}
	return out
}

func (t *tables) enabledClockPorts() []int {
	var out []int
	for port, enabled := range t.clock {
		if enabled {
			out = append(out, port)
		}
	}
	return out
}

// removeAllForTrack purges every kbd-in/kbd-out row referencing trackId.
func (t *tables) removeAllForTrack(trackId id.ObjectId) {
	delete(t.kbdOut, trackId)
	for port, byChan := range t.kbdIn {
		for channel, list := range byChan {
			kept := list[:0]
			for _, c := range list {
				if c.TrackId != trackId {
					kept = append(kept, c)
				}
			}
			t.kbdIn[port][channel] = kept
		}
	}
}
