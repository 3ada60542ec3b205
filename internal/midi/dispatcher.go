package midi

import (
	"log"
	"sync"

	"github.com/schollz/sushigo/internal/dispatcher"
	"github.com/schollz/sushigo/internal/engine"
	"github.com/schollz/sushigo/internal/id"
)

// Dispatcher is the MIDI-to-event and event-to-MIDI bridge. Raw bytes
// arriving from a port are decoded and posted onto the control-plane
// event dispatcher; keyboard-output notifications and TickClock calls
// (MIDI clock) are turned back into raw bytes and handed to a PortSender.
type Dispatcher struct {
	logger *log.Logger

	mu     sync.RWMutex
	tables *tables

	container *engine.Container
	transport *engine.Transport
	events    *dispatcher.Dispatcher
	sender    PortSender

	clockMu     sync.Mutex
	clockAccum  map[int]float64 // fractional samples accumulated per output port
	clockSubId  int64
	noteOutSub  int64
}

// NewDispatcher wires a MIDI dispatcher to the event dispatcher it posts
// into and the engine state it reads for CC/PC parameter scaling. sender
// may be nil if this process has no output ports configured.
func NewDispatcher(logger *log.Logger, container *engine.Container, transport *engine.Transport, events *dispatcher.Dispatcher, sender PortSender) *Dispatcher {
	if logger == nil {
		logger = log.Default()
	}
	d := &Dispatcher{
		logger:     logger,
		tables:     newTables(),
		container:  container,
		transport:  transport,
		events:     events,
		sender:     sender,
		clockAccum: make(map[int]float64),
	}
	d.noteOutSub = events.Subscribe(dispatcher.NotificationEngineEvent, d.onKeyboardOutput)
	return d
}

// Close unsubscribes this dispatcher from the event bus. It does not
// close the underlying sender.
func (d *Dispatcher) Close() {
	d.events.Unsubscribe(dispatcher.NotificationEngineEvent, d.noteOutSub)
}

// --- connect/disconnect primitives (spec §4.E) ---

func (d *Dispatcher) ConnectKbdInputToTrack(port int, channel Channel, trackId id.ObjectId, raw bool) ConnectStatus {
	if !ValidChannel(channel) {
		return StatusInvalidChannel
	}
	if _, ok := d.container.Track(trackId); !ok {
		return StatusInvalidId
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.tables.hasKbdIn(port, channel, trackId); exists {
		return StatusAlreadyConnected
	}
	d.tables.addKbdIn(&KbdInputConnection{Port: port, Channel: channel, TrackId: trackId, Raw: raw})
	return StatusOk
}

func (d *Dispatcher) DisconnectKbdInputFromTrack(port int, channel Channel, trackId id.ObjectId) ConnectStatus {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.tables.removeKbdIn(port, channel, trackId) {
		return StatusOk
	}
	return StatusNotConnected
}

func (d *Dispatcher) ConnectKbdOutputFromTrack(trackId id.ObjectId, port int, channel Channel) ConnectStatus {
	if !ValidChannel(channel) {
		return StatusInvalidChannel
	}
	if _, ok := d.container.Track(trackId); !ok {
		return StatusInvalidId
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.tables.hasKbdOut(trackId, port, channel); exists {
		return StatusAlreadyConnected
	}
	d.tables.addKbdOut(&KbdOutputConnection{TrackId: trackId, Port: port, Channel: channel})
	return StatusOk
}

func (d *Dispatcher) DisconnectKbdOutputFromTrack(trackId id.ObjectId, port int, channel Channel) ConnectStatus {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.tables.removeKbdOut(trackId, port, channel) {
		return StatusOk
	}
	return StatusNotConnected
}

// ConnectCCToParameter binds an input CC to a processor parameter. min/max
// are expressed in the parameter's own domain units, independent of the
// processor's native descriptor range, matching the wire contract used by
// connect_cc_to_parameter.
func (d *Dispatcher) ConnectCCToParameter(port int, channel Channel, cc int, processorId, parameterId id.ObjectId, min, max float64, relative bool) ConnectStatus {
	if !ValidChannel(channel) {
		return StatusInvalidChannel
	}
	p, ok := d.container.Processor(processorId)
	if !ok {
		return StatusInvalidId
	}
	if _, ok := p.ParameterDescriptor(parameterId); !ok {
		return StatusInvalidId
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.tables.findCC(port, channel, cc, processorId, parameterId); exists {
		return StatusAlreadyConnected
	}
	d.tables.addCC(&CCConnection{
		Port: port, Channel: channel, CC: cc,
		ProcessorId: processorId, ParameterId: parameterId,
		Min: min, Max: max, Relative: relative,
		relAccum: (min + max) / 2,
	})
	return StatusOk
}

func (d *Dispatcher) DisconnectCCFromParameter(port int, channel Channel, cc int, processorId, parameterId id.ObjectId) ConnectStatus {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.tables.removeCC(port, channel, cc, processorId, parameterId) {
		return StatusOk
	}
	return StatusNotConnected
}

func (d *Dispatcher) DisconnectAllCCFromProcessor(processorId id.ObjectId) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	conns := d.tables.ccForProcessor(processorId)
	for _, c := range conns {
		d.tables.removeCC(c.Port, c.Channel, c.CC, c.ProcessorId, c.ParameterId)
	}
	return len(conns)
}

func (d *Dispatcher) ConnectPCToProcessor(port int, channel Channel, processorId id.ObjectId) ConnectStatus {
	if !ValidChannel(channel) {
		return StatusInvalidChannel
	}
	if _, ok := d.container.Processor(processorId); !ok {
		return StatusInvalidId
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.tables.findPC(port, channel, processorId); exists {
		return StatusAlreadyConnected
	}
	d.tables.addPC(&PCConnection{Port: port, Channel: channel, ProcessorId: processorId})
	return StatusOk
}

func (d *Dispatcher) DisconnectPCFromProcessor(port int, channel Channel, processorId id.ObjectId) ConnectStatus {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.tables.removePC(port, channel, processorId) {
		return StatusOk
	}
	return StatusNotConnected
}

func (d *Dispatcher) DisconnectAllPCFromProcessor(processorId id.ObjectId) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	conns := d.tables.pcForProcessor(processorId)
	for _, c := range conns {
		d.tables.removePC(c.Port, c.Channel, c.ProcessorId)
	}
	return len(conns)
}

// Snapshot captures every routing table row for session save.
func (d *Dispatcher) Snapshot() MidiSnapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	snap := MidiSnapshot{ClockEnabledPorts: d.tables.enabledClockPorts()}
	for _, c := range d.tables.allKbdIn() {
		snap.KbdIn = append(snap.KbdIn, *c)
	}
	for _, c := range d.tables.allKbdOut() {
		snap.KbdOut = append(snap.KbdOut, *c)
	}
	for _, c := range d.tables.allCC() {
		snap.CC = append(snap.CC, *c)
	}
	for _, c := range d.tables.allPC() {
		snap.PC = append(snap.PC, *c)
	}
	return snap
}

// Restore reconnects every row of a saved snapshot, skipping rows whose
// track/processor/parameter no longer exists (the graph is recreated
// before MIDI state is restored, so this should only drop rows for
// genuinely stale session data).
func (d *Dispatcher) Restore(snap MidiSnapshot) {
	for _, c := range snap.KbdIn {
		if s := d.ConnectKbdInputToTrack(c.Port, c.Channel, c.TrackId, c.Raw); s != StatusOk && s != StatusAlreadyConnected {
			d.logger.Printf("midi: restore dropped kbd-in port=%d channel=%d track=%d: %v", c.Port, c.Channel, c.TrackId, s)
		}
	}
	for _, c := range snap.KbdOut {
		if s := d.ConnectKbdOutputFromTrack(c.TrackId, c.Port, c.Channel); s != StatusOk && s != StatusAlreadyConnected {
			d.logger.Printf("midi: restore dropped kbd-out track=%d port=%d channel=%d: %v", c.TrackId, c.Port, c.Channel, s)
		}
	}
	for _, c := range snap.CC {
		if s := d.ConnectCCToParameter(c.Port, c.Channel, c.CC, c.ProcessorId, c.ParameterId, c.Min, c.Max, c.Relative); s != StatusOk && s != StatusAlreadyConnected {
			d.logger.Printf("midi: restore dropped cc port=%d channel=%d cc=%d: %v", c.Port, c.Channel, c.CC, s)
		}
	}
	for _, c := range snap.PC {
		if s := d.ConnectPCToProcessor(c.Port, c.Channel, c.ProcessorId); s != StatusOk && s != StatusAlreadyConnected {
			d.logger.Printf("midi: restore dropped pc port=%d channel=%d: %v", c.Port, c.Channel, s)
		}
	}
	for _, port := range snap.ClockEnabledPorts {
		d.EnableMidiClock(port, true)
	}
}

// MidiSnapshot is the serializable form of all five routing tables,
// captured and restored verbatim by the session serializer.
type MidiSnapshot struct {
	KbdIn             []KbdInputConnection
	KbdOut            []KbdOutputConnection
	CC                []CCConnection
	PC                []PCConnection
	ClockEnabledPorts []int
}

func (d *Dispatcher) EnableMidiClock(port int, enabled bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tables.clock[port] = enabled
}

func (d *Dispatcher) MidiClockEnabled(port int) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.tables.clock[port]
}

// OnProcessorDeleted purges every CC/PC row referencing processorId. Wired
// to the graph-deletion notification by the controller façade.
func (d *Dispatcher) OnProcessorDeleted(processorId id.ObjectId) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tables.removeAllForProcessor(processorId)
}

// OnTrackDeleted purges every kbd-in/kbd-out row referencing trackId.
func (d *Dispatcher) OnTrackDeleted(trackId id.ObjectId) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tables.removeAllForTrack(trackId)
}

// --- input path ---

// SendMidi decodes a raw channel message received on port at timestamp
// (an RT sample-clock value) and posts the resulting control-plane
// event(s). Unroutable or malformed messages are dropped silently, as
// the spec allows for traffic with no matching binding.
func (d *Dispatcher) SendMidi(port int, data []byte, timestamp int64) {
	msg, ok := decode(data)
	if !ok || msg.kind == decodedUnknown {
		return
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	switch msg.kind {
	case decodedNoteOn, decodedNoteOff:
		for _, c := range d.tables.matchingKbdIn(port, msg.channel) {
			if c.Raw {
				continue
			}
			kind := dispatcher.EventNoteOn
			if msg.kind == decodedNoteOff {
				kind = dispatcher.EventNoteOff
			}
			d.postEvent(&dispatcher.Event{
				Kind:      kind,
				Timestamp: timestamp,
				TrackId:   c.TrackId,
				Channel:   int(msg.channel),
				Note:      msg.data1,
				Velocity:  float64(msg.data2) / 127.0,
			})
		}
	case decodedPolyAftertouch:
		for _, c := range d.tables.matchingKbdIn(port, msg.channel) {
			if c.Raw {
				continue
			}
			d.postEvent(&dispatcher.Event{
				Kind:      dispatcher.EventNoteAftertouch,
				Timestamp: timestamp,
				TrackId:   c.TrackId,
				Channel:   int(msg.channel),
				Note:      msg.data1,
				Velocity:  float64(msg.data2) / 127.0,
			})
		}
	case decodedChannelAftertouch:
		for _, c := range d.tables.matchingKbdIn(port, msg.channel) {
			if c.Raw {
				continue
			}
			d.postEvent(&dispatcher.Event{
				Kind:       dispatcher.EventAftertouch,
				Timestamp:  timestamp,
				TrackId:    c.TrackId,
				Channel:    int(msg.channel),
				FloatValue: float64(msg.data1) / 127.0,
			})
		}
	case decodedPitchBend:
		for _, c := range d.tables.matchingKbdIn(port, msg.channel) {
			if c.Raw {
				continue
			}
			d.postEvent(&dispatcher.Event{
				Kind:       dispatcher.EventPitchBend,
				Timestamp:  timestamp,
				TrackId:    c.TrackId,
				Channel:    int(msg.channel),
				FloatValue: (float64(msg.data1)/8192.0 - 1.0),
			})
		}
	case decodedControlChange:
		d.routeControlChange(port, msg, timestamp)
	case decodedProgramChange:
		for _, c := range d.tables.matchingPC(port, msg.channel) {
			d.postEvent(&dispatcher.Event{
				Kind:        dispatcher.EventProgramChange,
				Timestamp:   timestamp,
				ProcessorId: c.ProcessorId,
				ProgramId:   msg.data1,
			})
		}
	}
}

// routeControlChange resolves each bound CC connection's domain value —
// absolute linear scaling into [Min,Max], or relative accumulation using
// the two's-complement-around-64 convention — and posts a
// domain-scaled, unnormalised parameter-change event. The RT executor
// converts it to the processor's normalised representation via the
// parameter's own preprocessor.
func (d *Dispatcher) routeControlChange(port int, msg decodedMessage, timestamp int64) {
	for _, c := range d.tables.matchingCC(port, msg.channel, msg.data1) {
		var domainValue float64
		if c.Relative {
			delta := relativeDelta(msg.data2)
			step := (c.Max - c.Min) / 127.0
			c.relAccum += float64(delta) * step
			if c.relAccum < c.Min {
				c.relAccum = c.Min
			}
			if c.relAccum > c.Max {
				c.relAccum = c.Max
			}
			domainValue = c.relAccum
		} else {
			domainValue = c.Min + (float64(msg.data2)/127.0)*(c.Max-c.Min)
		}
		d.postEvent(&dispatcher.Event{
			Kind:        dispatcher.EventParameterChange,
			Timestamp:   timestamp,
			ProcessorId: c.ProcessorId,
			ParameterId: c.ParameterId,
			FloatValue:  domainValue,
			Normalized:  false,
		})
	}
}

func (d *Dispatcher) postEvent(ev *dispatcher.Event) {
	if err := d.events.PostEvent(ev); err != nil {
		d.logger.Printf("midi: dropping event, %v", err)
	}
}

// --- output path ---

// onKeyboardOutput turns a track's note-output notification into an
// encoded MIDI message on every port+channel bound as that track's
// keyboard output. IntValueA is 0 for note-on, 1 for note-off; IntValueB
// holds the note number; FloatValue holds normalised velocity.
func (d *Dispatcher) onKeyboardOutput(n dispatcher.Notification) {
	if d.sender == nil {
		return
	}
	d.mu.RLock()
	conns := append([]*KbdOutputConnection(nil), d.tables.kbdOut[n.ParentTrackId]...)
	d.mu.RUnlock()

	velocity := int(n.FloatValue * 127.0)
	for _, c := range conns {
		var raw []byte
		switch n.IntValueA {
		case 0:
			raw = encodeNoteOn(c.Channel, n.IntValueB, velocity)
		case 1:
			raw = encodeNoteOff(c.Channel, n.IntValueB, velocity)
		default:
			continue
		}
		if err := d.sender.Send(c.Port, raw); err != nil {
			d.logger.Printf("midi: send to port %d failed: %v", c.Port, err)
		}
	}
}

// TickClock is called once per audio block by the engine front end. It
// accumulates elapsed samples per enabled output port and emits a 24-PPQN
// clock byte whenever a full tick boundary is crossed.
func (d *Dispatcher) TickClock(blockSamples int64) {
	if d.sender == nil {
		return
	}
	samplesPerTick := d.transport.SamplesPerMidiClockTick()
	if samplesPerTick <= 0 {
		return
	}

	d.mu.RLock()
	ports := make([]int, 0, len(d.tables.clock))
	for port, enabled := range d.tables.clock {
		if enabled {
			ports = append(ports, port)
		}
	}
	d.mu.RUnlock()

	d.clockMu.Lock()
	defer d.clockMu.Unlock()
	for _, port := range ports {
		d.clockAccum[port] += float64(blockSamples)
		for d.clockAccum[port] >= samplesPerTick {
			d.clockAccum[port] -= samplesPerTick
			if err := d.sender.Send(port, []byte{clockByte}); err != nil {
				d.logger.Printf("midi: clock send to port %d failed: %v", port, err)
			}
		}
	}
}
