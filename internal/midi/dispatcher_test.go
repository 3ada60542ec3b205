package midi

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schollz/sushigo/internal/dispatcher"
	"github.com/schollz/sushigo/internal/engine"
	"github.com/schollz/sushigo/internal/id"
)

func waitFor(t *testing.T, cond func() bool) {
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

func newHarness(t *testing.T) (*Dispatcher, *dispatcher.Dispatcher, *engine.Container, *engine.Transport) {
	t.Helper()
	events := dispatcher.New(nil)
	t.Cleanup(events.Stop)
	container := engine.NewContainer()
	transport := engine.NewTransport(48000)
	d := NewDispatcher(nil, container, transport, events, nil)
	t.Cleanup(d.Close)
	return d, events, container, transport
}

func TestConnectKbdInputRoutesNoteOnToTrack(t *testing.T) {
	d, events, container, _ := newHarness(t)

	gen := id.NewGenerator()
	track := engine.NewTrack(gen.Next(), "lead", "lead", engine.TrackRegular, 2, 0)
	require.True(t, container.AddTrack(track))

	var got dispatcher.Event
	var mu sync.Mutex
	var received bool
	events.SetRTExecutor(rtExecutorFunc(func(ev *dispatcher.Event) (dispatcher.EventStatus, *dispatcher.Notification) {
		mu.Lock()
		got = *ev
		received = true
		mu.Unlock()
		return dispatcher.HandledOk, nil
	}))

	status := d.ConnectKbdInputToTrack(0, 0, track.Id(), false)
	assert.Equal(t, StatusOk, status)

	d.SendMidi(0, []byte{0x90, 60, 100}, dispatcher.IMMEDIATE_PROCESS)
	events.Tick(0)

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return received
	})
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, dispatcher.EventNoteOn, got.Kind)
	assert.Equal(t, track.Id(), got.TrackId)
	assert.Equal(t, 60, got.Note)
}

func TestVelocityZeroNoteOnDecodesAsNoteOff(t *testing.T) {
	d, events, container, _ := newHarness(t)
	gen := id.NewGenerator()
	track := engine.NewTrack(gen.Next(), "lead", "lead", engine.TrackRegular, 2, 0)
	require.True(t, container.AddTrack(track))
	require.Equal(t, StatusOk, d.ConnectKbdInputToTrack(0, Omni, track.Id(), false))

	var kind dispatcher.EventKind
	var mu sync.Mutex
	var received bool
	events.SetRTExecutor(rtExecutorFunc(func(ev *dispatcher.Event) (dispatcher.EventStatus, *dispatcher.Notification) {
		mu.Lock()
		kind = ev.Kind
		received = true
		mu.Unlock()
		return dispatcher.HandledOk, nil
	}))

	d.SendMidi(0, []byte{0x95, 60, 0}, dispatcher.IMMEDIATE_PROCESS)
	events.Tick(0)
	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return received
	})
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, dispatcher.EventNoteOff, kind)
}

func TestCCToParameterAbsoluteScalesIntoDomainRange(t *testing.T) {
	d, events, container, _ := newHarness(t)
	gen := id.NewGenerator()
	proc := engine.NewProcessor(gen.Next(), "filter", "filter", "", engine.PluginInternal, 2)
	cutoff := engine.ParameterDescriptor{Id: gen.Next(), Name: "cutoff", Type: engine.ParameterFloat, MinDomain: 0, MaxDomain: 100}
	proc.AddParameter(cutoff, engine.ParameterValue{})
	require.True(t, container.AddProcessor(proc))

	require.Equal(t, StatusOk, d.ConnectCCToParameter(0, 4, 67, proc.Id(), cutoff.Id, 0, 100, false))

	var domainValue float64
	var mu sync.Mutex
	var received bool
	events.SetRTExecutor(rtExecutorFunc(func(ev *dispatcher.Event) (dispatcher.EventStatus, *dispatcher.Notification) {
		mu.Lock()
		domainValue = ev.FloatValue
		received = true
		mu.Unlock()
		return dispatcher.HandledOk, nil
	}))

	d.SendMidi(0, []byte{0xB4, 67, 75}, dispatcher.IMMEDIATE_PROCESS)
	events.Tick(0)
	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return received
	})
	mu.Lock()
	defer mu.Unlock()
	assert.InDelta(t, 59.055, domainValue, 0.01)
}

func TestDisconnectAllCCFromProcessorPurgesBindings(t *testing.T) {
	d, _, container, _ := newHarness(t)
	gen := id.NewGenerator()
	proc := engine.NewProcessor(gen.Next(), "synth", "synth", "", engine.PluginInternal, 2)
	p1 := engine.ParameterDescriptor{Id: gen.Next(), Name: "a", Type: engine.ParameterFloat, MinDomain: 0, MaxDomain: 1}
	p2 := engine.ParameterDescriptor{Id: gen.Next(), Name: "b", Type: engine.ParameterFloat, MinDomain: 0, MaxDomain: 1}
	proc.AddParameter(p1, engine.ParameterValue{})
	proc.AddParameter(p2, engine.ParameterValue{})
	require.True(t, container.AddProcessor(proc))

	require.Equal(t, StatusOk, d.ConnectCCToParameter(0, 0, 1, proc.Id(), p1.Id, 0, 1, false))
	require.Equal(t, StatusOk, d.ConnectCCToParameter(0, 0, 2, proc.Id(), p2.Id, 0, 1, false))

	removed := d.DisconnectAllCCFromProcessor(proc.Id())
	assert.Equal(t, 2, removed)
	assert.Equal(t, StatusNotConnected, d.DisconnectCCFromParameter(0, 0, 1, proc.Id(), p1.Id))
}

func TestOmniChannelMatchesAnyIncomingChannel(t *testing.T) {
	d, events, container, _ := newHarness(t)
	gen := id.NewGenerator()
	track := engine.NewTrack(gen.Next(), "omni", "omni", engine.TrackRegular, 2, 0)
	require.True(t, container.AddTrack(track))
	require.Equal(t, StatusOk, d.ConnectKbdInputToTrack(0, Omni, track.Id(), false))

	var count int
	var mu sync.Mutex
	events.SetRTExecutor(rtExecutorFunc(func(ev *dispatcher.Event) (dispatcher.EventStatus, *dispatcher.Notification) {
		mu.Lock()
		count++
		mu.Unlock()
		return dispatcher.HandledOk, nil
	}))

	d.SendMidi(0, []byte{0x93, 60, 100}, dispatcher.IMMEDIATE_PROCESS) // channel 3
	d.SendMidi(0, []byte{0x97, 61, 100}, dispatcher.IMMEDIATE_PROCESS) // channel 7
	events.Tick(0)

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return count == 2
	})
}

func TestEnableMidiClockTicksAt24Ppqn(t *testing.T) {
	d, _, _, transport := newHarness(t)
	transport.SetTempo(120)
	var sent int
	var mu sync.Mutex
	fake := &fakeSender{onSend: func(port int, data []byte) {
		mu.Lock()
		sent++
		mu.Unlock()
	}}
	d.sender = fake
	d.EnableMidiClock(0, true)

	samplesPerTick := transport.SamplesPerMidiClockTick()
	blockSize := int64(64)
	blocksPerTick := int(samplesPerTick/float64(blockSize)) + 2
	for i := 0; i < blocksPerTick; i++ {
		d.TickClock(blockSize)
	}

	mu.Lock()
	defer mu.Unlock()
	assert.GreaterOrEqual(t, sent, 1)
}

func TestProcessorDeletedPurgesMidiBindings(t *testing.T) {
	d, _, container, _ := newHarness(t)
	gen := id.NewGenerator()
	proc := engine.NewProcessor(gen.Next(), "synth", "synth", "", engine.PluginInternal, 2)
	param := engine.ParameterDescriptor{Id: gen.Next(), Name: "a", Type: engine.ParameterFloat, MinDomain: 0, MaxDomain: 1}
	proc.AddParameter(param, engine.ParameterValue{})
	require.True(t, container.AddProcessor(proc))
	require.Equal(t, StatusOk, d.ConnectCCToParameter(0, 0, 5, proc.Id(), param.Id, 0, 1, false))

	d.OnProcessorDeleted(proc.Id())
	assert.Equal(t, StatusNotConnected, d.DisconnectCCFromParameter(0, 0, 5, proc.Id(), param.Id))
}

type rtExecutorFunc func(ev *dispatcher.Event) (dispatcher.EventStatus, *dispatcher.Notification)

func (f rtExecutorFunc) Execute(ev *dispatcher.Event) (dispatcher.EventStatus, *dispatcher.Notification) {
	return f(ev)
}

type fakeSender struct {
	onSend func(port int, data []byte)
}

func (f *fakeSender) Send(port int, data []byte) error {
	f.onSend(port, data)
	return nil
}
