package engine

import "sync/atomic"

// PlayingMode is the engine's transport state.
type PlayingMode int

const (
	Stopped PlayingMode = iota
	Playing
	Recording
)

// SyncMode selects the clock source driving the transport.
type SyncMode int

const (
	SyncInternal SyncMode = iota
	SyncMidi
	SyncGate
	SyncLink
)

// TimeSignature is {num, den}.
type TimeSignature struct {
	Numerator   int
	Denominator int
}

// transportState is the immutable snapshot published by Transport. It is
// held behind an atomic.Pointer so readers never observe a torn write.
type transportState struct {
	sampleRate   float64
	tempo        float64
	timeSig      TimeSignature
	playingMode  PlayingMode
	syncMode     SyncMode
	outputLatency float64
	sampleClock  int64
	clipDetectionEnabled bool
	limiterEnabled       bool
}

// Transport holds tempo, time signature, playing/sync mode and the
// sample clock. It is written from the worker thread's lambda events
// (transport setters, session restore) and from the block-rate driver
// (AdvanceSampleClock); readers load it lock-free through an atomic
// snapshot, and writers publish through a compare-and-swap loop.
type Transport struct {
	state atomic.Pointer[transportState]
}

func NewTransport(sampleRate float64) *Transport {
	t := &Transport{}
	t.state.Store(&transportState{
		sampleRate:  sampleRate,
		tempo:       120.0,
		timeSig:     TimeSignature{Numerator: 4, Denominator: 4},
		playingMode: Stopped,
		syncMode:    SyncInternal,
	})
	return t
}

func (t *Transport) snapshot() *transportState {
	return t.state.Load()
}

// copyWith applies mutate to a copy of the current snapshot and
// publishes it atomically, retrying if another writer published in
// between so concurrent writes are not lost.
func (t *Transport) copyWith(mutate func(*transportState)) {
	for {
		cur := t.snapshot()
		next := *cur
		mutate(&next)
		if t.state.CompareAndSwap(cur, &next) {
			return
		}
	}
}

func (t *Transport) SampleRate() float64 { return t.snapshot().sampleRate }
func (t *Transport) Tempo() float64      { return t.snapshot().tempo }
func (t *Transport) TimeSignature() TimeSignature { return t.snapshot().timeSig }
func (t *Transport) PlayingMode() PlayingMode      { return t.snapshot().playingMode }
func (t *Transport) SyncMode() SyncMode            { return t.snapshot().syncMode }
func (t *Transport) OutputLatency() float64        { return t.snapshot().outputLatency }
func (t *Transport) SampleClock() int64            { return t.snapshot().sampleClock }
func (t *Transport) ClipDetectionEnabled() bool    { return t.snapshot().clipDetectionEnabled }
func (t *Transport) LimiterEnabled() bool          { return t.snapshot().limiterEnabled }

func (t *Transport) SetTempo(bpm float64) {
	t.copyWith(func(s *transportState) { s.tempo = bpm })
}

func (t *Transport) SetTimeSignature(sig TimeSignature) {
	t.copyWith(func(s *transportState) { s.timeSig = sig })
}

func (t *Transport) SetPlayingMode(m PlayingMode) {
	t.copyWith(func(s *transportState) { s.playingMode = m })
}

func (t *Transport) SetSyncMode(m SyncMode) {
	t.copyWith(func(s *transportState) { s.syncMode = m })
}

func (t *Transport) SetOutputLatency(latency float64) {
	t.copyWith(func(s *transportState) { s.outputLatency = latency })
}

func (t *Transport) SetClipDetectionEnabled(enabled bool) {
	t.copyWith(func(s *transportState) { s.clipDetectionEnabled = enabled })
}

func (t *Transport) SetLimiterEnabled(enabled bool) {
	t.copyWith(func(s *transportState) { s.limiterEnabled = enabled })
}

// AdvanceSampleClock is called once per RT block by the audio front end.
func (t *Transport) AdvanceSampleClock(blockSize int64) {
	t.copyWith(func(s *transportState) { s.sampleClock += blockSize })
}

// SamplesPerMidiClockTick is a convenience derived value used by the MIDI
// dispatcher's clock-gating logic (24 PPQN emission).
func (t *Transport) SamplesPerMidiClockTick() float64 {
	s := t.snapshot()
	if s.tempo <= 0 {
		return 0
	}
	beatsPerSecond := s.tempo / 60.0
	ticksPerSecond := beatsPerSecond * 24.0
	return s.sampleRate / ticksPerSecond
}
