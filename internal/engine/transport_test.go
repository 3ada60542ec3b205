package engine

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransportDefaults(t *testing.T) {
	tr := NewTransport(48000)
	assert.Equal(t, 48000.0, tr.SampleRate())
	assert.Equal(t, 120.0, tr.Tempo())
	assert.Equal(t, TimeSignature{4, 4}, tr.TimeSignature())
	assert.Equal(t, Stopped, tr.PlayingMode())
	assert.Equal(t, SyncInternal, tr.SyncMode())
}

func TestTransportSettersArePublishedAtomically(t *testing.T) {
	tr := NewTransport(48000)
	tr.SetTempo(140)
	tr.SetPlayingMode(Playing)
	tr.SetSyncMode(SyncMidi)
	tr.SetTimeSignature(TimeSignature{3, 4})

	assert.Equal(t, 140.0, tr.Tempo())
	assert.Equal(t, Playing, tr.PlayingMode())
	assert.Equal(t, SyncMidi, tr.SyncMode())
	assert.Equal(t, TimeSignature{3, 4}, tr.TimeSignature())
}

func TestTransportConcurrentReadersDuringWrites(t *testing.T) {
	tr := NewTransport(48000)
	var wg sync.WaitGroup
	stop := make(chan struct{})

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					_ = tr.Tempo()
					_ = tr.PlayingMode()
				}
			}
		}()
	}

	for i := 0; i < 1000; i++ {
		tr.SetTempo(float64(100 + i%40))
	}
	close(stop)
	wg.Wait()
}

func TestSamplesPerMidiClockTickAt120BPM(t *testing.T) {
	tr := NewTransport(48000)
	tr.SetTempo(120)
	// 120 BPM -> 2 beats/sec -> 48 ticks/sec (24 PPQN) -> 1000 samples/tick at 48kHz.
	assert.InDelta(t, 1000.0, tr.SamplesPerMidiClockTick(), 1e-9)
}
