package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schollz/sushigo/internal/dispatcher"
	"github.com/schollz/sushigo/internal/engine"
	"github.com/schollz/sushigo/internal/id"
	"github.com/schollz/sushigo/internal/midi"
)

type fakeOscState struct {
	saved []byte
}

func (f *fakeOscState) SaveState() []byte { return f.saved }
func (f *fakeOscState) SetState(state []byte) error {
	f.saved = state
	return nil
}

type fakeAudioRoutingState struct {
	in, out []engine.AudioConnection
}

func (f *fakeAudioRoutingState) GetAllInputConnections() []engine.AudioConnection  { return f.in }
func (f *fakeAudioRoutingState) GetAllOutputConnections() []engine.AudioConnection { return f.out }

func (f *fakeAudioRoutingState) ConnectInputChannelToTrack(trackId id.ObjectId, engineChannel, trackChannel int) error {
	f.in = append(f.in, engine.AudioConnection{EngineChannel: engineChannel, TrackChannel: trackChannel, TrackId: trackId})
	return nil
}

func (f *fakeAudioRoutingState) ConnectOutputChannelToTrack(trackId id.ObjectId, engineChannel, trackChannel int) error {
	f.out = append(f.out, engine.AudioConnection{EngineChannel: engineChannel, TrackChannel: trackChannel, TrackId: trackId})
	return nil
}

func newDeps(t *testing.T) Dependencies {
	t.Helper()
	events := dispatcher.New(nil)
	t.Cleanup(events.Stop)
	container := engine.NewContainer()
	transport := engine.NewTransport(48000)
	midiDisp := midi.NewDispatcher(nil, container, transport, events, nil)
	t.Cleanup(midiDisp.Close)
	return Dependencies{
		Container:    container,
		Transport:    transport,
		Midi:         midiDisp,
		Osc:          &fakeOscState{},
		AudioRouting: &fakeAudioRoutingState{},
		IdGen:        id.NewGenerator(),
		Build:        BuildInfo{Version: "test"},
	}
}

func buildGraph(t *testing.T, deps Dependencies) (*engine.Track, *engine.Processor) {
	t.Helper()
	gen := deps.IdGen
	track := engine.NewTrack(gen.Next(), "lead", "lead", engine.TrackRegular, 2, 0)
	require.True(t, deps.Container.AddTrack(track))
	proc := engine.NewProcessor(gen.Next(), "synth", "synth", "uid", engine.PluginInternal, 2)
	proc.AddParameter(engine.ParameterDescriptor{Id: 1, Name: "cutoff"}, engine.ParameterValue{Normalised: 0.5})
	require.True(t, deps.Container.AddProcessor(proc))
	require.True(t, deps.Container.AddToTrack(proc.Id(), track.Id(), id.Invalid, false))
	return track, proc
}

func TestSaveCapturesTracksAndParameterValues(t *testing.T) {
	deps := newDeps(t)
	track, proc := buildGraph(t, deps)
	proc.SetParameterValue(1, 0.75)
	deps.Transport.SetTempo(128)

	s := Save(deps)

	require.Len(t, s.Tracks, 1)
	assert.Equal(t, track.Id(), s.Tracks[0].Id)
	require.Len(t, s.Tracks[0].Processors, 1)
	ps := s.Tracks[0].Processors[0]
	assert.Equal(t, proc.Id(), ps.Id)
	assert.InDelta(t, 0.75, ps.ParameterValues[1].Normalised, 0.0001)
	assert.Equal(t, 128.0, s.Engine.Tempo)
}

func TestMarshalUnmarshalRoundTrips(t *testing.T) {
	deps := newDeps(t)
	buildGraph(t, deps)
	s := Save(deps)
	s.SaveDate = "2026-07-31T00:00:00Z"

	data, err := s.Marshal()
	require.NoError(t, err)
	require.NotEmpty(t, data)

	got, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, s.SaveDate, got.SaveDate)
	require.Len(t, got.Tracks, 1)
	assert.Equal(t, s.Tracks[0].Name, got.Tracks[0].Name)
}

func TestRestoreRecreatesGraphAndAppliesValues(t *testing.T) {
	deps := newDeps(t)
	_, proc := buildGraph(t, deps)
	proc.SetParameterValue(1, 0.9)
	deps.Transport.SetTempo(140)
	saved := Save(deps)

	fresh := newDeps(t)
	require.NoError(t, Restore(fresh, saved))

	tracks := fresh.Container.AllTracks()
	require.Len(t, tracks, 1)
	procs, ok := fresh.Container.TrackProcessors(tracks[0].Id())
	require.True(t, ok)
	require.Len(t, procs, 1)
	v, ok := procs[0].ParameterValue(1)
	require.True(t, ok)
	assert.InDelta(t, 0.9, v.Normalised, 0.0001)
	assert.Equal(t, 140.0, fresh.Transport.Tempo())
}

func TestValidateRejectsSampleRateMismatch(t *testing.T) {
	deps := newDeps(t)
	s := Save(deps)
	s.Engine.SampleRate = 44100

	err := Validate(deps, s)
	assert.Error(t, err)
}

func TestSaveRestoreRoundTripsAudioRoutingAndEngineFlags(t *testing.T) {
	deps := newDeps(t)
	track, _ := buildGraph(t, deps)
	deps.AudioRouting.(*fakeAudioRoutingState).in = append(deps.AudioRouting.(*fakeAudioRoutingState).in,
		engine.AudioConnection{EngineChannel: 0, TrackChannel: 0, TrackId: track.Id()},
		engine.AudioConnection{EngineChannel: 1, TrackChannel: 1, TrackId: track.Id()})
	deps.AudioRouting.(*fakeAudioRoutingState).out = append(deps.AudioRouting.(*fakeAudioRoutingState).out,
		engine.AudioConnection{EngineChannel: 2, TrackChannel: 0, TrackId: track.Id()})
	deps.Transport.SetClipDetectionEnabled(true)
	deps.Transport.SetLimiterEnabled(true)

	saved := Save(deps)
	assert.Len(t, saved.Engine.InputConnections, 2)
	assert.Len(t, saved.Engine.OutputConnections, 1)
	assert.Equal(t, 2, saved.Engine.MinInputChannels)
	assert.Equal(t, 3, saved.Engine.MinOutputChannels)
	assert.True(t, saved.Engine.ClipDetectionEnabled)
	assert.True(t, saved.Engine.LimiterEnabled)

	fresh := newDeps(t)
	require.NoError(t, Restore(fresh, saved))

	freshRouting := fresh.AudioRouting.(*fakeAudioRoutingState)
	assert.ElementsMatch(t, saved.Engine.InputConnections, freshRouting.in)
	assert.ElementsMatch(t, saved.Engine.OutputConnections, freshRouting.out)
	assert.True(t, fresh.Transport.ClipDetectionEnabled())
	assert.True(t, fresh.Transport.LimiterEnabled())
}

func TestRestoreAdvancesIdGeneratorPastRestoredIds(t *testing.T) {
	deps := newDeps(t)
	buildGraph(t, deps)
	saved := Save(deps)

	fresh := newDeps(t)
	require.NoError(t, Restore(fresh, saved))

	next := fresh.IdGen.Next()
	for _, ts := range saved.Tracks {
		assert.NotEqual(t, ts.Id, next)
		for _, ps := range ts.Processors {
			assert.NotEqual(t, ps.Id, next)
		}
	}
}
