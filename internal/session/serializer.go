package session

import (
	"fmt"

	"github.com/schollz/sushigo/internal/engine"
	"github.com/schollz/sushigo/internal/id"
	"github.com/schollz/sushigo/internal/midi"
)

// OscState is the narrow slice of the OSC frontend needed to save and
// restore its registry, duck-typed against whatever frontend the
// controller façade has wired in (nil if none).
type OscState interface {
	SaveState() []byte
	SetState(state []byte) error
}

// AudioRoutingState is the narrow slice of AudioRoutingController
// needed to save and restore engine-channel <-> track-channel
// connections, duck-typed so session does not import controller.
type AudioRoutingState interface {
	GetAllInputConnections() []engine.AudioConnection
	GetAllOutputConnections() []engine.AudioConnection
	ConnectInputChannelToTrack(trackId id.ObjectId, engineChannel, trackChannel int) error
	ConnectOutputChannelToTrack(trackId id.ObjectId, engineChannel, trackChannel int) error
}

// Dependencies bundles everything Save/Restore need. Osc, Midi and
// AudioRouting are nilable: a headless build with no MIDI/OSC front end
// or audio routing table still saves and restores the rest of the
// engine.
type Dependencies struct {
	Container    *engine.Container
	Transport    *engine.Transport
	Midi         *midi.Dispatcher
	Osc          OscState
	AudioRouting AudioRoutingState
	IdGen        *id.Generator
	Build        BuildInfo
}

// Save walks the current graph and transport into a State. It only
// reads; it is safe to call from any thread, including the worker
// thread inside a lambda event.
func Save(deps Dependencies) State {
	s := State{
		Build: deps.Build,
		Engine: EngineState{
			SampleRate:           deps.Transport.SampleRate(),
			Tempo:                deps.Transport.Tempo(),
			TimeSig:              deps.Transport.TimeSignature(),
			PlayingMode:          deps.Transport.PlayingMode(),
			SyncMode:             deps.Transport.SyncMode(),
			ClipDetectionEnabled: deps.Transport.ClipDetectionEnabled(),
			LimiterEnabled:       deps.Transport.LimiterEnabled(),
		},
	}
	if deps.Midi != nil {
		s.Midi = deps.Midi.Snapshot()
	}
	if deps.Osc != nil {
		s.Osc = deps.Osc.SaveState()
	}
	if deps.AudioRouting != nil {
		s.Engine.InputConnections = deps.AudioRouting.GetAllInputConnections()
		s.Engine.OutputConnections = deps.AudioRouting.GetAllOutputConnections()
		s.Engine.MinInputChannels = maxEngineChannel(s.Engine.InputConnections)
		s.Engine.MinOutputChannels = maxEngineChannel(s.Engine.OutputConnections)
	}
	for _, t := range deps.Container.AllTracks() {
		procs, _ := deps.Container.TrackProcessors(t.Id())
		ts := TrackState{
			Id:       t.Id(),
			Name:     t.Name(),
			Label:    t.Label(),
			Kind:     t.Kind(),
			Channels: t.Channels(),
			Buses:    t.Buses(),
		}
		for _, p := range procs {
			ts.Processors = append(ts.Processors, processorState(p))
		}
		s.Tracks = append(s.Tracks, ts)
	}
	return s
}

func processorState(p *engine.Processor) ProcessorState {
	values := make(map[id.ObjectId]engine.ParameterValue)
	for _, d := range p.Parameters() {
		if v, ok := p.ParameterValue(d.Id); ok {
			values[d.Id] = v
		}
	}
	return ProcessorState{
		Id:              p.Id(),
		Name:            p.Name(),
		Label:           p.Label(),
		Uid:             p.Uid(),
		Path:            p.Path(),
		Kind:            p.Kind(),
		Bypassed:        p.Bypassed(),
		CurrentProgram:  p.CurrentProgram(),
		OpaqueState:     p.State(),
		ParameterValues: values,
	}
}

// Validate performs the pre-flight check that must pass before any
// mutation begins. It rejects negative track channel/bus counts, negative
// minimum audio channel counts, and a saved sample rate that differs from
// the running engine's. It does not compare channel or MIDI port counts
// against the running engine's capacity.
func Validate(deps Dependencies, s State) error {
	for _, t := range s.Tracks {
		if t.Channels < 0 || t.Buses < 0 {
			return fmt.Errorf("session: track %q has negative channel/bus count", t.Name)
		}
	}
	if s.Engine.SampleRate > 0 && s.Engine.SampleRate != deps.Transport.SampleRate() {
		return fmt.Errorf("session: saved sample rate %.0f does not match running engine %.0f", s.Engine.SampleRate, deps.Transport.SampleRate())
	}
	if s.Engine.MinInputChannels < 0 || s.Engine.MinOutputChannels < 0 {
		return fmt.Errorf("session: negative minimum audio channel count")
	}
	return nil
}

// maxEngineChannel returns the minimum channel count the audio front end
// must provide to service every row in conns (the highest engine
// channel referenced, plus one), or 0 if conns is empty.
func maxEngineChannel(conns []engine.AudioConnection) int {
	max := -1
	for _, c := range conns {
		if c.EngineChannel > max {
			max = c.EngineChannel
		}
	}
	return max + 1
}

// Restore replaces the entire graph and transport state with s. Callers
// must invoke it from the worker thread (inside a lambda event), since
// it mutates the container directly rather than posting further events.
// Step ordering mirrors the original implementation's restore path:
// pause, clear, recreate tracks, recreate processors bare, apply values,
// restore transport (including clip/limiter flags), restore MIDI,
// restore OSC, rebuild audio input/output connections, resume.
func Restore(deps Dependencies, s State) error {
	if err := Validate(deps, s); err != nil {
		return err
	}

	resumeMode := s.Engine.PlayingMode
	deps.Transport.SetPlayingMode(engine.Stopped)

	clearGraph(deps.Container)

	for _, ts := range s.Tracks {
		track := engine.NewTrack(ts.Id, ts.Name, ts.Label, ts.Kind, ts.Channels, ts.Buses)
		if !deps.Container.AddTrack(track) {
			return fmt.Errorf("session: could not recreate track %q (id collision or duplicate name)", ts.Name)
		}
		deps.IdGen.AdvancePast(ts.Id + 1)
		for _, ps := range ts.Processors {
			proc := engine.NewProcessor(ps.Id, ps.Name, ps.Label, ps.Uid, ps.Kind, ts.Channels)
			proc.SetPath(ps.Path)
			if !deps.Container.AddProcessor(proc) {
				return fmt.Errorf("session: could not recreate processor %q (duplicate name)", ps.Name)
			}
			if !deps.Container.AddToTrack(ps.Id, ts.Id, id.Invalid, false) {
				return fmt.Errorf("session: could not attach processor %q to track %q", ps.Name, ts.Name)
			}
			deps.IdGen.AdvancePast(ps.Id + 1)
		}
	}

	for _, ts := range s.Tracks {
		for _, ps := range ts.Processors {
			p, ok := deps.Container.Processor(ps.Id)
			if !ok {
				continue
			}
			p.SetBypassed(ps.Bypassed)
			p.SetState(ps.OpaqueState)
			for paramId, v := range ps.ParameterValues {
				p.SetParameterValue(paramId, v.Normalised)
				if v.StringValue != "" {
					p.SetPropertyValue(paramId, v.StringValue)
				}
			}
			if ps.CurrentProgram >= 0 {
				p.SetCurrentProgram(ps.CurrentProgram)
			}
		}
	}

	deps.Transport.SetTempo(s.Engine.Tempo)
	deps.Transport.SetTimeSignature(s.Engine.TimeSig)
	deps.Transport.SetSyncMode(s.Engine.SyncMode)
	deps.Transport.SetClipDetectionEnabled(s.Engine.ClipDetectionEnabled)
	deps.Transport.SetLimiterEnabled(s.Engine.LimiterEnabled)

	if deps.Midi != nil {
		deps.Midi.Restore(s.Midi)
	}
	if deps.Osc != nil && s.Osc != nil {
		if err := deps.Osc.SetState(s.Osc); err != nil {
			return fmt.Errorf("session: restoring osc state: %w", err)
		}
	}
	if deps.AudioRouting != nil {
		for _, c := range s.Engine.InputConnections {
			if err := deps.AudioRouting.ConnectInputChannelToTrack(c.TrackId, c.EngineChannel, c.TrackChannel); err != nil {
				return fmt.Errorf("session: restoring input connection to track %d: %w", c.TrackId, err)
			}
		}
		for _, c := range s.Engine.OutputConnections {
			if err := deps.AudioRouting.ConnectOutputChannelToTrack(c.TrackId, c.EngineChannel, c.TrackChannel); err != nil {
				return fmt.Errorf("session: restoring output connection to track %d: %w", c.TrackId, err)
			}
		}
	}

	deps.Transport.SetPlayingMode(resumeMode)
	return nil
}

// clearGraph deletes every track and its chain, deepest processors
// first, leaving the container empty for the recreate pass.
func clearGraph(c *engine.Container) {
	for _, t := range c.AllTracks() {
		procs, _ := c.TrackProcessors(t.Id())
		for i := len(procs) - 1; i >= 0; i-- {
			c.RemoveFromTrack(procs[i].Id(), t.Id())
			c.RemoveProcessor(procs[i].Id())
		}
		c.RemoveTrack(t.Id())
	}
}
