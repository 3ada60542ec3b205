package controller

import (
	"github.com/schollz/sushigo/internal/dispatcher"
	"github.com/schollz/sushigo/internal/engine"
	"github.com/schollz/sushigo/internal/id"
)

// AudioGraphController mutates the processor container. Every mutation
// is enqueued as a lambda event so the container is touched only on the
// worker thread, per §5.
type AudioGraphController struct {
	f *Facade
}

// --- queries ---

func (c *AudioGraphController) GetAllProcessors() []ProcessorInfo {
	procs := c.f.container.AllProcessors()
	out := make([]ProcessorInfo, 0, len(procs))
	for _, p := range procs {
		out = append(out, toProcessorInfo(p))
	}
	return out
}

func (c *AudioGraphController) GetAllTracks() []TrackInfo {
	tracks := c.f.container.AllTracks()
	out := make([]TrackInfo, 0, len(tracks))
	for _, t := range tracks {
		out = append(out, c.toTrackInfo(t))
	}
	return out
}

func (c *AudioGraphController) GetTrackInfo(trackId id.ObjectId) (TrackInfo, ControlStatus) {
	t, ok := c.f.container.Track(trackId)
	if !ok {
		return TrackInfo{}, StatusNotFound
	}
	return c.toTrackInfo(t), StatusOk
}

func (c *AudioGraphController) GetProcessorInfo(procId id.ObjectId) (ProcessorInfo, ControlStatus) {
	p, ok := c.f.container.Processor(procId)
	if !ok {
		return ProcessorInfo{}, StatusNotFound
	}
	return toProcessorInfo(p), StatusOk
}

func (c *AudioGraphController) GetTrackProcessors(trackId id.ObjectId) ([]id.ObjectId, ControlStatus) {
	procs, ok := c.f.container.TrackProcessors(trackId)
	if !ok {
		return nil, StatusNotFound
	}
	out := make([]id.ObjectId, len(procs))
	for i, p := range procs {
		out[i] = p.Id()
	}
	return out, StatusOk
}

func (c *AudioGraphController) GetTrackId(name string) (id.ObjectId, ControlStatus) {
	t, ok := c.f.container.TrackByName(name)
	if !ok {
		return id.Invalid, StatusNotFound
	}
	return t.Id(), StatusOk
}

func (c *AudioGraphController) GetProcessorId(name string) (id.ObjectId, ControlStatus) {
	p, ok := c.f.container.ProcessorByName(name)
	if !ok {
		return id.Invalid, StatusNotFound
	}
	return p.Id(), StatusOk
}

func (c *AudioGraphController) GetProcessorBypassState(procId id.ObjectId) (bool, ControlStatus) {
	p, ok := c.f.container.Processor(procId)
	if !ok {
		return false, StatusNotFound
	}
	return p.Bypassed(), StatusOk
}

func (c *AudioGraphController) GetProcessorState(procId id.ObjectId) ([]byte, ControlStatus) {
	p, ok := c.f.container.Processor(procId)
	if !ok {
		return nil, StatusNotFound
	}
	return p.State(), StatusOk
}

func toProcessorInfo(p *engine.Processor) ProcessorInfo {
	return ProcessorInfo{
		Id:             p.Id(),
		Label:          p.Label(),
		Name:           p.Name(),
		ParameterCount: p.ParameterCount(),
		ProgramCount:   len(p.Programs()),
	}
}

func (c *AudioGraphController) toTrackInfo(t *engine.Track) TrackInfo {
	procs, _ := c.f.container.TrackProcessors(t.Id())
	ids := make([]id.ObjectId, len(procs))
	for i, p := range procs {
		ids[i] = p.Id()
	}
	return TrackInfo{
		Id:         t.Id(),
		Label:      t.Label(),
		Name:       t.Name(),
		Channels:   t.Channels(),
		Buses:      t.Buses(),
		Type:       toExternalTrackType(t.Kind()),
		Processors: ids,
	}
}

// --- mutations ---

func (c *AudioGraphController) CreateTrack(name string, channels int) (id.ObjectId, ControlStatus) {
	return c.createTrack(name, engine.TrackRegular, channels, 1)
}

func (c *AudioGraphController) CreateMultibusTrack(name string, buses int) (id.ObjectId, ControlStatus) {
	return c.createTrack(name, engine.TrackMultibus, buses*2, buses)
}

func (c *AudioGraphController) CreatePreTrack(name string) (id.ObjectId, ControlStatus) {
	return c.createTrack(name, engine.TrackPre, 2, 1)
}

func (c *AudioGraphController) CreatePostTrack(name string) (id.ObjectId, ControlStatus) {
	return c.createTrack(name, engine.TrackPost, 2, 1)
}

// createTrack allocates trackId up front and returns it immediately once
// the lambda is enqueued, per §5: creation is not awaited by the caller.
// A collision inside the lambda is logged, not reported back.
func (c *AudioGraphController) createTrack(name string, kind engine.TrackType, channels, buses int) (id.ObjectId, ControlStatus) {
	trackId := c.f.idGen.Next()
	track := engine.NewTrack(trackId, name, name, kind, channels, buses)
	err := c.f.events.PostEvent(&dispatcher.Event{
		Kind:      dispatcher.EventLambda,
		Timestamp: dispatcher.IMMEDIATE_PROCESS,
		Lambda: func() (dispatcher.EventStatus, *dispatcher.Notification) {
			if !c.f.container.AddTrack(track) {
				c.f.logger.Printf("audiograph: create_track %q rejected (duplicate name or id)", name)
				return dispatcher.EventError, nil
			}
			return dispatcher.HandledOk, &dispatcher.Notification{
				Kind:    dispatcher.NotificationTrackUpdate,
				TrackId: trackId,
				Action:  dispatcher.ActionAdded,
			}
		},
	})
	if err != nil {
		return id.Invalid, StatusError
	}
	return trackId, StatusOk
}

// DeleteTrack cascades: detach and delete all child processors bottom-up,
// then delete the track itself. Enqueues and returns ok immediately,
// per §5; a missing track is logged, not reported back synchronously.
func (c *AudioGraphController) DeleteTrack(trackId id.ObjectId) ControlStatus {
	err := c.f.events.PostEvent(&dispatcher.Event{
		Kind:      dispatcher.EventLambda,
		Timestamp: dispatcher.IMMEDIATE_PROCESS,
		Lambda: func() (dispatcher.EventStatus, *dispatcher.Notification) {
			procs, ok := c.f.container.TrackProcessors(trackId)
			if !ok {
				c.f.logger.Printf("audiograph: delete_track %d not found", trackId)
				return dispatcher.EventError, nil
			}
			for i := len(procs) - 1; i >= 0; i-- {
				p := procs[i]
				c.f.container.RemoveFromTrack(p.Id(), trackId)
				c.f.container.RemoveProcessor(p.Id())
				if c.f.midiDisp != nil {
					c.f.midiDisp.OnProcessorDeleted(p.Id())
				}
			}
			if !c.f.container.RemoveTrack(trackId) {
				c.f.logger.Printf("audiograph: delete_track %d failed to remove track", trackId)
				return dispatcher.EventError, nil
			}
			if c.f.midiDisp != nil {
				c.f.midiDisp.OnTrackDeleted(trackId)
			}
			c.f.AudioRouting.onTrackDeleted(trackId)
			return dispatcher.HandledOk, &dispatcher.Notification{
				Kind:    dispatcher.NotificationTrackUpdate,
				TrackId: trackId,
				Action:  dispatcher.ActionDeleted,
			}
		},
	})
	if err != nil {
		return StatusError
	}
	return StatusOk
}

// CreateProcessorOnTrack allocates procId up front and returns it as soon
// as the lambda is enqueued, per §5. Failures discovered inside the
// lambda (unknown track, name collision) are logged, not returned.
func (c *AudioGraphController) CreateProcessorOnTrack(name, uid, path string, kind PluginType, trackId id.ObjectId, before id.ObjectId, hasBefore bool) (id.ObjectId, ControlStatus) {
	procId := c.f.idGen.Next()
	err := c.f.events.PostEvent(&dispatcher.Event{
		Kind:      dispatcher.EventLambda,
		Timestamp: dispatcher.IMMEDIATE_PROCESS,
		Lambda: func() (dispatcher.EventStatus, *dispatcher.Notification) {
			t, ok := c.f.container.Track(trackId)
			if !ok {
				c.f.logger.Printf("audiograph: create_processor_on_track %q: track %d not found", name, trackId)
				return dispatcher.EventError, nil
			}
			p := engine.NewProcessor(procId, name, name, uid, toInternalPluginType(kind), t.Channels())
			p.SetPath(path)
			if !c.f.container.AddProcessor(p) {
				c.f.logger.Printf("audiograph: create_processor_on_track %q rejected (duplicate name or id)", name)
				return dispatcher.EventError, nil
			}
			if !c.f.container.AddToTrack(procId, trackId, before, hasBefore) {
				c.f.container.RemoveProcessor(procId)
				c.f.logger.Printf("audiograph: create_processor_on_track %q could not attach to track %d", name, trackId)
				return dispatcher.EventError, nil
			}
			return dispatcher.HandledOk, &dispatcher.Notification{
				Kind:          dispatcher.NotificationProcessorUpdate,
				ProcessorId:   procId,
				ParentTrackId: trackId,
				Action:        dispatcher.ActionAdded,
			}
		},
	})
	if err != nil {
		return id.Invalid, StatusError
	}
	return procId, StatusOk
}

// MoveProcessorOnTrack must be restorable: if attaching to dst fails, the
// processor is re-inserted into src at its original position; if that
// also fails, it is left free and a warning is logged — the compensation
// rule from original_source's audio_graph_controller.cpp. Enqueues and
// returns ok immediately, per §5; every failure path below is logged
// rather than returned, since the caller is never waiting on this call.
func (c *AudioGraphController) MoveProcessorOnTrack(procId, srcTrack, dstTrack id.ObjectId, before id.ObjectId, hasBefore bool) ControlStatus {
	err := c.f.events.PostEvent(&dispatcher.Event{
		Kind:      dispatcher.EventLambda,
		Timestamp: dispatcher.IMMEDIATE_PROCESS,
		Lambda: func() (dispatcher.EventStatus, *dispatcher.Notification) {
			srcT, ok := c.f.container.Track(srcTrack)
			if !ok {
				c.f.logger.Printf("audiograph: move_processor_on_track: source track %d not found", srcTrack)
				return dispatcher.EventError, nil
			}
			chain := srcT.Chain()
			originalIdx := -1
			for i, pid := range chain {
				if pid == procId {
					originalIdx = i
					break
				}
			}
			if originalIdx < 0 {
				c.f.logger.Printf("audiograph: move_processor_on_track: processor %d not on track %d", procId, srcTrack)
				return dispatcher.EventError, nil
			}
			var originalBefore id.ObjectId
			hasOriginalBefore := originalIdx+1 < len(chain)
			if hasOriginalBefore {
				originalBefore = chain[originalIdx+1]
			}

			if !c.f.container.RemoveFromTrack(procId, srcTrack) {
				c.f.logger.Printf("audiograph: move_processor_on_track: could not detach processor %d from track %d", procId, srcTrack)
				return dispatcher.EventError, nil
			}
			if c.f.container.AddToTrack(procId, dstTrack, before, hasBefore) {
				return dispatcher.HandledOk, &dispatcher.Notification{
					Kind:          dispatcher.NotificationProcessorUpdate,
					ProcessorId:   procId,
					ParentTrackId: dstTrack,
					Action:        dispatcher.ActionAdded,
				}
			}
			// Destination attach failed: restore to source at its
			// original position.
			if c.f.container.AddToTrack(procId, srcTrack, originalBefore, hasOriginalBefore) {
				c.f.logger.Printf("audiograph: move_processor_on_track: destination %d rejected processor %d, restored to source", dstTrack, procId)
				return dispatcher.EventError, nil
			}
			c.f.logger.Printf("audiograph: move_processor_on_track could not restore processor %d to source track %d, left free", procId, srcTrack)
			return dispatcher.EventError, nil
		},
	})
	if err != nil {
		return StatusError
	}
	return StatusOk
}

// DeleteProcessorFromTrack enqueues and returns ok immediately, per §5;
// an unknown processor/track pair is logged, not returned synchronously.
func (c *AudioGraphController) DeleteProcessorFromTrack(procId, trackId id.ObjectId) ControlStatus {
	err := c.f.events.PostEvent(&dispatcher.Event{
		Kind:      dispatcher.EventLambda,
		Timestamp: dispatcher.IMMEDIATE_PROCESS,
		Lambda: func() (dispatcher.EventStatus, *dispatcher.Notification) {
			if !c.f.container.RemoveFromTrack(procId, trackId) {
				c.f.logger.Printf("audiograph: delete_processor_from_track: processor %d not on track %d", procId, trackId)
				return dispatcher.EventError, nil
			}
			if !c.f.container.RemoveProcessor(procId) {
				c.f.logger.Printf("audiograph: delete_processor_from_track: could not remove processor %d", procId)
				return dispatcher.EventError, nil
			}
			if c.f.midiDisp != nil {
				c.f.midiDisp.OnProcessorDeleted(procId)
			}
			return dispatcher.HandledOk, &dispatcher.Notification{
				Kind:          dispatcher.NotificationProcessorUpdate,
				ProcessorId:   procId,
				ParentTrackId: trackId,
				Action:        dispatcher.ActionDeleted,
			}
		},
	})
	if err != nil {
		return StatusError
	}
	return StatusOk
}

// SetProcessorBypassState posts an RT-ordered bypass event, executed by
// the façade's RT executor and the per-processor bypass.Manager ramp.
func (c *AudioGraphController) SetProcessorBypassState(procId id.ObjectId, enabled bool) ControlStatus {
	if _, ok := c.f.container.Processor(procId); !ok {
		return StatusNotFound
	}
	err := c.f.events.PostEvent(&dispatcher.Event{
		Kind:          dispatcher.EventSetBypass,
		Timestamp:     dispatcher.IMMEDIATE_PROCESS,
		ProcessorId:   procId,
		BypassEnabled: enabled,
	})
	if err != nil {
		return StatusError
	}
	return StatusOk
}

// SetProcessorState enqueues and returns ok immediately, per §5 and
// matching original_source's audio_graph_controller.cpp::set_processor_state,
// which posts the lambda and returns OK without waiting on it.
func (c *AudioGraphController) SetProcessorState(procId id.ObjectId, state []byte) ControlStatus {
	err := c.f.events.PostEvent(&dispatcher.Event{
		Kind:      dispatcher.EventLambda,
		Timestamp: dispatcher.IMMEDIATE_PROCESS,
		Lambda: func() (dispatcher.EventStatus, *dispatcher.Notification) {
			p, ok := c.f.container.Processor(procId)
			if !ok {
				c.f.logger.Printf("audiograph: set_processor_state: processor %d not found", procId)
				return dispatcher.EventError, nil
			}
			p.SetState(state)
			return dispatcher.HandledOk, &dispatcher.Notification{
				Kind:        dispatcher.NotificationProcessorUpdate,
				ProcessorId: procId,
			}
		},
	})
	if err != nil {
		return StatusError
	}
	return StatusOk
}

func toInternalPluginType(t PluginType) engine.PluginType {
	switch t {
	case PluginVst2x:
		return engine.PluginVst2x
	case PluginVst3x:
		return engine.PluginVst3x
	case PluginLv2:
		return engine.PluginLv2
	default:
		return engine.PluginInternal
	}
}
