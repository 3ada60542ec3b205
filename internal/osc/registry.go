// Package osc implements the OSC method registry (§4.I) and the OSC
// frontend adapter (§4.K) wired into internal/controller as its
// late-bound OscFrontend.
package osc

import (
	"strings"
	"sync"

	"github.com/schollz/sushigo/internal/controller"
	"github.com/schollz/sushigo/internal/id"
)

// MethodKind distinguishes the address families of §4.I, each carrying a
// different OSC type tag and routed to a different façade call.
type MethodKind int

const (
	MethodParameter MethodKind = iota
	MethodProperty
	MethodKeyboardEvent
	MethodProgram
	MethodBypass
	MethodEngineSetTempo
	MethodEngineSetTimeSignature
	MethodEngineSetPlayingMode
	MethodEngineSetSyncMode
	MethodEngineSetTimingStatsEnabled
	MethodEngineResetTimingStatistics
)

// InvalidHandle is returned by AddMethod on a colliding (address,
// type_tag) registration.
const InvalidHandle int64 = -1

// entry is one registered OSC method row.
type entry struct {
	handle      int64
	address     string
	typeTag     string
	kind        MethodKind
	processorId id.ObjectId
	trackId     id.ObjectId
}

// Registry maps textual OSC addresses to typed handler rows (§4.I). It
// subscribes to the façade's processor/track notifications so address
// rows for parameters, properties, programs and bypass stay in sync
// with the graph without every sub-controller knowing about OSC.
type Registry struct {
	f *controller.Facade

	mu         sync.RWMutex
	byAddress  map[string]*entry // keyed by address+"\x00"+typeTag
	byHandle   map[int64]*entry
	nextHandle int64

	procSubId  int64
	trackSubId int64
}

// NewRegistry builds a registry bound to f and subscribes it to the
// façade's graph notifications for auto-wiring.
func NewRegistry(f *controller.Facade) *Registry {
	r := &Registry{
		f:         f,
		byAddress: make(map[string]*entry),
		byHandle:  make(map[int64]*entry),
	}
	r.procSubId = f.SubscribeToNotifications(controller.NotifyProcessorUpdate, r.onProcessorUpdate)
	r.trackSubId = f.SubscribeToNotifications(controller.NotifyTrackUpdate, r.onTrackUpdate)
	r.registerEngineMethods()
	return r
}

// registerEngineMethods wires the handful of static /engine/... addresses
// that are not tied to any graph entity and so never need purging.
func (r *Registry) registerEngineMethods() {
	r.AddMethod("/engine/set_tempo", "f", MethodEngineSetTempo, id.Invalid, id.Invalid)
	r.AddMethod("/engine/set_time_signature", "ii", MethodEngineSetTimeSignature, id.Invalid, id.Invalid)
	r.AddMethod("/engine/set_playing_mode", "s", MethodEngineSetPlayingMode, id.Invalid, id.Invalid)
	r.AddMethod("/engine/set_sync_mode", "s", MethodEngineSetSyncMode, id.Invalid, id.Invalid)
	r.AddMethod("/engine/set_timing_statistics_enabled", "i", MethodEngineSetTimingStatsEnabled, id.Invalid, id.Invalid)
	r.AddMethod("/engine/reset_timing_statistics", "s", MethodEngineResetTimingStatistics, id.Invalid, id.Invalid)
}

// Close unsubscribes the registry from the façade.
func (r *Registry) Close() {
	r.f.UnsubscribeFromNotifications(controller.NotifyProcessorUpdate, r.procSubId)
	r.f.UnsubscribeFromNotifications(controller.NotifyTrackUpdate, r.trackSubId)
}

func sanitizeName(name string) string {
	return strings.ReplaceAll(name, " ", "_")
}

func addressKey(address, typeTag string) string {
	return address + "\x00" + typeTag
}

// AddMethod registers address+typeTag against kind, optionally tagged
// with the processor/track it was derived from so graph deletion can
// purge it. Re-registering the same (address, type_tag) pair returns
// InvalidHandle without side effects.
func (r *Registry) AddMethod(address, typeTag string, kind MethodKind, processorId, trackId id.ObjectId) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := addressKey(address, typeTag)
	if _, exists := r.byAddress[key]; exists {
		return InvalidHandle
	}
	r.nextHandle++
	e := &entry{
		handle:      r.nextHandle,
		address:     address,
		typeTag:     typeTag,
		kind:        kind,
		processorId: processorId,
		trackId:     trackId,
	}
	r.byAddress[key] = e
	r.byHandle[e.handle] = e
	return e.handle
}

// DeleteMethod removes handle's row. Unknown handles are no-ops.
func (r *Registry) DeleteMethod(handle int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.byHandle[handle]
	if !ok {
		return
	}
	delete(r.byHandle, handle)
	delete(r.byAddress, addressKey(e.address, e.typeTag))
}

// Lookup finds the row registered for address regardless of type tag,
// used by the frontend's incoming-message dispatch.
func (r *Registry) Lookup(address string) (kind MethodKind, processorId, trackId id.ObjectId, ok bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for key, e := range r.byAddress {
		if strings.HasPrefix(key, address+"\x00") {
			return e.kind, e.processorId, e.trackId, true
		}
	}
	return 0, id.Invalid, id.Invalid, false
}

func (r *Registry) purgeProcessor(procId id.ObjectId) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, e := range r.byAddress {
		if e.processorId == procId {
			delete(r.byAddress, key)
			delete(r.byHandle, e.handle)
		}
	}
}

func (r *Registry) purgeTrack(trackId id.ObjectId) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, e := range r.byAddress {
		if e.trackId == trackId {
			delete(r.byAddress, key)
			delete(r.byHandle, e.handle)
		}
	}
}

// onProcessorUpdate auto-wires (or purges) a processor's address rows:
// one /parameter and /bypass/program row per its parameters and
// program support, per §4.I's address conventions.
func (r *Registry) onProcessorUpdate(n controller.Notification) {
	if n.Action == controller.ActionDeleted {
		r.purgeProcessor(n.ProcessorId)
		return
	}
	info, status := r.f.AudioGraph.GetProcessorInfo(n.ProcessorId)
	if status != controller.StatusOk {
		return
	}
	procName := sanitizeName(info.Name)
	r.AddMethod("/bypass/"+procName, "i", MethodBypass, n.ProcessorId, id.Invalid)
	if info.ProgramCount > 0 {
		r.AddMethod("/program/"+procName, "i", MethodProgram, n.ProcessorId, id.Invalid)
	}
	params, _ := r.f.Parameter.GetProcessorParameters(n.ProcessorId)
	for _, p := range params {
		r.AddMethod("/parameter/"+procName+"/"+sanitizeName(p.Name), "f", MethodParameter, n.ProcessorId, id.Invalid)
	}
	props, _ := r.f.Parameter.GetProcessorProperties(n.ProcessorId)
	for _, p := range props {
		r.AddMethod("/property/"+procName+"/"+sanitizeName(p.Name), "s", MethodProperty, n.ProcessorId, id.Invalid)
	}
}

// onTrackUpdate auto-wires (or purges) a track's /keyboard_event row.
func (r *Registry) onTrackUpdate(n controller.Notification) {
	if n.Action == controller.ActionDeleted {
		r.purgeTrack(n.TrackId)
		return
	}
	info, status := r.f.AudioGraph.GetTrackInfo(n.TrackId)
	if status != controller.StatusOk {
		return
	}
	addr := "/keyboard_event/" + sanitizeName(info.Name)
	r.AddMethod(addr, "siif", MethodKeyboardEvent, id.Invalid, n.TrackId)
	r.AddMethod(addr, "sif", MethodKeyboardEvent, id.Invalid, n.TrackId)
}

