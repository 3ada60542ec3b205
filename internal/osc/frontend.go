package osc

import (
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/hypebeast/go-osc/osc"
	jsoniter "github.com/json-iterator/go"

	"github.com/schollz/sushigo/internal/controller"
	"github.com/schollz/sushigo/internal/id"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Frontend is the OSC adapter wired into the controller façade as its
// OscFrontend (§4.K). It owns an outgoing client, an incoming
// server+dispatcher, and the method registry that resolves incoming
// addresses to façade calls.
type Frontend struct {
	logger *log.Logger
	f      *controller.Facade

	sendIp      string
	sendPort    int
	receivePort int

	client     *osc.Client
	dispatcher *osc.StandardDispatcher
	server     *osc.Server

	registry *Registry

	mu         sync.Mutex
	enabled    map[id.ObjectId]bool
	paramSubId int64
}

// NewFrontend builds the adapter but does not start the receive server;
// call Serve to begin listening.
func NewFrontend(logger *log.Logger, f *controller.Facade, sendIp string, sendPort, receivePort int) *Frontend {
	if logger == nil {
		logger = log.Default()
	}
	d := osc.NewStandardDispatcher()
	fe := &Frontend{
		logger:      logger,
		f:           f,
		sendIp:      sendIp,
		sendPort:    sendPort,
		receivePort: receivePort,
		client:      osc.NewClient(sendIp, sendPort),
		dispatcher:  d,
		registry:    NewRegistry(f),
		enabled:     make(map[id.ObjectId]bool),
	}
	d.AddMsgHandler("*", fe.handleIncoming)
	fe.paramSubId = f.SubscribeToNotifications(controller.NotifyParameterChange, fe.onParameterChange)
	return fe
}

// Serve starts the OSC receive server; it blocks until the listener
// fails or the process exits, matching the teacher's background-goroutine
// ListenAndServe pattern.
func (fe *Frontend) Serve() error {
	fe.server = &osc.Server{Addr: fmt.Sprintf(":%d", fe.receivePort), Dispatcher: fe.dispatcher}
	return fe.server.ListenAndServe()
}

// Close unsubscribes the frontend from the façade. The underlying OSC
// server has no exported Close in go-osc; callers exit the process (or
// goroutine) to tear it down, matching the teacher's ListenAndServe use.
func (fe *Frontend) Close() {
	fe.f.UnsubscribeFromNotifications(controller.NotifyParameterChange, fe.paramSubId)
	fe.registry.Close()
}

func (fe *Frontend) SendIP() string   { return fe.sendIp }
func (fe *Frontend) SendPort() int    { return fe.sendPort }
func (fe *Frontend) ReceivePort() int { return fe.receivePort }

// ConnectFromParameter enables outgoing /parameter/... messages whenever
// processorName's parameterName changes.
func (fe *Frontend) ConnectFromParameter(processorName, parameterName string) bool {
	procId, status := fe.f.AudioGraph.GetProcessorId(processorName)
	if status != controller.StatusOk {
		return false
	}
	paramId, status := fe.f.Parameter.GetParameterId(procId, parameterName)
	if status != controller.StatusOk {
		return false
	}
	fe.mu.Lock()
	defer fe.mu.Unlock()
	fe.enabled[paramId] = true
	return true
}

func (fe *Frontend) DisconnectFromParameter(processorName, parameterName string) bool {
	procId, status := fe.f.AudioGraph.GetProcessorId(processorName)
	if status != controller.StatusOk {
		return false
	}
	paramId, status := fe.f.Parameter.GetParameterId(procId, parameterName)
	if status != controller.StatusOk {
		return false
	}
	fe.mu.Lock()
	defer fe.mu.Unlock()
	if !fe.enabled[paramId] {
		return false
	}
	delete(fe.enabled, paramId)
	return true
}

func (fe *Frontend) ConnectFromAllParameters() {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	for _, p := range fe.f.AudioGraph.GetAllProcessors() {
		params, _ := fe.f.Parameter.GetProcessorParameters(p.Id)
		for _, param := range params {
			fe.enabled[param.Id] = true
		}
	}
}

func (fe *Frontend) DisconnectFromAllParameters() {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	fe.enabled = make(map[id.ObjectId]bool)
}

func (fe *Frontend) EnabledParameterOutputs() []id.ObjectId {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	out := make([]id.ObjectId, 0, len(fe.enabled))
	for pid := range fe.enabled {
		out = append(out, pid)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// SaveState/SetState persist the enabled-output set; auto_enable is
// always false since sushigo has no DAW-recall style auto-enable flag.
type frontendState struct {
	Enabled []id.ObjectId `json:"enabled"`
}

func (fe *Frontend) SaveState() []byte {
	data, err := json.Marshal(frontendState{Enabled: fe.EnabledParameterOutputs()})
	if err != nil {
		fe.logger.Printf("osc: save state failed: %v", err)
		return nil
	}
	return data
}

func (fe *Frontend) SetState(state []byte) error {
	if len(state) == 0 {
		return nil
	}
	var s frontendState
	if err := json.Unmarshal(state, &s); err != nil {
		return fmt.Errorf("osc: set state: %w", err)
	}
	fe.mu.Lock()
	defer fe.mu.Unlock()
	fe.enabled = make(map[id.ObjectId]bool, len(s.Enabled))
	for _, pid := range s.Enabled {
		fe.enabled[pid] = true
	}
	return nil
}

// onParameterChange sends an outgoing /parameter/<processor>/<parameter>
// message for every enabled parameter change.
func (fe *Frontend) onParameterChange(n controller.Notification) {
	fe.mu.Lock()
	on := fe.enabled[n.ParameterId]
	fe.mu.Unlock()
	if !on {
		return
	}
	procInfo, status := fe.f.AudioGraph.GetProcessorInfo(n.ProcessorId)
	if status != controller.StatusOk {
		return
	}
	paramInfo, status := fe.f.Parameter.GetParameterInfo(n.ProcessorId, n.ParameterId)
	if status != controller.StatusOk {
		return
	}
	msg := osc.NewMessage(fmt.Sprintf("/parameter/%s/%s", sanitizeName(procInfo.Name), sanitizeName(paramInfo.Name)))
	msg.Append(float32(n.Value))
	if err := fe.client.Send(msg); err != nil {
		fe.logger.Printf("osc: send %s failed: %v", msg.Address, err)
	}
}

// handleIncoming resolves an arriving message against the registry and
// dispatches it to the matching façade call.
func (fe *Frontend) handleIncoming(msg *osc.Message) {
	kind, procId, trackId, ok := fe.registry.Lookup(msg.Address)
	if !ok {
		return
	}
	switch kind {
	case MethodParameter:
		if v, ok := floatArg(msg, 0); ok {
			fe.f.Parameter.SetParameterValue(procId, parameterIdFromAddress(fe.f, procId, msg.Address), v)
		}
	case MethodProperty:
		if s, ok := stringArg(msg, 0); ok {
			fe.f.Parameter.SetPropertyValue(procId, parameterIdFromAddress(fe.f, procId, msg.Address), s)
		}
	case MethodBypass:
		if v, ok := intArg(msg, 0); ok {
			fe.f.AudioGraph.SetProcessorBypassState(procId, v != 0)
		}
	case MethodProgram:
		if v, ok := intArg(msg, 0); ok {
			fe.f.Program.SetProcessorProgram(procId, v)
		}
	case MethodKeyboardEvent:
		fe.dispatchKeyboardEvent(trackId, msg)
	case MethodEngineSetTempo:
		if v, ok := floatArg(msg, 0); ok {
			fe.f.Transport.SetTempo(v)
		}
	case MethodEngineSetTimeSignature:
		num, okN := intArg(msg, 0)
		den, okD := intArg(msg, 1)
		if okN && okD {
			fe.f.Transport.SetTimeSignature(controller.TimeSignature{Numerator: num, Denominator: den})
		}
	case MethodEngineSetPlayingMode:
		if s, ok := stringArg(msg, 0); ok {
			if mode, known := playingModeFromString(s); known {
				fe.f.Transport.SetPlayingMode(mode)
			}
		}
	case MethodEngineSetSyncMode:
		if s, ok := stringArg(msg, 0); ok {
			if mode, known := syncModeFromString(s); known {
				fe.f.Transport.SetSyncMode(mode)
			}
		}
	case MethodEngineSetTimingStatsEnabled:
		if v, ok := intArg(msg, 0); ok {
			fe.f.Timing.SetTimingStatisticsEnabled(v != 0)
		}
	case MethodEngineResetTimingStatistics:
		fe.dispatchResetTimingStatistics(msg)
	}
}

func (fe *Frontend) dispatchResetTimingStatistics(msg *osc.Message) {
	scope, ok := stringArg(msg, 0)
	if !ok {
		return
	}
	switch scope {
	case "all":
		fe.f.Timing.ResetAllTimings()
	case "track":
		if name, ok := stringArg(msg, 1); ok {
			if trackId, status := fe.f.AudioGraph.GetTrackId(name); status == controller.StatusOk {
				fe.f.Timing.ResetTrackTimings(trackId)
			}
		}
	case "processor":
		if name, ok := stringArg(msg, 1); ok {
			if procId, status := fe.f.AudioGraph.GetProcessorId(name); status == controller.StatusOk {
				fe.f.Timing.ResetProcessorTimings(procId)
			}
		}
	}
}

func playingModeFromString(s string) (controller.PlayingMode, bool) {
	switch s {
	case "playing":
		return controller.PlayingPlaying, true
	case "stopped":
		return controller.PlayingStopped, true
	case "recording":
		return controller.PlayingRecording, true
	}
	return 0, false
}

func syncModeFromString(s string) (controller.SyncMode, bool) {
	switch s {
	case "internal":
		return controller.SyncInternal, true
	case "midi":
		return controller.SyncMidi, true
	case "gate":
		return controller.SyncGate, true
	case "ableton_link":
		return controller.SyncLink, true
	}
	return 0, false
}

func (fe *Frontend) dispatchKeyboardEvent(trackId id.ObjectId, msg *osc.Message) {
	kindStr, ok := stringArg(msg, 0)
	if !ok {
		return
	}
	switch kindStr {
	case "note_on":
		channel, _ := intArg(msg, 1)
		note, _ := intArg(msg, 2)
		vel, _ := floatArg(msg, 3)
		fe.f.Keyboard.SendNoteOn(trackId, channel, note, vel)
	case "note_off":
		channel, _ := intArg(msg, 1)
		note, _ := intArg(msg, 2)
		vel, _ := floatArg(msg, 3)
		fe.f.Keyboard.SendNoteOff(trackId, channel, note, vel)
	case "note_aftertouch":
		channel, _ := intArg(msg, 1)
		note, _ := intArg(msg, 2)
		vel, _ := floatArg(msg, 3)
		fe.f.Keyboard.SendNoteAftertouch(trackId, channel, note, vel)
	case "pitch_bend":
		channel, _ := intArg(msg, 1)
		v, _ := floatArg(msg, 2)
		fe.f.Keyboard.SendPitchBend(trackId, channel, v)
	case "aftertouch":
		channel, _ := intArg(msg, 1)
		v, _ := floatArg(msg, 2)
		fe.f.Keyboard.SendAftertouch(trackId, channel, v)
	case "modulation":
		channel, _ := intArg(msg, 1)
		v, _ := floatArg(msg, 2)
		fe.f.Keyboard.SendModulation(trackId, channel, v)
	}
}

func parameterIdFromAddress(f *controller.Facade, procId id.ObjectId, address string) id.ObjectId {
	parts := lastSegment(address)
	pid, _ := f.Parameter.GetParameterId(procId, parts)
	return pid
}

func lastSegment(address string) string {
	for i := len(address) - 1; i >= 0; i-- {
		if address[i] == '/' {
			return address[i+1:]
		}
	}
	return address
}

func floatArg(msg *osc.Message, i int) (float64, bool) {
	if i >= len(msg.Arguments) {
		return 0, false
	}
	switch v := msg.Arguments[i].(type) {
	case float32:
		return float64(v), true
	case float64:
		return v, true
	}
	return 0, false
}

func intArg(msg *osc.Message, i int) (int, bool) {
	if i >= len(msg.Arguments) {
		return 0, false
	}
	switch v := msg.Arguments[i].(type) {
	case int32:
		return int(v), true
	case int:
		return v, true
	}
	return 0, false
}

func stringArg(msg *osc.Message, i int) (string, bool) {
	if i >= len(msg.Arguments) {
		return "", false
	}
	s, ok := msg.Arguments[i].(string)
	return s, ok
}
