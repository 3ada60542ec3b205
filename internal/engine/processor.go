package engine

import (
	"sync"

	"github.com/schollz/sushigo/internal/id"
)

// PluginType identifies how a processor's implementation is hosted.
type PluginType int

const (
	PluginInternal PluginType = iota
	PluginVst2x
	PluginVst3x
	PluginLv2
)

// Program is one entry of a processor's program list.
type Program struct {
	Id   int
	Name string
}

// Processor is a processing node owning a parameter set and, optionally,
// a program list. A processor may exist "free" (registered, not on any
// track) but must be detached before deletion.
type Processor struct {
	mu sync.RWMutex

	id    id.ObjectId
	name  string
	label string
	uid   string // internal plugin uid, or external plugin descriptor
	path  string // file path for external plugins, empty for internal
	kind  PluginType

	bypassed bool

	maxInputChannels  int
	curInputChannels  int
	maxOutputChannels int
	curOutputChannels int

	parameters    []ParameterDescriptor
	parameterById map[id.ObjectId]int // index into parameters
	values        map[id.ObjectId]*ParameterValue

	programs       []Program
	currentProgram int // -1 if the processor does not support programs

	opaqueState []byte // plugin-private state blob, captured verbatim on save
}

// NewProcessor constructs a free-standing processor. maxChannels sets
// both the processor's maximum and its current I/O width.
func NewProcessor(procId id.ObjectId, name, label, uid string, kind PluginType, maxChannels int) *Processor {
	p := &Processor{
		id:                procId,
		name:              name,
		label:             label,
		uid:               uid,
		kind:              kind,
		maxInputChannels:  maxChannels,
		curInputChannels:  maxChannels,
		maxOutputChannels: maxChannels,
		curOutputChannels: maxChannels,
		parameterById:     make(map[id.ObjectId]int),
		values:            make(map[id.ObjectId]*ParameterValue),
		currentProgram:    -1,
	}
	return p
}

func (p *Processor) Id() id.ObjectId { return p.id }

func (p *Processor) Name() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.name
}

func (p *Processor) Label() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.label
}

func (p *Processor) SetLabel(label string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.label = label
}

func (p *Processor) Uid() string { return p.uid }
func (p *Processor) Path() string { return p.path }
func (p *Processor) SetPath(path string) { p.path = path }
func (p *Processor) Kind() PluginType { return p.kind }

func (p *Processor) Bypassed() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.bypassed
}

func (p *Processor) SetBypassed(b bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bypassed = b
}

// ChannelCounts returns (maxIn, curIn, maxOut, curOut).
func (p *Processor) ChannelCounts() (int, int, int, int) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.maxInputChannels, p.curInputChannels, p.maxOutputChannels, p.curOutputChannels
}

// AddParameter registers a parameter descriptor at processor-creation
// time. Descriptors are immutable thereafter.
func (p *Processor) AddParameter(desc ParameterDescriptor, initial ParameterValue) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.parameterById[desc.Id] = len(p.parameters)
	p.parameters = append(p.parameters, desc)
	v := initial
	p.values[desc.Id] = &v
}

func (p *Processor) Parameters() []ParameterDescriptor {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]ParameterDescriptor, len(p.parameters))
	copy(out, p.parameters)
	return out
}

func (p *Processor) ParameterCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.parameters)
}

func (p *Processor) ParameterDescriptor(paramId id.ObjectId) (ParameterDescriptor, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	idx, ok := p.parameterById[paramId]
	if !ok {
		return ParameterDescriptor{}, false
	}
	return p.parameters[idx], true
}

func (p *Processor) ParameterIdByName(name string) (id.ObjectId, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, d := range p.parameters {
		if d.Name == name {
			return d.Id, true
		}
	}
	return id.Invalid, false
}

func (p *Processor) ParameterValue(paramId id.ObjectId) (ParameterValue, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	v, ok := p.values[paramId]
	if !ok {
		return ParameterValue{}, false
	}
	return *v, true
}

// SetParameterValue writes a normalised value, clamped to [0,1] per the
// spec's set_parameter_value contract. Returns false if paramId is
// unknown.
func (p *Processor) SetParameterValue(paramId id.ObjectId, normalised float64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.values[paramId]
	if !ok {
		return false
	}
	v.Normalised = clamp01(normalised)
	return true
}

// SetPropertyValue writes a string property value. Returns false if
// propId is unknown or not a property-typed parameter.
func (p *Processor) SetPropertyValue(propId id.ObjectId, value string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	idx, ok := p.parameterById[propId]
	if !ok || p.parameters[idx].Type != ParameterStringProperty {
		return false
	}
	p.values[propId].StringValue = value
	return true
}

// SupportsPrograms reports whether this processor exposes a program list.
func (p *Processor) SupportsPrograms() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.programs) > 0
}

func (p *Processor) SetPrograms(programs []Program) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.programs = programs
	if len(programs) > 0 {
		p.currentProgram = 0
	} else {
		p.currentProgram = -1
	}
}

func (p *Processor) Programs() []Program {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]Program, len(p.programs))
	copy(out, p.programs)
	return out
}

func (p *Processor) CurrentProgram() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.currentProgram
}

func (p *Processor) CurrentProgramName() (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.currentProgram < 0 || p.currentProgram >= len(p.programs) {
		return "", false
	}
	return p.programs[p.currentProgram].Name, true
}

func (p *Processor) ProgramName(programId int) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, pr := range p.programs {
		if pr.Id == programId {
			return pr.Name, true
		}
	}
	return "", false
}

// SetCurrentProgram returns false if programId is out of range.
func (p *Processor) SetCurrentProgram(programId int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, pr := range p.programs {
		if pr.Id == programId {
			p.currentProgram = i
			return true
		}
	}
	return false
}

// State returns the opaque per-processor state blob, used by the session
// serializer; its contents are meaningless to sushigo itself.
func (p *Processor) State() []byte {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]byte, len(p.opaqueState))
	copy(out, p.opaqueState)
	return out
}

func (p *Processor) SetState(state []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.opaqueState = append([]byte(nil), state...)
}
