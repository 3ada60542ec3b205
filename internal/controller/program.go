package controller

import (
	"github.com/schollz/sushigo/internal/dispatcher"
	"github.com/schollz/sushigo/internal/id"
)

// ProgramController reports unsupported_operation whenever the target
// processor's supports_programs() is false, per §4.G.
type ProgramController struct {
	f *Facade
}

type ProgramInfo struct {
	Id   int
	Name string
}

func (c *ProgramController) GetProcessorCurrentProgram(procId id.ObjectId) (int, ControlStatus) {
	p, ok := c.f.container.Processor(procId)
	if !ok {
		return 0, StatusNotFound
	}
	if !p.SupportsPrograms() {
		return 0, StatusUnsupportedOperation
	}
	return p.CurrentProgram(), StatusOk
}

func (c *ProgramController) GetProcessorCurrentProgramName(procId id.ObjectId) (string, ControlStatus) {
	p, ok := c.f.container.Processor(procId)
	if !ok {
		return "", StatusNotFound
	}
	if !p.SupportsPrograms() {
		return "", StatusUnsupportedOperation
	}
	name, ok := p.CurrentProgramName()
	if !ok {
		return "", StatusError
	}
	return name, StatusOk
}

func (c *ProgramController) GetProcessorProgramName(procId id.ObjectId, programId int) (string, ControlStatus) {
	p, ok := c.f.container.Processor(procId)
	if !ok {
		return "", StatusNotFound
	}
	if !p.SupportsPrograms() {
		return "", StatusUnsupportedOperation
	}
	name, ok := p.ProgramName(programId)
	if !ok {
		return "", StatusOutOfRange
	}
	return name, StatusOk
}

func (c *ProgramController) GetProcessorPrograms(procId id.ObjectId) ([]ProgramInfo, ControlStatus) {
	p, ok := c.f.container.Processor(procId)
	if !ok {
		return nil, StatusNotFound
	}
	if !p.SupportsPrograms() {
		return nil, StatusUnsupportedOperation
	}
	programs := p.Programs()
	out := make([]ProgramInfo, len(programs))
	for i, pr := range programs {
		out[i] = ProgramInfo{Id: pr.Id, Name: pr.Name}
	}
	return out, StatusOk
}

func (c *ProgramController) SetProcessorProgram(procId id.ObjectId, programId int) ControlStatus {
	p, ok := c.f.container.Processor(procId)
	if !ok {
		return StatusNotFound
	}
	if !p.SupportsPrograms() {
		return StatusUnsupportedOperation
	}
	err := c.f.events.PostEvent(&dispatcher.Event{
		Kind:        dispatcher.EventProgramChange,
		Timestamp:   dispatcher.IMMEDIATE_PROCESS,
		ProcessorId: procId,
		ProgramId:   programId,
	})
	if err != nil {
		return StatusError
	}
	return StatusOk
}
