package controller

import "github.com/schollz/sushigo/internal/id"

// OscController delegates to the OSC registry/frontend (§4.K); when none
// is attached, mutations report unsupported_operation and reads report
// their zero value, per §4.G.
type OscController struct {
	f *Facade
}

func (c *OscController) GetSendIP() (string, ControlStatus) {
	front := c.f.oscFrontend()
	if front == nil {
		return "", StatusUnsupportedOperation
	}
	return front.SendIP(), StatusOk
}

func (c *OscController) GetSendPort() (int, ControlStatus) {
	front := c.f.oscFrontend()
	if front == nil {
		return 0, StatusUnsupportedOperation
	}
	return front.SendPort(), StatusOk
}

func (c *OscController) GetReceivePort() (int, ControlStatus) {
	front := c.f.oscFrontend()
	if front == nil {
		return 0, StatusUnsupportedOperation
	}
	return front.ReceivePort(), StatusOk
}

func (c *OscController) GetEnabledParameterOutputs() ([]id.ObjectId, ControlStatus) {
	front := c.f.oscFrontend()
	if front == nil {
		return nil, StatusUnsupportedOperation
	}
	return front.EnabledParameterOutputs(), StatusOk
}

func (c *OscController) EnableOutputForParameter(procId id.ObjectId, paramId id.ObjectId) ControlStatus {
	front := c.f.oscFrontend()
	if front == nil {
		return StatusUnsupportedOperation
	}
	p, ok := c.f.container.Processor(procId)
	if !ok {
		return StatusNotFound
	}
	desc, ok := p.ParameterDescriptor(paramId)
	if !ok {
		return StatusNotFound
	}
	if !front.ConnectFromParameter(p.Name(), desc.Name) {
		return StatusError
	}
	return StatusOk
}

func (c *OscController) DisableOutputForParameter(procId id.ObjectId, paramId id.ObjectId) ControlStatus {
	front := c.f.oscFrontend()
	if front == nil {
		return StatusUnsupportedOperation
	}
	p, ok := c.f.container.Processor(procId)
	if !ok {
		return StatusNotFound
	}
	desc, ok := p.ParameterDescriptor(paramId)
	if !ok {
		return StatusNotFound
	}
	if !front.DisconnectFromParameter(p.Name(), desc.Name) {
		return StatusNotFound
	}
	return StatusOk
}

func (c *OscController) EnableAllOutput() ControlStatus {
	front := c.f.oscFrontend()
	if front == nil {
		return StatusUnsupportedOperation
	}
	front.ConnectFromAllParameters()
	return StatusOk
}

func (c *OscController) DisableAllOutput() ControlStatus {
	front := c.f.oscFrontend()
	if front == nil {
		return StatusUnsupportedOperation
	}
	front.DisconnectFromAllParameters()
	return StatusOk
}
