package controller

import "github.com/schollz/sushigo/internal/id"

// CvGateController is the stubbed §4.G surface kept for RPC wire
// compatibility until hardware CV/gate support exists.
type CvGateController struct{}

func (c *CvGateController) GetCvInputChannelCount() (int, ControlStatus) {
	return 0, StatusUnsupportedOperation
}

func (c *CvGateController) GetCvOutputChannelCount() (int, ControlStatus) {
	return 0, StatusUnsupportedOperation
}

func (c *CvGateController) ConnectCvInputToParameter(id.ObjectId, id.ObjectId, int) ControlStatus {
	return StatusUnsupportedOperation
}

func (c *CvGateController) ConnectCvOutputFromParameter(id.ObjectId, id.ObjectId, int) ControlStatus {
	return StatusUnsupportedOperation
}

func (c *CvGateController) ConnectGateInputToProcessor(id.ObjectId, int, int) ControlStatus {
	return StatusUnsupportedOperation
}

func (c *CvGateController) ConnectGateOutputFromProcessor(id.ObjectId, int, int) ControlStatus {
	return StatusUnsupportedOperation
}
