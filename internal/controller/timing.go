package controller

import (
	"github.com/schollz/sushigo/internal/engine"
	"github.com/schollz/sushigo/internal/id"
)

// TimingController wraps engine.PerformanceTimer. Its getters return
// unsupported_operation while timing statistics are disabled, per §4.G.
type TimingController struct {
	f *Facade
}

func (c *TimingController) GetTimingStatisticsEnabled() bool {
	return c.f.timer.Enabled()
}

func (c *TimingController) SetTimingStatisticsEnabled(enabled bool) ControlStatus {
	c.f.timer.Enable(enabled)
	return StatusOk
}

func (c *TimingController) GetEngineTimings() (CpuTimings, ControlStatus) {
	return c.timingsFor(engine.EngineNodeId)
}

func (c *TimingController) GetTrackTimings(trackId id.ObjectId) (CpuTimings, ControlStatus) {
	if _, ok := c.f.container.Track(trackId); !ok {
		return CpuTimings{}, StatusNotFound
	}
	return c.timingsFor(int(trackId))
}

func (c *TimingController) GetProcessorTimings(procId id.ObjectId) (CpuTimings, ControlStatus) {
	if _, ok := c.f.container.Processor(procId); !ok {
		return CpuTimings{}, StatusNotFound
	}
	return c.timingsFor(int(procId))
}

func (c *TimingController) timingsFor(node int) (CpuTimings, ControlStatus) {
	if !c.f.timer.Enabled() {
		return CpuTimings{}, StatusUnsupportedOperation
	}
	t, ok := c.f.timer.TimingsForNode(node)
	if !ok {
		return CpuTimings{}, StatusNotFound
	}
	return CpuTimings{Avg: t.Avg, Min: t.Min, Max: t.Max}, StatusOk
}

func (c *TimingController) ResetAllTimings() ControlStatus {
	c.f.timer.ClearAllTimings()
	return StatusOk
}

func (c *TimingController) ResetTrackTimings(trackId id.ObjectId) ControlStatus {
	if _, ok := c.f.container.Track(trackId); !ok {
		return StatusNotFound
	}
	c.f.timer.ClearTimingsForNode(int(trackId))
	return StatusOk
}

func (c *TimingController) ResetProcessorTimings(procId id.ObjectId) ControlStatus {
	if _, ok := c.f.container.Processor(procId); !ok {
		return StatusNotFound
	}
	c.f.timer.ClearTimingsForNode(int(procId))
	return StatusOk
}
