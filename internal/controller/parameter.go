package controller

import (
	"github.com/schollz/sushigo/internal/dispatcher"
	"github.com/schollz/sushigo/internal/engine"
	"github.com/schollz/sushigo/internal/id"
)

// ParameterController implements the get/set parameter+property
// contract of §4.G. set_parameter_value clamps to [0,1] before posting,
// per spec and the Open Question resolved in DESIGN.md.
type ParameterController struct {
	f *Facade
}

func (c *ParameterController) GetProcessorParameters(procId id.ObjectId) ([]ParameterInfo, ControlStatus) {
	p, ok := c.f.container.Processor(procId)
	if !ok {
		return nil, StatusNotFound
	}
	return filterParameterInfos(p, false), StatusOk
}

func (c *ParameterController) GetProcessorProperties(procId id.ObjectId) ([]PropertyInfo, ControlStatus) {
	p, ok := c.f.container.Processor(procId)
	if !ok {
		return nil, StatusNotFound
	}
	var out []PropertyInfo
	for _, d := range p.Parameters() {
		if d.Type == engine.ParameterStringProperty || d.Type == engine.ParameterDataProperty {
			out = append(out, PropertyInfo{Id: d.Id, Label: d.Label, Name: d.Name})
		}
	}
	return out, StatusOk
}

func (c *ParameterController) GetTrackParameters(trackId id.ObjectId) ([]ParameterInfo, ControlStatus) {
	t, ok := c.f.container.Track(trackId)
	if !ok {
		return nil, StatusNotFound
	}
	return filterParameterInfos(t.Processor, false), StatusOk
}

func (c *ParameterController) GetTrackProperties(trackId id.ObjectId) ([]PropertyInfo, ControlStatus) {
	return c.GetProcessorProperties(trackId)
}

func filterParameterInfos(p *engine.Processor, properties bool) []ParameterInfo {
	var out []ParameterInfo
	for _, d := range p.Parameters() {
		isProperty := d.Type == engine.ParameterStringProperty || d.Type == engine.ParameterDataProperty
		if isProperty != properties {
			continue
		}
		out = append(out, ParameterInfo{
			Id:          d.Id,
			Type:        toExternalParameterType(d.Type),
			Label:       d.Label,
			Name:        d.Name,
			Unit:        d.Unit,
			Automatable: d.Automatable,
			MinDomain:   d.MinDomain,
			MaxDomain:   d.MaxDomain,
		})
	}
	return out
}

func (c *ParameterController) GetParameterId(procId id.ObjectId, name string) (id.ObjectId, ControlStatus) {
	p, ok := c.f.container.Processor(procId)
	if !ok {
		return id.Invalid, StatusNotFound
	}
	pid, ok := p.ParameterIdByName(name)
	if !ok {
		return id.Invalid, StatusNotFound
	}
	return pid, StatusOk
}

func (c *ParameterController) GetParameterInfo(procId, paramId id.ObjectId) (ParameterInfo, ControlStatus) {
	p, ok := c.f.container.Processor(procId)
	if !ok {
		return ParameterInfo{}, StatusNotFound
	}
	d, ok := p.ParameterDescriptor(paramId)
	if !ok {
		return ParameterInfo{}, StatusNotFound
	}
	return ParameterInfo{
		Id: d.Id, Type: toExternalParameterType(d.Type), Label: d.Label, Name: d.Name,
		Unit: d.Unit, Automatable: d.Automatable, MinDomain: d.MinDomain, MaxDomain: d.MaxDomain,
	}, StatusOk
}

func (c *ParameterController) GetParameterValue(procId, paramId id.ObjectId) (float64, ControlStatus) {
	p, ok := c.f.container.Processor(procId)
	if !ok {
		return 0, StatusNotFound
	}
	v, ok := p.ParameterValue(paramId)
	if !ok {
		return 0, StatusNotFound
	}
	return v.Normalised, StatusOk
}

func (c *ParameterController) GetParameterValueInDomain(procId, paramId id.ObjectId) (float64, ControlStatus) {
	p, ok := c.f.container.Processor(procId)
	if !ok {
		return 0, StatusNotFound
	}
	desc, ok := p.ParameterDescriptor(paramId)
	if !ok {
		return 0, StatusNotFound
	}
	v, ok := p.ParameterValue(paramId)
	if !ok {
		return 0, StatusNotFound
	}
	return desc.DomainValue(v), StatusOk
}

func (c *ParameterController) GetParameterValueAsString(procId, paramId id.ObjectId) (string, ControlStatus) {
	p, ok := c.f.container.Processor(procId)
	if !ok {
		return "", StatusNotFound
	}
	desc, ok := p.ParameterDescriptor(paramId)
	if !ok {
		return "", StatusNotFound
	}
	v, ok := p.ParameterValue(paramId)
	if !ok {
		return "", StatusNotFound
	}
	return desc.FormattedString(v), StatusOk
}

func (c *ParameterController) GetPropertyId(procId id.ObjectId, name string) (id.ObjectId, ControlStatus) {
	return c.GetParameterId(procId, name)
}

func (c *ParameterController) GetPropertyInfo(procId, propId id.ObjectId) (PropertyInfo, ControlStatus) {
	info, status := c.GetParameterInfo(procId, propId)
	if status != StatusOk {
		return PropertyInfo{}, status
	}
	return PropertyInfo{Id: info.Id, Label: info.Label, Name: info.Name}, StatusOk
}

func (c *ParameterController) GetPropertyValue(procId, propId id.ObjectId) (string, ControlStatus) {
	p, ok := c.f.container.Processor(procId)
	if !ok {
		return "", StatusNotFound
	}
	v, ok := p.ParameterValue(propId)
	if !ok {
		return "", StatusNotFound
	}
	return v.StringValue, StatusOk
}

// SetParameterValue clamps v to [0,1] before posting an RT-ordered
// parameter-change event (Open Question resolution, see DESIGN.md).
func (c *ParameterController) SetParameterValue(procId, paramId id.ObjectId, v float64) ControlStatus {
	if _, ok := c.f.container.Processor(procId); !ok {
		return StatusNotFound
	}
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	err := c.f.events.PostEvent(&dispatcher.Event{
		Kind:        dispatcher.EventParameterChange,
		Timestamp:   dispatcher.IMMEDIATE_PROCESS,
		ProcessorId: procId,
		ParameterId: paramId,
		FloatValue:  v,
		Normalized:  true,
	})
	if err != nil {
		return StatusError
	}
	return StatusOk
}

func (c *ParameterController) SetPropertyValue(procId, propId id.ObjectId, s string) ControlStatus {
	if _, ok := c.f.container.Processor(procId); !ok {
		return StatusNotFound
	}
	err := c.f.events.PostEvent(&dispatcher.Event{
		Kind:        dispatcher.EventPropertyChange,
		Timestamp:   dispatcher.IMMEDIATE_PROCESS,
		ProcessorId: procId,
		ParameterId: propId,
		StringValue: s,
	})
	if err != nil {
		return StatusError
	}
	return StatusOk
}
