package engine

import (
	"fmt"
	"math"

	"github.com/schollz/sushigo/internal/id"
)

// ParameterType distinguishes the wire-stable parameter kinds.
type ParameterType int

const (
	ParameterBool ParameterType = iota
	ParameterInt
	ParameterFloat
	ParameterStringProperty
	ParameterDataProperty
)

// Preprocessor maps a normalised [0,1] value to its domain representation
// and back. Float parameters declare one at creation time.
type Preprocessor interface {
	ToDomain(normalised float64) float64
	ToNormalised(domain float64) float64
}

// LinearPreprocessor maps [0,1] linearly onto [min,max].
type LinearPreprocessor struct {
	Min, Max float64
}

func (p LinearPreprocessor) ToDomain(n float64) float64 {
	return p.Min + n*(p.Max-p.Min)
}

func (p LinearPreprocessor) ToNormalised(d float64) float64 {
	if p.Max == p.Min {
		return 0
	}
	return (d - p.Min) / (p.Max - p.Min)
}

// CubicWarpPreprocessor applies a cubic warp, concentrating resolution
// near the bottom of the domain range (typical for time/rate knobs).
type CubicWarpPreprocessor struct {
	Min, Max float64
}

func (p CubicWarpPreprocessor) ToDomain(n float64) float64 {
	return p.Min + (n*n*n)*(p.Max-p.Min)
}

func (p CubicWarpPreprocessor) ToNormalised(d float64) float64 {
	if p.Max == p.Min {
		return 0
	}
	ratio := (d - p.Min) / (p.Max - p.Min)
	if ratio < 0 {
		ratio = 0
	}
	return math.Cbrt(ratio)
}

// DbToLinPreprocessor maps a normalised control to a decibel range and
// exposes the domain value as linear gain.
type DbToLinPreprocessor struct {
	MinDb, MaxDb float64
}

func (p DbToLinPreprocessor) ToDomain(n float64) float64 {
	db := p.MinDb + n*(p.MaxDb-p.MinDb)
	return math.Pow(10, db/20.0)
}

func (p DbToLinPreprocessor) ToNormalised(linGain float64) float64 {
	db := 20.0 * math.Log10(math.Max(linGain, 1e-9))
	if p.MaxDb == p.MinDb {
		return 0
	}
	return (db - p.MinDb) / (p.MaxDb - p.MinDb)
}

// ParameterDescriptor is immutable once a processor is created.
type ParameterDescriptor struct {
	Id           id.ObjectId
	Name         string
	Label        string
	Unit         string
	Type         ParameterType
	MinDomain    float64
	MaxDomain    float64
	Automatable  bool
	Preprocessor Preprocessor // only meaningful for ParameterFloat
}

// ParameterValue is the mutable value held inside a processor for one
// parameter. Numeric parameters use Normalised/domain; property
// parameters use StringValue/DataValue.
type ParameterValue struct {
	Normalised  float64 // clamp(v, 0, 1), canonical for numeric params
	StringValue string
	DataValue   []byte
}

// clamp01 clamps v into [0,1], matching the spec's "clamp to [0,1] before
// posting" rule for set_parameter_value.
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// DomainValue returns the parameter's value in its physical unit and
// range, using the descriptor's preprocessor (identity if none is set).
func (d ParameterDescriptor) DomainValue(v ParameterValue) float64 {
	if d.Preprocessor == nil {
		return LinearPreprocessor{Min: d.MinDomain, Max: d.MaxDomain}.ToDomain(v.Normalised)
	}
	return d.Preprocessor.ToDomain(v.Normalised)
}

// FormattedString renders the parameter's current value the way a
// front-end would display it, honoring Unit.
func (d ParameterDescriptor) FormattedString(v ParameterValue) string {
	switch d.Type {
	case ParameterStringProperty:
		return v.StringValue
	case ParameterDataProperty:
		return fmt.Sprintf("<%d bytes>", len(v.DataValue))
	case ParameterBool:
		if v.Normalised >= 0.5 {
			return "true"
		}
		return "false"
	case ParameterInt:
		return fmt.Sprintf("%d", int(math.Round(d.DomainValue(v))))
	default:
		if d.Unit != "" {
			return fmt.Sprintf("%.3f %s", d.DomainValue(v), d.Unit)
		}
		return fmt.Sprintf("%.3f", d.DomainValue(v))
	}
}
