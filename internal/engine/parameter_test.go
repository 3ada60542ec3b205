package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLinearPreprocessor(t *testing.T) {
	p := LinearPreprocessor{Min: 0, Max: 100}
	assert.InDelta(t, 75.0, p.ToDomain(0.75), 1e-9)
	assert.InDelta(t, 0.75, p.ToNormalised(75.0), 1e-9)
}

func TestCubicWarpPreprocessorRoundTrip(t *testing.T) {
	p := CubicWarpPreprocessor{Min: 0, Max: 1000}
	for _, n := range []float64{0, 0.25, 0.5, 0.9, 1.0} {
		d := p.ToDomain(n)
		back := p.ToNormalised(d)
		assert.InDelta(t, n, back, 1e-6)
	}
}

func TestDbToLinPreprocessor(t *testing.T) {
	p := DbToLinPreprocessor{MinDb: -60, MaxDb: 0}
	gain := p.ToDomain(1.0) // 0 dB -> unity gain
	assert.InDelta(t, 1.0, gain, 1e-6)
	back := p.ToNormalised(gain)
	assert.InDelta(t, 1.0, back, 1e-6)
}

func TestClampSetParameterValue(t *testing.T) {
	assert.Equal(t, 1.0, clamp01(1.5))
	assert.Equal(t, 0.0, clamp01(-0.5))
	assert.Equal(t, 0.5, clamp01(0.5))
}

func TestParameterDescriptorFormattedString(t *testing.T) {
	d := ParameterDescriptor{Type: ParameterFloat, Unit: "dB", MinDomain: -60, MaxDomain: 0}
	v := ParameterValue{Normalised: 1.0}
	assert.Equal(t, "0.000 dB", d.FormattedString(v))

	bd := ParameterDescriptor{Type: ParameterBool}
	assert.Equal(t, "true", bd.FormattedString(ParameterValue{Normalised: 1.0}))
	assert.Equal(t, "false", bd.FormattedString(ParameterValue{Normalised: 0.0}))
}
