package bypass

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitialStateIsEnabledNoRamp(t *testing.T) {
	m := NewManager()
	assert.False(t, m.Bypassed())
	assert.True(t, m.ShouldProcess())
	assert.False(t, m.ShouldRamp())
}

func TestSetBypassArmsRampAndReflectsTargetImmediately(t *testing.T) {
	m := NewManager()
	m.SetBypass(true, 48000)
	// Target is externally visible immediately, even mid-ramp.
	assert.True(t, m.Bypassed())
	assert.True(t, m.ShouldRamp())
	assert.True(t, m.ShouldProcess()) // still processing during the ramp
}

func TestRampCompletesAndStopsProcessing(t *testing.T) {
	m := NewManager()
	m.SetBypass(true, 100) // 5 samples at 0.05s * 100Hz
	in := make([]float32, 64)
	out := make([]float32, 64)
	for i := range in {
		in[i] = 1.0
		out[i] = 1.0
	}
	for !done(m) {
		m.CrossfadeOutput(in, out, 8)
	}
	assert.False(t, m.ShouldRamp())
	assert.False(t, m.ShouldProcess())
}

func done(m *Manager) bool {
	return !m.ShouldRamp()
}

func TestSameTargetWithNoRampIsNoop(t *testing.T) {
	m := NewManager()
	m.SetBypass(false, 48000) // already enabled, no ramp
	assert.False(t, m.ShouldRamp())
}

func TestCrossfadeOutputMixesDryWet(t *testing.T) {
	m := NewManager()
	m.SetBypass(true, 48000) // enabled -> bypassed: start wet(=out), end dry(=in)
	in := []float32{0.0}
	out := []float32{1.0}
	m.CrossfadeOutput(in, out, 1)
	// First sample of the ramp should be close to the wet value still.
	assert.InDelta(t, 1.0, out[0], 0.2)
}
