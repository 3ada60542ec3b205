// Package bypass implements the per-processor crossfade state machine
// used to enable or bypass a processor without a click.
package bypass

import "sync"

// defaultRampSeconds is the crossfade duration: 50ms, inside the allowed
// 30-100ms range.
const defaultRampSeconds = 0.05

// Manager holds target state, current state and a crossfade progress
// counter for one processor.
type Manager struct {
	mu sync.Mutex

	target    bool // true == bypassed
	current   bool
	remaining int64 // samples remaining in the active ramp
	rampTotal int64
}

// NewManager starts enabled (not bypassed), with no ramp in progress.
func NewManager() *Manager {
	return &Manager{}
}

// SetBypass arms a ramp toward target, sized to defaultRampSeconds at the
// given sample rate. Calling it while already at the target with no ramp
// in progress is a no-op.
func (m *Manager) SetBypass(target bool, sampleRate float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.target == target && m.remaining == 0 {
		return
	}
	m.target = target
	m.rampTotal = int64(defaultRampSeconds * sampleRate)
	if m.rampTotal <= 0 {
		m.rampTotal = 1
	}
	m.remaining = m.rampTotal
}

// Bypassed reports the target state, not the in-progress ramp — matching
// the spec's externally-visible bypass contract.
func (m *Manager) Bypassed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.target
}

// ShouldProcess is true while the processor is enabled or a ramp is
// still running (so a bypass-to-enable or enable-to-bypass transition
// keeps rendering dry/wet audio for its duration).
func (m *Manager) ShouldProcess() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.target || m.remaining > 0
}

// ShouldRamp is true while the crossfade counter is non-zero.
func (m *Manager) ShouldRamp() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.remaining > 0
}

// CrossfadeOutput linearly mixes the dry (in) and wet (out) buffers for
// one audio block, advancing the ramp counter by blockSize samples. When
// ramping toward bypass, the mix fades from wet to dry; when ramping
// toward enabled, it fades from dry to wet. out is written in place.
func (m *Manager) CrossfadeOutput(in, out []float32, blockSize int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.remaining <= 0 {
		if m.target {
			copy(out[:blockSize], in[:blockSize])
		}
		return
	}

	for i := 0; i < blockSize && m.remaining > 0; i++ {
		progress := 1.0 - float32(m.remaining)/float32(m.rampTotal)
		var wetGain float32
		if m.target {
			// Ramping toward bypass: start wet, end dry.
			wetGain = 1.0 - progress
		} else {
			// Ramping toward enabled: start dry, end wet.
			wetGain = progress
		}
		dryGain := 1.0 - wetGain
		out[i] = dryGain*in[i] + wetGain*out[i]
		m.remaining--
	}
	if m.remaining < 0 {
		m.remaining = 0
	}
}
