package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTimerDisabledByDefault(t *testing.T) {
	pt := NewPerformanceTimer()
	assert.False(t, pt.Enabled())
	pt.RecordSample(EngineNodeId, 123)
	_, ok := pt.TimingsForNode(EngineNodeId)
	assert.False(t, ok)
}

func TestTimerAggregatesAvgMinMax(t *testing.T) {
	pt := NewPerformanceTimer()
	pt.Enable(true)
	for _, v := range []float64{10, 20, 30} {
		pt.RecordSample(1, v)
	}
	timings, ok := pt.TimingsForNode(1)
	assert.True(t, ok)
	assert.InDelta(t, 20.0, timings.Avg, 1e-9)
	assert.Equal(t, 10.0, timings.Min)
	assert.Equal(t, 30.0, timings.Max)
}

func TestTimerClearTimingsForNode(t *testing.T) {
	pt := NewPerformanceTimer()
	pt.Enable(true)
	pt.RecordSample(1, 10)

	assert.True(t, pt.ClearTimingsForNode(1))
	_, ok := pt.TimingsForNode(1)
	assert.False(t, ok)

	assert.False(t, pt.ClearTimingsForNode(999))
}

func TestTimerClearAllTimings(t *testing.T) {
	pt := NewPerformanceTimer()
	pt.Enable(true)
	pt.RecordSample(1, 10)
	pt.RecordSample(2, 20)
	pt.ClearAllTimings()
	_, ok1 := pt.TimingsForNode(1)
	_, ok2 := pt.TimingsForNode(2)
	assert.False(t, ok1)
	assert.False(t, ok2)
}
