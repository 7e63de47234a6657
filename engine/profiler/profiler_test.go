package profiler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPhaseAccumulation(t *testing.T) {
	p := NewProfiler()
	p.RecordPhase("prepare", 10*time.Millisecond)
	p.RecordPhase("prepare", 30*time.Millisecond)
	assert.Equal(t, 20*time.Millisecond, p.PhaseAverage("prepare"))
	assert.Zero(t, p.PhaseAverage("missing"))
}

func TestTimePhaseRecords(t *testing.T) {
	p := NewProfiler()
	stop := p.TimePhase("collect")
	stop()
	assert.Equal(t, 1, p.phaseCounts["collect"])
}

func TestTickIntervalGate(t *testing.T) {
	p := NewProfiler()
	assert.False(t, p.Tick(), "one frame inside the interval logs nothing")

	p.SetUpdateInterval(0)
	p.RecordPhase("prepare", time.Millisecond)
	assert.True(t, p.Tick())
	assert.Zero(t, p.PhaseAverage("prepare"), "interval tick resets phase stats")
}
