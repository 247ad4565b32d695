package accel

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProbeIsStable(t *testing.T) {
	ResetForTest()
	first := Probe()
	assert.Contains(t, []Target{TargetGPU, TargetNeural, TargetCPUSIMD, TargetCPU}, first)
	assert.Equal(t, first, Probe(), "probe result is recorded once per process")
}

func TestThreads(t *testing.T) {
	assert.Equal(t, 1, Threads(1))
	assert.GreaterOrEqual(t, Threads(0), 1, "automatic thread count is at least one")
	assert.LessOrEqual(t, Threads(1<<20), runtime.NumCPU(), "configured count is capped at the core count")
}
