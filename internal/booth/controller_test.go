package booth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omotiv/muteone/internal/errors"
)

func TestControllerIdleOperations(t *testing.T) {
	c := NewController(testSettings())

	// Nothing is running, so every stop path is a safe no-op
	c.StopMonitoring()
	path, err := c.StopRecording()
	require.NoError(t, err)
	assert.Empty(t, path)

	c.Shutdown()
	assert.False(t, c.Monitor.Active())
	assert.False(t, c.Recorder.Recording())
	assert.False(t, c.Player.Playing())
}

func TestControllerOverdubRequiresBacking(t *testing.T) {
	c := NewController(testSettings())

	_, err := c.RecordOverdub(time.Second, "out.wav")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrNoBackingLoaded)
}
