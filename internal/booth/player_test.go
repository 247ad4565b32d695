package booth

import (
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omotiv/muteone/internal/errors"
	"github.com/omotiv/muteone/internal/myaudio"
)

// writeTestWAV writes a short stereo file and returns its path.
func writeTestWAV(t *testing.T, seconds float64) string {
	t.Helper()
	buf := myaudio.NewBuffer(44100, 2)
	frames := int(seconds * 44100)
	samples := make([]float32, frames*2)
	for i := 0; i < frames; i++ {
		v := float32(math.Sin(2 * math.Pi * 220 * float64(i) / 44100))
		samples[i*2] = v
		samples[i*2+1] = v
	}
	require.NoError(t, buf.Append(samples))

	path := filepath.Join(t.TempDir(), "clip.wav")
	require.NoError(t, myaudio.SaveToWAV(path, buf))
	return path
}

func TestPlayerRequiresLoadedFile(t *testing.T) {
	player := NewPlayer(testSettings())

	err := player.Play()
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrNoInputLoaded)
}

func TestPlayerLoad(t *testing.T) {
	player := NewPlayer(testSettings())
	path := writeTestWAV(t, 2.0)

	require.NoError(t, player.Load(path))

	assert.InDelta(t, 2.0, player.Duration().Seconds(), 0.01)
	assert.Equal(t, time.Duration(0), player.Position())
	assert.False(t, player.Playing())
}

func TestPlayerSeekClamping(t *testing.T) {
	player := NewPlayer(testSettings())
	require.NoError(t, player.Load(writeTestWAV(t, 1.0)))

	t.Run("within range", func(t *testing.T) {
		player.Seek(500 * time.Millisecond)
		assert.InDelta(t, 0.5, player.Position().Seconds(), 0.01)
	})

	t.Run("past the end clamps to duration", func(t *testing.T) {
		player.Seek(time.Hour)
		assert.InDelta(t, player.Duration().Seconds(), player.Position().Seconds(), 0.01)
	})

	t.Run("negative clamps to zero", func(t *testing.T) {
		player.Seek(-time.Second)
		assert.Equal(t, time.Duration(0), player.Position())
	})

	t.Run("seek with nothing loaded is a no-op", func(t *testing.T) {
		empty := NewPlayer(testSettings())
		empty.Seek(time.Second)
		assert.Equal(t, time.Duration(0), empty.Position())
	})
}

func TestPlayerStopRewinds(t *testing.T) {
	player := NewPlayer(testSettings())
	require.NoError(t, player.Load(writeTestWAV(t, 1.0)))

	player.Seek(500 * time.Millisecond)
	player.Stop()
	assert.Equal(t, time.Duration(0), player.Position())
}

func TestPlayerPauseKeepsPosition(t *testing.T) {
	player := NewPlayer(testSettings())
	require.NoError(t, player.Load(writeTestWAV(t, 1.0)))

	player.Seek(250 * time.Millisecond)
	player.Pause()
	assert.InDelta(t, 0.25, player.Position().Seconds(), 0.01)
}
