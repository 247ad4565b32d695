package booth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omotiv/muteone/internal/errors"
	"github.com/omotiv/muteone/internal/myaudio"
)

func constantBuffer(rate, channels, frames int, value float32) *myaudio.Buffer {
	buf := myaudio.NewSizedBuffer(rate, channels, frames)
	data := buf.Samples()
	for i := range data {
		data[i] = value
	}
	return buf
}

func TestMixOverdubLength(t *testing.T) {
	// Five seconds of backing, a three second take: the mix is exactly as
	// long as the take
	backing := constantBuffer(44100, 2, 5*44100, 0.5)
	take := constantBuffer(44100, 2, 3*44100, 0.25)

	mixed := MixOverdub(backing, take)

	assert.Equal(t, 3*44100, mixed.Frames())
	assert.Equal(t, 2, mixed.Channels())
	assert.Equal(t, 44100, mixed.SampleRate())
}

func TestMixOverdubSumsChannelZero(t *testing.T) {
	backing := constantBuffer(8000, 2, 100, 0.5)
	take := constantBuffer(8000, 2, 100, 0.25)

	mixed := MixOverdub(backing, take)
	data := mixed.Samples()

	for frame := 0; frame < 100; frame++ {
		assert.InDelta(t, 0.75, data[frame*2], 1e-6, "take sums into channel 0")
		assert.InDelta(t, 0.5, data[frame*2+1], 1e-6, "channel 1 carries the backing only")
	}
}

func TestMixOverdubKeepsUnclippedSum(t *testing.T) {
	backing := constantBuffer(8000, 1, 10, 0.8)
	take := constantBuffer(8000, 1, 10, 0.8)

	mixed := MixOverdub(backing, take)

	// The summed signal exceeds full scale and stays that way in memory
	assert.InDelta(t, 1.6, mixed.Samples()[0], 1e-6)
}

func TestMixOverdubTakeLongerThanBacking(t *testing.T) {
	backing := constantBuffer(8000, 2, 50, 0.5)
	take := constantBuffer(8000, 2, 80, 0.25)

	mixed := MixOverdub(backing, take)
	require.Equal(t, 80, mixed.Frames())
	data := mixed.Samples()

	// Within the backing both signals are present
	assert.InDelta(t, 0.75, data[0], 1e-6)
	// Past the backing only the take remains, zero-padded backing underneath
	assert.InDelta(t, 0.25, data[60*2], 1e-6)
	assert.InDelta(t, 0.0, data[60*2+1], 1e-6)
}

func TestOverdubRequiresBacking(t *testing.T) {
	engine := NewOverdubEngine(testSettings())

	_, err := engine.Record(time.Second, "out.wav")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrNoBackingLoaded)
	assert.False(t, engine.BackingLoaded())
}
