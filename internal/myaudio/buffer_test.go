package myaudio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferAppend(t *testing.T) {
	buf := NewBuffer(44100, 2)

	require.NoError(t, buf.Append([]float32{0.1, 0.2, 0.3, 0.4}))
	assert.Equal(t, 2, buf.Frames())

	err := buf.Append([]float32{0.5, 0.6, 0.7})
	assert.Error(t, err, "odd sample count must be rejected for stereo")
	assert.Equal(t, 2, buf.Frames(), "rejected append must not grow the buffer")
}

func TestBufferDuration(t *testing.T) {
	buf := NewSizedBuffer(44100, 2, 44100)
	assert.Equal(t, time.Second, buf.Duration())

	empty := NewBuffer(44100, 2)
	assert.Equal(t, time.Duration(0), empty.Duration())
}

func TestBufferWriteAt(t *testing.T) {
	buf := NewSizedBuffer(44100, 2, 4)

	n := buf.WriteAt(1, []float32{1, 2, 3, 4})
	assert.Equal(t, 2, n)
	assert.Equal(t, []float32{0, 0, 1, 2, 3, 4, 0, 0}, buf.Samples())

	assert.Equal(t, 0, buf.WriteAt(4, []float32{9, 9}), "write past the end copies nothing")
}

func TestBufferFrameRange(t *testing.T) {
	buf := NewBuffer(44100, 2)
	require.NoError(t, buf.Append([]float32{1, 2, 3, 4, 5, 6}))

	assert.Equal(t, []float32{3, 4}, buf.FrameRange(1, 2))
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, buf.FrameRange(-5, 100), "range is clamped to the buffer")
	assert.Nil(t, buf.FrameRange(2, 1))
	assert.Nil(t, buf.FrameRange(3, 10), "range entirely past the end is empty")
}

func TestBufferClone(t *testing.T) {
	buf := NewBuffer(44100, 1)
	require.NoError(t, buf.Append([]float32{0.5, -0.5}))

	clone := buf.Clone()
	clone.Samples()[0] = 1.0

	assert.Equal(t, float32(0.5), buf.Samples()[0], "clone must not alias the original")
	assert.Equal(t, buf.SampleRate(), clone.SampleRate())
	assert.Equal(t, buf.Channels(), clone.Channels())
}

func TestBufferToStereo(t *testing.T) {
	t.Run("mono duplicates to both channels", func(t *testing.T) {
		buf := NewBuffer(44100, 1)
		require.NoError(t, buf.Append([]float32{0.25, -0.75}))

		stereo := buf.ToStereo()
		assert.Equal(t, 2, stereo.Channels())
		assert.Equal(t, []float32{0.25, 0.25, -0.75, -0.75}, stereo.Samples())
	})

	t.Run("stereo is returned unchanged", func(t *testing.T) {
		buf := NewBuffer(44100, 2)
		require.NoError(t, buf.Append([]float32{1, 2}))
		assert.Same(t, buf, buf.ToStereo())
	})

	t.Run("surround truncates to the first two channels", func(t *testing.T) {
		buf := NewBuffer(44100, 4)
		require.NoError(t, buf.Append([]float32{1, 2, 3, 4, 5, 6, 7, 8}))

		stereo := buf.ToStereo()
		assert.Equal(t, 2, stereo.Channels())
		assert.Equal(t, []float32{1, 2, 5, 6}, stereo.Samples())
	})
}
