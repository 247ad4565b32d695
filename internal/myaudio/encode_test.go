package myaudio

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveToWAVRoundTrip(t *testing.T) {
	buf := NewBuffer(44100, 2)
	samples := make([]float32, 44100*2/10) // 100ms stereo
	for i := 0; i < len(samples); i += 2 {
		v := float32(math.Sin(2 * math.Pi * 440 * float64(i/2) / 44100))
		samples[i] = v * 0.8
		samples[i+1] = v * 0.4
	}
	require.NoError(t, buf.Append(samples))

	path := filepath.Join(t.TempDir(), "take", "roundtrip.wav")
	require.NoError(t, SaveToWAV(path, buf), "missing parent directories are created")

	got, err := ReadAudioFile(path)
	require.NoError(t, err)

	assert.Equal(t, buf.SampleRate(), got.SampleRate())
	assert.Equal(t, buf.Channels(), got.Channels())
	require.Equal(t, buf.Frames(), got.Frames())

	// 16-bit quantization bounds the round trip error
	for i, want := range samples {
		assert.InDelta(t, want, got.Samples()[i], 1e-3, "sample %d", i)
	}
}

func TestSaveToWAVPinsOutOfRange(t *testing.T) {
	buf := NewBuffer(8000, 1)
	require.NoError(t, buf.Append([]float32{1.6, -1.6, 0}))

	path := filepath.Join(t.TempDir(), "hot.wav")
	require.NoError(t, SaveToWAV(path, buf))

	got, err := ReadAudioFile(path)
	require.NoError(t, err)
	require.Equal(t, 3, got.Frames())

	assert.InDelta(t, 1.0, got.Samples()[0], 1e-3, "over-range pins at full scale")
	assert.InDelta(t, -1.0, got.Samples()[1], 1e-3)
	assert.InDelta(t, 0.0, got.Samples()[2], 1e-4)
}

func TestReadAudioFileErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := ReadAudioFile(filepath.Join(t.TempDir(), "nope.wav"))
		assert.Error(t, err)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "song.flac")
		require.NoError(t, os.WriteFile(path, []byte("fLaC"), 0o644))
		_, err := ReadAudioFile(path)
		assert.ErrorContains(t, err, "unsupported audio format")
	})
}
