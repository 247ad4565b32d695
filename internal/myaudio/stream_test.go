package myaudio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFloat32LERoundTrip(t *testing.T) {
	src := []float32{0, 1, -1, 0.5, -0.25, 1e-7}
	raw := make([]byte, len(src)*4)
	EncodeFloat32LE(raw, src)

	dst := make([]float32, len(src))
	n := DecodeFloat32LE(dst, raw)

	require.Equal(t, len(src), n)
	assert.Equal(t, src, dst)
}

func TestEncodeFloat32LEZeroFills(t *testing.T) {
	raw := make([]byte, 4*4)
	for i := range raw {
		raw[i] = 0xff
	}
	EncodeFloat32LE(raw, []float32{1, 2})

	dst := make([]float32, 4)
	DecodeFloat32LE(dst, raw)
	assert.Equal(t, []float32{1, 2, 0, 0}, dst, "samples past the source are silence")
}

func TestDecodeFloat32LEBounds(t *testing.T) {
	raw := make([]byte, 8*4)
	dst := make([]float32, 4)
	assert.Equal(t, 4, DecodeFloat32LE(dst, raw), "decode is bounded by dst")

	short := make([]byte, 6)
	assert.Equal(t, 1, DecodeFloat32LE(dst, short), "trailing partial sample is ignored")
}

func TestOpenStreamValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  StreamConfig
	}{
		{"zero block size", StreamConfig{SampleRate: 44100, Channels: 2}},
		{"zero sample rate", StreamConfig{Channels: 2, BlockSize: 1024}},
		{"zero channels", StreamConfig{SampleRate: 44100, BlockSize: 1024}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := OpenStream(tt.cfg, func(out, in []float32) {}, nil)
			assert.Error(t, err)
		})
	}
}
