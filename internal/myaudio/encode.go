package myaudio

import (
	"os"
	"path/filepath"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/omotiv/muteone/internal/conf"
	"github.com/omotiv/muteone/internal/errors"
)

// SaveToWAV writes the buffer as a 16-bit PCM WAV file at filePath. The
// file's sample rate and channel count always match the buffer; no
// resampling happens on the write path.
func SaveToWAV(filePath string, buf *Buffer) error {
	// Create the directory structure if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return errors.New(err).
			Component("myaudio").
			Category(errors.CategoryFileIO).
			FileContext(filePath, -1).
			Build()
	}

	outFile, err := os.Create(filePath)
	if err != nil {
		return errors.New(err).
			Component("myaudio").
			Category(errors.CategoryFileIO).
			FileContext(filePath, -1).
			Build()
	}
	defer outFile.Close()

	enc := wav.NewEncoder(outFile, buf.SampleRate(), conf.BitDepth, buf.Channels(), 1)

	intBuf := &audio.IntBuffer{
		Data: floatToIntSamples(buf.Samples()),
		Format: &audio.Format{
			SampleRate:  buf.SampleRate(),
			NumChannels: buf.Channels(),
		},
	}
	if err := enc.Write(intBuf); err != nil {
		return errors.New(err).
			Component("myaudio").
			Category(errors.CategoryFileIO).
			FileContext(filePath, -1).
			Build()
	}

	if err := enc.Close(); err != nil {
		return errors.New(err).
			Component("myaudio").
			Category(errors.CategoryFileIO).
			FileContext(filePath, -1).
			Build()
	}
	return nil
}

// floatToIntSamples converts normalized float32 samples to 16-bit integer
// samples. Values outside [-1, 1] pin at the integer limits, which is
// unavoidable in a 16-bit container; the in-memory mix itself keeps the
// unclipped sum.
func floatToIntSamples(samples []float32) []int {
	out := make([]int, len(samples))
	for i, s := range samples {
		v := int(s * 32767.0)
		if v > 32767 {
			v = 32767
		} else if v < -32768 {
			v = -32768
		}
		out[i] = v
	}
	return out
}
