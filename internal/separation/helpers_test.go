package separation

import (
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/omotiv/muteone/internal/conf"
	"github.com/omotiv/muteone/internal/myaudio"
)

// fakeBackend produces one constant-valued stem per label, sized to the
// input buffer.
type fakeBackend struct {
	labels []string
	values map[string]float32
	closed atomic.Bool
}

func (f *fakeBackend) Separate(buf *myaudio.Buffer) ([]Stem, error) {
	stems := make([]Stem, 0, len(f.labels))
	for _, label := range f.labels {
		stem := myaudio.NewSizedBuffer(buf.SampleRate(), buf.Channels(), buf.Frames())
		data := stem.Samples()
		for i := range data {
			data[i] = f.values[label]
		}
		stems = append(stems, Stem{Label: label, Data: stem})
	}
	return stems, nil
}

func (f *fakeBackend) Labels() []string { return f.labels }

func (f *fakeBackend) Close() error {
	f.closed.Store(true)
	return nil
}

// constantStem builds one labeled stem filled with a single value.
func constantStem(label string, value float32, frames int) Stem {
	buf := myaudio.NewSizedBuffer(44100, 2, frames)
	data := buf.Samples()
	for i := range data {
		data[i] = value
	}
	return Stem{Label: label, Data: buf}
}

func testSettings(t *testing.T) *conf.Settings {
	t.Helper()
	return &conf.Settings{
		Audio: conf.AudioSettings{
			SampleRate: 44100,
			Channels:   2,
			BlockSize:  1024,
		},
		Separation: conf.SeparationSettings{
			OutputDir:     t.TempDir(),
			IsolatorPath:  filepath.Join("models", "isolator_inst_hq.tflite"),
			SeparatorPath: filepath.Join("models", "separator_4stem.tflite"),
			Threads:       1,
		},
	}
}

// writeInputWAV writes a short stereo input file for pipeline tests.
func writeInputWAV(t *testing.T) string {
	t.Helper()
	buf := myaudio.NewSizedBuffer(44100, 2, 4410)
	data := buf.Samples()
	for i := range data {
		data[i] = 0.1
	}
	path := filepath.Join(t.TempDir(), "song.wav")
	require.NoError(t, myaudio.SaveToWAV(path, buf))
	return path
}
