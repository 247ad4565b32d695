package booth

import (
	"sync"
	"time"

	"github.com/omotiv/muteone/internal/conf"
	"github.com/omotiv/muteone/internal/errors"
	"github.com/omotiv/muteone/internal/logging"
	"github.com/omotiv/muteone/internal/myaudio"
)

// Effect is a per-block processing hook on the captured signal. The
// effects chain is a disabled pass-through extension point: no
// implementation ships with the engine and nil means untouched audio.
type Effect interface {
	Process(block []float32)
}

// OverdubEngine plays a pre-loaded backing buffer while capturing a new
// take of fixed duration, then mixes both into a single buffer.
//
// Known limitation: the mixdown sums samples without clipping or
// normalization, so the result may exceed the normalized [-1, 1] range.
// Loudness handling is deferred to a future effects chain; the sum is
// kept untouched rather than silently limited.
type OverdubEngine struct {
	settings *conf.Settings

	mu      sync.Mutex
	backing *myaudio.Buffer
	effects []Effect
}

// NewOverdubEngine creates an engine with no backing loaded.
func NewOverdubEngine(settings *conf.Settings) *OverdubEngine {
	return &OverdubEngine{settings: settings}
}

// LoadBacking reads the backing track from a file. The backing's sample
// rate and channel count drive the duplex stream format.
func (o *OverdubEngine) LoadBacking(path string) error {
	buf, err := myaudio.ReadAudioFile(path)
	if err != nil {
		return err
	}
	o.mu.Lock()
	o.backing = buf
	o.mu.Unlock()
	logging.ForService("booth").Info("backing track loaded",
		"path", path,
		"frames", buf.Frames(),
		"channels", buf.Channels(),
		"sample_rate", buf.SampleRate())
	return nil
}

// BackingLoaded reports whether a backing track is ready.
func (o *OverdubEngine) BackingLoaded() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.backing != nil
}

// Record runs one overdub pass: it opens a duplex session, plays the
// backing buffer while capturing duration worth of input, then mixes the
// take into a copy of the backing (summed at channel 0) and writes the mix
// to outPath. The session ends on its own once the capture buffer is full.
func (o *OverdubEngine) Record(duration time.Duration, outPath string) (string, error) {
	o.mu.Lock()
	backing := o.backing
	effects := o.effects
	o.mu.Unlock()

	if backing == nil {
		return "", errors.New(errors.ErrNoBackingLoaded).
			Component("booth").
			Category(errors.CategoryValidation).
			Build()
	}

	rate := backing.SampleRate()
	channels := backing.Channels()
	frames := int(duration.Seconds() * float64(rate))
	if frames <= 0 {
		return "", errors.Newf("invalid overdub duration: %s", duration).
			Component("booth").
			Category(errors.CategoryValidation).
			Build()
	}

	// The take is owned by the callback until done closes, then ownership
	// transfers to the mixdown below. Never aliased for concurrent write.
	take := myaudio.NewSizedBuffer(rate, channels, frames)

	var once sync.Once
	done := make(chan struct{})
	offset := 0 // frames written, touched only by the callback

	callback := func(out, in []float32) {
		if offset >= frames {
			once.Do(func() { close(done) })
			return
		}

		blockFrames := len(in) / channels
		if blockFrames == 0 && len(out) > 0 {
			blockFrames = len(out) / channels
		}

		for _, effect := range effects {
			effect.Process(in)
		}
		take.WriteAt(offset, in)

		// Emit the matching slice of the backing track, zero-padded once
		// the backing is exhausted
		slice := backing.FrameRange(offset, offset+blockFrames)
		copy(out, slice)

		offset += blockFrames
		if offset >= frames {
			once.Do(func() { close(done) })
		}
	}

	audio := &o.settings.Audio
	cfg := myaudio.StreamConfig{
		Direction:      myaudio.DirectionDuplex,
		SampleRate:     rate,
		Channels:       channels,
		BlockSize:      audio.BlockSize,
		InputSource:    audio.Source,
		OutputSource:   audio.Output,
		PreferLoopback: false, // overdub takes the performer's input, not a loopback
	}

	onStop := func() {
		once.Do(func() { close(done) })
	}

	session, err := myaudio.OpenStream(cfg, callback, onStop)
	if err != nil {
		return "", err
	}
	if err := session.Start(); err != nil {
		_ = session.Close()
		return "", err
	}

	<-done
	_ = session.Close()

	mixed := MixOverdub(backing, take)
	if err := myaudio.SaveToWAV(outPath, mixed); err != nil {
		return "", err
	}

	logging.ForService("booth").Info("overdub complete",
		"path", outPath,
		"frames", mixed.Frames(),
		"duration", mixed.Duration().Round(time.Millisecond).String())
	return outPath, nil
}

// MixOverdub copies the backing track truncated to the take length and
// sums the take's first channel into channel 0 of the copy. Summed samples
// may exceed [-1, 1]; see the engine's known limitation.
func MixOverdub(backing, take *myaudio.Buffer) *myaudio.Buffer {
	channels := backing.Channels()
	frames := take.Frames()

	mixed := myaudio.NewSizedBuffer(backing.SampleRate(), channels, frames)
	mixed.WriteAt(0, backing.FrameRange(0, frames))

	mixedData := mixed.Samples()
	takeData := take.Samples()
	for frame := 0; frame < frames; frame++ {
		mixedData[frame*channels] += takeData[frame*take.Channels()]
	}
	return mixed
}
