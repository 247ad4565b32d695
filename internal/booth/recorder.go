package booth

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/smallnest/ringbuffer"

	"github.com/omotiv/muteone/internal/conf"
	"github.com/omotiv/muteone/internal/errors"
	"github.com/omotiv/muteone/internal/logging"
	"github.com/omotiv/muteone/internal/myaudio"
)

// captureBufferSeconds sizes the ring buffer between the real-time
// callback and the accumulate loop. Four seconds absorbs scheduling
// hiccups without unbounded growth.
const captureBufferSeconds = 4

// drainInterval is how often the accumulate loop empties the ring buffer.
const drainInterval = 50 * time.Millisecond

// Recorder captures audio from an input device into a growing buffer and,
// on stop, persists it to a uniquely named temporary WAV file. While
// recording it republishes the same level readings LevelMonitor produces,
// so only one of the two needs to run for metering; the caller must never
// bind both to the same device input at once.
type Recorder struct {
	settings  *conf.Settings
	levelChan chan myaudio.LevelData
	events    chan RecorderEvent

	mu        sync.Mutex
	session   *myaudio.StreamSession
	rb        *ringbuffer.RingBuffer
	buf       *myaudio.Buffer
	startTime time.Time
	quit      chan struct{}
	drained   chan struct{}
}

// NewRecorder creates a recorder that uses the configured capture device.
func NewRecorder(settings *conf.Settings) *Recorder {
	return &Recorder{
		settings:  settings,
		levelChan: make(chan myaudio.LevelData, 16),
		events:    make(chan RecorderEvent, 16),
	}
}

// Levels returns the channel level readings are republished on.
func (r *Recorder) Levels() <-chan myaudio.LevelData { return r.levelChan }

// Events returns the recorder notification channel.
func (r *Recorder) Events() <-chan RecorderEvent { return r.events }

// Recording reports whether a capture session is active.
func (r *Recorder) Recording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session != nil
}

// Start opens a capture session and begins accumulating audio. The
// callback hands raw blocks to the accumulate loop through a bounded ring
// buffer; the real-time thread never touches the growing buffer itself.
func (r *Recorder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.session != nil {
		return nil
	}

	audio := &r.settings.Audio
	r.buf = myaudio.NewBuffer(audio.SampleRate, audio.Channels)
	r.rb = ringbuffer.New(audio.SampleRate * audio.Channels * 4 * captureBufferSeconds)
	r.quit = make(chan struct{})
	r.drained = make(chan struct{})

	scratch := make([]byte, audio.BlockSize*audio.Channels*4*2)
	rb := r.rb
	callback := func(out, in []float32) {
		if len(in) == 0 {
			return
		}
		n := len(in) * 4
		if n > len(scratch) {
			n = len(scratch)
			in = in[:n/4]
		}
		myaudio.EncodeFloat32LE(scratch[:n], in)
		// Drop the block when the ring buffer is full; the accumulate
		// loop has fallen too far behind to keep it anyway
		_, _ = rb.Write(scratch[:n])
	}

	cfg := myaudio.StreamConfig{
		Direction:      myaudio.DirectionCapture,
		SampleRate:     audio.SampleRate,
		Channels:       audio.Channels,
		BlockSize:      audio.BlockSize,
		InputSource:    audio.Source,
		PreferLoopback: audio.PreferLoopback,
	}

	onStop := func() {
		r.sendEvent(RecorderEvent{Kind: RecordingError,
			Err: errors.ErrDeviceUnavailable})
	}

	session, err := myaudio.OpenStream(cfg, callback, onStop)
	if err != nil {
		return err
	}
	if err := session.Start(); err != nil {
		_ = session.Close()
		return err
	}

	r.session = session
	r.startTime = time.Now()
	go r.accumulate(r.rb, r.buf, session.InputName, r.quit, r.drained)

	r.sendEvent(RecorderEvent{Kind: RecordingStarted})
	logging.ForService("booth").Info("recording started",
		"source", session.InputName,
		"sample_rate", audio.SampleRate,
		"channels", audio.Channels)
	return nil
}

// accumulate drains the ring buffer into the growing capture buffer,
// republishing level readings and throttled elapsed-time events. It owns
// the capture buffer exclusively until the drained channel closes.
func (r *Recorder) accumulate(rb *ringbuffer.RingBuffer, buf *myaudio.Buffer, source string, quit, drained chan struct{}) {
	defer close(drained)

	chunk := make([]byte, 32*1024)
	samples := make([]float32, len(chunk)/4)
	lastTick := -1

	drain := func() {
		for rb.Length() > 0 {
			n, err := rb.Read(chunk)
			if n == 0 || err != nil {
				return
			}
			count := myaudio.DecodeFloat32LE(samples, chunk[:n])
			block := samples[:count-count%buf.Channels()]
			if err := buf.Append(block); err != nil {
				return
			}
			myaudio.ProcessLevel(block, buf.Channels(), source, r.levelChan)
		}
	}

	ticker := time.NewTicker(drainInterval)
	defer ticker.Stop()
	for {
		select {
		case <-quit:
			drain()
			return
		case <-ticker.C:
			drain()
			// Elapsed time at roughly one event per second, independent
			// of block size
			elapsed := int(time.Since(r.startTime).Seconds())
			if elapsed != lastTick {
				lastTick = elapsed
				r.sendEvent(RecorderEvent{Kind: RecordingTime, Elapsed: formatElapsed(elapsed)})
			}
		}
	}
}

// Stop ends the capture, persists the take and returns the file path. A
// recording with zero captured frames is discarded and returns an empty
// path with no file written.
func (r *Recorder) Stop() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.session == nil {
		return "", nil
	}

	// Close first so no further blocks arrive, then let the accumulate
	// loop drain what is left
	_ = r.session.Close()
	r.session = nil
	close(r.quit)
	<-r.drained

	buf := r.buf
	r.buf = nil
	r.rb = nil

	if buf == nil || buf.Frames() == 0 {
		r.sendEvent(RecorderEvent{Kind: RecordingStopped, Path: ""})
		logging.ForService("booth").Info("recording discarded, no frames captured")
		return "", nil
	}

	path := filepath.Join(os.TempDir(), fmt.Sprintf("muteone_recording_%s.wav", uuid.New().String()))
	if err := myaudio.SaveToWAV(path, buf); err != nil {
		r.sendEvent(RecorderEvent{Kind: RecordingError, Err: err})
		return "", err
	}

	r.sendEvent(RecorderEvent{Kind: RecordingStopped, Path: path})
	logging.ForService("booth").Info("recording saved",
		"path", path,
		"frames", buf.Frames(),
		"duration", buf.Duration().Round(time.Millisecond).String())
	return path, nil
}

// sendEvent publishes without blocking; stale time events are dropped
// under backpressure.
func (r *Recorder) sendEvent(ev RecorderEvent) {
	select {
	case r.events <- ev:
	default:
	}
}
