package booth

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/omotiv/muteone/internal/conf"
	"github.com/omotiv/muteone/internal/errors"
	"github.com/omotiv/muteone/internal/logging"
	"github.com/omotiv/muteone/internal/myaudio"
)

// Player streams a loaded buffer to an output device from a movable
// cursor, with pause/resume, stop and seek. Natural completion (the buffer
// runs out) resets the cursor and clears the playing flag.
type Player struct {
	settings *conf.Settings

	mu       sync.Mutex
	buf      *myaudio.Buffer // as loaded from disk
	source   *myaudio.Buffer // playback view, channel count clamped
	session  *myaudio.StreamSession
	playing  bool
	finished chan struct{}

	cursor atomic.Int64 // frame position, shared with the callback
}

// NewPlayer creates a player with nothing loaded.
func NewPlayer(settings *conf.Settings) *Player {
	return &Player{settings: settings}
}

// Load reads an audio file into memory and rewinds the cursor. Any active
// playback is stopped first.
func (p *Player) Load(path string) error {
	buf, err := myaudio.ReadAudioFile(path)
	if err != nil {
		return err
	}
	p.Stop()

	p.mu.Lock()
	p.buf = buf
	p.source = playbackView(buf)
	p.cursor.Store(0)
	p.mu.Unlock()

	logging.ForService("booth").Info("playback file loaded",
		"path", path,
		"duration", buf.Duration().Round(time.Millisecond).String())
	return nil
}

// playbackView clamps the buffer to at most two channels, matching the
// stereo output path. Mono stays mono.
func playbackView(buf *myaudio.Buffer) *myaudio.Buffer {
	if buf.Channels() > 2 {
		return buf.ToStereo()
	}
	return buf
}

// Play starts streaming from the current cursor position. Any existing
// session is fully closed first; playback and capture never share a
// half-open stream.
func (p *Player) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.source == nil {
		return errors.New(errors.ErrNoInputLoaded).
			Component("booth").
			Category(errors.CategoryValidation).
			Build()
	}
	p.closeSessionLocked(false)

	source := p.source
	channels := source.Channels()
	frames := source.Frames()
	finished := make(chan struct{})
	var once sync.Once

	callback := func(out, in []float32) {
		cursor := int(p.cursor.Load())
		if cursor >= frames {
			// Out is pre-zeroed by the stream layer; just flag completion
			once.Do(func() { close(finished) })
			return
		}
		blockFrames := len(out) / channels
		chunk := source.FrameRange(cursor, cursor+blockFrames)
		copy(out, chunk)
		// The remainder of out stays silent when the buffer ran short
		p.cursor.Store(int64(cursor + blockFrames))
		if cursor+blockFrames >= frames {
			once.Do(func() { close(finished) })
		}
	}

	cfg := myaudio.StreamConfig{
		Direction:    myaudio.DirectionPlayback,
		SampleRate:   source.SampleRate(),
		Channels:     channels,
		BlockSize:    p.settings.Audio.BlockSize,
		OutputSource: p.settings.Audio.Output,
	}

	onStop := func() {
		once.Do(func() { close(finished) })
	}

	session, err := myaudio.OpenStream(cfg, callback, onStop)
	if err != nil {
		return err
	}
	if err := session.Start(); err != nil {
		_ = session.Close()
		return err
	}

	p.session = session
	p.playing = true
	p.finished = finished
	go p.watchCompletion(session, finished)

	startFrame := p.cursor.Load()
	logging.ForService("booth").Info("playback started",
		"output", session.OutputName,
		"start_frame", startFrame)
	return nil
}

// watchCompletion closes the session and rewinds once the buffer is
// exhausted. Runs off the real-time thread.
func (p *Player) watchCompletion(session *myaudio.StreamSession, finished chan struct{}) {
	<-finished

	p.mu.Lock()
	defer p.mu.Unlock()
	// Only react if this session is still current; Stop/Pause already
	// handled their own teardown otherwise
	if p.session != session {
		return
	}
	_ = session.Close()
	p.session = nil
	p.playing = false
	p.cursor.Store(0)
	logging.ForService("booth").Info("playback finished")
}

// Pause stops the stream but keeps the cursor, so Play resumes in place.
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeSessionLocked(false)
}

// Stop stops the stream and rewinds the cursor to zero.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeSessionLocked(true)
}

func (p *Player) closeSessionLocked(rewind bool) {
	if p.session != nil {
		_ = p.session.Close()
		p.session = nil
	}
	p.playing = false
	if rewind {
		p.cursor.Store(0)
	}
}

// Seek moves the cursor to the given position, clamped to [0, duration].
// Valid while paused or stopped; it is not sample-accurate mid-stream.
func (p *Player) Seek(position time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.source == nil {
		return
	}
	frame := int64(position.Seconds() * float64(p.source.SampleRate()))
	if frame < 0 {
		frame = 0
	}
	if limit := int64(p.source.Frames()); frame > limit {
		frame = limit
	}
	p.cursor.Store(frame)
}

// Position returns the current cursor position as time.
func (p *Player) Position() time.Duration {
	p.mu.Lock()
	source := p.source
	p.mu.Unlock()
	if source == nil || source.SampleRate() == 0 {
		return 0
	}
	return time.Duration(float64(p.cursor.Load()) / float64(source.SampleRate()) * float64(time.Second))
}

// Duration returns the loaded buffer's length as time.
func (p *Player) Duration() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.source == nil {
		return 0
	}
	return p.source.Duration()
}

// Playing reports whether a playback session is active.
func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}
