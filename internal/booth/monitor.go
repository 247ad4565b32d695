package booth

import (
	"sync"

	"github.com/omotiv/muteone/internal/conf"
	"github.com/omotiv/muteone/internal/logging"
	"github.com/omotiv/muteone/internal/myaudio"
)

// LevelMonitor streams per-channel level readings from a capture device
// without recording anything. It holds no audio beyond the current block.
type LevelMonitor struct {
	settings  *conf.Settings
	levelChan chan myaudio.LevelData

	mu      sync.Mutex
	session *myaudio.StreamSession
}

// NewLevelMonitor creates a monitor publishing on a bounded level channel.
func NewLevelMonitor(settings *conf.Settings) *LevelMonitor {
	return &LevelMonitor{
		settings:  settings,
		levelChan: make(chan myaudio.LevelData, 16),
	}
}

// Levels returns the channel level readings are published on. Readings are
// best-effort: under backpressure they are dropped, never queued unbounded.
func (m *LevelMonitor) Levels() <-chan myaudio.LevelData {
	return m.levelChan
}

// Start opens a capture-only session and begins publishing level readings.
func (m *LevelMonitor) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session != nil {
		return nil
	}

	audio := &m.settings.Audio
	cfg := myaudio.StreamConfig{
		Direction:      myaudio.DirectionCapture,
		SampleRate:     audio.SampleRate,
		Channels:       audio.Channels,
		BlockSize:      audio.BlockSize,
		InputSource:    audio.Source,
		PreferLoopback: audio.PreferLoopback,
	}

	channels := audio.Channels
	var source string
	callback := func(out, in []float32) {
		myaudio.ProcessLevel(in, channels, source, m.levelChan)
	}

	session, err := myaudio.OpenStream(cfg, callback, nil)
	if err != nil {
		return err
	}
	source = session.InputName

	if err := session.Start(); err != nil {
		_ = session.Close()
		return err
	}
	m.session = session

	logging.ForService("booth").Info("level monitoring started", "source", session.InputName)
	return nil
}

// Stop closes the capture session. Safe to call from any goroutine except
// the stream callback itself; it waits for at most one in-flight block.
func (m *LevelMonitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return
	}
	_ = m.session.Close()
	m.session = nil
	logging.ForService("booth").Info("level monitoring stopped")
}

// Active reports whether the monitor currently holds a capture session.
func (m *LevelMonitor) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session != nil
}
