// Package booth hosts the streaming clients of the audio engine: level
// monitor, recorder, overdub engine and player. The Controller serializes
// them so only one client binds a device direction at a time.
package booth

import (
	"sync"
	"time"

	"github.com/omotiv/muteone/internal/conf"
	"github.com/omotiv/muteone/internal/logging"
)

// Controller owns one instance of each streaming client and enforces the
// stop-before-start discipline between them. Binding a new real-time
// consumer always fully closes the previous one first; nothing is queued
// silently.
type Controller struct {
	Monitor  *LevelMonitor
	Recorder *Recorder
	Overdub  *OverdubEngine
	Player   *Player

	mu sync.Mutex
	// monitorPaused remembers that monitoring was active when recording
	// started, so StopRecording can bring it back.
	monitorPaused bool
}

// NewController wires up all streaming clients against shared settings.
func NewController(settings *conf.Settings) *Controller {
	return &Controller{
		Monitor:  NewLevelMonitor(settings),
		Recorder: NewRecorder(settings),
		Overdub:  NewOverdubEngine(settings),
		Player:   NewPlayer(settings),
	}
}

// StartMonitoring begins level metering on the capture device.
func (c *Controller) StartMonitoring() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Recorder.Recording() {
		// The recorder republishes the same level readings
		return nil
	}
	return c.Monitor.Start()
}

// StopMonitoring halts level metering.
func (c *Controller) StopMonitoring() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Monitor.Stop()
}

// StartRecording stops the level monitor if it is running (the recorder
// takes over level publishing), then begins capture.
func (c *Controller) StartRecording() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.monitorPaused = c.Monitor.Active()
	c.Monitor.Stop()
	c.Player.Stop()

	if err := c.Recorder.Start(); err != nil {
		if c.monitorPaused {
			// Capture failed, hand the device back to the monitor
			_ = c.Monitor.Start()
			c.monitorPaused = false
		}
		return err
	}
	return nil
}

// StopRecording ends the capture and restores the level monitor when it
// was active before the recording started. Returns the saved file path,
// or an empty path when nothing was captured.
func (c *Controller) StopRecording() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	path, err := c.Recorder.Stop()

	if c.monitorPaused {
		c.monitorPaused = false
		if startErr := c.Monitor.Start(); startErr != nil {
			logging.ForService("booth").Warn("could not resume level monitoring",
				"error", startErr.Error())
		}
	}
	return path, err
}

// RecordOverdub stops every other streaming client and runs one overdub
// pass against the loaded backing track.
func (c *Controller) RecordOverdub(duration time.Duration, outPath string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.Monitor.Stop()
	c.Player.Stop()
	if c.Recorder.Recording() {
		if _, err := c.Recorder.Stop(); err != nil {
			return "", err
		}
	}
	return c.Overdub.Record(duration, outPath)
}

// PlayFile stops the recorder-side clients and plays a file from the top.
func (c *Controller) PlayFile(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.Monitor.Stop()
	if c.Recorder.Recording() {
		if _, err := c.Recorder.Stop(); err != nil {
			return err
		}
	}
	if err := c.Player.Load(path); err != nil {
		return err
	}
	return c.Player.Play()
}

// Shutdown closes every streaming client.
func (c *Controller) Shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Monitor.Stop()
	if c.Recorder.Recording() {
		_, _ = c.Recorder.Stop()
	}
	c.Player.Stop()
}
