package booth

import "fmt"

// RecorderEventKind identifies a recorder lifecycle event.
type RecorderEventKind int

const (
	// RecordingStarted is emitted once when capture begins.
	RecordingStarted RecorderEventKind = iota
	// RecordingTime is emitted about once per second with the elapsed time.
	RecordingTime
	// RecordingStopped is emitted once when capture ends. Path carries the
	// saved file, or is empty when nothing was captured.
	RecordingStopped
	// RecordingError is emitted when capture fails asynchronously.
	RecordingError
)

// RecorderEvent is one asynchronous recorder notification. Events are
// delivered best-effort on a bounded channel and may be dropped under
// backpressure; Stop returns the saved path directly, so the stopped
// event is advisory like the rest.
type RecorderEvent struct {
	Kind    RecorderEventKind
	Elapsed string // "MM:SS", set for RecordingTime
	Path    string // set for RecordingStopped
	Err     error  // set for RecordingError
}

// formatElapsed renders a second count as MM:SS.
func formatElapsed(seconds int) string {
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
