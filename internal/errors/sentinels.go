package errors

// Sentinel errors shared across the capture, playback and separation
// components. Callers match these with errors.Is.
var (
	// ErrDeviceUnavailable indicates a stream could not be opened because
	// the requested device is missing or busy. Recoverable by falling back
	// to the default device.
	ErrDeviceUnavailable = NewStd("audio device unavailable")

	// ErrNoBackingLoaded indicates an overdub was requested before a
	// backing track was loaded.
	ErrNoBackingLoaded = NewStd("no backing track loaded")

	// ErrNoInputLoaded indicates playback or separation was requested
	// before any input audio was loaded.
	ErrNoInputLoaded = NewStd("no input audio loaded")

	// ErrModelPreviouslyFailed indicates the model identifier is
	// quarantined after an earlier load failure and will not be retried
	// for the remainder of the process.
	ErrModelPreviouslyFailed = NewStd("model previously failed to load")

	// ErrModelLoadFailed indicates a model load attempt failed. The
	// identifier is quarantined as a side effect.
	ErrModelLoadFailed = NewStd("model load failed")

	// ErrInferenceFailed indicates the separation backend failed during
	// inference. No retry and no fallback model substitution.
	ErrInferenceFailed = NewStd("inference failed")

	// ErrOutputMissingStems indicates the backend returned incomplete
	// results. Treated the same as an inference failure.
	ErrOutputMissingStems = NewStd("backend output missing expected stems")

	// ErrCancelled marks cooperative cancellation. It is a terminal job
	// state, not a fault.
	ErrCancelled = NewStd("operation cancelled")
)
