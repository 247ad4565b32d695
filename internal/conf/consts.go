// conf/consts.go hardcoded constants for the capture and playback engine
package conf

const (
	SampleRate  = 44100 // Sample rate used for capture, overdub and playback streams
	BitDepth    = 16    // Bit depth of WAV files written by the engine
	NumChannels = 2     // Number of channels captured from the input device
	BlockSize   = 1024  // Frames per real-time callback block
)
