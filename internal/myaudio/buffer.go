package myaudio

import (
	"fmt"
	"time"
)

// Buffer is a fixed-rate multichannel sample buffer. Samples are stored as
// interleaved float32 values normalized to [-1, 1]. Sample rate and channel
// count are immutable after creation; the frame count only grows by append.
//
// A Buffer is owned by exactly one component at a time. Ownership moves with
// the component that mutates it (the recorder while capturing, the overdub
// engine during mixdown) and is handed off on completion, never shared for
// concurrent writes.
type Buffer struct {
	sampleRate int
	channels   int
	data       []float32
}

// NewBuffer creates an empty buffer with the given format.
func NewBuffer(sampleRate, channels int) *Buffer {
	return &Buffer{
		sampleRate: sampleRate,
		channels:   channels,
	}
}

// NewSizedBuffer creates a zero-filled buffer holding exactly frames frames.
// Used for fixed-duration captures where the length is known up front.
func NewSizedBuffer(sampleRate, channels, frames int) *Buffer {
	return &Buffer{
		sampleRate: sampleRate,
		channels:   channels,
		data:       make([]float32, frames*channels),
	}
}

// SampleRate returns the sample rate in Hz.
func (b *Buffer) SampleRate() int { return b.sampleRate }

// Channels returns the channel count.
func (b *Buffer) Channels() int { return b.channels }

// Frames returns the number of frames currently in the buffer.
func (b *Buffer) Frames() int {
	if b.channels == 0 {
		return 0
	}
	return len(b.data) / b.channels
}

// Duration returns the buffer length as wall-clock time.
func (b *Buffer) Duration() time.Duration {
	if b.sampleRate == 0 {
		return 0
	}
	return time.Duration(float64(b.Frames()) / float64(b.sampleRate) * float64(time.Second))
}

// Samples returns the interleaved sample data. The slice aliases the
// buffer's storage; callers must not write through it while another
// component owns the buffer.
func (b *Buffer) Samples() []float32 { return b.data }

// Append adds interleaved samples to the end of the buffer. The sample
// count must be a multiple of the channel count.
func (b *Buffer) Append(samples []float32) error {
	if len(samples)%b.channels != 0 {
		return fmt.Errorf("sample count %d is not a multiple of channel count %d", len(samples), b.channels)
	}
	b.data = append(b.data, samples...)
	return nil
}

// WriteAt copies interleaved samples into the buffer starting at the given
// frame offset, without growing it. Returns the number of frames copied.
func (b *Buffer) WriteAt(frameOffset int, samples []float32) int {
	if frameOffset >= b.Frames() {
		return 0
	}
	n := copy(b.data[frameOffset*b.channels:], samples)
	return n / b.channels
}

// FrameRange returns a view of the interleaved samples for frames
// [from, to), clamped to the buffer length.
func (b *Buffer) FrameRange(from, to int) []float32 {
	frames := b.Frames()
	from = clampFrame(from, frames)
	to = clampFrame(to, frames)
	if from >= to {
		return nil
	}
	return b.data[from*b.channels : to*b.channels]
}

// Clone returns a deep copy of the buffer.
func (b *Buffer) Clone() *Buffer {
	data := make([]float32, len(b.data))
	copy(data, b.data)
	return &Buffer{
		sampleRate: b.sampleRate,
		channels:   b.channels,
		data:       data,
	}
}

// ToStereo normalizes the buffer to exactly two channels: mono input is
// duplicated to both channels, anything beyond two channels is truncated
// to the first two. Two-channel input is returned as-is.
func (b *Buffer) ToStereo() *Buffer {
	if b.channels == 2 {
		return b
	}
	frames := b.Frames()
	out := &Buffer{
		sampleRate: b.sampleRate,
		channels:   2,
		data:       make([]float32, frames*2),
	}
	switch {
	case b.channels == 1:
		for i := 0; i < frames; i++ {
			out.data[i*2] = b.data[i]
			out.data[i*2+1] = b.data[i]
		}
	default:
		for i := 0; i < frames; i++ {
			out.data[i*2] = b.data[i*b.channels]
			out.data[i*2+1] = b.data[i*b.channels+1]
		}
	}
	return out
}

func clampFrame(frame, frames int) int {
	if frame < 0 {
		return 0
	}
	if frame > frames {
		return frames
	}
	return frame
}
