package myaudio

import (
	"encoding/binary"
	"math"
	"sync"
	"sync/atomic"

	"github.com/gen2brain/malgo"

	"github.com/omotiv/muteone/internal/errors"
)

// Direction describes which way audio flows through a stream session.
type Direction int

const (
	// DirectionCapture reads from an input device only.
	DirectionCapture Direction = iota
	// DirectionPlayback writes to an output device only.
	DirectionPlayback
	// DirectionDuplex captures and plays back simultaneously.
	DirectionDuplex
)

// DataFunc is invoked once per audio block on the driver's real-time
// thread. in holds captured interleaved samples and is nil unless the
// session captures; out must be filled before returning and is nil unless
// the session plays back. The callback must not block and must not panic;
// faults are degraded to silence and reported asynchronously.
type DataFunc func(out, in []float32)

// StopFunc is invoked when the device stops outside of an explicit Stop or
// Close call, for example when the hardware disappears.
type StopFunc func()

// StreamConfig describes a stream session to open.
type StreamConfig struct {
	Direction      Direction
	SampleRate     int
	Channels       int
	BlockSize      int    // frames per callback block
	InputSource    string // capture device name or ID, empty for default
	OutputSource   string // playback device name or ID, empty for default
	PreferLoopback bool   // prefer loopback/system-mix devices for capture
}

// StreamSession is the live binding between an open malgo device and a
// block callback. Lifecycle: Open -> Start -> Stop -> Close. Close is
// idempotent and guarantees the callback is never invoked after it
// returns, so owners can safely release their buffers.
type StreamSession struct {
	cfg      StreamConfig
	callback DataFunc
	onStop   StopFunc

	ctx    *malgo.AllocatedContext
	device *malgo.Device

	mu      sync.Mutex
	running atomic.Bool
	closed  atomic.Bool

	// Scratch buffers reused across callbacks to keep the real-time path
	// allocation-free.
	inScratch  []float32
	outScratch []float32

	// InputName and OutputName report the devices the session actually
	// bound, after default fallback.
	InputName  string
	OutputName string
}

// OpenStream opens a stream session but does not start it. Device
// resolution failures and driver open failures surface as
// ErrDeviceUnavailable; the caller decides whether to retry with the
// default device.
func OpenStream(cfg StreamConfig, callback DataFunc, onStop StopFunc) (*StreamSession, error) {
	if cfg.BlockSize <= 0 || cfg.SampleRate <= 0 || cfg.Channels <= 0 {
		return nil, errors.Newf("invalid stream config: rate=%d channels=%d block=%d",
			cfg.SampleRate, cfg.Channels, cfg.BlockSize).
			Component("myaudio").
			Category(errors.CategoryValidation).
			Build()
	}

	s := &StreamSession{
		cfg:        cfg,
		callback:   callback,
		onStop:     onStop,
		inScratch:  make([]float32, cfg.BlockSize*cfg.Channels*2),
		outScratch: make([]float32, cfg.BlockSize*cfg.Channels*2),
	}

	ctx, err := malgo.InitContext([]malgo.Backend{platformBackend()}, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, errors.New(err).
			Component("myaudio").
			Category(errors.CategoryStream).
			Context("operation", "init_context").
			Build()
	}
	s.ctx = ctx

	deviceConfig, err := s.buildDeviceConfig()
	if err != nil {
		_ = ctx.Uninit()
		return nil, err
	}

	deviceCallbacks := malgo.DeviceCallbacks{
		Data: s.onData,
		Stop: s.onDeviceStop,
	}

	device, err := malgo.InitDevice(ctx.Context, deviceConfig, deviceCallbacks)
	if err != nil {
		_ = ctx.Uninit()
		return nil, errors.New(errors.ErrDeviceUnavailable).
			Component("myaudio").
			Category(errors.CategoryDevice).
			Context("cause", err.Error()).
			Context("operation", "init_device").
			Build()
	}
	s.device = device

	return s, nil
}

// buildDeviceConfig resolves the requested devices and assembles the malgo
// device configuration for the session direction.
func (s *StreamSession) buildDeviceConfig() (malgo.DeviceConfig, error) {
	var kind malgo.DeviceType
	switch s.cfg.Direction {
	case DirectionCapture:
		kind = malgo.Capture
	case DirectionPlayback:
		kind = malgo.Playback
	case DirectionDuplex:
		kind = malgo.Duplex
	}

	deviceConfig := malgo.DefaultDeviceConfig(kind)
	deviceConfig.SampleRate = uint32(s.cfg.SampleRate)
	deviceConfig.PeriodSizeInFrames = uint32(s.cfg.BlockSize)
	deviceConfig.Alsa.NoMMap = 1

	if s.cfg.Direction == DirectionCapture || s.cfg.Direction == DirectionDuplex {
		infos, err := s.ctx.Devices(malgo.Capture)
		if err != nil {
			return deviceConfig, errors.New(err).
				Component("myaudio").
				Category(errors.CategoryDevice).
				Context("operation", "enumerate_capture").
				Build()
		}
		source, err := selectDevice(infos, s.cfg.InputSource, s.cfg.PreferLoopback)
		if err != nil {
			return deviceConfig, err
		}
		deviceConfig.Capture.Format = malgo.FormatF32
		deviceConfig.Capture.Channels = uint32(s.cfg.Channels)
		deviceConfig.Capture.DeviceID = source.ID.Pointer()
		s.InputName = source.Name()
	}

	if s.cfg.Direction == DirectionPlayback || s.cfg.Direction == DirectionDuplex {
		infos, err := s.ctx.Devices(malgo.Playback)
		if err != nil {
			return deviceConfig, errors.New(err).
				Component("myaudio").
				Category(errors.CategoryDevice).
				Context("operation", "enumerate_playback").
				Build()
		}
		sink, err := selectDevice(infos, s.cfg.OutputSource, false)
		if err != nil {
			return deviceConfig, err
		}
		deviceConfig.Playback.Format = malgo.FormatF32
		deviceConfig.Playback.Channels = uint32(s.cfg.Channels)
		deviceConfig.Playback.DeviceID = sink.ID.Pointer()
		s.OutputName = sink.Name()
	}

	return deviceConfig, nil
}

// onData bridges the driver's byte blocks to the session callback. It runs
// on the real-time thread: no allocation, no locks, no error returns. Any
// fault degrades to silence.
func (s *StreamSession) onData(pOutput, pInput []byte, framecount uint32) {
	if s.closed.Load() {
		zeroBytes(pOutput)
		return
	}

	sampleCount := int(framecount) * s.cfg.Channels

	var in []float32
	if pInput != nil {
		if sampleCount > len(s.inScratch) {
			// Driver delivered more than we sized for; truncate rather
			// than allocate on the real-time path
			sampleCount = len(s.inScratch)
		}
		in = s.inScratch[:sampleCount]
		DecodeFloat32LE(in, pInput)
	}

	var out []float32
	if pOutput != nil {
		n := int(framecount) * s.cfg.Channels
		if n > len(s.outScratch) {
			n = len(s.outScratch)
		}
		out = s.outScratch[:n]
		for i := range out {
			out[i] = 0
		}
	}

	s.callback(out, in)

	if pOutput != nil {
		EncodeFloat32LE(pOutput, out)
	}
}

// onDeviceStop relays unexpected device stops. Explicit Stop and Close
// suppress the notification. Runs the handler on its own goroutine so the
// driver thread is never blocked by the consumer.
func (s *StreamSession) onDeviceStop() {
	if s.closed.Load() || !s.running.Load() {
		return
	}
	if s.onStop != nil {
		go s.onStop()
	}
}

// Start begins invoking the callback per block.
func (s *StreamSession) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed.Load() {
		return errors.Newf("stream session already closed").
			Component("myaudio").
			Category(errors.CategoryState).
			Build()
	}
	if s.running.Load() {
		return nil
	}
	if err := s.device.Start(); err != nil {
		return errors.New(err).
			Component("myaudio").
			Category(errors.CategoryStream).
			Context("operation", "start_device").
			Build()
	}
	s.running.Store(true)
	return nil
}

// Stop halts the stream but keeps the session open for a later Start.
// Safe to call from outside the callback context.
func (s *StreamSession) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed.Load() || !s.running.Load() {
		return nil
	}
	s.running.Store(false)
	if err := s.device.Stop(); err != nil {
		return errors.New(err).
			Component("myaudio").
			Category(errors.CategoryStream).
			Context("operation", "stop_device").
			Build()
	}
	return nil
}

// Close stops the stream and releases the device and context. Idempotent.
// When Close returns, no further callback invocations can happen: the
// closed flag short-circuits any in-flight block and device uninit joins
// the driver thread.
func (s *StreamSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed.Swap(true) {
		return nil
	}
	s.running.Store(false)
	if s.device != nil {
		s.device.Uninit()
		s.device = nil
	}
	if s.ctx != nil {
		_ = s.ctx.Uninit()
		s.ctx = nil
	}
	return nil
}

// DecodeFloat32LE decodes little-endian IEEE 754 samples into dst. dst
// length selects how many samples are decoded; returns the count.
func DecodeFloat32LE(dst []float32, src []byte) int {
	n := len(src) / 4
	if n > len(dst) {
		n = len(dst)
	}
	for i := 0; i < n; i++ {
		dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(src[i*4:]))
	}
	return n
}

// EncodeFloat32LE encodes samples into a little-endian byte block,
// zero-filling any remainder of dst.
func EncodeFloat32LE(dst []byte, src []float32) {
	n := len(dst) / 4
	for i := 0; i < n; i++ {
		if i < len(src) {
			binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(src[i]))
		} else {
			binary.LittleEndian.PutUint32(dst[i*4:], 0)
		}
	}
}

func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
