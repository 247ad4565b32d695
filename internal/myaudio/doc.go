// Package myaudio provides the real-time audio foundation for MuteOne:
// multichannel sample buffers, WAV/MP3/Ogg file decoding, 16-bit PCM WAV
// encoding, per-block level metering, device enumeration with loopback-aware
// fallback, and malgo-backed capture/playback/duplex stream sessions with a
// bounded-latency block callback.
//
// The stream layer is the single real-time driver in the application. The
// clients in package booth (level monitor, recorder, overdub engine, player)
// are mutually exclusive consumers of it; only one of them may bind a given
// device direction at a time.
package myaudio
