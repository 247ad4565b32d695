package myaudio

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"

	"github.com/omotiv/muteone/internal/errors"
)

// ReadAudioFile decodes an audio file into a Buffer. WAV, MP3 and Ogg
// Vorbis containers are supported; the format is chosen by file extension.
func ReadAudioFile(path string) (*Buffer, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.New(err).
			Component("myaudio").
			Category(errors.CategoryFileIO).
			FileContext(path, -1).
			Build()
	}
	defer file.Close()

	var buf *Buffer
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		buf, err = readWAV(file)
	case ".mp3":
		buf, err = readMP3(file)
	case ".ogg", ".oga":
		buf, err = readOgg(file)
	default:
		err = fmt.Errorf("unsupported audio format: %s", filepath.Ext(path))
	}
	if err != nil {
		return nil, errors.New(err).
			Component("myaudio").
			Category(errors.CategoryFileParsing).
			FileContext(path, -1).
			Build()
	}
	return buf, nil
}

func readWAV(file *os.File) (*Buffer, error) {
	decoder := wav.NewDecoder(file)
	decoder.ReadInfo()
	if !decoder.IsValidFile() {
		return nil, errors.NewStd("invalid WAV file format")
	}

	if decoder.BitDepth != 16 && decoder.BitDepth != 24 && decoder.BitDepth != 32 {
		return nil, fmt.Errorf("unsupported bit depth: %d", decoder.BitDepth)
	}

	divisor, err := sampleDivisor(int(decoder.BitDepth))
	if err != nil {
		return nil, err
	}

	intBuf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("error decoding WAV data: %w", err)
	}

	buf := NewBuffer(int(decoder.SampleRate), int(decoder.NumChans))
	samples := make([]float32, len(intBuf.Data))
	for i, sample := range intBuf.Data {
		samples[i] = float32(sample) / divisor
	}
	if err := buf.Append(samples); err != nil {
		return nil, err
	}
	return buf, nil
}

func readMP3(file *os.File) (*Buffer, error) {
	decoder, err := gomp3.NewDecoder(file)
	if err != nil {
		return nil, fmt.Errorf("error opening MP3 decoder: %w", err)
	}

	// go-mp3 always emits 16-bit little-endian stereo PCM
	buf := NewBuffer(decoder.SampleRate(), 2)
	raw := make([]byte, 8192)
	samples := make([]float32, 0, 4096)
	for {
		n, err := decoder.Read(raw)
		if n > 0 {
			samples = samples[:0]
			for i := 0; i+1 < n; i += 2 {
				v := int16(uint16(raw[i]) | uint16(raw[i+1])<<8)
				samples = append(samples, float32(v)/32768.0)
			}
			if appendErr := buf.Append(samples); appendErr != nil {
				return nil, appendErr
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error decoding MP3 data: %w", err)
		}
	}
	return buf, nil
}

func readOgg(file *os.File) (*Buffer, error) {
	samples, format, err := oggvorbis.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("error decoding Ogg Vorbis data: %w", err)
	}
	buf := NewBuffer(format.SampleRate, format.Channels)
	if err := buf.Append(samples); err != nil {
		return nil, err
	}
	return buf, nil
}

// sampleDivisor returns the float conversion divisor for a PCM bit depth.
func sampleDivisor(bitDepth int) (float32, error) {
	switch bitDepth {
	case 16:
		return 32768.0, nil
	case 24:
		return 8388608.0, nil
	case 32:
		return 2147483648.0, nil
	default:
		return 0, fmt.Errorf("unsupported audio file bit depth: %d", bitDepth)
	}
}
