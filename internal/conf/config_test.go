package conf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSettings(t *testing.T) {
	valid := func() *Settings {
		return &Settings{
			Audio: AudioSettings{
				SampleRate: SampleRate,
				Channels:   NumChannels,
				BlockSize:  BlockSize,
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr bool
	}{
		{"defaults are valid", func(s *Settings) {}, false},
		{"mono capture is valid", func(s *Settings) { s.Audio.Channels = 1 }, false},
		{"zero sample rate", func(s *Settings) { s.Audio.SampleRate = 0 }, true},
		{"negative sample rate", func(s *Settings) { s.Audio.SampleRate = -44100 }, true},
		{"zero channels", func(s *Settings) { s.Audio.Channels = 0 }, true},
		{"surround capture", func(s *Settings) { s.Audio.Channels = 6 }, true},
		{"zero block size", func(s *Settings) { s.Audio.BlockSize = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := valid()
			tt.mutate(settings)
			err := validateSettings(settings)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
