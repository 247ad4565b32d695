package booth

import "github.com/omotiv/muteone/internal/conf"

// testSettings returns settings that never touch the user's configuration.
func testSettings() *conf.Settings {
	return &conf.Settings{
		Audio: conf.AudioSettings{
			SampleRate: 44100,
			Channels:   2,
			BlockSize:  1024,
		},
	}
}
