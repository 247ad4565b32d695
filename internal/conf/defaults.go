// conf/defaults.go default values for settings
package conf

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("audio.source", "sysdefault")
	viper.SetDefault("audio.output", "sysdefault")
	viper.SetDefault("audio.samplerate", SampleRate)
	viper.SetDefault("audio.channels", NumChannels)
	viper.SetDefault("audio.blocksize", BlockSize)
	viper.SetDefault("audio.preferloopback", true)

	viper.SetDefault("separation.outputdir", defaultOutputDir())
	viper.SetDefault("separation.highquality", true)
	viper.SetDefault("separation.isolatorpath", "models/isolator_inst_hq.tflite")
	viper.SetDefault("separation.separatorpath", "models/separator_4stem.tflite")
	viper.SetDefault("separation.threads", 0)
}

// defaultOutputDir returns the user's Downloads directory, falling back to
// the working directory when the home directory cannot be resolved.
func defaultOutputDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(homeDir, "Downloads")
}
