// Package conf loads and holds the application settings.
package conf

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"
)

// AudioSettings holds device and stream configuration.
type AudioSettings struct {
	Source       string `yaml:"source"`       // Input device name or ID, "sysdefault" for system default
	Output       string `yaml:"output"`       // Output device name or ID, "sysdefault" for system default
	SampleRate   int    `yaml:"samplerate"`   // Stream sample rate in Hz
	Channels     int    `yaml:"channels"`     // Capture channel count
	BlockSize    int    `yaml:"blocksize"`    // Frames per callback block
	PreferLoopback bool `yaml:"preferloopback"` // Prefer loopback/stereo-mix style devices for capture
}

// SeparationSettings holds model routing and output configuration.
type SeparationSettings struct {
	OutputDir    string `yaml:"outputdir"`    // Directory for separated output files
	HighQuality  bool   `yaml:"highquality"`  // Prefer the high quality single-stem isolator for vocals
	IsolatorPath string `yaml:"isolatorpath"` // Path to the single-stem isolator model file
	SeparatorPath string `yaml:"separatorpath"` // Path to the multi-stem separator model file
	Threads      int    `yaml:"threads"`      // Inference threads, 0 for automatic
}

// Settings is the root configuration structure.
type Settings struct {
	Debug      bool               `yaml:"debug"`
	Audio      AudioSettings      `yaml:"audio"`
	Separation SeparationSettings `yaml:"separation"`
}

var (
	settingsInstance *Settings
	settingsMutex    sync.RWMutex
)

// Load reads the configuration file and environment variables into Settings.
func Load() (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	settings := &Settings{}

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if err := validateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	settingsInstance = settings
	return settingsInstance, nil
}

// Setting returns the current settings instance, loading it on first use.
func Setting() *Settings {
	settingsMutex.RLock()
	instance := settingsInstance
	settingsMutex.RUnlock()
	if instance != nil {
		return instance
	}

	instance, err := Load()
	if err != nil {
		panic(fmt.Sprintf("error loading settings: %v", err))
	}
	return instance
}

// initViper initializes viper with default values and reads the configuration file.
func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("muteone")
	viper.AutomaticEnv()

	configPaths, err := defaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	setDefaultConfig()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			// No config file is fine, defaults apply
			return nil
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}

	return nil
}

// defaultConfigPaths returns OS appropriate configuration search paths.
func defaultConfigPaths() ([]string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("error fetching user home directory: %w", err)
	}
	return []string{
		filepath.Join(homeDir, ".config", "muteone"),
		".",
	}, nil
}

func validateSettings(settings *Settings) error {
	if settings.Audio.SampleRate <= 0 {
		return fmt.Errorf("invalid sample rate: %d", settings.Audio.SampleRate)
	}
	if settings.Audio.Channels < 1 || settings.Audio.Channels > 2 {
		return fmt.Errorf("invalid channel count: %d", settings.Audio.Channels)
	}
	if settings.Audio.BlockSize <= 0 {
		return fmt.Errorf("invalid block size: %d", settings.Audio.BlockSize)
	}
	return nil
}
