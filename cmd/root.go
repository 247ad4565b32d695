package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/omotiv/muteone/cmd/devices"
	"github.com/omotiv/muteone/cmd/monitor"
	"github.com/omotiv/muteone/cmd/overdub"
	"github.com/omotiv/muteone/cmd/play"
	"github.com/omotiv/muteone/cmd/record"
	"github.com/omotiv/muteone/cmd/separate"
	"github.com/omotiv/muteone/internal/conf"
)

// RootCommand creates and returns the root command
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "muteone",
		Short: "MuteOne CLI",
		Long:  "Capture, play and overdub audio, and remove an instrument from a mix with on-device source separation.",
	}

	// Set up the global flags for the root command.
	if err := setupFlags(rootCmd, settings); err != nil {
		cobra.CheckErr(err)
	}

	subcommands := []*cobra.Command{
		devices.Command(settings),
		monitor.Command(settings),
		record.Command(settings),
		play.Command(settings),
		overdub.Command(settings),
		separate.Command(settings),
	}
	rootCmd.AddCommand(subcommands...)

	return rootCmd
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) error {
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")
	rootCmd.PersistentFlags().StringVar(&settings.Audio.Source, "input", viper.GetString("audio.source"), "Capture device name, empty for automatic selection")
	rootCmd.PersistentFlags().StringVar(&settings.Audio.Output, "output-device", viper.GetString("audio.output"), "Playback device name, empty for the system default")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}

	return nil
}
