package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/omotiv/muteone/cmd"
	"github.com/omotiv/muteone/internal/conf"
	"github.com/omotiv/muteone/internal/logging"
)

func main() {
	settings, err := conf.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading configuration: %v\n", err)
		os.Exit(1)
	}

	logging.Init()
	if settings.Debug {
		logging.SetLevel(slog.LevelDebug)
	}

	rootCmd := cmd.RootCommand(settings)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
