package monitor

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/omotiv/muteone/internal/booth"
	"github.com/omotiv/muteone/internal/conf"
	"github.com/omotiv/muteone/internal/myaudio"
)

// Command creates the monitor command, which meters input levels on the
// selected capture device until interrupted.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Show live input levels",
		RunE: func(cmd *cobra.Command, args []string) error {
			mon := booth.NewLevelMonitor(settings)
			if err := mon.Start(); err != nil {
				return err
			}
			defer mon.Stop()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

			fmt.Println("Monitoring input levels, press Ctrl-C to stop")
			for {
				select {
				case level := <-mon.Levels():
					fmt.Printf("\r%s", renderLevels(level))
				case <-quit:
					fmt.Println()
					return nil
				}
			}
		},
	}
	return cmd
}

// renderLevels draws one bar per channel plus a clip marker.
func renderLevels(level myaudio.LevelData) string {
	var sb strings.Builder
	for i, pct := range level.Levels {
		if i > 0 {
			sb.WriteString("  ")
		}
		filled := pct / 5
		sb.WriteString("[")
		sb.WriteString(strings.Repeat("#", filled))
		sb.WriteString(strings.Repeat("-", 20-filled))
		sb.WriteString(fmt.Sprintf("] %3d%%", pct))
	}
	if level.Clipping {
		sb.WriteString("  CLIP")
	} else {
		sb.WriteString("      ")
	}
	return sb.String()
}
