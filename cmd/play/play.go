package play

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/omotiv/muteone/internal/booth"
	"github.com/omotiv/muteone/internal/conf"
)

// Command creates the play command, which plays a single audio file to
// the selected output device.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play [file]",
		Short: "Play an audio file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			player := booth.NewPlayer(settings)
			if err := player.Load(args[0]); err != nil {
				return err
			}
			if err := player.Play(); err != nil {
				return err
			}
			defer player.Stop()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

			fmt.Printf("Playing %s (%s), press Ctrl-C to stop\n",
				args[0], player.Duration().Round(time.Second))

			ticker := time.NewTicker(200 * time.Millisecond)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					if !player.Playing() {
						return nil
					}
				case <-quit:
					return nil
				}
			}
		},
	}
	return cmd
}
