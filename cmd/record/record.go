package record

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

// Command creates the record command, which captures from the selected
// input device until interrupted or until --duration elapses.
func Command(settings *conf.Settings) *cobra.Command {
	var duration time.Duration

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record audio from an input device",
		RunE: func(cmd *cobra.Command, args []string) error {
			controller := booth.NewController(settings)
			defer controller.Shutdown()

			rec := controller.Recorder
			if err := controller.StartRecording(); err != nil {
				return err
			}

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

			var timeout <-chan time.Time
			if duration > 0 {
				timeout = time.After(duration)
			}

			fmt.Println("Recording, press Ctrl-C to stop")
		loop:
			for {
				select {
				case ev := <-rec.Events():
					switch ev.Kind {
					case booth.RecordingTime:
						fmt.Printf("\r%s", ev.Elapsed)
					case booth.RecordingError:
						fmt.Println()
						_, _ = controller.StopRecording()
						return ev.Err
					}
				case <-quit:
					break loop
				case <-timeout:
					break loop
				}
			}
			fmt.Println()

			path, err := controller.StopRecording()
			if err != nil {
				return err
			}
			if path == "" {
				fmt.Println("Nothing captured, recording discarded")
				return nil
			}
			fmt.Printf("Saved: %s\n", path)
			return nil
		},
	}

	cmd.Flags().DurationVar(&duration, "duration", 0, "Stop automatically after this duration, 0 to record until interrupted")
	return cmd
}
