package overdub

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/omotiv/muteone/internal/booth"
	"github.com/omotiv/muteone/internal/conf"
)

// Command creates the overdub command, which plays a backing track while
// recording a new take and writes the mix of both.
func Command(settings *conf.Settings) *cobra.Command {
	var (
		duration time.Duration
		output   string
	)

	cmd := &cobra.Command{
		Use:   "overdub [backing.wav]",
		Short: "Record a take over a backing track",
		Long:  "Plays the backing track while capturing the input device, then mixes the take into the backing and writes the result.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine := booth.NewOverdubEngine(settings)
			if err := engine.LoadBacking(args[0]); err != nil {
				return err
			}

			if output == "" {
				base := strings.TrimSuffix(args[0], filepath.Ext(args[0]))
				output = base + "_overdub.wav"
			}

			fmt.Printf("Recording %s over %s...\n", duration, filepath.Base(args[0]))
			path, err := engine.Record(duration, output)
			if err != nil {
				return err
			}
			fmt.Printf("Saved: %s\n", path)
			return nil
		},
	}

	cmd.Flags().DurationVar(&duration, "duration", 10*time.Second, "Length of the take to capture")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file path, default <backing>_overdub.wav")
	return cmd
}
