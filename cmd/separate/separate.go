package separate

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/omotiv/muteone/internal/conf"
	"github.com/omotiv/muteone/internal/separation"
)

// Command creates the separate command, which removes one instrument from
// an audio file with on-device inference.
func Command(settings *conf.Settings) *cobra.Command {
	var (
		instrument  string
		highQuality bool
		outputDir   string
	)

	cmd := &cobra.Command{
		Use:   "separate [input file]",
		Short: "Remove an instrument from a mix",
		Long:  "Separates the input into stems, drops the selected instrument and writes the remaining mix as WAV.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manager := separation.NewModelManager(settings, separation.NewFailedModelSet())
			defer manager.Cleanup()
			pipeline := separation.NewPipeline(settings, manager)

			job, err := pipeline.Start(args[0], outputDir, instrument, highQuality)
			if err != nil {
				return err
			}

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				<-quit
				fmt.Println("\nCancelling...")
				job.Cancel()
			}()

			var failure string
			for n := range job.Notifications() {
				switch n.Kind {
				case separation.NotifyProgress:
					fmt.Printf("\r%3d%%", n.Progress)
				case separation.NotifyStatus:
					fmt.Printf("\r%s\n", n.Status)
				case separation.NotifyError:
					failure = n.Err
				case separation.NotifyCompleted:
					if n.OutputPath != "" {
						fmt.Printf("Output: %s\n", n.OutputPath)
					}
				}
			}

			if failure != "" {
				return fmt.Errorf("separation failed: %s", failure)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&instrument, "instrument", "i", separation.InstrumentVocals, "Instrument to remove: vocals, drums, bass or other")
	cmd.Flags().BoolVar(&highQuality, "high-quality", true, "Use the high quality isolator when removing vocals")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Directory for the output file, default from configuration")
	return cmd
}
