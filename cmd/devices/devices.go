package devices

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/omotiv/muteone/internal/conf"
	"github.com/omotiv/muteone/internal/myaudio"
)

// Command creates the devices command, which lists the audio devices
// visible through the platform backend.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "devices",
		Short: "List available audio devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			capture, err := myaudio.ListCaptureDevices()
			if err != nil {
				return err
			}
			playback, err := myaudio.ListPlaybackDevices()
			if err != nil {
				return err
			}

			fmt.Println("Capture devices:")
			printDevices(capture)
			fmt.Println()
			fmt.Println("Playback devices:")
			printDevices(playback)
			return nil
		},
	}
	return cmd
}

func printDevices(infos []myaudio.DeviceInfo) {
	if len(infos) == 0 {
		fmt.Println("  (none)")
		return
	}
	for _, info := range infos {
		marker := " "
		if info.IsDefault {
			marker = "*"
		}
		fmt.Printf("  %s [%d] %s\n", marker, info.Index, info.Name)
	}
}
