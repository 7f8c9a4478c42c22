package listen

import (
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"s2t/cmd/s2t/cmd/cli"
	"s2t/internal/app/audio/microphone"
	"s2t/internal/app/converter"
)

var (
	keyword     string
	device      string
	listDevices bool
)

func init() {
	Cmd.Flags().StringVarP(&keyword, "keyword", "k", "", "word that ends the session (default from config)")
	Cmd.Flags().StringVarP(&device, "device", "d", "", "input device name (default from config)")
	Cmd.Flags().BoolVar(&listDevices, "list-devices", false, "list input devices and exit")
}

// Cmd represents the listen command
var Cmd = &cobra.Command{
	Use:   "listen",
	Short: "Transcribe speech from the microphone until the stop keyword",
	Long: `Transcribe speech from the microphone until the stop keyword

- Calibrates against ambient noise, then echoes every recognized phrase
- Saying the keyword ("stop" by default) or pressing Ctrl-C ends the session`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if listDevices {
			return printDevices(cmd.OutOrStdout())
		}

		cfg, err := cli.LoadConfig()
		if err != nil {
			return err
		}
		if keyword != "" {
			cfg.Live.Keyword = keyword
		}
		if device != "" {
			cfg.Live.Device = device
		}

		a, err := cli.BootstrapWith(cfg)
		if err != nil {
			return err
		}
		defer a.Logger.Sync()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		result := a.Live.Run(ctx, &terminalRenderer{out: cmd.OutOrStdout(), verbose: cli.Verbose})
		fmt.Fprintln(cmd.OutOrStdout(), result.Message)
		if result.Failed() {
			return fmt.Errorf("live transcription failed")
		}
		return nil
	},
}

func printDevices(out io.Writer) error {
	devices, err := microphone.ListInputDevices()
	if err != nil {
		return err
	}
	for _, d := range devices {
		marker := " "
		if d.IsDefault {
			marker = "*"
		}
		fmt.Fprintf(out, "%s %s (%d ch, %.0f Hz)\n", marker, d.Name, d.MaxInputChannels, d.DefaultSampleRate)
	}
	return nil
}

// terminalRenderer prints live updates line by line
type terminalRenderer struct {
	out     io.Writer
	verbose bool
}

var _ converter.Renderer = (*terminalRenderer)(nil)

func (r *terminalRenderer) State(state converter.LiveState) {
	if r.verbose {
		fmt.Fprintf(r.out, "[%s]\n", state)
	}
}

func (r *terminalRenderer) Info(message string)    { fmt.Fprintln(r.out, message) }
func (r *terminalRenderer) Said(message string)    { fmt.Fprintln(r.out, message) }
func (r *terminalRenderer) Warning(message string) { fmt.Fprintln(r.out, "! "+message) }
