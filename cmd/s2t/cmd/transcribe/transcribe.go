package transcribe

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"
	"s2t/cmd/s2t/cmd/cli"
	"s2t/internal/app/converter"
)

var forceProgress bool

func init() {
	Cmd.Flags().BoolVar(&forceProgress, "progress", false, "show the progress bar even when not attached to a terminal")
}

// Cmd represents the transcribe command
var Cmd = &cobra.Command{
	Use:   "transcribe FILE",
	Short: "Transcribe a WAV file",
	Long: `Transcribe a WAV file

- The file is copied to a temporary file in chunks, then decoded and recognized
- Progress is shown as a bar from 0 to 100%`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := cli.Bootstrap()
		if err != nil {
			return err
		}
		defer a.Logger.Sync()

		path := args[0]
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		stat, err := f.Stat()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		progress := converter.NewProgressManager(converter.ProgressConfig{
			Enabled: converter.ShouldShowProgress(forceProgress),
			Writer:  cmd.ErrOrStderr(),
		})
		fmt.Fprintln(cmd.ErrOrStderr(), converter.FileProcessingNotice)
		bar := progress.CreateBar(filepath.Base(path))

		result := a.Files.Transcribe(ctx, converter.Upload{
			Name: filepath.Base(path),
			Size: stat.Size(),
			Body: f,
		}, bar)

		if result.Failed() {
			bar.Abort()
		} else {
			bar.Complete()
		}
		progress.Wait()

		fmt.Fprintln(cmd.OutOrStdout(), result.Message)
		if result.Failed() {
			return fmt.Errorf("transcription failed")
		}
		return nil
	},
}
