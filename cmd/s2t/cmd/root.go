package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"s2t/cmd/s2t/cmd/cli"
	"s2t/cmd/s2t/cmd/listen"
	"s2t/cmd/s2t/cmd/providers"
	"s2t/cmd/s2t/cmd/serve"
	"s2t/cmd/s2t/cmd/transcribe"
	"s2t/cmd/s2t/cmd/version"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "s2t",
	Short: "Speech to text for WAV files and live microphone input",
	Long: `Speech to text for WAV files and live microphone input.
- transcribe a WAV file with a progress bar
- listen to the microphone until you say the stop keyword
- serve both flows over HTTP with a small browser UI`,
	SilenceUsage:     true,
	TraverseChildren: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serve.Cmd)
	rootCmd.AddCommand(transcribe.Cmd)
	rootCmd.AddCommand(listen.Cmd)
	rootCmd.AddCommand(providers.Cmd)
	rootCmd.AddCommand(version.Cmd)

	rootCmd.PersistentFlags().StringVar(&cli.ConfigPath, "config", "", "config file (default $S2T_CONFIG or ./s2t.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&cli.Verbose, "verbose", "V", false, "verbose output")
}
