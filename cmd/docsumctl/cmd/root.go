package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"docsum-backend/internal/shared/config"
	"docsum-backend/internal/shared/telemetry"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "docsumctl",
	Short: "Document summaries and speech from the command line",
	Long: `docsumctl runs the summarizer and the speech gateway locally and
drives the playback controller against a running API server.

Commands:
  summarize  - extract a PDF and print its markdown summary
  speak      - synthesize text through the TTS gateway
  voices     - list the voice catalog
  play       - generate and persist audio for a document via the API`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			telemetry.SetLevel("debug")
		} else {
			telemetry.SetLevel("warn")
		}
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose log output")
}

// loadConfig is swapped in tests.
var loadConfig = config.Load

func printError(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
}
