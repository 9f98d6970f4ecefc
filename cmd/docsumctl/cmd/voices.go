package cmd

import (
	"context"
	"fmt"
	"net/http"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"docsum-backend/internal/shared/config"
	"docsum-backend/internal/speech/murf"
)

var voicesRemote bool

var voicesCmd = &cobra.Command{
	Use:   "voices",
	Short: "List voices",
	Long: `Lists the voice catalog served by GET /tts/voices. With --remote the
list is fetched from the Murf API instead.

Examples:
  docsumctl voices
  docsumctl voices --remote`,
	Args: cobra.NoArgs,
	RunE: runVoices,
}

func init() {
	rootCmd.AddCommand(voicesCmd)
	voicesCmd.Flags().BoolVar(&voicesRemote, "remote", false, "Fetch voices from Murf")
}

func runVoices(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := loadConfig()

	var (
		voices []config.Voice
		err    error
	)
	if voicesRemote {
		client := murf.NewClient(cfg.MurfAPIKey, cfg.MurfBaseURL, &http.Client{Timeout: cfg.TTSTimeout})
		voices, err = client.Voices(ctx)
	} else {
		voices, err = config.LoadVoices(cfg.VoicesFile)
	}
	if err != nil {
		printError("voices", err)
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tLOCALE\tGENDER")
	for _, v := range voices {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", v.ID, v.Name, v.Locale, v.Gender)
	}
	return tw.Flush()
}
