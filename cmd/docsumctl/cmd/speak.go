package cmd

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	"docsum-backend/internal/bootstrap"
	"docsum-backend/internal/speech"
	"docsum-backend/internal/textclean"
)

var (
	speakVoice string
	speakSpeed float64
)

var speakCmd = &cobra.Command{
	Use:   "speak <text>",
	Short: "Synthesize text through the TTS gateway",
	Long: `Cleans the text, runs it through the voice fallback ladder of the
configured vendor and prints the result as JSON.

Examples:
  docsumctl speak "Hello there"
  docsumctl speak --voice en-US-amy --speed 1.25 "# Title"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSpeak,
}

func init() {
	rootCmd.AddCommand(speakCmd)
	speakCmd.Flags().StringVar(&speakVoice, "voice", "", "Voice id")
	speakCmd.Flags().Float64Var(&speakSpeed, "speed", 1, "Speech speed multiplier")
}

func runSpeak(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := loadConfig()

	text := textclean.Truncate(textclean.Speech(strings.Join(args, " ")), textclean.MaxSpeechChars)
	if text == "" {
		err := speech.ErrNoText
		printError("speak", err)
		return err
	}

	store, err := bootstrap.NewStore(ctx, cfg)
	if err != nil {
		printError("store", err)
		return err
	}
	gateway := bootstrap.NewGateway(cfg, store)
	res, err := gateway.SynthesizeRequest(ctx, speech.Request{
		Text:    text,
		VoiceID: speakVoice,
		Rate:    speech.RateFromSpeed(speakSpeed),
	})
	if err != nil {
		printError("speak", err)
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
