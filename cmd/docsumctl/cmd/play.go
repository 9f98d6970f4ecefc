package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"docsum-backend/internal/playback"
)

var (
	playServer   string
	playToken    string
	playDocument string
	playText     string
	playVoice    string
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Generate audio for a document through the API",
	Long: `Drives the playback controller against a running server: the text is
synthesized via POST /api/v1/tts/generate and the resulting audio URL is saved
with PUT /api/v1/documents/{id}/audio. Every state change is printed.

Examples:
  docsumctl play --server http://localhost:8080 --token $TOKEN --document <id> --text "# Summary"
  docsumctl play --document <id> --text @summary.md`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

func init() {
	rootCmd.AddCommand(playCmd)
	playCmd.Flags().StringVar(&playServer, "server", "http://localhost:8080", "API base URL")
	playCmd.Flags().StringVar(&playToken, "token", "", "Bearer token")
	playCmd.Flags().StringVar(&playDocument, "document", "", "Document id to attach the audio to")
	playCmd.Flags().StringVar(&playText, "text", "", "Text to speak, or @file to read it from a file")
	playCmd.Flags().StringVar(&playVoice, "voice", "", "Voice id")
}

func runPlay(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	text, err := readText(playText)
	if err != nil {
		printError("text", err)
		return err
	}

	base := strings.TrimRight(playServer, "/")
	client := &http.Client{Timeout: 2 * time.Minute}
	out := cmd.OutOrStdout()

	ctrl := playback.NewController(
		playback.HTTPGenerator{BaseURL: base, Token: playToken, Client: client},
		playback.HTTPPersister{BaseURL: base, Token: playToken, Client: client},
		playback.Options{
			DocumentID: playDocument,
			Text:       text,
			VoiceID:    playVoice,
			OnChange: func(s playback.Snapshot) {
				line := string(s.State)
				if s.AudioURL != "" {
					line += " " + s.AudioURL
				}
				if s.Error != "" {
					line += " error=" + s.Error
				}
				fmt.Fprintln(out, line)
			},
		},
	)

	if err := ctrl.TogglePlay(ctx); err != nil {
		printError("play", errors.New(playback.UserMessage(err)))
		return err
	}
	return nil
}

func readText(flag string) (string, error) {
	if strings.HasPrefix(flag, "@") {
		raw, err := os.ReadFile(strings.TrimPrefix(flag, "@"))
		if err != nil {
			return "", err
		}
		return string(raw), nil
	}
	if strings.TrimSpace(flag) == "" {
		return "", errors.New("--text is required")
	}
	return flag, nil
}
