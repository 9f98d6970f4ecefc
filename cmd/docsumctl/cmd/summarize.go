package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"docsum-backend/internal/bootstrap"
	"docsum-backend/internal/extract"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize <file.pdf|url>",
	Short: "Summarize a PDF",
	Long: `Extracts the text of a local PDF or a PDF URL and prints the
markdown summary produced by the configured LLM.

Examples:
  docsumctl summarize report.pdf
  docsumctl summarize https://example.com/report.pdf`,
	Args: cobra.ExactArgs(1),
	RunE: runSummarize,
}

func init() {
	rootCmd.AddCommand(summarizeCmd)
}

func runSummarize(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := loadConfig()

	text, err := readDocument(ctx, args[0])
	if err != nil {
		printError("extract", err)
		return err
	}

	summarizer, err := bootstrap.NewSummarizer(cfg)
	if err != nil {
		printError("summarizer", err)
		return err
	}
	summary, err := summarizer.Summarize(ctx, text)
	if err != nil {
		printError("summarize", err)
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), summary)
	return nil
}

func readDocument(ctx context.Context, src string) (string, error) {
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		return extract.FromURL(ctx, &http.Client{Timeout: extract.FetchTimeout}, src)
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return "", err
	}
	return extract.FromBytes(ctx, data, "")
}
