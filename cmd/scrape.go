package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newScrapeCmd() *cobra.Command {
	var htmlFile string

	cmd := &cobra.Command{
		Use:   "scrape <url>",
		Short: "Extract one product and print it as JSON",
		Long: `Runs the scrape pipeline for a single URL and prints the normalized
product. With --html-file the page is read from disk instead of fetched,
which is the manual mode used for protected sites.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}

			var markup string
			if htmlFile != "" {
				raw, err := os.ReadFile(htmlFile)
				if err != nil {
					return fmt.Errorf("read html file: %w", err)
				}
				markup = string(raw)
			}

			p, err := appInstance.Scraper().Scrape(cmd.Context(), args[0], markup)
			if err != nil {
				return fmt.Errorf("scrape %s: %w", args[0], err)
			}
			if p.LowConfidence() {
				appInstance.Logger().Warn("low confidence extraction, review before import", zap.String("url", args[0]))
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(p)
		},
	}

	cmd.Flags().StringVar(&htmlFile, "html-file", "", "read page markup from this file instead of fetching")
	return cmd
}
