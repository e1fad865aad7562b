package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/citeline-ai/citeline/internal/core/domain"
)

// previewLength bounds the passage text shown per search result.
const previewLength = 160

var (
	searchLimit int
	searchJSON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the corpus without generating an answer",
	Long: `Performs vector search over the ingested passages and prints the
nearest matches. Useful for inspecting what the ask command would retrieve.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", domain.DefaultTopK, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}

	passages, err := corpusService.Search(context.Background(), args[0], searchLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		data, err := json.MarshalIndent(passages, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(passages) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i, p := range passages {
		cmd.Printf("  [%d] %s #%d (%.3f)\n", i+1, p.DocumentID, p.ChunkIndex, p.Score)
		cmd.Printf("      %s\n", preview(p.Text))
		cmd.Println()
	}
	return nil
}

// preview flattens and truncates passage text for one-line display.
func preview(text string) string {
	flat := strings.Join(strings.Fields(text), " ")
	if len(flat) <= previewLength {
		return flat
	}
	return flat[:previewLength] + "..."
}
