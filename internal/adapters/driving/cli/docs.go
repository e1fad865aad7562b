package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "List ingested documents",
	Long:  `Lists the ingestion ledger: document id, chunk count, detected domain, and when it was ingested.`,
	Args:  cobra.NoArgs,
	RunE:  runDocs,
}

func init() {
	rootCmd.AddCommand(docsCmd)
}

func runDocs(cmd *cobra.Command, _ []string) error {
	if err := ensureServices(); err != nil {
		return err
	}

	records, err := corpusService.Documents(context.Background())
	if err != nil {
		return fmt.Errorf("list documents: %w", err)
	}

	if len(records) == 0 {
		cmd.Println("No documents ingested yet.")
		return nil
	}

	cmd.Printf("%-30s %7s %-12s %10s  %s\n", "DOCUMENT", "CHUNKS", "DOMAIN", "CONFIDENCE", "INGESTED")
	for _, rec := range records {
		cmd.Printf("%-30s %7d %-12s %10.2f  %s\n",
			rec.DocumentID, rec.Chunks, rec.Domain, rec.Confidence,
			time.Unix(rec.IngestedAt, 0).Format(time.RFC3339))
	}
	return nil
}
