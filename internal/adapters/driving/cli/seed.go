package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the built-in sample corpus",
	Long: `Ingests a small built-in document set (a disaster recovery runbook,
a backup policy, and a recipe) when the collection is empty. Does nothing
if the collection already holds passages.`,
	Args: cobra.NoArgs,
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, _ []string) error {
	if err := ensureServices(); err != nil {
		return err
	}

	ctx := context.Background()
	if err := corpusService.EnsureReady(ctx); err != nil {
		return fmt.Errorf("store not ready: %w", err)
	}

	docs, err := corpusService.Seed(ctx)
	if err != nil {
		return fmt.Errorf("seed failed: %w", err)
	}

	if docs == 0 {
		cmd.Println("Collection already has passages, nothing seeded.")
		return nil
	}
	cmd.Printf("Seeded %d sample documents.\n", docs)
	return nil
}
