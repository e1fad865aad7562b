package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/citeline-ai/citeline/internal/core/domain"
)

var (
	askTask string
	askJSON bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from the corpus",
	Long: `Answers a question using retrieved passages from the ingested corpus.
Every sentence of the answer carries [n] citations into the context map;
when the corpus does not support an answer, the engine replies "not found".`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askTask, "task", "t", "general",
		"task type: general, code_generation, code_explanation, technical")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output result as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}

	taskType := domain.TaskType(askTask)
	if !taskType.IsValid() {
		return fmt.Errorf("unknown task type %q", askTask)
	}

	result, err := answerService.Ask(context.Background(), args[0], taskType)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal result: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Println(result.Answer)
	if result.Route == domain.RouteLocal {
		cmd.Println()
		cmd.Println("Sources:")
		for _, entry := range result.ContextMap {
			cmd.Printf("  [%d] %s (chunk %s, score %.3f)\n",
				entry.Index, entry.DocumentID, entry.ChunkID, entry.Score)
		}
	}
	cmd.Println()
	cmd.Printf("Model: %s  Domain: %s (%.2f)  Route: %s\n",
		result.ModelUsed, result.DetectedDomain, result.DomainConfidence, result.Route)
	return nil
}
