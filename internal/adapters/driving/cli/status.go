package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show engine configuration and model availability",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "output status as JSON")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if err := ensureServices(); err != nil {
		return err
	}

	health, err := answerService.Health(context.Background())
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	if statusJSON {
		data, err := json.MarshalIndent(health, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal status: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Println("Citeline Status")
	cmd.Println("===============")
	cmd.Println()
	cmd.Printf("Collection:    %s\n", health.Collection)
	cmd.Printf("Embed model:   %s\n", health.EmbedModel)
	cmd.Printf("Default model: %s\n", health.DefaultModel)
	cmd.Println()

	cmd.Println("Specialised models:")
	tasks := make([]string, 0, len(health.Specialised))
	for task := range health.Specialised {
		tasks = append(tasks, task)
	}
	sort.Strings(tasks)
	for _, task := range tasks {
		cmd.Printf("  %-18s %s\n", task, health.Specialised[task])
	}
	cmd.Println()

	if len(health.AvailableModels) == 0 {
		cmd.Println("Available models: none (is Ollama running?)")
	} else {
		cmd.Printf("Available models: %s\n", strings.Join(health.AvailableModels, ", "))
	}
	cmd.Printf("Domains: %s\n", strings.Join(health.SupportedDomains, ", "))
	return nil
}
