package cli

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var domainJSON bool

var domainCmd = &cobra.Command{
	Use:   "domain [text]",
	Short: "Classify text into a subject domain",
	Long: `Runs the keyword-based domain classifier over the given text and
prints the detected domain, its confidence, and the per-domain match counts.`,
	Args: cobra.ExactArgs(1),
	RunE: runDomain,
}

func init() {
	domainCmd.Flags().BoolVar(&domainJSON, "json", false, "output report as JSON")
	rootCmd.AddCommand(domainCmd)
}

func runDomain(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}

	report := domainService.Detect(args[0])

	if domainJSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("Domain: %s (confidence %.2f)\n", report.Domain, report.Confidence)
	cmd.Println("Matches:")

	names := make([]string, 0, len(report.MatchCounts))
	for name := range report.MatchCounts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		cmd.Printf("  %-12s %d\n", name, report.MatchCounts[name])
	}
	return nil
}
