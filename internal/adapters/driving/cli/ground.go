package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

var (
	groundAnswer string
	groundLimit  int
	groundJSON   bool
)

var groundCmd = &cobra.Command{
	Use:   "ground [query]",
	Short: "Check a generated answer against retrieved evidence",
	Long: `Re-runs retrieval for the query, rebuilds the evidence set, and checks
the generated answer's citations against it. Citations that do not
resolve to a retrieved passage are removed from the answer and reported
as hallucinated.

The answer is taken from --answer, or from stdin when the flag is unset:

  ancora ground "speed limits" --answer "Limit is 50 km/h [Source 1: handbook.md, chunk 2]"
  some-generator | ancora ground "speed limits"`,
	Args: cobra.ExactArgs(1),
	RunE: runGround,
}

func init() {
	groundCmd.Flags().StringVarP(&groundAnswer, "answer", "a", "", "generated answer to check (default: read stdin)")
	groundCmd.Flags().IntVarP(&groundLimit, "limit", "n", 0, "maximum number of passages (0 = configured default)")
	groundCmd.Flags().BoolVar(&groundJSON, "json", false, "output the grounding report as JSON")
	rootCmd.AddCommand(groundCmd)
}

func runGround(cmd *cobra.Command, args []string) error {
	query := args[0]

	if retrievalService == nil {
		return errors.New("retrieval service not configured")
	}
	if evidenceService == nil {
		return errors.New("evidence service not configured")
	}

	answer := groundAnswer
	if answer == "" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("reading answer from stdin: %w", err)
		}
		answer = strings.TrimSpace(string(data))
	}
	if answer == "" {
		return errors.New("no answer given: use --answer or pipe text on stdin")
	}

	ctx := context.Background()
	results, err := retrievalService.Search(ctx, query, groundLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	evidence := evidenceService.BuildEvidence(results)
	report := evidenceService.CheckGrounding(answer, evidence.Index)

	if groundJSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if report.Grounded {
		cmd.Println("Answer is grounded: every citation resolves to evidence.")
	} else {
		cmd.Printf("Answer contains %d hallucinated citation(s):\n", len(report.HallucinatedCitations))
		for _, c := range report.HallucinatedCitations {
			cmd.Printf("  %s\n", c)
		}
	}
	cmd.Printf("Sources cited: %v (of %d available)\n", report.SourcesCited, report.TotalChunksAvailable)
	cmd.Println()
	cmd.Println("Cleaned answer:")
	cmd.Println(report.CleanedAnswer)

	return nil
}
