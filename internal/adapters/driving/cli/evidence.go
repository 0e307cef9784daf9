package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	evidenceLimit int
	evidenceJSON  bool
)

var evidenceCmd = &cobra.Command{
	Use:   "evidence [query]",
	Short: "Build a labelled evidence block for a query",
	Long: `Runs hybrid retrieval for the query and renders the results as a
labelled evidence block, ready to hand to a text generator. Each passage
gets a citation label [Source N: name, chunk M] that the generator is
expected to cite.`,
	Args: cobra.ExactArgs(1),
	RunE: runEvidence,
}

func init() {
	evidenceCmd.Flags().IntVarP(&evidenceLimit, "limit", "n", 0, "maximum number of passages (0 = configured default)")
	evidenceCmd.Flags().BoolVar(&evidenceJSON, "json", false, "output the evidence set as JSON")
	rootCmd.AddCommand(evidenceCmd)
}

func runEvidence(cmd *cobra.Command, args []string) error {
	query := args[0]

	if retrievalService == nil {
		return errors.New("retrieval service not configured")
	}
	if evidenceService == nil {
		return errors.New("evidence service not configured")
	}

	ctx := context.Background()
	results, err := retrievalService.Search(ctx, query, evidenceLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	evidence := evidenceService.BuildEvidence(results)

	if evidenceJSON {
		out := struct {
			ID        string   `json:"id"`
			Block     string   `json:"block"`
			Citations []string `json:"citations"`
			Size      int      `json:"size"`
		}{
			ID:        evidence.ID,
			Block:     evidence.Block,
			Citations: evidence.Citations,
			Size:      evidence.Size(),
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal evidence: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if evidence.Size() == 0 {
		cmd.Println("No evidence found.")
		return nil
	}

	cmd.Println(evidence.Block)
	cmd.Println()
	cmd.Println("Citations:")
	for _, c := range evidence.Citations {
		cmd.Printf("  %s\n", c)
	}
	return nil
}
