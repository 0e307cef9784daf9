package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show knowledge base statistics",
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "output statistics as JSON")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	if libraryService == nil {
		return errors.New("library service not configured")
	}

	ctx := context.Background()
	stats, err := libraryService.Stats(ctx)
	if err != nil {
		return fmt.Errorf("failed to get stats: %w", err)
	}

	if statsJSON {
		data, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal stats: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Println("Knowledge Base")
	cmd.Println("==============")
	cmd.Printf("  Sources:         %d\n", stats.TotalSources)
	cmd.Printf("  Chunks:          %d\n", stats.TotalChunks)
	cmd.Printf("  Characters:      %d\n", stats.TotalChars)
	cmd.Printf("  Avg chunk chars: %d\n", stats.AvgChunkChars)

	if len(stats.Sources) > 0 {
		cmd.Println()
		cmd.Println("  Sources:")
		for _, s := range stats.Sources {
			cmd.Printf("    %s\n", s)
		}
	}

	return nil
}
