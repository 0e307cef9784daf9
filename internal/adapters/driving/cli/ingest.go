package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var (
	ingestSource  string
	ingestReindex bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file...]",
	Short: "Ingest documents into the knowledge base",
	Long: `Reads one or more plain-text files, splits each into overlapping
passages, embeds them and adds them to the index.

Re-ingesting an unchanged file is a no-op. To replace a document whose
content changed, use --reindex, which deletes the old passages first.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestSource, "source", "s", "", "source name override (single file only)")
	ingestCmd.Flags().BoolVar(&ingestReindex, "reindex", false, "delete existing passages for the source before ingesting")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}
	if ingestSource != "" && len(args) > 1 {
		return errors.New("--source can only be used with a single file")
	}

	ctx := context.Background()

	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}

		source := ingestSource
		if source == "" {
			source = filepath.Base(path)
		}

		if ingestReindex {
			report, err := ingestService.Reindex(ctx, source, string(data))
			if err != nil {
				return fmt.Errorf("reindexing %s: %w", source, err)
			}
			cmd.Printf("%s: removed %d, indexed %d chunks (%d chars)\n",
				report.Source, report.Deleted, report.TotalChunks, report.TotalChars)
			continue
		}

		report, err := ingestService.Ingest(ctx, source, string(data))
		if err != nil {
			return fmt.Errorf("ingesting %s: %w", source, err)
		}
		if report.NewChunks == 0 {
			cmd.Printf("%s: already indexed (%d chunks), nothing to do\n", report.Source, report.TotalChunks)
			continue
		}
		cmd.Printf("%s: indexed %d chunks (%d chars)\n", report.Source, report.NewChunks, report.TotalChars)
	}

	return nil
}
