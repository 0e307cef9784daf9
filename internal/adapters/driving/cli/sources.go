package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Manage indexed sources",
	Long:  `List, inspect, or delete indexed sources.`,
	RunE:  runSourcesList,
}

var sourcesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List indexed sources",
	RunE:  runSourcesList,
}

var sourcesInspectCmd = &cobra.Command{
	Use:   "inspect [source]",
	Short: "Show a source's passages",
	Args:  cobra.ExactArgs(1),
	RunE:  runSourcesInspect,
}

var sourcesDeleteCmd = &cobra.Command{
	Use:   "delete [source]",
	Short: "Remove a source from the knowledge base",
	Args:  cobra.ExactArgs(1),
	RunE:  runSourcesDelete,
}

var sourcesClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every indexed passage",
	RunE:  runSourcesClear,
}

// clearYes skips the confirmation prompt.
var clearYes bool

func init() {
	sourcesClearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "skip the confirmation prompt")

	sourcesCmd.AddCommand(sourcesListCmd)
	sourcesCmd.AddCommand(sourcesInspectCmd)
	sourcesCmd.AddCommand(sourcesDeleteCmd)
	sourcesCmd.AddCommand(sourcesClearCmd)
	rootCmd.AddCommand(sourcesCmd)
}

func runSourcesList(cmd *cobra.Command, _ []string) error {
	if libraryService == nil {
		return errors.New("library service not configured")
	}

	ctx := context.Background()
	sources, err := libraryService.ListSources(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sources: %w", err)
	}

	if len(sources) == 0 {
		cmd.Println("No sources indexed.")
		return nil
	}

	cmd.Println("Indexed sources:")
	cmd.Println()
	for i := range sources {
		cmd.Printf("  %s\n", sources[i].Source)
		cmd.Printf("    Chunks: %d\n", sources[i].Chunks)
		cmd.Printf("    Chars:  %d\n", sources[i].TotalChars)
		cmd.Println()
	}

	cmd.Printf("Total: %d sources\n", len(sources))
	return nil
}

func runSourcesInspect(cmd *cobra.Command, args []string) error {
	if libraryService == nil {
		return errors.New("library service not configured")
	}

	source := args[0]
	ctx := context.Background()

	passages, err := libraryService.InspectSource(ctx, source)
	if err != nil {
		return fmt.Errorf("failed to inspect source: %w", err)
	}

	cmd.Printf("Passages for %s:\n\n", source)
	for i := range passages {
		cmd.Printf("  chunk %d (%s, %d chars)\n", passages[i].ChunkNumber(), passages[i].ID, len(passages[i].Text))
		cmd.Printf("    %s\n", snippet(passages[i].Text, 120))
		cmd.Println()
	}

	cmd.Printf("Total: %d chunks\n", len(passages))
	return nil
}

func runSourcesDelete(cmd *cobra.Command, args []string) error {
	if libraryService == nil {
		return errors.New("library service not configured")
	}

	source := args[0]
	ctx := context.Background()

	removed, err := libraryService.DeleteSource(ctx, source)
	if err != nil {
		return fmt.Errorf("failed to delete source: %w", err)
	}

	cmd.Printf("Removed %s (%d chunks).\n", source, removed)
	return nil
}

func runSourcesClear(cmd *cobra.Command, _ []string) error {
	if libraryService == nil {
		return errors.New("library service not configured")
	}

	if !clearYes {
		return errors.New("refusing to clear the knowledge base without --yes")
	}

	ctx := context.Background()
	removed, err := libraryService.ClearAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to clear knowledge base: %w", err)
	}

	cmd.Printf("Removed %d chunks.\n", removed)
	return nil
}
