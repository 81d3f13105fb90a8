package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragdesk/internal/core/domain"
)

var (
	indexIfStale bool
	statusJSON   bool
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Rebuild the document index",
	Long: `Re-reads every document, embeds it and publishes a new index.

The previous index keeps serving until the new one is complete. With
--if-stale the rebuild only runs when a document changed since the last build.`,
	Args: cobra.NoArgs,
	RunE: runIndex,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the index status",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	indexCmd.Flags().BoolVar(&indexIfStale, "if-stale", false, "only rebuild when documents changed")
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "output the status as JSON")
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(statusCmd)
}

func runIndex(cmd *cobra.Command, _ []string) error {
	if err := requireServices(cmd.Context()); err != nil {
		return err
	}

	if indexIfStale {
		rebuilt, err := indexService.EnsureFresh(cmd.Context())
		if err != nil {
			return fmt.Errorf("index failed: %w", err)
		}
		if rebuilt {
			cmd.Println("Index rebuilt.")
		} else {
			cmd.Println("Index is up to date.")
		}
		return nil
	}

	cmd.Println("Rebuilding index...")
	report, err := indexService.Rebuild(cmd.Context())
	if err != nil {
		return fmt.Errorf("index failed: %w", err)
	}

	if report.Skipped {
		cmd.Println("No documents found; the existing index was kept.")
		return nil
	}
	cmd.Printf("Indexed %d chunks from %d documents in %s.\n",
		report.Chunks, report.Documents, report.Duration.Round(time.Millisecond))
	if report.Unreadable > 0 {
		cmd.Printf("Skipped %d unreadable files.\n", report.Unreadable)
	}
	return nil
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if err := requireServices(cmd.Context()); err != nil {
		return err
	}

	status, err := indexService.Status(cmd.Context())
	if err != nil {
		return fmt.Errorf("status failed: %w", err)
	}

	if statusJSON {
		data, err := json.MarshalIndent(status, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal status: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Println("Index Status")
	cmd.Println("============")
	cmd.Printf("  Documents: %s\n", status.DocsDir)
	cmd.Printf("  Backend:   %s\n", status.Backend)
	cmd.Printf("  Chunks:    %d\n", status.Chunks)
	cmd.Printf("  Built:     %s\n", formatBuilt(status.BuiltAt))
	cmd.Printf("  Latest document change: %s\n", formatMTime(status.LatestMTime))
	cmd.Printf("  Indexed up to:          %s\n", formatMTime(status.MarkerMTime))
	if status.Stale {
		cmd.Println()
		cmd.Println("The index is stale. It will be rebuilt on the next question,")
		cmd.Println("or run 'ragdesk index' now.")
	}
	return nil
}

func formatBuilt(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Local().Format(time.DateTime)
}

func formatMTime(mtime float64) string {
	switch {
	case mtime == domain.MissingMarker:
		return "never"
	case mtime <= 0:
		return "no documents"
	}
	sec := int64(mtime)
	nsec := int64((mtime - float64(sec)) * 1e9)
	return time.Unix(sec, nsec).Local().Format(time.DateTime)
}
