package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragdesk/internal/core/domain"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep the index fresh while documents change",
	Long: `Watches the document folder and rebuilds the index after changes settle.

Bursts of edits are debounced into one rebuild. Press Ctrl+C to stop.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	if err := requireServices(cmd.Context()); err != nil {
		return err
	}
	if refreshService == nil {
		return errors.New("watcher not configured")
	}

	refreshService.OnRefresh(func(e domain.RefreshEvent) {
		switch {
		case e.Err != nil:
			cmd.PrintErrf("Refresh failed (%s): %v\n", changeList(e.Changed), e.Err)
		case e.Rebuilt:
			cmd.Printf("Index rebuilt (%s)\n", changeList(e.Changed))
		default:
			cmd.Printf("Index is up to date (%s)\n", changeList(e.Changed))
		}
	})
	defer refreshService.OnRefresh(nil)

	cmd.Println("Watching for document changes. Press Ctrl+C to stop.")
	if err := refreshService.Run(cmd.Context()); err != nil {
		return fmt.Errorf("watch failed: %w", err)
	}
	cmd.Println("Stopped.")
	return nil
}

func changeList(paths []string) string {
	if len(paths) == 0 {
		return "startup"
	}
	return strings.Join(paths, ", ")
}
