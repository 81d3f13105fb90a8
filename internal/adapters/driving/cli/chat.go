package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragdesk/internal/adapters/driving/tui"
)

// runProgram runs the bubbletea program. Tests replace it.
var runProgram = func(m tea.Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	return err
}

var chatCmd = &cobra.Command{
	Use:     "chat",
	Aliases: []string{"tui"},
	Short:   "Launch the interactive helpdesk chat",
	Long: `Launch the interactive terminal chat.

Type a ticket description and press Enter. Answers appear with the
documents they were drawn from.

Controls:
  Enter          - Ask
  PgUp/PgDown    - Scroll the transcript
  Ctrl+R         - Rebuild the index
  Ctrl+L         - Clear the transcript
  F1             - Toggle help
  Esc, Ctrl+C    - Quit`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	if err := requireServices(cmd.Context()); err != nil {
		return err
	}

	app, err := tui.NewApp(&tui.Ports{
		Answer:   answerService,
		Index:    indexService,
		Pipeline: pipelineObserver,
	})
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	defer app.Close()

	app.WithContext(cmd.Context())

	if err := runProgram(app); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
