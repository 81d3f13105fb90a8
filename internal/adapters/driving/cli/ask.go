package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragdesk/internal/core/domain"
)

// defaultQuestion is asked when no question is given.
const defaultQuestion = "POS problem when closing the register"

var askJSON bool

var askCmd = &cobra.Command{
	Use:   "ask [question...]",
	Short: "Answer a question from the indexed documents",
	Long: `Answers a helpdesk question using the indexed documents.

The index is refreshed first if any document changed since the last build.
The answer is followed by the documents it was drawn from.`,
	Example: `  ragdesk ask "the register will not close"
  ragdesk ask --json printer offline`,
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.TrimSpace(strings.Join(args, " "))
	if question == "" {
		question = defaultQuestion
	}
	return answer(cmd, question, askJSON)
}

// answer runs the pipeline for question and prints the result.
func answer(cmd *cobra.Command, question string, asJSON bool) error {
	if err := requireServices(cmd.Context()); err != nil {
		return err
	}

	result, err := answerService.Answer(cmd.Context(), question)
	if err != nil {
		return err
	}

	if asJSON {
		return outputAnswerJSON(cmd, result)
	}
	outputAnswerText(cmd, result)
	return nil
}

func outputAnswerJSON(cmd *cobra.Command, result domain.AnswerResult) error {
	if result.Sources == nil {
		result.Sources = []string{}
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal answer: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputAnswerText(cmd *cobra.Command, result domain.AnswerResult) {
	if result.Answer == "" {
		cmd.Println("(the model returned no answer)")
	} else {
		cmd.Println(result.Answer)
	}

	if len(result.Sources) == 0 {
		return
	}
	cmd.Println()
	cmd.Println("Sources:")
	for _, s := range result.Sources {
		cmd.Printf("  - %s\n", s)
	}
}
