package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragdesk/internal/core/domain"
)

var (
	ticket     domain.Ticket
	ticketJSON bool
)

var ticketCmd = &cobra.Command{
	Use:   "ticket",
	Short: "Answer a structured helpdesk ticket",
	Long: `Builds a question from the ticket fields and answers it.

Blank fields are left out. At least one field must be set.`,
	Example: `  ragdesk ticket --store 12 --area caja --symptom "no cierra el turno"`,
	Args:    cobra.NoArgs,
	RunE:    runTicket,
}

func init() {
	f := ticketCmd.Flags()
	f.StringVar(&ticket.Store, "store", "", "store number or name")
	f.StringVar(&ticket.Terminal, "terminal", "", "terminal or register")
	f.StringVar(&ticket.Area, "area", "", "affected area")
	f.StringVar(&ticket.Symptom, "symptom", "", "what the user sees")
	f.StringVar(&ticket.Error, "error", "", "error message shown")
	f.StringVar(&ticket.Restarted, "restarted", "", "whether the device was restarted")
	f.StringVar(&ticket.Time, "time", "", "when it started")
	f.StringVar(&ticket.Impact, "impact", "", "business impact")
	f.StringVar(&ticket.Extra, "extra", "", "anything else")
	f.BoolVar(&ticketJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(ticketCmd)
}

func runTicket(cmd *cobra.Command, _ []string) error {
	question := ticket.Question()
	if question == "" {
		return domain.ErrEmptyQuestion
	}
	if !ticketJSON {
		cmd.Printf("Query: %s\n\n", question)
	}
	return answer(cmd, question, ticketJSON)
}
