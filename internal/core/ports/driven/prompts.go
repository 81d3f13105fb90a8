package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations return the built-in default
	// or an error when there is none.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names used throughout the application.
const (
	// PromptAnswerSystem is the system instruction for answering tickets.
	// It has no format placeholders.
	PromptAnswerSystem = "answer_system"

	// PromptAnswerUser wraps the question and the context block.
	// It expects two %s placeholders: question, then context.
	PromptAnswerUser = "answer_user"
)
