// Package chat provides the question and answer view for the TUI.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/ragdesk/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/ragdesk/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/ragdesk/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/ragdesk/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/ragdesk/internal/core/domain"
	"github.com/custodia-labs/ragdesk/internal/core/ports/driving"
)

// Lines used by the header and the input box.
const chromeHeight = 5

// exchange is one question with its outcome.
type exchange struct {
	question string
	result   domain.AnswerResult
	err      error
}

// View shows the transcript above a question input.
type View struct {
	styles   *styles.Styles
	keymap   *keymap.KeyMap
	input    *input.QuestionInput
	viewport viewport.Model
	spinner  spinner.Model

	answers driving.AnswerService
	ctx     context.Context

	history []exchange
	pending string
	busy    bool

	width  int
	height int
	ready  bool
}

// NewView creates a chat view.
func NewView(s *styles.Styles, km *keymap.KeyMap, answers driving.AnswerService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	vp := viewport.New(80, 18)
	vp.KeyMap = viewport.KeyMap{PageUp: km.ScrollUp, PageDown: km.ScrollDown}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = s.Spinner

	return &View{
		styles:   s,
		keymap:   km,
		input:    input.NewQuestionInput(s),
		viewport: vp,
		spinner:  sp,
		answers:  answers,
		ctx:      context.Background(),
		width:    80,
		height:   24,
	}
}

// WithContext sets the context used for pipeline calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.AnswerCompleted:
		v.busy = false
		v.pending = ""
		v.history = append(v.history, exchange{question: msg.Question, result: msg.Result, err: msg.Err})
		v.refresh()
		return v, nil

	case spinner.TickMsg:
		if !v.busy {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		v.refresh()
		return v, cmd

	case tea.MouseMsg:
		var cmd tea.Cmd
		v.viewport, cmd = v.viewport.Update(msg)
		return v, cmd
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	keyStr := msg.String()

	switch {
	case keymap.Matches(keyStr, v.keymap.Submit):
		question := strings.TrimSpace(v.input.Value())
		if v.busy || question == "" {
			return v, nil
		}
		return v, v.Ask(question)

	case keymap.Matches(keyStr, v.keymap.ScrollUp), keymap.Matches(keyStr, v.keymap.ScrollDown):
		var cmd tea.Cmd
		v.viewport, cmd = v.viewport.Update(msg)
		return v, cmd

	case keymap.Matches(keyStr, v.keymap.Clear):
		if !v.busy {
			v.history = nil
			v.refresh()
		}
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// Ask starts the pipeline for question and returns the command that runs it.
func (v *View) Ask(question string) tea.Cmd {
	v.busy = true
	v.pending = question
	v.input.Reset()
	v.refresh()

	answers, ctx := v.answers, v.ctx
	run := func() tea.Msg {
		if answers == nil {
			return messages.AnswerCompleted{Question: question, Err: errors.New("answer service not configured")}
		}
		result, err := answers.Answer(ctx, question)
		return messages.AnswerCompleted{Question: question, Result: result, Err: err}
	}
	return tea.Batch(run, v.spinner.Tick)
}

// refresh re-renders the transcript and keeps it scrolled to the end.
func (v *View) refresh() {
	v.viewport.SetContent(v.renderTranscript())
	v.viewport.GotoBottom()
}

func (v *View) renderTranscript() string {
	if len(v.history) == 0 && !v.busy {
		return v.styles.Muted.Render("Ask about a ticket, e.g. \"POS problem when closing the register\".")
	}

	wrap := lipgloss.NewStyle().Width(max(v.width-4, 20))
	blocks := make([]string, 0, len(v.history)+1)
	for _, ex := range v.history {
		blocks = append(blocks, v.renderExchange(ex, wrap))
	}
	if v.busy {
		blocks = append(blocks,
			v.styles.Question.Render("› "+v.pending)+"\n"+
				v.styles.Answer.Render(v.spinner.View()+" thinking..."))
	}
	return strings.Join(blocks, "\n\n")
}

func (v *View) renderExchange(ex exchange, wrap lipgloss.Style) string {
	var b strings.Builder
	b.WriteString(v.styles.Question.Render("› " + ex.question))
	b.WriteString("\n")

	switch {
	case ex.err != nil:
		b.WriteString(v.styles.Error.Render(wrap.Render(DescribeError(ex.err))))
	case strings.TrimSpace(ex.result.Answer) == "":
		b.WriteString(v.styles.Muted.Render(wrap.Render("(the model returned no answer)")))
	default:
		b.WriteString(v.styles.Answer.Render(wrap.Render(ex.result.Answer)))
	}

	if ex.err == nil && len(ex.result.Sources) > 0 {
		b.WriteString("\n")
		b.WriteString(v.styles.Source.Render("Sources: " + strings.Join(ex.result.Sources, ", ")))
	}
	return b.String()
}

// DescribeError turns a pipeline failure into a line for the transcript.
func DescribeError(err error) string {
	hint := ""
	switch {
	case errors.Is(err, domain.ErrEmptyQuestion):
		return "The question is empty."
	case errors.Is(err, domain.ErrProviderTimeout):
		hint = "the provider took too long"
	case errors.Is(err, domain.ErrEmbeddingUnavailable), errors.Is(err, domain.ErrLLMUnavailable):
		hint = "check that the provider is running and configured"
	case errors.Is(err, domain.ErrVectorStoreUnavailable):
		hint = "the index could not be opened"
	}
	if hint == "" {
		return err.Error()
	}
	return fmt.Sprintf("%v (%s)", err, hint)
}

// View renders the chat view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	header := v.styles.Title.Render("ragdesk")
	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		v.viewport.View(),
		"",
		v.input.View(),
	)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.viewport.Width = width
	v.viewport.Height = max(height-chromeHeight, 3)
	v.refresh()
}

// Busy reports whether a question is being answered.
func (v *View) Busy() bool {
	return v.busy
}

// Pending returns the question being answered.
func (v *View) Pending() string {
	return v.pending
}

// Input returns the current input text.
func (v *View) Input() string {
	return v.input.Value()
}

// SetInput replaces the input text.
func (v *View) SetInput(value string) {
	v.input.SetValue(value)
}

// Transcript returns the rendered transcript.
func (v *View) Transcript() string {
	return v.renderTranscript()
}

// HistoryLen returns the number of answered questions.
func (v *View) HistoryLen() int {
	return len(v.history)
}
