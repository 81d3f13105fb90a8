package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/ragdesk/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/ragdesk/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/ragdesk/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/ragdesk/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/ragdesk/internal/adapters/driving/tui/views/chat"
	"github.com/custodia-labs/ragdesk/internal/core/domain"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	styles    *styles.Styles
	keymap    *keymap.KeyMap
	chatView  *chat.View
	statusbar *status.Bar

	// transitions carries pipeline progress from the answer goroutine.
	transitions chan messages.PipelineTransition

	// indexing is true while a user-requested rebuild runs.
	indexing bool

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	app := &App{
		ports:       ports,
		ctx:         context.Background(),
		styles:      s,
		keymap:      km,
		chatView:    chat.NewView(s, km, ports.Answer),
		statusbar:   status.NewBar(s, km),
		transitions: make(chan messages.PipelineTransition, 16),
	}

	if ports.Pipeline != nil {
		ports.Pipeline.OnTransition(func(from, to domain.PipelineState) {
			select {
			case app.transitions <- messages.PipelineTransition{From: from, To: to}:
			default:
				// The status bar only needs the latest step.
			}
		})
	}

	return app, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.chatView.WithContext(ctx)
	return a
}

// Close detaches the app from the pipeline.
func (a *App) Close() {
	if a.ports.Pipeline != nil {
		a.ports.Pipeline.OnTransition(nil)
	}
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("ragdesk"),
		a.chatView.Init(),
		a.loadStatus(),
		a.waitForTransition(),
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.chatView.SetDimensions(msg.Width, msg.Height-1)
		a.statusbar.SetWidth(msg.Width)
		return a, nil

	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case messages.PipelineTransition:
		if a.chatView.Busy() {
			a.statusbar.SetPipelineState(msg.To)
		}
		return a, a.waitForTransition()

	case messages.AnswerCompleted:
		var cmd tea.Cmd
		a.chatView, cmd = a.chatView.Update(msg)
		a.finish(msg.Err, "")
		return a, tea.Batch(cmd, a.loadStatus())

	case messages.IndexRebuilt:
		a.indexing = false
		done := "Index is up to date"
		if !msg.Report.Skipped {
			done = fmt.Sprintf("Indexed %d chunks from %d documents", msg.Report.Chunks, msg.Report.Documents)
		}
		a.finish(msg.Err, done)
		return a, a.loadStatus()

	case messages.StatusLoaded:
		if msg.Err == nil {
			a.statusbar.SetIndexStatus(msg.Status)
		}
		return a, nil

	case messages.ErrorOccurred:
		a.finish(msg.Err, "")
		return a, nil
	}

	var cmd tea.Cmd
	a.chatView, cmd = a.chatView.Update(msg)
	return a, cmd
}

func (a *App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keyStr := msg.String()

	switch {
	case keymap.Matches(keyStr, a.keymap.Quit):
		return a, tea.Quit

	case keymap.Matches(keyStr, a.keymap.Help):
		a.statusbar.ToggleHelp()
		return a, nil

	case keymap.Matches(keyStr, a.keymap.Reindex):
		if a.indexing || a.chatView.Busy() {
			return a, nil
		}
		a.indexing = true
		a.statusbar.SetMessage("")
		a.statusbar.SetState(status.StateIndexing)
		return a, a.rebuild()

	case keymap.Matches(keyStr, a.keymap.Submit) && a.indexing:
		return a, nil
	}

	wasBusy := a.chatView.Busy()
	var cmd tea.Cmd
	a.chatView, cmd = a.chatView.Update(msg)
	if !wasBusy && a.chatView.Busy() {
		a.statusbar.SetMessage("")
		a.statusbar.SetState(status.StateWorking)
	}
	return a, cmd
}

// finish returns the status bar to rest after an operation.
func (a *App) finish(err error, done string) {
	if err != nil {
		a.statusbar.SetState(status.StateError)
		a.statusbar.SetMessage(chat.DescribeError(err))
		return
	}
	a.statusbar.SetState(status.StateReady)
	a.statusbar.SetMessage(done)
}

func (a *App) waitForTransition() tea.Cmd {
	ch := a.transitions
	return func() tea.Msg {
		return <-ch
	}
}

func (a *App) loadStatus() tea.Cmd {
	index, ctx := a.ports.Index, a.ctx
	return func() tea.Msg {
		st, err := index.Status(ctx)
		return messages.StatusLoaded{Status: st, Err: err}
	}
}

func (a *App) rebuild() tea.Cmd {
	index, ctx := a.ports.Index, a.ctx
	return func() tea.Msg {
		report, err := index.Rebuild(ctx)
		return messages.IndexRebuilt{Report: report, Err: err}
	}
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}
	return lipgloss.JoinVertical(lipgloss.Left, a.chatView.View(), a.statusbar.View())
}

// Ready returns whether the app has received its first window size.
func (a *App) Ready() bool {
	return a.ready
}

// Width returns the terminal width.
func (a *App) Width() int {
	return a.width
}

// Height returns the terminal height.
func (a *App) Height() int {
	return a.height
}

// Indexing reports whether a rebuild is running.
func (a *App) Indexing() bool {
	return a.indexing
}
