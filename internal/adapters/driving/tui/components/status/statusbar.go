// Package status provides status bar components for the TUI.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/ragdesk/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/ragdesk/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/ragdesk/internal/core/domain"
)

// State represents the current application state for display.
type State string

const (
	StateReady    State = "ready"
	StateWorking  State = "working"
	StateIndexing State = "indexing"
	StateError    State = "error"
)

// Bar displays pipeline progress, index health and keybinding hints.
type Bar struct {
	styles   *styles.Styles
	keymap   *keymap.KeyMap
	state    State
	pipeline domain.PipelineState
	message  string
	index    *domain.IndexStatus
	showHelp bool
	width    int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &Bar{
		styles: s,
		keymap: km,
		state:  StateReady,
		width:  80,
	}
}

// View renders the status bar.
func (s *Bar) View() string {
	left := s.renderLeft()
	right := s.renderRight()

	padding := max(s.width-lipgloss.Width(left)-lipgloss.Width(right), 1)

	return s.styles.StatusBar.Width(s.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

// renderLeft renders the progress or index summary.
func (s *Bar) renderLeft() string {
	switch s.state {
	case StateWorking:
		return s.styles.Muted.Render(pipelineLabel(s.pipeline))
	case StateIndexing:
		return s.styles.Muted.Render("Rebuilding index...")
	case StateError:
		if s.message != "" {
			return s.styles.Error.Render("Error: " + s.message)
		}
		return s.styles.Error.Render("Error")
	}

	if s.message != "" {
		return s.styles.Success.Render(s.message)
	}
	if s.index == nil {
		return s.styles.Muted.Render("Ready")
	}
	summary := fmt.Sprintf("%d chunks · %s", s.index.Chunks, s.index.Backend)
	if s.index.Stale {
		return s.styles.Warning.Render(summary + " · stale")
	}
	return s.styles.Muted.Render(summary)
}

// renderRight renders keybinding hints.
func (s *Bar) renderRight() string {
	bindings := s.keymap.ShortHelp()
	if s.showHelp {
		bindings = s.keymap.FullHelp()
	}

	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return s.styles.Muted.Render(strings.Join(hints, " | "))
}

func pipelineLabel(state domain.PipelineState) string {
	switch state {
	case domain.PipelineRetrieving:
		return "Searching documents..."
	case domain.PipelineSynthesizing:
		return "Writing answer..."
	default:
		return "Checking index..."
	}
}

// SetState sets the current state. Leaving StateWorking resets the pipeline step.
func (s *Bar) SetState(state State) {
	s.state = state
	if state != StateWorking {
		s.pipeline = domain.PipelineIdle
	}
}

// State returns the current state.
func (s *Bar) State() State {
	return s.state
}

// SetPipelineState records the pipeline step shown while working.
func (s *Bar) SetPipelineState(state domain.PipelineState) {
	s.pipeline = state
}

// PipelineState returns the recorded pipeline step.
func (s *Bar) PipelineState() domain.PipelineState {
	return s.pipeline
}

// SetMessage sets a custom message.
func (s *Bar) SetMessage(message string) {
	s.message = message
}

// Message returns the current message.
func (s *Bar) Message() string {
	return s.message
}

// SetIndexStatus records the index summary.
func (s *Bar) SetIndexStatus(status domain.IndexStatus) {
	s.index = &status
}

// ToggleHelp switches between short and full key hints.
func (s *Bar) ToggleHelp() {
	s.showHelp = !s.showHelp
}

// ShowingHelp reports whether full key hints are shown.
func (s *Bar) ShowingHelp() bool {
	return s.showHelp
}

// SetWidth sets the status bar width.
func (s *Bar) SetWidth(width int) {
	s.width = width
}

// Width returns the current width.
func (s *Bar) Width() int {
	return s.width
}
