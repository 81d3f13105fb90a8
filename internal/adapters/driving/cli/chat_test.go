package cli

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragdesk/internal/adapters/driving/tui"
)

func stubProgram(t *testing.T, fn func(tea.Model) error) {
	t.Helper()
	old := runProgram
	runProgram = fn
	t.Cleanup(func() { runProgram = old })
}

func TestChatCmd_Aliases(t *testing.T) {
	assert.Equal(t, "chat", chatCmd.Use)
	assert.Contains(t, chatCmd.Aliases, "tui")
}

func TestChatCmd_RunsApp(t *testing.T) {
	setupTestServices(t)

	var model tea.Model
	stubProgram(t, func(m tea.Model) error {
		model = m
		return nil
	})

	_, err := execute(t, "chat")

	require.NoError(t, err)
	assert.IsType(t, &tui.App{}, model)
}

func TestChatCmd_ProgramError(t *testing.T) {
	setupTestServices(t)
	stubProgram(t, func(tea.Model) error {
		return errors.New("no tty")
	})

	_, err := execute(t, "chat")

	assert.ErrorContains(t, err, "TUI error: no tty")
}

func TestChatCmd_MissingServices(t *testing.T) {
	setupTestServices(t)
	answerService = nil
	stubProgram(t, func(tea.Model) error {
		t.Fatal("program should not start")
		return nil
	})

	_, err := execute(t, "chat")

	assert.ErrorContains(t, err, "services not configured")
}
