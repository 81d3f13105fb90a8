package input

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestNewQuestionInput_Focused(t *testing.T) {
	in := NewQuestionInput(nil)

	assert.True(t, in.Focused())
	assert.Empty(t, in.Value())
}

func TestQuestionInput_TypingUpdatesValue(t *testing.T) {
	in := NewQuestionInput(nil)

	for _, r := range "caja?" {
		in, _ = in.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}

	assert.Equal(t, "caja?", in.Value())
}

func TestQuestionInput_SetValueAndReset(t *testing.T) {
	in := NewQuestionInput(nil)

	in.SetValue("POS problem when closing the register")
	assert.Equal(t, "POS problem when closing the register", in.Value())

	in.Reset()
	assert.Empty(t, in.Value())
}

func TestQuestionInput_SetWidth(t *testing.T) {
	in := NewQuestionInput(nil)

	in.SetWidth(100)
	assert.Equal(t, 100, in.Width())
	assert.Equal(t, 86, in.textinput.Width)

	in.SetWidth(10)
	assert.Equal(t, 20, in.textinput.Width)
}

func TestQuestionInput_FocusBlur(t *testing.T) {
	in := NewQuestionInput(nil)

	in.Blur()
	assert.False(t, in.Focused())

	in.Focus()
	assert.True(t, in.Focused())
}

func TestQuestionInput_ViewShowsLabel(t *testing.T) {
	in := NewQuestionInput(nil)

	assert.Contains(t, in.View(), "Ticket:")
}
