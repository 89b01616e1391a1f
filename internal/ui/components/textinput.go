package components

import (
	"strconv"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
)

// TextInput wraps bubbles/textinput for the board's prompts.
type TextInput struct {
	Model       textinput.Model
	Prompt      string
	NumericOnly bool
}

// NewTextInput creates a focused text input. A positive limit caps its length.
func NewTextInput(prompt, placeholder string, numericOnly bool, limit int) TextInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Focus()
	if limit > 0 {
		ti.CharLimit = limit
	}
	return TextInput{
		Model:       ti,
		Prompt:      prompt,
		NumericOnly: numericOnly,
	}
}

// Update handles messages. Numeric inputs drop non-digit keystrokes.
func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	if t.NumericOnly {
		if kmsg, ok := msg.(tea.KeyMsg); ok {
			key := kmsg.String()
			if len(key) == 1 && (key[0] < '0' || key[0] > '9') {
				return t, nil
			}
		}
	}

	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

// View renders the prompt followed by the input.
func (t TextInput) View() string {
	return t.Prompt + " " + t.Model.View()
}

// Value returns the trimmed input value.
func (t TextInput) Value() string {
	return strings.TrimSpace(t.Model.Value())
}

// NumericValue returns the input value as an integer.
func (t TextInput) NumericValue() (int, error) {
	return strconv.Atoi(t.Value())
}
