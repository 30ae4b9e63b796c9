package input

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"searchdeck/internal/ui/input/types"
)

// Handler owns the dispatch state and the query text input. It turns terminal key
// messages into reducer events and applies focus changes to the text input.
type Handler struct {
	state     types.State
	textInput *textinput.Model
}

func New() *Handler {
	ti := textinput.New()
	ti.Placeholder = "Search anything…"
	ti.Prompt = "› "
	ti.CharLimit = 256

	return &Handler{
		state:     types.Initial(),
		textInput: &ti,
	}
}

// EventFromKey converts a bubbletea key message
func EventFromKey(msg tea.KeyMsg, target types.Target) types.KeyEvent {
	ev := types.KeyEvent{Alt: msg.Alt, Target: target}

	switch msg.Type {
	case tea.KeyRunes:
		ev.Key = types.KeyRunes
		ev.Runes = msg.Runes
		return ev
	case tea.KeySpace:
		ev.Key = types.KeyRunes
		ev.Runes = []rune{' '}
		return ev
	}

	s := msg.String()
	if rest, ok := strings.CutPrefix(s, "ctrl+"); ok {
		ev.Ctrl = true
		s = rest
	}
	ev.Key = s
	return ev
}

// HandleKey dispatches msg and returns the actions for the model
func (h *Handler) HandleKey(msg tea.KeyMsg, lists types.Lists) ([]types.Action, tea.Cmd) {
	target := types.TargetNone
	if h.state.Focus == types.FocusInput {
		target = types.TargetSearchInput
	}

	next, actions, consumed := Reduce(h.state, EventFromKey(msg, target), lists)
	h.state = next

	var cmd tea.Cmd
	for _, action := range actions {
		switch action.(type) {
		case types.FocusInputAction:
			h.textInput.Focus()
			cmd = textinput.Blink
		case types.BlurInputAction:
			h.textInput.Blur()
		case types.OpenPaletteAction:
			h.textInput.Blur()
		}
	}

	// keys the reducer left alone are edits for the focused input
	if !consumed && h.state.Focus == types.FocusInput {
		before := h.textInput.Value()
		var textCmd tea.Cmd
		*h.textInput, textCmd = h.textInput.Update(msg)
		cmd = tea.Batch(cmd, textCmd)
		if after := h.textInput.Value(); after != before {
			actions = append(actions, types.UpdateTextAction{Text: after})
		}
	}

	return actions, cmd
}

// State returns the dispatch state
func (h *Handler) State() types.State {
	return h.state
}

// ListChanged resets the selection after the active list was replaced
func (h *Handler) ListChanged() {
	h.state = ListChanged(h.state)
}

// Submitted moves selection to the result list of a new search
func (h *Handler) Submitted() {
	h.state = Submitted(h.state)
}

// FocusInput puts focus on the query input outside of a key press
func (h *Handler) FocusInput() tea.Cmd {
	if h.state.Focus == types.FocusPalette {
		h.state.PrevFocus = types.FocusInput
		return nil
	}
	h.state.Focus = types.FocusInput
	h.textInput.Focus()
	return textinput.Blink
}

// Update handles non-keyboard messages for the text input
func (h *Handler) Update(msg tea.Msg) tea.Cmd {
	if h.state.Focus != types.FocusInput {
		return nil
	}
	var cmd tea.Cmd
	*h.textInput, cmd = h.textInput.Update(msg)
	return cmd
}

// SetValue replaces the input text and moves the cursor to the end
func (h *Handler) SetValue(text string) {
	h.textInput.SetValue(text)
	h.textInput.CursorEnd()
}

// Value returns the input text
func (h *Handler) Value() string {
	return h.textInput.Value()
}

// TextInput returns the text input model for rendering
func (h *Handler) TextInput() *textinput.Model {
	return h.textInput
}

// ModeName returns the display name of the focus state
func (h *Handler) ModeName() string {
	return ModeName(h.state)
}

func (h *Handler) SetWidth(width int) {
	if width > 4 {
		h.textInput.Width = width - 4
	}
}
