package input

import (
	"searchdeck/internal/ui/input/modes"
	"searchdeck/internal/ui/input/types"
)

var handlers = map[types.Focus]types.ModeHandler{
	types.FocusIdle:    modes.NewIdleMode(),
	types.FocusInput:   modes.NewInputMode(),
	types.FocusPalette: modes.NewPaletteMode(),
}

// Reduce is the keyboard dispatch controller. It maps one key event to the next state
// and the actions the model must run. consumed is false when the key should fall
// through to the focused text field.
func Reduce(s types.State, ev types.KeyEvent, lists types.Lists) (types.State, []types.Action, bool) {
	// global keys, honored whatever the target
	if ev.Ctrl && ev.Key == "c" {
		return s, []types.Action{types.QuitAction{Force: true}}, true
	}
	if (ev.Ctrl || ev.Meta) && ev.Key == "k" {
		if s.Focus == types.FocusPalette {
			next, actions := modes.Close(s)
			return next, actions, true
		}
		next, actions := modes.Open(s)
		return next, actions, true
	}
	if ev.Key == types.KeyEsc {
		return escape(s)
	}

	handler := handlers[s.Focus]
	if handler == nil {
		return s, nil, false
	}
	return handler.HandleKey(s, ev, lists)
}

// escape clears the selection, closes the palette and blurs the input
func escape(s types.State) (types.State, []types.Action, bool) {
	var actions []types.Action
	switch s.Focus {
	case types.FocusPalette:
		actions = append(actions, types.ClosePaletteAction{})
		if s.PrevFocus == types.FocusInput {
			actions = append(actions, types.BlurInputAction{})
		}
	case types.FocusInput:
		actions = append(actions, types.BlurInputAction{})
	}

	s.Focus = types.FocusIdle
	s.PrevFocus = types.FocusIdle
	s.NavIndex = -1
	s.PaletteIndex = 0
	s.PaletteFilter = ""
	return s, actions, true
}

// ListChanged resets the selection after the active list was replaced
func ListChanged(s types.State) types.State {
	s.NavIndex = -1
	return s
}

// Submitted moves the selection space to the results of a new search
func Submitted(s types.State) types.State {
	s.NavIndex = -1
	s.ActiveList = types.ListResults
	return s
}

// ModeName returns the display name of the current focus state
func ModeName(s types.State) string {
	if h := handlers[s.Focus]; h != nil {
		return h.Name()
	}
	return ""
}
