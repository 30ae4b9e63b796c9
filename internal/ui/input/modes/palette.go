package modes

import (
	"unicode/utf8"

	"searchdeck/internal/ui/input/types"
)

// PaletteMode owns the keyboard while the command palette is open
type PaletteMode struct{}

func NewPaletteMode() *PaletteMode {
	return &PaletteMode{}
}

func (m *PaletteMode) Name() string {
	return "palette"
}

func (m *PaletteMode) HandleKey(s types.State, ev types.KeyEvent, lists types.Lists) (types.State, []types.Action, bool) {
	switch ev.Key {
	case types.KeyUp, types.KeyDown:
		s.PaletteIndex = move(s.PaletteIndex, delta(ev.Key), lists.Palette)
		return s, nil, true

	case types.KeyEnter:
		actions := []types.Action{}
		if s.PaletteIndex >= 0 && s.PaletteIndex < lists.Palette {
			actions = append(actions, types.PaletteSelectAction{Index: s.PaletteIndex})
		}
		s, closing := Close(s)
		return s, append(actions, closing...), true

	case types.KeyBackspace:
		if s.PaletteFilter != "" {
			_, size := utf8.DecodeLastRuneInString(s.PaletteFilter)
			s.PaletteFilter = s.PaletteFilter[:len(s.PaletteFilter)-size]
			s.PaletteIndex = 0
		}
		return s, []types.Action{types.PaletteFilterAction{Text: s.PaletteFilter}}, true

	case types.KeyRunes:
		if ev.Ctrl || ev.Meta || ev.Alt {
			return s, nil, true
		}
		s.PaletteFilter += ev.Text()
		s.PaletteIndex = 0
		return s, []types.Action{types.PaletteFilterAction{Text: s.PaletteFilter}}, true
	}

	// the palette swallows everything else
	return s, nil, true
}

// Open moves to the palette and remembers where focus was
func Open(s types.State) (types.State, []types.Action) {
	s.PrevFocus = s.Focus
	s.Focus = types.FocusPalette
	s.PaletteIndex = 0
	s.PaletteFilter = ""
	return s, []types.Action{types.OpenPaletteAction{}}
}

// Close leaves the palette and restores the focus it was opened from
func Close(s types.State) (types.State, []types.Action) {
	s.Focus = s.PrevFocus
	s.PrevFocus = types.FocusIdle
	s.PaletteIndex = 0
	s.PaletteFilter = ""
	actions := []types.Action{types.ClosePaletteAction{}}
	if s.Focus == types.FocusInput {
		actions = append(actions, types.FocusInputAction{})
	}
	return s, actions
}
