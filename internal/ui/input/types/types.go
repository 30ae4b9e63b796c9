package types

// Focus is the keyboard dispatch state
type Focus int

const (
	FocusIdle Focus = iota
	FocusInput
	FocusPalette
)

func (f Focus) String() string {
	switch f {
	case FocusInput:
		return "input"
	case FocusPalette:
		return "palette"
	default:
		return "idle"
	}
}

// Target is the element a key event is addressed to
type Target int

const (
	TargetNone Target = iota
	TargetSearchInput
	TargetOtherEditable
)

// Editable reports whether the target is a text field
func (t Target) Editable() bool {
	return t != TargetNone
}

// ListKind names the list NavIndex points into
type ListKind int

const (
	ListSuggestions ListKind = iota
	ListResults
)

// Key names used in KeyEvent.Key
const (
	KeyUp        = "up"
	KeyDown      = "down"
	KeyEnter     = "enter"
	KeyEsc       = "esc"
	KeyBackspace = "backspace"
	KeyRunes     = "runes"
)

// KeyEvent is a terminal-independent key press. Ctrl and Meta combinations carry the
// base key in Key, so ctrl+k is {Key: "k", Ctrl: true}.
type KeyEvent struct {
	Key    string
	Ctrl   bool
	Meta   bool
	Alt    bool
	Runes  []rune
	Target Target
}

// Text returns the typed runes of a KeyRunes event
func (e KeyEvent) Text() string {
	if e.Key != KeyRunes {
		return ""
	}
	return string(e.Runes)
}

// Lists are the navigable lists the reducer can index into
type Lists struct {
	Suggestions []string // labels
	Results     []string // urls
	Palette     int      // number of visible palette items
}

// State is the whole keyboard dispatch state. It is a plain value so every transition
// can be checked as state in, state out.
type State struct {
	Focus         Focus
	PrevFocus     Focus // restored when the palette closes
	NavIndex      int   // -1 = no selection
	ActiveList    ListKind
	PaletteIndex  int
	PaletteFilter string
}

// Initial returns the state of a fresh session
func Initial() State {
	return State{Focus: FocusIdle, NavIndex: -1}
}

// Action represents a command the model should execute
type Action interface {
	Type() string
}

// ModeHandler handles keys for one focus state. Global keys are handled before the
// mode handler sees the event.
type ModeHandler interface {
	// HandleKey returns the next state, the actions to run and whether the key was consumed
	HandleKey(s State, ev KeyEvent, lists Lists) (State, []Action, bool)

	// Name returns the mode name for display
	Name() string
}
