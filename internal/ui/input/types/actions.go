package types

// Palette actions
type OpenPaletteAction struct{}

func (a OpenPaletteAction) Type() string { return "open_palette" }

type ClosePaletteAction struct{}

func (a ClosePaletteAction) Type() string { return "close_palette" }

type PaletteSelectAction struct {
	Index int // into the filtered palette items
}

func (a PaletteSelectAction) Type() string { return "palette_select" }

type PaletteFilterAction struct {
	Text string
}

func (a PaletteFilterAction) Type() string { return "palette_filter" }

// Input focus actions
type FocusInputAction struct{}

func (a FocusInputAction) Type() string { return "focus_input" }

type BlurInputAction struct{}

func (a BlurInputAction) Type() string { return "blur_input" }

// Text input actions
type UpdateTextAction struct {
	Text string
}

func (a UpdateTextAction) Type() string { return "update_text" }

// Navigation actions
type NavigateAction struct {
	List  ListKind
	Index int
}

func (a NavigateAction) Type() string { return "navigate" }

// Commit actions
type CommitSuggestionAction struct {
	Label string
}

func (a CommitSuggestionAction) Type() string { return "commit_suggestion" }

type SubmitInputAction struct{}

func (a SubmitInputAction) Type() string { return "submit_input" }

type OpenResultAction struct {
	URL string
}

func (a OpenResultAction) Type() string { return "open_result" }

// Command actions
type QuitAction struct {
	Force bool // true for Ctrl+C, false for 'q'
}

func (a QuitAction) Type() string { return "quit" }

type ToggleHelpAction struct{}

func (a ToggleHelpAction) Type() string { return "toggle_help" }

// RefreshAction drops cached responses and runs the current search again
type RefreshAction struct{}

func (a RefreshAction) Type() string { return "refresh" }

type ToggleDashboardAction struct{}

func (a ToggleDashboardAction) Type() string { return "toggle_dashboard" }

type CycleModeAction struct{}

func (a CycleModeAction) Type() string { return "cycle_mode" }

type CycleTypeAction struct{}

func (a CycleTypeAction) Type() string { return "cycle_type" }

type CycleTimeAction struct{}

func (a CycleTimeAction) Type() string { return "cycle_time" }

type ToggleSafeAction struct{}

func (a ToggleSafeAction) Type() string { return "toggle_safe" }
