package modes

import "searchdeck/internal/ui/input/types"

// IdleMode handles keys while nothing has focus. The results list is navigable here.
type IdleMode struct{}

func NewIdleMode() *IdleMode {
	return &IdleMode{}
}

func (m *IdleMode) Name() string {
	return "idle"
}

func (m *IdleMode) HandleKey(s types.State, ev types.KeyEvent, lists types.Lists) (types.State, []types.Action, bool) {
	// keys typed into another text field belong to that field
	if ev.Target.Editable() {
		return s, nil, false
	}

	switch ev.Key {
	case types.KeyUp, types.KeyDown:
		if len(lists.Results) == 0 {
			return s, nil, false
		}
		if s.ActiveList != types.ListResults {
			s.ActiveList = types.ListResults
			s.NavIndex = -1
		}
		s.NavIndex = move(s.NavIndex, delta(ev.Key), len(lists.Results))
		return s, []types.Action{types.NavigateAction{List: types.ListResults, Index: s.NavIndex}}, true

	case types.KeyEnter:
		if len(lists.Results) == 0 || s.ActiveList != types.ListResults || s.NavIndex < 0 || s.NavIndex >= len(lists.Results) {
			return s, nil, false
		}
		return s, []types.Action{types.OpenResultAction{URL: lists.Results[s.NavIndex]}}, true
	}

	if ev.Ctrl || ev.Meta || ev.Alt {
		return s, nil, false
	}

	switch ev.Text() {
	case "/":
		s.Focus = types.FocusInput
		return s, []types.Action{types.FocusInputAction{}}, true
	case "q":
		return s, []types.Action{types.QuitAction{}}, true
	case "?":
		return s, []types.Action{types.ToggleHelpAction{}}, true
	case "m":
		return s, []types.Action{types.CycleModeAction{}}, true
	case "t":
		return s, []types.Action{types.CycleTypeAction{}}, true
	case "w":
		return s, []types.Action{types.CycleTimeAction{}}, true
	case "s":
		return s, []types.Action{types.ToggleSafeAction{}}, true
	case "d":
		return s, []types.Action{types.ToggleDashboardAction{}}, true
	case "r":
		return s, []types.Action{types.RefreshAction{}}, true
	}
	return s, nil, false
}
