package modes

import "searchdeck/internal/ui/input/types"

// InputMode handles keys while the query input has focus. Keys it does not consume are
// edits for the text input.
type InputMode struct{}

func NewInputMode() *InputMode {
	return &InputMode{}
}

func (m *InputMode) Name() string {
	return "search"
}

func (m *InputMode) HandleKey(s types.State, ev types.KeyEvent, lists types.Lists) (types.State, []types.Action, bool) {
	if ev.Target == types.TargetOtherEditable {
		return s, nil, false
	}

	switch ev.Key {
	case types.KeyUp, types.KeyDown:
		n := listLen(s.ActiveList, lists)
		if n == 0 {
			return s, nil, true
		}
		s.NavIndex = move(s.NavIndex, delta(ev.Key), n)
		return s, []types.Action{types.NavigateAction{List: s.ActiveList, Index: s.NavIndex}}, true

	case types.KeyEnter:
		var action types.Action = types.SubmitInputAction{}
		if s.NavIndex >= 0 {
			switch {
			case s.ActiveList == types.ListSuggestions && s.NavIndex < len(lists.Suggestions):
				action = types.CommitSuggestionAction{Label: lists.Suggestions[s.NavIndex]}
			case s.ActiveList == types.ListResults && s.NavIndex < len(lists.Results):
				return s, []types.Action{types.OpenResultAction{URL: lists.Results[s.NavIndex]}}, true
			}
		}
		s.NavIndex = -1
		s.ActiveList = types.ListResults
		return s, []types.Action{action}, true
	}

	if isEdit(ev) && s.ActiveList != types.ListSuggestions {
		// editing brings the suggestion list back
		s.ActiveList = types.ListSuggestions
		s.NavIndex = -1
	}
	return s, nil, false
}
