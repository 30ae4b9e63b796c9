package input

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"searchdeck/internal/ui/input/types"
)

func key(k string) types.KeyEvent { return types.KeyEvent{Key: k} }

func runes(s string) types.KeyEvent { return types.KeyEvent{Key: types.KeyRunes, Runes: []rune(s)} }

func ctrlK() types.KeyEvent { return types.KeyEvent{Key: "k", Ctrl: true} }

func inInput(ev types.KeyEvent) types.KeyEvent {
	ev.Target = types.TargetSearchInput
	return ev
}

func inOtherField(ev types.KeyEvent) types.KeyEvent {
	ev.Target = types.TargetOtherEditable
	return ev
}

var lists = types.Lists{
	Suggestions: []string{"ai research", "machine vision", "Latest AI breakthroughs"},
	Results:     []string{"https://a.test", "https://b.test"},
	Palette:     4,
}

func focused() types.State {
	s := types.Initial()
	s.Focus = types.FocusInput
	return s
}

func TestCtrlKTogglesPalette(t *testing.T) {
	s := types.Initial()

	s, actions, consumed := Reduce(s, ctrlK(), lists)
	require.True(t, consumed)
	assert.Equal(t, types.FocusPalette, s.Focus)
	assert.Equal(t, []types.Action{types.OpenPaletteAction{}}, actions)

	s, actions, consumed = Reduce(s, ctrlK(), lists)
	require.True(t, consumed)
	assert.Equal(t, types.FocusIdle, s.Focus)
	assert.Equal(t, []types.Action{types.ClosePaletteAction{}}, actions)
}

func TestCtrlKFromOtherEditableFieldStillToggles(t *testing.T) {
	s, _, consumed := Reduce(types.Initial(), inOtherField(ctrlK()), lists)
	assert.True(t, consumed)
	assert.Equal(t, types.FocusPalette, s.Focus)

	// slash is left to the field
	s2, actions, consumed := Reduce(types.Initial(), inOtherField(runes("/")), lists)
	assert.False(t, consumed)
	assert.Empty(t, actions)
	assert.Equal(t, types.FocusIdle, s2.Focus)
}

func TestCmdKTogglesPalette(t *testing.T) {
	s, _, consumed := Reduce(types.Initial(), types.KeyEvent{Key: "k", Meta: true}, lists)
	assert.True(t, consumed)
	assert.Equal(t, types.FocusPalette, s.Focus)
}

func TestPaletteCloseRestoresInputFocus(t *testing.T) {
	s, _, _ := Reduce(focused(), inInput(ctrlK()), lists)
	assert.Equal(t, types.FocusPalette, s.Focus)
	assert.Equal(t, types.FocusInput, s.PrevFocus)

	s, actions, _ := Reduce(s, ctrlK(), lists)
	assert.Equal(t, types.FocusInput, s.Focus)
	assert.Equal(t, []types.Action{types.ClosePaletteAction{}, types.FocusInputAction{}}, actions)
}

func TestSlashFocusesInput(t *testing.T) {
	s, actions, consumed := Reduce(types.Initial(), runes("/"), lists)
	assert.True(t, consumed)
	assert.Equal(t, types.FocusInput, s.Focus)
	assert.Equal(t, []types.Action{types.FocusInputAction{}}, actions)

	// typed into the focused input it is just text
	_, actions, consumed = Reduce(s, inInput(runes("/")), lists)
	assert.False(t, consumed)
	assert.Empty(t, actions)
}

func TestInputNavigationClampsWithoutWrap(t *testing.T) {
	s := focused()

	s, _, _ = Reduce(s, inInput(key(types.KeyUp)), lists)
	assert.Equal(t, 0, s.NavIndex, "up from no selection lands on the first item")

	for i := 0; i < 5; i++ {
		s, _, _ = Reduce(s, inInput(key(types.KeyDown)), lists)
	}
	assert.Equal(t, len(lists.Suggestions)-1, s.NavIndex)

	s, actions, _ := Reduce(s, inInput(key(types.KeyUp)), lists)
	assert.Equal(t, 1, s.NavIndex)
	assert.Equal(t, []types.Action{types.NavigateAction{List: types.ListSuggestions, Index: 1}}, actions)

	for i := 0; i < 5; i++ {
		s, _, _ = Reduce(s, inInput(key(types.KeyUp)), lists)
	}
	assert.Equal(t, 0, s.NavIndex)
}

func TestInputNavigationOnEmptyList(t *testing.T) {
	s, actions, consumed := Reduce(focused(), inInput(key(types.KeyDown)), types.Lists{})
	assert.True(t, consumed)
	assert.Empty(t, actions)
	assert.Equal(t, -1, s.NavIndex)
}

func TestEnterCommitsSelectedSuggestion(t *testing.T) {
	s := focused()
	s, _, _ = Reduce(s, inInput(key(types.KeyDown)), lists)
	s, _, _ = Reduce(s, inInput(key(types.KeyDown)), lists)

	s, actions, consumed := Reduce(s, inInput(key(types.KeyEnter)), lists)
	assert.True(t, consumed)
	assert.Equal(t, []types.Action{types.CommitSuggestionAction{Label: "machine vision"}}, actions)
	assert.Equal(t, -1, s.NavIndex)
	assert.Equal(t, types.ListResults, s.ActiveList)
	assert.Equal(t, types.FocusInput, s.Focus)
}

func TestEnterWithoutSelectionSubmitsRawInput(t *testing.T) {
	s, actions, _ := Reduce(focused(), inInput(key(types.KeyEnter)), lists)
	assert.Equal(t, []types.Action{types.SubmitInputAction{}}, actions)
	assert.Equal(t, -1, s.NavIndex)
	assert.Equal(t, types.ListResults, s.ActiveList)
}

func TestInputEnterOnResultOpensIt(t *testing.T) {
	s := Submitted(focused())
	s, _, _ = Reduce(s, inInput(key(types.KeyDown)), lists)
	s, _, _ = Reduce(s, inInput(key(types.KeyDown)), lists)

	_, actions, _ := Reduce(s, inInput(key(types.KeyEnter)), lists)
	assert.Equal(t, []types.Action{types.OpenResultAction{URL: "https://b.test"}}, actions)
}

func TestEditingSwitchesBackToSuggestions(t *testing.T) {
	s := Submitted(focused())
	s, _, _ = Reduce(s, inInput(key(types.KeyDown)), lists)
	require.Equal(t, 0, s.NavIndex)

	s, _, consumed := Reduce(s, inInput(runes("x")), lists)
	assert.False(t, consumed)
	assert.Equal(t, types.ListSuggestions, s.ActiveList)
	assert.Equal(t, -1, s.NavIndex)
}

func TestEscapeResetsEverything(t *testing.T) {
	tests := []struct {
		name    string
		state   types.State
		actions []types.Action
	}{
		{"idle", types.State{Focus: types.FocusIdle, NavIndex: 1, ActiveList: types.ListResults}, nil},
		{"input", types.State{Focus: types.FocusInput, NavIndex: 2}, []types.Action{types.BlurInputAction{}}},
		{"palette from idle", types.State{Focus: types.FocusPalette, PrevFocus: types.FocusIdle, NavIndex: 0, PaletteFilter: "x"},
			[]types.Action{types.ClosePaletteAction{}}},
		{"palette from input", types.State{Focus: types.FocusPalette, PrevFocus: types.FocusInput, NavIndex: 0},
			[]types.Action{types.ClosePaletteAction{}, types.BlurInputAction{}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, actions, consumed := Reduce(tt.state, key(types.KeyEsc), lists)
			assert.True(t, consumed)
			assert.Equal(t, tt.actions, actions)
			assert.Equal(t, types.FocusIdle, s.Focus)
			assert.Equal(t, -1, s.NavIndex)
			assert.Empty(t, s.PaletteFilter)
		})
	}
}

func TestIdleResultNavigation(t *testing.T) {
	s := types.Initial()

	s, actions, consumed := Reduce(s, key(types.KeyDown), lists)
	require.True(t, consumed)
	assert.Equal(t, types.ListResults, s.ActiveList)
	assert.Equal(t, 0, s.NavIndex)
	assert.Equal(t, []types.Action{types.NavigateAction{List: types.ListResults, Index: 0}}, actions)

	s, _, _ = Reduce(s, key(types.KeyDown), lists)
	s, _, _ = Reduce(s, key(types.KeyDown), lists)
	assert.Equal(t, 1, s.NavIndex)

	_, actions, consumed = Reduce(s, key(types.KeyEnter), lists)
	assert.True(t, consumed)
	assert.Equal(t, []types.Action{types.OpenResultAction{URL: "https://b.test"}}, actions)
}

func TestIdleNavigationIgnoredWithoutResults(t *testing.T) {
	empty := types.Lists{Suggestions: lists.Suggestions}
	for _, k := range []string{types.KeyUp, types.KeyDown, types.KeyEnter} {
		s, actions, consumed := Reduce(types.Initial(), key(k), empty)
		assert.False(t, consumed, k)
		assert.Empty(t, actions, k)
		assert.Equal(t, -1, s.NavIndex, k)
	}
}

func TestIdleEnterWithoutSelectionIsIgnored(t *testing.T) {
	_, actions, consumed := Reduce(types.Initial(), key(types.KeyEnter), lists)
	assert.False(t, consumed)
	assert.Empty(t, actions)
}

func TestNavigationGuardForOtherEditableFields(t *testing.T) {
	for _, s := range []types.State{types.Initial(), focused()} {
		for _, k := range []string{types.KeyUp, types.KeyDown, types.KeyEnter} {
			next, actions, consumed := Reduce(s, inOtherField(key(k)), lists)
			assert.False(t, consumed)
			assert.Empty(t, actions)
			assert.Equal(t, s, next)
		}
	}
}

func TestIdleShortcuts(t *testing.T) {
	tests := map[string]types.Action{
		"q": types.QuitAction{},
		"?": types.ToggleHelpAction{},
		"m": types.CycleModeAction{},
		"t": types.CycleTypeAction{},
		"w": types.CycleTimeAction{},
		"s": types.ToggleSafeAction{},
		"d": types.ToggleDashboardAction{},
		"r": types.RefreshAction{},
	}
	for r, want := range tests {
		_, actions, consumed := Reduce(types.Initial(), runes(r), lists)
		assert.True(t, consumed, r)
		assert.Equal(t, []types.Action{want}, actions, r)

		// in the input they are ordinary text
		_, actions, consumed = Reduce(focused(), inInput(runes(r)), lists)
		assert.False(t, consumed, r)
		assert.Empty(t, actions, r)
	}
}

func TestCtrlCAlwaysQuits(t *testing.T) {
	for _, s := range []types.State{types.Initial(), focused(), {Focus: types.FocusPalette}} {
		_, actions, consumed := Reduce(s, types.KeyEvent{Key: "c", Ctrl: true}, lists)
		assert.True(t, consumed)
		assert.Equal(t, []types.Action{types.QuitAction{Force: true}}, actions)
	}
}

func TestPaletteOwnsKeyboard(t *testing.T) {
	s, _, _ := Reduce(types.Initial(), ctrlK(), lists)

	s, _, consumed := Reduce(s, key(types.KeyDown), lists)
	assert.True(t, consumed)
	assert.Equal(t, 1, s.PaletteIndex)
	assert.Equal(t, -1, s.NavIndex, "result navigation is off while the palette is open")

	s, actions, consumed := Reduce(s, runes("q"), lists)
	assert.True(t, consumed, "shortcuts are text in the palette")
	assert.Equal(t, []types.Action{types.PaletteFilterAction{Text: "q"}}, actions)
	assert.Equal(t, 0, s.PaletteIndex)

	s, actions, _ = Reduce(s, key(types.KeyBackspace), lists)
	assert.Equal(t, "", s.PaletteFilter)
	assert.Equal(t, []types.Action{types.PaletteFilterAction{Text: ""}}, actions)

	_, _, consumed = Reduce(s, key("tab"), lists)
	assert.True(t, consumed)
}

func TestPaletteSelectCloses(t *testing.T) {
	s, _, _ := Reduce(types.Initial(), ctrlK(), lists)
	s, _, _ = Reduce(s, key(types.KeyDown), lists)
	s, _, _ = Reduce(s, key(types.KeyDown), lists)

	s, actions, consumed := Reduce(s, key(types.KeyEnter), lists)
	assert.True(t, consumed)
	assert.Equal(t, []types.Action{types.PaletteSelectAction{Index: 2}, types.ClosePaletteAction{}}, actions)
	assert.Equal(t, types.FocusIdle, s.Focus)
}

func TestPaletteEnterWithNoItemsJustCloses(t *testing.T) {
	s, _, _ := Reduce(types.Initial(), ctrlK(), lists)
	s, actions, _ := Reduce(s, key(types.KeyEnter), types.Lists{})
	assert.Equal(t, []types.Action{types.ClosePaletteAction{}}, actions)
	assert.Equal(t, types.FocusIdle, s.Focus)
}

func TestListChangedResetsIndex(t *testing.T) {
	s := focused()
	s, _, _ = Reduce(s, inInput(key(types.KeyDown)), lists)
	require.Equal(t, 0, s.NavIndex)
	assert.Equal(t, -1, ListChanged(s).NavIndex)
}

func TestEventFromKey(t *testing.T) {
	tests := []struct {
		msg  tea.KeyMsg
		want types.KeyEvent
	}{
		{tea.KeyMsg{Type: tea.KeyCtrlK}, types.KeyEvent{Key: "k", Ctrl: true}},
		{tea.KeyMsg{Type: tea.KeyCtrlC}, types.KeyEvent{Key: "c", Ctrl: true}},
		{tea.KeyMsg{Type: tea.KeyUp}, types.KeyEvent{Key: types.KeyUp}},
		{tea.KeyMsg{Type: tea.KeyEnter}, types.KeyEvent{Key: types.KeyEnter}},
		{tea.KeyMsg{Type: tea.KeyEsc}, types.KeyEvent{Key: types.KeyEsc}},
		{tea.KeyMsg{Type: tea.KeyBackspace}, types.KeyEvent{Key: types.KeyBackspace}},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")}, types.KeyEvent{Key: types.KeyRunes, Runes: []rune("/")}},
		{tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")}, types.KeyEvent{Key: types.KeyRunes, Runes: []rune(" ")}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EventFromKey(tt.msg, types.TargetNone), tt.msg.String())
	}
}
