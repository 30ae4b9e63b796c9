package ui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"searchdeck/internal/config"
	"searchdeck/internal/domain"
	"searchdeck/internal/eventbus"
	"searchdeck/internal/metrics"
	"searchdeck/internal/ui/input"
	inputtypes "searchdeck/internal/ui/input/types"
	"searchdeck/internal/ui/services/palette"
	"searchdeck/internal/ui/services/query"
	"searchdeck/internal/ui/services/recent"
	"searchdeck/internal/ui/services/results"
	"searchdeck/internal/ui/services/suggest"
	"searchdeck/internal/ui/views"
)

// Dependencies are the services the model drives. Metrics and Opener are optional.
type Dependencies struct {
	Config  *config.Config
	Bus     eventbus.EventBus
	Query   *query.Service
	Recent  *recent.Service
	Results *results.Cache
	Metrics *metrics.Metrics
	Opener  Opener
	Logger  zerolog.Logger
}

// keyMap is the footer help
type keyMap struct {
	Focus    key.Binding
	Navigate key.Binding
	Palette  key.Binding
	Mode     key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Focus, k.Navigate, k.Palette, k.Mode, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

func newKeyMap() keyMap {
	return keyMap{
		Focus:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Navigate: key.NewBinding(key.WithKeys("up", "down"), key.WithHelp("↑/↓", "select")),
		Palette:  key.NewBinding(key.WithKeys("ctrl+k"), key.WithHelp("ctrl+k", "palette")),
		Mode:     key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "mode")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// Model represents the UI state
type Model struct {
	deps Dependencies
	log  zerolog.Logger

	width  int
	height int
	help   help.Model
	keys   keyMap

	suggestions    []domain.Suggestion
	snapshot       results.Snapshot
	paletteItems   []palette.Item
	viewportOffset int
	statusMessage  string

	showHelp   bool
	helpScroll int

	showDashboard bool
	dashboardGen  int
	dashboard     metrics.Snapshot
	dashboardErr  error

	renderer     *views.Renderer
	helpRenderer *HelpRenderer
	inputHandler *input.Handler
	helpOps      *HelpOps
	unsubscribe  []func()

	// Program reference for terminal management
	program *tea.Program
}

// NewModel creates a new UI model
func NewModel(deps Dependencies) *Model {
	if deps.Config == nil {
		deps.Config = config.DefaultConfig()
	}
	if deps.Opener == nil {
		deps.Opener = NewSystemOpener()
	}

	m := &Model{
		deps:         deps,
		log:          deps.Logger.With().Str("component", "ui").Logger(),
		help:         help.New(),
		keys:         newKeyMap(),
		renderer:     views.NewRenderer(),
		helpRenderer: NewHelpRenderer(),
		inputHandler: input.New(),
		paletteItems: palette.Items(),
	}
	m.suggestions = m.computeSuggestions()

	if deps.Bus != nil {
		forward := func(e eventbus.DomainEvent) { m.send(EventMsg{Event: e}) }
		m.unsubscribe = append(m.unsubscribe,
			deps.Bus.Subscribe(domain.EventPersistFailed, forward),
			deps.Bus.Subscribe(domain.EventStaleDiscarded, forward),
		)
	}
	return m
}

// SetProgram sets the program reference for terminal management
func (m *Model) SetProgram(p *tea.Program) {
	m.program = p
	m.helpOps = NewHelpOps(p)
}

// Close detaches the model from the event bus
func (m *Model) Close() {
	for _, unsub := range m.unsubscribe {
		unsub()
	}
	m.unsubscribe = nil
}

func (m *Model) send(msg tea.Msg) {
	if m.program != nil {
		m.program.Send(msg)
	}
}

// Init adopts the location the program was started with
func (m *Model) Init() tea.Cmd {
	sub, ok := m.deps.Query.AdoptLocation()
	if !ok {
		return nil
	}
	return m.adopted(sub)
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.inputHandler.SetWidth(msg.Width - 8)
		m.ensureSelectedVisible()
		return m, nil

	case tea.KeyMsg:
		if m.showHelp {
			if !isPaletteToggle(msg) {
				return m, m.handleHelpKey(msg)
			}
			m.closeHelp()
		}
		m.statusMessage = ""

		actions, cmd := m.inputHandler.HandleKey(msg, m.lists())

		cmds := []tea.Cmd{}
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		for _, action := range actions {
			if actionCmd := m.processAction(action); actionCmd != nil {
				cmds = append(cmds, actionCmd)
			}
		}
		return m, tea.Batch(cmds...)

	default:
		return m.handleNonKeyboardMsg(msg)
	}
}

// View renders the UI
func (m *Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}
	return m.renderer.Render(m.viewState())
}

func (m *Model) viewState() views.ViewState {
	st := m.inputHandler.State()
	return views.ViewState{
		Width:          m.width,
		Height:         m.height,
		Input:          m.inputHandler.TextInput().View(),
		InputFocused:   st.Focus == inputtypes.FocusInput || (st.Focus == inputtypes.FocusPalette && st.PrevFocus == inputtypes.FocusInput),
		ModeName:       m.inputHandler.ModeName(),
		Mode:           m.deps.Query.Mode(),
		Filters:        m.deps.Query.Filters(),
		Suggestions:    m.suggestions,
		Results:        m.snapshot,
		NavIndex:       st.NavIndex,
		ActiveList:     st.ActiveList,
		StatusMessage:  m.statusMessage,
		ShowPalette:    st.Focus == inputtypes.FocusPalette,
		PaletteItems:   m.paletteItems,
		PaletteIndex:   st.PaletteIndex,
		PaletteFilter:  st.PaletteFilter,
		ShowHelp:       m.showHelp,
		HelpContent:    m.helpRenderer.renderHelpContent(m.height, m.helpScroll),
		ShowDashboard:  m.showDashboard,
		Dashboard:      m.dashboard,
		DashboardErr:   m.dashboardErr,
		HelpModel:      m.help,
		Keys:           m.keys.ShortHelp(),
		ViewportOffset: m.viewportOffset,
	}
}

// lists returns what the reducer can navigate
func (m *Model) lists() inputtypes.Lists {
	entries := m.snapshot.Results()
	urls := make([]string, len(entries))
	for i, r := range entries {
		urls[i] = r.URL
	}
	return inputtypes.Lists{
		Suggestions: suggest.Labels(m.suggestions),
		Results:     urls,
		Palette:     len(m.paletteItems),
	}
}

// processAction executes a single action
func (m *Model) processAction(action inputtypes.Action) tea.Cmd {
	switch a := action.(type) {
	case inputtypes.UpdateTextAction:
		h := m.deps.Query.SetDraft(a.Text)
		return tea.Tick(m.deps.Query.Debouncer().Delay(), func(time.Time) tea.Msg {
			return debounceMsg{handle: h}
		})

	case inputtypes.CommitSuggestionAction:
		m.inputHandler.SetValue(a.Label)
		return m.submit(a.Label)

	case inputtypes.SubmitInputAction:
		return m.submit(m.inputHandler.Value())

	case inputtypes.NavigateAction:
		if a.List == inputtypes.ListResults {
			m.ensureSelectedVisible()
		}

	case inputtypes.OpenResultAction:
		return m.openResult(a.URL)

	case inputtypes.OpenPaletteAction:
		m.paletteItems = palette.Items()

	case inputtypes.PaletteFilterAction:
		m.paletteItems = palette.Filter(palette.Items(), a.Text)

	case inputtypes.PaletteSelectAction:
		if a.Index < 0 || a.Index >= len(m.paletteItems) {
			return nil
		}
		exec := &paletteExecutor{m: m}
		palette.Run(m.paletteItems[a.Index], exec)
		return exec.cmd

	case inputtypes.ClosePaletteAction:
		m.paletteItems = palette.Items()

	case inputtypes.CycleModeAction:
		return m.resolved(m.deps.Query.SetMode(m.deps.Query.Mode().Next()))

	case inputtypes.CycleTypeAction:
		return m.resolved(m.deps.Query.SetFilters(m.deps.Query.Filters().WithNextType()))

	case inputtypes.CycleTimeAction:
		return m.resolved(m.deps.Query.SetFilters(m.deps.Query.Filters().WithNextTime()))

	case inputtypes.ToggleSafeAction:
		f := m.deps.Query.Filters()
		return m.resolved(m.deps.Query.SetFilters(f.WithSafe(!f.Safe)))

	case inputtypes.ToggleDashboardAction:
		return m.toggleDashboard()

	case inputtypes.RefreshAction:
		return m.refresh()

	case inputtypes.ToggleHelpAction:
		if m.helpOps != nil {
			return m.helpOps.showHelpPager(m.helpRenderer.RenderHelpContentPlain())
		}
		m.showHelp = true
		m.helpScroll = 0

	case inputtypes.QuitAction:
		return tea.Quit
	}
	return nil
}

// submit runs a search for q from the input or the palette
func (m *Model) submit(q string) tea.Cmd {
	sub, ok := m.deps.Query.SubmitQuery(q)
	if !ok {
		return nil
	}
	m.inputHandler.Submitted()
	m.refreshSuggestions()
	return m.resolved(sub)
}

// adopted applies a query taken from the location
func (m *Model) adopted(sub query.Submission) tea.Cmd {
	m.inputHandler.SetValue(m.deps.Query.Query())
	m.inputHandler.Submitted()
	m.refreshSuggestions()
	return m.resolved(sub)
}

// resolved shows the snapshot of a submission and waits for its fetch, if any
func (m *Model) resolved(sub query.Submission) tea.Cmd {
	m.setSnapshot(sub.Snapshot)
	if sub.Call == nil {
		return nil
	}
	return tea.Batch(waitForCall(sub.Call), tick())
}

func (m *Model) setSnapshot(snap results.Snapshot) {
	m.snapshot = snap
	m.viewportOffset = 0
	if m.inputHandler.State().ActiveList == inputtypes.ListResults {
		m.inputHandler.ListChanged()
	}
}

// waitForCall blocks a command goroutine until the fetch finishes
func waitForCall(call *results.Call) tea.Cmd {
	return func() tea.Msg {
		outcome, err := call.Wait(context.Background())
		if err != nil {
			outcome = results.Outcome{Key: call.Key(), Err: err}
		}
		return resultsMsg{outcome: outcome}
	}
}

func (m *Model) computeSuggestions() []domain.Suggestion {
	var recents []string
	if m.deps.Recent != nil {
		recents = m.deps.Recent.Items()
	}
	return suggest.Compute(m.deps.Query.Query(), recents, suggest.Trending)
}

// refreshSuggestions recomputes the suggestion list and drops a selection into it
// when the list changed
func (m *Model) refreshSuggestions() {
	next := m.computeSuggestions()
	if !sameSuggestions(next, m.suggestions) && m.inputHandler.State().ActiveList == inputtypes.ListSuggestions {
		m.inputHandler.ListChanged()
	}
	m.suggestions = next
}

func sameSuggestions(a, b []domain.Suggestion) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// openResult hands url to the opener off the update loop
func (m *Model) openResult(url string) tea.Cmd {
	opener := m.deps.Opener
	return func() tea.Msg {
		return openedMsg{url: url, err: opener.Open(url)}
	}
}

// refresh forgets every cached response and fetches the submitted query again
func (m *Model) refresh() tea.Cmd {
	if m.deps.Query.Submitted() == "" {
		return nil
	}
	if m.deps.Results != nil {
		m.deps.Results.Purge()
	}
	return m.resolved(m.deps.Query.Refresh())
}

// toggleDashboard shows or hides the metrics panel. Hiding bumps the generation so a
// pending refresh tick is dropped.
func (m *Model) toggleDashboard() tea.Cmd {
	m.showDashboard = !m.showDashboard
	m.dashboardGen++
	if !m.showDashboard {
		return nil
	}
	m.refreshDashboard()
	return m.dashboardTick()
}

func (m *Model) dashboardTick() tea.Cmd {
	gen := m.dashboardGen
	return tea.Tick(m.deps.Config.Dashboard.Refresh.Duration, func(time.Time) tea.Msg {
		return dashboardTickMsg{gen: gen}
	})
}

func (m *Model) refreshDashboard() {
	if m.deps.Metrics == nil {
		m.dashboardErr = errors.New("metrics disabled")
		return
	}
	m.dashboard, m.dashboardErr = m.deps.Metrics.Snapshot()
}

func (m *Model) handleHelpKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up", "k":
		if m.helpScroll > 0 {
			m.helpScroll--
		}
	case "down", "j":
		m.helpScroll++
	case "ctrl+c":
		return tea.Quit
	default:
		m.closeHelp()
	}
	return nil
}

func (m *Model) closeHelp() {
	m.showHelp = false
	m.helpScroll = 0
}

// isPaletteToggle reports whether msg toggles the palette, which the reducer honors in
// every state
func isPaletteToggle(msg tea.KeyMsg) bool {
	return msg.Type == tea.KeyCtrlK
}

// ensureSelectedVisible scrolls the result list so the selection is on screen
func (m *Model) ensureSelectedVisible() {
	st := m.inputHandler.State()
	if st.ActiveList != inputtypes.ListResults || st.NavIndex < 0 {
		return
	}
	rows := m.renderer.ResultRows(m.viewState())
	if st.NavIndex < m.viewportOffset {
		m.viewportOffset = st.NavIndex
	} else if st.NavIndex >= m.viewportOffset+rows {
		m.viewportOffset = st.NavIndex - rows + 1
	}
}

func (m *Model) handleNonKeyboardMsg(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case debounceMsg:
		if m.deps.Query.Commit(msg.handle) {
			m.refreshSuggestions()
		}
		return m, nil

	case resultsMsg:
		if msg.outcome.Err != nil && msg.outcome.Surfaced {
			m.log.Warn().Err(msg.outcome.Err).Str("query", msg.outcome.Key.Query).Msg("search failed")
		}
		if msg.outcome.Surfaced {
			m.setSnapshot(m.deps.Results.Current())
		}
		return m, nil

	case LocationChangedMsg:
		sub, ok := m.deps.Query.AdoptLocation()
		if !ok {
			return m, nil
		}
		return m, m.adopted(sub)

	case tickMsg:
		if m.snapshot.Status != results.StatusLoading {
			return m, nil
		}
		return m, tick()

	case dashboardTickMsg:
		if !m.showDashboard || msg.gen != m.dashboardGen {
			return m, nil
		}
		m.refreshDashboard()
		return m, m.dashboardTick()

	case openedMsg:
		if msg.err != nil {
			m.log.Error().Err(msg.err).Str("url", msg.url).Msg("failed to open result")
			m.statusMessage = fmt.Sprintf("Could not open %s", msg.url)
			return m, nil
		}
		if m.deps.Bus != nil {
			m.deps.Bus.Publish(domain.ResultOpenedEvent{URL: msg.url})
		}
		return m, nil

	case BackendStatusMsg:
		if msg.Err != nil {
			m.log.Warn().Err(msg.Err).Str("endpoint", msg.Endpoint).Msg("search backend unreachable")
			m.statusMessage = fmt.Sprintf("Search backend unreachable at %s", msg.Endpoint)
		}
		return m, nil

	case helpPagerMsg:
		if msg.err != nil {
			m.log.Warn().Err(msg.err).Msg("help pager unavailable, showing popup")
			m.showHelp = true
			m.helpScroll = 0
		}
		return m, nil

	case EventMsg:
		switch e := msg.Event.(type) {
		case domain.PersistFailedEvent:
			m.statusMessage = "Recent searches are kept for this session only"
		case domain.StaleDiscardedEvent:
			m.log.Debug().Str("key", e.Key.String()).Str("active", e.Active.String()).Msg("dropped stale response")
		}
		return m, nil
	}

	return m, m.inputHandler.Update(msg)
}

// tick returns a command that sends a tick message after a delay
func tick() tea.Cmd {
	return tea.Tick(time.Millisecond*100, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// paletteExecutor carries out palette selections against the model
type paletteExecutor struct {
	m   *Model
	cmd tea.Cmd
}

func (e *paletteExecutor) SubmitQuery(q string) {
	e.m.inputHandler.SetValue(q)
	e.cmd = e.m.submit(q)
}

func (e *paletteExecutor) ClearRecent() {
	if e.m.deps.Recent != nil {
		e.m.deps.Recent.Clear()
	}
	e.m.refreshSuggestions()
}
