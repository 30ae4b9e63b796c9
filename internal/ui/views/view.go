package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"searchdeck/internal/domain"
	"searchdeck/internal/metrics"
	"searchdeck/internal/ui/input/types"
	"searchdeck/internal/ui/services/palette"
	"searchdeck/internal/ui/services/results"
)

// Status line texts
const (
	StatusLoadingText = "Scoring the orchestra…"
	StatusEmptyText   = "No results. Try refining terms."
	StatusErrorText   = "Something went off-tempo."
	StatusIdleText    = "Type a query and press Enter."
)

// ViewState contains all the state needed for rendering
type ViewState struct {
	Width          int
	Height         int
	Input          string // rendered text input
	InputFocused   bool
	ModeName       string
	Mode           domain.Mode
	Filters        domain.FiltersState
	Suggestions    []domain.Suggestion
	Results        results.Snapshot
	NavIndex       int
	ActiveList     types.ListKind
	StatusMessage  string
	ShowPalette    bool
	PaletteItems   []palette.Item
	PaletteIndex   int
	PaletteFilter  string
	ShowHelp       bool
	HelpContent    string
	ShowDashboard  bool
	Dashboard      metrics.Snapshot
	DashboardErr   error
	HelpModel      help.Model
	Keys           []key.Binding
	ViewportOffset int
}

// Renderer handles all view rendering
type Renderer struct {
	styles        *Styles
	resultRender  *ResultRenderer
	suggestRender *SuggestionRenderer
	paletteRender *PaletteRenderer
	dashRender    *DashboardRenderer
	popupRender   *PopupRenderer
}

// NewRenderer creates a new renderer
func NewRenderer() *Renderer {
	styles := NewStyles()
	return &Renderer{
		styles:        styles,
		resultRender:  NewResultRenderer(styles),
		suggestRender: NewSuggestionRenderer(styles),
		paletteRender: NewPaletteRenderer(styles),
		dashRender:    NewDashboardRenderer(styles),
		popupRender:   NewPopupRenderer(styles),
	}
}

// Styles returns the renderer's styles
func (r *Renderer) Styles() *Styles {
	return r.styles
}

// Render produces the complete view
func (r *Renderer) Render(state ViewState) string {
	content := &strings.Builder{}

	content.WriteString(r.renderTitle(state))
	content.WriteString("\n")

	inputStyle := r.styles.Input
	if state.InputFocused {
		inputStyle = r.styles.InputFocused
	}
	inputWidth := contentWidth(state.Width) - 4
	if inputWidth < 10 {
		inputWidth = 10
	}
	content.WriteString(inputStyle.Width(inputWidth).Render(state.Input))
	content.WriteString("\n")

	if state.InputFocused && len(state.Suggestions) > 0 {
		content.WriteString(r.suggestRender.Render(state.Suggestions, r.selectedIn(state, types.ListSuggestions)))
		content.WriteString("\n")
	}

	content.WriteString(r.renderStatus(state))
	content.WriteString("\n")

	if entries := state.Results.Results(); len(entries) > 0 {
		content.WriteString(r.resultRender.Render(entries, r.selectedIn(state, types.ListResults), state.ViewportOffset, r.ResultRows(state)))
	}

	if state.ShowDashboard {
		content.WriteString("\n")
		content.WriteString(r.dashRender.Render(state.Dashboard, state.DashboardErr))
	}

	helpText := ""
	if !state.ShowHelp && !state.ShowPalette {
		if len(state.Keys) > 0 {
			helpText = state.HelpModel.ShortHelpView(state.Keys)
		} else {
			helpText = r.styles.Help.Render("Press ? for help")
		}
	}

	if helpText != "" {
		currentLines := strings.Count(content.String(), "\n") + 1

		// Account for container padding (1 top, 1 bottom from Padding(1, 2))
		availableLines := state.Height - 2
		if availableLines <= 0 {
			availableLines = 22
		}

		paddingNeeded := availableLines - currentLines - 1
		if paddingNeeded > 0 {
			content.WriteString(strings.Repeat("\n", paddingNeeded))
		}
		content.WriteString(helpText)
	}

	base := r.styles.Main.Render(content.String())

	switch {
	case state.ShowPalette:
		popup := r.paletteRender.Render(state.PaletteFilter, state.PaletteItems, state.PaletteIndex)
		return r.popupRender.RenderPopupOverlay(base, popup, state.Height, state.Width, r.styles.Popup)
	case state.ShowHelp:
		return r.popupRender.RenderPopupOverlay(base, state.HelpContent, state.Height, state.Width, r.styles.Popup)
	}
	return base
}

// renderTitle builds the title line with right-aligned mode and filter badges
func (r *Renderer) renderTitle(state ViewState) string {
	logo := r.styles.Title.Render("searchdeck")

	badges := []string{
		lipgloss.NewStyle().Foreground(lipgloss.Color(ModeColor(string(state.Mode)))).Render(fmt.Sprintf("[%s]", state.Mode)),
		r.styles.Filter.Render(FiltersLabel(state.Filters)),
	}
	if state.Results.Status == results.StatusLoading {
		spinner := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
		frame := int(time.Now().UnixMilli()/80) % len(spinner)
		badges = append([]string{r.styles.Dim.Render(spinner[frame] + " Searching")}, badges...)
	}
	if state.ModeName != "" {
		badges = append(badges, r.styles.Dim.Render(state.ModeName))
	}
	rightContent := strings.Join(badges, "  ")

	paddingWidth := contentWidth(state.Width) - lipgloss.Width(logo) - lipgloss.Width(rightContent)
	if paddingWidth > 0 {
		return logo + strings.Repeat(" ", paddingWidth) + rightContent
	}
	return fmt.Sprintf("%s  %s", logo, rightContent)
}

// renderStatus renders the line above the result list
func (r *Renderer) renderStatus(state ViewState) string {
	if state.StatusMessage != "" {
		return r.styles.StatusWarning.Render(state.StatusMessage)
	}
	snap := state.Results
	switch snap.Status {
	case results.StatusLoading:
		return r.styles.StatusLoading.Render(StatusLoadingText)
	case results.StatusError:
		return r.styles.StatusError.Render(StatusErrorText)
	case results.StatusReady:
		n := len(snap.Results())
		if n == 0 {
			return r.styles.Dim.Render(StatusEmptyText)
		}
		return r.styles.StatusSuccess.Render(fmt.Sprintf("%d results for %q in %dms", n, snap.Key.Query, snap.Entry.TookMs))
	default:
		return r.styles.Dim.Render(StatusIdleText)
	}
}

func (r *Renderer) selectedIn(state ViewState, list types.ListKind) int {
	if state.ActiveList != list {
		return -1
	}
	return state.NavIndex
}

// ResultRows returns how many results fit on screen
func (r *Renderer) ResultRows(state ViewState) int {
	height := state.Height
	if height <= 0 {
		height = 24
	}
	used := 8 // title, input box, status, footer and padding
	if state.InputFocused {
		used += len(state.Suggestions) + 1
	}
	if state.ShowDashboard {
		used += DashboardHeight
	}
	rows := (height - used) / ResultRowHeight
	if rows < 1 {
		rows = 1
	}
	return rows
}

// FiltersLabel renders the filter badge text
func FiltersLabel(f domain.FiltersState) string {
	safe := "off"
	if f.Safe {
		safe = "on"
	}
	return fmt.Sprintf("[type:%s time:%s safe:%s]", f.Type, f.Time, safe)
}

func contentWidth(width int) int {
	if width <= 0 {
		width = 80
	}
	return width - 4 // main container padding
}
