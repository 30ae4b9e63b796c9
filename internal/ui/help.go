package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/noborus/ov/oviewer"
)

// helpPagerMsg reports how the pager run ended
type helpPagerMsg struct {
	err error
}

// HelpRenderer draws the key reference from helpSections
type HelpRenderer struct{}

// NewHelpRenderer returns a HelpRenderer
func NewHelpRenderer() *HelpRenderer {
	return &HelpRenderer{}
}

type helpEntry struct {
	keys string
	desc string
}

type helpSection struct {
	title   string
	entries []helpEntry
}

var helpSections = []helpSection{
	{"Search", []helpEntry{
		{"/", "Focus the search input"},
		{"Enter", "Submit the query or the selected suggestion"},
		{"↑/↓", "Move through suggestions or results"},
		{"Esc", "Clear selection and leave the input"},
	}},
	{"Results", []helpEntry{
		{"↑/↓", "Select a result"},
		{"Enter", "Open the selected result in the browser"},
		{"r", "Refresh, dropping cached responses"},
	}},
	{"Filters", []helpEntry{
		{"m", "Cycle ranking mode (auto, personalized, neutral)"},
		{"t", "Cycle result type"},
		{"w", "Cycle time window"},
		{"s", "Toggle safe search"},
	}},
	{"Other", []helpEntry{
		{"Ctrl+K", "Open or close the command palette"},
		{"d", "Toggle the session dashboard"},
		{"?", "Show this help"},
		{"q, Ctrl+C", "Quit"},
	}},
}

func (r *HelpRenderer) build() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("99")).
		MarginBottom(1)

	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("39")).
		MarginTop(1)

	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("220")).
		Width(12)

	descStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("252"))

	var help strings.Builder
	help.WriteString(titleStyle.Render("searchdeck Help"))
	help.WriteString("\n")

	for _, section := range helpSections {
		help.WriteString(sectionStyle.Render(section.title))
		help.WriteString("\n")
		for _, e := range section.entries {
			help.WriteString(fmt.Sprintf("  %s %s\n", keyStyle.Render(e.keys), descStyle.Render(e.desc)))
		}
	}

	help.WriteString("\n")
	help.WriteString(lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("241")).
		Render("  Links: searchdeck://search?q=knowledge+graphs&mode=neutral"))
	return help.String()
}

// renderHelpContent renders the help information for the popup, clipped to height
func (r *HelpRenderer) renderHelpContent(height int, scrollOffset int) string {
	content := r.build()
	lines := strings.Split(content, "\n")
	totalLines := len(lines)

	// account for popup border and padding
	visibleHeight := height - 8
	if visibleHeight < 5 {
		visibleHeight = 5
	}
	if totalLines <= visibleHeight {
		return content
	}

	maxOffset := totalLines - visibleHeight
	if scrollOffset > maxOffset {
		scrollOffset = maxOffset
	}
	if scrollOffset < 0 {
		scrollOffset = 0
	}
	visibleLines := lines[scrollOffset : scrollOffset+visibleHeight]

	more := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	if scrollOffset > 0 {
		visibleLines[0] = more.Render("↑ (more above)")
	}
	if scrollOffset+visibleHeight < totalLines {
		visibleLines[len(visibleLines)-1] = more.Render("↓ (more below)")
	}
	return strings.Join(visibleLines, "\n")
}

// RenderHelpContentPlain generates help content with colors for the pager
func (r *HelpRenderer) RenderHelpContentPlain() string {
	return r.build()
}

// HelpOps runs the help text in an external pager
type HelpOps struct {
	program *tea.Program // released while the pager owns the terminal
}

// NewHelpOps binds help to the running program
func NewHelpOps(program *tea.Program) *HelpOps {
	return &HelpOps{
		program: program,
	}
}

// ShowHelpInPager hands the terminal to ov until the pager exits
func (h *HelpOps) ShowHelpInPager(helpContent string) error {
	if h.program == nil {
		return fmt.Errorf("program not set")
	}

	if err := h.program.ReleaseTerminal(); err != nil {
		return err
	}
	defer func() {
		// let ov restore the screen first
		time.Sleep(100 * time.Millisecond)
		_ = h.program.RestoreTerminal()
	}()

	root, err := oviewer.NewRoot(strings.NewReader(helpContent))
	if err != nil {
		return err
	}

	// leave the alt screen untouched when ov exits
	config := oviewer.NewConfig()
	config.IsWriteOnExit = false
	config.IsWriteOriginal = false
	root.SetConfig(config)

	return root.Run()
}

// showHelpPager runs the pager off the update loop and reports back
func (h *HelpOps) showHelpPager(content string) tea.Cmd {
	return func() tea.Msg {
		return helpPagerMsg{err: h.ShowHelpInPager(content)}
	}
}
