// Package history is an interactive browser over the ledger: every listing
// jobhound has ever picked up, newest first.
package history

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"jobhound/internal/model"
)

// Lines per entry in the list (title line + detail line + separator).
const entryHeight = 3

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Foreground(lipgloss.Color("39"))

	statusBarStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236"))

	titleStyle = lipgloss.NewStyle().
			Bold(true)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	selectedTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("24"))

	selectedSubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252")).
				Background(lipgloss.Color("24"))
)

type browserModel struct {
	entries  []model.Entry // newest first
	cursor   int
	viewport viewport.Model
	ready    bool
}

func newBrowser(entries []model.Entry) browserModel {
	// Newest first: reverse the append-ordered ledger.
	reversed := make([]model.Entry, len(entries))
	for i, e := range entries {
		reversed[len(entries)-1-i] = e
	}
	return browserModel{entries: reversed}
}

func (m browserModel) Init() tea.Cmd {
	return nil
}

func (m browserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		// Header and status bar take one line each.
		height := msg.Height - 2
		if height < 1 {
			height = 1
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width, height)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = height
		}
		m.viewport.SetContent(m.renderList())

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.entries)-1 {
				m.cursor++
			}
		case "g", "home":
			m.cursor = 0
		case "G", "end":
			m.cursor = len(m.entries) - 1
		case "o", "enter":
			if m.cursor < len(m.entries) {
				openURL(m.entries[m.cursor].URL)
			}
		}
		if m.ready {
			m.viewport.SetContent(m.renderList())
			m.scrollToCursor()
		}
	}

	return m, nil
}

func (m *browserModel) scrollToCursor() {
	top := m.cursor * entryHeight
	bottom := top + entryHeight
	if top < m.viewport.YOffset {
		m.viewport.SetYOffset(top)
	} else if bottom > m.viewport.YOffset+m.viewport.Height {
		m.viewport.SetYOffset(bottom - m.viewport.Height)
	}
}

func (m browserModel) renderList() string {
	if len(m.entries) == 0 {
		return subtitleStyle.Render("ledger is empty - nothing picked up yet")
	}

	var b strings.Builder
	for i, e := range m.entries {
		title := e.Title
		if title == "" {
			title = "(untitled)"
		}
		line := fmt.Sprintf("%s - %s", title, e.Company)
		sub := fmt.Sprintf("%s  %s", e.ObservedAt.Local().Format(time.DateTime), e.URL)

		if i == m.cursor {
			b.WriteString(selectedTitleStyle.Render(line) + "\n")
			b.WriteString(selectedSubtitleStyle.Render(sub) + "\n")
		} else {
			b.WriteString(titleStyle.Render(line) + "\n")
			b.WriteString(subtitleStyle.Render(sub) + "\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m browserModel) View() string {
	if !m.ready {
		return "loading..."
	}

	header := headerStyle.Render(fmt.Sprintf("jobhound history - %d listings", len(m.entries)))
	status := statusBarStyle.Render("up/down move - enter/o open in browser - q quit")
	return header + "\n" + m.viewport.View() + "\n" + status
}

// Run opens the interactive browser over the given ledger entries.
func Run(entries []model.Entry) error {
	p := tea.NewProgram(newBrowser(entries), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// openURL launches the system browser, best-effort.
func openURL(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	_ = cmd.Start()
}
