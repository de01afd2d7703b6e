package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/teamdock-io/teamdock/internal/bridge"
)

var (
	colorDim    = lipgloss.AdaptiveColor{Light: "242", Dark: "240"}
	colorGreen  = lipgloss.AdaptiveColor{Light: "28", Dark: "40"}
	colorRed    = lipgloss.AdaptiveColor{Light: "160", Dark: "196"}
	colorYellow = lipgloss.AdaptiveColor{Light: "136", Dark: "220"}
	colorCyan   = lipgloss.AdaptiveColor{Light: "30", Dark: "45"}

	styleTitle  = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleStatus = lipgloss.NewStyle().Foreground(colorDim)
	styleOnline = lipgloss.NewStyle().Foreground(colorGreen)
	styleWarn   = lipgloss.NewStyle().Bold(true).Foreground(colorYellow)
	styleDown   = lipgloss.NewStyle().Bold(true).Foreground(colorRed)
)

// Model is the dashboard: a live table of teams with badges, primary
// marker, and the daemon's presentation state.
type Model struct {
	table     table.Model
	snapshot  bridge.Snapshot
	connected bool
	width     int
}

// NewModel creates the dashboard model.
func NewModel() Model {
	columns := []table.Column{
		{Title: " ", Width: 2},
		{Title: "Team", Width: 24},
		{Title: "Unread", Width: 7},
		{Title: "Mentions", Width: 9},
		{Title: "Connection", Width: 11},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	st := table.DefaultStyles()
	st.Header = st.Header.Bold(true).Foreground(colorCyan)
	st.Selected = st.Selected.Foreground(colorGreen)
	t.SetStyles(st)

	return Model{table: t, connected: true}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case SnapshotMsg:
		m.snapshot = msg.Snapshot
		m.table.SetRows(rowsFor(msg.Snapshot))
	case DisconnectedMsg:
		m.connected = false
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(styleTitle.Render("Teamdock"))
	b.WriteString("  ")
	b.WriteString(netStateBadge(m.snapshot.NetState))
	if !m.connected {
		b.WriteString("  ")
		b.WriteString(styleDown.Render("daemon disconnected"))
	}
	b.WriteString("\n\n")

	b.WriteString(m.table.View())
	b.WriteString("\n")

	summary := fmt.Sprintf("%d teams, %d unread, %d mentions",
		len(m.snapshot.Teams), m.snapshot.Unread, m.snapshot.UnreadHighlights)
	b.WriteString(styleStatus.Render(summary))
	b.WriteString("\n")
	if m.snapshot.UpdateVersion != "" {
		b.WriteString(styleWarn.Render("update available: v" + m.snapshot.UpdateVersion))
		b.WriteString("\n")
	}
	b.WriteString(styleStatus.Render("q: quit"))
	return b.String()
}

func rowsFor(snap bridge.Snapshot) []table.Row {
	rows := make([]table.Row, 0, len(snap.Teams))
	for _, t := range snap.Teams {
		marker := " "
		if t.Primary {
			marker = "▶"
		}
		rows = append(rows, table.Row{
			marker,
			t.TeamName,
			fmt.Sprintf("%d", t.Unread),
			fmt.Sprintf("%d", t.UnreadHighlights),
			string(t.ConnectionStatus),
		})
	}
	return rows
}

func netStateBadge(state string) string {
	switch state {
	case "online", "":
		return styleOnline.Render("online")
	case "offline":
		return styleDown.Render("offline")
	case "service_down":
		return styleWarn.Render("service down")
	default:
		return styleStatus.Render(state)
	}
}
