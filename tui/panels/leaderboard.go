package panels

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/tradequest/tradequest/internal/api"
	"github.com/tradequest/tradequest/tui/styles"
)

// LeaderboardPanel displays the player rankings.
type LeaderboardPanel struct {
	entries []api.LeaderboardEntry
	userID  string
	focused bool
	width   int
	height  int
}

// NewLeaderboardPanel creates a new leaderboard panel. userID marks the
// current player's row.
func NewLeaderboardPanel(userID string) *LeaderboardPanel {
	return &LeaderboardPanel{userID: userID}
}

// Init initializes the panel.
func (p *LeaderboardPanel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the panel.
func (p *LeaderboardPanel) Update(msg tea.Msg) (*LeaderboardPanel, tea.Cmd) {
	return p, nil
}

// View renders the panel.
func (p *LeaderboardPanel) View() string {
	var content strings.Builder

	if len(p.entries) == 0 {
		content.WriteString(styles.MutedStyle.Render("Loading leaderboard..."))
	} else {
		header := fmt.Sprintf("%4s %-14s %12s %12s %7s", "Rank", "Player", "Total", "P/L", "Trades")
		content.WriteString(styles.HeaderStyle.Render(header))
		content.WriteString("\n")

		rows := p.visibleRows()
		end := len(p.entries)
		if end > rows {
			end = rows
		}

		for i := 0; i < end; i++ {
			e := p.entries[i]
			name := runewidth.Truncate(e.Username, 14, "…")
			plain := fmt.Sprintf("%4d %-14s %12s %12s %7d",
				e.Rank, name, styles.Money(e.TotalValue), styles.SignedMoney(e.ProfitLoss), e.TotalTrades)

			var row string
			if e.UserID == p.userID {
				row = styles.SelectedRowStyle.Render(plain)
			} else {
				row = fmt.Sprintf("%4d %-14s %12s %s %7d",
					e.Rank, name, styles.Money(e.TotalValue),
					styles.PLStyle(e.ProfitLoss).Render(fmt.Sprintf("%12s", styles.SignedMoney(e.ProfitLoss))),
					e.TotalTrades)
			}
			content.WriteString(row)
			if i < end-1 {
				content.WriteString("\n")
			}
		}
	}

	panelStyle := styles.PanelStyle
	if p.focused {
		panelStyle = styles.FocusedPanelStyle
	}

	title := styles.RenderTitle("🏆 Leaderboard", p.focused)
	panel := lipgloss.JoinVertical(lipgloss.Left, title, content.String())

	return panelStyle.Width(p.width - 2).Height(p.height - 2).Render(panel)
}

// SetFocus sets the focus state of the panel.
func (p *LeaderboardPanel) SetFocus(focused bool) {
	p.focused = focused
}

// SetSize sets the panel dimensions.
func (p *LeaderboardPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// SetEntries replaces the displayed rankings.
func (p *LeaderboardPanel) SetEntries(entries []api.LeaderboardEntry) {
	p.entries = entries
}

func (p *LeaderboardPanel) visibleRows() int {
	rows := p.height - 6
	if rows < 1 {
		rows = 1
	}
	return rows
}
