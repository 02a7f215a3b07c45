package panels

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tradequest/tradequest/internal/api"
	"github.com/tradequest/tradequest/tui/styles"
)

// PortfolioPanel displays the user's balance, totals, and open positions.
type PortfolioPanel struct {
	portfolio *api.Portfolio
	focused   bool
	width     int
	height    int
}

// NewPortfolioPanel creates a new portfolio panel.
func NewPortfolioPanel() *PortfolioPanel {
	return &PortfolioPanel{}
}

// Init initializes the panel.
func (p *PortfolioPanel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the panel.
func (p *PortfolioPanel) Update(msg tea.Msg) (*PortfolioPanel, tea.Cmd) {
	return p, nil
}

// View renders the panel.
func (p *PortfolioPanel) View() string {
	var content strings.Builder

	if p.portfolio == nil {
		content.WriteString(styles.MutedStyle.Render("Loading portfolio..."))
	} else {
		pf := p.portfolio

		summary := fmt.Sprintf("%s %s   %s %s   %s %s",
			styles.LabelStyle.Render("Cash:"), styles.Money(pf.Balance),
			styles.LabelStyle.Render("Holdings:"), styles.Money(pf.PortfolioValue),
			styles.LabelStyle.Render("Total:"), styles.Money(pf.TotalValue),
		)
		content.WriteString(summary)
		content.WriteString("\n")

		pl := fmt.Sprintf("%s %s (%s)",
			styles.LabelStyle.Render("P/L:"),
			styles.PLStyle(pf.TotalProfitLoss).Render(styles.SignedMoney(pf.TotalProfitLoss)),
			styles.PLStyle(pf.TotalProfitLoss).Render(styles.SignedPercent(pf.TotalProfitLossPercent)),
		)
		content.WriteString(pl)
		content.WriteString("\n\n")

		if len(pf.Positions) == 0 {
			content.WriteString(styles.MutedStyle.Render("No open positions"))
		} else {
			header := fmt.Sprintf("%-8s %6s %10s %10s %12s %10s",
				"Symbol", "Qty", "Avg", "Last", "Value", "P/L")
			content.WriteString(styles.HeaderStyle.Render(header))
			content.WriteString("\n")

			for i, pos := range pf.Positions {
				row := fmt.Sprintf("%-8s %6d %10.4f %10.4f %12s %s",
					pos.Symbol, pos.Quantity, pos.AvgPrice, pos.CurrentPrice,
					styles.Money(pos.MarketValue),
					styles.PLStyle(pos.ProfitLoss).Render(fmt.Sprintf("%10s", styles.SignedMoney(pos.ProfitLoss))),
				)
				content.WriteString(row)
				if i < len(pf.Positions)-1 {
					content.WriteString("\n")
				}
			}
		}
	}

	panelStyle := styles.PanelStyle
	if p.focused {
		panelStyle = styles.FocusedPanelStyle
	}

	title := styles.RenderTitle("💼 Portfolio", p.focused)
	panel := lipgloss.JoinVertical(lipgloss.Left, title, content.String())

	return panelStyle.Width(p.width - 2).Height(p.height - 2).Render(panel)
}

// SetFocus sets the focus state of the panel.
func (p *PortfolioPanel) SetFocus(focused bool) {
	p.focused = focused
}

// SetSize sets the panel dimensions.
func (p *PortfolioPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// SetPortfolio replaces the displayed snapshot.
func (p *PortfolioPanel) SetPortfolio(pf *api.Portfolio) {
	if pf != nil {
		p.portfolio = pf
	}
}

// Holdings returns the held quantity of a symbol, zero when none.
func (p *PortfolioPanel) Holdings(symbol string) int {
	if p.portfolio == nil {
		return 0
	}
	for _, pos := range p.portfolio.Positions {
		if pos.Symbol == symbol {
			return pos.Quantity
		}
	}
	return 0
}

// Balance returns the current cash balance, zero before the first snapshot.
func (p *PortfolioPanel) Balance() float64 {
	if p.portfolio == nil {
		return 0
	}
	return p.portfolio.Balance
}
