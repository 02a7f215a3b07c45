package panels

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tradequest/tradequest/internal/api"
	"github.com/tradequest/tradequest/tui/styles"
)

// MarketPanel displays current prices for all symbols.
type MarketPanel struct {
	symbols       []string
	quotes        map[string]api.Quote
	selectedIndex int
	focused       bool
	width         int
	height        int
}

// NewMarketPanel creates a new market prices panel.
func NewMarketPanel() *MarketPanel {
	return &MarketPanel{
		quotes: make(map[string]api.Quote),
	}
}

// Init initializes the panel.
func (p *MarketPanel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the panel.
func (p *MarketPanel) Update(msg tea.Msg) (*MarketPanel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if !p.focused {
			return p, nil
		}
		switch {
		case key.Matches(msg, key.NewBinding(key.WithKeys("up", "k"))):
			if p.selectedIndex > 0 {
				p.selectedIndex--
			}
		case key.Matches(msg, key.NewBinding(key.WithKeys("down", "j"))):
			if p.selectedIndex < len(p.symbols)-1 {
				p.selectedIndex++
			}
		case key.Matches(msg, key.NewBinding(key.WithKeys("enter", "t"))):
			if sym, quote, ok := p.SelectedSymbol(); ok {
				return p, func() tea.Msg {
					return TradeRequestedMsg{Symbol: sym, Price: quote.Current}
				}
			}
		}
	}
	return p, nil
}

// View renders the panel.
func (p *MarketPanel) View() string {
	var content strings.Builder

	header := fmt.Sprintf("%-8s %12s %12s %9s", "Symbol", "Price", "Change", "Change%")
	content.WriteString(styles.HeaderStyle.Render(header))
	content.WriteString("\n")

	if len(p.symbols) == 0 {
		content.WriteString(styles.MutedStyle.Render("Loading prices..."))
	}

	for i, sym := range p.symbols {
		q := p.quotes[sym]
		change := q.Current - q.HourStart
		changePercent := 0.0
		if q.HourStart != 0 {
			changePercent = change / q.HourStart * 100
		}

		plain := fmt.Sprintf("%-8s %12s %+12.4f %8.2f%%",
			sym, styles.Price(q.Current), change, changePercent)

		var row string
		if i == p.selectedIndex && p.focused {
			row = styles.SelectedRowStyle.Render(plain)
		} else {
			row = fmt.Sprintf("%-8s %12s %s %s",
				sym,
				styles.Price(q.Current),
				styles.PLStyle(change).Render(fmt.Sprintf("%+12.4f", change)),
				styles.PLStyle(change).Render(fmt.Sprintf("%8.2f%%", changePercent)),
			)
		}
		content.WriteString(row)
		if i < len(p.symbols)-1 {
			content.WriteString("\n")
		}
	}

	panelStyle := styles.PanelStyle
	if p.focused {
		panelStyle = styles.FocusedPanelStyle
	}

	title := styles.RenderTitle("📈 Market Prices", p.focused)
	panel := lipgloss.JoinVertical(lipgloss.Left, title, content.String())

	return panelStyle.Width(p.width - 2).Height(p.height - 2).Render(panel)
}

// SetFocus sets the focus state of the panel.
func (p *MarketPanel) SetFocus(focused bool) {
	p.focused = focused
}

// SetSize sets the panel dimensions.
func (p *MarketPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// SetPrices replaces the displayed snapshot. Symbols render in a stable
// alphabetical order so the selection does not jump between refreshes.
func (p *MarketPanel) SetPrices(data *api.PriceData) {
	if data == nil {
		return
	}
	symbols := make([]string, 0, len(data.Prices))
	for sym := range data.Prices {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	p.symbols = symbols
	p.quotes = data.Prices
	if p.selectedIndex >= len(p.symbols) && len(p.symbols) > 0 {
		p.selectedIndex = len(p.symbols) - 1
	}
}

// SelectedSymbol returns the currently selected symbol and its quote.
func (p *MarketPanel) SelectedSymbol() (string, api.Quote, bool) {
	if p.selectedIndex < 0 || p.selectedIndex >= len(p.symbols) {
		return "", api.Quote{}, false
	}
	sym := p.symbols[p.selectedIndex]
	return sym, p.quotes[sym], true
}

// TradeRequestedMsg is sent when the user asks to trade the selected symbol.
type TradeRequestedMsg struct {
	Symbol string
	Price  float64
}
