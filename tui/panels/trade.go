package panels

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tradequest/tradequest/internal/recorder"
	"github.com/tradequest/tradequest/tui/styles"
)

// TradeSubmittedMsg is sent when the user confirms an order in the modal.
type TradeSubmittedMsg struct {
	Symbol   string
	Action   string
	Quantity int
}

// TradeCancelledMsg is sent when the user dismisses the modal.
type TradeCancelledMsg struct{}

// TradeModal is the buy/sell order form shown over the dashboard.
type TradeModal struct {
	symbol   string
	price    float64
	cash     float64
	holdings int
	history  []recorder.TradeRecord

	quantity textinput.Model
	action   string
	errMsg   string
	width    int
}

// NewTradeModal creates an order form for the given symbol. history holds the
// user's most recent fills, newest first.
func NewTradeModal(symbol string, price, cash float64, holdings int, history []recorder.TradeRecord) *TradeModal {
	qty := textinput.New()
	qty.Placeholder = "0"
	qty.CharLimit = 8
	qty.Width = 10
	qty.Focus()

	return &TradeModal{
		symbol:   symbol,
		price:    price,
		cash:     cash,
		holdings: holdings,
		history:  history,
		quantity: qty,
		action:   "buy",
	}
}

// Init initializes the modal.
func (m *TradeModal) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the modal.
func (m *TradeModal) Update(msg tea.Msg) (*TradeModal, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, func() tea.Msg { return TradeCancelledMsg{} }
		case "tab", "left", "right":
			if m.action == "buy" {
				m.action = "sell"
			} else {
				m.action = "buy"
			}
			m.errMsg = ""
			return m, nil
		case "enter":
			return m.submit()
		}
	}

	var cmd tea.Cmd
	m.quantity, cmd = m.quantity.Update(msg)
	return m, cmd
}

func (m *TradeModal) submit() (*TradeModal, tea.Cmd) {
	qty, err := strconv.Atoi(strings.TrimSpace(m.quantity.Value()))
	if err != nil || qty <= 0 {
		m.errMsg = "Enter a positive whole number of shares"
		return m, nil
	}

	// Local affordability hints; the server is still the authority.
	cost := m.price * float64(qty)
	if m.action == "buy" && cost > m.cash {
		m.errMsg = fmt.Sprintf("Costs %s but you have %s", styles.Money(cost), styles.Money(m.cash))
		return m, nil
	}
	if m.action == "sell" && qty > m.holdings {
		m.errMsg = fmt.Sprintf("You hold %d shares", m.holdings)
		return m, nil
	}

	sym, action := m.symbol, m.action
	return m, func() tea.Msg {
		return TradeSubmittedMsg{Symbol: sym, Action: action, Quantity: qty}
	}
}

// SetError displays a server-side rejection message in the form.
func (m *TradeModal) SetError(msg string) {
	m.errMsg = msg
}

// SetSize sets the modal width.
func (m *TradeModal) SetSize(width, _ int) {
	m.width = width
}

// View renders the modal.
func (m *TradeModal) View() string {
	var b strings.Builder

	b.WriteString(styles.FormTitleStyle.Render(fmt.Sprintf("Trade %s", m.symbol)))
	b.WriteString("\n\n")

	b.WriteString(fmt.Sprintf("%s %s    %s %s    %s %d shares\n\n",
		styles.LabelStyle.Render("Price:"), styles.Price(m.price),
		styles.LabelStyle.Render("Cash:"), styles.Money(m.cash),
		styles.LabelStyle.Render("Held:"), m.holdings,
	))

	buy := " BUY "
	sell := " SELL "
	if m.action == "buy" {
		buy = styles.SuccessStyle.Render("[ BUY ]")
		sell = styles.MutedStyle.Render("  SELL ")
	} else {
		buy = styles.MutedStyle.Render("  BUY  ")
		sell = styles.ErrorStyle.Render("[ SELL ]")
	}
	b.WriteString(buy + "  " + sell + "\n\n")

	b.WriteString(styles.LabelStyle.Render("Quantity: "))
	b.WriteString(m.quantity.View())
	b.WriteString("\n")

	if qty, err := strconv.Atoi(strings.TrimSpace(m.quantity.Value())); err == nil && qty > 0 {
		b.WriteString(styles.MutedStyle.Render(fmt.Sprintf("Order value: %s", styles.Money(m.price*float64(qty)))))
		b.WriteString("\n")
	}

	if m.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(styles.ErrorStyle.Render(m.errMsg))
		b.WriteString("\n")
	}

	if len(m.history) > 0 {
		b.WriteString("\n")
		b.WriteString(styles.HeaderStyle.Render("Recent trades"))
		b.WriteString("\n")
		for _, rec := range m.history {
			line := fmt.Sprintf("%s %-4s %5d %-6s @ %s",
				styles.TimeStyle.Render(rec.ExecutedAt.Local().Format("15:04")),
				strings.ToUpper(rec.Action), rec.Quantity, rec.Symbol,
				styles.Price(rec.Price))
			b.WriteString(styles.MutedStyle.Render(line))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(styles.HintStyle.Render("tab: buy/sell · enter: submit · esc: cancel"))

	box := styles.FormBoxStyle.Render(b.String())
	return lipgloss.Place(m.width, lipgloss.Height(box)+2, lipgloss.Center, lipgloss.Center, box)
}
