package panels

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/tradequest/tradequest/internal/api"
	"github.com/tradequest/tradequest/tui/styles"
)

// NewsPanel displays the market news feed, newest first.
type NewsPanel struct {
	articles     []api.Article
	scrollOffset int
	focused      bool
	width        int
	height       int
}

// NewNewsPanel creates a new news feed panel.
func NewNewsPanel() *NewsPanel {
	return &NewsPanel{}
}

// Init initializes the panel.
func (p *NewsPanel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the panel.
func (p *NewsPanel) Update(msg tea.Msg) (*NewsPanel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if !p.focused {
			return p, nil
		}
		switch {
		case key.Matches(msg, key.NewBinding(key.WithKeys("up", "k"))):
			if p.scrollOffset > 0 {
				p.scrollOffset--
			}
		case key.Matches(msg, key.NewBinding(key.WithKeys("down", "j"))):
			if p.scrollOffset < len(p.articles)-1 {
				p.scrollOffset++
			}
		}
	}
	return p, nil
}

// View renders the panel.
func (p *NewsPanel) View() string {
	var content strings.Builder

	if len(p.articles) == 0 {
		content.WriteString(styles.MutedStyle.Render("No news yet..."))
	} else {
		visible := p.visibleRows()
		end := p.scrollOffset + visible
		if end > len(p.articles) {
			end = len(p.articles)
		}

		for i := p.scrollOffset; i < end; i++ {
			a := p.articles[i]
			ts := time.Unix(a.PublishAt, 0).Local().Format("15:04")
			line := fmt.Sprintf("%s %s %s",
				styles.TimeStyle.Render(ts),
				styles.SymbolTagStyle.Render(fmt.Sprintf("[%s]", a.Symbol)),
				styles.HeadlineStyle.Render(p.truncate(a.Headline)),
			)
			content.WriteString(line)
			if i < end-1 {
				content.WriteString("\n")
			}
		}
	}

	panelStyle := styles.PanelStyle
	if p.focused {
		panelStyle = styles.FocusedPanelStyle
	}

	title := styles.RenderTitle("📰 Market News", p.focused)
	panel := lipgloss.JoinVertical(lipgloss.Left, title, content.String())

	return panelStyle.Width(p.width - 2).Height(p.height - 2).Render(panel)
}

// SetFocus sets the focus state of the panel.
func (p *NewsPanel) SetFocus(focused bool) {
	p.focused = focused
}

// SetSize sets the panel dimensions.
func (p *NewsPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// SetArticles replaces the displayed feed, newest first. The scroll position
// resets to the top so fresh headlines are visible.
func (p *NewsPanel) SetArticles(articles []api.Article) {
	p.articles = articles
	p.scrollOffset = 0
}

func (p *NewsPanel) visibleRows() int {
	// Border, padding, and title take five rows.
	rows := p.height - 5
	if rows < 1 {
		rows = 1
	}
	return rows
}

// truncate clips a headline to the panel's cell width without splitting a
// multibyte rune.
func (p *NewsPanel) truncate(s string) string {
	max := p.width - 18
	if max < 10 {
		max = 10
	}
	return runewidth.Truncate(s, max, "…")
}
