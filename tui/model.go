package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/tradequest/tradequest/internal/api"
	"github.com/tradequest/tradequest/internal/dashboard"
	"github.com/tradequest/tradequest/internal/recorder"
	"github.com/tradequest/tradequest/internal/session"
	"github.com/tradequest/tradequest/tui/panels"
	"github.com/tradequest/tradequest/tui/styles"
)

type appState int

const (
	stateLoading appState = iota
	stateAuth
	stateDashboard
)

type restoredMsg struct {
	sess *session.Session
}

type dashboardEventMsg struct {
	ev dashboard.Event
	ok bool
}

type tradeResultMsg struct {
	result *api.TradeResult
	err    error
}

type clearStatusMsg struct{}

// recentTradeLines caps the history shown in the trade modal.
const recentTradeLines = 5

// focusable panel order for tab cycling.
const (
	focusMarket = iota
	focusPortfolio
	focusNews
	focusLeaderboard
	focusCount
)

// Model is the root TUI model. It moves through three states: restoring a
// cached session, the auth forms, and the live dashboard.
type Model struct {
	state appState

	sessions  *session.Manager
	apiClient *api.Client
	rec       recorder.Recorder
	dashCfg   dashboard.Config
	log       zerolog.Logger

	auth *authModel

	svc         *dashboard.Service
	market      *panels.MarketPanel
	portfolio   *panels.PortfolioPanel
	news        *panels.NewsPanel
	leaderboard *panels.LeaderboardPanel
	tradeModal  *panels.TradeModal
	focusIndex  int

	statusMsg string
	statusErr bool

	width  int
	height int
}

// New creates the root model. The dashboard service is constructed lazily
// once a session exists.
func New(sessions *session.Manager, apiClient *api.Client, rec recorder.Recorder, dashCfg dashboard.Config, log zerolog.Logger) *Model {
	return &Model{
		state:     stateLoading,
		sessions:  sessions,
		apiClient: apiClient,
		rec:       rec,
		dashCfg:   dashCfg,
		log:       log.With().Str("component", "tui").Logger(),
		auth:      newAuthModel(sessions),
	}
}

// Init starts the cached-session restore.
func (m *Model) Init() tea.Cmd {
	return m.restoreCmd()
}

func (m *Model) restoreCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), authTimeout)
		defer cancel()
		return restoredMsg{sess: m.sessions.Restore(ctx)}
	}
}

// listenEvents waits for one dashboard update event and re-issues itself
// from Update, so the UI repaints on every refreshed snapshot.
func (m *Model) listenEvents() tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		ev, ok := <-svc.Events()
		return dashboardEventMsg{ev: ev, ok: ok}
	}
}

// Update handles all messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.teardown()
			return m, tea.Quit
		}

	case restoredMsg:
		if msg.sess != nil {
			return m, m.enterDashboard(msg.sess)
		}
		m.state = stateAuth
		return m, m.auth.Init()

	case SignedInMsg:
		return m, m.enterDashboard(msg.Session)
	}

	switch m.state {
	case stateAuth:
		var cmd tea.Cmd
		m.auth, cmd = m.auth.Update(msg)
		return m, cmd
	case stateDashboard:
		return m.updateDashboard(msg)
	}
	return m, nil
}

func (m *Model) enterDashboard(sess *session.Session) tea.Cmd {
	m.svc = dashboard.NewService(m.dashCfg, m.apiClient, sess, m.rec, m.log)
	m.svc.Start(context.Background())

	m.market = panels.NewMarketPanel()
	m.portfolio = panels.NewPortfolioPanel()
	m.news = panels.NewNewsPanel()
	m.leaderboard = panels.NewLeaderboardPanel(sess.UserID)
	m.tradeModal = nil
	m.focusIndex = focusMarket
	m.market.SetFocus(true)

	m.state = stateDashboard
	m.statusMsg = fmt.Sprintf("Signed in as %s", sess.Email)
	m.statusErr = false
	m.layout()
	return tea.Batch(m.listenEvents(), m.clearStatusAfter(5*time.Second))
}

func (m *Model) updateDashboard(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardEventMsg:
		if !msg.ok {
			return m, nil
		}
		switch msg.ev.Kind {
		case dashboard.KindPrices:
			m.market.SetPrices(m.svc.Prices())
		case dashboard.KindPortfolio:
			m.portfolio.SetPortfolio(m.svc.Portfolio())
		case dashboard.KindNews:
			m.news.SetArticles(m.svc.News())
		case dashboard.KindLeaderboard:
			m.leaderboard.SetEntries(m.svc.Leaderboard())
		}
		return m, m.listenEvents()

	case panels.TradeRequestedMsg:
		m.tradeModal = panels.NewTradeModal(msg.Symbol, msg.Price,
			m.portfolio.Balance(), m.portfolio.Holdings(msg.Symbol),
			m.svc.RecentTrades(recentTradeLines))
		m.tradeModal.SetSize(m.width, m.height)
		return m, m.tradeModal.Init()

	case panels.TradeSubmittedMsg:
		return m, m.tradeCmd(msg)

	case panels.TradeCancelledMsg:
		m.tradeModal = nil
		return m, nil

	case tradeResultMsg:
		if msg.err != nil {
			if m.tradeModal != nil {
				m.tradeModal.SetError(msg.err.Error())
			} else {
				m.setStatus(msg.err.Error(), true)
			}
			return m, nil
		}
		m.tradeModal = nil
		r := msg.result
		m.setStatus(fmt.Sprintf("%s %d %s @ %s · balance %s",
			strings.ToUpper(r.Action), r.Quantity, r.Symbol,
			styles.Price(r.Price), styles.Money(r.NewBalance)), false)
		return m, m.clearStatusAfter(5 * time.Second)

	case clearStatusMsg:
		m.statusMsg = ""
		return m, nil

	case tea.KeyMsg:
		if m.tradeModal != nil {
			var cmd tea.Cmd
			m.tradeModal, cmd = m.tradeModal.Update(msg)
			return m, cmd
		}
		switch msg.String() {
		case "q":
			m.teardown()
			return m, tea.Quit
		case "o":
			return m, m.signOut()
		case "tab":
			m.cycleFocus(1)
			return m, nil
		case "shift+tab":
			m.cycleFocus(-1)
			return m, nil
		}
		return m.updateFocusedPanel(msg)
	}

	if m.tradeModal != nil {
		var cmd tea.Cmd
		m.tradeModal, cmd = m.tradeModal.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) tradeCmd(req panels.TradeSubmittedMsg) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		res, err := svc.Trade(ctx, req.Symbol, req.Action, req.Quantity)
		return tradeResultMsg{result: res, err: err}
	}
}

func (m *Model) signOut() tea.Cmd {
	m.teardown()
	m.sessions.SignOut()
	m.state = stateAuth
	m.auth = newAuthModel(m.sessions)
	m.auth.SetSize(m.width, m.height)
	return m.auth.Init()
}

// teardown stops the dashboard service if one is running.
func (m *Model) teardown() {
	if m.svc != nil {
		m.svc.Close()
		m.svc = nil
	}
}

func (m *Model) cycleFocus(delta int) {
	m.focusIndex = (m.focusIndex + delta + focusCount) % focusCount
	m.market.SetFocus(m.focusIndex == focusMarket)
	m.portfolio.SetFocus(m.focusIndex == focusPortfolio)
	m.news.SetFocus(m.focusIndex == focusNews)
	m.leaderboard.SetFocus(m.focusIndex == focusLeaderboard)
}

func (m *Model) updateFocusedPanel(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.focusIndex {
	case focusMarket:
		m.market, cmd = m.market.Update(msg)
	case focusPortfolio:
		m.portfolio, cmd = m.portfolio.Update(msg)
	case focusNews:
		m.news, cmd = m.news.Update(msg)
	case focusLeaderboard:
		m.leaderboard, cmd = m.leaderboard.Update(msg)
	}
	return m, cmd
}

func (m *Model) setStatus(msg string, isErr bool) {
	m.statusMsg = msg
	m.statusErr = isErr
}

func (m *Model) clearStatusAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return clearStatusMsg{} })
}

func (m *Model) layout() {
	if m.auth != nil {
		m.auth.SetSize(m.width, m.height)
	}
	if m.state != stateDashboard || m.market == nil {
		return
	}

	// Two columns; status bar takes the bottom row.
	bodyHeight := m.height - 1
	leftWidth := m.width / 2
	rightWidth := m.width - leftWidth
	topHeight := bodyHeight * 3 / 5
	bottomHeight := bodyHeight - topHeight

	m.market.SetSize(leftWidth, topHeight)
	m.portfolio.SetSize(rightWidth, topHeight)
	m.news.SetSize(leftWidth, bottomHeight)
	m.leaderboard.SetSize(rightWidth, bottomHeight)
	if m.tradeModal != nil {
		m.tradeModal.SetSize(m.width, m.height)
	}
}

// View renders the current state.
func (m *Model) View() string {
	switch m.state {
	case stateLoading:
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			styles.MutedStyle.Render("Restoring session..."))
	case stateAuth:
		return m.auth.View()
	}

	if m.tradeModal != nil {
		return m.tradeModal.View()
	}

	top := lipgloss.JoinHorizontal(lipgloss.Top, m.market.View(), m.portfolio.View())
	bottom := lipgloss.JoinHorizontal(lipgloss.Top, m.news.View(), m.leaderboard.View())
	body := lipgloss.JoinVertical(lipgloss.Left, top, bottom)

	return lipgloss.JoinVertical(lipgloss.Left, body, m.statusBar())
}

func (m *Model) statusBar() string {
	left := styles.StatusBarKeyStyle.Render("tab") + styles.StatusBarDescStyle.Render(" focus · ") +
		styles.StatusBarKeyStyle.Render("t") + styles.StatusBarDescStyle.Render(" trade · ") +
		styles.StatusBarKeyStyle.Render("o") + styles.StatusBarDescStyle.Render(" sign out · ") +
		styles.StatusBarKeyStyle.Render("q") + styles.StatusBarDescStyle.Render(" quit")

	msg := m.statusMsg
	if msg != "" {
		if m.statusErr {
			msg = styles.ErrorStyle.Render(msg)
		} else {
			msg = styles.SuccessStyle.Render(msg)
		}
		msg = "  " + msg
	}
	return styles.StatusBarStyle.Width(m.width).Render(left + msg)
}
