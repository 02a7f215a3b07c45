package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tradequest/tradequest/internal/session"
	"github.com/tradequest/tradequest/tui/styles"
)

// authMode selects which form the auth screen shows.
type authMode int

const (
	modeSignIn authMode = iota
	modeSignUp
	modeVerify
	modeForgotRequest
	modeForgotConfirm
)

// SignedInMsg is delivered to the root model when authentication completes.
type SignedInMsg struct {
	Session *session.Session
}

type authErrMsg struct{ err error }

type signUpDoneMsg struct{ email string }

type verifiedMsg struct{}

type resetRequestedMsg struct{ email string }

type resetDoneMsg struct{}

// authTimeout bounds each provider round trip so a dead network cannot hang
// the form forever.
const authTimeout = 15 * time.Second

// authModel drives the sign-in / sign-up / verification / password-reset
// forms shown before a session exists.
type authModel struct {
	sessions *session.Manager
	mode     authMode

	inputs     []textinput.Model
	labels     []string
	focusIndex int

	// pendingEmail carries the address from sign-up into verification, and
	// from reset request into reset confirmation.
	pendingEmail string

	busy    bool
	errMsg  string
	infoMsg string

	width  int
	height int
}

func newAuthModel(sessions *session.Manager) *authModel {
	m := &authModel{sessions: sessions}
	m.setMode(modeSignIn)
	return m
}

func (m *authModel) setMode(mode authMode) {
	m.mode = mode
	m.focusIndex = 0
	m.busy = false
	m.errMsg = ""

	switch mode {
	case modeSignIn:
		m.labels = []string{"Email", "Password"}
		m.inputs = []textinput.Model{newField("you@example.com", false), newField("password", true)}
	case modeSignUp:
		m.labels = []string{"Display name", "Email", "Password", "Confirm password"}
		m.inputs = []textinput.Model{
			newField("trader42", false),
			newField("you@example.com", false),
			newField("min 8 characters", true),
			newField("repeat password", true),
		}
	case modeVerify:
		m.labels = []string{"Verification code"}
		m.inputs = []textinput.Model{newField("123456", false)}
	case modeForgotRequest:
		m.labels = []string{"Email"}
		m.inputs = []textinput.Model{newField("you@example.com", false)}
	case modeForgotConfirm:
		m.labels = []string{"Reset code", "New password"}
		m.inputs = []textinput.Model{newField("123456", false), newField("min 8 characters", true)}
	}
	m.inputs[0].Focus()
}

func newField(placeholder string, secret bool) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = 128
	in.Width = 32
	if secret {
		in.EchoMode = textinput.EchoPassword
		in.EchoCharacter = '•'
	}
	return in
}

func (m *authModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *authModel) Update(msg tea.Msg) (*authModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}
		switch msg.String() {
		case "tab", "down":
			m.moveFocus(1)
			return m, nil
		case "shift+tab", "up":
			m.moveFocus(-1)
			return m, nil
		case "enter":
			if m.focusIndex < len(m.inputs)-1 {
				m.moveFocus(1)
				return m, nil
			}
			return m.submit()
		case "ctrl+s":
			if m.mode == modeSignIn {
				m.setMode(modeSignUp)
			} else {
				m.setMode(modeSignIn)
			}
			return m, textinput.Blink
		case "ctrl+f":
			if m.mode == modeSignIn {
				m.setMode(modeForgotRequest)
				return m, textinput.Blink
			}
		case "esc":
			if m.mode != modeSignIn {
				m.setMode(modeSignIn)
				return m, textinput.Blink
			}
		}

	case authErrMsg:
		m.busy = false
		m.errMsg = msg.err.Error()
		return m, nil

	case signUpDoneMsg:
		m.pendingEmail = msg.email
		m.setMode(modeVerify)
		m.infoMsg = fmt.Sprintf("Check %s for your verification code", msg.email)
		return m, textinput.Blink

	case verifiedMsg:
		m.setMode(modeSignIn)
		m.infoMsg = "Account verified, sign in to play"
		return m, textinput.Blink

	case resetRequestedMsg:
		m.pendingEmail = msg.email
		m.setMode(modeForgotConfirm)
		m.infoMsg = fmt.Sprintf("A reset code was sent to %s", msg.email)
		return m, textinput.Blink

	case resetDoneMsg:
		m.setMode(modeSignIn)
		m.infoMsg = "Password updated, sign in with it"
		return m, textinput.Blink
	}

	var cmds []tea.Cmd
	for i := range m.inputs {
		var cmd tea.Cmd
		m.inputs[i], cmd = m.inputs[i].Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m *authModel) moveFocus(delta int) {
	m.inputs[m.focusIndex].Blur()
	m.focusIndex = (m.focusIndex + delta + len(m.inputs)) % len(m.inputs)
	m.inputs[m.focusIndex].Focus()
}

func (m *authModel) submit() (*authModel, tea.Cmd) {
	m.errMsg = ""
	m.infoMsg = ""

	switch m.mode {
	case modeSignIn:
		email := strings.TrimSpace(m.inputs[0].Value())
		password := m.inputs[1].Value()
		if email == "" || password == "" {
			m.errMsg = "Email and password are required"
			return m, nil
		}
		m.busy = true
		return m, m.doSignIn(email, password)

	case modeSignUp:
		name := strings.TrimSpace(m.inputs[0].Value())
		email := strings.TrimSpace(m.inputs[1].Value())
		password := m.inputs[2].Value()
		confirm := m.inputs[3].Value()
		if name == "" || email == "" {
			m.errMsg = "Display name and email are required"
			return m, nil
		}
		if password != confirm {
			m.errMsg = "Passwords do not match"
			return m, nil
		}
		if len(password) < session.MinPasswordLength {
			m.errMsg = session.ErrPasswordTooShort.Error()
			return m, nil
		}
		m.busy = true
		return m, m.doSignUp(name, email, password)

	case modeVerify:
		code := strings.TrimSpace(m.inputs[0].Value())
		if code == "" {
			m.errMsg = "Enter the code from your email"
			return m, nil
		}
		m.busy = true
		return m, m.doVerify(m.pendingEmail, code)

	case modeForgotRequest:
		email := strings.TrimSpace(m.inputs[0].Value())
		if email == "" {
			m.errMsg = "Email is required"
			return m, nil
		}
		m.busy = true
		return m, m.doForgot(email)

	case modeForgotConfirm:
		code := strings.TrimSpace(m.inputs[0].Value())
		password := m.inputs[1].Value()
		if code == "" {
			m.errMsg = "Enter the code from your email"
			return m, nil
		}
		if len(password) < session.MinPasswordLength {
			m.errMsg = session.ErrPasswordTooShort.Error()
			return m, nil
		}
		m.busy = true
		return m, m.doConfirmReset(m.pendingEmail, code, password)
	}
	return m, nil
}

func (m *authModel) doSignIn(email, password string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), authTimeout)
		defer cancel()
		sess, err := m.sessions.SignIn(ctx, email, password)
		if err != nil {
			return authErrMsg{err}
		}
		return SignedInMsg{Session: sess}
	}
}

func (m *authModel) doSignUp(name, email, password string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), authTimeout)
		defer cancel()
		if _, err := m.sessions.SignUp(ctx, name, email, password); err != nil {
			return authErrMsg{err}
		}
		return signUpDoneMsg{email: email}
	}
}

func (m *authModel) doVerify(email, code string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), authTimeout)
		defer cancel()
		if err := m.sessions.ConfirmSignUp(ctx, email, code); err != nil {
			return authErrMsg{err}
		}
		return verifiedMsg{}
	}
}

func (m *authModel) doForgot(email string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), authTimeout)
		defer cancel()
		if err := m.sessions.ForgotPassword(ctx, email); err != nil {
			return authErrMsg{err}
		}
		return resetRequestedMsg{email: email}
	}
}

func (m *authModel) doConfirmReset(email, code, password string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), authTimeout)
		defer cancel()
		if err := m.sessions.ConfirmPassword(ctx, email, code, password); err != nil {
			return authErrMsg{err}
		}
		return resetDoneMsg{}
	}
}

func (m *authModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *authModel) View() string {
	var b strings.Builder

	b.WriteString(styles.FormTitleStyle.Render(m.title()))
	b.WriteString("\n\n")

	for i, in := range m.inputs {
		b.WriteString(styles.LabelStyle.Render(fmt.Sprintf("%-18s", m.labels[i])))
		b.WriteString(in.View())
		b.WriteString("\n")
	}

	if m.busy {
		b.WriteString("\n")
		b.WriteString(styles.MutedStyle.Render("Working..."))
	}
	if m.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(styles.ErrorStyle.Render(m.errMsg))
	}
	if m.infoMsg != "" {
		b.WriteString("\n")
		b.WriteString(styles.SuccessStyle.Render(m.infoMsg))
	}

	b.WriteString("\n\n")
	b.WriteString(styles.HintStyle.Render(m.hints()))

	box := styles.FormBoxStyle.Render(b.String())
	banner := styles.TitleStyle.Render("Trade Quest")
	form := lipgloss.JoinVertical(lipgloss.Center, banner, box)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, form)
}

func (m *authModel) title() string {
	switch m.mode {
	case modeSignUp:
		return "Create account"
	case modeVerify:
		return "Verify your email"
	case modeForgotRequest:
		return "Reset password"
	case modeForgotConfirm:
		return "Choose a new password"
	default:
		return "Sign in"
	}
}

func (m *authModel) hints() string {
	switch m.mode {
	case modeSignIn:
		return "enter: sign in · ctrl+s: create account · ctrl+f: forgot password"
	case modeSignUp:
		return "enter: register · ctrl+s: back to sign in"
	default:
		return "enter: submit · esc: back to sign in"
	}
}
