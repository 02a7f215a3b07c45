package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tradequest/tradequest/internal/identity"
)

// MinPasswordLength is the client-side pre-check applied before delegating to
// the provider, which may enforce a stricter policy server-side.
const MinPasswordLength = 8

var ErrPasswordTooShort = errors.New("password must be at least 8 characters")

// Manager normalizes the identity provider's flows into plain error-returning
// operations and owns the current Session. It is the only code that mutates
// session state; everything else reads it.
type Manager struct {
	idp *identity.Client
	cc  cache
	log zerolog.Logger

	mu      sync.RWMutex
	current *Session
	loading bool
}

// NewManager creates a Manager using the given credential cache path. The
// manager starts in the loading state until Restore completes.
func NewManager(idp *identity.Client, cachePath string, log zerolog.Logger) *Manager {
	return &Manager{
		idp:     idp,
		cc:      cache{path: cachePath},
		log:     log.With().Str("component", "session").Logger(),
		loading: true,
	}
}

// Current returns the active session, or nil when signed out.
func (m *Manager) Current() *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Loading reports whether the startup restore is still in progress.
func (m *Manager) Loading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loading
}

// Restore attempts to re-establish a session from the local credential cache.
// Called once at startup. A missing cache, an unreadable cache, or a remote
// rejection of the cached token all resolve to "no session" rather than an
// error; the stale cache is cleared. Loading flips to false exactly once.
func (m *Manager) Restore(ctx context.Context) *Session {
	defer func() {
		m.mu.Lock()
		m.loading = false
		m.mu.Unlock()
	}()

	creds, err := m.cc.Load()
	if err != nil {
		m.log.Warn().Err(err).Msg("credential cache unreadable, discarding")
		_ = m.cc.Clear()
		return nil
	}
	if creds == nil {
		return nil
	}

	// Validate remotely; the provider is the authority on token validity.
	if _, err := m.idp.GetUser(ctx, creds.AccessToken); err != nil {
		m.log.Info().Err(err).Msg("cached session no longer valid, clearing")
		_ = m.cc.Clear()
		return nil
	}

	sess, err := m.sessionFromTokens(creds.Username, creds.IDToken)
	if err != nil {
		m.log.Warn().Err(err).Msg("cached token unparseable, clearing")
		_ = m.cc.Clear()
		return nil
	}

	m.mu.Lock()
	m.current = sess
	m.mu.Unlock()
	m.log.Info().Str("email", sess.Email).Msg("session restored")
	return sess
}

// SignIn authenticates with the provider and, on success, installs and caches
// the resulting session. Provider rejections are returned verbatim and leave
// session state untouched.
func (m *Manager) SignIn(ctx context.Context, email, password string) (*Session, error) {
	res, err := m.idp.InitiateAuth(ctx, email, password)
	if err != nil {
		return nil, err
	}

	sess, err := m.sessionFromTokens(email, res.IDToken)
	if err != nil {
		return nil, err
	}

	creds := &credentials{
		Username:     email,
		IDToken:      res.IDToken,
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		IssuedAt:     time.Now().UTC(),
	}
	if err := m.cc.Save(creds); err != nil {
		// A session without a cache still works for this run.
		m.log.Warn().Err(err).Msg("could not persist credentials")
	}

	m.mu.Lock()
	m.current = sess
	m.mu.Unlock()
	m.log.Info().Str("email", sess.Email).Msg("signed in")
	return sess, nil
}

// SignUp registers a new principal. It does NOT establish a session; the
// account stays unconfirmed until ConfirmSignUp succeeds.
func (m *Manager) SignUp(ctx context.Context, displayName, email, password string) (*identity.SignUpOutput, error) {
	if len(password) < MinPasswordLength {
		return nil, ErrPasswordTooShort
	}
	return m.idp.SignUp(ctx, email, password, displayName)
}

// ConfirmSignUp submits the emailed verification code for a registration.
func (m *Manager) ConfirmSignUp(ctx context.Context, email, code string) error {
	return m.idp.ConfirmSignUp(ctx, email, code)
}

// SignOut clears the cached principal and the in-memory session. Idempotent.
func (m *Manager) SignOut() {
	if err := m.cc.Clear(); err != nil {
		m.log.Warn().Err(err).Msg("could not clear credential cache")
	}
	m.mu.Lock()
	m.current = nil
	m.mu.Unlock()
	m.log.Info().Msg("signed out")
}

// ForgotPassword starts the credential-reset flow.
func (m *Manager) ForgotPassword(ctx context.Context, email string) error {
	return m.idp.ForgotPassword(ctx, email)
}

// ConfirmPassword completes the credential-reset flow.
func (m *Manager) ConfirmPassword(ctx context.Context, email, code, newPassword string) error {
	if len(newPassword) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return m.idp.ConfirmForgotPassword(ctx, email, code, newPassword)
}

func (m *Manager) sessionFromTokens(email, idToken string) (*Session, error) {
	c, err := decodeClaims(idToken)
	if err != nil {
		return nil, err
	}
	if c.Email != "" {
		email = c.Email
	}
	return &Session{
		Email:  email,
		UserID: c.Sub,
		Token:  idToken,
	}, nil
}
