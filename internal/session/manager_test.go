package session

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradequest/tradequest/internal/identity"
)

// fakeIDP is an in-memory identity provider speaking the same JSON protocol
// as the real one: a single POST endpoint dispatched on X-Amz-Target.
type fakeIDP struct {
	users  map[string]*fakeUser
	tokens map[string]string // access token -> username
}

type fakeUser struct {
	password  string
	confirmed bool
	code      string
	sub       string
}

func newFakeIDP() *fakeIDP {
	return &fakeIDP{
		users:  make(map[string]*fakeUser),
		tokens: make(map[string]string),
	}
}

func (f *fakeIDP) reject(w http.ResponseWriter, typ, msg string) {
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(map[string]string{"__type": typ, "message": msg})
}

func mintIDToken(sub, email string) string {
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"RS256","typ":"JWT"}`))
	payload, _ := json.Marshal(map[string]any{
		"sub":   sub,
		"email": email,
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	return header + "." + base64.RawURLEncoding.EncodeToString(payload) + ".sig"
}

func (f *fakeIDP) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	json.NewDecoder(r.Body).Decode(&body)
	target := strings.TrimPrefix(r.Header.Get("X-Amz-Target"), "AWSCognitoIdentityProviderService.")

	str := func(k string) string { s, _ := body[k].(string); return s }

	switch target {
	case "SignUp":
		email := str("Username")
		if _, ok := f.users[email]; ok {
			f.reject(w, "UsernameExistsException", "An account with the given email already exists.")
			return
		}
		sub := fmt.Sprintf("sub-%d", len(f.users)+1)
		f.users[email] = &fakeUser{password: str("Password"), code: "123456", sub: sub}
		json.NewEncoder(w).Encode(map[string]any{"UserConfirmed": false, "UserSub": sub})

	case "ConfirmSignUp":
		u, ok := f.users[str("Username")]
		if !ok || str("ConfirmationCode") != u.code {
			f.reject(w, "CodeMismatchException", "Invalid verification code provided, please try again.")
			return
		}
		u.confirmed = true
		json.NewEncoder(w).Encode(map[string]any{})

	case "InitiateAuth":
		params, _ := body["AuthParameters"].(map[string]any)
		email, _ := params["USERNAME"].(string)
		password, _ := params["PASSWORD"].(string)
		u, ok := f.users[email]
		if !ok || u.password != password {
			f.reject(w, "NotAuthorizedException", "Incorrect username or password.")
			return
		}
		if !u.confirmed {
			f.reject(w, "UserNotConfirmedException", "User is not confirmed.")
			return
		}
		access := fmt.Sprintf("access-%s-%d", email, len(f.tokens))
		f.tokens[access] = email
		json.NewEncoder(w).Encode(map[string]any{
			"AuthenticationResult": map[string]any{
				"AccessToken":  access,
				"IdToken":      mintIDToken(u.sub, email),
				"RefreshToken": "refresh-" + email,
				"ExpiresIn":    3600,
				"TokenType":    "Bearer",
			},
		})

	case "GetUser":
		email, ok := f.tokens[str("AccessToken")]
		if !ok {
			f.reject(w, "NotAuthorizedException", "Access Token has expired")
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"Username": email})

	case "ForgotPassword":
		if _, ok := f.users[str("Username")]; !ok {
			f.reject(w, "UserNotFoundException", "Username/client id combination not found.")
			return
		}
		json.NewEncoder(w).Encode(map[string]any{})

	case "ConfirmForgotPassword":
		u, ok := f.users[str("Username")]
		if !ok || str("ConfirmationCode") != u.code {
			f.reject(w, "CodeMismatchException", "Invalid verification code provided, please try again.")
			return
		}
		u.password = str("Password")
		json.NewEncoder(w).Encode(map[string]any{})

	default:
		f.reject(w, "UnknownOperationException", "unknown target "+target)
	}
}

func newTestManager(t *testing.T) (*Manager, *fakeIDP, string) {
	t.Helper()
	idp := newFakeIDP()
	srv := httptest.NewServer(idp)
	t.Cleanup(srv.Close)

	cachePath := filepath.Join(t.TempDir(), "credentials.json")
	client := identity.NewClient(srv.URL, "test-client", zerolog.Nop())
	return NewManager(client, cachePath, zerolog.Nop()), idp, cachePath
}

func registerConfirmed(t *testing.T, m *Manager, email, password string) {
	t.Helper()
	ctx := context.Background()
	_, err := m.SignUp(ctx, "tester", email, password)
	require.NoError(t, err)
	require.NoError(t, m.ConfirmSignUp(ctx, email, "123456"))
}

func TestRestoreWithNoCache(t *testing.T) {
	m, _, _ := newTestManager(t)
	require.True(t, m.Loading())

	sess := m.Restore(context.Background())
	assert.Nil(t, sess)
	assert.Nil(t, m.Current())
	assert.False(t, m.Loading())
}

func TestRestoreWithExpiredCacheClearsIt(t *testing.T) {
	m, _, cachePath := newTestManager(t)

	// A cache entry whose access token the provider no longer recognizes.
	stale := credentials{
		Username:    "alice@example.com",
		IDToken:     mintIDToken("sub-1", "alice@example.com"),
		AccessToken: "access-long-gone",
		IssuedAt:    time.Now().Add(-48 * time.Hour),
	}
	data, _ := json.Marshal(stale)
	require.NoError(t, os.WriteFile(cachePath, data, 0o600))

	sess := m.Restore(context.Background())
	assert.Nil(t, sess)

	_, err := os.Stat(cachePath)
	assert.True(t, os.IsNotExist(err), "stale cache should be removed")
}

func TestSignInPopulatesSession(t *testing.T) {
	m, _, _ := newTestManager(t)
	registerConfirmed(t, m, "alice@example.com", "correcthorse")

	sess, err := m.SignIn(context.Background(), "alice@example.com", "correcthorse")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", sess.Email)
	assert.Equal(t, "sub-1", sess.UserID)
	assert.NotEmpty(t, sess.Token)
	assert.Equal(t, sess, m.Current())
}

func TestSignInWithBadPasswordLeavesSessionAbsent(t *testing.T) {
	m, _, _ := newTestManager(t)
	registerConfirmed(t, m, "alice@example.com", "correcthorse")

	_, err := m.SignIn(context.Background(), "alice@example.com", "wrong")
	require.Error(t, err)
	assert.Equal(t, "Incorrect username or password.", err.Error())
	assert.Nil(t, m.Current())
}

func TestSignInBeforeConfirmationRejects(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx := context.Background()

	out, err := m.SignUp(ctx, "bob", "bob@example.com", "longenough")
	require.NoError(t, err)
	assert.False(t, out.UserConfirmed)

	_, err = m.SignIn(ctx, "bob@example.com", "longenough")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not confirmed")
}

func TestConfirmSignUpCodeHandling(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx := context.Background()

	_, err := m.SignUp(ctx, "bob", "bob@example.com", "longenough")
	require.NoError(t, err)

	err = m.ConfirmSignUp(ctx, "bob@example.com", "999999")
	require.Error(t, err, "wrong code must reject")

	require.NoError(t, m.ConfirmSignUp(ctx, "bob@example.com", "123456"))

	_, err = m.SignIn(ctx, "bob@example.com", "longenough")
	assert.NoError(t, err, "sign-in should succeed once confirmed")
}

func TestSignUpPasswordPreCheck(t *testing.T) {
	m, _, _ := newTestManager(t)
	_, err := m.SignUp(context.Background(), "bob", "bob@example.com", "short")
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestSignOutClearsSessionAndCache(t *testing.T) {
	m, _, cachePath := newTestManager(t)
	registerConfirmed(t, m, "alice@example.com", "correcthorse")

	_, err := m.SignIn(context.Background(), "alice@example.com", "correcthorse")
	require.NoError(t, err)
	_, err = os.Stat(cachePath)
	require.NoError(t, err, "sign-in should persist credentials")

	m.SignOut()
	assert.Nil(t, m.Current())

	sess := m.Restore(context.Background())
	assert.Nil(t, sess, "restore after sign-out must find no cached principal")

	// Idempotent.
	m.SignOut()
}

func TestRestoreAfterSignInFindsSession(t *testing.T) {
	m, _, cachePath := newTestManager(t)
	registerConfirmed(t, m, "alice@example.com", "correcthorse")

	_, err := m.SignIn(context.Background(), "alice@example.com", "correcthorse")
	require.NoError(t, err)

	// A second manager simulates a process restart sharing the cache file.
	m2 := NewManager(m.idp, cachePath, zerolog.Nop())
	sess := m2.Restore(context.Background())
	require.NotNil(t, sess)
	assert.Equal(t, "alice@example.com", sess.Email)
	assert.Equal(t, "sub-1", sess.UserID)
}

func TestPasswordResetFlow(t *testing.T) {
	m, _, _ := newTestManager(t)
	registerConfirmed(t, m, "alice@example.com", "correcthorse")
	ctx := context.Background()

	require.NoError(t, m.ForgotPassword(ctx, "alice@example.com"))
	require.Error(t, m.ConfirmPassword(ctx, "alice@example.com", "999999", "newpassword1"))
	require.NoError(t, m.ConfirmPassword(ctx, "alice@example.com", "123456", "newpassword1"))

	_, err := m.SignIn(ctx, "alice@example.com", "newpassword1")
	assert.NoError(t, err)
}
