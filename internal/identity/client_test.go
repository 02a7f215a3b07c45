package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "test-client-id", zerolog.Nop())
}

func TestSignUpSendsAttributes(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/x-amz-json-1.1", r.Header.Get("Content-Type"))
		assert.Equal(t, "AWSCognitoIdentityProviderService.SignUp", r.Header.Get("X-Amz-Target"))

		var in signUpInput
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "test-client-id", in.ClientID)
		assert.Equal(t, "alice@example.com", in.Username)
		assert.Contains(t, in.UserAttributes, Attribute{Name: "email", Value: "alice@example.com"})
		assert.Contains(t, in.UserAttributes, Attribute{Name: "preferred_username", Value: "alice"})

		json.NewEncoder(w).Encode(map[string]any{
			"UserConfirmed": false,
			"UserSub":       "sub-123",
		})
	})

	out, err := c.SignUp(context.Background(), "alice@example.com", "hunter2pass", "alice")
	require.NoError(t, err)
	assert.False(t, out.UserConfirmed)
	assert.Equal(t, "sub-123", out.UserSub)
}

func TestInitiateAuthReturnsTokens(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var in initiateAuthInput
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "USER_PASSWORD_AUTH", in.AuthFlow)
		assert.Equal(t, "alice@example.com", in.AuthParameters["USERNAME"])

		json.NewEncoder(w).Encode(map[string]any{
			"AuthenticationResult": map[string]any{
				"AccessToken":  "access",
				"IdToken":      "id",
				"RefreshToken": "refresh",
				"ExpiresIn":    3600,
				"TokenType":    "Bearer",
			},
		})
	})

	res, err := c.InitiateAuth(context.Background(), "alice@example.com", "hunter2pass")
	require.NoError(t, err)
	assert.Equal(t, "access", res.AccessToken)
	assert.Equal(t, "id", res.IDToken)
	assert.Equal(t, 3600, res.ExpiresIn)
}

func TestRejectionDecodesAsAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{
			"__type":  "NotAuthorizedException",
			"message": "Incorrect username or password.",
		})
	})

	_, err := c.InitiateAuth(context.Background(), "alice@example.com", "wrong")
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok, "expected *APIError, got %T", err)
	assert.Equal(t, "NotAuthorizedException", apiErr.Type)
	assert.Equal(t, "Incorrect username or password.", err.Error())
}

func TestMalformedRejectionStillErrors(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("not json"))
	})

	err := c.ConfirmSignUp(context.Background(), "alice@example.com", "123456")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}
