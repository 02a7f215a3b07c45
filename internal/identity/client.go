package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const (
	contentType  = "application/x-amz-json-1.1"
	targetPrefix = "AWSCognitoIdentityProviderService."
)

// Client talks the identity provider's public JSON protocol: every operation
// is a POST to a single endpoint, selected by the X-Amz-Target header. Only
// unauthenticated (client-id scoped) operations are used, the same surface the
// original browser SDK relies on. No retries, no backoff.
type Client struct {
	endpoint string
	clientID string
	httpc    *http.Client
	log      zerolog.Logger
}

// NewClient creates a provider client for the given endpoint and app client ID.
func NewClient(endpoint, clientID string, log zerolog.Logger) *Client {
	return &Client{
		endpoint: endpoint,
		clientID: clientID,
		httpc:    &http.Client{Timeout: 10 * time.Second},
		log:      log.With().Str("component", "identity").Logger(),
	}
}

// SignUp registers a new principal with email as the username. The account is
// created unconfirmed; ConfirmSignUp makes it sign-in eligible.
func (c *Client) SignUp(ctx context.Context, email, password, preferredUsername string) (*SignUpOutput, error) {
	in := signUpInput{
		ClientID: c.clientID,
		Username: email,
		Password: password,
		UserAttributes: []Attribute{
			{Name: "email", Value: email},
			{Name: "preferred_username", Value: preferredUsername},
		},
	}
	out := &SignUpOutput{}
	if err := c.call(ctx, "SignUp", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

// ConfirmSignUp submits the out-of-band verification code for a registration.
func (c *Client) ConfirmSignUp(ctx context.Context, email, code string) error {
	in := confirmSignUpInput{ClientID: c.clientID, Username: email, ConfirmationCode: code}
	return c.call(ctx, "ConfirmSignUp", in, nil)
}

// InitiateAuth performs a username/password sign-in and returns the issued
// token set.
func (c *Client) InitiateAuth(ctx context.Context, email, password string) (*AuthResult, error) {
	in := initiateAuthInput{
		AuthFlow: "USER_PASSWORD_AUTH",
		ClientID: c.clientID,
		AuthParameters: map[string]string{
			"USERNAME": email,
			"PASSWORD": password,
		},
	}
	out := &initiateAuthOutput{}
	if err := c.call(ctx, "InitiateAuth", in, out); err != nil {
		return nil, err
	}
	return &out.AuthenticationResult, nil
}

// GetUser resolves the principal behind an access token. A rejection means
// the token (and therefore the cached session) is no longer valid.
func (c *Client) GetUser(ctx context.Context, accessToken string) (*GetUserOutput, error) {
	out := &GetUserOutput{}
	if err := c.call(ctx, "GetUser", getUserInput{AccessToken: accessToken}, out); err != nil {
		return nil, err
	}
	return out, nil
}

// ForgotPassword starts the credential-reset flow for the given username.
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	return c.call(ctx, "ForgotPassword", forgotPasswordInput{ClientID: c.clientID, Username: email}, nil)
}

// ConfirmForgotPassword completes the reset flow with the emailed code.
func (c *Client) ConfirmForgotPassword(ctx context.Context, email, code, newPassword string) error {
	in := confirmForgotPasswordInput{
		ClientID:         c.clientID,
		Username:         email,
		ConfirmationCode: code,
		Password:         newPassword,
	}
	return c.call(ctx, "ConfirmForgotPassword", in, nil)
}

func (c *Client) call(ctx context.Context, target string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", target, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build %s request: %w", target, err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Amz-Target", targetPrefix+target)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", target, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: read response: %w", target, err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{}
		if err := json.Unmarshal(body, apiErr); err != nil || (apiErr.Type == "" && apiErr.Message == "") {
			apiErr = &APIError{Type: "UnknownError", Message: fmt.Sprintf("%s failed with status %d", target, resp.StatusCode)}
		}
		c.log.Debug().Str("op", target).Str("type", apiErr.Type).Msg("provider rejection")
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", target, err)
	}
	return nil
}
