package session

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// Session is the normalized authenticated-principal record handed to the rest
// of the application. A non-nil Session always carries a non-empty Token;
// consumers must still tolerate later rejection by the API, since expiry is
// not proactively tracked here.
type Session struct {
	Email  string
	UserID string
	Token  string
}

// claims are the ID-token fields the client cares about. The token signature
// is not verified locally; the trading API does that on every call.
type claims struct {
	Sub               string `json:"sub"`
	Email             string `json:"email"`
	PreferredUsername string `json:"preferred_username"`
	Exp               int64  `json:"exp"`
}

// decodeClaims extracts the payload segment of a JWT without verifying it.
func decodeClaims(token string) (claims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return claims{}, fmt.Errorf("malformed token: expected 3 segments, got %d", len(parts))
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return claims{}, fmt.Errorf("decode token payload: %w", err)
	}
	var c claims
	if err := json.Unmarshal(payload, &c); err != nil {
		return claims{}, fmt.Errorf("parse token payload: %w", err)
	}
	return c, nil
}
