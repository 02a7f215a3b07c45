package identity

import "fmt"

// Attribute is a name/value pair attached to a principal's profile.
type Attribute struct {
	Name  string `json:"Name"`
	Value string `json:"Value"`
}

// APIError is a rejection returned by the identity provider. The message is
// human-readable and is surfaced to the user verbatim.
type APIError struct {
	Type    string `json:"__type"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("identity provider error: %s", e.Type)
}

type signUpInput struct {
	ClientID       string      `json:"ClientId"`
	Username       string      `json:"Username"`
	Password       string      `json:"Password"`
	UserAttributes []Attribute `json:"UserAttributes"`
}

// SignUpOutput is the provider's response to a registration request. The
// principal remains unconfirmed until the verification code is accepted.
type SignUpOutput struct {
	UserConfirmed       bool   `json:"UserConfirmed"`
	UserSub             string `json:"UserSub"`
	CodeDeliveryDetails struct {
		Destination    string `json:"Destination"`
		DeliveryMedium string `json:"DeliveryMedium"`
	} `json:"CodeDeliveryDetails"`
}

type confirmSignUpInput struct {
	ClientID         string `json:"ClientId"`
	Username         string `json:"Username"`
	ConfirmationCode string `json:"ConfirmationCode"`
}

type initiateAuthInput struct {
	AuthFlow       string            `json:"AuthFlow"`
	ClientID       string            `json:"ClientId"`
	AuthParameters map[string]string `json:"AuthParameters"`
}

// AuthResult carries the credentials issued on a successful sign-in.
type AuthResult struct {
	AccessToken  string `json:"AccessToken"`
	IDToken      string `json:"IdToken"`
	RefreshToken string `json:"RefreshToken"`
	ExpiresIn    int    `json:"ExpiresIn"`
	TokenType    string `json:"TokenType"`
}

type initiateAuthOutput struct {
	AuthenticationResult AuthResult `json:"AuthenticationResult"`
}

type getUserInput struct {
	AccessToken string `json:"AccessToken"`
}

// GetUserOutput describes the principal behind an access token. Used to
// validate a cached session remotely.
type GetUserOutput struct {
	Username       string      `json:"Username"`
	UserAttributes []Attribute `json:"UserAttributes"`
}

type forgotPasswordInput struct {
	ClientID string `json:"ClientId"`
	Username string `json:"Username"`
}

type confirmForgotPasswordInput struct {
	ClientID         string `json:"ClientId"`
	Username         string `json:"Username"`
	ConfirmationCode string `json:"ConfirmationCode"`
	Password         string `json:"Password"`
}
