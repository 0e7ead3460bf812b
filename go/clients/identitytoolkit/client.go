// Package identitytoolkit signs users up and in through the Firebase Auth
// REST API.
package identitytoolkit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/mcdev12/survivor/go/clients"
	"github.com/mcdev12/survivor/go/internal/apperrors"
)

const DefaultBaseURL = "https://identitytoolkit.googleapis.com/v1"

type Client struct {
	*clients.BaseClient
	apiKey string
}

func NewClient(baseURL, apiKey string, opts ...clients.Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseClient: clients.NewBaseClient(baseURL, opts...),
		apiKey:     apiKey,
	}
}

// Session is what a successful sign-in returns
type Session struct {
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
	PhotoURL     string `json:"photoUrl"`
	IsNewUser    bool   `json:"isNewUser"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// SignUp creates an email/password account.
func (c *Client) SignUp(ctx context.Context, email, password, displayName string) (Session, error) {
	return c.call(ctx, "accounts:signUp", map[string]any{
		"email":             email,
		"password":          password,
		"displayName":       displayName,
		"returnSecureToken": true,
	})
}

// SignInWithPassword exchanges email and password for an ID token.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (Session, error) {
	return c.call(ctx, "accounts:signInWithPassword", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	})
}

// SignInWithIdp exchanges a Google ID token for a Firebase ID token.
func (c *Client) SignInWithIdp(ctx context.Context, googleIDToken, requestURI string) (Session, error) {
	postBody := url.Values{"id_token": {googleIDToken}, "providerId": {"google.com"}}
	return c.call(ctx, "accounts:signInWithIdp", map[string]any{
		"postBody":            postBody.Encode(),
		"requestUri":          requestURI,
		"returnSecureToken":   true,
		"returnIdpCredential": true,
	})
}

func (c *Client) call(ctx context.Context, method string, payload map[string]any) (Session, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Session{}, fmt.Errorf("failed to encode %s request: %w", method, err)
	}

	resp, err := c.Post(ctx, "/"+method+"?key="+url.QueryEscape(c.apiKey), bytes.NewReader(body))
	if err != nil {
		return Session{}, mapError(method, err)
	}

	var s Session
	if err := json.Unmarshal(resp, &s); err != nil {
		return Session{}, apperrors.Upstream("Invalid identity provider response", err)
	}
	return s, nil
}

func mapError(method string, err error) error {
	var status *clients.StatusError
	if !errors.As(err, &status) {
		return apperrors.Upstream("Identity provider unavailable", err)
	}
	var er errorResponse
	_ = json.Unmarshal(status.Body, &er)

	// Messages look like "WEAK_PASSWORD : Password should be at least 6 characters".
	reason, _, _ := strings.Cut(er.Error.Message, " ")
	meta := map[string]string{"method": method, "reason": reason}

	var e *apperrors.Error
	switch reason {
	case "EMAIL_EXISTS":
		e = apperrors.New(apperrors.CodeConflict, "Email is already registered")
	case "EMAIL_NOT_FOUND", "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS", "INVALID_IDP_RESPONSE":
		e = apperrors.New(apperrors.CodeUnauthenticated, "Invalid credentials")
	case "USER_DISABLED":
		e = apperrors.New(apperrors.CodeNotAuthorized, "User account is disabled")
	case "WEAK_PASSWORD":
		e = apperrors.Validation("Password should be at least 6 characters")
	case "INVALID_EMAIL", "MISSING_PASSWORD", "MISSING_EMAIL":
		e = apperrors.Validation("Invalid email or password")
	case "TOO_MANY_ATTEMPTS_TRY_LATER":
		e = apperrors.New(apperrors.CodeUnauthenticated, "Too many attempts, try again later")
	default:
		e = apperrors.Upstream("Identity provider error", err)
	}
	e.Metadata = meta
	if e.Cause == nil {
		e.Cause = err
	}
	return e
}
