package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"

	"github.com/daispacy/qcreport/internal/config"
)

// SessionPresenter hosts the browser-mediated part of the interactive
// flow: it presents authURL to the user and returns the redirect
// callback URL the session ended on. Implementations return
// ErrAuthenticationCancelled when the user dismisses the session.
type SessionPresenter interface {
	Present(ctx context.Context, authURL string) (callbackURL string, err error)
}

// BuildAuthorizeURL constructs the authorization URL from the client id,
// scopes, redirect target and the anti-forgery state token. Pure; no
// host environment needed.
func BuildAuthorizeURL(cfg config.AuthConfig, state string) (string, error) {
	if cfg.ClientID == "" || cfg.AuthorizeURL == "" || cfg.RedirectURI == "" {
		return "", ErrInvalidConfiguration
	}
	u, err := url.Parse(cfg.AuthorizeURL)
	if err != nil {
		return "", fmt.Errorf("%w: bad authorize_url: %v", ErrInvalidConfiguration, err)
	}

	q := u.Query()
	q.Set("client_id", cfg.ClientID)
	q.Set("redirect_uri", cfg.RedirectURI)
	q.Set("response_type", "token")
	if len(cfg.Scopes) > 0 {
		q.Set("scope", strings.Join(cfg.Scopes, " "))
	}
	q.Set("state", state)
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// newStateToken returns a fresh random anti-forgery token.
func newStateToken() (string, error) {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("auth: generate state token: %w", err)
	}
	return hex.EncodeToString(b[:]), nil
}

// callbackResult is the parsed redirect callback.
type callbackResult struct {
	Token    string
	Username string
	UserID   string
	State    string
}

// parseCallback extracts the credential fields from the callback URL's
// query. A missing token or username is an invalid response, never a
// cancellation or a partial success.
func parseCallback(raw string) (callbackResult, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return callbackResult{}, fmt.Errorf("%w: unparseable callback url", ErrInvalidResponse)
	}
	q := u.Query()

	res := callbackResult{
		Token:    q.Get("token"),
		Username: q.Get("username"),
		UserID:   q.Get("user_id"),
		State:    q.Get("state"),
	}
	if res.Token == "" {
		return callbackResult{}, fmt.Errorf("%w: callback missing token", ErrInvalidResponse)
	}
	if res.Username == "" {
		return callbackResult{}, fmt.Errorf("%w: callback missing username", ErrInvalidResponse)
	}
	return res, nil
}
