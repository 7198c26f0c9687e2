package auth

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/daispacy/qcreport/internal/credential"
)

const assertionType = "urn:ietf:params:oauth:client-assertion-type:jwt-bearer"

// assertionLifetime bounds the client assertion itself, not the issued
// credential.
const assertionLifetime = 5 * time.Minute

// refreshWithAssertion mints an RS256 client assertion and exchanges it
// at the token endpoint for a bearer credential.
func (r *Resolver) refreshWithAssertion(ctx context.Context) (*credential.Credential, error) {
	key, err := loadPrivateKey(r.cfg.PrivateKeyFile)
	if err != nil {
		return nil, err
	}

	now := r.now()
	assertion, err := signAssertion(key, r.cfg.ClientID, r.cfg.TokenURL, now)
	if err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_assertion_type", assertionType)
	form.Set("client_assertion", assertion)
	if len(r.cfg.Scopes) > 0 {
		form.Set("scope", strings.Join(r.cfg.Scopes, " "))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%w: bad token_url: %v", ErrInvalidConfiguration, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, &NetworkError{Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Message: err.Error()}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: token endpoint returned HTTP %d", ErrTokenGeneration, resp.StatusCode)
	}

	var tok struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &tok); err != nil {
		return nil, fmt.Errorf("%w: unparseable token response", ErrInvalidResponse)
	}
	if tok.AccessToken == "" {
		return nil, fmt.Errorf("%w: token response missing access_token", ErrTokenGeneration)
	}

	expiry := now.Add(r.cfg.TokenValidity)
	if tok.ExpiresIn > 0 {
		expiry = now.Add(time.Duration(tok.ExpiresIn) * time.Second)
	}

	return &credential.Credential{
		Header:    "Bearer " + tok.AccessToken,
		Token:     tok.AccessToken,
		ExpiresAt: expiry,
	}, nil
}

// loadPrivateKey reads and parses the PEM-encoded RSA signing key.
func loadPrivateKey(path string) (*rsa.PrivateKey, error) {
	pem, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read private key: %v", ErrInvalidConfiguration, err)
	}
	key, err := jwt.ParseRSAPrivateKeyFromPEM(pem)
	if err != nil {
		return nil, fmt.Errorf("%w: parse private key: %v", ErrInvalidConfiguration, err)
	}
	return key, nil
}

// signAssertion builds the client assertion claiming the configured
// client id toward the token endpoint audience.
func signAssertion(key *rsa.PrivateKey, clientID, audience string, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"iss": clientID,
		"sub": clientID,
		"aud": audience,
		"jti": uuid.NewString(),
		"iat": now.Unix(),
		"exp": now.Add(assertionLifetime).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	if err != nil {
		return "", &JWTError{Message: err.Error()}
	}
	return signed, nil
}
