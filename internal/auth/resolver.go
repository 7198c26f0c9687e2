package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/daispacy/qcreport/internal/config"
	"github.com/daispacy/qcreport/internal/credential"
)

// Resolver produces usable authorization credentials, consulting the
// credential store first and refreshing or escalating when the cached
// credential is missing or expired.
type Resolver struct {
	cfg    config.AuthConfig
	store  credential.Store
	client *http.Client
	now    func() time.Time // injectable for deterministic tests

	mu       sync.Mutex
	inFlight bool
}

// NewResolver builds a Resolver over the given store.
func NewResolver(cfg config.AuthConfig, store credential.Store) *Resolver {
	return &Resolver{
		cfg:    cfg,
		store:  store,
		client: &http.Client{Timeout: 30 * time.Second},
		now:    time.Now,
	}
}

// Resolve returns a usable credential without ever blocking on UI.
// Cached non-expired credentials win; otherwise a client-assertion
// refresh runs when configured; otherwise the caller is told that
// interactive authentication is required.
func (r *Resolver) Resolve(ctx context.Context) (*credential.Credential, error) {
	if c := r.store.Load(); c != nil && c.ValidAt(r.now()) {
		return c, nil
	}

	if r.cfg.PrivateKeyFile != "" {
		cred, err := r.refreshWithAssertion(ctx)
		if err != nil {
			return nil, err
		}
		if err := r.store.Save(*cred); err != nil {
			slog.Warn("auth: could not persist refreshed credential", "err", err)
		}
		return cred, nil
	}

	return nil, ErrUserAuthenticationRequired
}

// HasValid reports whether a cached credential exists with a strictly
// future expiry. Pure function of the store and the clock.
func (r *Resolver) HasValid() bool {
	c := r.store.Load()
	return c != nil && c.ValidAt(r.now())
}

// AuthenticateInteractively runs the browser-mediated flow through the
// given presenter and persists the resulting credential. A second call
// while a session is active is rejected with ErrAuthInProgress.
func (r *Resolver) AuthenticateInteractively(ctx context.Context, presenter SessionPresenter) (*credential.Credential, error) {
	r.mu.Lock()
	if r.inFlight {
		r.mu.Unlock()
		return nil, ErrAuthInProgress
	}
	r.inFlight = true
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.inFlight = false
		r.mu.Unlock()
	}()

	state, err := newStateToken()
	if err != nil {
		return nil, err
	}

	authURL, err := BuildAuthorizeURL(r.cfg, state)
	if err != nil {
		return nil, err
	}

	callbackURL, err := presenter.Present(ctx, authURL)
	if err != nil {
		if errors.Is(err, ErrAuthenticationCancelled) {
			return nil, ErrAuthenticationCancelled
		}
		return nil, &NetworkError{Message: err.Error()}
	}

	res, err := parseCallback(callbackURL)
	if err != nil {
		return nil, err
	}
	if res.State != state {
		return nil, fmt.Errorf("%w: state token mismatch", ErrInvalidResponse)
	}

	cred := credential.Credential{
		Header:    "Bearer " + res.Token,
		Token:     res.Token,
		ExpiresAt: r.now().Add(r.cfg.TokenValidity),
		Username:  res.Username,
		UserID:    res.UserID,
	}
	if err := r.store.Save(cred); err != nil {
		return nil, fmt.Errorf("auth: persist credential: %w", err)
	}

	slog.Info("auth: interactive authentication complete",
		"username", cred.Username, "expires_at", cred.ExpiresAt)
	return &cred, nil
}
