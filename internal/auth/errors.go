package auth

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfiguration means the auth settings cannot produce a
	// credential (missing endpoints, unreadable key material).
	ErrInvalidConfiguration = errors.New("auth: invalid configuration")

	// ErrInvalidResponse means the identity provider's callback or token
	// response was missing required fields.
	ErrInvalidResponse = errors.New("auth: invalid response")

	// ErrTokenGeneration means the token endpoint answered but did not
	// yield a usable token.
	ErrTokenGeneration = errors.New("auth: token generation failed")

	// ErrUserAuthenticationRequired is returned by Resolve when no
	// non-expired credential exists and no non-interactive refresh is
	// configured. The caller must run the interactive flow.
	ErrUserAuthenticationRequired = errors.New("auth: user authentication required")

	// ErrAuthenticationCancelled means the user dismissed the browser
	// session. Distinct from transport failure and from timeout.
	ErrAuthenticationCancelled = errors.New("auth: authentication cancelled")

	// ErrAuthInProgress rejects a second interactive session while one
	// is already running.
	ErrAuthInProgress = errors.New("auth: interactive authentication already in progress")
)

// NetworkError is a transport-level failure while talking to the
// identity provider.
type NetworkError struct {
	Message string
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("auth: network error: %s", e.Message)
}

// JWTError is a failure to build or sign the client assertion.
type JWTError struct {
	Message string
}

func (e *JWTError) Error() string {
	return fmt.Sprintf("auth: jwt generation failed: %s", e.Message)
}
