package submit

import (
	"errors"
	"fmt"

	"github.com/daispacy/qcreport/internal/auth"
)

var (
	// ErrInvalidURL means the configured endpoint cannot be used; no
	// network call was made.
	ErrInvalidURL = errors.New("submit: invalid endpoint url")

	// ErrInvalidData means the payload could not be serialized.
	ErrInvalidData = errors.New("submit: invalid data")

	// ErrAuthenticationFailed covers a collector 401 and unresolvable
	// authorization.
	ErrAuthenticationFailed = errors.New("submit: authentication failed")
)

// NetworkError is a transport-level failure or an unusable response.
type NetworkError struct {
	Message string
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("submit: network error: %s", e.Message)
}

// ServerError is a collector response with a non-success code.
type ServerError struct {
	Code    int
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("submit: server error %d: %s", e.Code, e.Message)
}

// UploadError is a failed standalone file upload.
type UploadError struct {
	Message string
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("submit: file upload failed: %s", e.Message)
}

// mapAuthError translates the authorization taxonomy into the
// submission taxonomy: configuration and JWT failures become invalid
// data, network and response failures become network errors, and
// anything requiring or cancelling user interaction surfaces as an
// authentication failure.
func mapAuthError(err error) error {
	var (
		jwtErr *auth.JWTError
		netErr *auth.NetworkError
	)
	switch {
	case errors.Is(err, auth.ErrInvalidConfiguration):
		return fmt.Errorf("%w: %v", ErrInvalidData, err)
	case errors.As(err, &jwtErr):
		return fmt.Errorf("%w: %v", ErrInvalidData, err)
	case errors.As(err, &netErr):
		return &NetworkError{Message: netErr.Message}
	case errors.Is(err, auth.ErrInvalidResponse), errors.Is(err, auth.ErrTokenGeneration):
		return &NetworkError{Message: err.Error()}
	case errors.Is(err, auth.ErrUserAuthenticationRequired), errors.Is(err, auth.ErrAuthenticationCancelled):
		return fmt.Errorf("%w: %v", ErrAuthenticationFailed, err)
	default:
		return &NetworkError{Message: err.Error()}
	}
}
