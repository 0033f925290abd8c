package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthenticated indicates that no verification path accepted the
	// presented credentials. The message stays generic on the wire.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrUserNotProvisioned indicates verified claims without a matching
	// local account. Externally identical to ErrUnauthenticated.
	ErrUserNotProvisioned = errors.New("user not provisioned")
	// ErrContextLoad indicates a failed user-context assembly.
	ErrContextLoad = errors.New("user context load failed")
)

// UserSafeMessage returns a message suitable for clients. Internal faults
// collapse to a generic string so storage errors never leak.
func UserSafeMessage(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "The requested record could not be found."
	case errors.Is(err, ErrInvalidCredentials):
		return "Email or password is incorrect."
	case errors.Is(err, ErrUnauthenticated), errors.Is(err, ErrUserNotProvisioned):
		return "Authentication required."
	default:
		return "Something went wrong. Please try again."
	}
}
