package auth

import "errors"

var (
	ErrNotFound      = errors.New("auth: not found")
	ErrAlreadyExists = errors.New("auth: already exists")
	ErrInvalidInput  = errors.New("auth: invalid input")

	// ErrUnauthenticated covers every anonymous-caller denial: missing,
	// malformed, revoked, and forged credentials are indistinguishable.
	ErrUnauthenticated = errors.New("auth: unauthenticated")

	// ErrForbidden means the caller is authenticated but holds no grant
	// matching the target resource scope.
	ErrForbidden = errors.New("auth: forbidden")

	// ErrInvalidCredential indicates a credential that failed structural,
	// signature, or session-registry checks.
	ErrInvalidCredential = errors.New("auth: invalid credential")
)
