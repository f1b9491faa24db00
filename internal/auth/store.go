package auth

import "context"

// Store describes persistence operations required by the identity core.
type Store interface {
	Accounts() AccountStore
	Sessions() SessionStore
}

// AccountStore manages accounts and their role grants. Emails are unique,
// compared case-insensitively.
type AccountStore interface {
	Create(ctx context.Context, a *Account) error
	Find(ctx context.Context, id string) (*Account, error)
	FindByEmail(ctx context.Context, email string) (*Account, error)
	Update(ctx context.Context, id string, upd AccountUpdate) (*Account, error)
}

// SessionStore is the server-side registry of currently-live credentials,
// keyed by fingerprint. Each account holds at most one live session: Record
// supersedes any prior entry for the same account.
type SessionStore interface {
	Record(ctx context.Context, accountID, fingerprint string) error
	IsActive(ctx context.Context, fingerprint string) (bool, error)
	// Revoke is idempotent; revoking an unknown fingerprint is not an error.
	Revoke(ctx context.Context, fingerprint string) error
}
