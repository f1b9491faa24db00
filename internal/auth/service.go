package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"slicehub.org/internal/ids"
)

// Service implements the identity workflows: registration, login, logout,
// account mutation with credential reissue, and per-request identification.
type Service struct {
	store  Store
	issuer *Issuer
	now    func() time.Time
}

// NewService constructs a Service over the given store and issuer.
func NewService(store Store, issuer *Issuer) *Service {
	return &Service{store: store, issuer: issuer, now: time.Now}
}

// Register creates an account and issues its first credential. A nil or
// empty grant list yields the base diner role; callers granting anything
// else must already have been authorized as administrators.
func (s *Service) Register(ctx context.Context, name, email, secret string, grants []RoleGrant) (*Account, string, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	switch {
	case name == "":
		return nil, "", fmt.Errorf("%w: name is required", ErrInvalidInput)
	case email == "":
		return nil, "", fmt.Errorf("%w: email is required", ErrInvalidInput)
	case secret == "":
		return nil, "", fmt.Errorf("%w: password is required", ErrInvalidInput)
	}
	hash, err := HashSecret(secret)
	if err != nil {
		return nil, "", err
	}
	if len(grants) == 0 {
		grants = []RoleGrant{{Kind: RoleDiner}}
	}
	account := &Account{
		ID:         ids.New(),
		Name:       name,
		Email:      email,
		SecretHash: hash,
		Roles:      NormalizeGrants(grants),
	}
	if err := s.store.Accounts().Create(ctx, account); err != nil {
		return nil, "", err
	}
	credential, err := s.issueAndRecord(ctx, account)
	if err != nil {
		return nil, "", err
	}
	return account, credential, nil
}

// Login authenticates by email and secret. Unknown email and wrong secret
// are deliberately indistinguishable: both return ErrNotFound.
func (s *Service) Login(ctx context.Context, email, secret string) (*Account, string, error) {
	email = normalizeEmail(email)
	if email == "" || secret == "" {
		return nil, "", fmt.Errorf("%w: email and password are required", ErrInvalidInput)
	}
	account, err := s.store.Accounts().FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, "", ErrNotFound
		}
		return nil, "", err
	}
	if err := VerifySecret(account.SecretHash, secret); err != nil {
		return nil, "", ErrNotFound
	}
	credential, err := s.issueAndRecord(ctx, account)
	if err != nil {
		return nil, "", err
	}
	return account, credential, nil
}

// Logout revokes the presented credential. Revoking an unknown or
// already-revoked credential is not an error.
func (s *Service) Logout(ctx context.Context, credential string) error {
	if strings.TrimSpace(credential) == "" {
		return nil
	}
	return s.store.Sessions().Revoke(ctx, Fingerprint(credential))
}

// Identify resolves a presented credential into a principal. A credential
// authorizes a request only if it is simultaneously present in the session
// registry and cryptographically valid; every failure mode collapses into
// ErrInvalidCredential.
func (s *Service) Identify(ctx context.Context, credential string) (Principal, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return Principal{}, ErrInvalidCredential
	}
	active, err := s.store.Sessions().IsActive(ctx, Fingerprint(credential))
	if err != nil {
		return Principal{}, err
	}
	if !active {
		return Principal{}, ErrInvalidCredential
	}
	principal, err := s.issuer.Verify(credential)
	if err != nil {
		return Principal{}, ErrInvalidCredential
	}
	return principal, nil
}

// Update mutates an account's name, email, or secret (each independently
// optional; empty means unchanged) and reissues its credential: the new
// credential is issued from the post-mutation snapshot and recorded before
// the stale session is superseded, so there is no window in which the
// account has no valid credential. The returned string is the account's new
// credential.
func (s *Service) Update(ctx context.Context, accountID, name, email, secret string) (*Account, string, error) {
	upd := AccountUpdate{}
	if name = strings.TrimSpace(name); name != "" {
		upd.Name = &name
	}
	if email = normalizeEmail(email); email != "" {
		upd.Email = &email
	}
	if secret != "" {
		hash, err := HashSecret(secret)
		if err != nil {
			return nil, "", err
		}
		upd.SecretHash = &hash
	}
	account, err := s.store.Accounts().Update(ctx, accountID, upd)
	if err != nil {
		return nil, "", err
	}
	credential, err := s.issueAndRecord(ctx, account)
	if err != nil {
		return nil, "", err
	}
	return account, credential, nil
}

// Account loads an account by id.
func (s *Service) Account(ctx context.Context, id string) (*Account, error) {
	return s.store.Accounts().Find(ctx, id)
}

// EnsureAdmin creates the bootstrap administrator account when it does not
// exist yet. It is a no-op when email is empty or the account is already
// present.
func (s *Service) EnsureAdmin(ctx context.Context, name, email, secret string) error {
	email = normalizeEmail(email)
	if email == "" || secret == "" {
		return nil
	}
	if _, err := s.store.Accounts().FindByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}
	hash, err := HashSecret(secret)
	if err != nil {
		return err
	}
	account := &Account{
		ID:         ids.New(),
		Name:       strings.TrimSpace(name),
		Email:      email,
		SecretHash: hash,
		Roles:      []RoleGrant{{Kind: RoleAdmin}},
	}
	return s.store.Accounts().Create(ctx, account)
}

// issueAndRecord mints a credential from the account's current snapshot and
// records it in the session registry, superseding any prior session for the
// holder.
func (s *Service) issueAndRecord(ctx context.Context, account *Account) (string, error) {
	credential, err := s.issuer.Issue(account.Principal())
	if err != nil {
		return "", err
	}
	if err := s.store.Sessions().Record(ctx, account.ID, Fingerprint(credential)); err != nil {
		return "", err
	}
	return credential, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
