package auth

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const defaultTokenTTL = 24 * time.Hour

// tokenShape is the wire-format gate: exactly three dot-separated base64url
// segments. Anything else is rejected before signature verification.
var tokenShape = regexp.MustCompile(`^[A-Za-z0-9_-]*\.[A-Za-z0-9_-]*\.[A-Za-z0-9_-]*$`)

// Claims is the identity snapshot embedded in every issued credential.
type Claims struct {
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Roles []RoleGrant `json:"roles"`
	jwt.RegisteredClaims
}

// Issuer mints and verifies signed identity credentials. It is stateless and
// knows nothing about revocation; a verified credential still has to pass
// the session registry check before it may authorize a request.
type Issuer struct {
	secret []byte
	name   string
	ttl    time.Duration
	now    func() time.Time
}

// IssuerOption configures Issuer behavior.
type IssuerOption func(*Issuer)

// WithTokenTTL overrides the credential lifetime.
func WithTokenTTL(ttl time.Duration) IssuerOption {
	return func(i *Issuer) {
		if ttl > 0 {
			i.ttl = ttl
		}
	}
}

// WithIssuerName overrides the iss claim.
func WithIssuerName(name string) IssuerOption {
	return func(i *Issuer) {
		if name = strings.TrimSpace(name); name != "" {
			i.name = name
		}
	}
}

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) IssuerOption {
	return func(i *Issuer) {
		if fn != nil {
			i.now = fn
		}
	}
}

// NewIssuer constructs an Issuer signing with HS256 over the given secret.
func NewIssuer(secret string, opts ...IssuerOption) (*Issuer, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("auth secret is not configured")
	}
	i := &Issuer{
		secret: []byte(secret),
		name:   "slicehub",
		ttl:    defaultTokenTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

// Issue signs a credential embedding the given identity snapshot. It fails
// only on serialization or signing errors.
func (i *Issuer) Issue(p Principal) (string, error) {
	if strings.TrimSpace(p.ID) == "" {
		return "", fmt.Errorf("%w: account id is required", ErrInvalidInput)
	}
	now := i.now().UTC()
	claims := Claims{
		Name:  p.Name,
		Email: p.Email,
		Roles: NormalizeGrants(p.Roles),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.name,
			Subject:   p.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
			ID:        uuid.NewString(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign credential: %w", err)
	}
	return signed, nil
}

// Verify checks structural shape, signature integrity, and claim validity.
// It returns ErrInvalidCredential on any failure; it never reports which
// check failed.
func (i *Issuer) Verify(credential string) (Principal, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" || !tokenShape.MatchString(credential) {
		return Principal{}, ErrInvalidCredential
	}
	parsed, err := jwt.ParseWithClaims(credential, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidCredential
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return i.now().UTC() }))
	if err != nil {
		return Principal{}, ErrInvalidCredential
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return Principal{}, ErrInvalidCredential
	}
	if err := i.validateClaims(claims); err != nil {
		return Principal{}, ErrInvalidCredential
	}
	return Principal{
		ID:    claims.Subject,
		Name:  claims.Name,
		Email: claims.Email,
		Roles: NormalizeGrants(claims.Roles),
	}, nil
}

func (i *Issuer) validateClaims(claims *Claims) error {
	if claims.Issuer != i.name {
		return fmt.Errorf("unexpected issuer: %s", claims.Issuer)
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return errors.New("subject missing")
	}
	if claims.ExpiresAt == nil || claims.IssuedAt == nil {
		return errors.New("timestamps missing")
	}
	now := i.now().UTC()
	// Allow a small clock skew of 5 seconds when validating issued-at.
	if claims.IssuedAt.Time.After(now.Add(5 * time.Second)) {
		return errors.New("credential issued in the future")
	}
	if claims.ExpiresAt.Time.Before(claims.IssuedAt.Time) {
		return errors.New("credential expiry precedes issued-at")
	}
	return nil
}
