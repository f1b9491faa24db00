package auth

import "time"

// Account is a registered identity. SecretHash is never serialized; wire
// representations carry the sanitized fields only.
type Account struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Email      string      `json:"email"`
	SecretHash string      `json:"-"`
	Roles      []RoleGrant `json:"roles"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// Principal returns the identity snapshot embedded into credentials issued
// for this account.
func (a *Account) Principal() Principal {
	roles := make([]RoleGrant, len(a.Roles))
	copy(roles, a.Roles)
	return Principal{ID: a.ID, Name: a.Name, Email: a.Email, Roles: roles}
}

// AccountUpdate carries optional field changes; nil means unchanged.
type AccountUpdate struct {
	Name       *string
	Email      *string
	SecretHash *string
}
