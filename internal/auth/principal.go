package auth

// Principal is the identity snapshot a verified credential asserts: who the
// caller was, and which role grants they held, at issuance time.
type Principal struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Roles []RoleGrant `json:"roles"`
}

// HasRole reports whether the principal holds a grant of the given kind
// matching the given scope. Unscoped grants match any scope; scoped grants
// match only their own.
func (p Principal) HasRole(kind RoleKind, scope string) bool {
	for _, g := range p.Roles {
		if g.Kind != kind {
			continue
		}
		if g.Scope == "" || g.Scope == scope {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the principal holds the global administrator
// grant.
func (p Principal) IsAdmin() bool {
	return p.HasRole(RoleAdmin, "")
}
