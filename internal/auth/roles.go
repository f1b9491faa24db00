package auth

import "strings"

// RoleKind is the closed set of grantable capability tags.
type RoleKind string

const (
	// RoleAdmin may act on any resource, unscoped.
	RoleAdmin RoleKind = "admin"
	// RoleFranchisee is scoped to exactly one franchise identifier.
	RoleFranchisee RoleKind = "franchisee"
	// RoleDiner is the base role every self-registered account holds.
	RoleDiner RoleKind = "diner"
)

// RoleGrant is a capability tag with an optional resource scope. Only
// franchisee grants carry a scope (the franchise they apply to).
type RoleGrant struct {
	Kind  RoleKind `json:"kind"`
	Scope string   `json:"scope,omitempty"`
}

// ParseRoleKind normalizes a wire-format role name.
func ParseRoleKind(raw string) (RoleKind, bool) {
	switch RoleKind(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleFranchisee:
		return RoleFranchisee, true
	case RoleDiner:
		return RoleDiner, true
	}
	return "", false
}

// NormalizeGrants deduplicates grants, preserving order of first appearance.
func NormalizeGrants(grants []RoleGrant) []RoleGrant {
	if len(grants) == 0 {
		return nil
	}
	type key struct {
		kind  RoleKind
		scope string
	}
	seen := make(map[key]struct{}, len(grants))
	var out []RoleGrant
	for _, g := range grants {
		k := key{g.Kind, g.Scope}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, g)
	}
	return out
}
