package auth

import (
	"errors"
	"testing"
)

func TestAuthorize(t *testing.T) {
	admin := &Principal{ID: "adm-1", Roles: []RoleGrant{{Kind: RoleAdmin}}}
	diner := &Principal{ID: "din-1", Roles: []RoleGrant{{Kind: RoleDiner}}}
	franchisee := &Principal{ID: "frn-1", Roles: []RoleGrant{
		{Kind: RoleDiner},
		{Kind: RoleFranchisee, Scope: "fr-1"},
	}}

	tests := []struct {
		name     string
		caller   *Principal
		action   Action
		resource Resource
		want     error
	}{
		{
			name:     "anonymous may use public actions",
			caller:   nil,
			action:   ActionListMenu,
			resource: Resource{Kind: ResourceMenu},
			want:     nil,
		},
		{
			name:     "anonymous denied non-public actions",
			caller:   nil,
			action:   ActionPlaceOrder,
			resource: Resource{Kind: ResourceOrder},
			want:     ErrUnauthenticated,
		},
		{
			name:     "admin may touch any resource",
			caller:   admin,
			action:   ActionUpdateUser,
			resource: Resource{Kind: ResourceUser, Scope: "din-1"},
			want:     nil,
		},
		{
			name:     "admin may use admin-reserved actions",
			caller:   admin,
			action:   ActionDeleteFranchise,
			resource: Resource{Kind: ResourceFranchise, Scope: "fr-1"},
			want:     nil,
		},
		{
			name:     "franchisee denied admin-reserved action on own franchise",
			caller:   franchisee,
			action:   ActionDeleteFranchise,
			resource: Resource{Kind: ResourceFranchise, Scope: "fr-1"},
			want:     ErrForbidden,
		},
		{
			name:     "self may read own user record",
			caller:   diner,
			action:   ActionReadUser,
			resource: Resource{Kind: ResourceUser, Scope: "din-1"},
			want:     nil,
		},
		{
			name:     "self denied another user record",
			caller:   diner,
			action:   ActionReadUser,
			resource: Resource{Kind: ResourceUser, Scope: "someone-else"},
			want:     ErrForbidden,
		},
		{
			name:     "self may list own orders",
			caller:   diner,
			action:   ActionListOrders,
			resource: Resource{Kind: ResourceOrder, Scope: "din-1"},
			want:     nil,
		},
		{
			name:     "franchisee may create store in own franchise",
			caller:   franchisee,
			action:   ActionCreateStore,
			resource: Resource{Kind: ResourceStore, Scope: "fr-1"},
			want:     nil,
		},
		{
			name:     "franchisee denied store in another franchise",
			caller:   franchisee,
			action:   ActionCreateStore,
			resource: Resource{Kind: ResourceStore, Scope: "fr-2"},
			want:     ErrForbidden,
		},
		{
			name:     "franchisee grant does not cover own user record via scope",
			caller:   franchisee,
			action:   ActionUpdateUser,
			resource: Resource{Kind: ResourceUser, Scope: "fr-1"},
			want:     ErrForbidden,
		},
		{
			name:     "diner denied franchise creation",
			caller:   diner,
			action:   ActionCreateFranchise,
			resource: Resource{Kind: ResourceFranchise},
			want:     ErrForbidden,
		},
		{
			name:     "authenticated caller falls through to public actions",
			caller:   diner,
			action:   ActionListFranchises,
			resource: Resource{Kind: ResourceFranchise},
			want:     nil,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := Authorize(tc.caller, tc.action, tc.resource)
			if tc.want == nil && err != nil {
				t.Fatalf("expected allow, got %v", err)
			}
			if tc.want != nil && !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestPrincipalHasRole(t *testing.T) {
	p := Principal{Roles: []RoleGrant{
		{Kind: RoleAdmin},
		{Kind: RoleFranchisee, Scope: "fr-1"},
	}}
	if !p.HasRole(RoleAdmin, "anything") {
		t.Fatal("unscoped grant should match any scope")
	}
	if !p.HasRole(RoleFranchisee, "fr-1") {
		t.Fatal("scoped grant should match its own scope")
	}
	if p.HasRole(RoleFranchisee, "fr-2") {
		t.Fatal("scoped grant matched a foreign scope")
	}
	if !p.IsAdmin() {
		t.Fatal("expected admin")
	}
	if (Principal{Roles: []RoleGrant{{Kind: RoleDiner}}}).IsAdmin() {
		t.Fatal("diner reported as admin")
	}
}
