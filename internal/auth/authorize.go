package auth

// ResourceKind names the resource families authorization is evaluated
// against.
type ResourceKind string

const (
	ResourceUser      ResourceKind = "user"
	ResourceFranchise ResourceKind = "franchise"
	ResourceStore     ResourceKind = "store"
	ResourceOrder     ResourceKind = "order"
	ResourceMenu      ResourceKind = "menu"
)

// Resource describes an authorization target by its owning scope: a
// franchise owns itself, a store is owned by its parent franchise, a user
// record is owned by the account itself, and an order is owned by the diner
// who placed it.
type Resource struct {
	Kind  ResourceKind
	Scope string
}

// Action is a named capability check. Public actions are allowed for
// anonymous callers.
type Action struct {
	Name   string
	Public bool
	// Admin marks actions reserved for global administrators regardless of
	// any scoped grant the caller holds.
	Admin bool
}

var (
	ActionListMenu        = Action{Name: "menu.list", Public: true}
	ActionAddMenuItem     = Action{Name: "menu.add"}
	ActionListFranchises  = Action{Name: "franchise.list", Public: true}
	ActionReadFranchises  = Action{Name: "franchise.read"}
	ActionCreateFranchise = Action{Name: "franchise.create"}
	ActionDeleteFranchise = Action{Name: "franchise.delete", Admin: true}
	ActionCreateStore     = Action{Name: "store.create"}
	ActionDeleteStore     = Action{Name: "store.delete"}
	ActionReadUser        = Action{Name: "user.read"}
	ActionUpdateUser      = Action{Name: "user.update"}
	ActionListOrders      = Action{Name: "order.list"}
	ActionPlaceOrder      = Action{Name: "order.place"}
)

// Authorize evaluates whether caller may perform action on resource. It is a
// pure function of its arguments; rules short-circuit in order:
//
//  1. anonymous callers get public actions only
//  2. a global administrator may do anything
//  3. admin-reserved actions deny everyone else
//  4. self-ownership: the resource scope is the caller's own account id
//  5. franchise scoping: a franchisee grant matching the owning franchise
//  6. default deny
//
// Self-ownership is checked before franchise scoping so an operator acting
// on their own user record succeeds without any franchise grant.
func Authorize(caller *Principal, action Action, resource Resource) error {
	if caller == nil {
		if action.Public {
			return nil
		}
		return ErrUnauthenticated
	}
	if caller.IsAdmin() {
		return nil
	}
	if action.Admin {
		return ErrForbidden
	}
	switch resource.Kind {
	case ResourceUser, ResourceOrder:
		if resource.Scope != "" && resource.Scope == caller.ID {
			return nil
		}
	case ResourceFranchise, ResourceStore:
		if resource.Scope != "" && caller.HasRole(RoleFranchisee, resource.Scope) {
			return nil
		}
	}
	if action.Public {
		return nil
	}
	return ErrForbidden
}
