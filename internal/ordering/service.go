package ordering

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"slicehub.org/internal/auth"
	"slicehub.org/internal/fulfillment"
	"slicehub.org/internal/ids"
	"slicehub.org/internal/obs"
)

// Repository describes the persistence operations the ordering side needs.
type Repository interface {
	CreateFranchise(ctx context.Context, f *Franchise) error
	Franchise(ctx context.Context, id string) (*Franchise, error)
	ListFranchises(ctx context.Context, limit, offset int) ([]Franchise, error)
	DeleteFranchise(ctx context.Context, id string) error

	CreateStore(ctx context.Context, st *Store) error
	DeleteStore(ctx context.Context, franchiseID, storeID string) error

	Menu(ctx context.Context) ([]MenuItem, error)
	AddMenuItem(ctx context.Context, item *MenuItem) error

	CreateOrder(ctx context.Context, o *Order) error
	OrdersFor(ctx context.Context, accountID string, limit, offset int) ([]Order, error)
}

// Signer mints the signed identity assertion included in factory tickets.
// *auth.Issuer satisfies it.
type Signer interface {
	Issue(p auth.Principal) (string, error)
}

// Service implements catalog management and the order fulfillment
// coordinator.
type Service struct {
	repo    Repository
	factory fulfillment.Client
	signer  Signer
	now     func() time.Time
}

// NewService constructs the ordering service.
func NewService(repo Repository, factory fulfillment.Client, signer Signer) *Service {
	return &Service{repo: repo, factory: factory, signer: signer, now: time.Now}
}

// Menu ----------------------------------------------------------------------

func (s *Service) Menu(ctx context.Context) ([]MenuItem, error) {
	return s.repo.Menu(ctx)
}

func (s *Service) AddMenuItem(ctx context.Context, title, description, image string, price int64) (*MenuItem, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if price <= 0 {
		return nil, fmt.Errorf("%w: price must be greater than zero", ErrValidation)
	}
	item := &MenuItem{
		ID:          ids.New(),
		Title:       title,
		Description: strings.TrimSpace(description),
		Image:       strings.TrimSpace(image),
		Price:       price,
	}
	if err := s.repo.AddMenuItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// Franchises ------------------------------------------------------------------

func (s *Service) CreateFranchise(ctx context.Context, name string) (*Franchise, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	f := &Franchise{ID: ids.New(), Name: name}
	if err := s.repo.CreateFranchise(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *Service) Franchise(ctx context.Context, id string) (*Franchise, error) {
	return s.repo.Franchise(ctx, id)
}

func (s *Service) ListFranchises(ctx context.Context, limit, offset int) ([]Franchise, error) {
	return s.repo.ListFranchises(ctx, limit, offset)
}

func (s *Service) DeleteFranchise(ctx context.Context, id string) error {
	return s.repo.DeleteFranchise(ctx, id)
}

// FranchisesOperatedBy resolves the franchises named by a grant list. Grants
// other than franchisee, and scopes that no longer resolve, are skipped.
func (s *Service) FranchisesOperatedBy(ctx context.Context, grants []auth.RoleGrant) ([]Franchise, error) {
	out := []Franchise{}
	for _, g := range grants {
		if g.Kind != auth.RoleFranchisee || g.Scope == "" {
			continue
		}
		f, err := s.repo.Franchise(ctx, g.Scope)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, err
		}
		out = append(out, *f)
	}
	return out, nil
}

func (s *Service) CreateStore(ctx context.Context, franchiseID, name string) (*Store, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if _, err := s.repo.Franchise(ctx, franchiseID); err != nil {
		return nil, err
	}
	st := &Store{ID: ids.New(), FranchiseID: franchiseID, Name: name}
	if err := s.repo.CreateStore(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *Service) DeleteStore(ctx context.Context, franchiseID, storeID string) error {
	return s.repo.DeleteStore(ctx, franchiseID, storeID)
}

// Orders ----------------------------------------------------------------------

func (s *Service) Orders(ctx context.Context, accountID string, limit, offset int) ([]Order, error) {
	return s.repo.OrdersFor(ctx, accountID, limit, offset)
}

// Place runs the order coordinator: Authorize, Validate, Persist(pending),
// Delegate, Reconcile. Strictly sequential; no step branches back. Once the
// persist step completes the order is durable regardless of the delegation
// outcome, so a failed factory call still leaves the order retrievable for
// manual reconciliation.
func (s *Service) Place(ctx context.Context, caller auth.Principal, req OrderRequest) (Receipt, error) {
	// Authorize: any authenticated account orders for itself only.
	if caller.ID == "" {
		return Receipt{}, auth.ErrUnauthenticated
	}

	// Validate: known franchise, store under that franchise, priced items.
	order, err := s.validate(ctx, caller.ID, req)
	if err != nil {
		obs.OrderPlaced("rejected")
		return Receipt{}, err
	}

	// Persist before contacting the factory; the record must survive a
	// failed delegation.
	if err := s.repo.CreateOrder(ctx, order); err != nil {
		return Receipt{}, err
	}

	// Delegate: single best-effort attempt, no locks held.
	result, err := s.delegate(ctx, caller, order)
	if err != nil {
		obs.OrderPlaced("failed")
		_ = obs.Event("order.fulfillment_failed", caller.ID, map[string]any{
			"order_id": order.ID,
			"report":   result.Report,
		})
		report := result.Report
		if report == "" {
			report = "order:" + order.ID
		}
		return Receipt{Order: *order}, &FulfillmentError{Report: report}
	}

	obs.OrderPlaced("fulfilled")
	_ = obs.Event("order.placed", caller.ID, map[string]any{
		"order_id": order.ID,
		"total":    order.Total,
	})
	return Receipt{Order: *order, FulfillmentToken: result.Token, Report: result.Report}, nil
}

func (s *Service) validate(ctx context.Context, accountID string, req OrderRequest) (*Order, error) {
	if strings.TrimSpace(req.FranchiseID) == "" {
		return nil, fmt.Errorf("%w: franchise_id is required", ErrValidation)
	}
	if strings.TrimSpace(req.StoreID) == "" {
		return nil, fmt.Errorf("%w: store_id is required", ErrValidation)
	}
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: at least one item is required", ErrValidation)
	}

	franchise, err := s.repo.Franchise(ctx, req.FranchiseID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown franchise", ErrValidation)
		}
		return nil, err
	}
	var store *Store
	for i := range franchise.Stores {
		if franchise.Stores[i].ID == req.StoreID {
			store = &franchise.Stores[i]
			break
		}
	}
	if store == nil {
		return nil, fmt.Errorf("%w: unknown store for franchise", ErrValidation)
	}

	menu, err := s.repo.Menu(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]MenuItem, len(menu))
	for _, m := range menu {
		byID[m.ID] = m
	}

	items := make([]OrderItem, 0, len(req.Items))
	var total int64
	for _, line := range req.Items {
		entry, ok := byID[line.MenuID]
		if !ok {
			return nil, fmt.Errorf("%w: unknown menu item %s", ErrValidation, line.MenuID)
		}
		items = append(items, OrderItem{MenuID: entry.ID, Description: entry.Title, Price: entry.Price})
		total += entry.Price
	}

	return &Order{
		ID:          ids.New(),
		AccountID:   accountID,
		FranchiseID: franchise.ID,
		StoreID:     store.ID,
		Items:       items,
		Total:       total,
		PlacedAt:    s.now().UTC(),
	}, nil
}

func (s *Service) delegate(ctx context.Context, caller auth.Principal, order *Order) (fulfillment.Result, error) {
	identity, err := s.signer.Issue(caller)
	if err != nil {
		return fulfillment.Result{}, err
	}
	items := make([]fulfillment.Item, len(order.Items))
	for i, it := range order.Items {
		items[i] = fulfillment.Item{MenuID: it.MenuID, Description: it.Description, Price: it.Price}
	}
	ticket := fulfillment.Ticket{
		Diner:    fulfillment.Diner{ID: caller.ID, Name: caller.Name, Email: caller.Email},
		Identity: identity,
		Order: fulfillment.Order{
			ID:          order.ID,
			FranchiseID: order.FranchiseID,
			StoreID:     order.StoreID,
			Items:       items,
			Total:       order.Total,
		},
	}
	start := time.Now()
	result, err := s.factory.Fulfill(ctx, ticket)
	if err != nil {
		obs.FulfillmentObserved("failure", time.Since(start))
		return result, err
	}
	obs.FulfillmentObserved("success", time.Since(start))
	return result, nil
}
