package ordering

import (
	"context"
	"sync"
	"time"
)

var _ Repository = (*InMemory)(nil)

// InMemory implements Repository with in-process concurrency safety. It
// backs handler tests and local development without Postgres.
type InMemory struct {
	mu         sync.RWMutex
	franchises map[string]*Franchise
	order      []string // franchise insertion order
	menu       []MenuItem
	orders     map[string][]Order // account id -> orders, newest first
}

// NewInMemory creates an empty repository.
func NewInMemory() *InMemory {
	return &InMemory{
		franchises: make(map[string]*Franchise),
		orders:     make(map[string][]Order),
	}
}

func (r *InMemory) CreateFranchise(ctx context.Context, f *Franchise) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	stored := *f
	stored.CreatedAt = now
	stored.UpdatedAt = now
	stored.Stores = []Store{}
	r.franchises[f.ID] = &stored
	r.order = append(r.order, f.ID)
	f.CreatedAt = now
	f.UpdatedAt = now
	return nil
}

func (r *InMemory) Franchise(ctx context.Context, id string) (*Franchise, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.franchises[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneFranchise(f), nil
}

func (r *InMemory) ListFranchises(ctx context.Context, limit, offset int) ([]Franchise, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []Franchise{}
	for i := offset; i < len(r.order) && len(out) < limit; i++ {
		out = append(out, *cloneFranchise(r.franchises[r.order[i]]))
	}
	return out, nil
}

func (r *InMemory) DeleteFranchise(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.franchises[id]; !ok {
		return ErrNotFound
	}
	delete(r.franchises, id)
	for i, fid := range r.order {
		if fid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *InMemory) CreateStore(ctx context.Context, st *Store) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.franchises[st.FranchiseID]
	if !ok {
		return ErrNotFound
	}
	st.CreatedAt = time.Now().UTC()
	f.Stores = append(f.Stores, *st)
	return nil
}

func (r *InMemory) DeleteStore(ctx context.Context, franchiseID, storeID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.franchises[franchiseID]
	if !ok {
		return ErrNotFound
	}
	for i, st := range f.Stores {
		if st.ID == storeID {
			f.Stores = append(f.Stores[:i], f.Stores[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (r *InMemory) Menu(ctx context.Context) ([]MenuItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]MenuItem, len(r.menu))
	copy(out, r.menu)
	return out, nil
}

func (r *InMemory) AddMenuItem(ctx context.Context, item *MenuItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	item.CreatedAt = time.Now().UTC()
	r.menu = append(r.menu, *item)
	return nil
}

func (r *InMemory) CreateOrder(ctx context.Context, o *Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *o
	stored.Items = make([]OrderItem, len(o.Items))
	copy(stored.Items, o.Items)
	r.orders[o.AccountID] = append([]Order{stored}, r.orders[o.AccountID]...)
	return nil
}

func (r *InMemory) OrdersFor(ctx context.Context, accountID string, limit, offset int) ([]Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := r.orders[accountID]
	out := []Order{}
	for i := offset; i < len(all) && len(out) < limit; i++ {
		out = append(out, all[i])
	}
	return out, nil
}

func cloneFranchise(f *Franchise) *Franchise {
	out := *f
	out.Stores = make([]Store, len(f.Stores))
	copy(out.Stores, f.Stores)
	return &out
}
