package ordering

import (
	"context"
	"database/sql"
	"errors"
)

var _ Repository = (*PGRepository)(nil)

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	db *sql.DB
}

func NewPGRepository(db *sql.DB) *PGRepository {
	return &PGRepository{db: db}
}

// Franchises ------------------------------------------------------------------

func (r *PGRepository) CreateFranchise(ctx context.Context, f *Franchise) error {
	return r.db.QueryRowContext(ctx,
		`insert into franchises(id, name) values($1,$2) returning created_at, updated_at`,
		f.ID, f.Name,
	).Scan(&f.CreatedAt, &f.UpdatedAt)
}

func (r *PGRepository) Franchise(ctx context.Context, id string) (*Franchise, error) {
	row := r.db.QueryRowContext(ctx,
		`select id, name, created_at, updated_at from franchises where id=$1`, id)
	var f Franchise
	if err := row.Scan(&f.ID, &f.Name, &f.CreatedAt, &f.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	stores, err := r.stores(ctx, f.ID)
	if err != nil {
		return nil, err
	}
	f.Stores = stores
	return &f, nil
}

func (r *PGRepository) ListFranchises(ctx context.Context, limit, offset int) ([]Franchise, error) {
	rows, err := r.db.QueryContext(ctx,
		`select id, name, created_at, updated_at from franchises order by created_at asc limit $1 offset $2`,
		limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	franchises := []Franchise{}
	for rows.Next() {
		var f Franchise
		if err := rows.Scan(&f.ID, &f.Name, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, err
		}
		franchises = append(franchises, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range franchises {
		stores, err := r.stores(ctx, franchises[i].ID)
		if err != nil {
			return nil, err
		}
		franchises[i].Stores = stores
	}
	return franchises, nil
}

func (r *PGRepository) DeleteFranchise(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `delete from franchises where id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepository) stores(ctx context.Context, franchiseID string) ([]Store, error) {
	rows, err := r.db.QueryContext(ctx,
		`select id, franchise_id, name, created_at from stores where franchise_id=$1 order by created_at`,
		franchiseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stores := []Store{}
	for rows.Next() {
		var st Store
		if err := rows.Scan(&st.ID, &st.FranchiseID, &st.Name, &st.CreatedAt); err != nil {
			return nil, err
		}
		stores = append(stores, st)
	}
	return stores, rows.Err()
}

// Stores ------------------------------------------------------------------------

func (r *PGRepository) CreateStore(ctx context.Context, st *Store) error {
	return r.db.QueryRowContext(ctx,
		`insert into stores(id, franchise_id, name) values($1,$2,$3) returning created_at`,
		st.ID, st.FranchiseID, st.Name,
	).Scan(&st.CreatedAt)
}

func (r *PGRepository) DeleteStore(ctx context.Context, franchiseID, storeID string) error {
	res, err := r.db.ExecContext(ctx,
		`delete from stores where id=$1 and franchise_id=$2`, storeID, franchiseID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Menu ---------------------------------------------------------------------------

func (r *PGRepository) Menu(ctx context.Context) ([]MenuItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`select id, title, description, image, price, created_at from menu_items order by created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []MenuItem{}
	for rows.Next() {
		var m MenuItem
		if err := rows.Scan(&m.ID, &m.Title, &m.Description, &m.Image, &m.Price, &m.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

func (r *PGRepository) AddMenuItem(ctx context.Context, item *MenuItem) error {
	return r.db.QueryRowContext(ctx,
		`insert into menu_items(id, title, description, image, price) values($1,$2,$3,$4,$5) returning created_at`,
		item.ID, item.Title, item.Description, item.Image, item.Price,
	).Scan(&item.CreatedAt)
}

// Orders --------------------------------------------------------------------------

func (r *PGRepository) CreateOrder(ctx context.Context, o *Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`insert into orders(id, account_id, franchise_id, store_id, total, placed_at) values($1,$2,$3,$4,$5,$6)`,
		o.ID, o.AccountID, o.FranchiseID, o.StoreID, o.Total, o.PlacedAt,
	); err != nil {
		return err
	}
	for _, item := range o.Items {
		if _, err := tx.ExecContext(ctx,
			`insert into order_items(order_id, menu_id, description, price) values($1,$2,$3,$4)`,
			o.ID, item.MenuID, item.Description, item.Price,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *PGRepository) OrdersFor(ctx context.Context, accountID string, limit, offset int) ([]Order, error) {
	rows, err := r.db.QueryContext(ctx,
		`select id, account_id, franchise_id, store_id, total, placed_at
		   from orders where account_id=$1 order by placed_at desc limit $2 offset $3`,
		accountID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []Order{}
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.AccountID, &o.FranchiseID, &o.StoreID, &o.Total, &o.PlacedAt); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range orders {
		items, err := r.orderItems(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}
	return orders, nil
}

func (r *PGRepository) orderItems(ctx context.Context, orderID string) ([]OrderItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`select menu_id, description, price from order_items where order_id=$1`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []OrderItem{}
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.MenuID, &it.Description, &it.Price); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
