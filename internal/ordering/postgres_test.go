package ordering

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGCreateOrderWritesItemsInOneTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	placed := time.Now().UTC()
	mock.ExpectBegin()
	mock.ExpectExec("insert into orders").
		WithArgs("ord-1", "acc-1", "fr-1", "st-1", int64(8000), placed).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("insert into order_items").
		WithArgs("ord-1", "m-1", "Veggie", int64(3800)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("insert into order_items").
		WithArgs("ord-1", "m-2", "Pepperoni", int64(4200)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	repo := NewPGRepository(db)
	err = repo.CreateOrder(context.Background(), &Order{
		ID:          "ord-1",
		AccountID:   "acc-1",
		FranchiseID: "fr-1",
		StoreID:     "st-1",
		Items: []OrderItem{
			{MenuID: "m-1", Description: "Veggie", Price: 3800},
			{MenuID: "m-2", Description: "Pepperoni", Price: 4200},
		},
		Total:    8000,
		PlacedAt: placed,
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPGDeleteFranchiseNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("delete from franchises").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := NewPGRepository(db).DeleteFranchise(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPGOrdersForLoadsItems(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	placed := time.Now().UTC()
	mock.ExpectQuery("select id, account_id, franchise_id, store_id, total, placed_at").
		WithArgs("acc-1", 10, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "account_id", "franchise_id", "store_id", "total", "placed_at"}).
			AddRow("ord-1", "acc-1", "fr-1", "st-1", int64(3800), placed))
	mock.ExpectQuery("select menu_id, description, price from order_items").
		WithArgs("ord-1").
		WillReturnRows(sqlmock.NewRows([]string{"menu_id", "description", "price"}).
			AddRow("m-1", "Veggie", int64(3800)))

	orders, err := NewPGRepository(db).OrdersFor(context.Background(), "acc-1", 10, 0)
	if err != nil {
		t.Fatalf("OrdersFor: %v", err)
	}
	if len(orders) != 1 || len(orders[0].Items) != 1 || orders[0].Items[0].MenuID != "m-1" {
		t.Fatalf("items not loaded: %+v", orders)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
