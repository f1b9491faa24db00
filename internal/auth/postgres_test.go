package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestPGAccountsCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("insert into accounts").
		WithArgs("acc-1", "Kai", "kai@test.com", "hash").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("insert into role_grants").
		WithArgs("acc-1", "diner", "").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	store := NewPGStore(db)
	err = store.Accounts().Create(context.Background(), &Account{
		ID:         "acc-1",
		Name:       "Kai",
		Email:      "kai@test.com",
		SecretHash: "hash",
		Roles:      []RoleGrant{{Kind: RoleDiner}},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPGAccountsCreateDuplicateEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("insert into accounts").
		WillReturnError(&pgconn.PgError{Code: "23505"})
	mock.ExpectRollback()

	store := NewPGStore(db)
	err = store.Accounts().Create(context.Background(), &Account{
		ID: "acc-1", Name: "Kai", Email: "kai@test.com", SecretHash: "hash",
	})
	if !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPGAccountsFindLoadsGrants(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectQuery("select id, name, email, secret_hash, created_at, updated_at from accounts").
		WithArgs("acc-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "secret_hash", "created_at", "updated_at"}).
			AddRow("acc-1", "Kai", "kai@test.com", "hash", now, now))
	mock.ExpectQuery("select kind, scope from role_grants").
		WithArgs("acc-1").
		WillReturnRows(sqlmock.NewRows([]string{"kind", "scope"}).
			AddRow("diner", "").
			AddRow("franchisee", "fr-1"))

	account, err := NewPGStore(db).Accounts().Find(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(account.Roles) != 2 || account.Roles[1].Scope != "fr-1" {
		t.Fatalf("grants not loaded: %+v", account.Roles)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPGSessionsRecordAndCheck(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("insert into sessions").
		WithArgs("acc-1", "fp-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("select exists").
		WithArgs("fp-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectExec("delete from sessions").
		WithArgs("fp-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	sessions := NewPGStore(db).Sessions()
	ctx := context.Background()
	if err := sessions.Record(ctx, "acc-1", "fp-1"); err != nil {
		t.Fatalf("Record: %v", err)
	}
	active, err := sessions.IsActive(ctx, "fp-1")
	if err != nil || !active {
		t.Fatalf("IsActive: active=%v err=%v", active, err)
	}
	if err := sessions.Revoke(ctx, "fp-1"); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
