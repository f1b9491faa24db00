package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

var _ Store = (*PGStore)(nil)

// PGStore implements Store using PostgreSQL.
type PGStore struct {
	db *sql.DB
}

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) Accounts() AccountStore { return &pgAccounts{db: s.db} }
func (s *PGStore) Sessions() SessionStore { return &pgSessions{db: s.db} }

// Account store -------------------------------------------------------------

type pgAccounts struct{ db *sql.DB }

func (s *pgAccounts) Create(ctx context.Context, a *Account) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`insert into accounts(id, name, email, secret_hash) values($1,$2,$3,$4)`,
		a.ID, a.Name, a.Email, a.SecretHash,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: email already registered", ErrAlreadyExists)
		}
		return err
	}
	for _, g := range a.Roles {
		if _, err := tx.ExecContext(ctx,
			`insert into role_grants(account_id, kind, scope) values($1,$2,$3) on conflict do nothing`,
			a.ID, string(g.Kind), g.Scope,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *pgAccounts) Find(ctx context.Context, id string) (*Account, error) {
	return s.findBy(ctx, `id=$1`, id)
}

func (s *pgAccounts) FindByEmail(ctx context.Context, email string) (*Account, error) {
	return s.findBy(ctx, `lower(email)=lower($1)`, email)
}

func (s *pgAccounts) findBy(ctx context.Context, where, arg string) (*Account, error) {
	row := s.db.QueryRowContext(ctx,
		`select id, name, email, secret_hash, created_at, updated_at from accounts where `+where, arg)
	var a Account
	if err := row.Scan(&a.ID, &a.Name, &a.Email, &a.SecretHash, &a.CreatedAt, &a.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	grants, err := s.grants(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	a.Roles = grants
	return &a, nil
}

func (s *pgAccounts) grants(ctx context.Context, accountID string) ([]RoleGrant, error) {
	rows, err := s.db.QueryContext(ctx,
		`select kind, scope from role_grants where account_id=$1 order by created_at`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var grants []RoleGrant
	for rows.Next() {
		var kind, scope string
		if err := rows.Scan(&kind, &scope); err != nil {
			return nil, err
		}
		grants = append(grants, RoleGrant{Kind: RoleKind(kind), Scope: scope})
	}
	return grants, rows.Err()
}

func (s *pgAccounts) Update(ctx context.Context, id string, upd AccountUpdate) (*Account, error) {
	row := s.db.QueryRowContext(ctx,
		`update accounts
		    set name = coalesce($2, name),
		        email = coalesce($3, email),
		        secret_hash = coalesce($4, secret_hash),
		        updated_at = now()
		  where id = $1
		  returning id, name, email, secret_hash, created_at, updated_at`,
		id, upd.Name, upd.Email, upd.SecretHash,
	)
	var a Account
	if err := row.Scan(&a.ID, &a.Name, &a.Email, &a.SecretHash, &a.CreatedAt, &a.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: email already registered", ErrAlreadyExists)
		}
		return nil, err
	}
	grants, err := s.grants(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	a.Roles = grants
	return &a, nil
}

// Session registry -----------------------------------------------------------

type pgSessions struct{ db *sql.DB }

func (s *pgSessions) Record(ctx context.Context, accountID, fingerprint string) error {
	_, err := s.db.ExecContext(ctx,
		`insert into sessions(account_id, fingerprint) values($1,$2)
		 on conflict (account_id) do update set fingerprint=excluded.fingerprint, created_at=now()`,
		accountID, fingerprint,
	)
	return err
}

func (s *pgSessions) IsActive(ctx context.Context, fingerprint string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`select exists(select 1 from sessions where fingerprint=$1)`, fingerprint,
	).Scan(&exists)
	return exists, err
}

func (s *pgSessions) Revoke(ctx context.Context, fingerprint string) error {
	_, err := s.db.ExecContext(ctx, `delete from sessions where fingerprint=$1`, fingerprint)
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
