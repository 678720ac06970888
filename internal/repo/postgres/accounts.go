package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okoro-dev/realtyhub/internal/domain/account"
	"github.com/okoro-dev/realtyhub/internal/observability"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrEmailTaken      = errors.New("email already registered")
)

type AccountsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewAccountsRepo(pool *pgxpool.Pool, prom *observability.Prom) *AccountsRepo {
	return &AccountsRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *AccountsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *AccountsRepo) GetByEmail(ctx context.Context, email string) (account.Account, error) {
	var a account.Account

	err := r.observe("accounts.get_by_email", func() error {
		return r.pool.QueryRow(
			ctx,
			`SELECT id, email, password_hash, name, phone, role, created_at, updated_at
			 FROM accounts
			 WHERE email = $1`,
			email,
		).Scan(
			&a.ID,
			&a.Email,
			&a.PasswordHash,
			&a.Name,
			&a.Phone,
			&a.Role,
			&a.CreatedAt,
			&a.UpdatedAt,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return account.Account{}, ErrAccountNotFound
		}

		return account.Account{}, err
	}
	return a, nil
}

func (r *AccountsRepo) GetByID(ctx context.Context, id string) (account.Account, error) {
	var a account.Account

	err := r.observe("accounts.get_by_id", func() error {
		return r.pool.QueryRow(
			ctx,
			`SELECT id, email, password_hash, name, phone, role, created_at, updated_at
			 FROM accounts
			 WHERE id = $1`,
			id,
		).Scan(
			&a.ID,
			&a.Email,
			&a.PasswordHash,
			&a.Name,
			&a.Phone,
			&a.Role,
			&a.CreatedAt,
			&a.UpdatedAt,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return account.Account{}, ErrAccountNotFound
		}

		return account.Account{}, err
	}
	return a, nil
}

// Create inserts a new account. Email uniqueness is enforced by the
// accounts_email_uniq constraint, so a racing duplicate create loses at
// the database and surfaces here as ErrEmailTaken.
func (r *AccountsRepo) Create(ctx context.Context, email, passwordHash, name, phone string, role account.Role) (account.Account, error) {
	now := time.Now().UTC()

	a := account.Account{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		Name:         name,
		Phone:        phone,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := r.observe("accounts.create", func() error {
		_, e := r.pool.Exec(ctx,
			`INSERT INTO accounts (id, email, password_hash, name, phone, role, created_at, updated_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			a.ID, a.Email, a.PasswordHash, a.Name, a.Phone, a.Role, a.CreatedAt, a.UpdatedAt,
		)
		return e
	})

	if err != nil {
		var pgErr *pgconn.PgError

		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return account.Account{}, ErrEmailTaken
		}

		return account.Account{}, err
	}

	return a, nil
}
