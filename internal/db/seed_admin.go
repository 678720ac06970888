package db

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okoro-dev/realtyhub/internal/config"
	"github.com/okoro-dev/realtyhub/internal/domain/account"
	"github.com/okoro-dev/realtyhub/internal/security"
)

// EnsureAdminAccount seeds the configured admin on startup. The admin
// is the bootstrap for invitation issuance: without one, nobody can
// mint the keys that privileged signup requires.
func EnsureAdminAccount(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	// check if the account exists

	var dummy string

	err := pool.QueryRow(ctx, `SELECT id FROM accounts WHERE email = $1`, cfg.AdminEmail).Scan(&dummy)

	if err == nil {
		return nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := security.HashPassword(cfg.AdminPassword)

	if err != nil {
		return err
	}

	now := time.Now().UTC()

	a := account.Account{
		ID:           uuid.NewString(),
		Email:        cfg.AdminEmail,
		PasswordHash: hash,
		Name:         cfg.AdminName,
		Phone:        "",
		Role:         account.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// replicas starting together race this insert; whoever loses the
	// unique constraint finds the admin already seeded
	_, err = pool.Exec(ctx,
		`INSERT INTO accounts (id, email, password_hash, name, phone, role, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (email) DO NOTHING
		`,
		a.ID, a.Email, a.PasswordHash, a.Name, a.Phone, a.Role, a.CreatedAt, a.UpdatedAt,
	)

	return err
}
