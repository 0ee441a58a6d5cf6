package repository

import (
	"context"
	"log/slog"

	"trailer-rental/internal/domain/user"
	"trailer-rental/internal/infra"
	"trailer-rental/internal/infra/db"
	"trailer-rental/internal/infra/repository/converter"
	"trailer-rental/internal/pkg/pgconv"

	"github.com/google/uuid"
)

const (
	selectUserSQL = `SELECT ` + converter.UserColumns + ` FROM users WHERE id = $1`

	upsertUserSQL = `
INSERT INTO users (
	id, first_name, last_name, email, phone, street, city, postal_code,
	tax_id, payment_customer_id, role, is_active
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
ON CONFLICT (id) DO UPDATE SET
	first_name = EXCLUDED.first_name,
	last_name = EXCLUDED.last_name,
	email = EXCLUDED.email,
	phone = EXCLUDED.phone,
	street = EXCLUDED.street,
	city = EXCLUDED.city,
	postal_code = EXCLUDED.postal_code,
	tax_id = EXCLUDED.tax_id,
	payment_customer_id = COALESCE(EXCLUDED.payment_customer_id, users.payment_customer_id),
	updated_at = now()`
)

type UserRepository struct {
	db     db.DBTX
	logger *slog.Logger
}

func NewUserRepository(dbtx db.DBTX, logger *slog.Logger) *UserRepository {
	return &UserRepository{
		db:     dbtx,
		logger: logger,
	}
}

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	row, err := converter.ScanUser(r.db.QueryRow(ctx, selectUserSQL, id))
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr(r.logger, infra.KindNotFound, "user not found", err)
		}
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to find user by ID", err)
	}

	u, err := converter.UserFromRow(row)
	if err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "invalid user row", err)
	}
	return u, nil
}

// Upsert never changes role or is_active of an existing profile and never
// clears a linked payment customer.
func (r *UserRepository) Upsert(ctx context.Context, u *user.User) error {
	args := append([]any{u.ID()}, converter.UserArgs(u)...)
	if _, err := r.db.Exec(ctx, upsertUserSQL, args...); err != nil {
		return infra.WrapRepoErr(r.logger, infra.ClassifyPgErr(err), "failed to upsert user", err)
	}
	return nil
}
