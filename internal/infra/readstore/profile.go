package readstore

import (
	"context"
	"log/slog"

	"trailer-rental/internal/infra"
	"trailer-rental/internal/infra/db"
	"trailer-rental/internal/pkg/pgconv"
	"trailer-rental/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const getProfileSQL = `
SELECT id, first_name, last_name, email, phone, street, city, postal_code, tax_id,
       payment_customer_id IS NOT NULL, role, is_active, created_at
FROM users
WHERE id = $1`

type ProfileReadStore struct {
	db     db.DBTX
	logger *slog.Logger
}

func NewProfileReadStore(dbtx db.DBTX, logger *slog.Logger) *ProfileReadStore {
	return &ProfileReadStore{
		db:     dbtx,
		logger: logger,
	}
}

func (r *ProfileReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.ProfileView, error) {
	var (
		v         queries.ProfileView
		taxID     pgtype.Text
		createdAt pgtype.Timestamptz
	)
	err := r.db.QueryRow(ctx, getProfileSQL, id).Scan(
		&v.ID, &v.FirstName, &v.LastName, &v.Email, &v.Phone, &v.Street, &v.City, &v.PostalCode, &taxID,
		&v.HasPaymentCustomer, &v.Role, &v.IsActive, &createdAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr(r.logger, infra.KindNotFound, "profile not found", err)
		}
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to find profile", err)
	}
	v.TaxID = pgconv.StringPtrFromPgtype(taxID)
	v.CreatedAt = pgconv.TimeFromPgtype(createdAt)
	return &v, nil
}
