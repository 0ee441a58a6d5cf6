package converter

import (
	"trailer-rental/internal/domain/user"
	"trailer-rental/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const UserColumns = `id, first_name, last_name, email, phone, street, city, postal_code,
	tax_id, payment_customer_id, role, is_active, created_at, updated_at`

type UserRow struct {
	ID                uuid.UUID
	FirstName         string
	LastName          string
	Email             string
	Phone             string
	Street            string
	City              string
	PostalCode        string
	TaxID             pgtype.Text
	PaymentCustomerID pgtype.Text
	Role              string
	IsActive          bool
	CreatedAt         pgtype.Timestamptz
	UpdatedAt         pgtype.Timestamptz
}

func ScanUser(row pgx.Row) (UserRow, error) {
	var u UserRow
	err := row.Scan(
		&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Phone, &u.Street, &u.City, &u.PostalCode,
		&u.TaxID, &u.PaymentCustomerID, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
	)
	return u, err
}

func UserFromRow(r UserRow) (*user.User, error) {
	name, err := user.NewName(r.FirstName, r.LastName)
	if err != nil {
		return nil, err
	}
	email, err := user.NewEmail(r.Email)
	if err != nil {
		return nil, err
	}
	phone, err := user.NewPhone(r.Phone)
	if err != nil {
		return nil, err
	}
	address, err := user.NewAddress(r.Street, r.City, r.PostalCode)
	if err != nil {
		return nil, err
	}
	taxID, err := user.NewOptionalTaxID(pgconv.StringPtrFromPgtype(r.TaxID))
	if err != nil {
		return nil, err
	}
	role, err := user.NewRole(r.Role)
	if err != nil {
		return nil, err
	}

	return user.ReconstructUser(
		r.ID, name, email, phone, address, taxID,
		pgconv.StringFromPgtype(r.PaymentCustomerID), role, r.IsActive,
		pgconv.TimeFromPgtype(r.CreatedAt), pgconv.TimeFromPgtype(r.UpdatedAt),
	), nil
}

// UserArgs returns the mutable columns in UserColumns order, after id.
func UserArgs(u *user.User) []any {
	var taxID *string
	if t := u.TaxID(); t != nil {
		s := t.String()
		taxID = &s
	}
	return []any{
		u.Name().First(), u.Name().Last(), u.Email().Value(), u.Phone().String(),
		u.Address().Street(), u.Address().City(), u.Address().PostalCode(),
		pgconv.StringPtrToPgtype(taxID), pgconv.StringToPgtype(u.PaymentCustomerID()),
		u.Role().String(), u.IsActive(),
	}
}
