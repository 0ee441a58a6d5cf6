package commands

import (
	"context"
	"log/slog"

	"trailer-rental/internal/domain/payment"
	"trailer-rental/internal/domain/user"
	"trailer-rental/internal/infra"
	"trailer-rental/internal/pkg/errs"
	"trailer-rental/internal/usecase/shared"

	"github.com/google/uuid"
)

// customers are invoiced in the Czech Republic
const customerCountry = "CZ"

type UpsertProfileInput struct {
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	Street       string
	City         string
	PostalCode   string
	CompanyTaxID *string
}

type ProfileCommands interface {
	// Upsert stores the renter profile and registers the renter with the
	// payment processor the first time.
	Upsert(ctx context.Context, userID uuid.UUID, in UpsertProfileInput) error
}

type profileCommands struct {
	uow       shared.UnitOfWork
	processor PaymentProcessor
	logger    *slog.Logger
}

func NewProfileCommands(uow shared.UnitOfWork, processor PaymentProcessor, logger *slog.Logger) ProfileCommands {
	return &profileCommands{uow: uow, processor: processor, logger: logger}
}

type profileFields struct {
	name    user.Name
	email   user.Email
	phone   user.Phone
	address user.Address
	taxID   *user.TaxID
}

func (c *profileCommands) Upsert(ctx context.Context, userID uuid.UUID, in UpsertProfileInput) error {
	f, err := parseProfile(in)
	if err != nil {
		return err
	}

	var u *user.User
	err = c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		existing, err := tx.Users().FindByID(ctx, userID)
		switch {
		case err == nil:
			if !existing.IsActive() {
				return ErrUserInactive
			}
			existing.UpdateProfile(f.name, f.email, f.phone, f.address, f.taxID)
			u = existing
		case infra.IsKind(err, infra.KindNotFound):
			u = user.NewUser(userID, f.name, f.email, f.phone, f.address, f.taxID, user.RoleRenter)
		default:
			return err
		}
		return tx.Users().Upsert(ctx, u)
	})
	if err != nil {
		return errs.Wrap(err, "save profile")
	}

	if u.HasPaymentCustomer() {
		return nil
	}
	customerID, err := c.processor.CreateCustomer(ctx, payment.CustomerProfile{
		UserID:     u.ID(),
		Name:       u.Name().Full(),
		Email:      u.Email().Value(),
		Phone:      u.Phone().String(),
		Street:     u.Address().Street(),
		City:       u.Address().City(),
		PostalCode: u.Address().PostalCode(),
		Country:    customerCountry,
	})
	if err != nil {
		c.logger.WarnContext(ctx, "payment customer creation failed",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return errs.Mark(errs.Wrap(err, "create payment customer"), ErrCustomerCreation)
	}

	u.LinkPaymentCustomer(customerID)
	err = c.uow.WithDB(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Users().Upsert(ctx, u)
	})
	if err != nil {
		return errs.Wrap(err, "link payment customer")
	}
	return nil
}

func parseProfile(in UpsertProfileInput) (profileFields, error) {
	var (
		f   profileFields
		err error
	)
	if f.name, err = user.NewName(in.FirstName, in.LastName); err != nil {
		return f, domainErr(err)
	}
	if f.email, err = user.NewEmail(in.Email); err != nil {
		return f, domainErr(err)
	}
	if f.phone, err = user.NewPhone(in.Phone); err != nil {
		return f, domainErr(err)
	}
	if f.address, err = user.NewAddress(in.Street, in.City, in.PostalCode); err != nil {
		return f, domainErr(err)
	}
	if f.taxID, err = user.NewOptionalTaxID(in.CompanyTaxID); err != nil {
		return f, domainErr(err)
	}
	return f, nil
}
