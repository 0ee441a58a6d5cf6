//go:build unit

package commands

import (
	"context"
	"errors"
	"testing"

	"trailer-rental/internal/domain/payment"
	"trailer-rental/internal/domain/user"
	"trailer-rental/internal/pkg/errs"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func profileInput() UpsertProfileInput {
	return UpsertProfileInput{
		FirstName:  "Petr",
		LastName:   "Svoboda",
		Email:      "petr@example.cz",
		Phone:      "+420 777 123 456",
		Street:     "Dlouhá 10",
		City:       "Brno",
		PostalCode: "602 00",
	}
}

func TestProfileCommands_Upsert(t *testing.T) {
	t.Run("new renter is registered with the processor", func(t *testing.T) {
		f := newFixture(t)
		userID := uuid.New()
		f.processor.EXPECT().CreateCustomer(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, p payment.CustomerProfile) (string, error) {
				want := payment.CustomerProfile{
					UserID:     userID,
					Name:       "Petr Svoboda",
					Email:      "petr@example.cz",
					Phone:      "+420777123456",
					Street:     "Dlouhá 10",
					City:       "Brno",
					PostalCode: "60200",
					Country:    "CZ",
				}
				if diff := cmp.Diff(want, p); diff != "" {
					t.Errorf("customer profile mismatch (-want +got):\n%s", diff)
				}
				return "cus_new", nil
			})

		err := NewProfileCommands(f.uow, f.processor, f.logger).Upsert(context.Background(), userID, profileInput())

		require.NoError(t, err)
		stored := f.uow.user(userID)
		require.NotNil(t, stored)
		assert.Equal(t, "cus_new", stored.PaymentCustomerID())
		assert.Equal(t, user.RoleRenter, stored.Role())
	})

	t.Run("existing customer is kept", func(t *testing.T) {
		f := newFixture(t)
		existing := f.seedRenter(t, "cus_1")
		taxID := validTaxID
		in := profileInput()
		in.CompanyTaxID = &taxID

		err := NewProfileCommands(f.uow, f.processor, f.logger).Upsert(context.Background(), existing.ID(), in)

		require.NoError(t, err)
		stored := f.uow.user(existing.ID())
		assert.Equal(t, "cus_1", stored.PaymentCustomerID())
		assert.Equal(t, "Petr Svoboda", stored.Name().Full())
		require.NotNil(t, stored.TaxID())
		assert.Equal(t, validTaxID, stored.TaxID().String())
	})

	t.Run("processor failure keeps the profile", func(t *testing.T) {
		f := newFixture(t)
		userID := uuid.New()
		f.processor.EXPECT().CreateCustomer(gomock.Any(), gomock.Any()).Return("", errors.New("rate limited"))

		err := NewProfileCommands(f.uow, f.processor, f.logger).Upsert(context.Background(), userID, profileInput())

		assert.True(t, errs.Is(err, ErrCustomerCreation))
		assert.True(t, errs.Is(err, errs.ErrExternalService))
		stored := f.uow.user(userID)
		require.NotNil(t, stored)
		assert.False(t, stored.HasPaymentCustomer())
	})

	t.Run("invalid fields", func(t *testing.T) {
		tests := []struct {
			name    string
			mutate  func(in *UpsertProfileInput)
			wantErr error
		}{
			{name: "email", mutate: func(in *UpsertProfileInput) { in.Email = "nope" }, wantErr: user.ErrInvalidEmail},
			{name: "phone", mutate: func(in *UpsertProfileInput) { in.Phone = "12" }, wantErr: user.ErrInvalidPhone},
			{name: "postal code", mutate: func(in *UpsertProfileInput) { in.PostalCode = "01234" }, wantErr: user.ErrInvalidPostalCode},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				f := newFixture(t)
				in := profileInput()
				tt.mutate(&in)

				err := NewProfileCommands(f.uow, f.processor, f.logger).Upsert(context.Background(), uuid.New(), in)

				assert.ErrorIs(t, err, tt.wantErr)
				assert.True(t, errs.Is(err, errs.ErrValidation))
				assert.Empty(t, f.uow.st.users)
			})
		}
	})
}
