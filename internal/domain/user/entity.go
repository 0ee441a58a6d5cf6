package user

import (
	"time"

	"github.com/google/uuid"
)

// User is the renter profile. The identity itself lives in the external
// identity provider; id is the provider's subject.
type User struct {
	id                uuid.UUID
	name              Name
	email             Email
	phone             Phone
	address           Address
	taxID             *TaxID
	paymentCustomerID string
	role              Role
	isActive          bool
	createdAt         time.Time
	updatedAt         time.Time
}

func NewUser(id uuid.UUID, name Name, email Email, phone Phone, address Address, taxID *TaxID, role Role) *User {
	return &User{
		id:       id,
		name:     name,
		email:    email,
		phone:    phone,
		address:  address,
		taxID:    taxID,
		role:     role,
		isActive: true,
	}
}

func ReconstructUser(
	id uuid.UUID,
	name Name,
	email Email,
	phone Phone,
	address Address,
	taxID *TaxID,
	paymentCustomerID string,
	role Role,
	isActive bool,
	createdAt, updatedAt time.Time,
) *User {
	return &User{
		id:                id,
		name:              name,
		email:             email,
		phone:             phone,
		address:           address,
		taxID:             taxID,
		paymentCustomerID: paymentCustomerID,
		role:              role,
		isActive:          isActive,
		createdAt:         createdAt,
		updatedAt:         updatedAt,
	}
}

// UpdateProfile replaces the contact details; the payment customer link is kept.
func (u *User) UpdateProfile(name Name, email Email, phone Phone, address Address, taxID *TaxID) {
	u.name = name
	u.email = email
	u.phone = phone
	u.address = address
	u.taxID = taxID
}

func (u *User) LinkPaymentCustomer(customerID string) {
	u.paymentCustomerID = customerID
}

func (u *User) HasPaymentCustomer() bool {
	return u.paymentCustomerID != ""
}

func (u *User) ID() uuid.UUID             { return u.id }
func (u *User) Name() Name                { return u.name }
func (u *User) Email() Email              { return u.email }
func (u *User) Phone() Phone              { return u.phone }
func (u *User) Address() Address          { return u.address }
func (u *User) TaxID() *TaxID             { return u.taxID }
func (u *User) PaymentCustomerID() string { return u.paymentCustomerID }
func (u *User) Role() Role                { return u.role }
func (u *User) IsActive() bool            { return u.isActive }
func (u *User) CreatedAt() time.Time      { return u.createdAt }
func (u *User) UpdatedAt() time.Time      { return u.updatedAt }
