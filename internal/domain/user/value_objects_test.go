package user_test

import (
	"testing"

	"trailer-rental/internal/domain/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTaxID(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
		errIs error
	}{
		{name: "valid checksum", input: "25596641", want: "25596641"},
		{name: "remainder zero maps to check digit one", input: "00006947", want: "00006947"},
		{name: "spaces are ignored", input: "270 82 440", want: "27082440"},
		{name: "wrong check digit", input: "25596642", errIs: user.ErrInvalidTaxID},
		{name: "too short", input: "1234567", errIs: user.ErrInvalidTaxID},
		{name: "empty", input: "", errIs: user.ErrInvalidTaxID},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := user.NewTaxID(c.input)
			if c.errIs != nil {
				require.ErrorIs(t, err, c.errIs)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, c.want, got.String())
		})
	}
}

func TestNewOptionalTaxID(t *testing.T) {
	got, err := user.NewOptionalTaxID(nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	blank := "  "
	got, err = user.NewOptionalTaxID(&blank)
	require.NoError(t, err)
	assert.Nil(t, got)

	bad := "11111111"
	_, err = user.NewOptionalTaxID(&bad)
	assert.ErrorIs(t, err, user.ErrInvalidTaxID)
}

func TestNewPhone(t *testing.T) {
	p, err := user.NewPhone("777 123 456")
	require.NoError(t, err)
	assert.Equal(t, "+420777123456", p.String())

	p, err = user.NewPhone("+420 777 123 456")
	require.NoError(t, err)
	assert.Equal(t, "+420777123456", p.String())

	_, err = user.NewPhone("12345")
	assert.ErrorIs(t, err, user.ErrInvalidPhone)
}

func TestNewAddress(t *testing.T) {
	a, err := user.NewAddress("Vinohradská 12", "Praha", "120 00")
	require.NoError(t, err)
	assert.Equal(t, "12000", a.PostalCode())

	_, err = user.NewAddress("Vinohradská 12", "Praha", "01234")
	assert.ErrorIs(t, err, user.ErrInvalidPostalCode)

	_, err = user.NewAddress("V", "Praha", "12000")
	assert.ErrorIs(t, err, user.ErrInvalidAddress)
}

func TestNewName(t *testing.T) {
	n, err := user.NewName("Jiří", "Dvořák-Nováková")
	require.NoError(t, err)
	assert.Equal(t, "Jiří Dvořák-Nováková", n.Full())

	_, err = user.NewName("J", "Novák")
	assert.ErrorIs(t, err, user.ErrInvalidName)

	_, err = user.NewName("Jan", "N0vák")
	assert.ErrorIs(t, err, user.ErrInvalidName)
}

func TestRole(t *testing.T) {
	r, err := user.NewRole("admin")
	require.NoError(t, err)
	assert.Equal(t, user.RoleAdmin, r)

	_, err = user.NewRole("operator")
	assert.ErrorIs(t, err, user.ErrInvalidRole)
}
