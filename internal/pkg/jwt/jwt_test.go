//go:build unit

package jwt

import (
	"testing"
	"time"

	"trailer-rental/internal/domain/user"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_Authenticate(t *testing.T) {
	svc := NewService("secret", "idp", time.Hour)
	userID := uuid.New()

	token, err := svc.GenerateToken(userID, user.RoleAdmin)
	require.NoError(t, err)

	id, role, err := svc.Authenticate(token)
	require.NoError(t, err)
	assert.Equal(t, userID, id)
	assert.Equal(t, user.RoleAdmin, role)
}

func TestService_AuthenticateRejects(t *testing.T) {
	svc := NewService("secret", "idp", time.Hour)
	userID := uuid.New()

	sign := func(claims Claims, key string) string {
		s, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString([]byte(key))
		require.NoError(t, err)
		return s
	}
	valid := gojwt.RegisteredClaims{Issuer: "idp", ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Hour))}

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{name: "garbage", token: "not-a-jwt", wantErr: ErrInvalidToken},
		{name: "wrong key", token: sign(Claims{UserID: userID, Role: "user", RegisteredClaims: valid}, "other"), wantErr: ErrInvalidToken},
		{name: "expired", token: sign(Claims{UserID: userID, Role: "user", RegisteredClaims: gojwt.RegisteredClaims{
			Issuer: "idp", ExpiresAt: gojwt.NewNumericDate(time.Now().Add(-time.Minute)),
		}}, "secret"), wantErr: ErrExpiredToken},
		{name: "foreign issuer", token: sign(Claims{UserID: userID, Role: "user", RegisteredClaims: gojwt.RegisteredClaims{
			Issuer: "elsewhere", ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Hour)),
		}}, "secret"), wantErr: ErrInvalidToken},
		{name: "unknown role", token: sign(Claims{UserID: userID, Role: "operator", RegisteredClaims: valid}, "secret"), wantErr: ErrInvalidToken},
		{name: "missing subject", token: sign(Claims{Role: "user", RegisteredClaims: valid}, "secret"), wantErr: ErrInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Authenticate(tt.token)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
