package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/musicstore/storefront/internal/config"
	"github.com/musicstore/storefront/internal/pkg/auth"
	"github.com/stretchr/testify/require"
)

// AccessToken signs an access token the way the account service issues them
func AccessToken(t *testing.T, cfg *config.Config, userID uint, email string, isAdmin bool) string {
	t.Helper()

	now := time.Now().UTC()
	claims := &auth.Claims{
		UserID:    userID,
		Email:     email,
		IsAdmin:   isAdmin,
		TokenType: "access",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.JWT.AccessTokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    cfg.App.Name,
			Subject:   fmt.Sprintf("user:%d", userID),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWT.Secret))
	require.NoError(t, err)
	return token
}
