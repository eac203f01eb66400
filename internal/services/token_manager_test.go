package services

import (
	"testing"
	"time"

	"github.com/SAP-F-2025/survey-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager(t *testing.T) {
	admin := &models.Admin{ID: 7, UserName: "root", Role: models.RoleAdmin}
	tokens := NewTokenManager("access-secret", "refresh-secret", 15*time.Minute, 24*time.Hour)

	t.Run("access token round trip", func(t *testing.T) {
		token, err := tokens.IssueAccessToken(admin)
		require.NoError(t, err)

		claims, err := tokens.ParseAccessToken(token)
		require.NoError(t, err)
		assert.Equal(t, uint(7), claims.AdminID)
		assert.Equal(t, "root", claims.UserName)
		assert.Equal(t, models.RoleAdmin, claims.Role)
		assert.Equal(t, "7", claims.Subject)
		assert.NotEmpty(t, claims.ID)
	})

	t.Run("tokens are not interchangeable", func(t *testing.T) {
		access, err := tokens.IssueAccessToken(admin)
		require.NoError(t, err)
		refresh, err := tokens.IssueRefreshToken(admin)
		require.NoError(t, err)

		_, err = tokens.ParseRefreshToken(access)
		assert.ErrorIs(t, err, ErrInvalidToken)
		_, err = tokens.ParseAccessToken(refresh)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("each issue is unique", func(t *testing.T) {
		first, err := tokens.IssueRefreshToken(admin)
		require.NoError(t, err)
		second, err := tokens.IssueRefreshToken(admin)
		require.NoError(t, err)
		assert.NotEqual(t, first, second)
	})

	t.Run("expired tokens are rejected", func(t *testing.T) {
		expiring := NewTokenManager("a", "r", time.Minute, time.Minute)
		issuedAt := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		expiring.now = func() time.Time { return issuedAt }

		token, err := expiring.IssueAccessToken(admin)
		require.NoError(t, err)

		expiring.now = func() time.Time { return issuedAt.Add(2 * time.Minute) }
		_, err = expiring.ParseAccessToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage is rejected", func(t *testing.T) {
		_, err := tokens.ParseAccessToken("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
