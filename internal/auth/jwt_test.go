package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/certdrive/realtime-gateway/internal/auth"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	tm := auth.NewTokenManager("test-secret-that-is-long-enough", time.Hour)

	token, err := tm.GenerateToken("drv_1001", "driver")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := tm.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "drv_1001", claims.UserID)
	assert.Equal(t, "driver", claims.Role)
	assert.Equal(t, "drv_1001", claims.Subject)
}

func TestTokenManager_ValidateToken(t *testing.T) {
	tm := auth.NewTokenManager("test-secret-that-is-long-enough", time.Hour)

	t.Run("rejects garbage", func(t *testing.T) {
		claims, err := tm.ValidateToken("not-a-token")
		assert.Error(t, err)
		assert.Nil(t, claims)
	})

	t.Run("rejects token signed with a different secret", func(t *testing.T) {
		other := auth.NewTokenManager("a-completely-different-secret!!", time.Hour)
		token, err := other.GenerateToken("emp_42", "employer")
		require.NoError(t, err)

		claims, err := tm.ValidateToken(token)
		assert.Error(t, err)
		assert.Nil(t, claims)
	})

	t.Run("rejects expired token", func(t *testing.T) {
		expired := auth.NewTokenManager("test-secret-that-is-long-enough", -time.Minute)
		token, err := expired.GenerateToken("drv_1001", "driver")
		require.NoError(t, err)

		claims, err := tm.ValidateToken(token)
		assert.Error(t, err)
		assert.Nil(t, claims)
	})
}
