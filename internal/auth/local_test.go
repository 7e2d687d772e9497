package auth

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/fleet-maintenance/internal/models"
)

func TestFindLocalUser(t *testing.T) {
	t.Run("known credential", func(t *testing.T) {
		user, ok := FindLocalUser("conductor", "chofer1234")
		require.True(t, ok)
		assert.Equal(t, models.RoleDriver, user.Role)
		assert.True(t, user.IsActive)
		assert.False(t, user.ID.IsZero())
	})

	t.Run("wrong password", func(t *testing.T) {
		_, ok := FindLocalUser("conductor", "wrong")
		assert.False(t, ok)
	})

	t.Run("unknown username", func(t *testing.T) {
		_, ok := FindLocalUser("nobody", "chofer1234")
		assert.False(t, ok)
	})
}

func TestLoginFailureReason(t *testing.T) {
	assert.Equal(t, "Invalid username or password", LoginFailureReason(ErrInvalidCredentials))
	assert.Equal(t, "Invalid username or password", LoginFailureReason(ErrUserNotFound))
	assert.Equal(t, "Account is deactivated", LoginFailureReason(ErrUserInactive))
	assert.Equal(t, "Cannot log in right now, try again later", LoginFailureReason(errors.New("connection refused")))
}
