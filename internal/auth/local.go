package auth

import (
	"errors"

	"github.com/ukydev/fleet-maintenance/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// localCredential is one entry of the static fallback table used when the
// primary user store is unreachable (offline/demo mode).
type localCredential struct {
	ID        string
	Username  string
	Email     string
	FirstName string
	LastName  string
	Role      models.Role
	Password  string
}

var localCredentials = []localCredential{
	{"665f000000000000000000a1", "admin", "admin@flota.local", "Ana", "Rojas", models.RoleAdmin, "admin1234"},
	{"665f000000000000000000a2", "supervisor", "supervisor@flota.local", "Marcos", "Díaz", models.RoleSupervisor, "super1234"},
	{"665f000000000000000000a3", "mecanico", "mecanico@flota.local", "Pedro", "Soto", models.RoleMechanic, "meca1234"},
	{"665f000000000000000000a4", "conductor", "conductor@flota.local", "Juan", "Pérez", models.RoleDriver, "chofer1234"},
}

// FindLocalUser checks the fallback credential table. It only matches exact
// username/password pairs; there is no hashing here because the table exists
// for demo use without a reachable database.
func FindLocalUser(username, password string) (*models.User, bool) {
	for _, c := range localCredentials {
		if c.Username != username || c.Password != password {
			continue
		}
		id, err := primitive.ObjectIDFromHex(c.ID)
		if err != nil {
			return nil, false
		}
		return &models.User{
			ID:        id,
			Username:  c.Username,
			Email:     c.Email,
			FirstName: c.FirstName,
			LastName:  c.LastName,
			Role:      c.Role,
			IsActive:  true,
		}, true
	}
	return nil, false
}

// LoginFailureReason maps a login error to the message shown to the user.
func LoginFailureReason(err error) string {
	switch {
	case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrInvalidCredentials):
		return "Invalid username or password"
	case errors.Is(err, ErrUserInactive):
		return "Account is deactivated"
	case errors.Is(err, ErrExpiredToken):
		return "Session expired, sign in again"
	default:
		return "Cannot log in right now, try again later"
	}
}
