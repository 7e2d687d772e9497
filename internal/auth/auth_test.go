package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ukydev/fleet-maintenance/internal/models"
)

func TestNewService(t *testing.T) {
	service := NewService("fleet-test-secret", time.Hour)
	assert.NotNil(t, service)
	assert.Equal(t, []byte("fleet-test-secret"), service.secret)
	assert.Equal(t, time.Hour, service.tokenExp)
}

func TestNewService_Defaults(t *testing.T) {
	// Empty config falls back to the development secret and 24h expiry.
	service := NewService("", 0)
	assert.Equal(t, []byte(devSecret), service.secret)
	assert.Equal(t, defaultTokenExp, service.tokenExp)
}

func TestService_TokenRoundTripPerRole(t *testing.T) {
	service := NewService("fleet-test-secret", time.Hour)

	roles := []models.Role{
		models.RoleAdmin,
		models.RoleSupervisor,
		models.RoleMechanic,
		models.RoleDriver,
	}

	for _, role := range roles {
		t.Run(string(role), func(t *testing.T) {
			user := &models.User{
				ID:       primitive.NewObjectID(),
				Username: string(role) + "-user",
				Role:     role,
			}

			token, err := service.GenerateToken(user)
			assert.NoError(t, err)
			assert.NotEmpty(t, token)

			claims, err := service.ValidateToken(token)
			assert.NoError(t, err)
			assert.Equal(t, user.ID.Hex(), claims.UserID)
			assert.Equal(t, user.Username, claims.Username)
			assert.Equal(t, role, claims.Role)
		})
	}
}

func TestService_ValidateToken(t *testing.T) {
	service := NewService("fleet-test-secret", time.Hour)

	user := &models.User{
		ID:       primitive.NewObjectID(),
		Username: "chofer1",
		Role:     models.RoleDriver,
	}

	token, _ := service.GenerateToken(user)

	// Test valid token
	claims, err := service.ValidateToken(token)
	assert.NoError(t, err)
	assert.NotNil(t, claims)
	assert.Equal(t, models.RoleDriver, claims.Role)

	// Test invalid token
	_, err = service.ValidateToken("invalid-token")
	assert.Error(t, err)
	assert.Equal(t, ErrInvalidToken, err)

	// Test token with Bearer prefix
	_, err = service.ValidateToken("Bearer " + token)
	assert.NoError(t, err)
}

func TestService_ValidateToken_WrongSecret(t *testing.T) {
	issuer := NewService("fleet-test-secret", time.Hour)
	verifier := NewService("another-secret", time.Hour)

	user := &models.User{
		ID:       primitive.NewObjectID(),
		Username: "mecanico1",
		Role:     models.RoleMechanic,
	}

	token, _ := issuer.GenerateToken(user)
	_, err := verifier.ValidateToken(token)
	assert.Equal(t, ErrInvalidToken, err)
}

func TestService_ValidateToken_Expired(t *testing.T) {
	service := NewService("fleet-test-secret", time.Hour)

	user := &models.User{
		ID:       primitive.NewObjectID(),
		Username: "supervisor1",
		Role:     models.RoleSupervisor,
	}

	// Negative lifetimes fall back to the default, so back-date the
	// expired token by hand.
	expired := &Service{secret: service.secret, tokenExp: -time.Minute}
	token, _ := expired.GenerateToken(user)

	_, err := service.ValidateToken(token)
	assert.Equal(t, ErrExpiredToken, err)
}

func TestService_ExtractTokenFromHeader(t *testing.T) {
	service := NewService("fleet-test-secret", time.Hour)

	// Test valid header
	token := "valid-token"
	header := "Bearer " + token
	extracted, err := service.ExtractTokenFromHeader(header)
	assert.NoError(t, err)
	assert.Equal(t, token, extracted)

	// Test empty header
	_, err = service.ExtractTokenFromHeader("")
	assert.Error(t, err)
	assert.Equal(t, ErrInvalidToken, err)

	// Test invalid format
	_, err = service.ExtractTokenFromHeader("InvalidFormat")
	assert.Error(t, err)
	assert.Equal(t, ErrInvalidToken, err)

	// Test missing token
	_, err = service.ExtractTokenFromHeader("Bearer ")
	assert.Error(t, err)
	assert.Equal(t, ErrInvalidToken, err)
}

func TestService_HashAndCheckPassword(t *testing.T) {
	service := NewService("fleet-test-secret", time.Hour)

	password := "testpassword123"
	hash, err := service.HashPassword(password)
	assert.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, password, hash)

	assert.True(t, service.CheckPassword(password, hash))
	assert.False(t, service.CheckPassword("wrongpassword", hash))
}

func TestService_ValidatePassword(t *testing.T) {
	service := NewService("fleet-test-secret", time.Hour)

	// Test valid password
	err := service.ValidatePassword("validpassword123")
	assert.NoError(t, err)

	// Test too short password
	err = service.ValidatePassword("short")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "at least 8 characters")
}

func TestService_ValidateEmail(t *testing.T) {
	service := NewService("fleet-test-secret", time.Hour)

	// Test valid email
	err := service.ValidateEmail("chofer@flota.example.com")
	assert.NoError(t, err)

	// Test invalid email - no @
	err = service.ValidateEmail("choferflota.com")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid email format")

	// Test invalid email - no domain
	err = service.ValidateEmail("chofer@")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid email format")
}

func TestService_ValidateUsername(t *testing.T) {
	service := NewService("fleet-test-secret", time.Hour)

	// Test valid username
	err := service.ValidateUsername("chofer1")
	assert.NoError(t, err)

	// Test too short username
	err = service.ValidateUsername("ab")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "at least 3 characters")

	// Test too long username
	longUsername := ""
	for i := 0; i < 51; i++ {
		longUsername += "a"
	}
	err = service.ValidateUsername(longUsername)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "less than 50 characters")
}

func TestService_GenerateRefreshToken(t *testing.T) {
	service := NewService("fleet-test-secret", time.Hour)

	token, err := service.GenerateRefreshToken()
	assert.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Len(t, token, 44) // base64 encoded 32 bytes

	// Refresh tokens are random, not derived
	again, _ := service.GenerateRefreshToken()
	assert.NotEqual(t, token, again)
}

func TestService_TokenExpiration(t *testing.T) {
	service := NewService("fleet-test-secret", time.Hour)

	user := &models.User{
		ID:       primitive.NewObjectID(),
		Username: "admin",
		Role:     models.RoleAdmin,
	}

	token, _ := service.GenerateToken(user)

	claims, err := service.ValidateToken(token)
	assert.NoError(t, err)
	assert.NotNil(t, claims)

	// Expiry is the configured lifetime from now
	now := time.Now().Unix()
	assert.Greater(t, claims.Exp, now)
	assert.LessOrEqual(t, claims.Exp, now+int64(time.Hour.Seconds())+1)
}
