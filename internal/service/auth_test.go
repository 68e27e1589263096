package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nmorozova/platefeed/backend/internal/models"
	"github.com/nmorozova/platefeed/backend/internal/service"
	"github.com/nmorozova/platefeed/backend/internal/testhelpers"
)

func validRegisterInput() service.RegisterInput {
	return service.RegisterInput{
		Email:     "alice@example.com",
		Username:  "alice",
		FirstName: "Alice",
		LastName:  "Cooper",
		Password:  "password123",
	}
}

func TestRegister(t *testing.T) {
	t.Run("creates user with hashed password", func(t *testing.T) {
		db := testhelpers.SetupTestDB(t)
		svc := service.NewAuthService(db, "test-secret-value")

		user, err := svc.Register(validRegisterInput())
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", user.Email)
		assert.NotEqual(t, "password123", user.PasswordHash)
		assert.NotEmpty(t, user.ID)
	})

	t.Run("accumulates all violations in one response", func(t *testing.T) {
		db := testhelpers.SetupTestDB(t)
		svc := service.NewAuthService(db, "test-secret-value")

		_, err := svc.Register(service.RegisterInput{
			Email:    "not-an-email",
			Username: "bad name!",
			Password: "short",
		})
		require.Error(t, err)

		v, ok := service.AsValidationError(err)
		require.True(t, ok)
		assert.Contains(t, v.Fields, "email")
		assert.Contains(t, v.Fields, "username")
		assert.Contains(t, v.Fields, "first_name")
		assert.Contains(t, v.Fields, "last_name")
		assert.Contains(t, v.Fields, "password")
	})

	t.Run("rejects reserved username me", func(t *testing.T) {
		db := testhelpers.SetupTestDB(t)
		svc := service.NewAuthService(db, "test-secret-value")

		input := validRegisterInput()
		input.Username = "me"
		_, err := svc.Register(input)
		require.Error(t, err)

		v, ok := service.AsValidationError(err)
		require.True(t, ok)
		assert.Contains(t, v.Fields, "username")
	})

	t.Run("rejects duplicate email and username", func(t *testing.T) {
		db := testhelpers.SetupTestDB(t)
		svc := service.NewAuthService(db, "test-secret-value")

		_, err := svc.Register(validRegisterInput())
		require.NoError(t, err)

		_, err = svc.Register(validRegisterInput())
		require.Error(t, err)

		v, ok := service.AsValidationError(err)
		require.True(t, ok)
		assert.Contains(t, v.Fields, "email")
		assert.Contains(t, v.Fields, "username")

		var count int64
		db.Model(&models.User{}).Count(&count)
		assert.Equal(t, int64(1), count)
	})
}

func TestLogin(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := service.NewAuthService(db, "test-secret-value")

	_, err := svc.Register(validRegisterInput())
	require.NoError(t, err)

	t.Run("issues token for valid credentials", func(t *testing.T) {
		token, err := svc.Login("alice@example.com", "password123")
		require.NoError(t, err)
		require.NotEmpty(t, token)

		claims, err := svc.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, "alice", claims.Username)
	})

	t.Run("rejects wrong password", func(t *testing.T) {
		_, err := svc.Login("alice@example.com", "wrong-password")
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	})

	t.Run("rejects unknown email", func(t *testing.T) {
		_, err := svc.Login("nobody@example.com", "password123")
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	})
}

func TestSetPassword(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := service.NewAuthService(db, "test-secret-value")

	user, err := svc.Register(validRegisterInput())
	require.NoError(t, err)

	t.Run("rejects wrong current password", func(t *testing.T) {
		err := svc.SetPassword(user.ID, "wrong-password", "newpassword123")
		require.Error(t, err)

		v, ok := service.AsValidationError(err)
		require.True(t, ok)
		assert.Contains(t, v.Fields, "current_password")
	})

	t.Run("changes password", func(t *testing.T) {
		err := svc.SetPassword(user.ID, "password123", "newpassword123")
		require.NoError(t, err)

		_, err = svc.Login("alice@example.com", "password123")
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)

		_, err = svc.Login("alice@example.com", "newpassword123")
		assert.NoError(t, err)
	})
}

func TestValidateTokenRejectsTampered(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := service.NewAuthService(db, "test-secret-value")
	other := service.NewAuthService(db, "different-secret")

	_, err := svc.Register(validRegisterInput())
	require.NoError(t, err)

	token, err := svc.Login("alice@example.com", "password123")
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}
