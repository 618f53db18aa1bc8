package auth_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auth "github.com/goliatone/go-session-auth"
)

func TestRegisterUser(t *testing.T) {
	ctx := context.Background()

	t.Run("creates an identity with a hashed password", func(t *testing.T) {
		store := newMemStore()
		handler := auth.NewRegisterUserHandler(store)

		user, err := handler.Execute(ctx, auth.RegisterUserMessage{
			FirstName: "Pepe",
			LastName:  "Rone",
			Email:     "Pepe@Example.com",
			Role:      "member",
			Password:  "secret123",
		})
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, user.ID)
		assert.Equal(t, "pepe@example.com", user.Email)
		assert.Equal(t, auth.RoleMember, user.Role)
		assert.NotEmpty(t, user.PasswordHash)
		assert.NotEqual(t, "secret123", user.PasswordHash)

		auther := auth.NewAuthenticator(store)
		_, err = auther.Login(ctx, "pepe@example.com", "secret123")
		assert.NoError(t, err)
	})

	t.Run("unknown role falls back to the store default", func(t *testing.T) {
		store := newMemStore()
		handler := auth.NewRegisterUserHandler(store)

		user, err := handler.Execute(ctx, auth.RegisterUserMessage{
			Email:    "pepe@example.com",
			Role:     "superuser",
			Password: "secret123",
		})
		require.NoError(t, err)
		assert.Equal(t, auth.RoleGuest, user.Role)
	})

	t.Run("empty password is rejected", func(t *testing.T) {
		store := newMemStore()
		handler := auth.NewRegisterUserHandler(store)

		_, err := handler.Execute(ctx, auth.RegisterUserMessage{
			Email: "pepe@example.com",
		})
		assert.Error(t, err)
	})

	t.Run("deterministic id derivation", func(t *testing.T) {
		handler := auth.NewRegisterUserHandler(newMemStore())

		a, err := handler.Execute(ctx, auth.RegisterUserMessage{
			Email:     "pepe@example.com",
			Role:      "member",
			Password:  "secret123",
			UseHashid: true,
		})
		require.NoError(t, err)

		b, err := auth.NewRegisterUserHandler(newMemStore()).Execute(ctx, auth.RegisterUserMessage{
			Email:     "pepe@example.com",
			Role:      "member",
			Password:  "secret123",
			UseHashid: true,
		})
		require.NoError(t, err)

		assert.Equal(t, a.ID, b.ID)
	})

	t.Run("cancelled context short circuits", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(context.Background())
		cancel()

		handler := auth.NewRegisterUserHandler(newMemStore())

		_, err := handler.Execute(cancelled, auth.RegisterUserMessage{
			Email:    "pepe@example.com",
			Password: "secret123",
		})
		assert.Error(t, err)
	})
}
