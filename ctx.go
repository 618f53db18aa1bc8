package auth

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

// LocalsUserKey is the fiber locals key the guard stores the resolved user under.
const LocalsUserKey = "user"

var userCtxKey = &contextKey{"user"}

type contextKey struct {
	name string
}

// WithContext sets the User in the given context
func WithContext(r context.Context, user *User) context.Context {
	return context.WithValue(r, userCtxKey, user)
}

// FromContext finds the user from the context.
func FromContext(ctx context.Context) (*User, bool) {
	raw, ok := ctx.Value(userCtxKey).(*User)
	return raw, ok
}

// UserFromLocals finds the user the guard attached to the request.
func UserFromLocals(c *fiber.Ctx) (*User, bool) {
	raw, ok := c.Locals(LocalsUserKey).(*User)
	return raw, ok
}

func attachUser(c *fiber.Ctx, user *User) {
	c.Locals(LocalsUserKey, user)
	c.SetUserContext(WithContext(c.UserContext(), user))
}
