package auth

import (
	"github.com/gofiber/fiber/v2"
)

// IsValid checks if the role is one of the predefined valid roles
func (r UserRole) IsValid() bool {
	switch r {
	case RoleGuest, RoleMember, RoleAdmin, RoleOwner:
		return true
	default:
		return false
	}
}

// IsAtLeast checks if this role meets the minimum required level
func (r UserRole) IsAtLeast(minRole UserRole) bool {
	roleHierarchy := map[UserRole]int{
		RoleGuest:  0,
		RoleMember: 1,
		RoleAdmin:  2,
		RoleOwner:  3,
	}

	currentLevel, exists := roleHierarchy[r]
	if !exists {
		return false
	}

	minLevel, exists := roleHierarchy[minRole]
	if !exists {
		return false
	}

	return currentLevel >= minLevel
}

// AllRoles returns all predefined roles in hierarchical order
func AllRoles() []UserRole {
	return []UserRole{
		RoleGuest,
		RoleMember,
		RoleAdmin,
		RoleOwner,
	}
}

// ParseRole safely parses a string into a UserRole type
func ParseRole(roleStr string) (UserRole, bool) {
	role := UserRole(roleStr)
	return role, role.IsValid()
}

// Authorize checks an already resolved identity against an allow-list of
// roles. It performs no I/O; the guard must have attached the identity first.
func Authorize(user *User, allowed ...UserRole) error {
	if user == nil {
		return ErrUnauthenticated
	}

	for _, role := range allowed {
		if user.Role == role {
			return nil
		}
	}

	return ErrForbidden.Clone().WithMetadata(map[string]any{
		"role": user.Role,
	})
}

// RequireRoles returns middleware that rejects any authenticated identity
// whose role is not in the allow-list. It must run after Guard.Protected.
func RequireRoles(allowed ...UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, _ := UserFromLocals(c)
		if err := Authorize(user, allowed...); err != nil {
			return WriteError(c, err)
		}
		return c.Next()
	}
}
