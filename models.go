package auth

import (
	"strings"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UserRole is the user's role
type UserRole string

const (
	// RoleGuest is a guest role (ie. view)
	RoleGuest UserRole = "guest"
	// RoleMember is a member (i.e. view, edit)
	RoleMember UserRole = "member"
	// RoleAdmin is an admin role (i.e. view, edit, create)
	RoleAdmin UserRole = "admin"
	// RoleOwner is an owner role (i.e. view, edit, create, delete)
	RoleOwner UserRole = "owner"
)

// User is the user model. The password hash and the reset token hash are
// structurally excluded from JSON so they can never reach a client.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`

	ID        uuid.UUID `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Role      UserRole  `bun:"user_role,notnull" json:"user_role,omitempty"`
	FirstName string    `bun:"first_name" json:"first_name,omitempty"`
	LastName  string    `bun:"last_name" json:"last_name,omitempty"`
	Email     string    `bun:"email,notnull,unique" json:"email,omitempty"`

	PasswordHash      string     `bun:"password_hash" json:"-"`
	PasswordChangedAt *time.Time `bun:"password_changed_at,nullzero" json:"-"`

	ResetTokenHash      *string    `bun:"reset_token_hash,nullzero" json:"-"`
	ResetTokenExpiresAt *time.Time `bun:"reset_token_expires_at,nullzero" json:"-"`

	CreatedAt *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"-"`
}

// SetPassword hashes the cleartext password onto the record and stamps
// PasswordChangedAt, which invalidates any previously issued token.
func (u *User) SetPassword(cleartext string) error {
	hash, err := HashPassword(cleartext)
	if err != nil {
		return err
	}

	now := time.Now()
	u.PasswordHash = hash
	u.PasswordChangedAt = &now
	return nil
}

// PasswordChangedAfter reports whether the password was rotated after the
// given instant. Comparison is at second precision to match token timestamps.
func (u *User) PasswordChangedAfter(t time.Time) bool {
	if u.PasswordChangedAt == nil {
		return false
	}
	return u.PasswordChangedAt.Unix() > t.Unix()
}

// SetResetToken stores the hashed form and expiry of a reset token.
func (u *User) SetResetToken(hash string, expiresAt time.Time) {
	u.ResetTokenHash = &hash
	u.ResetTokenExpiresAt = &expiresAt
}

// ClearResetToken removes any pending reset token from the record.
func (u *User) ClearResetToken() {
	u.ResetTokenHash = nil
	u.ResetTokenExpiresAt = nil
}

// Redacted returns a copy safe to echo back to clients.
func (u *User) Redacted() *User {
	if u == nil {
		return nil
	}

	out := *u
	out.PasswordHash = ""
	out.ResetTokenHash = nil
	out.ResetTokenExpiresAt = nil
	return &out
}

// Validate enforces the record invariants: a known role, a normalized email,
// and reset token fields that are either both present or both absent.
func (u *User) Validate() error {
	if strings.TrimSpace(u.Email) == "" {
		return errors.New("user email is required", errors.CategoryValidation).
			WithCode(errors.CodeBadRequest)
	}

	if !u.Role.IsValid() {
		return errors.New("user has an unknown or invalid role", errors.CategoryValidation).
			WithTextCode("INVALID_ROLE").
			WithCode(errors.CodeBadRequest).
			WithMetadata(map[string]any{"role": u.Role})
	}

	if (u.ResetTokenHash == nil) != (u.ResetTokenExpiresAt == nil) {
		return errors.New("reset token hash and expiry must be set together", errors.CategoryValidation).
			WithCode(errors.CodeBadRequest)
	}

	return nil
}

// NormalizeEmail lower-cases and trims the address used as the unique login key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
