package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// TokenCodec signs and verifies bearer tokens carrying a subject identifier
// and issue time.
type TokenCodec interface {
	Issue(subjectID string) (string, error)
	Verify(raw string) (*TokenClaims, error)
}

// Config holds auth options. Values are read once at construction; components
// never reach for ambient globals.
type Config interface {
	GetSigningKey() string
	GetTokenExpirationDays() int
	GetResetTokenTTL() time.Duration
	GetCookieName() string
	GetResetURLBase() string
	IsProduction() bool
}

// CredentialStore is the narrow persistence contract the auth core consumes.
// The password hash is excluded from reads unless requested explicitly.
type CredentialStore interface {
	ByEmail(ctx context.Context, email string, opts ...QueryOption) (*User, error)
	ByID(ctx context.Context, id uuid.UUID, opts ...QueryOption) (*User, error)
	ByResetTokenHash(ctx context.Context, hash string, notExpiredBefore time.Time) (*User, error)
	Create(ctx context.Context, record *User) (*User, error)
	Save(ctx context.Context, record *User, opts ...SaveOption) (*User, error)
	ComparePassword(candidate, storedHash string) error
}

// Message is an outbound notification.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer is the outbound notification channel contract.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTH "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] AUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
