package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

const bearerScheme = "Bearer"

// Guard authenticates a request before it reaches protected handlers: it
// extracts a bearer token from the Authorization header or the session
// cookie, verifies it, re-validates that the subject still exists, and
// rejects tokens issued before the subject's last password change.
type Guard struct {
	codec        TokenCodec
	store        CredentialStore
	cookieName   string
	logger       Logger
	ErrorHandler func(c *fiber.Ctx, err error) error
}

// NewGuard returns a Guard bound to the given codec and credential store.
func NewGuard(codec TokenCodec, store CredentialStore, cfg Config) *Guard {
	cookieName := DefaultCookieName
	if cfg != nil && cfg.GetCookieName() != "" {
		cookieName = cfg.GetCookieName()
	}

	return &Guard{
		codec:        codec,
		store:        store,
		cookieName:   cookieName,
		logger:       defLogger{},
		ErrorHandler: WriteError,
	}
}

func (g *Guard) WithLogger(logger Logger) *Guard {
	if logger != nil {
		g.logger = logger
	}
	return g
}

// Protected returns middleware that rejects unauthenticated requests. On
// success the resolved user is attached to fiber locals and to the request
// context for downstream handlers.
func (g *Guard) Protected() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := g.resolve(c)
		if err != nil {
			return g.ErrorHandler(c, err)
		}

		attachUser(c, user)
		return c.Next()
	}
}

// Optional returns middleware that runs the same extract/verify/resolve steps
// as Protected but never fails the request: any error, including a rotated
// password, downgrades to an anonymous continue so public pages can render
// personalized content opportunistically.
func (g *Guard) Optional() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := g.resolve(c)
		if err != nil {
			g.logger.Debug("optional auth proceeding as anonymous", "error", err)
			return c.Next()
		}

		attachUser(c, user)
		return c.Next()
	}
}

// resolve is the verification routine both middleware variants share; only
// the failure policy at the call site differs.
func (g *Guard) resolve(c *fiber.Ctx) (*User, error) {
	raw, err := g.extractToken(c)
	if err != nil {
		return nil, err
	}

	claims, err := g.codec.Verify(raw)
	if err != nil {
		return nil, err
	}

	subjectID, err := uuid.Parse(claims.SubjectID())
	if err != nil {
		return nil, ErrTokenMalformed
	}

	user, err := g.store.ByID(c.UserContext(), subjectID)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, ErrIdentityGone
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to resolve token subject")
	}

	if user.PasswordChangedAfter(claims.IssuedAtTime()) {
		return nil, ErrCredentialsRotated
	}

	return user, nil
}

// extractToken prefers the Authorization header bearer form and falls back
// to the session cookie.
func (g *Guard) extractToken(c *fiber.Ctx) (string, error) {
	header := c.Get(fiber.HeaderAuthorization)
	if strings.HasPrefix(header, bearerScheme+" ") {
		token := strings.TrimSpace(header[len(bearerScheme)+1:])
		if token != "" {
			return token, nil
		}
	}

	if cookie := c.Cookies(g.cookieName); cookie != "" {
		return cookie, nil
	}

	return "", ErrUnauthenticated
}
