package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// DefaultCookieName is the cookie the signed token travels in.
const DefaultCookieName = "jwtcookie"

// SessionEnvelope is the success payload returned whenever a session is
// issued: the raw token plus the redacted identity it belongs to.
type SessionEnvelope struct {
	Status    string      `json:"status"`
	JWebToken string      `json:"jWebToken"`
	Data      SessionData `json:"data"`
}

type SessionData struct {
	User *User `json:"user"`
}

// SessionIssuer orchestrates token creation and delivery, as a signed cookie
// and in the response body.
type SessionIssuer struct {
	codec          TokenCodec
	cookieName     string
	cookieDuration time.Duration
	secure         bool
	logger         Logger
}

// NewSessionIssuer builds an issuer from the injected configuration. The
// cookie is marked secure-transport-only when running in production mode.
func NewSessionIssuer(codec TokenCodec, cfg Config) *SessionIssuer {
	cookieName := DefaultCookieName
	cookieDuration := 24 * time.Hour
	secure := false

	if cfg != nil {
		if cfg.GetCookieName() != "" {
			cookieName = cfg.GetCookieName()
		}
		if cfg.GetTokenExpirationDays() > 0 {
			cookieDuration = time.Duration(cfg.GetTokenExpirationDays()) * 24 * time.Hour
		}
		secure = cfg.IsProduction()
	}

	return &SessionIssuer{
		codec:          codec,
		cookieName:     cookieName,
		cookieDuration: cookieDuration,
		secure:         secure,
		logger:         defLogger{},
	}
}

func (s *SessionIssuer) WithLogger(logger Logger) *SessionIssuer {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// Issue signs a token for the identity, sets it as an HTTP-only cookie and
// echoes it in the success envelope with the password hash redacted. It has
// no persistence side effects; any store save happens in the calling flow.
func (s *SessionIssuer) Issue(c *fiber.Ctx, user *User, status int) error {
	token, err := s.codec.Issue(user.ID.String())
	if err != nil {
		s.logger.Error("session issue failed to sign token", "error", err)
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     s.cookieName,
		Value:    token,
		Expires:  time.Now().Add(s.cookieDuration),
		HTTPOnly: true,
		Secure:   s.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return c.Status(status).JSON(SessionEnvelope{
		Status:    "success",
		JWebToken: token,
		Data:      SessionData{User: user.Redacted()},
	})
}

// Clear expires the session cookie. Logout is client-side only; issued
// tokens stay valid until expiry or the next password change.
func (s *SessionIssuer) Clear(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     s.cookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour * 24 * 365),
		HTTPOnly: true,
		Secure:   s.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
