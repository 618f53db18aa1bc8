package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// TokenClaims is the payload carried by a bearer token: the subject
// identifier plus issue and expiry timestamps.
type TokenClaims struct {
	jwt.RegisteredClaims
	UID string `json:"uid,omitempty"`
}

// SubjectID returns the user identifier the token was issued for.
func (c *TokenClaims) SubjectID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.RegisteredClaims.Subject
}

// IssuedAtTime returns the issue instant, zero if absent.
func (c *TokenClaims) IssuedAtTime() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}

// ExpiresAtTime returns the expiry instant, zero if absent.
func (c *TokenClaims) ExpiresAtTime() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// JWTCodec implements the TokenCodec interface using HS256 signed JWTs.
type JWTCodec struct {
	signingKey      []byte
	expirationDays  int
	logger          Logger
	now             func() time.Time
}

// NewTokenCodec creates a new JWTCodec. Expiry is derived from the configured
// duration in days at issuance time.
func NewTokenCodec(signingKey []byte, expirationDays int, logger Logger) *JWTCodec {
	if logger == nil {
		logger = defLogger{}
	}
	return &JWTCodec{
		signingKey:     signingKey,
		expirationDays: expirationDays,
		logger:         logger,
		now:            time.Now,
	}
}

// WithClock overrides the time source, useful in tests.
func (tc *JWTCodec) WithClock(clock func() time.Time) *JWTCodec {
	if clock != nil {
		tc.now = clock
	}
	return tc
}

// Issue produces a signed token embedding the subject identifier and the
// current time. No side effects beyond the signature computation.
func (tc *JWTCodec) Issue(subjectID string) (string, error) {
	now := tc.now()
	claims := &TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(tc.expirationDays) * 24 * time.Hour)),
		},
		UID: subjectID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(tc.signingKey)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign bearer token")
	}

	return signed, nil
}

// Verify parses and validates a token string. It fails with ErrTokenExpired
// for tokens past their expiry and ErrTokenMalformed for everything else.
func (tc *JWTCodec) Verify(raw string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(raw, &TokenClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			tc.logger.Error("token verify encountered unexpected signing method", "alg", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return tc.signingKey, nil
	}, jwt.WithTimeFunc(tc.now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, errors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
			WithTextCode(ErrTokenMalformed.TextCode).
			WithCode(errors.CodeUnauthorized)
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid {
		tc.logger.Error("token verify could not decode claims")
		return nil, ErrTokenMalformed
	}

	return claims, nil
}

var _ TokenCodec = (*JWTCodec)(nil)
