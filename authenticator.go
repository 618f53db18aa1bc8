package auth

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// Auther verifies credentials against the credential store. Session issuance
// stays with the HTTP layer; Auther only resolves identities.
type Auther struct {
	store  CredentialStore
	logger Logger
}

// NewAuthenticator returns a new Auther
func NewAuthenticator(store CredentialStore) *Auther {
	return &Auther{
		store:  store,
		logger: defLogger{},
	}
}

func (a *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		a.logger = logger
	}
	return a
}

// Login verifies an email/password pair. An unknown email and a wrong
// password both come back as ErrInvalidCredentials so the response does not
// reveal which check failed.
func (a *Auther) Login(ctx context.Context, email, password string) (*User, error) {
	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	user, err := a.store.ByEmail(ctx, email, IncludePassword())
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		a.logger.Error("login failed to retrieve user", "error", err)
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user during login")
	}

	if err := a.store.ComparePassword(password, user.PasswordHash); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// UpdatePassword changes the password of an already authenticated identity.
// The presented current password must match; the save stamps a new
// password-changed timestamp which invalidates previously issued tokens.
func (a *Auther) UpdatePassword(ctx context.Context, id uuid.UUID, current, next string) (*User, error) {
	user, err := a.store.ByID(ctx, id, IncludePassword())
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, ErrIdentityGone
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user during password change")
	}

	if err := a.store.ComparePassword(current, user.PasswordHash); err != nil {
		return nil, ErrInvalidCurrentPassword
	}

	if err := user.SetPassword(next); err != nil {
		return nil, err
	}

	updated, err := a.store.Save(ctx, user)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to persist password change")
	}

	return updated, nil
}
