package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

type FinalizePasswordResetMessage struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// FinalizePasswordResetHandler consumes a reset token: the presented
// cleartext is hashed with the same one-way function used at issuance and
// must match a stored hash whose window has not passed. Success rotates the
// password and clears the token so a second consumption attempt fails.
type FinalizePasswordResetHandler struct {
	store  CredentialStore
	logger Logger
}

// NewFinalizePasswordResetHandler creates a handler with sane defaults.
func NewFinalizePasswordResetHandler(store CredentialStore) *FinalizePasswordResetHandler {
	return &FinalizePasswordResetHandler{
		store:  store,
		logger: defLogger{},
	}
}

func (h *FinalizePasswordResetHandler) WithLogger(logger Logger) *FinalizePasswordResetHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *FinalizePasswordResetHandler) Execute(ctx context.Context, event FinalizePasswordResetMessage) (*User, error) {
	select {
	case <-ctx.Done():
		return nil, goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset finalization",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *FinalizePasswordResetHandler) execute(ctx context.Context, event FinalizePasswordResetMessage) (*User, error) {
	hash := HashResetToken(event.Token)

	user, err := h.store.ByResetTokenHash(ctx, hash, time.Now())
	if err != nil {
		if goerrors.IsNotFound(err) {
			return nil, ErrResetTokenInvalid
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "could not retrieve password reset request")
	}

	if err := user.SetPassword(event.Password); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid new password provided")
	}

	user.ClearResetToken()

	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second*10)
	defer cancel()

	updated, err := h.store.Save(saveCtx, user)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update user password")
	}

	return updated, nil
}
