package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

type InitializePasswordResetMessage struct {
	Email string `json:"email"`
}

func (e InitializePasswordResetMessage) Type() string { return "user.password_reset" }

// InitializePasswordResetHandler runs the request phase of the reset
// handshake: generate a single-use token, persist its hashed form and mail
// the cleartext to the account's registered address. A failed delivery rolls
// the stored token back so the record never carries an undeliverable secret.
type InitializePasswordResetHandler struct {
	store        CredentialStore
	mailer       Mailer
	tokenTTL     time.Duration
	resetURLBase string
	logger       Logger
}

// NewInitializePasswordResetHandler creates a handler bound to the store,
// the outbound notification channel and the configured reset window.
func NewInitializePasswordResetHandler(store CredentialStore, mailer Mailer, cfg Config) *InitializePasswordResetHandler {
	ttl := 30 * time.Minute
	base := "/password-reset"

	if cfg != nil {
		if cfg.GetResetTokenTTL() > 0 {
			ttl = cfg.GetResetTokenTTL()
		}
		if cfg.GetResetURLBase() != "" {
			base = cfg.GetResetURLBase()
		}
	}

	return &InitializePasswordResetHandler{
		store:        store,
		mailer:       mailer,
		tokenTTL:     ttl,
		resetURLBase: base,
		logger:       defLogger{},
	}
}

func (h *InitializePasswordResetHandler) WithLogger(logger Logger) *InitializePasswordResetHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *InitializePasswordResetHandler) Execute(ctx context.Context, event InitializePasswordResetMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset initialization",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *InitializePasswordResetHandler) execute(ctx context.Context, event InitializePasswordResetMessage) error {
	// the record is re-saved below; it must carry its full column set so the
	// write cannot blank fields the default read excludes
	user, err := h.store.ByEmail(ctx, event.Email, IncludePassword())
	if err != nil {
		if goerrors.IsNotFound(err) {
			return ErrUnknownSubject.Clone().WithMetadata(map[string]any{
				"email": event.Email,
			})
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user for password reset")
	}

	token, err := NewResetToken(h.tokenTTL)
	if err != nil {
		return err
	}

	// Saves run on a detached context so an abandoned request cannot leave
	// the record with a token that was never delivered.
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second*10)
	defer cancel()

	user.SetResetToken(token.Hash, token.ExpiresAt)
	if _, err := h.store.Save(saveCtx, user, SkipValidation()); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to store reset token")
	}

	msg := Message{
		To:      user.Email,
		Subject: fmt.Sprintf("Your password reset token (valid for %d minutes)", int(h.tokenTTL.Minutes())),
		Body: fmt.Sprintf(
			"Submit a PATCH request with your new password and password confirmation to: %s\nIf you didn't forget your password, please ignore this email.",
			h.resetLink(token.Cleartext),
		),
	}

	if sendErr := h.mailer.Send(ctx, msg); sendErr != nil {
		h.logger.Error("password reset delivery failed", "error", sendErr, "email", user.Email)

		user.ClearResetToken()
		if _, rbErr := h.store.Save(saveCtx, user, SkipValidation()); rbErr != nil {
			return goerrors.Wrap(rbErr, goerrors.CategoryInternal, "failed to roll back reset token after delivery failure")
		}

		return goerrors.Wrap(sendErr, ErrDeliveryFailed.Category, ErrDeliveryFailed.Message).
			WithTextCode(ErrDeliveryFailed.TextCode).
			WithCode(goerrors.CodeInternal)
	}

	return nil
}

func (h *InitializePasswordResetHandler) resetLink(cleartext string) string {
	return fmt.Sprintf("%s/%s", strings.TrimRight(h.resetURLBase, "/"), cleartext)
}
