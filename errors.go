package auth

import (
	"github.com/goliatone/go-errors"
)

const (
	TextCodeMissingCredentials     = "MISSING_CREDENTIALS"
	TextCodeInvalidCredentials     = "INVALID_CREDENTIALS"
	TextCodeUnauthenticated        = "UNAUTHENTICATED"
	TextCodeTokenExpired           = "TOKEN_EXPIRED"
	TextCodeTokenMalformed         = "TOKEN_MALFORMED"
	TextCodeIdentityGone           = "IDENTITY_GONE"
	TextCodeCredentialsRotated     = "CREDENTIALS_ROTATED"
	TextCodeForbidden              = "FORBIDDEN"
	TextCodeUnknownSubject         = "UNKNOWN_SUBJECT"
	TextCodeResetTokenInvalid      = "RESET_TOKEN_INVALID"
	TextCodeDeliveryFailed         = "DELIVERY_FAILED"
	TextCodeInvalidCurrentPassword = "INVALID_CURRENT_PASSWORD"
)

// ErrMissingCredentials is returned when the login payload lacks an email or password.
var ErrMissingCredentials = errors.New("please provide an email and password", errors.CategoryAuth).
	WithTextCode(TextCodeMissingCredentials).
	WithCode(errors.CodeUnauthorized)

// ErrInvalidCredentials is returned for an unknown email or a wrong password.
// Both cases share one error so responses do not leak which check failed.
var ErrInvalidCredentials = errors.New("incorrect email or password", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredentials).
	WithCode(errors.CodeUnauthorized)

// ErrUnauthenticated is returned when a request carries no usable credential.
var ErrUnauthenticated = errors.New("you must be signed in to access this resource", errors.CategoryAuth).
	WithTextCode(TextCodeUnauthenticated).
	WithCode(errors.CodeUnauthorized)

// ErrTokenExpired is returned when a bearer token is past its expiry.
var ErrTokenExpired = errors.New("authentication token has expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrTokenMalformed is returned when a bearer token fails signature or parse checks.
var ErrTokenMalformed = errors.New("invalid authentication token", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(errors.CodeUnauthorized)

// ErrIdentityGone is returned when the token subject no longer exists.
var ErrIdentityGone = errors.New("the user that owns those login credentials no longer exists", errors.CategoryAuth).
	WithTextCode(TextCodeIdentityGone).
	WithCode(errors.CodeUnauthorized)

// ErrCredentialsRotated is returned when the subject changed their password
// after the token was issued.
var ErrCredentialsRotated = errors.New("user recently changed their password, please login again", errors.CategoryAuth).
	WithTextCode(TextCodeCredentialsRotated).
	WithCode(errors.CodeUnauthorized)

// ErrForbidden is returned when an authenticated identity lacks a permitted role.
var ErrForbidden = errors.New("your assigned role restricts you from performing this action", errors.CategoryAuthz).
	WithTextCode(TextCodeForbidden).
	WithCode(errors.CodeForbidden)

// ErrUnknownSubject is returned when a password reset is requested for an
// email that matches no user.
var ErrUnknownSubject = errors.New("there is no user with that email address", errors.CategoryNotFound).
	WithTextCode(TextCodeUnknownSubject).
	WithCode(errors.CodeNotFound)

// ErrResetTokenInvalid is returned when a presented reset token matches no
// live record, either because it never existed or its window has passed.
var ErrResetTokenInvalid = errors.New("the password reset token is invalid or has expired", errors.CategoryBadInput).
	WithTextCode(TextCodeResetTokenInvalid).
	WithCode(errors.CodeBadRequest)

// ErrDeliveryFailed is returned when the reset notification could not be sent.
// The stored reset token is rolled back before this error surfaces.
var ErrDeliveryFailed = errors.New("there was an error sending the password reset email, try again later", errors.CategoryOperation).
	WithTextCode(TextCodeDeliveryFailed).
	WithCode(errors.CodeInternal)

// ErrInvalidCurrentPassword is returned by the password change flow when the
// presented current password does not match.
var ErrInvalidCurrentPassword = errors.New("the current password provided is incorrect", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCurrentPassword).
	WithCode(errors.CodeUnauthorized)

// ErrNoEmptyString is returned when hashing an empty password.
var ErrNoEmptyString = errors.New("password must not be empty", errors.CategoryValidation).
	WithCode(errors.CodeBadRequest)

// ErrMismatchedHashAndPassword is the normalized bcrypt mismatch error.
var ErrMismatchedHashAndPassword = errors.New("password does not match stored hash", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized)
