package authscreen

import (
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

// ErrUserNotFound is returned by UserState lookups for unknown users
var ErrUserNotFound = errors.New("user not found")

// ErrMissingToken is returned when a request carries no session token
var ErrMissingToken = errors.New("missing session token")

// ErrInvalidToken is returned when a session token fails verification
var ErrInvalidToken = errors.New("invalid session token")

const (
	// TextCodeInvalidForm marks local form validation failures
	TextCodeInvalidForm = "AUTH_FORM_INVALID"
	// TextCodeProviderFailure marks failures reported by the identity provider
	TextCodeProviderFailure = "IDENTITY_PROVIDER_FAILURE"
)

// Stage names the step of the submission that failed
type Stage = string

const (
	StageValidate       Stage = "validate"
	StageVerify         Stage = "verify"
	StageCreateAccount  Stage = "create_account"
	StageSetDisplayName Stage = "set_display_name"
)

// NewValidationError builds the error for a form that failed local checks.
func NewValidationError(message string) *goerrors.Error {
	return goerrors.New(message, goerrors.CategoryValidation).
		WithTextCode(TextCodeInvalidForm).
		WithCode(goerrors.CodeBadRequest).
		WithMetadata(map[string]any{
			"stage": StageValidate,
		})
}

// NewProviderError wraps a provider failure. The provider's message is kept
// verbatim so it can be shown as-is.
func NewProviderError(err error, stage Stage) *goerrors.Error {
	return goerrors.Wrap(err, goerrors.CategoryAuth, err.Error()).
		WithTextCode(TextCodeProviderFailure).
		WithCode(goerrors.CodeUnauthorized).
		WithMetadata(map[string]any{
			"stage": stage,
		})
}

// IsValidationError reports whether err came from local form validation
func IsValidationError(err error) bool {
	return hasTextCode(err, TextCodeInvalidForm)
}

// IsProviderError reports whether err came from the identity provider
func IsProviderError(err error) bool {
	return hasTextCode(err, TextCodeProviderFailure)
}

// IsFormError reports whether err is meant to be shown on the form
func IsFormError(err error) bool {
	return IsValidationError(err) || IsProviderError(err)
}

// ErrorMessage returns the single line shown to the user for err
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr.Message != "" {
		return richErr.Message
	}

	return err.Error()
}

func hasTextCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return false
	}
	return richErr.TextCode == code
}
