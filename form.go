package authscreen

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// Mode is the form variant being shown
type Mode string

const (
	ModeSignIn Mode = "signin"
	ModeSignUp Mode = "signup"
)

// InvalidEmailMessage is shown when the email fails the format check
const InvalidEmailMessage = "Email ID is not valid"

// ParseMode maps a raw form value to a Mode, defaulting to sign-in
func ParseMode(raw string) Mode {
	if Mode(raw) == ModeSignUp {
		return ModeSignUp
	}
	return ModeSignIn
}

// FormState holds what the user typed plus the last error line
type FormState struct {
	Mode         Mode   `json:"mode"`
	Email        string `json:"email"`
	Password     string `json:"-"`
	DisplayName  string `json:"display_name,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// NewFormState returns an empty sign-in form
func NewFormState() *FormState {
	return &FormState{Mode: ModeSignIn}
}

// IsSignIn reports whether the form is in sign-in mode
func (f *FormState) IsSignIn() bool {
	return f.Mode != ModeSignUp
}

// Toggle flips between sign-in and sign-up. Field values and the error line
// are left untouched.
func (f *FormState) Toggle() {
	if f.IsSignIn() {
		f.Mode = ModeSignUp
		return
	}
	f.Mode = ModeSignIn
}

// Normalize replaces an unknown mode with sign-in
func (f *FormState) Normalize() *FormState {
	f.Mode = ParseMode(string(f.Mode))
	return f
}

// ValidateEmail runs the local email check. It returns the message to show,
// or an empty string when the email is acceptable.
func ValidateEmail(email string) string {
	err := validation.Validate(email,
		validation.Required.Error(InvalidEmailMessage),
		is.Email.Error(InvalidEmailMessage),
	)
	if err != nil {
		return err.Error()
	}
	return ""
}

// DisplayNameRules are the checks applied to display names by providers that
// validate them locally
func DisplayNameRules() []validation.Rule {
	return []validation.Rule{
		validation.Required.Error("display name is required"),
		validation.Length(1, 100).Error("display name must be at most 100 characters"),
	}
}
