package firebase

import (
	"fmt"
	"strings"
)

// CodeNetworkRequestFailed is used when the API could not be reached
const CodeNetworkRequestFailed = "auth/network-request-failed"

// serverCodes maps Identity Toolkit error codes to web SDK auth codes
var serverCodes = map[string]string{
	"EMAIL_EXISTS":                   "auth/email-already-in-use",
	"EMAIL_NOT_FOUND":                "auth/user-not-found",
	"INVALID_PASSWORD":               "auth/wrong-password",
	"INVALID_LOGIN_CREDENTIALS":      "auth/invalid-credential",
	"INVALID_EMAIL":                  "auth/invalid-email",
	"MISSING_EMAIL":                  "auth/missing-email",
	"MISSING_PASSWORD":               "auth/missing-password",
	"WEAK_PASSWORD":                  "auth/weak-password",
	"USER_DISABLED":                  "auth/user-disabled",
	"USER_NOT_FOUND":                 "auth/user-token-expired",
	"TOO_MANY_ATTEMPTS_TRY_LATER":    "auth/too-many-requests",
	"OPERATION_NOT_ALLOWED":          "auth/operation-not-allowed",
	"PASSWORD_LOGIN_DISABLED":        "auth/operation-not-allowed",
	"INVALID_ID_TOKEN":               "auth/invalid-user-token",
	"TOKEN_EXPIRED":                  "auth/user-token-expired",
	"CREDENTIAL_TOO_OLD_LOGIN_AGAIN": "auth/requires-recent-login",
	"INVALID_DISPLAY_NAME":           "auth/invalid-display-name",
}

// Error is a failure reported by Firebase Auth
type Error struct {
	// Code is the web SDK style code, e.g. auth/invalid-credential
	Code string
	// Detail is the server supplied explanation, if any
	Detail string
	// Status is the HTTP status of the response, zero for transport errors
	Status int
	cause  error
}

// Error renders the message the Firebase web SDK shows for the same failure
func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("Firebase: %s (%s).", e.Detail, e.Code)
	}
	return fmt.Sprintf("Firebase: Error (%s).", e.Code)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// newServerError parses messages such as
// "WEAK_PASSWORD : Password should be at least 6 characters"
func newServerError(status int, message string) *Error {
	serverCode, detail, _ := strings.Cut(message, ":")
	serverCode = strings.TrimSpace(serverCode)
	detail = strings.TrimSpace(detail)

	code, ok := serverCodes[serverCode]
	if !ok {
		code = "auth/" + strings.ToLower(strings.ReplaceAll(serverCode, "_", "-"))
	}

	if serverCode == "" {
		code = "auth/internal-error"
	}

	return &Error{
		Code:   code,
		Detail: detail,
		Status: status,
	}
}

func newNetworkError(err error) *Error {
	return &Error{
		Code:  CodeNetworkRequestFailed,
		cause: err,
	}
}
