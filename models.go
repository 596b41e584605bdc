package authscreen

import "time"

// SessionTokenKey is the SessionStore key holding the session token
const SessionTokenKey = "accessToken"

// DefaultBrowsePath is where the screen navigates after authentication
const DefaultBrowsePath = "/browse"

// Account is what the identity provider hands back after verifying
// credentials or creating an account
type Account struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
	Token       string `json:"-"`
}

// Identity returns the read-only projection of the account
func (a *Account) Identity() UserIdentity {
	if a == nil {
		return UserIdentity{}
	}
	return UserIdentity{
		UID:         a.UID,
		Email:       a.Email,
		DisplayName: a.DisplayName,
	}
}

// UserIdentity is the minimal authenticated user record
type UserIdentity struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
}

// Name returns the display name, falling back to the email
func (u UserIdentity) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Email
}

// UserActionType enumerates the user state actions
type UserActionType string

const (
	UserActionLogin  UserActionType = "login"
	UserActionSignup UserActionType = "signup"
)

// UserAction is dispatched to UserState after a successful authentication
type UserAction struct {
	Type       UserActionType `json:"type"`
	User       UserIdentity   `json:"user"`
	OccurredAt time.Time      `json:"occurred_at"`
}
