package local

import "errors"

// ErrInvalidCredentials is returned for unknown emails and wrong passwords alike
var ErrInvalidCredentials = errors.New("invalid email or password")

// ErrEmailInUse is returned when signing up with a registered email
var ErrEmailInUse = errors.New("email already in use")

// ErrWeakPassword is returned for passwords shorter than MinPasswordLength
var ErrWeakPassword = errors.New("password should be at least 6 characters")

// ErrAccountNotFound is returned when updating an account that does not exist
var ErrAccountNotFound = errors.New("account not found")

// ErrNoEmptyString is returned when hashing an empty password
var ErrNoEmptyString = errors.New("password must not be empty")

// ErrMismatchedHashAndPassword is returned when a password does not match its hash
var ErrMismatchedHashAndPassword = errors.New("password does not match")
