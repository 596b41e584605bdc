// Package local is a self-hosted identity provider for the auth screen.
//
// Accounts live in a SQL database through bun, passwords are bcrypt hashed and
// session tokens are HS256 JWTs carrying the user ID as subject.
package local
