// Package firebase talks to the Google Identity Toolkit REST API on behalf of
// the auth screen and verifies the ID tokens it issues.
//
// Provider errors carry the same text the Firebase web SDK shows, for example
// "Firebase: Error (auth/invalid-credential).", so the screen can display
// them verbatim.
package firebase
