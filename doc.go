// Package authscreen implements the sign-in / sign-up screen of the streaming
// app: a server-rendered form that forwards credentials to an identity
// provider, persists the issued session token and redirects into the browse
// view.
//
// Screen flow:
//   - AuthScreen.Submit validates the email locally, then calls the
//     IdentityService (Verify for sign-in, CreateAccount followed by
//     SetDisplayName for sign-up). Failures land in FormState.ErrorMessage.
//   - On success the screen dispatches a UserAction to UserState, writes the
//     token to the SessionStore under SessionTokenKey and navigates to the
//     browse path, in that order.
//
// HTTP:
//   - AuthController wires the screen to a go-router Router. The session token lives in an
//     HTTPOnly cookie (CookieSessionStore) and navigation is a 303 redirect.
//   - RequireSession guards the browse view using the provider's TokenVerifier.
//   - WithCSRF mounts a middleware (see middleware/csrf) in front of the form.
//   - Failed submits flash the error line so a following mode toggle keeps it.
//
// Providers live under provider/ (firebase, local) and user state backends
// under store/ (redisstore, boltstore). MemoryUserState is the in-process default.
package authscreen
