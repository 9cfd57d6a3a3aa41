// Package server provides HTTP routing, middleware, and OAuth handling for
// the CLI and web interfaces.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # OAuth Callback Handler
//
// [OAuthHandler] implements the Google OAuth2 authorization code callback.
//
// The handler validates the state parameter (CSRF protection), exchanges the
// authorization code for tokens, and sends the result through a channel.
//
// It only processes one callback to prevent replay attacks.
//
// # Usage
//
// When the user runs `yttransfer auth login`, a temporary HTTP server starts
// on the configured redirect host, handles the consent callback for one
// account role, and shuts down after receiving the token (see internal/auth).
//
// The web interface (internal/web) reuses the same router with session and
// logging middleware to serve account status, resource selection forms and
// transfer runs.
package server
