// Package server provides HTTP routing, middleware, server lifecycle and OAuth handling for the CLI and dashboard.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support. [ChiRouter] implements it on
// a chi mux, so paths may carry URL parameters (read them with [URLParam]).
//
// [Middleware] wraps handlers in reverse order (last added executes first). [RequestLogger] logs
// every request through charmbracelet/log.
//
// # OAuth Callback Handler
//
// [OAuthHandler] implements the OAuth2 authorization code callback. It validates the state parameter,
// exchanges the code for tokens and publishes one result through a channel. [OAuthHandler.Wait]
// bounds the wait with a timeout.
//
// # Lifecycle
//
// [Server] runs an http.Server in the background. The CLI starts one on localhost for the callback
// during `spins spotify auth`, and `spins serve` runs the dashboard until interrupted.
package server
