// Package services defines the [Service] interface for music streaming providers and the [Summarizer] interface
// for text generation, with implementations for the Spotify Web API and OpenAI-compatible chat completions.
//
// # Spotify Implementation
//
// [SpotifyService] uses OAuth2 for authentication with automatic token refresh.
// Each newly issued access token is passed to the callback registered with SetTokenRefreshCallback so it can be persisted.
//
// Requests are paced by a token bucket limiter and read only: profile, top tracks, top artists
// and the recently played feed.
//
// # OAuth Service Extension
//
// The [OAuthService] interface extends Service for OAuth providers
//
// [SpotifyService] implements this for server-side OAuth flows used by the CLI and web server.
//
// # Summaries
//
// [OpenAIService] renders the prompt templates embedded in the prompts package and sends one chat completion per request.
// There is no retry; a failed request is reported and the caller may try again.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrNotAuthenticated] : Authenticate() not called
//   - [shared.ErrTokenExpired] : OAuth token expired or refresh failed, reauthorization needed
//   - [shared.ErrAPIRequest] : upstream returned a non-2xx status; the upstream message is kept
//   - [shared.ErrServiceUnavailable] : upstream reported 503
//   - [shared.ErrEmptyCompletion] : chat completion returned no text
package services
