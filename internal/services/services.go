// package services defines interfaces for the remote APIs used by the listening analytics tools
//
// Spotify Web API, OpenAI-compatible chat completions
package services

import (
	"context"

	"github.com/desertthunder/spins/internal/models"
	"golang.org/x/oauth2"
)

// Service defines the interface for a music streaming provider that exposes a user's listening data.
type Service interface {
	// Authenticate performs OAuth or API key authentication with the service.
	// Returns an error if authentication fails.
	Authenticate(ctx context.Context, credentials map[string]string) error

	// Profile retrieves the authenticated user's profile.
	Profile(ctx context.Context) (*models.Profile, error)

	// TopTracks retrieves the user's most played tracks for the time range.
	TopTracks(ctx context.Context, tr models.TimeRange, limit int) ([]models.Track, error)

	// TopArtists retrieves the user's most played artists for the time range.
	TopArtists(ctx context.Context, tr models.TimeRange, limit int) ([]models.Artist, error)

	// RecentlyPlayed retrieves up to limit of the user's most recent plays, newest first.
	RecentlyPlayed(ctx context.Context, limit int) ([]models.RecentPlay, error)

	// Name returns the name of the service (e.g., "Spotify")
	Name() string
}

// OAuthService extends [Service] for providers that authenticate with an OAuth2 authorization code flow.
type OAuthService interface {
	Service

	// GetAuthURL returns the URL the user visits to grant access.
	GetAuthURL(state string) string

	// GetOAuthConfig exposes the OAuth2 configuration for exchanging authorization codes.
	GetOAuthConfig() *oauth2.Config

	// OAuthenticate authenticates with a token obtained from a completed flow.
	OAuthenticate(ctx context.Context, token *oauth2.Token) error

	// SetTokenRefreshCallback registers a function invoked whenever a new token is issued.
	SetTokenRefreshCallback(callback func(*oauth2.Token))
}

// Summarizer generates natural-language text from listening data.
type Summarizer interface {
	// Summarize produces a short summary of the user's listening habits.
	Summarize(ctx context.Context, req models.InsightRequest) (string, error)

	// DescribePlaylist writes a playlist description from a free-text listening history.
	DescribePlaylist(ctx context.Context, history string) (string, error)

	// Model names the model that produced the text.
	Model() string
}
