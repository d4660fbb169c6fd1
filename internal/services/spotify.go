// Spotify Web API implementation of [Service]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/desertthunder/spins/internal/models"
	"github.com/desertthunder/spins/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	// DefaultRedirectURI matches the callback served by the local OAuth listener.
	DefaultRedirectURI = "http://127.0.0.1:3000/callback"

	spotifyRequestsPerSecond = 10
	spotifyMaxLimit          = 50
	spotifyDefaultLimit      = 20
)

var spotifyScopes = []string{
	"user-read-private",
	"user-read-email",
	"user-top-read",
	"user-read-recently-played",
}

type followers struct {
	Total int `json:"total"`
}

// SpotifyUser represents a Spotify user profile.
type SpotifyUser struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email"`
	Country     string    `json:"country"`
	Product     string    `json:"product"` // premium, free, etc.
	Followers   followers `json:"followers"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Artists    []SpotifyArtist `json:"artists"`
	Album      SpotifyAlbum    `json:"album"`
	DurationMS int             `json:"duration_ms"`
	Popularity int             `json:"popularity"`
}

// SpotifyArtist represents a Spotify artist. Simplified artist objects nested in tracks omit genres and popularity.
type SpotifyArtist struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Genres     []string  `json:"genres"`
	Popularity int       `json:"popularity"`
	Followers  followers `json:"followers"`
}

// SpotifyAlbum represents a simplified Spotify album.
type SpotifyAlbum struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ReleaseDate string `json:"release_date"`
}

type spotifyPage[T any] struct {
	Items []T     `json:"items"`
	Total int     `json:"total"`
	Limit int     `json:"limit"`
	Next  *string `json:"next"`
}

// SpotifyPlayHistory represents one item of the recently played feed.
type SpotifyPlayHistory struct {
	Track    SpotifyTrack `json:"track"`
	PlayedAt time.Time    `json:"played_at"`
}

type spotifyErrorBody struct {
	Error struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

// SpotifyService implements the Service interface for Spotify API interactions.
// Uses [oauth2] for authentication and a [rate.Limiter] to pace outgoing requests.
type SpotifyService struct {
	config         *oauth2.Config
	token          *oauth2.Token
	httpClient     *http.Client
	credentials    map[string]string
	baseURL        string
	limiter        *rate.Limiter
	mu             sync.RWMutex
	onTokenRefresh func(*oauth2.Token)
}

// NewSpotifyService creates a new Spotify service with the given OAuth2 credentials.
func NewSpotifyService(credentials map[string]string) (*SpotifyService, error) {
	clientID, ok := credentials["client_id"]
	if !ok || clientID == "" {
		return nil, fmt.Errorf("%w: missing client_id", shared.ErrMissingCredentials)
	}

	clientSecret, ok := credentials["client_secret"]
	if !ok || clientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret", shared.ErrMissingCredentials)
	}

	redirectURI, ok := credentials["redirect_uri"]
	if !ok || redirectURI == "" {
		redirectURI = DefaultRedirectURI
	}

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes:       spotifyScopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	return &SpotifyService{
		config:      config,
		httpClient:  http.DefaultClient,
		credentials: credentials,
		baseURL:     spotifyBaseURL,
		limiter:     rate.NewLimiter(rate.Limit(spotifyRequestsPerSecond), spotifyRequestsPerSecond),
	}, nil
}

// Authenticate performs OAuth2 authentication with Spotify.
//
// Expects either an "access_token" (optionally with "refresh_token" and an RFC 3339 "token_expiry")
// or an "auth_code" to exchange.
func (s *SpotifyService) Authenticate(ctx context.Context, credentials map[string]string) error {
	if accessToken, ok := credentials["access_token"]; ok && accessToken != "" {
		token := &oauth2.Token{
			AccessToken:  accessToken,
			RefreshToken: credentials["refresh_token"],
			TokenType:    "Bearer",
		}
		if expiry := credentials["token_expiry"]; expiry != "" {
			if t, err := time.Parse(time.RFC3339, expiry); err == nil {
				token.Expiry = t
			}
		}
		return s.OAuthenticate(ctx, token)
	}

	if authCode, ok := credentials["auth_code"]; ok && authCode != "" {
		token, err := s.config.Exchange(ctx, authCode)
		if err != nil {
			return fmt.Errorf("%w: failed to exchange auth code: %v", shared.ErrAuthFailed, err)
		}
		return s.OAuthenticate(ctx, token)
	}

	return fmt.Errorf("%w: missing access_token or auth_code", shared.ErrMissingCredentials)
}

// OAuthenticate authenticates with a token from a completed OAuth flow.
//
// Refreshed tokens are reported through the callback registered with [SpotifyService.SetTokenRefreshCallback].
func (s *SpotifyService) OAuthenticate(ctx context.Context, token *oauth2.Token) error {
	if token == nil || token.AccessToken == "" {
		return fmt.Errorf("%w: empty token", shared.ErrMissingCredentials)
	}

	source := &refreshableTokenSource{
		source:   s.config.TokenSource(ctx, token),
		callback: s.tokenRefreshed,
		last:     token.AccessToken,
	}

	s.token = token
	s.httpClient = oauth2.NewClient(ctx, source)
	return nil
}

// SetTokenRefreshCallback registers a function called whenever the token source issues a new access token.
func (s *SpotifyService) SetTokenRefreshCallback(callback func(*oauth2.Token)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onTokenRefresh = callback
}

func (s *SpotifyService) tokenRefreshed(token *oauth2.Token) {
	s.mu.RLock()
	callback := s.onTokenRefresh
	s.mu.RUnlock()

	if callback != nil {
		callback(token)
	}
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// GetAuthURL returns the OAuth2 authorization URL for user login.
func (s *SpotifyService) GetAuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// GetOAuthConfig returns the OAuth2 configuration.
func (s *SpotifyService) GetOAuthConfig() *oauth2.Config {
	return s.config
}

// doRequest performs an authenticated, rate limited GET against the Spotify API.
func (s *SpotifyService) doRequest(ctx context.Context, endpoint string, query url.Values, result any) error {
	if s.token == nil {
		return fmt.Errorf("%w: connect a Spotify account first", shared.ErrNotAuthenticated)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	apiURL := s.baseURL + endpoint
	if len(query) > 0 {
		apiURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		var rerr *oauth2.RetrieveError
		if errors.As(err, &rerr) {
			return fmt.Errorf("%w: %v", shared.ErrTokenExpired, rerr)
		}
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return spotifyError(resp)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// spotifyError maps a non-2xx response to a shared error carrying Spotify's message.
func spotifyError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	message := http.StatusText(resp.StatusCode)
	var parsed spotifyErrorBody
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error.Message != "" {
		message = parsed.Error.Message
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", shared.ErrTokenExpired, message)
	case http.StatusServiceUnavailable:
		return fmt.Errorf("%w: %s", shared.ErrServiceUnavailable, message)
	default:
		return fmt.Errorf("%w: spotify status %d: %s", shared.ErrAPIRequest, resp.StatusCode, message)
	}
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return spotifyDefaultLimit
	}
	return min(limit, spotifyMaxLimit)
}

func topQuery(tr models.TimeRange, limit int) url.Values {
	if tr == "" {
		tr = models.MediumTerm
	}
	return url.Values{
		"time_range": {string(tr)},
		"limit":      {strconv.Itoa(clampLimit(limit))},
	}
}

// UserProfile retrieves the current authenticated user's raw profile.
func (s *SpotifyService) UserProfile(ctx context.Context) (*SpotifyUser, error) {
	var user SpotifyUser
	if err := s.doRequest(ctx, "/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Profile retrieves the current authenticated user's profile.
func (s *SpotifyService) Profile(ctx context.Context) (*models.Profile, error) {
	user, err := s.UserProfile(ctx)
	if err != nil {
		return nil, err
	}
	return &models.Profile{
		ID:          user.ID,
		DisplayName: user.DisplayName,
		Email:       user.Email,
		Country:     user.Country,
		Product:     user.Product,
		Followers:   user.Followers.Total,
	}, nil
}

// TopTracks retrieves the user's top tracks. Limits above 50 are clamped.
func (s *SpotifyService) TopTracks(ctx context.Context, tr models.TimeRange, limit int) ([]models.Track, error) {
	var page spotifyPage[SpotifyTrack]
	if err := s.doRequest(ctx, "/me/top/tracks", topQuery(tr, limit), &page); err != nil {
		return nil, err
	}

	tracks := make([]models.Track, 0, len(page.Items))
	for _, t := range page.Items {
		tracks = append(tracks, t.toModel())
	}
	return tracks, nil
}

// TopArtists retrieves the user's top artists. Limits above 50 are clamped.
func (s *SpotifyService) TopArtists(ctx context.Context, tr models.TimeRange, limit int) ([]models.Artist, error) {
	var page spotifyPage[SpotifyArtist]
	if err := s.doRequest(ctx, "/me/top/artists", topQuery(tr, limit), &page); err != nil {
		return nil, err
	}

	artists := make([]models.Artist, 0, len(page.Items))
	for _, a := range page.Items {
		artists = append(artists, a.toModel())
	}
	return artists, nil
}

// RecentlyPlayed retrieves the recently played feed. Spotify serves at most 50 items.
func (s *SpotifyService) RecentlyPlayed(ctx context.Context, limit int) ([]models.RecentPlay, error) {
	query := url.Values{"limit": {strconv.Itoa(clampLimit(limit))}}

	var page spotifyPage[SpotifyPlayHistory]
	if err := s.doRequest(ctx, "/me/player/recently-played", query, &page); err != nil {
		return nil, err
	}

	plays := make([]models.RecentPlay, 0, len(page.Items))
	for _, p := range page.Items {
		plays = append(plays, models.RecentPlay{Track: p.Track.toModel(), PlayedAt: p.PlayedAt})
	}
	return plays, nil
}

func (t SpotifyTrack) toModel() models.Track {
	artists := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		artists = append(artists, a.Name)
	}
	return models.Track{
		ID:         t.ID,
		Name:       t.Name,
		Artists:    artists,
		Album:      t.Album.Name,
		DurationMs: t.DurationMS,
		Popularity: t.Popularity,
	}
}

func (a SpotifyArtist) toModel() models.Artist {
	genres := a.Genres
	if genres == nil {
		genres = []string{}
	}
	return models.Artist{
		ID:         a.ID,
		Name:       a.Name,
		Genres:     genres,
		Popularity: a.Popularity,
		Followers:  a.Followers.Total,
	}
}

// refreshableTokenSource wraps an [oauth2.TokenSource] and reports each newly issued access token.
type refreshableTokenSource struct {
	source   oauth2.TokenSource
	callback func(*oauth2.Token)
	mu       sync.Mutex
	last     string
}

func (r *refreshableTokenSource) Token() (*oauth2.Token, error) {
	token, err := r.source.Token()
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	changed := token.AccessToken != r.last
	r.last = token.AccessToken
	r.mu.Unlock()

	if changed && r.callback != nil {
		r.callback(token)
	}
	return token, nil
}
