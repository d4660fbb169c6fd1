package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/spins/internal/models"
	"github.com/desertthunder/spins/internal/server"
	"github.com/desertthunder/spins/internal/services"
	"github.com/desertthunder/spins/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

const oauthTimeout = 2 * time.Minute

// SpotifyReauth performs the full OAuth2 flow to get new tokens
func (r *Runner) SpotifyReauth(ctx context.Context, configPath string, config *shared.Config, srv services.OAuthService) (*shared.Config, error) {
	token, err := r.doOAuth(ctx, config, srv, "reauthorization")
	if err != nil {
		return nil, err
	}

	if err := config.Credentials.Spotify.Update(token); err != nil {
		return nil, fmt.Errorf("failed to update spotify configuration: %w", err)
	}

	if err := shared.SaveConfig(configPath, config); err != nil {
		return nil, fmt.Errorf("failed to save config: %w", err)
	}

	r.writePlainln("✓ Reauthorization successful")
	r.writePlain("✓ New tokens saved to %s\n", configPath)

	return config, nil
}

// SpotifyAuth performs OAuth2 authentication flow for Spotify.
//
// Starts a local HTTP server, opens browser for user authorization, and exchanges auth code for tokens.
func (r *Runner) SpotifyAuth(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")
	config := r.loadConfigAt(configPath)

	if config.Credentials.Spotify.ClientID == "" || config.Credentials.Spotify.ClientSecret == "" {
		return fmt.Errorf("%w: Spotify client_id and client_secret must be set in %s or the environment", shared.ErrMissingCredentials, configPath)
	}

	spotifyService, err := services.NewSpotifyService(config.Credentials.Spotify.Map())
	if err != nil {
		return fmt.Errorf("failed to create Spotify service: %w", err)
	}

	token, err := r.doOAuth(ctx, config, spotifyService, "authorization")
	if err != nil {
		return err
	}

	if err := config.Credentials.Spotify.Update(token); err != nil {
		return fmt.Errorf("failed to update spotify configuration: %w", err)
	}

	if err := shared.SaveConfig(configPath, config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	r.writePlainln("✓ Authorization successful")
	r.writePlain("✓ Tokens saved to %s\n\n", configPath)

	if err := spotifyService.OAuthenticate(ctx, token); err == nil {
		if profile, err := spotifyService.Profile(ctx); err == nil {
			r.writePlain("Connected as %s\n", profile.Username())
		} else {
			r.logger.Warn("failed to fetch profile after authorization", "error", err)
		}
	}
	r.writePlain("You can now use: spins spotify overview\n")

	return nil
}

// SpotifyProfile prints the connected account.
func (r *Runner) SpotifyProfile(ctx context.Context, cmd *cli.Command) error {
	var profile *models.Profile
	err := r.withSpotify(ctx, cmd, func() error {
		var err error
		profile, err = r.spotify.Profile(ctx)
		return err
	})
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(profile, cmd.Bool("pretty"))
	}

	r.writePlain("User: %s\n", profile.Username())
	r.writePlain("ID: %s\n", profile.ID)
	if profile.Email != "" {
		r.writePlain("Email: %s\n", profile.Email)
	}
	if profile.Country != "" {
		r.writePlain("Country: %s\n", profile.Country)
	}
	if profile.Product != "" {
		r.writePlain("Plan: %s\n", profile.Product)
	}
	r.writePlain("Followers: %s\n", shared.FormatCount(profile.Followers))
	return nil
}

// SpotifyTopTracks lists the user's top tracks for a time range.
func (r *Runner) SpotifyTopTracks(ctx context.Context, cmd *cli.Command) error {
	tr, err := timeRangeFlag(cmd)
	if err != nil {
		return err
	}
	limit := cmd.Int("limit")

	r.logger.Infof("listing spotify top tracks for %v with limit %v", tr, limit)

	var tracks []models.Track
	err = r.withSpotify(ctx, cmd, func() error {
		var err error
		tracks, err = r.spotify.TopTracks(ctx, tr, limit)
		return err
	})
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(tracks, cmd.Bool("pretty"))
	}

	r.writePlain("Top tracks • %s\n\n", tr.Label())
	for i, t := range tracks {
		r.writePlain("%2d. %s - %s\n", i+1, t.ArtistNames(), t.Name)
		if t.Album != "" {
			r.writePlain("    Album: %s\n", t.Album)
		}
	}
	return nil
}

// SpotifyTopArtists lists the user's top artists for a time range.
func (r *Runner) SpotifyTopArtists(ctx context.Context, cmd *cli.Command) error {
	tr, err := timeRangeFlag(cmd)
	if err != nil {
		return err
	}
	limit := cmd.Int("limit")

	r.logger.Infof("listing spotify top artists for %v with limit %v", tr, limit)

	var artists []models.Artist
	err = r.withSpotify(ctx, cmd, func() error {
		var err error
		artists, err = r.spotify.TopArtists(ctx, tr, limit)
		return err
	})
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(artists, cmd.Bool("pretty"))
	}

	r.writePlain("Top artists • %s\n\n", tr.Label())
	for i, a := range artists {
		r.writePlain("%2d. %s\n", i+1, a.Name)
		if len(a.Genres) > 0 {
			r.writePlain("    Genres: %s\n", strings.Join(a.Genres, ", "))
		}
	}
	return nil
}

// SpotifyRecent lists recently played tracks, newest first.
func (r *Runner) SpotifyRecent(ctx context.Context, cmd *cli.Command) error {
	limit := cmd.Int("limit")

	var plays []models.RecentPlay
	err := r.withSpotify(ctx, cmd, func() error {
		var err error
		plays, err = r.spotify.RecentlyPlayed(ctx, limit)
		return err
	})
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(plays, cmd.Bool("pretty"))
	}

	r.writePlain("Recently played (%d)\n\n", len(plays))
	for _, p := range plays {
		r.writePlain("%s  %s - %s\n", p.PlayedAt.Local().Format("Jan 02 15:04"), p.Track.ArtistNames(), p.Track.Name)
	}
	return nil
}

// SpotifyOverview summarizes the recently played feed and top artists.
func (r *Runner) SpotifyOverview(ctx context.Context, cmd *cli.Command) error {
	tr, err := timeRangeFlag(cmd)
	if err != nil {
		return err
	}

	var overview *models.RecentOverview
	err = r.withSpotify(ctx, cmd, func() error {
		var err error
		overview, err = r.overview.Overview(ctx, tr, nil)
		return err
	})
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(overview, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Listening overview • %s", tr.Label()))
	r.writePlain("Recent listening: %s across %d plays\n", shared.FormatMinutes(overview.TotalMinutes), overview.TotalTracks)
	r.writePlain("Most played artist: %s\n", overview.MostPlayedArtist)
	r.writePlain("Average play: %.1f min\n", overview.AvgListeningDuration)
	r.writePlain("Top genre: %s\n", overview.TopGenre)

	if len(overview.DailyMinutes) > 0 {
		r.writePlainln("Daily minutes:")
		for _, d := range overview.DailyMinutes {
			r.writePlain("  %s  %d\n", d.Date, d.Minutes)
		}
	}

	if len(overview.TopArtists) > 0 {
		r.writePlainln("Top artists:")
		for i, a := range overview.TopArtists {
			r.writePlain("  %2d. %s\n", i+1, a.Name)
		}
	}
	return nil
}

func timeRangeFlag(cmd *cli.Command) (models.TimeRange, error) {
	tr, err := models.ParseTimeRange(cmd.String("range"))
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrInvalidFlag, err)
	}
	return tr, nil
}

// withSpotify runs call, reauthorizing and retrying once when the stored token has expired.
func (r *Runner) withSpotify(ctx context.Context, cmd *cli.Command, call func() error) error {
	if r.spotify == nil {
		return fmt.Errorf("%w: Spotify service not initialized, set client_id and client_secret", shared.ErrServiceUnavailable)
	}

	err := call()
	if reauthed, authErr := r.handleSpotifyAuthError(ctx, err, cmd); reauthed {
		if authErr != nil {
			return authErr
		}
		err = call()
	}

	if errors.Is(err, shared.ErrNotAuthenticated) {
		return fmt.Errorf("%w (run 'spins spotify auth')", err)
	}
	return err
}

// doOAuth executes the OAuth2 authorization flow with a local HTTP server
func (r *Runner) doOAuth(ctx context.Context, config *shared.Config, oauthSrv services.OAuthService, prefix string) (*oauth2.Token, error) {
	state, err := shared.GenerateState()
	if err != nil {
		return nil, fmt.Errorf("failed to generate state token: %w", err)
	}

	authURL := oauthSrv.GetAuthURL(state)
	oauthHandler := server.NewOAuthHandler(oauthSrv.GetOAuthConfig(), state)
	router := server.NewRouter()
	router.Use(server.RequestLogger(r.logger))
	router.Handler(oauthHandler)

	serverAddr := fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)
	httpServer := server.New(serverAddr, router, r.logger)

	r.logger.Infof("starting OAuth server for %s at %v", prefix, serverAddr)
	httpServer.Start()
	defer func() {
		if err := httpServer.Shutdown(); err != nil {
			r.logger.Warn("error shutting down server", "error", err)
		}
	}()

	time.Sleep(100 * time.Millisecond)

	r.writePlain("→ Opening browser for Spotify %s...\n", prefix)
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (2 minute timeout)...\n")

	token, err := oauthHandler.Wait(ctx, httpServer.Errors(), oauthTimeout)
	if err != nil {
		return nil, fmt.Errorf("authorization failed: %w", err)
	}
	return token, nil
}

// handleSpotifyAuthError checks if an error is a token expiration error and triggers reauthorization if needed.
func (r *Runner) handleSpotifyAuthError(ctx context.Context, err error, cmd *cli.Command) (bool, error) {
	if err == nil {
		return false, nil
	}

	if !errors.Is(err, shared.ErrTokenExpired) {
		return false, err
	}

	r.writePlainln("⚠ Authentication token expired. Starting reauthorization...\n")

	configPath := cmd.String("config")
	if configPath == "" {
		configPath = r.configPath
	}
	if configPath == "" {
		configPath = defaultConfigPath
	}
	config := r.loadConfigAt(configPath)

	spotifyService, ok := r.spotify.(services.OAuthService)
	if !ok {
		return true, fmt.Errorf("spotify service does not support reauthorization")
	}

	updatedConfig, reauthErr := r.SpotifyReauth(ctx, configPath, config, spotifyService)
	if reauthErr != nil {
		return true, fmt.Errorf("reauthorization failed: %w", reauthErr)
	}

	if authErr := spotifyService.OAuthenticate(ctx, updatedConfig.Credentials.Spotify.Token()); authErr != nil {
		return true, fmt.Errorf("failed to authenticate with new tokens: %w", authErr)
	}

	r.config = updatedConfig
	r.writePlainln("✓ Successfully reauthenticated. Retrying operation...\n")

	return true, nil
}
