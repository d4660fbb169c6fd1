package tasks

import (
	"context"
	"fmt"

	"github.com/desertthunder/spins/internal/models"
	"github.com/desertthunder/spins/internal/services"
	"github.com/desertthunder/spins/internal/shared"
	"github.com/desertthunder/spins/internal/stats"
	"golang.org/x/sync/errgroup"
)

const insightTopItems = 20

// InsightArchive stores generated insights. repositories.InsightRepository implements it.
type InsightArchive interface {
	Create(insight *models.Insight) error
	List(criteria map[string]any) ([]*models.Insight, error)
}

// InsightEngine builds summary payloads, asks the summarizer for text and archives the result.
//
// The archive is optional; without one, insights are returned but not stored.
type InsightEngine struct {
	summarizer services.Summarizer
	spotify    services.Service
	history    *HistoryEngine
	archive    InsightArchive
}

// NewInsightEngine creates an InsightEngine. spotify, history and archive may be nil when unavailable.
func NewInsightEngine(summarizer services.Summarizer, spotify services.Service, history *HistoryEngine, archive InsightArchive) *InsightEngine {
	return &InsightEngine{
		summarizer: summarizer,
		spotify:    spotify,
		history:    history,
		archive:    archive,
	}
}

// SpotifyRequest builds the payload from the user's medium term top tracks and artists.
func (e *InsightEngine) SpotifyRequest(ctx context.Context, progress chan<- ProgressUpdate) (models.InsightRequest, error) {
	if e.spotify == nil {
		return models.InsightRequest{}, fmt.Errorf("%w: spotify service not initialized", shared.ErrServiceUnavailable)
	}

	var (
		tracks  []models.Track
		artists []models.Artist
		profile *models.Profile
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sendProgress(progress, fetchingUpdate(FetchTopTracks, 1, 3, "top tracks"))
		var err error
		tracks, err = e.spotify.TopTracks(gctx, models.MediumTerm, insightTopItems)
		return err
	})
	g.Go(func() error {
		sendProgress(progress, fetchingUpdate(FetchTopArtists, 2, 3, "top artists"))
		var err error
		artists, err = e.spotify.TopArtists(gctx, models.MediumTerm, insightTopItems)
		return err
	})
	g.Go(func() error {
		sendProgress(progress, fetchingUpdate(FetchProfile, 3, 3, "profile"))
		var err error
		profile, err = e.spotify.Profile(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.InsightRequest{}, err
	}

	return models.InsightRequest{
		Source:  models.SourceSpotify,
		Data:    stats.FromTopItems(tracks, artists),
		Profile: models.UserProfile{Username: profile.Username(), JoinDate: models.NotAvailable},
	}, nil
}

// HistoryRequest builds the payload from the stored listening history.
//
// The username comes from the Spotify profile when a session exists, and is "Not available" otherwise.
func (e *InsightEngine) HistoryRequest(ctx context.Context) (models.InsightRequest, error) {
	if e.history == nil {
		return models.InsightRequest{}, fmt.Errorf("%w: history storage not initialized", shared.ErrServiceUnavailable)
	}

	summary, err := e.history.Load(0)
	if err != nil {
		return models.InsightRequest{}, err
	}
	if summary == nil {
		return models.InsightRequest{}, shared.ErrNoHistory
	}

	profile := models.UserProfile{Username: models.NotAvailable, JoinDate: models.NotAvailable}
	if e.spotify != nil {
		if p, err := e.spotify.Profile(ctx); err == nil {
			profile.Username = p.Username()
		}
	}

	return models.InsightRequest{
		Source:  models.SourceHistory,
		Data:    stats.FromSummary(*summary),
		Profile: profile,
	}, nil
}

// Generate builds the payload for source, summarizes it and archives the insight.
func (e *InsightEngine) Generate(ctx context.Context, source models.InsightSource, progress chan<- ProgressUpdate) (*models.Insight, error) {
	var (
		req models.InsightRequest
		err error
	)

	switch source {
	case models.SourceSpotify:
		req, err = e.SpotifyRequest(ctx, progress)
	case models.SourceHistory:
		req, err = e.HistoryRequest(ctx)
	default:
		return nil, fmt.Errorf("%w: insight source %q", shared.ErrInvalidArgument, source)
	}
	if err != nil {
		return nil, err
	}

	return e.Summarize(ctx, req, progress)
}

// Summarize sends req to the summarizer and archives the reply.
func (e *InsightEngine) Summarize(ctx context.Context, req models.InsightRequest, progress chan<- ProgressUpdate) (*models.Insight, error) {
	if e.summarizer == nil {
		return nil, fmt.Errorf("%w: summarizer not configured", shared.ErrServiceUnavailable)
	}

	payload, err := shared.MarshalJSON(req, false)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}

	sendProgress(progress, generatingInsightUpdate(req.Source))
	text, err := e.summarizer.Summarize(ctx, req)
	if err != nil {
		return nil, err
	}

	return e.save(models.NewInsight(req.Source, string(payload), text, e.summarizer.Model()), progress)
}

// DescribePlaylist generates a playlist description from a free-text listening history.
func (e *InsightEngine) DescribePlaylist(ctx context.Context, history string, progress chan<- ProgressUpdate) (*models.Insight, error) {
	if e.summarizer == nil {
		return nil, fmt.Errorf("%w: summarizer not configured", shared.ErrServiceUnavailable)
	}

	sendProgress(progress, generatingInsightUpdate(models.SourcePlaylist))
	text, err := e.summarizer.DescribePlaylist(ctx, history)
	if err != nil {
		return nil, err
	}

	return e.save(models.NewInsight(models.SourcePlaylist, history, text, e.summarizer.Model()), progress)
}

// List returns archived insights newest first, optionally filtered by source.
func (e *InsightEngine) List(source models.InsightSource, limit int) ([]*models.Insight, error) {
	if e.archive == nil {
		return []*models.Insight{}, nil
	}
	return e.archive.List(map[string]any{"source": string(source), "limit": limit})
}

func (e *InsightEngine) save(insight *models.Insight, progress chan<- ProgressUpdate) (*models.Insight, error) {
	if e.archive == nil {
		return insight, nil
	}
	if err := e.archive.Create(insight); err != nil {
		return nil, fmt.Errorf("failed to archive insight: %w", err)
	}
	sendProgress(progress, archivedInsightUpdate(insight))
	return insight, nil
}
