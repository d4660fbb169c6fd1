package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/desertthunder/spins/internal/models"
	"github.com/desertthunder/spins/internal/shared"
	tu "github.com/desertthunder/spins/internal/testing"
)

// memoryArchive keeps insights in a slice, newest last.
type memoryArchive struct {
	insights  []*models.Insight
	createErr error
	criteria  map[string]any
}

func (a *memoryArchive) Create(insight *models.Insight) error {
	if a.createErr != nil {
		return a.createErr
	}
	insight.SetID("insight-" + string(rune('a'+len(a.insights))))
	insight.SetSequence(len(a.insights) + 1)
	a.insights = append(a.insights, insight)
	return nil
}

func (a *memoryArchive) List(criteria map[string]any) ([]*models.Insight, error) {
	a.criteria = criteria
	out := []*models.Insight{}
	for i := len(a.insights) - 1; i >= 0; i-- {
		if s, _ := criteria["source"].(string); s != "" && string(a.insights[i].Source()) != s {
			continue
		}
		out = append(out, a.insights[i])
	}
	return out, nil
}

func topItems() *tu.MockService {
	svc := &tu.MockService{ProfileResult: &models.Profile{ID: "u1", DisplayName: "Listener"}}
	for _, name := range []string{"t1", "t2", "t3", "t4", "t5", "t6", "t7"} {
		svc.Tracks = append(svc.Tracks, models.Track{Name: name, Artists: []string{"A", "B"}, DurationMs: 90000})
	}
	for _, name := range []string{"a1", "a2", "a3", "a4"} {
		svc.Artists = append(svc.Artists, models.Artist{Name: name})
	}
	return svc
}

func TestInsightEngine(t *testing.T) {
	ctx := context.Background()

	t.Run("spotify request", func(t *testing.T) {
		e := NewInsightEngine(nil, topItems(), nil, nil)

		req, err := e.SpotifyRequest(ctx, nil)
		if err != nil {
			t.Fatalf("SpotifyRequest failed: %v", err)
		}
		if req.Source != models.SourceSpotify {
			t.Errorf("expected spotify source, got %s", req.Source)
		}
		if req.Data.TotalMinutes != 11 || len(req.Data.TopTracks) != 5 || len(req.Data.TopArtists) != 3 {
			t.Errorf("unexpected payload %+v", req.Data)
		}
		if req.Data.TopTracks[0].Artist != "A, B" {
			t.Errorf("expected joined artists, got %q", req.Data.TopTracks[0].Artist)
		}
		if req.Data.ListeningDistribution != models.NotAvailable {
			t.Errorf("expected distribution to be unavailable, got %q", req.Data.ListeningDistribution)
		}
		if req.Profile.Username != "Listener" || req.Profile.JoinDate != models.NotAvailable {
			t.Errorf("unexpected profile %+v", req.Profile)
		}
	})

	t.Run("spotify request failure", func(t *testing.T) {
		svc := topItems()
		svc.ArtistsErr = shared.ErrNotAuthenticated

		if _, err := NewInsightEngine(nil, svc, nil, nil).SpotifyRequest(ctx, nil); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("history request", func(t *testing.T) {
		history, _ := newTestHistoryEngine(t)
		if _, err := history.Upload(ctx, sample(), nil); err != nil {
			t.Fatalf("Upload failed: %v", err)
		}

		req, err := NewInsightEngine(nil, nil, history, nil).HistoryRequest(ctx)
		if err != nil {
			t.Fatalf("HistoryRequest failed: %v", err)
		}
		if req.Source != models.SourceHistory || req.Data.TotalMinutes != 5 {
			t.Errorf("unexpected request %+v", req)
		}
		if len(req.Data.TopArtists) != 1 || req.Data.TopArtists[0] != "A" {
			t.Errorf("unexpected artists %v", req.Data.TopArtists)
		}
		if req.Profile.Username != models.NotAvailable {
			t.Errorf("expected unavailable username, got %q", req.Profile.Username)
		}
		if req.Data.ListeningDistribution == models.NotAvailable {
			t.Error("expected a distribution for a non-empty history")
		}
	})

	t.Run("history request uses profile when signed in", func(t *testing.T) {
		history, _ := newTestHistoryEngine(t)
		if _, err := history.Upload(ctx, sample(), nil); err != nil {
			t.Fatalf("Upload failed: %v", err)
		}

		req, err := NewInsightEngine(nil, topItems(), history, nil).HistoryRequest(ctx)
		if err != nil {
			t.Fatalf("HistoryRequest failed: %v", err)
		}
		if req.Profile.Username != "Listener" {
			t.Errorf("expected profile username, got %q", req.Profile.Username)
		}
	})

	t.Run("history request without history", func(t *testing.T) {
		history, _ := newTestHistoryEngine(t)

		if _, err := NewInsightEngine(nil, nil, history, nil).HistoryRequest(ctx); !errors.Is(err, shared.ErrNoHistory) {
			t.Errorf("expected ErrNoHistory, got %v", err)
		}
		if _, err := NewInsightEngine(nil, nil, nil, nil).HistoryRequest(ctx); !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})

	t.Run("generate archives the summary", func(t *testing.T) {
		summarizer := &tu.MockSummarizer{Text: "You love A."}
		archive := &memoryArchive{}
		progress := make(chan ProgressUpdate, 10)

		insight, err := NewInsightEngine(summarizer, topItems(), nil, archive).Generate(ctx, models.SourceSpotify, progress)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		close(progress)

		if insight.Summary() != "You love A." || insight.Model() != "mock-model" || insight.Sequence() != 1 {
			t.Errorf("unexpected insight %+v", insight.View())
		}
		if len(archive.insights) != 1 {
			t.Errorf("expected one archived insight, got %d", len(archive.insights))
		}
		if summarizer.LastRequest.Profile.Username != "Listener" {
			t.Errorf("summarizer got %+v", summarizer.LastRequest)
		}

		var payload models.InsightRequest
		if err := json.Unmarshal([]byte(insight.Payload()), &payload); err != nil {
			t.Fatalf("payload is not JSON: %v", err)
		}
		if payload.Data.TotalMinutes != 11 {
			t.Errorf("unexpected stored payload %+v", payload)
		}

		phases := map[Phase]bool{}
		for u := range progress {
			phases[u.Phase] = true
		}
		if !phases[GenerateInsight] || !phases[ArchiveInsight] {
			t.Errorf("missing phases in %v", phases)
		}
	})

	t.Run("generate without archive", func(t *testing.T) {
		insight, err := NewInsightEngine(&tu.MockSummarizer{Text: "ok"}, topItems(), nil, nil).Generate(ctx, models.SourceSpotify, nil)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if insight.ID() != "" {
			t.Errorf("expected an unsaved insight, got id %q", insight.ID())
		}
	})

	t.Run("generate errors", func(t *testing.T) {
		upstream := errors.New("model overloaded")

		tc := []struct {
			name   string
			engine *InsightEngine
			source models.InsightSource
			want   error
		}{
			{"unknown source", NewInsightEngine(&tu.MockSummarizer{}, topItems(), nil, nil), "radio", shared.ErrInvalidArgument},
			{"no summarizer", NewInsightEngine(nil, topItems(), nil, nil), models.SourceSpotify, shared.ErrServiceUnavailable},
			{"no spotify", NewInsightEngine(&tu.MockSummarizer{}, nil, nil, nil), models.SourceSpotify, shared.ErrServiceUnavailable},
			{"summarizer failure", NewInsightEngine(&tu.MockSummarizer{Err: upstream}, topItems(), nil, nil), models.SourceSpotify, upstream},
			{"archive failure", NewInsightEngine(&tu.MockSummarizer{Text: "x"}, topItems(), nil, &memoryArchive{createErr: shared.ErrNotFound}), models.SourceSpotify, shared.ErrNotFound},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				if _, err := tt.engine.Generate(ctx, tt.source, nil); !errors.Is(err, tt.want) {
					t.Errorf("expected %v, got %v", tt.want, err)
				}
			})
		}
	})

	t.Run("describe playlist", func(t *testing.T) {
		summarizer := &tu.MockSummarizer{Text: "Late night drives."}
		archive := &memoryArchive{}

		insight, err := NewInsightEngine(summarizer, nil, nil, archive).DescribePlaylist(ctx, "Roygbiv - Boards of Canada", nil)
		if err != nil {
			t.Fatalf("DescribePlaylist failed: %v", err)
		}
		if insight.Source() != models.SourcePlaylist || insight.Payload() != "Roygbiv - Boards of Canada" {
			t.Errorf("unexpected insight %+v", insight.View())
		}
		if summarizer.LastHistory != "Roygbiv - Boards of Canada" {
			t.Errorf("summarizer got %q", summarizer.LastHistory)
		}
	})

	t.Run("list", func(t *testing.T) {
		archive := &memoryArchive{}
		e := NewInsightEngine(&tu.MockSummarizer{Text: "x"}, topItems(), nil, archive)
		for range 2 {
			if _, err := e.Generate(ctx, models.SourceSpotify, nil); err != nil {
				t.Fatalf("Generate failed: %v", err)
			}
		}
		if _, err := e.DescribePlaylist(ctx, "songs", nil); err != nil {
			t.Fatalf("DescribePlaylist failed: %v", err)
		}

		insights, err := e.List(models.SourceSpotify, 5)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(insights) != 2 || insights[0].Sequence() != 2 {
			t.Errorf("expected newest spotify insights first, got %d", len(insights))
		}
		if archive.criteria["limit"] != 5 {
			t.Errorf("expected limit to be forwarded, got %v", archive.criteria)
		}

		empty, err := NewInsightEngine(nil, nil, nil, nil).List("", 0)
		if err != nil || empty == nil || len(empty) != 0 {
			t.Errorf("expected empty list without archive, got %v, %v", empty, err)
		}
	})
}
