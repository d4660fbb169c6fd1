package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/spins/internal/models"
	"github.com/desertthunder/spins/internal/repositories"
	"github.com/desertthunder/spins/internal/shared"
	tu "github.com/desertthunder/spins/internal/testing"
)

func newTestHistoryEngine(t *testing.T) (*HistoryEngine, *repositories.MemoryStore) {
	t.Helper()
	blobs := repositories.NewMemoryStore()
	engine := NewHistoryEngine(repositories.NewHistoryStore(blobs), HistoryOpts{
		Workers:  2,
		Location: time.UTC,
		Now:      func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) },
	})
	return engine, blobs
}

func sample() []Source {
	return []Source{BytesSource{"StreamingHistory0.json", []byte(tu.SampleHistory)}}
}

func TestHistoryEngine(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults", func(t *testing.T) {
		e := NewHistoryEngine(repositories.NewHistoryStore(repositories.NewMemoryStore()), HistoryOpts{})
		if e.opts.Workers != DefaultWorkers || e.opts.Location != time.Local || e.opts.Limit != 10 || e.opts.Now == nil {
			t.Errorf("unexpected defaults %+v", e.opts)
		}
	})

	t.Run("upload computes and stores", func(t *testing.T) {
		engine, _ := newTestHistoryEngine(t)

		summary, err := engine.Upload(ctx, sample(), nil)
		if err != nil {
			t.Fatalf("Upload failed: %v", err)
		}
		if summary.TotalMinutes != 5 || summary.TotalTracks != 2 || summary.LongestStreakDays != 2 {
			t.Errorf("unexpected summary %+v", summary)
		}
		if summary.TotalMinutesThisYear != 5 {
			t.Errorf("expected 5 minutes this year, got %d", summary.TotalMinutesThisYear)
		}

		events, err := engine.Events()
		if err != nil {
			t.Fatalf("Events failed: %v", err)
		}
		if len(events) != 2 {
			t.Errorf("expected 2 stored events, got %d", len(events))
		}
	})

	t.Run("upload replaces previous history", func(t *testing.T) {
		engine, _ := newTestHistoryEngine(t)

		if _, err := engine.Upload(ctx, sample(), nil); err != nil {
			t.Fatalf("Upload failed: %v", err)
		}

		second := []Source{BytesSource{"b.json", []byte(`[{"endTime":"2024-02-01 08:00","artistName":"B","trackName":"X","msPlayed":60000}]`)}}
		summary, err := engine.Upload(ctx, second, nil)
		if err != nil {
			t.Fatalf("Upload failed: %v", err)
		}
		if summary.TotalTracks != 1 || summary.TopArtists[0].Name != "B" {
			t.Errorf("expected only the second upload, got %+v", summary)
		}
	})

	t.Run("failed upload leaves store untouched", func(t *testing.T) {
		engine, _ := newTestHistoryEngine(t)

		if _, err := engine.Upload(ctx, sample(), nil); err != nil {
			t.Fatalf("Upload failed: %v", err)
		}

		bad := append(sample(), BytesSource{"bad.json", []byte("{")})
		if _, err := engine.Upload(ctx, bad, nil); !errors.Is(err, shared.ErrParse) {
			t.Fatalf("expected ErrParse, got %v", err)
		}

		summary, err := engine.Load(0)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if summary == nil || summary.TotalTracks != 2 {
			t.Errorf("expected previous history to survive, got %+v", summary)
		}
	})

	t.Run("upload without sources", func(t *testing.T) {
		engine, _ := newTestHistoryEngine(t)
		if _, err := engine.Upload(ctx, nil, nil); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("upload reports each phase", func(t *testing.T) {
		engine, _ := newTestHistoryEngine(t)
		progress := make(chan ProgressUpdate, 10)

		if _, err := engine.Upload(ctx, sample(), progress); err != nil {
			t.Fatalf("Upload failed: %v", err)
		}
		close(progress)

		seen := map[Phase]bool{}
		var last ProgressUpdate
		for u := range progress {
			seen[u.Phase] = true
			last = u
		}
		for _, p := range []Phase{ReadFiles, StoreHistory, ComputeStats} {
			if !seen[p] {
				t.Errorf("missing %s update", p)
			}
		}
		if _, ok := last.Data.(*models.StatisticsSummary); !ok {
			t.Errorf("expected final update to carry the summary, got %T", last.Data)
		}
	})

	t.Run("load with nothing stored", func(t *testing.T) {
		engine, _ := newTestHistoryEngine(t)

		summary, err := engine.Load(0)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if summary != nil {
			t.Errorf("expected nil summary, got %+v", summary)
		}

		if _, err := engine.Events(); !errors.Is(err, shared.ErrNoHistory) {
			t.Errorf("expected ErrNoHistory, got %v", err)
		}
	})

	t.Run("load with corrupt blob", func(t *testing.T) {
		engine, blobs := newTestHistoryEngine(t)
		if _, err := engine.Upload(ctx, sample(), nil); err != nil {
			t.Fatalf("Upload failed: %v", err)
		}
		if err := blobs.Put(models.HistoryKey, []byte("not json")); err != nil {
			t.Fatalf("Put failed: %v", err)
		}

		if _, err := engine.Load(0); !errors.Is(err, shared.ErrInvalidHistory) {
			t.Fatalf("expected ErrInvalidHistory, got %v", err)
		}

		summary, err := engine.Load(0)
		if err != nil || summary != nil {
			t.Errorf("expected corrupt history to be discarded, got %+v, %v", summary, err)
		}
	})

	t.Run("year override", func(t *testing.T) {
		engine, _ := newTestHistoryEngine(t)
		if _, err := engine.Upload(ctx, sample(), nil); err != nil {
			t.Fatalf("Upload failed: %v", err)
		}

		summary, err := engine.Load(2023)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if summary.TotalMinutesThisYear != 0 || summary.TotalMinutes != 5 {
			t.Errorf("unexpected summary for 2023 %+v", summary)
		}
	})

	t.Run("clear", func(t *testing.T) {
		engine, _ := newTestHistoryEngine(t)
		if _, err := engine.Upload(ctx, sample(), nil); err != nil {
			t.Fatalf("Upload failed: %v", err)
		}
		if err := engine.Clear(); err != nil {
			t.Fatalf("Clear failed: %v", err)
		}

		summary, err := engine.Load(0)
		if err != nil || summary != nil {
			t.Errorf("expected empty store after clear, got %+v, %v", summary, err)
		}
		if err := engine.Clear(); err != nil {
			t.Errorf("expected clearing an empty store to succeed, got %v", err)
		}
	})

	t.Run("current year follows the zone", func(t *testing.T) {
		tokyo := time.FixedZone("JST", 9*60*60)
		e := NewHistoryEngine(repositories.NewHistoryStore(repositories.NewMemoryStore()), HistoryOpts{
			Location: tokyo,
			Now:      func() time.Time { return time.Date(2024, 12, 31, 20, 0, 0, 0, time.UTC) },
		})
		if e.CurrentYear() != 2025 {
			t.Errorf("expected 2025, got %d", e.CurrentYear())
		}
	})
}
