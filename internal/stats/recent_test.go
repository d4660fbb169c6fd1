package stats

import (
	"testing"
	"time"

	"github.com/desertthunder/spins/internal/models"
)

func recent(at string, ms int, artists ...string) models.RecentPlay {
	t, err := time.Parse(time.RFC3339, at)
	if err != nil {
		panic(err)
	}
	return models.RecentPlay{
		Track:    models.Track{Name: "track", Artists: artists, DurationMs: ms},
		PlayedAt: t,
	}
}

func TestOverview(t *testing.T) {
	t.Run("aggregates recent plays", func(t *testing.T) {
		plays := []models.RecentPlay{
			recent("2024-06-01T09:15:00Z", 200000, "Boards of Canada"),
			recent("2024-06-01T09:40:00Z", 190000, "Aphex Twin", "Boards of Canada"),
			recent("2024-06-02T22:05:00Z", 240000, "Boards of Canada"),
		}
		artists := []models.Artist{
			{Name: "Boards of Canada", Genres: []string{"idm", "ambient"}},
			{Name: "Aphex Twin", Genres: []string{"idm", "electronica"}},
		}

		o := Overview(plays, artists, models.ShortTerm, time.UTC)

		if o.TotalMinutes != 10 { // 630000ms = 10.5m, floored
			t.Errorf("expected 10 minutes, got %d", o.TotalMinutes)
		}
		if o.TotalTracks != 3 {
			t.Errorf("expected 3 tracks, got %d", o.TotalTracks)
		}
		if o.MostPlayedArtist != "Boards of Canada" {
			t.Errorf("expected Boards of Canada, got %s", o.MostPlayedArtist)
		}
		if o.AvgListeningDuration != 3.33 {
			t.Errorf("expected 3.33, got %v", o.AvgListeningDuration)
		}
		if o.TopGenre != "idm" {
			t.Errorf("expected idm, got %s", o.TopGenre)
		}
		if len(o.DailyMinutes) != 2 || o.DailyMinutes[0].Date != "2024-06-01" || o.DailyMinutes[0].Minutes != 7 {
			t.Errorf("unexpected daily minutes %+v", o.DailyMinutes)
		}
		if o.HourlyPlays[9].Plays != 2 || o.HourlyPlays[22].Plays != 1 {
			t.Errorf("unexpected hourly plays %+v", o.HourlyPlays)
		}
		if o.TimeRange != models.ShortTerm {
			t.Errorf("expected short_term, got %s", o.TimeRange)
		}
	})

	t.Run("empty feed", func(t *testing.T) {
		o := Overview(nil, nil, models.MediumTerm, time.UTC)

		if o.MostPlayedArtist != "N/A" || o.TopGenre != "N/A" {
			t.Errorf("expected N/A placeholders, got %q / %q", o.MostPlayedArtist, o.TopGenre)
		}
		if o.AvgListeningDuration != 0 || o.TotalMinutes != 0 {
			t.Errorf("expected zero values, got %+v", o)
		}
		if len(o.HourlyPlays) != 24 {
			t.Errorf("expected 24 hour buckets, got %d", len(o.HourlyPlays))
		}
		if o.TopArtists == nil || o.RecentPlays == nil {
			t.Error("expected non-nil slices")
		}
	})

	t.Run("missing artist counts as unknown", func(t *testing.T) {
		plays := []models.RecentPlay{
			recent("2024-06-01T09:15:00Z", 60000),
			recent("2024-06-01T09:20:00Z", 60000),
			recent("2024-06-01T09:25:00Z", 60000, "Someone"),
		}
		if got := Overview(plays, nil, models.MediumTerm, time.UTC).MostPlayedArtist; got != "Unknown Artist" {
			t.Errorf("expected Unknown Artist, got %s", got)
		}
	})

	t.Run("first seen wins ties", func(t *testing.T) {
		plays := []models.RecentPlay{
			recent("2024-06-01T09:15:00Z", 60000, "B"),
			recent("2024-06-01T09:20:00Z", 60000, "A"),
		}
		if got := Overview(plays, nil, models.MediumTerm, time.UTC).MostPlayedArtist; got != "B" {
			t.Errorf("expected B, got %s", got)
		}
	})
}

func TestPayload(t *testing.T) {
	t.Run("FromTopItems", func(t *testing.T) {
		var tracks []models.Track
		for i := range 7 {
			tracks = append(tracks, models.Track{
				Name:       string(rune('a' + i)),
				Artists:    []string{"X", "Y"},
				DurationMs: 90000,
			})
		}
		artists := []models.Artist{{Name: "X"}, {Name: "Y"}, {Name: "Z"}, {Name: "W"}}

		data := FromTopItems(tracks, artists)

		if data.TotalMinutes != 11 { // 7 * 1.5 = 10.5 → 11
			t.Errorf("expected 11 minutes, got %d", data.TotalMinutes)
		}
		if len(data.TopTracks) != 5 {
			t.Errorf("expected 5 tracks, got %d", len(data.TopTracks))
		}
		if data.TopTracks[0].Artist != "X, Y" {
			t.Errorf("expected joined artists, got %q", data.TopTracks[0].Artist)
		}
		if len(data.TopArtists) != 3 || data.TopArtists[2] != "Z" {
			t.Errorf("unexpected top artists %v", data.TopArtists)
		}
		if data.ListeningDistribution != models.NotAvailable {
			t.Errorf("expected placeholder distribution, got %q", data.ListeningDistribution)
		}
	})

	t.Run("FromTopItems with few items", func(t *testing.T) {
		data := FromTopItems([]models.Track{{Name: "only", Artists: []string{"A"}}}, nil)
		if len(data.TopTracks) != 1 || len(data.TopArtists) != 0 {
			t.Errorf("unexpected payload %+v", data)
		}
		if data.TopArtists == nil {
			t.Error("expected empty, non-nil artists")
		}
	})

	t.Run("FromSummary", func(t *testing.T) {
		events := []models.PlayEvent{
			play("2024-01-01T21:00:00Z", "A", "T1", 180000),
			play("2024-01-02T21:30:00Z", "B", "T2", 120000),
		}
		data := FromSummary(Compute(events, utcOpts(2024)))

		if data.TotalMinutes != 5 {
			t.Errorf("expected 5 minutes, got %d", data.TotalMinutes)
		}
		if data.TopTracks[0] != (models.TrackRef{Title: "T1", Artist: "A"}) {
			t.Errorf("unexpected first track %+v", data.TopTracks[0])
		}
		if data.ListeningDistribution == models.NotAvailable {
			t.Error("expected a distribution description")
		}
	})

	t.Run("FromSummary of empty history", func(t *testing.T) {
		data := FromSummary(Compute(nil, utcOpts(2024)))
		if data.ListeningDistribution != models.NotAvailable {
			t.Errorf("expected placeholder, got %q", data.ListeningDistribution)
		}
	})
}
