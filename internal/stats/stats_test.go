package stats

import (
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/desertthunder/spins/internal/models"
)

func play(ts, artist, track string, ms int64) models.PlayEvent {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		panic(err)
	}
	return models.PlayEvent{EndTime: t, ArtistName: artist, TrackName: track, MsPlayed: ms}
}

func utcOpts(year int) Options {
	return Options{CurrentYear: year, Location: time.UTC}
}

func TestCompute(t *testing.T) {
	t.Run("two plays on consecutive days", func(t *testing.T) {
		events := []models.PlayEvent{
			play("2024-01-01T10:00:00Z", "A", "T1", 180000),
			play("2024-01-02T10:00:00Z", "A", "T2", 120000),
		}

		s := Compute(events, utcOpts(2024))

		if s.TotalMinutes != 5 {
			t.Errorf("expected totalMinutes 5, got %d", s.TotalMinutes)
		}
		if s.TotalTracks != 2 {
			t.Errorf("expected totalTracks 2, got %d", s.TotalTracks)
		}
		if s.UniqueArtists != 1 {
			t.Errorf("expected uniqueArtists 1, got %d", s.UniqueArtists)
		}
		if s.UniqueTracks != 2 {
			t.Errorf("expected uniqueTracks 2, got %d", s.UniqueTracks)
		}
		if s.LongestStreakDays != 2 {
			t.Errorf("expected streak 2, got %d", s.LongestStreakDays)
		}
		if s.DailyAverageMinutes != 2 {
			t.Errorf("expected daily average 2, got %d", s.DailyAverageMinutes)
		}

		wantYearly := []models.YearlyMinutes{{Year: "2024", Minutes: 5}}
		if !reflect.DeepEqual(s.YearlyMinutes, wantYearly) {
			t.Errorf("expected yearly %+v, got %+v", wantYearly, s.YearlyMinutes)
		}
		if s.TotalMinutesThisYear != 5 {
			t.Errorf("expected this-year minutes 5, got %d", s.TotalMinutesThisYear)
		}

		wantTracks := []models.RankedEntry{
			{Name: "T1", Artist: "A", Minutes: 3, Plays: 1},
			{Name: "T2", Artist: "A", Minutes: 2, Plays: 1},
		}
		if !reflect.DeepEqual(s.TopTracks, wantTracks) {
			t.Errorf("expected top tracks %+v, got %+v", wantTracks, s.TopTracks)
		}
		if len(s.TopArtists) != 1 || s.TopArtists[0].Name != "A" || s.TopArtists[0].Minutes != 5 {
			t.Errorf("unexpected top artists %+v", s.TopArtists)
		}
	})

	t.Run("daily average rounds to nearest", func(t *testing.T) {
		tc := []struct {
			name string
			ms   []int64
			want int
		}{
			{"8 minutes over 3 days", []int64{240000, 240000, 0}, 3},
			{"7 minutes over 3 days", []int64{240000, 180000, 0}, 2},
			{"uses the unrounded total", []int64{162000, 162000}, 3},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				var events []models.PlayEvent
				for i, ms := range tt.ms {
					ts := time.Date(2024, 1, i+1, 10, 0, 0, 0, time.UTC).Format(time.RFC3339)
					events = append(events, play(ts, "A", "T", ms))
				}

				if got := Compute(events, utcOpts(2024)).DailyAverageMinutes; got != tt.want {
					t.Errorf("expected daily average %d, got %d", tt.want, got)
				}
			})
		}
	})

	t.Run("empty input", func(t *testing.T) {
		s := Compute(nil, utcOpts(2024))

		if s.TotalMinutes != 0 || s.TotalTracks != 0 || s.UniqueArtists != 0 || s.UniqueTracks != 0 {
			t.Errorf("expected zero totals, got %+v", s)
		}
		if s.DailyAverageMinutes != 0 || s.LongestStreakDays != 0 || s.TotalMinutesThisYear != 0 {
			t.Errorf("expected zero derived values, got %+v", s)
		}
		for name, l := range map[string]int{
			"yearly":  len(s.YearlyMinutes),
			"artists": len(s.TopArtists),
			"tracks":  len(s.TopTracks),
			"daily":   len(s.DailyMinutes),
			"hourly":  len(s.HourlyPlays),
		} {
			if l != 0 {
				t.Errorf("expected empty %s, got %d entries", name, l)
			}
		}
		if s.YearlyMinutes == nil || s.TopArtists == nil || s.TopTracks == nil {
			t.Error("expected non-nil empty lists")
		}
	})

	t.Run("rounds only at the end", func(t *testing.T) {
		// 3 x 20s = 1 minute; rounding each play first would give 0.
		events := []models.PlayEvent{
			play("2024-05-01T10:00:00Z", "A", "T", 20000),
			play("2024-05-01T11:00:00Z", "A", "T", 20000),
			play("2024-05-01T12:00:00Z", "A", "T", 20000),
		}
		s := Compute(events, utcOpts(2024))
		if s.TotalMinutes != 1 {
			t.Errorf("expected 1 minute, got %d", s.TotalMinutes)
		}
	})

	t.Run("top ten is capped and stable on ties", func(t *testing.T) {
		var events []models.PlayEvent
		for i := range 12 {
			events = append(events, play("2024-02-01T10:00:00Z", fmt.Sprintf("Artist %02d", i), "Song", 60000))
		}
		events = append(events, play("2024-02-01T11:00:00Z", "Artist 11", "Song", 60000))

		s := Compute(events, utcOpts(2024))

		if len(s.TopArtists) != 10 {
			t.Fatalf("expected 10 top artists, got %d", len(s.TopArtists))
		}
		if s.TopArtists[0].Name != "Artist 11" {
			t.Errorf("expected Artist 11 first, got %s", s.TopArtists[0].Name)
		}
		for i := 1; i < 10; i++ {
			want := fmt.Sprintf("Artist %02d", i-1)
			if s.TopArtists[i].Name != want {
				t.Errorf("position %d: expected %s, got %s", i, want, s.TopArtists[i].Name)
			}
		}
	})

	t.Run("custom limit", func(t *testing.T) {
		events := []models.PlayEvent{
			play("2024-02-01T10:00:00Z", "A", "T1", 60000),
			play("2024-02-01T10:05:00Z", "B", "T2", 60000),
			play("2024-02-01T10:10:00Z", "C", "T3", 60000),
		}
		s := Compute(events, Options{Location: time.UTC, Limit: 2})
		if len(s.TopArtists) != 2 || len(s.TopTracks) != 2 {
			t.Errorf("expected rankings of 2, got %d/%d", len(s.TopArtists), len(s.TopTracks))
		}
	})

	t.Run("track key ignores artist", func(t *testing.T) {
		events := []models.PlayEvent{
			play("2024-02-01T10:00:00Z", "A", "Intro", 60000),
			play("2024-02-01T10:05:00Z", "B", "Intro", 60000),
		}
		s := Compute(events, utcOpts(2024))
		if s.UniqueTracks != 1 {
			t.Errorf("expected 1 unique track, got %d", s.UniqueTracks)
		}
		if s.TopTracks[0].Artist != "A" {
			t.Errorf("expected first-seen artist A, got %s", s.TopTracks[0].Artist)
		}
	})

	t.Run("yearly sorted ascending and this year selected", func(t *testing.T) {
		events := []models.PlayEvent{
			play("2024-03-01T10:00:00Z", "A", "T", 600000),
			play("2022-03-01T10:00:00Z", "A", "T", 120000),
			play("2023-03-01T10:00:00Z", "A", "T", 240000),
		}
		s := Compute(events, utcOpts(2023))

		want := []models.YearlyMinutes{{"2022", 2}, {"2023", 4}, {"2024", 10}}
		if !reflect.DeepEqual(s.YearlyMinutes, want) {
			t.Errorf("expected %+v, got %+v", want, s.YearlyMinutes)
		}
		if s.TotalMinutesThisYear != 4 {
			t.Errorf("expected 4 minutes this year, got %d", s.TotalMinutesThisYear)
		}

		if got := Compute(events, utcOpts(2030)).TotalMinutesThisYear; got != 0 {
			t.Errorf("expected 0 for a year without plays, got %d", got)
		}
	})

	t.Run("dates follow the configured zone", func(t *testing.T) {
		tokyo := time.FixedZone("JST", 9*60*60)
		events := []models.PlayEvent{
			play("2024-12-31T20:00:00Z", "A", "T", 60000),
		}

		utc := Compute(events, Options{CurrentYear: 2025, Location: time.UTC})
		jst := Compute(events, Options{CurrentYear: 2025, Location: tokyo})

		if utc.DailyMinutes[0].Date != "2024-12-31" || utc.TotalMinutesThisYear != 0 {
			t.Errorf("unexpected UTC bucketing %+v", utc.DailyMinutes)
		}
		if jst.DailyMinutes[0].Date != "2025-01-01" || jst.TotalMinutesThisYear != 1 {
			t.Errorf("unexpected JST bucketing %+v", jst.DailyMinutes)
		}
		if jst.HourlyPlays[5].Plays != 1 {
			t.Errorf("expected play in 05:00 bucket, got %+v", jst.HourlyPlays)
		}
	})

	t.Run("daily and hourly histograms", func(t *testing.T) {
		events := []models.PlayEvent{
			play("2024-01-02T21:10:00Z", "A", "T", 90000),
			play("2024-01-01T21:30:00Z", "A", "T", 60000),
			play("2024-01-02T08:00:00Z", "A", "T", 30000),
		}
		s := Compute(events, utcOpts(2024))

		wantDaily := []models.DailyMinutes{{"2024-01-01", 1}, {"2024-01-02", 2}}
		if !reflect.DeepEqual(s.DailyMinutes, wantDaily) {
			t.Errorf("expected %+v, got %+v", wantDaily, s.DailyMinutes)
		}
		if len(s.HourlyPlays) != 24 {
			t.Fatalf("expected 24 hour buckets, got %d", len(s.HourlyPlays))
		}
		if s.HourlyPlays[21].Hour != "21:00" || s.HourlyPlays[21].Plays != 2 {
			t.Errorf("unexpected 21:00 bucket %+v", s.HourlyPlays[21])
		}
		if s.HourlyPlays[8].Plays != 1 {
			t.Errorf("unexpected 08:00 bucket %+v", s.HourlyPlays[8])
		}
		if !s.FirstPlay.Equal(events[1].EndTime) || !s.LastPlay.Equal(events[0].EndTime) {
			t.Errorf("unexpected first/last play %v %v", s.FirstPlay, s.LastPlay)
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		events := []models.PlayEvent{
			play("2024-01-01T10:00:00Z", "A", "T1", 180000),
			play("2024-01-03T10:00:00Z", "B", "T2", 120000),
		}
		a := Compute(events, utcOpts(2024))
		b := Compute(events, utcOpts(2024))
		if !reflect.DeepEqual(a, b) {
			t.Error("expected identical summaries for identical input")
		}
	})

	t.Run("totals are independent of event order", func(t *testing.T) {
		events := []models.PlayEvent{
			play("2024-01-01T10:00:00Z", "A", "T1", 180000),
			play("2024-01-02T10:00:00Z", "B", "T2", 120000),
			play("2024-01-05T10:00:00Z", "C", "T3", 60000),
		}
		reversed := []models.PlayEvent{events[2], events[1], events[0]}

		a := Compute(events, utcOpts(2024))
		b := Compute(reversed, utcOpts(2024))
		if a.TotalMinutes != b.TotalMinutes || a.LongestStreakDays != b.LongestStreakDays ||
			!reflect.DeepEqual(a.YearlyMinutes, b.YearlyMinutes) || !reflect.DeepEqual(a.DailyMinutes, b.DailyMinutes) {
			t.Error("expected order-independent aggregates")
		}
	})
}

func TestLongestStreak(t *testing.T) {
	d := func(s string) time.Time {
		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			panic(err)
		}
		return t
	}

	tc := []struct {
		name  string
		dates []time.Time
		want  int
	}{
		{name: "none", dates: nil, want: 0},
		{name: "single", dates: []time.Time{d("2024-01-01")}, want: 1},
		{
			name:  "run of three with a gap",
			dates: []time.Time{d("2024-01-01"), d("2024-01-02"), d("2024-01-03"), d("2024-01-10")},
			want:  3,
		},
		{
			name:  "unsorted input",
			dates: []time.Time{d("2024-01-10"), d("2024-01-02"), d("2024-01-11"), d("2024-01-01"), d("2024-01-12"), d("2024-01-13")},
			want:  4,
		},
		{
			name:  "duplicates collapse",
			dates: []time.Time{d("2024-01-01"), d("2024-01-01"), d("2024-01-02")},
			want:  2,
		},
		{
			name:  "crosses month and year boundaries",
			dates: []time.Time{d("2023-12-30"), d("2023-12-31"), d("2024-01-01"), d("2024-02-28"), d("2024-02-29"), d("2024-03-01")},
			want:  3,
		},
		{
			name:  "two day gap breaks streak",
			dates: []time.Time{d("2024-01-01"), d("2024-01-03"), d("2024-01-05")},
			want:  1,
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := longestStreak(tt.dates); got != tt.want {
				t.Errorf("longestStreak() = %d, want %d", got, tt.want)
			}
		})
	}

	t.Run("ignores time of day", func(t *testing.T) {
		dates := []time.Time{
			time.Date(2024, 3, 9, 23, 59, 0, 0, time.UTC),
			time.Date(2024, 3, 10, 0, 1, 0, 0, time.UTC),
		}
		if got := longestStreak(dates); got != 2 {
			t.Errorf("expected 2, got %d", got)
		}
	})

	t.Run("across a DST change", func(t *testing.T) {
		ny, err := time.LoadLocation("America/New_York")
		if err != nil {
			t.Skipf("tzdata unavailable: %v", err)
		}
		events := []models.PlayEvent{
			{EndTime: time.Date(2024, 3, 9, 12, 0, 0, 0, ny), ArtistName: "A", TrackName: "T", MsPlayed: 1},
			{EndTime: time.Date(2024, 3, 10, 12, 0, 0, 0, ny), ArtistName: "A", TrackName: "T", MsPlayed: 1},
			{EndTime: time.Date(2024, 3, 11, 12, 0, 0, 0, ny), ArtistName: "A", TrackName: "T", MsPlayed: 1},
		}
		if got := Compute(events, Options{Location: ny}).LongestStreakDays; got != 3 {
			t.Errorf("expected 3, got %d", got)
		}
	})
}
