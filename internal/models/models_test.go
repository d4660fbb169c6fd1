package models

import (
	"testing"
	"time"
)

func TestPlayEvent(t *testing.T) {
	valid := PlayEvent{
		EndTime:    time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
		ArtistName: "A",
		TrackName:  "T1",
		MsPlayed:   180000,
	}

	t.Run("Minutes", func(t *testing.T) {
		if got := valid.Minutes(); got != 3 {
			t.Errorf("expected 3 minutes, got %v", got)
		}
	})

	t.Run("Validate", func(t *testing.T) {
		tc := []struct {
			name    string
			mutate  func(e *PlayEvent)
			wantErr bool
		}{
			{name: "valid", mutate: func(e *PlayEvent) {}},
			{name: "zero msPlayed", mutate: func(e *PlayEvent) { e.MsPlayed = 0 }},
			{name: "negative msPlayed", mutate: func(e *PlayEvent) { e.MsPlayed = -1 }, wantErr: true},
			{name: "missing artist", mutate: func(e *PlayEvent) { e.ArtistName = "" }, wantErr: true},
			{name: "missing track", mutate: func(e *PlayEvent) { e.TrackName = "" }, wantErr: true},
			{name: "missing endTime", mutate: func(e *PlayEvent) { e.EndTime = time.Time{} }, wantErr: true},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				e := valid
				tt.mutate(&e)
				err := e.Validate()
				if (err != nil) != tt.wantErr {
					t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
				}
			})
		}
	})
}

func TestPeakHour(t *testing.T) {
	t.Run("no plays", func(t *testing.T) {
		s := StatisticsSummary{HourlyPlays: []HourlyPlays{{Hour: "00:00"}, {Hour: "01:00"}}}
		if _, ok := s.PeakHour(); ok {
			t.Error("expected no peak hour")
		}
	})

	t.Run("earliest wins ties", func(t *testing.T) {
		s := StatisticsSummary{HourlyPlays: []HourlyPlays{
			{Hour: "08:00", Plays: 2},
			{Hour: "21:00", Plays: 5},
			{Hour: "22:00", Plays: 5},
		}}
		peak, ok := s.PeakHour()
		if !ok || peak.Hour != "21:00" {
			t.Errorf("expected 21:00, got %+v", peak)
		}
	})
}

func TestParseTimeRange(t *testing.T) {
	tc := []struct {
		in      string
		want    TimeRange
		wantErr bool
	}{
		{in: "", want: MediumTerm},
		{in: "short", want: ShortTerm},
		{in: "SHORT_TERM", want: ShortTerm},
		{in: "medium_term", want: MediumTerm},
		{in: "long", want: LongTerm},
		{in: "forever", wantErr: true},
	}

	for _, tt := range tc {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimeRange(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("unexpected error state: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestInsight(t *testing.T) {
	t.Run("Validate", func(t *testing.T) {
		if err := NewInsight(SourceSpotify, "{}", "Great month", "gpt").Validate(); err != nil {
			t.Errorf("expected valid insight, got %v", err)
		}
		if err := NewInsight("radio", "{}", "x", "").Validate(); err == nil {
			t.Error("expected error for unknown source")
		}
		if err := NewInsight(SourceHistory, "{}", "", "").Validate(); err == nil {
			t.Error("expected error for empty summary")
		}
	})

	t.Run("View", func(t *testing.T) {
		in := NewInsight(SourceHistory, "{}", "summary", "m")
		in.SetID("abc")
		v := in.View()
		if v.ID != "abc" || v.Source != SourceHistory || v.Summary != "summary" {
			t.Errorf("unexpected view %+v", v)
		}
	})

	t.Run("Profile Username", func(t *testing.T) {
		if got := (Profile{ID: "u1"}).Username(); got != "u1" {
			t.Errorf("expected fallback to id, got %q", got)
		}
		if got := (Profile{ID: "u1", DisplayName: "Dee"}).Username(); got != "Dee" {
			t.Errorf("expected display name, got %q", got)
		}
	})
}
