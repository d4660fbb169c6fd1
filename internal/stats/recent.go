package stats

import (
	"math"
	"sort"
	"time"

	"github.com/desertthunder/spins/internal/models"
)

const (
	unknownArtist = "Unknown Artist"
	notApplicable = "N/A"
)

// Overview aggregates the recently played feed together with the user's top artists for a range.
//
// Total minutes are floored, the average is minutes per track to two decimals, and the most played
// artist counts plays by each track's first credited artist.
func Overview(plays []models.RecentPlay, topArtists []models.Artist, tr models.TimeRange, loc *time.Location) models.RecentOverview {
	if loc == nil {
		loc = time.Local
	}

	var totalMs float64
	artistPlays := newTally()
	days := make(map[time.Time]float64)
	var hours [24]int

	for _, p := range plays {
		totalMs += float64(p.Track.DurationMs)

		artist := unknownArtist
		if len(p.Track.Artists) > 0 && p.Track.Artists[0] != "" {
			artist = p.Track.Artists[0]
		}
		artistPlays.add(artist, "", 0)

		local := p.PlayedAt.In(loc)
		days[civilDate(local)] += float64(p.Track.DurationMs) / 60000
		hours[local.Hour()]++
	}

	overview := models.RecentOverview{
		TimeRange:        tr,
		TotalMinutes:     int(math.Floor(totalMs / 60000)),
		TotalTracks:      len(plays),
		MostPlayedArtist: notApplicable,
		TopGenre:         topGenre(topArtists),
		DailyMinutes:     daily(days),
		HourlyPlays:      hourly(hours),
		TopArtists:       topArtists,
		RecentPlays:      plays,
	}

	if overview.TopArtists == nil {
		overview.TopArtists = []models.Artist{}
	}
	if overview.RecentPlays == nil {
		overview.RecentPlays = []models.RecentPlay{}
	}

	if len(plays) > 0 {
		overview.MostPlayedArtist = mostPlayed(artistPlays)
		avg := float64(overview.TotalMinutes) / float64(len(plays))
		overview.AvgListeningDuration = math.Round(avg*100) / 100
	}

	return overview
}

// mostPlayed picks the name with the most plays; the earliest seen wins ties.
func mostPlayed(t *tally) string {
	best := -1
	for i, e := range t.entries {
		if best < 0 || e.plays > t.entries[best].plays {
			best = i
		}
	}
	if best < 0 {
		return notApplicable
	}
	return t.entries[best].name
}

// topGenre returns the genre shared by the most artists, or "N/A".
func topGenre(artists []models.Artist) string {
	counts := make(map[string]int)
	var order []string
	for _, a := range artists {
		for _, g := range a.Genres {
			if _, ok := counts[g]; !ok {
				order = append(order, g)
			}
			counts[g]++
		}
	}
	if len(order) == 0 {
		return notApplicable
	}

	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })
	return order[0]
}
