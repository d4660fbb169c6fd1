package stats

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/desertthunder/spins/internal/models"
)

// DefaultLimit is the size of the top artist and track rankings.
const DefaultLimit = 10

// Options parameterize [Compute].
type Options struct {
	CurrentYear int            // year used for TotalMinutesThisYear
	Location    *time.Location // zone for calendar dates and hours; defaults to time.Local
	Limit       int            // ranking size; defaults to DefaultLimit
}

func (o Options) location() *time.Location {
	if o.Location == nil {
		return time.Local
	}
	return o.Location
}

func (o Options) limit() int {
	if o.Limit <= 0 {
		return DefaultLimit
	}
	return o.Limit
}

// Compute derives a [models.StatisticsSummary] from events.
//
// Minutes accumulate as float64 and are rounded only when written to the summary.
// An empty history yields zero totals and empty, non-nil series.
func Compute(events []models.PlayEvent, opts Options) models.StatisticsSummary {
	loc := opts.location()

	var (
		total   float64
		artists = newTally()
		tracks  = newTally()
		days    = make(map[time.Time]float64)
		years   = make(map[int]float64)
		hours   [24]int
		first   time.Time
		last    time.Time
	)

	for _, e := range events {
		m := e.Minutes()
		local := e.EndTime.In(loc)

		total += m
		artists.add(e.ArtistName, "", m)
		tracks.add(e.TrackName, e.ArtistName, m)
		days[civilDate(local)] += m
		years[local.Year()] += m
		hours[local.Hour()]++

		if first.IsZero() || e.EndTime.Before(first) {
			first = e.EndTime
		}
		if e.EndTime.After(last) {
			last = e.EndTime
		}
	}

	summary := models.StatisticsSummary{
		TotalMinutes:         round(total),
		TotalTracks:          len(events),
		UniqueArtists:        artists.len(),
		UniqueTracks:         tracks.len(),
		LongestStreakDays:    longestStreak(dateKeys(days)),
		YearlyMinutes:        yearly(years),
		TopArtists:           artists.top(opts.limit()),
		TopTracks:            tracks.top(opts.limit()),
		TotalMinutesThisYear: round(years[opts.CurrentYear]),
		DailyMinutes:         daily(days),
		HourlyPlays:          []models.HourlyPlays{},
		FirstPlay:            first,
		LastPlay:             last,
	}

	if len(days) > 0 {
		summary.DailyAverageMinutes = int(math.RoundToEven(total / float64(len(days))))
	}
	if len(events) > 0 {
		summary.HourlyPlays = hourly(hours)
	}

	return summary
}

func round(minutes float64) int {
	return int(math.Round(minutes))
}

// civilDate truncates t to its calendar date, expressed as midnight UTC so that
// consecutive dates are exactly one AddDate step apart regardless of DST.
func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dateKeys(days map[time.Time]float64) []time.Time {
	keys := make([]time.Time, 0, len(days))
	for d := range days {
		keys = append(keys, d)
	}
	return keys
}

func yearly(years map[int]float64) []models.YearlyMinutes {
	keys := make([]int, 0, len(years))
	for y := range years {
		keys = append(keys, y)
	}
	sort.Ints(keys)

	out := make([]models.YearlyMinutes, 0, len(keys))
	for _, y := range keys {
		out = append(out, models.YearlyMinutes{Year: strconv.Itoa(y), Minutes: round(years[y])})
	}
	return out
}

func daily(days map[time.Time]float64) []models.DailyMinutes {
	keys := dateKeys(days)
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })

	out := make([]models.DailyMinutes, 0, len(keys))
	for _, d := range keys {
		out = append(out, models.DailyMinutes{Date: d.Format(time.DateOnly), Minutes: round(days[d])})
	}
	return out
}

func hourly(hours [24]int) []models.HourlyPlays {
	out := make([]models.HourlyPlays, 24)
	for h, n := range hours {
		out[h] = models.HourlyPlays{Hour: hourLabel(h), Plays: n}
	}
	return out
}

func hourLabel(h int) string {
	return fmt.Sprintf("%02d:00", h)
}
