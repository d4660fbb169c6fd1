package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/spins/internal/models"
	"github.com/desertthunder/spins/internal/shared"
)

var (
	_ list.Item = sectionItem{}
	_ list.Item = rowItem{}
)

// Section identifies one drill-down page of the stats browser.
type Section int

const (
	TopArtistsSection Section = iota
	TopTracksSection
	YearlySection
	DailySection
	HourlySection
	RecentSection
)

// sectionItem is one entry of the summary menu.
type sectionItem struct {
	section Section
	title   string
	desc    string
}

func (i sectionItem) FilterValue() string { return i.title }
func (i sectionItem) Title() string       { return i.title }
func (i sectionItem) Description() string { return i.desc }

// rowItem is one line of a drill-down page.
type rowItem struct {
	title string
	desc  string
}

func (i rowItem) FilterValue() string { return i.title }
func (i rowItem) Title() string       { return i.title }
func (i rowItem) Description() string { return i.desc }

func sectionItems(s *models.StatisticsSummary, withRecent bool) []list.Item {
	items := []list.Item{
		sectionItem{TopArtistsSection, "Top artists", fmt.Sprintf("%d ranked • %d unique", len(s.TopArtists), s.UniqueArtists)},
		sectionItem{TopTracksSection, "Top tracks", fmt.Sprintf("%d ranked • %d unique", len(s.TopTracks), s.UniqueTracks)},
		sectionItem{YearlySection, "By year", fmt.Sprintf("%d years", len(s.YearlyMinutes))},
		sectionItem{DailySection, "By day", fmt.Sprintf("%d listening days • %d min/day", len(s.DailyMinutes), s.DailyAverageMinutes)},
		sectionItem{HourlySection, "By hour", "plays per hour of day"},
	}
	if withRecent {
		items = append(items, sectionItem{RecentSection, "Recently played", "live from Spotify"})
	}
	return items
}

func rankedItems(entries []models.RankedEntry) []list.Item {
	items := make([]list.Item, len(entries))
	for i, e := range entries {
		desc := shared.FormatMinutes(e.Minutes)
		if e.Artist != "" {
			desc = fmt.Sprintf("%s • %s", e.Artist, desc)
		}
		items[i] = rowItem{title: fmt.Sprintf("%d. %s", i+1, e.Name), desc: desc}
	}
	return items
}

func yearlyItems(years []models.YearlyMinutes) []list.Item {
	max := 0
	for _, y := range years {
		max = maxInt(max, y.Minutes)
	}

	items := make([]list.Item, len(years))
	for i, y := range years {
		items[i] = rowItem{title: y.Year, desc: fmt.Sprintf("%s %s min", bar(y.Minutes, max, 30), shared.FormatCount(y.Minutes))}
	}
	return items
}

// dailyItems lists the most recent days first.
func dailyItems(days []models.DailyMinutes) []list.Item {
	max := 0
	for _, d := range days {
		max = maxInt(max, d.Minutes)
	}

	items := make([]list.Item, 0, len(days))
	for i := len(days) - 1; i >= 0; i-- {
		d := days[i]
		items = append(items, rowItem{title: d.Date, desc: fmt.Sprintf("%s %d min", bar(d.Minutes, max, 30), d.Minutes)})
	}
	return items
}

func hourlyItems(hours []models.HourlyPlays) []list.Item {
	max := 0
	for _, h := range hours {
		max = maxInt(max, h.Plays)
	}

	items := make([]list.Item, len(hours))
	for i, h := range hours {
		items[i] = rowItem{title: h.Hour, desc: fmt.Sprintf("%s %d plays", bar(h.Plays, max, 30), h.Plays)}
	}
	return items
}

func recentItems(o *models.RecentOverview) []list.Item {
	items := make([]list.Item, len(o.RecentPlays))
	for i, p := range o.RecentPlays {
		items[i] = rowItem{
			title: p.Track.Name,
			desc:  fmt.Sprintf("%s • %s", p.Track.ArtistNames(), p.PlayedAt.Local().Format("Jan 2 15:04")),
		}
	}
	return items
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
