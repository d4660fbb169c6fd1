// package formatter renders listening statistics, history exports and insights as plain text, Markdown, CSV or JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/spins/internal/models"
	"github.com/desertthunder/spins/internal/shared"
)

// Format names an output encoding.
type Format string

const (
	Text     Format = "text"
	Markdown Format = "markdown"
	CSV      Format = "csv"
	JSON     Format = "json"
)

// ParseFormat accepts the format names plus the aliases "txt" and "md". An empty string selects [Text].
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return Text, nil
	case "markdown", "md":
		return Markdown, nil
	case "csv":
		return CSV, nil
	case "json":
		return JSON, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q (want text, markdown, csv or json)", shared.ErrInvalidFlag, s)
	}
}

// Extension is the file extension used when writing f to disk.
func (f Format) Extension() string {
	switch f {
	case Markdown:
		return ".md"
	case CSV:
		return ".csv"
	case JSON:
		return ".json"
	default:
		return ".txt"
	}
}

// Summary renders s in format f.
func Summary(s *models.StatisticsSummary, f Format) ([]byte, error) {
	switch f {
	case Markdown:
		return SummaryToMarkdown(s)
	case CSV:
		return SummaryToCSV(s)
	case JSON:
		return shared.MarshalJSON(s, true)
	default:
		return SummaryToText(s)
	}
}

// SummaryToText renders the headline numbers followed by the yearly breakdown and rankings
func SummaryToText(s *models.StatisticsSummary) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Total listening: %s (%s minutes)\n", shared.FormatMinutes(s.TotalMinutes), shared.FormatCount(s.TotalMinutes)))
	buf.WriteString(fmt.Sprintf("Plays: %s\n", shared.FormatCount(s.TotalTracks)))
	buf.WriteString(fmt.Sprintf("Unique artists: %s\n", shared.FormatCount(s.UniqueArtists)))
	buf.WriteString(fmt.Sprintf("Unique tracks: %s\n", shared.FormatCount(s.UniqueTracks)))
	buf.WriteString(fmt.Sprintf("Daily average: %d minutes\n", s.DailyAverageMinutes))
	buf.WriteString(fmt.Sprintf("Longest streak: %d days\n", s.LongestStreakDays))
	buf.WriteString(fmt.Sprintf("This year: %s minutes\n", shared.FormatCount(s.TotalMinutesThisYear)))
	if span := playSpan(s); span != "" {
		buf.WriteString(fmt.Sprintf("Span: %s\n", span))
	}

	if len(s.YearlyMinutes) > 0 {
		buf.WriteString("\nBy year:\n")
		for _, y := range s.YearlyMinutes {
			buf.WriteString(fmt.Sprintf("  %s  %s minutes\n", y.Year, shared.FormatCount(y.Minutes)))
		}
	}

	if len(s.TopArtists) > 0 {
		buf.WriteString("\nTop artists:\n")
		for i, a := range s.TopArtists {
			buf.WriteString(fmt.Sprintf("%2d. %s (%d min)\n", i+1, a.Name, a.Minutes))
		}
	}

	if len(s.TopTracks) > 0 {
		buf.WriteString("\nTop tracks:\n")
		for i, t := range s.TopTracks {
			buf.WriteString(fmt.Sprintf("%2d. %s - %s (%d min)\n", i+1, t.Artist, t.Name, t.Minutes))
		}
	}

	return buf.Bytes(), nil
}

// SummaryToMarkdown renders the summary as a Markdown report with tables for each ranking
func SummaryToMarkdown(s *models.StatisticsSummary) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Listening Statistics\n\n")
	if span := playSpan(s); span != "" {
		buf.WriteString(fmt.Sprintf("_%s_\n\n", span))
	}

	buf.WriteString(fmt.Sprintf("**Total listening**: %s minutes (%s)\n", shared.FormatCount(s.TotalMinutes), shared.FormatMinutes(s.TotalMinutes)))
	buf.WriteString(fmt.Sprintf("**Plays**: %s\n", shared.FormatCount(s.TotalTracks)))
	buf.WriteString(fmt.Sprintf("**Unique artists**: %s\n", shared.FormatCount(s.UniqueArtists)))
	buf.WriteString(fmt.Sprintf("**Unique tracks**: %s\n", shared.FormatCount(s.UniqueTracks)))
	buf.WriteString(fmt.Sprintf("**Daily average**: %d minutes\n", s.DailyAverageMinutes))
	buf.WriteString(fmt.Sprintf("**Longest streak**: %d days\n", s.LongestStreakDays))
	buf.WriteString(fmt.Sprintf("**This year**: %s minutes\n\n", shared.FormatCount(s.TotalMinutesThisYear)))

	if len(s.YearlyMinutes) > 0 {
		buf.WriteString("## By Year\n\n| Year | Minutes |\n|---|---:|\n")
		for _, y := range s.YearlyMinutes {
			buf.WriteString(fmt.Sprintf("| %s | %d |\n", y.Year, y.Minutes))
		}
		buf.WriteString("\n")
	}

	if len(s.TopArtists) > 0 {
		buf.WriteString("## Top Artists\n\n| # | Artist | Minutes |\n|---:|---|---:|\n")
		for i, a := range s.TopArtists {
			buf.WriteString(fmt.Sprintf("| %d | %s | %d |\n", i+1, escapeCell(a.Name), a.Minutes))
		}
		buf.WriteString("\n")
	}

	if len(s.TopTracks) > 0 {
		buf.WriteString("## Top Tracks\n\n| # | Track | Artist | Minutes |\n|---:|---|---|---:|\n")
		for i, t := range s.TopTracks {
			buf.WriteString(fmt.Sprintf("| %d | %s | %s | %d |\n", i+1, escapeCell(t.Name), escapeCell(t.Artist), t.Minutes))
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// SummaryToCSV flattens the summary into rows with columns: Section, Name, Artist, Value.
//
// Sections are "total", "year", "artist" and "track"; rankings keep their order.
func SummaryToCSV(s *models.StatisticsSummary) ([]byte, error) {
	var rows [][]string
	rows = append(rows,
		[]string{"total", "minutes", "", strconv.Itoa(s.TotalMinutes)},
		[]string{"total", "plays", "", strconv.Itoa(s.TotalTracks)},
		[]string{"total", "unique_artists", "", strconv.Itoa(s.UniqueArtists)},
		[]string{"total", "unique_tracks", "", strconv.Itoa(s.UniqueTracks)},
		[]string{"total", "daily_average_minutes", "", strconv.Itoa(s.DailyAverageMinutes)},
		[]string{"total", "longest_streak_days", "", strconv.Itoa(s.LongestStreakDays)},
		[]string{"total", "minutes_this_year", "", strconv.Itoa(s.TotalMinutesThisYear)},
	)
	for _, y := range s.YearlyMinutes {
		rows = append(rows, []string{"year", y.Year, "", strconv.Itoa(y.Minutes)})
	}
	for _, a := range s.TopArtists {
		rows = append(rows, []string{"artist", a.Name, "", strconv.Itoa(a.Minutes)})
	}
	for _, t := range s.TopTracks {
		rows = append(rows, []string{"track", t.Name, t.Artist, strconv.Itoa(t.Minutes)})
	}

	return writeCSV([]string{"Section", "Name", "Artist", "Value"}, rows)
}

// HistoryToCSV converts play events to CSV with columns: EndTime, Artist, Track, MsPlayed
func HistoryToCSV(events []models.PlayEvent) ([]byte, error) {
	rows := make([][]string, 0, len(events))
	for _, e := range events {
		rows = append(rows, []string{
			e.EndTime.UTC().Format(time.RFC3339),
			e.ArtistName,
			e.TrackName,
			strconv.FormatInt(e.MsPlayed, 10),
		})
	}
	return writeCSV([]string{"EndTime", "Artist", "Track", "MsPlayed"}, rows)
}

// History renders the stored play events. Only CSV and JSON are supported.
func History(events []models.PlayEvent, f Format) ([]byte, error) {
	switch f {
	case CSV:
		return HistoryToCSV(events)
	case JSON:
		if events == nil {
			events = []models.PlayEvent{}
		}
		return shared.MarshalJSON(events, true)
	default:
		return nil, fmt.Errorf("%w: history exports support csv or json, got %q", shared.ErrInvalidFlag, f)
	}
}

// InsightsToText renders archived insights, one block per insight
func InsightsToText(insights []*models.Insight) ([]byte, error) {
	var buf bytes.Buffer

	for i, in := range insights {
		if i > 0 {
			buf.WriteString("\n")
		}
		buf.WriteString(fmt.Sprintf("#%d [%s] %s", in.Sequence(), in.Source(), in.CreatedAt().Local().Format("2006-01-02 15:04")))
		if in.Model() != "" {
			buf.WriteString(fmt.Sprintf(" (%s)", in.Model()))
		}
		buf.WriteString("\n")
		buf.WriteString(strings.TrimSpace(in.Summary()))
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// InsightsToMarkdown renders archived insights as Markdown sections
func InsightsToMarkdown(insights []*models.Insight) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Insights\n\n")
	for _, in := range insights {
		buf.WriteString(fmt.Sprintf("## #%d %s\n\n", in.Sequence(), in.Source()))
		buf.WriteString(fmt.Sprintf("_%s", in.CreatedAt().UTC().Format(time.RFC3339)))
		if in.Model() != "" {
			buf.WriteString(fmt.Sprintf(" · %s", in.Model()))
		}
		buf.WriteString("_\n\n")
		buf.WriteString(strings.TrimSpace(in.Summary()))
		buf.WriteString("\n\n")
	}

	return buf.Bytes(), nil
}

// Insights renders archived insights in format f.
func Insights(insights []*models.Insight, f Format) ([]byte, error) {
	switch f {
	case Markdown:
		return InsightsToMarkdown(insights)
	case JSON:
		views := make([]models.InsightView, 0, len(insights))
		for _, in := range insights {
			views = append(views, in.View())
		}
		return shared.MarshalJSON(views, true)
	case CSV:
		rows := make([][]string, 0, len(insights))
		for _, in := range insights {
			rows = append(rows, []string{
				strconv.Itoa(in.Sequence()),
				string(in.Source()),
				in.CreatedAt().UTC().Format(time.RFC3339),
				in.Model(),
				in.Summary(),
			})
		}
		return writeCSV([]string{"Sequence", "Source", "CreatedAt", "Model", "Summary"}, rows)
	default:
		return InsightsToText(insights)
	}
}

// WriteExport writes data to path, creating parent directories.
//
// Defaults to {base}{ext} in the working directory when path is empty.
func WriteExport(data []byte, path, base string, f Format) (string, error) {
	if path == "" {
		path = base + f.Extension()
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s file: %w", f, err)
	}
	return path, nil
}

func writeCSV(headers []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}
	for _, record := range rows {
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

func playSpan(s *models.StatisticsSummary) string {
	if s.FirstPlay.IsZero() || s.LastPlay.IsZero() {
		return ""
	}
	return fmt.Sprintf("%s to %s", s.FirstPlay.Format("2006-01-02"), s.LastPlay.Format("2006-01-02"))
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
