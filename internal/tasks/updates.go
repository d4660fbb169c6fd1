package tasks

import (
	"fmt"

	"github.com/desertthunder/spins/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	ReadFiles Phase = iota
	StoreHistory
	ComputeStats
	FetchProfile
	FetchTopTracks
	FetchTopArtists
	FetchRecent
	GenerateInsight
	ArchiveInsight
)

func (p Phase) String() string {
	switch p {
	case ReadFiles:
		return "read_files"
	case StoreHistory:
		return "store_history"
	case ComputeStats:
		return "compute_stats"
	case FetchProfile:
		return "fetch_profile"
	case FetchTopTracks:
		return "fetch_top_tracks"
	case FetchTopArtists:
		return "fetch_top_artists"
	case FetchRecent:
		return "fetch_recent"
	case GenerateInsight:
		return "generate_insight"
	case ArchiveInsight:
		return "archive_insight"
	default:
		return ""
	}
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func readingFilesUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ReadFiles,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Reading %d history file(s)...", total),
	}
}

func fileReadUpdate(step, total int, name string, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ReadFiles,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d plays)", step, total, name, count),
	}
}

func storingHistoryUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   StoreHistory,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Saving %d plays...", count),
	}
}

func computedStatsUpdate(summary *models.StatisticsSummary) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ComputeStats,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Computed statistics for %d plays", summary.TotalTracks),
		Data:    summary,
	}
}

func fetchingUpdate(phase Phase, step, total int, what string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   phase,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Fetching %s from Spotify...", what),
	}
}

func generatingInsightUpdate(source models.InsightSource) ProgressUpdate {
	return ProgressUpdate{
		Phase:   GenerateInsight,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Generating %s summary...", source),
	}
}

func archivedInsightUpdate(insight *models.Insight) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ArchiveInsight,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Saved insight #%d", insight.Sequence()),
		Data:    insight,
	}
}
