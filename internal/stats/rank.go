package stats

import (
	"sort"

	"github.com/desertthunder/spins/internal/models"
)

type tallyEntry struct {
	name    string
	artist  string
	minutes float64
	plays   int
}

// tally accumulates minutes per name while remembering first-seen order.
type tally struct {
	index   map[string]int
	entries []tallyEntry
}

func newTally() *tally {
	return &tally{index: make(map[string]int)}
}

func (t *tally) add(name, artist string, minutes float64) {
	i, ok := t.index[name]
	if !ok {
		i = len(t.entries)
		t.index[name] = i
		t.entries = append(t.entries, tallyEntry{name: name, artist: artist})
	}
	t.entries[i].minutes += minutes
	t.entries[i].plays++
}

func (t *tally) len() int {
	return len(t.entries)
}

// top returns the n entries with the most minutes. The stable sort keeps first-seen order for ties.
func (t *tally) top(n int) []models.RankedEntry {
	sorted := make([]tallyEntry, len(t.entries))
	copy(sorted, t.entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].minutes > sorted[j].minutes
	})

	if n > len(sorted) {
		n = len(sorted)
	}

	out := make([]models.RankedEntry, 0, n)
	for _, e := range sorted[:n] {
		out = append(out, models.RankedEntry{
			Name:    e.name,
			Artist:  e.artist,
			Minutes: round(e.minutes),
			Plays:   e.plays,
		})
	}
	return out
}
