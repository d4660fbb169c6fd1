package models

import (
	"errors"
	"fmt"
	"time"
)

// NotAvailable fills payload fields the source data cannot provide.
const NotAvailable = "Not available"

// InsightSource identifies which data an insight was generated from.
type InsightSource string

const (
	SourceSpotify  InsightSource = "spotify"
	SourceHistory  InsightSource = "history"
	SourcePlaylist InsightSource = "playlist"
)

// TrackRef is the minimal track shape sent to the summary service.
type TrackRef struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
}

// ListeningData is the aggregate payload sent to the summary service.
type ListeningData struct {
	TotalMinutes          int        `json:"totalMinutes"`
	TopTracks             []TrackRef `json:"topTracks"`
	TopArtists            []string   `json:"topArtists"`
	ListeningDistribution string     `json:"listeningDistribution"`
}

// UserProfile is the profile payload sent to the summary service.
type UserProfile struct {
	Username string `json:"username"`
	JoinDate string `json:"joinDate"`
}

// InsightRequest bundles everything the summary service receives.
type InsightRequest struct {
	Source  InsightSource `json:"source"`
	Data    ListeningData `json:"monthlyListeningData"`
	Profile UserProfile   `json:"userProfile"`
}

// Insight is a persisted, generated listening summary.
type Insight struct {
	id        string
	sequence  int
	source    InsightSource
	payload   string
	summary   string
	model     string
	createdAt time.Time
	deletedAt *time.Time
}

// NewInsight creates an unsaved insight; the repository assigns its ID and sequence.
func NewInsight(source InsightSource, payload, summary, model string) *Insight {
	return &Insight{
		source:    source,
		payload:   payload,
		summary:   summary,
		model:     model,
		createdAt: time.Now().UTC(),
	}
}

func (i *Insight) ID() string               { return i.id }
func (i *Insight) Sequence() int            { return i.sequence }
func (i *Insight) Source() InsightSource    { return i.source }
func (i *Insight) Payload() string          { return i.payload }
func (i *Insight) Summary() string          { return i.summary }
func (i *Insight) Model() string            { return i.model }
func (i *Insight) CreatedAt() time.Time     { return i.createdAt }
func (i *Insight) UpdatedAt() time.Time     { return i.createdAt }
func (i *Insight) DeletedAt() *time.Time    { return i.deletedAt }
func (i *Insight) SetID(id string)          { i.id = id }
func (i *Insight) SetSequence(seq int)      { i.sequence = seq }
func (i *Insight) SetCreatedAt(t time.Time) { i.createdAt = t }
func (i *Insight) SetDeletedAt(t *time.Time) {
	i.deletedAt = t
}

// Validate checks that the insight can be stored.
func (i *Insight) Validate() error {
	switch i.source {
	case SourceSpotify, SourceHistory, SourcePlaylist:
	default:
		return fmt.Errorf("unknown insight source %q", i.source)
	}
	if i.summary == "" {
		return errors.New("summary is required")
	}
	return nil
}

// InsightView is the JSON rendering of an [Insight].
type InsightView struct {
	ID        string        `json:"id"`
	Source    InsightSource `json:"source"`
	Summary   string        `json:"summary"`
	Model     string        `json:"model,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
}

// View flattens the insight for JSON output.
func (i *Insight) View() InsightView {
	return InsightView{
		ID:        i.id,
		Source:    i.source,
		Summary:   i.summary,
		Model:     i.model,
		CreatedAt: i.createdAt,
	}
}
