package tasks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/desertthunder/spins/internal/models"
	"github.com/desertthunder/spins/internal/shared"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers bounds concurrent source reads when no worker count is configured.
const DefaultWorkers = 4

// endTime layouts accepted in exported histories. Layouts without a zone are read as UTC.
var endTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
}

// Source is one listening history document.
type Source interface {
	Name() string
	Open() (io.ReadCloser, error)
}

// FileSource reads a history file from disk.
type FileSource string

func (f FileSource) Name() string                 { return filepath.Base(string(f)) }
func (f FileSource) Open() (io.ReadCloser, error) { return os.Open(string(f)) }

// BytesSource is an in-memory history document.
type BytesSource struct {
	Label string
	Data  []byte
}

func (b BytesSource) Name() string { return b.Label }
func (b BytesSource) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(b.Data)), nil
}

type multipartSource struct {
	header *multipart.FileHeader
}

// MultipartSource adapts an uploaded form file.
func MultipartSource(fh *multipart.FileHeader) Source {
	return multipartSource{header: fh}
}

func (m multipartSource) Name() string                 { return m.header.Filename }
func (m multipartSource) Open() (io.ReadCloser, error) { return m.header.Open() }

// ParseError reports a history document that could not be ingested.
//
// Index is the offending entry within the document, or -1 when the document as a whole is rejected.
// Every ParseError matches [shared.ErrParse]; structural problems also match [shared.ErrInvalidHistory].
type ParseError struct {
	Source string
	Index  int
	Err    error
}

func (e *ParseError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("%s: entry %d: %v", e.Source, e.Index, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == shared.ErrParse }

// rawEntry covers both the account data export (endTime, msPlayed, ...) and the
// extended streaming history (ts, ms_played, master_metadata_*).
type rawEntry struct {
	EndTime    *string  `json:"endTime"`
	ArtistName *string  `json:"artistName"`
	TrackName  *string  `json:"trackName"`
	MsPlayed   *float64 `json:"msPlayed"`

	TS          *string  `json:"ts"`
	MsPlayedExt *float64 `json:"ms_played"`
	Track       *string  `json:"master_metadata_track_name"`
	Artist      *string  `json:"master_metadata_album_artist_name"`
}

// Ingest reads every source concurrently and concatenates their events in source order.
//
// At most workers sources are read at once. The first failure cancels outstanding reads and
// the whole ingestion fails; no partial result is returned.
func Ingest(ctx context.Context, sources []Source, workers int, progress chan<- ProgressUpdate) ([]models.PlayEvent, error) {
	if len(sources) == 0 {
		return []models.PlayEvent{}, nil
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}

	sendProgress(progress, readingFilesUpdate(len(sources)))

	results := make([][]models.PlayEvent, len(sources))
	var done atomic.Int32

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, src := range sources {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			events, err := readSource(src)
			if err != nil {
				return err
			}
			results[i] = events

			n := int(done.Add(1))
			sendProgress(progress, fileReadUpdate(n, len(sources), src.Name(), len(events)))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, r := range results {
		total += len(r)
	}

	events := make([]models.PlayEvent, 0, total)
	for _, r := range results {
		events = append(events, r...)
	}
	return events, nil
}

func readSource(src Source) ([]models.PlayEvent, error) {
	rc, err := src.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", src.Name(), err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", src.Name(), err)
	}

	return ParseHistory(src.Name(), data)
}

// ParseHistory decodes one history document.
func ParseHistory(name string, data []byte) ([]models.PlayEvent, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, &ParseError{Source: name, Index: -1, Err: fmt.Errorf("%w: expected a JSON array, got %s", shared.ErrInvalidHistory, typeErr.Value)}
		}
		return nil, &ParseError{Source: name, Index: -1, Err: fmt.Errorf("%w: %v", shared.ErrParse, err)}
	}
	if raw == nil {
		return nil, &ParseError{Source: name, Index: -1, Err: fmt.Errorf("%w: expected a JSON array, got null", shared.ErrInvalidHistory)}
	}

	events := make([]models.PlayEvent, 0, len(raw))
	for i, msg := range raw {
		var entry rawEntry
		if err := json.Unmarshal(msg, &entry); err != nil {
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &typeErr) {
				err = fmt.Errorf("field %s has the wrong type", typeErr.Field)
			}
			return nil, &ParseError{Source: name, Index: i, Err: fmt.Errorf("%w: %v", shared.ErrInvalidHistory, err)}
		}

		event, ok, err := entry.toEvent()
		if err != nil {
			return nil, &ParseError{Source: name, Index: i, Err: fmt.Errorf("%w: %v", shared.ErrInvalidHistory, err)}
		}
		if ok {
			events = append(events, event)
		}
	}
	return events, nil
}

// toEvent maps an entry to a PlayEvent. ok is false for extended entries without
// track metadata, such as podcast episodes.
func (r rawEntry) toEvent() (event models.PlayEvent, ok bool, err error) {
	if r.TS != nil && r.EndTime == nil {
		if r.Track == nil || r.Artist == nil || *r.Track == "" || *r.Artist == "" {
			return models.PlayEvent{}, false, nil
		}
		r.EndTime, r.TrackName, r.ArtistName, r.MsPlayed = r.TS, r.Track, r.Artist, r.MsPlayedExt
	}

	if r.EndTime == nil {
		return models.PlayEvent{}, false, errors.New("endTime is required")
	}
	end, err := parseEndTime(*r.EndTime)
	if err != nil {
		return models.PlayEvent{}, false, err
	}

	if r.MsPlayed == nil {
		return models.PlayEvent{}, false, errors.New("msPlayed is required")
	}

	ms := *r.MsPlayed
	if ms != math.Trunc(ms) {
		return models.PlayEvent{}, false, fmt.Errorf("msPlayed %v is not an integer", ms)
	}
	if ms < 0 || ms >= math.MaxInt64 {
		return models.PlayEvent{}, false, fmt.Errorf("msPlayed %v is out of range", ms)
	}

	event = models.PlayEvent{
		EndTime:    end,
		ArtistName: deref(r.ArtistName),
		TrackName:  deref(r.TrackName),
		MsPlayed:   int64(ms),
	}
	if err := event.Validate(); err != nil {
		return models.PlayEvent{}, false, err
	}
	return event, true, nil
}

func parseEndTime(s string) (time.Time, error) {
	for _, layout := range endTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("endTime %q is not a recognized timestamp", s)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
