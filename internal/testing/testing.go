// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/desertthunder/spins/internal/models"
)

// MockService is a test double for [services.Service]. Zero values return empty results.
type MockService struct {
	mu sync.Mutex

	ProfileResult *models.Profile
	Tracks        []models.Track
	Artists       []models.Artist
	Recent        []models.RecentPlay

	AuthErr    error
	ProfileErr error
	TracksErr  error
	ArtistsErr error
	RecentErr  error

	Calls []string // method names in call order
}

func (m *MockService) record(name string) {
	m.mu.Lock()
	m.Calls = append(m.Calls, name)
	m.mu.Unlock()
}

// Called reports how many times method was invoked
func (m *MockService) Called(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.Calls {
		if c == method {
			n++
		}
	}
	return n
}

func (m *MockService) Authenticate(ctx context.Context, credentials map[string]string) error {
	m.record("Authenticate")
	return m.AuthErr
}

func (m *MockService) Profile(ctx context.Context) (*models.Profile, error) {
	m.record("Profile")
	if m.ProfileErr != nil {
		return nil, m.ProfileErr
	}
	if m.ProfileResult == nil {
		return &models.Profile{ID: "mock-user"}, nil
	}
	return m.ProfileResult, nil
}

func (m *MockService) TopTracks(ctx context.Context, tr models.TimeRange, limit int) ([]models.Track, error) {
	m.record("TopTracks")
	if m.TracksErr != nil {
		return nil, m.TracksErr
	}
	return m.Tracks, nil
}

func (m *MockService) TopArtists(ctx context.Context, tr models.TimeRange, limit int) ([]models.Artist, error) {
	m.record("TopArtists")
	if m.ArtistsErr != nil {
		return nil, m.ArtistsErr
	}
	return m.Artists, nil
}

func (m *MockService) RecentlyPlayed(ctx context.Context, limit int) ([]models.RecentPlay, error) {
	m.record("RecentlyPlayed")
	if m.RecentErr != nil {
		return nil, m.RecentErr
	}
	return m.Recent, nil
}

func (m *MockService) Name() string { return "mock" }

// MockSummarizer is a test double for [services.Summarizer]
type MockSummarizer struct {
	Text string
	Err  error

	LastRequest models.InsightRequest
	LastHistory string
}

func (m *MockSummarizer) Summarize(ctx context.Context, req models.InsightRequest) (string, error) {
	m.LastRequest = req
	return m.Text, m.Err
}

func (m *MockSummarizer) DescribePlaylist(ctx context.Context, history string) (string, error) {
	m.LastHistory = history
	return m.Text, m.Err
}

func (m *MockSummarizer) Model() string { return "mock-model" }

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

// WriteHistoryFile writes content to name inside a fresh temp dir and returns the path
func WriteHistoryFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
	return path
}

// SampleHistory is a two-play history on consecutive days in 2024
const SampleHistory = `[
  {"endTime": "2024-01-01 10:00", "artistName": "A", "trackName": "T1", "msPlayed": 180000},
  {"endTime": "2024-01-02 10:00", "artistName": "A", "trackName": "T2", "msPlayed": 120000}
]`
