package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/spins/internal/models"
	"github.com/desertthunder/spins/internal/shared"
)

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
	MaxTokens int `json:"max_tokens"`
}

func newTestOpenAI(t *testing.T, handler http.HandlerFunc) *OpenAIService {
	t.Helper()

	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	srv, err := NewOpenAIService(shared.OpenAIConfig{APIKey: "sk-test", BaseURL: ts.URL + "/v1/"})
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	return srv
}

func completion(content string) string {
	return `{"id":"c1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":` +
		jsonString(content) + `},"finish_reason":"stop"}]}`
}

func jsonString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func TestOpenAIService(t *testing.T) {
	t.Run("requires api key", func(t *testing.T) {
		if _, err := NewOpenAIService(shared.OpenAIConfig{}); !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})

	t.Run("defaults", func(t *testing.T) {
		srv, err := NewOpenAIService(shared.OpenAIConfig{APIKey: "sk-test"})
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}
		if srv.Model() != defaultOpenAIModel || srv.maxTokens != defaultMaxTokens {
			t.Errorf("unexpected defaults %s/%d", srv.Model(), srv.maxTokens)
		}
	})

	t.Run("Summarize", func(t *testing.T) {
		var got chatRequest
		srv := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/v1/chat/completions" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
				t.Errorf("unexpected authorization %q", auth)
			}
			body, _ := io.ReadAll(r.Body)
			if err := json.Unmarshal(body, &got); err != nil {
				t.Errorf("failed to decode request: %v", err)
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(completion("  You spent 5 minutes with A.  ")))
		})

		req := models.InsightRequest{
			Source: models.SourceHistory,
			Data: models.ListeningData{
				TotalMinutes:          5,
				TopTracks:             []models.TrackRef{{Title: "T1", Artist: "A"}},
				TopArtists:            []string{"A"},
				ListeningDistribution: models.NotAvailable,
			},
			Profile: models.UserProfile{Username: "listener42"},
		}

		summary, err := srv.Summarize(context.Background(), req)
		if err != nil {
			t.Fatalf("Summarize failed: %v", err)
		}
		if summary != "You spent 5 minutes with A." {
			t.Errorf("unexpected summary %q", summary)
		}

		if len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[1].Role != "user" {
			t.Fatalf("unexpected messages %+v", got.Messages)
		}
		if !strings.Contains(got.Messages[0].Content, "music analyst") {
			t.Errorf("system prompt missing role: %q", got.Messages[0].Content)
		}
		user := got.Messages[1].Content
		for _, want := range []string{`"username":"listener42"`, `"totalMinutes":5`, `"listeningDistribution":"Not available"`, "Summary:"} {
			if !strings.Contains(user, want) {
				t.Errorf("user prompt missing %s: %q", want, user)
			}
		}
		if got.Model != defaultOpenAIModel {
			t.Errorf("expected model %s, got %s", defaultOpenAIModel, got.Model)
		}
	})

	t.Run("DescribePlaylist", func(t *testing.T) {
		srv := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
			var got chatRequest
			body, _ := io.ReadAll(r.Body)
			json.Unmarshal(body, &got)
			if !strings.Contains(got.Messages[1].Content, "late night idm") {
				t.Errorf("history missing from prompt: %q", got.Messages[1].Content)
			}
			w.Write([]byte(completion("Glitches for the small hours.")))
		})

		desc, err := srv.DescribePlaylist(context.Background(), "late night idm")
		if err != nil {
			t.Fatalf("DescribePlaylist failed: %v", err)
		}
		if desc != "Glitches for the small hours." {
			t.Errorf("unexpected description %q", desc)
		}

		if _, err := srv.DescribePlaylist(context.Background(), "   "); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("upstream error carries message", func(t *testing.T) {
		srv := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error","code":"invalid_api_key"}}`))
		})

		_, err := srv.Summarize(context.Background(), models.InsightRequest{})
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Fatalf("expected ErrAPIRequest, got %v", err)
		}
		if !strings.Contains(err.Error(), "Incorrect API key provided") {
			t.Errorf("expected upstream message, got %v", err)
		}
	})

	t.Run("empty completion", func(t *testing.T) {
		srv := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"id":"c1","choices":[]}`))
		})

		if _, err := srv.Summarize(context.Background(), models.InsightRequest{}); !errors.Is(err, shared.ErrEmptyCompletion) {
			t.Errorf("expected ErrEmptyCompletion, got %v", err)
		}
	})
}
