// OpenAI-compatible chat completion implementation of [Summarizer]
package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/desertthunder/spins/internal/models"
	"github.com/desertthunder/spins/internal/services/prompts"
	"github.com/desertthunder/spins/internal/shared"
	openai "github.com/sashabaranov/go-openai"
)

const (
	defaultOpenAIModel = openai.GPT4oMini
	defaultMaxTokens   = 400
)

type promptData struct {
	Profile string
	Data    string
	History string
}

// OpenAIService generates listening summaries and playlist descriptions with chat completions.
//
// Requests are sent once; failures are returned to the caller without retry.
type OpenAIService struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	templates   map[string]*template.Template
}

// NewOpenAIService creates a summarizer from the OpenAI credentials.
func NewOpenAIService(cfg shared.OpenAIConfig) (*OpenAIService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: missing OpenAI api_key", shared.ErrMissingCredentials)
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}

	s := &OpenAIService{
		client:      openai.NewClientWithConfig(clientConfig),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		templates:   make(map[string]*template.Template),
	}
	if s.model == "" {
		s.model = defaultOpenAIModel
	}
	if s.maxTokens <= 0 {
		s.maxTokens = defaultMaxTokens
	}

	for _, name := range []string{"summary_system.txt", "summary_user.txt", "playlist_system.txt", "playlist_user.txt"} {
		tmpl, err := loadPromptTemplate(name)
		if err != nil {
			return nil, err
		}
		s.templates[name] = tmpl
	}

	return s, nil
}

func loadPromptTemplate(filename string) (*template.Template, error) {
	content, err := prompts.FS.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file %s: %w", filename, err)
	}

	tmpl, err := template.New(filename).Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse prompt template %s: %w", filename, err)
	}

	return tmpl, nil
}

func (s *OpenAIService) render(name string, data promptData) (string, error) {
	var buf bytes.Buffer
	if err := s.templates[name].Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render prompt %s: %w", name, err)
	}
	return buf.String(), nil
}

// Model returns the configured chat model.
func (s *OpenAIService) Model() string {
	return s.model
}

// Summarize produces a short summary of the listening data in req.
func (s *OpenAIService) Summarize(ctx context.Context, req models.InsightRequest) (string, error) {
	profile, err := shared.MarshalJSON(req.Profile, false)
	if err != nil {
		return "", fmt.Errorf("failed to encode profile: %w", err)
	}
	data, err := shared.MarshalJSON(req.Data, false)
	if err != nil {
		return "", fmt.Errorf("failed to encode listening data: %w", err)
	}

	pd := promptData{Profile: string(profile), Data: string(data)}
	return s.complete(ctx, "summary_system.txt", "summary_user.txt", pd)
}

// DescribePlaylist writes a playlist description from history.
func (s *OpenAIService) DescribePlaylist(ctx context.Context, history string) (string, error) {
	history = strings.TrimSpace(history)
	if history == "" {
		return "", fmt.Errorf("%w: listening history is empty", shared.ErrMissingArgument)
	}
	return s.complete(ctx, "playlist_system.txt", "playlist_user.txt", promptData{History: history})
}

func (s *OpenAIService) complete(ctx context.Context, systemName, userName string, pd promptData) (string, error) {
	systemPrompt, err := s.render(systemName, pd)
	if err != nil {
		return "", err
	}
	userPrompt, err := s.render(userName, pd)
	if err != nil {
		return "", err
	}

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: s.model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
				{Role: openai.ChatMessageRoleUser, Content: userPrompt},
			},
			Temperature: s.temperature,
			MaxTokens:   s.maxTokens,
		},
	)
	if err != nil {
		return "", completionError(err)
	}

	if len(resp.Choices) == 0 {
		return "", shared.ErrEmptyCompletion
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", shared.ErrEmptyCompletion
	}
	return text, nil
}

// completionError keeps the upstream message so callers can show it to the user.
func completionError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%w: openai status %d: %s", shared.ErrAPIRequest, apiErr.HTTPStatusCode, apiErr.Message)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("%w: openai status %d: %v", shared.ErrAPIRequest, reqErr.HTTPStatusCode, reqErr.Err)
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", shared.ErrTimeout, err)
	}

	return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
}
