package openai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/lexiflow/lexiflow/internal/domain"
	"github.com/lexiflow/lexiflow/internal/enrichment"
)

const (
	// DefaultBaseURL points at a local vLLM-style server, the most common
	// non-hosted deployment.
	DefaultBaseURL = "http://localhost:8000/v1"

	// DefaultModel is used when settings carry no model name.
	DefaultModel = "meta-llama/Meta-Llama-3-8B-Instruct"

	httpTimeout = 60 * time.Second
)

// Package-specific errors
var (
	// ErrEmptyWord is returned when a generation method is called with an
	// empty word.
	ErrEmptyWord = errors.New("word cannot be empty")

	// ErrEmptyInput is returned when answer evaluation is missing the user
	// input or context sentence.
	ErrEmptyInput = errors.New("evaluation input cannot be empty")
)

// Config contains the settings for an OpenAI-compatible endpoint.
type Config struct {
	// APIKey is sent as a bearer token. Local servers often accept any
	// value, so an empty key is replaced with a placeholder rather than
	// rejected.
	APIKey string

	// BaseURL is the API root, e.g. "https://api.openai.com/v1".
	BaseURL string

	// ModelName selects the chat model.
	ModelName string
}

// ConfigFromSettings builds a client config from the user settings, filling
// in defaults for missing fields.
func ConfigFromSettings(settings domain.Settings) Config {
	cfg := Config{
		APIKey:    settings.APIKey,
		BaseURL:   settings.BaseURL,
		ModelName: settings.ModelName,
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.ModelName == "" {
		cfg.ModelName = DefaultModel
	}
	return cfg
}

// Enricher generates vocabulary content through an OpenAI-compatible
// chat-completions API. It implements enrichment.Enricher.
type Enricher struct {
	logger  *slog.Logger
	config  Config
	prompts *enrichment.PromptSet
	client  *http.Client
}

// NewEnricher creates an OpenAI-compatible enricher.
func NewEnricher(logger *slog.Logger, config Config, prompts *enrichment.PromptSet) (*Enricher, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if prompts == nil {
		return nil, errors.New("prompts cannot be nil")
	}
	if config.BaseURL == "" {
		return nil, fmt.Errorf("%w: base URL cannot be empty", enrichment.ErrInvalidConfig)
	}
	if config.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", enrichment.ErrInvalidConfig)
	}
	if config.APIKey == "" {
		config.APIKey = "dummy-key"
	}

	return &Enricher{
		logger:  logger.With("component", "openai_enricher"),
		config:  config,
		prompts: prompts,
		client:  &http.Client{Timeout: httpTimeout},
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// wordDataPayload is the flat JSON shape the generation prompt asks for.
type wordDataPayload struct {
	Original        string `json:"original"`
	Sentence        string `json:"sentence"`
	Translation     string `json:"translation"`
	WordTranslation string `json:"wordTranslation"`
	Cloze           string `json:"cloze"`
}

// GenerateWordData implements enrichment.Enricher.
func (e *Enricher) GenerateWordData(ctx context.Context, word string) (*enrichment.WordData, error) {
	if strings.TrimSpace(word) == "" {
		return nil, ErrEmptyWord
	}

	prompt, err := e.prompts.GenerateDataPrompt(word)
	if err != nil {
		return nil, err
	}

	content, err := e.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var payload wordDataPayload
	if err := parseJSON(content, &payload); err != nil {
		return nil, err
	}
	if payload.Sentence == "" || payload.Cloze == "" {
		return nil, fmt.Errorf("%w: missing sentence or cloze", enrichment.ErrInvalidResponse)
	}

	original := payload.Original
	if original == "" {
		original = word
	}

	return &enrichment.WordData{
		Original:        original,
		WordTranslation: payload.WordTranslation,
		Questions: []enrichment.QuestionData{
			{
				Sentence:    payload.Sentence,
				Translation: payload.Translation,
				Cloze:       payload.Cloze,
			},
		},
	}, nil
}

// GenerateQuestion implements enrichment.Enricher.
func (e *Enricher) GenerateQuestion(ctx context.Context, word string) (*enrichment.QuestionData, error) {
	if strings.TrimSpace(word) == "" {
		return nil, ErrEmptyWord
	}

	prompt, err := e.prompts.GenerateQuestionPrompt(word)
	if err != nil {
		return nil, err
	}

	content, err := e.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var payload enrichment.QuestionData
	if err := parseJSON(content, &payload); err != nil {
		return nil, err
	}
	if payload.Sentence == "" || payload.Cloze == "" {
		return nil, fmt.Errorf("%w: missing sentence or cloze", enrichment.ErrInvalidResponse)
	}

	return &payload, nil
}

// EvaluateAnswer implements enrichment.Enricher.
func (e *Enricher) EvaluateAnswer(ctx context.Context, targetWord, userInput, sentence string) (*enrichment.Evaluation, error) {
	if strings.TrimSpace(targetWord) == "" {
		return nil, ErrEmptyWord
	}
	if strings.TrimSpace(userInput) == "" || strings.TrimSpace(sentence) == "" {
		return nil, ErrEmptyInput
	}

	prompt, err := e.prompts.EvaluateAnswerPrompt(targetWord, userInput, sentence)
	if err != nil {
		return nil, err
	}

	content, err := e.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var evaluation enrichment.Evaluation
	if err := parseJSON(content, &evaluation); err != nil {
		return nil, err
	}

	return &evaluation, nil
}

// complete sends one chat-completion request and returns the assistant
// message content.
func (e *Enricher) complete(ctx context.Context, prompt string) (string, error) {
	reqBody := chatRequest{
		Model:          e.config.ModelName,
		Messages:       []chatMessage{{Role: "user", Content: prompt}},
		ResponseFormat: &responseFormat{Type: "json_object"},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal chat request: %w", err)
	}

	url := strings.TrimSuffix(e.config.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.config.APIKey)

	e.logger.Debug("calling chat completions",
		"url", url,
		"model", e.config.ModelName)

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", enrichment.ErrTransientFailure, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read response: %v", enrichment.ErrTransientFailure, err)
	}

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return "", fmt.Errorf("%w: status %d", enrichment.ErrTransientFailure, resp.StatusCode)
		}
		return "", fmt.Errorf("%w: status %d: %s", enrichment.ErrGenerationFailed, resp.StatusCode, string(body))
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("%w: failed to parse completion: %v", enrichment.ErrInvalidResponse, err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("%w: %s", enrichment.ErrGenerationFailed, parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("%w: no content in completion", enrichment.ErrInvalidResponse)
	}

	return parsed.Choices[0].Message.Content, nil
}

// parseJSON strips markdown code fences some models wrap around their
// output, then unmarshals.
func parseJSON(text string, out any) error {
	clean := strings.TrimSpace(text)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	clean = strings.TrimSpace(clean)

	if err := json.Unmarshal([]byte(clean), out); err != nil {
		return fmt.Errorf("%w: failed to parse JSON response: %v", enrichment.ErrInvalidResponse, err)
	}
	return nil
}
