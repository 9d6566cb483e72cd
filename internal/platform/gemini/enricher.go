package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/lexiflow/lexiflow/internal/domain"
	"github.com/lexiflow/lexiflow/internal/enrichment"
)

// Config contains the settings needed to talk to the Gemini API.
type Config struct {
	// APIKey authenticates against the Gemini API.
	APIKey string

	// ModelName selects the Gemini model, e.g. "gemini-2.0-flash".
	ModelName string

	// MaxRetries is the number of retries after the first attempt for
	// transient failures.
	MaxRetries int

	// RetryDelaySeconds is the base delay for exponential backoff.
	RetryDelaySeconds int
}

// ConfigFromSettings builds a Gemini config from the user settings with
// default retry behavior.
func ConfigFromSettings(settings domain.Settings) Config {
	return Config{
		APIKey:            settings.APIKey,
		ModelName:         settings.ModelName,
		MaxRetries:        3,
		RetryDelaySeconds: 2,
	}
}

// Enricher generates vocabulary content through the Gemini API. It
// implements enrichment.Enricher.
type Enricher struct {
	logger  *slog.Logger
	config  Config
	prompts *enrichment.PromptSet
	client  *genai.Client
}

// NewEnricher creates a Gemini-backed enricher.
func NewEnricher(ctx context.Context, logger *slog.Logger, config Config, prompts *enrichment.PromptSet) (*Enricher, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if prompts == nil {
		return nil, errors.New("prompts cannot be nil")
	}
	if config.APIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", enrichment.ErrInvalidConfig)
	}
	if config.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", enrichment.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", enrichment.ErrInvalidConfig, err)
	}

	return &Enricher{
		logger:  logger.With("component", "gemini_enricher"),
		config:  config,
		prompts: prompts,
		client:  client,
	}, nil
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

	text, err := e.callWithRetry(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var payload wordDataPayload
	if err := parseJSON(text, &payload); err != nil {
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

	text, err := e.callWithRetry(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var payload enrichment.QuestionData
	if err := parseJSON(text, &payload); err != nil {
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

	text, err := e.callWithRetry(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var evaluation enrichment.Evaluation
	if err := parseJSON(text, &evaluation); err != nil {
		return nil, err
	}

	return &evaluation, nil
}

// callWithRetry sends a prompt to the Gemini API with exponential backoff on
// transient failures. Safety blocks and malformed responses are permanent
// and returned immediately.
func (e *Enricher) callWithRetry(ctx context.Context, prompt string) (string, error) {
	maxRetries := e.config.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	baseDelaySeconds := e.config.RetryDelaySeconds
	if baseDelaySeconds < 1 {
		baseDelaySeconds = 1
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		e.logger.Debug("calling Gemini API",
			"model", e.config.ModelName,
			"attempt", attempt+1,
			"max_attempts", maxRetries+1)

		text, err, transient := e.call(ctx, prompt)
		if err == nil {
			return text, nil
		}
		lastErr = err

		e.logger.Error("Gemini API call failed",
			"attempt", attempt+1,
			"transient", transient,
			"error", err)

		if !transient || attempt == maxRetries {
			break
		}

		// delay = base * 2^attempt * jitter in [0.5, 1.0)
		backoff := float64(baseDelaySeconds) * math.Pow(2, float64(attempt))
		delay := time.Duration(backoff * (0.5 + rng.Float64()*0.5) * float64(time.Second))

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", fmt.Errorf("%w: %v", enrichment.ErrTransientFailure, ctx.Err())
		}
	}

	if errors.Is(lastErr, enrichment.ErrContentBlocked) || errors.Is(lastErr, enrichment.ErrInvalidResponse) {
		return "", lastErr
	}
	return "", fmt.Errorf("%w: %v", enrichment.ErrTransientFailure, lastErr)
}

// call makes a single Gemini request and classifies any failure as transient
// or permanent.
func (e *Enricher) call(ctx context.Context, prompt string) (text string, err error, transient bool) {
	resp, err := e.client.Models.GenerateContent(ctx, e.config.ModelName, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		// Network and server-side errors are assumed transient.
		return "", err, true
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no content generated", enrichment.ErrInvalidResponse), false
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return "", fmt.Errorf("%w: generation stopped by safety filters", enrichment.ErrContentBlocked), false
	}
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("%w: empty content in response", enrichment.ErrInvalidResponse), false
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		sb.WriteString(part.Text)
	}
	return sb.String(), nil, false
}

// parseJSON strips markdown code fences the model sometimes wraps around its
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
