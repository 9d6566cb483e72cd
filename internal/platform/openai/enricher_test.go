package openai

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/lexiflow/lexiflow/internal/domain"
	"github.com/lexiflow/lexiflow/internal/enrichment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPrompts(t *testing.T) *enrichment.PromptSet {
	t.Helper()
	set, err := enrichment.NewPromptSet(domain.DefaultSettings())
	require.NoError(t, err)
	return set
}

func newTestEnricher(t *testing.T, baseURL string) *Enricher {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	enricher, err := NewEnricher(logger, Config{
		APIKey:    "test-key",
		BaseURL:   baseURL,
		ModelName: "test-model",
	}, testPrompts(t))
	require.NoError(t, err)
	return enricher
}

// completionServer returns a chat-completions stub whose assistant message
// content is the given string.
func completionServer(t *testing.T, content string, gotReq *chatRequest) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		if gotReq != nil {
			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			require.NoError(t, json.Unmarshal(body, gotReq))
		}

		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": content}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func TestGenerateWordData(t *testing.T) {
	t.Parallel()

	var gotReq chatRequest
	content := `{"original":"cat","sentence":"The cat sat.","translation":"貓坐著。","wordTranslation":"貓","cloze":"The __________ sat."}`
	server := completionServer(t, content, &gotReq)
	defer server.Close()

	enricher := newTestEnricher(t, server.URL+"/v1")

	data, err := enricher.GenerateWordData(context.Background(), "cat")
	require.NoError(t, err)
	assert.Equal(t, "cat", data.Original)
	assert.Equal(t, "貓", data.WordTranslation)
	require.Len(t, data.Questions, 1)
	assert.Equal(t, "The cat sat.", data.Questions[0].Sentence)
	assert.Contains(t, data.Questions[0].Cloze, domain.ClozeBlank)

	// The rendered prompt reached the server.
	assert.Equal(t, "test-model", gotReq.Model)
	require.Len(t, gotReq.Messages, 1)
	assert.Contains(t, gotReq.Messages[0].Content, `"cat"`)
	require.NotNil(t, gotReq.ResponseFormat)
	assert.Equal(t, "json_object", gotReq.ResponseFormat.Type)
}

func TestGenerateWordDataStripsMarkdownFences(t *testing.T) {
	t.Parallel()

	content := "```json\n{\"sentence\":\"The dog ran.\",\"translation\":\"狗跑了。\",\"cloze\":\"The __________ ran.\"}\n```"
	server := completionServer(t, content, nil)
	defer server.Close()

	enricher := newTestEnricher(t, server.URL+"/v1")

	data, err := enricher.GenerateWordData(context.Background(), "dog")
	require.NoError(t, err)
	// Missing "original" falls back to the requested word.
	assert.Equal(t, "dog", data.Original)
}

func TestGenerateQuestion(t *testing.T) {
	t.Parallel()

	content := `{"sentence":"A brand new sentence.","translation":"全新的句子。","cloze":"A brand __________ sentence."}`
	server := completionServer(t, content, nil)
	defer server.Close()

	enricher := newTestEnricher(t, server.URL+"/v1")

	q, err := enricher.GenerateQuestion(context.Background(), "new")
	require.NoError(t, err)
	assert.Equal(t, "A brand new sentence.", q.Sentence)
}

func TestEvaluateAnswer(t *testing.T) {
	t.Parallel()

	content := `{"isCorrect":false,"type":"TYPO","feedback":"有一個拼字錯誤。"}`
	server := completionServer(t, content, nil)
	defer server.Close()

	enricher := newTestEnricher(t, server.URL+"/v1")

	eval, err := enricher.EvaluateAnswer(context.Background(), "eloquent", "eloqent", "An __________ speech.")
	require.NoError(t, err)
	assert.False(t, eval.IsCorrect)
	assert.Equal(t, enrichment.EvaluationTypo, eval.Type)
	assert.NotEmpty(t, eval.Feedback)
}

func TestServerErrorIsTransient(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	enricher := newTestEnricher(t, server.URL+"/v1")

	_, err := enricher.GenerateWordData(context.Background(), "cat")
	assert.ErrorIs(t, err, enrichment.ErrTransientFailure)
}

func TestClientErrorIsPermanent(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer server.Close()

	enricher := newTestEnricher(t, server.URL+"/v1")

	_, err := enricher.GenerateWordData(context.Background(), "cat")
	assert.ErrorIs(t, err, enrichment.ErrGenerationFailed)
}

func TestMalformedContentIsInvalidResponse(t *testing.T) {
	t.Parallel()

	server := completionServer(t, "I refuse to answer in JSON.", nil)
	defer server.Close()

	enricher := newTestEnricher(t, server.URL+"/v1")

	_, err := enricher.GenerateWordData(context.Background(), "cat")
	assert.ErrorIs(t, err, enrichment.ErrInvalidResponse)
}

func TestNewEnricherValidation(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	prompts := testPrompts(t)

	_, err := NewEnricher(nil, Config{BaseURL: "u", ModelName: "m"}, prompts)
	assert.Error(t, err)

	_, err = NewEnricher(logger, Config{ModelName: "m"}, prompts)
	assert.ErrorIs(t, err, enrichment.ErrInvalidConfig)

	// An empty API key is tolerated for local servers.
	enricher, err := NewEnricher(logger, Config{BaseURL: "http://localhost:8000/v1", ModelName: "m"}, prompts)
	require.NoError(t, err)
	assert.Equal(t, "dummy-key", enricher.config.APIKey)
}

func TestConfigFromSettingsDefaults(t *testing.T) {
	t.Parallel()

	cfg := ConfigFromSettings(domain.Settings{})
	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, DefaultModel, cfg.ModelName)
}
