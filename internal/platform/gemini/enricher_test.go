package gemini

import (
	"context"
	"io"
	"log/slog"
	"testing"

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

func TestNewEnricherValidation(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	prompts := testPrompts(t)
	ctx := context.Background()

	_, err := NewEnricher(ctx, nil, Config{APIKey: "k", ModelName: "m"}, prompts)
	assert.Error(t, err)

	_, err = NewEnricher(ctx, logger, Config{ModelName: "m"}, prompts)
	assert.ErrorIs(t, err, enrichment.ErrInvalidConfig)

	_, err = NewEnricher(ctx, logger, Config{APIKey: "k"}, prompts)
	assert.ErrorIs(t, err, enrichment.ErrInvalidConfig)

	_, err = NewEnricher(ctx, logger, Config{APIKey: "k", ModelName: "m"}, nil)
	assert.Error(t, err)
}

func TestConfigFromSettings(t *testing.T) {
	t.Parallel()

	settings := domain.DefaultSettings()
	settings.APIKey = "secret"
	settings.ModelName = "gemini-2.0-flash"

	cfg := ConfigFromSettings(settings)
	assert.Equal(t, "secret", cfg.APIKey)
	assert.Equal(t, "gemini-2.0-flash", cfg.ModelName)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 2, cfg.RetryDelaySeconds)
}

func TestParseJSON(t *testing.T) {
	t.Parallel()

	var payload wordDataPayload
	raw := "```json\n{\"original\":\"cat\",\"sentence\":\"The cat sat.\",\"cloze\":\"The __________ sat.\"}\n```"
	require.NoError(t, parseJSON(raw, &payload))
	assert.Equal(t, "cat", payload.Original)
	assert.Equal(t, "The cat sat.", payload.Sentence)

	// Plain JSON without fences
	payload = wordDataPayload{}
	require.NoError(t, parseJSON(`{"original":"dog"}`, &payload))
	assert.Equal(t, "dog", payload.Original)

	// Garbage is a permanent invalid-response error
	err := parseJSON("not json at all", &payload)
	assert.ErrorIs(t, err, enrichment.ErrInvalidResponse)
}
