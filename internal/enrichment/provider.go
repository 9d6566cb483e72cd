package enrichment

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/lexiflow/lexiflow/internal/domain"
)

// SettingsSource provides the current user settings.
type SettingsSource interface {
	Settings() domain.Settings
}

// Factory builds a concrete enricher for the given settings. The cmd layer
// supplies one that switches on the provider field.
type Factory func(ctx context.Context, settings domain.Settings) (Enricher, error)

// Dynamic is an Enricher that follows the user settings: each call uses a
// client built for the provider, key and model currently configured. Clients
// are cached and rebuilt only when a relevant setting changes, so switching
// providers takes effect without a restart.
type Dynamic struct {
	source  SettingsSource
	factory Factory
	logger  *slog.Logger

	mu     sync.Mutex
	cached Enricher
	key    string
}

// NewDynamic creates a settings-following enricher.
func NewDynamic(source SettingsSource, factory Factory, logger *slog.Logger) (*Dynamic, error) {
	if source == nil {
		return nil, ErrNilStore
	}
	if factory == nil {
		return nil, ErrNilEnricher
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	return &Dynamic{
		source:  source,
		factory: factory,
		logger:  logger.With("component", "enricher_provider"),
	}, nil
}

// GenerateWordData implements Enricher.
func (d *Dynamic) GenerateWordData(ctx context.Context, word string) (*WordData, error) {
	enricher, err := d.enricher(ctx)
	if err != nil {
		return nil, err
	}
	return enricher.GenerateWordData(ctx, word)
}

// GenerateQuestion implements Enricher.
func (d *Dynamic) GenerateQuestion(ctx context.Context, word string) (*QuestionData, error) {
	enricher, err := d.enricher(ctx)
	if err != nil {
		return nil, err
	}
	return enricher.GenerateQuestion(ctx, word)
}

// EvaluateAnswer implements Enricher.
func (d *Dynamic) EvaluateAnswer(ctx context.Context, targetWord, userInput, sentence string) (*Evaluation, error) {
	enricher, err := d.enricher(ctx)
	if err != nil {
		return nil, err
	}
	return enricher.EvaluateAnswer(ctx, targetWord, userInput, sentence)
}

// enricher returns the cached client, rebuilding it when the settings that
// shape a client have changed.
func (d *Dynamic) enricher(ctx context.Context) (Enricher, error) {
	settings := d.source.Settings()
	key := clientKey(settings)

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cached != nil && d.key == key {
		return d.cached, nil
	}

	built, err := d.factory(ctx, settings)
	if err != nil {
		return nil, err
	}

	d.logger.Info("enrichment client configured",
		"provider", settings.Provider,
		"model", settings.ModelName)

	d.cached = built
	d.key = key
	return built, nil
}

// clientKey captures every setting a client build depends on.
func clientKey(s domain.Settings) string {
	prompts := ""
	if s.UseCustomPrompts && s.Prompts != nil {
		prompts = s.Prompts.GenerateData + "\x00" + s.Prompts.GenerateQuestion + "\x00" + s.Prompts.EvaluateAnswer
	}
	return fmt.Sprintf("%s|%s|%s|%s|%t|%s",
		s.Provider, s.APIKey, s.BaseURL, s.ModelName, s.UseCustomPrompts, prompts)
}
