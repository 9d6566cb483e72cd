package domain

import "errors"

// Provider identifies which enrichment backend to use.
type Provider string

// Supported enrichment providers
const (
	ProviderGemini Provider = "gemini"
	ProviderOpenAI Provider = "openai"
)

// ErrInvalidConcurrencyLimit is returned when the concurrency limit is below 1.
var ErrInvalidConcurrencyLimit = errors.New("concurrency limit must be at least 1")

// PromptTemplates holds user-supplied overrides for the three enrichment
// prompts. Empty fields fall back to the built-in defaults.
type PromptTemplates struct {
	GenerateData     string `json:"generate_data,omitempty"`
	GenerateQuestion string `json:"generate_question,omitempty"`
	EvaluateAnswer   string `json:"evaluate_answer,omitempty"`
}

// Settings is the process-wide user configuration. It is read when the
// enrichment client is constructed and by the queue controller for its
// concurrency limit.
type Settings struct {
	Provider         Provider         `json:"provider"`
	APIKey           string           `json:"api_key"`
	BaseURL          string           `json:"base_url,omitempty"`
	ModelName        string           `json:"model_name,omitempty"`
	ConcurrencyLimit int              `json:"concurrency_limit"`
	UseCustomPrompts bool             `json:"use_custom_prompts,omitempty"`
	Prompts          *PromptTemplates `json:"prompts,omitempty"`
	Theme            string           `json:"theme,omitempty"`
}

// DefaultSettings returns the settings a fresh store starts with.
func DefaultSettings() Settings {
	return Settings{
		Provider:         ProviderGemini,
		APIKey:           "",
		BaseURL:          "http://localhost:8000/v1",
		ModelName:        "gemini-2.0-flash",
		ConcurrencyLimit: 1,
		Theme:            "dark",
	}
}

// SettingsPatch is a partial settings update. Nil fields are left unchanged
// by the store's shallow merge.
type SettingsPatch struct {
	Provider         *Provider        `json:"provider,omitempty"`
	APIKey           *string          `json:"api_key,omitempty"`
	BaseURL          *string          `json:"base_url,omitempty"`
	ModelName        *string          `json:"model_name,omitempty"`
	ConcurrencyLimit *int             `json:"concurrency_limit,omitempty"`
	UseCustomPrompts *bool            `json:"use_custom_prompts,omitempty"`
	Prompts          *PromptTemplates `json:"prompts,omitempty"`
	Theme            *string          `json:"theme,omitempty"`
}

// Apply merges the patch into s, leaving nil fields untouched.
// A concurrency limit below 1 is rejected.
func (s *Settings) Apply(patch SettingsPatch) error {
	if patch.ConcurrencyLimit != nil && *patch.ConcurrencyLimit < 1 {
		return ErrInvalidConcurrencyLimit
	}

	if patch.Provider != nil {
		s.Provider = *patch.Provider
	}
	if patch.APIKey != nil {
		s.APIKey = *patch.APIKey
	}
	if patch.BaseURL != nil {
		s.BaseURL = *patch.BaseURL
	}
	if patch.ModelName != nil {
		s.ModelName = *patch.ModelName
	}
	if patch.ConcurrencyLimit != nil {
		s.ConcurrencyLimit = *patch.ConcurrencyLimit
	}
	if patch.UseCustomPrompts != nil {
		s.UseCustomPrompts = *patch.UseCustomPrompts
	}
	if patch.Prompts != nil {
		s.Prompts = patch.Prompts
	}
	if patch.Theme != nil {
		s.Theme = *patch.Theme
	}

	return nil
}
