package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"     validate:"required"`
	Storage    StorageConfig    `mapstructure:"storage"    validate:"required"`
	Enrichment EnrichmentConfig `mapstructure:"enrichment" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`

	// ShutdownTimeoutSeconds bounds graceful shutdown, including the final
	// snapshot flush.
	ShutdownTimeoutSeconds int `mapstructure:"shutdown_timeout_seconds" validate:"gte=1"`
}

// StorageConfig contains snapshot persistence settings.
type StorageConfig struct {
	// Path is the SQLite database file holding the persisted state document.
	Path string `mapstructure:"path" validate:"required"`

	// FlushDebounceMillis batches rapid store mutations into one snapshot
	// write.
	FlushDebounceMillis int `mapstructure:"flush_debounce_millis" validate:"gte=0"`
}

// EnrichmentConfig contains language-model integration settings that are not
// part of the user-editable runtime settings.
type EnrichmentConfig struct {
	MaxRetries        int `mapstructure:"max_retries"         validate:"gte=0"`
	RetryDelaySeconds int `mapstructure:"retry_delay_seconds" validate:"gte=1"`
}
