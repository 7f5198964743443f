package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server      ServerConfig      `mapstructure:"server" validate:"required"`
	Database    DatabaseConfig    `mapstructure:"database" validate:"required"`
	Offline     OfflineConfig     `mapstructure:"offline" validate:"required"`
	Submission  SubmissionConfig  `mapstructure:"submission" validate:"required"`
	ReviewStore ReviewStoreConfig `mapstructure:"review_store" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel        string        `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"min=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// OfflineConfig configures the durable offline review queue.
type OfflineConfig struct {
	// Path is the sqlite file backing the pending-review slot.
	Path string `mapstructure:"path" validate:"required"`

	// MaxBytes caps the serialized queue size; 0 disables the cap.
	MaxBytes int64 `mapstructure:"max_bytes" validate:"min=0"`
}

// SubmissionConfig holds the review delivery policy. These are policy
// constants, not architectural ones, hence configurable.
type SubmissionConfig struct {
	ChunkSize     int           `mapstructure:"chunk_size" validate:"required,gt=0"`
	ChunkTimeout  time.Duration `mapstructure:"chunk_timeout" validate:"required,gt=0"`
	FlushInterval time.Duration `mapstructure:"flush_interval" validate:"required,gt=0"`
}

// ReviewStoreConfig locates the external review store collaborator.
type ReviewStoreConfig struct {
	BaseURL string        `mapstructure:"base_url" validate:"required,url"`
	Timeout time.Duration `mapstructure:"timeout" validate:"min=0"`
}
