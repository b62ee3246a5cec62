// Package config manages application configuration from environment variables,
// config files, and default values.
package config

import (
	"errors"
	"time"
)

// ErrConfiguration wraps every loading or validation failure.
var ErrConfiguration = errors.New("configuration error")

// Config is the complete application configuration.
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Assistant AssistantConfig `mapstructure:"assistant"`
	Messages  MessagesConfig  `mapstructure:"messages"`
	Profile   ProfileConfig   `mapstructure:"profile"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// DatabaseConfig locates the SQLite file holding all persisted state.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// AssistantConfig configures the remote plan/chat service.
type AssistantConfig struct {
	BaseURL         string        `mapstructure:"base_url"         validate:"required,url"`
	Timeout         time.Duration `mapstructure:"timeout"          validate:"min=1s,max=10m"`
	ThrottledStatus int           `mapstructure:"throttled_status" validate:"gte=400,lte=599"`
	SharedGuard     bool          `mapstructure:"shared_guard"`
}

// MessagesConfig overrides user-visible strings. Empty values keep the
// built-in text.
type MessagesConfig struct {
	Throttled     string `mapstructure:"throttled"`
	ServiceStatus string `mapstructure:"service_status"`
	NoPlan        string `mapstructure:"no_plan"`
	AreaRequired  string `mapstructure:"area_required"`
	EmptyMessage  string `mapstructure:"empty_message"`
	PlanCreated   string `mapstructure:"plan_created"`
	InvalidReply  string `mapstructure:"invalid_reply"`
}

// ProfileConfig holds profile form options.
type ProfileConfig struct {
	// KnownBreeds are the selectable breeds; a stored breed outside this
	// list is treated as a free-text override.
	KnownBreeds []string `mapstructure:"known_breeds" validate:"dive,required"`
}

// SchedulerConfig maps task names to their schedule.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks" validate:"dive"`
}

// TaskConfig configures one scheduled task.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule" validate:"required_if=Enabled true"`
}
