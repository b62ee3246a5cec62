package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. WONDERFULGO_ASSISTANT_BASE_URL.
const EnvPrefix = "WONDERFULGO"

// Load loads and validates configuration from:
// 1. Default values
// 2. the YAML file at path (optional; a missing file is not an error)
// 3. WONDERFULGO_* environment variables
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if err := readConfig(v, path); err != nil {
		return nil, fmt.Errorf("%w: failed to load config file: %v", ErrConfiguration, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrConfiguration, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	return validator.New(validator.WithRequiredStructEnabled()).Struct(c)
}

func readConfig(v *viper.Viper, path string) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.json", DefaultLogJSON)

	v.SetDefault("database.path", DefaultDBPath)

	v.SetDefault("assistant.base_url", DefaultAssistantBaseURL)
	v.SetDefault("assistant.timeout", DefaultAssistantTimeout)
	v.SetDefault("assistant.throttled_status", DefaultAssistantThrottledStatus)
	v.SetDefault("assistant.shared_guard", false)

	// Empty strings keep the built-in texts but make the keys visible to env overrides.
	for _, key := range []string{"throttled", "service_status", "no_plan", "area_required", "empty_message", "plan_created", "invalid_reply"} {
		v.SetDefault("messages."+key, "")
	}

	v.SetDefault("profile.known_breeds", DefaultKnownBreeds)

	v.SetDefault("scheduler.tasks", map[string]any{
		MaintenanceTask: map[string]any{
			"enabled":  true,
			"schedule": DefaultMaintenanceSchedule,
		},
	})
}
