// Package config loads the extractor configuration from a config file,
// EXTRACTOR_* environment variables and defaults.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"product-extractor/internal/types"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. EXTRACTOR_REGISTRY_URL
const EnvPrefix = "EXTRACTOR"

// Load loads configuration from path, or from an optional config.yaml in the
// usual locations when path is empty
func Load(path string) (*types.Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/product-extractor/")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config types.Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := Validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults mirrors types.DefaultConfig. Every key needs a default so
// AutomaticEnv can override it.
func setDefaults(v *viper.Viper) {
	d := types.DefaultConfig()

	v.SetDefault("request_delay", d.RequestDelay)
	v.SetDefault("max_retries", d.MaxRetries)
	v.SetDefault("timeout", d.Timeout)
	v.SetDefault("max_concurrent_requests", d.MaxConcurrentRequests)
	v.SetDefault("use_headless_browser", d.UseHeadlessBrowser)
	v.SetDefault("user_agent", d.UserAgent)
	v.SetDefault("item_timeout", d.ItemTimeout)
	v.SetDefault("log_level", d.LogLevel)

	v.SetDefault("registry.url", "")
	v.SetDefault("registry.timeout", d.Registry.Timeout)
	v.SetDefault("registry.refresh_interval", d.Registry.RefreshInterval)
	v.SetDefault("registry.reports_per_minute", d.Registry.ReportsPerMinute)

	v.SetDefault("import.url", "")
	v.SetDefault("import.api_key", "")
	v.SetDefault("import.timeout", d.Import.Timeout)

	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.environment", d.Server.Environment)
	v.SetDefault("server.allowed_origins", d.Server.AllowedOrigins)
}

// Validate rejects negative limits and malformed service URLs
func Validate(config *types.Config) error {
	if config.MaxRetries < 0 {
		return fmt.Errorf("max_retries must not be negative, got: %d", config.MaxRetries)
	}
	if config.MaxConcurrentRequests < 0 {
		return fmt.Errorf("max_concurrent_requests must not be negative, got: %d", config.MaxConcurrentRequests)
	}
	if config.RequestDelay < 0 || config.Timeout < 0 || config.ItemTimeout < 0 {
		return errors.New("durations must not be negative")
	}
	if config.Registry.ReportsPerMinute < 0 {
		return fmt.Errorf("registry.reports_per_minute must not be negative, got: %d", config.Registry.ReportsPerMinute)
	}
	if err := validateURL("registry.url", config.Registry.URL); err != nil {
		return err
	}
	if err := validateURL("import.url", config.Import.URL); err != nil {
		return err
	}
	if config.Import.URL != "" && config.Import.APIKey == "" {
		return fmt.Errorf("import API key is required when import.url is set (set %s_IMPORT_API_KEY)", EnvPrefix)
	}
	return nil
}

func validateURL(key, raw string) error {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%s must be an absolute http(s) URL, got: %q", key, raw)
	}
	return nil
}
