// Package config loads hangupsd's runtime configuration from flags,
// environment variables, and an optional config file, via viper.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds every runtime-tunable knob of the channel client. Fields
// have defaults applied in Load so a bare environment still runs.
type Config struct {
	// CookiePath is the path to the JSON cookie jar file used to
	// authenticate requests.
	CookiePath string `mapstructure:"cookie_path"`
	// Origin is the value sent as X-Origin and folded into the
	// SAPISIDHASH computation. It must match the origin the cookies were
	// issued for.
	Origin string `mapstructure:"origin"`
	// QueueCapacity bounds the delivery bridge's internal queue; once
	// full, the oldest queued payload is dropped to make room for new
	// ones.
	QueueCapacity int `mapstructure:"queue_capacity"`
	// MinBackoff and MaxBackoff bound the exponential backoff applied
	// between reconnect attempts after the long-poll loop ends.
	MinBackoff time.Duration `mapstructure:"min_backoff"`
	MaxBackoff time.Duration `mapstructure:"max_backoff"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `mapstructure:"log_level"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("origin", "https://hangouts.google.com")
	v.SetDefault("queue_capacity", 256)
	v.SetDefault("min_backoff", 500*time.Millisecond)
	v.SetDefault("max_backoff", 30*time.Second)
	v.SetDefault("log_level", "info")
}

// Load builds a Config from v, which the caller has already bound to
// flags and an environment prefix.
func Load(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if cfg.CookiePath == "" {
		return nil, fmt.Errorf("cookie_path is required")
	}

	return &cfg, nil
}
