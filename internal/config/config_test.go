package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestLoadAppliesDefaults(t *testing.T) {
	v := viper.New()
	v.Set("cookie_path", "/tmp/cookies.json")

	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Origin != "https://hangouts.google.com" {
		t.Fatalf("Origin = %q", cfg.Origin)
	}
	if cfg.QueueCapacity != 256 {
		t.Fatalf("QueueCapacity = %d", cfg.QueueCapacity)
	}
	if cfg.MaxBackoff != 30*time.Second {
		t.Fatalf("MaxBackoff = %v", cfg.MaxBackoff)
	}
}

func TestLoadRequiresCookiePath(t *testing.T) {
	v := viper.New()
	if _, err := Load(v); err == nil {
		t.Fatalf("expected error when cookie_path is unset")
	}
}
