package config

import (
	"log/slog"
	"strings"
	"time"

	"github.com/jackzampolin/promptdice/internal/dice"
)

// Config holds promptdice configuration.
// Stored at: {home}/config.yaml
type Config struct {
	Server    ServerCfg    `mapstructure:"server" yaml:"server"`
	Storage   StorageCfg   `mapstructure:"storage" yaml:"storage"`
	Clipboard ClipboardCfg `mapstructure:"clipboard" yaml:"clipboard"`
	Log       LogCfg       `mapstructure:"log" yaml:"log"`
	// Template is the prompt template rolled by the session.
	Template string `mapstructure:"template" yaml:"template"`
}

// ServerCfg configures the HTTP listener.
type ServerCfg struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port string `mapstructure:"port" yaml:"port"`
}

// StorageCfg selects where session state is persisted.
type StorageCfg struct {
	Driver      string `mapstructure:"driver" yaml:"driver"`             // "file", "sqlite", "redis", "memory"
	Path        string `mapstructure:"path" yaml:"path"`                 // Empty means inside the home directory
	RedisAddr   string `mapstructure:"redis_addr" yaml:"redis_addr"`     // Supports ${ENV_VAR} syntax
	RedisPrefix string `mapstructure:"redis_prefix" yaml:"redis_prefix"` // Key namespace
}

// ClipboardCfg controls server-side clipboard writes.
type ClipboardCfg struct {
	// Enabled writes copies to the host clipboard. Leave off when the
	// browser and server run on different machines.
	Enabled      bool          `mapstructure:"enabled" yaml:"enabled"`
	CopiedWindow time.Duration `mapstructure:"copied_window" yaml:"copied_window"`
}

// LogCfg configures the slog handler.
type LogCfg struct {
	Level  string `mapstructure:"level" yaml:"level"`   // debug, info, warn, error
	Format string `mapstructure:"format" yaml:"format"` // text or json
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerCfg{
			Host: "127.0.0.1",
			Port: "8080",
		},
		Storage: StorageCfg{
			Driver:      "file",
			RedisAddr:   "${REDIS_ADDR}",
			RedisPrefix: "promptdice:",
		},
		Clipboard: ClipboardCfg{
			Enabled:      false,
			CopiedWindow: 2 * time.Second,
		},
		Log: LogCfg{
			Level:  "info",
			Format: "text",
		},
		Template: dice.DefaultTemplate,
	}
}

// SlogLevel maps the configured level name to a slog.Level.
// Unknown names fall back to info.
func (c LogCfg) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.Level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
