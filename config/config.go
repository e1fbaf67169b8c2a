// Package config loads jdoc settings from defaults, a TOML project file,
// the environment and command-line flags using spf13/viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// FileName is the project configuration file looked up in the project root.
const FileName = ".jdoc.toml"

// EnvPrefix prefixes environment variables, e.g. JDOC_CONCURRENCY.
const EnvPrefix = "JDOC"

// Providers.
const (
	ProviderGemini = "gemini"
	ProviderOllama = "ollama"
)

// Config holds all settings for a run.
type Config struct {
	Provider string `mapstructure:"provider"`
	Model    string `mapstructure:"model"`
	APIKey   string `mapstructure:"api_key"`
	Thinking string `mapstructure:"thinking"`
	Language string `mapstructure:"language"`

	Concurrency    int           `mapstructure:"concurrency"`
	MaxInFlight    int           `mapstructure:"max_in_flight"`
	MaxTokens      int           `mapstructure:"max_tokens"`
	MaxAttempts    int           `mapstructure:"max_attempts"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	BaseDelay      time.Duration `mapstructure:"base_delay"`
	MaxDelay       time.Duration `mapstructure:"max_delay"`

	DryRun        bool     `mapstructure:"dry_run"`
	Backup        bool     `mapstructure:"backup"`
	BackupDir     string   `mapstructure:"backup_dir"`
	SkipAccessors bool     `mapstructure:"skip_accessors"`
	Exclude       []string `mapstructure:"exclude"`

	Cache     bool   `mapstructure:"cache"`
	CacheDir  string `mapstructure:"cache_dir"`
	CacheSize int    `mapstructure:"cache_size"`

	Theme    string `mapstructure:"theme"`
	Progress bool   `mapstructure:"progress"`
	LogLevel string `mapstructure:"log_level"`
	LogFile  string `mapstructure:"log_file"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Provider:       ProviderGemini,
		Language:       "English",
		Concurrency:    4,
		MaxInFlight:    4,
		MaxTokens:      1024,
		MaxAttempts:    5,
		RequestTimeout: 60 * time.Second,
		BaseDelay:      2 * time.Second,
		MaxDelay:       60 * time.Second,
		Backup:         true,
		BackupDir:      "backup_before_comments",
		Cache:          true,
		CacheSize:      1024,
		Theme:          "dark",
		Progress:       true,
		LogLevel:       "warn",
	}
}

// LoadOptions controls where configuration is read from.
type LoadOptions struct {
	// Root is the project directory holding .jdoc.toml and .env.
	Root string
	// File overrides the project configuration file.
	File string
	// Flags are bound by name; dashes map to underscores.
	Flags *pflag.FlagSet
}

// Load merges defaults, the configuration file, JDOC_* environment
// variables and changed flags, in increasing order of precedence. A .env
// file in Root is loaded into the environment first; variables already set
// win over it.
func Load(opts LoadOptions) (*Config, error) {
	if opts.Root != "" {
		_ = godotenv.Load(filepath.Join(opts.Root, ".env"))
	}

	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("api_key", EnvPrefix+"_API_KEY", "GEMINI_API_KEY"); err != nil {
		return nil, err
	}

	path := opts.File
	if path == "" && opts.Root != "" {
		candidate := filepath.Join(opts.Root, FileName)
		if _, err := os.Stat(candidate); err == nil {
			path = candidate
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if opts.Flags != nil {
		var bindErr error
		opts.Flags.VisitAll(func(f *pflag.Flag) {
			key := strings.ReplaceAll(f.Name, "-", "_")
			if !knownKeys[key] {
				return
			}
			if err := v.BindPFlag(key, f); err != nil && bindErr == nil {
				bindErr = err
			}
		})
		if bindErr != nil {
			return nil, bindErr
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("provider", d.Provider)
	v.SetDefault("model", d.Model)
	v.SetDefault("api_key", d.APIKey)
	v.SetDefault("thinking", d.Thinking)
	v.SetDefault("language", d.Language)
	v.SetDefault("concurrency", d.Concurrency)
	v.SetDefault("max_in_flight", d.MaxInFlight)
	v.SetDefault("max_tokens", d.MaxTokens)
	v.SetDefault("max_attempts", d.MaxAttempts)
	v.SetDefault("request_timeout", d.RequestTimeout)
	v.SetDefault("base_delay", d.BaseDelay)
	v.SetDefault("max_delay", d.MaxDelay)
	v.SetDefault("dry_run", d.DryRun)
	v.SetDefault("backup", d.Backup)
	v.SetDefault("backup_dir", d.BackupDir)
	v.SetDefault("skip_accessors", d.SkipAccessors)
	v.SetDefault("exclude", d.Exclude)
	v.SetDefault("cache", d.Cache)
	v.SetDefault("cache_dir", d.CacheDir)
	v.SetDefault("cache_size", d.CacheSize)
	v.SetDefault("theme", d.Theme)
	v.SetDefault("progress", d.Progress)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_file", d.LogFile)
}

var knownKeys = map[string]bool{
	"provider": true, "model": true, "api_key": true, "thinking": true,
	"language": true, "concurrency": true, "max_in_flight": true,
	"max_tokens": true, "max_attempts": true, "request_timeout": true,
	"base_delay": true, "max_delay": true, "dry_run": true, "backup": true,
	"backup_dir": true, "skip_accessors": true, "exclude": true,
	"cache": true, "cache_dir": true, "cache_size": true, "theme": true,
	"progress": true, "log_level": true, "log_file": true,
}

// ValidationError reports an invalid setting.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// Validate rejects settings a run cannot use. All problems are reported.
func (c *Config) Validate() error {
	var errs []error
	add := func(field, msg string) {
		errs = append(errs, &ValidationError{Field: field, Message: msg})
	}

	switch c.Provider {
	case ProviderGemini:
		if c.APIKey == "" {
			add("api_key", "required for the gemini provider (set GEMINI_API_KEY)")
		}
	case ProviderOllama:
	default:
		add("provider", fmt.Sprintf("unknown provider %q", c.Provider))
	}
	if strings.TrimSpace(c.Language) == "" {
		add("language", "must not be empty")
	}
	if c.Concurrency < 1 {
		add("concurrency", "must be at least 1")
	}
	if c.MaxInFlight < 1 {
		add("max_in_flight", "must be at least 1")
	}
	if c.MaxTokens < 1 {
		add("max_tokens", "must be positive")
	}
	if c.MaxAttempts < 1 {
		add("max_attempts", "must be at least 1")
	}
	if c.RequestTimeout <= 0 {
		add("request_timeout", "must be positive")
	}
	if c.BaseDelay < 0 || c.MaxDelay < c.BaseDelay {
		add("base_delay", "must be non-negative and not exceed max_delay")
	}
	if c.Backup && c.BackupDir == "" {
		add("backup_dir", "must be set when backups are enabled")
	}
	if c.Theme != "dark" && c.Theme != "light" {
		add("theme", fmt.Sprintf("unknown theme %q", c.Theme))
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		add("log_level", err.Error())
	}
	return errors.Join(errs...)
}
