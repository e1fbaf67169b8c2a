package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fwojciec/jdoc/config"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("JDOC_API_KEY", "")

	cfg, err := config.Load(config.LoadOptions{Root: t.TempDir()})

	require.NoError(t, err)
	want := config.Default()
	assert.Equal(t, want.Provider, cfg.Provider)
	assert.Equal(t, want.Concurrency, cfg.Concurrency)
	assert.Equal(t, 60*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "backup_before_comments", cfg.BackupDir)
	assert.True(t, cfg.Backup)
	assert.Equal(t, "English", cfg.Language)
}

func TestLoad_ProjectFile(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	root := t.TempDir()
	content := `provider = "ollama"
model = "codellama"
language = "Korean"
concurrency = 8
request_timeout = "30s"
exclude = ["generated/", "*Test.java"]
skip_accessors = true
`
	require.NoError(t, os.WriteFile(filepath.Join(root, config.FileName), []byte(content), 0o644))

	cfg, err := config.Load(config.LoadOptions{Root: root})

	require.NoError(t, err)
	assert.Equal(t, config.ProviderOllama, cfg.Provider)
	assert.Equal(t, "codellama", cfg.Model)
	assert.Equal(t, "Korean", cfg.Language)
	assert.Equal(t, 8, cfg.Concurrency)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, []string{"generated/", "*Test.java"}, cfg.Exclude)
	assert.True(t, cfg.SkipAccessors)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, config.FileName), []byte("concurrency = 8\n"), 0o644))
	t.Setenv("JDOC_CONCURRENCY", "2")
	t.Setenv("GEMINI_API_KEY", "from-env")

	cfg, err := config.Load(config.LoadOptions{Root: root})

	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Concurrency)
	assert.Equal(t, "from-env", cfg.APIKey)
}

func TestLoad_DotEnv(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	require.NoError(t, os.Unsetenv("GEMINI_API_KEY"))

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".env"), []byte("GEMINI_API_KEY=dotenv-key\n"), 0o644))

	cfg, err := config.Load(config.LoadOptions{Root: root})

	require.NoError(t, err)
	assert.Equal(t, "dotenv-key", cfg.APIKey)
}

func TestLoad_ChangedFlagsWin(t *testing.T) {
	t.Setenv("JDOC_CONCURRENCY", "2")

	flags := pflag.NewFlagSet("jdoc", pflag.ContinueOnError)
	flags.Int("concurrency", 4, "")
	flags.Bool("dry-run", false, "")
	flags.String("language", "English", "")
	flags.String("unrelated", "", "")
	require.NoError(t, flags.Parse([]string{"--concurrency=6", "--dry-run"}))

	cfg, err := config.Load(config.LoadOptions{Root: t.TempDir(), Flags: flags})

	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Concurrency)
	assert.True(t, cfg.DryRun)
	assert.Equal(t, "English", cfg.Language)
}

func TestLoad_ExplicitFileMustExist(t *testing.T) {
	_, err := config.Load(config.LoadOptions{File: filepath.Join(t.TempDir(), "missing.toml")})

	require.Error(t, err)
}

func TestLoad_MalformedFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, config.FileName), []byte("concurrency = = 8\n"), 0o644))

	_, err := config.Load(config.LoadOptions{Root: root})

	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := func() config.Config {
		c := config.Default()
		c.APIKey = "key"
		return c
	}

	t.Run("accepts defaults with a key", func(t *testing.T) {
		t.Parallel()

		c := valid()
		assert.NoError(t, c.Validate())
	})

	t.Run("ollama needs no key", func(t *testing.T) {
		t.Parallel()

		c := valid()
		c.Provider = config.ProviderOllama
		c.APIKey = ""
		assert.NoError(t, c.Validate())
	})

	cases := []struct {
		name   string
		mutate func(*config.Config)
		field  string
	}{
		{"missing gemini key", func(c *config.Config) { c.APIKey = "" }, "api_key"},
		{"unknown provider", func(c *config.Config) { c.Provider = "openai" }, "provider"},
		{"zero concurrency", func(c *config.Config) { c.Concurrency = 0 }, "concurrency"},
		{"zero ceiling", func(c *config.Config) { c.MaxInFlight = 0 }, "max_in_flight"},
		{"zero tokens", func(c *config.Config) { c.MaxTokens = 0 }, "max_tokens"},
		{"zero attempts", func(c *config.Config) { c.MaxAttempts = 0 }, "max_attempts"},
		{"zero timeout", func(c *config.Config) { c.RequestTimeout = 0 }, "request_timeout"},
		{"inverted delays", func(c *config.Config) { c.BaseDelay, c.MaxDelay = time.Minute, time.Second }, "base_delay"},
		{"empty language", func(c *config.Config) { c.Language = " " }, "language"},
		{"backup without dir", func(c *config.Config) { c.BackupDir = "" }, "backup_dir"},
		{"unknown theme", func(c *config.Config) { c.Theme = "neon" }, "theme"},
		{"bad log level", func(c *config.Config) { c.LogLevel = "loud" }, "log_level"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			c := valid()
			tc.mutate(&c)
			err := c.Validate()

			require.Error(t, err)
			var verr *config.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
		})
	}

	t.Run("reports every problem", func(t *testing.T) {
		t.Parallel()

		c := valid()
		c.Concurrency = 0
		c.MaxTokens = 0
		err := c.Validate()

		assert.ErrorContains(t, err, "concurrency")
		assert.ErrorContains(t, err, "max_tokens")
	})

	t.Run("no backup dir needed without backups", func(t *testing.T) {
		t.Parallel()

		c := valid()
		c.Backup = false
		c.BackupDir = ""
		assert.NoError(t, c.Validate())
	})
}
