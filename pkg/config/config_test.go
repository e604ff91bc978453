package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/ideascope/pkg/domain"
)

func noOverrides() Overrides { return Overrides{MinComments: -1} }

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "test-config.yml")
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o644))
	return configPath
}

func TestLoad(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		configPath := writeConfig(t, `
communities: [SaaS, Entrepreneur]
source:
  post_limit: 25
  rate_limit_backoff: 5s
filter:
  min_comments: 0
  pain_points: ["tired of", "wish there was"]
  required: ["invoice"]
scorer:
  min_confidence: 0.5
categorizer:
  enabled: false
  buckets:
    Pet Services: ["dog walking", grooming]
generation:
  provider: groq
  api_key: secret-key
  model: llama-3.3-70b-versatile
  max_in_flight: 3
export:
  formats: [json, sqlite]
  output_dir: /tmp/ideas
server:
  listen: ":9090"
  timeout: 45s
`)
		cfg, err := Load(configPath, noOverrides())
		require.NoError(t, err)
		require.NotNil(t, cfg)

		assert.Equal(t, []string{"SaaS", "Entrepreneur"}, cfg.Communities)
		assert.Equal(t, 25, cfg.Source.PostLimit)
		assert.Equal(t, 5*time.Second, cfg.Source.RateLimitBackoff)
		assert.Equal(t, 0, cfg.Filter.MinComments)
		assert.Equal(t, []string{"tired of", "wish there was"}, cfg.Filter.PainPoints)
		assert.Equal(t, []string{"invoice"}, cfg.Filter.Required)
		assert.Equal(t, DefaultExclusions, cfg.Filter.Exclusions)
		assert.InDelta(t, 0.5, cfg.Scorer.MinConfidence, 0.0001)
		assert.False(t, cfg.Categorizer.Enabled)
		assert.Equal(t, map[string][]string{"Pet Services": {"dog walking", "grooming"}}, cfg.Categorizer.Buckets)
		assert.Equal(t, "groq", cfg.Generation.Provider)
		assert.Equal(t, "secret-key", cfg.Generation.APIKey)
		assert.Equal(t, 3, cfg.Generation.MaxInFlight)
		assert.Equal(t, []string{"json", "sqlite"}, cfg.Export.Formats)
		assert.Equal(t, "/tmp/ideas", cfg.Export.OutputDir)
		assert.Equal(t, ":9090", cfg.Server.Listen)
		assert.Equal(t, 45*time.Second, cfg.Server.Timeout)
		assert.Equal(t, []string{"secret-key"}, cfg.Secrets())
	})

	t.Run("defaults", func(t *testing.T) {
		configPath := writeConfig(t, `
communities: [SideProject]
generation:
  provider: ollama
`)
		cfg, err := Load(configPath, noOverrides())
		require.NoError(t, err)

		assert.Equal(t, 50, cfg.Source.PostLimit)
		assert.Equal(t, "https://www.reddit.com", cfg.Source.BaseURL)
		assert.Equal(t, 60*time.Second, cfg.Source.RateLimitBackoff)
		assert.Equal(t, 5, cfg.Filter.MinComments)
		assert.Equal(t, DefaultPainPoints, cfg.Filter.PainPoints)
		assert.Equal(t, 4, cfg.Scorer.SaturateAt)
		assert.Equal(t, 50, cfg.Scorer.HighEngagement)
		assert.InDelta(t, 0.2, cfg.Scorer.MaxEngagementBonus, 0.0001)
		assert.InDelta(t, 0.3, cfg.Scorer.MinConfidence, 0.0001)
		assert.True(t, cfg.Categorizer.Enabled)
		assert.Empty(t, cfg.Categorizer.Buckets)
		assert.Equal(t, 60*time.Second, cfg.Generation.Timeout)
		assert.Equal(t, 1, cfg.Generation.MaxInFlight)
		assert.Equal(t, []string{"csv", "json", "markdown"}, cfg.Export.Formats)
		assert.Equal(t, "outputs", cfg.Export.OutputDir)
		assert.Equal(t, "127.0.0.1:8080", cfg.Server.Listen)
		assert.Empty(t, cfg.Secrets())
	})

	t.Run("env expansion and credential fallback", func(t *testing.T) {
		t.Setenv("IDEASCOPE_TEST_COMMUNITY", "smallbusiness")
		t.Setenv("OPENAI_API_KEY", "env-key")
		configPath := writeConfig(t, `
communities: ["${IDEASCOPE_TEST_COMMUNITY}"]
generation:
  provider: openai
`)
		cfg, err := Load(configPath, noOverrides())
		require.NoError(t, err)
		assert.Equal(t, []string{"smallbusiness"}, cfg.Communities)
		assert.Equal(t, "env-key", cfg.Generation.APIKey)
	})

	t.Run("ollama model from env", func(t *testing.T) {
		t.Setenv("OLLAMA_MODEL", "mistral")
		cfg, err := Load("", Overrides{Communities: []string{"SaaS"}, Provider: "ollama", MinComments: -1})
		require.NoError(t, err)
		assert.Equal(t, "mistral", cfg.Generation.Model)
	})

	t.Run("overrides", func(t *testing.T) {
		configPath := writeConfig(t, `
communities: [SaaS]
generation:
  provider: ollama
`)
		cfg, err := Load(configPath, Overrides{
			Communities: []string{"Entrepreneur,startups", " indiehackers "},
			PostLimit:   10,
			MinComments: 0,
			Model:       "qwen2.5",
			Formats:     []string{"CSV,text"},
			OutputDir:   "reports",
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"Entrepreneur", "startups", "indiehackers"}, cfg.Communities)
		assert.Equal(t, 10, cfg.Source.PostLimit)
		assert.Equal(t, 0, cfg.Filter.MinComments)
		assert.Equal(t, "qwen2.5", cfg.Generation.Model)
		assert.Equal(t, []string{"csv", "text"}, cfg.Export.Formats)
		assert.Equal(t, "reports", cfg.Export.OutputDir)
	})

	t.Run("file not found", func(t *testing.T) {
		cfg, err := Load("/non/existent/file.yml", noOverrides())
		require.Error(t, err)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), "read config file")
	})

	t.Run("invalid yaml", func(t *testing.T) {
		configPath := writeConfig(t, `
invalid yaml content
  with bad indentation
    and no structure
`)
		cfg, err := Load(configPath, noOverrides())
		require.Error(t, err)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), "parse config")
	})
}

func TestLoad_ConfigurationErrors(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	tests := []struct {
		name   string
		yaml   string
		errMsg string
	}{
		{name: "no communities", yaml: "generation: {provider: ollama}", errMsg: "no communities configured"},
		{name: "no backend", yaml: "communities: [SaaS]", errMsg: "no generation backend configured"},
		{name: "unknown backend", yaml: "communities: [SaaS]\ngeneration: {provider: claude}", errMsg: `unknown generation backend "claude"`},
		{name: "missing credentials", yaml: "communities: [SaaS]\ngeneration: {provider: gemini}", errMsg: "requires api_key or GEMINI_API_KEY"},
		{name: "bad format", yaml: "communities: [SaaS]\ngeneration: {provider: ollama}\nexport: {formats: [pdf]}",
			errMsg: `unsupported export format "pdf"`},
		{name: "empty pain points", yaml: "communities: [SaaS]\ngeneration: {provider: ollama}\nfilter: {pain_points: []}",
			errMsg: "filter.pain_points must not be empty"},
		{name: "bad post limit", yaml: "communities: [SaaS]\ngeneration: {provider: ollama}\nsource: {post_limit: 0}",
			errMsg: "source.post_limit must be at least 1"},
		{name: "bad in flight", yaml: "communities: [SaaS]\ngeneration: {provider: ollama, max_in_flight: 0}",
			errMsg: "generation.max_in_flight must be at least 1"},
		{name: "bad bonus", yaml: "communities: [SaaS]\ngeneration: {provider: ollama}\nscorer: {max_engagement_bonus: 1.5}",
			errMsg: "scorer.max_engagement_bonus must be between 0 and 1"},
		{name: "empty bucket", yaml: "communities: [SaaS]\ngeneration: {provider: ollama}\ncategorizer: {buckets: {Pets: []}}",
			errMsg: `categorizer bucket "Pets" must have a name and keywords`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, tt.yaml), noOverrides())
			require.Error(t, err)
			assert.Nil(t, cfg)
			require.ErrorIs(t, err, domain.ErrConfiguration)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestConfig_GetServerConfig(t *testing.T) {
	cfg := &Config{Server: ServerConfig{Listen: ":9090", Timeout: 45 * time.Second}}

	listen, timeout := cfg.GetServerConfig()
	assert.Equal(t, ":9090", listen)
	assert.Equal(t, 45*time.Second, timeout)
}
