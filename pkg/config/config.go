package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/umputun/ideascope/pkg/domain"
)

//go:generate go run ../../cmd/schema/main.go schema.json

// Config holds the application configuration
type Config struct {
	Communities []string `yaml:"communities" json:"communities" jsonschema:"description=Subreddit names or forum feed URLs to scan in order"`

	Source      SourceConfig      `yaml:"source" json:"source" jsonschema:"description=Post source configuration"`
	Filter      FilterConfig      `yaml:"filter" json:"filter" jsonschema:"description=Pain-point filter configuration"`
	Scorer      ScorerConfig      `yaml:"scorer" json:"scorer" jsonschema:"description=Confidence scorer configuration"`
	Categorizer CategorizerConfig `yaml:"categorizer" json:"categorizer" jsonschema:"description=Keyword business bucket configuration"`
	Generation  GenerationConfig  `yaml:"generation" json:"generation" jsonschema:"description=Text generation backend configuration"`
	Export      ExportConfig      `yaml:"export" json:"export" jsonschema:"description=Export configuration"`

	Server ServerConfig `yaml:"server" json:"server" jsonschema:"description=Control panel configuration"`
}

// ServerConfig holds control panel settings
type ServerConfig struct {
	Listen  string        `yaml:"listen" json:"listen" jsonschema:"default=127.0.0.1:8080,description=Control panel listen address"`
	Timeout time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=Control panel HTTP timeout"`
}

// SourceConfig holds post source settings
type SourceConfig struct {
	PostLimit        int           `yaml:"post_limit" json:"post_limit" jsonschema:"default=50,minimum=1,description=Maximum posts fetched per community"`
	BaseURL          string        `yaml:"base_url" json:"base_url" jsonschema:"default=https://www.reddit.com,description=Reddit JSON API base URL"`
	UserAgent        string        `yaml:"user_agent" json:"user_agent" jsonschema:"default=ideascope/1.0,description=User agent for source requests"`
	Timeout          time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=Timeout of a single source request"`
	RequestInterval  time.Duration `yaml:"request_interval" json:"request_interval" jsonschema:"default=2s,description=Minimal interval between listing page requests"`
	RateLimitBackoff time.Duration `yaml:"rate_limit_backoff" json:"rate_limit_backoff" jsonschema:"default=60s,description=Sleep before the single retry after HTTP 429"`
	ExtractLinks     bool          `yaml:"extract_links" json:"extract_links" jsonschema:"default=false,description=Extract linked page text for link-only posts"`
}

// FilterConfig holds pain-point filter settings
type FilterConfig struct {
	MinComments int      `yaml:"min_comments" json:"min_comments" jsonschema:"default=5,minimum=0,description=Minimum comment count of a post"`
	PainPoints  []string `yaml:"pain_points" json:"pain_points" jsonschema:"description=Pain point phrases; at least one must match"`
	Exclusions  []string `yaml:"exclusions" json:"exclusions" jsonschema:"description=Phrases rejecting a post regardless of other signals"`
	Required    []string `yaml:"required" json:"required" jsonschema:"description=If set at least one of these must match in addition to a pain point"`
}

// ScorerConfig holds confidence scorer settings
type ScorerConfig struct {
	SaturateAt         int     `yaml:"saturate_at" json:"saturate_at" jsonschema:"default=4,minimum=1,description=Distinct signal count giving the full keyword score"`
	HighEngagement     int     `yaml:"high_engagement" json:"high_engagement" jsonschema:"default=50,minimum=1,description=Comment count giving the full engagement bonus"`
	MaxEngagementBonus float64 `yaml:"max_engagement_bonus" json:"max_engagement_bonus" jsonschema:"default=0.2,minimum=0,maximum=1,description=Maximum engagement contribution to the score"`
	MinConfidence      float64 `yaml:"min_confidence" json:"min_confidence" jsonschema:"default=0.3,minimum=0,maximum=1,description=Minimum score to send a post to the generation backend"`
}

// CategorizerConfig holds keyword categorizer settings
type CategorizerConfig struct {
	Enabled bool                `yaml:"enabled" json:"enabled" jsonschema:"default=true,description=Count selected posts by business bucket"`
	Buckets map[string][]string `yaml:"buckets" json:"buckets" jsonschema:"description=Custom buckets by name; a built-in name replaces its keywords"`
}

// GenerationConfig holds generation backend settings
type GenerationConfig struct {
	Provider     string        `yaml:"provider" json:"provider" jsonschema:"enum=ollama,enum=openai,enum=groq,enum=huggingface,enum=gemini,description=Generation backend"`
	Endpoint     string        `yaml:"endpoint" json:"endpoint" jsonschema:"description=Backend endpoint; provider default if empty"`
	APIKey       string        `yaml:"api_key" json:"api_key" jsonschema:"description=API key for hosted backends (falls back to the provider environment variable)"`
	Model        string        `yaml:"model" json:"model" jsonschema:"description=Model name; provider default if empty"`
	Temperature  float64       `yaml:"temperature" json:"temperature" jsonschema:"default=0.7,minimum=0,maximum=2,description=Sampling temperature"`
	MaxTokens    int           `yaml:"max_tokens" json:"max_tokens" jsonschema:"default=1024,minimum=1,description=Maximum tokens in response"`
	Timeout      time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=60s,description=Per-call generation timeout"`
	MaxInFlight  int           `yaml:"max_in_flight" json:"max_in_flight" jsonschema:"default=1,minimum=1,description=Maximum concurrent generation calls"`
	SystemPrompt string        `yaml:"system_prompt" json:"system_prompt" jsonschema:"description=System prompt override"`
}

// ExportConfig holds export settings
type ExportConfig struct {
	Formats   []string `yaml:"formats" json:"formats" jsonschema:"description=Output formats: csv json text markdown sqlite"`
	OutputDir string   `yaml:"output_dir" json:"output_dir" jsonschema:"default=outputs,description=Directory for output files"`
}

// Overrides are command line values applied on top of the file. Zero values are ignored,
// except MinComments where a negative value means not set.
type Overrides struct {
	Communities []string
	PostLimit   int
	MinComments int
	Provider    string
	Model       string
	Formats     []string
	OutputDir   string
}

// Providers lists supported generation backends with the environment variable holding the key.
// Empty variable name means no credentials needed.
var Providers = map[string]string{
	"ollama":      "",
	"openai":      "OPENAI_API_KEY",
	"groq":        "GROQ_API_KEY",
	"huggingface": "HUGGINGFACE_API_TOKEN",
	"gemini":      "GEMINI_API_KEY",
}

// Formats lists supported export formats
var Formats = []string{"csv", "json", "text", "markdown", "sqlite"}

// DefaultPainPoints are phrases indicating a pain point or startup idea discussion
var DefaultPainPoints = []string{
	"struggling with", "i hate it when", "i hate when", "is there a tool", "business idea",
	"how do i", "looking for a way", "tired of", "frustrated with", "wish there was",
	"anyone know of", "does anyone know", "help me find", "can't find", "missing feature",
	"too expensive", "waste of time", "manual process", "repetitive task", "automate",
	"need a better", "alternative to", "free alternative", "pain point", "drives me crazy",
	"someone should make", "is there an app for",
}

// DefaultExclusions are phrases of spam and low-quality posts
var DefaultExclusions = []string{
	"click here", "sign up now", "limited time", "act now", "make money fast",
	"work from home", "easy money", "crypto", "nft", "buy now", "discount code", "affiliate link",
}

// Default returns configuration with all defaults set
func Default() *Config {
	cfg := &Config{}
	cfg.Source = SourceConfig{
		PostLimit:        50,
		BaseURL:          "https://www.reddit.com",
		UserAgent:        "ideascope/1.0 (startup idea scanner)",
		Timeout:          30 * time.Second,
		RequestInterval:  2 * time.Second,
		RateLimitBackoff: 60 * time.Second,
	}
	cfg.Filter = FilterConfig{
		MinComments: 5,
		PainPoints:  slices.Clone(DefaultPainPoints),
		Exclusions:  slices.Clone(DefaultExclusions),
	}
	cfg.Scorer = ScorerConfig{SaturateAt: 4, HighEngagement: 50, MaxEngagementBonus: 0.2, MinConfidence: 0.3}
	cfg.Categorizer = CategorizerConfig{Enabled: true}
	cfg.Generation = GenerationConfig{Temperature: 0.7, MaxTokens: 1024, Timeout: 60 * time.Second, MaxInFlight: 1}
	cfg.Export = ExportConfig{Formats: []string{"csv", "json", "markdown"}, OutputDir: "outputs"}
	cfg.Server = ServerConfig{Listen: "127.0.0.1:8080", Timeout: 30 * time.Second}
	return cfg
}

// Load reads configuration from a YAML file, applies overrides and validates the result.
// Empty path means defaults only. Validation failures wrap domain.ErrConfiguration.
func Load(path string, ov Overrides) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path) //nolint:gosec // file path comes from CLI flag
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}

		// expand environment variables
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.apply(ov)
	cfg.fillCredentials()

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	// verify against embedded schema
	if err := VerifyAgainstEmbeddedSchema(cfg); err != nil {
		// log warning but don't fail - schema validation is supplementary
		log.Printf("[WARN] schema validation failed: %v", err)
	}

	return cfg, nil
}

// apply sets command line overrides
func (c *Config) apply(ov Overrides) {
	if len(ov.Communities) > 0 {
		c.Communities = ov.Communities
	}
	if ov.PostLimit > 0 {
		c.Source.PostLimit = ov.PostLimit
	}
	if ov.MinComments >= 0 {
		c.Filter.MinComments = ov.MinComments
	}
	if ov.Provider != "" {
		c.Generation.Provider = ov.Provider
	}
	if ov.Model != "" {
		c.Generation.Model = ov.Model
	}
	if len(ov.Formats) > 0 {
		c.Export.Formats = ov.Formats
	}
	if ov.OutputDir != "" {
		c.Export.OutputDir = ov.OutputDir
	}

	// normalize list values, allow comma separated items
	c.Communities = splitList(c.Communities)
	c.Export.Formats = splitList(c.Export.Formats)
	for i, f := range c.Export.Formats {
		c.Export.Formats[i] = strings.ToLower(f)
	}
	c.Generation.Provider = strings.ToLower(strings.TrimSpace(c.Generation.Provider))
}

// fillCredentials reads provider credentials from environment when not set in the file
func (c *Config) fillCredentials() {
	if c.Generation.APIKey == "" {
		if env := Providers[c.Generation.Provider]; env != "" {
			c.Generation.APIKey = os.Getenv(env)
		}
	}
	if c.Generation.Model == "" && c.Generation.Provider == "ollama" {
		c.Generation.Model = os.Getenv("OLLAMA_MODEL")
	}
}

// validate checks configuration for correctness
func validate(cfg *Config) error {
	var errs []error

	if len(cfg.Communities) == 0 {
		errs = append(errs, errors.New("no communities configured"))
	}

	// validate source config
	if cfg.Source.PostLimit < 1 {
		errs = append(errs, errors.New("source.post_limit must be at least 1"))
	}
	if cfg.Source.Timeout < time.Second {
		errs = append(errs, errors.New("source.timeout must be at least 1 second"))
	}
	if cfg.Source.RateLimitBackoff < 0 || cfg.Source.RequestInterval < 0 {
		errs = append(errs, errors.New("source intervals must be non-negative"))
	}

	// validate filter config
	if cfg.Filter.MinComments < 0 {
		errs = append(errs, errors.New("filter.min_comments must be non-negative"))
	}
	if len(cfg.Filter.PainPoints) == 0 {
		errs = append(errs, errors.New("filter.pain_points must not be empty"))
	}

	// validate scorer config
	if cfg.Scorer.SaturateAt < 1 || cfg.Scorer.HighEngagement < 1 {
		errs = append(errs, errors.New("scorer.saturate_at and scorer.high_engagement must be at least 1"))
	}
	if cfg.Scorer.MaxEngagementBonus < 0 || cfg.Scorer.MaxEngagementBonus > 1 {
		errs = append(errs, errors.New("scorer.max_engagement_bonus must be between 0 and 1"))
	}
	if cfg.Scorer.MinConfidence < 0 || cfg.Scorer.MinConfidence > 1 {
		errs = append(errs, errors.New("scorer.min_confidence must be between 0 and 1"))
	}

	// validate categorizer config
	for name, kws := range cfg.Categorizer.Buckets {
		if strings.TrimSpace(name) == "" || len(kws) == 0 {
			errs = append(errs, fmt.Errorf("categorizer bucket %q must have a name and keywords", name))
		}
	}

	// validate generation config
	keyEnv, known := Providers[cfg.Generation.Provider]
	switch {
	case cfg.Generation.Provider == "":
		errs = append(errs, errors.New("no generation backend configured"))
	case !known:
		errs = append(errs, fmt.Errorf("unknown generation backend %q", cfg.Generation.Provider))
	case keyEnv != "" && cfg.Generation.APIKey == "":
		errs = append(errs, fmt.Errorf("generation backend %q requires api_key or %s", cfg.Generation.Provider, keyEnv))
	}
	if cfg.Generation.Temperature < 0 || cfg.Generation.Temperature > 2 {
		errs = append(errs, errors.New("generation.temperature must be between 0 and 2"))
	}
	if cfg.Generation.Timeout <= 0 {
		errs = append(errs, errors.New("generation.timeout must be positive"))
	}
	if cfg.Generation.MaxInFlight < 1 {
		errs = append(errs, errors.New("generation.max_in_flight must be at least 1"))
	}

	// validate export config
	if len(cfg.Export.Formats) == 0 {
		errs = append(errs, errors.New("export.formats must not be empty"))
	}
	for _, f := range cfg.Export.Formats {
		if !slices.Contains(Formats, f) {
			errs = append(errs, fmt.Errorf("unsupported export format %q", f))
		}
	}
	if cfg.Export.OutputDir == "" {
		errs = append(errs, errors.New("export.output_dir is required"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", domain.ErrConfiguration, errors.Join(errs...))
	}
	return nil
}

// splitList splits comma separated items and drops empty ones
func splitList(items []string) []string {
	res := make([]string, 0, len(items))
	for _, item := range items {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				res = append(res, p)
			}
		}
	}
	return res
}

// GetServerConfig returns control panel server configuration
func (c *Config) GetServerConfig() (listen string, timeout time.Duration) {
	return c.Server.Listen, c.Server.Timeout
}

// Secrets returns credential values to be masked in logs
func (c *Config) Secrets() []string {
	if c.Generation.APIKey == "" {
		return nil
	}
	return []string{c.Generation.APIKey}
}
