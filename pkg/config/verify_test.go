package config

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := Default()
	cfg.Communities = []string{"SaaS"}
	cfg.Generation.Provider = "ollama"
	return cfg
}

func TestVerifyAgainstEmbeddedSchema(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(cfg *Config)
		wantErr bool
		errMsg  string
	}{
		{name: "valid config", modify: func(*Config) {}},
		{name: "missing server listen", modify: func(cfg *Config) { cfg.Server.Listen = "" },
			wantErr: true, errMsg: "server.listen is required"},
		{name: "missing server timeout", modify: func(cfg *Config) { cfg.Server.Timeout = 0 },
			wantErr: true, errMsg: "server.timeout is required"},
		{name: "missing base url", modify: func(cfg *Config) { cfg.Source.BaseURL = "" },
			wantErr: true, errMsg: "source.base_url is required"},
		{name: "provider outside of schema enum", modify: func(cfg *Config) { cfg.Generation.Provider = "claude" },
			wantErr: true, errMsg: `provider "claude" is not one of`},
		{name: "zero max tokens", modify: func(cfg *Config) { cfg.Generation.MaxTokens = 0 },
			wantErr: true, errMsg: "generation.max_tokens must be at least 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modify(cfg)
			err := VerifyAgainstEmbeddedSchema(cfg)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestEmbeddedSchemaMatchesConfig(t *testing.T) {
	var schema schemaDoc
	require.NoError(t, json.Unmarshal([]byte(embeddedSchema), &schema))
	assert.ElementsMatch(t, []string{"communities", "source", "filter", "scorer", "categorizer", "generation", "export", "server"},
		schema.Defs["Config"].Required)
	assert.Equal(t, []string{"ollama", "openai", "groq", "huggingface", "gemini"},
		schema.Defs["GenerationConfig"].Properties["provider"].Enum)
}

func TestGenerateSchema(t *testing.T) {
	schema, err := GenerateSchema()
	require.NoError(t, err)
	require.NotNil(t, schema)

	data, err := schema.MarshalJSON()
	require.NoError(t, err)
	assert.NotEmpty(t, data)

	schemaStr := string(data)
	assert.Contains(t, schemaStr, "Config")
	assert.Contains(t, schemaStr, "communities")
	assert.Contains(t, schemaStr, "generation")
	assert.Contains(t, schemaStr, "min_confidence")
}
