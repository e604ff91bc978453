package config

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/invopop/jsonschema"
)

//go:embed schema.json
var embeddedSchema string

// schemaDoc is the part of the generated schema used for verification
type schemaDoc struct {
	Defs map[string]struct {
		Required   []string `json:"required"`
		Properties map[string]struct {
			Enum []string `json:"enum"`
		} `json:"properties"`
	} `json:"$defs"`
}

// VerifyAgainstEmbeddedSchema validates the config against the embedded JSON schema
func VerifyAgainstEmbeddedSchema(cfg *Config) error {
	var schema schemaDoc
	if err := json.Unmarshal([]byte(embeddedSchema), &schema); err != nil {
		return fmt.Errorf("parse embedded schema: %w", err)
	}

	// convert config to JSON for validation
	configData, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	var configMap map[string]any
	if err := json.Unmarshal(configData, &configMap); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}

	// all properties listed by the schema must be present in the config document
	for _, name := range schema.Defs["Config"].Required {
		if _, ok := configMap[name]; !ok {
			return fmt.Errorf("missing required property %q", name)
		}
	}

	if enum := schema.Defs["GenerationConfig"].Properties["provider"].Enum; len(enum) > 0 {
		if !slices.Contains(enum, cfg.Generation.Provider) {
			return fmt.Errorf("provider %q is not one of %v", cfg.Generation.Provider, enum)
		}
	}

	if err := validateRequiredFields(cfg); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}

// validateRequiredFields performs basic validation of required fields
func validateRequiredFields(cfg *Config) error {
	if cfg.Server.Listen == "" {
		return errors.New("server.listen is required")
	}
	if cfg.Server.Timeout == 0 {
		return errors.New("server.timeout is required")
	}
	if cfg.Source.BaseURL == "" {
		return errors.New("source.base_url is required")
	}
	if cfg.Source.UserAgent == "" {
		return errors.New("source.user_agent is required")
	}
	if cfg.Generation.MaxTokens < 1 {
		return errors.New("generation.max_tokens must be at least 1")
	}
	return nil
}

// GenerateSchema generates a JSON schema for the Config struct
func GenerateSchema() (*jsonschema.Schema, error) {
	return jsonschema.Reflect(&Config{}), nil
}
