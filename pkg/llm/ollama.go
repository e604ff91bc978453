package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/umputun/ideascope/pkg/config"
	"github.com/umputun/ideascope/pkg/domain"
)

// Ollama talks to a locally hosted ollama server with its native API
type Ollama struct {
	client *http.Client
	cfg    config.GenerationConfig
}

// NewOllama creates provider for the local ollama server, no credentials needed
func NewOllama(cfg config.GenerationConfig) *Ollama {
	return &Ollama{client: &http.Client{}, cfg: withDefaults(cfg)}
}

type ollamaGenerateReq struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	System  string         `json:"system,omitempty"`
	Format  string         `json:"format"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type ollamaGenerateResp struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error"`
}

// Name returns provider and model
func (o *Ollama) Name() string { return "ollama/" + o.cfg.Model }

// Generate runs a single non-streaming generation in json format
func (o *Ollama) Generate(ctx context.Context, req Request) (domain.Analysis, error) {
	body, err := json.Marshal(ollamaGenerateReq{
		Model:   o.cfg.Model,
		Prompt:  userPrompt(req),
		System:  systemPrompt(req),
		Format:  "json",
		Options: map[string]any{"temperature": o.cfg.Temperature, "num_predict": o.cfg.MaxTokens},
	})
	if err != nil {
		return domain.Analysis{}, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.cfg.Endpoint+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return domain.Analysis{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(httpReq)
	if err != nil {
		return domain.Analysis{}, fmt.Errorf("%s: %w", o.Name(), classifyTransport(err))
	}
	defer resp.Body.Close()

	var result ollamaGenerateResp
	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		_ = json.Unmarshal(data, &result)
		if resp.StatusCode == http.StatusNotFound {
			return domain.Analysis{}, fmt.Errorf("%s: %s: %w", o.Name(), result.Error, domain.GenerationFailed("model not found"))
		}
		return domain.Analysis{}, fmt.Errorf("%s: %s: %w", o.Name(), strings.TrimSpace(string(data)),
			domain.GenerationFailed(fmt.Sprintf("status %d", resp.StatusCode)))
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return domain.Analysis{}, fmt.Errorf("%s: decode response: %w: %w", o.Name(), domain.ErrMalformedResponse, err)
	}
	if result.Error != "" {
		return domain.Analysis{}, fmt.Errorf("%s: %w", o.Name(), domain.GenerationFailed(result.Error))
	}

	res, err := ParseAnalysis(result.Response)
	if err != nil {
		return domain.Analysis{}, fmt.Errorf("%s: %w", o.Name(), err)
	}
	return res, nil
}

// Ping checks the server is running and the model is pulled
func (o *Ollama) Ping(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, o.cfg.Endpoint+"/api/tags", http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := o.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%s: %w", o.Name(), classifyTransport(err))
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: status %d: %w", o.Name(), resp.StatusCode, domain.ErrBackendUnreachable)
	}

	var tags struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return fmt.Errorf("%s: decode tags: %w", o.Name(), err)
	}
	for _, m := range tags.Models {
		if m.Name == o.cfg.Model || strings.TrimSuffix(m.Name, ":latest") == o.cfg.Model {
			return nil
		}
	}
	return fmt.Errorf("%s: model is not pulled, run 'ollama pull %s': %w", o.Name(), o.cfg.Model, domain.GenerationFailed("model not found"))
}
