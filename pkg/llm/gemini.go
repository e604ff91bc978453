package llm

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/umputun/ideascope/pkg/config"
	"github.com/umputun/ideascope/pkg/domain"
)

// Gemini talks to Google Gemini API
type Gemini struct {
	client *genai.Client
	cfg    config.GenerationConfig
}

// NewGemini creates provider for Gemini API, api key is required
func NewGemini(ctx context.Context, cfg config.GenerationConfig) (*Gemini, error) {
	cfg = withDefaults(cfg)
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is not set: %w", domain.ErrConfiguration)
	}
	cc := &genai.ClientConfig{APIKey: cfg.APIKey, Backend: genai.BackendGeminiAPI}
	if cfg.Endpoint != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.Endpoint + "/"}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Gemini{client: client, cfg: cfg}, nil
}

// Name returns provider and model
func (g *Gemini) Name() string { return "gemini/" + g.cfg.Model }

// Generate asks the model for the analysis with json response type
func (g *Gemini) Generate(ctx context.Context, req Request) (domain.Analysis, error) {
	genCfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt(req), genai.RoleUser),
		Temperature:       genai.Ptr(float32(g.cfg.Temperature)),
		MaxOutputTokens:   int32(g.cfg.MaxTokens), //nolint:gosec // max tokens is validated and small
		ResponseMIMEType:  "application/json",
	}

	result, err := g.client.Models.GenerateContent(ctx, g.cfg.Model, genai.Text(userPrompt(req)), genCfg)
	if err != nil {
		return domain.Analysis{}, fmt.Errorf("%s: %w", g.Name(), g.mapError(err))
	}
	if result == nil || result.Text() == "" {
		return domain.Analysis{}, fmt.Errorf("%s: empty response: %w", g.Name(), domain.ErrMalformedResponse)
	}

	res, err := ParseAnalysis(result.Text())
	if err != nil {
		return domain.Analysis{}, fmt.Errorf("%s: %w", g.Name(), err)
	}
	return res, nil
}

// Ping checks the model is available for the key
func (g *Gemini) Ping(ctx context.Context) error {
	if _, err := g.client.Models.Get(ctx, g.cfg.Model, nil); err != nil {
		return fmt.Errorf("%s: %w", g.Name(), g.mapError(err))
	}
	return nil
}

func (g *Gemini) mapError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%w: %w", classifyStatus(apiErr.Code, apiErr.Message+" "+apiErr.Status), err)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return fmt.Errorf("%w: %w", classifyStatus(apiErrPtr.Code, apiErrPtr.Message+" "+apiErrPtr.Status), err)
	}
	return classifyTransport(err)
}
