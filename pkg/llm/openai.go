package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/umputun/ideascope/pkg/config"
	"github.com/umputun/ideascope/pkg/domain"
)

// OpenAI talks to OpenAI compatible chat completion APIs: openai, groq and huggingface router
type OpenAI struct {
	client   *openai.Client
	provider string
	cfg      config.GenerationConfig
}

// NewOpenAI creates provider for OpenAI compatible backends
func NewOpenAI(cfg config.GenerationConfig) *OpenAI {
	cfg = withDefaults(cfg)
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.Endpoint != "" {
		clientConfig.BaseURL = cfg.Endpoint
	}
	return &OpenAI{client: openai.NewClientWithConfig(clientConfig), provider: cfg.Provider, cfg: cfg}
}

// Name returns provider and model
func (o *OpenAI) Name() string { return o.provider + "/" + o.cfg.Model }

// Generate asks the chat completion API for the analysis of the post
func (o *OpenAI) Generate(ctx context.Context, req Request) (domain.Analysis, error) {
	chatReq := openai.ChatCompletionRequest{
		Model:       o.cfg.Model,
		Temperature: float32(o.cfg.Temperature),
		MaxTokens:   o.cfg.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt(req)},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt(req)},
		},
	}
	// huggingface router doesn't support json mode for every model
	if o.provider != "huggingface" {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	}

	resp, err := o.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return domain.Analysis{}, fmt.Errorf("%s: %w", o.Name(), o.mapError(err))
	}
	if len(resp.Choices) == 0 {
		return domain.Analysis{}, fmt.Errorf("%s: no choices in response: %w", o.Name(), domain.ErrMalformedResponse)
	}

	res, err := ParseAnalysis(resp.Choices[0].Message.Content)
	if err != nil {
		return domain.Analysis{}, fmt.Errorf("%s: %w", o.Name(), err)
	}
	return res, nil
}

// Ping checks the API is reachable and credentials are accepted
func (o *OpenAI) Ping(ctx context.Context) error {
	if _, err := o.client.ListModels(ctx); err != nil {
		return fmt.Errorf("%s: %w", o.Name(), o.mapError(err))
	}
	return nil
}

func (o *OpenAI) mapError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode > 0 {
		code, _ := apiErr.Code.(string)
		msg := strings.Join([]string{apiErr.Message, apiErr.Type, code}, " ")
		return fmt.Errorf("%w: %w", classifyStatus(apiErr.HTTPStatusCode, msg), err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode > 0 {
		return fmt.Errorf("%w: %w", classifyStatus(reqErr.HTTPStatusCode, string(reqErr.Body)), err)
	}
	return classifyTransport(err)
}
