// Package llm implements generation providers turning a post into a structured idea analysis.
// All providers share the prompt, the response parser and the error classification.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"

	"github.com/umputun/ideascope/pkg/config"
	"github.com/umputun/ideascope/pkg/domain"
)

// Request is a single generation call
type Request struct {
	Text         string // post title and body, see domain.PostText
	SystemPrompt string // system instruction, DefaultSystemPrompt if empty
}

// Provider generates analysis of a post with a text generation backend
type Provider interface {
	Generate(ctx context.Context, req Request) (domain.Analysis, error)
	Ping(ctx context.Context) error
	Name() string
}

// New makes provider selected by cfg.Provider, with per-call timeout applied
func New(ctx context.Context, cfg config.GenerationConfig) (Provider, error) {
	var p Provider
	switch strings.ToLower(cfg.Provider) {
	case "ollama":
		p = NewOllama(cfg)
	case "openai", "groq", "huggingface":
		p = NewOpenAI(cfg)
	case "gemini":
		g, err := NewGemini(ctx, cfg)
		if err != nil {
			return nil, err
		}
		p = g
	case "":
		return nil, fmt.Errorf("no generation backend: %w", domain.ErrConfiguration)
	default:
		return nil, fmt.Errorf("unknown generation backend %q: %w", cfg.Provider, domain.ErrConfiguration)
	}
	return WithTimeout(p, cfg.Timeout), nil
}

// WithTimeout limits every Generate call of the provider to the timeout.
// Exceeding it results in domain.GenerationFailed("timeout"). Zero timeout means no limit.
func WithTimeout(p Provider, timeout time.Duration) Provider {
	if timeout <= 0 {
		return p
	}
	return &timedProvider{Provider: p, timeout: timeout}
}

type timedProvider struct {
	Provider
	timeout time.Duration
}

func (t *timedProvider) Generate(ctx context.Context, req Request) (domain.Analysis, error) {
	callCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	res, err := t.Provider.Generate(callCtx, req)
	if err != nil && ctx.Err() == nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) {
		return domain.Analysis{}, fmt.Errorf("%s: %w", t.Name(), domain.GenerationFailed("timeout"))
	}
	return res, err
}

// providerDefaults are endpoint and model used when not configured
var providerDefaults = map[string]struct{ endpoint, model string }{
	"ollama":      {endpoint: "http://localhost:11434", model: "llama3.2"},
	"openai":      {endpoint: "https://api.openai.com/v1", model: "gpt-4o-mini"},
	"groq":        {endpoint: "https://api.groq.com/openai/v1", model: "llama-3.3-70b-versatile"},
	"huggingface": {endpoint: "https://router.huggingface.co/v1", model: "meta-llama/Llama-3.1-8B-Instruct"},
	"gemini":      {endpoint: "", model: "gemini-2.0-flash"},
}

// withDefaults fills endpoint and model from provider defaults
func withDefaults(cfg config.GenerationConfig) config.GenerationConfig {
	cfg.Provider = strings.ToLower(cfg.Provider)
	d := providerDefaults[cfg.Provider]
	if cfg.Endpoint == "" {
		cfg.Endpoint = d.endpoint
	}
	if cfg.Model == "" {
		cfg.Model = d.model
	}
	cfg.Endpoint = strings.TrimSuffix(cfg.Endpoint, "/")
	return cfg
}

// classifyStatus maps HTTP status of a hosted backend to a domain error
func classifyStatus(code int, msg string) error {
	lmsg := strings.ToLower(msg)
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return domain.ErrAuth
	case code == http.StatusPaymentRequired:
		return domain.ErrQuotaExceeded
	case code == http.StatusTooManyRequests:
		if strings.Contains(lmsg, "quota") || strings.Contains(lmsg, "billing") || strings.Contains(lmsg, "exhausted") {
			return domain.ErrQuotaExceeded
		}
		return domain.ErrRateLimited
	case code == http.StatusNotFound:
		return domain.GenerationFailed("model not found")
	case code >= 500:
		return domain.GenerationFailed(fmt.Sprintf("backend status %d", code))
	default:
		return domain.GenerationFailed(fmt.Sprintf("status %d", code))
	}
}

// classifyTransport maps a transport level error. Context errors are returned as is,
// the timeout wrapper turns deadline into GenerationFailed("timeout").
func classifyTransport(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}
	var opErr *net.OpError
	var dnsErr *net.DNSError
	if errors.Is(err, syscall.ECONNREFUSED) || errors.As(err, &opErr) || errors.As(err, &dnsErr) {
		return fmt.Errorf("%w: %w", domain.ErrBackendUnreachable, err)
	}
	return fmt.Errorf("%w: %w", domain.GenerationFailed("transport"), err)
}
