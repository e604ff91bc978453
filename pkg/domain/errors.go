package domain

import (
	"context"
	"errors"
)

// error taxonomy shared by sources, providers, exporters and the pipeline
var (
	ErrSourceUnavailable  = errors.New("source unavailable")
	ErrRateLimited        = errors.New("rate limited")
	ErrGenerationFailed   = errors.New("generation failed")
	ErrBackendUnreachable = errors.New("backend unreachable")
	ErrAuth               = errors.New("auth error")
	ErrQuotaExceeded      = errors.New("quota exceeded")
	ErrMalformedResponse  = errors.New("malformed response")
	ErrExportWrite        = errors.New("export write error")
	ErrConfiguration      = errors.New("configuration error")
)

// GenerationError is a generation failure with a short reason, e.g. "timeout"
type GenerationError struct {
	Reason string
}

func (e *GenerationError) Error() string {
	return "generation failed: " + e.Reason
}

// Is makes GenerationError match ErrGenerationFailed
func (e *GenerationError) Is(target error) bool {
	return target == ErrGenerationFailed
}

// GenerationFailed creates a generation error with the given reason
func GenerationFailed(reason string) error {
	return &GenerationError{Reason: reason}
}

// ErrorKind returns a short stable name of the error class, used in logs and skip counters
func ErrorKind(err error) string {
	var genErr *GenerationError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &genErr) && genErr.Reason == "timeout":
		return "timeout"
	case errors.Is(err, ErrSourceUnavailable):
		return "source_unavailable"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrBackendUnreachable):
		return "backend_unreachable"
	case errors.Is(err, ErrAuth):
		return "auth_error"
	case errors.Is(err, ErrQuotaExceeded):
		return "quota_exceeded"
	case errors.Is(err, ErrMalformedResponse):
		return "malformed_response"
	case errors.Is(err, ErrGenerationFailed):
		return "generation_failed"
	case errors.Is(err, ErrExportWrite):
		return "export_write_error"
	case errors.Is(err, ErrConfiguration):
		return "configuration_error"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "unknown"
	}
}
