package llm

import (
	"context"
	"time"

	"github.com/vytor/studyrpg/internal/logger"
)

type validatingProvider struct {
	inner Provider
}

// WithValidation rejects truncated output and output that does not match the
// request schema.
func WithValidation(p Provider) Provider {
	return &validatingProvider{inner: p}
}

func (v *validatingProvider) ModelID() string { return v.inner.ModelID() }

func (v *validatingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	resp, err := v.inner.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp.Truncated {
		return nil, &ErrTruncated{Content: resp.Content}
	}
	if err := Validate(req.Schema, resp.Content); err != nil {
		return nil, err
	}
	return resp, nil
}

type loggingProvider struct {
	inner Provider
}

// WithLogging logs latency and token usage of every call.
func WithLogging(p Provider) Provider {
	return &loggingProvider{inner: p}
}

func (l *loggingProvider) ModelID() string { return l.inner.ModelID() }

func (l *loggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	log := logger.FromContext(ctx).WithPrefix("llm").WithField("model", l.inner.ModelID())
	schema := ""
	if req.Schema != nil {
		schema = req.Schema.Name
	}
	log.Debug("generating: schema=%s, prompt_chars=%d", schema, len(req.Prompt))

	start := time.Now()
	resp, err := l.inner.Generate(ctx, req)
	elapsed := time.Since(start)

	if err != nil {
		log.Warn("generation failed after %s: %v", elapsed, err)
		return nil, err
	}
	log.Info("generation finished in %s: input_tokens=%d, output_tokens=%d", elapsed, resp.InputTokens, resp.OutputTokens)
	return resp, nil
}
