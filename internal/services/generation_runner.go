package services

import (
	"context"
	"time"

	"postpilot/internal/genai"
	"postpilot/internal/providers"
	"postpilot/internal/structures"
)

// generationRunner wraps every generation-service call in the timeout
// wrapper and the retry engine, and reports attempt progress to the
// logger and metrics.
type generationRunner struct {
	client  genai.Client
	conf    *structures.Config
	logger  providers.Logger
	metrics providers.MetricsProviderInterface
}

func newGenerationRunner(client genai.Client, conf *structures.Config, logger providers.Logger, metrics providers.MetricsProviderInterface) *generationRunner {
	return &generationRunner{
		client:  client,
		conf:    conf,
		logger:  logger,
		metrics: metrics,
	}
}

func (r *generationRunner) retryConfig(maxAttempts int) genai.RetryConfig {
	return genai.RetryConfig{
		MaxAttempts:    maxAttempts,
		InitialBackoff: r.conf.Generation.InitialBackoff,
		BackoffFactor:  r.conf.Generation.BackoffFactor,
	}
}

func (r *generationRunner) observe(op string, attempt int, err error) {
	r.metrics.IncGenerationAttempt(op, err == nil)
	if err != nil {
		r.logger.Warnf(providers.TypeGenAI, "Attempt %d of %s failed: %s", attempt, op, err)
		return
	}
	r.logger.Debugf(providers.TypeGenAI, "Attempt %d of %s succeeded", attempt, op)
}

// text runs a text generation with the given per-attempt deadline and
// attempt budget.
func (r *generationRunner) text(ctx context.Context, op string, timeout time.Duration, maxAttempts int, req genai.TextRequest) (*genai.TextResult, error) {
	return genai.Retry(ctx, r.retryConfig(maxAttempts), op, func(ctx context.Context) (*genai.TextResult, error) {
		return genai.WithTimeout(ctx, timeout, op, func(ctx context.Context) (*genai.TextResult, error) {
			return r.client.GenerateText(ctx, req)
		})
	}, r.observe)
}

// image runs an image generation. Image calls are expensive: 2 attempts.
func (r *generationRunner) image(ctx context.Context, op string, req genai.ImageRequest) (*genai.ImageResult, error) {
	cfg := r.retryConfig(genai.ExpensiveRetryConfig().MaxAttempts)
	return genai.Retry(ctx, cfg, op, func(ctx context.Context) (*genai.ImageResult, error) {
		return genai.WithTimeout(ctx, r.conf.Generation.ImageTimeout, op, func(ctx context.Context) (*genai.ImageResult, error) {
			return r.client.GenerateImage(ctx, req)
		})
	}, r.observe)
}
