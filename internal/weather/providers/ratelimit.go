package providers

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/urbanplatform/onboarding/internal/weather"
)

// RateLimitedProvider wraps a weather.Provider with a token-bucket limiter so
// scheduled runs (and scheduler-level retries) stay within the provider's
// per-key request quota.
type RateLimitedProvider struct {
	provider weather.Provider
	limiter  *rate.Limiter
}

// NewRateLimitedProvider creates a rate limited provider. rps may be
// fractional for quotas below one request per second.
func NewRateLimitedProvider(provider weather.Provider, rps float64, burst int) *RateLimitedProvider {
	return &RateLimitedProvider{
		provider: provider,
		limiter:  rate.NewLimiter(rate.Limit(rps), burst),
	}
}

func (r *RateLimitedProvider) Name() string {
	return r.provider.Name()
}

// Fetch waits for limiter permission, then forwards to the underlying
// provider. A cancellation while waiting aborts without any outbound call.
func (r *RateLimitedProvider) Fetch(ctx context.Context) ([]weather.RawObservation, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait canceled: %w", err)
	}
	return r.provider.Fetch(ctx)
}

var _ weather.Provider = (*RateLimitedProvider)(nil)
