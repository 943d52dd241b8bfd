package llm

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

// retryClass sorts a generation failure into what the retry loop should
// do about it.
type retryClass int

const (
	// retryNever: retrying cannot help. Cancellation, or a response
	// truncated by MaxTokens that would truncate again.
	retryNever retryClass = iota
	// retryOnce: worth one more roll of the dice. A malformed response
	// that fails twice means the prompt or schema is wrong, not the dice.
	retryOnce
	// retryBackoff: transient provider trouble, retry with backoff.
	retryBackoff
)

func classifyFailure(err error) retryClass {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return retryNever
	}
	var maxTok *ErrMaxTokensExceeded
	if errors.As(err, &maxTok) {
		return retryNever
	}
	var invResp *ErrInvalidResponse
	if errors.As(err, &invResp) {
		return retryOnce
	}
	// Rate limits, 5xx and anything else (network resets and the like)
	// are treated as transient.
	return retryBackoff
}

// retryProvider wraps a Provider with jittered exponential backoff on
// transient failures.
type retryProvider struct {
	next Provider
	cfg  RetryConfig
}

// WithRetry decorates a Provider with the retry policy.
func WithRetry(p Provider, cfg RetryConfig) Provider {
	return &retryProvider{next: p, cfg: cfg}
}

func (r *retryProvider) ModelID() string {
	return r.next.ModelID()
}

func (r *retryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	var lastErr error
	onceUsed := false

	for attempt := 0; attempt < r.cfg.MaxAttempts; attempt++ {
		resp, err := r.next.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		switch classifyFailure(err) {
		case retryNever:
			return nil, err
		case retryOnce:
			if onceUsed {
				return nil, err
			}
			onceUsed = true
		}

		if attempt == r.cfg.MaxAttempts-1 {
			// Out of attempts; no point sleeping.
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(r.waitFor(attempt, err)):
		}
	}

	return nil, lastErr
}

// waitFor computes the pause before the next attempt. A rate-limited
// provider that names its own wait wins over the backoff curve.
func (r *retryProvider) waitFor(attempt int, err error) time.Duration {
	var rl *ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter
	}

	wait := float64(r.cfg.InitialWait) * math.Pow(r.cfg.Multiplier, float64(attempt))
	wait = math.Min(wait, float64(r.cfg.MaxWait))

	// 20% jitter either way keeps concurrent callers from thundering.
	wait *= 1 + 0.2*(2*rand.Float64()-1)
	return time.Duration(math.Max(wait, 0))
}
