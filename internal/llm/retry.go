package llm

import (
	"context"
	"errors"
	"log"
	"time"
)

// #region constants

const defaultMaxRetries = 2 // 3 total attempts

// #endregion

// #region retrying
// Retrying wraps a Client with bounded retries. It belongs to callers such as
// batch commands; the scorer itself never retries.
type Retrying struct {
	inner      Client
	maxRetries int
	backoff    time.Duration
	sleep      func(context.Context, time.Duration) error
}

// NewRetrying wraps inner. maxRetries < 0 uses the default.
func NewRetrying(inner Client, maxRetries int, backoff time.Duration) *Retrying {
	if maxRetries < 0 {
		maxRetries = defaultMaxRetries
	}
	return &Retrying{inner: inner, maxRetries: maxRetries, backoff: backoff, sleep: sleepCtx}
}

// #endregion retrying

// #region should-retry
// shouldRetry reports whether another attempt is allowed after attempt n (0-based) failed with err.
func (r *Retrying) shouldRetry(n int, err error) bool {
	if n >= r.maxRetries {
		return false
	}
	// Deterministic failures repeat on every attempt.
	if errors.Is(err, ErrNoOptions) || errors.Is(err, ErrTooManyOptions) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return true
}

// #endregion should-retry

// #region calls

// ScoreOptions implements Client.
func (r *Retrying) ScoreOptions(ctx context.Context, prompt string, options []string) ([]float64, error) {
	for n := 0; ; n++ {
		scores, err := r.inner.ScoreOptions(ctx, prompt, options)
		if err == nil {
			return scores, nil
		}
		if !r.shouldRetry(n, err) {
			return nil, err
		}
		log.Printf("[LLM] score_options attempt=%d failed: %v", n+1, err)
		if err := r.sleep(ctx, r.backoff*time.Duration(n+1)); err != nil {
			return nil, err
		}
	}
}

// ChooseOption implements Client.
func (r *Retrying) ChooseOption(ctx context.Context, prompt string, options []string) (string, error) {
	for n := 0; ; n++ {
		choice, err := r.inner.ChooseOption(ctx, prompt, options)
		if err == nil {
			return choice, nil
		}
		if !r.shouldRetry(n, err) {
			return "", err
		}
		log.Printf("[LLM] choose_option attempt=%d failed: %v", n+1, err)
		if err := r.sleep(ctx, r.backoff*time.Duration(n+1)); err != nil {
			return "", err
		}
	}
}

// #endregion calls

// #region helpers
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// #endregion helpers
