// Package llm wraps the external completion service: chat model
// construction per provider and the bounded retry invoker around each call.
package llm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"regexp"
	"strconv"
	"strings"
	"time"

	"google.golang.org/genai"

	errx "github.com/Chative-core-poc-v1/frontdesk/internal/core/error"
	logx "github.com/Chative-core-poc-v1/frontdesk/pkg/logger"
)

// RetryConfig configures retry behavior.
type RetryConfig struct {
	MaxRetries int           // retries after the first attempt
	BaseDelay  time.Duration // delay before the first retry, doubled per attempt
	MaxDelay   time.Duration // cap before jitter
	Jitter     float64       // symmetric fraction, 0.1 means ±10%
	MinDelay   time.Duration // floor after jitter
}

// DefaultRetryConfig returns the production retry schedule: 3 attempts,
// 1s then 2s between them, ±10% jitter.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 2,
		BaseDelay:  1000 * time.Millisecond,
		MaxDelay:   10000 * time.Millisecond,
		Jitter:     0.1,
		MinDelay:   100 * time.Millisecond,
	}
}

func (c RetryConfig) normalized() RetryConfig {
	def := DefaultRetryConfig()
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = def.BaseDelay
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = def.MaxDelay
	}
	if c.Jitter < 0 {
		c.Jitter = 0
	}
	if c.MinDelay <= 0 {
		c.MinDelay = def.MinDelay
	}
	return c
}

// Retrier runs an operation with jittered exponential backoff. It holds no
// per-call state and is safe for concurrent use.
type Retrier struct {
	cfg   RetryConfig
	sleep func(ctx context.Context, d time.Duration) error
	rand  func() float64
}

// RetrierOption customizes a Retrier.
type RetrierOption func(*Retrier)

// WithSleep replaces the wait between attempts.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) RetrierOption {
	return func(r *Retrier) { r.sleep = sleep }
}

// WithRand replaces the jitter source; f must return values in [0, 1).
func WithRand(f func() float64) RetrierOption {
	return func(r *Retrier) { r.rand = f }
}

// NewRetrier creates a Retrier for cfg.
func NewRetrier(cfg RetryConfig, opts ...RetrierOption) *Retrier {
	r := &Retrier{
		cfg:   cfg.normalized(),
		sleep: sleepContext,
		rand:  rand.Float64,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Config returns the effective configuration.
func (r *Retrier) Config() RetryConfig {
	return r.cfg
}

// Backoff returns the delay after the given 0-indexed failed attempt.
func (r *Retrier) Backoff(attempt int) time.Duration {
	base := float64(r.cfg.BaseDelay) * math.Pow(2, float64(attempt))
	if base > float64(r.cfg.MaxDelay) {
		base = float64(r.cfg.MaxDelay)
	}
	jitter := base * r.cfg.Jitter * (2*r.rand() - 1)
	d := time.Duration(base + jitter)
	if d < r.cfg.MinDelay {
		d = r.cfg.MinDelay
	}
	return d
}

// Retry calls fn up to MaxRetries+1 times. It returns the result, the
// number of attempts made, and on failure an errx.AppError whose Kind is
// RetryableUpstream (retries exhausted), FatalUpstream (not retried) or
// Timeout (ctx ended).
func Retry[T any](ctx context.Context, r *Retrier, operation string, fn func(context.Context) (T, error)) (T, int, error) {
	var zero T
	var lastErr error
	lastStatus := 0

	for attempt := 0; attempt <= r.cfg.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, attempt, errx.Timeout(fmt.Errorf("%s: %w", operation, err))
		}

		out, err := fn(ctx)
		if err == nil {
			if attempt > 0 {
				logx.Info().Str("operation", operation).Int("attempt", attempt+1).Msg("retry succeeded")
			}
			return out, attempt + 1, nil
		}

		lastErr = err
		class, status := Classify(err)
		lastStatus = status
		logx.Warn().Err(err).
			Str("operation", operation).
			Int("attempt", attempt+1).
			Int("max_attempts", r.cfg.MaxRetries+1).
			Int("status", status).
			Bool("retryable", class == ClassRetryable).
			Msg("completion attempt failed")

		if ctxErr := ctx.Err(); ctxErr != nil {
			return zero, attempt + 1, errx.Timeout(fmt.Errorf("%s: %w", operation, err))
		}
		if class == ClassFatal {
			return zero, attempt + 1, errx.FatalUpstream(err, status)
		}

		if attempt < r.cfg.MaxRetries {
			delay := r.Backoff(attempt)
			logx.Debug().Str("operation", operation).Dur("delay", delay).Msg("backing off before retry")
			if err := r.sleep(ctx, delay); err != nil {
				return zero, attempt + 1, errx.Timeout(fmt.Errorf("%s: %w", operation, err))
			}
		}
	}

	return zero, r.cfg.MaxRetries + 1, errx.RetryableUpstream(lastErr, lastStatus)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Class is the retry decision for a failed call.
type Class int

const (
	ClassRetryable Class = iota
	ClassFatal
)

// StatusError carries the HTTP status of a failed upstream call.
type StatusError struct {
	Status int
	Err    error
}

func (e *StatusError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("upstream status %d", e.Status)
	}
	return fmt.Sprintf("upstream status %d: %v", e.Status, e.Err)
}

func (e *StatusError) Unwrap() error { return e.Err }

var (
	statusPattern    = regexp.MustCompile(`(?i)\b(?:status(?: code)?|code|http|error)\s*:?\s*(\d{3})\b`)
	rateLimitPattern = regexp.MustCompile(`(?i)rate[ _-]?limit|throttl|quota|too many requests`)
	tooLargePattern  = regexp.MustCompile(`(?i)request (?:entity )?too large|payload too large|request too large`)
	authPattern      = regexp.MustCompile(`(?i)api key|unauthori[sz]ed|invalid authentication|permission denied`)
)

// Classify decides whether err is worth retrying and reports the upstream
// HTTP status when one can be determined (0 otherwise).
func Classify(err error) (Class, int) {
	status := StatusOf(err)
	msg := err.Error()

	switch {
	case status == 413 || tooLargePattern.MatchString(msg):
		return ClassFatal, status
	case status == 429 || rateLimitPattern.MatchString(msg):
		return ClassRetryable, status
	case status >= 500 && status <= 599:
		return ClassRetryable, status
	case status == 401 || status == 403 || authPattern.MatchString(msg):
		return ClassFatal, status
	default:
		return ClassRetryable, status
	}
}

// StatusOf extracts an HTTP status from known error types or the error text.
func StatusOf(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	var appErr *errx.AppError
	if errors.As(err, &appErr) && appErr.UpstreamStatus != 0 {
		return appErr.UpstreamStatus
	}
	if m := statusPattern.FindStringSubmatch(err.Error()); m != nil {
		if n, convErr := strconv.Atoi(m[1]); convErr == nil && n >= 100 && n <= 599 {
			return n
		}
	}
	if strings.Contains(err.Error(), "429") {
		return 429
	}
	return 0
}
