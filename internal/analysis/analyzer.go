package analysis

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/mementolab/driftwatch/pkg/errors"
	"github.com/mementolab/driftwatch/pkg/logging"
)

const (
	// DefaultRPM is the client-side request budget per minute.
	DefaultRPM = 20

	// DefaultMaxRetries bounds transient-error retries per call.
	DefaultMaxRetries = 5

	// DefaultBaseBackoff is the first retry delay; later retries double it.
	DefaultBaseBackoff = 2 * time.Second

	// DefaultMaxTokens caps the completion size. Unit arrays for long
	// articles run large.
	DefaultMaxTokens = 16000
)

// Analyzer runs the two-attempt align-and-assess conversation against
// a model backend: first with an enforced response schema, then once
// more schemaless with a note about what went wrong.
type Analyzer struct {
	provider    Provider
	limiter     *rate.Limiter
	maxRetries  int
	baseBackoff time.Duration
	maxTokens   int
	logger      zerolog.Logger
	rng         *rand.Rand
	sleep       func(ctx context.Context, d time.Duration) error
}

// AnalyzerOption configures an Analyzer.
type AnalyzerOption func(*Analyzer)

// WithRPM sets the client-side requests-per-minute budget.
func WithRPM(rpm int) AnalyzerOption {
	return func(a *Analyzer) {
		if rpm < 1 {
			rpm = 1
		}
		a.limiter = rate.NewLimiter(rate.Limit(float64(rpm)/60.0), 1)
	}
}

// WithMaxRetries sets the transient-error retry limit per call.
func WithMaxRetries(n int) AnalyzerOption {
	return func(a *Analyzer) { a.maxRetries = n }
}

// WithBaseBackoff sets the first retry delay.
func WithBaseBackoff(d time.Duration) AnalyzerOption {
	return func(a *Analyzer) { a.baseBackoff = d }
}

// WithMaxTokens caps the completion size.
func WithMaxTokens(n int) AnalyzerOption {
	return func(a *Analyzer) { a.maxTokens = n }
}

// WithLogger sets the analyzer logger.
func WithLogger(logger zerolog.Logger) AnalyzerOption {
	return func(a *Analyzer) { a.logger = logger }
}

// NewAnalyzer returns an Analyzer over the given backend.
func NewAnalyzer(provider Provider, opts ...AnalyzerOption) *Analyzer {
	a := &Analyzer{
		provider:    provider,
		limiter:     rate.NewLimiter(rate.Limit(DefaultRPM/60.0), 1),
		maxRetries:  DefaultMaxRetries,
		baseBackoff: DefaultBaseBackoff,
		maxTokens:   DefaultMaxTokens,
		logger:      *logging.Default(),
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // jitter, not crypto
		sleep: func(ctx context.Context, d time.Duration) error {
			timer := time.NewTimer(d)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				return errors.ErrCanceled
			case <-timer.C:
				return nil
			}
		},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AlignAndAssess submits a memento pair and returns the aligned unit
// assessments. The unit count must land between max(n1,n2) and n1+n2
// where n1/n2 are the rough sentence counts; a first attempt that
// misses the window triggers one schemaless retry. The retry's output
// is returned even when it still fails validation, with a warning.
func (a *Analyzer) AlignAndAssess(ctx context.Context, oldText, newText string) ([]Unit, error) {
	n1 := CountSentences(oldText)
	n2 := CountSentences(newText)
	minItems := n1
	if n2 > minItems {
		minItems = n2
	}
	maxItems := n1 + n2

	prompt := BuildPrompt(oldText, newText, minItems, maxItems)

	var retryNote string
	content, err := a.complete(ctx, Request{
		System:     SystemPromptSchema,
		Prompt:     prompt,
		MaxTokens:  a.maxTokens,
		SchemaName: SchemaName,
		Schema:     Schema(),
	})
	switch {
	case errors.IsCanceled(err):
		return nil, err
	case err != nil:
		retryNote = fmt.Sprintf("Previous attempt failed: %v", err)
	default:
		data := []byte(strings.TrimSpace(content))
		verr := Validate(data, minItems, maxItems)
		if verr == nil {
			return ParseUnits(data)
		}
		retryNote = "Previous output failed validation: " + verr.Error()
	}

	content, err = a.complete(ctx, Request{
		System:    SystemPromptPlain,
		Prompt:    prompt + "\nIMPORTANT: " + retryNote + "\n",
		MaxTokens: a.maxTokens,
	})
	if err != nil {
		return nil, err
	}
	arrText, err := FirstJSONArray(content)
	if err != nil {
		return nil, err
	}
	if verr := Validate([]byte(arrText), minItems, maxItems); verr != nil {
		a.logger.Warn().
			Str("provider", a.provider.Name()).
			Err(verr).
			Msg("model output failed validation, keeping it anyway")
	}
	return ParseUnits([]byte(arrText))
}

// complete runs one provider call under the rate limiter, retrying
// transient failures (429, 5xx, timeouts) with exponential backoff.
func (a *Analyzer) complete(ctx context.Context, req Request) (string, error) {
	var lastErr error
	for attempt := 0; attempt < a.maxRetries; attempt++ {
		if err := a.limiter.Wait(ctx); err != nil {
			return "", errors.ErrCanceled
		}
		content, err := a.provider.Complete(ctx, req)
		if err == nil {
			return content, nil
		}
		if errors.IsCanceled(err) || !isTransient(err) {
			return "", err
		}
		lastErr = err
		backoff := a.baseBackoff*time.Duration(1<<attempt) +
			time.Duration(a.rng.Int63n(int64(time.Second)))
		a.logger.Warn().
			Str("provider", a.provider.Name()).
			Int("attempt", attempt+1).
			Int("max_attempts", a.maxRetries).
			Dur("backoff", backoff).
			Err(err).
			Msg("transient model error, backing off")
		if err := a.sleep(ctx, backoff); err != nil {
			return "", err
		}
	}
	return "", fmt.Errorf("max retries exceeded: %w", lastErr)
}

func isTransient(err error) bool {
	return errors.IsRateLimited(err) ||
		errors.IsServiceUnavailable(err) ||
		errors.IsTimeout(err)
}
