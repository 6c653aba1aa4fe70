// Package llm sends optimize prompts to a text-generation model under a
// fixed time budget.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tailorhire-api/internal/shared/telemetry"
)

// DefaultTimeout is the wall-clock budget for one generation.
const DefaultTimeout = 300 * time.Second

var (
	// ErrGenerationTimeout is returned when the model misses its budget.
	ErrGenerationTimeout = errors.New("generation timed out")
	// ErrGenerationFailure wraps transport and model-side failures.
	ErrGenerationFailure = errors.New("generation failed")
)

// Generator produces raw text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Name() string
}

// Invoker runs a Generator once under Timeout. It never retries.
type Invoker struct {
	Generator Generator
	Timeout   time.Duration
}

// NewInvoker returns an Invoker. A non-positive timeout uses DefaultTimeout.
func NewInvoker(g Generator, timeout time.Duration) *Invoker {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Invoker{Generator: g, Timeout: timeout}
}

// Invoke returns the model's raw text. Errors wrap ErrGenerationTimeout or
// ErrGenerationFailure.
func (i *Invoker) Invoke(ctx context.Context, prompt string) (string, error) {
	if i == nil || i.Generator == nil {
		return "", fmt.Errorf("%w: no generator configured", ErrGenerationFailure)
	}
	timeout := i.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	telemetry.Info("llm.generate.start", map[string]any{
		"provider":     i.Generator.Name(),
		"prompt_chars": len(prompt),
		"timeout_s":    timeout.Seconds(),
	})

	raw, err := i.Generator.Generate(callCtx, prompt)
	elapsed := time.Since(start)
	if err == nil && strings.TrimSpace(raw) == "" {
		err = errors.New("empty response")
	}
	if err != nil {
		wrapped := classify(ctx, callCtx, err, timeout)
		telemetry.Error("llm.generate.failed", map[string]any{
			"provider":    i.Generator.Name(),
			"duration_ms": elapsed.Milliseconds(),
			"err":         err.Error(),
		})
		return "", wrapped
	}

	telemetry.Info("llm.generate.complete", map[string]any{
		"provider":       i.Generator.Name(),
		"duration_ms":    elapsed.Milliseconds(),
		"response_chars": len(raw),
	})
	return raw, nil
}

func classify(parent, callCtx context.Context, err error, timeout time.Duration) error {
	if errors.Is(parent.Err(), context.Canceled) {
		return fmt.Errorf("%w: %w", ErrGenerationFailure, context.Canceled)
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s", ErrGenerationTimeout, timeout)
	}
	return fmt.Errorf("%w: %w", ErrGenerationFailure, err)
}

// ErrNotConfigured is returned by the placeholder generator.
var ErrNotConfigured = errors.New("LLM provider not configured")

// PlaceholderGenerator stands in when no provider credentials are set.
type PlaceholderGenerator struct{}

// Generate returns ErrNotConfigured.
func (PlaceholderGenerator) Generate(context.Context, string) (string, error) {
	return "", ErrNotConfigured
}

// Name implements Generator.
func (PlaceholderGenerator) Name() string {
	return "placeholder"
}
