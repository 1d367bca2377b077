// Package pipeline orchestrates the per-word translation batch: querying the
// model with bounded retry, accumulating SQL statements, and writing the
// error and success logs. Words are processed strictly one at a time.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/avast/retry-go"
	"github.com/schollz/progressbar/v3"

	"github.com/mudadib/wortschatz/internal/config"
	"github.com/mudadib/wortschatz/internal/inference"
	"github.com/mudadib/wortschatz/internal/runlog"
	"github.com/mudadib/wortschatz/internal/sqlgen"
)

// Summary reports how many words were translated and how many exhausted
// their retries.
type Summary struct {
	Succeeded int
	Failed    int
}

type Pipeline struct {
	client      inference.Client
	generator   *sqlgen.Generator
	errorLog    *runlog.ErrorLog
	responseLog *runlog.ResponseLog
	retry       config.RetryConfig

	// sleep only covers the rate-limit pause between words; the retry delay
	// is owned by the retry policy.
	sleep          func(time.Duration)
	progressWriter io.Writer
}

func New(
	client inference.Client,
	generator *sqlgen.Generator,
	errorLog *runlog.ErrorLog,
	responseLog *runlog.ResponseLog,
	retryConfig config.RetryConfig,
) *Pipeline {
	return &Pipeline{
		client:         client,
		generator:      generator,
		errorLog:       errorLog,
		responseLog:    responseLog,
		retry:          retryConfig,
		sleep:          time.Sleep,
		progressWriter: os.Stderr,
	}
}

// Run processes every word in order. A word that exhausts its retries is
// logged and counted as failed; the run continues with the next word. Run
// stops early only when the context is cancelled.
func (p *Pipeline) Run(ctx context.Context, newWords []string) (Summary, error) {
	var summary Summary

	bar := progressbar.NewOptions(len(newWords),
		progressbar.OptionSetWidth(50),
		progressbar.OptionSetDescription("Translating words"),
		progressbar.OptionSetWriter(p.progressWriter),
	)
	for i, word := range newWords {
		if err := ctx.Err(); err != nil {
			return summary, fmt.Errorf("run cancelled > %w", err)
		}

		if p.processWord(ctx, word) {
			summary.Succeeded++
		} else {
			summary.Failed++
		}
		_ = bar.Add(1)

		// Breathe a little after every batch of words to respect rate limits.
		if p.retry.PauseEvery > 0 && (i+1)%p.retry.PauseEvery == 0 && len(newWords) > p.retry.PauseEvery {
			p.sleep(p.retryDelay())
		}
	}
	return summary, nil
}

func (p *Pipeline) retryDelay() time.Duration {
	return time.Duration(p.retry.DelaySeconds) * time.Second
}

// processWord runs the retry state machine for one word and reports whether
// the word ended in Done. Exhausting the attempt budget writes exactly one
// error log entry.
func (p *Pipeline) processWord(ctx context.Context, word string) bool {
	var response inference.TranslateResponse
	attempt := 0

	err := retry.Do(
		func() error {
			attempt++
			slog.Default().Info("Processing word",
				"word", word,
				"attempt", attempt,
				"maxAttempts", p.retry.MaxAttempts,
			)
			translated, err := p.client.Translate(ctx, word)
			if err != nil {
				return err
			}
			response = translated
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(p.retry.MaxAttempts),
		retry.Delay(p.retryDelay()),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			// Empty responses, parse failures and transport errors all share
			// the same policy. Only cancellation stops the attempts early.
			return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
		}),
	)
	if err != nil {
		p.logFailure(word, err)
		return false
	}

	for _, translation := range p.generator.AddWord(word, response) {
		if logErr := p.errorLog.Append(word, "Skipping a translation due to missing meaning key or null value.", translation); logErr != nil {
			slog.Default().Warn("Could not write to error log",
				"word", word,
				"error", logErr,
			)
		}
	}

	if logErr := p.responseLog.Append(word, response.Raw); logErr != nil {
		slog.Default().Warn("Could not write to successful response log",
			"word", word,
			"error", logErr,
		)
	}
	return true
}

func (p *Pipeline) logFailure(word string, err error) {
	var reason string
	rawOutput := ""

	var parseErr *inference.ParseError
	switch {
	case errors.Is(err, inference.ErrEmptyResponse):
		reason = "No content from model after max retries."
	case errors.As(err, &parseErr):
		reason = "Failed to parse model output after max retries."
		rawOutput = parseErr.Raw
	default:
		reason = fmt.Sprintf("Unexpected error after max retries: %v", err)
	}

	slog.Default().Error("Failed to process word",
		"word", word,
		"reason", reason,
	)
	if logErr := p.errorLog.Append(word, reason, rawOutput); logErr != nil {
		slog.Default().Warn("Could not write to error log",
			"word", word,
			"error", logErr,
		)
	}
}
