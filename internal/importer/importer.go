package importer

import (
	"context"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/urbanplatform/onboarding/internal/sink"
	"github.com/urbanplatform/onboarding/internal/weather"
	"github.com/urbanplatform/onboarding/internal/weather/normalize"
)

// RunResult summarizes one import run for operator visibility.
type RunResult struct {
	RunID     string        `json:"runId"`
	StartedAt time.Time     `json:"startedAt"`
	Duration  time.Duration `json:"durationNs"`
	Fetched   int           `json:"fetched"`
	Imported  int           `json:"imported"`
	Skipped   int           `json:"skipped"`
	Error     string        `json:"error,omitempty"`
}

// RunStore records run results. Implemented by the in-memory store.
type RunStore interface {
	SaveRun(RunResult)
}

// Importer executes one fetch-normalize-deliver cycle per invocation. It
// holds no state between runs other than reporting results to the run store.
type Importer struct {
	provider   weather.Provider
	normalizer *normalize.Normalizer
	sink       sink.Sink
	runs       RunStore
	validate   *validator.Validate
}

// New creates an Importer. The run store may be nil when no history is wanted.
func New(provider weather.Provider, normalizer *normalize.Normalizer, s sink.Sink, runs RunStore) *Importer {
	return &Importer{
		provider:   provider,
		normalizer: normalizer,
		sink:       s,
		runs:       runs,
		validate:   validator.New(),
	}
}

// Run performs a single import. The fetch failing (or being canceled) means
// the normalizer never sees partial data; any failure is reported with its
// typed cause preserved so the caller can decide whether to retry.
func (imp *Importer) Run(ctx context.Context) (RunResult, error) {
	result := RunResult{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}

	err := imp.run(ctx, &result)
	result.Duration = time.Since(result.StartedAt)
	if err != nil {
		result.Error = err.Error()
	}

	if imp.runs != nil {
		imp.runs.SaveRun(result)
	}

	return result, err
}

func (imp *Importer) run(ctx context.Context, result *RunResult) error {
	records, err := imp.provider.Fetch(ctx)
	if err != nil {
		log.Printf("importer: run %s: fetch from %s failed: %v", result.RunID, imp.provider.Name(), err)
		return err
	}
	result.Fetched = len(records)

	for _, raw := range records {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !imp.normalizer.Matches(raw) {
			result.Skipped++
			continue
		}

		obs, err := imp.normalizer.Normalize(raw)
		if err != nil {
			log.Printf("importer: run %s: normalize failed: %v", result.RunID, err)
			return err
		}
		if err := imp.validate.Struct(obs); err != nil {
			return &weather.SchemaMismatchError{Err: err}
		}

		if err := imp.sink.Deliver(ctx, result.RunID, obs); err != nil {
			log.Printf("importer: run %s: deliver %s failed: %v", result.RunID, obs.Name, err)
			return err
		}
		result.Imported++
	}

	log.Printf("importer: run %s: fetched=%d imported=%d skipped=%d", result.RunID, result.Fetched, result.Imported, result.Skipped)
	return nil
}
