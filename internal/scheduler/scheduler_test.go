package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/urbanplatform/onboarding/internal/importer"
	"github.com/urbanplatform/onboarding/internal/sink"
	"github.com/urbanplatform/onboarding/internal/weather"
	"github.com/urbanplatform/onboarding/internal/weather/normalize"
)

// flakyProvider fails with the given error until the configured number of
// failures is spent, then succeeds with an empty record set.
type flakyProvider struct {
	failures int
	err      error
	calls    int
}

func (f *flakyProvider) Name() string { return "flaky" }

func (f *flakyProvider) Fetch(ctx context.Context) ([]weather.RawObservation, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, f.err
	}
	return nil, nil
}

func newTestScheduler(p weather.Provider, maxRetries int) *Scheduler {
	n := normalize.New(normalize.AEMETSchema())
	imp := importer.New(p, n, sink.NewWriterSink(discard{}), nil)
	return New(imp, Config{
		CronExpr:     "*/15 * * * *",
		RunTimeout:   time.Second,
		MaxRetries:   maxRetries,
		RetryBackoff: time.Millisecond,
	})
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func TestRunRetriesTransientFailures(t *testing.T) {
	p := &flakyProvider{
		failures: 2,
		err:      &weather.TransientError{Op: "fetch", Err: errors.New("timeout")},
	}

	s := newTestScheduler(p, 3)
	s.RunNow()

	if p.calls != 3 {
		t.Errorf("expected 3 attempts (2 failures + success), got %d", p.calls)
	}
}

func TestRunStopsAtMaxRetries(t *testing.T) {
	p := &flakyProvider{
		failures: 10,
		err:      &weather.TransientError{Op: "fetch", Err: errors.New("timeout")},
	}

	s := newTestScheduler(p, 2)
	s.RunNow()

	if p.calls != 3 {
		t.Errorf("expected 3 attempts (initial + 2 retries), got %d", p.calls)
	}
}

func TestRunDoesNotRetryPermanentFailures(t *testing.T) {
	p := &flakyProvider{
		failures: 10,
		err:      &weather.PermanentError{Op: "fetch", Err: errors.New("bad key")},
	}

	s := newTestScheduler(p, 3)
	s.RunNow()

	if p.calls != 1 {
		t.Errorf("expected a single attempt for a permanent failure, got %d", p.calls)
	}
}

func TestRunDoesNotRetrySchemaMismatch(t *testing.T) {
	p := &flakyProvider{
		failures: 10,
		err:      &weather.SchemaMismatchError{Field: "datos", Err: errors.New("missing")},
	}

	s := newTestScheduler(p, 3)
	s.RunNow()

	if p.calls != 1 {
		t.Errorf("expected a single attempt for a schema mismatch, got %d", p.calls)
	}
}
