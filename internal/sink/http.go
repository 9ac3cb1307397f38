package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/urbanplatform/onboarding/internal/weather"
)

// HTTPSink posts records to the data platform ingestion endpoint.
type HTTPSink struct {
	url         string
	client      *http.Client
	maxRetries  int
	backoffBase time.Duration
}

// NewHTTPSink creates an HTTP sink. Retry count and backoff base come from
// deployment configuration.
func NewHTTPSink(url string, maxRetries int, backoffBase time.Duration) (*HTTPSink, error) {
	if url == "" {
		return nil, fmt.Errorf("%w: URL required for http sink", ErrOpenSink)
	}
	if backoffBase <= 0 {
		backoffBase = 100 * time.Millisecond
	}

	return &HTTPSink{
		url:         url,
		maxRetries:  maxRetries,
		backoffBase: backoffBase,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// Deliver posts one observation, retrying transient failures with
// exponential backoff.
func (hs *HTTPSink) Deliver(ctx context.Context, runID string, obs weather.Observation) error {
	data, err := json.Marshal(Record{ModelName: ModelName, Data: obs})
	if err != nil {
		return fmt.Errorf("%w: marshal: %v", ErrDeliver, err)
	}

	var lastErr error
	for attempt := 0; attempt <= hs.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, hs.url, bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("%w: create request: %v", ErrDeliver, err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Run-ID", runID)

		resp, err := hs.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = &weather.TransientError{Op: "deliver", Err: err}
			if !hs.wait(ctx, attempt) {
				return ctx.Err()
			}
			continue
		}

		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return nil
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			lastErr = &weather.TransientError{Op: "deliver", Err: fmt.Errorf("%w: status %d", ErrDeliver, resp.StatusCode)}
			if !hs.wait(ctx, attempt) {
				return ctx.Err()
			}
		default:
			// 4xx from the platform means the record (or our
			// credentials) are wrong; retrying cannot help.
			return &weather.PermanentError{Op: "deliver", Err: fmt.Errorf("%w: status %d", ErrDeliver, resp.StatusCode)}
		}
	}

	return lastErr
}

// wait sleeps for the attempt's backoff delay, honoring cancellation. It
// reports false when the context ended first.
func (hs *HTTPSink) wait(ctx context.Context, attempt int) bool {
	if attempt >= hs.maxRetries {
		return true
	}
	timer := time.NewTimer(hs.backoffBase * time.Duration(1<<attempt))
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// Close releases idle connections.
func (hs *HTTPSink) Close() error {
	if hs.client != nil {
		hs.client.CloseIdleConnections()
	}
	return nil
}

var _ Sink = (*HTTPSink)(nil)
