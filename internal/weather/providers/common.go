package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/sony/gobreaker"

	"github.com/urbanplatform/onboarding/internal/weather"
)

var (
	errRateLimited = errors.New("rate limited by provider")
	errServerError = errors.New("provider server error")
	errAuthFailed  = errors.New("authentication rejected")
	errUnexpected  = errors.New("unexpected status code")
	errNoClient    = errors.New("http client not configured")
)

// doRequest executes one HTTP request through the circuit breaker and
// classifies the outcome into the transient/permanent taxonomy. Retrying is
// deliberately not done here; retry policy belongs to the scheduler
// configuration, not to the fetch path.
func doRequest(ctx context.Context, client *http.Client, cb *gobreaker.CircuitBreaker, req *http.Request) (*http.Response, error) {
	if client == nil {
		return nil, &weather.PermanentError{Op: "fetch", Err: errNoClient}
	}

	req = req.WithContext(ctx)

	result, err := cb.Execute(func() (interface{}, error) {
		resp, execErr := client.Do(req)
		if execErr != nil {
			return nil, execErr
		}

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			resp.Body.Close()
			return nil, errRateLimited
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			resp.Body.Close()
			return nil, errAuthFailed
		case resp.StatusCode >= 500:
			resp.Body.Close()
			return nil, fmt.Errorf("%w: %d", errServerError, resp.StatusCode)
		case resp.StatusCode < 200 || resp.StatusCode >= 300:
			resp.Body.Close()
			return nil, fmt.Errorf("%w: %d", errUnexpected, resp.StatusCode)
		}

		return resp, nil
	})

	if err != nil {
		return nil, classify(ctx, req.URL.Host, err)
	}

	resp, ok := result.(*http.Response)
	if !ok {
		return nil, &weather.PermanentError{Op: "fetch", Err: fmt.Errorf("unexpected result type from circuit breaker")}
	}
	return resp, nil
}

// classify maps a raw request failure onto the typed error taxonomy.
func classify(ctx context.Context, host string, err error) error {
	op := fmt.Sprintf("fetch %s", host)

	switch {
	case ctx.Err() != nil:
		// Cancellation wins over whatever the transport reported.
		return ctx.Err()
	case errors.Is(err, errAuthFailed), errors.Is(err, errUnexpected):
		return &weather.PermanentError{Op: op, Err: err}
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return &weather.TransientError{Op: op, Err: err}
	default:
		// Rate limiting, 5xx and transport-level failures clear on their own.
		return &weather.TransientError{Op: op, Err: err}
	}
}
