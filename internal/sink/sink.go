package sink

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/urbanplatform/onboarding/internal/weather"
)

// ModelName identifies the Smart Data Model of every delivered record.
const ModelName = "weather.WeatherObserved"

var (
	// ErrOpenSink is returned when a sink cannot be constructed.
	ErrOpenSink = errors.New("open sink")
	// ErrDeliver is returned when a record cannot be delivered.
	ErrDeliver = errors.New("deliver record")
)

// Record is the ingestion envelope the data platform expects: the model name
// plus the observation itself.
type Record struct {
	ModelName string              `json:"model_name"`
	Data      weather.Observation `json:"data"`
}

// Sink delivers normalized observations downstream.
type Sink interface {
	// Deliver sends one observation tagged with the run that produced it.
	Deliver(ctx context.Context, runID string, obs weather.Observation) error
	Close() error
}

// Build constructs a sink from configuration.
func Build(sinkType, endpoint string, maxRetries int, backoffBase time.Duration) (Sink, error) {
	switch strings.ToLower(sinkType) {
	case "", "http":
		return NewHTTPSink(endpoint, maxRetries, backoffBase)
	case "stdout":
		return NewStdoutSink(), nil
	default:
		return nil, fmt.Errorf("%w: unknown sink type %q", ErrOpenSink, sinkType)
	}
}
