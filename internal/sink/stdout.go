package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/urbanplatform/onboarding/internal/weather"
)

// StdoutSink writes records as JSON lines, one per observation. Useful for
// dry runs against a real provider without a platform endpoint.
type StdoutSink struct {
	w io.Writer
}

// NewStdoutSink creates a sink writing to standard output.
func NewStdoutSink() *StdoutSink {
	return &StdoutSink{w: os.Stdout}
}

// NewWriterSink creates a sink writing to an arbitrary writer.
func NewWriterSink(w io.Writer) *StdoutSink {
	return &StdoutSink{w: w}
}

func (s *StdoutSink) Deliver(_ context.Context, _ string, obs weather.Observation) error {
	data, err := json.Marshal(Record{ModelName: ModelName, Data: obs})
	if err != nil {
		return fmt.Errorf("%w: marshal: %v", ErrDeliver, err)
	}
	if _, err := fmt.Fprintln(s.w, string(data)); err != nil {
		return fmt.Errorf("%w: write: %v", ErrDeliver, err)
	}
	return nil
}

func (s *StdoutSink) Close() error { return nil }

var _ Sink = (*StdoutSink)(nil)
