package weather

import "context"

// Provider abstracts a weather data source (e.g. AEMET open data). A single
// Fetch performs one logical outbound request and returns the raw station
// records for that tick, or a typed fetch failure.
type Provider interface {
	Name() string
	Fetch(ctx context.Context) ([]RawObservation, error)
}
