package normalize

import (
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/urbanplatform/onboarding/internal/weather"
)

// locationSeparators splits provider station names like "GRANADA/AEROPUERTO"
// or "MADRID-RETIRO" into their leading place name.
var locationSeparators = regexp.MustCompile(`[-/]`)

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithCityFilter limits normalization to stations whose name's leading
// segment matches the given city (case-insensitive).
func WithCityFilter(city string) Option {
	return func(n *Normalizer) { n.city = city }
}

// WithGeocoder enables reverse geocoding of station coordinates into a
// street address.
func WithGeocoder(g Geocoder) Option {
	return func(n *Normalizer) { n.geocoder = g }
}

// WithSource sets the provenance source URL stamped on every record.
func WithSource(source string) Option {
	return func(n *Normalizer) { n.source = source }
}

// Normalizer maps raw provider records onto the WeatherObserved shape using a
// provider schema. It is deterministic: the output depends only on the input
// record and the schema, never on the clock.
type Normalizer struct {
	schema   Schema
	city     string
	source   string
	geocoder Geocoder
}

// New creates a Normalizer for the given provider schema.
func New(schema Schema, opts ...Option) *Normalizer {
	n := &Normalizer{schema: schema}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Matches reports whether the raw record belongs to the configured city.
// Without a city filter every record matches.
func (n *Normalizer) Matches(raw weather.RawObservation) bool {
	if n.city == "" {
		return true
	}
	name, ok := raw[n.schema.Name].(string)
	if !ok {
		return false
	}
	segments := locationSeparators.Split(name, -1)
	return strings.EqualFold(segments[0], n.city)
}

// Normalize produces one WeatherObserved record from a raw provider record.
// Required fields (timestamp, station name, and station id / coordinates when
// the schema names them) fail with a SchemaMismatchError; every other field
// defaults to the schema's null representation.
func (n *Normalizer) Normalize(raw weather.RawObservation) (weather.Observation, error) {
	obs := weather.Observation{
		DataProvider: n.schema.Provider,
		Source:       n.source,
	}

	name, err := requireString(raw, n.schema.Name)
	if err != nil {
		return weather.Observation{}, err
	}
	obs.AreaServed = name

	ts, err := n.normalizeTimestamp(raw)
	if err != nil {
		return weather.Observation{}, err
	}
	obs.DateObserved = ts

	// Record names follow the original importer convention:
	// <place>-WO-<station id>, falling back to the place alone when the
	// provider has no station identifiers.
	place := n.city
	if place == "" {
		place = locationSeparators.Split(name, -1)[0]
	}
	obs.Name = place

	if n.schema.StationID != "" {
		id, err := requireString(raw, n.schema.StationID)
		if err != nil {
			return weather.Observation{}, err
		}
		obs.Name = fmt.Sprintf("%s-WO-%s", place, id)
	}

	if n.schema.Latitude != "" && n.schema.Longitude != "" {
		lat, err := requireNumber(raw, n.schema.Latitude)
		if err != nil {
			return weather.Observation{}, err
		}
		lon, err := requireNumber(raw, n.schema.Longitude)
		if err != nil {
			return weather.Observation{}, err
		}
		obs.Location = weather.NewGeoPoint(lon, lat)

		if n.geocoder != nil {
			// Address is enrichment only; a geocoder failure never
			// fails the record.
			addr, err := n.geocoder.ReverseGeocode(lat, lon)
			if err != nil {
				log.Printf("normalize: reverse geocoding failed for %s: %v", obs.Name, err)
			} else {
				obs.Address = addr
			}
		}
	}

	for _, m := range n.schema.Fields {
		v, ok, err := optionalNumber(raw, m.Source)
		if err != nil {
			return weather.Observation{}, err
		}
		if !ok {
			m.Set(&obs, nil)
			continue
		}
		if m.Convert != nil {
			v = m.Convert(v)
		}
		m.Set(&obs, &v)
	}

	return obs, nil
}

// normalizeTimestamp parses the source timestamp field and renders it as UTC
// RFC3339. Zoneless layouts are taken as UTC.
func (n *Normalizer) normalizeTimestamp(raw weather.RawObservation) (string, error) {
	s, err := requireString(raw, n.schema.Timestamp)
	if err != nil {
		return "", err
	}

	layouts := append([]string{time.RFC3339}, n.schema.TimeLayouts...)
	for _, layout := range layouts {
		ts, parseErr := time.ParseInLocation(layout, s, time.UTC)
		if parseErr == nil {
			return ts.UTC().Format(time.RFC3339), nil
		}
	}

	return "", &weather.SchemaMismatchError{
		Field: n.schema.Timestamp,
		Err:   fmt.Errorf("unparseable timestamp %q", s),
	}
}

func requireString(raw weather.RawObservation, field string) (string, error) {
	v, ok := raw[field]
	if !ok || v == nil {
		return "", &weather.SchemaMismatchError{Field: field, Err: errors.New("required field missing")}
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", &weather.SchemaMismatchError{Field: field, Err: fmt.Errorf("expected non-empty string, got %T", v)}
	}
	return s, nil
}

func requireNumber(raw weather.RawObservation, field string) (float64, error) {
	v, ok, err := optionalNumber(raw, field)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, &weather.SchemaMismatchError{Field: field, Err: errors.New("required field missing")}
	}
	return v, nil
}

// optionalNumber returns the numeric value of a field. Absent or null fields
// report ok=false; present but non-numeric values are a schema mismatch.
func optionalNumber(raw weather.RawObservation, field string) (float64, bool, error) {
	v, ok := raw[field]
	if !ok || v == nil {
		return 0, false, nil
	}
	switch x := v.(type) {
	case float64:
		return x, true, nil
	case int:
		return float64(x), true, nil
	default:
		return 0, false, &weather.SchemaMismatchError{Field: field, Err: fmt.Errorf("expected number, got %T", v)}
	}
}
