package normalize

import (
	"math"
	"reflect"
	"testing"

	"github.com/urbanplatform/onboarding/internal/weather"
)

// aemetRecord returns a station record shaped like the AEMET open data
// response.
func aemetRecord() weather.RawObservation {
	return weather.RawObservation{
		"idema":     "5530E",
		"lon":       -3.789774,
		"lat":       37.190292,
		"fint":      "2023-06-29T20:00:00",
		"ubi":       "GRANADA/AEROPUERTO",
		"prec":      0.0,
		"vmax":      7.7,
		"dv":        270.0,
		"pres":      948.9,
		"hr":        31.0,
		"pres_nmar": 1010.7,
		"tamin":     31.8,
		"ta":        31.9,
		"tamax":     33.8,
	}
}

func TestNormalizeAEMETRecord(t *testing.T) {
	n := New(AEMETSchema(), WithCityFilter("GRANADA"), WithSource("https://opendata.example/todas"))

	raw := aemetRecord()
	if !n.Matches(raw) {
		t.Fatal("expected GRANADA record to match GRANADA filter")
	}

	obs, err := n.Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	if obs.Name != "GRANADA-WO-5530E" {
		t.Errorf("name: got %q", obs.Name)
	}
	if obs.DateObserved != "2023-06-29T20:00:00Z" {
		t.Errorf("dateObserved: got %q", obs.DateObserved)
	}
	if obs.AreaServed != "GRANADA/AEROPUERTO" {
		t.Errorf("areaServed: got %q", obs.AreaServed)
	}
	if obs.DataProvider != "AEMET" {
		t.Errorf("dataProvider: got %q", obs.DataProvider)
	}
	if obs.Source != "https://opendata.example/todas" {
		t.Errorf("source: got %q", obs.Source)
	}

	if obs.Location == nil {
		t.Fatal("location: got nil")
	}
	if obs.Location.Type != "Point" || obs.Location.Coordinates != [2]float64{-3.789774, 37.190292} {
		t.Errorf("location: got %+v", obs.Location)
	}

	if obs.Temperature == nil || *obs.Temperature != 31.9 {
		t.Errorf("temperature: got %v", obs.Temperature)
	}
	if obs.RelativeHumidity == nil || *obs.RelativeHumidity != 31.0/100 {
		t.Errorf("relativeHumidity: got %v", obs.RelativeHumidity)
	}
	if obs.WindSpeed == nil || *obs.WindSpeed != 7.7 {
		t.Errorf("windSpeed: got %v", obs.WindSpeed)
	}

	// "nieve" is absent from the record, so snow height must be an
	// explicit null, not a zero.
	if obs.SnowHeight != nil {
		t.Errorf("snowHeight: expected nil, got %v", *obs.SnowHeight)
	}
}

func TestNormalizeIsDeterministic(t *testing.T) {
	n := New(AEMETSchema(), WithCityFilter("GRANADA"))

	first, err := n.Normalize(aemetRecord())
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	second, err := n.Normalize(aemetRecord())
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("same input produced different outputs:\n%+v\n%+v", first, second)
	}
}

func TestNormalizeMissingTimestamp(t *testing.T) {
	n := New(AEMETSchema())

	raw := aemetRecord()
	delete(raw, "fint")

	_, err := n.Normalize(raw)
	if !weather.IsSchemaMismatch(err) {
		t.Fatalf("expected SchemaMismatchError, got %v", err)
	}
}

func TestNormalizeNonNumericTemperature(t *testing.T) {
	n := New(AEMETSchema())

	raw := aemetRecord()
	raw["ta"] = "hot"

	_, err := n.Normalize(raw)
	if !weather.IsSchemaMismatch(err) {
		t.Fatalf("expected SchemaMismatchError, got %v", err)
	}
}

func TestNormalizeUnparseableTimestamp(t *testing.T) {
	n := New(AEMETSchema())

	raw := aemetRecord()
	raw["fint"] = "29/06/2023 20:00"

	_, err := n.Normalize(raw)
	if !weather.IsSchemaMismatch(err) {
		t.Fatalf("expected SchemaMismatchError, got %v", err)
	}
}

func TestCityFilter(t *testing.T) {
	n := New(AEMETSchema(), WithCityFilter("MADRID"))

	cases := []struct {
		name string
		want bool
	}{
		{"MADRID-RETIRO", true},
		{"MADRID/BARAJAS", true},
		{"madrid/centro", true},
		{"GRANADA/AEROPUERTO", false},
		{"", false},
	}

	for _, tc := range cases {
		raw := aemetRecord()
		raw["ubi"] = tc.name
		if got := n.Matches(raw); got != tc.want {
			t.Errorf("Matches(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}

// TestNormalizeGenericProvider exercises a minimal provider schema with unit
// conversions: Fahrenheit temperatures and a plain city name instead of
// station metadata.
func TestNormalizeGenericProvider(t *testing.T) {
	schema := Schema{
		Provider:  "testwx",
		Timestamp: "ts",
		Name:      "city",
		Fields: []Mapping{
			{Source: "temp_f", Convert: FahrenheitToCelsius, Set: func(o *weather.Observation, v *float64) { o.Temperature = v }},
			{Source: "humidity_pct", Set: func(o *weather.Observation, v *float64) { o.RelativeHumidity = v }},
		},
	}
	n := New(schema)

	obs, err := n.Normalize(weather.RawObservation{
		"temp_f":       68.0,
		"humidity_pct": 55.0,
		"ts":           "2024-03-01T10:00:00Z",
		"city":         "Madrid",
	})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	if obs.Temperature == nil || *obs.Temperature != 20.0 {
		t.Errorf("temperature: got %v, want 20.0", obs.Temperature)
	}
	if obs.RelativeHumidity == nil || *obs.RelativeHumidity != 55.0 {
		t.Errorf("humidity: got %v, want 55", obs.RelativeHumidity)
	}
	if obs.DateObserved != "2024-03-01T10:00:00Z" {
		t.Errorf("dateObserved: got %q", obs.DateObserved)
	}
	if obs.Name != "Madrid" {
		t.Errorf("name: got %q", obs.Name)
	}
	if obs.DataProvider != "testwx" {
		t.Errorf("dataProvider: got %q", obs.DataProvider)
	}
}

func TestConverters(t *testing.T) {
	if got := FahrenheitToCelsius(32); got != 0 {
		t.Errorf("FahrenheitToCelsius(32) = %v", got)
	}
	if got := PercentToFraction(55); got != 0.55 {
		t.Errorf("PercentToFraction(55) = %v", got)
	}
	if got := KmhToMs(36); math.Abs(got-10) > 1e-9 {
		t.Errorf("KmhToMs(36) = %v", got)
	}
}
