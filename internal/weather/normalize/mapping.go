package normalize

import "github.com/urbanplatform/onboarding/internal/weather"

// Converter applies a deterministic unit conversion to a source value.
type Converter func(float64) float64

// Identity keeps the source value unchanged.
func Identity(v float64) float64 { return v }

// FahrenheitToCelsius converts degrees Fahrenheit to degrees Celsius.
func FahrenheitToCelsius(v float64) float64 { return (v - 32) * 5 / 9 }

// PercentToFraction converts a 0-100 percentage to a 0-1 fraction.
func PercentToFraction(v float64) float64 { return v / 100 }

// KmhToMs converts kilometres per hour to metres per second.
func KmhToMs(v float64) float64 { return v / 3.6 }

// Mapping binds one numeric source field to a target field on the normalized
// observation. A nil Convert means the value is taken as-is.
type Mapping struct {
	Source  string
	Convert Converter
	Set     func(*weather.Observation, *float64)
}

// Schema describes how one provider's raw records map onto the WeatherObserved
// shape: which source fields are required, how the timestamp is laid out, and
// the per-field translation table. StationID, Latitude and Longitude are only
// required when the schema names them.
type Schema struct {
	Provider    string
	Timestamp   string
	TimeLayouts []string
	Name        string
	StationID   string
	Latitude    string
	Longitude   string
	Fields      []Mapping
}

// aemetTimeLayout is AEMET's zoneless timestamp format; values are UTC.
const aemetTimeLayout = "2006-01-02T15:04:05"

// AEMETSchema returns the translation table for AEMET conventional
// observation records.
func AEMETSchema() Schema {
	return Schema{
		Provider:    "AEMET",
		Timestamp:   "fint",
		TimeLayouts: []string{aemetTimeLayout},
		Name:        "ubi",
		StationID:   "idema",
		Latitude:    "lat",
		Longitude:   "lon",
		Fields: []Mapping{
			{Source: "ta", Set: func(o *weather.Observation, v *float64) { o.Temperature = v }},
			{Source: "tamin", Set: func(o *weather.Observation, v *float64) { o.TemperatureMinimum = v }},
			{Source: "tamax", Set: func(o *weather.Observation, v *float64) { o.TemperatureMaximum = v }},
			{Source: "pres", Set: func(o *weather.Observation, v *float64) { o.AtmosphericPressure = v }},
			{Source: "pres_nmar", Set: func(o *weather.Observation, v *float64) { o.PressureSeaLevel = v }},
			{Source: "hr", Convert: PercentToFraction, Set: func(o *weather.Observation, v *float64) { o.RelativeHumidity = v }},
			{Source: "vmax", Set: func(o *weather.Observation, v *float64) { o.WindSpeed = v }},
			{Source: "dv", Set: func(o *weather.Observation, v *float64) { o.WindDirection = v }},
			{Source: "nieve", Set: func(o *weather.Observation, v *float64) { o.SnowHeight = v }},
			{Source: "prec", Set: func(o *weather.Observation, v *float64) { o.Precipitation = v }},
		},
	}
}
