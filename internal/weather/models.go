package weather

// RawObservation is one station record exactly as decoded from a provider
// response. It only lives for the duration of a single import run.
type RawObservation map[string]any

// GeoPoint is a GeoJSON point. Coordinates are [longitude, latitude].
type GeoPoint struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

// NewGeoPoint builds a GeoJSON point from a lon/lat pair.
func NewGeoPoint(lon, lat float64) *GeoPoint {
	return &GeoPoint{
		Type:        "Point",
		Coordinates: [2]float64{lon, lat},
	}
}

// Observation is a normalized weather observation following the Smart Data
// Models WeatherObserved schema. Optional numeric fields are pointers so that
// values absent at the source serialize as explicit nulls rather than being
// omitted.
type Observation struct {
	Name                string    `json:"name" validate:"required"`
	Location            *GeoPoint `json:"location"`
	Address             string    `json:"address"`
	AreaServed          string    `json:"areaServed"`
	Temperature         *float64  `json:"temperature"`
	TemperatureMinimum  *float64  `json:"temperatureMinimum"`
	TemperatureMaximum  *float64  `json:"temperatureMaximum"`
	AtmosphericPressure *float64  `json:"atmosphericPressure"`
	PressureSeaLevel    *float64  `json:"atmosphericPressureSeaLevel"`
	RelativeHumidity    *float64  `json:"relativeHumidity" validate:"omitempty,gte=0"`
	WindSpeed           *float64  `json:"windSpeed" validate:"omitempty,gte=0"`
	WindDirection       *float64  `json:"windDirection" validate:"omitempty,gte=0,lte=360"`
	SnowHeight          *float64  `json:"snowHeight"`
	Precipitation       *float64  `json:"rainTotalSum10"`
	DateObserved        string    `json:"dateObserved" validate:"required"`
	DataProvider        string    `json:"dataProvider" validate:"required"`
	Source              string    `json:"source"`
}
