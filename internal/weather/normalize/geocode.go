package normalize

import "github.com/kelvins/geocoder"

// Geocoder resolves coordinates into a human-readable address.
type Geocoder interface {
	ReverseGeocode(lat, lon float64) (string, error)
}

// GoogleGeocoder reverse-geocodes through the Google Geocoding API.
type GoogleGeocoder struct{}

// NewGoogleGeocoder configures the geocoder API key and returns a Geocoder.
func NewGoogleGeocoder(apiKey string) *GoogleGeocoder {
	geocoder.ApiKey = apiKey
	return &GoogleGeocoder{}
}

// ReverseGeocode returns the formatted address closest to the coordinates, or
// an empty string when the API has no match.
func (g *GoogleGeocoder) ReverseGeocode(lat, lon float64) (string, error) {
	addresses, err := geocoder.GeocodingReverse(geocoder.Location{
		Latitude:  lat,
		Longitude: lon,
	})
	if err != nil {
		return "", err
	}
	if len(addresses) == 0 {
		return "", nil
	}
	addr := addresses[0]
	return addr.FormatAddress(), nil
}
