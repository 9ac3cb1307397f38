package providers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/urbanplatform/onboarding/internal/weather"
)

// DefaultAEMETEndpoint is the conventional-observation endpoint of the AEMET
// open data API, covering all stations in Spain.
const DefaultAEMETEndpoint = "https://opendata.aemet.es/opendata/api/observacion/convencional/todas"

// AEMETProvider implements weather.Provider for the AEMET open data API.
//
// AEMET answers in two steps: the authenticated endpoint returns a small
// envelope whose "datos" field carries a short-lived URL, and that URL serves
// the actual array of station observations.
type AEMETProvider struct {
	name     string
	apiKey   string
	endpoint string
	client   *http.Client
	circuit  *gobreaker.CircuitBreaker
}

// NewAEMETProvider creates an AEMET provider. An empty endpoint falls back to
// the public open data URL.
func NewAEMETProvider(client *http.Client, endpoint, apiKey string) *AEMETProvider {
	if endpoint == "" {
		endpoint = DefaultAEMETEndpoint
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "aemet",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &AEMETProvider{
		name:     "AEMET",
		apiKey:   apiKey,
		endpoint: endpoint,
		client:   client,
		circuit:  cb,
	}
}

func (p *AEMETProvider) Name() string {
	return p.name
}

// Endpoint returns the configured observation URL, used as the provenance
// source on normalized records.
func (p *AEMETProvider) Endpoint() string {
	return p.endpoint
}

// Fetch performs the two-step AEMET request and returns all station records.
func (p *AEMETProvider) Fetch(ctx context.Context) ([]weather.RawObservation, error) {
	if p.apiKey == "" {
		return nil, &weather.PermanentError{Op: "fetch aemet", Err: errors.New("api key is not configured")}
	}

	req, err := http.NewRequest(http.MethodGet, p.endpoint, nil)
	if err != nil {
		return nil, &weather.PermanentError{Op: "fetch aemet", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api_key", p.apiKey)

	resp, err := doRequest(ctx, p.client, p.circuit, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var envelope struct {
		Descripcion string `json:"descripcion"`
		Estado      int    `json:"estado"`
		Datos       string `json:"datos"`
		Metadatos   string `json:"metadatos"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, &weather.SchemaMismatchError{Err: err}
	}
	if envelope.Datos == "" {
		return nil, &weather.SchemaMismatchError{Field: "datos", Err: errors.New("envelope carries no data url")}
	}

	// The data URL is pre-signed; no api_key header on the second hop.
	dataReq, err := http.NewRequest(http.MethodGet, envelope.Datos, nil)
	if err != nil {
		return nil, &weather.PermanentError{Op: "fetch aemet data", Err: err}
	}

	dataResp, err := doRequest(ctx, p.client, p.circuit, dataReq)
	if err != nil {
		return nil, err
	}
	defer dataResp.Body.Close()

	var records []weather.RawObservation
	if err := json.NewDecoder(dataResp.Body).Decode(&records); err != nil {
		return nil, &weather.SchemaMismatchError{Err: err}
	}

	return records, nil
}
