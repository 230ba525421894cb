// Package geocode resolves free-text addresses to coordinates.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/amarfts/ph-scheduler/platform/apperr"
	"github.com/amarfts/ph-scheduler/platform/config"
	"github.com/amarfts/ph-scheduler/platform/logger"
)

// Coordinates is a resolved latitude/longitude pair.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// Service performs forward geocoding against a Nominatim-compatible endpoint.
type Service struct {
	baseURL      string
	countryCodes string
	client       *http.Client
	log          *logger.Logger
}

// NewService creates a geocoding service.
func NewService(cfg config.GeocodeConfig, log *logger.Logger) *Service {
	return &Service{
		baseURL:      cfg.GetGeocodeBaseURL(),
		countryCodes: cfg.GetGeocodeCountryCodes(),
		client:       &http.Client{Timeout: 5 * time.Second},
		log:          log,
	}
}

type geocodeResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Lookup resolves an address to coordinates. An empty result set is a
// geocoding error.
func (s *Service) Lookup(ctx context.Context, address string) (Coordinates, error) {
	params := url.Values{}
	params.Set("q", address)
	params.Set("format", "json")
	params.Set("limit", "1")
	if s.countryCodes != "" {
		params.Set("countrycodes", s.countryCodes)
	}

	reqURL := fmt.Sprintf("%s?%s", s.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return Coordinates{}, err
	}

	req.Header.Set("User-Agent", "PharmacyScheduler/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		s.log.Error("geocode request failed", "error", err)
		return Coordinates{}, apperr.Geocoding("geocoding service unreachable")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		s.log.Error("geocode upstream error", "status", resp.StatusCode)
		return Coordinates{}, apperr.Geocoding(
			fmt.Sprintf("geocoding service returned status %d", resp.StatusCode))
	}

	var results []geocodeResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return Coordinates{}, apperr.Geocoding("malformed geocoding payload")
	}

	if len(results) == 0 {
		return Coordinates{}, apperr.Geocoding(
			fmt.Sprintf("address %q resolved to no result", address))
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return Coordinates{}, apperr.Geocoding("malformed latitude in geocoding result")
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return Coordinates{}, apperr.Geocoding("malformed longitude in geocoding result")
	}

	return Coordinates{Latitude: lat, Longitude: lon}, nil
}
