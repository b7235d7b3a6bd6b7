// Package geo resolves addresses and coordinates through the mapping
// provider and drives the location capture flow used during onboarding
// and profile editing.
package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aroundu/app/internal/models"
)

var ErrNoResult = errors.New("no result for the given location")

const (
	defaultGeocodeEndpoint      = "https://maps.googleapis.com/maps/api/geocode/json"
	defaultAutocompleteEndpoint = "https://maps.googleapis.com/maps/api/place/autocomplete/json"
)

// Suggestion is one autocomplete prediction.
type Suggestion struct {
	Description string
	PlaceID     string
}

// MapsClient calls the Google Maps web services: address autocomplete,
// forward geocoding, and reverse geocoding.
type MapsClient struct {
	APIKey               string
	GeocodeEndpoint      string
	AutocompleteEndpoint string
	HTTPClient           *http.Client
}

func NewMapsClient(apiKey string) *MapsClient {
	return &MapsClient{
		APIKey:               strings.TrimSpace(apiKey),
		GeocodeEndpoint:      defaultGeocodeEndpoint,
		AutocompleteEndpoint: defaultAutocompleteEndpoint,
		HTTPClient: &http.Client{
			Timeout: 8 * time.Second,
		},
	}
}

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

type autocompleteResponse struct {
	Status      string `json:"status"`
	Predictions []struct {
		Description string `json:"description"`
		PlaceID     string `json:"place_id"`
	} `json:"predictions"`
}

func (c *MapsClient) get(ctx context.Context, endpoint string, params url.Values, out interface{}) error {
	params.Set("key", c.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("mapping provider returned status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *MapsClient) geocode(ctx context.Context, params url.Values) (*models.Location, error) {
	var res geocodeResponse
	if err := c.get(ctx, c.GeocodeEndpoint, params, &res); err != nil {
		return nil, err
	}
	if res.Status == "ZERO_RESULTS" || len(res.Results) == 0 {
		return nil, ErrNoResult
	}
	if res.Status != "OK" {
		return nil, fmt.Errorf("mapping provider error: %s", res.Status)
	}

	first := res.Results[0]
	return &models.Location{
		Address:   first.FormattedAddress,
		Latitude:  first.Geometry.Location.Lat,
		Longitude: first.Geometry.Location.Lng,
	}, nil
}

// Geocode resolves a free-text address to coordinates.
func (c *MapsClient) Geocode(ctx context.Context, address string) (*models.Location, error) {
	params := url.Values{}
	params.Set("address", address)
	return c.geocode(ctx, params)
}

// GeocodePlace resolves an autocomplete prediction to coordinates.
func (c *MapsClient) GeocodePlace(ctx context.Context, placeID string) (*models.Location, error) {
	params := url.Values{}
	params.Set("place_id", placeID)
	return c.geocode(ctx, params)
}

// ReverseGeocode resolves coordinates back to a formatted address.
func (c *MapsClient) ReverseGeocode(ctx context.Context, lat, lng float64) (*models.Location, error) {
	params := url.Values{}
	params.Set("latlng", fmt.Sprintf("%f,%f", lat, lng))
	return c.geocode(ctx, params)
}

// Autocomplete returns address predictions for partial user input.
func (c *MapsClient) Autocomplete(ctx context.Context, input string) ([]Suggestion, error) {
	params := url.Values{}
	params.Set("input", input)

	var res autocompleteResponse
	if err := c.get(ctx, c.AutocompleteEndpoint, params, &res); err != nil {
		return nil, err
	}
	if res.Status == "ZERO_RESULTS" {
		return nil, nil
	}
	if res.Status != "OK" {
		return nil, fmt.Errorf("mapping provider error: %s", res.Status)
	}

	suggestions := make([]Suggestion, 0, len(res.Predictions))
	for _, p := range res.Predictions {
		suggestions = append(suggestions, Suggestion{
			Description: p.Description,
			PlaceID:     p.PlaceID,
		})
	}
	return suggestions, nil
}
