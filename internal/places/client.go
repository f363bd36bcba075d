// Package places resolves an item's postal address to nearby locations able
// to receive redistributed stock. Both external calls are wrapped in a
// circuit breaker and bulkhead; failures surface as errors for the caller to
// render inline, never as panics.
package places

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-resty/resty/v2"
	log "github.com/sirupsen/logrus"

	"github.com/shelfaware/shelfaware/internal/metrics"
	"github.com/shelfaware/shelfaware/internal/models"
	"github.com/shelfaware/shelfaware/internal/patterns"
)

// DefaultTypeFilter is the set of destination categories searched
const DefaultTypeFilter = "supermarket|store|church|school|mosque|hindu_temple|synagogue|food_bank"

// DefaultRadiusMeters is the search radius around the item's address
const DefaultRadiusMeters = 3000

// ErrGeocodeFailed is returned when the address could not be resolved
var ErrGeocodeFailed = errors.New("could not geocode address")

// ErrPlacesFailed is returned when the nearby-places lookup failed
var ErrPlacesFailed = errors.New("could not fetch nearby places")

// Client calls the geocoding and nearby-places collaborators
type Client struct {
	http       *resty.Client
	geocodeURL string
	placesURL  string
	apiKey     string
	circuit    *patterns.CircuitBreakerWrapper
	bulkhead   *patterns.Bulkhead
}

// NewClient creates a places client. Each request is attempted exactly once;
// there is no retry policy.
func NewClient(geocodeURL, placesURL, apiKey string) *Client {
	return &Client{
		http: resty.New().
			SetTimeout(patterns.DefaultTimeout).
			SetRetryCount(0),
		geocodeURL: geocodeURL,
		placesURL:  placesURL,
		apiKey:     apiKey,
		circuit:    patterns.NewCircuitBreaker("Places", "shelfaware"),
		bulkhead:   patterns.NewBulkhead(10, "places", "shelfaware"),
	}
}

type geometry struct {
	Location models.LatLng `json:"location"`
}

type geocodeResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		Geometry geometry `json:"geometry"`
	} `json:"results"`
}

type placesResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		Name     string   `json:"name"`
		Vicinity string   `json:"vicinity"`
		PlaceID  string   `json:"place_id"`
		Geometry geometry `json:"geometry"`
	} `json:"results"`
}

// Geocode resolves a free-text address to coordinates
func (c *Client) Geocode(address string) (models.LatLng, error) {
	var loc models.LatLng

	err := c.bulkhead.Execute(func() error {
		_, cbErr := c.circuit.Execute(func() (interface{}, error) {
			resp, httpErr := c.http.R().
				SetQueryParam("address", address).
				SetQueryParam("key", c.apiKey).
				Get(c.geocodeURL)
			if httpErr != nil {
				return nil, fmt.Errorf("HTTP error: %w", httpErr)
			}
			if resp.StatusCode() != http.StatusOK {
				return nil, fmt.Errorf("geocoding service returned status %d", resp.StatusCode())
			}

			var body geocodeResponse
			if err := json.Unmarshal(resp.Body(), &body); err != nil {
				return nil, fmt.Errorf("failed to parse response: %w", err)
			}
			if body.Status != "OK" || len(body.Results) == 0 {
				return nil, fmt.Errorf("geocoding status %s: %s", body.Status, body.ErrorMessage)
			}

			loc = body.Results[0].Geometry.Location
			return nil, nil
		})
		return patterns.FormatError("Places", cbErr)
	})

	if err != nil {
		metrics.ExternalCallFailures.WithLabelValues("geocoding").Inc()
		log.WithFields(log.Fields{
			"address": address,
			"error":   err.Error(),
		}).Warn("Geocoding failed")
		return models.LatLng{}, fmt.Errorf("%w: %v", ErrGeocodeFailed, err)
	}
	return loc, nil
}

// Nearby finds destinations around the coordinates, filtered by category and
// radius. A failing call returns an empty list alongside the error.
func (c *Client) Nearby(loc models.LatLng, typeFilter string, radiusMeters int) ([]models.Destination, error) {
	if typeFilter == "" {
		typeFilter = DefaultTypeFilter
	}
	if radiusMeters <= 0 {
		radiusMeters = DefaultRadiusMeters
	}

	var destinations []models.Destination

	err := c.bulkhead.Execute(func() error {
		_, cbErr := c.circuit.Execute(func() (interface{}, error) {
			resp, httpErr := c.http.R().
				SetQueryParam("lat", strconv.FormatFloat(loc.Lat, 'f', -1, 64)).
				SetQueryParam("lng", strconv.FormatFloat(loc.Lng, 'f', -1, 64)).
				SetQueryParam("type", typeFilter).
				SetQueryParam("radius", strconv.Itoa(radiusMeters)).
				SetQueryParam("key", c.apiKey).
				Get(c.placesURL)
			if httpErr != nil {
				return nil, fmt.Errorf("HTTP error: %w", httpErr)
			}
			if resp.StatusCode() != http.StatusOK {
				return nil, fmt.Errorf("places service returned status %d", resp.StatusCode())
			}

			var body placesResponse
			if err := json.Unmarshal(resp.Body(), &body); err != nil {
				return nil, fmt.Errorf("failed to parse response: %w", err)
			}
			if body.Status != "OK" {
				return nil, fmt.Errorf("places status %s: %s", body.Status, body.ErrorMessage)
			}

			for _, p := range body.Results {
				destinations = append(destinations, models.Destination{
					Name:     p.Name,
					Address:  p.Vicinity,
					PlaceID:  p.PlaceID,
					Location: p.Geometry.Location,
				})
			}
			return nil, nil
		})
		return patterns.FormatError("Places", cbErr)
	})

	if err != nil {
		metrics.ExternalCallFailures.WithLabelValues("places").Inc()
		log.WithFields(log.Fields{
			"lat":   loc.Lat,
			"lng":   loc.Lng,
			"error": err.Error(),
		}).Warn("Nearby places lookup failed")
		return nil, fmt.Errorf("%w: %v", ErrPlacesFailed, err)
	}
	return destinations, nil
}
