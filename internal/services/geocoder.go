package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"devcamper/internal/domain/models"

	"github.com/hashicorp/go-retryablehttp"
	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

// ErrNoGeocodeMatch is returned when the provider has no result for an address.
var ErrNoGeocodeMatch = errors.New("geocoder: no match")

// Geocoder resolves a free-form address or zipcode into a located point.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (models.Location, error)
}

const mapQuestEndpoint = "https://www.mapquestapi.com/geocoding/v1/address"

// MapQuestGeocoder calls the MapQuest address endpoint with retries.
type MapQuestGeocoder struct {
	APIKey   string
	Endpoint string
	Client   *retryablehttp.Client
}

func NewMapQuestGeocoder(apiKey string) *MapQuestGeocoder {
	client := retryablehttp.NewClient()
	client.RetryMax = 2
	client.RetryWaitMin = 200 * time.Millisecond
	client.RetryWaitMax = 2 * time.Second
	client.HTTPClient.Timeout = 5 * time.Second
	client.Logger = nil
	return &MapQuestGeocoder{APIKey: apiKey, Endpoint: mapQuestEndpoint, Client: client}
}

type mapQuestResponse struct {
	Results []struct {
		Locations []struct {
			Street     string `json:"street"`
			AdminArea5 string `json:"adminArea5"` // city
			AdminArea3 string `json:"adminArea3"` // state
			AdminArea1 string `json:"adminArea1"` // country
			PostalCode string `json:"postalCode"`
			LatLng     struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"latLng"`
		} `json:"locations"`
	} `json:"results"`
}

func (g *MapQuestGeocoder) Geocode(ctx context.Context, address string) (models.Location, error) {
	endpoint := g.Endpoint
	if endpoint == "" {
		endpoint = mapQuestEndpoint
	}
	q := url.Values{}
	q.Set("key", g.APIKey)
	q.Set("location", address)
	q.Set("maxResults", "1")

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return models.Location{}, err
	}
	resp, err := g.Client.Do(req)
	if err != nil {
		return models.Location{}, fmt.Errorf("geocoder request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return models.Location{}, fmt.Errorf("geocoder status %d", resp.StatusCode)
	}

	var body mapQuestResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return models.Location{}, fmt.Errorf("geocoder decode: %w", err)
	}
	if len(body.Results) == 0 || len(body.Results[0].Locations) == 0 {
		return models.Location{}, ErrNoGeocodeMatch
	}
	m := body.Results[0].Locations[0]
	if m.LatLng.Lat == 0 && m.LatLng.Lng == 0 {
		return models.Location{}, ErrNoGeocodeMatch
	}

	parts := []string{}
	for _, p := range []string{m.Street, m.AdminArea5, strings.TrimSpace(m.AdminArea3 + " " + m.PostalCode), m.AdminArea1} {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, p)
		}
	}
	return models.Location{
		Type:             "Point",
		Coordinates:      []float64{m.LatLng.Lng, m.LatLng.Lat},
		FormattedAddress: strings.Join(parts, ", "),
		Street:           m.Street,
		City:             m.AdminArea5,
		State:            m.AdminArea3,
		Zipcode:          m.PostalCode,
		Country:          m.AdminArea1,
	}, nil
}

// CachedGeocoder memoizes successful lookups for a limited time. Radius
// searches hit the same zipcodes over and over.
type CachedGeocoder struct {
	next  Geocoder
	cache *lru.LRU[string, models.Location]
}

func NewCachedGeocoder(next Geocoder, size int, ttl time.Duration) *CachedGeocoder {
	if size < 1 {
		size = 512
	}
	return &CachedGeocoder{
		next:  next,
		cache: lru.NewLRU[string, models.Location](size, nil, ttl),
	}
}

func (g *CachedGeocoder) Geocode(ctx context.Context, address string) (models.Location, error) {
	key := strings.ToLower(strings.Join(strings.Fields(address), " "))
	if loc, ok := g.cache.Get(key); ok {
		return cloneLocation(loc), nil
	}
	loc, err := g.next.Geocode(ctx, address)
	if err != nil {
		return models.Location{}, err
	}
	g.cache.Add(key, cloneLocation(loc))
	return loc, nil
}

func cloneLocation(l models.Location) models.Location {
	l.Coordinates = append([]float64(nil), l.Coordinates...)
	return l
}

// NoopGeocoder never resolves anything. Used when no provider key is set.
type NoopGeocoder struct{}

func (NoopGeocoder) Geocode(context.Context, string) (models.Location, error) {
	return models.Location{}, ErrNoGeocodeMatch
}
