package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"rojgarsetu/core-service/internal/model"
)

const geocodeTimeout = 10 * time.Second

// ErrProviderUnavailable is returned when the reverse-geocoding provider
// cannot be reached or answers with a non-200 status. Callers surface it as
// a temporarily-unavailable condition, distinct from bad input.
var ErrProviderUnavailable = errors.New("geocoding provider unavailable")

// Client talks to a Nominatim-compatible reverse-geocoding endpoint.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient constructs a provider client with a shared HTTP client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: geocodeTimeout},
	}
}

// nominatimResponse mirrors the provider fields the system keeps. Everything
// else in the payload is dropped so the cache schema stays stable across
// provider changes.
type nominatimResponse struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	Address     struct {
		City          string `json:"city"`
		Town          string `json:"town"`
		Village       string `json:"village"`
		StateDistrict string `json:"state_district"`
		County        string `json:"county"`
		State         string `json:"state"`
		Country       string `json:"country"`
		Postcode      string `json:"postcode"`
	} `json:"address"`
}

// Reverse resolves (lat, lon) to a trimmed Address. Network and decode
// failures map to ErrProviderUnavailable.
func (c *Client) Reverse(ctx context.Context, lat, lon float64) (*model.Address, error) {
	params := url.Values{}
	params.Set("format", "jsonv2")
	params.Set("lat", strconv.FormatFloat(lat, 'f', 6, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', 6, 64))

	reqURL := c.baseURL + "/reverse?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrProviderUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: provider returned %d", ErrProviderUnavailable, resp.StatusCode)
	}

	var nr nominatimResponse
	if err := json.Unmarshal(body, &nr); err != nil {
		return nil, fmt.Errorf("%w: json unmarshal: %v", ErrProviderUnavailable, err)
	}

	addr := &model.Address{
		DisplayName: nr.DisplayName,
		City:        firstNonEmpty(nr.Address.City, nr.Address.Town, nr.Address.Village),
		District:    firstNonEmpty(nr.Address.StateDistrict, nr.Address.County),
		State:       nr.Address.State,
		Country:     nr.Address.Country,
		Postcode:    nr.Address.Postcode,
		Lat:         lat,
		Lon:         lon,
	}
	if v, err := strconv.ParseFloat(nr.Lat, 64); err == nil {
		addr.Lat = v
	}
	if v, err := strconv.ParseFloat(nr.Lon, 64); err == nil {
		addr.Lon = v
	}
	return addr, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
