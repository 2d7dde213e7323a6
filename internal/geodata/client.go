// Package geodata provides HTTP client operations for the geographic data
// service: street edge features and region completion figures.
package geodata

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ProjectSidewalk/sidewalk-audit/internal/httputil"
)

// BBox is a latitude/longitude bounding box.
type BBox struct {
	MinLat float64
	MinLng float64
	MaxLat float64
	MaxLng float64
}

// Feature is one geographic feature returned by the data service, a street
// edge or region boundary.
type Feature struct {
	ID           string      `json:"id"`
	Name         string      `json:"name,omitempty"`
	GeometryType string      `json:"geometry_type"`
	Coordinates  [][]float64 `json:"coordinates"`
}

// RegionCompletion is the server-side completion figure for one region.
type RegionCompletion struct {
	RegionID           string  `json:"region_id"`
	Rate               float64 `json:"rate"`
	TotalDistanceM     float64 `json:"total_distance_m"`
	CompletedDistanceM float64 `json:"completed_distance_m"`
}

// Client fetches geographic data over HTTP.
type Client struct {
	HTTPClient httputil.HTTPClient
	BaseURL    string
}

// NewClient creates a geodata client. A nil httpClient gets a default with a
// 30 second timeout.
func NewClient(httpClient httputil.HTTPClient, baseURL string) *Client {
	if httpClient == nil {
		httpClient = httputil.NewStandardClient(&http.Client{Timeout: 30 * time.Second})
	}
	return &Client{
		HTTPClient: httpClient,
		BaseURL:    baseURL,
	}
}

// FeaturesWithin fetches the street edge features inside the bounding box.
func (c *Client) FeaturesWithin(box BBox) ([]Feature, error) {
	q := url.Values{}
	q.Set("min_lat", fmt.Sprintf("%f", box.MinLat))
	q.Set("min_lng", fmt.Sprintf("%f", box.MinLng))
	q.Set("max_lat", fmt.Sprintf("%f", box.MaxLat))
	q.Set("max_lng", fmt.Sprintf("%f", box.MaxLng))

	resp, err := c.HTTPClient.Get(fmt.Sprintf("%s/api/geodata/features?%s", c.BaseURL, q.Encode()))
	if err != nil {
		return nil, fmt.Errorf("fetch features: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("features returned %d: %s", resp.StatusCode, string(body))
	}

	var features []Feature
	if err := json.NewDecoder(resp.Body).Decode(&features); err != nil {
		return nil, fmt.Errorf("decode features: %w", err)
	}
	return features, nil
}

// FetchRegionCompletion fetches the completion figure for a region.
func (c *Client) FetchRegionCompletion(regionID string) (*RegionCompletion, error) {
	resp, err := c.HTTPClient.Get(fmt.Sprintf("%s/api/geodata/regions/%s/completion", c.BaseURL, url.PathEscape(regionID)))
	if err != nil {
		return nil, fmt.Errorf("fetch region completion: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("region completion returned %d: %s", resp.StatusCode, string(body))
	}

	var rc RegionCompletion
	if err := json.NewDecoder(resp.Body).Decode(&rc); err != nil {
		return nil, fmt.Errorf("decode region completion: %w", err)
	}
	if rc.RegionID == "" {
		rc.RegionID = regionID
	}
	return &rc, nil
}
