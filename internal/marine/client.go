// Package marine proxies NOAA and Open-Meteo forecasts for anglers and derives
// tide extremes and solunar feeding periods.
package marine

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/cache"
)

const (
	userAgent = "(La Pesqueria Outfitters, contact@lapesqueria.com)"

	// South Padre Island jetties.
	DefaultLat     = "25.9017"
	DefaultLon     = "-97.4975"
	DefaultStation = "8779748"

	pointsTTL     = time.Hour
	forecastTTL   = 30 * time.Minute
	alertsTTL     = 5 * time.Minute
	conditionsTTL = 30 * time.Minute
)

// Endpoints are the upstream base URLs.
type Endpoints struct {
	NWS     string
	Tides   string
	Marine  string
	Weather string
}

// DefaultEndpoints are the public production APIs.
var DefaultEndpoints = Endpoints{
	NWS:     "https://api.weather.gov",
	Tides:   "https://api.tidesandcurrents.noaa.gov/api/prod/datagetter",
	Marine:  "https://marine-api.open-meteo.com/v1/marine",
	Weather: "https://api.open-meteo.com/v1/forecast",
}

// Client fetches and caches upstream marine data.
type Client struct {
	http      *http.Client
	cache     cache.Cache
	log       *zap.Logger
	endpoints Endpoints
	tideZone  *time.Location
	now       func() time.Time
}

// NewClient creates a Client with a 10 second upstream timeout.
func NewClient(c cache.Cache, log *zap.Logger, endpoints Endpoints) *Client {
	return &Client{
		http:      &http.Client{Timeout: 10 * time.Second},
		cache:     c,
		log:       log,
		endpoints: endpoints,
		tideZone:  time.FixedZone("LST", -6*60*60),
		now:       time.Now,
	}
}

func (c *Client) getJSON(ctx context.Context, url string, geo bool, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	if geo {
		req.Header.Set("Accept", "application/geo+json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("upstream request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &UpstreamError{Status: resp.StatusCode, StatusText: http.StatusText(resp.StatusCode)}
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("failed to decode upstream response: %w", err)
	}
	return nil
}

// UpstreamError reports a non-200 response from a forecast provider.
type UpstreamError struct {
	Status     int
	StatusText string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("NOAA API error: %d %s", e.Status, e.StatusText)
}
