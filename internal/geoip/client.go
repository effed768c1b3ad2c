package geoip

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cardlight/cardlight/internal/metrics"
)

// Location is a best-effort geolocation of a client IP. Every field falls
// back to a sentinel so callers can log it without nil checks.
type Location struct {
	City      string `json:"city"`
	Region    string `json:"region"`
	Country   string `json:"country"`
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
	ISP       string `json:"isp"`
}

// Unknown is returned whenever a lookup cannot be performed or fails.
func Unknown() Location {
	return Location{
		City:      "Unknown",
		Region:    "Unknown",
		Country:   "Unknown",
		Latitude:  "N/A",
		Longitude: "N/A",
		ISP:       "Unknown ISP",
	}
}

// Client looks up client IPs against an ipapi.co-compatible endpoint.
// Lookups never fail past this boundary: any error yields Unknown().
type Client struct {
	baseURL string
	http    *http.Client
	enabled bool
}

// New creates a geolocation client. A disabled client returns Unknown()
// without touching the network.
func New(baseURL string, timeout time.Duration, enabled bool) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		enabled: enabled,
	}
}

// ipapi.co response shape; org doubles as the ISP name.
type apiResponse struct {
	City        string   `json:"city"`
	Region      string   `json:"region"`
	CountryName string   `json:"country_name"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	Org         string   `json:"org"`
}

// Lookup resolves ip to a location. Private, loopback and unparseable
// addresses short-circuit to Unknown() without a network call.
func (c *Client) Lookup(ctx context.Context, ip string) Location {
	if !c.enabled || !isPublic(ip) {
		return Unknown()
	}

	start := time.Now()
	loc, err := c.lookup(ctx, ip)
	metrics.GeoLookupDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.GeoLookupErrors.Inc()
		return Unknown()
	}
	return loc
}

func (c *Client) lookup(ctx context.Context, ip string) (Location, error) {
	url := fmt.Sprintf("%s/%s/json/", c.baseURL, ip)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Location{}, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Location{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Location{}, fmt.Errorf("geoip lookup returned status %d", resp.StatusCode)
	}

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Location{}, err
	}

	loc := Unknown()
	if body.City != "" {
		loc.City = body.City
	}
	if body.Region != "" {
		loc.Region = body.Region
	}
	if body.CountryName != "" {
		loc.Country = body.CountryName
	}
	if body.Latitude != nil {
		loc.Latitude = strconv.FormatFloat(*body.Latitude, 'f', -1, 64)
	}
	if body.Longitude != nil {
		loc.Longitude = strconv.FormatFloat(*body.Longitude, 'f', -1, 64)
	}
	if body.Org != "" {
		loc.ISP = body.Org
	}
	return loc, nil
}

// isPublic filters out addresses a public geolocation API cannot resolve.
func isPublic(ip string) bool {
	// Strip a port if the caller passed RemoteAddr verbatim.
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}

	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	if parsed.IsLoopback() || parsed.IsPrivate() || parsed.IsUnspecified() || parsed.IsLinkLocalUnicast() {
		return false
	}
	return true
}
