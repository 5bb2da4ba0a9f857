// Package geo resolves a signer's IP address to an approximate location.
package geo

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Unknown is recorded when no location can be determined.
const Unknown = "unknown"

var ErrNotRoutable = errors.New("ip address is not publicly routable")

type Location struct {
	City    string  `json:"city"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// String renders "City, Country", dropping empty parts.
func (l Location) String() string {
	var parts []string
	if l.City != "" {
		parts = append(parts, l.City)
	}
	if l.Country != "" {
		parts = append(parts, l.Country)
	}
	if len(parts) == 0 {
		return Unknown
	}
	return strings.Join(parts, ", ")
}

type Locator interface {
	Lookup(ctx context.Context, ip string) (*Location, error)
}

type ipAPIResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	City    string  `json:"city"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// Client queries an ip-api.com compatible endpoint.
type Client struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return &Client{
		httpClient: client,
		logger:     logger,
	}
}

func (c *Client) Lookup(ctx context.Context, ip string) (*Location, error) {
	parsed := net.ParseIP(ip)
	if parsed == nil || parsed.IsLoopback() || parsed.IsPrivate() || parsed.IsUnspecified() || parsed.IsLinkLocalUnicast() {
		return nil, ErrNotRoutable
	}

	var response ipAPIResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetResult(&response).
		SetQueryParam("fields", "status,message,country,city,lat,lon").
		Get("/json/" + parsed.String())
	if err != nil {
		return nil, fmt.Errorf("geolocation request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("geolocation returned status %d", resp.StatusCode())
	}
	if response.Status != "success" {
		return nil, fmt.Errorf("geolocation failed: %s", response.Message)
	}

	return &Location{
		City:    response.City,
		Country: response.Country,
		Lat:     response.Lat,
		Lon:     response.Lon,
	}, nil
}

// Describe returns the "City, Country" label for ip, or Unknown when the
// lookup fails. Values that are not IP addresses are never looked up.
func Describe(ctx context.Context, locator Locator, ip string, logger *zap.Logger) string {
	if locator == nil || net.ParseIP(ip) == nil {
		return Unknown
	}
	loc, err := locator.Lookup(ctx, ip)
	if err != nil {
		if !errors.Is(err, ErrNotRoutable) {
			logger.Warn("Geolocation lookup failed", zap.String("ip", ip), zap.Error(err))
		}
		return Unknown
	}
	return loc.String()
}
