// Package lookup resolves a geographic point to the nearest known panorama
// via the provider's image-geolocation endpoint, retrying failed requests
// with exponential backoff.
package lookup

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"go.uber.org/zap"

	"panoscraper/geo"
	"panoscraper/types"
)

const defaultBaseURL = "https://maps.googleapis.com/maps/api/js/GeoPhotoService.SingleImageSearch"

// Options configures a lookup Client.
type Options struct {
	SearchRadiusM int           // provider search radius in meters
	MaxRetries    int           // total attempts per point (default 4)
	Concurrency   int           // bounds the connection pool alongside the worker count
	Timeout       time.Duration // per-request timeout (default 30s)
	BaseURL       string        // endpoint override, used by tests
	Logger        *zap.Logger
}

// Client queries the image-geolocation endpoint for single points.
type Client struct {
	http          *http.Client
	baseURL       string
	searchRadiusM int
	maxRetries    int
	logger        *zap.Logger
}

// NewClient builds a Client with a connection pool bounded to the worker
// count, so in-flight sockets never exceed the discovery concurrency.
func NewClient(opts Options) *Client {
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 4
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 50
	}
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	transport := &http.Transport{
		MaxConnsPerHost:     opts.Concurrency,
		MaxIdleConnsPerHost: opts.Concurrency,
	}

	return &Client{
		http: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		baseURL:       opts.BaseURL,
		searchRadiusM: opts.SearchRadiusM,
		maxRetries:    opts.MaxRetries,
		logger:        opts.Logger,
	}
}

// FetchBestPanorama queries the endpoint for panoramas around point and
// returns the one closest to it. A (nil, nil) return means the provider
// knows no panorama near the point; that outcome is terminal and never
// retried. Failed attempts (transport errors, non-2xx statuses) are retried
// with exponential backoff, and the last error is returned once retries are
// exhausted.
func (c *Client) FetchBestPanorama(ctx context.Context, point types.GeoPoint) (*types.Panorama, error) {
	url := c.requestURL(point)

	delay := time.Second
	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		pans, err := c.fetch(ctx, url)
		if err == nil {
			if len(pans) == 0 {
				return nil, nil
			}
			best := nearest(point, pans)
			return &best, nil
		}

		lastErr = err
		c.logger.Debug("panorama lookup attempt failed",
			zap.Int("attempt", attempt+1),
			zap.Float64("lat", point.Lat),
			zap.Float64("lon", point.Lon),
			zap.Error(err),
		)

		if attempt == c.maxRetries-1 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
		if delay > 10*time.Second {
			delay = 10 * time.Second
		}
	}

	return nil, lastErr
}

func (c *Client) requestURL(point types.GeoPoint) string {
	return fmt.Sprintf(
		"%s?pb=!1m5!1sapiv3!5sUS!11m2!1m1!1b0!2m4!1m2!3d%v!4d%v!2d%d"+
			"!3m10!2m2!1sen!2sGB!9m1!1e2!11m4!1m3!1e2!2b1!3e2!"+
			"4m10!1e1!1e2!1e3!1e4!1e8!1e6!5m1!1e2!6m1!1e2&callback=_xdc_._v2mub5",
		c.baseURL, point.Lat, point.Lon, c.searchRadiusM,
	)
}

func (c *Client) fetch(ctx context.Context, url string) ([]types.Panorama, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return parsePanoramas(string(body)), nil
}

// nearest picks the candidate closest to the query point. Candidates whose
// coordinates produce a NaN distance rank as infinitely far, and ties keep
// the first occurrence.
func nearest(point types.GeoPoint, pans []types.Panorama) types.Panorama {
	best := 0
	bestDist := math.Inf(1)
	for i, p := range pans {
		d := geo.DistanceKm(point, p.Point())
		if math.IsNaN(d) {
			d = math.Inf(1)
		}
		if d < bestDist {
			best = i
			bestDist = d
		}
	}
	return pans[best]
}
