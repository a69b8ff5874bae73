// Package feed downloads position logs published over HTTP.
package feed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/yeonjoon13/Vessel-Collision-Tracker/internal/ingest"
	"github.com/yeonjoon13/Vessel-Collision-Tracker/internal/model"
)

const defaultTimeout = 5 * time.Minute

// Client fetches CSV position logs.
type Client struct {
	HTTP *http.Client
	CSV  ingest.CSVOptions
}

// NewClient returns a client with the default CSV layout and timeout.
func NewClient() *Client {
	return &Client{
		HTTP: &http.Client{Timeout: defaultTimeout},
		CSV:  ingest.DefaultCSVOptions(),
	}
}

// FetchCSV downloads url and parses it as a position log.
func (c *Client) FetchCSV(ctx context.Context, url string) ([]model.RawReport, error) {
	if url == "" {
		return nil, errors.New("feed url is required")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/csv")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch %s: unexpected status %s", url, resp.Status)
	}
	reports, err := ingest.ReadCSV(resp.Body, c.CSV)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	return reports, nil
}
