package ebay

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"rakuda/internal/marketplace"
)

type Client struct {
	host       string
	token      string
	httpClient *http.Client
}

type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.Status, e.Body)
}

func NewClient(httpClient *http.Client, host, token string) *Client {
	if host == "" {
		host = "https://api.ebay.com"
	}
	host = strings.TrimRight(host, "/")
	return &Client{
		host:       host,
		token:      token,
		httpClient: httpClient,
	}
}

func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	fullURL := c.host + path
	if len(query) > 0 {
		fullURL = fullURL + "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{Status: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

type trafficRow struct {
	ListingID    string          `json:"listing_id"`
	DaysListed   int             `json:"days_listed"`
	Views        int             `json:"listing_views_total"`
	Watchers     int             `json:"watch_count"`
	CTR          float64         `json:"click_through_rate"`
	CurrentPrice decimal.Decimal `json:"current_price"`
	CostPrice    decimal.Decimal `json:"cost_price"`
}

type trafficReport struct {
	Rows []trafficRow `json:"records"`
}

// FetchMetrics pulls the traffic report for the given listing IDs. Listings
// missing from the report are omitted from the result.
func (c *Client) FetchMetrics(ctx context.Context, externalIDs []string) (map[string]marketplace.Metrics, error) {
	if len(externalIDs) == 0 {
		return map[string]marketplace.Metrics{}, nil
	}
	query := url.Values{}
	query.Set("listing_ids", strings.Join(externalIDs, "|"))
	query.Set("metric", "LISTING_VIEWS_TOTAL,WATCH_COUNT,CLICK_THROUGH_RATE")
	body, err := c.doRequest(ctx, "/sell/analytics/v1/traffic_report", query)
	if err != nil {
		return nil, err
	}
	var report trafficReport
	if err := json.Unmarshal(body, &report); err != nil {
		return nil, fmt.Errorf("failed to parse traffic report: %w", err)
	}
	out := make(map[string]marketplace.Metrics, len(report.Rows))
	for _, row := range report.Rows {
		out[row.ListingID] = marketplace.Metrics{
			ExternalID:   row.ListingID,
			DaysListed:   row.DaysListed,
			Views:        row.Views,
			Watchers:     row.Watchers,
			CTR:          row.CTR,
			CurrentPrice: row.CurrentPrice,
			CostPrice:    row.CostPrice,
		}
	}
	return out, nil
}

var _ marketplace.MetricsSource = (*Client)(nil)
