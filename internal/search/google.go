package search

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"
)

const endpoint = "https://www.googleapis.com/customsearch/v1"

// Result is the top hit of a web search.
type Result struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Link    string `json:"link"`
}

// Client queries the Google Custom Search JSON API. A client with missing
// credentials is valid and simply never returns results.
type Client struct {
	apiKey     string
	engineID   string
	httpClient *http.Client
}

// New creates a search client with a bounded request timeout.
func New(apiKey, engineID string, timeout time.Duration) *Client {
	return &Client{
		apiKey:   apiKey,
		engineID: engineID,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Enabled reports whether search credentials are configured.
func (c *Client) Enabled() bool {
	return c.apiKey != "" && c.engineID != ""
}

// Top returns the first result for the query, or nil when search is
// disabled, errors out, or finds nothing. A failed search is never a hard
// failure: the caller falls back to its no-result branch.
func (c *Client) Top(ctx context.Context, query string) *Result {
	if !c.Enabled() {
		return nil
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("key", c.apiKey)
	params.Set("cx", c.engineID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		log.Printf("search: build request: %v", err)
		return nil
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("search: %v", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("search: status %d", resp.StatusCode)
		return nil
	}

	var body struct {
		Items []Result `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		log.Printf("search: decode response: %v", err)
		return nil
	}
	if len(body.Items) == 0 {
		return nil
	}
	top := body.Items[0]
	return &top
}

// ScholarshipQuery builds the query string used for scholarship lookups.
func ScholarshipQuery(message string) string {
	return fmt.Sprintf("%s scholarship India", message)
}
