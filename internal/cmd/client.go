package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/runger/redline/internal/config"
)

// apiClient is a thin HTTP client for the daemon API, used by the query
// subcommands.
type apiClient struct {
	baseURL string
	http    *http.Client
}

func newAPIClient() *apiClient {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.DefaultConfig()
	}
	return &apiClient{
		baseURL: "http://" + cfg.Daemon.ListenAddr,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// get issues a GET and decodes the JSON response into out.
func (c *apiClient) get(path string, out any) error {
	resp, err := c.http.Get(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("daemon not reachable at %s (is 'redline serve' running?): %w", c.baseURL, err)
	}
	defer resp.Body.Close()
	return c.decode(resp, out)
}

// post issues a POST with a JSON body and decodes the response into out.
func (c *apiClient) post(path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	resp, err := c.http.Post(c.baseURL+path, "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("daemon not reachable at %s (is 'redline serve' running?): %w", c.baseURL, err)
	}
	defer resp.Body.Close()
	return c.decode(resp, out)
}

func (c *apiClient) decode(resp *http.Response, out any) error {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("%s: %s", apiErr.Error, apiErr.Message)
		}
		return fmt.Errorf("daemon returned HTTP %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
