// Package dataset builds the labelled sample dataset: it fetches Python
// files from popular GitHub repositories, counts their smells and derives a
// CPU and carbon footprint for each.
package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"ecoscan/internal/slogutil"
	"ecoscan/internal/version"
)

const (
	// maxPerPage is the largest page the search API serves.
	maxPerPage = 100

	defaultTimeout = 30 * time.Second
	maxRetries     = 2
	retryBaseDelay = 500 * time.Millisecond
	retryMaxDelay  = 5 * time.Second

	// maxSampleBytes caps a single downloaded sample.
	maxSampleBytes = 2 << 20
)

// Repository is the subset of a search result the pipeline needs.
type Repository struct {
	Name        string `json:"name"`
	FullName    string `json:"full_name"`
	ContentsURL string `json:"contents_url"`
}

type searchResponse struct {
	TotalCount int          `json:"total_count"`
	Items      []Repository `json:"items"`
}

type contentEntry struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	DownloadURL string `json:"download_url"`
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.StatusCode)
}

// Client talks to the GitHub REST API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  *slog.Logger
}

// NewClient creates a client for baseURL. An empty token sends
// unauthenticated requests.
func NewClient(baseURL, token string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slogutil.NewDiscardLogger()
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: defaultTimeout},
		logger:  logger,
	}
}

// get performs a GET with retries on network and server errors and returns
// the body. 4xx responses fail immediately.
func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			delay := retryBaseDelay * time.Duration(1<<uint(attempt-1))
			if delay > retryMaxDelay {
				delay = retryMaxDelay
			}
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			c.logger.Debug("Retrying request", "url", rawURL, "attempt", attempt+1)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/vnd.github+json")
		req.Header.Set("User-Agent", "ecoscan/"+version.Version)
		if c.token != "" {
			req.Header.Set("Authorization", "token "+c.token)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
			continue
		}

		body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxSampleBytes))
		_ = resp.Body.Close()

		switch {
		case resp.StatusCode >= 500:
			lastErr = &StatusError{URL: rawURL, StatusCode: resp.StatusCode}
			continue
		case resp.StatusCode >= 300:
			return nil, &StatusError{URL: rawURL, StatusCode: resp.StatusCode}
		case readErr != nil:
			return nil, fmt.Errorf("failed to read response: %w", readErr)
		}
		return body, nil
	}
	return nil, fmt.Errorf("request failed after %d retries: %w", maxRetries, lastErr)
}

// SearchRepositories returns up to max repositories matching query, sorted
// by stars.
func (c *Client) SearchRepositories(ctx context.Context, query string, max int) ([]Repository, error) {
	perPage := max
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	if perPage < 1 {
		return nil, nil
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("sort", "stars")
	params.Set("per_page", strconv.Itoa(perPage))

	body, err := c.get(ctx, c.baseURL+"/search/repositories?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("repository search failed: %w", err)
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}
	c.logger.Info("Searched repositories",
		"query", query,
		"total", resp.TotalCount,
		"returned", len(resp.Items),
	)
	return resp.Items, nil
}

// DownloadSample lists the root of a repository from its contents URL
// template and downloads the first Python file. It returns ok=false when
// the repository has no Python file at its root.
func (c *Client) DownloadSample(ctx context.Context, contentsURL string) (sample []byte, ok bool, err error) {
	listURL := strings.Replace(contentsURL, "{+path}", "", 1)

	body, err := c.get(ctx, listURL)
	if err != nil {
		return nil, false, fmt.Errorf("failed to list contents: %w", err)
	}

	var entries []contentEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, false, fmt.Errorf("failed to decode contents listing: %w", err)
	}

	for _, entry := range entries {
		if entry.Type != "file" || path.Ext(entry.Name) != ".py" || entry.DownloadURL == "" {
			continue
		}
		sample, err := c.get(ctx, entry.DownloadURL)
		if err != nil {
			return nil, false, fmt.Errorf("failed to download %s: %w", entry.Name, err)
		}
		return sample, true, nil
	}
	return nil, false, nil
}
