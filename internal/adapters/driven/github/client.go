// Package github adapts the GitHub REST API into the history source
// port: repositories become collections and commits become history
// records.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Client provides the subset of GitHub API operations the history
// source needs. An empty token is allowed; unauthenticated requests
// work for public repositories at a lower rate limit.
type Client struct {
	token      string
	httpClient *http.Client
	baseURL    string
	maxRetries int
}

// NewClient creates a new GitHub API client.
func NewClient(token, baseURL string) *Client {
	if baseURL == "" {
		baseURL = "https://api.github.com"
	}
	return &Client{
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		maxRetries: 3,
	}
}

// Repository represents a GitHub repository.
type Repository struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	FullName  string    `json:"full_name"`
	Fork      bool      `json:"fork"`
	Archived  bool      `json:"archived"`
	HTMLURL   string    `json:"html_url"`
	UpdatedAt time.Time `json:"updated_at"`
	PushedAt  time.Time `json:"pushed_at"`
}

// Commit represents one entry from the repository commits listing.
type Commit struct {
	SHA     string `json:"sha"`
	HTMLURL string `json:"html_url"`
	Commit  struct {
		Message string `json:"message"`
		Author  struct {
			Name  string    `json:"name"`
			Email string    `json:"email"`
			Date  time.Time `json:"date"`
		} `json:"author"`
	} `json:"commit"`
	Files []struct {
		Filename string `json:"filename"`
	} `json:"files"`
}

// ListUserRepos lists a user's public repositories, most recently
// updated first.
func (c *Client) ListUserRepos(ctx context.Context, username string) ([]*Repository, error) {
	path := fmt.Sprintf("/users/%s/repos?per_page=100&sort=updated&direction=desc", username)

	resp, err := c.doRequest(ctx, "GET", path)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var repos []*Repository
	if err := json.NewDecoder(resp.Body).Decode(&repos); err != nil {
		return nil, fmt.Errorf("decode repos: %w", err)
	}
	return repos, nil
}

// ListCommits lists the most recent commits in a repository, default
// branch only, newest first. limit caps the page size; GitHub caps it
// at 100 regardless.
func (c *Client) ListCommits(ctx context.Context, fullName string, limit int) ([]*Commit, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	path := fmt.Sprintf("/repos/%s/commits?per_page=%d", fullName, limit)

	resp, err := c.doRequest(ctx, "GET", path)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var commits []*Commit
	if err := json.NewDecoder(resp.Body).Decode(&commits); err != nil {
		return nil, fmt.Errorf("decode commits: %w", err)
	}
	return commits, nil
}

// APIError is a non-2xx response from the GitHub API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("GitHub API error %d: %s", e.StatusCode, e.Body)
}

// doRequest performs an authenticated HTTP request with retry logic.
func (c *Client) doRequest(ctx context.Context, method, path string) (*http.Response, error) {
	var resp *http.Response
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}

		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}
		req.Header.Set("Accept", "application/vnd.github.v3+json")
		req.Header.Set("X-GitHub-Api-Version", "2022-11-28")

		resp, err = c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("do request: %w", err)
		}

		// Check for rate limiting
		if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests {
			if resetHeader := resp.Header.Get("X-RateLimit-Reset"); resetHeader != "" {
				resetTime, _ := strconv.ParseInt(resetHeader, 10, 64)
				if resetTime > 0 {
					waitDuration := time.Until(time.Unix(resetTime, 0))
					if waitDuration > 0 && waitDuration < 5*time.Minute {
						resp.Body.Close()
						select {
						case <-ctx.Done():
							return nil, ctx.Err()
						case <-time.After(waitDuration):
							continue
						}
					}
				}
			}
		}

		// Success or non-retryable error
		if resp.StatusCode < 500 {
			break
		}

		// Server error - retry with exponential backoff
		resp.Body.Close()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt+1) * time.Second):
		}
	}

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return resp, nil
}
