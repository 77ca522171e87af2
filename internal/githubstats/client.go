// Package githubstats aggregates public repository statistics from the
// GitHub REST API for the github_stats section.
package githubstats

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"git.home.luguber.info/inful/dashboard/internal/config"
	apperrors "git.home.luguber.info/inful/dashboard/internal/errors"
)

// Client is a minimal GitHub REST API client. Endpoints are relative paths
// like "/users/{user}/repos"; query strings in the endpoint are preserved.
type Client struct {
	httpClient *http.Client
	apiURL     string
	token      string
	userAgent  string
}

// NewClient builds a client from the github and api settings blocks.
func NewClient(gh config.GitHubConfig, api config.APIConfig) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: api.TimeoutOrDefault()},
		apiURL:     gh.APIURL,
		token:      gh.Token,
		userAgent:  api.UserAgentOrDefault(),
	}
}

// NewRequest creates an API request with common headers set.
func (c *Client) NewRequest(ctx context.Context, method, endpoint string) (*http.Request, error) {
	cleanEndpoint := strings.TrimPrefix(endpoint, "/")

	var rawQuery string
	if idx := strings.Index(cleanEndpoint, "?"); idx != -1 {
		rawQuery = cleanEndpoint[idx+1:]
		cleanEndpoint = cleanEndpoint[:idx]
	}

	u, err := url.Parse(c.apiURL)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CategoryConfig, apperrors.SeverityFatal, "failed to parse API URL").
			WithContext("api_url", c.apiURL)
	}
	basePath := strings.TrimSuffix(u.Path, "/")
	u.Path = path.Join(basePath, cleanEndpoint)
	if rawQuery != "" {
		u.RawQuery = rawQuery
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), http.NoBody)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CategoryInternal, apperrors.SeverityFatal, "failed to create request").
			WithContext("url", u.String())
	}

	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", c.userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

// DoRequest executes a request and decodes the JSON response into result.
func (c *Client) DoRequest(req *http.Request, result any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.FetchFailed(string(config.SourceGitHub), err).
			WithContext("url", req.URL.String())
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		limitedBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		bodyStr := strings.ReplaceAll(string(limitedBody), "\n", " ")
		return apperrors.New(apperrors.CategoryNetwork, apperrors.SeverityWarning, fmt.Sprintf("github API error: %s", resp.Status)).
			WithRetryable(resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests).
			WithContext("code", resp.StatusCode).
			WithContext("url", req.URL.String()).
			WithContext("response", bodyStr)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return apperrors.Wrap(err, apperrors.CategoryNetwork, apperrors.SeverityWarning, "failed to decode github response")
		}
	}
	return nil
}

// apiRepo is the subset of the repository payload the stats need.
type apiRepo struct {
	Name            string    `json:"name"`
	Fork            bool      `json:"fork"`
	Archived        bool      `json:"archived"`
	StargazersCount int       `json:"stargazers_count"`
	ForksCount      int       `json:"forks_count"`
	Language        string    `json:"language"`
	PushedAt        time.Time `json:"pushed_at"`
}

// listRepos pages through the user's public repositories.
func (c *Client) listRepos(ctx context.Context, username string) ([]apiRepo, error) {
	var all []apiRepo
	page := 1
	const perPage = 100

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		endpoint := fmt.Sprintf("/users/%s/repos?type=owner&per_page=%d&page=%d", url.PathEscape(username), perPage, page)
		req, err := c.NewRequest(ctx, http.MethodGet, endpoint)
		if err != nil {
			return nil, err
		}

		var repos []apiRepo
		if err := c.DoRequest(req, &repos); err != nil {
			return nil, err
		}

		all = append(all, repos...)
		if len(repos) < perPage {
			break
		}
		page++
	}
	return all, nil
}
