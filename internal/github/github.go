// Package github discovers the repositories of one GitHub account through
// the REST API. It is the only component that talks to GitHub over HTTP;
// everything downstream consumes the returned model.Repository snapshots.
package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/skaphos/gitfleet/internal/model"
)

const (
	defaultBaseURL = "https://api.github.com"
	perPage        = 100
	apiVersion     = "2022-11-28"
	userAgent      = "gitfleet"
)

var (
	// ErrRateLimited marks a 403 from the API, typically the anonymous
	// rate limit.
	ErrRateLimited = errors.New("github rate limited")
	// ErrBadCredentials marks a 401 from the API.
	ErrBadCredentials = errors.New("github bad credentials")
)

// Options configures a Client.
type Options struct {
	// Token is a personal access token. Empty means anonymous access.
	Token string
	// Username is the account to discover. Required without a token.
	Username string
	// BaseURL overrides the API endpoint, mainly for tests.
	BaseURL string
	// HTTPClient overrides the transport. Nil uses a 30s-timeout client.
	HTTPClient *http.Client
}

// Client lists the repositories an account owns or can access.
type Client struct {
	token      string
	username   string
	baseURL    string
	httpClient *http.Client
}

// New creates a Client from opts, filling in defaults.
func New(opts Options) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		token:      opts.Token,
		username:   opts.Username,
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

// Authenticated reports whether the client carries a token.
func (c *Client) Authenticated() bool { return c.token != "" }

type apiRepo struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	FullName      string `json:"full_name"`
	Private       bool   `json:"private"`
	Fork          bool   `json:"fork"`
	Archived      bool   `json:"archived"`
	DefaultBranch string `json:"default_branch"`
	SSHURL        string `json:"ssh_url"`
	CloneURL      string `json:"clone_url"`
	Description   string `json:"description"`
	Language      string `json:"language"`
	Owner         struct {
		Login string `json:"login"`
	} `json:"owner"`
}

func (r apiRepo) toModel() model.Repository {
	return model.Repository{
		ID:            r.ID,
		Name:          r.Name,
		FullName:      r.FullName,
		Owner:         r.Owner.Login,
		Private:       r.Private,
		Fork:          r.Fork,
		Archived:      r.Archived,
		DefaultBranch: r.DefaultBranch,
		SSHURL:        r.SSHURL,
		CloneURL:      r.CloneURL,
		Description:   r.Description,
		Language:      r.Language,
	}
}

type apiOrg struct {
	Login string `json:"login"`
}

type apiUser struct {
	Login string `json:"login"`
}

// ListRepositories returns the deduplicated repository set for the account.
// With a token it lists everything the token can access; anonymously it
// lists the user's public repositories plus their public org repositories.
func (c *Client) ListRepositories(ctx context.Context) ([]model.Repository, error) {
	var raw []apiRepo
	var err error
	if c.Authenticated() {
		raw, err = c.listAuthenticated(ctx)
	} else {
		raw, err = c.listPublic(ctx)
	}
	if err != nil {
		return nil, err
	}

	repos := make([]model.Repository, 0, len(raw))
	for _, r := range raw {
		repos = append(repos, r.toModel())
	}
	// Owner and org listings overlap, so the same id can appear twice.
	return model.DedupeRepositories(repos), nil
}

// Viewer returns the login of the authenticated user.
func (c *Client) Viewer(ctx context.Context) (string, error) {
	if !c.Authenticated() {
		return "", errors.New("viewer lookup requires a token")
	}
	var user apiUser
	if err := c.getJSON(ctx, "/user", &user); err != nil {
		return "", err
	}
	return user.Login, nil
}

func (c *Client) listAuthenticated(ctx context.Context) ([]apiRepo, error) {
	query := url.Values{}
	query.Set("affiliation", "owner,collaborator,organization_member")
	return c.listPages(ctx, "/user/repos", query)
}

func (c *Client) listPublic(ctx context.Context) ([]apiRepo, error) {
	if c.username == "" {
		return nil, errors.New("github username required for unauthenticated discovery")
	}
	repos, err := c.listPages(ctx, "/users/"+c.username+"/repos", nil)
	if err != nil {
		return nil, err
	}

	var orgs []apiOrg
	if err := c.getJSON(ctx, "/users/"+c.username+"/orgs?per_page="+strconv.Itoa(perPage), &orgs); err != nil {
		return repos, nil
	}
	for _, org := range orgs {
		// Org listings 403 for orgs an anonymous caller cannot see;
		// skip those and keep the rest.
		orgRepos, err := c.listPages(ctx, "/orgs/"+org.Login+"/repos", nil)
		if err != nil {
			continue
		}
		repos = append(repos, orgRepos...)
	}
	return repos, nil
}

// listPages follows the page parameter until a short page signals the end.
func (c *Client) listPages(ctx context.Context, endpoint string, extra url.Values) ([]apiRepo, error) {
	var all []apiRepo
	for page := 1; ; page++ {
		query := url.Values{}
		for key, values := range extra {
			query[key] = values
		}
		query.Set("per_page", strconv.Itoa(perPage))
		query.Set("page", strconv.Itoa(page))

		var batch []apiRepo
		if err := c.getJSON(ctx, endpoint+"?"+query.Encode(), &batch); err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(batch) < perPage {
			return all, nil
		}
	}
}

func (c *Client) getJSON(ctx context.Context, endpoint string, into any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", apiVersion)
	req.Header.Set("User-Agent", userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%w: check GITHUB_TOKEN", ErrBadCredentials)
	case resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: set GITHUB_TOKEN to raise the limit", ErrRateLimited)
	case resp.StatusCode >= 400:
		return fmt.Errorf("github api: GET %s: %s", endpoint, resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(into)
}
