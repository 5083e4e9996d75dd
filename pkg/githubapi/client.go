// Package githubapi provides a typed GitHub REST API client for repository
// administration, backed by google/go-github.
package githubapi

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v53/github"
	"github.com/m-mizutani/goerr/v2"

	"github.com/shibaleo/repomcp/internal/logging"
)

const perPage = 100

// Client calls the GitHub REST API on behalf of a single token. The token is
// bound at construction and never changes afterwards.
type Client struct {
	gh         *github.Client
	baseURL    string
	httpClient *http.Client
}

// Option adjusts client construction.
type Option func(*Client)

// WithBaseURL points the client at an alternative API endpoint, such as a
// GitHub Enterprise host or a test server.
func WithBaseURL(raw string) Option {
	return func(c *Client) {
		c.baseURL = raw
	}
}

// WithHTTPClient replaces the underlying HTTP client. The caller takes over
// authentication; the token is ignored for request signing.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New builds a Client from a personal access token. An empty or blank token
// is rejected here, before any request can be attempted.
func New(token Token, options ...Option) (*Client, error) {
	if strings.TrimSpace(string(token)) == "" {
		return nil, goerr.Wrap(ErrNoToken, "token is empty")
	}

	c := &Client{}
	for _, opt := range options {
		opt(c)
	}

	if c.httpClient != nil {
		c.gh = github.NewClient(c.httpClient)
	} else {
		c.gh = github.NewTokenClient(context.Background(), string(token))
	}

	if c.baseURL != "" {
		u, err := url.Parse(c.baseURL)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid API base URL", goerr.V("url", c.baseURL))
		}
		if !strings.HasSuffix(u.Path, "/") {
			u.Path += "/"
		}
		c.gh.BaseURL = u
	}

	return c, nil
}

// listPage fetches a single page of the authenticated user's repositories.
// A zero cursor requests the first page; the returned cursor is zero once
// the sequence is exhausted.
func (x *Client) listPage(ctx context.Context, cursor int) ([]Repository, int, error) {
	opts := &github.RepositoryListOptions{
		Sort:      "created",
		Direction: "asc",
		ListOptions: github.ListOptions{
			PerPage: perPage,
			Page:    cursor,
		},
	}

	result, resp, err := x.gh.Repositories.List(ctx, "", opts)
	if err != nil {
		return nil, 0, goerr.Wrap(err, "failed to list repositories", goerr.V("page", cursor))
	}

	repos := make([]Repository, 0, len(result))
	for _, r := range result {
		repo, err := toRepository(r)
		if err != nil {
			return nil, 0, err
		}
		repos = append(repos, repo)
	}

	return repos, resp.NextPage, nil
}

// ListRepositories returns every repository visible to the token, in the
// order GitHub yields them (created, ascending). A failure on any page
// discards the pages fetched so far.
func (x *Client) ListRepositories(ctx context.Context) ([]Repository, error) {
	all := make([]Repository, 0, perPage)

	cursor := 0
	for {
		repos, next, err := x.listPage(ctx, cursor)
		if err != nil {
			return nil, err
		}
		all = append(all, repos...)

		if next == 0 {
			break
		}
		cursor = next
	}

	logging.From(ctx).Debug("listed repositories", slog.Int("count", len(all)))

	return all, nil
}

// ListForkedRepositories narrows the full listing to forks. The filter runs
// client side over the same records ListRepositories returns.
func (x *Client) ListForkedRepositories(ctx context.Context) ([]Repository, error) {
	return x.listFiltered(ctx, func(r Repository) bool { return r.Fork })
}

// ListArchivedRepositories narrows the full listing to archived repositories.
func (x *Client) ListArchivedRepositories(ctx context.Context) ([]Repository, error) {
	return x.listFiltered(ctx, func(r Repository) bool { return r.Archived })
}

func (x *Client) listFiltered(ctx context.Context, keep func(Repository) bool) ([]Repository, error) {
	repos, err := x.ListRepositories(ctx)
	if err != nil {
		return nil, err
	}

	filtered := make([]Repository, 0, len(repos))
	for _, r := range repos {
		if keep(r) {
			filtered = append(filtered, r)
		}
	}

	return filtered, nil
}

// UpdateRepository applies a partial settings change to owner/name and
// returns the raw HTTP status code from GitHub. Application-level rejections
// (404, 403, 422) come back as the status value, not as an error; only
// transport failures produce an error.
func (x *Client) UpdateRepository(ctx context.Context, owner, name string, update RepoUpdate) (int, error) {
	_, resp, err := x.gh.Repositories.Edit(ctx, owner, name, update.toRequest())
	if resp == nil {
		return 0, goerr.Wrap(err, "failed to update repository",
			goerr.V("owner", owner),
			goerr.V("repo", name),
		)
	}
	if err != nil {
		logging.From(ctx).Debug("repository update rejected",
			slog.String("owner", owner),
			slog.String("repo", name),
			slog.Int("status", resp.StatusCode),
		)
	}

	return resp.StatusCode, nil
}
