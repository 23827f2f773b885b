package readmodel

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/keywinf/relay-stack/relay/internal/metrics"
)

// Client is the HTTP implementation of Gateway against the query service's
// read-model API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a gateway client for the given query-service base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// WithTimeout overrides the per-request timeout.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	if timeout > 0 {
		c.httpClient.Timeout = timeout
	}
	return c
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.ReadModelDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("readmodel: query %s: %w", path, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("readmodel: decode %s: %w", path, err)
		}
		return nil
	case http.StatusNotFound:
		return ErrNotFound
	default:
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("readmodel: query %s: %d - %s", path, resp.StatusCode, string(body))
	}
}

// Organization fetches an organization snapshot by id.
func (c *Client) Organization(ctx context.Context, id string) (*Organization, error) {
	var org Organization
	if err := c.get(ctx, "/api/v1/organizations/"+url.PathEscape(id), &org); err != nil {
		return nil, err
	}
	return &org, nil
}

// Workspace fetches a workspace snapshot by id.
func (c *Client) Workspace(ctx context.Context, id string) (*Workspace, error) {
	var ws Workspace
	if err := c.get(ctx, "/api/v1/workspaces/"+url.PathEscape(id), &ws); err != nil {
		return nil, err
	}
	return &ws, nil
}

// User fetches a user snapshot by id.
func (c *Client) User(ctx context.Context, id string) (*User, error) {
	var u User
	if err := c.get(ctx, "/api/v1/users/"+url.PathEscape(id), &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Video fetches a video snapshot by id.
func (c *Client) Video(ctx context.Context, id string) (*Video, error) {
	var v Video
	if err := c.get(ctx, "/api/v1/videos/"+url.PathEscape(id), &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// ChildTemplate fetches a child template snapshot by id.
func (c *Client) ChildTemplate(ctx context.Context, id string) (*ChildTemplate, error) {
	var ct ChildTemplate
	if err := c.get(ctx, "/api/v1/child-templates/"+url.PathEscape(id), &ct); err != nil {
		return nil, err
	}
	return &ct, nil
}

// ParentTemplate fetches a parent template snapshot by id.
func (c *Client) ParentTemplate(ctx context.Context, id string) (*ParentTemplate, error) {
	var pt ParentTemplate
	if err := c.get(ctx, "/api/v1/parent-templates/"+url.PathEscape(id), &pt); err != nil {
		return nil, err
	}
	return &pt, nil
}

// License fetches a license snapshot by id.
func (c *Client) License(ctx context.Context, id string) (*License, error) {
	var l License
	if err := c.get(ctx, "/api/v1/licenses/"+url.PathEscape(id), &l); err != nil {
		return nil, err
	}
	return &l, nil
}

// Members fetches the member snapshots of an organization.
func (c *Client) Members(ctx context.Context, organizationID string) ([]User, error) {
	var resp struct {
		Members []User `json:"members"`
	}
	path := "/api/v1/organizations/" + url.PathEscape(organizationID) + "/members"
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return resp.Members, nil
}
