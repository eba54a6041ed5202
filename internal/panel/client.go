package panel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	cerr "github.com/meshguard/panelctl/internal/err"
)

// Doer executes a single HTTP request.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the panel REST API.
type Client struct {
	baseURL string
	token   string
	http    Doer
}

// ListOptions narrows a listing request. Zero values are omitted from the
// query string.
type ListOptions struct {
	Offset int
	Limit  int
	Search string
}

// Page carries one page of results plus the total match count the panel
// reports before pagination.
type Page[E any] struct {
	Items []E
	Total int
}

// NewClient builds a panel client. The Doer is typically a
// LoggingHTTPClient so that trace logging follows every call.
func NewClient(baseURL, token string, doer Doer) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, &cerr.ConfigurationError{
			Err: fmt.Errorf("panel base URL is not configured"),
		}
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, &cerr.ConfigurationError{
			Err: fmt.Errorf("invalid panel base URL %q: %w", baseURL, err),
		}
	}
	return &Client{baseURL: baseURL, token: token, http: doer}, nil
}

func (c *Client) ListUsers(ctx context.Context, opts ListOptions) (Page[User], error) {
	var envelope struct {
		Users []User `json:"users"`
		Total int    `json:"total"`
	}
	if err := c.get(ctx, "/api/users", opts, &envelope); err != nil {
		return Page[User]{}, err
	}
	return Page[User]{Items: envelope.Users, Total: envelope.Total}, nil
}

func (c *Client) ListAdmins(ctx context.Context, opts ListOptions) (Page[Admin], error) {
	var envelope struct {
		Admins []Admin `json:"admins"`
		Total  int     `json:"total"`
	}
	if err := c.get(ctx, "/api/admins", opts, &envelope); err != nil {
		return Page[Admin]{}, err
	}
	return Page[Admin]{Items: envelope.Admins, Total: envelope.Total}, nil
}

func (c *Client) ListNodes(ctx context.Context, opts ListOptions) (Page[Node], error) {
	var envelope struct {
		Nodes []Node `json:"nodes"`
		Total int    `json:"total"`
	}
	if err := c.get(ctx, "/api/nodes", opts, &envelope); err != nil {
		return Page[Node]{}, err
	}
	return Page[Node]{Items: envelope.Nodes, Total: envelope.Total}, nil
}

func (c *Client) ListGroups(ctx context.Context, opts ListOptions) (Page[Group], error) {
	var envelope struct {
		Groups []Group `json:"groups"`
		Total  int     `json:"total"`
	}
	if err := c.get(ctx, "/api/groups", opts, &envelope); err != nil {
		return Page[Group]{}, err
	}
	return Page[Group]{Items: envelope.Groups, Total: envelope.Total}, nil
}

// ListHosts returns hosts sorted by ascending priority, the order the
// panel serves them to subscribers.
func (c *Client) ListHosts(ctx context.Context, opts ListOptions) (Page[Host], error) {
	var envelope struct {
		Hosts []Host `json:"hosts"`
		Total int    `json:"total"`
	}
	if err := c.get(ctx, "/api/hosts", opts, &envelope); err != nil {
		return Page[Host]{}, err
	}
	return Page[Host]{Items: envelope.Hosts, Total: envelope.Total}, nil
}

// CreateNode registers a backend node. Address, port and usage coefficient
// are validated locally first, mirroring the panel's own rules.
func (c *Client) CreateNode(ctx context.Context, node Node) (Node, error) {
	if err := validateNode(node); err != nil {
		return Node{}, &cerr.ConfigurationError{Err: err}
	}
	var out Node
	err := c.send(ctx, http.MethodPost, "/api/node", node, &out)
	return out, err
}

// UpdateNode modifies an existing node, with the same local validation as
// CreateNode.
func (c *Client) UpdateNode(ctx context.Context, node Node) (Node, error) {
	if err := validateNode(node); err != nil {
		return Node{}, &cerr.ConfigurationError{Err: err}
	}
	var out Node
	err := c.send(ctx, http.MethodPut, "/api/node/"+strconv.Itoa(node.ID), node, &out)
	return out, err
}

func validateNode(node Node) error {
	if err := ValidateAddress(node.Address); err != nil {
		return err
	}
	if err := ValidatePort(node.Port); err != nil {
		return err
	}
	return ValidateUsageCoefficient(node.UsageCoefficient)
}

// ReorderHosts persists a new host priority ordering. The ids slice is the
// complete desired order, first entry gets priority 0.
func (c *Client) ReorderHosts(ctx context.Context, ids []int) error {
	entries := make([]map[string]int, 0, len(ids))
	for i, id := range ids {
		entries = append(entries, map[string]int{"id": id, "priority": i})
	}
	body := map[string]any{"hosts": entries}
	return c.send(ctx, http.MethodPut, "/api/hosts/priority", body, nil)
}

func (c *Client) DeleteHost(ctx context.Context, id int) error {
	return c.send(ctx, http.MethodDelete, "/api/host/"+strconv.Itoa(id), nil, nil)
}

// SetHostEnabled enables or disables a host without removing it from the
// subscription list.
func (c *Client) SetHostEnabled(ctx context.Context, id int, enabled bool) (Host, error) {
	var out Host
	body := map[string]any{"is_disabled": !enabled}
	err := c.send(ctx, http.MethodPut, "/api/host/"+strconv.Itoa(id), body, &out)
	return out, err
}

// DuplicateHost clones an existing host. The copy lands directly after the
// source in priority order.
func (c *Client) DuplicateHost(ctx context.Context, id int) (Host, error) {
	var out Host
	err := c.send(ctx, http.MethodPost, "/api/host/"+strconv.Itoa(id)+"/duplicate", nil, &out)
	return out, err
}

func (c *Client) DeleteUser(ctx context.Context, username string) error {
	return c.send(ctx, http.MethodDelete, "/api/user/"+url.PathEscape(username), nil, nil)
}

// SetUserStatus enables or disables a user account.
func (c *Client) SetUserStatus(ctx context.Context, username string, status UserStatus) (User, error) {
	var out User
	body := map[string]any{"status": status}
	err := c.send(ctx, http.MethodPut, "/api/user/"+url.PathEscape(username), body, &out)
	return out, err
}

func (c *Client) get(ctx context.Context, path string, opts ListOptions, out any) error {
	q := url.Values{}
	if opts.Offset > 0 {
		q.Set("offset", strconv.Itoa(opts.Offset))
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Search != "" {
		q.Set("search", opts.Search)
	}
	if len(q) > 0 {
		path = path + "?" + q.Encode()
	}
	return c.send(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) send(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// decodeAPIError maps a non-2xx response onto an APIError, pulling the
// human readable message from the panel's "detail" field when present.
func decodeAPIError(resp *http.Response) error {
	apiErr := &cerr.APIError{StatusCode: resp.StatusCode}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err == nil && len(raw) > 0 {
		var payload struct {
			Detail string `json:"detail"`
		}
		if json.Unmarshal(raw, &payload) == nil && payload.Detail != "" {
			apiErr.Detail = payload.Detail
		}
	}
	if apiErr.Detail == "" {
		apiErr.Detail = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
