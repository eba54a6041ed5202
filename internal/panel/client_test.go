package panel

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerr "github.com/meshguard/panelctl/internal/err"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(srv.URL, "test-token", srv.Client())
	require.NoError(t, err)
	return client
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	_, err := NewClient("", "token", http.DefaultClient)
	require.Error(t, err)

	var cfgErr *cerr.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestListUsersQueryAndAuth(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/users", r.URL.Path)
		assert.Equal(t, "10", r.URL.Query().Get("offset"))
		assert.Equal(t, "25", r.URL.Query().Get("limit"))
		assert.Equal(t, "alice", r.URL.Query().Get("search"))
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"users": [
				{"username": "alice", "status": "active", "used_traffic": 1024},
				{"username": "alina", "status": "limited", "used_traffic": 2048}
			],
			"total": 7
		}`))
	})

	page, err := client.ListUsers(context.Background(), ListOptions{Offset: 10, Limit: 25, Search: "alice"})
	require.NoError(t, err)

	assert.Equal(t, 7, page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "alice", page.Items[0].Username)
	assert.Equal(t, UserActive, page.Items[0].Status)
	assert.Equal(t, "alice", page.Items[0].EntityID())
}

func TestListHostsOmitsEmptyQuery(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.RawQuery)
		_, _ = w.Write([]byte(`{"hosts": [{"id": 3, "remark": "edge", "priority": 0}], "total": 1}`))
	})

	page, err := client.ListHosts(context.Background(), ListOptions{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "3", page.Items[0].EntityID())
}

func TestReorderHostsPayload(t *testing.T) {
	var got struct {
		Hosts []map[string]int `json:"hosts"`
	}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/hosts/priority", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, client.ReorderHosts(context.Background(), []int{9, 4, 7}))

	require.Len(t, got.Hosts, 3)
	assert.Equal(t, map[string]int{"id": 9, "priority": 0}, got.Hosts[0])
	assert.Equal(t, map[string]int{"id": 4, "priority": 1}, got.Hosts[1])
	assert.Equal(t, map[string]int{"id": 7, "priority": 2}, got.Hosts[2])
}

func TestAPIErrorDetailSurfaced(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"detail": "host ordering changed concurrently"}`))
	})

	err := client.ReorderHosts(context.Background(), []int{1, 2})
	require.Error(t, err)

	var apiErr *cerr.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.Equal(t, "host ordering changed concurrently", apiErr.Detail)
}

func TestAPIErrorFallsBackToStatusText(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`not json`))
	})

	_, err := client.ListNodes(context.Background(), ListOptions{})
	require.Error(t, err)

	var apiErr *cerr.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusText(http.StatusBadGateway), apiErr.Detail)
}

func TestDeleteUserEscapesPath(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/user/user%20one", r.URL.EscapedPath())
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, client.DeleteUser(context.Background(), "user one"))
}

func TestCreateNodeValidatesBeforeSending(t *testing.T) {
	called := false
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"id": 1}`))
	})

	_, err := client.CreateNode(context.Background(), Node{
		Name: "edge", Address: "not a host", Port: 62050, UsageCoefficient: 1,
	})
	require.Error(t, err)
	var cfgErr *cerr.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
	assert.False(t, called, "invalid node must be rejected before any request")

	_, err = client.CreateNode(context.Background(), Node{
		Name: "edge", Address: "node.example.com", Port: 70000, UsageCoefficient: 1,
	})
	require.Error(t, err)
	assert.False(t, called)

	_, err = client.CreateNode(context.Background(), Node{
		Name: "edge", Address: "node.example.com", Port: 62050, UsageCoefficient: 0,
	})
	require.Error(t, err)
	assert.False(t, called)

	created, err := client.CreateNode(context.Background(), Node{
		Name: "edge", Address: "node.example.com", Port: 62050, UsageCoefficient: 1,
	})
	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, 1, created.ID)
}

func TestUpdateNodeValidatesAndTargetsNode(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/node/4", r.URL.Path)
		_, _ = w.Write([]byte(`{"id": 4, "name": "edge", "status": "connected"}`))
	})

	_, err := client.UpdateNode(context.Background(), Node{
		ID: 4, Name: "edge", Address: "node.example.com", Port: 0, UsageCoefficient: 1,
	})
	require.Error(t, err, "port must be validated before the request")

	updated, err := client.UpdateNode(context.Background(), Node{
		ID: 4, Name: "edge", Address: "node.example.com", Port: 62050, UsageCoefficient: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, NodeConnected, updated.Status)
}

func TestSetHostEnabledFlipsDisabledFlag(t *testing.T) {
	var got map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/host/12", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"id": 12, "is_disabled": false}`))
	})

	host, err := client.SetHostEnabled(context.Background(), 12, true)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"is_disabled": false}, got)
	assert.False(t, host.IsDisabled)
}

func TestDuplicateHost(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/host/5/duplicate", r.URL.Path)
		_, _ = w.Write([]byte(`{"id": 6, "remark": "edge (copy)", "priority": 3}`))
	})

	copied, err := client.DuplicateHost(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, 6, copied.ID)
	assert.Equal(t, "edge (copy)", copied.Remark)
}

func TestValidateAddress(t *testing.T) {
	assert.NoError(t, ValidateAddress("10.0.0.1"))
	assert.NoError(t, ValidateAddress("2001:db8::1"))
	assert.NoError(t, ValidateAddress("node.example.com"))
	assert.NoError(t, ValidateAddress("*.cdn.example.com"))
	assert.Error(t, ValidateAddress(""))
	assert.Error(t, ValidateAddress("not a host"))
	assert.Error(t, ValidateAddress("-bad.example.com"))
}

func TestValidatePort(t *testing.T) {
	assert.NoError(t, ValidatePort(1))
	assert.NoError(t, ValidatePort(65535))
	assert.Error(t, ValidatePort(0))
	assert.Error(t, ValidatePort(70000))
}

func TestFormatTraffic(t *testing.T) {
	assert.Equal(t, "512 B", FormatTraffic(512))
	assert.Equal(t, "1.0 KiB", FormatTraffic(1024))
	assert.Equal(t, "1.5 GiB", FormatTraffic(1610612736))
}
