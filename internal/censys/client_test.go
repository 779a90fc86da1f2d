package censys

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/censys-cli/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

// newTestServer serves a canned response and records what it received
func newTestServer(t *testing.T, status int, body string) (*httptest.Server, *recordedRequest) {
	t.Helper()
	got := &recordedRequest{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		got.Method = r.Method
		got.Path = r.URL.Path
		got.Header = r.Header.Clone()
		got.Body = data

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server, got
}

func newTestClient(t *testing.T, baseURL string, observer Observer) *Client {
	t.Helper()
	client, err := NewClient(&ClientConfig{
		BaseURL:        baseURL,
		Token:          "test-token",
		OrganizationID: "org-123",
		UserAgent:      "censys-cli/test",
		Observer:       observer,
	})
	require.NoError(t, err)
	return client
}

type fakeObserver struct {
	mu    sync.Mutex
	calls []string
	codes []int
}

func (f *fakeObserver) ObserveRequest(endpoint string, statusCode int, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, endpoint)
	f.codes = append(f.codes, statusCode)
}

func TestNewClient_RequiresToken(t *testing.T) {
	_, err := NewClient(&ClientConfig{BaseURL: "http://localhost"})
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestClient_GetHost(t *testing.T) {
	server, got := newTestServer(t, http.StatusOK, `{
		"result": {
			"resource": {
				"ip": "8.8.8.8",
				"location": {"country": "United States", "city": "Mountain View"},
				"autonomous_system": {"asn": 15169, "name": "GOOGLE"},
				"services": [{"port": 53, "protocol": "DNS", "transport_protocol": "udp"}]
			}
		}
	}`)
	observer := &fakeObserver{}
	client := newTestClient(t, server.URL, observer)

	ctx := logging.WithRequestID(context.Background(), "req-1")
	host, err := client.GetHost(ctx, "8.8.8.8")
	require.NoError(t, err)

	assert.Equal(t, http.MethodGet, got.Method)
	assert.Equal(t, "/v3/global/asset/host/8.8.8.8", got.Path)
	assert.Equal(t, "Bearer test-token", got.Header.Get("Authorization"))
	assert.Equal(t, "org-123", got.Header.Get("X-Organization-ID"))
	assert.Equal(t, HostMediaType, got.Header.Get("Accept"))
	assert.Equal(t, "censys-cli/test", got.Header.Get("User-Agent"))
	assert.Equal(t, "req-1", got.Header.Get("X-Request-ID"))

	assert.Equal(t, "8.8.8.8", host.IP)
	assert.Equal(t, "Mountain View", host.Location.City)
	assert.Equal(t, 15169, host.AutonomousSystem.ASN)
	require.Len(t, host.Services, 1)
	assert.Equal(t, "udp", host.Services[0].TransportProtocol)
	assert.Contains(t, string(host.Raw), `"resource"`)

	assert.Equal(t, []string{"host"}, observer.calls)
	assert.Equal(t, []int{http.StatusOK}, observer.codes)
}

func TestClient_OmitsOrganizationHeaderWhenUnset(t *testing.T) {
	server, got := newTestServer(t, http.StatusOK, `{"result": {"ip": "1.1.1.1"}}`)
	client, err := NewClient(&ClientConfig{BaseURL: server.URL, Token: "t"})
	require.NoError(t, err)

	_, err = client.GetHost(context.Background(), "1.1.1.1")
	require.NoError(t, err)

	_, present := got.Header["X-Organization-Id"]
	assert.False(t, present)
}

func TestClient_Search(t *testing.T) {
	server, got := newTestServer(t, http.StatusOK, `{
		"result": {
			"total_hits": 2,
			"next_page_token": "next-1",
			"hits": [
				{"host_v1": {"resource": {"ip": "1.1.1.1"}}},
				{"certificate_v1": {"resource": {"fingerprint_sha256": "ff"}}}
			]
		}
	}`)
	client := newTestClient(t, server.URL, nil)

	result, err := client.Search(context.Background(), &SearchRequest{
		Query:     "host.services.port: 443",
		PageSize:  5,
		PageToken: "prev",
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, got.Method)
	assert.Equal(t, "/v3/global/search/query", got.Path)
	assert.Equal(t, "application/json", got.Header.Get("Accept"))
	assert.Contains(t, got.Header.Get("Content-Type"), "application/json")

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(got.Body, &body))
	assert.Equal(t, "host.services.port: 443", body["query"])
	assert.Equal(t, float64(5), body["page_size"])
	assert.Equal(t, "prev", body["page_token"])
	assert.Len(t, body["fields"], len(SearchFields))

	assert.Equal(t, float64(2), result.TotalHits)
	assert.Equal(t, "next-1", result.NextPage())
	require.Len(t, result.Hits, 2)
	assert.Equal(t, "host", result.Hits[0].Tag())
	assert.Equal(t, "certificate", result.Hits[1].Tag())
}

func TestClient_SearchOmitsEmptyPageToken(t *testing.T) {
	server, got := newTestServer(t, http.StatusOK, `{"result": {"total_hits": 0, "hits": []}}`)
	client := newTestClient(t, server.URL, nil)

	_, err := client.Search(context.Background(), &SearchRequest{Query: "x", PageSize: 5})
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(got.Body, &body))
	assert.NotContains(t, body, "page_token")
}

func TestClient_Aggregate(t *testing.T) {
	server, got := newTestServer(t, http.StatusOK, `{
		"result": {
			"total_count": 100,
			"buckets": [{"key": "US", "count": 60}, {"key": "DE", "count": 40}]
		}
	}`)
	client := newTestClient(t, server.URL, nil)

	result, err := client.Aggregate(context.Background(), &AggregateRequest{
		Query:           "services.port: 22",
		Field:           "host.location.country",
		NumberOfBuckets: 5,
		FilterByQuery:   true,
	})
	require.NoError(t, err)

	assert.Equal(t, "/v3/global/search/aggregate", got.Path)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(got.Body, &body))
	assert.Equal(t, "host.location.country", body["field"])
	assert.Equal(t, float64(5), body["number_of_buckets"])
	assert.Equal(t, true, body["filter_by_query"])
	assert.NotContains(t, body, "count_by_level")

	require.Len(t, result.Buckets, 2)
	assert.Equal(t, "US", result.Buckets[0].Label())
	require.NotNil(t, result.TotalCount)
	assert.Equal(t, float64(100), *result.TotalCount)
}

func TestClient_AggregateNormalizesOnce(t *testing.T) {
	server, _ := newTestServer(t, http.StatusOK, `{"result": {"result": {"x": 1}, "buckets": [{"key": "US", "count": 3}]}}`)
	client := newTestClient(t, server.URL, nil)

	result, err := client.Aggregate(context.Background(), &AggregateRequest{Query: "q", Field: "host.location.country"})
	require.NoError(t, err)

	require.Len(t, result.Buckets, 1)
	assert.Equal(t, float64(3), result.Buckets[0].Count)
	assert.JSONEq(t, `{"result": {"x": 1}, "buckets": [{"key": "US", "count": 3}]}`, string(result.Raw))
}

func TestClient_APIErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantHint bool
	}{
		{name: "payment required", status: http.StatusPaymentRequired, body: `{"error": "upgrade"}`, wantHint: true},
		{name: "forbidden", status: http.StatusForbidden, body: `{"error": "no access"}`, wantHint: true},
		{name: "not found", status: http.StatusNotFound, body: `{"error": "not found"}`},
		{name: "server error", status: http.StatusInternalServerError, body: `oops`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, _ := newTestServer(t, tt.status, tt.body)
			observer := &fakeObserver{}
			client := newTestClient(t, server.URL, observer)

			_, err := client.GetHost(context.Background(), "8.8.8.8")
			require.Error(t, err)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.body, apiErr.Body)
			assert.Contains(t, err.Error(), tt.body)
			if tt.wantHint {
				assert.Contains(t, err.Error(), PaywallHint)
			} else {
				assert.NotContains(t, err.Error(), PaywallHint)
			}
			assert.Equal(t, []int{tt.status}, observer.codes)
		})
	}
}

func TestClient_InvalidJSON(t *testing.T) {
	server, _ := newTestServer(t, http.StatusOK, `<html>not json</html>`)
	client := newTestClient(t, server.URL, nil)

	_, err := client.Search(context.Background(), &SearchRequest{Query: "x", PageSize: 1})
	require.Error(t, err)

	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
	assert.Contains(t, err.Error(), "not valid JSON")
}

func TestClient_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	observer := &fakeObserver{}
	client := newTestClient(t, server.URL, observer)

	_, err := client.GetHost(context.Background(), "8.8.8.8")
	require.Error(t, err)
	assert.Equal(t, []int{0}, observer.codes)
}
