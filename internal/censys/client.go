package censys

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/censys-cli/internal/logging"
	"github.com/go-resty/resty/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultBaseURL is the public Censys Platform API
	DefaultBaseURL = "https://api.platform.censys.io"

	// HostMediaType selects the v1 host representation
	HostMediaType = "application/vnd.censys.api.v3.host.v1+json"

	hostPath      = "/v3/global/asset/host/"
	searchPath    = "/v3/global/search/query"
	aggregatePath = "/v3/global/search/aggregate"

	organizationHeader = "X-Organization-ID"
	requestIDHeader    = "X-Request-ID"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// Observer receives the outcome of every API call. statusCode is 0 when no
// response was received.
type Observer interface {
	ObserveRequest(endpoint string, statusCode int, duration time.Duration)
}

// Client represents a Censys Platform API client
type Client struct {
	httpClient *resty.Client
	observer   Observer
}

// ClientConfig holds configuration for the Censys client
type ClientConfig struct {
	BaseURL        string
	Token          string
	OrganizationID string
	// Timeout of zero leaves the transport default in place
	Timeout   time.Duration
	UserAgent string
	Observer  Observer
}

// Request describes a single API call
type Request struct {
	// Endpoint is the logical name used for logs and metrics
	Endpoint string
	Method   string
	Path     string
	Body     interface{}
	Accept   string
}

// NewClient creates a new Censys client
func NewClient(config *ClientConfig) (*Client, error) {
	if config.Token == "" {
		return nil, ErrMissingToken
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	userAgent := config.UserAgent
	if userAgent == "" {
		userAgent = "censys-cli"
	}

	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetRetryCount(0)
	client.SetLogger(logrus.StandardLogger())
	client.JSONMarshal = jsonAPI.Marshal
	client.JSONUnmarshal = jsonAPI.Unmarshal
	if config.Timeout > 0 {
		client.SetTimeout(config.Timeout)
	}

	client.SetHeaders(map[string]string{
		"Accept":        "application/json",
		"User-Agent":    userAgent,
		"Authorization": fmt.Sprintf("Bearer %s", config.Token),
	})
	if config.OrganizationID != "" {
		client.SetHeader(organizationHeader, config.OrganizationID)
	}

	return &Client{
		httpClient: client,
		observer:   config.Observer,
	}, nil
}

// Do performs a request and returns the raw response body. Any non-2xx
// status becomes an *APIError carrying the status and body.
func (c *Client) Do(ctx context.Context, req *Request) (json.RawMessage, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	endpoint := req.Endpoint
	if endpoint == "" {
		endpoint = req.Path
	}

	r := c.httpClient.R().SetContext(ctx)
	if req.Accept != "" {
		r.SetHeader("Accept", req.Accept)
	}
	if req.Body != nil {
		r.SetHeader("Content-Type", "application/json")
		r.SetBody(req.Body)
	}
	if requestID := logging.GetRequestID(ctx); requestID != "" {
		r.SetHeader(requestIDHeader, requestID)
	}

	entry := logging.FromContext(ctx).WithField("endpoint", endpoint)
	start := time.Now()
	resp, err := r.Execute(method, req.Path)
	duration := time.Since(start)

	if err != nil {
		logging.LogAPICall(entry, method, req.Path, 0, duration, err)
		c.observe(endpoint, 0, duration)
		return nil, fmt.Errorf("failed to make request to %s: %w", req.Path, err)
	}

	c.observe(endpoint, resp.StatusCode(), duration)

	if !resp.IsSuccess() {
		apiErr := &APIError{StatusCode: resp.StatusCode(), Body: string(resp.Body())}
		logging.LogAPICall(entry, method, req.Path, resp.StatusCode(), duration, apiErr)
		return nil, apiErr
	}

	body := resp.Body()
	if !jsonAPI.Valid(body) {
		err := fmt.Errorf("response from %s is not valid JSON", req.Path)
		logging.LogAPICall(entry, method, req.Path, resp.StatusCode(), duration, err)
		return nil, err
	}

	logging.LogAPICall(entry, method, req.Path, resp.StatusCode(), duration, nil)
	return json.RawMessage(body), nil
}

// GetHost fetches a single host by IP address
func (c *Client) GetHost(ctx context.Context, ip string) (*Host, error) {
	raw, err := c.Do(ctx, &Request{
		Endpoint: "host",
		Method:   http.MethodGet,
		Path:     hostPath + url.PathEscape(ip),
		Accept:   HostMediaType,
	})
	if err != nil {
		return nil, err
	}

	payload := Normalize(raw)
	host, err := Decode[Host](unwrapResource(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal host %s: %w", ip, err)
	}
	if host.IP == "" {
		host.IP = ip
	}
	host.Raw = payload
	return host, nil
}

// Search runs a query and returns one page of hits
func (c *Client) Search(ctx context.Context, req *SearchRequest) (*SearchResult, error) {
	body := *req
	if body.Fields == nil {
		body.Fields = SearchFields
	}

	raw, err := c.Do(ctx, &Request{
		Endpoint: "search",
		Method:   http.MethodPost,
		Path:     searchPath,
		Body:     &body,
	})
	if err != nil {
		return nil, err
	}

	result, err := decodeSearch(Normalize(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal search response: %w", err)
	}
	return result, nil
}

// Aggregate buckets the matches of a query by a field
func (c *Client) Aggregate(ctx context.Context, req *AggregateRequest) (*AggregateResult, error) {
	raw, err := c.Do(ctx, &Request{
		Endpoint: "aggregate",
		Method:   http.MethodPost,
		Path:     aggregatePath,
		Body:     req,
	})
	if err != nil {
		return nil, err
	}

	payload := Normalize(raw)
	result, err := Decode[AggregateResult](payload)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal aggregate response: %w", err)
	}
	result.Raw = payload
	return result, nil
}

func (c *Client) observe(endpoint string, statusCode int, duration time.Duration) {
	if c.observer != nil {
		c.observer.ObserveRequest(endpoint, statusCode, duration)
	}
}
