/*
Copyright The Kubernetes Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/IBM/go-sdk-core/v5/core"
	"k8s.io/utils/clock"

	"github.com/pfeifferj/pai-go-sdk/pkg/logging"
	"github.com/pfeifferj/pai-go-sdk/pkg/metrics"
)

const (
	headerRequestID = "x-acs-request-id"
	headerVersion   = "x-acs-version"
	headerAction    = "x-acs-action"

	contentTypeJSON = "application/json"
)

// DefaultUserAgent is sent unless WithUserAgent overrides it.
var DefaultUserAgent = "pai-go-sdk/0.1"

// PAIHTTPClient is a signed ROA client bound to one PAI service endpoint.
type PAIHTTPClient struct {
	client    *http.Client
	service   string
	baseURL   string
	version   string
	userAgent string
	auth      core.Authenticator
	clock     clock.PassiveClock
}

// Option customizes a PAIHTTPClient.
type Option func(*PAIHTTPClient)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(p *PAIHTTPClient) { p.client = c }
}

// WithAPIVersion sets the x-acs-version sent when a request does not name one.
func WithAPIVersion(version string) Option {
	return func(p *PAIHTTPClient) { p.version = version }
}

func WithUserAgent(ua string) Option {
	return func(p *PAIHTTPClient) { p.userAgent = ua }
}

func WithClock(c clock.PassiveClock) Option {
	return func(p *PAIHTTPClient) { p.clock = c }
}

// RequestConfig contains configuration for HTTP requests
type RequestConfig struct {
	Method string
	// Path may hold {name} placeholders filled from PathParams.
	Path       string
	PathParams map[string]string
	Query      map[string]string
	// Body is encoded as JSON when non-nil.
	Body    interface{}
	Headers map[string]string
	// Action and Version become x-acs-action and x-acs-version.
	Action  string
	Version string
}

// Response contains the HTTP response and body
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// RequestID returns the gateway request id, if any.
func (r *Response) RequestID() string {
	return r.Headers.Get(headerRequestID)
}

// NewPAIHTTPClient creates a client for service reachable at endpoint. An endpoint
// without a scheme is treated as https.
func NewPAIHTTPClient(service, endpoint string, auth core.Authenticator, opts ...Option) *PAIHTTPClient {
	if !strings.Contains(endpoint, "://") {
		endpoint = "https://" + endpoint
	}
	c := &PAIHTTPClient{
		client: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     30 * time.Second,
			},
		},
		service:   service,
		baseURL:   strings.TrimSuffix(endpoint, "/"),
		userAgent: DefaultUserAgent,
		auth:      auth,
		clock:     clock.RealClock{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Service returns the service name used in logs and metrics.
func (c *PAIHTTPClient) Service() string {
	return c.service
}

// BaseURL returns the resolved endpoint including scheme.
func (c *PAIHTTPClient) BaseURL() string {
	return c.baseURL
}

// Do builds, signs and executes a request. Responses with status >= 400 are returned
// together with an *APIError.
func (c *PAIHTTPClient) Do(ctx context.Context, config RequestConfig) (*Response, error) {
	req, err := c.buildRequest(ctx, config)
	if err != nil {
		return nil, err
	}

	logger := logging.FromContext(ctx, "client").WithName("http").WithValues(
		"service", c.service, "action", config.Action, "method", req.Method, "path", req.URL.Path)

	start := c.clock.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		metrics.RecordAPIRequest(c.service, config.Action, "error", c.clock.Since(start))
		return nil, fmt.Errorf("making request: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			logger.Debug("failed to close response body", "error", closeErr)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	metrics.RecordAPIRequest(c.service, config.Action, strconv.Itoa(resp.StatusCode), c.clock.Since(start))

	response := &Response{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       body,
	}
	logger.Debug("request completed", "status", resp.StatusCode, "requestId", response.RequestID())

	if resp.StatusCode >= 400 {
		return response, parseAPIError(resp.StatusCode, body, req.URL.Path, response.RequestID())
	}
	return response, nil
}

// DoJSON executes the request and decodes the response body into out. An empty body or
// a nil out leaves out untouched.
func (c *PAIHTTPClient) DoJSON(ctx context.Context, config RequestConfig, out interface{}) error {
	resp, err := c.Do(ctx, config)
	if err != nil {
		return err
	}
	if out == nil || len(resp.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("unmarshaling %s response: %w", config.Action, err)
	}
	return nil
}

func (c *PAIHTTPClient) buildRequest(ctx context.Context, config RequestConfig) (*http.Request, error) {
	method := config.Method
	if method == "" {
		method = http.MethodGet
	}

	builder := core.NewRequestBuilder(method).WithContext(ctx)
	if _, err := builder.ResolveRequestURL(c.baseURL, config.Path, config.PathParams); err != nil {
		return nil, fmt.Errorf("resolving %s: %w", config.Path, err)
	}
	for k, v := range config.Query {
		builder.AddQuery(k, v)
	}

	version := config.Version
	if version == "" {
		version = c.version
	}
	builder.AddHeader("Accept", contentTypeJSON)
	builder.AddHeader("User-Agent", c.userAgent)
	builder.AddHeader("Date", c.clock.Now().UTC().Format(http.TimeFormat))
	if version != "" {
		builder.AddHeader(headerVersion, version)
	}
	if config.Action != "" {
		builder.AddHeader(headerAction, config.Action)
	}
	if config.Body != nil {
		builder.AddHeader("Content-Type", contentTypeJSON)
		if _, err := builder.SetBodyContentJSON(config.Body); err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}
	}
	for k, v := range config.Headers {
		builder.AddHeader(k, v)
	}

	req, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if c.auth != nil {
		if err := c.auth.Authenticate(req); err != nil {
			return nil, fmt.Errorf("signing request: %w", err)
		}
	}
	return req, nil
}

// Get performs a GET request
func (c *PAIHTTPClient) Get(ctx context.Context, action, path string, query map[string]string, out interface{}) error {
	return c.DoJSON(ctx, RequestConfig{Method: http.MethodGet, Action: action, Path: path, Query: query}, out)
}

// Post performs a POST request with a JSON body
func (c *PAIHTTPClient) Post(ctx context.Context, action, path string, body, out interface{}) error {
	return c.DoJSON(ctx, RequestConfig{Method: http.MethodPost, Action: action, Path: path, Body: body}, out)
}

// Put performs a PUT request with an optional JSON body
func (c *PAIHTTPClient) Put(ctx context.Context, action, path string, body, out interface{}) error {
	return c.DoJSON(ctx, RequestConfig{Method: http.MethodPut, Action: action, Path: path, Body: body}, out)
}

// Delete performs a DELETE request
func (c *PAIHTTPClient) Delete(ctx context.Context, action, path string, out interface{}) error {
	return c.DoJSON(ctx, RequestConfig{Method: http.MethodDelete, Action: action, Path: path}, out)
}
