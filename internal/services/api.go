// API service for making raw HTTP requests to the catalog server
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
)

const defaultBaseURL = "http://localhost:8080"

// APIService performs raw JSON requests against the catalog server.
//
// An APIService created by [APIService.WithToken] attaches the token as a bearer
// Authorization header through an [oauth2.Transport].
type APIService struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

// NewAPIService creates a new API service instance for the catalog server.
func NewAPIService(baseURL string, client *http.Client) *APIService {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &APIService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
	}
}

// WithToken returns a copy of the service that authenticates every request with token.
// An empty token returns an unauthenticated copy.
func (a *APIService) WithToken(token string) *APIService {
	cp := *a
	cp.token = token
	return &cp
}

// Token returns the bearer token in use, if any.
func (a *APIService) Token() string { return a.token }

// BaseURL returns the server root all request paths are joined to.
func (a *APIService) BaseURL() string { return a.baseURL }

func (a *APIService) client() *http.Client {
	if a.token == "" {
		return a.httpClient
	}

	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: a.token, TokenType: "Bearer"})
	return &http.Client{
		Transport:     &oauth2.Transport{Source: src, Base: a.httpClient.Transport},
		Timeout:       a.httpClient.Timeout,
		CheckRedirect: a.httpClient.CheckRedirect,
		Jar:           a.httpClient.Jar,
	}
}

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// OK reports whether the status code is in the 2xx range.
func (r *APIResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Do performs a request with an optional JSON body and returns the raw response.
//
// Only transport failures are returned as errors; HTTP error statuses are left to the caller.
func (a *APIService) Do(ctx context.Context, method, path string, data []byte) (*APIResponse, error) {
	var body io.Reader
	if data != nil {
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	apiResp := &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       raw,
	}

	var jsonData any
	if err := json.Unmarshal(raw, &jsonData); err == nil {
		apiResp.IsJSON = true
		apiResp.JSONData = jsonData
	}

	return apiResp, nil
}

// Get performs a GET request to the specified path and returns the raw response.
func (a *APIService) Get(ctx context.Context, path string) (*APIResponse, error) {
	return a.Do(ctx, http.MethodGet, path, nil)
}

// Post performs a POST request with the given JSON data and returns the raw response.
func (a *APIService) Post(ctx context.Context, path string, data []byte) (*APIResponse, error) {
	return a.Do(ctx, http.MethodPost, path, data)
}

// Put performs a PUT request with the given JSON data and returns the raw response.
func (a *APIService) Put(ctx context.Context, path string, data []byte) (*APIResponse, error) {
	return a.Do(ctx, http.MethodPut, path, data)
}

// Delete performs a DELETE request to the specified path and returns the raw response.
func (a *APIService) Delete(ctx context.Context, path string) (*APIResponse, error) {
	return a.Do(ctx, http.MethodDelete, path, nil)
}
