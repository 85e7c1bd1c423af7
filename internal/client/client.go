// Package client talks to the ColisApp HTTP API. It backs the wizard's
// location source and simulation service in the CLI.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"colisapp/internal/models"
)

// APIError is a non-2xx answer of the API.
type APIError struct {
	Status  int
	Message string
	Errors  []string
}

func (e *APIError) Error() string {
	if len(e.Errors) > 0 {
		return fmt.Sprintf("api: %d %s: %s", e.Status, e.Message, strings.Join(e.Errors, "; "))
	}
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

func (e *APIError) StatusCode() int { return e.Status }

// Messages returns the per-violation messages, or the message alone.
func (e *APIError) Messages() []string {
	if len(e.Errors) > 0 {
		return e.Errors
	}
	if e.Message != "" {
		return []string{e.Message}
	}
	return nil
}

// Client is safe for concurrent use.
type Client struct {
	base       *url.URL
	httpClient *http.Client
	token      string
}

// New builds a client for baseURL (e.g. http://localhost:8080/api) with its
// own cookie jar, which carries the pending-simulation cookie.
func New(baseURL string) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("client.New: %w", err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("client.New: %w", err)
	}
	return &Client{
		base:       u,
		httpClient: &http.Client{Timeout: 10 * time.Second, Jar: jar},
	}, nil
}

// WithHTTPClient replaces the transport, keeping the cookie jar when hc has none.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	if hc.Jar == nil {
		hc.Jar = c.httpClient.Jar
	}
	c.httpClient = hc
	return c
}

// SetToken attaches a bearer token to later requests.
func (c *Client) SetToken(token string) { c.token = token }

// Cookies returns the cookies the API has set.
func (c *Client) Cookies() []*http.Cookie {
	return c.httpClient.Jar.Cookies(c.base)
}

// SetCookies restores cookies saved by an earlier session.
func (c *Client) SetCookies(cookies []*http.Cookie) {
	c.httpClient.Jar.SetCookies(c.base, cookies)
}

func (c *Client) ListCountries(ctx context.Context) ([]models.Option, error) {
	var out []models.Option
	err := c.do(ctx, http.MethodGet, "/countries", nil, nil, &out)
	return out, err
}

func (c *Client) ListCitiesForCountry(ctx context.Context, countryID string) ([]models.Option, error) {
	var out []models.Option
	err := c.do(ctx, http.MethodGet, "/cities", url.Values{"countryId": {countryID}}, nil, &out)
	return out, err
}

func (c *Client) ListAgenciesForCity(ctx context.Context, cityID string) ([]models.Option, error) {
	var out []models.Option
	err := c.do(ctx, http.MethodGet, "/agencies", url.Values{"cityId": {cityID}}, nil, &out)
	return out, err
}

func (c *Client) ListDestinationCountries(ctx context.Context, departureCountryID string) ([]models.Option, error) {
	var out []models.Option
	err := c.do(ctx, http.MethodGet, "/destination-countries", url.Values{"departureCountryId": {departureCountryID}}, nil, &out)
	return out, err
}

func (c *Client) CreateSimulation(ctx context.Context, req models.CreateSimulationRequest) (*models.SimulationCreated, error) {
	var out models.SimulationCreated
	if err := c.do(ctx, http.MethodPost, "/simulations", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PendingSimulation returns nil, nil when the API has no pending simulation for our cookie.
func (c *Client) PendingSimulation(ctx context.Context) (*models.Simulation, error) {
	var out models.Simulation
	err := c.do(ctx, http.MethodGet, "/simulations/pending", nil, nil, &out)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DiscardPending(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/simulations/pending", nil, nil, nil)
}

// GetSimulation loads the results view of a simulation.
func (c *Client) GetSimulation(ctx context.Context, id, token string) (*models.Simulation, error) {
	var q url.Values
	if token != "" {
		q = url.Values{"token": {token}}
	}
	var out models.Simulation
	if err := c.do(ctx, http.MethodGet, "/simulations/"+url.PathEscape(id), q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login stores the issued token on the client.
func (c *Client) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	var out models.LoginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, models.LoginRequest{Email: email, Password: password}, &out); err != nil {
		return nil, err
	}
	c.token = out.Token
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := *c.base
	u.Path += path
	u.RawQuery = query.Encode()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("client: encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("client: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var payload models.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Message != "" {
			apiErr.Message = payload.Message
			apiErr.Errors = payload.Errors
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("client: decode %s %s: %w", method, path, err)
	}
	return nil
}
