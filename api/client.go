package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const DefaultBaseURL = "http://localhost:3000"

var (
	ErrUnauthorized = errors.New("not authorized, log in again")
	ErrNotFound     = errors.New("not found")
)

func init() {
	// The service reads qty, unit_price and amount as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// StatusError is returned for any response with a status code of 400 or above.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s failed with status code %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	}
	return nil
}

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Token      string
	Debug      bool
}

type LoginResponse struct {
	Token string `json:"token"`
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) SetDebug(debug bool) {
	c.Debug = debug
}

func (c *Client) SetToken(token string) {
	c.Token = token
}

// Login exchanges credentials for a bearer token. The token is returned, not
// stored; keeping it is the caller's business.
func (c *Client) Login(email, password string) (string, error) {
	if c.Debug {
		log.Println("Authenticating...")
	}
	var resp LoginResponse
	err := c.Do(http.MethodPost, "/auth/login", nil, map[string]string{
		"email":    email,
		"password": password,
	}, &resp)
	if err != nil {
		return "", fmt.Errorf("authentication failed: %w", err)
	}
	if resp.Token == "" {
		return "", errors.New("authentication failed: no token in response")
	}
	if c.Debug {
		log.Println("Authenticated successfully.")
	}
	return resp.Token, nil
}

func (c *Client) doRequest(method, endpoint string, params url.Values, body any, accept string) (*http.Response, error) {
	fullURL := c.BaseURL + endpoint

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, fullURL, reader)
	if err != nil {
		return nil, err
	}

	if params != nil {
		req.URL.RawQuery = params.Encode()
	}

	requestID := uuid.NewString()
	if c.Debug {
		log.Printf("Request: %s %s [%s]\n", method, req.URL.String(), requestID)
	}

	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("Accept", accept)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, &StatusError{
			Method:     method,
			Path:       endpoint,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(data)),
		}
	}

	return resp, nil
}

// Do sends body as JSON (when non-nil) and decodes the response into out
// (when non-nil). An empty response body leaves out untouched.
func (c *Client) Do(method, endpoint string, params url.Values, body, out any) error {
	resp, err := c.doRequest(method, endpoint, params, body, "application/json")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, err := io.Copy(io.Discard, resp.Body)
		return err
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, endpoint, err)
	}
	return nil
}

func (c *Client) GetPDF(endpoint string) (io.ReadCloser, error) {
	if c.Debug {
		log.Printf("Request PDF: GET %s%s\n", c.BaseURL, endpoint)
	}
	resp, err := c.doRequest(http.MethodGet, endpoint, nil, nil, "application/pdf")
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}
