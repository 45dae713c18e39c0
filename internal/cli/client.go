package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mcoot/qrkiosk/internal/api/middleware"
	"github.com/mcoot/qrkiosk/internal/api/request"
	"github.com/mcoot/qrkiosk/internal/api/response"
	"github.com/mcoot/qrkiosk/internal/rooms"
)

// Client is an HTTP client for the API
type Client struct {
	baseURL    string
	adminKey   string
	httpClient *http.Client
}

// NewClient creates a new API client
func NewClient(baseURL, adminKey string) *Client {
	return &Client{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		adminKey: adminKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Ensure Client can back a rooms poller
var _ rooms.Fetcher = (*Client)(nil)

// APIError is a refusal or error envelope from the API
type APIError struct {
	Status  int    `json:"-"`
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

// Do performs an HTTP request. Error statuses and success:false bodies become *APIError.
func (c *Client) Do(ctx context.Context, method, path string, body, result any) error {
	url := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	if c.adminKey != "" {
		req.Header.Set(middleware.AdminKeyHeader, c.adminKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	// Refusals come back as 200 with success:false, errors with an error status
	var envelope struct {
		Success *bool  `json:"success"`
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	_ = json.Unmarshal(respBody, &envelope)

	if resp.StatusCode >= 400 {
		if envelope.Message != "" {
			return &APIError{Status: resp.StatusCode, Code: envelope.Code, Message: envelope.Message}
		}
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}
	if envelope.Success != nil && !*envelope.Success {
		return &APIError{Status: resp.StatusCode, Code: envelope.Code, Message: envelope.Message}
	}

	// Parse successful response
	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}

	return nil
}

// Get performs a GET request
func (c *Client) Get(ctx context.Context, path string, result any) error {
	return c.Do(ctx, http.MethodGet, path, nil, result)
}

// Post performs a POST request
func (c *Client) Post(ctx context.Context, path string, body, result any) error {
	return c.Do(ctx, http.MethodPost, path, body, result)
}

// Put performs a PUT request
func (c *Client) Put(ctx context.Context, path string, body, result any) error {
	return c.Do(ctx, http.MethodPut, path, body, result)
}

// Delete performs a DELETE request
func (c *Client) Delete(ctx context.Context, path string, result any) error {
	return c.Do(ctx, http.MethodDelete, path, nil, result)
}

// ListRooms fetches the rooms list
func (c *Client) ListRooms(ctx context.Context) ([]response.Room, error) {
	var result response.RoomListResponse
	if err := c.Get(ctx, "/api/adminui/rooms/list", &result); err != nil {
		return nil, err
	}
	return result.Data, nil
}

// UpdateRoom applies a staff edit to a room
func (c *Client) UpdateRoom(ctx context.Context, challengeID string, req request.UpdateRoomRequest) (response.Room, error) {
	var result response.RoomResponse
	if err := c.Put(ctx, "/api/adminui/rooms/update/"+challengeID, req, &result); err != nil {
		return response.Room{}, err
	}
	return result.Data, nil
}

// DeleteRoom removes a room
func (c *Client) DeleteRoom(ctx context.Context, challengeID string) (string, error) {
	var result response.MessageResponse
	if err := c.Delete(ctx, "/api/adminui/rooms/delete/"+challengeID, &result); err != nil {
		return "", err
	}
	return result.Message, nil
}

// Health checks the server health
func (c *Client) Health(ctx context.Context) (response.HealthResponse, error) {
	var result response.HealthResponse
	err := c.Get(ctx, "/api/health", &result)
	return result, err
}
