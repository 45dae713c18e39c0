// Package gateway submits kiosk registrations to the backend.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// RegistrationPath is the backend endpoint for automatic registration
const RegistrationPath = "/api/adminui/regChallenge/auto"

const (
	// DuplicateCode is the structured error code for a group-name collision
	DuplicateCode = "DUPLICATE_GROUP_NAME"
	// DuplicateMarker appears in the message of a collision response from backends
	// that do not send DuplicateCode
	DuplicateMarker = "dupCheck"
	// GenericFailureMessage is shown for failures without a usable backend message
	GenericFailureMessage = "An error occurred. Please try again."
)

// Request is the body of a registration submission
type Request struct {
	GroupName   string `json:"GroupName"`
	PlayerCount int    `json:"playerCount"`
	Difficulty  int    `json:"difficulty"`
	QueueNumber string `json:"queueNumber"`
	DupCheck    bool   `json:"dupCheck"`
}

// OutcomeKind discriminates Outcome
type OutcomeKind string

const (
	OutcomeSuccess       OutcomeKind = "success"
	OutcomeDuplicateName OutcomeKind = "duplicate_name"
	OutcomeFailure       OutcomeKind = "failure"
)

// Outcome is the typed result of a submission. RoomID is set only on success.
type Outcome struct {
	Kind    OutcomeKind
	RoomID  string
	Message string
}

// Success builds a success outcome
func Success(roomID, message string) Outcome {
	return Outcome{Kind: OutcomeSuccess, RoomID: roomID, Message: message}
}

// DuplicateName builds a duplicate-name outcome
func DuplicateName(message string) Outcome {
	return Outcome{Kind: OutcomeDuplicateName, Message: message}
}

// Failure builds a failure outcome
func Failure(message string) Outcome {
	if message == "" {
		message = GenericFailureMessage
	}
	return Outcome{Kind: OutcomeFailure, Message: message}
}

// response is the backend's reply envelope
type response struct {
	Success *bool  `json:"success"`
	Message string `json:"message"`
	RoomID  string `json:"roomId"`
	Code    string `json:"code"`
}

// Config holds gateway settings
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// DefaultConfig returns the default gateway configuration
func DefaultConfig() Config {
	return Config{
		BaseURL: "http://localhost:8080",
		Timeout: 30 * time.Second,
	}
}

// Gateway is the kiosk's only network boundary
type Gateway struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a Gateway. A nil httpClient uses http.DefaultClient.
func New(cfg Config, httpClient *http.Client, logger *slog.Logger) *Gateway {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	return &Gateway{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		timeout:    cfg.Timeout,
		httpClient: httpClient,
		logger:     logger.With(slog.String("component", "gateway")),
	}
}

// Submit performs one registration round trip. Every failure resolves to an Outcome.
func (g *Gateway) Submit(ctx context.Context, req Request) Outcome {
	start := time.Now()
	out, err := g.submit(ctx, req)
	if err != nil {
		g.logger.Error("registration request failed",
			slog.String("group", req.GroupName),
			slog.String("queue_number", req.QueueNumber),
			slog.String("error", err.Error()))
		return Failure(GenericFailureMessage)
	}

	g.logger.Info("registration request completed",
		slog.String("group", req.GroupName),
		slog.String("queue_number", req.QueueNumber),
		slog.Bool("dup_check", req.DupCheck),
		slog.String("outcome", string(out.Kind)),
		slog.Duration("duration", time.Since(start)))
	return out
}

func (g *Gateway) submit(ctx context.Context, req Request) (Outcome, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	data, err := json.Marshal(req)
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+RegistrationPath, bytes.NewReader(data))
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return Outcome{}, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Outcome{}, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	var r response
	if err := json.Unmarshal(body, &r); err != nil {
		return Outcome{}, fmt.Errorf("failed to parse response: %w", err)
	}
	if r.Success == nil {
		return Outcome{}, errors.New("response missing success field")
	}

	return Interpret(*r.Success, r.Code, r.Message, r.RoomID), nil
}

// Interpret maps a well-formed backend reply to an Outcome.
// The structured code wins; the message marker covers older backends.
func Interpret(success bool, code, message, roomID string) Outcome {
	if success {
		return Success(roomID, message)
	}
	if code == DuplicateCode || strings.Contains(message, DuplicateMarker) {
		return DuplicateName(message)
	}
	return Failure(message)
}
