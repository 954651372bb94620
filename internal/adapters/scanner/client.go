// Package scanner is the gate side of check-in: it decodes QR codes, queues
// them and submits each one to the server for validation.
package scanner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"qrentry/internal/ports/output"
)

// Result is what the gate operator sees after one validation.
type Result struct {
	OK           bool
	Status       int
	Message      string
	AttendeeName string
}

// Config is the server-side default event and venue.
type Config struct {
	DefaultEvent string `json:"defaultEvent"`
	DefaultVenue string `json:"defaultVenue"`
}

// Client talks to the check-in HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a Client for the server at baseURL. A nil httpClient uses
// a client with a 10s timeout.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// Config fetches the server defaults.
func (c *Client) Config(ctx context.Context) (Config, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/config", nil)
	if err != nil {
		return Config{}, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return Config{}, fmt.Errorf("get config: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Config{}, fmt.Errorf("get config: unexpected status %d", resp.StatusCode)
	}
	var cfg Config
	if err := json.NewDecoder(resp.Body).Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

type scanBody struct {
	UID   string `json:"uid"`
	Venue string `json:"venue"`
}

type scanReply struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	AttendeeName string `json:"attendeeName"`
	Error        string `json:"error"`
}

// Validate submits uid for entry at venue. Any HTTP answer yields a Result;
// only transport failures return an error.
func (c *Client) Validate(ctx context.Context, uid, venue string) (Result, error) {
	body, err := json.Marshal(scanBody{UID: uid, Venue: venue})
	if err != nil {
		return Result{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/qr/scan", bytes.NewReader(body))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("post scan: %w", err)
	}
	defer resp.Body.Close()

	var reply scanReply
	// Error bodies may be empty or not JSON; the status still tells the story.
	_ = json.NewDecoder(resp.Body).Decode(&reply)

	res := Result{
		OK:           resp.StatusCode >= 200 && resp.StatusCode < 300,
		Status:       resp.StatusCode,
		Message:      reply.Message,
		AttendeeName: reply.AttendeeName,
	}
	return res, nil
}

// Line renders res for the gate display in locale. Admissions greet the
// attendee by name; answers without a message show the HTTP status.
func (r Result) Line(tr output.T, locale string) string {
	switch {
	case r.OK && r.AttendeeName != "":
		return tr.T(locale, "scan.admitted_named", map[string]any{"Name": r.AttendeeName})
	case r.Message == "" && !r.OK:
		return tr.T(locale, "scan.error", map[string]any{"Code": r.Status})
	case r.AttendeeName != "":
		return r.AttendeeName + ": " + r.Message
	default:
		return r.Message
	}
}
