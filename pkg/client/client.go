// Package client is a Go client for the soundboard REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"soundboard/pkg/domain"
)

// Client calls the soundboard API over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// APIError is a non-2xx response from the API.
type APIError struct {
	Status    int
	Message   string
	Code      string
	RequestID string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (%s)", e.Message, e.Code)
	}
	return e.Message
}

// Health is the /health payload.
type Health struct {
	Status   string `json:"status"`
	Time     string `json:"time"`
	Database string `json:"database"`
}

// New constructs a client for baseURL, e.g. http://localhost:8080.
func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *Client) Health(ctx context.Context) (Health, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return Health{}, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Health{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return Health{}, &APIError{Status: resp.StatusCode, Message: resp.Status}
	}
	var h Health
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil {
		return Health{}, err
	}
	return h, nil
}

func (c *Client) CreateSoundboard(ctx context.Context, title, text, email string) (domain.Soundboard, error) {
	var sb domain.Soundboard
	err := c.doJSON(ctx, http.MethodPost, "/soundboards", map[string]string{
		"title": title,
		"text":  text,
		"email": email,
	}, &sb)
	return sb, err
}

func (c *Client) ListSoundboards(ctx context.Context, email string) ([]domain.SoundboardView, error) {
	var views []domain.SoundboardView
	err := c.doJSON(ctx, http.MethodGet, "/soundboards/"+url.PathEscape(email), nil, &views)
	return views, err
}

func (c *Client) DeleteSoundboard(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/soundboards/"+url.PathEscape(id), nil, nil)
}

func (c *Client) GetHistory(ctx context.Context, email string) (domain.Conversation, error) {
	var conv domain.Conversation
	err := c.doJSON(ctx, http.MethodGet, "/history/"+url.PathEscape(email), nil, &conv)
	return conv, err
}

// ListReports fetches one page of reports. Zero page or limit use the server defaults.
func (c *Client) ListReports(ctx context.Context, page, limit int) (domain.ReportPage, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	path := "/report"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var res domain.ReportPage
	err := c.doJSON(ctx, http.MethodGet, path, nil, &res)
	return res, err
}

func (c *Client) SubmitFeedback(ctx context.Context, comment string, rating int) (domain.Feedback, error) {
	var f domain.Feedback
	err := c.doJSON(ctx, http.MethodPost, "/feedback", map[string]any{
		"comment": comment,
		"rating":  rating,
	}, &f)
	return f, err
}

type envelope struct {
	Success   bool            `json:"success"`
	Error     string          `json:"error"`
	Code      string          `json:"code"`
	RequestID string          `json:"requestId"`
	Data      json.RawMessage `json:"data"`
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	decodeErr := json.NewDecoder(resp.Body).Decode(&env)
	if resp.StatusCode >= 400 {
		msg := env.Error
		if msg == "" {
			msg = resp.Status
		}
		return &APIError{Status: resp.StatusCode, Message: msg, Code: env.Code, RequestID: env.RequestID}
	}
	if decodeErr != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, decodeErr)
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}
