package clinicapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"gotriage/internal/config"
	"gotriage/internal/models"
)

const apiKeyHeader = "x-api-key"

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Op         string
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	if len(e.Body) == 0 {
		return fmt.Sprintf("%s: unexpected status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: unexpected status %d, body: %s", e.Op, e.StatusCode, truncate(e.Body, 512))
}

// IsRetryable reports whether err is a rate-limit or server-error response
// that is expected to clear on its own (429, 500, 503).
func IsRetryable(err error) bool {
	var se *StatusError
	if !errors.As(err, &se) {
		return false
	}
	switch se.StatusCode {
	case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusServiceUnavailable:
		return true
	}
	return false
}

// SubmitResponse is the sink's acknowledgement.
type SubmitResponse struct {
	StatusCode int
	Body       json.RawMessage
}

func (r *SubmitResponse) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

func NewClient(cfg config.APIConfig) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.GetTimeout(),
		},
	}
}

// WithHTTPClient swaps the transport, mainly for tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// FetchPage requests one page of patients. Non-2xx responses come back as
// *StatusError. A 2xx body that cannot be read as a page is not an error: the
// page is returned with Malformed set so the caller can stop paging.
func (c *Client) FetchPage(ctx context.Context, page, limit int) (*models.PatientPage, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	endpoint := c.baseURL + "/patients?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set(apiKeyHeader, c.apiKey)
	req.Header.Set("Accept", "application/json")

	body, status, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, &StatusError{Op: fmt.Sprintf("fetch page %d", page), StatusCode: status, Body: body}
	}

	return decodePage(body), nil
}

func decodePage(body []byte) *models.PatientPage {
	var envelope struct {
		Data       json.RawMessage `json:"data"`
		Pagination json.RawMessage `json:"pagination"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return &models.PatientPage{Malformed: true}
	}

	page := &models.PatientPage{}
	if err := json.Unmarshal(envelope.Data, &page.Records); err != nil || page.Records == nil {
		page.Records = nil
		page.Malformed = true
	}

	// Decoded loosely so a wrong-typed field cannot sink the whole page.
	var pagination map[string]any
	if err := json.Unmarshal(envelope.Pagination, &pagination); err == nil {
		page.HasNext, _ = pagination["hasNext"].(bool)
		if v, ok := pagination["total"].(float64); ok {
			page.Total = int(v)
		}
		if v, ok := pagination["totalPages"].(float64); ok {
			page.TotalPages = int(v)
		}
	}
	return page
}

// SubmitAssessment posts the cohort lists once. A non-2xx answer is returned
// both as the response and as a *StatusError.
func (c *Client) SubmitAssessment(ctx context.Context, payload models.AssessmentPayload) (*SubmitResponse, error) {
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/submit-assessment", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apiKeyHeader, c.apiKey)

	body, status, err := c.do(req)
	if err != nil {
		return nil, err
	}

	resp := &SubmitResponse{StatusCode: status}
	if json.Valid(body) {
		resp.Body = body
	} else if len(body) > 0 {
		quoted, _ := json.Marshal(string(body))
		resp.Body = quoted
	}

	if !resp.IsSuccess() {
		return resp, &StatusError{Op: "submit assessment", StatusCode: status, Body: body}
	}
	return resp, nil
}

// Ping checks that the patients endpoint answers with the configured key.
func (c *Client) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	_, err := c.FetchPage(ctx, 1, 1)
	return time.Since(start), err
}

func (c *Client) do(req *http.Request) ([]byte, int, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}
	return body, resp.StatusCode, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
