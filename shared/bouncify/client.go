// Package bouncify is a thin client for the Bouncify email verification API.
package bouncify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.bouncify.io/v1"

// ErrUnavailable wraps transport failures, non-2xx responses and
// undecodable bodies.
var ErrUnavailable = errors.New("bouncify unavailable")

// HTTPClient matches net/http.Client Do signature for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config defines settings for the Bouncify client.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client calls the Bouncify HTTP API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient HTTPClient
}

// New creates a Bouncify client. A nil httpClient gets a default client with cfg.Timeout.
func New(httpClient HTTPClient, cfg Config) *Client {
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = defaultBaseURL
	}
	return &Client{
		baseURL:    base,
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
	}
}

func (c *Client) endpoint(path string, params url.Values) string {
	if params == nil {
		params = url.Values{}
	}
	params.Set("apikey", c.apiKey)
	return fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())
}

// send executes req and returns the response when the status is 2xx.
func (c *Client) send(req *http.Request) (*http.Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request: %v", ErrUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return resp, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.send(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}
	return nil
}

// UploadFile uploads a CSV list and returns the provider job id.
func (c *Client) UploadFile(ctx context.Context, filename string, content []byte) (*UploadResponse, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("local_file", filename)
	if err != nil {
		return nil, fmt.Errorf("build multipart: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return nil, fmt.Errorf("build multipart: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("build multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/bulk", nil), &body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var out UploadResponse
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	if out.JobID == "" {
		return nil, fmt.Errorf("%w: upload returned no job_id: %s", ErrUnavailable, out.Message)
	}
	return &out, nil
}

// StartVerification starts a previously uploaded job.
func (c *Client) StartVerification(ctx context.Context, jobID string) (*StartResponse, error) {
	payload, err := json.Marshal(map[string]string{"jobId": jobID, "action": "start"})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, c.endpoint("/bulk", nil), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var out StartResponse
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetStatus returns the current provider view of a bulk job.
func (c *Client) GetStatus(ctx context.Context, jobID string) (*StatusResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("/bulk", url.Values{"jobId": {jobID}}), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	var out StatusResponse
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RemoveJob deletes a bulk job on the provider side.
func (c *Client) RemoveJob(ctx context.Context, jobID string) (*RemoveResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.endpoint("/bulk", url.Values{"jobId": {jobID}}), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	var out RemoveResponse
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DownloadReport streams the CSV report, optionally filtered by result type
// (deliverable, undeliverable, accept_all, unknown). Caller closes the reader.
func (c *Client) DownloadReport(ctx context.Context, jobID, filterType string) (io.ReadCloser, error) {
	filters := []string{}
	if filterType != "" {
		filters = append(filters, filterType)
	}
	payload, err := json.Marshal(map[string][]string{"filterResult": filters})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/download", url.Values{"jobId": {jobID}}), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.send(req)
	if err != nil {
		return nil, err
	}

	// failures come back as a JSON body with success=false
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		defer resp.Body.Close()
		var out RemoveResponse
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil || !out.Success {
			return nil, fmt.Errorf("%w: download rejected: %s", ErrUnavailable, out.Message)
		}
		return nil, fmt.Errorf("%w: download returned no report", ErrUnavailable)
	}

	return resp.Body, nil
}

// VerifySingle verifies one address. A nil result with nil error means the
// provider answered without a verdict.
func (c *Client) VerifySingle(ctx context.Context, email string) (*SingleResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("/verify", url.Values{"email": {email}}), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.send(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrUnavailable, err)
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	var out SingleResult
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}
	if out.Result == "" {
		return nil, nil
	}
	out.Raw = json.RawMessage(raw)
	return &out, nil
}
