// Package client provides an HTTP client for the OpenAI video generation API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/raphaelgruber/soractl/internal/metrics"
	"github.com/raphaelgruber/soractl/internal/models"
)

// Default endpoints.
const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultSiteURL = "https://sora.chatgpt.com"
)

// ErrMissingAPIKey indicates that the client was configured without credentials.
var ErrMissingAPIKey = errors.New("openai api key is required")

// Options configures the client.
type Options struct {
	APIKey       string
	BaseURL      string // API root, defaults to DefaultBaseURL
	SiteURL      string // web app root used for page links, defaults to DefaultSiteURL
	Organization string
	HTTPClient   *http.Client // nil uses a client with the transport's default timeouts
	Logger       *slog.Logger
	Metrics      *metrics.Collector
}

// Client is the single authenticated gateway to the provider.
// It never retries; retry policy belongs to callers.
type Client struct {
	Links

	apiKey       string
	baseURL      string
	organization string
	httpClient   *http.Client
	logger       *slog.Logger
	metrics      *metrics.Collector
}

// New creates a new API client.
func New(opts Options) (*Client, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		Links:        NewLinks(opts.SiteURL),
		apiKey:       apiKey,
		baseURL:      baseURL,
		organization: strings.TrimSpace(opts.Organization),
		httpClient:   httpClient,
		logger:       logger,
		metrics:      opts.Metrics,
	}, nil
}

// request describes one call through do.
type request struct {
	op     string
	method string
	path   string
	query  url.Values
	body   any
	binary bool // artifact download: raw body and download-flavoured errors
}

// do is the only place that talks to the network. It injects auth headers,
// logs, records timings and normalizes non-2xx responses into *APIError.
func (c *Client) do(ctx context.Context, r request) ([]byte, error) {
	endpoint := c.baseURL + r.path
	if len(r.query) > 0 {
		endpoint += "?" + r.query.Encode()
	}

	var body io.Reader
	if r.body != nil {
		payload, err := json.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("X-Client-Request-Id", uuid.NewString())
	if c.organization != "" {
		req.Header.Set("OpenAI-Organization", c.organization)
	}
	if !r.binary {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("making request", "endpoint", r.path, "method", r.method)
	start := time.Now()

	data, err := c.roundTrip(req, r)
	c.metrics.RecordTiming(r.op, time.Since(start), err != nil)
	if err != nil {
		return nil, err
	}
	c.metrics.RecordBytes(r.op, int64(len(data)))
	c.logger.Debug("request successful", "endpoint", r.path, "bytes", len(data))
	return data, nil
}

func (c *Client) roundTrip(req *http.Request, r request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("api request failed", "endpoint", r.path, "error", err)
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, readErr := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := normalize(resp, data, r.binary)
		c.logger.Error("api request failed",
			"endpoint", r.path,
			"status", resp.StatusCode,
			"message", apiErr.Message,
			"type", apiErr.Type,
		)
		return nil, apiErr
	}
	if readErr != nil {
		return nil, fmt.Errorf("read response: %w", readErr)
	}
	return data, nil
}

// normalize builds the APIError for a non-2xx response. The nested
// error.message wins; otherwise the status line is used. Downloads fall back to
// the raw body text before the status line.
func normalize(resp *http.Response, body []byte, binary bool) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode, Status: resp.Status}

	var env errorBody
	if err := json.Unmarshal(body, &env); err == nil && env.Error != nil {
		apiErr.Message = env.Error.Message
		apiErr.Type = env.Error.Type
	}

	statusText := http.StatusText(resp.StatusCode)
	if statusText == "" {
		statusText = resp.Status
	}

	if binary {
		detail := apiErr.Message
		if detail == "" {
			detail = strings.TrimSpace(string(body))
		}
		if detail == "" {
			detail = statusText
		}
		apiErr.Message = fmt.Sprintf("Failed to download video (%d): %s", resp.StatusCode, detail)
		return apiErr
	}

	if apiErr.Message == "" {
		apiErr.Message = fmt.Sprintf("HTTP %d: %s", resp.StatusCode, statusText)
	}
	return apiErr
}

func (c *Client) doJSON(ctx context.Context, r request, out any) error {
	data, err := c.do(ctx, r)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

// =============================================================================
// VIDEO OPERATIONS
// =============================================================================

// CreateVideo submits a generation job. Prompt validation is the caller's job.
func (c *Client) CreateVideo(ctx context.Context, req models.CreateVideoRequest) (*models.Video, error) {
	var video models.Video
	err := c.doJSON(ctx, request{
		op:     metrics.OpCreateVideo,
		method: http.MethodPost,
		path:   "/videos",
		body:   req,
	}, &video)
	if err != nil {
		return nil, err
	}
	return &video, nil
}

// ListParams bounds a list request. Zero values are omitted.
type ListParams struct {
	Limit         int
	StartingAfter string
	EndingBefore  string
}

// ListVideos returns the page the server returns; it does not paginate further.
func (c *Client) ListVideos(ctx context.Context, params ListParams) (*models.VideoList, error) {
	q := url.Values{}
	if params.Limit > 0 {
		q.Set("limit", strconv.Itoa(params.Limit))
	}
	if params.StartingAfter != "" {
		q.Set("starting_after", params.StartingAfter)
	}
	if params.EndingBefore != "" {
		q.Set("ending_before", params.EndingBefore)
	}

	var list models.VideoList
	err := c.doJSON(ctx, request{
		op:     metrics.OpListVideos,
		method: http.MethodGet,
		path:   "/videos",
		query:  q,
	}, &list)
	if err != nil {
		return nil, err
	}
	if list.Data == nil {
		list.Data = []models.Video{}
	}
	return &list, nil
}

// GetVideo fetches the current server record of a job.
func (c *Client) GetVideo(ctx context.Context, id string) (*models.Video, error) {
	var video models.Video
	err := c.doJSON(ctx, request{
		op:     metrics.OpGetVideo,
		method: http.MethodGet,
		path:   "/videos/" + url.PathEscape(id),
	}, &video)
	if err != nil {
		return nil, err
	}
	return &video, nil
}

// DeleteVideo deletes a job remotely. Deleting twice surfaces the server's error.
func (c *Client) DeleteVideo(ctx context.Context, id string) error {
	return c.doJSON(ctx, request{
		op:     metrics.OpDeleteVideo,
		method: http.MethodDelete,
		path:   "/videos/" + url.PathEscape(id),
	}, nil)
}

// DownloadVideo fetches the rendered artifact as opaque bytes.
// Expired artifacts fail with an *APIError matching ErrContentExpired.
func (c *Client) DownloadVideo(ctx context.Context, id string) ([]byte, error) {
	return c.do(ctx, request{
		op:     metrics.OpDownloadVideo,
		method: http.MethodGet,
		path:   "/videos/" + url.PathEscape(id) + "/content",
		binary: true,
	})
}

// =============================================================================
// URL BUILDERS (no I/O)
// =============================================================================

// VideoContentURL is the API URL of the artifact. Fetching it requires auth.
func (c *Client) VideoContentURL(id string) string {
	return c.baseURL + "/videos/" + url.PathEscape(id) + "/content"
}

// Links builds web app URLs. It needs no credentials.
type Links struct {
	siteURL string
}

// NewLinks roots links at siteURL, or DefaultSiteURL when empty.
func NewLinks(siteURL string) Links {
	siteURL = strings.TrimRight(strings.TrimSpace(siteURL), "/")
	if siteURL == "" {
		siteURL = DefaultSiteURL
	}
	return Links{siteURL: siteURL}
}

// VideoPageURL is the browser page of a job on the web app.
func (l Links) VideoPageURL(id string) string {
	return l.siteURL + "/video/" + url.PathEscape(id)
}

// DraftsURL is the web app's drafts page.
func (l Links) DraftsURL() string {
	return l.siteURL + "/drafts"
}

// ProfileURL is the public profile page of username.
func (l Links) ProfileURL(username string) string {
	return l.siteURL + "/profile/@" + url.PathEscape(strings.TrimPrefix(username, "@"))
}
