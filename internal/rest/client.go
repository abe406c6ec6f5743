// Package rest is the HTTP side of the platform API: message and
// interaction endpoints, application command registration, and gateway URL
// discovery. Requests respect the per-route rate-limit buckets the API
// advertises in its response headers.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// DefaultBaseURL is the production API endpoint.
const DefaultBaseURL = "https://discord.com/api/v10"

const userAgent = "DiscordBot (https://github.com/nextlevelbuilder/discgate, 0.1.0)"

// maxRetries bounds how often a single call is retried after 429 responses.
const maxRetries = 5

// Options configures a REST client.
type Options struct {
	Token      string
	BaseURL    string // defaults to DefaultBaseURL
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client is a rate-limit-aware API client. Safe for concurrent use.
type Client struct {
	hc      *http.Client
	baseURL string
	token   string
	log     *slog.Logger

	mu      sync.Mutex
	buckets map[string]*bucket
}

func NewClient(opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	base := opts.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		hc:      hc,
		baseURL: base,
		token:   opts.Token,
		log:     log,
		buckets: make(map[string]*bucket),
	}
}

// APIError is a non-2xx response from the API.
type APIError struct {
	Status  int
	Code    int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("rest: api error %d: %s (code %d)", e.Status, e.Message, e.Code)
	}
	return fmt.Sprintf("rest: api error %d", e.Status)
}

// bucket tracks the remaining quota of one route as reported by the API.
type bucket struct {
	mu        sync.Mutex
	remaining int
	resetAt   time.Time
	known     bool
}

// wait blocks until the bucket has quota or the context is done.
func (b *bucket) wait(ctx context.Context) error {
	b.mu.Lock()
	var d time.Duration
	if b.known && b.remaining <= 0 {
		d = time.Until(b.resetAt)
	}
	b.mu.Unlock()
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// update records the rate-limit headers from a response.
func (b *bucket) update(h http.Header) {
	rem := h.Get("X-RateLimit-Remaining")
	resetAfter := h.Get("X-RateLimit-Reset-After")
	if rem == "" || resetAfter == "" {
		return
	}
	remaining, err1 := strconv.Atoi(rem)
	secs, err2 := strconv.ParseFloat(resetAfter, 64)
	if err1 != nil || err2 != nil {
		return
	}
	b.mu.Lock()
	b.remaining = remaining
	b.resetAt = time.Now().Add(time.Duration(secs * float64(time.Second)))
	b.known = true
	b.mu.Unlock()
}

func (c *Client) bucketFor(route string) *bucket {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.buckets[route]
	if !ok {
		b = &bucket{}
		c.buckets[route] = b
	}
	return b
}

// do performs one JSON API call with rate limiting and 429 retries. body
// may be nil; out may be nil for calls whose response is discarded.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("rest: encode %s %s body: %w", method, path, err)
		}
	}
	contentType := ""
	if payload != nil {
		contentType = "application/json"
	}
	return c.doRaw(ctx, method, path, contentType, func() io.Reader {
		if payload == nil {
			return nil
		}
		return bytes.NewReader(payload)
	}, out)
}

// doRaw is do with a caller-supplied body. makeBody is invoked per attempt
// so retries get a fresh reader.
func (c *Client) doRaw(ctx context.Context, method, path, contentType string, makeBody func() io.Reader, out any) error {
	route := method + " " + path
	bkt := c.bucketFor(route)

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := bkt.wait(ctx); err != nil {
			return fmt.Errorf("rest: %s: %w", route, err)
		}

		var bodyReader io.Reader
		if makeBody != nil {
			bodyReader = makeBody()
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
		if err != nil {
			return fmt.Errorf("rest: %s: %w", route, err)
		}
		req.Header.Set("Authorization", "Bot "+c.token)
		req.Header.Set("User-Agent", userAgent)
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}

		resp, err := c.hc.Do(req)
		if err != nil {
			return fmt.Errorf("rest: %s: %w", route, err)
		}
		bkt.update(resp.Header)

		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := parseRetryAfter(resp)
			resp.Body.Close()
			c.log.Warn("rest: rate limited", "route", route,
				"retry_after", retryAfter, "attempt", attempt+1)
			t := time.NewTimer(retryAfter)
			select {
			case <-ctx.Done():
				t.Stop()
				return fmt.Errorf("rest: %s: %w", route, ctx.Err())
			case <-t.C:
			}
			continue
		}

		if resp.StatusCode >= 400 {
			apiErr := &APIError{Status: resp.StatusCode}
			var errBody struct {
				Code    int    `json:"code"`
				Message string `json:"message"`
			}
			if b, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16)); err == nil {
				if json.Unmarshal(b, &errBody) == nil {
					apiErr.Code = errBody.Code
					apiErr.Message = errBody.Message
				}
			}
			resp.Body.Close()
			return apiErr
		}

		if out == nil || resp.StatusCode == http.StatusNoContent {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			return nil
		}
		err = json.NewDecoder(resp.Body).Decode(out)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("rest: decode %s response: %w", route, err)
		}
		return nil
	}
	return fmt.Errorf("rest: %s: rate limit retries exhausted", route)
}

// parseRetryAfter reads the wait from a 429 body, falling back to the
// Retry-After header.
func parseRetryAfter(resp *http.Response) time.Duration {
	var body struct {
		RetryAfter float64 `json:"retry_after"`
		Global     bool    `json:"global"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&body); err == nil && body.RetryAfter > 0 {
		return time.Duration(body.RetryAfter * float64(time.Second))
	}
	if h := resp.Header.Get("Retry-After"); h != "" {
		if secs, err := strconv.ParseFloat(h, 64); err == nil {
			return time.Duration(secs * float64(time.Second))
		}
	}
	return time.Second
}

// File is an attachment for a multipart upload.
type File struct {
	Name string
	Data []byte
}

// doMultipart sends payload as the payload_json part plus one part per
// file.
func (c *Client) doMultipart(ctx context.Context, method, path string, payload any, files []File, out any) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("rest: encode multipart payload: %w", err)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("payload_json", string(payloadJSON)); err != nil {
		return fmt.Errorf("rest: write payload_json: %w", err)
	}
	for i, f := range files {
		part, err := w.CreateFormFile(fmt.Sprintf("files[%d]", i), f.Name)
		if err != nil {
			return fmt.Errorf("rest: create file part %q: %w", f.Name, err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return fmt.Errorf("rest: write file part %q: %w", f.Name, err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("rest: finish multipart body: %w", err)
	}

	body := buf.Bytes()
	return c.doRaw(ctx, method, path, w.FormDataContentType(), func() io.Reader {
		return bytes.NewReader(body)
	}, out)
}

// GatewayBotInfo is the response of GET /gateway/bot.
type GatewayBotInfo struct {
	URL               string `json:"url"`
	Shards            int    `json:"shards"`
	SessionStartLimit struct {
		Total          int `json:"total"`
		Remaining      int `json:"remaining"`
		ResetAfter     int `json:"reset_after"`
		MaxConcurrency int `json:"max_concurrency"`
	} `json:"session_start_limit"`
}

// GatewayBot asks the API where the gateway lives and how many identifies
// remain in the current window.
func (c *Client) GatewayBot(ctx context.Context) (*GatewayBotInfo, error) {
	var info GatewayBotInfo
	if err := c.do(ctx, http.MethodGet, "/gateway/bot", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// GatewayURL resolves the websocket URL for a fresh gateway connection.
// Shaped to plug straight into the gateway client's URL resolver.
func (c *Client) GatewayURL(ctx context.Context) (string, error) {
	info, err := c.GatewayBot(ctx)
	if err != nil {
		return "", err
	}
	return info.URL, nil
}
