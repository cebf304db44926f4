package notion

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
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 64 << 10

// Client talks to the Notion API with a single integration token.
type Client struct {
	token   string
	opts    *options
	limiter *rate.Limiter
}

// New creates a Client. Returns ErrMissingToken if token is empty.
func New(token string, opts ...Option) (*Client, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrMissingToken
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	c := &Client{token: token, opts: o}
	if o.rps > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(o.rps), o.burst)
	}
	return c, nil
}

// QueryDatabase returns every page of databaseID matching q, following
// pagination until the result set is exhausted.
func (c *Client) QueryDatabase(ctx context.Context, databaseID string, q Query) ([]Page, error) {
	path := "/v1/databases/" + url.PathEscape(databaseID) + "/query"

	var pages []Page
	cursor := ""
	for {
		req := queryRequest{Query: q, StartCursor: cursor, PageSize: defaultPageSize}

		var resp queryResponse
		if err := c.do(ctx, http.MethodPost, path, req, &resp); err != nil {
			return nil, err
		}
		pages = append(pages, resp.Results...)

		if !resp.HasMore || resp.NextCursor == nil || *resp.NextCursor == "" {
			return pages, nil
		}
		if *resp.NextCursor == cursor {
			return nil, errors.Join(ErrDecodeFailed, fmt.Errorf("query %s: cursor %q repeated", databaseID, cursor))
		}
		cursor = *resp.NextCursor
	}
}

// RetrievePage fetches a single page by id.
func (c *Client) RetrievePage(ctx context.Context, pageID string) (*Page, error) {
	var page Page
	if err := c.do(ctx, http.MethodGet, "/v1/pages/"+url.PathEscape(pageID), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var payload []byte
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("notion: encode request: %w", err)
		}
		payload = b
	}

	for attempt := 1; ; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return errors.Join(ErrRequestFailed, err)
			}
		}

		retryAfter, err := c.roundTrip(ctx, method, path, payload, out)
		if err == nil {
			return nil
		}
		if attempt >= c.opts.retryAttempts || !IsRetryable(err) || ctx.Err() != nil {
			return err
		}

		wait := retryAfter
		if wait <= 0 {
			wait = time.Duration(attempt) * c.opts.retryInterval
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return errors.Join(err, ctx.Err())
		case <-timer.C:
		}
	}
}

func (c *Client) roundTrip(ctx context.Context, method, path string, payload []byte, out any) (time.Duration, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.opts.baseURL+path, body)
	if err != nil {
		return 0, errors.Join(ErrRequestFailed, fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", c.opts.version)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.opts.httpClient.Do(req)
	if err != nil {
		return 0, errors.Join(ErrRequestFailed, fmt.Errorf("%s %s: %w", method, path, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseRetryAfter(resp.Header.Get("Retry-After")), decodeAPIError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return 0, errors.Join(ErrDecodeFailed, fmt.Errorf("%s %s: %w", method, path, err))
	}
	return 0, nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return apiErr
	}
	var body struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &body) == nil {
		apiErr.Code = body.Code
		apiErr.Message = body.Message
	}
	return apiErr
}

func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}
