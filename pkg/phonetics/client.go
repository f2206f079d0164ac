// Package phonetics provides a client for an external phonetic-transcription
// lookup API (dictionaryapi.dev-compatible).
package phonetics

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// Source values for a lookup result.
const (
	SourceFound = "found"
	SourceNone  = "none"
)

// Result is the outcome of one phonetic lookup. Primary and Secondary carry
// the US and UK transcriptions when the upstream entry distinguishes regions.
type Result struct {
	Source    string
	Primary   string
	Secondary string
}

// Combined renders the transcriptions as labeled segments: both present →
// `US: x, UK: y`; only one → that one alone, unlabeled.
func (r *Result) Combined() string {
	switch {
	case r.Primary != "" && r.Secondary != "":
		return fmt.Sprintf("US: %s, UK: %s", r.Primary, r.Secondary)
	case r.Primary != "":
		return r.Primary
	default:
		return r.Secondary
	}
}

// Client defines the phonetic lookup operations used by the pipeline.
type Client interface {
	// Lookup fetches transcriptions for a single-token word. A word the
	// upstream does not know yields Source == "none", not an error.
	Lookup(ctx context.Context, word string) (*Result, error)
}

// entry mirrors the upstream response shape.
type entry struct {
	Word      string `json:"word"`
	Phonetic  string `json:"phonetic"`
	Phonetics []struct {
		Text  string `json:"text"`
		Audio string `json:"audio"`
	} `json:"phonetics"`
}

// Option configures the phonetics client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a phonetic lookup client.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL: "https://api.dictionaryapi.dev/api/v2/entries/en",
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// retryableStatusCode returns true if the HTTP status code should trigger a retry.
func retryableStatusCode(code int) bool {
	return code == http.StatusTooManyRequests ||
		code == http.StatusInternalServerError ||
		code == http.StatusBadGateway ||
		code == http.StatusServiceUnavailable
}

// retryDo executes a GET with exponential backoff on transient failures.
func (c *httpClient) retryDo(ctx context.Context, req *http.Request) ([]byte, int, error) {
	const maxAttempts = 3
	backoff := 1 * time.Second

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		retryReq := req.Clone(ctx)

		resp, err := c.http.Do(retryReq)
		if err != nil {
			lastErr = err
			if attempt < maxAttempts {
				select {
				case <-ctx.Done():
					return nil, 0, ctx.Err()
				case <-time.After(backoff):
				}
				backoff *= 2
				continue
			}
			return nil, 0, lastErr
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			return nil, resp.StatusCode, eris.Wrap(readErr, "phonetics: read response body")
		}

		if retryableStatusCode(resp.StatusCode) && attempt < maxAttempts {
			lastErr = eris.Errorf("phonetics: status %d: %s", resp.StatusCode, string(body))
			select {
			case <-ctx.Done():
				return nil, 0, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
			continue
		}

		return body, resp.StatusCode, nil
	}

	return nil, 0, lastErr
}

func (c *httpClient) Lookup(ctx context.Context, word string) (*Result, error) {
	reqURL := fmt.Sprintf("%s/%s", c.baseURL, url.PathEscape(word))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "phonetics: create request")
	}
	req.Header.Set("Accept", "application/json")

	body, statusCode, err := c.retryDo(ctx, req)
	if err != nil {
		return nil, eris.Wrap(err, "phonetics: request failed")
	}

	// The upstream answers 404 for unknown words.
	if statusCode == http.StatusNotFound {
		return &Result{Source: SourceNone}, nil
	}
	if statusCode != http.StatusOK {
		return nil, eris.Errorf("phonetics: unexpected status %d: %s", statusCode, string(body))
	}

	var entries []entry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, eris.Wrap(err, "phonetics: parse response")
	}
	if len(entries) == 0 {
		return &Result{Source: SourceNone}, nil
	}

	res := fromEntry(entries[0])
	if res.Primary == "" && res.Secondary == "" {
		return &Result{Source: SourceNone}, nil
	}
	res.Source = SourceFound
	return res, nil
}

// fromEntry picks regional transcriptions out of an upstream entry. Audio
// URLs carry "-us" / "-uk" suffixes; untagged texts fall back to Primary.
func fromEntry(e entry) *Result {
	res := &Result{}
	for _, p := range e.Phonetics {
		if p.Text == "" {
			continue
		}
		switch {
		case strings.Contains(p.Audio, "-us."):
			if res.Primary == "" {
				res.Primary = p.Text
			}
		case strings.Contains(p.Audio, "-uk."):
			if res.Secondary == "" {
				res.Secondary = p.Text
			}
		case res.Primary == "":
			res.Primary = p.Text
		}
	}
	if res.Primary == "" && res.Secondary == "" && e.Phonetic != "" {
		res.Primary = e.Phonetic
	}
	return res
}
