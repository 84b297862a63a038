// Package fetch provides HTTP retrieval for metadata files and MRF payloads.
// It centralizes client construction, headers, and error classification.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultTimeout is the timeout for metadata file requests.
const DefaultTimeout = 30 * time.Second

// DefaultDownloadTimeout is the timeout for MRF payload downloads, which
// can be very large files on slow servers.
const DefaultDownloadTimeout = 120 * time.Second

// DefaultUserAgent mimics a desktop browser; several hospital sites
// refuse requests with obvious bot user agents.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// Options configures a fetch.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	Headers   map[string]string
}

// DefaultOptions returns sensible defaults for fetching.
func DefaultOptions() *Options {
	return &Options{
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
	}
}

// Result holds the response from a text fetch.
type Result struct {
	URL         string
	Body        string
	StatusCode  int
	ContentType string
}

// Error represents a failed fetch. StatusCode is zero for transport
// errors (timeout, connection refused) and non-zero when the server
// responded with a non-success status.
type Error struct {
	URL        string
	StatusCode int
	Message    string
	Cause      error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// NotFound reports whether the server answered 404.
func (e *Error) NotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// Timeout reports whether the failure was a deadline or network timeout.
func (e *Error) Timeout() bool {
	return IsTimeout(e.Cause)
}

// IsTimeout reports whether err is a context deadline or network timeout.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var nerr net.Error
	return errors.As(err, &nerr) && nerr.Timeout()
}

func newClient(opts *Options) *resty.Client {
	client := resty.New().
		SetTimeout(opts.Timeout).
		SetHeader("User-Agent", opts.UserAgent)
	for key, value := range opts.Headers {
		client.SetHeader(key, value)
	}
	return client
}

func validateURL(urlStr string) error {
	parsed, err := url.Parse(urlStr)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return &Error{URL: urlStr, Message: "invalid URL", Cause: err}
	}
	return nil
}

// Text retrieves a small text document such as cms-hpt.txt. The returned
// Result is populated even for non-success statuses so callers can
// distinguish 404 (a normal outcome for this system) from other errors.
func Text(ctx context.Context, urlStr string, opts *Options) (*Result, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if err := validateURL(urlStr); err != nil {
		return nil, err
	}

	resp, err := newClient(opts).R().SetContext(ctx).Get(urlStr)
	if err != nil {
		return nil, &Error{URL: urlStr, Message: "request failed", Cause: err}
	}

	result := &Result{
		URL:         urlStr,
		Body:        resp.String(),
		StatusCode:  resp.StatusCode(),
		ContentType: resp.Header().Get("Content-Type"),
	}
	if !resp.IsSuccess() {
		return result, &Error{
			URL:        urlStr,
			StatusCode: resp.StatusCode(),
			Message:    fmt.Sprintf("HTTP status %d", resp.StatusCode()),
		}
	}
	return result, nil
}

// Stream opens a streaming GET against urlStr and returns the raw body
// together with the Content-Length, or -1 when the server does not send
// one. The caller owns the returned ReadCloser.
func Stream(ctx context.Context, urlStr string, opts *Options) (io.ReadCloser, int64, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if err := validateURL(urlStr); err != nil {
		return nil, 0, err
	}

	client := newClient(opts).SetDoNotParseResponse(true)
	resp, err := client.R().SetContext(ctx).Get(urlStr)
	if err != nil {
		return nil, 0, &Error{URL: urlStr, Message: "request failed", Cause: err}
	}

	body := resp.RawBody()
	if !resp.IsSuccess() {
		_ = body.Close()
		return nil, 0, &Error{
			URL:        urlStr,
			StatusCode: resp.StatusCode(),
			Message:    fmt.Sprintf("HTTP status %d", resp.StatusCode()),
		}
	}

	total := int64(-1)
	if cl := resp.Header().Get("Content-Length"); cl != "" {
		if parsed, err := strconv.ParseInt(cl, 10, 64); err == nil {
			total = parsed
		}
	}
	return body, total, nil
}
