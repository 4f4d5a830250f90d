// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package transport implements the HTTP session against one OpenPLC web
// instance. The remote application is a browser-oriented form interface, so
// the session mimics a browser: it carries cookies, sends Referer/Origin
// headers, and never follows redirects, because a 302 on the root path is the
// documented online signal rather than something to chase.
package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	defaultTimeout       = 20 * time.Second
	defaultUserAgent     = "openplc-cli/1.0"
	defaultRetryInterval = 500 * time.Millisecond

	// loginAttempts bounds the retry loop on the login call. Only
	// transport-level failures are retried; any HTTP response, error
	// status included, ends the loop.
	loginAttempts = 3
)

// Options configures a Session.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	Referer   string // sent on every request when non-empty
	Origin    string // sent on every request when non-empty
	Jar       http.CookieJar

	// RetryInterval is the initial backoff interval for retried calls.
	RetryInterval time.Duration
}

// Session is an HTTP client bound to a single base origin.
type Session struct {
	base          *url.URL
	client        *http.Client
	userAgent     string
	referer       string
	origin        string
	retryInterval time.Duration
}

// Response carries the status code and full body of one exchange.
type Response struct {
	Status int
	Body   []byte
}

// FilePart describes a file attachment for a multipart POST.
type FilePart struct {
	Field       string
	Filename    string
	ContentType string
	Content     []byte
}

// NewSession creates a session for baseURL. Redirects are not followed; the
// raw status code of every response is surfaced to the caller.
func NewSession(baseURL string, opts Options) (*Session, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", baseURL)
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	retryInterval := opts.RetryInterval
	if retryInterval == 0 {
		retryInterval = defaultRetryInterval
	}

	return &Session{
		base: base,
		client: &http.Client{
			Timeout: timeout,
			Jar:     opts.Jar,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		userAgent:     userAgent,
		referer:       opts.Referer,
		origin:        opts.Origin,
		retryInterval: retryInterval,
	}, nil
}

// BaseURL returns the origin the session is bound to.
func (s *Session) BaseURL() string {
	return s.base.String()
}

// Get performs a GET request for path relative to the base origin.
func (s *Session) Get(ctx context.Context, path string) (*Response, error) {
	req, err := s.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	return s.do(req)
}

// PostForm performs a URL-encoded POST.
func (s *Session) PostForm(ctx context.Context, path string, data url.Values) (*Response, error) {
	req, err := s.newRequest(ctx, http.MethodPost, path, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return s.do(req)
}

// PostFormRetry is PostForm with bounded exponential-backoff retry on
// transport-level failures. Responses with error statuses are returned
// immediately; retrying them would re-submit credentials for no benefit.
func (s *Session) PostFormRetry(ctx context.Context, path string, data url.Values) (*Response, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = s.retryInterval

	var resp *Response
	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		r, err := s.PostForm(ctx, path, data)
		if err != nil {
			slog.Debug("transient failure, will retry", "path", path, "attempt", attempt, "err", err)
			return err
		}
		resp = r
		return nil
	}, backoff.WithContext(backoff.WithMaxRetries(policy, loginAttempts-1), ctx))
	if err != nil {
		return nil, fmt.Errorf("request failed after %d attempts: %w", attempt, err)
	}
	return resp, nil
}

// PostMultipart performs a multipart/form-data POST with one part per field,
// plus an optional file part, mirroring what the web interface's own forms
// submit.
func (s *Session) PostMultipart(ctx context.Context, path string, fields map[string]string, file *FilePart) (*Response, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := w.WriteField(k, fields[k]); err != nil {
			return nil, fmt.Errorf("failed to encode field %q: %w", k, err)
		}
	}

	if file != nil {
		h := make(map[string][]string)
		h["Content-Disposition"] = []string{fmt.Sprintf(`form-data; name=%q; filename=%q`,
			file.Field, file.Filename)}
		contentType := file.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		h["Content-Type"] = []string{contentType}
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, fmt.Errorf("failed to create file part: %w", err)
		}
		if _, err := part.Write(file.Content); err != nil {
			return nil, fmt.Errorf("failed to write file part: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := s.newRequest(ctx, http.MethodPost, path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	return s.do(req)
}

func (s *Session) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("invalid request path %q: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, method, s.base.ResolveReference(ref).String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	if s.referer != "" {
		req.Header.Set("Referer", s.referer)
	}
	if s.origin != "" {
		req.Header.Set("Origin", s.origin)
	}
	return req, nil
}

func (s *Session) do(req *http.Request) (*Response, error) {
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	slog.Debug("http exchange",
		"method", req.Method, "path", req.URL.Path, "status", resp.StatusCode, "bytes", len(body))

	return &Response{Status: resp.StatusCode, Body: body}, nil
}
