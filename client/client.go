// Copyright (c) 2025-2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package client drives the OpenPLC web interface programmatically. There is
// no documented API on the remote side; every operation replays the request
// sequence a browser would issue against the HTML form interface and scrapes
// the answers back out of the returned pages.
package client

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/openplc-tools/openplc-cli/internal/cookiestore"
	"github.com/openplc-tools/openplc-cli/internal/scrape"
	"github.com/openplc-tools/openplc-cli/transport"
)

// Runtime states observed by Status.
const (
	StateOnline  = "online"
	StateOffline = "offline"
)

// Config configures a Client.
type Config struct {
	// BaseURL is the origin of the OpenPLC web interface,
	// e.g. "http://localhost:8080".
	BaseURL string
	// CookieFile is the path the session cookies are loaded from and
	// flushed back to on Close. Empty disables persistence.
	CookieFile string
	Timeout    time.Duration
	UserAgent  string

	// RetryInterval overrides the initial login retry backoff. Zero keeps
	// the default.
	RetryInterval time.Duration
}

// Client is a session-holding client for one OpenPLC instance. It is not safe
// for concurrent use; the command model is one operation at a time.
type Client struct {
	session    *transport.Session
	jar        *cookiestore.Jar
	cookieFile string
}

// New creates a Client, loading any persisted cookies for the session.
func New(cfg Config) (*Client, error) {
	jar := cookiestore.NewJar()
	if cfg.CookieFile != "" {
		jar = cookiestore.Load(cfg.CookieFile)
	}

	session, err := transport.NewSession(cfg.BaseURL, transport.Options{
		Timeout:       cfg.Timeout,
		UserAgent:     cfg.UserAgent,
		Referer:       cfg.BaseURL,
		Origin:        cfg.BaseURL,
		Jar:           jar,
		RetryInterval: cfg.RetryInterval,
	})
	if err != nil {
		return nil, err
	}

	return &Client{
		session:    session,
		jar:        jar,
		cookieFile: cfg.CookieFile,
	}, nil
}

// BaseURL returns the origin this client is bound to.
func (c *Client) BaseURL() string {
	return c.session.BaseURL()
}

// Close flushes the session cookies back to the store.
func (c *Client) Close() error {
	if c.cookieFile == "" {
		return nil
	}
	if err := c.jar.Save(c.cookieFile); err != nil {
		return fmt.Errorf("failed to persist session cookies: %w", err)
	}
	return nil
}

// Login authenticates against the web interface. The response cookies become
// the session; no separate confirmation request is made. Transport-level
// failures are retried up to 3 attempts with exponential backoff.
func (c *Client) Login(ctx context.Context, username, password string) error {
	data := url.Values{}
	data.Set("username", username)
	data.Set("password", password)

	resp, err := c.session.PostFormRetry(ctx, "/login", data)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if err := checkStatus("login", resp); err != nil {
		return err
	}
	slog.Debug("login accepted", "status", resp.Status, "cookies", c.jar.Len())
	return nil
}

// Status probes the root path and classifies the instance as online or
// offline. The online signal is a 302 on "/": a working, authenticated
// instance redirects the root to its dashboard. Every other status and any
// transport failure maps to offline; this probe never returns an error.
func (c *Client) Status(ctx context.Context) string {
	resp, err := c.session.Get(ctx, "/")
	if err != nil {
		slog.Debug("status probe failed", "err", err)
		return StateOffline
	}
	if resp.Status == 302 {
		return StateOnline
	}
	return StateOffline
}

// WaitOnline polls Status until the instance reports online, sleeping
// interval between probes. It returns ctx.Err() when cancelled; there is no
// other way out of the loop.
func (c *Client) WaitOnline(ctx context.Context, interval time.Duration) error {
	for {
		if c.Status(ctx) == StateOnline {
			return nil
		}
		slog.Info("instance not online yet, retrying", "interval", interval)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}

// RuntimeLogs fetches the raw runtime log text.
func (c *Client) RuntimeLogs(ctx context.Context) (string, error) {
	resp, err := c.session.Get(ctx, "/runtime_logs")
	if err != nil {
		return "", fmt.Errorf("runtime logs: %w", err)
	}
	if err := checkStatus("runtime logs", resp); err != nil {
		return "", err
	}
	return string(resp.Body), nil
}

// StartPLC starts the PLC runtime.
func (c *Client) StartPLC(ctx context.Context) error {
	return c.simpleGet(ctx, "start plc", "/start_plc")
}

// StopPLC stops the PLC runtime.
func (c *Client) StopPLC(ctx context.Context) error {
	return c.simpleGet(ctx, "stop plc", "/stop_plc")
}

func (c *Client) simpleGet(ctx context.Context, op, path string) error {
	resp, err := c.session.Get(ctx, path)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return checkStatus(op, resp)
}

// listTable fetches path and extracts the first table of the page.
func (c *Client) listTable(ctx context.Context, op, path string) ([]scrape.Row, error) {
	resp, err := c.session.Get(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := checkStatus(op, resp); err != nil {
		return nil, err
	}
	return scrape.TableRows(string(resp.Body)), nil
}

// checkStatus treats 4xx/5xx as hard failures. Redirect statuses pass: the
// interface answers several form posts with a 302 back to the listing page.
func checkStatus(op string, resp *transport.Response) error {
	if resp.Status >= 400 {
		return &StatusError{Op: op, Status: resp.Status, Snippet: snippet(resp.Body)}
	}
	return nil
}
