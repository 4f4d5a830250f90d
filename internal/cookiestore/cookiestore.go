// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package cookiestore provides a file-backed cookie jar so one login survives
// across CLI invocations. Cookies are serialized as a JSON object keyed by
// "domain|path|name"; the key triple disambiguates cookies that share a name.
package cookiestore

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// Entry is the persisted form of one cookie.
type Entry struct {
	Name    string `json:"name"`
	Value   string `json:"value"`
	Domain  string `json:"domain"`
	Path    string `json:"path"`
	Secure  bool   `json:"secure"`
	Expires int64  `json:"expires,omitempty"` // epoch seconds; 0 means session cookie
}

// Jar is an http.CookieJar whose contents can be dumped to and restored from
// a file. It holds the session state for exactly one client instance.
type Jar struct {
	mu      sync.Mutex
	entries map[string]Entry
}

// NewJar returns an empty jar.
func NewJar() *Jar {
	return &Jar{entries: make(map[string]Entry)}
}

// Load reads a jar from path. A missing, unreadable or corrupt file yields an
// empty jar; the caller starts a fresh session instead of failing.
func Load(path string) *Jar {
	jar := NewJar()
	data, err := os.ReadFile(path)
	if err != nil {
		return jar
	}
	var entries map[string]Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return jar
	}
	for k, e := range entries {
		jar.entries[k] = e
	}
	return jar
}

// Save writes the jar to path, replacing any previous content. The write goes
// through a temp file in the same directory plus rename, so a concurrent
// reader observes either the old or the new complete file.
func (j *Jar) Save(path string) error {
	j.mu.Lock()
	data, err := json.MarshalIndent(j.entries, "", "  ")
	j.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to encode cookies: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create cookie directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp cookie file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write cookies: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp cookie file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace cookie file: %w", err)
	}
	return nil
}

// Len reports the number of stored cookies.
func (j *Jar) Len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.entries)
}

// SetCookies merges response cookies into the jar. A cookie with MaxAge < 0
// removes the stored entry.
func (j *Jar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()

	now := time.Now()
	for _, c := range cookies {
		domain := strings.TrimPrefix(c.Domain, ".")
		if domain == "" {
			domain = u.Hostname()
		}
		path := c.Path
		if path == "" {
			path = "/"
		}
		key := domain + "|" + path + "|" + c.Name

		if c.MaxAge < 0 {
			delete(j.entries, key)
			continue
		}

		var expires int64
		if c.MaxAge > 0 {
			expires = now.Add(time.Duration(c.MaxAge) * time.Second).Unix()
		} else if !c.Expires.IsZero() {
			expires = c.Expires.Unix()
		}

		j.entries[key] = Entry{
			Name:    c.Name,
			Value:   c.Value,
			Domain:  domain,
			Path:    path,
			Secure:  c.Secure,
			Expires: expires,
		}
	}
}

// Cookies returns the stored cookies applicable to a request for u, in a
// deterministic order. Expired entries are skipped.
func (j *Jar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()

	now := time.Now().Unix()
	host := u.Hostname()
	reqPath := u.Path
	if reqPath == "" {
		reqPath = "/"
	}

	keys := make([]string, 0, len(j.entries))
	for k := range j.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var cookies []*http.Cookie
	for _, k := range keys {
		e := j.entries[k]
		if e.Expires != 0 && e.Expires <= now {
			continue
		}
		if !domainMatch(host, e.Domain) || !pathMatch(reqPath, e.Path) {
			continue
		}
		if e.Secure && u.Scheme != "https" {
			continue
		}
		cookies = append(cookies, &http.Cookie{Name: e.Name, Value: e.Value})
	}
	return cookies
}

func domainMatch(host, domain string) bool {
	return host == domain || strings.HasSuffix(host, "."+domain)
}

func pathMatch(reqPath, cookiePath string) bool {
	if reqPath == cookiePath {
		return true
	}
	if strings.HasPrefix(reqPath, cookiePath) {
		return strings.HasSuffix(cookiePath, "/") || reqPath[len(cookiePath)] == '/'
	}
	return false
}
