// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package transport

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestSession(t *testing.T, baseURL string) *Session {
	t.Helper()
	s, err := NewSession(baseURL, Options{
		Timeout:       2 * time.Second,
		Referer:       baseURL,
		Origin:        baseURL,
		RetryInterval: 5 * time.Millisecond,
	})
	require.NoError(t, err)
	return s
}

func TestNewSessionRejectsBadURL(t *testing.T) {
	_, err := NewSession("plc.local:8080", Options{})
	require.Error(t, err)
}

func TestRedirectsNotFollowed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			http.Redirect(w, r, "/dashboard", http.StatusFound)
			return
		}
		w.Write([]byte("should never be fetched"))
	}))
	defer srv.Close()

	s := newTestSession(t, srv.URL)
	resp, err := s.Get(context.Background(), "/")
	require.NoError(t, err)
	require.Equal(t, 302, resp.Status)
}

func TestDefaultHeaders(t *testing.T) {
	var gotUA, gotReferer, gotOrigin string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotReferer = r.Header.Get("Referer")
		gotOrigin = r.Header.Get("Origin")
	}))
	defer srv.Close()

	s := newTestSession(t, srv.URL)
	_, err := s.Get(context.Background(), "/modbus")
	require.NoError(t, err)

	require.Equal(t, "openplc-cli/1.0", gotUA)
	require.Equal(t, srv.URL, gotReferer)
	require.Equal(t, srv.URL, gotOrigin)
}

func TestPostFormEncoding(t *testing.T) {
	var gotContentType, gotUser, gotPass string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		r.ParseForm()
		gotUser = r.PostFormValue("username")
		gotPass = r.PostFormValue("password")
	}))
	defer srv.Close()

	s := newTestSession(t, srv.URL)
	data := url.Values{}
	data.Set("username", "openplc")
	data.Set("password", "secret")
	_, err := s.PostForm(context.Background(), "/login", data)
	require.NoError(t, err)

	require.Equal(t, "application/x-www-form-urlencoded", gotContentType)
	require.Equal(t, "openplc", gotUser)
	require.Equal(t, "secret", gotPass)
}

func TestPostMultipartOnePartPerField(t *testing.T) {
	var form *multipartCapture
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		form = captureMultipart(t, r)
	}))
	defer srv.Close()

	s := newTestSession(t, srv.URL)
	_, err := s.PostMultipart(context.Background(), "/upload-program-action", map[string]string{
		"prog_name": "blinky",
		"prog_file": "1700000000.st",
	}, &FilePart{Field: "file", Filename: "blinky.st", ContentType: "text/plain", Content: []byte("PROGRAM prog0")})
	require.NoError(t, err)

	require.Equal(t, "blinky", form.values["prog_name"])
	require.Equal(t, "1700000000.st", form.values["prog_file"])
	require.Equal(t, "blinky.st", form.fileName)
	require.Equal(t, "PROGRAM prog0", form.fileContent)
}

func TestPostFormRetry(t *testing.T) {
	t.Run("succeeds on third attempt", func(t *testing.T) {
		var calls int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&calls, 1) < 3 {
				// Kill the connection so the client sees a transport error.
				hj, ok := w.(http.Hijacker)
				require.True(t, ok)
				conn, _, err := hj.Hijack()
				require.NoError(t, err)
				conn.Close()
				return
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		s := newTestSession(t, srv.URL)
		resp, err := s.PostFormRetry(context.Background(), "/login", url.Values{})
		require.NoError(t, err)
		require.Equal(t, 200, resp.Status)
		require.EqualValues(t, 3, atomic.LoadInt32(&calls))
	})

	t.Run("gives up after three attempts", func(t *testing.T) {
		var calls int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			hj, ok := w.(http.Hijacker)
			require.True(t, ok)
			conn, _, err := hj.Hijack()
			require.NoError(t, err)
			conn.Close()
		}))
		defer srv.Close()

		s := newTestSession(t, srv.URL)
		_, err := s.PostFormRetry(context.Background(), "/login", url.Values{})
		require.Error(t, err)
		require.EqualValues(t, 3, atomic.LoadInt32(&calls))
	})

	t.Run("error status is not retried", func(t *testing.T) {
		var calls int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		s := newTestSession(t, srv.URL)
		resp, err := s.PostFormRetry(context.Background(), "/login", url.Values{})
		require.NoError(t, err)
		require.Equal(t, 401, resp.Status)
		require.EqualValues(t, 1, atomic.LoadInt32(&calls))
	})
}

type multipartCapture struct {
	values      map[string]string
	fileName    string
	fileContent string
}

func captureMultipart(t *testing.T, r *http.Request) *multipartCapture {
	t.Helper()
	require.NoError(t, r.ParseMultipartForm(1<<20))

	c := &multipartCapture{values: make(map[string]string)}
	for k, vs := range r.MultipartForm.Value {
		require.Len(t, vs, 1, "field %q submitted more than once", k)
		c.values[k] = vs[0]
	}
	for _, fhs := range r.MultipartForm.File {
		for _, fh := range fhs {
			f, err := fh.Open()
			require.NoError(t, err)
			buf, err := io.ReadAll(f)
			require.NoError(t, err)
			f.Close()
			c.fileName = fh.Filename
			c.fileContent = string(buf)
		}
	}
	return c
}
