// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package client

import "fmt"

// snippetLimit caps the response excerpt attached to errors. Enough to
// diagnose an unexpected page without dumping whole documents into logs.
const snippetLimit = 800

// StatusError reports an HTTP error status from the remote application.
type StatusError struct {
	Op      string
	Status  int
	Snippet string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: server returned HTTP %d", e.Op, e.Status)
}

// ExtractError reports a response whose HTML shape diverged from what the
// web interface is known to produce, e.g. an upload response missing the
// artifact token. It is distinct from transport and HTTP-status failures so
// callers can tell "server unreachable" from "server changed".
type ExtractError struct {
	Op      string
	Missing string
	Snippet string
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("%s: could not extract %q from response; snippet: %s", e.Op, e.Missing, e.Snippet)
}

func snippet(body []byte) string {
	if len(body) > snippetLimit {
		body = body[:snippetLimit]
	}
	return string(body)
}
