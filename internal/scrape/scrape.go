// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package scrape recovers structured data from the HTML pages the OpenPLC
// web interface returns. The remote application exposes no JSON API; device
// and program listings exist only as rendered tables, and the upload flow
// hands back server-generated tokens as hidden form inputs.
package scrape

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// Cell is one column/value pair of a table row.
type Cell struct {
	Key   string
	Value string
}

// Row is one table row as an ordered mapping from column header to cell
// text. When a row's cell count does not match the header count, keys are
// zero-based column indexes ("0", "1", ...) instead.
type Row []Cell

// Get returns the value for key and whether the row contains it.
func (r Row) Get(key string) (string, bool) {
	for _, c := range r {
		if c.Key == key {
			return c.Value, true
		}
	}
	return "", false
}

// set inserts or replaces a cell, keeping insertion order. Duplicate column
// headers collapse to one cell, last value wins.
func (r Row) set(key, value string) Row {
	for i, c := range r {
		if c.Key == key {
			r[i].Value = value
			return r
		}
	}
	return append(r, Cell{Key: key, Value: value})
}

// MarshalJSON renders the row as a JSON object with keys in column order.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(c.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(c.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// progFilePattern matches the server-assigned program artifact filename
// (epoch seconds plus the Structured Text suffix), e.g. "1700000000.st".
var progFilePattern = regexp.MustCompile(`\d+\.st`)

// TableRows extracts the first table in document order as a list of rows.
// Header cells (<th>) supply the column keys. Rows without data cells are
// skipped. A document without a table yields an empty result, not an error.
func TableRows(doc string) []Row {
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return nil
	}

	table := findElement(root, "table")
	if table == nil {
		return nil
	}

	var headers []string
	for _, th := range findAll(table, "th") {
		headers = append(headers, nodeText(th))
	}

	var rows []Row
	for _, tr := range findAll(table, "tr") {
		var cells []string
		for _, td := range findAll(tr, "td") {
			cells = append(cells, nodeText(td))
		}
		if len(cells) == 0 {
			continue
		}

		var row Row
		if len(headers) > 0 && len(headers) == len(cells) {
			for i, h := range headers {
				row = row.set(h, cells[i])
			}
		} else {
			for i, c := range cells {
				row = row.set(strconv.Itoa(i), c)
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// InputValue returns the value attribute of the first <input> element whose
// name attribute equals name. The second return is false when no such input
// exists or it carries no value attribute.
func InputValue(doc, name string) (string, bool) {
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return "", false
	}

	var input *html.Node
	walk(root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == "input" && attrValue(n, "name") == name {
			input = n
			return false
		}
		return true
	})
	if input == nil {
		return "", false
	}

	for _, a := range input.Attr {
		if a.Key == "value" {
			return a.Val, true
		}
	}
	return "", false
}

// ProgFileToken searches the raw document for a bare artifact filename.
// Fallback for degraded upload responses that omit the prog_file input.
func ProgFileToken(doc string) (string, bool) {
	m := progFilePattern.FindString(doc)
	return m, m != ""
}

// walk visits nodes depth-first; fn returning false stops the traversal.
func walk(n *html.Node, fn func(*html.Node) bool) bool {
	if !fn(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, fn) {
			return false
		}
	}
	return true
}

func findElement(root *html.Node, tag string) *html.Node {
	var found *html.Node
	walk(root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == tag {
			found = n
			return false
		}
		return true
	})
	return found
}

func findAll(root *html.Node, tag string) []*html.Node {
	var nodes []*html.Node
	walk(root, func(n *html.Node) bool {
		if n != root && n.Type == html.ElementNode && n.Data == tag {
			nodes = append(nodes, n)
		}
		return true
	})
	return nodes
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// nodeText concatenates the text content below n, with interior whitespace
// collapsed to single spaces.
func nodeText(n *html.Node) string {
	var parts []string
	walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			if t := strings.TrimSpace(c.Data); t != "" {
				parts = append(parts, strings.Join(strings.Fields(t), " "))
			}
		}
		return true
	})
	return strings.Join(parts, " ")
}
