// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/openplc-tools/openplc-cli/internal/scrape"
)

// printTable renders scraped rows as an aligned text table. Columns appear in
// first-seen order across all rows, so pages whose rows share a header set
// keep the page's column order.
func printTable(w io.Writer, rows []scrape.Row) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "(empty)")
		return
	}

	var cols []string
	seen := make(map[string]bool)
	for _, row := range rows {
		for _, cell := range row {
			if !seen[cell.Key] {
				seen[cell.Key] = true
				cols = append(cols, cell.Key)
			}
		}
	}

	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(cols, "\t"))

	sep := make([]string, len(cols))
	for i, c := range cols {
		sep[i] = strings.Repeat("-", len(c))
	}
	fmt.Fprintln(tw, strings.Join(sep, "\t"))

	for _, row := range rows {
		vals := make([]string, len(cols))
		for i, c := range cols {
			v, _ := row.Get(c)
			vals[i] = v
		}
		fmt.Fprintln(tw, strings.Join(vals, "\t"))
	}
	tw.Flush()
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
