// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package main

import (
	"strings"
	"testing"

	"github.com/openplc-tools/openplc-cli/internal/scrape"
)

func TestPrintTable(t *testing.T) {
	rows := []scrape.Row{
		{{Key: "Name", Value: "Conveyor"}, {Key: "Protocol", Value: "TCP"}},
		{{Key: "Name", Value: "Press"}, {Key: "Protocol", Value: "RTU"}},
	}

	var sb strings.Builder
	printTable(&sb, rows)
	out := sb.String()

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4 (header, separator, 2 rows):\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "Name") || !strings.Contains(lines[0], "Protocol") {
		t.Errorf("unexpected header line: %q", lines[0])
	}
	if !strings.Contains(lines[2], "Conveyor") || !strings.Contains(lines[3], "RTU") {
		t.Errorf("unexpected data rows:\n%s", out)
	}
}

func TestPrintTableEmpty(t *testing.T) {
	var sb strings.Builder
	printTable(&sb, nil)
	if got := sb.String(); got != "(empty)\n" {
		t.Errorf("printTable(nil) = %q, want %q", got, "(empty)\n")
	}
}
