// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package scrape

import (
	"encoding/json"
	"testing"
)

func TestTableRows(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want []Row
	}{
		{
			name: "headers match cells",
			doc: `<html><body><table>
				<tr><th>Name</th><th>Protocol</th></tr>
				<tr><td>Conveyor</td><td>TCP</td></tr>
				<tr><td>Press</td><td>RTU</td></tr>
			</table></body></html>`,
			want: []Row{
				{{"Name", "Conveyor"}, {"Protocol", "TCP"}},
				{{"Name", "Press"}, {"Protocol", "RTU"}},
			},
		},
		{
			name: "mismatched cell count falls back to indexes",
			doc: `<table>
				<tr><th>A</th><th>B</th></tr>
				<tr><td>1</td><td>2</td><td>3</td></tr>
			</table>`,
			want: []Row{
				{{"0", "1"}, {"1", "2"}, {"2", "3"}},
			},
		},
		{
			name: "no headers falls back to indexes",
			doc:  `<table><tr><td>x</td><td>y</td></tr></table>`,
			want: []Row{
				{{"0", "x"}, {"1", "y"}},
			},
		},
		{
			name: "header-only rows are skipped",
			doc: `<table>
				<tr><th>Only</th></tr>
				<tr><td>value</td></tr>
			</table>`,
			want: []Row{{{"Only", "value"}}},
		},
		{
			name: "no table",
			doc:  `<html><body><p>nothing here</p></body></html>`,
			want: nil,
		},
		{
			name: "only first table is read",
			doc: `<table><tr><th>H</th></tr><tr><td>first</td></tr></table>
				<table><tr><td>second</td></tr></table>`,
			want: []Row{{{"H", "first"}}},
		},
		{
			name: "cell text is trimmed and collapsed",
			doc: `<table><tr><th> Name </th></tr>
				<tr><td>  two
				words  </td></tr></table>`,
			want: []Row{{{"Name", "two words"}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TableRows(tt.doc)
			if len(got) != len(tt.want) {
				t.Fatalf("TableRows() returned %d rows, want %d", len(got), len(tt.want))
			}
			for i, row := range got {
				if len(row) != len(tt.want[i]) {
					t.Fatalf("row %d has %d cells, want %d", i, len(row), len(tt.want[i]))
				}
				for j, cell := range row {
					if cell != tt.want[i][j] {
						t.Errorf("row %d cell %d = %+v, want %+v", i, j, cell, tt.want[i][j])
					}
				}
			}
		})
	}
}

func TestTableRowsAllHeadersPresent(t *testing.T) {
	doc := `<table>
		<tr><th>a</th><th>b</th><th>c</th></tr>
		<tr><td>1</td><td>2</td><td>3</td></tr>
		<tr><td>4</td><td>5</td><td>6</td></tr>
	</table>`

	rows := TableRows(doc)
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	for i, row := range rows {
		for _, h := range []string{"a", "b", "c"} {
			if _, ok := row.Get(h); !ok {
				t.Errorf("row %d is missing header %q", i, h)
			}
		}
	}
}

func TestInputValue(t *testing.T) {
	doc := `<html><body><form>
		<input type="hidden" name="prog_file" value="1700000000.st">
		<input type="hidden" name="epoch_time" value="1700000000">
		<input type="hidden" name="empty">
	</form></body></html>`

	tests := []struct {
		name   string
		field  string
		want   string
		wantOK bool
	}{
		{"present", "prog_file", "1700000000.st", true},
		{"second input", "epoch_time", "1700000000", true},
		{"no value attribute", "empty", "", false},
		{"absent", "missing", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := InputValue(doc, tt.field)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("InputValue(%q) = (%q, %v), want (%q, %v)", tt.field, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestInputValueFirstMatchWins(t *testing.T) {
	doc := `<input name="prog_file" value="111.st"><input name="prog_file" value="222.st">`
	got, ok := InputValue(doc, "prog_file")
	if !ok || got != "111.st" {
		t.Errorf("InputValue() = (%q, %v), want (%q, true)", got, ok, "111.st")
	}
}

func TestProgFileToken(t *testing.T) {
	tests := []struct {
		name   string
		doc    string
		want   string
		wantOK bool
	}{
		{"bare token", "uploaded as 1700000000.st, proceed", "1700000000.st", true},
		{"no token", "<html>nothing useful</html>", "", false},
		{"needs digits", "readme.st is not a token", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ProgFileToken(tt.doc)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("ProgFileToken() = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestRowMarshalJSON(t *testing.T) {
	row := Row{{"Name", "Conveyor"}, {"Device ID", "1"}}
	data, err := json.Marshal(row)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want := `{"Name":"Conveyor","Device ID":"1"}`
	if string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}
}
