package csv

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"bankmarketing/internal/config"
)

func TestParse(t *testing.T) {
	t.Parallel()

	type tc struct {
		name       string
		opt        Options
		in         string
		wantHeader []string
		wantRows   [][]string
		wantErr    bool
		wantUTF8   bool
		wantLine   int
	}

	cases := []tc{
		{
			name:       "header_kept_verbatim",
			in:         "client_id,Age,job\n1,30,admin.\n2,41,blue-collar\n",
			wantHeader: []string{"client_id", "Age", "job"},
			wantRows:   [][]string{{"1", "30", "admin."}, {"2", "41", "blue-collar"}},
		},
		{
			name:       "bom_stripped_and_crlf",
			in:         "\uFEFFclient_id,job\r\n1,retired\r\n",
			wantHeader: []string{"client_id", "job"},
			wantRows:   [][]string{{"1", "retired"}},
		},
		{
			name:       "quoted_fields_and_empty_cells",
			in:         "a,b\n\"x,y\",\n",
			wantHeader: []string{"a", "b"},
			wantRows:   [][]string{{"x,y", ""}},
		},
		{
			name:       "header_only",
			in:         "a,b\n",
			wantHeader: []string{"a", "b"},
		},
		{
			name:       "trim_and_header_map",
			opt:        Options{TrimSpace: true, HeaderMap: map[string]string{"ID": "client_id"}},
			in:         "ID,job\n 1 , admin \n",
			wantHeader: []string{"client_id", "job"},
			wantRows:   [][]string{{"1", "admin"}},
		},
		{
			name:       "semicolon_delimiter",
			opt:        Options{Comma: ';'},
			in:         "a;b\n1;2\n",
			wantHeader: []string{"a", "b"},
			wantRows:   [][]string{{"1", "2"}},
		},
		{
			name:     "empty_input",
			in:       "",
			wantErr:  true,
			wantLine: 1,
		},
		{
			name:     "field_count_mismatch",
			in:       "a,b\n1,2\n3\n",
			wantErr:  true,
			wantLine: 3,
		},
		{
			name:     "invalid_utf8",
			in:       "a,b\n1,\xff\xfe\n",
			wantErr:  true,
			wantUTF8: true,
		},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			tbl, err := NewParser(c.opt).Parse("input.csv", strings.NewReader(c.in))
			if c.wantErr {
				var de *DecodeError
				if !errors.As(err, &de) {
					t.Fatalf("want *DecodeError, got %v", err)
				}
				if de.Source != "input.csv" {
					t.Fatalf("Source=%q", de.Source)
				}
				if c.wantLine > 0 && de.Line != c.wantLine {
					t.Fatalf("Line=%d, want %d", de.Line, c.wantLine)
				}
				if c.wantUTF8 && !IsInvalidUTF8(err) {
					t.Fatalf("expected invalid UTF-8 cause, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if tbl.Source != "input.csv" {
				t.Fatalf("Source=%q", tbl.Source)
			}
			if !reflect.DeepEqual(tbl.Header, c.wantHeader) {
				t.Fatalf("header=%q, want %q", tbl.Header, c.wantHeader)
			}
			if len(c.wantRows) == 0 && len(tbl.Rows) == 0 {
				return
			}
			if !reflect.DeepEqual(tbl.Rows, c.wantRows) {
				t.Fatalf("rows=%q, want %q", tbl.Rows, c.wantRows)
			}
		})
	}
}

func TestOptionsFrom(t *testing.T) {
	t.Parallel()

	o := OptionsFrom(config.Options{
		"comma":      ";",
		"trim_space": true,
		"header_map": map[string]any{"A": "a"},
	})
	if o.Comma != ';' || !o.TrimSpace || o.LazyQuotes {
		t.Fatalf("unexpected options: %+v", o)
	}
	if o.HeaderMap["A"] != "a" {
		t.Fatalf("header map not decoded: %v", o.HeaderMap)
	}

	d := OptionsFrom(config.Options{})
	if d.Comma != ',' || d.TrimSpace {
		t.Fatalf("unexpected defaults: %+v", d)
	}
}
