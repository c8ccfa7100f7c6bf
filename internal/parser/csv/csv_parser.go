// Package csv decodes delimited UTF-8 text into records.Table values. The
// first line is the header; column names are kept exactly as read apart
// from a leading byte order mark.
package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"bankmarketing/internal/config"
	"bankmarketing/internal/parser"
	"bankmarketing/pkg/records"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Options configures the CSV parser behavior. All fields are optional; the
// zero value reads comma-separated text verbatim.
type Options struct {
	// Comma specifies the field delimiter. When zero, ',' is used.
	Comma rune

	// TrimSpace trims leading/trailing spaces from each data cell.
	TrimSpace bool

	// LazyQuotes relaxes quote handling (see encoding/csv.Reader.LazyQuotes).
	LazyQuotes bool

	// HeaderMap renames source headers. Unmapped headers are kept as read.
	HeaderMap map[string]string
}

// OptionsFrom reads parser options from a config options bag:
// comma (string), trim_space (bool), lazy_quotes (bool), header_map (object).
func OptionsFrom(o config.Options) Options {
	return Options{
		Comma:      o.Rune("comma", ','),
		TrimSpace:  o.Bool("trim_space", false),
		LazyQuotes: o.Bool("lazy_quotes", false),
		HeaderMap:  o.StringMap("header_map"),
	}
}

// DecodeError reports input that is not valid UTF-8 delimited text.
type DecodeError struct {
	Source string
	Line   int
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("decode %s: line %d: %v", e.Source, e.Line, e.Err)
	}
	return fmt.Sprintf("decode %s: %v", e.Source, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Parser reads whole CSV inputs into tables. It is safe to reuse across
// inputs but not concurrency-safe.
type Parser struct{ opt Options }

var _ parser.Parser = (*Parser)(nil)

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser { return &Parser{opt: opt} }

// utf8BOM is stripped from the start of the input if present.
const utf8BOM = "\uFEFF"

// Parse decodes r as UTF-8 CSV. source names the input in errors and becomes
// the table's Source.
//
// Invalid UTF-8, malformed quoting, rows whose field count differs from the
// header, and inputs without a header line all fail with *DecodeError.
func (p *Parser) Parse(source string, r io.Reader) (records.Table, error) {
	tr := transform.NewReader(r, transform.Chain(
		encoding.UTF8Validator,
		unicode.UTF8BOM.NewDecoder(),
	))

	cr := csv.NewReader(tr)
	if p.opt.Comma != 0 {
		cr.Comma = p.opt.Comma
	}
	cr.LazyQuotes = p.opt.LazyQuotes
	cr.ReuseRecord = false

	t := records.Table{Source: source}

	h, err := cr.Read()
	if err == io.EOF {
		return t, &DecodeError{Source: source, Line: 1, Err: errors.New("no header line")}
	}
	if err != nil {
		return t, decodeErr(source, 1, err)
	}
	t.Header = normalizeHeaders(h, p.opt)

	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return t, decodeErr(source, line, err)
		}
		if p.opt.TrimSpace {
			for i, v := range row {
				row[i] = strings.TrimSpace(v)
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// decodeErr prefers the line reported by encoding/csv when it has one.
func decodeErr(source string, line int, err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) && pe.Line > 0 {
		line = pe.Line
	}
	return &DecodeError{Source: source, Line: line, Err: err}
}

// IsInvalidUTF8 reports whether err was caused by bytes that are not UTF-8.
func IsInvalidUTF8(err error) bool {
	return errors.Is(err, encoding.ErrInvalidUTF8)
}

// normalizeHeaders applies HeaderMap and strips a BOM left in the first cell
// (the stream decoder already removes a BOM at the very start of the input).
func normalizeHeaders(h []string, opt Options) []string {
	res := make([]string, len(h))
	for i, col := range h {
		c := col
		if i == 0 {
			c = strings.TrimPrefix(c, utf8BOM)
		}
		if m, ok := opt.HeaderMap[c]; ok {
			c = m
		}
		res[i] = c
	}
	return res
}
