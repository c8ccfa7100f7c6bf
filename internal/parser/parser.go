// Package parser defines the contract shared by input decoders.
package parser

import (
	"io"

	"bankmarketing/pkg/records"
)

// Parser decodes one input stream into a table. source names the input in
// errors and logs.
type Parser interface {
	Parse(source string, r io.Reader) (records.Table, error)
}
