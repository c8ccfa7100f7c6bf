// Package datasource defines the contract shared by input sources.
package datasource

import (
	"context"
	"io"
)

// Source opens a byte stream for one input.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}
