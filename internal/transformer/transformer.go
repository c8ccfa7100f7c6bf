// Package transformer turns the unified input table into output frames.
// A Projection selects columns, runs an ordered Chain of column rules and
// reorders the result to its output contract.
package transformer

import (
	"fmt"

	"bankmarketing/pkg/records"
)

// Transformer rewrites cells of a frame in place.
type Transformer interface {
	Apply(f *records.Frame) error
}

// Chain is an ordered list of transformers.
type Chain []Transformer

// Apply runs each transformer in order and stops at the first error.
func (c Chain) Apply(f *records.Frame) error {
	for _, t := range c {
		if err := t.Apply(f); err != nil {
			return err
		}
	}
	return nil
}

// Func adapts a plain function to Transformer.
type Func func(f *records.Frame) error

// Apply calls fn(f).
func (fn Func) Apply(f *records.Frame) error { return fn(f) }

// Projection derives one output table from the unified input.
type Projection struct {
	Name    string
	File    string
	Select  []string
	Steps   Chain
	Columns []string
}

// Run selects p.Select from t, applies p.Steps and returns a frame holding
// exactly p.Columns in order. t is not modified.
func (p Projection) Run(t *records.Table) (*records.Frame, error) {
	f, err := records.Select(t, p.Select)
	if err != nil {
		return nil, fmt.Errorf("%s: select: %w", p.Name, err)
	}
	if err := p.Steps.Apply(f); err != nil {
		return nil, fmt.Errorf("%s: %w", p.Name, err)
	}
	out, err := f.Project(p.Columns)
	if err != nil {
		return nil, fmt.Errorf("%s: project: %w", p.Name, err)
	}
	return out, nil
}
