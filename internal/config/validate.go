// Package config provides configuration models and helpers for ETL pipelines.
//
// This file adds a lightweight linter/validator for Pipeline values. It
// performs static checks over a decoded Pipeline and returns a list of issues
// (errors and warnings) that callers can surface in a CLI or tests.
package config

import (
	"fmt"
	"strings"

	"bankmarketing/internal/schema"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a configuration warning that should be surfaced
	// to users but may not necessarily block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation/lint finding for a Pipeline.
//
// Path is a dotted path into the config (e.g. "storage.kind",
// "tables[1].transform[0].options.field"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue has error severity.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ValidatePipeline performs static validation / linting of a Pipeline.
//
// It does not mutate the pipeline. Callers may decide whether to treat
// warnings as fatal or not.
func ValidatePipeline(p Pipeline) []Issue {
	var issues []Issue

	if strings.TrimSpace(p.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "job",
			Message:  "job must not be empty; it is used for metrics labeling and identifying runs",
		})
	}
	issues = append(issues, validateSource(p.Source)...)
	issues = append(issues, validateParser(p.Parser)...)
	issues = append(issues, validateTables(p.Tables)...)
	if strings.TrimSpace(p.Output.Dir) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "output.dir",
			Message:  "output.dir must not be empty",
		})
	}
	issues = append(issues, validateStorage(p.Storage)...)
	issues = append(issues, validateRuntime(p.Runtime)...)

	return issues
}

func validateSource(s Source) []Issue {
	var issues []Issue

	switch s.Kind {
	case "":
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "source.kind",
			Message:  "source.kind must not be empty",
		})
	case "zip":
		if s.Zip.Count <= 0 {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "source.zip.count",
				Message:  fmt.Sprintf("count=%d; at least one archive is required", s.Zip.Count),
			})
		}
		if strings.Count(s.Zip.Pattern, "%d") != 1 {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "source.zip.pattern",
				Message:  fmt.Sprintf("pattern %q must contain exactly one %%d verb", s.Zip.Pattern),
			})
		}
	case "file":
		if strings.TrimSpace(s.File.Path) == "" && len(s.File.Paths) == 0 {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "source.file.path",
				Message:  "file source requires a non-empty path or paths",
			})
		}
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "source.kind",
			Message:  fmt.Sprintf("unknown source kind %q; supported: zip, file", s.Kind),
		})
	}

	return issues
}

func validateParser(p Parser) []Issue {
	var issues []Issue

	switch p.Kind {
	case "", "csv":
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "parser.kind",
			Message:  fmt.Sprintf("unknown parser kind %q; supported: csv", p.Kind),
		})
	}
	if c := p.Options.String("comma", ","); len([]rune(c)) != 1 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "parser.options.comma",
			Message:  fmt.Sprintf("comma %q must be a single character", c),
		})
	}

	return issues
}

// requiredOptions lists the options each transform kind cannot run without.
var requiredOptions = map[string][]string{
	"replace":      {"field", "old"},
	"null_if":      {"field", "value"},
	"binary":       {"field", "truthy"},
	"contact_date": {"month_field", "day_field", "target"},
}

func validateTables(ts []Table) []Issue {
	var issues []Issue

	if len(ts) == 0 {
		return append(issues, Issue{
			Severity: SeverityError,
			Path:     "tables",
			Message:  "no tables configured; nothing would be written",
		})
	}

	names := map[string]int{}
	files := map[string]int{}
	for i, t := range ts {
		base := fmt.Sprintf("tables[%d]", i)
		if strings.TrimSpace(t.Name) == "" {
			issues = append(issues, Issue{Severity: SeverityError, Path: base + ".name", Message: "table name must not be empty"})
		} else if j, dup := names[t.Name]; dup {
			issues = append(issues, Issue{Severity: SeverityError, Path: base + ".name", Message: fmt.Sprintf("duplicate table name %q (also tables[%d])", t.Name, j)})
		} else {
			names[t.Name] = i
		}
		if strings.TrimSpace(t.File) == "" {
			issues = append(issues, Issue{Severity: SeverityError, Path: base + ".file", Message: "table file must not be empty"})
		} else if j, dup := files[t.File]; dup {
			issues = append(issues, Issue{Severity: SeverityError, Path: base + ".file", Message: fmt.Sprintf("duplicate output file %q (also tables[%d])", t.File, j)})
		} else {
			files[t.File] = i
		}
		if len(t.Select) == 0 {
			issues = append(issues, Issue{Severity: SeverityError, Path: base + ".select", Message: "select must list at least one column"})
		}

		available := map[string]struct{}{}
		for _, c := range t.Select {
			available[c] = struct{}{}
		}
		for k, tr := range t.Transform {
			path := fmt.Sprintf("%s.transform[%d]", base, k)
			req, known := requiredOptions[tr.Kind]
			if !known {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Path:     path + ".kind",
					Message:  fmt.Sprintf("unknown transform kind %q", tr.Kind),
				})
				continue
			}
			for _, key := range req {
				if !tr.Options.Has(key) {
					issues = append(issues, Issue{
						Severity: SeverityError,
						Path:     path + ".options." + key,
						Message:  fmt.Sprintf("%s transform requires option %q", tr.Kind, key),
					})
				}
			}
			if tr.Kind == "contact_date" {
				available[tr.Options.String("target", "")] = struct{}{}
				continue
			}
			if f := tr.Options.String("field", ""); f != "" {
				if _, ok := available[f]; !ok {
					issues = append(issues, Issue{
						Severity: SeverityError,
						Path:     path + ".options.field",
						Message:  fmt.Sprintf("field %q is not selected by this table", f),
					})
				}
			}
		}

		issues = append(issues, validateContract(base+".contract", t.Contract, available)...)
	}

	return issues
}

func validateContract(path string, c schema.Contract, available map[string]struct{}) []Issue {
	var issues []Issue
	if len(c.Fields) == 0 {
		return append(issues, Issue{
			Severity: SeverityError,
			Path:     path + ".fields",
			Message:  "contract has no fields; output column order is undefined",
		})
	}
	seen := map[string]struct{}{}
	for i, f := range c.Fields {
		fp := fmt.Sprintf("%s.fields[%d]", path, i)
		if _, dup := seen[f.Name]; dup {
			issues = append(issues, Issue{Severity: SeverityError, Path: fp, Message: fmt.Sprintf("duplicate field %q", f.Name)})
		}
		seen[f.Name] = struct{}{}
		if _, ok := available[f.Name]; !ok {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     fp,
				Message:  fmt.Sprintf("field %q is neither selected nor produced by a transform", f.Name),
			})
		}
		if schema.NormalizeKind(f.Type) == "text" && f.Type != "" && f.Type != "text" {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     fp + ".type",
				Message:  fmt.Sprintf("type %q is not recognized; treated as text", f.Type),
			})
		}
	}
	return issues
}

// validateStorage validates the optional database sink. An empty kind means
// no database load.
func validateStorage(s Storage) []Issue {
	var issues []Issue

	if strings.TrimSpace(s.Kind) == "" {
		return issues
	}

	known := map[string]struct{}{
		"postgres": {},
		"mysql":    {},
		"mssql":    {},
		"sqlite":   {},
	}
	if _, ok := known[s.Kind]; !ok {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "storage.kind",
			Message:  fmt.Sprintf("unknown storage kind %q; ensure a matching backend is registered", s.Kind),
		})
	}
	if strings.TrimSpace(s.DB.DSN) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.db.dsn",
			Message:  "storage.db.dsn must not be empty",
		})
	}
	if m := s.DB.LoadMode(); m != ModeReplace && m != ModeAppend {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.db.mode",
			Message:  fmt.Sprintf("mode must be %q or %q, got %q", ModeReplace, ModeAppend, m),
		})
	}

	return issues
}

// validateRuntime validates RuntimeConfig for obvious misconfigurations.
func validateRuntime(r RuntimeConfig) []Issue {
	var issues []Issue

	if r.BatchSize < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "runtime.batch_size",
			Message:  "batch_size must not be negative",
		})
	}
	if r.LoaderWorkers < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "runtime.loader_workers",
			Message:  "loader_workers must not be negative",
		})
	}

	return issues
}
