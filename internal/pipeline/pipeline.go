// Package pipeline runs a configured campaign ETL end to end:
//
//	ingest (archives → tables) → consolidate → project → emit CSV → load (optional)
//
// Every input is read and every projection computed before the first output
// file is published, so a failing run leaves previously emitted files as they
// were. The database load, when configured, runs after emission.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"bankmarketing/internal/bitmap"
	"bankmarketing/internal/config"
	"bankmarketing/internal/datasource"
	"bankmarketing/internal/datasource/file"
	"bankmarketing/internal/exporter"
	"bankmarketing/internal/metrics"
	"bankmarketing/internal/parser"
	csvparser "bankmarketing/internal/parser/csv"
	"bankmarketing/internal/storage"
	"bankmarketing/internal/transformer"
	"bankmarketing/internal/transformer/builtin"
	"bankmarketing/pkg/records"
)

// KeyColumn is the unified-table column checked for repeated values.
const KeyColumn = "client_id"

// Defaults applied when RuntimeConfig leaves a value at zero.
const (
	DefaultBatchSize     = 5000
	DefaultLoaderWorkers = 1
)

// Test seams.
var (
	newRepositoryFn = storage.New
	nowFn           = time.Now
)

// Input is one named source read during ingest.
type Input struct {
	Name   string
	Source datasource.Source
}

// TableResult describes one derived table after the run.
type TableResult struct {
	Name   string
	Path   string
	Rows   int
	Bytes  int64
	Digest uint64
	Loaded int64 // rows written to the database sink
}

// Summary reports what a run did.
type Summary struct {
	Inputs        int
	InputRows     int
	DuplicateKeys int // rows whose KeyColumn value was already seen
	Tables        []TableResult
	Elapsed       time.Duration
}

// Inputs resolves the configured source into an ordered input list.
func Inputs(src config.Source) ([]Input, error) {
	switch src.Kind {
	case "zip":
		paths := file.ArchivePaths(src.Zip.Dir, src.Zip.Pattern, src.Zip.Count)
		out := make([]Input, 0, len(paths))
		for _, p := range paths {
			out = append(out, Input{Name: p, Source: file.NewArchive(p)})
		}
		return out, nil
	case "file":
		paths := src.File.Paths
		if len(paths) == 0 && src.File.Path != "" {
			paths = []string{src.File.Path}
		}
		out := make([]Input, 0, len(paths))
		for _, p := range paths {
			out = append(out, Input{Name: p, Source: file.NewLocal(p)})
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported source.kind=%s", src.Kind)
	}
}

// Run executes p. The pipeline is validated first; error-severity issues
// abort the run before any input is opened.
func Run(ctx context.Context, p config.Pipeline) (Summary, error) {
	start := nowFn()
	var sum Summary

	if err := checkPipeline(p); err != nil {
		return sum, err
	}
	inputs, err := Inputs(p.Source)
	if err != nil {
		return sum, err
	}
	prs, err := newParser(p.Parser)
	if err != nil {
		return sum, err
	}
	projections, err := builtin.Projections(p.Tables)
	if err != nil {
		return sum, err
	}

	// ingest
	done := metrics.Track(p.Job, "ingest")
	unified, err := Ingest(ctx, inputs, prs)
	done(err)
	if err != nil {
		return sum, err
	}
	sum.Inputs = len(inputs)
	sum.InputRows = unified.Len()
	metrics.RecordRows(p.Job, "unified", "ingested", int64(unified.Len()))

	done = metrics.Track(p.Job, "consolidate")
	sum.DuplicateKeys = CountDuplicates(&unified, KeyColumn)
	done(nil)
	if sum.DuplicateKeys > 0 {
		log.Printf("consolidate: column=%s duplicates=%d", KeyColumn, sum.DuplicateKeys)
		metrics.RecordRows(p.Job, "unified", "duplicate_"+KeyColumn, int64(sum.DuplicateKeys))
	}

	// project
	done = metrics.Track(p.Job, "project")
	outs, err := Project(&unified, projections)
	done(err)
	if err != nil {
		return sum, err
	}

	// emit
	done = metrics.Track(p.Job, "emit")
	written, err := exporter.NewCSVWriter(p.Output.Dir).WriteAll(ctx, outs)
	done(err)
	if err != nil {
		return sum, err
	}
	sum.Tables = make([]TableResult, len(written))
	for i, w := range written {
		sum.Tables[i] = TableResult{Name: w.Name, Path: w.Path, Rows: w.Rows, Bytes: w.Bytes, Digest: w.Digest}
		metrics.RecordRows(p.Job, w.Name, "emitted", int64(w.Rows))
	}

	// load
	if p.Storage.Kind != "" {
		done = metrics.Track(p.Job, "load")
		loaded, err := Load(ctx, p, outs)
		done(err)
		for i := range sum.Tables {
			sum.Tables[i].Loaded = loaded[i]
		}
		if err != nil {
			sum.Elapsed = nowFn().Sub(start)
			return sum, err
		}
	}

	sum.Elapsed = nowFn().Sub(start)
	log.Printf("summary: job=%s inputs=%d input_rows=%d duplicates=%d tables=%d elapsed=%s",
		p.Job, sum.Inputs, sum.InputRows, sum.DuplicateKeys, len(sum.Tables), sum.Elapsed.Truncate(time.Millisecond))
	return sum, nil
}

func checkPipeline(p config.Pipeline) error {
	var errs []error
	for _, iss := range config.ValidatePipeline(p) {
		if iss.Severity == config.SeverityError {
			errs = append(errs, fmt.Errorf("%s: %s", iss.Path, iss.Message))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid pipeline: %w", errors.Join(errs...))
	}
	return nil
}

// newParser maps parser configuration onto a concrete parser.
func newParser(c config.Parser) (parser.Parser, error) {
	switch c.Kind {
	case "", "csv":
		return csvparser.NewParser(csvparser.OptionsFrom(c.Options)), nil
	default:
		return nil, fmt.Errorf("unsupported parser.kind=%s", c.Kind)
	}
}

// Ingest reads every input in order and appends its rows to one unified
// table. The first failure aborts the run.
func Ingest(ctx context.Context, inputs []Input, prs parser.Parser) (records.Table, error) {
	unified := records.Table{Source: "unified"}
	for _, in := range inputs {
		if err := ctx.Err(); err != nil {
			return records.Table{}, err
		}
		t, err := readInput(ctx, in, prs)
		if err != nil {
			return records.Table{}, err
		}
		if err := unified.Append(t); err != nil {
			return records.Table{}, err
		}
		log.Printf("ingest: input=%s rows=%d total=%d", in.Name, t.Len(), unified.Len())
	}
	return unified, nil
}

func readInput(ctx context.Context, in Input, prs parser.Parser) (records.Table, error) {
	rc, err := in.Source.Open(ctx)
	if err != nil {
		return records.Table{}, err
	}
	defer rc.Close()

	name := in.Name
	if entry := file.EntryName(rc); entry != "" {
		name = in.Name + ":" + entry
	}
	return prs.Parse(name, rc)
}

// CountDuplicates returns how many rows repeat an earlier value of column.
// A table without the column has none. Canonical small non-negative integer
// keys are tracked in a bitmap; any other text is tracked verbatim.
func CountDuplicates(t *records.Table, column string) int {
	idx, ok := t.Index(column)
	if !ok {
		return 0
	}
	ids := bitmap.New(t.Len())
	seen := make(map[string]struct{})
	dups := 0
	for _, row := range t.Rows {
		key := row[idx]
		if n, err := strconv.Atoi(key); err == nil && bitmap.Fits(n) && strconv.Itoa(n) == key {
			if !ids.Add(n) {
				dups++
			}
			continue
		}
		if _, ok := seen[key]; ok {
			dups++
			continue
		}
		seen[key] = struct{}{}
	}
	return dups
}

// Project runs every projection over the unified table.
func Project(t *records.Table, projections []transformer.Projection) ([]exporter.Output, error) {
	outs := make([]exporter.Output, 0, len(projections))
	for _, pr := range projections {
		f, err := pr.Run(t)
		if err != nil {
			return nil, err
		}
		log.Printf("project: table=%s columns=%d rows=%d", pr.Name, len(f.Columns), f.Len())
		outs = append(outs, exporter.Output{Name: pr.Name, File: pr.File, Frame: f})
	}
	return outs, nil
}

// Load writes every output into the configured database, one table per
// worker up to Runtime.LoaderWorkers. The returned slice holds rows loaded
// per output, aligned with outs.
func Load(ctx context.Context, p config.Pipeline, outs []exporter.Output) ([]int64, error) {
	workers := pickInt(p.Runtime.LoaderWorkers, DefaultLoaderWorkers)
	batchSize := pickInt(p.Runtime.BatchSize, DefaultBatchSize)
	loaded := make([]int64, len(outs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range outs {
		i := i
		g.Go(func() error {
			n, err := loadTable(gctx, p, p.Tables[i], outs[i], batchSize)
			loaded[i] = n
			return err
		})
	}
	return loaded, g.Wait()
}

func loadTable(ctx context.Context, p config.Pipeline, t config.Table, out exporter.Output, batchSize int) (int64, error) {
	table := p.Storage.DB.TablePrefix + t.Name
	columns := t.Contract.Columns()

	repo, err := newRepositoryFn(ctx, storage.Config{
		Kind:    p.Storage.Kind,
		DSN:     p.Storage.DB.DSN,
		Table:   table,
		Columns: columns,
		Kinds:   t.Contract.Kinds(),
	})
	if err != nil {
		return 0, fmt.Errorf("load %s: init repo: %w", table, err)
	}
	defer repo.Close()

	if p.Storage.DB.AutoCreateTable {
		if err := storage.EnsureTable(ctx, p.Storage.Kind, repo, table, t.Contract); err != nil {
			return 0, fmt.Errorf("load %s: %w", table, err)
		}
	}
	if p.Storage.DB.LoadMode() == config.ModeReplace {
		if err := storage.ClearTable(ctx, p.Storage.Kind, repo, table); err != nil {
			return 0, fmt.Errorf("load %s: %w", table, err)
		}
	}

	feedCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	total, batches, err := storage.LoadBatches(ctx, table, columns, storage.Feed(feedCtx, out.Frame.DBRows()), batchSize, repo.CopyFrom)
	metrics.RecordRows(p.Job, t.Name, "loaded", total)
	metrics.RecordBatches(p.Job, t.Name, batches)
	if err != nil {
		return total, fmt.Errorf("load %s: %w", table, err)
	}
	log.Printf("load: table=%s rows=%d batches=%d mode=%s", table, total, batches, p.Storage.DB.LoadMode())
	return total, nil
}

// pickInt chooses a when positive, otherwise b.
func pickInt(a, b int) int {
	if a > 0 {
		return a
	}
	return b
}
