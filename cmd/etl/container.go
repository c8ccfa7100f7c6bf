// Package main wires the campaign ETL binary: configuration, the metrics
// backend and the end-of-run summary. The pipeline itself lives in
// internal/pipeline; this file never imports database drivers directly.
package main

import (
	"log"
	"os"
	"strconv"
	"time"

	"bankmarketing/internal/metrics"
	"bankmarketing/internal/metrics/prompush"
	"bankmarketing/internal/pipeline"
)

const defaultPushGatewayURL = "http://localhost:9091"

// Test seams.
var (
	newPromBackendFn = prompush.NewBackend
	setBackendFn     = metrics.SetBackend
)

// setupMetrics selects the metrics backend (flag → env METRICS_BACKEND →
// none) and returns a function that flushes it. The returned function is
// always safe to call.
func setupMetrics(backendFlag, urlFlag, job string, verbose bool) func() {
	backendName := backendFlag
	if backendName == "" {
		backendName = os.Getenv("METRICS_BACKEND")
	}

	switch backendName {
	case "pushgateway":
		// flag → env → default.
		gwURL := urlFlag
		if gwURL == "" {
			gwURL = os.Getenv("PUSHGATEWAY_URL")
		}
		if gwURL == "" {
			gwURL = defaultPushGatewayURL
		}

		jobName := job
		if jobName == "" {
			jobName = "campaign_etl"
		}

		b, err := newPromBackendFn(jobName, gwURL, prompush.RetryConfig{
			MaxRetries:     getenvInt("ETL_PUSH_RETRIES", 2),
			InitialBackoff: time.Duration(getenvInt("ETL_PUSH_BACKOFF_MS", 200)) * time.Millisecond,
		})
		if err != nil {
			log.Printf("metrics: failed to init prom push backend: %v; using nop", err)
			return func() {}
		}
		log.Printf("metrics: url=%v, backend=%v, job_name=%v", gwURL, backendName, jobName)
		setBackendFn(b)
		return func() {
			if err := metrics.Flush(); err != nil {
				log.Printf("metrics: flush error: %v", err)
			}
		}

	case "", "none":
		if verbose {
			log.Printf("metrics: disabled (backend=%q)", backendName)
		}

	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", backendName)
	}
	return func() {}
}

// logGlobalSummary prints the per-table results of a run.
//
// Every derived table holds one row per input row, so a mismatch between
// table rows and input rows is reported as a warning.
func logGlobalSummary(s pipeline.Summary) {
	for _, t := range s.Tables {
		log.Printf("table: name=%s path=%s rows=%d bytes=%d loaded=%d xxh3=%016x",
			t.Name, t.Path, t.Rows, t.Bytes, t.Loaded, t.Digest)
		if t.Rows != s.InputRows {
			log.Printf("WARNING: row accounting mismatch: table=%s rows=%d input_rows=%d", t.Name, t.Rows, s.InputRows)
		}
	}
}

func getenvInt(k string, def int) int {
	if s := os.Getenv(k); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return def
}
