package main

import (
	"bytes"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bankmarketing/internal/campaign"
	"bankmarketing/internal/metrics"
	"bankmarketing/internal/metrics/prompush"
	"bankmarketing/internal/pipeline"
)

// captureLog redirects the standard logger for the duration of a test.
func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Writer()
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(prev) })
	return &buf
}

func TestLoadPipeline_DefaultsToCampaign(t *testing.T) {
	p, err := loadPipeline("")
	if err != nil {
		t.Fatal(err)
	}
	if p.Job != campaign.Job || len(p.Tables) != 3 {
		t.Fatalf("loadPipeline(\"\") = %+v", p)
	}
	if got := describeConfig(""); got != "built-in campaign pipeline" {
		t.Fatalf("describeConfig(\"\") = %q", got)
	}
}

func TestLoadPipeline_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.json")
	body := `{"job":"custom","source":{"kind":"file","file":{"path":"in.csv"}},"output":{"dir":"out"}}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	p, err := loadPipeline(path)
	if err != nil {
		t.Fatal(err)
	}
	if p.Job != "custom" || p.Source.File.Path != "in.csv" {
		t.Fatalf("loadPipeline() = %+v", p)
	}

	if _, err := loadPipeline(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatalf("loadPipeline(missing) expected error")
	}
}

// TestSetupMetrics swaps package seams and the process environment, so its
// cases run sequentially.
func TestSetupMetrics(t *testing.T) {
	origNew, origSet := newPromBackendFn, setBackendFn
	defer func() { newPromBackendFn, setBackendFn = origNew, origSet }()

	tests := []struct {
		name       string
		backend    string
		env        map[string]string
		newErr     error
		wantURL    string
		wantJob    string
		wantCalled bool
		wantSet    bool
		wantLog    string
	}{
		{name: "disabled", backend: "none"},
		{name: "unknown", backend: "statsd", wantLog: "unknown backend"},
		{
			name: "pushgateway default url", backend: "pushgateway",
			wantURL: defaultPushGatewayURL, wantJob: "bank", wantCalled: true, wantSet: true,
		},
		{
			name: "pushgateway from env", backend: "",
			env:     map[string]string{"METRICS_BACKEND": "pushgateway", "PUSHGATEWAY_URL": "http://gw:9091"},
			wantURL: "http://gw:9091", wantJob: "bank", wantCalled: true, wantSet: true,
		},
		{
			name: "backend init failure", backend: "pushgateway", newErr: errors.New("boom"),
			wantCalled: true, wantURL: defaultPushGatewayURL, wantJob: "bank", wantLog: "using nop",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("METRICS_BACKEND", "")
			t.Setenv("PUSHGATEWAY_URL", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			logs := captureLog(t)

			var (
				called        bool
				gotURL, gotJb string
				set           bool
			)
			newPromBackendFn = func(job, url string, _ prompush.RetryConfig) (*prompush.Backend, error) {
				called, gotURL, gotJb = true, url, job
				if tt.newErr != nil {
					return nil, tt.newErr
				}
				return &prompush.Backend{}, nil
			}
			setBackendFn = func(metrics.Backend) { set = true }

			flush := setupMetrics(tt.backend, "", "bank", true)
			if flush == nil {
				t.Fatalf("setupMetrics() returned nil flush")
			}

			if called != tt.wantCalled || set != tt.wantSet {
				t.Fatalf("called=%v set=%v; want %v/%v", called, set, tt.wantCalled, tt.wantSet)
			}
			if tt.wantCalled && (gotURL != tt.wantURL || gotJb != tt.wantJob) {
				t.Fatalf("backend url=%q job=%q; want %q/%q", gotURL, gotJb, tt.wantURL, tt.wantJob)
			}
			if tt.wantLog != "" && !strings.Contains(logs.String(), tt.wantLog) {
				t.Fatalf("log %q missing %q", logs.String(), tt.wantLog)
			}
		})
	}
}

func TestLogGlobalSummary(t *testing.T) {
	logs := captureLog(t)

	logGlobalSummary(pipeline.Summary{
		InputRows: 2,
		Tables: []pipeline.TableResult{
			{Name: "client", Path: "out/client.csv", Rows: 2, Digest: 0xabc},
			{Name: "campaign", Path: "out/campaign.csv", Rows: 1},
		},
	})

	out := logs.String()
	if !strings.Contains(out, "table: name=client path=out/client.csv rows=2") {
		t.Fatalf("missing client line in %q", out)
	}
	if !strings.Contains(out, "xxh3=0000000000000abc") {
		t.Fatalf("missing digest in %q", out)
	}
	if !strings.Contains(out, "WARNING: row accounting mismatch: table=campaign") {
		t.Fatalf("missing mismatch warning in %q", out)
	}
	if strings.Contains(out, "mismatch: table=client") {
		t.Fatalf("unexpected warning for client in %q", out)
	}
}

func TestGetenvInt(t *testing.T) {
	t.Setenv("ETL_TEST_INT", "7")
	if got := getenvInt("ETL_TEST_INT", 1); got != 7 {
		t.Fatalf("getenvInt = %d, want 7", got)
	}
	t.Setenv("ETL_TEST_INT", "x")
	if got := getenvInt("ETL_TEST_INT", 1); got != 1 {
		t.Fatalf("getenvInt(bad) = %d, want 1", got)
	}
}
