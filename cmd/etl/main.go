package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"bankmarketing/internal/campaign"
	"bankmarketing/internal/config"
	"bankmarketing/internal/pipeline"

	// register all backends with the storage factory; the config selects one.
	_ "bankmarketing/internal/storage/all"
)

// main is the entry point for the ETL binary. Without flags it runs the bank
// marketing campaign pipeline against files/input and files/output.
func main() {
	var (
		cfgPath           string
		metricsBackendFlg string
		pushGatewayURLFlg string
		validate          bool
	)

	flag.StringVar(&cfgPath, "config", "", "pipeline config JSON path (default: built-in campaign pipeline)")
	flag.StringVar(&metricsBackendFlg, "metrics-backend", "", "metrics backend to use (pushgateway, none); falls back to env METRICS_BACKEND")
	flag.StringVar(&pushGatewayURLFlg, "pushgateway-url", "", "Pushgateway base URL (overrides env PUSHGATEWAY_URL)")
	flag.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	verbose := flag.Bool("v", false, "enable verbose logs")

	flag.Parse()

	if !*verbose {
		log.SetOutput(io.Discard)
	}

	p, err := loadPipeline(cfgPath)
	if err != nil {
		fatalf("%v", err)
	}

	issues := config.ValidatePipeline(p)
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		fatalf("configuration is invalid: %s", describeConfig(cfgPath))
	}
	if validate {
		fmt.Fprintf(os.Stderr, "configuration is valid: %s\n", describeConfig(cfgPath))
		return
	}

	flush := setupMetrics(metricsBackendFlg, pushGatewayURLFlg, p.Job, *verbose)

	ctx := context.Background()
	start := time.Now()

	sum, err := pipeline.Run(ctx, p)
	flush()
	if err != nil {
		fatalf("%v", err)
	}

	logGlobalSummary(sum)
	if *verbose {
		log.Printf("completed in %s", time.Since(start).Truncate(time.Millisecond))
	}
}

// loadPipeline reads path, or returns the built-in campaign pipeline when
// path is empty.
func loadPipeline(path string) (config.Pipeline, error) {
	if path == "" {
		return campaign.DefaultPipeline(), nil
	}
	p, err := config.Load(path)
	if err != nil {
		return config.Pipeline{}, err
	}
	return p, nil
}

func describeConfig(path string) string {
	if path == "" {
		return "built-in campaign pipeline"
	}
	return path
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
