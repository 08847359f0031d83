package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/akshay-rajan/adventureworks/internal/config"
	"github.com/akshay-rajan/adventureworks/internal/metrics"
	"github.com/akshay-rajan/adventureworks/internal/metrics/datadog"
	"github.com/akshay-rajan/adventureworks/internal/pipeline"

	// register all backends with the storage factory.
	// config specifies which to use but we need to build in support for all of them.
	_ "github.com/akshay-rajan/adventureworks/internal/storage/all"
)

// main is the entry point for the etl binary. It loads the pipeline config,
// optionally initializes a metrics backend, and processes one raw object.
func main() {
	os.Exit(runMain(os.Args[1:], os.Stderr))
}

func runMain(args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("etl", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		cfgPath           string
		bucket            string
		key               string
		metricsBackendFlg string
		validate          bool
	)
	fs.StringVar(&cfgPath, "config", "configs/pipelines/sample.json", "pipeline config JSON path")
	fs.StringVar(&bucket, "bucket", "", "bucket holding the raw object")
	fs.StringVar(&key, "key", "", "key of the raw object (e.g. sales_2016.csv)")
	fs.StringVar(&metricsBackendFlg, "metrics-backend", "none", "metrics backend to use (datadog, none)")
	fs.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	verbose := fs.Bool("v", false, "enable verbose logs")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	f, err := os.Open(cfgPath)
	if err != nil {
		fmt.Fprintf(stderr, "open config: %v\n", err)
		return 1
	}
	defer f.Close()

	var p config.Pipeline
	if err := json.NewDecoder(f).Decode(&p); err != nil {
		fmt.Fprintf(stderr, "decode config: %v\n", err)
		return 1
	}

	issues := config.ValidatePipeline(p)
	hasError := false
	for _, iss := range issues {
		fmt.Fprintf(stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
		if iss.Severity == config.SeverityError {
			hasError = true
		}
	}
	if hasError {
		fmt.Fprintf(stderr, "configuration is invalid: %v\n", cfgPath)
		return 1
	}

	// If validate flag is set, only validate the configuration and exit.
	if validate {
		fmt.Fprintf(stderr, "configuration is valid: %v\n", cfgPath)
		return 0
	}

	if bucket == "" || key == "" {
		fmt.Fprintln(stderr, "usage: etl -config pipeline.json -bucket raw -key sales_2016.csv")
		return 2
	}

	closeMetrics, err := initMetrics(metricsBackendFlg, p.Job, *verbose)
	if err != nil {
		fmt.Fprintf(stderr, "metrics: %v\n", err)
		return 1
	}
	defer closeMetrics()

	var logger pipeline.Logger
	if *verbose {
		logger = log.New(stderr, "", log.LstdFlags)
	}

	eng, err := pipeline.FromConfig(p, logger)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}

	start := time.Now()
	res, err := eng.Run(context.Background(), bucket, key)
	if err != nil {
		fmt.Fprintf(stderr, "run: %v\n", err)
		return 1
	}

	if *verbose {
		log.Printf("run=%s kind=%s rows_in=%d rows_out=%d loaded=%d in %s",
			res.RunID, res.Kind, res.RowsIn, res.RowsOut, res.RowsLoaded,
			time.Since(start).Truncate(time.Millisecond))
	}
	return 0
}

// initMetrics wires the process-wide metrics backend. The returned func
// flushes and tears the backend down; it is safe to call when metrics are
// disabled.
func initMetrics(backendName, jobName string, verbose bool) (func(), error) {
	switch backendName {
	case "datadog":
		// Datadog backend:
		//   - buffers metrics and submits periodically (default once per minute)
		//   - submits one final time at shutdown (Close())
		if jobName == "" {
			jobName = "etl_job"
		}

		// Optional extra tags provided via environment, complementing the
		// backend-enforced env:<...> tag.
		extraTags := datadog.ParseTagsCSV(os.Getenv("METRICS_TAGS"))

		b, err := datadog.NewBackend(context.Background(), datadog.Options{
			JobName:    jobName,
			Tags:       extraTags,
			FlushEvery: 60 * time.Second,
		})
		if err != nil {
			return nil, err
		}
		if verbose {
			log.Printf("metrics: backend=%v job_name=%v tags=%v", backendName, jobName, extraTags)
		}
		metrics.SetBackend(b)
		return func() {
			// Close() stops the periodic flush loop and then performs a
			// final Flush(). This is the clean shutdown path.
			if err := b.Close(); err != nil {
				log.Printf("metrics: datadog close/flush error: %v", err)
			}
		}, nil

	case "", "none":
		// metrics disabled; nop backend remains
		return func() {}, nil

	default:
		return nil, fmt.Errorf("unknown backend %q", backendName)
	}
}
