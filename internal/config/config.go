// Package config defines the pipeline configuration schema and its
// validation. A config describes where raw objects live, how to parse them,
// where cleaned objects are written, and which warehouse backend loads them.
package config

import (
	"fmt"
)

// Pipeline is the top-level configuration for one cleaning pipeline.
// It is decoded from a user-provided JSON file.
type Pipeline struct {
	Job     string  `json:"job"`
	Source  Source  `json:"source"`
	Parser  Parser  `json:"parser"`
	Target  Target  `json:"target"`
	Storage Storage `json:"storage"`
}

// Source locates the object store raw files arrive in.
type Source struct {
	// Kind of object store: "local" is the only built-in.
	Kind  string      `json:"kind"`
	Local *LocalStore `json:"local,omitempty"`
}

// LocalStore is a directory-backed object store. Buckets are subdirectories
// of Root; keys are paths beneath a bucket.
type LocalStore struct {
	Root string `json:"root"`
}

// Parser selects and tunes the raw-file decoder.
type Parser struct {
	// Kind of parser: "csv" is the only built-in.
	Kind    string  `json:"kind"`
	Options Options `json:"options"`
}

// Target names the bucket that receives cleaned objects.
type Target struct {
	Bucket string `json:"bucket"`
}

// Storage selects the warehouse backend cleaned datasets are bulk-loaded
// into. Kind must name a registered backend ("postgres", "mssql", "sqlite").
// An empty Kind disables warehouse loading for the run.
type Storage struct {
	Kind string `json:"kind"`
	DSN  string `json:"dsn"`

	// AutoCreateTable creates the destination table from the cleaned
	// dataset's columns before loading. Useful for sqlite and scratch
	// environments; production warehouses usually manage schemas themselves.
	AutoCreateTable bool `json:"auto_create_table"`
}

// Severity classifies a validation issue.
type Severity string

const (
	SeverityError Severity = "error"
	SeverityWarn  Severity = "warn"
)

// Issue is one validation finding, with a JSON-path-ish location.
type Issue struct {
	Severity Severity
	Path     string
	Message  string
}

// ValidatePipeline checks a decoded pipeline config for structural problems.
// It returns every issue found; callers decide whether warnings are fatal.
func ValidatePipeline(p Pipeline) []Issue {
	var issues []Issue

	errf := func(path, format string, a ...any) {
		issues = append(issues, Issue{SeverityError, path, fmt.Sprintf(format, a...)})
	}
	warnf := func(path, format string, a ...any) {
		issues = append(issues, Issue{SeverityWarn, path, fmt.Sprintf(format, a...)})
	}

	if p.Job == "" {
		warnf("job", "empty job name; metrics will tag job:etl_job")
	}

	switch p.Source.Kind {
	case "local":
		if p.Source.Local == nil || p.Source.Local.Root == "" {
			errf("source.local.root", "local source requires a root directory")
		}
	case "":
		errf("source.kind", "source kind is required")
	default:
		errf("source.kind", "unknown source kind %q", p.Source.Kind)
	}

	switch p.Parser.Kind {
	case "csv", "":
		// empty defaults to csv
	default:
		errf("parser.kind", "unknown parser kind %q", p.Parser.Kind)
	}

	if p.Target.Bucket == "" {
		errf("target.bucket", "target bucket is required")
	}

	switch p.Storage.Kind {
	case "":
		warnf("storage.kind", "no storage backend; cleaned files will not be loaded")
	case "postgres", "mssql", "sqlite":
		if p.Storage.DSN == "" {
			errf("storage.dsn", "storage backend %q requires a dsn", p.Storage.Kind)
		}
	default:
		errf("storage.kind", "unknown storage kind %q", p.Storage.Kind)
	}

	return issues
}
