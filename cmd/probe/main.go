// Command probe prints an inferred column schema for a raw CSV object.
// It is an operator tool for sizing up new datasets before adding them
// to a pipeline configuration.
//
//	probe -root ./data -bucket raw -key customers.csv
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/akshay-rajan/adventureworks/internal/config"
	"github.com/akshay-rajan/adventureworks/internal/parser/csv"
	"github.com/akshay-rajan/adventureworks/internal/probe"
	"github.com/akshay-rajan/adventureworks/internal/source"
)

func main() {
	os.Exit(runMain(os.Args[1:], os.Stdout, os.Stderr))
}

func runMain(args []string, out, errw io.Writer) int {
	fs := flag.NewFlagSet("probe", flag.ContinueOnError)
	fs.SetOutput(errw)
	root := fs.String("root", ".", "local store root directory")
	bucket := fs.String("bucket", "", "bucket under the store root")
	key := fs.String("key", "", "object key to probe")
	charset := fs.String("charset", "iso-8859-1", "source charset (iso-8859-1 or utf-8)")
	comma := fs.String("delimiter", ",", "field delimiter")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *bucket == "" || *key == "" {
		fmt.Fprintln(errw, "usage: probe -root DIR -bucket BUCKET -key KEY")
		return 2
	}

	store, err := source.NewLocal(*root)
	if err != nil {
		fmt.Fprintf(errw, "probe: %v\n", err)
		return 1
	}
	raw, err := store.Get(context.Background(), *bucket, *key)
	if err != nil {
		fmt.Fprintf(errw, "probe: %v\n", err)
		return 1
	}

	ds, err := csv.Decode(bytes.NewReader(raw), config.Options{
		"charset": *charset,
		"comma":   *comma,
	})
	if err != nil {
		fmt.Fprintf(errw, "probe: decode %s/%s: %v\n", *bucket, *key, err)
		return 1
	}

	fmt.Fprint(out, probe.Inspect(ds).Summary())
	return 0
}
