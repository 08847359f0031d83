// Package csv decodes raw CSV objects into datasets and encodes cleaned
// datasets back to CSV bytes.
package csv

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cast"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/akshay-rajan/adventureworks/internal/config"
	"github.com/akshay-rajan/adventureworks/internal/table"
)

// Decode reads a whole CSV object into a dataset. The first record is the
// header; remaining records become rows, aligned to the header's columns.
// Empty cells decode to nil so downstream missing-value handling has a
// single representation to check.
//
// Options:
//
//	charset     "iso-8859-1" (default) or "utf-8"
//	comma       field delimiter, default ","
//	trim_space  trim edge whitespace from cells, default true
//	lazy_quotes accept bare quotes inside fields, default false
//
// The raw exports this pipeline ingests are Latin-1 encoded, hence the
// charset default; decoded datasets are always UTF-8.
func Decode(r io.Reader, opt config.Options) (*table.Dataset, error) {
	charset := opt.String("charset", "iso-8859-1")
	trim := opt.Bool("trim_space", true)

	switch strings.ToLower(charset) {
	case "iso-8859-1", "latin-1", "latin1":
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	case "utf-8", "utf8":
	default:
		return nil, fmt.Errorf("csv decode: unsupported charset %q", charset)
	}

	cr := csv.NewReader(r)
	cr.Comma = opt.Rune("comma", ',')
	cr.LazyQuotes = opt.Bool("lazy_quotes", false)
	cr.ReuseRecord = true

	hdr, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("csv decode: read header: %w", err)
	}
	names := make([]string, len(hdr))
	for i, h := range hdr {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		if hasEdgeSpace(h) {
			h = strings.TrimSpace(h)
		}
		names[i] = h
	}

	ds := table.New(names...)
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return ds, nil
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("csv decode: line %d: %w", line, err)
		}
		row := make([]any, len(names))
		for i, v := range rec {
			if trim && hasEdgeSpace(v) {
				v = strings.TrimSpace(v)
			}
			if v == "" {
				row[i] = nil
			} else {
				row[i] = v
			}
		}
		if err := ds.AppendRow(row); err != nil {
			return nil, fmt.Errorf("csv decode: line %d: %w", line, err)
		}
	}
}

// Encode serializes a dataset to CSV bytes. Cleaned objects feed warehouse
// COPY commands that expect data-only files, so the header row is emitted
// only when withHeader is set.
func Encode(ds *table.Dataset, withHeader bool) ([]byte, error) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	if withHeader {
		if err := cw.Write(ds.Columns()); err != nil {
			return nil, fmt.Errorf("csv encode: header: %w", err)
		}
	}

	rec := make([]string, ds.NumColumns())
	for _, row := range ds.Rows() {
		for i, v := range row {
			rec[i] = FormatCell(v)
		}
		if err := cw.Write(rec); err != nil {
			return nil, fmt.Errorf("csv encode: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, fmt.Errorf("csv encode: %w", err)
	}
	return buf.Bytes(), nil
}

// FormatCell renders one cell for CSV output. Booleans use the capitalized
// form the downstream warehouse COPY expects; nil renders empty. The same
// rendering is used for warehouse load rows so both outputs agree.
func FormatCell(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case bool:
		if t {
			return "True"
		}
		return "False"
	case int:
		return strconv.Itoa(t)
	default:
		return cast.ToString(v)
	}
}

func hasEdgeSpace(s string) bool {
	if s == "" {
		return false
	}
	return s[0] == ' ' || s[0] == '\t' || s[len(s)-1] == ' ' || s[len(s)-1] == '\t'
}
