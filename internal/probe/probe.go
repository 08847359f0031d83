// Package probe inspects a decoded dataset and infers a coarse column
// schema. Operators run it against raw files before wiring a new dataset
// into the pipeline, to decide warehouse column types and spot layout
// surprises early.
//
// All inference is best-effort and must never fail the probe run.
package probe

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/akshay-rajan/adventureworks/internal/table"
)

// Column is one inferred column schema.
type Column struct {
	Name string
	// Type is one of "integer", "float", "boolean", "date", "timestamp", "text".
	Type string
	// Layout is the majority date/timestamp layout; "" for other types.
	Layout string
	// Missing counts empty cells.
	Missing int
}

// Report summarizes a probed dataset.
type Report struct {
	Rows    int
	Columns []Column
	// KeyColumn is the most distinct column, a candidate load key. Empty
	// when no column has any values.
	KeyColumn string
}

// Inspect infers a schema for every column of ds.
func Inspect(ds *table.Dataset) Report {
	rep := Report{Rows: ds.Len()}

	bestDistinct := 0
	for _, name := range ds.Columns() {
		cells, err := ds.Column(name)
		if err != nil {
			continue
		}
		col := inferColumn(name, cells)
		rep.Columns = append(rep.Columns, col)

		if n := distinctCount(cells); n > bestDistinct {
			bestDistinct = n
			rep.KeyColumn = name
		}
	}
	return rep
}

// Summary renders the report in the same header,type,layout CSV form the
// probe has always printed.
func (r Report) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "sample_rows=%d\n", r.Rows)
	fmt.Fprintf(&b, "key_column=%s\n", r.KeyColumn)
	fmt.Fprintf(&b, "column,type,layout,missing\n")
	for _, c := range r.Columns {
		fmt.Fprintf(&b, "%s,%s,%s,%d\n", c.Name, c.Type, c.Layout, c.Missing)
	}
	return b.String()
}

// inferColumn picks the most specific type every non-empty cell satisfies.
func inferColumn(name string, cells []any) Column {
	col := Column{Name: name, Type: "text"}

	var seen bool
	allInt := true
	allFloat := true
	allBool := true
	allDate := true
	allTS := true
	layoutCounts := map[string]int{}

	for _, cell := range cells {
		v := cellText(cell)
		if v == "" {
			col.Missing++
			continue
		}
		seen = true

		if allInt {
			if _, err := strconv.ParseInt(v, 10, 64); err != nil {
				allInt = false
			}
		}
		if allFloat {
			if _, err := strconv.ParseFloat(v, 64); err != nil {
				allFloat = false
			}
		}
		if allBool {
			if _, ok := parseBoolLoose(v); !ok {
				allBool = false
			}
		}
		if allDate {
			if lay, ok := parseDateLoose(v); ok {
				layoutCounts[lay]++
			} else {
				allDate = false
			}
		}
		if allTS {
			if lay, ok := parseTimestampLoose(v); ok {
				layoutCounts[lay]++
			} else {
				allTS = false
			}
		}
	}

	if !seen {
		return col
	}

	// Prefer more specific types.
	switch {
	case allInt:
		col.Type = "integer"
	case allBool:
		col.Type = "boolean"
	case allDate:
		col.Type = "date"
	case allTS:
		col.Type = "timestamp"
	case allFloat:
		col.Type = "float"
	default:
		col.Type = "text"
	}

	if col.Type == "date" || col.Type == "timestamp" {
		best, bestN := "", 0
		for lay, n := range layoutCounts {
			if n > bestN {
				best, bestN = lay, n
			}
		}
		col.Layout = best
	}
	return col
}

func distinctCount(cells []any) int {
	const capDistinct = 10000
	set := make(map[string]struct{})
	for _, cell := range cells {
		v := cellText(cell)
		if v == "" {
			continue
		}
		set[v] = struct{}{}
		if len(set) >= capDistinct {
			break
		}
	}
	return len(set)
}

func cellText(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

func parseBoolLoose(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "1", "t", "true", "yes", "y":
		return true, true
	case "0", "f", "false", "no", "n":
		return false, true
	default:
		return false, false
	}
}

var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"02.01.2006",
}

var tsLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z07:00",
}

func parseDateLoose(s string) (string, bool) {
	for _, lay := range dateLayouts {
		if _, err := time.Parse(lay, s); err == nil {
			return lay, true
		}
	}
	return "", false
}

func parseTimestampLoose(s string) (string, bool) {
	for _, lay := range tsLayouts {
		if _, err := time.Parse(lay, s); err == nil {
			return lay, true
		}
	}
	return "", false
}
