package cleaner

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/akshay-rajan/adventureworks/internal/table"
)

// stage is one pure step of a cleaning pipeline. Stages mutate the dataset
// they are handed; the dispatcher clones the caller's dataset first, so a
// failed pipeline never leaks a half-cleaned result.
type stage func(ds *table.Dataset) error

// renameColumn renames from -> to. The source column must exist.
func renameColumn(from, to string) stage {
	return func(ds *table.Dataset) error {
		return ds.Rename(from, to)
	}
}

// renameLastColumn renames the last column to the given name unless it
// already carries it.
func renameLastColumn(to string) stage {
	return func(ds *table.Dataset) error {
		last, err := ds.LastColumn()
		if err != nil {
			return err
		}
		if last == to {
			return nil
		}
		return ds.Rename(last, to)
	}
}

// setConstant overwrites every cell of an existing column with a fixed value.
func setConstant(col string, v any) stage {
	return func(ds *table.Dataset) error {
		return ds.Apply(col, func(any) any { return v })
	}
}

// mapString applies fn to the string form of each non-missing cell. Missing
// cells pass through untouched.
func mapString(col string, fn func(string) string) stage {
	return func(ds *table.Dataset) error {
		return ds.Apply(col, func(v any) any {
			if v == nil {
				return nil
			}
			return fn(cellString(v))
		})
	}
}

// normalizeNumericColumn applies NormalizeNumeric to every non-missing cell.
func normalizeNumericColumn(col string) stage {
	return mapString(col, func(s string) string { return NormalizeNumeric(s) })
}

// normalizeDateColumn applies NormalizeDate to every non-missing cell.
func normalizeDateColumn(col string) stage {
	return mapString(col, NormalizeDate)
}

// replaceValues rewrites exact cell values per the given mapping; values
// outside the mapping pass through unchanged.
func replaceValues(col string, repl map[string]string) stage {
	return func(ds *table.Dataset) error {
		return ds.Apply(col, func(v any) any {
			if v == nil {
				return nil
			}
			if mapped, ok := repl[cellString(v)]; ok {
				return mapped
			}
			return v
		})
	}
}

// fillMissing replaces missing cells with a fixed value.
func fillMissing(col string, v any) stage {
	return func(ds *table.Dataset) error {
		return ds.Apply(col, func(cell any) any {
			if isMissing(cell) {
				return v
			}
			return cell
		})
	}
}

// toBool coerces a cell to a boolean indicator: any value in truthy maps to
// true, everything else (including missing) maps to false.
func toBool(col string, truthy ...string) stage {
	set := make(map[string]struct{}, len(truthy))
	for _, t := range truthy {
		set[t] = struct{}{}
	}
	return func(ds *table.Dataset) error {
		return ds.Apply(col, func(v any) any {
			if b, ok := v.(bool); ok {
				return b
			}
			_, ok := set[cellString(v)]
			return ok
		})
	}
}

// dropMissingRows removes every row whose cell in col is missing.
func dropMissingRows(col string) stage {
	return func(ds *table.Dataset) error {
		cells, err := ds.Column(col)
		if err != nil {
			return err
		}
		ds.Filter(func(row int) bool { return !isMissing(cells[row]) })
		return nil
	}
}

// filterRows keeps only rows whose cell in col satisfies keep.
func filterRows(col string, keep func(any) bool) stage {
	return func(ds *table.Dataset) error {
		cells, err := ds.Column(col)
		if err != nil {
			return err
		}
		ds.Filter(func(row int) bool { return keep(cells[row]) })
		return nil
	}
}

// parseInt replaces each cell with the integer value of its digit-stripped
// string form. An empty digit string parses as 0 (sentinel policy: malformed
// quantities resolve to zero and are handled by downstream row filters).
func parseInt(col string) stage {
	return func(ds *table.Dataset) error {
		return ds.Apply(col, func(v any) any {
			s := NormalizeNumeric(v)
			if s == "" {
				return 0
			}
			n, err := strconv.Atoi(s)
			if err != nil {
				// Digit-only strings can still overflow int; clamp to sentinel.
				return 0
			}
			return n
		})
	}
}

// deriveColumn appends a new column computed cell-by-cell from an existing one.
func deriveColumn(name, from string, fn func(any) any) stage {
	return func(ds *table.Dataset) error {
		src, err := ds.Column(from)
		if err != nil {
			return err
		}
		out := make([]any, len(src))
		for i, v := range src {
			out[i] = fn(v)
		}
		return ds.AddColumn(name, out)
	}
}

// oneHotExpand replaces a multi-valued, comma-separated column with one
// boolean indicator column per distinct value observed across this dataset.
// The output keeps only the column named by keep plus the indicators; the
// indicator schema is data-dependent, so columns are emitted in sorted order
// to make it deterministic for a given input.
func oneHotExpand(col, keep string) stage {
	return func(ds *table.Dataset) error {
		src, err := ds.Column(col)
		if err != nil {
			return err
		}
		// Surface the structural error before mutating anything.
		if _, err := ds.Column(keep); err != nil {
			return err
		}

		// First pass: distinct values across the whole column.
		perRow := make([][]string, len(src))
		distinct := map[string]struct{}{}
		for i, v := range src {
			vals := splitMultiValue(cellString(v))
			perRow[i] = vals
			for _, s := range vals {
				distinct[s] = struct{}{}
			}
		}

		names := make([]string, 0, len(distinct))
		for s := range distinct {
			names = append(names, s)
		}
		sort.Strings(names)

		if err := ds.Select(keep); err != nil {
			return err
		}
		for _, name := range names {
			set := make(map[int]struct{})
			for i, vals := range perRow {
				for _, s := range vals {
					if s == name {
						set[i] = struct{}{}
						break
					}
				}
			}
			cells := make([]any, len(perRow))
			for i := range perRow {
				_, ok := set[i]
				cells[i] = ok
			}
			if err := ds.AddColumn(name, cells); err != nil {
				return fmt.Errorf("one-hot: %w", err)
			}
		}
		return nil
	}
}

// splitMultiValue splits a comma-separated list and trims surrounding space
// from each entry. Empty entries are dropped.
func splitMultiValue(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
