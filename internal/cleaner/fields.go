// Package cleaner implements the dataset-cleaning engine: field normalizers,
// per-dataset cleaning pipelines, and dispatch by dataset identity.
//
// Field normalizers are total functions: any input, including malformed or
// missing values, maps to a documented sentinel rather than an error. All
// structural problems (a pipeline referencing a column that does not exist)
// abort the whole invocation with a single error and no partial output.
package cleaner

import (
	"strings"
	"time"

	"github.com/spf13/cast"
)

// DateSentinel is the value every unparseable date normalizes to.
const DateSentinel = "1900-01-01"

// sourceDateLayout is the month-first layout raw files carry dates in.
const sourceDateLayout = "01/02/2006"

// isoDateLayout is the canonical output form.
const isoDateLayout = "2006-01-02"

// NormalizeDate parses raw as an MM/DD/YYYY date and returns the ISO form
// YYYY-MM-DD. Any parse failure (wrong layout, impossible calendar day,
// empty string) yields DateSentinel. Never fails.
func NormalizeDate(raw string) string {
	t, err := time.Parse(sourceDateLayout, strings.TrimSpace(raw))
	if err != nil {
		return DateSentinel
	}
	return t.Format(isoDateLayout)
}

// NormalizeNumeric coerces v to its string form and strips every character
// that is not a decimal digit. The result may be empty; callers that need a
// numeric type must parse it and apply their own empty-value policy.
// Never fails: nil and unstringable values normalize to "".
func NormalizeNumeric(v any) string {
	s := cast.ToString(v)
	if s == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// emailDomain keeps the text after the first '@'. A value without '@' has no
// domain and resolves to "" (missing); extra '@' characters stay in the
// remainder.
func emailDomain(raw string) string {
	_, domain, ok := strings.Cut(raw, "@")
	if !ok {
		return ""
	}
	return domain
}

// asciiPunctuation mirrors the classic punctuation character class stripped
// from free-text fields.
const asciiPunctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// stripPunctuation removes ASCII punctuation characters.
func stripPunctuation(s string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(asciiPunctuation, r) {
			return -1
		}
		return r
	}, s)
}

// stripDigits removes decimal digit characters.
func stripDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return -1
		}
		return r
	}, s)
}

// yearOf extracts the year from an ISO date produced by NormalizeDate.
// The sentinel date yields 1900.
func yearOf(isoDate string) int {
	t, err := time.Parse(isoDateLayout, isoDate)
	if err != nil {
		return 1900
	}
	return t.Year()
}

// isMissing reports whether a cell carries no meaningful value: nil, or a
// string that is empty after trimming.
func isMissing(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

// cellString coerces a cell to a string for value-level transforms. Missing
// cells coerce to "".
func cellString(v any) string {
	if v == nil {
		return ""
	}
	return cast.ToString(v)
}
