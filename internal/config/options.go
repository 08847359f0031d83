package config

import (
	"github.com/spf13/cast"
)

// Options is a free-form bag of parser/backend tuning knobs carried in the
// pipeline config JSON. Accessors are forgiving: a missing or mistyped value
// yields the caller's default rather than an error, so optional knobs never
// fail a run.
type Options map[string]any

// Bool returns the option as a bool, or def when absent or not coercible.
func (o Options) Bool(key string, def bool) bool {
	v, ok := o[key]
	if !ok {
		return def
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return def
	}
	return b
}

// Int returns the option as an int, or def when absent or not coercible.
func (o Options) Int(key string, def int) int {
	v, ok := o[key]
	if !ok {
		return def
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		return def
	}
	return n
}

// String returns the option as a string, or def when absent.
func (o Options) String(key string, def string) string {
	v, ok := o[key]
	if !ok {
		return def
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return def
	}
	return s
}

// Rune returns the first rune of the option's string form, or def when the
// option is absent or empty. JSON has no rune type, so single-character
// options (a CSV delimiter) travel as strings.
func (o Options) Rune(key string, def rune) rune {
	s := o.String(key, "")
	if s == "" {
		return def
	}
	return []rune(s)[0]
}

// StringMap returns the option as a map of strings. Absent or mistyped
// options yield an empty map, never nil semantics the caller must special-case.
func (o Options) StringMap(key string) map[string]string {
	v, ok := o[key]
	if !ok {
		return map[string]string{}
	}
	m, err := cast.ToStringMapStringE(v)
	if err != nil {
		return map[string]string{}
	}
	return m
}

// Any returns the raw option value and whether it was present.
func (o Options) Any(key string) (any, bool) {
	v, ok := o[key]
	return v, ok
}
