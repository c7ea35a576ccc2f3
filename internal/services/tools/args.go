// Package tools provides the data tools offered to the report agent:
// a financial data lookup backed by EODHD and a web search.
package tools

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// stringArg returns args[name] as a trimmed string
func stringArg(args map[string]any, name string) (string, bool) {
	v, ok := args[name]
	if !ok || v == nil {
		return "", false
	}
	switch s := v.(type) {
	case string:
		s = strings.TrimSpace(s)
		return s, s != ""
	case fmt.Stringer:
		str := strings.TrimSpace(s.String())
		return str, str != ""
	default:
		return "", false
	}
}

// intArg returns args[name] as an int. Models send numbers as JSON numbers,
// numeric strings, or occasionally floats.
func intArg(args map[string]any, name string) (int, bool) {
	v, ok := args[name]
	if !ok || v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int(n), true
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), true
		}
		if f, err := n.Float64(); err == nil {
			return int(f), true
		}
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return i, true
		}
	}
	return 0, false
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
