package polymarket

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// present reports whether v carries a value (JSON null counts as absent).
func present(v any) bool {
	return v != nil
}

// truthy mirrors the loose truthiness the upstream contract relies on:
// null, "", false and numeric zero are all "not supplied".
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	case json.Number:
		d, err := decimal.NewFromString(t.String())
		return err != nil || !d.IsZero()
	case float64:
		return t != 0
	default:
		return true
	}
}

// text stringifies a scalar. Numbers are rendered canonically ("0.50" ->
// "0.5"); arrays and objects are re-encoded as compact JSON.
func text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		if d, err := decimal.NewFromString(t.String()); err == nil {
			return d.String()
		}
		return t.String()
	case float64:
		return decimal.NewFromFloat(t).String()
	default:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(t); err != nil {
			return ""
		}
		return strings.TrimRight(buf.String(), "\n")
	}
}

// amount reads v as a decimal, treating anything non-numeric as zero.
func amount(v any) decimal.Decimal {
	var s string
	switch t := v.(type) {
	case string:
		s = strings.TrimSpace(t)
	case json.Number:
		s = t.String()
	case float64:
		return decimal.NewFromFloat(t)
	default:
		return decimal.Zero
	}
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// flag reads a bool that may arrive as true/false or "true"/"false".
func flag(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		b, _ := strconv.ParseBool(strings.TrimSpace(t))
		return b
	default:
		return false
	}
}
