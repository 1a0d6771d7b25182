// Package format turns canonical market fields into display values.
//
// Every function here is total: bad input degrades to a neutral rendering
// ("$0", "0.00%", UnitUnknown) instead of failing.
package format

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultMarketBase is the public deep-link prefix for a market slug.
const DefaultMarketBase = "https://polymarket.com/event/"

var (
	million  = decimal.NewFromInt(1_000_000)
	thousand = decimal.NewFromInt(1_000)
)

// parse reads a decimal string. Empty and non-numeric text are reported as invalid.
func parse(value string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(value)
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// Volume renders a dollar amount with an M or K suffix above 1e6 and 1e3.
//
//	Volume("5000000") == "$5.0M"
//	Volume("5000")    == "$5.0K"
//	Volume("500")     == "$500"
func Volume(value string) string {
	v, ok := parse(value)
	if !ok {
		return "$0"
	}
	switch {
	case v.GreaterThanOrEqual(million):
		return "$" + v.Shift(-6).StringFixed(1) + "M"
	case v.GreaterThanOrEqual(thousand):
		return "$" + v.Shift(-3).StringFixed(1) + "K"
	default:
		return "$" + v.StringFixed(0)
	}
}

// PriceChange renders a fractional delta as a signed percentage with two
// decimals: "0.05" -> "+5.00%", "-0.03" -> "-3.00%".
func PriceChange(value string) string {
	v, ok := parse(value)
	if !ok {
		return "0.00%"
	}
	pct := v.Shift(2).StringFixed(2)
	if v.Sign() >= 0 {
		return "+" + pct + "%"
	}
	// tiny negatives round to "0.00" and lose their sign
	if !strings.HasPrefix(pct, "-") {
		pct = "-" + pct
	}
	return pct + "%"
}

// MarketURL joins base and the raw slug. An empty base uses DefaultMarketBase.
func MarketURL(base, slug string) string {
	if base == "" {
		base = DefaultMarketBase
	}
	return base + slug
}
