// Package ranking builds the ranked and searchable market views.
//
// All functions are pure: they return new slices and never reorder or
// modify the input.
package ranking

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Checker-Finance/market-radar/pkg/model"
)

// Limit caps every ranked view.
const Limit = 20

// View is one of the ranking modes.
type View string

const (
	ViewVolume24h   View = "volume24h"
	ViewVolume7d    View = "volume7d"
	ViewPriceChange View = "priceChange"
)

// Views lists the supported views in display order.
var Views = []View{ViewVolume24h, ViewVolume7d, ViewPriceChange}

// ParseView accepts the canonical names plus the "hot" / "trending" aliases
// used by the dashboard tabs.
func ParseView(s string) (View, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "volume24h", "hot", "24h":
		return ViewVolume24h, nil
	case "volume7d", "7d", "week":
		return ViewVolume7d, nil
	case "pricechange", "trending", "change":
		return ViewPriceChange, nil
	default:
		return "", fmt.Errorf("unknown view %q", s)
	}
}

// ByVolume24h keeps markets with positive 24h volume, highest first.
func ByVolume24h(markets []model.Market) []model.Market {
	return rank(markets, func(m model.Market) string { return m.Volume24hr }, isPositive)
}

// ByVolume7d keeps markets with positive 7d volume, highest first.
func ByVolume7d(markets []model.Market) []model.Market {
	return rank(markets, func(m model.Market) string { return m.Volume1wk }, isPositive)
}

// ByPriceChange keeps markets whose 24h price moved, biggest gain first and
// biggest loss last.
func ByPriceChange(markets []model.Market) []model.Market {
	return rank(markets, func(m model.Market) string { return m.OneDayPriceChange }, isNonZero)
}

// Rank dispatches to the ranking function for v. Unknown views rank nothing.
func Rank(v View, markets []model.Market) []model.Market {
	switch v {
	case ViewVolume24h:
		return ByVolume24h(markets)
	case ViewVolume7d:
		return ByVolume7d(markets)
	case ViewPriceChange:
		return ByPriceChange(markets)
	default:
		return []model.Market{}
	}
}

// Select ranks first and then narrows the ranked pool with query, so the cap
// applies before the search.
func Select(markets []model.Market, v View, query string) []model.Market {
	return Search(Rank(v, markets), query)
}

// Search keeps markets whose question or category contains query,
// case-insensitively. A blank query returns the input as is.
func Search(markets []model.Market, query string) []model.Market {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return markets
	}

	out := make([]model.Market, 0, len(markets))
	for _, m := range markets {
		if strings.Contains(strings.ToLower(m.Question), q) ||
			strings.Contains(strings.ToLower(m.Category), q) {
			out = append(out, m)
		}
	}
	return out
}

type keyed struct {
	key    decimal.Decimal
	market model.Market
}

func rank(markets []model.Market, field func(model.Market) string, keep func(decimal.Decimal) bool) []model.Market {
	pool := make([]keyed, 0, len(markets))
	for _, m := range markets {
		k := numeric(field(m))
		if keep(k) {
			pool = append(pool, keyed{key: k, market: m})
		}
	}

	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].key.GreaterThan(pool[j].key)
	})

	if len(pool) > Limit {
		pool = pool[:Limit]
	}
	out := make([]model.Market, len(pool))
	for i, p := range pool {
		out[i] = p.market
	}
	return out
}

// numeric parses a decimal string; unparseable text counts as zero.
func numeric(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func isPositive(d decimal.Decimal) bool { return d.IsPositive() }

func isNonZero(d decimal.Decimal) bool { return !d.IsZero() }
