package polymarket

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Checker-Finance/market-radar/internal/metrics"
	"github.com/Checker-Finance/market-radar/pkg/model"
)

// Normalizer maps raw Gamma records onto model.Market.
type Normalizer struct {
	logger *zap.Logger
}

func NewNormalizer(logger *zap.Logger) *Normalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Normalizer{logger: logger}
}

// Normalize returns one Market per record, in input order.
func (n *Normalizer) Normalize(records []RawMarket) []model.Market {
	out := make([]model.Market, 0, len(records))
	for _, r := range records {
		out = append(out, NormalizeOne(r))
	}
	metrics.AddNormalized(len(out))
	return out
}

// NormalizePayload decodes a response body. A JSON array is normalized;
// any other JSON value is returned verbatim in Batch.Passthrough.
func (n *Normalizer) NormalizePayload(body []byte) (Batch, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return Batch{}, &MalformedPayloadError{Err: err}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Batch{}, &MalformedPayloadError{Err: errors.New("trailing data after JSON value")}
	}

	items, ok := v.([]any)
	if !ok {
		n.logger.Warn("gamma.non_array_payload", zap.Int("bytes", len(body)))
		return Batch{Passthrough: json.RawMessage(bytes.TrimSpace(body))}, nil
	}

	records := make([]RawMarket, 0, len(items))
	for _, item := range items {
		// non-object entries still yield a (default) market
		obj, _ := item.(map[string]any)
		records = append(records, RawMarket(obj))
	}
	return Batch{Markets: n.Normalize(records)}, nil
}

// NormalizeOne maps a single raw record.
func NormalizeOne(raw RawMarket) model.Market {
	m := model.Market{
		ID:          text(raw["id"]),
		Question:    text(raw["question"]),
		ConditionID: text(raw["conditionId"]),
		Slug:        text(raw["slug"]),
		EndDate:     text(raw["endDate"]),
		Category:    Classify(raw),

		Volume:     merge(raw, "volume"),
		Volume24hr: merge(raw, "volume24hr"),
		Volume1wk:  merge(raw, "volume1wk"),
		Volume1mo:  merge(raw, "volume1mo"),
		Volume1yr:  optional(raw["volume1yr"]),
		Liquidity:  merge(raw, "liquidity"),

		MarketType: optional(raw["marketType"]),
		Outcomes:   text(raw["outcomes"]),
		Closed:     flag(raw["closed"]),

		OneDayPriceChange:   orZero(raw["oneDayPriceChange"]),
		OneWeekPriceChange:  orZero(raw["oneWeekPriceChange"]),
		OneMonthPriceChange: optional(raw["oneMonthPriceChange"]),
		LastTradePrice:      orZero(raw["lastTradePrice"]),
		BestBid:             optional(raw["bestBid"]),
		BestAsk:             optional(raw["bestAsk"]),

		Tokens: optional(raw["tokens"]),

		Description: text(raw["description"]),
		Icon:        text(raw["icon"]),
		Image:       text(raw["image"]),
	}

	if m.MarketType == "" {
		m.MarketType = model.DefaultMarketType
	}

	return m
}

// merge sums the <field>Amm and <field>Clob components. When neither is
// present the combined field is taken as is, so a normalized record maps
// onto itself.
func merge(raw RawMarket, field string) string {
	amm, clob := raw[field+"Amm"], raw[field+"Clob"]
	var sum decimal.Decimal
	if !present(amm) && !present(clob) {
		sum = amount(raw[field])
	} else {
		sum = amount(amm).Add(amount(clob))
	}
	return sum.String()
}

// optional keeps a field only when the upstream value is truthy.
func optional(v any) string {
	if !truthy(v) {
		return ""
	}
	return text(v)
}

// orZero is optional with a "0" default.
func orZero(v any) string {
	if s := optional(v); s != "" {
		return s
	}
	return model.ZeroAmount
}
