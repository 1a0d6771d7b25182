package model

// Market is the canonical, normalized view of one prediction market.
//
// Numeric fields are decimal strings ("1234.5"), never floats, so values
// cross the JSON boundary byte-for-byte. Optional fields are empty when the
// upstream record did not carry them and are omitted from JSON.
//
// A Market is a value: it is built once by the normalizer and never mutated.
type Market struct {
	ID          string `json:"id"`
	Question    string `json:"question"`
	ConditionID string `json:"conditionId"`
	Slug        string `json:"slug"`
	EndDate     string `json:"endDate"`
	Category    string `json:"category"`

	// Aggregates, each the sum of an AMM and a CLOB component.
	Volume     string `json:"volume"`
	Volume24hr string `json:"volume24hr"`
	Volume1wk  string `json:"volume1wk"`
	Volume1mo  string `json:"volume1mo"`
	Volume1yr  string `json:"volume1yr,omitempty"`
	Liquidity  string `json:"liquidity"`

	MarketType string `json:"marketType"`
	Outcomes   string `json:"outcomes"`
	Closed     bool   `json:"closed"`

	OneDayPriceChange   string `json:"oneDayPriceChange"`
	OneWeekPriceChange  string `json:"oneWeekPriceChange"`
	OneMonthPriceChange string `json:"oneMonthPriceChange,omitempty"`
	LastTradePrice      string `json:"lastTradePrice"`
	BestBid             string `json:"bestBid,omitempty"`
	BestAsk             string `json:"bestAsk,omitempty"`

	// Tokens is an opaque blob of CLOB token ids.
	Tokens string `json:"tokens"`

	Description string `json:"description,omitempty"`
	Icon        string `json:"icon,omitempty"`
	Image       string `json:"image,omitempty"`
}

// Default values applied by the normalizer.
const (
	DefaultCategory   = "General"
	DefaultMarketType = "binary"
	ZeroAmount        = "0"
)
