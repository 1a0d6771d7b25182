package polymarket

import (
	"encoding/json"
	"fmt"

	"github.com/Checker-Finance/market-radar/pkg/model"
)

// RawMarket is one upstream market record before normalization. The Gamma
// API has no closed schema, so fields are read with explicit presence and
// type checks. Numbers are json.Number when decoded by this package.
type RawMarket map[string]any

// Batch is the outcome of normalizing one response body. Exactly one of
// Markets or Passthrough is set: a JSON array yields Markets, anything else
// (typically an error object sent with a 2xx) is forwarded untouched.
type Batch struct {
	Markets     []model.Market
	Passthrough json.RawMessage
}

// IsMarkets reports whether the payload was a market array.
func (b Batch) IsMarkets() bool { return b.Passthrough == nil }

// FetchError is a non-2xx answer from the upstream API or the local
// markets endpoint.
type FetchError struct {
	Status  int
	Message string
	Body    string
}

func (e *FetchError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("HTTP error! status: %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("HTTP error! status: %d", e.Status)
}

// MalformedPayloadError is a 2xx response whose body is not valid JSON.
type MalformedPayloadError struct {
	Err error
}

func (e *MalformedPayloadError) Error() string {
	return fmt.Sprintf("malformed payload: %v", e.Err)
}

func (e *MalformedPayloadError) Unwrap() error { return e.Err }

// errorBody is the {"error": "..."} shape used by the local endpoint and
// by Gamma for rejected requests.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// NewFetchError builds a FetchError, lifting the message out of a JSON
// error body when there is one.
func NewFetchError(status int, body []byte) *FetchError {
	fe := &FetchError{Status: status, Body: string(body)}
	var eb errorBody
	if json.Unmarshal(body, &eb) == nil {
		fe.Message = eb.Error
		if fe.Message == "" {
			fe.Message = eb.Message
		}
	}
	return fe
}
