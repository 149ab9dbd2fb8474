package exchangerate

import (
	"encoding/json"
	"fmt"
)

// Field names used by the provider's v6 response format.
const (
	FieldResult           = "result"
	FieldConversionRates  = "conversion_rates"
	FieldRates            = "rates"
	FieldConversionRate   = "conversion_rate"
	FieldConversionResult = "conversion_result"

	// ResultSuccess is the value of the result field on successful lookups.
	ResultSuccess = "success"
)

// Payload is a decoded provider response.
//
// The provider's schema is not fully trusted: fields are kept as raw JSON and
// decoded on access, and Raw holds the exact body so callers can pass an
// unexpected shape through unchanged.
//
// Fields is nil when the body is valid JSON but not an object.
type Payload struct {
	Raw    json.RawMessage
	Fields map[string]json.RawMessage
}

// ParsePayload validates body as JSON and indexes its top-level fields.
func ParsePayload(body []byte) (Payload, error) {
	if !json.Valid(body) {
		return Payload{}, fmt.Errorf("decode response: invalid JSON body")
	}

	p := Payload{Raw: json.RawMessage(body)}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err == nil {
		p.Fields = fields
	}
	return p, nil
}

// MarshalJSON emits the body exactly as the provider sent it.
func (p Payload) MarshalJSON() ([]byte, error) {
	if len(p.Raw) == 0 {
		return []byte("null"), nil
	}
	return p.Raw, nil
}

// Success reports whether the provider marked the lookup as successful.
func (p Payload) Success() bool {
	raw, ok := p.Fields[FieldResult]
	if !ok {
		return false
	}
	var result string
	if err := json.Unmarshal(raw, &result); err != nil {
		return false
	}
	return result == ResultSuccess
}

// RateTable returns the currency code to rate object stored under key with
// its entries left undecoded, so one malformed rate does not hide the rest.
// The second return value is false when the field is missing or is not an object.
func (p Payload) RateTable(key string) (map[string]json.RawMessage, bool) {
	raw, ok := p.Fields[key]
	if !ok {
		return nil, false
	}
	var table map[string]json.RawMessage
	if err := json.Unmarshal(raw, &table); err != nil || table == nil {
		return nil, false
	}
	return table, true
}

// Rate looks up currency in the rate table stored under key.
// It reports false when the table or the entry is missing, or the entry is not a number.
func (p Payload) Rate(key, currency string) (float64, bool) {
	table, ok := p.RateTable(key)
	if !ok {
		return 0, false
	}
	raw, ok := table[currency]
	if !ok {
		return 0, false
	}
	var rate *float64
	if err := json.Unmarshal(raw, &rate); err != nil || rate == nil {
		return 0, false
	}
	return *rate, true
}

// Float decodes a numeric field, returning 0 when it is missing or not a number.
func (p Payload) Float(key string) float64 {
	raw, ok := p.Fields[key]
	if !ok {
		return 0
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0
	}
	return v
}
