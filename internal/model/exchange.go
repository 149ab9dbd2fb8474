package model

import (
	"encoding/json"
	"time"
)

// RateSnapshot is the normalized latest-rates response.
// Rates holds the provider's entries as sent.
type RateSnapshot struct {
	Base      string                     `json:"base"`
	Rates     map[string]json.RawMessage `json:"rates"`
	Timestamp float64                    `json:"timestamp"`
}

// ConversionResult is the normalized pair-conversion response.
type ConversionResult struct {
	Base             string  `json:"base"`
	Target           string  `json:"target"`
	Amount           float64 `json:"amount"`
	ConversionRate   float64 `json:"conversion_rate"`
	ConversionResult float64 `json:"conversion_result"`
	Timestamp        float64 `json:"timestamp"`
}

// HistoryPoint is one day of a historical rate series.
type HistoryPoint struct {
	Date string  `json:"date"`
	Rate float64 `json:"rate"`
}

// ConvertParams are the validated inputs of a conversion.
type ConvertParams struct {
	From   string
	To     string
	Amount float64
}

// HistoryParams are the validated inputs of a historical series lookup.
// Days is already clamped to the supported window.
type HistoryParams struct {
	Base   string
	Target string
	Days   int
}

// EpochSeconds renders t as fractional seconds since the Unix epoch.
func EpochSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}
