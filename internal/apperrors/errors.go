package apperrors

import "errors"

// Request validation errors represent query parameters that cannot be used
// to build an upstream request. Handlers map these to 400 Bad Request.
var (
	// ErrInvalidAmount indicates that the amount parameter is not a finite number.
	ErrInvalidAmount = errors.New("invalid amount format")

	// ErrNonPositiveAmount indicates that the amount parameter is zero or negative.
	ErrNonPositiveAmount = errors.New("amount must be positive")

	// ErrInvalidDays indicates that the days parameter is not an integer.
	ErrInvalidDays = errors.New("invalid days format")

	// ErrNonPositiveDays indicates that the days parameter is zero or negative.
	ErrNonPositiveDays = errors.New("days must be a positive integer")
)

// Lookup errors represent requests that reached the provider but produced nothing usable.
var (
	// ErrNoHistoricalData indicates that no day in the requested window carried
	// a rate for the target currency.
	ErrNoHistoricalData = errors.New("no historical data available")
)

// Operation failure errors represent failures talking to the exchange-rate provider.
var (
	// ErrUpstream wraps any transport failure: network errors, non-2xx
	// statuses and bodies that are not valid JSON.
	ErrUpstream = errors.New("exchange rate provider request failed")
)
