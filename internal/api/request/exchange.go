package request

import (
	"errors"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/ndewijer/Currency-Exchange-Backend/internal/apperrors"
	"github.com/ndewijer/Currency-Exchange-Backend/internal/model"
)

// Query parameter defaults and limits.
const (
	DefaultBase        = "USD"
	DefaultTarget      = "EUR"
	DefaultAmount      = 1.0
	DefaultHistoryDays = 7
	MaxHistoryDays     = 30
)

// ParseBase returns the base currency, defaulting to USD.
// Currency codes are not validated; the provider decides what it accepts.
func ParseBase(baseParam string) string {
	return withDefault(baseParam, DefaultBase)
}

// ParseConvertParams extracts the from/to/amount parameters of a conversion.
//
// Validation rules:
//   - from defaults to USD, to defaults to EUR
//   - amount defaults to 1 only when omitted; a present amount must parse
//     as a finite decimal number, so an empty value is rejected
//   - amount must be greater than zero
//
// Returns apperrors.ErrInvalidAmount or apperrors.ErrNonPositiveAmount.
func ParseConvertParams(query url.Values) (model.ConvertParams, error) {
	params := model.ConvertParams{
		From:   withDefault(query.Get("from"), DefaultBase),
		To:     withDefault(query.Get("to"), DefaultTarget),
		Amount: DefaultAmount,
	}

	if query.Has("amount") {
		amount, err := parseAmount(query.Get("amount"))
		if err != nil {
			return model.ConvertParams{}, err
		}
		params.Amount = amount
	}

	if params.Amount <= 0 {
		return model.ConvertParams{}, apperrors.ErrNonPositiveAmount
	}

	return params, nil
}

// ParseHistoryParams extracts the base/target/days parameters of a history lookup.
//
// Validation rules:
//   - base defaults to USD, target defaults to EUR
//   - days defaults to 7 only when omitted; a present value must be an integer
//   - days must be at least 1; values above 30, however large, are clamped to 30
//
// Returns apperrors.ErrInvalidDays or apperrors.ErrNonPositiveDays.
func ParseHistoryParams(query url.Values) (model.HistoryParams, error) {
	params := model.HistoryParams{
		Base:   withDefault(query.Get("base"), DefaultBase),
		Target: withDefault(query.Get("target"), DefaultTarget),
		Days:   DefaultHistoryDays,
	}

	if query.Has("days") {
		days, err := parseDays(query.Get("days"))
		if err != nil {
			return model.HistoryParams{}, err
		}
		params.Days = days
	}

	if params.Days < 1 {
		return model.HistoryParams{}, apperrors.ErrNonPositiveDays
	}
	if params.Days > MaxHistoryDays {
		params.Days = MaxHistoryDays
	}

	return params, nil
}

// parseAmount accepts decimal notation with an optional exponent. Hex floats,
// NaN and infinities are rejected.
func parseAmount(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	digits := strings.ToLower(strings.TrimLeft(raw, "+-"))
	if strings.HasPrefix(digits, "0x") {
		return 0, apperrors.ErrInvalidAmount
	}

	amount, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, apperrors.ErrInvalidAmount
	}
	return amount, nil
}

// parseDays parses an integer day count. Integers too large for an int are
// still integers: positive ones saturate so they clamp, negative ones are
// reported as non-positive.
func parseDays(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	days, err := strconv.Atoi(raw)
	if err == nil {
		return days, nil
	}
	if errors.Is(err, strconv.ErrRange) {
		if strings.HasPrefix(raw, "-") {
			return 0, apperrors.ErrNonPositiveDays
		}
		return MaxHistoryDays, nil
	}
	return 0, apperrors.ErrInvalidDays
}

func withDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
