package service

import (
	"context"
	"fmt"
	"time"

	"github.com/ndewijer/Currency-Exchange-Backend/internal/apperrors"
	"github.com/ndewijer/Currency-Exchange-Backend/internal/exchangerate"
	"github.com/ndewijer/Currency-Exchange-Backend/internal/model"
)

// dateLayout is the provider's date format for historical lookups.
const dateLayout = "2006-01-02"

// Lookup is the outcome of a provider call that may or may not match the
// expected schema. Exactly one of Value and Passthrough is meaningful:
// Value is set when the payload could be normalized, otherwise the
// provider's payload is returned unchanged in Passthrough.
type Lookup[T any] struct {
	Value       *T
	Passthrough exchangerate.Payload
}

// Normalized reports whether the provider response matched the expected schema.
func (l Lookup[T]) Normalized() bool {
	return l.Value != nil
}

// Body is what should be written to the caller.
func (l Lookup[T]) Body() any {
	if l.Value != nil {
		return l.Value
	}
	return l.Passthrough
}

// ExchangeService reshapes provider responses for the HTTP layer.
// It holds no state between calls.
type ExchangeService struct {
	client exchangerate.Client
	now    func() time.Time
}

// ExchangeServiceOption configures an ExchangeService.
type ExchangeServiceOption func(*ExchangeService)

// WithClock replaces time.Now, which stamps snapshots and anchors history windows.
func WithClock(now func() time.Time) ExchangeServiceOption {
	return func(s *ExchangeService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewExchangeService creates a new ExchangeService backed by client.
func NewExchangeService(client exchangerate.Client, opts ...ExchangeServiceOption) *ExchangeService {
	s := &ExchangeService{
		client: client,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetRates fetches the latest rates for base.
//
// When the provider marks the lookup successful and includes a
// conversion_rates object, the result is a RateSnapshot stamped with the
// current time. Any other payload is passed through.
//
// Returns an error wrapping apperrors.ErrUpstream on transport failure.
func (s *ExchangeService) GetRates(ctx context.Context, base string) (Lookup[model.RateSnapshot], error) {
	payload, err := s.client.Latest(ctx, base)
	if err != nil {
		return Lookup[model.RateSnapshot]{}, fmt.Errorf("%w: %w", apperrors.ErrUpstream, err)
	}

	if !payload.Success() {
		return Lookup[model.RateSnapshot]{Passthrough: payload}, nil
	}
	rates, ok := payload.RateTable(exchangerate.FieldConversionRates)
	if !ok {
		return Lookup[model.RateSnapshot]{Passthrough: payload}, nil
	}

	return Lookup[model.RateSnapshot]{
		Value: &model.RateSnapshot{
			Base:      base,
			Rates:     rates,
			Timestamp: model.EpochSeconds(s.now()),
		},
	}, nil
}

// Convert asks the provider to convert params.Amount from params.From to params.To.
//
// A successful payload becomes a ConversionResult; a missing or non-numeric
// conversion_rate or conversion_result is reported as 0. Any other payload
// is passed through. params must already be validated.
//
// Returns an error wrapping apperrors.ErrUpstream on transport failure.
func (s *ExchangeService) Convert(ctx context.Context, params model.ConvertParams) (Lookup[model.ConversionResult], error) {
	payload, err := s.client.Pair(ctx, params.From, params.To, params.Amount)
	if err != nil {
		return Lookup[model.ConversionResult]{}, fmt.Errorf("%w: %w", apperrors.ErrUpstream, err)
	}

	if !payload.Success() {
		return Lookup[model.ConversionResult]{Passthrough: payload}, nil
	}

	return Lookup[model.ConversionResult]{
		Value: &model.ConversionResult{
			Base:             params.From,
			Target:           params.To,
			Amount:           params.Amount,
			ConversionRate:   payload.Float(exchangerate.FieldConversionRate),
			ConversionResult: payload.Float(exchangerate.FieldConversionResult),
			Timestamp:        model.EpochSeconds(s.now()),
		},
	}, nil
}

// GetHistory builds a daily rate series for params.Target against params.Base,
// starting today and walking back params.Days days, one provider call per day.
//
// Days whose payload is unsuccessful or lacks the target currency are
// skipped. A transport failure on any day aborts the whole series; calls
// for later days are not made.
//
// Returns:
//   - []model.HistoryPoint: Most recent day first
//   - error: apperrors.ErrUpstream (wrapped) on transport failure,
//     apperrors.ErrNoHistoricalData when no day produced a rate
func (s *ExchangeService) GetHistory(ctx context.Context, params model.HistoryParams) ([]model.HistoryPoint, error) {
	today := s.now()
	points := make([]model.HistoryPoint, 0, params.Days)

	for i := 0; i < params.Days; i++ {
		date := today.AddDate(0, 0, -i).Format(dateLayout)

		payload, err := s.client.Historical(ctx, date, params.Base)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", apperrors.ErrUpstream, date, err)
		}

		if rate, ok := historicalRate(payload, params.Target); ok {
			points = append(points, model.HistoryPoint{Date: date, Rate: rate})
		}
	}

	if len(points) == 0 {
		return nil, apperrors.ErrNoHistoricalData
	}
	return points, nil
}

// historicalRate finds target in a successful historical payload.
// The v6 conversion_rates table is preferred; the older rates table is used
// when the first one is absent or has no numeric rate for target.
func historicalRate(payload exchangerate.Payload, target string) (float64, bool) {
	if !payload.Success() {
		return 0, false
	}
	for _, key := range []string{exchangerate.FieldConversionRates, exchangerate.FieldRates} {
		if rate, ok := payload.Rate(key, target); ok {
			return rate, true
		}
	}
	return 0, false
}
