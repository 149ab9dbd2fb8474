package service_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/Currency-Exchange-Backend/internal/apperrors"
	"github.com/ndewijer/Currency-Exchange-Backend/internal/exchangerate"
	"github.com/ndewijer/Currency-Exchange-Backend/internal/model"
	"github.com/ndewijer/Currency-Exchange-Backend/internal/service"
	"github.com/ndewijer/Currency-Exchange-Backend/internal/testutil"
)

// fixedNow is the clock used by every test in this file.
var fixedNow = time.Date(2026, time.October, 19, 14, 30, 0, 500_000_000, time.UTC)

func newTestExchangeService(client exchangerate.Client) *service.ExchangeService {
	return service.NewExchangeService(client, service.WithClock(func() time.Time { return fixedNow }))
}

// TestExchangeService_GetRates tests the GetRates method.
//
// WHY: Rate lookups either normalize the provider payload into a snapshot or
// hand it back untouched. Both branches are visible to the frontend.
func TestExchangeService_GetRates(t *testing.T) {
	t.Run("normalizes a successful payload", func(t *testing.T) {
		// Setup
		rates := map[string]float64{"EUR": 0.92, "GBP": 0.79}
		client := testutil.NewMockExchangeClient(t)
		client.LatestPayload = testutil.NewLatestPayload(t, "USD", rates)
		svc := newTestExchangeService(client)

		// Execute
		result, err := svc.GetRates(context.Background(), "USD")

		// Assert
		require.NoError(t, err)
		require.True(t, result.Normalized())
		assert.Equal(t, "USD", result.Value.Base)
		assert.JSONEq(t, `{"EUR":0.92,"GBP":0.79}`, mustJSON(t, result.Value.Rates))
		assert.Equal(t, model.EpochSeconds(fixedNow), result.Value.Timestamp)
		assert.Equal(t, []testutil.Call{{Endpoint: exchangerate.EndpointLatest, Args: []string{"USD"}}}, client.Calls())
	})

	t.Run("base comes from the request, not the payload", func(t *testing.T) {
		client := testutil.NewMockExchangeClient(t)
		client.LatestPayload = testutil.NewLatestPayload(t, "EUR", map[string]float64{"USD": 1.08})
		svc := newTestExchangeService(client)

		result, err := svc.GetRates(context.Background(), "eur")

		require.NoError(t, err)
		assert.Equal(t, "eur", result.Value.Base)
	})

	t.Run("keeps rate entries the provider sent as non-numbers", func(t *testing.T) {
		client := testutil.NewMockExchangeClient(t)
		client.LatestPayload = testutil.NewPayload(t, map[string]any{
			"result":           "success",
			"conversion_rates": map[string]any{"EUR": 0.9, "XDR": "n/a"},
		})
		svc := newTestExchangeService(client)

		result, err := svc.GetRates(context.Background(), "USD")

		require.NoError(t, err)
		require.True(t, result.Normalized())
		assert.JSONEq(t, `{"EUR":0.9,"XDR":"n/a"}`, mustJSON(t, result.Value.Rates))
	})

	t.Run("passes through when conversion_rates is not an object", func(t *testing.T) {
		client := testutil.NewMockExchangeClient(t)
		client.LatestPayload = testutil.NewPayload(t, map[string]any{
			"result":           "success",
			"conversion_rates": "unavailable",
		})
		svc := newTestExchangeService(client)

		result, err := svc.GetRates(context.Background(), "USD")

		require.NoError(t, err)
		assert.False(t, result.Normalized())
	})

	t.Run("passes through a payload without the success marker", func(t *testing.T) {
		client := testutil.NewMockExchangeClient(t)
		client.LatestPayload = testutil.NewPayload(t, map[string]any{
			"result":     "error",
			"error-type": "unsupported-code",
		})
		svc := newTestExchangeService(client)

		result, err := svc.GetRates(context.Background(), "XXX")

		require.NoError(t, err)
		assert.False(t, result.Normalized())
		body, err := json.Marshal(result.Body())
		require.NoError(t, err)
		assert.JSONEq(t, `{"result":"error","error-type":"unsupported-code"}`, string(body))
	})

	t.Run("passes through a successful payload using the old rates field", func(t *testing.T) {
		client := testutil.NewMockExchangeClient(t)
		client.LatestPayload = testutil.NewHistoricalPayload(t, exchangerate.FieldRates, map[string]float64{"EUR": 0.9})
		svc := newTestExchangeService(client)

		result, err := svc.GetRates(context.Background(), "USD")

		require.NoError(t, err)
		assert.False(t, result.Normalized())
	})

	t.Run("wraps transport failures", func(t *testing.T) {
		client := testutil.NewMockExchangeClient(t).WithError(testutil.ErrMockTransport)
		svc := newTestExchangeService(client)

		_, err := svc.GetRates(context.Background(), "USD")

		assert.ErrorIs(t, err, apperrors.ErrUpstream)
		assert.ErrorIs(t, err, testutil.ErrMockTransport)
	})
}

// TestExchangeService_Convert tests the Convert method.
//
// WHY: The conversion result is rebuilt from request parameters plus two
// provider fields, which must default to zero rather than fail.
func TestExchangeService_Convert(t *testing.T) {
	params := model.ConvertParams{From: "USD", To: "EUR", Amount: 25}

	t.Run("normalizes a successful payload", func(t *testing.T) {
		client := testutil.NewMockExchangeClient(t)
		client.PairPayload = testutil.NewPairPayload(t, 0.5, 12.5)
		svc := newTestExchangeService(client)

		result, err := svc.Convert(context.Background(), params)

		require.NoError(t, err)
		assert.Equal(t, &model.ConversionResult{
			Base:             "USD",
			Target:           "EUR",
			Amount:           25,
			ConversionRate:   0.5,
			ConversionResult: 12.5,
			Timestamp:        model.EpochSeconds(fixedNow),
		}, result.Value)
		assert.Equal(t, []string{"USD", "EUR", "25"}, client.Calls()[0].Args)
	})

	t.Run("defaults missing rate fields to zero", func(t *testing.T) {
		client := testutil.NewMockExchangeClient(t)
		client.PairPayload = testutil.NewPayload(t, map[string]any{"result": "success"})
		svc := newTestExchangeService(client)

		result, err := svc.Convert(context.Background(), params)

		require.NoError(t, err)
		require.True(t, result.Normalized())
		assert.Zero(t, result.Value.ConversionRate)
		assert.Zero(t, result.Value.ConversionResult)
	})

	t.Run("passes through an unsuccessful payload", func(t *testing.T) {
		client := testutil.NewMockExchangeClient(t)
		client.PairPayload = testutil.NewPayload(t, map[string]any{"result": "error", "error-type": "malformed-request"})
		svc := newTestExchangeService(client)

		result, err := svc.Convert(context.Background(), params)

		require.NoError(t, err)
		assert.False(t, result.Normalized())
		assert.Equal(t, client.PairPayload, result.Body())
	})

	t.Run("wraps transport failures", func(t *testing.T) {
		client := testutil.NewMockExchangeClient(t).WithError(testutil.ErrMockTransport)
		svc := newTestExchangeService(client)

		_, err := svc.Convert(context.Background(), params)

		assert.ErrorIs(t, err, apperrors.ErrUpstream)
	})
}

// TestExchangeService_GetHistory tests the GetHistory method.
//
// WHY: History is the only operation with more than one provider call. It
// tolerates days without data but must abort on any transport failure.
func TestExchangeService_GetHistory(t *testing.T) {
	params := model.HistoryParams{Base: "USD", Target: "EUR", Days: 7}

	t.Run("walks back from today, newest first", func(t *testing.T) {
		client := testutil.NewMockExchangeClient(t)
		client.HistoricalFunc = func(date, _ string) (exchangerate.Payload, error) {
			return testutil.NewHistoricalPayload(t, exchangerate.FieldConversionRates,
				map[string]float64{"EUR": float64(len(date))}), nil
		}
		svc := newTestExchangeService(client)

		points, err := svc.GetHistory(context.Background(), params)

		require.NoError(t, err)
		require.Len(t, points, 7)
		wantDates := []string{
			"2026-10-19", "2026-10-18", "2026-10-17", "2026-10-16",
			"2026-10-15", "2026-10-14", "2026-10-13",
		}
		for i, p := range points {
			assert.Equal(t, wantDates[i], p.Date)
		}

		calls := client.Calls()
		require.Len(t, calls, 7)
		for i, c := range calls {
			assert.Equal(t, exchangerate.EndpointHistorical, c.Endpoint)
			assert.Equal(t, []string{wantDates[i], "USD"}, c.Args)
		}
	})

	t.Run("accepts both rate table names", func(t *testing.T) {
		client := testutil.NewMockExchangeClient(t)
		client.HistoricalFunc = func(date, _ string) (exchangerate.Payload, error) {
			if date == "2026-10-19" {
				return testutil.NewHistoricalPayload(t, exchangerate.FieldConversionRates, map[string]float64{"EUR": 0.91}), nil
			}
			return testutil.NewHistoricalPayload(t, exchangerate.FieldRates, map[string]float64{"EUR": 0.9}), nil
		}
		svc := newTestExchangeService(client)

		points, err := svc.GetHistory(context.Background(), model.HistoryParams{Base: "USD", Target: "EUR", Days: 2})

		require.NoError(t, err)
		assert.Equal(t, []model.HistoryPoint{
			{Date: "2026-10-19", Rate: 0.91},
			{Date: "2026-10-18", Rate: 0.9},
		}, points)
	})

	t.Run("a non-numeric entry for another currency does not skip the day", func(t *testing.T) {
		client := testutil.NewMockExchangeClient(t)
		client.HistoricalFunc = func(_, _ string) (exchangerate.Payload, error) {
			return testutil.NewPayload(t, map[string]any{
				"result":           "success",
				"conversion_rates": map[string]any{"EUR": 0.9, "XDR": "n/a"},
			}), nil
		}
		svc := newTestExchangeService(client)

		points, err := svc.GetHistory(context.Background(), model.HistoryParams{Base: "USD", Target: "EUR", Days: 2})

		require.NoError(t, err)
		assert.Equal(t, []model.HistoryPoint{
			{Date: "2026-10-19", Rate: 0.9},
			{Date: "2026-10-18", Rate: 0.9},
		}, points)
	})

	t.Run("falls back to rates when conversion_rates lacks the target", func(t *testing.T) {
		client := testutil.NewMockExchangeClient(t)
		client.HistoricalFunc = func(_, _ string) (exchangerate.Payload, error) {
			return testutil.NewPayload(t, map[string]any{
				"result":           "success",
				"conversion_rates": map[string]float64{"GBP": 0.8},
				"rates":            map[string]float64{"EUR": 0.93},
			}), nil
		}
		svc := newTestExchangeService(client)

		points, err := svc.GetHistory(context.Background(), model.HistoryParams{Base: "USD", Target: "EUR", Days: 1})

		require.NoError(t, err)
		assert.Equal(t, []model.HistoryPoint{{Date: "2026-10-19", Rate: 0.93}}, points)
	})

	t.Run("skips days without the target currency or success marker", func(t *testing.T) {
		client := testutil.NewMockExchangeClient(t)
		client.HistoricalFunc = func(date, _ string) (exchangerate.Payload, error) {
			switch date {
			case "2026-10-18":
				return testutil.NewHistoricalPayload(t, exchangerate.FieldConversionRates, map[string]float64{"GBP": 0.8}), nil
			case "2026-10-17":
				return testutil.NewPayload(t, map[string]any{
					"result":           "error",
					"conversion_rates": map[string]float64{"EUR": 0.5},
				}), nil
			default:
				return testutil.NewHistoricalPayload(t, exchangerate.FieldConversionRates, map[string]float64{"EUR": 0.9}), nil
			}
		}
		svc := newTestExchangeService(client)

		points, err := svc.GetHistory(context.Background(), model.HistoryParams{Base: "USD", Target: "EUR", Days: 4})

		require.NoError(t, err)
		assert.Equal(t, []model.HistoryPoint{
			{Date: "2026-10-19", Rate: 0.9},
			{Date: "2026-10-16", Rate: 0.9},
		}, points)
	})

	t.Run("returns ErrNoHistoricalData when no day has the target", func(t *testing.T) {
		client := testutil.NewMockExchangeClient(t)
		client.HistoricalFunc = func(_, _ string) (exchangerate.Payload, error) {
			return testutil.NewHistoricalPayload(t, exchangerate.FieldConversionRates, map[string]float64{"GBP": 0.8}), nil
		}
		svc := newTestExchangeService(client)

		points, err := svc.GetHistory(context.Background(), params)

		assert.ErrorIs(t, err, apperrors.ErrNoHistoricalData)
		assert.Nil(t, points)
		assert.Len(t, client.Calls(), 7)
	})

	t.Run("aborts on the first transport failure", func(t *testing.T) {
		client := testutil.NewMockExchangeClient(t)
		client.HistoricalFunc = func(date, _ string) (exchangerate.Payload, error) {
			if date == "2026-10-17" {
				return exchangerate.Payload{}, testutil.ErrMockTransport
			}
			return testutil.NewHistoricalPayload(t, exchangerate.FieldConversionRates, map[string]float64{"EUR": 0.9}), nil
		}
		svc := newTestExchangeService(client)

		points, err := svc.GetHistory(context.Background(), params)

		assert.ErrorIs(t, err, apperrors.ErrUpstream)
		assert.ErrorIs(t, err, testutil.ErrMockTransport)
		assert.Nil(t, points, "no partial data on failure")
		assert.Len(t, client.Calls(), 3, "no calls after the failing day")
	})

	t.Run("uses the local calendar day of the clock", func(t *testing.T) {
		loc := time.FixedZone("UTC+10", 10*60*60)
		lateEvening := time.Date(2026, time.October, 19, 23, 30, 0, 0, loc)
		client := testutil.NewMockExchangeClient(t)
		client.HistoricalFunc = func(_, _ string) (exchangerate.Payload, error) {
			return testutil.NewHistoricalPayload(t, exchangerate.FieldConversionRates, map[string]float64{"EUR": 1}), nil
		}
		svc := service.NewExchangeService(client, service.WithClock(func() time.Time { return lateEvening }))

		points, err := svc.GetHistory(context.Background(), model.HistoryParams{Base: "USD", Target: "EUR", Days: 1})

		require.NoError(t, err)
		assert.Equal(t, "2026-10-19", points[0].Date)
	})
}

func TestLookup_Body(t *testing.T) {
	snapshot := &model.RateSnapshot{Base: "USD"}
	assert.Same(t, snapshot, service.Lookup[model.RateSnapshot]{Value: snapshot}.Body())

	payload := exchangerate.Payload{Raw: json.RawMessage(`{}`)}
	assert.Equal(t, payload, service.Lookup[model.RateSnapshot]{Passthrough: payload}.Body())
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}
