package testutil

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/ndewijer/Currency-Exchange-Backend/internal/exchangerate"
)

// ErrMockTransport stands in for a network failure in tests.
var ErrMockTransport = errors.New("mock transport failure")

// Call records one invocation of the mock client.
type Call struct {
	Endpoint string
	Args     []string
}

// MockExchangeClient is a mock implementation of exchangerate.Client for testing.
// It returns predefined payloads instead of making actual API calls.
type MockExchangeClient struct {
	mu sync.Mutex

	// LatestPayload is returned from Latest.
	LatestPayload exchangerate.Payload
	// PairPayload is returned from Pair.
	PairPayload exchangerate.Payload
	// HistoricalFunc answers Historical; when nil an empty success payload is returned.
	HistoricalFunc func(date, base string) (exchangerate.Payload, error)
	// MockError is returned from Latest and Pair when set.
	MockError error

	calls []Call
}

// NewMockExchangeClient creates a mock whose lookups succeed with USD based rates.
func NewMockExchangeClient(t *testing.T) *MockExchangeClient {
	t.Helper()
	return &MockExchangeClient{
		LatestPayload: NewLatestPayload(t, "USD", map[string]float64{"EUR": 0.92, "GBP": 0.79, "JPY": 151.3}),
		PairPayload:   NewPairPayload(t, 0.92, 0.92),
	}
}

// WithError configures the mock to fail Latest and Pair with err.
func (m *MockExchangeClient) WithError(err error) *MockExchangeClient {
	m.MockError = err
	return m
}

// Latest returns LatestPayload.
func (m *MockExchangeClient) Latest(_ context.Context, base string) (exchangerate.Payload, error) {
	m.record(exchangerate.EndpointLatest, base)
	if m.MockError != nil {
		return exchangerate.Payload{}, m.MockError
	}
	return m.LatestPayload, nil
}

// Pair returns PairPayload.
func (m *MockExchangeClient) Pair(_ context.Context, from, to string, amount float64) (exchangerate.Payload, error) {
	m.record(exchangerate.EndpointPair, from, to, exchangerate.FormatAmount(amount))
	if m.MockError != nil {
		return exchangerate.Payload{}, m.MockError
	}
	return m.PairPayload, nil
}

// Historical delegates to HistoricalFunc.
func (m *MockExchangeClient) Historical(_ context.Context, date, base string) (exchangerate.Payload, error) {
	m.record(exchangerate.EndpointHistorical, date, base)
	if m.HistoricalFunc == nil {
		return exchangerate.ParsePayload([]byte(`{"result":"success","conversion_rates":{}}`))
	}
	return m.HistoricalFunc(date, base)
}

// Calls returns a copy of the recorded invocations.
func (m *MockExchangeClient) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

func (m *MockExchangeClient) record(endpoint string, args ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{Endpoint: endpoint, Args: args})
}

// NewPayload marshals v and parses it the way the provider client would.
func NewPayload(t *testing.T, v any) exchangerate.Payload {
	t.Helper()
	body, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	p, err := exchangerate.ParsePayload(body)
	if err != nil {
		t.Fatalf("parse payload: %v", err)
	}
	return p
}

// NewLatestPayload creates a successful v6 latest-rates payload.
func NewLatestPayload(t *testing.T, base string, rates map[string]float64) exchangerate.Payload {
	t.Helper()
	return NewPayload(t, map[string]any{
		"result":           "success",
		"base_code":        base,
		"conversion_rates": rates,
	})
}

// NewPairPayload creates a successful v6 pair-conversion payload.
func NewPairPayload(t *testing.T, rate, result float64) exchangerate.Payload {
	t.Helper()
	return NewPayload(t, map[string]any{
		"result":            "success",
		"conversion_rate":   rate,
		"conversion_result": result,
	})
}

// NewHistoricalPayload creates a successful historical payload with the rates
// stored under key (conversion_rates or rates).
func NewHistoricalPayload(t *testing.T, key string, rates map[string]float64) exchangerate.Payload {
	t.Helper()
	return NewPayload(t, map[string]any{
		"result": "success",
		key:      rates,
	})
}
