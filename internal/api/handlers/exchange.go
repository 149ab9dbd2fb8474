package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/ndewijer/Currency-Exchange-Backend/internal/api/request"
	"github.com/ndewijer/Currency-Exchange-Backend/internal/api/response"
	"github.com/ndewijer/Currency-Exchange-Backend/internal/apperrors"
	"github.com/ndewijer/Currency-Exchange-Backend/internal/service"
)

// Error messages returned to callers.
const (
	msgRatesFailed      = "Unable to fetch exchange rates"
	msgConversionFailed = "Conversion failed"
	msgHistoryFailed    = "Failed to fetch historical data"
	msgInvalidAmount    = "Invalid amount format"
	msgAmountPositive   = "Amount must be positive"
	msgInvalidDays      = "Invalid days format"
	msgDaysPositive     = "Days must be a positive integer"
	msgNoHistory        = "No historical data available for the specified currencies"
)

// ExchangeHandler handles HTTP requests for the exchange-rate endpoints.
// It serves as the HTTP layer adapter, parsing query parameters and
// delegating provider calls to the exchangeService.
type ExchangeHandler struct {
	exchangeService *service.ExchangeService
	logger          *zap.Logger
}

// NewExchangeHandler creates a new ExchangeHandler with the provided service dependency.
func NewExchangeHandler(exchangeService *service.ExchangeService, logger *zap.Logger) *ExchangeHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExchangeHandler{
		exchangeService: exchangeService,
		logger:          logger,
	}
}

// Rates handles GET requests for the latest rates of a base currency.
//
// Endpoint: GET /api/rates
// Query parameters:
//   - base: Base currency code (default USD)
//
// Response: 200 OK with a RateSnapshot, or the provider payload unchanged
// when it does not match the expected shape
// Error: 500 Internal Server Error if the provider call fails
func (h *ExchangeHandler) Rates(w http.ResponseWriter, r *http.Request) {
	base := request.ParseBase(r.URL.Query().Get("base"))

	result, err := h.exchangeService.GetRates(r.Context(), base)
	if err != nil {
		h.respondUpstreamError(w, r, msgRatesFailed, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, result.Body())
}

// Convert handles GET requests to convert an amount between two currencies.
//
// Endpoint: GET /api/convert
// Query parameters:
//   - from: Source currency code (default USD)
//   - to: Target currency code (default EUR)
//   - amount: Positive decimal number (default 1 when omitted)
//
// Response: 200 OK with a ConversionResult, or the provider payload unchanged
// when it is not marked successful
// Error: 400 Bad Request if amount is not a number or not positive
// Error: 500 Internal Server Error if the provider call fails
func (h *ExchangeHandler) Convert(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	params, err := request.ParseConvertParams(q)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNonPositiveAmount):
			response.RespondError(w, http.StatusBadRequest, msgAmountPositive, nil)
		default:
			response.RespondError(w, http.StatusBadRequest, msgInvalidAmount, nil)
		}
		return
	}

	result, err := h.exchangeService.Convert(r.Context(), params)
	if err != nil {
		h.respondUpstreamError(w, r, msgConversionFailed, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, result.Body())
}

// History handles GET requests for a daily rate series of a currency pair.
//
// Endpoint: GET /api/history
// Query parameters:
//   - base: Base currency code (default USD)
//   - target: Target currency code (default EUR)
//   - days: Number of days, newest first (default 7 when omitted, capped at 30)
//
// Response: 200 OK with an array of {date, rate}
// Error: 400 Bad Request if days is not a positive integer
// Error: 404 Not Found if no day had a rate for the target currency
// Error: 500 Internal Server Error if any provider call fails
func (h *ExchangeHandler) History(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	params, err := request.ParseHistoryParams(q)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNonPositiveDays):
			response.RespondError(w, http.StatusBadRequest, msgDaysPositive, nil)
		default:
			response.RespondError(w, http.StatusBadRequest, msgInvalidDays, nil)
		}
		return
	}

	points, err := h.exchangeService.GetHistory(r.Context(), params)
	if err != nil {
		if errors.Is(err, apperrors.ErrNoHistoricalData) {
			response.RespondError(w, http.StatusNotFound, msgNoHistory, nil)
			return
		}
		h.respondUpstreamError(w, r, msgHistoryFailed, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, points)
}

// respondUpstreamError logs a provider failure and answers 500 with the
// underlying error text as details.
func (h *ExchangeHandler) respondUpstreamError(w http.ResponseWriter, r *http.Request, message string, err error) {
	h.logger.Warn(message,
		zap.String("path", r.URL.Path),
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.Error(err),
	)
	response.RespondError(w, http.StatusInternalServerError, message, err.Error())
}
