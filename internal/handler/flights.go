package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dharmasatrya/flightfinder/internal/models"
	"github.com/dharmasatrya/flightfinder/internal/quota"
)

const (
	msgMissingParams  = "Missing required query parameters."
	msgQuotaExhausted = "Upstream quota exhausted."
	msgFetchFailed    = "Failed to fetch flights from Travelpayouts."
	msgLegacyFailed   = "Failed to fetch flights"
)

type Upstream interface {
	PricesForDates(ctx context.Context, q models.FlightsQuery) (json.RawMessage, error)
}

// FlightsHandler relays flight price lookups to the pricing API. It adds the
// server-held credential upstream and otherwise passes the answer through.
type FlightsHandler struct {
	upstream Upstream
	quota    quota.Guard
}

func NewFlightsHandler(up Upstream, guard quota.Guard) *FlightsHandler {
	if guard == nil {
		guard = quota.NewNoOpGuard()
	}
	return &FlightsHandler{
		upstream: up,
		quota:    guard,
	}
}

// Flights serves GET /api/travelpayouts/flights?origin&destination&departure_at.
func (h *FlightsHandler) Flights(c echo.Context) error {
	return h.relay(c, models.FlightsQuery{
		Origin:        c.QueryParam("origin"),
		Destination:   c.QueryParam("destination"),
		DepartureDate: c.QueryParam("departure_at"),
	}, msgFetchFailed)
}

// LegacyFlights serves GET /api/flights?origin&destination&depart_date.
func (h *FlightsHandler) LegacyFlights(c echo.Context) error {
	return h.relay(c, models.FlightsQuery{
		Origin:        c.QueryParam("origin"),
		Destination:   c.QueryParam("destination"),
		DepartureDate: c.QueryParam("depart_date"),
	}, msgLegacyFailed)
}

func (h *FlightsHandler) relay(c echo.Context, q models.FlightsQuery, failMsg string) error {
	ctx := c.Request().Context()
	requestID := c.Response().Header().Get(echo.HeaderXRequestID)

	if err := q.Validate(); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: msgMissingParams})
	}

	allowed, err := h.quota.Allow(ctx)
	if err != nil {
		slog.WarnContext(ctx, "quota check failed, allowing request", "request_id", requestID, "error", err)
		allowed = true
	}
	if !allowed {
		return c.JSON(http.StatusTooManyRequests, models.ErrorResponse{Error: msgQuotaExhausted})
	}

	body, err := h.upstream.PricesForDates(ctx, q)
	if err != nil {
		slog.ErrorContext(ctx, "upstream fetch failed", "request_id", requestID,
			"origin", q.Origin, "destination", q.Destination, "date", q.DepartureDate, "error", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: failMsg})
	}

	return c.JSONBlob(http.StatusOK, body)
}

func HealthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, models.HealthResponse{Status: "ok"})
}
