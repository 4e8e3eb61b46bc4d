// Package flightquery runs the proxy lookup for one leg of a trip and turns
// whatever happens into a LegResult. Nothing escapes as an error or panic.
package flightquery

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dharmasatrya/flightfinder/internal/models"
	"github.com/dharmasatrya/flightfinder/internal/ranking"
	"github.com/dharmasatrya/flightfinder/internal/timezone"
)

// FlightsPath is the proxy route the executor calls.
const FlightsPath = "/api/travelpayouts/flights"

type Config struct {
	ProxyURL string
	// Timeout bounds a single leg. Zero means no timeout.
	Timeout    time.Duration
	HTTPClient *http.Client
}

type Executor struct {
	baseURL string
	timeout time.Duration
	client  *http.Client
}

func NewExecutor(cfg Config) *Executor {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	return &Executor{
		baseURL: strings.TrimRight(cfg.ProxyURL, "/"),
		timeout: cfg.Timeout,
		client:  client,
	}
}

// Execute issues exactly one request for q and classifies the outcome:
// HTTP status first, then the JSON envelope, then ranking.
func (e *Executor) Execute(ctx context.Context, q Query) (res LegResult) {
	res = LegResult{Leg: q.Leg, Status: StatusLoading}

	defer func() {
		if r := recover(); r != nil {
			res = Failed(q.Leg, fmt.Sprint(r))
		}
	}()

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	body, err := e.fetch(ctx, q)
	if err != nil {
		slog.ErrorContext(ctx, "flight fetch failed", "leg", q.Leg, "request_id", q.RequestID, "error", err)
		return Failed(q.Leg, err.Error())
	}

	var env models.Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		slog.ErrorContext(ctx, "flight response not json", "leg", q.Leg, "request_id", q.RequestID, "error", err)
		return Failed(q.Leg, err.Error())
	}

	if msg := env.ErrorMessage(); msg != "" {
		slog.ErrorContext(ctx, "pricing api error", "leg", q.Leg, "request_id", q.RequestID, "error", msg)
		return Rejected(q.Leg, msg)
	}

	offers, isArray, err := env.Offers()
	if err != nil {
		if len(offers) == 0 {
			slog.ErrorContext(ctx, "flight offers malformed", "leg", q.Leg, "request_id", q.RequestID, "error", err)
			return Failed(q.Leg, err.Error())
		}
		slog.WarnContext(ctx, "skipped malformed offers", "leg", q.Leg, "request_id", q.RequestID,
			"kept", len(offers), "error", err)
	}
	if !isArray || len(offers) == 0 {
		slog.WarnContext(ctx, "no flights found", "leg", q.Leg, "request_id", q.RequestID,
			"origin", q.Origin, "destination", q.Destination, "date", q.Date)
		return Empty(q.Leg)
	}

	return Succeeded(q.Leg, rank(offers, q.Date))
}

func (e *Executor) fetch(ctx context.Context, q Query) ([]byte, error) {
	params := url.Values{}
	params.Set("origin", q.Origin)
	params.Set("destination", q.Destination)
	params.Set("departure_at", q.Date)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+FlightsPath+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if q.RequestID != "" {
		req.Header.Set("X-Request-ID", q.RequestID)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPStatusError{Code: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

func rank(offers []models.Offer, date string) []models.Offer {
	requested, err := timezone.ParseTimeWithOffset(date, time.UTC)
	if err != nil {
		return ranking.Limit(offers)
	}
	return ranking.ByDateProximity(offers, requested)
}

// HTTPStatusError is a non-2xx answer from the proxy.
type HTTPStatusError struct {
	Code int
	Body string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Code, e.Body)
}
