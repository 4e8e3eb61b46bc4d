// Package upstream talks to the Travelpayouts pricing API on behalf of the
// proxy. The API token stays inside this package: it is added to outgoing
// requests and scrubbed from every error.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dharmasatrya/flightfinder/internal/models"
)

const (
	DefaultBaseURL  = "https://api.travelpayouts.com"
	DefaultCurrency = "usd"
	pricesPath      = "/aviasales/v3/prices_for_dates"
	maxBodyBytes    = 10 << 20
)

var ErrNotJSON = errors.New("upstream body is not valid json")

type Config struct {
	BaseURL  string
	Token    string
	Currency string
	// Timeout bounds one upstream call. Zero means no timeout.
	Timeout    time.Duration
	HTTPClient *http.Client
}

type Client struct {
	baseURL  string
	token    string
	currency string
	client   *http.Client
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.Token == "" {
		return nil, errors.New("upstream: token is required")
	}
	c := &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		token:    cfg.Token,
		currency: cfg.Currency,
		client:   cfg.HTTPClient,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.currency == "" {
		c.currency = DefaultCurrency
	}
	if c.client == nil {
		c.client = &http.Client{Timeout: cfg.Timeout}
	}
	return c, nil
}

func (c *Client) Name() string {
	return "travelpayouts"
}

// PricesForDates fetches offers for one origin, destination and date and
// returns the response body untouched. Any HTTP status is passed through
// as long as the body is JSON.
func (c *Client) PricesForDates(ctx context.Context, q models.FlightsQuery) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("origin", q.Origin)
	params.Set("destination", q.Destination)
	params.Set("depart_date", q.DepartureDate)
	params.Set("currency", c.currency)
	params.Set("token", c.token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+pricesPath+"?"+params.Encode(), nil)
	if err != nil {
		return nil, c.wrap(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, c.wrap(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, c.wrap(err)
	}
	if !json.Valid(body) {
		return nil, c.wrap(fmt.Errorf("%w (HTTP %d)", ErrNotJSON, resp.StatusCode))
	}
	return body, nil
}

func (c *Client) wrap(err error) *Error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = urlErr.Err
	}
	return &Error{Provider: c.Name(), Err: err, token: c.token}
}

// Error is a failed upstream call.
type Error struct {
	Provider string
	Err      error
	token    string
}

func (e *Error) Error() string {
	msg := e.Provider + ": " + e.Err.Error()
	if e.token != "" {
		msg = strings.ReplaceAll(msg, e.token, "[redacted]")
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}
