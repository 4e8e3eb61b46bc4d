package upstream

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharmasatrya/flightfinder/internal/models"
)

const testToken = "s3cr3t-token"

func query() models.FlightsQuery {
	return models.FlightsQuery{Origin: "LON", Destination: "NYC", DepartureDate: "2024-03-04"}
}

func TestNewClient_RequiresToken(t *testing.T) {
	_, err := NewClient(Config{})
	assert.Error(t, err)
}

func TestPricesForDates_ForwardsParamsAndBody(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		fmt.Fprint(w, `{"success":true,"data":[],"currency":"usd"}`)
	}))
	defer srv.Close()

	client, err := NewClient(Config{BaseURL: srv.URL, Token: testToken})
	require.NoError(t, err)

	body, err := client.PricesForDates(context.Background(), query())

	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"data":[],"currency":"usd"}`, string(body))
	require.NotNil(t, got)
	assert.Equal(t, "/aviasales/v3/prices_for_dates", got.URL.Path)
	q := got.URL.Query()
	assert.Equal(t, "LON", q.Get("origin"))
	assert.Equal(t, "NYC", q.Get("destination"))
	assert.Equal(t, "2024-03-04", q.Get("depart_date"))
	assert.Equal(t, "usd", q.Get("currency"))
	assert.Equal(t, testToken, q.Get("token"))
}

func TestPricesForDates_PassesJSONErrorsThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"success":false,"error":"Unauthorized"}`)
	}))
	defer srv.Close()

	client, err := NewClient(Config{BaseURL: srv.URL, Token: testToken})
	require.NoError(t, err)

	body, err := client.PricesForDates(context.Background(), query())

	require.NoError(t, err)
	assert.Contains(t, string(body), "Unauthorized")
}

func TestPricesForDates_NotJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	client, err := NewClient(Config{BaseURL: srv.URL, Token: testToken})
	require.NoError(t, err)

	_, err = client.PricesForDates(context.Background(), query())

	require.ErrorIs(t, err, ErrNotJSON)
	var upErr *Error
	require.ErrorAs(t, err, &upErr)
	assert.Equal(t, "travelpayouts", upErr.Provider)
}

func TestPricesForDates_TransportErrorHidesToken(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	client, err := NewClient(Config{BaseURL: srv.URL, Token: testToken})
	require.NoError(t, err)

	_, err = client.PricesForDates(context.Background(), query())

	require.Error(t, err)
	assert.NotContains(t, err.Error(), testToken)
}

func TestErrorRedactsToken(t *testing.T) {
	err := &Error{Provider: "travelpayouts", Err: fmt.Errorf("bad url ?token=%s", testToken), token: testToken}

	assert.Equal(t, "travelpayouts: bad url ?token=[redacted]", err.Error())
}
