package render

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dharmasatrya/flightfinder/internal/flightquery"
	"github.com/dharmasatrya/flightfinder/internal/models"
	"github.com/dharmasatrya/flightfinder/internal/validation"
)

func TestFormatDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "2024-03-05T10:00:00+00:00", want: "05/03/2024"},
		{in: "2024-03-05T23:30:00-05:00", want: "05/03/2024"},
		{in: "2024-12-31", want: "31/12/2024"},
		{in: "", want: NotAvailable},
		{in: "soon", want: "soon"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDate(tt.in))
		})
	}
}

func TestCard(t *testing.T) {
	offer := models.Offer{Origin: "LON", Destination: "NYC", DepartureAt: "2024-03-05T10:00:00+00:00", Price: 1234, Currency: "usd"}

	lines := Card(flightquery.Return, offer)

	assert.Equal(t, []string{
		"Return",
		"  From: LON  To: NYC",
		"  Departure: 05/03/2024",
		"  Price: 1,234 USD",
		"  Airline: N/A",
		"  Flight #: N/A",
	}, lines)
}

func TestLeg(t *testing.T) {
	assert.Equal(t, []string{"No departure flights found."}, Leg(flightquery.Empty(flightquery.Outbound)))
	assert.Equal(t, []string{"No return flights found."}, Leg(flightquery.Empty(flightquery.Return)))
	assert.Equal(t, []string{"Searching return flights..."}, Leg(flightquery.Loading(flightquery.Return)))
	assert.Equal(t,
		[]string{"Error fetching departure flights.", "  HTTP 404: not found"},
		Leg(flightquery.Failed(flightquery.Outbound, "HTTP 404: not found")))
	assert.Equal(t,
		[]string{"API Error: Invalid token"},
		Leg(flightquery.Rejected(flightquery.Return, "Invalid token")))

	two := Leg(flightquery.Succeeded(flightquery.Outbound, []models.Offer{
		{Origin: "LON", Destination: "NYC", Price: 1, Currency: "USD", Airline: "BA", FlightNumber: "117"},
		{Origin: "LON", Destination: "NYC", Price: 2, Currency: "USD"},
	}))
	assert.Len(t, two, 13, "two cards separated by a blank line")
	assert.Equal(t, "", two[6])
	assert.Equal(t, "  Airline: BA", two[4])
}

func TestWarnings(t *testing.T) {
	lines := Warnings([]validation.Warning{
		{Severity: validation.SeverityWarning, Message: validation.MsgDepartureInPast},
		{Severity: validation.SeverityError, Message: validation.MsgReturnBeforeDepart},
	})

	assert.Equal(t, []string{
		"⚠️ " + validation.MsgDepartureInPast,
		"❌ " + validation.MsgReturnBeforeDepart,
	}, lines)
	assert.Empty(t, Warnings(nil))
}

func TestGreeting(t *testing.T) {
	assert.Equal(t, "Welcome back, Ada!", Greeting("Ada"))
}

func TestTerminal(t *testing.T) {
	var out, status bytes.Buffer
	term := NewTerminal(&out, &status)

	term.ShowWarnings([]validation.Warning{{Severity: validation.SeverityWarning, Message: "heads up"}})
	term.BeginSearch([]flightquery.Leg{flightquery.Outbound})
	term.SetLoading(true)
	term.SetLoading(true)
	assert.True(t, term.Loading())

	term.ShowLeg(flightquery.Empty(flightquery.Outbound))
	term.SetLoading(false)
	term.ScrollToResults()

	assert.False(t, term.Loading())
	assert.True(t, term.Scrolled())
	assert.Equal(t, "Loading flights...\n", status.String(), "indicator printed once")
	assert.Equal(t, "⚠️ heads up\n"+
		"\nReturn Flights\n--------------\n"+OneWayNotice+"\n"+
		"\nDeparture Flights\n-----------------\nNo departure flights found.\n", out.String())
}

func TestTerminal_RoundTripHasNoOneWayNotice(t *testing.T) {
	var out, status bytes.Buffer
	term := NewTerminal(&out, &status)

	term.BeginSearch([]flightquery.Leg{flightquery.Outbound, flightquery.Return})

	assert.Empty(t, out.String())
	assert.False(t, term.Scrolled())
}
