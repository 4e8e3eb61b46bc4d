// Package render turns search state into text. The functions here are pure;
// Terminal wires them to a coordinator.Display.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/dharmasatrya/flightfinder/internal/flightquery"
	"github.com/dharmasatrya/flightfinder/internal/models"
	"github.com/dharmasatrya/flightfinder/internal/timezone"
	"github.com/dharmasatrya/flightfinder/internal/validation"
	"github.com/dharmasatrya/flightfinder/pkg/currency"
)

const (
	NotAvailable   = "N/A"
	OneWayNotice   = "No return date selected."
	displayDateFmt = "02/01/2006"
)

func Greeting(name string) string {
	return fmt.Sprintf("Welcome back, %s!", name)
}

func Warning(w validation.Warning) string {
	icon := "⚠️"
	if w.Severity == validation.SeverityError {
		icon = "❌"
	}
	return icon + " " + w.Message
}

func Warnings(ws []validation.Warning) []string {
	lines := make([]string, 0, len(ws))
	for _, w := range ws {
		lines = append(lines, Warning(w))
	}
	return lines
}

// SectionHeader is the heading above a leg's results.
func SectionHeader(leg flightquery.Leg) string {
	return leg.Label() + " Flights"
}

// Leg renders one leg's slot.
func Leg(r flightquery.LegResult) []string {
	noun := strings.ToLower(r.Leg.Label())
	switch r.Status {
	case flightquery.StatusLoading:
		return []string{fmt.Sprintf("Searching %s flights...", noun)}
	case flightquery.StatusEmpty:
		return []string{fmt.Sprintf("No %s flights found.", noun)}
	case flightquery.StatusError:
		if r.Cause == flightquery.CauseUpstream {
			return []string{"API Error: " + r.Message}
		}
		return []string{fmt.Sprintf("Error fetching %s flights.", noun), "  " + r.Message}
	}

	var lines []string
	for i, o := range r.Offers {
		if i > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, Card(r.Leg, o)...)
	}
	return lines
}

// Card renders one offer.
func Card(leg flightquery.Leg, o models.Offer) []string {
	return []string{
		leg.Label(),
		fmt.Sprintf("  From: %s  To: %s", o.Origin, o.Destination),
		fmt.Sprintf("  Departure: %s", FormatDate(o.DepartureAt)),
		fmt.Sprintf("  Price: %s", currency.Format(o.Price, o.Currency)),
		fmt.Sprintf("  Airline: %s", orNA(o.Airline)),
		fmt.Sprintf("  Flight #: %s", orNA(o.FlightNumber)),
	}
}

// FormatDate shows a departure timestamp as DD/MM/YYYY in the timestamp's
// own offset.
func FormatDate(dt string) string {
	if dt == "" {
		return NotAvailable
	}
	t, err := timezone.ParseTimeWithOffset(dt, time.UTC)
	if err != nil {
		return dt
	}
	return t.Format(displayDateFmt)
}

func orNA(s string) string {
	if s == "" {
		return NotAvailable
	}
	return s
}
