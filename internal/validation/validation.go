// Package validation checks the trip dates a user entered before any network
// call is made.
package validation

import (
	"strings"
	"time"

	"github.com/dharmasatrya/flightfinder/internal/timezone"
)

type Severity string

const (
	// SeverityWarning is advisory; the search still runs.
	SeverityWarning Severity = "warning"
	// SeverityError blocks the search.
	SeverityError Severity = "error"
)

type Warning struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

const (
	MsgDepartureInPast    = "Departure date is in the past. Flights shown may no longer be available."
	MsgReturnInPast       = "Return date is in the past. Flights shown may no longer be available."
	MsgReturnBeforeDepart = "Return date cannot be before departure date. Please adjust your dates."
	MsgInvalidDeparture   = "Departure date is not a valid date."
	MsgInvalidReturn      = "Return date is not a valid date."
)

type Result struct {
	Warnings []Warning
	Blocked  bool
}

// Validate inspects raw YYYY-MM-DD date strings against today. Empty strings
// mean the date was not set. Dates are read in today's location and today is
// truncated to midnight, so only calendar days are compared.
func Validate(departureDate, returnDate string, today time.Time) Result {
	today = timezone.StartOfDay(today)
	loc := today.Location()

	res := Result{Warnings: []Warning{}}

	departure, hasDeparture, ok := parse(departureDate, loc)
	if !ok {
		res.block(MsgInvalidDeparture)
	}
	ret, hasReturn, ok := parse(returnDate, loc)
	if !ok {
		res.block(MsgInvalidReturn)
	}

	if hasDeparture && departure.Before(today) {
		res.warn(MsgDepartureInPast)
	}
	if hasReturn && ret.Before(today) {
		res.warn(MsgReturnInPast)
	}
	if hasDeparture && hasReturn && ret.Before(departure) {
		res.block(MsgReturnBeforeDepart)
	}

	return res
}

// parse reports whether the value was set and whether it parsed.
func parse(value string, loc *time.Location) (t time.Time, set bool, ok bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false, true
	}
	t, err := timezone.ParseDate(value, loc)
	if err != nil {
		return time.Time{}, false, false
	}
	return t, true, true
}

func (r *Result) warn(msg string) {
	r.Warnings = append(r.Warnings, Warning{Severity: SeverityWarning, Message: msg})
}

func (r *Result) block(msg string) {
	r.Warnings = append(r.Warnings, Warning{Severity: SeverityError, Message: msg})
	r.Blocked = true
}

// Errors returns only the blocking entries.
func (r Result) Errors() []Warning {
	var out []Warning
	for _, w := range r.Warnings {
		if w.Severity == SeverityError {
			out = append(out, w)
		}
	}
	return out
}
