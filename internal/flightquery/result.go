package flightquery

import "github.com/dharmasatrya/flightfinder/internal/models"

type Leg string

const (
	Outbound Leg = "outbound"
	Return   Leg = "return"
)

// Label is the heading used when displaying the leg.
func (l Leg) Label() string {
	if l == Return {
		return "Return"
	}
	return "Departure"
}

type Status int

const (
	StatusLoading Status = iota
	StatusSuccess
	StatusEmpty
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusEmpty:
		return "empty"
	case StatusError:
		return "error"
	}
	return "unknown"
}

// Terminal reports whether the leg has settled.
func (s Status) Terminal() bool {
	return s != StatusLoading
}

// Cause tells an upstream-reported failure apart from one that happened on
// the way there.
type Cause int

const (
	CauseNone Cause = iota
	// CauseTransport covers network errors, non-2xx answers and bodies
	// that cannot be read as offers.
	CauseTransport
	// CauseUpstream is an error the pricing API put in its envelope.
	CauseUpstream
)

// Query is one leg's lookup.
type Query struct {
	Origin      string
	Destination string
	Date        string
	Leg         Leg
	// RequestID is forwarded as X-Request-ID.
	RequestID string
}

// LegResult is the state of one leg. Offers is set only for StatusSuccess;
// Message and Cause only for StatusError.
type LegResult struct {
	Leg     Leg            `json:"leg"`
	Status  Status         `json:"status"`
	Offers  []models.Offer `json:"offers,omitempty"`
	Message string         `json:"message,omitempty"`
	Cause   Cause          `json:"cause,omitempty"`
}

func Loading(leg Leg) LegResult {
	return LegResult{Leg: leg, Status: StatusLoading}
}

func Succeeded(leg Leg, offers []models.Offer) LegResult {
	return LegResult{Leg: leg, Status: StatusSuccess, Offers: offers}
}

func Empty(leg Leg) LegResult {
	return LegResult{Leg: leg, Status: StatusEmpty}
}

func Failed(leg Leg, message string) LegResult {
	return LegResult{Leg: leg, Status: StatusError, Message: message, Cause: CauseTransport}
}

// Rejected is a failure reported by the pricing API itself.
func Rejected(leg Leg, message string) LegResult {
	return LegResult{Leg: leg, Status: StatusError, Message: message, Cause: CauseUpstream}
}
