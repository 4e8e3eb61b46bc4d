package models

import "strings"

// FlightsQuery holds the query parameters accepted by the proxy endpoints.
type FlightsQuery struct {
	Origin        string
	Destination   string
	DepartureDate string
}

func (q *FlightsQuery) Validate() error {
	q.Origin = strings.TrimSpace(q.Origin)
	q.Destination = strings.TrimSpace(q.Destination)
	q.DepartureDate = strings.TrimSpace(q.DepartureDate)

	if q.Origin == "" {
		return ErrMissingOrigin
	}
	if q.Destination == "" {
		return ErrMissingDestination
	}
	if q.DepartureDate == "" {
		return ErrMissingDepartureDate
	}
	return nil
}

type ValidationError string

func (e ValidationError) Error() string {
	return string(e)
}

const (
	ErrMissingOrigin        ValidationError = "origin is required"
	ErrMissingDestination   ValidationError = "destination is required"
	ErrMissingDepartureDate ValidationError = "departure date is required"
)
