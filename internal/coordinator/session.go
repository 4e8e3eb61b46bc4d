package coordinator

import (
	"context"
	"sync"

	"github.com/dharmasatrya/flightfinder/internal/flightquery"
	"github.com/dharmasatrya/flightfinder/internal/models"
	"github.com/dharmasatrya/flightfinder/internal/validation"
)

// TripRequest is what the user submitted. Empty date strings mean unset.
type TripRequest struct {
	Origin        models.PlaceSelection
	Destination   models.PlaceSelection
	DepartureDate string
	ReturnDate    string
}

func (t TripRequest) RoundTrip() bool {
	return t.ReturnDate != ""
}

// Session is one submitted search. Each of its legs settles exactly once;
// Done closes when all of them have and their display writes are finished.
type Session struct {
	ID         string
	Generation uint64
	Trip       TripRequest
	Warnings   []validation.Warning

	legs   []flightquery.Leg
	cancel context.CancelFunc

	mu      sync.Mutex
	results map[flightquery.Leg]flightquery.LegResult
	pending int
	done    chan struct{}

	// shown counts legs written to the display. Guarded by Coordinator.mu.
	shown int
}

func newSession(id string, gen uint64, trip TripRequest, warnings []validation.Warning, cancel context.CancelFunc) *Session {
	legs := []flightquery.Leg{flightquery.Outbound}
	if trip.RoundTrip() {
		legs = append(legs, flightquery.Return)
	}

	results := make(map[flightquery.Leg]flightquery.LegResult, len(legs))
	for _, leg := range legs {
		results[leg] = flightquery.Loading(leg)
	}

	return &Session{
		ID:         id,
		Generation: gen,
		Trip:       trip,
		Warnings:   warnings,
		legs:       legs,
		cancel:     cancel,
		results:    results,
		pending:    len(legs),
		done:       make(chan struct{}),
	}
}

func (s *Session) Legs() []flightquery.Leg {
	return append([]flightquery.Leg(nil), s.legs...)
}

// LastLeg is the leg whose settlement hides the loading indicator: the only
// leg of a one-way trip, the return leg of a round trip.
func (s *Session) LastLeg() flightquery.Leg {
	return s.legs[len(s.legs)-1]
}

func (s *Session) Result(leg flightquery.Leg) (flightquery.LegResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.results[leg]
	return r, ok
}

// settle records a terminal result. It reports false if the leg had already
// settled, which leaves the first result in place.
func (s *Session) settle(res flightquery.LegResult) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.results[res.Leg]
	if !ok || cur.Status.Terminal() || !res.Status.Terminal() {
		return false
	}
	s.results[res.Leg] = res
	return true
}

// finish marks one settled leg as fully handled. The last call closes Done.
func (s *Session) finish() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending--
	if s.pending == 0 {
		close(s.done)
		s.cancel()
	}
}

func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Wait blocks until every leg settled or ctx ends.
func (s *Session) Wait(ctx context.Context) error {
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Cancel aborts the legs still in flight. They settle as errors.
func (s *Session) Cancel() {
	s.cancel()
}

type Snapshot struct {
	ID         string                  `json:"id"`
	Generation uint64                  `json:"generation"`
	Warnings   []validation.Warning    `json:"warnings"`
	Legs       []flightquery.LegResult `json:"legs"`
	Settled    bool                    `json:"settled"`
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	legs := make([]flightquery.LegResult, 0, len(s.legs))
	for _, leg := range s.legs {
		legs = append(legs, s.results[leg])
	}
	return Snapshot{
		ID:         s.ID,
		Generation: s.Generation,
		Warnings:   s.Warnings,
		Legs:       legs,
		Settled:    s.settled(),
	}
}

func (s *Session) settled() bool {
	for _, r := range s.results {
		if !r.Status.Terminal() {
			return false
		}
	}
	return true
}
