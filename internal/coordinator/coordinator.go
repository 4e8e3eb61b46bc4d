// Package coordinator runs a trip search: it validates the submission, fans
// the legs out concurrently and feeds their results to a Display.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dharmasatrya/flightfinder/internal/flightquery"
	"github.com/dharmasatrya/flightfinder/internal/validation"
)

var (
	ErrIncompleteInput = errors.New("please select valid airports or cities from the suggestions")
	ErrInvalidDates    = errors.New("invalid trip dates")
)

// IndicatorPolicy decides when the loading indicator is hidden.
type IndicatorPolicy string

const (
	// IndicatorLastLeg hides it as soon as the session's last leg settles,
	// even if the outbound leg of a round trip is still loading.
	IndicatorLastLeg IndicatorPolicy = "last-leg"
	// IndicatorAllLegs hides it once every leg has been shown.
	IndicatorAllLegs IndicatorPolicy = "all-legs"
)

func ParseIndicatorPolicy(s string) (IndicatorPolicy, error) {
	switch IndicatorPolicy(s) {
	case "", IndicatorLastLeg:
		return IndicatorLastLeg, nil
	case IndicatorAllLegs:
		return IndicatorAllLegs, nil
	}
	return "", fmt.Errorf("unknown indicator policy %q", s)
}

type LegExecutor interface {
	Execute(ctx context.Context, q flightquery.Query) flightquery.LegResult
}

type Config struct {
	Indicator IndicatorPolicy
	// Now supplies the current time for date validation. Defaults to time.Now.
	Now func() time.Time
	// NewID generates session correlation IDs. Defaults to random UUIDs.
	NewID func() string
}

type Coordinator struct {
	executor  LegExecutor
	display   Display
	indicator IndicatorPolicy
	now       func() time.Time
	newID     func() string

	mu         sync.Mutex
	generation uint64
	current    *Session
}

func New(executor LegExecutor, display Display, cfg Config) *Coordinator {
	c := &Coordinator{
		executor:  executor,
		display:   display,
		indicator: cfg.Indicator,
		now:       cfg.Now,
		newID:     cfg.NewID,
	}
	if c.indicator == "" {
		c.indicator = IndicatorLastLeg
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.newID == nil {
		c.newID = uuid.NewString
	}
	return c
}

// Search validates trip and, unless blocked, starts its legs and returns
// without waiting for them. A new Search supersedes the previous session:
// its in-flight legs are cancelled and whatever they still produce never
// reaches the display. ctx bounds the whole session.
func (c *Coordinator) Search(ctx context.Context, trip TripRequest) (*Session, error) {
	if !trip.Origin.Resolved() || !trip.Destination.Resolved() {
		c.mu.Lock()
		c.display.ShowWarnings(nil)
		c.mu.Unlock()
		return nil, ErrIncompleteInput
	}

	verdict := validation.Validate(trip.DepartureDate, trip.ReturnDate, c.now())
	if verdict.Blocked {
		c.mu.Lock()
		c.display.ShowWarnings(verdict.Warnings)
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrInvalidDates, verdict.Errors()[0].Message)
	}

	sessCtx, cancel := context.WithCancel(ctx)

	c.mu.Lock()
	if c.current != nil {
		c.current.Cancel()
	}
	c.generation++
	sess := newSession(c.newID(), c.generation, trip, verdict.Warnings, cancel)
	c.current = sess

	c.display.ShowWarnings(verdict.Warnings)
	c.display.BeginSearch(sess.Legs())
	c.display.SetLoading(true)
	c.mu.Unlock()

	slog.InfoContext(ctx, "search started", "session", sess.ID, "generation", sess.Generation,
		"origin", trip.Origin.Code, "destination", trip.Destination.Code,
		"departure_date", trip.DepartureDate, "return_date", trip.ReturnDate)

	for _, leg := range sess.Legs() {
		go c.runLeg(sessCtx, sess, legQuery(sess, leg))
	}

	return sess, nil
}

// Current returns the most recent session, or nil before the first search.
func (c *Coordinator) Current() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func legQuery(sess *Session, leg flightquery.Leg) flightquery.Query {
	q := flightquery.Query{
		Origin:      sess.Trip.Origin.Code,
		Destination: sess.Trip.Destination.Code,
		Date:        sess.Trip.DepartureDate,
		Leg:         leg,
		RequestID:   sess.ID,
	}
	if leg == flightquery.Return {
		q.Origin, q.Destination = q.Destination, q.Origin
		q.Date = sess.Trip.ReturnDate
	}
	return q
}

func (c *Coordinator) runLeg(ctx context.Context, sess *Session, q flightquery.Query) {
	res := c.executor.Execute(ctx, q)
	if !res.Status.Terminal() {
		res = flightquery.Failed(q.Leg, "leg did not settle")
	}
	if !sess.settle(res) {
		return
	}
	c.publish(sess, res)
	sess.finish()
}

func (c *Coordinator) publish(sess *Session, res flightquery.LegResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if sess.Generation != c.generation {
		slog.Debug("discarding stale leg result", "session", sess.ID, "leg", res.Leg, "status", res.Status)
		return
	}

	c.display.ShowLeg(res)
	sess.shown++

	last := sess.LastLeg()
	var final flightquery.LegResult
	switch c.indicator {
	case IndicatorAllLegs:
		if sess.shown < len(sess.legs) {
			return
		}
		final, _ = sess.Result(last)
	default:
		if res.Leg != last {
			return
		}
		final = res
	}

	c.display.SetLoading(false)
	if scrolls(final) {
		c.display.ScrollToResults()
	}
	slog.Info("loading finished", "session", sess.ID, "leg", res.Leg, "status", res.Status)
}

// scrolls reports whether the final result brings the results into view.
// Errors leave the view where it is.
func scrolls(res flightquery.LegResult) bool {
	return res.Status == flightquery.StatusSuccess || res.Status == flightquery.StatusEmpty
}
