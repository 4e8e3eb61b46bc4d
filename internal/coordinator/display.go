package coordinator

import (
	"github.com/dharmasatrya/flightfinder/internal/flightquery"
	"github.com/dharmasatrya/flightfinder/internal/validation"
)

// Display receives everything a search wants shown. Calls are serialized by
// the Coordinator, so implementations need no locking of their own unless
// they are shared with other writers.
type Display interface {
	// ShowWarnings replaces the warning area. An empty slice clears it.
	ShowWarnings(warnings []validation.Warning)
	// BeginSearch clears both result slots for a new session. legs lists the
	// legs that will be fetched, outbound first.
	BeginSearch(legs []flightquery.Leg)
	SetLoading(visible bool)
	// ShowLeg fills the slot of result.Leg with a settled result.
	ShowLeg(result flightquery.LegResult)
	ScrollToResults()
}
