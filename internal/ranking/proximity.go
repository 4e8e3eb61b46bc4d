package ranking

import (
	"math"
	"slices"
	"time"

	"github.com/dharmasatrya/flightfinder/internal/models"
	"github.com/dharmasatrya/flightfinder/internal/timezone"
)

// DisplayLimit is the number of offers shown per leg.
const DisplayLimit = 5

// ByDateProximity orders offers by how close their departure is to the
// requested date, closest first, and keeps at most DisplayLimit of them.
// Equal distances keep their original relative order. Offers whose departure
// cannot be parsed go last. The input slice is not modified.
func ByDateProximity(offers []models.Offer, requested time.Time) []models.Offer {
	if len(offers) == 0 {
		return []models.Offer{}
	}

	scored := make([]scoredOffer, len(offers))
	for i, o := range offers {
		scored[i] = scoredOffer{offer: o}
		dep, err := timezone.ParseTimeWithOffset(o.DepartureAt, time.UTC)
		if err != nil {
			scored[i].unknown = true
			continue
		}
		scored[i].distance = absDuration(dep.Sub(requested))
	}

	slices.SortStableFunc(scored, compareScored)

	n := min(len(scored), DisplayLimit)
	result := make([]models.Offer, n)
	for i := range n {
		result[i] = scored[i].offer
	}
	return result
}

type scoredOffer struct {
	offer    models.Offer
	distance time.Duration
	unknown  bool
}

func compareScored(a, b scoredOffer) int {
	switch {
	case a.unknown && b.unknown:
		return 0
	case a.unknown:
		return 1
	case b.unknown:
		return -1
	case a.distance < b.distance:
		return -1
	case a.distance > b.distance:
		return 1
	}
	return 0
}

func absDuration(d time.Duration) time.Duration {
	if d == math.MinInt64 {
		return math.MaxInt64
	}
	if d < 0 {
		return -d
	}
	return d
}

// Limit keeps the first DisplayLimit offers in their original order. It is
// used when there is no requested date to rank against.
func Limit(offers []models.Offer) []models.Offer {
	n := min(len(offers), DisplayLimit)
	return slices.Clone(offers[:n])
}
