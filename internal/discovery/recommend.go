package discovery

import (
	"math/rand/v2"
	"strings"

	"homezy/internal/domain"
)

// Price band around the user's average booking price.
const (
	priceBandLow  = 0.7
	priceBandHigh = 1.3
)

// Recommendation is the outcome of one run, split by how each listing got in.
type Recommendation struct {
	Items    []domain.Listing
	Primary  int
	Backfill int
}

type Recommender struct {
	rng *rand.Rand
}

// NewRecommender uses rng for backfill draws; nil means the global source.
func NewRecommender(rng *rand.Rand) *Recommender {
	return &Recommender{rng: rng}
}

// RecommendListings suggests at most len(history) listings the user has not
// booked yet, using the default random source for backfill.
func RecommendListings(catalog []domain.Listing, history []domain.Booking) []domain.Listing {
	return NewRecommender(nil).Recommend(catalog, history).Items
}

func (r *Recommender) Recommend(catalog []domain.Listing, history []domain.Booking) Recommendation {
	if len(history) == 0 {
		return Recommendation{}
	}
	want := len(history)

	excluded := make(map[string]struct{}, len(history))
	var locations []string
	var sum float64
	var priced int
	for _, b := range history {
		excluded[b.ListingID] = struct{}{}
		if loc := strings.TrimSpace(b.Location); loc != "" {
			locations = append(locations, strings.ToLower(loc))
		}
		if p := b.EffectivePrice(); p > 0 {
			sum += p
			priced++
		}
	}

	candidates := make([]domain.Listing, 0, len(catalog))
	for _, l := range catalog {
		if _, ok := excluded[l.ID]; !ok {
			candidates = append(candidates, l)
		}
	}

	var avg float64
	if priced > 0 {
		avg = sum / float64(priced)
	}
	match := affinity(locations, avg)

	var out []domain.Listing
	rest := make([]domain.Listing, 0, len(candidates))
	for _, l := range candidates {
		if match(l) {
			out = append(out, l)
		} else {
			rest = append(rest, l)
		}
	}
	if len(out) >= want {
		return Recommendation{Items: out[:want], Primary: want}
	}

	primary := len(out)
	for len(out) < want && len(rest) > 0 {
		i := r.intn(len(rest))
		out = append(out, rest[i])
		rest[i] = rest[len(rest)-1]
		rest = rest[:len(rest)-1]
	}
	return Recommendation{Items: out, Primary: primary, Backfill: len(out) - primary}
}

// affinity builds the primary-match predicate from whichever of location and
// price is known. avg <= 0 means the price criterion is off.
func affinity(locations []string, avg float64) func(domain.Listing) bool {
	byLocation := func(l domain.Listing) bool {
		loc := strings.ToLower(l.Location)
		for _, k := range locations {
			if strings.Contains(loc, k) {
				return true
			}
		}
		return false
	}
	byPrice := func(l domain.Listing) bool {
		return l.Price >= priceBandLow*avg && l.Price <= priceBandHigh*avg
	}

	switch {
	case len(locations) > 0 && avg > 0:
		return func(l domain.Listing) bool { return byLocation(l) || byPrice(l) }
	case len(locations) > 0:
		return byLocation
	case avg > 0:
		return byPrice
	default:
		return func(domain.Listing) bool { return true }
	}
}

func (r *Recommender) intn(n int) int {
	if r.rng == nil {
		return rand.IntN(n)
	}
	return r.rng.IntN(n)
}
