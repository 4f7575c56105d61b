// Package discovery holds the pure browse logic behind the listing pages:
// search filtering, history-based recommendations and the search header.
package discovery

import (
	"strings"
	"time"

	"homezy/internal/domain"
)

// FilterListings returns the listings matching every set criterion, in
// catalog order. Unset criteria match everything.
func FilterListings(catalog []domain.Listing, c domain.SearchCriteria) []domain.Listing {
	loc := strings.ToLower(c.Location)
	date := domain.Date(c.Date)
	guests := c.Guests.Total()

	out := make([]domain.Listing, 0, len(catalog))
	for _, l := range catalog {
		if matchLocation(l, loc) && matchDate(l, date) && matchGuests(l, guests) {
			out = append(out, l)
		}
	}
	return out
}

func matchLocation(l domain.Listing, loc string) bool {
	if loc == "" {
		return true
	}
	return strings.Contains(strings.ToLower(l.Location), loc)
}

// matchDate treats a missing bound as open.
func matchDate(l domain.Listing, d time.Time) bool {
	if d.IsZero() {
		return true
	}
	if start := domain.Date(l.AvailabilityStart); !start.IsZero() && d.Before(start) {
		return false
	}
	if end := domain.Date(l.AvailabilityEnd); !end.IsZero() && d.After(end) {
		return false
	}
	return true
}

func matchGuests(l domain.Listing, total int) bool {
	return total <= 0 || total <= l.GuestCapacity
}
