package discovery_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homezy/internal/discovery"
	"homezy/internal/domain"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func sampleCatalog() []domain.Listing {
	return []domain.Listing{
		{ID: "1", Location: "Quezon City", Price: 3000, GuestCapacity: 4, AvailabilityStart: day("2025-01-01"), AvailabilityEnd: day("2025-12-31")},
		{ID: "2", Location: "Makati", Price: 5000, GuestCapacity: 2, AvailabilityStart: day("2025-01-01"), AvailabilityEnd: day("2025-06-30")},
	}
}

func ids(ls []domain.Listing) []string {
	out := make([]string, 0, len(ls))
	for _, l := range ls {
		out = append(out, l.ID)
	}
	return out
}

func TestFilterListings_NoCriteriaIsIdentity(t *testing.T) {
	cat := sampleCatalog()
	got := discovery.FilterListings(cat, domain.SearchCriteria{})
	assert.Equal(t, cat, got)
}

func TestFilterListings_EmptyCatalog(t *testing.T) {
	got := discovery.FilterListings(nil, domain.SearchCriteria{Location: "Makati"})
	assert.Empty(t, got)
}

func TestFilterListings_AllCriteria(t *testing.T) {
	got := discovery.FilterListings(sampleCatalog(), domain.SearchCriteria{
		Location: "Makati",
		Date:     day("2025-03-01"),
		Guests:   domain.GuestCounts{Adults: 2},
	})
	assert.Equal(t, []string{"2"}, ids(got))
}

func TestFilterListings_LocationCaseInsensitiveSubstring(t *testing.T) {
	got := discovery.FilterListings(sampleCatalog(), domain.SearchCriteria{Location: "quezon"})
	assert.Equal(t, []string{"1"}, ids(got))
}

func TestFilterListings_LocationIsMatchedVerbatim(t *testing.T) {
	// surrounding spaces are part of the needle
	assert.Empty(t, discovery.FilterListings(sampleCatalog(), domain.SearchCriteria{Location: " makati "}))
	assert.Equal(t, []string{"1"}, ids(discovery.FilterListings(sampleCatalog(), domain.SearchCriteria{Location: "zon c"})))
}

func TestFilterListings_DateBoundsInclusive(t *testing.T) {
	cat := sampleCatalog()

	assert.Equal(t, []string{"1", "2"}, ids(discovery.FilterListings(cat, domain.SearchCriteria{Date: day("2025-06-30")})))
	assert.Equal(t, []string{"1"}, ids(discovery.FilterListings(cat, domain.SearchCriteria{Date: day("2025-07-01")})))
	assert.Empty(t, discovery.FilterListings(cat, domain.SearchCriteria{Date: day("2024-12-31")}))
}

func TestFilterListings_DateIgnoresTimeOfDay(t *testing.T) {
	d := time.Date(2025, 6, 30, 23, 59, 0, 0, time.UTC)
	got := discovery.FilterListings(sampleCatalog(), domain.SearchCriteria{Date: d})
	assert.Equal(t, []string{"1", "2"}, ids(got))
}

func TestFilterListings_MissingDatesDoNotConstrain(t *testing.T) {
	cat := []domain.Listing{{ID: "open"}, {ID: "from", AvailabilityStart: day("2025-05-01")}}
	got := discovery.FilterListings(cat, domain.SearchCriteria{Date: day("2025-04-01")})
	assert.Equal(t, []string{"open"}, ids(got))
}

func TestFilterListings_Guests(t *testing.T) {
	cat := append(sampleCatalog(), domain.Listing{ID: "nocap", Location: "Makati"})

	got := discovery.FilterListings(cat, domain.SearchCriteria{Guests: domain.GuestCounts{Adults: 2, Children: 1}})
	assert.Equal(t, []string{"1"}, ids(got))

	// pets and infants count toward the total
	got = discovery.FilterListings(cat, domain.SearchCriteria{Guests: domain.GuestCounts{Adults: 1, Infants: 1, Pets: 1}})
	assert.Equal(t, []string{"1"}, ids(got))

	// zero capacity listings only pass an unconstrained search
	got = discovery.FilterListings(cat, domain.SearchCriteria{Location: "makati"})
	assert.Equal(t, []string{"2", "nocap"}, ids(got))
}

func TestFilterListings_ResultsSatisfyCriteria(t *testing.T) {
	cat := []domain.Listing{
		{ID: "a", Location: "Cebu City", GuestCapacity: 6, AvailabilityStart: day("2025-02-01"), AvailabilityEnd: day("2025-02-28")},
		{ID: "b", Location: "cebu", GuestCapacity: 1, AvailabilityStart: day("2025-01-01"), AvailabilityEnd: day("2025-12-31")},
		{ID: "c", Location: "Davao", GuestCapacity: 8, AvailabilityStart: day("2025-01-01"), AvailabilityEnd: day("2025-12-31")},
		{ID: "d", Location: "North Cebu", GuestCapacity: 3, AvailabilityStart: day("2025-02-10"), AvailabilityEnd: day("2025-03-10")},
	}
	k := domain.SearchCriteria{Location: "CEBU", Date: day("2025-02-14"), Guests: domain.GuestCounts{Adults: 2}}

	got := discovery.FilterListings(cat, k)
	require.Equal(t, []string{"a", "d"}, ids(got))
	for _, l := range got {
		assert.Contains(t, l.Location, "ebu")
		assert.False(t, k.Date.Before(l.AvailabilityStart))
		assert.False(t, k.Date.After(l.AvailabilityEnd))
	}
}
