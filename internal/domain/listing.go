package domain

import "time"

type ListingStatus string

const (
	ListingDraft     ListingStatus = "draft"
	ListingPublished ListingStatus = "published"
)

// Categories a listing can be published under.
const (
	CategoryHomes       = "homes"
	CategoryExperiences = "experiences"
	CategoryServices    = "services"
)

// Listing is a bookable unit published by a host.
// AvailabilityStart/End are calendar dates (UTC midnight); a zero value means
// the bound is unknown and does not constrain date searches.
type Listing struct {
	ID                string        `json:"id"`
	HostID            string        `json:"host_id"`
	Category          string        `json:"category"`
	Title             string        `json:"title"`
	Description       string        `json:"description"`
	Location          string        `json:"location"`
	Price             float64       `json:"price"`
	GuestCapacity     int           `json:"guest_capacity"`
	AvailabilityStart time.Time     `json:"availability_start"`
	AvailabilityEnd   time.Time     `json:"availability_end"`
	Images            []string      `json:"images"`
	Status            ListingStatus `json:"status"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

// Validate checks the invariants a host-submitted listing must hold.
func (l Listing) Validate() error {
	switch {
	case l.Title == "":
		return Invalid("title is required")
	case l.Price < 0:
		return Invalid("price must be non-negative")
	case l.GuestCapacity < 0:
		return Invalid("guest capacity must be non-negative")
	case !l.AvailabilityStart.IsZero() && !l.AvailabilityEnd.IsZero() && l.AvailabilityEnd.Before(l.AvailabilityStart):
		return Invalid("availability end is before start")
	case l.Status != ListingDraft && l.Status != ListingPublished:
		return Invalid("unknown status " + string(l.Status))
	}
	return nil
}

// ValidCategory reports whether c is one of the known listing categories.
func ValidCategory(c string) bool {
	return c == CategoryHomes || c == CategoryExperiences || c == CategoryServices
}

// Date truncates t to its calendar date in UTC.
func Date(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
