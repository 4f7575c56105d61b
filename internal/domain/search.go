package domain

import "time"

type GuestCounts struct {
	Adults   int `json:"adults"`
	Children int `json:"children"`
	Infants  int `json:"infants"`
	Pets     int `json:"pets"`
}

// Total is the number of guests a listing must accommodate.
func (g GuestCounts) Total() int {
	return g.Adults + g.Children + g.Infants + g.Pets
}

// SearchCriteria is what a guest picked in the search bar. Unset fields
// (empty location, zero date, zero guests) do not constrain results.
type SearchCriteria struct {
	Location string      `json:"location,omitempty"`
	Date     time.Time   `json:"date,omitempty"`
	Guests   GuestCounts `json:"guests"`
}

type SearchResult struct {
	Header string    `json:"header"`
	Items  []Listing `json:"items"`
}
