package domain

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingRejected  BookingStatus = "rejected"
	BookingCancelled BookingStatus = "cancelled"
)

// Booking is a guest's reservation of a listing. Location is copied from the
// listing at booking time.
type Booking struct {
	ID         string        `json:"id"`
	UserID     string        `json:"user_id"`
	ListingID  string        `json:"listing_id"`
	HostID     string        `json:"host_id"`
	Location   string        `json:"location"`
	Price      float64       `json:"price"`
	FinalPrice float64       `json:"final_price"`
	Nights     int           `json:"nights"`
	Status     BookingStatus `json:"status"`
	CreatedAt  time.Time     `json:"created_at"`
}

// EffectivePrice prefers FinalPrice and falls back to Price.
func (b Booking) EffectivePrice() float64 {
	if b.FinalPrice > 0 {
		return b.FinalPrice
	}
	return b.Price
}

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:   {BookingConfirmed, BookingRejected, BookingCancelled},
	BookingConfirmed: {BookingCancelled},
}

// CanTransition reports whether a booking may move from s to next.
func (s BookingStatus) CanTransition(next BookingStatus) bool {
	for _, n := range bookingTransitions[s] {
		if n == next {
			return true
		}
	}
	return false
}

// Earnings summarises a host's bookings.
type Earnings struct {
	HostID   string                `json:"host_id"`
	Total    float64               `json:"total"`
	ByStatus map[BookingStatus]int `json:"by_status"`
}
