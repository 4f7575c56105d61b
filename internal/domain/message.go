package domain

import "time"

// Thread groups the messages between a guest and a host about one listing.
type Thread struct {
	ID        string    `json:"id"`
	GuestID   string    `json:"guest_id"`
	HostID    string    `json:"host_id"`
	ListingID string    `json:"listing_id"`
	CreatedAt time.Time `json:"created_at"`
}

// StoredMessage is a server-confirmed chat message.
type StoredMessage struct {
	ID       string    `json:"id"`
	ThreadID string    `json:"thread_id"`
	SenderID string    `json:"sender_id"`
	LocalID  string    `json:"local_id,omitempty"`
	Text     string    `json:"text"`
	SentAt   time.Time `json:"sent_at"`
}
