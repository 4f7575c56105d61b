package domain

import "context"

type ListingRepository interface {
	UpsertListing(ctx context.Context, l Listing) error
	GetListing(ctx context.Context, id string) (Listing, error)
	// ListPublished returns published listings of a category ("" = all), oldest first.
	ListPublished(ctx context.Context, category string) ([]Listing, error)
}

type BookingRepository interface {
	UpsertBookings(ctx context.Context, bs []Booking) error
	GetBooking(ctx context.Context, id string) (Booking, error)
	UpdateBookingStatus(ctx context.Context, id string, status BookingStatus) error
	ListByUser(ctx context.Context, userID string) ([]Booking, error)
	ListByHost(ctx context.Context, hostID string) ([]Booking, error)
}

type FavoriteRepository interface {
	AddFavorite(ctx context.Context, userID, listingID string) error
	RemoveFavorite(ctx context.Context, userID, listingID string) error
	ListFavorites(ctx context.Context, userID string) ([]Listing, error)
}

type MessageRepository interface {
	CreateThread(ctx context.Context, t Thread) error
	GetThread(ctx context.Context, id string) (Thread, error)
	FindThread(ctx context.Context, guestID, hostID, listingID string) (Thread, error)
	InsertMessage(ctx context.Context, m StoredMessage) error
	ListMessages(ctx context.Context, threadID string) ([]StoredMessage, error)
}

// BackendClient reads raw documents from the managed backend.
type BackendClient interface {
	PublishedListings(ctx context.Context, category string) ([]map[string]any, error)
	UserBookings(ctx context.Context, userID string) ([]map[string]any, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// ChangeNotifier announces that a category's catalog changed.
type ChangeNotifier interface {
	NotifyCatalogChanged(ctx context.Context, category string) error
}
