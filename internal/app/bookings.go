package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"homezy/internal/domain"
)

// BookingService handles reservations, favorites and host earnings.
type BookingService struct {
	listings  domain.ListingRepository
	bookings  domain.BookingRepository
	favorites domain.FavoriteRepository
	now       func() time.Time
}

func NewBookingService(l domain.ListingRepository, b domain.BookingRepository, f domain.FavoriteRepository) *BookingService {
	return &BookingService{listings: l, bookings: b, favorites: f, now: time.Now}
}

type BookingRequest struct {
	UserID    string `json:"user_id"`
	ListingID string `json:"listing_id"`
	Nights    int    `json:"nights"`
}

// Create books a published listing. The listing's location and price are
// copied onto the booking; FinalPrice is price × nights when nights > 0.
func (s *BookingService) Create(ctx context.Context, req BookingRequest) (domain.Booking, error) {
	if req.UserID == "" || req.ListingID == "" {
		return domain.Booking{}, domain.Invalid("user_id and listing_id are required")
	}
	if req.Nights < 0 {
		return domain.Booking{}, domain.Invalid("nights must be non-negative")
	}
	l, err := s.listings.GetListing(ctx, req.ListingID)
	if err != nil {
		return domain.Booking{}, err
	}
	if l.Status != domain.ListingPublished {
		return domain.Booking{}, domain.Invalid("listing is not published")
	}
	if l.HostID == req.UserID {
		return domain.Booking{}, domain.Invalid("hosts cannot book their own listing")
	}

	b := domain.Booking{
		ID:        uuid.NewString(),
		UserID:    req.UserID,
		ListingID: l.ID,
		HostID:    l.HostID,
		Location:  l.Location,
		Price:     l.Price,
		Nights:    req.Nights,
		Status:    domain.BookingPending,
		CreatedAt: s.now().UTC(),
	}
	if req.Nights > 0 {
		b.FinalPrice = l.Price * float64(req.Nights)
	}
	if err := s.bookings.UpsertBookings(ctx, []domain.Booking{b}); err != nil {
		return domain.Booking{}, fmt.Errorf("store booking: %w", err)
	}
	return b, nil
}

// SetStatus moves a booking through its lifecycle.
func (s *BookingService) SetStatus(ctx context.Context, id string, next domain.BookingStatus) (domain.Booking, error) {
	b, err := s.bookings.GetBooking(ctx, id)
	if err != nil {
		return domain.Booking{}, err
	}
	if !b.Status.CanTransition(next) {
		return domain.Booking{}, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, b.Status, next)
	}
	if err := s.bookings.UpdateBookingStatus(ctx, id, next); err != nil {
		return domain.Booking{}, err
	}
	b.Status = next
	return b, nil
}

// Earnings sums confirmed bookings of a host's listings.
func (s *BookingService) Earnings(ctx context.Context, hostID string) (domain.Earnings, error) {
	bs, err := s.bookings.ListByHost(ctx, hostID)
	if err != nil {
		return domain.Earnings{}, err
	}
	e := domain.Earnings{HostID: hostID, ByStatus: map[domain.BookingStatus]int{}}
	for _, b := range bs {
		e.ByStatus[b.Status]++
		if b.Status == domain.BookingConfirmed {
			e.Total += b.EffectivePrice()
		}
	}
	return e, nil
}

func (s *BookingService) AddFavorite(ctx context.Context, userID, listingID string) error {
	if _, err := s.listings.GetListing(ctx, listingID); err != nil {
		return err
	}
	return s.favorites.AddFavorite(ctx, userID, listingID)
}

func (s *BookingService) RemoveFavorite(ctx context.Context, userID, listingID string) error {
	return s.favorites.RemoveFavorite(ctx, userID, listingID)
}
