package app

import (
	"context"
	"time"

	"github.com/google/uuid"

	"homezy/internal/domain"
)

// ListingService handles host edits to their listings.
type ListingService struct {
	repo domain.ListingRepository
	inv  catalogInvalidator
	now  func() time.Time
}

func NewListingService(r domain.ListingRepository, cache domain.Cache, n domain.ChangeNotifier) *ListingService {
	return &ListingService{repo: r, inv: catalogInvalidator{cache: cache, notifier: n}, now: time.Now}
}

// ListingPatch carries the fields a host may change; nil means unchanged.
type ListingPatch struct {
	Title             *string
	Description       *string
	Location          *string
	Price             *float64
	GuestCapacity     *int
	AvailabilityStart *time.Time
	AvailabilityEnd   *time.Time
	Images            []string
	Status            *domain.ListingStatus
}

// Create stores a new draft listing.
func (s *ListingService) Create(ctx context.Context, l domain.Listing) (domain.Listing, error) {
	l.ID = uuid.NewString()
	l.Status = domain.ListingDraft
	if l.Category == "" {
		l.Category = domain.CategoryHomes
	}
	if !domain.ValidCategory(l.Category) {
		return domain.Listing{}, domain.Invalid("unknown category " + l.Category)
	}
	if l.HostID == "" {
		return domain.Listing{}, domain.Invalid("host id is required")
	}
	l.AvailabilityStart = domain.Date(l.AvailabilityStart)
	l.AvailabilityEnd = domain.Date(l.AvailabilityEnd)
	if err := l.Validate(); err != nil {
		return domain.Listing{}, err
	}
	l.UpdatedAt = s.now().UTC()
	if err := s.repo.UpsertListing(ctx, l); err != nil {
		return domain.Listing{}, err
	}
	return l, nil
}

// Update applies a patch. Changes to published listings, and publishing or
// unpublishing, refresh the catalog.
func (s *ListingService) Update(ctx context.Context, id string, p ListingPatch) (domain.Listing, error) {
	l, err := s.repo.GetListing(ctx, id)
	if err != nil {
		return domain.Listing{}, err
	}
	wasPublished := l.Status == domain.ListingPublished

	if p.Title != nil {
		l.Title = *p.Title
	}
	if p.Description != nil {
		l.Description = *p.Description
	}
	if p.Location != nil {
		l.Location = *p.Location
	}
	if p.Price != nil {
		l.Price = *p.Price
	}
	if p.GuestCapacity != nil {
		l.GuestCapacity = *p.GuestCapacity
	}
	if p.AvailabilityStart != nil {
		l.AvailabilityStart = domain.Date(*p.AvailabilityStart)
	}
	if p.AvailabilityEnd != nil {
		l.AvailabilityEnd = domain.Date(*p.AvailabilityEnd)
	}
	if p.Images != nil {
		l.Images = p.Images
	}
	if p.Status != nil {
		l.Status = *p.Status
	}
	if err := l.Validate(); err != nil {
		return domain.Listing{}, err
	}
	l.UpdatedAt = s.now().UTC()
	if err := s.repo.UpsertListing(ctx, l); err != nil {
		return domain.Listing{}, err
	}
	if wasPublished || l.Status == domain.ListingPublished {
		s.inv.catalogChanged(ctx, l.Category)
	}
	return l, nil
}
