package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"homezy/internal/domain"
)

// catalogInvalidator drops cached catalogs and tells live subscribers a
// category changed. Both steps are best-effort.
type catalogInvalidator struct {
	cache    domain.Cache
	notifier domain.ChangeNotifier
}

func (c catalogInvalidator) catalogChanged(ctx context.Context, category string) {
	if c.cache != nil {
		_ = c.cache.Del(ctx, catalogKey(category))
		_ = c.cache.Del(ctx, catalogKey(""))
	}
	if c.notifier != nil {
		if err := c.notifier.NotifyCatalogChanged(ctx, category); err != nil {
			log.Warn().Err(err).Str("category", category).Msg("catalog change notify failed")
		}
	}
}

// SyncService mirrors the managed backend's catalog and booking history
// into the local repository.
type SyncService struct {
	backend  domain.BackendClient
	listings domain.ListingRepository
	bookings domain.BookingRepository
	inv      catalogInvalidator
}

func NewSyncService(c domain.BackendClient, l domain.ListingRepository, b domain.BookingRepository, cache domain.Cache, n domain.ChangeNotifier) *SyncService {
	return &SyncService{backend: c, listings: l, bookings: b, inv: catalogInvalidator{cache: cache, notifier: n}}
}

// SyncCategory upserts every published listing of category and returns how
// many were stored. Documents without an id are skipped. 404/401/403 from
// the backend count as an empty category.
func (s *SyncService) SyncCategory(ctx context.Context, category string) (int, error) {
	docs, err := s.backend.PublishedListings(ctx, category)
	if err != nil {
		if isMiss(err) {
			log.Warn().Err(err).Str("category", category).Msg("sync: category unavailable")
			return 0, nil
		}
		return 0, fmt.Errorf("fetch %s listings: %w", category, err)
	}

	n := 0
	for _, d := range docs {
		l, ok := mapListing(d, category)
		if !ok {
			log.Warn().Str("category", category).Msg("sync: listing without id skipped")
			continue
		}
		if err := s.listings.UpsertListing(ctx, l); err != nil {
			return n, fmt.Errorf("upsert listing %s: %w", l.ID, err)
		}
		n++
	}
	if n > 0 {
		s.inv.catalogChanged(ctx, category)
	}
	return n, nil
}

// SyncUserBookings imports one user's booking history.
func (s *SyncService) SyncUserBookings(ctx context.Context, userID string) (int, error) {
	docs, err := s.backend.UserBookings(ctx, userID)
	if err != nil {
		if isMiss(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("fetch bookings of %s: %w", userID, err)
	}
	bs := make([]domain.Booking, 0, len(docs))
	for _, d := range docs {
		if b, ok := mapBooking(d, userID); ok {
			bs = append(bs, b)
		}
	}
	if err := s.bookings.UpsertBookings(ctx, bs); err != nil {
		return 0, fmt.Errorf("upsert bookings of %s: %w", userID, err)
	}
	return len(bs), nil
}

// isMiss reports the backend errors that mean "nothing to sync".
func isMiss(err error) bool {
	if errors.Is(err, domain.ErrNotFound) {
		return true
	}
	low := strings.ToLower(err.Error())
	for _, s := range []string{"not found", "unauthorized", "forbidden"} {
		if strings.Contains(low, s) {
			return true
		}
	}
	return false
}
