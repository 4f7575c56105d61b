package app

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"homezy/internal/adapters/observability"
	"homezy/internal/discovery"
	"homezy/internal/domain"
	"homezy/internal/live"
)

// BrowseService answers the read side of the guest pages: search,
// recommendations, listing detail and favorites. Catalog and history read
// failures are logged and degrade to empty results.
type BrowseService struct {
	listings  domain.ListingRepository
	bookings  domain.BookingRepository
	favorites domain.FavoriteRepository
	cache     domain.Cache
	cacheTTL  time.Duration
	rec       *discovery.Recommender
	snapshot  *live.Latest[[]domain.Listing]
}

func NewBrowseService(l domain.ListingRepository, b domain.BookingRepository, f domain.FavoriteRepository, c domain.Cache, ttl time.Duration) *BrowseService {
	return &BrowseService{
		listings:  l,
		bookings:  b,
		favorites: f,
		cache:     c,
		cacheTTL:  ttl,
		rec:       discovery.NewRecommender(nil),
	}
}

// WithRandom swaps the backfill random source.
func (s *BrowseService) WithRandom(rng *rand.Rand) *BrowseService {
	s.rec = discovery.NewRecommender(rng)
	return s
}

// UseSnapshot makes catalog reads prefer the live in-memory snapshot of all
// published listings once it has been populated.
func (s *BrowseService) UseSnapshot(l *live.Latest[[]domain.Listing]) {
	s.snapshot = l
}

// LoadSnapshot reads every published listing; it is the recompute step for
// the live catalog snapshot.
func (s *BrowseService) LoadSnapshot(ctx context.Context, _ string) ([]domain.Listing, error) {
	return s.listings.ListPublished(ctx, "")
}

// Catalog returns the published listings of a category ("" = all).
func (s *BrowseService) Catalog(ctx context.Context, category string) ([]domain.Listing, error) {
	if s.snapshot != nil {
		if all, _, ok := s.snapshot.Load(); ok {
			return byCategory(all, category), nil
		}
	}

	key := catalogKey(category)
	var out []domain.Listing
	if s.cache != nil {
		ok, err := s.cache.Get(ctx, key, &out)
		switch {
		case ok && err == nil:
			return out, nil
		case ok:
			// undecodable entry; drop it so the next read repopulates
			log.Warn().Err(err).Str("key", key).Msg("catalog cache entry unreadable")
			_ = s.cache.Del(ctx, key)
		}
	}
	out, err := s.listings.ListPublished(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("list published %q: %w", category, err)
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, out, int(s.cacheTTL.Seconds()))
	}
	return out, nil
}

// Search filters the category catalog and renders the results header.
func (s *BrowseService) Search(ctx context.Context, category string, c domain.SearchCriteria) domain.SearchResult {
	catalog, err := s.Catalog(ctx, category)
	if err != nil {
		log.Warn().Err(err).Str("category", category).Msg("search: catalog unavailable")
	}
	return domain.SearchResult{
		Header: discovery.FormatSearchHeader(c),
		Items:  discovery.FilterListings(catalog, c),
	}
}

// Recommend suggests listings from the user's booking history. It waits for
// both the catalog and the history before computing.
func (s *BrowseService) Recommend(ctx context.Context, userID, category string) []domain.Listing {
	var catalog []domain.Listing
	var history []domain.Booking

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		catalog, err = s.Catalog(gctx, category)
		return err
	})
	g.Go(func() error {
		var err error
		history, err = s.bookings.ListByUser(gctx, userID)
		if err != nil {
			return fmt.Errorf("bookings of %s: %w", userID, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		log.Warn().Err(err).Str("user", userID).Msg("recommend: inputs unavailable")
		return []domain.Listing{}
	}

	r := s.rec.Recommend(catalog, history)
	observability.ObserveRecommendation(r.Primary, r.Backfill)
	if r.Items == nil {
		return []domain.Listing{}
	}
	return r.Items
}

func (s *BrowseService) GetListing(ctx context.Context, id string) (domain.Listing, error) {
	return s.listings.GetListing(ctx, id)
}

func (s *BrowseService) Favorites(ctx context.Context, userID string) ([]domain.Listing, error) {
	return s.favorites.ListFavorites(ctx, userID)
}

func (s *BrowseService) History(ctx context.Context, userID string) ([]domain.Booking, error) {
	return s.bookings.ListByUser(ctx, userID)
}

func byCategory(all []domain.Listing, category string) []domain.Listing {
	if category == "" {
		return all
	}
	out := make([]domain.Listing, 0, len(all))
	for _, l := range all {
		if l.Category == category {
			out = append(out, l)
		}
	}
	return out
}

func catalogKey(category string) string {
	if category == "" {
		return "catalog:all"
	}
	return "catalog:" + category
}
