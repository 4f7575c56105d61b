package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"

	"homezy/internal/domain"
)

// ---- fakes ----

type fakeRepo struct {
	mu        sync.Mutex
	listings  map[string]domain.Listing
	order     []string
	bookings  map[string]domain.Booking
	favorites map[string][]string
	threads   map[string]domain.Thread
	messages  []domain.StoredMessage

	listErr    error
	bookingErr error
	listCalls  int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		listings:  map[string]domain.Listing{},
		bookings:  map[string]domain.Booking{},
		favorites: map[string][]string{},
		threads:   map[string]domain.Thread{},
	}
}

func (f *fakeRepo) UpsertListing(ctx context.Context, l domain.Listing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.listings[l.ID]; !ok {
		f.order = append(f.order, l.ID)
	}
	f.listings[l.ID] = l
	return nil
}

func (f *fakeRepo) GetListing(ctx context.Context, id string) (domain.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.listings[id]
	if !ok {
		return domain.Listing{}, domain.ErrNotFound
	}
	return l, nil
}

func (f *fakeRepo) ListPublished(ctx context.Context, category string) ([]domain.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []domain.Listing
	for _, id := range f.order {
		l := f.listings[id]
		if l.Status == domain.ListingPublished && (category == "" || l.Category == category) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeRepo) UpsertBookings(ctx context.Context, bs []domain.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range bs {
		f.bookings[b.ID] = b
	}
	return nil
}

func (f *fakeRepo) GetBooking(ctx context.Context, id string) (domain.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return domain.Booking{}, domain.ErrNotFound
	}
	return b, nil
}

func (f *fakeRepo) UpdateBookingStatus(ctx context.Context, id string, s domain.BookingStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return domain.ErrNotFound
	}
	b.Status = s
	f.bookings[id] = b
	return nil
}

func (f *fakeRepo) ListByUser(ctx context.Context, userID string) ([]domain.Booking, error) {
	return f.filterBookings(func(b domain.Booking) bool { return b.UserID == userID })
}

func (f *fakeRepo) ListByHost(ctx context.Context, hostID string) ([]domain.Booking, error) {
	return f.filterBookings(func(b domain.Booking) bool { return b.HostID == hostID })
}

func (f *fakeRepo) filterBookings(keep func(domain.Booking) bool) ([]domain.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.bookingErr != nil {
		return nil, f.bookingErr
	}
	var out []domain.Booking
	for _, b := range f.bookings {
		if keep(b) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeRepo) AddFavorite(ctx context.Context, userID, listingID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range f.favorites[userID] {
		if id == listingID {
			return nil
		}
	}
	f.favorites[userID] = append(f.favorites[userID], listingID)
	return nil
}

func (f *fakeRepo) RemoveFavorite(ctx context.Context, userID, listingID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := f.favorites[userID][:0]
	for _, id := range f.favorites[userID] {
		if id != listingID {
			ids = append(ids, id)
		}
	}
	f.favorites[userID] = ids
	return nil
}

func (f *fakeRepo) ListFavorites(ctx context.Context, userID string) ([]domain.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Listing
	for _, id := range f.favorites[userID] {
		out = append(out, f.listings[id])
	}
	return out, nil
}

func (f *fakeRepo) CreateThread(ctx context.Context, t domain.Thread) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, prev := range f.threads {
		if prev.GuestID == t.GuestID && prev.HostID == t.HostID && prev.ListingID == t.ListingID {
			return domain.ErrConflict
		}
	}
	f.threads[t.ID] = t
	return nil
}

func (f *fakeRepo) FindThread(ctx context.Context, guestID, hostID, listingID string) (domain.Thread, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.threads {
		if t.GuestID == guestID && t.HostID == hostID && t.ListingID == listingID {
			return t, nil
		}
	}
	return domain.Thread{}, domain.ErrNotFound
}

func (f *fakeRepo) GetThread(ctx context.Context, id string) (domain.Thread, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.threads[id]
	if !ok {
		return domain.Thread{}, domain.ErrNotFound
	}
	return t, nil
}

func (f *fakeRepo) InsertMessage(ctx context.Context, m domain.StoredMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, prev := range f.messages {
		if m.LocalID != "" && prev.ThreadID == m.ThreadID && prev.LocalID == m.LocalID {
			return domain.ErrConflict
		}
	}
	f.messages = append(f.messages, m)
	return nil
}

func (f *fakeRepo) ListMessages(ctx context.Context, threadID string) ([]domain.StoredMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.StoredMessage
	for _, m := range f.messages {
		if m.ThreadID == threadID {
			out = append(out, m)
		}
	}
	return out, nil
}

// fakeCache round-trips through JSON like the redis adapter does.
type fakeCache struct {
	mu    sync.Mutex
	store map[string][]byte
	dels  []string
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(v, dst)
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.store[key] = b
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, key)
	c.dels = append(c.dels, key)
	return nil
}

type fakeNotifier struct{ changed []string }

func (n *fakeNotifier) NotifyCatalogChanged(ctx context.Context, category string) error {
	n.changed = append(n.changed, category)
	return nil
}

type fakeBackend struct {
	listings map[string][]map[string]any
	bookings map[string][]map[string]any
	err      error
}

func (b *fakeBackend) PublishedListings(ctx context.Context, category string) ([]map[string]any, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.listings[category], nil
}

func (b *fakeBackend) UserBookings(ctx context.Context, userID string) ([]map[string]any, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.bookings[userID], nil
}

var errBoom = errors.New("boom")
