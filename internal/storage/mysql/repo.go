package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	driver "github.com/go-sql-driver/mysql"

	"homezy/internal/domain"
)

// errDupEntry is MySQL's ER_DUP_ENTRY.
const errDupEntry = 1062

func valStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func valDate(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return domain.Date(t)
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// ---- listings ----

func (r *Repo) UpsertListing(ctx context.Context, l domain.Listing) error {
	imgs := l.Images
	if imgs == nil {
		imgs = []string{}
	}
	b, err := json.Marshal(imgs)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, upsertListingSQL,
		l.ID,
		l.HostID,
		l.Category,
		l.Title,
		valStr(l.Description),
		l.Location,
		l.Price,
		l.GuestCapacity,
		valDate(l.AvailabilityStart),
		valDate(l.AvailabilityEnd),
		string(b),
		string(l.Status),
	)
	return err
}

func (r *Repo) GetListing(ctx context.Context, id string) (domain.Listing, error) {
	l, err := scanListing(r.db.QueryRowContext(ctx, getListingSQL, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Listing{}, domain.ErrNotFound
	}
	return l, err
}

func (r *Repo) ListPublished(ctx context.Context, category string) ([]domain.Listing, error) {
	rows, err := r.db.QueryContext(ctx, listPublishedSQL, category, category)
	if err != nil {
		return nil, err
	}
	return collectListings(rows)
}

type scanner interface{ Scan(dest ...any) error }

func scanListing(s scanner) (domain.Listing, error) {
	var l domain.Listing
	var desc sql.NullString
	var start, end sql.NullTime
	var imgs []byte
	var status string
	if err := s.Scan(
		&l.ID, &l.HostID, &l.Category, &l.Title, &desc, &l.Location,
		&l.Price, &l.GuestCapacity, &start, &end, &imgs, &status, &l.UpdatedAt,
	); err != nil {
		return domain.Listing{}, err
	}
	l.Description = desc.String
	if start.Valid {
		l.AvailabilityStart = domain.Date(start.Time)
	}
	if end.Valid {
		l.AvailabilityEnd = domain.Date(end.Time)
	}
	if len(imgs) > 0 {
		_ = json.Unmarshal(imgs, &l.Images)
	}
	l.Status = domain.ListingStatus(status)
	return l, nil
}

func collectListings(rows *sql.Rows) ([]domain.Listing, error) {
	defer rows.Close()
	var out []domain.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// ---- bookings ----

func (r *Repo) UpsertBookings(ctx context.Context, bs []domain.Booking) error {
	if len(bs) == 0 {
		return nil
	}
	values := make([]string, 0, len(bs))
	args := make([]any, 0, len(bs)*10)
	for _, b := range bs {
		created := b.CreatedAt
		if created.IsZero() {
			created = time.Now().UTC()
		}
		values = append(values, "(?,?,?,?,?,?,?,?,?,?)")
		args = append(args,
			b.ID, b.UserID, b.ListingID, b.HostID, b.Location,
			b.Price, b.FinalPrice, b.Nights, string(b.Status), created,
		)
	}
	sqlStr := insertBookingsPrefix + strings.Join(values, ",") + insertBookingsOnDup
	_, err := r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *Repo) GetBooking(ctx context.Context, id string) (domain.Booking, error) {
	b, err := scanBooking(r.db.QueryRowContext(ctx, getBookingSQL, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Booking{}, domain.ErrNotFound
	}
	return b, err
}

func (r *Repo) UpdateBookingStatus(ctx context.Context, id string, status domain.BookingStatus) error {
	res, err := r.db.ExecContext(ctx, updateBookingStatusSQL, string(status), id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// MySQL reports 0 for unchanged rows too; tell them apart.
		if _, gerr := r.GetBooking(ctx, id); gerr != nil {
			return gerr
		}
	}
	return nil
}

func (r *Repo) ListByUser(ctx context.Context, userID string) ([]domain.Booking, error) {
	return r.listBookings(ctx, listBookingsByUserSQL, userID)
}

func (r *Repo) ListByHost(ctx context.Context, hostID string) ([]domain.Booking, error) {
	return r.listBookings(ctx, listBookingsByHostSQL, hostID)
}

func (r *Repo) listBookings(ctx context.Context, q, arg string) ([]domain.Booking, error) {
	rows, err := r.db.QueryContext(ctx, q, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func scanBooking(s scanner) (domain.Booking, error) {
	var b domain.Booking
	var status string
	if err := s.Scan(
		&b.ID, &b.UserID, &b.ListingID, &b.HostID, &b.Location,
		&b.Price, &b.FinalPrice, &b.Nights, &status, &b.CreatedAt,
	); err != nil {
		return domain.Booking{}, err
	}
	b.Status = domain.BookingStatus(status)
	return b, nil
}

// ---- favorites ----

func (r *Repo) AddFavorite(ctx context.Context, userID, listingID string) error {
	_, err := r.db.ExecContext(ctx, insertFavoriteSQL, userID, listingID)
	return err
}

func (r *Repo) RemoveFavorite(ctx context.Context, userID, listingID string) error {
	_, err := r.db.ExecContext(ctx, deleteFavoriteSQL, userID, listingID)
	return err
}

func (r *Repo) ListFavorites(ctx context.Context, userID string) ([]domain.Listing, error) {
	rows, err := r.db.QueryContext(ctx, listFavoritesSQL, userID)
	if err != nil {
		return nil, err
	}
	return collectListings(rows)
}

// ---- messaging ----

func (r *Repo) CreateThread(ctx context.Context, t domain.Thread) error {
	_, err := r.db.ExecContext(ctx, insertThreadSQL, t.ID, t.GuestID, t.HostID, t.ListingID)
	return mapDup(err)
}

func (r *Repo) GetThread(ctx context.Context, id string) (domain.Thread, error) {
	return scanThread(r.db.QueryRowContext(ctx, getThreadSQL, id))
}

func (r *Repo) FindThread(ctx context.Context, guestID, hostID, listingID string) (domain.Thread, error) {
	return scanThread(r.db.QueryRowContext(ctx, findThreadSQL, guestID, hostID, listingID))
}

func scanThread(s scanner) (domain.Thread, error) {
	var t domain.Thread
	err := s.Scan(&t.ID, &t.GuestID, &t.HostID, &t.ListingID, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Thread{}, domain.ErrNotFound
	}
	return t, err
}

func (r *Repo) InsertMessage(ctx context.Context, m domain.StoredMessage) error {
	_, err := r.db.ExecContext(ctx, insertMessageSQL, m.ID, m.ThreadID, m.SenderID, valStr(m.LocalID), m.Text, m.SentAt)
	return mapDup(err)
}

func (r *Repo) ListMessages(ctx context.Context, threadID string) ([]domain.StoredMessage, error) {
	rows, err := r.db.QueryContext(ctx, listMessagesSQL, threadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.StoredMessage
	for rows.Next() {
		var m domain.StoredMessage
		var local sql.NullString
		if err := rows.Scan(&m.ID, &m.ThreadID, &m.SenderID, &local, &m.Text, &m.SentAt); err != nil {
			return nil, err
		}
		m.LocalID = local.String
		out = append(out, m)
	}
	return out, rows.Err()
}

func mapDup(err error) error {
	var me *driver.MySQLError
	if errors.As(err, &me) && me.Number == errDupEntry {
		return fmt.Errorf("%w: %s", domain.ErrConflict, me.Message)
	}
	return err
}
