package app

import (
	"crypto/sha1"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"homezy/internal/domain"
)

/********** alias registries (single source of truth) **********/

var listingAliases = map[string][]string{
	"id":          {"id", "_id", "docId", "listingId"},
	"host":        {"hostId", "host_id", "host.id", "ownerId", "userId"},
	"category":    {"category", "type", "kind"},
	"title":       {"title", "name", "headline"},
	"description": {"description", "desc", "summary"},
	"location":    {"location", "location.address", "address", "city"},
	"price":       {"price", "pricePerNight", "price_per_night", "rate"},
	"guests":      {"guestSize", "guestCapacity", "guest_capacity", "maxGuests", "guests"},
	"start":       {"availability.start", "availability.startDate", "availabilityStart", "availableFrom", "startDate", "available_from"},
	"end":         {"availability.end", "availability.endDate", "availabilityEnd", "availableTo", "endDate", "available_to"},
	"images":      {"images", "photos", "imageUrls", "gallery"},
	"status":      {"status", "state"},
}

var bookingAliases = map[string][]string{
	"id":       {"id", "_id", "bookingId"},
	"user":     {"userId", "guestId", "user.id", "user_id"},
	"listing":  {"listingId", "listing.id", "listing_id"},
	"host":     {"hostId", "listing.hostId", "host_id"},
	"location": {"location", "listing.location", "listingLocation"},
	"price":    {"price", "listing.price", "basePrice"},
	"final":    {"finalPrice", "final_price", "totalPrice", "total"},
	"nights":   {"nights", "numberOfNights"},
	"status":   {"status", "state"},
	"created":  {"createdAt", "created_at", "timestamp"},
}

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// firstStr returns the first non-empty string (or number rendered as string) among paths.
func firstStr(m map[string]any, paths ...string) string {
	for _, p := range paths {
		switch v := lookupAny(m, p).(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

// firstFloat: number from several paths (float64/int/string like "3,000.50").
// Missing or unparsable values yield 0.
func firstFloat(m map[string]any, paths ...string) float64 {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			return v
		case int:
			return float64(v)
		case string:
			s := strings.TrimSpace(strings.ReplaceAll(v, ",", ""))
			if s == "" {
				continue
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return f
			}
		}
	}
	return 0
}

// firstInt: int from several paths; unparsable values yield 0.
func firstInt(m map[string]any, paths ...string) int {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			return int(v)
		case int:
			return v
		case string:
			s := strings.TrimSpace(v)
			if s == "" {
				continue
			}
			n, err := strconv.Atoi(s)
			if err != nil {
				return 0
			}
			return n
		}
	}
	return 0
}

// firstTime accepts "2006-01-02", RFC3339, {"seconds": n} / {"_seconds": n}
// timestamps and unix seconds or milliseconds.
func firstTime(m map[string]any, paths ...string) time.Time {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case string:
			s := strings.TrimSpace(v)
			for _, layout := range []string{"2006-01-02", time.RFC3339Nano, time.RFC3339} {
				if t, err := time.Parse(layout, s); err == nil {
					return t.UTC()
				}
			}
		case float64:
			return fromUnix(v)
		case map[string]any:
			for _, sk := range []string{"seconds", "_seconds"} {
				if secs, ok := v[sk].(float64); ok {
					return time.Unix(int64(secs), 0).UTC()
				}
			}
		}
	}
	return time.Time{}
}

func fromUnix(v float64) time.Time {
	if v > 1e11 {
		return time.UnixMilli(int64(v)).UTC()
	}
	return time.Unix(int64(v), 0).UTC()
}

// firstSliceStrings: accept []any with either strings or {url/src}.
func firstSliceStrings(m map[string]any, paths ...string) []string {
	for _, k := range paths {
		if raw, ok := lookupAny(m, k).([]any); ok {
			out := make([]string, 0, len(raw))
			for _, it := range raw {
				switch t := it.(type) {
				case string:
					if t != "" {
						out = append(out, t)
					}
				case map[string]any:
					if u, ok := t["url"].(string); ok && u != "" {
						out = append(out, u)
						continue
					}
					if u, ok := t["src"].(string); ok && u != "" {
						out = append(out, u)
					}
				}
			}
			if len(out) > 0 {
				return out
			}
		}
	}
	return nil
}

/********** listing mapper **********/

// mapListing maps a backend document. Missing numbers become 0 and missing
// dates stay zero; ok is false when the document has no id.
func mapListing(d map[string]any, category string) (domain.Listing, bool) {
	id := firstStr(d, listingAliases["id"]...)
	if id == "" {
		return domain.Listing{}, false
	}
	l := domain.Listing{
		ID:                id,
		HostID:            firstStr(d, listingAliases["host"]...),
		Category:          strings.ToLower(firstStr(d, listingAliases["category"]...)),
		Title:             firstStr(d, listingAliases["title"]...),
		Description:       firstStr(d, listingAliases["description"]...),
		Location:          firstStr(d, listingAliases["location"]...),
		Price:             firstFloat(d, listingAliases["price"]...),
		GuestCapacity:     firstInt(d, listingAliases["guests"]...),
		AvailabilityStart: domain.Date(firstTime(d, listingAliases["start"]...)),
		AvailabilityEnd:   domain.Date(firstTime(d, listingAliases["end"]...)),
		Images:            firstSliceStrings(d, listingAliases["images"]...),
		Status:            domain.ListingPublished,
	}
	if !domain.ValidCategory(l.Category) {
		l.Category = category
	}
	if s := strings.ToLower(firstStr(d, listingAliases["status"]...)); s == string(domain.ListingDraft) {
		l.Status = domain.ListingDraft
	}
	if l.Price < 0 {
		l.Price = 0
	}
	if l.GuestCapacity < 0 {
		l.GuestCapacity = 0
	}
	if l.Title == "" {
		l.Title = "Untitled"
	}
	return l, true
}

/********** booking mapper **********/

func mapBooking(d map[string]any, userID string) (domain.Booking, bool) {
	b := domain.Booking{
		UserID:     firstStr(d, bookingAliases["user"]...),
		ListingID:  firstStr(d, bookingAliases["listing"]...),
		HostID:     firstStr(d, bookingAliases["host"]...),
		Location:   firstStr(d, bookingAliases["location"]...),
		Price:      firstFloat(d, bookingAliases["price"]...),
		FinalPrice: firstFloat(d, bookingAliases["final"]...),
		Nights:     firstInt(d, bookingAliases["nights"]...),
		Status:     domain.BookingStatus(strings.ToLower(firstStr(d, bookingAliases["status"]...))),
		CreatedAt:  firstTime(d, bookingAliases["created"]...),
	}
	if b.ListingID == "" {
		return domain.Booking{}, false
	}
	if b.UserID == "" {
		b.UserID = userID
	}
	switch b.Status {
	case domain.BookingPending, domain.BookingConfirmed, domain.BookingRejected, domain.BookingCancelled:
	default:
		b.Status = domain.BookingPending
	}

	// prefer the backend id; else synthesize a stable one so re-syncs upsert
	if id := firstStr(d, bookingAliases["id"]...); id != "" {
		b.ID = id
	} else {
		sig := strings.Join([]string{b.UserID, b.ListingID, b.CreatedAt.Format(time.RFC3339)}, "|")
		sum := sha1.Sum([]byte(sig))
		b.ID = hex.EncodeToString(sum[:])
	}
	return b, true
}
