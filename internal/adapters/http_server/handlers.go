// internal/adapters/http_server/handlers.go
package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"homezy/internal/app"
	"homezy/internal/chat"
	"homezy/internal/domain"
)

const dateLayout = "2006-01-02"

type Handlers struct {
	Browse   *app.BrowseService
	Listings *app.ListingService
	Bookings *app.BookingService
	Messages *app.MessageService
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Route("/v1", func(r chi.Router) {
		r.Get("/listings", h.searchListings)
		r.Post("/listings", h.createListing)
		r.Get("/listings/{id}", h.getListing)
		r.Patch("/listings/{id}", h.updateListing)

		r.Get("/users/{id}/recommendations", h.recommendations)
		r.Get("/users/{id}/bookings", h.userBookings)
		r.Get("/users/{id}/favorites", h.favorites)
		r.Put("/users/{id}/favorites/{listingID}", h.addFavorite)
		r.Delete("/users/{id}/favorites/{listingID}", h.removeFavorite)

		r.Post("/bookings", h.createBooking)
		r.Patch("/bookings/{id}/status", h.setBookingStatus)
		r.Get("/hosts/{id}/earnings", h.earnings)

		r.Post("/threads", h.openThread)
		r.Get("/threads/{id}/messages", h.listMessages)
		r.Post("/threads/{id}/messages", h.sendMessage)
		r.Post("/threads/{id}/sync", h.syncThread)
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps domain errors onto problem responses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, domain.ErrValidation):
		writeProblem(w, http.StatusUnprocessableEntity, "Invalid Request", err.Error())
	case errors.Is(err, domain.ErrInvalidTransition), errors.Is(err, domain.ErrConflict):
		writeProblem(w, http.StatusConflict, "Conflict", err.Error())
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func writeTagged(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write tagged body")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// page wraps a collection, rendering nil as an empty array.
func page[T any](items []T) map[string]any {
	if items == nil {
		items = []T{}
	}
	return map[string]any{"items": items}
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(dst); err != nil {
		writeProblem(w, http.StatusBadRequest, "Malformed Body", err.Error())
		return false
	}
	return true
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(dateLayout, s)
}

// ---- browse ----

func parseCriteria(r *http.Request) (domain.SearchCriteria, error) {
	q := r.URL.Query()
	c := domain.SearchCriteria{Location: strings.TrimSpace(q.Get("location"))}

	d, err := parseDate(q.Get("date"))
	if err != nil {
		return c, errors.New("date must be YYYY-MM-DD")
	}
	c.Date = d

	for _, f := range []struct {
		name string
		dst  *int
	}{
		{"adults", &c.Guests.Adults},
		{"children", &c.Guests.Children},
		{"infants", &c.Guests.Infants},
		{"pets", &c.Guests.Pets},
	} {
		v := q.Get(f.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return c, errors.New(f.name + " must be a non-negative integer")
		}
		*f.dst = n
	}
	return c, nil
}

func (h *Handlers) searchListings(w http.ResponseWriter, r *http.Request) {
	c, err := parseCriteria(r)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Query", err.Error())
		return
	}
	res := h.Browse.Search(r.Context(), r.URL.Query().Get("category"), c)
	if res.Items == nil {
		res.Items = []domain.Listing{}
	}
	writeTagged(w, r, res)
}

func (h *Handlers) getListing(w http.ResponseWriter, r *http.Request) {
	l, err := h.Browse.GetListing(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeTagged(w, r, l)
}

func (h *Handlers) recommendations(w http.ResponseWriter, r *http.Request) {
	out := h.Browse.Recommend(r.Context(), chi.URLParam(r, "id"), r.URL.Query().Get("category"))
	writeJSON(w, http.StatusOK, page(out))
}

func (h *Handlers) userBookings(w http.ResponseWriter, r *http.Request) {
	out, err := h.Browse.History(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page(out))
}

func (h *Handlers) favorites(w http.ResponseWriter, r *http.Request) {
	out, err := h.Browse.Favorites(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page(out))
}

func (h *Handlers) addFavorite(w http.ResponseWriter, r *http.Request) {
	if err := h.Bookings.AddFavorite(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "listingID")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) removeFavorite(w http.ResponseWriter, r *http.Request) {
	if err := h.Bookings.RemoveFavorite(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "listingID")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- listings ----

type listingBody struct {
	HostID            string   `json:"host_id"`
	Category          string   `json:"category"`
	Title             string   `json:"title"`
	Description       string   `json:"description"`
	Location          string   `json:"location"`
	Price             float64  `json:"price"`
	GuestCapacity     int      `json:"guest_capacity"`
	AvailabilityStart string   `json:"availability_start"`
	AvailabilityEnd   string   `json:"availability_end"`
	Images            []string `json:"images"`
}

func (h *Handlers) createListing(w http.ResponseWriter, r *http.Request) {
	var in listingBody
	if !decode(w, r, &in) {
		return
	}
	start, err1 := parseDate(in.AvailabilityStart)
	end, err2 := parseDate(in.AvailabilityEnd)
	if err1 != nil || err2 != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Date", "availability dates must be YYYY-MM-DD")
		return
	}
	l, err := h.Listings.Create(r.Context(), domain.Listing{
		HostID:            in.HostID,
		Category:          in.Category,
		Title:             strings.TrimSpace(in.Title),
		Description:       in.Description,
		Location:          strings.TrimSpace(in.Location),
		Price:             in.Price,
		GuestCapacity:     in.GuestCapacity,
		AvailabilityStart: start,
		AvailabilityEnd:   end,
		Images:            in.Images,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/v1/listings/"+l.ID)
	writeJSON(w, http.StatusCreated, l)
}

type listingPatchBody struct {
	Title             *string  `json:"title"`
	Description       *string  `json:"description"`
	Location          *string  `json:"location"`
	Price             *float64 `json:"price"`
	GuestCapacity     *int     `json:"guest_capacity"`
	AvailabilityStart *string  `json:"availability_start"`
	AvailabilityEnd   *string  `json:"availability_end"`
	Images            []string `json:"images"`
	Status            *string  `json:"status"`
}

func (h *Handlers) updateListing(w http.ResponseWriter, r *http.Request) {
	var in listingPatchBody
	if !decode(w, r, &in) {
		return
	}
	p := app.ListingPatch{
		Title:         in.Title,
		Description:   in.Description,
		Location:      in.Location,
		Price:         in.Price,
		GuestCapacity: in.GuestCapacity,
		Images:        in.Images,
	}
	for _, d := range []struct {
		src *string
		dst **time.Time
	}{
		{in.AvailabilityStart, &p.AvailabilityStart},
		{in.AvailabilityEnd, &p.AvailabilityEnd},
	} {
		if d.src == nil {
			continue
		}
		t, err := parseDate(*d.src)
		if err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid Date", "availability dates must be YYYY-MM-DD")
			return
		}
		*d.dst = &t
	}
	if in.Status != nil {
		s := domain.ListingStatus(*in.Status)
		p.Status = &s
	}

	l, err := h.Listings.Update(r.Context(), chi.URLParam(r, "id"), p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

// ---- bookings ----

func (h *Handlers) createBooking(w http.ResponseWriter, r *http.Request) {
	var in app.BookingRequest
	if !decode(w, r, &in) {
		return
	}
	b, err := h.Bookings.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (h *Handlers) setBookingStatus(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Status string `json:"status"`
	}
	if !decode(w, r, &in) {
		return
	}
	b, err := h.Bookings.SetStatus(r.Context(), chi.URLParam(r, "id"), domain.BookingStatus(in.Status))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *Handlers) earnings(w http.ResponseWriter, r *http.Request) {
	e, err := h.Bookings.Earnings(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// ---- messaging ----

func (h *Handlers) openThread(w http.ResponseWriter, r *http.Request) {
	var in struct {
		GuestID   string `json:"guest_id"`
		HostID    string `json:"host_id"`
		ListingID string `json:"listing_id"`
	}
	if !decode(w, r, &in) {
		return
	}
	t, err := h.Messages.OpenThread(r.Context(), in.GuestID, in.HostID, in.ListingID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (h *Handlers) listMessages(w http.ResponseWriter, r *http.Request) {
	out, err := h.Messages.List(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page(out))
}

func (h *Handlers) sendMessage(w http.ResponseWriter, r *http.Request) {
	var in struct {
		SenderID string `json:"sender_id"`
		LocalID  string `json:"local_id"`
		Text     string `json:"text"`
	}
	if !decode(w, r, &in) {
		return
	}
	m, err := h.Messages.Send(r.Context(), chi.URLParam(r, "id"), in.SenderID, in.LocalID, in.Text)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (h *Handlers) syncThread(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Messages []chat.Message `json:"messages"`
	}
	if !decode(w, r, &in) {
		return
	}
	out, err := h.Messages.Sync(r.Context(), chi.URLParam(r, "id"), in.Messages)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page(out))
}
