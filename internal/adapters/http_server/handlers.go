package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"stayhub/internal/app"
	"stayhub/internal/domain"
)

type Handlers struct {
	Explore  *app.ExploreService
	Tenant   *app.TenantService
	Bookings *app.BookingService
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers, jwtSecret []byte) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Get("/v1/properties/{id}", h.propertyDetail)
	s.mux.Get("/v1/properties/{id}/rooms", h.listRooms)
	s.mux.Get("/v1/properties/{id}/calendar", h.monthCalendar)
	s.mux.Get("/v1/properties/{id}/calendar/window", h.windowCalendar)

	s.mux.Group(func(r chi.Router) {
		r.Use(Auth(jwtSecret, domain.RoleUser, domain.RoleTenant))
		r.Post("/v1/bookings", h.createBooking)
		r.Post("/v1/bookings/{code}/confirm", h.confirmBooking)
	})

	s.mux.Group(func(r chi.Router) {
		r.Use(Auth(jwtSecret, domain.RoleTenant))
		r.Get("/v1/tenant/rooms", h.tenantRooms)
		r.Get("/v1/tenant/rooms/{roomID}", h.tenantRoom)
		r.Post("/v1/tenant/properties/{propertyID}/rooms", h.createRoom)
		r.Patch("/v1/tenant/rooms/{roomID}", h.updateRoom)
		r.Delete("/v1/tenant/rooms/{roomID}", h.deleteRoom)
		r.Post("/v1/tenant/rooms/{roomID}/restore", h.restoreRoom)
		r.Post("/v1/tenant/rooms/{roomID}/peak-rates", h.setPeakRate)
		r.Get("/v1/tenant/rooms/{roomID}/peak-rates", h.listPeakRates)
		r.Put("/v1/tenant/rooms/{roomID}/availability", h.setAvailability)
		r.Delete("/v1/tenant/rooms/{roomID}/availability", h.clearAvailability)
	})
}

// ---- public: explore ----

func (h *Handlers) propertyDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	days, ok := stayQuery(w, r)
	if !ok {
		return
	}
	resp, err := h.Explore.PropertyDetail(r.Context(), id, days)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeCachedJSON(w, r, resp)
}

func (h *Handlers) listRooms(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	days, ok := stayQuery(w, r)
	if !ok {
		return
	}
	resp, err := h.Explore.ListRooms(r.Context(), id, days)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeCachedJSON(w, r, map[string]any{"data": resp})
}

func (h *Handlers) monthCalendar(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	month := r.URL.Query().Get("month")
	if month == "" {
		writeProblem(w, http.StatusBadRequest, "Invalid month", "month query parameter is required (YYYY-MM)")
		return
	}
	resp, err := h.Explore.MonthCalendar(r.Context(), id, month)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeCachedJSON(w, r, map[string]any{"data": resp})
}

func (h *Handlers) windowCalendar(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	resp, err := h.Explore.WindowCalendar(r.Context(), id)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeCachedJSON(w, r, map[string]any{"data": resp})
}

// ---- bookings ----

func (h *Handlers) createBooking(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFrom(r.Context())
	if !ok {
		writeProblem(w, http.StatusUnauthorized, "Unauthorized", "no actor")
		return
	}
	var in struct {
		RoomID   int64       `json:"roomId"`
		CheckIn  domain.Date `json:"checkIn"`
		CheckOut domain.Date `json:"checkOut"`
		Qty      int         `json:"qty"`
	}
	if !decodeBody(w, r, &in) {
		return
	}
	b, err := h.Bookings.CreateBooking(r.Context(), actor, in.RoomID, in.CheckIn, in.CheckOut, in.Qty)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"message": "booking created", "data": bookingDTO(b)})
}

func (h *Handlers) confirmBooking(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	b, err := h.Bookings.ConfirmBooking(r.Context(), code)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "booking " + string(b.Status), "data": bookingDTO(b)})
}

func bookingDTO(b domain.Booking) map[string]any {
	return map[string]any{
		"code":       b.Code,
		"roomId":     b.RoomID,
		"checkIn":    b.CheckIn,
		"checkOut":   b.CheckOut,
		"qty":        b.Qty,
		"totalPrice": b.TotalPrice,
		"status":     b.Status,
	}
}

// ---- shared plumbing ----

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", name+" must be a positive number")
		return 0, false
	}
	return id, true
}

// stayQuery parses optional checkIn/checkOut query params into the inclusive
// day range explore endpoints price over. Both present or both absent.
func stayQuery(w http.ResponseWriter, r *http.Request) ([]domain.Date, bool) {
	inStr, outStr := r.URL.Query().Get("checkIn"), r.URL.Query().Get("checkOut")
	if inStr == "" && outStr == "" {
		return nil, true
	}
	if inStr == "" || outStr == "" {
		writeProblem(w, http.StatusBadRequest, "Invalid range", "checkIn and checkOut must be given together")
		return nil, false
	}
	in, err := domain.ParseDate(inStr)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid range", "checkIn must be YYYY-MM-DD")
		return nil, false
	}
	out, err := domain.ParseDate(outStr)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid range", "checkOut must be YYYY-MM-DD")
		return nil, false
	}
	days := domain.StayDays(in, out)
	if days == nil {
		writeProblem(w, http.StatusBadRequest, "Invalid range", "checkIn must be before checkOut")
		return nil, false
	}
	return days, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", err.Error())
		return false
	}
	return true
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeErr maps domain failures onto problem responses.
func writeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		writeProblem(w, http.StatusBadRequest, "Invalid Input", err.Error())
	case errors.Is(err, domain.ErrForbidden):
		writeProblem(w, http.StatusForbidden, "Forbidden", err.Error())
	case errors.Is(err, domain.ErrNoRooms):
		writeProblem(w, http.StatusNotFound, "No Price Available", "property has no active rooms")
	case errors.Is(err, domain.ErrRateOverlap):
		writeProblem(w, http.StatusConflict, "Rate Overlap", err.Error())
	case errors.Is(err, domain.ErrNoAvailability):
		writeProblem(w, http.StatusConflict, "No Availability", err.Error())
	case errors.Is(err, domain.ErrBadState):
		writeProblem(w, http.StatusConflict, "Conflict", err.Error())
	default:
		log.Error().Err(err).Msg("request failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "unexpected failure")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
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

// writeCachedJSON serves a public GET with a weak ETag and honors
// If-None-Match.
func writeCachedJSON(w http.ResponseWriter, r *http.Request, v any) {
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
		log.Error().Err(err).Msg("failed to write response body")
	}
}
