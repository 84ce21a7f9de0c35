package httpserver

import (
	"net/http"
	"strconv"

	"stayhub/internal/app"
	"stayhub/internal/domain"
)

// Tenant-facing mutation handlers. The Auth middleware has already required
// the TENANT role; the services re-check ownership per entity.

type roomBody struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Image       *string `json:"image"`
	BasePrice   *int64  `json:"basePrice"`
	Qty         *int    `json:"qty"`
	Capacity    *int    `json:"capacity"`
}

func (h *Handlers) createRoom(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFrom(r.Context())
	propertyID, ok := pathID(w, r, "propertyID")
	if !ok {
		return
	}
	var in roomBody
	if !decodeBody(w, r, &in) {
		return
	}
	room, err := h.Tenant.CreateRoom(r.Context(), actor, propertyID, app.RoomInput{
		Name:        strDeref(in.Name),
		Description: strDeref(in.Description),
		Image:       in.Image,
		BasePrice:   i64Deref(in.BasePrice),
		Quantity:    intDeref(in.Qty),
		Capacity:    intDeref(in.Capacity),
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"message": "room created", "data": roomDTO(room)})
}

func (h *Handlers) updateRoom(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFrom(r.Context())
	roomID, ok := pathID(w, r, "roomID")
	if !ok {
		return
	}
	var in roomBody
	if !decodeBody(w, r, &in) {
		return
	}
	room, err := h.Tenant.UpdateRoom(r.Context(), actor, roomID, app.RoomUpdate{
		Name:        in.Name,
		Description: in.Description,
		Image:       in.Image,
		BasePrice:   in.BasePrice,
		Quantity:    in.Qty,
		Capacity:    in.Capacity,
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "room updated", "data": roomDTO(room)})
}

func (h *Handlers) deleteRoom(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFrom(r.Context())
	roomID, ok := pathID(w, r, "roomID")
	if !ok {
		return
	}
	if err := h.Tenant.SoftDeleteRoom(r.Context(), actor, roomID); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "room deleted"})
}

func (h *Handlers) restoreRoom(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFrom(r.Context())
	roomID, ok := pathID(w, r, "roomID")
	if !ok {
		return
	}
	if err := h.Tenant.RestoreRoom(r.Context(), actor, roomID); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "room restored"})
}

func (h *Handlers) tenantRooms(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFrom(r.Context())
	rooms, err := h.Tenant.ListRooms(r.Context(), actor)
	if err != nil {
		writeErr(w, err)
		return
	}
	out := make([]map[string]any, 0, len(rooms))
	for _, room := range rooms {
		out = append(out, roomDTO(room))
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": out})
}

func (h *Handlers) tenantRoom(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFrom(r.Context())
	roomID, ok := pathID(w, r, "roomID")
	if !ok {
		return
	}
	room, err := h.Tenant.GetRoom(r.Context(), actor, roomID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": roomDTO(room)})
}

func (h *Handlers) setPeakRate(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFrom(r.Context())
	roomID, ok := pathID(w, r, "roomID")
	if !ok {
		return
	}
	var in struct {
		StartDate domain.Date `json:"startDate"`
		EndDate   domain.Date `json:"endDate"`
		Type      string      `json:"priceModifierType"`
		Value     float64     `json:"priceModifierValue"`
	}
	if !decodeBody(w, r, &in) {
		return
	}
	rate, err := h.Tenant.SetPeakRate(r.Context(), actor, roomID, app.RateInput{
		StartDate: in.StartDate,
		EndDate:   in.EndDate,
		Type:      domain.ModifierType(in.Type),
		Value:     in.Value,
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"message": "peak season rate set", "data": rateDTO(rate)})
}

func (h *Handlers) listPeakRates(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFrom(r.Context())
	roomID, ok := pathID(w, r, "roomID")
	if !ok {
		return
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	rates, err := h.Tenant.ListPeakRates(r.Context(), actor, roomID, domain.PageQuery{Page: page, Limit: limit})
	if err != nil {
		writeErr(w, err)
		return
	}
	items := make([]map[string]any, 0, len(rates.Items))
	for _, rate := range rates.Items {
		items = append(items, rateDTO(rate))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"data": items, "total": rates.Total, "page": rates.Page, "limit": rates.Limit,
	})
}

func (h *Handlers) setAvailability(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFrom(r.Context())
	roomID, ok := pathID(w, r, "roomID")
	if !ok {
		return
	}
	var in struct {
		Date      domain.Date `json:"date"`
		Available int         `json:"available"`
	}
	if !decodeBody(w, r, &in) {
		return
	}
	if in.Date.IsZero() {
		writeProblem(w, http.StatusBadRequest, "Invalid body", "date is required (YYYY-MM-DD)")
		return
	}
	if err := h.Tenant.SetAvailability(r.Context(), actor, roomID, in.Date, in.Available); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "availability set"})
}

func (h *Handlers) clearAvailability(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFrom(r.Context())
	roomID, ok := pathID(w, r, "roomID")
	if !ok {
		return
	}
	var in struct {
		Date domain.Date `json:"date"`
	}
	if !decodeBody(w, r, &in) {
		return
	}
	if in.Date.IsZero() {
		writeProblem(w, http.StatusBadRequest, "Invalid body", "date is required (YYYY-MM-DD)")
		return
	}
	if err := h.Tenant.ClearAvailability(r.Context(), actor, roomID, in.Date); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "availability cleared"})
}

// ---- DTO helpers ----

func roomDTO(room domain.Room) map[string]any {
	return map[string]any{
		"id":          room.ID,
		"propertyId":  room.PropertyID,
		"name":        room.Name,
		"description": room.Description,
		"image":       room.Image,
		"basePrice":   room.BasePrice,
		"qty":         room.Quantity,
		"capacity":    room.Capacity,
		"deleted":     room.DeletedAt != nil,
	}
}

func rateDTO(rate domain.PeakSeasonRate) map[string]any {
	return map[string]any{
		"id":                 rate.ID,
		"roomId":             rate.RoomID,
		"startDate":          rate.StartDate,
		"endDate":            rate.EndDate,
		"priceModifierType":  rate.Type,
		"priceModifierValue": rate.Value,
	}
}

func strDeref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func intDeref(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func i64Deref(p *int64) int64 {
	if p == nil {
		return 0
	}
	return *p
}
