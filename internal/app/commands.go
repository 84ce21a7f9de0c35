package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"stayhub/internal/domain"
)

type RoomInput struct {
	Name        string
	Description string
	Image       *string
	BasePrice   int64
	Quantity    int
	Capacity    int
}

type RoomUpdate struct {
	Name        *string
	Description *string
	Image       *string
	BasePrice   *int64
	Quantity    *int
	Capacity    *int
}

type RateInput struct {
	StartDate domain.Date
	EndDate   domain.Date
	Type      domain.ModifierType
	Value     float64
}

// TenantService owns every tenant-facing mutation. Each operation takes the
// Actor explicitly and re-checks role and ownership; nothing is inferred
// from ambient request state.
type TenantService struct {
	repo  domain.TenantRepository
	props domain.ExploreRepository
	cache domain.Cache
	now   func() time.Time
}

func NewTenantService(r domain.TenantRepository, p domain.ExploreRepository, c domain.Cache) *TenantService {
	return &TenantService{repo: r, props: p, cache: c, now: time.Now}
}

func (s *TenantService) CreateRoom(ctx context.Context, actor domain.Actor, propertyID int64, in RoomInput) (domain.Room, error) {
	prop, err := s.ownProperty(ctx, actor, propertyID)
	if err != nil {
		return domain.Room{}, err
	}
	if err := validateRoomInput(in); err != nil {
		return domain.Room{}, err
	}
	room := domain.Room{
		PropertyID:  prop.ID,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Image:       in.Image,
		BasePrice:   in.BasePrice,
		Quantity:    in.Quantity,
		Capacity:    in.Capacity,
	}
	id, err := s.repo.CreateRoom(ctx, room)
	if err != nil {
		return domain.Room{}, err
	}
	room.ID = id
	s.invalidateProperty(ctx, prop.ID)
	return room, nil
}

func (s *TenantService) UpdateRoom(ctx context.Context, actor domain.Actor, roomID int64, in RoomUpdate) (domain.Room, error) {
	room, err := s.ownRoom(ctx, actor, roomID)
	if err != nil {
		return domain.Room{}, err
	}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return domain.Room{}, fmt.Errorf("%w: room name must not be empty", domain.ErrInvalidInput)
		}
		room.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		room.Description = *in.Description
	}
	if in.Image != nil {
		room.Image = in.Image
	}
	if in.BasePrice != nil {
		if *in.BasePrice <= 0 {
			return domain.Room{}, fmt.Errorf("%w: base price must be positive", domain.ErrInvalidInput)
		}
		room.BasePrice = *in.BasePrice
	}
	if in.Quantity != nil {
		if *in.Quantity <= 0 {
			return domain.Room{}, fmt.Errorf("%w: quantity must be positive", domain.ErrInvalidInput)
		}
		room.Quantity = *in.Quantity
	}
	if in.Capacity != nil {
		if *in.Capacity <= 0 {
			return domain.Room{}, fmt.Errorf("%w: capacity must be positive", domain.ErrInvalidInput)
		}
		room.Capacity = *in.Capacity
	}
	if err := s.repo.UpdateRoom(ctx, room); err != nil {
		return domain.Room{}, err
	}
	s.invalidateProperty(ctx, room.PropertyID)
	return room, nil
}

func (s *TenantService) SoftDeleteRoom(ctx context.Context, actor domain.Actor, roomID int64) error {
	return s.setRoomDeleted(ctx, actor, roomID, true)
}

func (s *TenantService) RestoreRoom(ctx context.Context, actor domain.Actor, roomID int64) error {
	return s.setRoomDeleted(ctx, actor, roomID, false)
}

func (s *TenantService) setRoomDeleted(ctx context.Context, actor domain.Actor, roomID int64, deleted bool) error {
	room, err := s.ownRoom(ctx, actor, roomID)
	if err != nil {
		return err
	}
	if err := s.repo.SetRoomDeleted(ctx, roomID, deleted); err != nil {
		return err
	}
	s.invalidateProperty(ctx, room.PropertyID)
	return nil
}

func (s *TenantService) GetRoom(ctx context.Context, actor domain.Actor, roomID int64) (domain.Room, error) {
	return s.ownRoom(ctx, actor, roomID)
}

func (s *TenantService) ListRooms(ctx context.Context, actor domain.Actor) ([]domain.Room, error) {
	if !actor.IsTenant() {
		return nil, domain.ErrForbidden
	}
	return s.repo.ListTenantRooms(ctx, actor.UserID)
}

// SetPeakRate creates a peak-season rate after rejecting any overlap with an
// existing rate for the room, so "which rate wins" never depends on row
// order for data written through this path.
func (s *TenantService) SetPeakRate(ctx context.Context, actor domain.Actor, roomID int64, in RateInput) (domain.PeakSeasonRate, error) {
	room, err := s.ownRoom(ctx, actor, roomID)
	if err != nil {
		return domain.PeakSeasonRate{}, err
	}
	if in.StartDate.After(in.EndDate) {
		return domain.PeakSeasonRate{}, fmt.Errorf("%w: start date after end date", domain.ErrInvalidInput)
	}
	if !in.Type.Valid() {
		return domain.PeakSeasonRate{}, fmt.Errorf("%w: modifier type %q", domain.ErrInvalidInput, in.Type)
	}
	if in.Value <= 0 {
		return domain.PeakSeasonRate{}, fmt.Errorf("%w: modifier value must be positive", domain.ErrInvalidInput)
	}
	for _, r := range room.PeakRates {
		if r.Overlaps(in.StartDate, in.EndDate) {
			return domain.PeakSeasonRate{}, fmt.Errorf("%w: [%s, %s] overlaps rate %d",
				domain.ErrRateOverlap, in.StartDate, in.EndDate, r.ID)
		}
	}
	rate := domain.PeakSeasonRate{
		RoomID:    roomID,
		StartDate: in.StartDate,
		EndDate:   in.EndDate,
		Type:      in.Type,
		Value:     in.Value,
		CreatedAt: s.now().UTC(),
	}
	id, err := s.repo.CreatePeakRate(ctx, rate)
	if err != nil {
		return domain.PeakSeasonRate{}, err
	}
	rate.ID = id
	s.invalidateCalendars(ctx, room.PropertyID, rate.StartDate, rate.EndDate)
	return rate, nil
}

func (s *TenantService) ListPeakRates(ctx context.Context, actor domain.Actor, roomID int64, pg domain.PageQuery) (domain.RatesPage, error) {
	if _, err := s.ownRoom(ctx, actor, roomID); err != nil {
		return domain.RatesPage{}, err
	}
	if pg.Page <= 0 {
		pg.Page = 1
	}
	if pg.Limit <= 0 || pg.Limit > 100 {
		pg.Limit = 10
	}
	return s.repo.ListPeakRates(ctx, roomID, pg)
}

func (s *TenantService) SetAvailability(ctx context.Context, actor domain.Actor, roomID int64, date domain.Date, available int) error {
	room, err := s.ownRoom(ctx, actor, roomID)
	if err != nil {
		return err
	}
	if available < 0 {
		return fmt.Errorf("%w: available must not be negative", domain.ErrInvalidInput)
	}
	if err := s.repo.UpsertOverride(ctx, domain.AvailabilityOverride{RoomID: roomID, Date: date, Available: available}); err != nil {
		return err
	}
	s.invalidateProperty(ctx, room.PropertyID)
	return nil
}

func (s *TenantService) ClearAvailability(ctx context.Context, actor domain.Actor, roomID int64, date domain.Date) error {
	room, err := s.ownRoom(ctx, actor, roomID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteOverride(ctx, roomID, date); err != nil {
		return err
	}
	s.invalidateProperty(ctx, room.PropertyID)
	return nil
}

// ---- helpers ----

func (s *TenantService) ownProperty(ctx context.Context, actor domain.Actor, propertyID int64) (domain.Property, error) {
	if !actor.IsTenant() {
		return domain.Property{}, domain.ErrForbidden
	}
	prop, err := s.props.GetProperty(ctx, propertyID)
	if err != nil {
		return domain.Property{}, err
	}
	if prop.TenantID != actor.UserID {
		return domain.Property{}, domain.ErrForbidden
	}
	return prop, nil
}

func (s *TenantService) ownRoom(ctx context.Context, actor domain.Actor, roomID int64) (domain.Room, error) {
	if !actor.IsTenant() {
		return domain.Room{}, domain.ErrForbidden
	}
	room, err := s.repo.GetRoomAny(ctx, roomID)
	if err != nil {
		return domain.Room{}, err
	}
	if _, err := s.ownProperty(ctx, actor, room.PropertyID); err != nil {
		return domain.Room{}, err
	}
	return room, nil
}

func validateRoomInput(in RoomInput) error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return fmt.Errorf("%w: room name must not be empty", domain.ErrInvalidInput)
	case in.BasePrice <= 0:
		return fmt.Errorf("%w: base price must be positive", domain.ErrInvalidInput)
	case in.Quantity <= 0:
		return fmt.Errorf("%w: quantity must be positive", domain.ErrInvalidInput)
	case in.Capacity <= 0:
		return fmt.Errorf("%w: capacity must be positive", domain.ErrInvalidInput)
	}
	return nil
}

// invalidateProperty evicts the cached views a room or availability
// mutation can change: the undated detail variant plus the calendars
// covering the rolling window. Dated detail variants and month calendars
// outside the window age out by TTL.
func (s *TenantService) invalidateProperty(ctx context.Context, propertyID int64) {
	first, last := domain.RollingWindow(domain.DateOf(s.now()))
	s.invalidateCalendars(ctx, propertyID, first, last)
}

// invalidateCalendars evicts the undated detail variant, the window
// calendar, and every month calendar overlapping [start, end]. Rate writes
// name their range, so a rate for a far-future month evicts that month's
// calendar directly instead of waiting out the TTL.
func (s *TenantService) invalidateCalendars(ctx context.Context, propertyID int64, start, end domain.Date) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Del(ctx, fmt.Sprintf("property:%d:any", propertyID))
	first, _ := domain.RollingWindow(domain.DateOf(s.now()))
	_ = s.cache.Del(ctx, fmt.Sprintf("calwin:%d:%s", propertyID, first))
	for m := time.Date(start.Year, start.Month, 1, 0, 0, 0, 0, time.UTC); ; m = m.AddDate(0, 1, 0) {
		_ = s.cache.Del(ctx, fmt.Sprintf("cal:%d:%s", propertyID, m.Format("2006-01")))
		if m.Year() == end.Year && m.Month() == end.Month {
			break
		}
	}
}
