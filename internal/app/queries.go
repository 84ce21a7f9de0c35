package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"stayhub/internal/domain"
)

type ExploreService struct {
	repo     domain.ExploreRepository
	cache    domain.Cache
	cacheTTL time.Duration
	now      func() time.Time
}

func NewExploreService(r domain.ExploreRepository, c domain.Cache, ttl time.Duration) *ExploreService {
	return &ExploreService{repo: r, cache: c, cacheTTL: ttl, now: time.Now}
}

// PropertyDetail assembles the composed detail view: property metadata,
// room summaries priced and availability-checked over the requested days,
// and reviews. Days may be empty (no stay selected yet).
func (s *ExploreService) PropertyDetail(ctx context.Context, propertyID int64, days []domain.Date) (domain.PropertyDetail, error) {
	key := detailKey(propertyID, days)
	var cached domain.PropertyDetail
	if ok, _ := s.cache.Get(ctx, key, &cached); ok {
		return cached, nil
	}

	view, err := s.repo.GetPropertyView(ctx, propertyID)
	if err != nil {
		return domain.PropertyDetail{}, err
	}
	rooms, err := s.roomSummaries(ctx, propertyID, days)
	if err != nil {
		return domain.PropertyDetail{}, err
	}
	reviews, err := s.repo.ListReviews(ctx, propertyID)
	if err != nil {
		return domain.PropertyDetail{}, err
	}

	out := domain.PropertyDetail{
		ID:          view.ID,
		Name:        view.Name,
		Image:       view.Image,
		Address:     view.Address,
		Description: view.Description,
		City:        view.City,
		Category:    view.Category,
		Images:      view.Images,
		Rooms:       rooms,
		Reviews:     reviews,
	}

	// size guard before caching the composed view
	if b, _ := json.Marshal(out); len(b) < 1_000_000 {
		_ = s.cache.Set(ctx, key, out, int(s.cacheTTL.Seconds()))
	}
	return out, nil
}

// ListRooms returns the property's active rooms with range-average price
// and minimum availability over the requested days.
func (s *ExploreService) ListRooms(ctx context.Context, propertyID int64, days []domain.Date) ([]domain.RoomSummary, error) {
	// Existence check keeps a bad ID a not-found rather than an empty list.
	if _, err := s.repo.GetProperty(ctx, propertyID); err != nil {
		return nil, err
	}
	return s.roomSummaries(ctx, propertyID, days)
}

func (s *ExploreService) roomSummaries(ctx context.Context, propertyID int64, days []domain.Date) ([]domain.RoomSummary, error) {
	rooms, err := s.repo.ListActiveRooms(ctx, propertyID, days)
	if err != nil {
		return nil, err
	}
	out := make([]domain.RoomSummary, 0, len(rooms))
	for _, room := range rooms {
		avg, err := AveragePrice(room, days)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.RoomSummary{
			ID:             room.ID,
			Name:           room.Name,
			Image:          room.Image,
			Description:    room.Description,
			Capacity:       room.Capacity,
			TotalAvailable: MinAvailable(room, days),
			EffectivePrice: RoundPrice(avg),
		})
	}
	return out, nil
}

// MonthCalendar computes per-day minimum prices for an explicit "YYYY-MM".
func (s *ExploreService) MonthCalendar(ctx context.Context, propertyID int64, month string) ([]domain.DayPrice, error) {
	first, last, err := domain.ParseMonth(month)
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("cal:%d:%s", propertyID, month)
	return s.calendar(ctx, propertyID, key, first, last)
}

// WindowCalendar computes per-day minimum prices over the two-month span:
// first day of the current month through the last day of the next month.
func (s *ExploreService) WindowCalendar(ctx context.Context, propertyID int64) ([]domain.DayPrice, error) {
	first, last := domain.RollingWindow(domain.DateOf(s.now()))
	key := fmt.Sprintf("calwin:%d:%s", propertyID, first)
	return s.calendar(ctx, propertyID, key, first, last)
}

func (s *ExploreService) calendar(ctx context.Context, propertyID int64, key string, first, last domain.Date) ([]domain.DayPrice, error) {
	var cached []domain.DayPrice
	if ok, _ := s.cache.Get(ctx, key, &cached); ok {
		return cached, nil
	}
	if _, err := s.repo.GetProperty(ctx, propertyID); err != nil {
		return nil, err
	}
	// Overrides don't affect prices, so the calendar loads rates only.
	rooms, err := s.repo.ListActiveRooms(ctx, propertyID, nil)
	if err != nil {
		return nil, err
	}
	prices, err := DailyMinPrices(rooms, domain.DaysBetween(first, last))
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, key, prices, int(s.cacheTTL.Seconds()))
	return prices, nil
}

func detailKey(propertyID int64, days []domain.Date) string {
	if len(days) == 0 {
		return fmt.Sprintf("property:%d:any", propertyID)
	}
	return fmt.Sprintf("property:%d:%s:%s", propertyID, days[0], days[len(days)-1])
}
