package app

import (
	"fmt"
	"math"

	"stayhub/internal/domain"
)

// Pricing core. Everything here is pure: rooms arrive with their peak rates
// and overrides already loaded, and no function reaches out to storage.
// Prices stay unrounded float64 internally; RoundPrice is applied exactly
// once, where a value crosses to a caller.

// EffectivePrice computes a room's price for one day. When several peak
// rates cover the day, the most recently created one wins (ties broken by
// higher ID); the write path rejects new overlaps, so this only matters for
// pre-existing data. A negative result is an error, never a value.
func EffectivePrice(room domain.Room, day domain.Date) (float64, error) {
	price := float64(room.BasePrice)
	var winner *domain.PeakSeasonRate
	for i := range room.PeakRates {
		r := &room.PeakRates[i]
		if !r.Contains(day) {
			continue
		}
		if winner == nil ||
			r.CreatedAt.After(winner.CreatedAt) ||
			(r.CreatedAt.Equal(winner.CreatedAt) && r.ID > winner.ID) {
			winner = r
		}
	}
	if winner != nil {
		switch winner.Type {
		case domain.ModifierPercentage:
			price += price * winner.Value / 100
		case domain.ModifierNominal:
			price += winner.Value
		default:
			return 0, fmt.Errorf("%w: unknown modifier type %q", domain.ErrInvalidInput, winner.Type)
		}
	}
	if price < 0 {
		return 0, fmt.Errorf("%w: negative price for room %d on %s", domain.ErrInvalidInput, room.ID, day)
	}
	return price, nil
}

// AveragePrice is the shared range-aware price used by both the property
// detail and the room listing: the mean of per-day effective prices over
// the stay. An empty day list falls back to the base price.
func AveragePrice(room domain.Room, days []domain.Date) (float64, error) {
	if len(days) == 0 {
		return float64(room.BasePrice), nil
	}
	var total float64
	for _, d := range days {
		p, err := EffectivePrice(room, d)
		if err != nil {
			return 0, err
		}
		total += p
	}
	return total / float64(len(days)), nil
}

// MinAvailable returns the smallest per-day unit count across the requested
// days. A day without an override row counts as the room's full quantity;
// an empty day list means no constraint applies.
func MinAvailable(room domain.Room, days []domain.Date) int {
	if len(days) == 0 {
		return room.Quantity
	}
	min := room.Quantity
	for _, d := range days {
		avail := room.Quantity
		for _, o := range room.Overrides {
			if o.Date.Equal(d) {
				avail = o.Available
				break
			}
		}
		if avail < min {
			min = avail
		}
	}
	return min
}

// DailyMinPrices builds the price calendar: for each day, the cheapest
// effective price across the property's rooms. An empty room list is an
// explicit failure; the calendar never carries a sentinel price.
func DailyMinPrices(rooms []domain.Room, days []domain.Date) ([]domain.DayPrice, error) {
	if len(rooms) == 0 {
		return nil, domain.ErrNoRooms
	}
	out := make([]domain.DayPrice, 0, len(days))
	for _, d := range days {
		var min float64
		for i, room := range rooms {
			p, err := EffectivePrice(room, d)
			if err != nil {
				return nil, err
			}
			if i == 0 || p < min {
				min = p
			}
		}
		out = append(out, domain.DayPrice{Date: d, Price: RoundPrice(min)})
	}
	return out, nil
}

// RoundPrice rounds to the nearest whole currency unit.
func RoundPrice(p float64) int64 { return int64(math.Round(p)) }
