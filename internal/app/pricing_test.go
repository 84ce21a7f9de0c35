package app_test

import (
	"errors"
	"testing"
	"time"

	"stayhub/internal/app"
	"stayhub/internal/domain"
)

func date(s string) domain.Date {
	d, err := domain.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func dates(ss ...string) []domain.Date {
	out := make([]domain.Date, 0, len(ss))
	for _, s := range ss {
		out = append(out, date(s))
	}
	return out
}

func julyRate(typ domain.ModifierType, value float64) domain.PeakSeasonRate {
	return domain.PeakSeasonRate{
		ID:        1,
		StartDate: date("2024-07-01"),
		EndDate:   date("2024-07-10"),
		Type:      typ,
		Value:     value,
		CreatedAt: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestEffectivePrice_NoMatchingRate(t *testing.T) {
	room := domain.Room{BasePrice: 100000, PeakRates: []domain.PeakSeasonRate{julyRate(domain.ModifierPercentage, 10)}}

	p, err := app.EffectivePrice(room, date("2024-06-30"))
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if p != 100000 {
		t.Fatalf("expected base price 100000, got %v", p)
	}
}

func TestEffectivePrice_Percentage(t *testing.T) {
	room := domain.Room{BasePrice: 100000, PeakRates: []domain.PeakSeasonRate{julyRate(domain.ModifierPercentage, 10)}}

	p, err := app.EffectivePrice(room, date("2024-07-05"))
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if app.RoundPrice(p) != 110000 {
		t.Fatalf("expected 110000, got %v", p)
	}
}

func TestEffectivePrice_Nominal(t *testing.T) {
	room := domain.Room{BasePrice: 100000, PeakRates: []domain.PeakSeasonRate{julyRate(domain.ModifierNominal, 15000)}}

	p, err := app.EffectivePrice(room, date("2024-07-01"))
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if app.RoundPrice(p) != 115000 {
		t.Fatalf("expected 115000 on first day of range, got %v", p)
	}

	// one day past the inclusive end
	p, err = app.EffectivePrice(room, date("2024-07-11"))
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if app.RoundPrice(p) != 100000 {
		t.Fatalf("expected base price outside range, got %v", p)
	}
}

func TestEffectivePrice_RangeEndpointsInclusive(t *testing.T) {
	room := domain.Room{BasePrice: 100000, PeakRates: []domain.PeakSeasonRate{julyRate(domain.ModifierNominal, 15000)}}
	for _, d := range dates("2024-07-01", "2024-07-10") {
		p, err := app.EffectivePrice(room, d)
		if err != nil {
			t.Fatalf("err: %v", err)
		}
		if app.RoundPrice(p) != 115000 {
			t.Fatalf("expected modifier applied on %s, got %v", d, p)
		}
	}
}

func TestEffectivePrice_MostRecentRateWins(t *testing.T) {
	older := julyRate(domain.ModifierPercentage, 10)
	newer := julyRate(domain.ModifierNominal, 15000)
	newer.ID = 2
	newer.CreatedAt = older.CreatedAt.Add(24 * time.Hour)

	// storage order must not matter
	room := domain.Room{BasePrice: 100000, PeakRates: []domain.PeakSeasonRate{newer, older}}
	p, err := app.EffectivePrice(room, date("2024-07-05"))
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if app.RoundPrice(p) != 115000 {
		t.Fatalf("expected most recently created rate to win, got %v", p)
	}

	room.PeakRates = []domain.PeakSeasonRate{older, newer}
	p, _ = app.EffectivePrice(room, date("2024-07-05"))
	if app.RoundPrice(p) != 115000 {
		t.Fatalf("expected same winner regardless of order, got %v", p)
	}
}

func TestEffectivePrice_NegativeIsError(t *testing.T) {
	rate := julyRate(domain.ModifierNominal, -200000)
	room := domain.Room{BasePrice: 100000, PeakRates: []domain.PeakSeasonRate{rate}}

	_, err := app.EffectivePrice(room, date("2024-07-05"))
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestMinAvailable_OverrideWins(t *testing.T) {
	room := domain.Room{
		Quantity: 5,
		Overrides: []domain.AvailabilityOverride{
			{Date: date("2024-07-05"), Available: 2},
		},
	}
	got := app.MinAvailable(room, dates("2024-07-04", "2024-07-05", "2024-07-06"))
	if got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
}

func TestMinAvailable_NoOverrides(t *testing.T) {
	room := domain.Room{Quantity: 5}
	if got := app.MinAvailable(room, dates("2024-07-04", "2024-07-05")); got != 5 {
		t.Fatalf("expected full quantity, got %d", got)
	}
}

func TestMinAvailable_EmptyDays(t *testing.T) {
	room := domain.Room{
		Quantity:  5,
		Overrides: []domain.AvailabilityOverride{{Date: date("2024-07-05"), Available: 0}},
	}
	if got := app.MinAvailable(room, nil); got != 5 {
		t.Fatalf("expected quantity with no day constraints, got %d", got)
	}
}

func TestAveragePrice_AcrossRange(t *testing.T) {
	// 10 days at +10%, 1 day at base: (10*110000 + 100000) / 11
	room := domain.Room{BasePrice: 100000, PeakRates: []domain.PeakSeasonRate{julyRate(domain.ModifierPercentage, 10)}}
	days := domain.DaysBetween(date("2024-07-01"), date("2024-07-11"))

	avg, err := app.AveragePrice(room, days)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if got := app.RoundPrice(avg); got != 109091 {
		t.Fatalf("expected 109091, got %d", got)
	}
}

func TestAveragePrice_EmptyDaysFallsBackToBase(t *testing.T) {
	room := domain.Room{BasePrice: 123456}
	avg, err := app.AveragePrice(room, nil)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if avg != 123456 {
		t.Fatalf("expected base price, got %v", avg)
	}
}

func TestDailyMinPrices_MinAcrossRooms(t *testing.T) {
	cheap := domain.Room{ID: 1, BasePrice: 80000}
	pricey := domain.Room{ID: 2, BasePrice: 100000,
		PeakRates: []domain.PeakSeasonRate{julyRate(domain.ModifierNominal, -50000)}}
	// pricey drops to 50000 inside the rate range, else 100000

	days := dates("2024-06-30", "2024-07-01", "2024-07-02")
	out, err := app.DailyMinPrices([]domain.Room{cheap, pricey}, days)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(out))
	}
	want := []int64{80000, 50000, 50000}
	for i, dp := range out {
		if !dp.Date.Equal(days[i]) {
			t.Fatalf("entry %d: expected date %s, got %s", i, days[i], dp.Date)
		}
		if dp.Price != want[i] {
			t.Fatalf("entry %d: expected %d, got %d", i, want[i], dp.Price)
		}
	}
}

func TestDailyMinPrices_NoRooms(t *testing.T) {
	days := domain.DaysBetween(date("2024-07-01"), date("2024-07-31"))
	_, err := app.DailyMinPrices(nil, days)
	if !errors.Is(err, domain.ErrNoRooms) {
		t.Fatalf("expected ErrNoRooms, got %v", err)
	}
}
