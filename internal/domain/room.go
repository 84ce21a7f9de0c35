package domain

import "time"

type ModifierType string

const (
	ModifierPercentage ModifierType = "PERCENTAGE"
	ModifierNominal    ModifierType = "NOMINAL"
)

func (m ModifierType) Valid() bool {
	return m == ModifierPercentage || m == ModifierNominal
}

type Room struct {
	ID          int64
	PropertyID  int64
	Name        string
	Description string
	Image       *string
	BasePrice   int64 // minor currency units
	Quantity    int   // bookable units
	Capacity    int   // max guests per unit
	DeletedAt   *time.Time

	// Loaded by the repository for the requested date range; sparse.
	Overrides []AvailabilityOverride
	PeakRates []PeakSeasonRate
}

// AvailabilityOverride is a per-date exception to a room's default quantity.
// Absence of a row for a date means the room's full quantity applies.
type AvailabilityOverride struct {
	RoomID    int64
	Date      Date
	Available int
}

// PeakSeasonRate is a date-ranged price modifier; both endpoints inclusive.
type PeakSeasonRate struct {
	ID        int64
	RoomID    int64
	StartDate Date
	EndDate   Date
	Type      ModifierType
	Value     float64 // percentage points or a flat minor-unit amount
	CreatedAt time.Time
}

func (r PeakSeasonRate) Contains(d Date) bool {
	return !d.Before(r.StartDate) && !d.After(r.EndDate)
}

func (r PeakSeasonRate) Overlaps(start, end Date) bool {
	return !r.EndDate.Before(start) && !end.Before(r.StartDate)
}
