package domain

import "context"

type ExploreRepository interface {
	// GetProperty returns a non-deleted property or ErrNotFound.
	GetProperty(ctx context.Context, id int64) (Property, error)
	// GetPropertyView returns the composed read model (city/category names,
	// image URLs) for a non-deleted property, without rooms or reviews.
	GetPropertyView(ctx context.Context, id int64) (PropertyView, error)
	// ListActiveRooms returns the property's non-deleted rooms with their
	// peak rates and, when days is non-empty, the overrides for those days.
	ListActiveRooms(ctx context.Context, propertyID int64, days []Date) ([]Room, error)
	// GetActiveRoom returns one non-deleted room with rates and overrides
	// for the given days, or ErrNotFound.
	GetActiveRoom(ctx context.Context, roomID int64, days []Date) (Room, error)
	ListReviews(ctx context.Context, propertyID int64) ([]ReviewView, error)
}

type TenantRepository interface {
	CreateRoom(ctx context.Context, r Room) (int64, error)
	UpdateRoom(ctx context.Context, r Room) error
	SetRoomDeleted(ctx context.Context, roomID int64, deleted bool) error
	// GetRoomAny looks a room up regardless of its soft-delete marker.
	GetRoomAny(ctx context.Context, roomID int64) (Room, error)
	ListTenantRooms(ctx context.Context, tenantID int64) ([]Room, error)

	CreatePeakRate(ctx context.Context, r PeakSeasonRate) (int64, error)
	ListPeakRates(ctx context.Context, roomID int64, pg PageQuery) (RatesPage, error)

	UpsertOverride(ctx context.Context, o AvailabilityOverride) error
	DeleteOverride(ctx context.Context, roomID int64, date Date) error
}

type BookingRepository interface {
	CreateBooking(ctx context.Context, b Booking) (int64, error)
	GetBookingByCode(ctx context.Context, code string) (Booking, error)
	SetBookingStatus(ctx context.Context, id int64, status BookingStatus) error
	// ListStaleWaiting returns WAITING_PAYMENT bookings created more than
	// ttl seconds ago.
	ListStaleWaiting(ctx context.Context, ttlSec int) ([]Booking, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// PaymentGateway is the outbound payment collaborator. Charge registers a
// payment intent for a booking code; Status reports whether it settled.
type PaymentGateway interface {
	Charge(ctx context.Context, code string, amount int64) error
	Status(ctx context.Context, code string) (PaymentStatus, error)
}

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentSettled PaymentStatus = "SETTLED"
	PaymentFailed  PaymentStatus = "FAILED"
)

// Read models

type PropertyView struct {
	ID          int64
	Name        string
	Description string
	Address     string
	City        string
	Category    string
	Image       *string
	Images      []string
}

type RoomSummary struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	Image          *string `json:"image"`
	Description    string  `json:"description"`
	Capacity       int     `json:"capacity"`
	TotalAvailable int     `json:"totalAvailable"`
	EffectivePrice int64   `json:"effectivePrice"`
}

type ReviewView struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Photo     string `json:"photo"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
	CreatedAt string `json:"createdAt"`
}

type PropertyDetail struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	Image       *string       `json:"image"`
	Address     string        `json:"address"`
	Description string        `json:"description"`
	City        string        `json:"city"`
	Category    string        `json:"category"`
	Images      []string      `json:"propertyImages"`
	Rooms       []RoomSummary `json:"rooms"`
	Reviews     []ReviewView  `json:"reviews"`
}

type DayPrice struct {
	Date  Date  `json:"date"`
	Price int64 `json:"price"`
}

type PageQuery struct {
	Page  int
	Limit int
}

type RatesPage struct {
	Items []PeakSeasonRate `json:"data"`
	Total int              `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}
