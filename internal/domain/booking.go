package domain

import "time"

type BookingStatus string

const (
	BookingWaitingPayment BookingStatus = "WAITING_PAYMENT"
	BookingPaid           BookingStatus = "PAID"
	BookingExpired        BookingStatus = "EXPIRED"
	BookingCancelled      BookingStatus = "CANCELLED"
)

type Booking struct {
	ID         int64
	Code       string // uuid, used in payment-gateway correspondence
	UserID     int64
	RoomID     int64
	CheckIn    Date
	CheckOut   Date // exclusive: the checkout day is not occupied
	Qty        int
	TotalPrice int64 // minor units, rounded once at creation
	Status     BookingStatus
	CreatedAt  time.Time
}
