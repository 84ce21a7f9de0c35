package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"stayhub/internal/domain"
)

// BookingService turns a stay request into a priced WAITING_PAYMENT booking
// and moves it through the payment lifecycle.
type BookingService struct {
	bookings domain.BookingRepository
	explore  domain.ExploreRepository
	gateway  domain.PaymentGateway
	now      func() time.Time
}

func NewBookingService(b domain.BookingRepository, e domain.ExploreRepository, g domain.PaymentGateway) *BookingService {
	return &BookingService{bookings: b, explore: e, gateway: g, now: time.Now}
}

// CreateBooking checks availability over the stay (check-in inclusive,
// check-out exclusive), prices it day by day, and registers a payment
// intent with the gateway. The total is rounded once, here.
func (s *BookingService) CreateBooking(ctx context.Context, actor domain.Actor, roomID int64, checkIn, checkOut domain.Date, qty int) (domain.Booking, error) {
	if qty < 1 {
		return domain.Booking{}, fmt.Errorf("%w: qty must be at least 1", domain.ErrInvalidInput)
	}
	if !checkIn.Before(checkOut) {
		return domain.Booking{}, fmt.Errorf("%w: check-in %s is not before check-out %s",
			domain.ErrInvalidInput, checkIn, checkOut)
	}
	days := domain.StayDays(checkIn, checkOut)

	room, err := s.explore.GetActiveRoom(ctx, roomID, days)
	if err != nil {
		return domain.Booking{}, err
	}
	if avail := MinAvailable(room, days); avail < qty {
		return domain.Booking{}, fmt.Errorf("%w: %d requested, %d free", domain.ErrNoAvailability, qty, avail)
	}

	var sum float64
	for _, d := range days {
		p, err := EffectivePrice(room, d)
		if err != nil {
			return domain.Booking{}, err
		}
		sum += p
	}

	b := domain.Booking{
		Code:       uuid.NewString(),
		UserID:     actor.UserID,
		RoomID:     roomID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Qty:        qty,
		TotalPrice: RoundPrice(sum * float64(qty)),
		Status:     domain.BookingWaitingPayment,
		CreatedAt:  s.now().UTC(),
	}
	id, err := s.bookings.CreateBooking(ctx, b)
	if err != nil {
		return domain.Booking{}, err
	}
	b.ID = id

	if err := s.gateway.Charge(ctx, b.Code, b.TotalPrice); err != nil {
		// Keep the row but mark it dead so the sweeper doesn't re-expire it.
		_ = s.bookings.SetBookingStatus(ctx, id, domain.BookingCancelled)
		return domain.Booking{}, fmt.Errorf("payment charge for %s: %w", b.Code, err)
	}
	return b, nil
}

// ConfirmBooking settles a WAITING_PAYMENT booking against the gateway.
func (s *BookingService) ConfirmBooking(ctx context.Context, code string) (domain.Booking, error) {
	b, err := s.bookings.GetBookingByCode(ctx, code)
	if err != nil {
		return domain.Booking{}, err
	}
	if b.Status != domain.BookingWaitingPayment {
		return domain.Booking{}, fmt.Errorf("%w: booking %s is %s", domain.ErrBadState, code, b.Status)
	}
	st, err := s.gateway.Status(ctx, code)
	if err != nil {
		return domain.Booking{}, err
	}
	switch st {
	case domain.PaymentSettled:
		b.Status = domain.BookingPaid
	case domain.PaymentFailed:
		b.Status = domain.BookingCancelled
	default:
		return domain.Booking{}, fmt.Errorf("%w: payment for %s still pending", domain.ErrBadState, code)
	}
	if err := s.bookings.SetBookingStatus(ctx, b.ID, b.Status); err != nil {
		return domain.Booking{}, err
	}
	return b, nil
}

// ListStale returns WAITING_PAYMENT bookings older than ttl; the sweeper
// fans Expire calls out over them.
func (s *BookingService) ListStale(ctx context.Context, ttl time.Duration) ([]domain.Booking, error) {
	return s.bookings.ListStaleWaiting(ctx, int(ttl.Seconds()))
}

func (s *BookingService) Expire(ctx context.Context, id int64) error {
	return s.bookings.SetBookingStatus(ctx, id, domain.BookingExpired)
}
