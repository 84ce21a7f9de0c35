package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"stayhub/internal/domain"
)

// Repo implements the domain repository ports over database/sql.
// DATE columns travel as "YYYY-MM-DD" strings on writes and as time.Time on
// reads (the DSN must set parseTime=true); both sides normalize through
// domain.Date so no time-of-day ever reaches a comparison.
type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func strOrNil(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

// ---- explore reads ----

func (r *Repo) GetProperty(ctx context.Context, id int64) (domain.Property, error) {
	row := r.db.QueryRowContext(ctx, getPropertySQL, id)

	var p domain.Property
	var image sql.NullString
	if err := row.Scan(&p.ID, &p.TenantID, &p.CityID, &p.CategoryID,
		&p.Name, &p.Description, &p.Address, &image); err != nil {
		if err == sql.ErrNoRows {
			return domain.Property{}, domain.ErrNotFound
		}
		return domain.Property{}, err
	}
	if image.Valid {
		s := image.String
		p.Image = &s
	}
	return p, nil
}

func (r *Repo) GetPropertyView(ctx context.Context, id int64) (domain.PropertyView, error) {
	row := r.db.QueryRowContext(ctx, getPropertyViewSQL, id)

	var v domain.PropertyView
	var image sql.NullString
	if err := row.Scan(&v.ID, &v.Name, &v.Description, &v.Address, &image, &v.City, &v.Category); err != nil {
		if err == sql.ErrNoRows {
			return domain.PropertyView{}, domain.ErrNotFound
		}
		return domain.PropertyView{}, err
	}
	if image.Valid {
		s := image.String
		v.Image = &s
	}

	rows, err := r.db.QueryContext(ctx, listImagesSQL, id)
	if err != nil {
		return domain.PropertyView{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return domain.PropertyView{}, err
		}
		v.Images = append(v.Images, url)
	}
	return v, rows.Err()
}

func (r *Repo) ListActiveRooms(ctx context.Context, propertyID int64, days []domain.Date) ([]domain.Room, error) {
	rows, err := r.db.QueryContext(ctx, listActiveRoomsSQL, propertyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, room)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadRoomChildren(ctx, out, days); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) GetActiveRoom(ctx context.Context, roomID int64, days []domain.Date) (domain.Room, error) {
	row := r.db.QueryRowContext(ctx, getActiveRoomSQL, roomID)
	room, err := scanRoom(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.Room{}, domain.ErrNotFound
		}
		return domain.Room{}, err
	}
	rooms := []domain.Room{room}
	if err := r.loadRoomChildren(ctx, rooms, days); err != nil {
		return domain.Room{}, err
	}
	return rooms[0], nil
}

func (r *Repo) ListReviews(ctx context.Context, propertyID int64) ([]domain.ReviewView, error) {
	rows, err := r.db.QueryContext(ctx, listReviewsSQL, propertyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ReviewView
	for rows.Next() {
		var rv domain.ReviewView
		var photo sql.NullString
		var created time.Time
		if err := rows.Scan(&rv.ID, &rv.Name, &photo, &rv.Rating, &rv.Comment, &created); err != nil {
			return nil, err
		}
		rv.Photo = "/default-avatar.jpg"
		if photo.Valid && strings.TrimSpace(photo.String) != "" {
			rv.Photo = photo.String
		}
		rv.CreatedAt = created.UTC().Format(time.RFC3339)
		out = append(out, rv)
	}
	return out, rows.Err()
}

// ---- tenant writes ----

func (r *Repo) CreateRoom(ctx context.Context, room domain.Room) (int64, error) {
	res, err := r.db.ExecContext(ctx, insertRoomSQL,
		room.PropertyID, room.Name, room.Description, strOrNil(room.Image),
		room.BasePrice, room.Quantity, room.Capacity)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *Repo) UpdateRoom(ctx context.Context, room domain.Room) error {
	_, err := r.db.ExecContext(ctx, updateRoomSQL,
		room.Name, room.Description, strOrNil(room.Image),
		room.BasePrice, room.Quantity, room.Capacity, room.ID)
	return err
}

func (r *Repo) SetRoomDeleted(ctx context.Context, roomID int64, deleted bool) error {
	_, err := r.db.ExecContext(ctx, setRoomDeletedSQL, deleted, roomID)
	return err
}

func (r *Repo) GetRoomAny(ctx context.Context, roomID int64) (domain.Room, error) {
	row := r.db.QueryRowContext(ctx, getRoomAnySQL, roomID)

	var room domain.Room
	var image sql.NullString
	var deleted sql.NullTime
	if err := row.Scan(&room.ID, &room.PropertyID, &room.Name, &room.Description,
		&image, &room.BasePrice, &room.Quantity, &room.Capacity, &deleted); err != nil {
		if err == sql.ErrNoRows {
			return domain.Room{}, domain.ErrNotFound
		}
		return domain.Room{}, err
	}
	if image.Valid {
		s := image.String
		room.Image = &s
	}
	if deleted.Valid {
		t := deleted.Time
		room.DeletedAt = &t
	}
	rooms := []domain.Room{room}
	if err := r.loadRoomChildren(ctx, rooms, nil); err != nil {
		return domain.Room{}, err
	}
	return rooms[0], nil
}

func (r *Repo) ListTenantRooms(ctx context.Context, tenantID int64) ([]domain.Room, error) {
	rows, err := r.db.QueryContext(ctx, listTenantRoomsSQL, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Room
	for rows.Next() {
		var room domain.Room
		var image sql.NullString
		var deleted sql.NullTime
		if err := rows.Scan(&room.ID, &room.PropertyID, &room.Name, &room.Description,
			&image, &room.BasePrice, &room.Quantity, &room.Capacity, &deleted); err != nil {
			return nil, err
		}
		if image.Valid {
			s := image.String
			room.Image = &s
		}
		if deleted.Valid {
			t := deleted.Time
			room.DeletedAt = &t
		}
		out = append(out, room)
	}
	return out, rows.Err()
}

func (r *Repo) CreatePeakRate(ctx context.Context, rate domain.PeakSeasonRate) (int64, error) {
	res, err := r.db.ExecContext(ctx, insertRateSQL,
		rate.RoomID, rate.StartDate.String(), rate.EndDate.String(),
		string(rate.Type), rate.Value, rate.CreatedAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *Repo) ListPeakRates(ctx context.Context, roomID int64, pg domain.PageQuery) (domain.RatesPage, error) {
	out := domain.RatesPage{Page: pg.Page, Limit: pg.Limit}
	if err := r.db.QueryRowContext(ctx, countRatesSQL, roomID).Scan(&out.Total); err != nil {
		return domain.RatesPage{}, err
	}

	offset := (pg.Page - 1) * pg.Limit
	rows, err := r.db.QueryContext(ctx, listRatesPageSQL, roomID, pg.Limit, offset)
	if err != nil {
		return domain.RatesPage{}, err
	}
	defer rows.Close()
	for rows.Next() {
		rate, err := scanRate(rows)
		if err != nil {
			return domain.RatesPage{}, err
		}
		out.Items = append(out.Items, rate)
	}
	return out, rows.Err()
}

func (r *Repo) UpsertOverride(ctx context.Context, o domain.AvailabilityOverride) error {
	_, err := r.db.ExecContext(ctx, upsertOverrideSQL, o.RoomID, o.Date.String(), o.Available)
	return err
}

func (r *Repo) DeleteOverride(ctx context.Context, roomID int64, date domain.Date) error {
	_, err := r.db.ExecContext(ctx, deleteOverrideSQL, roomID, date.String())
	return err
}

// ---- bookings ----

func (r *Repo) CreateBooking(ctx context.Context, b domain.Booking) (int64, error) {
	res, err := r.db.ExecContext(ctx, insertBookingSQL,
		b.Code, b.UserID, b.RoomID, b.CheckIn.String(), b.CheckOut.String(),
		b.Qty, b.TotalPrice, string(b.Status), b.CreatedAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *Repo) GetBookingByCode(ctx context.Context, code string) (domain.Booking, error) {
	return scanBooking(r.db.QueryRowContext(ctx, getBookingByCodeSQL, code))
}

func (r *Repo) SetBookingStatus(ctx context.Context, id int64, status domain.BookingStatus) error {
	_, err := r.db.ExecContext(ctx, setBookingStatusSQL, string(status), id)
	return err
}

func (r *Repo) ListStaleWaiting(ctx context.Context, ttlSec int) ([]domain.Booking, error) {
	rows, err := r.db.QueryContext(ctx, listStaleWaitingSQL, ttlSec)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// ---- scanning helpers ----

type rowScanner interface{ Scan(dest ...any) error }

func scanRoom(row rowScanner) (domain.Room, error) {
	var room domain.Room
	var image sql.NullString
	if err := row.Scan(&room.ID, &room.PropertyID, &room.Name, &room.Description,
		&image, &room.BasePrice, &room.Quantity, &room.Capacity); err != nil {
		return domain.Room{}, err
	}
	if image.Valid {
		s := image.String
		room.Image = &s
	}
	return room, nil
}

func scanRate(row rowScanner) (domain.PeakSeasonRate, error) {
	var rate domain.PeakSeasonRate
	var start, end time.Time
	var typ string
	if err := row.Scan(&rate.ID, &rate.RoomID, &start, &end, &typ, &rate.Value, &rate.CreatedAt); err != nil {
		return domain.PeakSeasonRate{}, err
	}
	rate.StartDate = domain.DateOf(start)
	rate.EndDate = domain.DateOf(end)
	rate.Type = domain.ModifierType(typ)
	return rate, nil
}

func scanBooking(row rowScanner) (domain.Booking, error) {
	var b domain.Booking
	var in, out time.Time
	var status string
	if err := row.Scan(&b.ID, &b.Code, &b.UserID, &b.RoomID, &in, &out,
		&b.Qty, &b.TotalPrice, &status, &b.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return domain.Booking{}, domain.ErrNotFound
		}
		return domain.Booking{}, err
	}
	b.CheckIn = domain.DateOf(in)
	b.CheckOut = domain.DateOf(out)
	b.Status = domain.BookingStatus(status)
	return b, nil
}

// loadRoomChildren attaches peak rates (always) and availability overrides
// (only for the requested days) to the given rooms in one query each.
func (r *Repo) loadRoomChildren(ctx context.Context, rooms []domain.Room, days []domain.Date) error {
	if len(rooms) == 0 {
		return nil
	}
	idx := make(map[int64]*domain.Room, len(rooms))
	idArgs := make([]any, 0, len(rooms))
	for i := range rooms {
		idx[rooms[i].ID] = &rooms[i]
		idArgs = append(idArgs, rooms[i].ID)
	}
	inIDs := placeholders(len(rooms))

	rateRows, err := r.db.QueryContext(ctx, fmt.Sprintf(ratesByRoomsPrefix, inIDs), idArgs...)
	if err != nil {
		return err
	}
	defer rateRows.Close()
	for rateRows.Next() {
		rate, err := scanRate(rateRows)
		if err != nil {
			return err
		}
		if room := idx[rate.RoomID]; room != nil {
			room.PeakRates = append(room.PeakRates, rate)
		}
	}
	if err := rateRows.Err(); err != nil {
		return err
	}

	if len(days) == 0 {
		return nil
	}
	args := append([]any{}, idArgs...)
	for _, d := range days {
		args = append(args, d.String())
	}
	ovRows, err := r.db.QueryContext(ctx,
		fmt.Sprintf(overridesByRoomsPrefix, inIDs, placeholders(len(days))), args...)
	if err != nil {
		return err
	}
	defer ovRows.Close()
	for ovRows.Next() {
		var o domain.AvailabilityOverride
		var day time.Time
		if err := ovRows.Scan(&o.RoomID, &day, &o.Available); err != nil {
			return err
		}
		o.Date = domain.DateOf(day)
		if room := idx[o.RoomID]; room != nil {
			room.Overrides = append(room.Overrides, o)
		}
	}
	return ovRows.Err()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
