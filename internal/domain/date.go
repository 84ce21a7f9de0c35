package domain

import (
	"fmt"
	"time"
)

// Date is a calendar day with no time-of-day and no zone. All pricing and
// availability comparisons happen on Date values, never on raw timestamps,
// so a client in another timezone can't shift a stay by one day.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

const dateLayout = "2006-01-02"

func NewDate(year int, month time.Month, day int) Date {
	return Date{Year: year, Month: month, Day: day}
}

// DateOf truncates t to its calendar day in UTC.
func DateOf(t time.Time) Date {
	u := t.UTC()
	return Date{Year: u.Year(), Month: u.Month(), Day: u.Day()}
}

// ParseDate parses "YYYY-MM-DD".
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: bad date %q", ErrInvalidInput, s)
	}
	return DateOf(t), nil
}

// ParseMonth parses "YYYY-MM" and returns the first and last day of that month.
func ParseMonth(s string) (Date, Date, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Date{}, Date{}, fmt.Errorf("%w: bad month %q", ErrInvalidInput, s)
	}
	first := Date{Year: t.Year(), Month: t.Month(), Day: 1}
	return first, first.lastOfMonth(), nil
}

func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) String() string { return d.Time().Format(dateLayout) }

func (d Date) IsZero() bool { return d == Date{} }

func (d Date) Equal(o Date) bool  { return d == o }
func (d Date) Before(o Date) bool { return d.Time().Before(o.Time()) }
func (d Date) After(o Date) bool  { return d.Time().After(o.Time()) }

func (d Date) AddDays(n int) Date { return DateOf(d.Time().AddDate(0, 0, n)) }

func (d Date) lastOfMonth() Date {
	// day 0 of the next month
	return DateOf(time.Date(d.Year, d.Month+1, 0, 0, 0, 0, 0, time.UTC))
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if len(b) < 2 || b[0] != '"' || b[len(b)-1] != '"' {
		return fmt.Errorf("%w: bad date %s", ErrInvalidInput, b)
	}
	p, err := ParseDate(string(b[1 : len(b)-1]))
	if err != nil {
		return err
	}
	*d = p
	return nil
}

// DaysBetween returns every day from 'from' through 'to', both inclusive.
// An inverted range yields nil.
func DaysBetween(from, to Date) []Date {
	if from.After(to) {
		return nil
	}
	var out []Date
	for d := from; !d.After(to); d = d.AddDays(1) {
		out = append(out, d)
	}
	return out
}

// StayDays returns the occupied days of a stay: check-in inclusive,
// check-out exclusive.
func StayDays(checkIn, checkOut Date) []Date {
	if !checkIn.Before(checkOut) {
		return nil
	}
	return DaysBetween(checkIn, checkOut.AddDays(-1))
}

// RollingWindow returns the two-month calendar span: the first day of
// today's month through the last day of the next month.
func RollingWindow(today Date) (Date, Date) {
	first := Date{Year: today.Year, Month: today.Month, Day: 1}
	end := DateOf(time.Date(today.Year, today.Month+2, 0, 0, 0, 0, 0, time.UTC))
	return first, end
}
