package domain

import "time"

const DateLayout = "2006-01-02"

// DateRange is a half-open stay interval [CheckIn, CheckOut).
// Both bounds are calendar dates at UTC midnight.
type DateRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

func NewDateRange(checkIn, checkOut time.Time) DateRange {
	return DateRange{CheckIn: truncateToDate(checkIn), CheckOut: truncateToDate(checkOut)}
}

func ParseDateRange(checkIn, checkOut string) (DateRange, error) {
	in, err := time.ParseInLocation(DateLayout, checkIn, time.UTC)
	if err != nil {
		return DateRange{}, ErrInvalidDateRange
	}
	out, err := time.ParseInLocation(DateLayout, checkOut, time.UTC)
	if err != nil {
		return DateRange{}, ErrInvalidDateRange
	}
	return DateRange{CheckIn: in, CheckOut: out}, nil
}

func (r DateRange) Validate() error {
	if r.CheckIn.IsZero() || r.CheckOut.IsZero() || !r.CheckOut.After(r.CheckIn) {
		return ErrInvalidDateRange
	}
	return nil
}

func (r DateRange) Nights() int {
	return int(r.CheckOut.Sub(r.CheckIn) / (24 * time.Hour))
}

// NightDates returns each calendar night in the range; check-out night excluded.
func (r DateRange) NightDates() []time.Time {
	nights := make([]time.Time, 0, r.Nights())
	for d := r.CheckIn; d.Before(r.CheckOut); d = d.AddDate(0, 0, 1) {
		nights = append(nights, d)
	}
	return nights
}

func (r DateRange) Equal(other DateRange) bool {
	return r.CheckIn.Equal(other.CheckIn) && r.CheckOut.Equal(other.CheckOut)
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
