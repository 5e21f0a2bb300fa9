package domain

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
)

const (
	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"
)

// ServiceDay maps an instant to its calendar date in loc. Dates are carried
// as UTC midnight so that stored values compare the same on every driver.
func ServiceDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseServiceDate parses "YYYY-MM-DD" into a service date.
func ParseServiceDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q", ErrInvalidInput, s)
	}
	return d, nil
}

// CutoffDeadline is the instant in loc at which ordering for serviceDate
// closes. cutoff is read as a wall-clock time on that date, which is not
// midnight plus a duration on daylight saving changeover days.
func CutoffDeadline(serviceDate time.Time, cutoff datatypes.Time, loc *time.Location) time.Time {
	y, m, d := serviceDate.Date()
	c := time.Duration(cutoff)
	h := int(c / time.Hour)
	mi := int(c % time.Hour / time.Minute)
	s := int(c % time.Minute / time.Second)
	return time.Date(y, m, d, h, mi, s, 0, loc)
}

// IsBeforeCutoff reports whether now is strictly before the cutoff on
// serviceDate. A date in the past is always past its cutoff; a future date
// stays open until its own cutoff arrives.
func IsBeforeCutoff(serviceDate, now time.Time, cutoff datatypes.Time, loc *time.Location) bool {
	return now.Before(CutoffDeadline(serviceDate, cutoff, loc))
}

func IsToday(serviceDate, now time.Time, loc *time.Location) bool {
	return ServiceDay(now, loc).Equal(serviceDate)
}

// ParseClock parses "HH:MM" or "HH:MM:SS".
func ParseClock(s string) (datatypes.Time, error) {
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return datatypes.NewTime(t.Hour(), t.Minute(), t.Second(), 0), nil
		}
	}
	return 0, fmt.Errorf("%w: time of day %q", ErrInvalidInput, s)
}

// Month is a calendar month.
type Month struct {
	Year  int
	Month time.Month
}

func ParseMonth(s string) (Month, error) {
	t, err := time.Parse(MonthLayout, s)
	if err != nil {
		return Month{}, fmt.Errorf("%w: month %q", ErrInvalidInput, s)
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Range returns [first day, first day of next month) as service dates.
func (m Month) Range() (time.Time, time.Time) {
	from := time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 1, 0)
}

// WorkingDays counts Monday to Friday dates in the month.
func (m Month) WorkingDays() int {
	from, to := m.Range()
	n := 0
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			n++
		}
	}
	return n
}
