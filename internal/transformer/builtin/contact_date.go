package builtin

import (
	"fmt"
	"strconv"
	"time"

	"bankmarketing/pkg/records"
)

// DefaultYear is the campaign year used when a contact date has no year.
const DefaultYear = 2022

var months = map[string]time.Month{
	"jan": time.January,
	"feb": time.February,
	"mar": time.March,
	"apr": time.April,
	"may": time.May,
	"jun": time.June,
	"jul": time.July,
	"aug": time.August,
	"sep": time.September,
	"oct": time.October,
	"nov": time.November,
	"dec": time.December,
}

// InvalidDateError reports a row whose month and day do not form a real
// calendar date.
type InvalidDateError struct {
	Row    int // zero-based row in the unified input
	Month  string
	Day    string
	Reason string
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("invalid contact date at row %d: month=%q day=%q: %s", e.Row, e.Month, e.Day, e.Reason)
}

// ContactDate combines a three-letter lowercase month and a day of month
// into Target as YYYY-MM-DD in Year. Month and day columns are left in the
// frame; the output contract decides whether they are emitted.
type ContactDate struct {
	MonthField string
	DayField   string
	Year       int
	Target     string
}

func (c ContactDate) Apply(f *records.Frame) error {
	mi, err := f.MustIndex(c.MonthField)
	if err != nil {
		return err
	}
	di, err := f.MustIndex(c.DayField)
	if err != nil {
		return err
	}
	year := c.Year
	if year == 0 {
		year = DefaultYear
	}

	vals := make([]any, f.Len())
	for r, row := range f.Rows {
		ms, _ := text(row[mi])
		ds, _ := text(row[di])
		d, err := ContactDay(year, ms, ds)
		if err != nil {
			err.Row = r
			return err
		}
		vals[r] = d
	}
	return f.SetColumn(c.Target, vals)
}

// ContactDay validates month and day and returns the date text.
func ContactDay(year int, month, day string) (string, *InvalidDateError) {
	m, ok := months[month]
	if !ok {
		return "", &InvalidDateError{Month: month, Day: day, Reason: "unknown month"}
	}
	d, err := strconv.Atoi(day)
	if err != nil {
		return "", &InvalidDateError{Month: month, Day: day, Reason: "day is not an integer"}
	}
	t := time.Date(year, m, d, 0, 0, 0, 0, time.UTC)
	if t.Month() != m || t.Day() != d {
		return "", &InvalidDateError{Month: month, Day: day, Reason: fmt.Sprintf("%s has no day %d in %d", m, d, year)}
	}
	return t.Format(records.DateLayout), nil
}
